package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/natefinch/lumberjack.v2"
)

const defaultTimeFormat = "2006-01-02 15:04:05"

var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

// Options describe where and how a Logger writes.
type Options struct {
	Name  string
	Level LogLevel

	// Output replaces stdout as the terminal stream
	Output io.Writer

	// File enables a rotated log file next to the terminal output
	File     string
	Rotation Rotation

	JSON       bool
	NoColor    bool
	NoTerminal bool
}

// Rotation limits are passed to lumberjack; sizes are in megabytes, age in days.
type Rotation struct {
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

// DefaultRotation keeps five files of at most 128 MB for 16 days.
var DefaultRotation = Rotation{
	MaxSize:    128,
	MaxBackups: 5,
	MaxAge:     16,
}

// Logger writes leveled printf-style lines or JSON entries.
// Loggers derived through Named and With share the writer and its lock.
type Logger struct {
	mu     *sync.Mutex
	writer io.Writer

	Name  string
	Level LogLevel

	TimeFormat string
	JSON       bool
	NoColor    bool

	fields []field
}

type field struct {
	key   string
	value any
}

type logEntry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Service   string         `json:"service,omitempty"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// NewLogger creates a logger writing to the terminal stream (stdout unless
// Output is set) and, when configured, a rotated file.
func NewLogger(opts Options) *Logger {
	var writers []io.Writer

	terminal := opts.Output
	if terminal == nil {
		terminal = os.Stdout
	}

	if !opts.NoTerminal {
		writers = append(writers, terminal)
	}

	if opts.File != "" {
		rotation := opts.Rotation
		if rotation == (Rotation{}) {
			rotation = DefaultRotation
		}

		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    rotation.MaxSize,
			MaxBackups: rotation.MaxBackups,
			MaxAge:     rotation.MaxAge,
			Compress:   rotation.Compress,
		})
	}

	if len(writers) == 0 {
		writers = append(writers, terminal)
	}

	return &Logger{
		mu:     &sync.Mutex{},
		writer: io.MultiWriter(writers...),

		Name:  opts.Name,
		Level: opts.Level,

		TimeFormat: defaultTimeFormat,
		JSON:       opts.JSON,
		// Colors only make sense when the terminal is the sole output
		NoColor: opts.NoColor || opts.NoTerminal || opts.File != "",
	}
}

// NewLoggerWithWriter creates an uncolored logger writing to w only.
func NewLoggerWithWriter(name string, level LogLevel, w io.Writer) *Logger {
	return &Logger{
		mu:     &sync.Mutex{},
		writer: w,

		Name:  name,
		Level: level,

		TimeFormat: defaultTimeFormat,
		NoColor:    true,
	}
}

// Discard returns a logger that drops every message.
func Discard() *Logger {
	return NewLoggerWithWriter("", Fatal+1, io.Discard)
}

func (l *Logger) log(level LogLevel, msg string, args ...any) {
	if level < l.Level {
		return
	}

	timestamp := time.Now().Format(l.TimeFormat)
	message := fmt.Sprintf(msg, args...)

	var line string
	if l.JSON {
		line = l.formatJSON(timestamp, level, message)
	} else {
		line = l.formatText(timestamp, level, message)
	}

	l.mu.Lock()
	io.WriteString(l.writer, line)
	l.mu.Unlock()

	if level == Fatal {
		os.Exit(1)
	}
}

func (l *Logger) formatText(timestamp string, level LogLevel, message string) string {
	var sb strings.Builder

	if !l.NoColor {
		sb.WriteString(Color(level))
	}

	fmt.Fprintf(&sb, "[%s] %-5s", timestamp, level)
	if l.Name != "" {
		fmt.Fprintf(&sb, " [%s]", l.Name)
	}
	sb.WriteString(" ")
	sb.WriteString(message)

	for _, f := range l.fields {
		fmt.Fprintf(&sb, " %s=%v", f.key, f.value)
	}

	if !l.NoColor {
		sb.WriteString(colorReset)
	}
	sb.WriteString("\n")

	return sb.String()
}

func (l *Logger) formatJSON(timestamp string, level LogLevel, message string) string {
	entry := logEntry{
		Timestamp: timestamp,
		Level:     level.String(),
		Service:   l.Name,
		Message:   message,
	}

	if len(l.fields) > 0 {
		entry.Fields = make(map[string]any, len(l.fields))
		for _, f := range l.fields {
			entry.Fields[f.key] = f.value
		}
	}

	encoded, err := jsonCodec.Marshal(entry)
	if err != nil {
		return fmt.Sprintf("{\"level\":%q,\"message\":%q}\n", level, message)
	}

	return string(encoded) + "\n"
}

func (l *Logger) Debug(msg string, args ...any) {
	l.log(Debug, msg, args...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.log(Info, msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.log(Warn, msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.log(Error, msg, args...)
}

func (l *Logger) Fatal(msg string, args ...any) {
	l.log(Fatal, msg, args...)
}

// Named derives a logger whose name is appended to the current one.
func (l *Logger) Named(name string) *Logger {
	if l.Name != "" {
		name = l.Name + "/" + name
	}

	derived := l.clone()
	derived.Name = name
	return derived
}

// With derives a logger that appends key=value to every line.
func (l *Logger) With(key string, value any) *Logger {
	derived := l.clone()
	derived.fields = append(derived.fields, field{key: key, value: value})
	return derived
}

func (l *Logger) clone() *Logger {
	derived := *l
	derived.fields = append([]field(nil), l.fields...)
	return &derived
}
