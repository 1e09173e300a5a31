package log

const colorReset = "\033[0m"

var levelColors = map[LogLevel]string{
	Debug: "\033[34m",
	Info:  "\033[32m",
	Warn:  "\033[33m",
	Error: "\033[31m",
	Fatal: "\033[35m",
}

// Color returns the ANSI escape used for l on terminals.
func Color(l LogLevel) string {
	if color, exists := levelColors[l]; exists {
		return color
	}

	return colorReset
}
