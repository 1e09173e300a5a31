package config

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/xirelogy/magpie-s3-filesystem/log"
)

const (
	DefaultType          = "s3"
	DefaultTransport     = TransportMinio
	DefaultRegion        = "us-east-1"
	DefaultEndpointStyle = "subdomain"
	DefaultPartSize      = 16 * 1024 * 1024

	// S3 multipart uploads reject parts below 5 MiB
	MinPartSize = 5 * 1024 * 1024
)

// Transports selectable through the transport option.
const (
	TransportMinio    = "minio"
	TransportAWS      = "aws"
	TransportMemory   = "memory"
	TransportSQLite   = "sqlite"
	TransportPostgres = "postgres"
	TransportConsul   = "consul"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the declarative description of a file system instance.
type Config struct {
	// Registry discriminator selecting the file system implementation
	Type string `yaml:"type" mapstructure:"type"`

	// Object client used underneath the file system
	Transport string `yaml:"transport" mapstructure:"transport"`

	Endpoint      string `yaml:"endpoint" mapstructure:"endpoint"`
	Key           string `yaml:"key" mapstructure:"key"`
	Secret        string `yaml:"secret" mapstructure:"secret"`
	Bucket        string `yaml:"bucket" mapstructure:"bucket"`
	Region        string `yaml:"region" mapstructure:"region"`
	EndpointStyle string `yaml:"endpoint-style" mapstructure:"endpoint-style"`
	PartSize      int64  `yaml:"part-size" mapstructure:"part-size"`

	LogLevel string `yaml:"log-level" mapstructure:"log-level"`
	LogFile  string `yaml:"log-file" mapstructure:"log-file"`
	LogJSON  bool   `yaml:"log-json" mapstructure:"log-json"`

	// LogOutput overrides stdout for terminal logging; set by embedders, never decoded
	LogOutput io.Writer `yaml:"-" mapstructure:"-"`
}

// Default returns a configuration with every optional value filled in.
func Default() *Config {
	return &Config{
		Type:          DefaultType,
		Transport:     DefaultTransport,
		Region:        DefaultRegion,
		EndpointStyle: DefaultEndpointStyle,
		PartSize:      DefaultPartSize,
		LogLevel:      "info",
	}
}

// applyDefaults fills empty optional values after decoding.
func (c *Config) applyDefaults() {
	defaults := Default()

	if c.Type == "" {
		c.Type = defaults.Type
	}
	if c.Transport == "" {
		c.Transport = defaults.Transport
	}
	if c.Region == "" {
		c.Region = defaults.Region
	}
	if c.EndpointStyle == "" {
		c.EndpointStyle = defaults.EndpointStyle
	}
	if c.PartSize == 0 {
		c.PartSize = defaults.PartSize
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
}

// Validate checks required options and enumerations.
// The S3 transports require endpoint, key and secret; the storage transports
// only require an endpoint (DSN, path or address) and memory requires nothing.
func (c *Config) Validate() error {
	var problems []string

	switch c.Transport {
	case TransportMinio, TransportAWS:
		if c.Endpoint == "" {
			problems = append(problems, "endpoint is required")
		}
		if c.Key == "" {
			problems = append(problems, "key is required")
		}
		if c.Secret == "" {
			problems = append(problems, "secret is required")
		}
	case TransportSQLite, TransportPostgres, TransportConsul:
		if c.Endpoint == "" {
			problems = append(problems, "endpoint is required")
		}
	case TransportMemory:
	default:
		problems = append(problems, fmt.Sprintf("unknown transport '%s'", c.Transport))
	}

	if !slices.Contains([]string{"subdomain", "path"}, c.EndpointStyle) {
		problems = append(problems, fmt.Sprintf("endpoint-style must be 'subdomain' or 'path', got '%s'", c.EndpointStyle))
	}

	if c.PartSize < MinPartSize {
		problems = append(problems, fmt.Sprintf("part-size must be at least %d bytes", MinPartSize))
	}

	if _, err := log.Parse(c.LogLevel); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}

	return nil
}

// Logger builds the logger described by the log options.
func (c *Config) Logger(name string) (*log.Logger, error) {
	level, err := log.Parse(c.LogLevel)
	if err != nil {
		return nil, err
	}

	return log.NewLogger(log.Options{
		Name:   name,
		Level:  level,
		Output: c.LogOutput,
		File:   c.LogFile,
		JSON:   c.LogJSON,
	}), nil
}

// String renders the configuration with the secret redacted.
func (c *Config) String() string {
	secret := ""
	if c.Secret != "" {
		secret = "****"
	}

	return fmt.Sprintf("type=%s transport=%s endpoint=%s key=%s secret=%s bucket=%s region=%s endpoint-style=%s",
		c.Type, c.Transport, c.Endpoint, c.Key, secret, c.Bucket, c.Region, c.EndpointStyle)
}
