package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "S3FS_"

// FromEnv loads the configuration from S3FS_* environment variables.
func FromEnv() (*Config, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}

	fields := map[string]*string{
		"TYPE":           &cfg.Type,
		"TRANSPORT":      &cfg.Transport,
		"ENDPOINT":       &cfg.Endpoint,
		"KEY":            &cfg.Key,
		"SECRET":         &cfg.Secret,
		"BUCKET":         &cfg.Bucket,
		"REGION":         &cfg.Region,
		"ENDPOINT_STYLE": &cfg.EndpointStyle,
		"LOG_LEVEL":      &cfg.LogLevel,
		"LOG_FILE":       &cfg.LogFile,
	}
	for name, target := range fields {
		if value, exists := lookup(EnvPrefix + name); exists {
			*target = value
		}
	}

	if value, exists := lookup(EnvPrefix + "PART_SIZE"); exists && value != "" {
		size, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %sPART_SIZE: %v", ErrInvalidConfig, EnvPrefix, err)
		}
		cfg.PartSize = size
	}

	if value, exists := lookup(EnvPrefix + "LOG_JSON"); exists && value != "" {
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %sLOG_JSON: %v", ErrInvalidConfig, EnvPrefix, err)
		}
		cfg.LogJSON = enabled
	}

	cfg.applyDefaults()
	return cfg, nil
}

// FromFile loads the configuration from a YAML file.
func FromFile(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read '%s': %w", path, err)
	}

	return FromYAML(content)
}

// FromYAML decodes a YAML document; unknown keys are rejected.
func FromYAML(content []byte) (*Config, error) {
	cfg := &Config{}

	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)

	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// FromMap decodes a declarative option map such as
// {"type": "s3", "endpoint": "...", "bucket": "..."}; unknown keys are rejected.
func FromMap(options map[string]any) (*Config, error) {
	cfg := &Config{}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		TagName:          "mapstructure",
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(options); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}
