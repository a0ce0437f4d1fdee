package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Only profiles that target Simplified Chinese are accepted.
var supportedConversions = map[string]struct{}{
	"t2s":   {},
	"tw2s":  {},
	"tw2sp": {},
	"hk2s":  {},
}

var supportedCompression = map[string]struct{}{
	"snappy": {},
	"zstd":   {},
	"gzip":   {},
	"none":   {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validateDownload(); err != nil {
		return err
	}
	if err := c.validateTransform(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	return nil
}

func (c *Config) validateSource() error {
	parsed, err := url.Parse(c.Source.URL)
	if err != nil {
		return fmt.Errorf("source.url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("source.url must use http or https, got %q", c.Source.URL)
	}
	names := map[string]string{
		"source.archive_name": c.Source.ArchiveName,
		"source.member_name":  c.Source.MemberName,
		"source.output_name":  c.Source.OutputName,
		"source.token_name":   c.Source.TokenName,
	}
	for key, value := range names {
		if value == "" {
			return fmt.Errorf("%s must be set", key)
		}
		if strings.ContainsAny(value, `/\`) {
			return fmt.Errorf("%s must be a bare file name, got %q", key, value)
		}
	}
	if c.Source.HeadTimeoutSeconds < 0 {
		return errors.New("source.head_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateDownload() error {
	if c.Download.Connections < 1 {
		return errors.New("download.connections must be at least 1")
	}
	if c.Download.Connections > 16 {
		return errors.New("download.connections must not exceed 16 (aria2 per-server limit)")
	}
	return nil
}

func (c *Config) validateTransform() error {
	if _, ok := supportedConversions[c.Transform.Conversion]; !ok {
		return fmt.Errorf("transform.conversion: unsupported profile %q (want t2s, tw2s, tw2sp or hk2s)", c.Transform.Conversion)
	}
	if _, ok := supportedCompression[c.Transform.Compression]; !ok {
		return fmt.Errorf("transform.compression: unsupported value %q (want snappy, zstd, gzip or none)", c.Transform.Compression)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
