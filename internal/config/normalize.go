package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSource()
	c.normalizeTools()
	c.normalizeTransform()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" || c.Paths.OutputDir == defaultOutputDir {
		if value, ok := os.LookupEnv("ALTNAMES_OUTPUT_DIR"); ok && strings.TrimSpace(value) != "" {
			c.Paths.OutputDir = strings.TrimSpace(value)
		}
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	var err error
	if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSource() {
	c.Source.URL = strings.TrimSpace(c.Source.URL)
	if c.Source.URL == "" {
		c.Source.URL = defaultSourceURL
	}
	c.Source.ArchiveName = strings.TrimSpace(c.Source.ArchiveName)
	c.Source.MemberName = strings.TrimSpace(c.Source.MemberName)
	c.Source.OutputName = strings.TrimSpace(c.Source.OutputName)
	c.Source.TokenName = strings.TrimSpace(c.Source.TokenName)
	if c.Source.HeadTimeoutSeconds == 0 {
		c.Source.HeadTimeoutSeconds = defaultHeadTimeoutSeconds
	}
}

func (c *Config) normalizeTools() {
	c.Download.Aria2Binary = strings.TrimSpace(c.Download.Aria2Binary)
	if c.Download.Aria2Binary == "" {
		c.Download.Aria2Binary = defaultAria2Binary
	}
	if c.Download.Connections == 0 {
		c.Download.Connections = defaultConnections
	}
	c.Extract.UnzipBinary = strings.TrimSpace(c.Extract.UnzipBinary)
	if c.Extract.UnzipBinary == "" {
		c.Extract.UnzipBinary = defaultUnzipBinary
	}
	c.Extract.SevenZipBinary = strings.TrimSpace(c.Extract.SevenZipBinary)
	if c.Extract.SevenZipBinary == "" {
		c.Extract.SevenZipBinary = defaultSevenZipBinary
	}
}

func (c *Config) normalizeTransform() {
	c.Transform.Conversion = strings.ToLower(strings.TrimSpace(c.Transform.Conversion))
	if c.Transform.Conversion == "" {
		c.Transform.Conversion = defaultConversion
	}
	c.Transform.Compression = strings.ToLower(strings.TrimSpace(c.Transform.Compression))
	if c.Transform.Compression == "" {
		c.Transform.Compression = defaultCompression
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
