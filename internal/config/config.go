package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// Source describes the remote archive and the local artifact names derived from it.
type Source struct {
	URL                string `toml:"url"`
	ArchiveName        string `toml:"archive_name"`
	MemberName         string `toml:"member_name"`
	OutputName         string `toml:"output_name"`
	TokenName          string `toml:"token_name"`
	HeadTimeoutSeconds int    `toml:"head_timeout_seconds"`
}

// Download contains configuration for the parallel archive transfer.
type Download struct {
	Connections int    `toml:"connections"`
	Aria2Binary string `toml:"aria2_binary"`
}

// Extract names the archive tools used on each platform family.
type Extract struct {
	UnzipBinary    string `toml:"unzip_binary"`
	SevenZipBinary string `toml:"sevenzip_binary"`
}

// Transform contains configuration for the alternate-name transform.
type Transform struct {
	Conversion  string `toml:"conversion"`
	Compression string `toml:"compression"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for altnames.
//
// Configuration sections by subsystem:
//   - Paths: output and log directories
//   - Source: remote archive URL and local artifact names
//   - Download: aria2 connection count
//   - Extract: platform archive tools
//   - Transform: script conversion profile and parquet compression
//   - Logging: log format, level, and retention
type Config struct {
	Paths     Paths     `toml:"paths"`
	Source    Source    `toml:"source"`
	Download  Download  `toml:"download"`
	Extract   Extract   `toml:"extract"`
	Transform Transform `toml:"transform"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/altnames/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		info, err := os.Stat(expanded)
		if err != nil {
			if os.IsNotExist(err) {
				return "", false, fmt.Errorf("config file %s not found", expanded)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		if info.IsDir() {
			return "", false, fmt.Errorf("config path %s is a directory", expanded)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("altnames.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ArchivePath is where the downloaded archive lands.
func (c *Config) ArchivePath() string {
	return filepath.Join(c.Paths.OutputDir, c.Source.ArchiveName)
}

// RawTablePath is where the extracted member lands.
func (c *Config) RawTablePath() string {
	return filepath.Join(c.Paths.OutputDir, c.Source.MemberName)
}

// OutputPath is the canonical parquet output.
func (c *Config) OutputPath() string {
	return filepath.Join(c.Paths.OutputDir, c.Source.OutputName)
}

// TokenPath is the cache-validation token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Paths.OutputDir, c.Source.TokenName)
}

// HistoryPath is the run ledger database.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.OutputDir, "history.db")
}

// LockPath is the single-run lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.OutputDir, "altnames.lock")
}

// LogPath is the log file inside the log directory, or empty when file logging is off.
func (c *Config) LogPath() string {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return ""
	}
	return filepath.Join(c.Paths.LogDir, "altnames.log")
}

// HeadTimeout bounds the metadata check against the remote archive.
func (c *Config) HeadTimeout() time.Duration {
	return time.Duration(c.Source.HeadTimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
