package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config controls the facade and the bundled engines. The zero value is
// not usable directly; start from DefaultConfig or LoadConfig, or rely on
// Service.Initialize filling the blanks.
type Config struct {
	// Level is the minimum severity emitted: debug, info, warn or error.
	Level string `yaml:"level" toml:"level" validate:"omitempty,oneof=debug info warn warning error"`

	// WithTimestamp adds the engine-native timestamp field to every record.
	WithTimestamp bool `yaml:"with_timestamp" toml:"with_timestamp"`

	ConsoleLogging bool `yaml:"console_logging" toml:"console_logging"`
	// ConsolePretty switches the console channel from raw JSON to a
	// human-readable rendering (zerolog engine only).
	ConsolePretty     bool   `yaml:"console_pretty" toml:"console_pretty"`
	ConsoleNoColor    bool   `yaml:"console_no_color" toml:"console_no_color"`
	ConsoleTimeFormat string `yaml:"console_time_format" toml:"console_time_format"`

	FileLogging bool `yaml:"file_logging" toml:"file_logging"`
	// RelLogFileDir is the log directory, relative to the service working
	// directory when one is set. Absolute paths are rejected.
	RelLogFileDir     string `yaml:"rel_log_file_dir" toml:"rel_log_file_dir"`
	LogFileName       string `yaml:"log_file_name" toml:"log_file_name"`
	LogFileMaxBackups int    `yaml:"log_file_max_backups" toml:"log_file_max_backups" validate:"gte=0"`
	LogFileMaxAgeDays int    `yaml:"log_file_max_age_days" toml:"log_file_max_age_days" validate:"gte=0"`
	LogFileMaxSizeMB  int    `yaml:"log_file_max_size_mb" toml:"log_file_max_size_mb" validate:"gte=0"`
	LogFileCompress   bool   `yaml:"log_file_compress" toml:"log_file_compress"`

	// ShutdownTimeoutMS bounds how long Close waits for in-flight logs.
	ShutdownTimeoutMS      int  `yaml:"shutdown_timeout_ms" toml:"shutdown_timeout_ms" validate:"gte=0"`
	ShutdownTimeoutWarning bool `yaml:"shutdown_timeout_warning" toml:"shutdown_timeout_warning"`

	// TraceHeader is the HTTP header carrying the trace id inbound and
	// outbound. Defaults to DefaultTraceHeader.
	TraceHeader string `yaml:"trace_header" toml:"trace_header"`

	// IgnorePatterns lists glob patterns (see glob.go) for paths and URLs
	// the middleware and transport must pass through without logging.
	IgnorePatterns []string `yaml:"ignore_patterns" toml:"ignore_patterns"`

	// MaxBodyBytes bounds captured HTTP bodies. Zero turns off the
	// middleware and transport body capture; bodies passed explicitly
	// via WithBody are still logged, untruncated.
	MaxBodyBytes int64 `yaml:"max_body_bytes" toml:"max_body_bytes" validate:"gte=0"`

	// ServiceName and Environment are stamped onto every record when set.
	ServiceName string `yaml:"service_name" toml:"service_name"`
	Environment string `yaml:"environment" toml:"environment"`
}

const (
	defaultLevel            = "info"
	defaultRelLogFileDir    = "logs"
	defaultMaxBodyBytes     = 4096
	defaultShutdownTimeout  = 5000
	defaultFileMaxBackups   = 3
	defaultFileMaxAgeDays   = 7
	defaultFileMaxSizeMB    = 10
	defaultLogFileBaseName  = "unnbound"
	defaultLogFileExtension = ".log"
)

// DefaultConfig returns a console-only JSON configuration suitable for
// services that log to stdout collectors.
func DefaultConfig() Config {
	return Config{
		Level:             defaultLevel,
		WithTimestamp:     true,
		ConsoleLogging:    true,
		RelLogFileDir:     defaultRelLogFileDir,
		LogFileName:       defaultLogFileName(),
		LogFileMaxBackups: defaultFileMaxBackups,
		LogFileMaxAgeDays: defaultFileMaxAgeDays,
		LogFileMaxSizeMB:  defaultFileMaxSizeMB,
		ShutdownTimeoutMS: defaultShutdownTimeout,
		TraceHeader:       DefaultTraceHeader,
		MaxBodyBytes:      defaultMaxBodyBytes,
	}
}

// withDefaults fills the blanks a hand-rolled Config may leave, without
// overriding anything explicitly set.
func (c Config) withDefaults() Config {
	if c.Level == emptyString {
		c.Level = defaultLevel
	}
	if c.RelLogFileDir == emptyString {
		c.RelLogFileDir = defaultRelLogFileDir
	}
	if c.LogFileName == emptyString {
		c.LogFileName = defaultLogFileName()
	}
	if c.TraceHeader == emptyString {
		c.TraceHeader = DefaultTraceHeader
	}
	// If both channels are disabled, enable the console writer
	if !c.ConsoleLogging && !c.FileLogging {
		c.ConsoleLogging = true
	}
	return c
}

// applyEnv overlays environment variables on top of the config.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvLogLevel); v != emptyString {
		c.Level = v
	}
	if v := os.Getenv(EnvTraceHeader); v != emptyString {
		c.TraceHeader = v
	}
	if v := os.Getenv(EnvServiceName); v != emptyString {
		c.ServiceName = v
	}
	if v := os.Getenv(EnvEnvironment); v != emptyString {
		c.Environment = v
	}
}

// LoadConfig reads a configuration file, deciding the format by extension
// (.json, .yaml/.yml or .toml), then overlays environment variables.
// Fields absent from the file keep their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config format: %q", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", filepath.Base(path), err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// defaultLogFileName derives the log file name from the executable.
func defaultLogFileName() string {
	exe, err := os.Executable()
	if err != nil {
		return defaultLogFileBaseName + defaultLogFileExtension
	}
	name := strings.TrimSuffix(filepath.Base(exe), ".exe")
	if name == emptyString || name == "." {
		name = defaultLogFileBaseName
	}
	return name + defaultLogFileExtension
}
