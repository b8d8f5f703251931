package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultExtensions is the extension list used when nothing else is configured.
const DefaultExtensions = "jpg,jpeg,png,tiff,tif,heic"

// Config holds all configuration for a photostamp run.
type Config struct {
	Recursive    bool   `toml:"recursive"`
	DryRun       bool   `toml:"dry_run"`
	Extensions   string `toml:"extensions"` // comma-separated, dots optional
	Verify       bool   `toml:"verify"`
	ExifToolPath string `toml:"exiftool_path"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	LogFile   string `toml:"log_file"`

	ReportPath   string `toml:"report_path"`
	ReportFormat string `toml:"report_format"`
	ReportGzip   bool   `toml:"report_gzip"`
	ReportS3     string `toml:"report_s3"` // s3://bucket/key
	S3Region     string `toml:"s3_region"`

	NoLock bool `toml:"no_lock"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Extensions:   DefaultExtensions,
		ExifToolPath: "exiftool",
		LogLevel:     "info",
		LogFormat:    "text",
		ReportFormat: "json",
		S3Region:     "us-east-1",
	}
}

// Load builds a configuration from defaults, the optional TOML file at path
// and PHOTOSTAMP_* environment variables, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	cfg.ApplyEnv(os.Getenv)
	return cfg, nil
}

// LoadFile overlays the values present in a TOML file onto c.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	md, err := toml.Decode(string(data), c)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// ApplyEnv overrides c with PHOTOSTAMP_* variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if val := getenv("PHOTOSTAMP_EXTENSIONS"); val != "" {
		c.Extensions = val
	}

	if val := getenv("PHOTOSTAMP_RECURSIVE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Recursive = b
		}
	}

	if val := getenv("PHOTOSTAMP_DRY_RUN"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			c.DryRun = b
		}
	}

	if val := getenv("PHOTOSTAMP_VERIFY"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Verify = b
		}
	}

	if val := getenv("PHOTOSTAMP_EXIFTOOL"); val != "" {
		c.ExifToolPath = val
	}

	if val := getenv("PHOTOSTAMP_LOG_LEVEL"); val != "" {
		c.LogLevel = val
	}

	if val := getenv("PHOTOSTAMP_LOG_FORMAT"); val != "" {
		c.LogFormat = val
	}

	if val := getenv("PHOTOSTAMP_LOG_FILE"); val != "" {
		c.LogFile = val
	}

	if val := getenv("PHOTOSTAMP_REPORT"); val != "" {
		c.ReportPath = val
	}

	if val := getenv("PHOTOSTAMP_REPORT_FORMAT"); val != "" {
		c.ReportFormat = val
	}

	if val := getenv("PHOTOSTAMP_REPORT_GZIP"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			c.ReportGzip = b
		}
	}

	if val := getenv("PHOTOSTAMP_REPORT_S3"); val != "" {
		c.ReportS3 = val
	}

	if val := getenv("AWS_REGION"); val != "" && c.S3Region == Default().S3Region {
		c.S3Region = val
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(ParseExtensions(c.Extensions)) == 0 {
		return fmt.Errorf("at least one file extension is required")
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of: debug, info, warn, error")
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be one of: text, json")
	}

	switch strings.ToLower(c.ReportFormat) {
	case "json", "jsonl", "csv":
	default:
		return fmt.Errorf("report_format must be one of: json, jsonl, csv")
	}

	if c.ReportS3 != "" {
		if c.ReportPath == "" {
			return fmt.Errorf("report_s3 requires report_path")
		}
		if _, _, err := ParseS3URL(c.ReportS3); err != nil {
			return err
		}
	}

	if strings.TrimSpace(c.ExifToolPath) == "" {
		return fmt.Errorf("exiftool_path cannot be empty")
	}

	return nil
}

// ParseS3URL splits s3://bucket/key into its parts.
func ParseS3URL(raw string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(raw, "s3://")
	if !ok {
		return "", "", fmt.Errorf("invalid S3 URL %q: must start with s3://", raw)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid S3 URL %q: expected s3://bucket/key", raw)
	}
	return bucket, key, nil
}
