// Package config loads the site builder configuration from a YAML file
// with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"sitebuilder/internal/imagegen"
	"sitebuilder/internal/publish"
	"sitebuilder/internal/service"
	"sitebuilder/internal/storage"
)

// DriverMongo selects the MongoDB project store.
const DriverMongo = "mongo"

// Publish targets.
const (
	PublishNone = ""
	PublishDisk = "disk"
	PublishS3   = "s3"
)

// Config is the complete application configuration.
type Config struct {
	DataDir  string         `yaml:"data_dir"`
	Storage  StorageConfig  `yaml:"storage"`
	HTTP     HTTPConfig     `yaml:"http"`
	ImageGen ImageGenConfig `yaml:"imagegen"`
	Publish  PublishConfig  `yaml:"publish"`

	// Autosave is a cron spec; empty disables autosave.
	Autosave string `yaml:"autosave"`
}

type StorageConfig struct {
	Driver   string `yaml:"driver"`   // sqlite, mysql, postgres or mongo
	DSN      string `yaml:"dsn"`      // file path for sqlite, URI otherwise
	Database string `yaml:"database"` // mongo database name
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`

	// Desktop also serves the API and the MCP endpoint while the desktop
	// app runs, so agents can edit the open document.
	Desktop bool `yaml:"desktop"`
}

type ImageGenConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"-"` // environment or keychain only
}

type PublishConfig struct {
	Target string           `yaml:"target"` // "", disk or s3
	Dir    string           `yaml:"dir"`
	S3     publish.S3Config `yaml:"s3"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	dataDir := defaultDataDir()
	return &Config{
		DataDir: dataDir,
		Storage: StorageConfig{
			Driver:   storage.DriverSQLite,
			DSN:      filepath.Join(dataDir, "sitebuilder.db"),
			Database: "websitebuilder",
		},
		HTTP: HTTPConfig{Addr: ":8001"},
		ImageGen: ImageGenConfig{
			BaseURL: imagegen.DefaultBaseURL,
			Model:   imagegen.DefaultModel,
		},
		Publish: PublishConfig{
			Target: PublishDisk,
			Dir:    filepath.Join(dataDir, "published"),
		},
		Autosave: service.DefaultAutosaveSpec,
	}
}

func defaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".sitebuilder"
	}
	return filepath.Join(homeDir, ".local", "share", "sitebuilder")
}

// DefaultPath is ~/.config/sitebuilder/config.yaml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "sitebuilder", "config.yaml")
}

// Load reads the configuration from path and applies environment
// overrides. An empty path means DefaultPath, which may be missing.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.Getenv)
}

// LoadWithEnv is Load with a custom environment lookup.
func LoadWithEnv(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()

	optional := path == ""
	if optional {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case optional && errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.applyEnv(getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides file values. MONGO_URL and DB_NAME select the Mongo
// store, matching the original backend's environment.
func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("MONGO_URL"); v != "" {
		c.Storage.Driver = DriverMongo
		c.Storage.DSN = v
	}
	if v := getenv("DB_NAME"); v != "" {
		c.Storage.Database = v
	}
	if v := getenv("SITEBUILDER_STORAGE_DRIVER"); v != "" {
		c.Storage.Driver = v
	}
	if v := getenv("SITEBUILDER_STORAGE_DSN"); v != "" {
		c.Storage.DSN = v
	}
	if v := getenv("SITEBUILDER_HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := getenv("SITEBUILDER_AUTOSAVE"); v != "" {
		c.Autosave = v
	}
	if v := getenv("GEMINI_API_KEY"); v != "" {
		c.ImageGen.APIKey = v
	}
	if v := getenv("AWS_ACCESS_KEY_ID"); v != "" {
		c.Publish.S3.AccessKeyID = v
	}
	if v := getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
		c.Publish.S3.SecretAccessKey = v
	}
	if v := getenv("AWS_SESSION_TOKEN"); v != "" {
		c.Publish.S3.SessionToken = v
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case storage.DriverSQLite, storage.DriverMySQL, storage.DriverPostgres, DriverMongo:
	default:
		return fmt.Errorf("storage.driver: unsupported driver %q", c.Storage.Driver)
	}
	if strings.TrimSpace(c.Storage.DSN) == "" {
		return fmt.Errorf("storage.dsn is required")
	}
	if c.Storage.Driver == DriverMongo && c.Storage.Database == "" {
		return fmt.Errorf("storage.database is required for mongo")
	}

	switch c.Publish.Target {
	case PublishNone:
	case PublishDisk:
		if c.Publish.Dir == "" {
			return fmt.Errorf("publish.dir is required for disk publishing")
		}
	case PublishS3:
		if c.Publish.S3.Bucket == "" {
			return fmt.Errorf("publish.s3.bucket is required for s3 publishing")
		}
	default:
		return fmt.Errorf("publish.target: unsupported target %q", c.Publish.Target)
	}
	return nil
}

// Save writes the configuration as YAML. Secrets are never written.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
