package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Content backends.
const (
	BackendSanity    = "sanity"
	BackendFirestore = "firestore"
	BackendSnapshot  = "snapshot"
)

// Config holds all process-wide settings. It is built once at startup and passed
// down; nothing else reads the environment.
type Config struct {
	Service   ServiceConfig   `mapstructure:"service"`
	Content   ContentConfig   `mapstructure:"content"`
	Sanity    SanityConfig    `mapstructure:"sanity"`
	Firestore FirestoreConfig `mapstructure:"firestore"`
	Export    ExportConfig    `mapstructure:"export"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServiceConfig struct {
	Name    string `mapstructure:"name"`
	Port    int    `mapstructure:"port"`
	Debug   bool   `mapstructure:"debug"`
	BaseURL string `mapstructure:"base_url"`
}

type ContentConfig struct {
	Backend string        `mapstructure:"backend"`
	Timeout time.Duration `mapstructure:"timeout"`
	// SnapshotPath is the JSON dataset read by the snapshot backend.
	SnapshotPath string `mapstructure:"snapshot_path"`
}

type SanityConfig struct {
	ProjectID  string `mapstructure:"project_id"`
	Dataset    string `mapstructure:"dataset"`
	APIVersion string `mapstructure:"api_version"`
	UseCDN     bool   `mapstructure:"use_cdn"`
	Token      string `mapstructure:"token"`
	// APIHost overrides the project API host, e.g. for a local proxy.
	APIHost string `mapstructure:"api_host"`
}

type FirestoreConfig struct {
	CredentialsFile string `mapstructure:"credentials_file"`
	ProjectID       string `mapstructure:"project_id"`
	BucketName      string `mapstructure:"bucket_name"`
}

type ExportConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// envBindings maps config keys to the environment variables deployments
// already use.
var envBindings = map[string]string{
	"service.port":               "PORT",
	"service.debug":              "DEBUG",
	"service.base_url":           "BASE_URL",
	"content.backend":            "CONTENT_BACKEND",
	"content.snapshot_path":      "CONTENT_SNAPSHOT_PATH",
	"sanity.project_id":          "SANITY_PROJECT_ID",
	"sanity.dataset":             "SANITY_DATASET",
	"sanity.api_version":         "SANITY_API_VERSION",
	"sanity.use_cdn":             "SANITY_USE_CDN",
	"sanity.token":               "SANITY_TOKEN",
	"sanity.api_host":            "SANITY_API_HOST",
	"firestore.credentials_file": "FIREBASE_CREDENTIALS_FILE",
	"firestore.project_id":       "FIREBASE_PROJECT_ID",
	"firestore.bucket_name":      "FIREBASE_BUCKET_NAME",
	"export.output_dir":          "EXPORT_OUTPUT_DIR",
	"logging.level":              "LOG_LEVEL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.name", "euclones-site")
	v.SetDefault("service.port", 8080)
	v.SetDefault("service.debug", false)
	v.SetDefault("service.base_url", "")
	v.SetDefault("content.backend", BackendSanity)
	v.SetDefault("content.timeout", 10*time.Second)
	v.SetDefault("sanity.dataset", "production")
	v.SetDefault("sanity.api_version", "2023-05-03")
	v.SetDefault("sanity.use_cdn", false)
	v.SetDefault("export.output_dir", "public")
	v.SetDefault("logging.level", "info")
}

// Load builds the Config from defaults, an optional YAML file, .env and the
// environment, in increasing order of precedence. An explicit cfgFile that does
// not exist is an error; a missing default config.yaml is not.
func Load(cfgFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("SITE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, "SITE_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || cfgFile != "" {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// ValidationError names the offending key.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}

func (c *Config) Validate() error {
	if c.Service.Port < 1 || c.Service.Port > 65535 {
		return &ValidationError{Field: "service.port", Message: fmt.Sprintf("invalid port: %d", c.Service.Port)}
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return &ValidationError{Field: "logging.level", Message: fmt.Sprintf("unknown level %q", c.Logging.Level)}
	}
	if c.Content.Timeout <= 0 {
		return &ValidationError{Field: "content.timeout", Message: "must be positive"}
	}

	switch c.Content.Backend {
	case BackendSanity:
		if c.Sanity.ProjectID == "" {
			return &ValidationError{Field: "sanity.project_id", Message: "is required (set SANITY_PROJECT_ID)"}
		}
		if c.Sanity.Dataset == "" {
			return &ValidationError{Field: "sanity.dataset", Message: "is required"}
		}
	case BackendFirestore:
		if c.Firestore.CredentialsFile == "" {
			return &ValidationError{Field: "firestore.credentials_file", Message: "is required (set FIREBASE_CREDENTIALS_FILE)"}
		}
	case BackendSnapshot:
		if c.Content.SnapshotPath == "" {
			return &ValidationError{Field: "content.snapshot_path", Message: "is required for the snapshot backend"}
		}
	default:
		return &ValidationError{Field: "content.backend", Message: fmt.Sprintf("unknown backend %q", c.Content.Backend)}
	}
	return nil
}
