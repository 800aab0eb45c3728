package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/pipelinekit/stagegen/internal/logging"
	"github.com/pipelinekit/stagegen/internal/output"
	"github.com/pipelinekit/stagegen/internal/web/bootstrap"
	"github.com/pipelinekit/stagegen/internal/web/profiling"
	"github.com/pipelinekit/stagegen/internal/web/ratelimit"
)

// FileName is the base name of the configuration file
const FileName = "stagegen"

// EnvPrefix prefixes environment overrides, e.g. STAGEGEN_GENERATE_OUTPUT
const EnvPrefix = "STAGEGEN"

// Output targets
const (
	TargetDir = "dir"
	TargetS3  = "s3"
)

// Config represents the stagegen configuration
type Config struct {
	ProjectName string           `mapstructure:"project_name"`
	Log         LogConfig        `mapstructure:"log"`
	Generate    GenerateConfig   `mapstructure:"generate"`
	S3          output.S3Config  `mapstructure:"s3"`
	State       StateConfig      `mapstructure:"state"`
	Server      bootstrap.Config `mapstructure:"server"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// GenerateConfig represents artifact generation configuration
type GenerateConfig struct {
	// Declarations lists declaration files or directories, one round per file
	Declarations []string `mapstructure:"declarations"`
	Output       string   `mapstructure:"output"`
	Target       string   `mapstructure:"target"`
	CacheSize    int      `mapstructure:"cache_size"`
}

// StateConfig represents state tracker configuration
type StateConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// Defaults returns the configuration used when no file or override is present
func Defaults() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Generate: GenerateConfig{
			Declarations: []string{"declarations"},
			Output:       "build/generated",
			Target:       TargetDir,
			CacheSize:    256,
		},
		S3:    output.S3Config{Region: "us-east-1"},
		State: StateConfig{DataDir: "data"},
		Server: bootstrap.Config{
			Address:         ":18630",
			TokenTTL:        time.Hour,
			ShutdownTimeout: 30 * time.Second,
			RateLimit:       ratelimit.DefaultConfig(),
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("project_name", d.ProjectName)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.development", d.Log.Development)
	v.SetDefault("generate.declarations", d.Generate.Declarations)
	v.SetDefault("generate.output", d.Generate.Output)
	v.SetDefault("generate.target", d.Generate.Target)
	v.SetDefault("generate.cache_size", d.Generate.CacheSize)
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", d.S3.Region)
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.prefix", "")
	v.SetDefault("s3.use_ssl", false)
	v.SetDefault("state.data_dir", d.State.DataDir)
	v.SetDefault("server.address", d.Server.Address)
	v.SetDefault("server.base_url", "")
	v.SetDefault("server.component_id", "")
	v.SetDefault("server.app_auth_token", "")
	v.SetDefault("server.token_ttl", d.Server.TokenTTL)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.tls_cert_file", "")
	v.SetDefault("server.tls_key_file", "")
	v.SetDefault("server.rate_limit.enabled", d.Server.RateLimit.Enabled)
	v.SetDefault("server.rate_limit.backend", d.Server.RateLimit.Backend)
	v.SetDefault("server.rate_limit.limit", d.Server.RateLimit.Limit)
	v.SetDefault("server.rate_limit.window", d.Server.RateLimit.Window)
	v.SetDefault("server.rate_limit.redis_url", "")
	v.SetDefault("server.rate_limit.prefix", d.Server.RateLimit.Prefix)
	v.SetDefault("server.profiling.enabled", false)
	v.SetDefault("server.profiling.path", profiling.DefaultPath)
	v.SetDefault("server.profiling.block_rate", 0)
	v.SetDefault("server.profiling.mutex_fraction", 0)
}

// Load reads stagegen.yml or stagegen.yaml from the working directory, or
// configFile when given. A .env file in the working directory is loaded first,
// and STAGEGEN_ environment variables override file values.
func Load(configFile string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.Server.DataDir = config.State.DataDir

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// InProject checks if the working directory holds a stagegen configuration file
func InProject() bool {
	for _, name := range []string{FileName + ".yml", FileName + ".yaml"} {
		if _, err := os.Stat(name); err == nil {
			return true
		}
	}
	return false
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	switch cfg.Generate.Target {
	case TargetDir:
		if strings.TrimSpace(cfg.Generate.Output) == "" {
			return fmt.Errorf("generate.output is required for the %q target", TargetDir)
		}
	case TargetS3:
		if strings.TrimSpace(cfg.S3.Endpoint) == "" || strings.TrimSpace(cfg.S3.Bucket) == "" {
			return fmt.Errorf("s3.endpoint and s3.bucket are required for the %q target", TargetS3)
		}
	default:
		return fmt.Errorf("generate.target must be %q or %q, got: %s", TargetDir, TargetS3, cfg.Generate.Target)
	}

	if cfg.Generate.CacheSize < 0 {
		return fmt.Errorf("generate.cache_size must not be negative, got: %d", cfg.Generate.CacheSize)
	}
	if strings.TrimSpace(cfg.State.DataDir) == "" {
		return fmt.Errorf("state.data_dir is required")
	}
	if strings.TrimSpace(cfg.Server.Address) == "" {
		return fmt.Errorf("server.address is required")
	}
	if cfg.Server.BaseHTTPURL != "" && !strings.HasPrefix(cfg.Server.BaseHTTPURL, "http://") && !strings.HasPrefix(cfg.Server.BaseHTTPURL, "https://") {
		return fmt.Errorf("server.base_url must be an http(s) URL, got: %s", cfg.Server.BaseHTTPURL)
	}
	if (cfg.Server.TLSCertFile == "") != (cfg.Server.TLSKeyFile == "") {
		return fmt.Errorf("server.tls_cert_file and server.tls_key_file must be set together")
	}
	if err := cfg.Server.RateLimit.Validate(); err != nil {
		return fmt.Errorf("server.rate_limit: %w", err)
	}
	return nil
}

// WriteFile writes cfg as YAML to path. Secrets are left out.
func WriteFile(path string, cfg *Config) error {
	doc := map[string]interface{}{
		"project_name": cfg.ProjectName,
		"log": map[string]interface{}{
			"level":       cfg.Log.Level,
			"development": cfg.Log.Development,
		},
		"generate": map[string]interface{}{
			"declarations": cfg.Generate.Declarations,
			"output":       cfg.Generate.Output,
			"target":       cfg.Generate.Target,
			"cache_size":   cfg.Generate.CacheSize,
		},
		"state": map[string]interface{}{
			"data_dir": cfg.State.DataDir,
		},
		"server": map[string]interface{}{
			"address":          cfg.Server.Address,
			"base_url":         cfg.Server.BaseHTTPURL,
			"component_id":     cfg.Server.ComponentID,
			"token_ttl":        cfg.Server.TokenTTL.String(),
			"shutdown_timeout": cfg.Server.ShutdownTimeout.String(),
			"rate_limit": map[string]interface{}{
				"enabled": cfg.Server.RateLimit.Enabled,
				"backend": cfg.Server.RateLimit.Backend,
				"limit":   cfg.Server.RateLimit.Limit,
				"window":  cfg.Server.RateLimit.Window.String(),
				"prefix":  cfg.Server.RateLimit.Prefix,
			},
			"profiling": map[string]interface{}{
				"enabled": cfg.Server.Profiling.Enabled,
			},
		},
	}
	if cfg.Generate.Target == TargetS3 {
		doc["s3"] = map[string]interface{}{
			"endpoint": cfg.S3.Endpoint,
			"region":   cfg.S3.Region,
			"bucket":   cfg.S3.Bucket,
			"prefix":   cfg.S3.Prefix,
			"use_ssl":  cfg.S3.UseSSL,
		}
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
