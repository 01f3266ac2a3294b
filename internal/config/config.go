package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/bstardust/exif-editor/pkg/common"
)

// EnvPrefix is the prefix of environment variables overriding the configuration
const EnvPrefix = "EXIF_EDITOR"

// DefaultFilename is the name offered for the edited image
const DefaultFilename = "image_modifiee.jpg"

// Config represents the application configuration
type Config struct {
	LogLevel string         `mapstructure:"log_level"`
	Server   ServerConfig   `mapstructure:"server"`
	Location LocationConfig `mapstructure:"location"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Output   OutputConfig   `mapstructure:"output"`
}

// ServerConfig represents the HTTP form host configuration
type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
}

// LocationConfig represents the IP geolocation lookup configuration
type LocationConfig struct {
	Endpoint   string        `mapstructure:"endpoint"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

// StorageConfig represents S3-compatible storage used for s3:// image paths
type StorageConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Prefix    string `mapstructure:"prefix"`
}

// OutputConfig represents the download artifact configuration
type OutputConfig struct {
	Filename string `mapstructure:"filename"`
}

// New creates a new configuration with default values
func New() *Config {
	return &Config{
		LogLevel: "info",
		Server: ServerConfig{
			Addr:           ":8080",
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			MaxUploadBytes: 32 << 20,
		},
		Location: LocationConfig{
			Endpoint:   "https://ipinfo.io/json",
			Timeout:    5 * time.Second,
			MaxRetries: 2,
		},
		Storage: StorageConfig{
			Endpoint: "s3.amazonaws.com",
			Region:   "us-east-1",
			UseSSL:   true,
		},
		Output: OutputConfig{
			Filename: DefaultFilename,
		},
	}
}

// Load reads the configuration from an optional file and EXIF_EDITOR_*
// environment variables on top of the defaults. An empty path only
// applies the environment.
func Load(path string) (*Config, error) {
	cfg := New()

	v := viper.New()
	setDefaults(v, cfg)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) {
				return nil, common.NewConfigError("config file not found: " + path)
			}
			return nil, common.NewConfigError("failed to read config file " + path + ": " + err.Error())
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, common.NewConfigError("failed to decode configuration: " + err.Error())
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so environment variables can override
// keys that are absent from the config file
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.read_timeout", cfg.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", cfg.Server.WriteTimeout)
	v.SetDefault("server.max_upload_bytes", cfg.Server.MaxUploadBytes)
	v.SetDefault("location.endpoint", cfg.Location.Endpoint)
	v.SetDefault("location.timeout", cfg.Location.Timeout)
	v.SetDefault("location.max_retries", cfg.Location.MaxRetries)
	v.SetDefault("storage.endpoint", cfg.Storage.Endpoint)
	v.SetDefault("storage.region", cfg.Storage.Region)
	v.SetDefault("storage.access_key", cfg.Storage.AccessKey)
	v.SetDefault("storage.secret_key", cfg.Storage.SecretKey)
	v.SetDefault("storage.use_ssl", cfg.Storage.UseSSL)
	v.SetDefault("storage.prefix", cfg.Storage.Prefix)
	v.SetDefault("output.filename", cfg.Output.Filename)
}

// Validate checks the configuration for values the program cannot run with
func (c *Config) Validate() error {
	if c.Output.Filename == "" {
		return common.NewConfigError("output filename cannot be empty")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return common.NewConfigError("server max upload size must be positive")
	}
	if c.Location.Timeout <= 0 {
		return common.NewConfigError("location timeout must be positive")
	}
	if c.Location.MaxRetries < 0 {
		return common.NewConfigError("location max retries cannot be negative")
	}
	return nil
}
