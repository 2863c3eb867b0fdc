package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"weathertrack.app/errors"
)

// Config represents the application configuration structure
type Config struct {
	Server   ServerConfig   `split_words:"true"`
	Database DatabaseConfig `split_words:"true"`
	Weather  WeatherConfig  `split_words:"true"`
	Media    MediaConfig    `split_words:"true"`
	Export   ExportConfig   `split_words:"true"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port int `envconfig:"SERVER_PORT" default:"8080"`
}

// DatabaseConfig contains database connection settings. Driver selects the
// backing store; everything above the repository layer is driver-agnostic.
type DatabaseConfig struct {
	Driver   string `envconfig:"DB_DRIVER" default:"postgres"`
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name     string `envconfig:"DB_NAME" default:"weathertrack"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	FilePath string `envconfig:"DB_FILE_PATH" default:"weathertrack.db"`
}

// GetDSN returns a formatted database connection string
func (d DatabaseConfig) GetDSN() string {
	if d.Driver == "sqlite" {
		return d.FilePath
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// WeatherConfig contains settings for the OpenWeather gateway
type WeatherConfig struct {
	APIKey         string `envconfig:"OPENWEATHER_API_KEY"`
	BaseURL        string `envconfig:"OPENWEATHER_BASE_URL" default:"https://api.openweathermap.org"`
	TimeoutSeconds int    `envconfig:"OPENWEATHER_TIMEOUT_SECONDS" default:"10"`
}

// MediaConfig contains settings for the optional media enrichment provider
type MediaConfig struct {
	YouTubeAPIKey  string `envconfig:"YOUTUBE_API_KEY"`
	TimeoutSeconds int    `envconfig:"YOUTUBE_TIMEOUT_SECONDS" default:"8"`
}

// ExportConfig contains record limits for the export renderer
type ExportConfig struct {
	DefaultLimit int `envconfig:"EXPORT_DEFAULT_LIMIT" default:"500"`
	MaxLimit     int `envconfig:"EXPORT_MAX_LIMIT" default:"1000"`
}

// LoadConfig loads and validates application configuration from environment variables
func LoadConfig() (*Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, errors.NewConfigurationError("error processing config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Weather.Validate(); err != nil {
		return err
	}
	if err := c.Export.Validate(); err != nil {
		return err
	}
	return nil
}

// Validate checks server configuration
func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return errors.NewConfigurationError("SERVER_PORT must be between 1 and 65535", nil)
	}
	return nil
}

// ValidateSSLMode validates the SSL mode configuration
func (d *DatabaseConfig) ValidateSSLMode() error {
	validSSLModes := []string{"disable", "require", "verify-ca", "verify-full"}
	for _, mode := range validSSLModes {
		if d.SSLMode == mode {
			return nil
		}
	}
	return errors.NewConfigurationError(
		fmt.Sprintf("DB_SSL_MODE must be one of: %s", strings.Join(validSSLModes, ", ")), nil)
}

// Validate checks database configuration
func (d *DatabaseConfig) Validate() error {
	if d.Driver != "postgres" && d.Driver != "sqlite" {
		return errors.NewConfigurationError("DB_DRIVER must be either 'postgres' or 'sqlite'", nil)
	}
	if d.Driver == "sqlite" {
		if d.FilePath == "" {
			return errors.NewConfigurationError("DB_FILE_PATH cannot be empty", nil)
		}
		return nil
	}
	if d.Host == "" {
		return errors.NewConfigurationError("DB_HOST cannot be empty", nil)
	}
	if d.Port < 1 || d.Port > 65535 {
		return errors.NewConfigurationError("DB_PORT must be between 1 and 65535", nil)
	}
	if d.User == "" {
		return errors.NewConfigurationError("DB_USER cannot be empty", nil)
	}
	if d.Name == "" {
		return errors.NewConfigurationError("DB_NAME cannot be empty", nil)
	}
	return d.ValidateSSLMode()
}

// Validate checks weather gateway configuration. The API key itself is checked
// by the gateway at construction so its absence surfaces as an upstream fault.
func (w *WeatherConfig) Validate() error {
	if w.BaseURL == "" {
		return errors.NewConfigurationError("OPENWEATHER_BASE_URL cannot be empty", nil)
	}
	if !strings.HasPrefix(w.BaseURL, "http://") && !strings.HasPrefix(w.BaseURL, "https://") {
		return errors.NewConfigurationError("OPENWEATHER_BASE_URL must start with http:// or https://", nil)
	}
	if w.TimeoutSeconds < 1 {
		return errors.NewConfigurationError("OPENWEATHER_TIMEOUT_SECONDS must be at least 1", nil)
	}
	return nil
}

// Validate checks export limits
func (e *ExportConfig) Validate() error {
	if e.DefaultLimit < 1 {
		return errors.NewConfigurationError("EXPORT_DEFAULT_LIMIT must be at least 1", nil)
	}
	if e.MaxLimit < e.DefaultLimit {
		return errors.NewConfigurationError("EXPORT_MAX_LIMIT cannot be below EXPORT_DEFAULT_LIMIT", nil)
	}
	return nil
}
