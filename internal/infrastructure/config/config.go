package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultDataFileName is the store file created next to the executable.
const DefaultDataFileName = "tasks.json"

// Config holds all configuration for the application
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Security SecurityConfig `mapstructure:"security"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	StaticDir       string        `mapstructure:"static_dir"`
}

// StoreConfig holds task store configuration
type StoreConfig struct {
	DataFile  string `mapstructure:"data_file"`
	QueueSize int    `mapstructure:"queue_size"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	Filename string `mapstructure:"filename"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	CORSAllowedOrigins string        `mapstructure:"cors_allowed_origins"`
	RateLimitRequests  int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow    time.Duration `mapstructure:"rate_limit_window"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load loads configuration from various sources
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors)
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Logger.Format == "" {
		cfg.Logger.Format = "json"
		if cfg.App.IsDevelopment() {
			cfg.Logger.Format = "console"
		}
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "TaskStore")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")

	// Server defaults
	v.SetDefault("server.port", 4096)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.static_dir", "")

	// Store defaults
	v.SetDefault("store.data_file", defaultDataFile())
	v.SetDefault("store.queue_size", 16)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.filename", "")

	// Security defaults
	v.SetDefault("security.cors_allowed_origins", "*")
	v.SetDefault("security.rate_limit_requests", 100)
	v.SetDefault("security.rate_limit_window", "1m")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "APP_NAME")
	v.BindEnv("app.version", "APP_VERSION")
	v.BindEnv("app.environment", "APP_ENVIRONMENT")

	// Server
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.host", "SERVER_HOST")
	v.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	v.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")
	v.BindEnv("server.idle_timeout", "SERVER_IDLE_TIMEOUT")
	v.BindEnv("server.shutdown_timeout", "SERVER_SHUTDOWN_TIMEOUT")
	v.BindEnv("server.static_dir", "SERVER_STATIC_DIR")

	// Store
	v.BindEnv("store.data_file", "STORE_DATA_FILE")
	v.BindEnv("store.queue_size", "STORE_QUEUE_SIZE")

	// Logger
	v.BindEnv("logger.level", "LOG_LEVEL")
	v.BindEnv("logger.format", "LOG_FORMAT")
	v.BindEnv("logger.output", "LOG_OUTPUT")
	v.BindEnv("logger.filename", "LOG_FILENAME")

	// Security
	v.BindEnv("security.cors_allowed_origins", "CORS_ALLOWED_ORIGINS")
	v.BindEnv("security.rate_limit_requests", "RATE_LIMIT_REQUESTS")
	v.BindEnv("security.rate_limit_window", "RATE_LIMIT_WINDOW")

	// Metrics
	v.BindEnv("metrics.enabled", "ENABLE_METRICS")
}

// defaultDataFile places the store beside the running binary, falling back
// to the working directory when the executable path is unknown.
func defaultDataFile() string {
	exe, err := os.Executable()
	if err != nil {
		return DefaultDataFileName
	}
	return filepath.Join(filepath.Dir(exe), DefaultDataFileName)
}

func validateConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535")
	}

	if strings.TrimSpace(cfg.Store.DataFile) == "" {
		return fmt.Errorf("store data file is required")
	}

	if cfg.Store.QueueSize <= 0 {
		return fmt.Errorf("store queue size must be positive")
	}

	if cfg.Security.RateLimitRequests < 0 {
		return fmt.Errorf("rate limit requests must not be negative")
	}

	return nil
}

// GetAddr returns the listen address
func (cfg *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

// AllowedOrigins splits the comma separated CORS origin list
func (cfg *SecurityConfig) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(cfg.CORSAllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// IsDevelopment returns true if the environment is development
func (cfg *AppConfig) IsDevelopment() bool {
	return cfg.Environment == "development"
}
