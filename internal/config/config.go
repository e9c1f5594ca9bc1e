package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Source     SourceConfig     `yaml:"source" mapstructure:"source"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// SourceConfig locates and tunes the nomination file.
type SourceConfig struct {
	Path             string  `yaml:"path" mapstructure:"path"`
	AllowBlankWinner bool    `yaml:"allow_blank_winner" mapstructure:"allow_blank_winner"`
	FetchTimeoutSecs int     `yaml:"fetch_timeout_secs" mapstructure:"fetch_timeout_secs"`
	FetchRetries     int     `yaml:"fetch_retries" mapstructure:"fetch_retries"`
	FetchRateLimit   float64 `yaml:"fetch_rate_limit" mapstructure:"fetch_rate_limit"`
	UserAgent        string  `yaml:"user_agent" mapstructure:"user_agent"`
}

// StoreConfig selects the repository backend.
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	DSN    string `yaml:"dsn" mapstructure:"dsn"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port                int      `yaml:"port" mapstructure:"port"`
	ReadTimeoutSecs     int      `yaml:"read_timeout_secs" mapstructure:"read_timeout_secs"`
	WriteTimeoutSecs    int      `yaml:"write_timeout_secs" mapstructure:"write_timeout_secs"`
	ShutdownTimeoutSecs int      `yaml:"shutdown_timeout_secs" mapstructure:"shutdown_timeout_secs"`
	RateLimit           float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst           int      `yaml:"rate_burst" mapstructure:"rate_burst"`
	CORSOrigins         []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// MonitoringConfig tunes health evaluation.
type MonitoringConfig struct {
	MaxSkippedRatio float64 `yaml:"max_skipped_ratio" mapstructure:"max_skipped_ratio"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DotEnvFile is read from the working directory before the environment.
const DotEnvFile = ".env"

// Load reads configuration from config.yaml, .env and the environment.
// Environment variables use the INTERVALS_ prefix; CSV_PATH and PORT are
// honored as aliases for source.path and server.port.
func Load() (*Config, error) {
	if err := LoadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("INTERVALS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, envs := range map[string][]string{
		"source.path": {"INTERVALS_SOURCE_PATH", "CSV_PATH"},
		"server.port": {"INTERVALS_SERVER_PORT", "PORT"},
	} {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", key)
		}
	}

	// Defaults
	v.SetDefault("source.path", "data/movielist.csv")
	v.SetDefault("source.allow_blank_winner", false)
	v.SetDefault("source.fetch_timeout_secs", 30)
	v.SetDefault("source.fetch_retries", 3)
	v.SetDefault("source.fetch_rate_limit", 0)
	v.SetDefault("source.user_agent", "producer-intervals/1.0")
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.dsn", ":memory:")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout_secs", 10)
	v.SetDefault("server.write_timeout_secs", 10)
	v.SetDefault("server.shutdown_timeout_secs", 10)
	v.SetDefault("server.rate_limit", 50)
	v.SetDefault("server.rate_burst", 100)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("monitoring.max_skipped_ratio", 0.5)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// LoadDotEnv exports the KEY=VALUE pairs of a dotenv file into the process
// environment, keeping each key's case. Variables that are already set win.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return eris.Wrapf(err, "config: stat %s", path)
	}

	env, err := gotenv.Read(path)
	if err != nil {
		return eris.Wrapf(err, "config: read %s", path)
	}

	for name, value := range env {
		if _, set := os.LookupEnv(name); set {
			continue
		}
		if err := os.Setenv(name, value); err != nil {
			return eris.Wrapf(err, "config: export %s", name)
		}
	}
	return nil
}

// Validate checks values that would otherwise fail late at startup.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "memory", "sqlite":
	default:
		return eris.Errorf("config: unsupported store driver %q (want memory or sqlite)", c.Store.Driver)
	}
	if strings.TrimSpace(c.Source.Path) == "" {
		return eris.New("config: source.path is required (INTERVALS_SOURCE_PATH or CSV_PATH)")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return eris.Errorf("config: invalid server port %d", c.Server.Port)
	}
	if c.Server.RateLimit < 0 || c.Server.RateBurst < 0 || c.Source.FetchRateLimit < 0 {
		return eris.New("config: rate limits must not be negative")
	}
	if c.Source.FetchRetries < 0 {
		return eris.New("config: source.fetch_retries must not be negative")
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
