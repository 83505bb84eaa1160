package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Tables TablesConfig `yaml:"tables" mapstructure:"tables"`
	BOM    BOMConfig    `yaml:"bom" mapstructure:"bom"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// TablesConfig locates the footprint substitution and defaults tables.
// An empty Dir means the directory of the input file.
type TablesConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// BOMConfig controls consolidation.
type BOMConfig struct {
	LegacyScale     bool   `yaml:"legacy_scale" mapstructure:"legacy_scale"`
	Listing         string `yaml:"listing" mapstructure:"listing"`
	RemoveUnknown   bool   `yaml:"remove_unknown" mapstructure:"remove_unknown"`
	StripUnderscore bool   `yaml:"strip_underscore" mapstructure:"strip_underscore"`
}

// OutputConfig selects the rendered formats and where files are written.
// An empty Dir means the directory of the input file.
type OutputConfig struct {
	Formats []string `yaml:"formats" mapstructure:"formats"`
	Dir     string   `yaml:"dir" mapstructure:"dir"`
}

// StoreConfig configures the BOM history database. Driver is sqlite or
// postgres; sqlite archives to Path, postgres to DatabaseURL. An empty
// location disables archiving.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// Enabled reports whether a history store is configured.
func (s StoreConfig) Enabled() bool {
	if s.Driver == "postgres" {
		return s.DatabaseURL != ""
	}
	return s.Path != ""
}

// ServerConfig configures the HTTP server. RateLimit caps POST /v1/bom
// requests per second across all clients; 0 disables limiting.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	RateLimit   float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst   int      `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("kibom")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("KIBOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("tables.dir", "")
	v.SetDefault("bom.legacy_scale", false)
	v.SetDefault("bom.listing", "reference")
	v.SetDefault("bom.remove_unknown", true)
	v.SetDefault("bom.strip_underscore", true)
	v.SetDefault("output.formats", []string{"tsv"})
	v.SetDefault("output.dir", "")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("store.min_conns", 0)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.rate_limit", 0.0)
	v.SetDefault("server.rate_burst", 10)

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

// Validate checks the settings a command mode depends on.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch strings.ToLower(strings.TrimSpace(c.BOM.Listing)) {
	case "", "reference", "value":
	default:
		errs = append(errs, "bom.listing must be reference or value")
	}

	switch c.Store.Driver {
	case "", "sqlite", "postgres":
	default:
		errs = append(errs, "store.driver must be sqlite or postgres")
	}

	switch mode {
	case "generate":
		if len(c.Output.Formats) == 0 {
			errs = append(errs, "output.formats is required")
		}
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
		if c.Server.RateLimit < 0 {
			errs = append(errs, "server.rate_limit must be >= 0")
		}
		if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
			errs = append(errs, "server.rate_burst must be >= 1 when rate limiting")
		}
	case "history":
		if c.Store.Driver == "postgres" {
			if c.Store.DatabaseURL == "" {
				errs = append(errs, "store.database_url is required")
			}
		} else if c.Store.Path == "" {
			errs = append(errs, "store.path is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
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
