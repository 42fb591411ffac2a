package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Storage backends.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds the complete application configuration, loadable from
// environment variables (ORDERTEXT_ prefix), flags, or YAML config files.
type Config struct {
	Addr      string `default:"127.0.0.1:8612" usage:"API server listen address"`
	Storage   StorageConfig
	Clipboard ClipboardConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
}

// StorageConfig selects and configures the order store backend.
type StorageConfig struct {
	Backend     string `default:"file" usage:"Order store backend: file, postgres or memory"`
	Path        string `default:"orders.json" usage:"Order blob path for the file backend"`
	Recover     bool   `default:"false" usage:"Move an unreadable blob aside and start empty" flag:"recover"`
	DatabaseURL string `usage:"PostgreSQL connection URL for the postgres backend (ORDERTEXT_STORAGE_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
}

// ClipboardConfig controls server-side clipboard copying of rendered texts.
type ClipboardConfig struct {
	Enabled bool `default:"true" usage:"Copy rendered texts to the system clipboard"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins []string `default:"*" usage:"Allowed CORS origins"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"1s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"10s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "ORDERTEXT",
		Files:     []string{"config.yaml", "/etc/ordertext/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	switch cfg.Storage.Backend {
	case BackendFile, BackendMemory:
	case BackendPostgres:
		if cfg.Storage.DatabaseURL == "" {
			return nil, errors.New("database URL is required: set ORDERTEXT_STORAGE_DATABASE_URL or DATABASE_URL")
		}
	default:
		return nil, errors.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	return &cfg, nil
}

// applyPlatformDefaults maps standard platform environment variables like
// DATABASE_URL and PORT onto the ORDERTEXT_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.Storage.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.Storage.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "127.0.0.1:8612" {
		c.Addr = "127.0.0.1:" + port
	}
}
