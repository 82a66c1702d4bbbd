package config

import "time"

// Store drivers understood by credstore.Open.
const (
	StoreSQLite = "sqlite"
	StoreBolt   = "bolt"
	StoreMemory = "memory"
)

// Config holds runtime settings for the campus client.
//
// Fields:
//   - ServerURL: base URL of the REST backend.
//   - RequestTimeout: per-call deadline enforced by the HTTP gateway.
//   - StoreDriver / StorePath: where the access credential is persisted.
//   - InstitutionalDomain: email domain accepted at sign-up ("edu" accepts any *.edu).
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	ServerURL           string        `env:"SERVER_URL"`
	RequestTimeout      time.Duration `env:"REQUEST_TIMEOUT"`
	StoreDriver         string        `env:"STORE_DRIVER"`
	StorePath           string        `env:"STORE_PATH"`
	InstitutionalDomain string        `env:"INSTITUTIONAL_DOMAIN"`
	OnlineCheckInterval time.Duration `env:"ONLINE_CHECK_INTERVAL"`
	LogLevel            string        `env:"LOG_LEVEL"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8000"
	c.RequestTimeout = 10 * time.Second
	c.StoreDriver = StoreSQLite
	c.StorePath = "session.db"
	c.InstitutionalDomain = "edu"
	c.OnlineCheckInterval = 3 * time.Second
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
