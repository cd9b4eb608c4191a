package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config stores environment-driven settings for the bridge process.
type Config struct {
	// ListenAddr is the address the websocket endpoint binds to.
	ListenAddr string `env:"BRIDGE_LISTEN_ADDR" envDefault:"127.0.0.1:9006"`
	// WSPath is the websocket endpoint path.
	WSPath string `env:"BRIDGE_WS_PATH" envDefault:"/bridge"`
	// LogLevel sets the logger level.
	LogLevel string `env:"BRIDGE_LOG_LEVEL" envDefault:"info"`
	// LogFormat selects the log output format ("json" or "text").
	LogFormat string `env:"BRIDGE_LOG_FORMAT" envDefault:"json"`
	// CatalogPath is the path to the YAML action catalog file.
	CatalogPath string `env:"BRIDGE_CATALOG" envDefault:"catalog.yaml"`
	// SiteURL is the base URL of the tracking site API.
	SiteURL string `env:"BRIDGE_SITE_URL"`
	// SiteToken authenticates outbound tracking site requests.
	SiteToken string `env:"BRIDGE_SITE_TOKEN,unset"`
	// LookupTimeout bounds entity store lookups.
	LookupTimeout time.Duration `env:"BRIDGE_LOOKUP_TIMEOUT" envDefault:"30s"`
	// ShutdownTimeout controls graceful shutdown duration.
	ShutdownTimeout time.Duration `env:"BRIDGE_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	// FramesPerSecond limits inbound frames per connection.
	FramesPerSecond int `env:"BRIDGE_FRAMES_PER_SECOND" envDefault:"40"`
}

// Load parses environment variables into Config.
func Load() (Config, error) {
	return env.ParseAs[Config]()
}
