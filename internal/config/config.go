package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// EngineURL is the base URL of the game engine (REST + websocket).
	EngineURL string `env:"ENGINE_URL" envDefault:"http://localhost:8000"`
	// GameID selects the game to watch.
	GameID string `env:"GAME_ID,required,notEmpty"`
	// AuthToken is the opaque bearer token for the engine's REST surface.
	AuthToken string `env:"AUTH_TOKEN"`
	// ListenAddr is where the viewer gateway serves.
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`
	// ReconnectDelay is the fixed wait between reconnect attempts.
	ReconnectDelay time.Duration `env:"RECONNECT_DELAY" envDefault:"3s"`
	// IndicatorTimeout force-clears a thinking indicator that never saw an
	// outcome event.
	IndicatorTimeout time.Duration `env:"INDICATOR_TIMEOUT" envDefault:"30s"`
}

// Load reads .env if present, then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
