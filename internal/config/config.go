package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	GamesDir string     `env:"GAMES_DIR" envDefault:"../games/dist"`

	// RedisURL switches the live relay from in-process to Redis pub/sub.
	RedisURL string `env:"REDIS_URL"`

	// WSOriginPatterns restricts websocket origins. Empty accepts any origin.
	WSOriginPatterns []string      `env:"WS_ORIGIN_PATTERNS" envSeparator:","`
	WSSessionTimeout time.Duration `env:"WS_SESSION_TIMEOUT" envDefault:"2h"`

	CountdownTicks      int           `env:"COUNTDOWN_TICKS" envDefault:"3"`
	CountdownInterval   time.Duration `env:"COUNTDOWN_INTERVAL" envDefault:"1s"`
	QuizRevealDelay     time.Duration `env:"QUIZ_REVEAL_DELAY" envDefault:"1s"`
	SentenceRevealDelay time.Duration `env:"SENTENCE_REVEAL_DELAY" envDefault:"1500ms"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.CountdownTicks < 0 {
		return nil, fmt.Errorf("COUNTDOWN_TICKS must not be negative, got %d", cfg.CountdownTicks)
	}
	return &cfg, nil
}
