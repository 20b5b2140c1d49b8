package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/inamate/canvasedit/internal/engine"
)

type Config struct {
	Port           int    `envconfig:"PORT" default:"8080"`
	DatabaseURL    string `envconfig:"DATABASE_URL"`
	JWTSecret      string `envconfig:"JWT_SECRET" default:"dev-secret-change-in-production"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`

	// Engine tuning
	HandleReach     float64 `envconfig:"HANDLE_REACH" default:"8"`
	SnapDegrees     float64 `envconfig:"SNAP_DEGREES" default:"15"`
	NudgeStep       float64 `envconfig:"NUDGE_STEP" default:"1"`
	NudgeCoarseStep float64 `envconfig:"NUDGE_COARSE_STEP" default:"10"`

	SaveInterval   time.Duration `envconfig:"SAVE_INTERVAL" default:"30s"`
	PreviewMaxSize int           `envconfig:"PREVIEW_MAX_SIZE" default:"2048"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Origins splits AllowedOrigins into its entries.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Level maps LogLevel to a slog level; unknown names mean info.
func (c *Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// EngineOptions returns the controller options for the configured tuning.
func (c *Config) EngineOptions() []engine.Option {
	return []engine.Option{
		engine.WithHandleReach(c.HandleReach),
		engine.WithSnapDegrees(c.SnapDegrees),
		engine.WithNudgeSteps(c.NudgeStep, c.NudgeCoarseStep),
	}
}
