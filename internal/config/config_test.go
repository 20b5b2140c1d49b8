package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/inamate/canvasedit/internal/engine"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.SaveInterval != 30*time.Second {
		t.Errorf("SaveInterval = %v, want 30s", cfg.SaveInterval)
	}
	if cfg.HandleReach != engine.DefaultHandleReach {
		t.Errorf("HandleReach = %v, want %v", cfg.HandleReach, engine.DefaultHandleReach)
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SNAP_DEGREES", "45")
	t.Setenv("SAVE_INTERVAL", "5s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 9000 || cfg.SnapDegrees != 45 || cfg.SaveInterval != 5*time.Second {
		t.Errorf("got %+v", cfg)
	}
	if cfg.Level() != slog.LevelDebug {
		t.Errorf("Level() = %v, want debug", cfg.Level())
	}
}

func TestLoad_BadValue(t *testing.T) {
	t.Setenv("PORT", "eighty")
	if _, err := Load(); err == nil {
		t.Error("expected error for non-numeric PORT")
	}
}

func TestConfig_Origins(t *testing.T) {
	cfg := &Config{AllowedOrigins: " http://a.test, ,http://b.test"}
	got := cfg.Origins()
	if len(got) != 2 || got[0] != "http://a.test" || got[1] != "http://b.test" {
		t.Errorf("Origins() = %v", got)
	}
}

func TestConfig_Level(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"warn", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"loud", slog.LevelInfo},
	}
	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.in}
		if got := cfg.Level(); got != tt.want {
			t.Errorf("Level(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConfig_EngineOptions(t *testing.T) {
	cfg := &Config{HandleReach: 12, SnapDegrees: 30, NudgeStep: 2, NudgeCoarseStep: 20}
	c := engine.NewController(engine.Transform{Width: 10, Height: 10}, nil, cfg.EngineOptions()...)
	if got := c.Handles().Reach; got != 12 {
		t.Errorf("reach = %v, want 12", got)
	}
}
