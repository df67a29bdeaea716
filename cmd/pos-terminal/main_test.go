package main

import (
	"testing"
	"time"
)

func TestReadConfigDefaults(t *testing.T) {
	t.Setenv("POS_BACKEND_URL", "")
	t.Setenv("POS_METRICS_ADDR", "")
	t.Setenv("POS_SESSION_FILE", "")
	t.Setenv("POS_WS_URL", "")
	t.Setenv("POS_HEALTH_TIMEOUT", "")

	cfg := readConfig()
	if cfg.BackendURL != "http://localhost:8000/api" {
		t.Errorf("unexpected default backend URL: %q", cfg.BackendURL)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Errorf("unexpected default metrics addr: %q", cfg.MetricsAddr)
	}
	if cfg.WebsocketURL != "" {
		t.Errorf("websocket must be disabled by default, got %q", cfg.WebsocketURL)
	}
}

func TestReadConfigOverrides(t *testing.T) {
	t.Setenv("POS_BACKEND_URL", "https://pos.example.com/api")
	t.Setenv("POS_METRICS_ADDR", ":9191")
	t.Setenv("POS_SESSION_FILE", "/tmp/pos-session.json")
	t.Setenv("POS_WS_URL", "wss://pos.example.com/ws")
	t.Setenv("POS_HEALTH_TIMEOUT", "2s")

	cfg := readConfig()
	if cfg.BackendURL != "https://pos.example.com/api" {
		t.Errorf("backend URL override not applied: %q", cfg.BackendURL)
	}
	if cfg.MetricsAddr != ":9191" {
		t.Errorf("metrics addr override not applied: %q", cfg.MetricsAddr)
	}
	if cfg.SessionFile != "/tmp/pos-session.json" {
		t.Errorf("session file override not applied: %q", cfg.SessionFile)
	}
	if cfg.WebsocketURL != "wss://pos.example.com/ws" {
		t.Errorf("websocket override not applied: %q", cfg.WebsocketURL)
	}
	if cfg.HealthTimeout != 2*time.Second {
		t.Errorf("health timeout override not applied: %v", cfg.HealthTimeout)
	}
}

func TestReadConfigInvalidTimeoutFallsBack(t *testing.T) {
	t.Setenv("POS_HEALTH_TIMEOUT", "soon")

	cfg := readConfig()
	if cfg.HealthTimeout != 5*time.Second {
		t.Errorf("expected default timeout 5s, got %v", cfg.HealthTimeout)
	}
}
