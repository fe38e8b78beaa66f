package config

import "testing"

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.WSPort != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.WSPort)
	}
	if cfg.DeckSize != 40 || cfg.StartingHandSize != 5 || cfg.MaxHandSize != 7 {
		t.Errorf("unexpected deck defaults: %d/%d/%d", cfg.DeckSize, cfg.StartingHandSize, cfg.MaxHandSize)
	}
	if cfg.TurnLimitSec != 60 {
		t.Errorf("expected 60s turn limit, got %d", cfg.TurnLimitSec)
	}
	if len(cfg.AIProfiles) != 3 {
		t.Fatalf("expected 3 AI profiles, got %d", len(cfg.AIProfiles))
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("WS_PORT", "9999")
	t.Setenv("DECK_SIZE", "20")
	t.Setenv("AUTH_BASE_URL", "https://auth.example.com")
	t.Setenv("TURN_LIMIT_SEC", "not-a-number")

	cfg := Load()
	if cfg.WSPort != 9999 {
		t.Errorf("expected port override 9999, got %d", cfg.WSPort)
	}
	if cfg.DeckSize != 20 {
		t.Errorf("expected deck size override 20, got %d", cfg.DeckSize)
	}
	if cfg.AuthBaseURL != "https://auth.example.com" {
		t.Errorf("expected auth url override, got %q", cfg.AuthBaseURL)
	}
	if cfg.TurnLimitSec != 60 {
		t.Errorf("invalid override must keep the default, got %d", cfg.TurnLimitSec)
	}
}

func TestProfile_Lookup(t *testing.T) {
	cfg := Defaults()
	if p := cfg.Profile("hard"); p.MistakeChance != 5 {
		t.Errorf("expected hard profile, got %+v", p)
	}
	if p := cfg.Profile("nightmare"); p.Name != "normal" {
		t.Errorf("unknown profile must fall back to the middle tier, got %+v", p)
	}
}
