package config

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
)

// AIProfile holds the tuning for one AI difficulty tier.
type AIProfile struct {
	Name          string `json:"name"`
	DelayMinMS    int    `json:"delay_min_ms"`
	DelayMaxMS    int    `json:"delay_max_ms"`
	MistakeChance int    `json:"mistake_chance"` // 0-100, probability to pick a random legal action
}

// Config holds all configurable server and game parameters.
type Config struct {
	WSPort           int `json:"ws_port"`
	DeckSize         int `json:"deck_size"`
	StartingHandSize int `json:"starting_hand_size"`
	MaxHandSize      int `json:"max_hand_size"`
	EventChance      int `json:"event_chance"` // 0-100, chance of a narrative event on entering a non-boss room
	BossPatternEvery int `json:"boss_pattern_every"`
	TurnLimitSec     int `json:"turn_limit_sec"`     // current participant auto-passes after this; 0 disables
	IdleTimeoutSec   int `json:"idle_timeout_sec"`   // connections without a ping for this long are reaped
	ManaRegenPerTurn int `json:"mana_regen_per_turn"`

	// AuthBaseURL is the external identity service base URL used for JWKS
	// validation of connection tokens.
	AuthBaseURL string `json:"auth_base_url"`

	// DatabaseURL enables the pgx match store when set; empty disables persistence.
	DatabaseURL string `json:"database_url"`

	// AIProfiles lists the difficulty tiers, keyed by Name (easy, normal, hard).
	AIProfiles []AIProfile `json:"ai_profiles"`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		WSPort:           8080,
		DeckSize:         40,
		StartingHandSize: 5,
		MaxHandSize:      7,
		EventChance:      20,
		BossPatternEvery: 3,
		TurnLimitSec:     60,
		IdleTimeoutSec:   300,
		ManaRegenPerTurn: 1,
		AIProfiles: []AIProfile{
			{Name: "easy", DelayMinMS: 2000, DelayMaxMS: 3000, MistakeChance: 20},
			{Name: "normal", DelayMinMS: 1000, DelayMaxMS: 2000, MistakeChance: 10},
			{Name: "hard", DelayMinMS: 500, DelayMaxMS: 1000, MistakeChance: 5},
		},
	}
}

// Load reads configuration from an optional config.json file,
// then applies environment variable overrides. Fields not set
// in either source retain their default values.
func Load() *Config {
	cfg := Defaults()

	if f, err := os.Open("config.json"); err == nil {
		defer f.Close()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			log.Printf("Warning: failed to parse config.json: %v", err)
		}
	}

	overrideInt(&cfg.WSPort, "WS_PORT")
	overrideInt(&cfg.DeckSize, "DECK_SIZE")
	overrideInt(&cfg.StartingHandSize, "STARTING_HAND_SIZE")
	overrideInt(&cfg.MaxHandSize, "MAX_HAND_SIZE")
	overrideInt(&cfg.EventChance, "EVENT_CHANCE")
	overrideInt(&cfg.BossPatternEvery, "BOSS_PATTERN_EVERY")
	overrideInt(&cfg.TurnLimitSec, "TURN_LIMIT_SEC")
	overrideInt(&cfg.IdleTimeoutSec, "IDLE_TIMEOUT_SEC")
	overrideInt(&cfg.ManaRegenPerTurn, "MANA_REGEN_PER_TURN")
	overrideString(&cfg.AuthBaseURL, "AUTH_BASE_URL")
	overrideString(&cfg.DatabaseURL, "DATABASE_URL")

	return cfg
}

// Profile returns the AI profile with the given name, falling back to the
// middle tier when the name is unknown.
func (c *Config) Profile(name string) AIProfile {
	for _, p := range c.AIProfiles {
		if p.Name == name {
			return p
		}
	}
	if len(c.AIProfiles) > 0 {
		return c.AIProfiles[len(c.AIProfiles)/2]
	}
	return AIProfile{Name: "normal", DelayMinMS: 1000, DelayMaxMS: 2000, MistakeChance: 10}
}

func overrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*field = n
		} else {
			log.Printf("Warning: invalid value for %s: %q", envKey, val)
		}
	}
}

func overrideString(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}
