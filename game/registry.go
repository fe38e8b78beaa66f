package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"dungeon-legends-server/catalog"
	"dungeon-legends-server/config"
	"dungeon-legends-server/deck"
	"dungeon-legends-server/gameerrors"
)

// MatchStore is the persistence boundary the registry writes through. A nil
// store disables persistence entirely; the game runs unchanged without it.
type MatchStore interface {
	SaveMatch(ctx context.Context, matchID string, data []byte) error
	LoadMatch(ctx context.Context, matchID string) ([]byte, error)
	InsertMatchResult(ctx context.Context, matchID, outcome string, mode string, roomsCleared, rounds, treasure int) error
}

// ParticipantSpec describes one seat requested at match creation.
type ParticipantSpec struct {
	Name      string           `json:"name"`
	UserID    string           `json:"userId,omitempty"`
	HeroType  catalog.HeroType `json:"heroType"`
	IsAI      bool             `json:"isAI"`
	AIProfile string           `json:"aiProfile,omitempty"`
}

// Registry owns every live match goroutine, keyed by match id. Completed
// matches stay registered and keep serving read-only snapshots until removed.
type Registry struct {
	mu      sync.Mutex
	matches map[string]*Match

	cfg       *config.Config
	publisher Publisher
	decider   AIDecider
	store     MatchStore
}

// NewRegistry creates an empty registry. store may be nil.
func NewRegistry(cfg *config.Config, pub Publisher, dec AIDecider, store MatchStore) *Registry {
	return &Registry{
		matches:   make(map[string]*Match),
		cfg:       cfg,
		publisher: pub,
		decider:   dec,
		store:     store,
	}
}

// StartMatch validates the requested seats, builds the match and starts its
// goroutine. Participants act in the order given here for the whole match.
func (r *Registry) StartMatch(specs []ParticipantSpec, mode GameMode) (*Match, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("a match needs at least one participant")
	}
	if mode == "" {
		mode = ModeCooperative
	}

	d := deck.New(r.cfg.DeckSize)
	participants := make([]*Participant, 0, len(specs))
	for _, spec := range specs {
		tmpl, ok := catalog.Hero(spec.HeroType)
		if !ok {
			return nil, fmt.Errorf("unknown hero type %q", spec.HeroType)
		}
		hand, err := d.DrawN(r.cfg.StartingHandSize)
		if err != nil {
			return nil, fmt.Errorf("dealing starting hand: %w", err)
		}
		profile := spec.AIProfile
		if spec.IsAI && profile == "" {
			profile = "normal"
		}
		name := spec.Name
		if name == "" {
			name = tmpl.Name
		}
		participants = append(participants, &Participant{
			ID:        uuid.NewString(),
			Name:      name,
			UserID:    spec.UserID,
			IsAI:      spec.IsAI,
			AIProfile: profile,
			Hero:      NewHero(tmpl),
			Hand:      hand,
		})
	}

	roomTemplates := catalog.Dungeon()
	rooms := make([]*Room, len(roomTemplates))
	for i, t := range roomTemplates {
		rooms[i] = NewRoom(t)
	}

	m := &Match{
		ID:                 uuid.NewString(),
		Mode:               mode,
		Status:             StatusActive,
		Participants:       participants,
		Rooms:              rooms,
		CurrentRoom:        0,
		CurrentParticipant: 0,
		TurnCounter:        1,
		RoundCounter:       1,
		ComboTally:         make(map[catalog.SpellSchool]int),
		comboFired:         make(map[catalog.SpellSchool]bool),
		Deck:               d,
		Config:             r.cfg,
		Requests:           make(chan Request),
		Done:               make(chan struct{}),
		quit:               make(chan struct{}),
		publisher:          r.publisher,
		decider:            r.decider,
		OnMatchEnd:         r.recordResult,
	}
	// Entry into the first room happens before anyone acts, so its event roll
	// (if any) is part of the initial broadcast state.
	m.enterRoom(rooms[0])

	r.mu.Lock()
	r.matches[m.ID] = m
	r.mu.Unlock()

	go m.Run()
	slog.Info("match started", "tag", "game", "match", m.ID, "participants", len(participants), "mode", string(mode))
	return m, nil
}

// Get returns the live match with the given id.
func (r *Registry) Get(matchID string) (*Match, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[matchID]
	return m, ok
}

// Save serializes a match through its goroutine and writes it to the store.
func (r *Registry) Save(ctx context.Context, matchID string) error {
	if r.store == nil {
		return fmt.Errorf("persistence is not configured")
	}
	m, ok := r.Get(matchID)
	if !ok {
		return gameerrors.ErrMatchNotFound
	}
	data, err := m.SaveSync(ctx)
	if err != nil {
		return err
	}
	return r.store.SaveMatch(ctx, matchID, data)
}

// Resume loads a saved match from the store and starts its goroutine. A match
// already live under the same id is returned as-is.
func (r *Registry) Resume(ctx context.Context, matchID string) (*Match, error) {
	if r.store == nil {
		return nil, fmt.Errorf("persistence is not configured")
	}
	if m, ok := r.Get(matchID); ok {
		return m, nil
	}
	data, err := r.store.LoadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	m, err := LoadMatch(data, r.cfg, r.publisher, r.decider)
	if err != nil {
		return nil, err
	}
	m.OnMatchEnd = r.recordResult

	r.mu.Lock()
	if existing, ok := r.matches[m.ID]; ok {
		r.mu.Unlock()
		return existing, nil
	}
	r.matches[m.ID] = m
	r.mu.Unlock()

	go m.Run()
	slog.Info("match resumed", "tag", "game", "match", m.ID)
	return m, nil
}

// Remove stops a match goroutine and forgets it.
func (r *Registry) Remove(matchID string) {
	r.mu.Lock()
	m, ok := r.matches[matchID]
	delete(r.matches, matchID)
	r.mu.Unlock()
	if ok {
		m.Stop()
	}
}

// StopAll terminates every match goroutine. Called on server shutdown.
func (r *Registry) StopAll() {
	r.mu.Lock()
	matches := make([]*Match, 0, len(r.matches))
	for _, m := range r.matches {
		matches = append(matches, m)
	}
	r.matches = make(map[string]*Match)
	r.mu.Unlock()
	for _, m := range matches {
		m.Stop()
	}
}

// recordResult persists the terminal outcome of a match. Runs on the match
// goroutine, so the database write happens on its own goroutine.
func (r *Registry) recordResult(m *Match, outcome string) {
	if r.store == nil {
		return
	}
	treasure := 0
	for _, p := range m.Participants {
		treasure += p.Hero.Treasure
	}
	roomsCleared := 0
	for _, room := range m.Rooms {
		if room.Completed {
			roomsCleared++
		}
	}
	matchID, mode, rounds := m.ID, string(m.Mode), m.RoundCounter
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.store.InsertMatchResult(ctx, matchID, outcome, mode, roomsCleared, rounds, treasure); err != nil {
			slog.Error("recording match result", "tag", "game", "match", matchID, "err", err)
		}
	}()
}
