package game

import (
	"encoding/json"
	"fmt"

	"dungeon-legends-server/catalog"
	"dungeon-legends-server/config"
	"dungeon-legends-server/deck"
)

// savedMatch is the persisted form of a match. It carries every piece of data
// state and none of the runtime wiring; loading rebuilds channels and timers.
type savedMatch struct {
	Version            int                        `json:"version"`
	ID                 string                     `json:"id"`
	Mode               GameMode                   `json:"mode"`
	Status             MatchStatus                `json:"status"`
	Participants       []*Participant             `json:"participants"`
	Rooms              []*Room                    `json:"rooms"`
	CurrentRoom        int                        `json:"currentRoom"`
	CurrentParticipant int                        `json:"currentParticipant"`
	TurnCounter        int                        `json:"turnCounter"`
	RoundCounter       int                        `json:"roundCounter"`
	ComboTally         map[catalog.SpellSchool]int `json:"comboTally"`
	ComboFired         map[catalog.SpellSchool]bool `json:"comboFired"`
	Deck               *deck.Deck                 `json:"deck"`
}

const saveVersion = 1

// marshalState serializes the full match state. Must run on the match
// goroutine.
func (m *Match) marshalState() ([]byte, error) {
	return json.Marshal(savedMatch{
		Version:            saveVersion,
		ID:                 m.ID,
		Mode:               m.Mode,
		Status:             m.Status,
		Participants:       m.Participants,
		Rooms:              m.Rooms,
		CurrentRoom:        m.CurrentRoom,
		CurrentParticipant: m.CurrentParticipant,
		TurnCounter:        m.TurnCounter,
		RoundCounter:       m.RoundCounter,
		ComboTally:         m.ComboTally,
		ComboFired:         m.comboFired,
		Deck:               m.Deck,
	})
}

// LoadMatch rebuilds a runnable match from serialized state. The caller is
// expected to start Run in a goroutine, exactly as after a fresh start.
func LoadMatch(data []byte, cfg *config.Config, pub Publisher, dec AIDecider) (*Match, error) {
	var s savedMatch
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding saved match: %w", err)
	}
	if s.Version != saveVersion {
		return nil, fmt.Errorf("unsupported save version %d", s.Version)
	}
	if s.ID == "" || len(s.Participants) == 0 || len(s.Rooms) == 0 {
		return nil, fmt.Errorf("saved match %q is incomplete", s.ID)
	}
	if s.CurrentRoom < 0 || s.CurrentRoom >= len(s.Rooms) {
		return nil, fmt.Errorf("saved match %q has room index %d out of range", s.ID, s.CurrentRoom)
	}
	if s.CurrentParticipant < 0 || s.CurrentParticipant >= len(s.Participants) {
		return nil, fmt.Errorf("saved match %q has participant index %d out of range", s.ID, s.CurrentParticipant)
	}

	m := &Match{
		ID:                 s.ID,
		Mode:               s.Mode,
		Status:             s.Status,
		Participants:       s.Participants,
		Rooms:              s.Rooms,
		CurrentRoom:        s.CurrentRoom,
		CurrentParticipant: s.CurrentParticipant,
		TurnCounter:        s.TurnCounter,
		RoundCounter:       s.RoundCounter,
		ComboTally:         s.ComboTally,
		comboFired:         s.ComboFired,
		Deck:               s.Deck,
		Config:             cfg,
		Requests:           make(chan Request),
		Done:               make(chan struct{}),
		quit:               make(chan struct{}),
		publisher:          pub,
		decider:            dec,
	}
	if m.ComboTally == nil {
		m.ComboTally = make(map[catalog.SpellSchool]int)
	}
	if m.comboFired == nil {
		m.comboFired = make(map[catalog.SpellSchool]bool)
	}
	for _, p := range m.Participants {
		if p.Hero != nil && p.Hero.Cooldowns == nil {
			p.Hero.Cooldowns = make(map[catalog.AbilityID]int)
		}
	}
	return m, nil
}
