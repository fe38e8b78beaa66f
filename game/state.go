package game

import (
	"dungeon-legends-server/catalog"
	"dungeon-legends-server/deck"
)

// HeroView is the client-facing representation of a hero.
type HeroView struct {
	Type          catalog.HeroType `json:"type"`
	Name          string           `json:"name"`
	CurrentHealth int              `json:"currentHealth"`
	MaxHealth     int              `json:"maxHealth"`
	CurrentMana   int              `json:"currentMana"`
	MaxMana       int              `json:"maxMana"`
	Attack        int              `json:"attack"`
	Defense       int              `json:"defense"`
	Special       catalog.AbilityID `json:"special"`
	SpecialReady  bool             `json:"specialReady"`
	Effects       []Effect         `json:"effects"`
	Weapon        string           `json:"weapon,omitempty"`
	Armor         string           `json:"armor,omitempty"`
	Treasure      int              `json:"treasure"`
}

// ParticipantView is the client-facing representation of one seat.
type ParticipantView struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	IsAI  bool        `json:"isAI"`
	Hero  HeroView    `json:"hero"`
	Hand  []deck.Card `json:"hand"`
}

// EnemyView is the client-facing representation of a room's encounter.
type EnemyView struct {
	Name          string   `json:"name"`
	CurrentHealth int      `json:"currentHealth"`
	MaxHealth     int      `json:"maxHealth"`
	Attack        int      `json:"attack"`
	Boss          bool     `json:"boss"`
	Effects       []Effect `json:"effects"`
}

// EventView is a pending event with its choice texts.
type EventView struct {
	CardID   string   `json:"cardId"`
	Story    string   `json:"story"`
	Choices  []string `json:"choices"`
	Resolved bool     `json:"resolved"`
}

// RoomView is the client-facing representation of the current room.
type RoomView struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Type        catalog.RoomType `json:"type"`
	Completed   bool             `json:"completed"`
	Enemy       *EnemyView       `json:"enemy,omitempty"`
	Challenge   *Challenge       `json:"challenge,omitempty"`
	Event       *EventView       `json:"event,omitempty"`
}

// Snapshot is the full match view broadcast to every room member and handed
// to the AI decision module. It carries no engine internals.
type Snapshot struct {
	MatchID            string                 `json:"matchId"`
	Status             MatchStatus            `json:"status"`
	Mode               GameMode               `json:"mode"`
	CurrentRoom        int                    `json:"currentRoom"`
	RoomCount          int                    `json:"roomCount"`
	CurrentParticipant int                    `json:"currentParticipant"`
	TurnCounter        int                    `json:"turnCounter"`
	RoundCounter       int                    `json:"roundCounter"`
	Participants       []ParticipantView      `json:"participants"`
	Room               RoomView               `json:"room"`
	ComboTally         map[string]int         `json:"comboTally"`
	DeckRemaining      int                    `json:"deckRemaining"`
}

// Snapshot builds the broadcast view of the match. Must run on the match
// goroutine (or with the match held exclusively).
func (m *Match) Snapshot() Snapshot {
	s := Snapshot{
		MatchID:            m.ID,
		Status:             m.Status,
		Mode:               m.Mode,
		CurrentRoom:        m.CurrentRoom,
		RoomCount:          len(m.Rooms),
		CurrentParticipant: m.CurrentParticipant,
		TurnCounter:        m.TurnCounter,
		RoundCounter:       m.RoundCounter,
		Participants:       make([]ParticipantView, len(m.Participants)),
		Room:               buildRoomView(m.Rooms[m.CurrentRoom]),
		ComboTally:         make(map[string]int, len(m.ComboTally)),
		DeckRemaining:      m.Deck.Remaining(),
	}
	for school, count := range m.ComboTally {
		s.ComboTally[string(school)] = count
	}
	for i, p := range m.Participants {
		s.Participants[i] = buildParticipantView(p)
	}
	return s
}

func buildParticipantView(p *Participant) ParticipantView {
	hand := p.Hand
	if hand == nil {
		hand = []deck.Card{}
	}
	return ParticipantView{
		ID:   p.ID,
		Name: p.Name,
		IsAI: p.IsAI,
		Hero: buildHeroView(p.Hero),
		Hand: hand,
	}
}

func buildHeroView(h *Hero) HeroView {
	effects := h.Effects
	if effects == nil {
		effects = []Effect{}
	}
	v := HeroView{
		Type:          h.Type,
		Name:          h.Name,
		CurrentHealth: h.CurrentHealth,
		MaxHealth:     h.MaxHealth,
		CurrentMana:   h.CurrentMana,
		MaxMana:       h.MaxMana,
		Attack:        h.TotalAttack(),
		Defense:       h.TotalDefense(),
		Special:       h.Special,
		SpecialReady:  h.Cooldowns[h.Special] == 0,
		Effects:       effects,
		Treasure:      h.Treasure,
	}
	if h.Weapon != nil {
		v.Weapon = h.Weapon.Card.Name
	}
	if h.Armor != nil {
		v.Armor = h.Armor.Card.Name
	}
	return v
}

func buildRoomView(r *Room) RoomView {
	v := RoomView{
		Name:        r.Name,
		Description: r.Description,
		Type:        r.Type,
		Completed:   r.Completed,
		Challenge:   r.Challenge,
	}
	if r.Enemy != nil {
		effects := r.Enemy.Effects
		if effects == nil {
			effects = []Effect{}
		}
		v.Enemy = &EnemyView{
			Name:          r.Enemy.Name,
			CurrentHealth: r.Enemy.CurrentHealth,
			MaxHealth:     r.Enemy.MaxHealth,
			Attack:        r.Enemy.Attack,
			Boss:          r.Enemy.Boss,
			Effects:       effects,
		}
	}
	if r.Event != nil {
		if tmpl, ok := catalog.Card(r.Event.CardID); ok {
			ev := &EventView{CardID: r.Event.CardID, Story: tmpl.Story, Resolved: r.Event.Resolved}
			for _, c := range tmpl.Choices {
				ev.Choices = append(ev.Choices, c.Text)
			}
			v.Event = ev
		}
	}
	return v
}

// LegalActions enumerates every action the current participant could take
// right now: the candidate set handed to the AI decision module. Must run on
// the match goroutine.
func (m *Match) LegalActions() []Action {
	if m.Status != StatusActive {
		return nil
	}
	p := m.Participants[m.CurrentParticipant]
	room := m.Rooms[m.CurrentRoom]

	actions := []Action{{Kind: ActionPass, TargetIndex: -1}}
	actions = append(actions, Action{Kind: ActionDefend, TargetIndex: -1})

	if room.Enemy.Alive() {
		actions = append(actions, Action{Kind: ActionAttack, TargetIndex: -1})
	}
	if room.Challenge != nil && !room.Completed {
		actions = append(actions, Action{Kind: ActionChallenge, TargetIndex: -1})
	}
	if room.Event != nil && !room.Event.Resolved {
		if tmpl, ok := catalog.Card(room.Event.CardID); ok {
			for i, choice := range tmpl.Choices {
				if choice.TreasureCost > 0 && p.Hero.Treasure < choice.TreasureCost {
					continue
				}
				actions = append(actions, Action{Kind: ActionEventChoice, ChoiceIndex: i, TargetIndex: -1})
			}
		}
	}

	if tmpl, ok := catalog.Hero(p.Hero.Type); ok {
		ability := tmpl.Special
		if p.Hero.Cooldowns[ability.ID] == 0 && p.Hero.CurrentMana >= ability.ManaCost {
			if a, ok := m.specialCandidate(p, room, ability); ok {
				actions = append(actions, a)
			}
		}
	}

	for i, card := range p.Hand {
		if card.ManaCost > p.Hero.CurrentMana {
			continue
		}
		if a, ok := m.cardCandidate(p, room, i, card.CardID); ok {
			actions = append(actions, a)
		}
	}
	return actions
}

// specialCandidate resolves a usable target for the hero's special, if any.
func (m *Match) specialCandidate(p *Participant, room *Room, ability catalog.Ability) (Action, bool) {
	switch ability.Target {
	case catalog.TargetEnemy:
		if room.Enemy.Alive() {
			return Action{Kind: ActionSpecial, TargetIndex: -1}, true
		}
	case catalog.TargetAlly:
		if ability.ID == catalog.ShieldWall {
			for i, ally := range m.Participants {
				if ally != p && ally.Hero.Alive() {
					return Action{Kind: ActionSpecial, TargetIndex: i}, true
				}
			}
			return Action{}, false
		}
		return Action{Kind: ActionSpecial, TargetIndex: -1}, true
	default:
		return Action{Kind: ActionSpecial, TargetIndex: -1}, true
	}
	return Action{}, false
}

// cardCandidate reports whether the card at hand index i is playable and with
// what default target.
func (m *Match) cardCandidate(p *Participant, room *Room, i int, cardID string) (Action, bool) {
	tmpl, ok := catalog.Card(cardID)
	if !ok {
		return Action{}, false
	}
	switch tmpl.Kind {
	case catalog.KindEquipment:
		return Action{Kind: ActionPlayCard, CardIndex: i, TargetIndex: -1}, true
	case catalog.KindSpell:
		if tmpl.Target == catalog.TargetEnemy {
			if room.Enemy.Alive() {
				return Action{Kind: ActionPlayCard, CardIndex: i, TargetIndex: -1}, true
			}
			return Action{}, false
		}
		return Action{Kind: ActionPlayCard, CardIndex: i, TargetIndex: -1}, true
	}
	return Action{}, false
}
