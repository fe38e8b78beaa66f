package game

import (
	"strconv"

	"dungeon-legends-server/catalog"
)

// Challenge is a room's non-combat skill check.
type Challenge struct {
	Description string `json:"description"`
	Difficulty  int    `json:"difficulty"`
	FailDamage  int    `json:"failDamage"`
}

// PendingEvent is a narrative event rolled on room entry, awaiting its choice.
// Resolving it a second time is a rule violation; Resolved never reverts.
type PendingEvent struct {
	CardID   string `json:"cardId"`
	Resolved bool   `json:"resolved"`
}

// Room is one catalog-derived stage of the dungeon. Completed transitions
// incomplete -> complete exactly once and never reverses.
type Room struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Type        catalog.RoomType `json:"type"`
	Enemy       *Enemy           `json:"enemy,omitempty"`
	Challenge   *Challenge       `json:"challenge,omitempty"`
	Completed   bool             `json:"completed"`
	Reward      catalog.Reward   `json:"reward"`
	Event       *PendingEvent    `json:"event,omitempty"`
	EventRolled bool             `json:"eventRolled"`
}

// NewRoom instantiates a room from its catalog template.
func NewRoom(t catalog.RoomTemplate) *Room {
	r := &Room{
		Name:        t.Name,
		Description: t.Description,
		Type:        t.Type,
		Reward:      t.Reward,
	}
	if t.Enemy != nil {
		r.Enemy = NewEnemy(*t.Enemy)
	}
	if t.Challenge != nil {
		r.Challenge = &Challenge{
			Description: t.Challenge.Description,
			Difficulty:  t.Challenge.Difficulty,
			FailDamage:  t.Challenge.FailDamage,
		}
	}
	return r
}

// EncounterDefeated reports whether nothing stands between the party and the
// room's reward. Safe rooms count as defeated; challenge rooms complete only
// through a passed check.
func (r *Room) EncounterDefeated() bool {
	if r.Completed {
		return true
	}
	if r.Challenge != nil {
		return false
	}
	if r.Enemy != nil {
		return !r.Enemy.Alive()
	}
	return true
}

// completeRoom marks the room complete and credits its reward to the acting
// participant. A treasure_hunter effect adds one treasure and is consumed.
func (m *Match) completeRoom(room *Room, actor *Participant) []Result {
	room.Completed = true
	var results []Result

	switch room.Reward.Kind {
	case catalog.RewardTreasure:
		if room.Reward.Amount <= 0 {
			break
		}
		amount := room.Reward.Amount
		if actor.Hero.HasEffect(EffectTreasureHunter) {
			actor.Hero.RemoveEffect(EffectTreasureHunter)
			amount++
			results = append(results, Result{Type: "bonus", Message: "Treasure Hunter bonus: +1 extra treasure!"})
		}
		actor.Hero.Treasure += amount
		results = append(results, Result{
			Type:    "reward",
			Message: actor.Name + " finds " + strconv.Itoa(amount) + " treasure!",
			Amount:  amount,
			Target:  actor.ID,
		})
	case catalog.RewardCards:
		drawn, err := m.Deck.DrawN(room.Reward.Amount)
		if err != nil {
			m.failMatch(err)
			return results
		}
		actor.Hand = append(actor.Hand, drawn...)
		results = append(results, Result{
			Type:    "reward",
			Message: actor.Name + " draws " + strconv.Itoa(len(drawn)) + " extra cards!",
			Amount:  len(drawn),
			Target:  actor.ID,
		})
	case catalog.RewardVictory:
		results = append(results, Result{Type: "info", Message: room.Name + " cleared!"})
	}
	return results
}
