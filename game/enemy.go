package game

import (
	"strconv"

	"dungeon-legends-server/catalog"
)

// Enemy is a room's encounter actor.
type Enemy struct {
	Name          string   `json:"name"`
	MaxHealth     int      `json:"maxHealth"`
	CurrentHealth int      `json:"currentHealth"`
	Attack        int      `json:"attack"`
	Boss          bool     `json:"boss"`
	Effects       []Effect `json:"effects"`
}

// NewEnemy instantiates an enemy from its catalog template.
func NewEnemy(t catalog.EnemyTemplate) *Enemy {
	return &Enemy{
		Name:          t.Name,
		MaxHealth:     t.Health,
		CurrentHealth: t.Health,
		Attack:        t.Attack,
		Boss:          t.Boss,
	}
}

// Alive reports whether the enemy still blocks the room.
func (e *Enemy) Alive() bool { return e != nil && e.CurrentHealth > 0 }

// TakeDamage subtracts damage clamped at zero health.
func (e *Enemy) TakeDamage(amount int) int {
	if amount < 0 {
		amount = 0
	}
	if amount > e.CurrentHealth {
		amount = e.CurrentHealth
	}
	e.CurrentHealth -= amount
	return amount
}

// HasEffect reports whether an effect of the given kind is active.
func (e *Enemy) HasEffect(kind EffectKind) bool {
	for _, eff := range e.Effects {
		if eff.Kind == kind {
			return true
		}
	}
	return false
}

// AddEffect appends a status effect.
func (e *Enemy) AddEffect(eff Effect) {
	e.Effects = append(e.Effects, eff)
}

// tickEnemy applies one end-of-turn tick to the enemy's status effects.
func tickEnemy(e *Enemy) {
	remaining, delta := tickEffects(e.Effects)
	e.Effects = remaining
	if delta < 0 {
		e.TakeDamage(-delta)
	}
}

// enemyTurn resolves the enemy's counterattack after a player action that left
// it alive. A frozen enemy skips entirely. Boss enemies unleash their special
// pattern against all living heroes once every BossPatternEvery rounds, taking
// precedence over the single-target attack; otherwise the current participant
// is the target, with slow reducing the attack value by 1 (minimum 1).
func (m *Match) enemyTurn(e *Enemy) []Result {
	var results []Result

	if e.HasEffect(EffectFrozen) {
		return []Result{{Type: "info", Message: e.Name + " is frozen and cannot attack!"}}
	}

	period := m.Config.BossPatternEvery
	if e.Boss && period > 0 && m.RoundCounter%period == 0 {
		results = append(results, Result{
			Type:    "boss_special",
			Message: e.Name + " unleashes devastating FIRE BREATH!",
		})
		for _, p := range m.Participants {
			if !p.Hero.Alive() {
				continue
			}
			dealt := p.Hero.TakeDamage(e.Attack + 1)
			results = append(results, Result{
				Type:    "damage",
				Message: p.Name + " takes " + strconv.Itoa(dealt) + " fire damage!",
				Amount:  dealt,
				Target:  p.ID,
			})
		}
		return results
	}

	target := m.Participants[m.CurrentParticipant]
	if !target.Hero.Alive() {
		return results
	}
	attack := e.Attack
	if e.HasEffect(EffectSlow) {
		attack--
		if attack < 1 {
			attack = 1
		}
	}
	dealt := target.Hero.TakeDamage(attack)
	results = append(results, Result{
		Type:    "damage",
		Message: e.Name + " attacks " + target.Name + " for " + strconv.Itoa(dealt) + " damage!",
		Amount:  dealt,
		Target:  target.ID,
	})
	return results
}
