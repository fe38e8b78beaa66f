// Package ai decides actions for computer-controlled participants. The
// decider only reads snapshots and proposes actions; the engine validates and
// applies them through the same queue as human actions.
package ai

import (
	"math/rand"
	"time"

	"dungeon-legends-server/catalog"
	"dungeon-legends-server/config"
	"dungeon-legends-server/game"
)

// Decider implements game.AIDecider with a fixed priority ladder plus a
// per-profile chance to play a random legal action instead.
type Decider struct {
	cfg *config.Config
}

// New creates a decider using the config's difficulty profiles.
func New(cfg *config.Config) *Decider {
	return &Decider{cfg: cfg}
}

// Decide picks an action from the legal set and a thinking delay drawn from
// the profile's delay window.
func (d *Decider) Decide(s game.Snapshot, legal []game.Action, profile string) (game.Action, time.Duration) {
	p := d.cfg.Profile(profile)
	delay := thinkingDelay(p)

	if len(legal) == 0 {
		return game.Action{Kind: game.ActionPass, TargetIndex: -1}, delay
	}
	if rand.Intn(100) < p.MistakeChance {
		return legal[rand.Intn(len(legal))], delay
	}
	return choose(s, legal), delay
}

func thinkingDelay(p config.AIProfile) time.Duration {
	spread := p.DelayMaxMS - p.DelayMinMS
	ms := p.DelayMinMS
	if spread > 0 {
		ms += rand.Intn(spread + 1)
	}
	return time.Duration(ms) * time.Millisecond
}

// choose walks the priority ladder top to bottom and returns the first rung
// that applies.
func choose(s game.Snapshot, legal []game.Action) game.Action {
	me := s.Participants[s.CurrentParticipant]
	hero := me.Hero
	enemy := s.Room.Enemy

	// A pending event blocks nothing but should not linger.
	if a, ok := firstOfKind(legal, game.ActionEventChoice); ok {
		return a
	}

	if a, ok := firstOfKind(legal, game.ActionSpecial); ok {
		if enemy != nil || anyAllyBelowHalf(s) {
			return a
		}
	}

	if a, ok := firstOfKind(legal, game.ActionAttack); ok {
		if enemy != nil && enemy.CurrentHealth <= hero.Attack {
			return a
		}
	}

	if a, critical, ok := healCardFor(s, legal); ok {
		a.TargetIndex = critical
		return a
	}

	if a, ok := firstOfKind(legal, game.ActionChallenge); ok {
		return a
	}

	if a, ok := firstOfKind(legal, game.ActionAttack); ok {
		if hero.CurrentHealth*2 > hero.MaxHealth {
			return a
		}
	}

	if a, ok := firstOfKind(legal, game.ActionDefend); ok {
		if hero.CurrentHealth*10 < hero.MaxHealth*3 {
			return a
		}
	}

	if a, ok := bestUtilityCard(s, legal); ok {
		return a
	}

	return game.Action{Kind: game.ActionPass, TargetIndex: -1}
}

func firstOfKind(legal []game.Action, kind game.ActionKind) (game.Action, bool) {
	for _, a := range legal {
		if a.Kind == kind {
			return a, true
		}
	}
	return game.Action{}, false
}

// anyAllyBelowHalf reports whether any living participant is under half health.
func anyAllyBelowHalf(s game.Snapshot) bool {
	for _, p := range s.Participants {
		if p.Hero.CurrentHealth > 0 && p.Hero.CurrentHealth*2 < p.Hero.MaxHealth {
			return true
		}
	}
	return false
}

// healCardFor finds a playable healing card and the most wounded living ally
// to aim it at. Only fires when someone is actually below half health.
func healCardFor(s game.Snapshot, legal []game.Action) (game.Action, int, bool) {
	critical, worst := -1, 0
	for i, p := range s.Participants {
		hp := p.Hero.CurrentHealth
		if hp <= 0 || hp*2 >= p.Hero.MaxHealth {
			continue
		}
		missing := p.Hero.MaxHealth - hp
		if critical == -1 || missing > worst {
			critical, worst = i, missing
		}
	}
	if critical == -1 {
		return game.Action{}, 0, false
	}

	hand := s.Participants[s.CurrentParticipant].Hand
	for _, a := range legal {
		if a.Kind != game.ActionPlayCard || a.CardIndex >= len(hand) {
			continue
		}
		switch hand[a.CardIndex].CardID {
		case "greater_heal", "natures_grace":
			return a, critical, true
		}
	}
	return game.Action{}, 0, false
}

// bestUtilityCard picks a remaining playable card, preferring equipment over
// spells so the hero builds up before spending mana on damage.
func bestUtilityCard(s game.Snapshot, legal []game.Action) (game.Action, bool) {
	hand := s.Participants[s.CurrentParticipant].Hand
	var spell game.Action
	haveSpell := false
	for _, a := range legal {
		if a.Kind != game.ActionPlayCard || a.CardIndex >= len(hand) {
			continue
		}
		if hand[a.CardIndex].Kind == catalog.KindEquipment {
			return a, true
		}
		if !haveSpell {
			spell, haveSpell = a, true
		}
	}
	return spell, haveSpell
}
