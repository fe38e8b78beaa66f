package game

import (
	"strconv"

	"dungeon-legends-server/catalog"
	"dungeon-legends-server/gameerrors"
)

// applyAttack strikes the room's enemy with the hero's total attack. Stealth
// adds +2 and is consumed; a flame blade applies ignite on hit.
func (m *Match) applyAttack(p *Participant, room *Room) ([]Result, error) {
	if room.Enemy == nil || !room.Enemy.Alive() {
		return nil, gameerrors.ErrInvalidTarget
	}

	damage := p.Hero.TotalAttack()
	if p.Hero.HasEffect(EffectStealth) {
		p.Hero.RemoveEffect(EffectStealth)
		damage += 2
	}
	dealt := room.Enemy.TakeDamage(damage)

	results := []Result{{
		Type:    "damage",
		Message: p.Name + " hits " + room.Enemy.Name + " for " + strconv.Itoa(dealt) + " damage!",
		Amount:  dealt,
		Target:  room.Enemy.Name,
	}}

	if room.Enemy.Alive() && p.Hero.Weapon != nil && p.Hero.Weapon.AppliesIgnite {
		room.Enemy.AddEffect(Effect{Kind: EffectIgnite, Duration: 2})
		results = append(results, Result{Type: "info", Message: "The flame blade sets " + room.Enemy.Name + " alight!"})
	}

	if !room.Enemy.Alive() {
		results = append(results, Result{Type: "victory", Message: room.Enemy.Name + " is defeated!"})
	}
	return results, nil
}

// applyDefend braces the hero, subtracting a flat 2 from raw incoming damage
// until their next turn ends.
func (m *Match) applyDefend(p *Participant) ([]Result, error) {
	p.Hero.AddEffect(Effect{Kind: EffectDefending, Duration: 1})
	return []Result{{Type: "buff", Message: p.Name + " braces for impact!"}}, nil
}

// applySpecial resolves the hero's special ability against its target,
// checking cooldown and mana first. Cooldown starts only after success.
func (m *Match) applySpecial(p *Participant, room *Room, targetIndex int) ([]Result, error) {
	tmpl, ok := catalog.Hero(p.Hero.Type)
	if !ok {
		return nil, gameerrors.ErrInvalidTarget
	}
	ability := tmpl.Special

	if p.Hero.Cooldowns[ability.ID] > 0 {
		return nil, gameerrors.ErrAbilityOnCooldown
	}
	if p.Hero.CurrentMana < ability.ManaCost {
		return nil, gameerrors.ErrInsufficientResource
	}

	var results []Result
	switch ability.ID {
	case catalog.ShieldWall:
		target, err := m.livingAlly(p, targetIndex)
		if err != nil {
			return nil, err
		}
		target.Hero.AddEffect(Effect{Kind: EffectProtected, Duration: 1})
		results = append(results, Result{
			Type:    "buff",
			Message: p.Name + " protects " + target.Name + " with Shield Wall!",
			Target:  target.ID,
		})

	case catalog.ArcaneBlast:
		if room.Enemy == nil || !room.Enemy.Alive() {
			return nil, gameerrors.ErrInvalidTarget
		}
		damage := 4
		if room.Enemy.Boss {
			damage = 6
		}
		dealt := room.Enemy.TakeDamage(damage)
		results = append(results, Result{
			Type:    "damage",
			Message: p.Name + " unleashes Arcane Blast for " + strconv.Itoa(dealt) + " damage!",
			Amount:  dealt,
			Target:  room.Enemy.Name,
		})
		if room.Enemy.Alive() {
			room.Enemy.AddEffect(Effect{Kind: EffectIgnite, Duration: 2})
		} else {
			results = append(results, Result{Type: "victory", Message: room.Enemy.Name + " is defeated!"})
		}

	case catalog.ShadowStep:
		p.Hero.AddEffect(Effect{Kind: EffectStealth, Duration: 2})
		p.Hero.AddEffect(Effect{Kind: EffectTreasureHunter, Duration: 1})
		results = append(results, Result{Type: "buff", Message: p.Name + " vanishes into the shadows!"})

	case catalog.DivineIntervention:
		target, err := m.livingTarget(p, targetIndex)
		if err != nil {
			return nil, err
		}
		healed := target.Hero.Heal(4)
		target.Hero.Cleanse()
		target.Hero.AddEffect(Effect{Kind: EffectRegeneration, Duration: 3})
		results = append(results, Result{
			Type:    "heal",
			Message: p.Name + " channels divine power to heal " + target.Name + " for " + strconv.Itoa(healed) + " HP!",
			Amount:  healed,
			Target:  target.ID,
		})

	default:
		return nil, gameerrors.ErrInvalidTarget
	}

	// Validation passed; commit cost and cooldown.
	p.Hero.CurrentMana -= ability.ManaCost
	p.Hero.Cooldowns[ability.ID] = ability.Cooldown
	return results, nil
}

// livingAlly resolves targetIndex to a living participant other than p.
func (m *Match) livingAlly(p *Participant, targetIndex int) (*Participant, error) {
	if targetIndex < 0 || targetIndex >= len(m.Participants) {
		return nil, gameerrors.ErrInvalidTarget
	}
	target := m.Participants[targetIndex]
	if target == p || !target.Hero.Alive() {
		return nil, gameerrors.ErrInvalidTarget
	}
	return target, nil
}

// livingTarget resolves targetIndex to a living participant, defaulting to p
// when the index is negative.
func (m *Match) livingTarget(p *Participant, targetIndex int) (*Participant, error) {
	if targetIndex < 0 {
		if !p.Hero.Alive() {
			return nil, gameerrors.ErrInvalidTarget
		}
		return p, nil
	}
	if targetIndex >= len(m.Participants) {
		return nil, gameerrors.ErrInvalidTarget
	}
	target := m.Participants[targetIndex]
	if !target.Hero.Alive() {
		return nil, gameerrors.ErrInvalidTarget
	}
	return target, nil
}
