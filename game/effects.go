package game

// EffectKind tags a status effect.
type EffectKind string

const (
	EffectIgnite         EffectKind = "ignite"         // 1 damage per tick
	EffectPoison         EffectKind = "poison"         // 2 damage per tick
	EffectIntenseBurn    EffectKind = "intense_burn"   // Amount damage per tick (fire combo)
	EffectRegeneration   EffectKind = "regeneration"   // 1 heal per tick
	EffectDefending      EffectKind = "defending"      // flat 2 off raw incoming damage
	EffectProtected      EffectKind = "protected"      // absorbs the next hit, consumed on use
	EffectStealth        EffectKind = "stealth"        // next attack +2, consumed on attack
	EffectTreasureHunter EffectKind = "treasure_hunter" // +1 treasure on next room reward
	EffectBlessing       EffectKind = "blessing"       // +1 attack
	EffectWeakness       EffectKind = "weakness"       // -1 attack
	EffectFrozen         EffectKind = "frozen"         // enemy only: skips its attack
	EffectSlow           EffectKind = "slow"           // enemy only: -1 attack value
)

// PermanentDuration is the until-cleansed sentinel.
const PermanentDuration = -1

// Effect is a timed or permanent modifier attached to a hero or enemy.
// Duration counts owner end-of-turn ticks; Amount is an optional payload
// (e.g. intense_burn damage per tick).
type Effect struct {
	Kind     EffectKind `json:"kind"`
	Duration int        `json:"duration"`
	Amount   int        `json:"amount,omitempty"`
}

// IsDebuff reports whether the kind is removed by cleansing.
func (k EffectKind) IsDebuff() bool {
	switch k {
	case EffectIgnite, EffectPoison, EffectIntenseBurn, EffectWeakness, EffectSlow:
		return true
	}
	return false
}

// tickEffects applies one end-of-turn tick to a set of effects: damage-over-
// time and regeneration resolve, durations decrement, and expired effects are
// dropped. Permanent effects (duration -1) never expire. Returns the surviving
// effects plus the net health delta (negative for damage).
func tickEffects(effects []Effect) (remaining []Effect, healthDelta int) {
	for _, e := range effects {
		switch e.Kind {
		case EffectIgnite:
			healthDelta -= 1
		case EffectPoison:
			healthDelta -= 2
		case EffectIntenseBurn:
			amount := e.Amount
			if amount <= 0 {
				amount = 2
			}
			healthDelta -= amount
		case EffectRegeneration:
			healthDelta += 1
		}
		if e.Duration == PermanentDuration {
			remaining = append(remaining, e)
			continue
		}
		e.Duration--
		if e.Duration > 0 {
			remaining = append(remaining, e)
		}
	}
	return remaining, healthDelta
}

// tickHero runs the hero's end-of-turn bookkeeping: cooldowns, status effects
// and mana regeneration. Returns the health delta from effect ticks.
func tickHero(h *Hero, manaRegen int) int {
	for ability, cd := range h.Cooldowns {
		if cd > 0 {
			h.Cooldowns[ability] = cd - 1
		}
	}

	remaining, delta := tickEffects(h.Effects)
	h.Effects = remaining
	if delta < 0 {
		h.LoseHealth(-delta)
	} else if delta > 0 {
		h.Heal(delta)
	}

	h.RegenerateMana(manaRegen)
	return delta
}
