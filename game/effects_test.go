package game

import (
	"testing"

	"dungeon-legends-server/catalog"
)

func TestTickEffects_DamageAndExpiry(t *testing.T) {
	effects := []Effect{
		{Kind: EffectIgnite, Duration: 2},
		{Kind: EffectPoison, Duration: 1},
		{Kind: EffectRegeneration, Duration: 3},
	}
	remaining, delta := tickEffects(effects)

	// -1 ignite -2 poison +1 regen.
	if delta != -2 {
		t.Errorf("expected net -2, got %d", delta)
	}
	if len(remaining) != 2 {
		t.Fatalf("poison should expire, got %d effects", len(remaining))
	}
	for _, e := range remaining {
		if e.Kind == EffectPoison {
			t.Error("expired poison still present")
		}
	}
}

func TestTickEffects_IntenseBurnAmount(t *testing.T) {
	_, delta := tickEffects([]Effect{{Kind: EffectIntenseBurn, Duration: 3, Amount: 2}})
	if delta != -2 {
		t.Errorf("expected -2 from intense burn, got %d", delta)
	}
	// Zero amount falls back to the default.
	_, delta = tickEffects([]Effect{{Kind: EffectIntenseBurn, Duration: 3}})
	if delta != -2 {
		t.Errorf("expected -2 default burn, got %d", delta)
	}
}

func TestTickEffects_PermanentNeverExpires(t *testing.T) {
	effects := []Effect{{Kind: EffectWeakness, Duration: PermanentDuration}}
	for i := 0; i < 10; i++ {
		effects, _ = tickEffects(effects)
	}
	if len(effects) != 1 || effects[0].Duration != PermanentDuration {
		t.Errorf("permanent effect changed: %+v", effects)
	}
}

func TestTickHero_CooldownsAndMana(t *testing.T) {
	h := testHero(t, catalog.Wizard)
	h.Cooldowns[catalog.ArcaneBlast] = 3
	h.CurrentMana = 2

	tickHero(h, 1)
	if h.Cooldowns[catalog.ArcaneBlast] != 2 {
		t.Errorf("expected cooldown 2, got %d", h.Cooldowns[catalog.ArcaneBlast])
	}
	if h.CurrentMana != 3 {
		t.Errorf("expected 3 mana after regen, got %d", h.CurrentMana)
	}
}

func TestTickHero_DoTIgnoresDefense(t *testing.T) {
	h := testHero(t, catalog.Knight) // 2 defense
	h.AddEffect(Effect{Kind: EffectPoison, Duration: 2})
	before := h.CurrentHealth

	tickHero(h, 0)
	// Status ticks subtract fixed amounts; defense does not apply.
	if got := before - h.CurrentHealth; got != 2 {
		t.Errorf("expected 2 poison damage through armor, got %d", got)
	}
}
