package game

import (
	"fmt"
	"math/rand"
	"strconv"

	"dungeon-legends-server/catalog"
	"dungeon-legends-server/deck"
	"dungeon-legends-server/gameerrors"
)

// applyPlayCard plays the card at cardIndex from the participant's hand. The
// card is only removed and mana only spent after all validation passes, so a
// rejected play leaves hand and mana untouched.
func (m *Match) applyPlayCard(p *Participant, room *Room, cardIndex, targetIndex int) ([]Result, error) {
	if cardIndex < 0 || cardIndex >= len(p.Hand) {
		return nil, gameerrors.ErrInvalidCard
	}
	card := p.Hand[cardIndex]
	tmpl, ok := catalog.Card(card.CardID)
	if !ok {
		return nil, gameerrors.ErrInvalidCard
	}
	if p.Hero.CurrentMana < card.ManaCost {
		return nil, gameerrors.ErrInsufficientResource
	}

	var results []Result
	var err error
	switch card.Kind {
	case catalog.KindSpell:
		results, err = m.castSpell(p, room, card, targetIndex)
	case catalog.KindEquipment:
		results, err = m.equipCard(p, card, tmpl)
	default:
		err = gameerrors.ErrInvalidCard
	}
	if err != nil {
		return nil, err
	}

	p.Hero.CurrentMana -= card.ManaCost
	p.Hand = append(p.Hand[:cardIndex], p.Hand[cardIndex+1:]...)
	m.Deck.PutDiscard(card)

	if card.Kind == catalog.KindSpell {
		p.SpellsCast++
		results = append(results, m.recordSpellSchool(card.School, room)...)
	}
	return results, nil
}

// castSpell resolves a spell card by its catalog id.
func (m *Match) castSpell(p *Participant, room *Room, card deck.Card, targetIndex int) ([]Result, error) {
	switch card.CardID {
	case "fireball":
		return m.damageSpell(p, room, card.Name, 4, &Effect{Kind: EffectIgnite, Duration: 2})
	case "ice_shard":
		return m.damageSpell(p, room, card.Name, 3, &Effect{Kind: EffectSlow, Duration: 1})
	case "shadow_strike":
		return m.damageSpell(p, room, card.Name, 3, &Effect{Kind: EffectPoison, Duration: 2})
	case "greater_heal":
		target, err := m.livingTarget(p, targetIndex)
		if err != nil {
			return nil, err
		}
		healed := target.Hero.Heal(5)
		target.Hero.Cleanse()
		return []Result{{
			Type:    "heal",
			Message: p.Name + " casts Greater Heal on " + target.Name + " for " + strconv.Itoa(healed) + " HP + cleanse!",
			Amount:  healed,
			Target:  target.ID,
		}}, nil
	case "natures_grace":
		target, err := m.livingTarget(p, targetIndex)
		if err != nil {
			return nil, err
		}
		healed := target.Hero.Heal(2)
		target.Hero.AddEffect(Effect{Kind: EffectRegeneration, Duration: 3})
		return []Result{{
			Type:    "heal",
			Message: p.Name + " grants " + target.Name + " regeneration! (+" + strconv.Itoa(healed) + " HP now)",
			Amount:  healed,
			Target:  target.ID,
		}}, nil
	case "divine_blessing":
		target, err := m.livingTarget(p, targetIndex)
		if err != nil {
			return nil, err
		}
		target.Hero.AddEffect(Effect{Kind: EffectBlessing, Duration: 2})
		return []Result{{
			Type:    "buff",
			Message: p.Name + " blesses " + target.Name + " with divine strength!",
			Target:  target.ID,
		}}, nil
	default:
		return nil, gameerrors.ErrInvalidCard
	}
}

// damageSpell hits the room's enemy and applies the rider effect on a survivor.
func (m *Match) damageSpell(p *Participant, room *Room, name string, damage int, rider *Effect) ([]Result, error) {
	if room.Enemy == nil || !room.Enemy.Alive() {
		return nil, gameerrors.ErrInvalidTarget
	}
	dealt := room.Enemy.TakeDamage(damage)
	results := []Result{{
		Type:    "damage",
		Message: p.Name + " casts " + name + " for " + strconv.Itoa(dealt) + " damage!",
		Amount:  dealt,
		Target:  room.Enemy.Name,
	}}
	if room.Enemy.Alive() {
		if rider != nil {
			room.Enemy.AddEffect(*rider)
		}
	} else {
		results = append(results, Result{Type: "victory", Message: room.Enemy.Name + " is defeated!"})
	}
	return results, nil
}

// equipCard equips an equipment card; the replaced item goes to the discard pile.
func (m *Match) equipCard(p *Participant, card deck.Card, tmpl catalog.CardTemplate) ([]Result, error) {
	if replaced := p.Hero.Equip(card, tmpl); replaced != nil {
		m.Deck.PutDiscard(*replaced)
	}
	return []Result{{Type: "buff", Message: p.Name + " equips " + card.Name + "!"}}, nil
}

// recordSpellSchool tallies the school for the round and resolves the school's
// combo bonus the first time the tally reaches 2. A third spell of the same
// school in the round does not trigger a second combo.
func (m *Match) recordSpellSchool(school catalog.SpellSchool, room *Room) []Result {
	if school == "" {
		return nil
	}
	m.ComboTally[school]++
	if m.ComboTally[school] < 2 || m.comboFired[school] {
		return nil
	}
	m.comboFired[school] = true

	switch school {
	case catalog.SchoolFire:
		if room.Enemy.Alive() {
			room.Enemy.AddEffect(Effect{Kind: EffectIntenseBurn, Duration: 3, Amount: 2})
		}
		return []Result{{Type: "combo", Message: "Fire Combo! Enhanced burning effect!"}}
	case catalog.SchoolIce:
		if room.Enemy.Alive() {
			room.Enemy.AddEffect(Effect{Kind: EffectFrozen, Duration: 1})
		}
		return []Result{{Type: "combo", Message: "Ice Combo! Enemy frozen for 1 turn!"}}
	case catalog.SchoolShadow:
		if room.Enemy.Alive() {
			room.Enemy.AddEffect(Effect{Kind: EffectSlow, Duration: 2})
		}
		return []Result{{Type: "combo", Message: "Shadow Combo! Enemy slowed by creeping darkness!"}}
	case catalog.SchoolLight:
		for _, ally := range m.Participants {
			if ally.Hero.Alive() {
				ally.Hero.AddEffect(Effect{Kind: EffectBlessing, Duration: 2})
			}
		}
		return []Result{{Type: "combo", Message: "Light Combo! All heroes blessed!"}}
	case catalog.SchoolNature:
		for _, ally := range m.Participants {
			if ally.Hero.Alive() {
				ally.Hero.AddEffect(Effect{Kind: EffectRegeneration, Duration: 2})
			}
		}
		return []Result{{Type: "combo", Message: "Nature Combo! The party regenerates!"}}
	}
	return nil
}

// applyEventChoice resolves the room's pending narrative event. A second
// resolution attempt fails and changes nothing.
func (m *Match) applyEventChoice(p *Participant, room *Room, choiceIndex int) ([]Result, error) {
	if room.Event == nil {
		return nil, gameerrors.ErrNoPendingEvent
	}
	if room.Event.Resolved {
		return nil, gameerrors.ErrEventResolved
	}
	tmpl, ok := catalog.Card(room.Event.CardID)
	if !ok || choiceIndex < 0 || choiceIndex >= len(tmpl.Choices) {
		return nil, gameerrors.ErrInvalidTarget
	}
	choice := tmpl.Choices[choiceIndex]

	if choice.TreasureCost > 0 && p.Hero.Treasure < choice.TreasureCost {
		return nil, fmt.Errorf("%w: requires %d treasure", gameerrors.ErrInsufficientResource, choice.TreasureCost)
	}

	// Validation done; the branch applies atomically from here.
	room.Event.Resolved = true
	if choice.TreasureCost > 0 {
		p.Hero.Treasure -= choice.TreasureCost
	}

	switch choice.Effect.Kind {
	case catalog.EventPermanentHP:
		for _, ally := range m.Participants {
			ally.Hero.MaxHealth += choice.Effect.Amount
			ally.Hero.CurrentHealth += choice.Effect.Amount
		}
		return []Result{{Type: "blessing", Message: "All heroes gain +" + strconv.Itoa(choice.Effect.Amount) + " max HP permanently!"}}, nil
	case catalog.EventDrawCards:
		drawn, err := m.Deck.DrawN(choice.Effect.Amount)
		if err != nil {
			m.failMatch(err)
			return nil, err
		}
		p.Hand = append(p.Hand, drawn...)
		return []Result{{Type: "reward", Message: p.Name + " draws " + strconv.Itoa(len(drawn)) + " cards!", Amount: len(drawn)}}, nil
	case catalog.EventGrantEquipment:
		pool := catalog.EquipmentOfRarity(choice.Effect.Rarity)
		if len(pool) == 0 {
			return []Result{{Type: "info", Message: "The merchant has nothing left to sell."}}, nil
		}
		granted := deck.FromTemplate(pool[rand.Intn(len(pool))])
		p.Hand = append(p.Hand, granted)
		return []Result{{Type: "reward", Message: p.Name + " receives " + granted.Name + "!"}}, nil
	case catalog.EventCursedTreasure:
		p.Hero.Treasure += choice.Effect.Treasure
		p.Hero.AddEffect(Effect{Kind: EffectWeakness, Duration: PermanentDuration})
		return []Result{{
			Type:    "mixed",
			Message: p.Name + " gains " + strconv.Itoa(choice.Effect.Treasure) + " treasure but is cursed with weakness!",
			Amount:  choice.Effect.Treasure,
		}}, nil
	default:
		return []Result{{Type: "info", Message: p.Name + " lets the moment pass."}}, nil
	}
}

// applyChallenge attempts the room's skill check: d6 + total attack against
// the challenge difficulty. Failure deals unmitigated hazard damage.
func (m *Match) applyChallenge(p *Participant, room *Room) ([]Result, error) {
	if room.Challenge == nil || room.Completed {
		return nil, gameerrors.ErrNoChallenge
	}
	roll := rand.Intn(6) + 1
	total := roll + p.Hero.TotalAttack()
	if total >= room.Challenge.Difficulty {
		results := []Result{{
			Type:    "challenge",
			Message: p.Name + " overcomes the challenge: " + room.Challenge.Description + "! (rolled " + strconv.Itoa(roll) + ")",
		}}
		results = append(results, m.completeRoom(room, p)...)
		return results, nil
	}
	lost := p.Hero.LoseHealth(room.Challenge.FailDamage)
	return []Result{{
		Type:    "damage",
		Message: p.Name + " fails the challenge and takes " + strconv.Itoa(lost) + " damage! (rolled " + strconv.Itoa(roll) + ")",
		Amount:  lost,
		Target:  p.ID,
	}}, nil
}
