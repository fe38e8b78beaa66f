package game

import (
	"dungeon-legends-server/catalog"
	"dungeon-legends-server/deck"
	"dungeon-legends-server/gameerrors"
)

// EquippedItem is an equipment card resolved against its catalog payload.
type EquippedItem struct {
	Card          deck.Card `json:"card"`
	AttackBonus   int       `json:"attackBonus"`
	DefenseBonus  int       `json:"defenseBonus"`
	AppliesIgnite bool      `json:"appliesIgnite"`
	ManaRegen     int       `json:"manaRegen"`
}

// Hero is a participant's combat actor. Invariants: 0 <= CurrentHealth <=
// MaxHealth and 0 <= CurrentMana <= MaxMana; a hero at 0 health is dead and
// excluded from targeting and enemy turns.
type Hero struct {
	Type          catalog.HeroType            `json:"type"`
	Name          string                      `json:"name"`
	MaxHealth     int                         `json:"maxHealth"`
	CurrentHealth int                         `json:"currentHealth"`
	MaxMana       int                         `json:"maxMana"`
	CurrentMana   int                         `json:"currentMana"`
	Attack        int                         `json:"attack"`
	Defense       int                         `json:"defense"`
	Special       catalog.AbilityID           `json:"special"`
	Cooldowns     map[catalog.AbilityID]int   `json:"cooldowns"`
	Effects       []Effect                    `json:"effects"`
	Weapon        *EquippedItem               `json:"weapon,omitempty"`
	Armor         *EquippedItem               `json:"armor,omitempty"`
	Treasure      int                         `json:"treasure"`
}

// NewHero instantiates a hero from its catalog template.
func NewHero(t catalog.HeroTemplate) *Hero {
	return &Hero{
		Type:          t.Type,
		Name:          t.Name,
		MaxHealth:     t.Health,
		CurrentHealth: t.Health,
		MaxMana:       t.Mana,
		CurrentMana:   t.Mana,
		Attack:        t.Attack,
		Defense:       t.Defense,
		Special:       t.Special.ID,
		Cooldowns:     make(map[catalog.AbilityID]int),
	}
}

// Alive reports whether the hero can act and be targeted.
func (h *Hero) Alive() bool { return h.CurrentHealth > 0 }

// TotalAttack is base attack plus weapon bonus, plus blessing, minus weakness.
// Never negative.
func (h *Hero) TotalAttack() int {
	atk := h.Attack
	if h.Weapon != nil {
		atk += h.Weapon.AttackBonus
	}
	if h.HasEffect(EffectBlessing) {
		atk++
	}
	if h.HasEffect(EffectWeakness) {
		atk--
	}
	if atk < 0 {
		atk = 0
	}
	return atk
}

// TotalDefense is base defense plus armor bonus.
func (h *Hero) TotalDefense() int {
	def := h.Defense
	if h.Armor != nil {
		def += h.Armor.DefenseBonus
	}
	return def
}

// TakeDamage applies raw damage through protection, defending mitigation and
// defense, returning the damage actually dealt. Dead heroes take no damage.
func (h *Hero) TakeDamage(raw int) int {
	if !h.Alive() {
		return 0
	}
	if h.HasEffect(EffectProtected) {
		// One-shot absorb, consumed on use.
		h.RemoveEffect(EffectProtected)
		return 0
	}
	if h.HasEffect(EffectDefending) {
		raw -= 2
		if raw < 0 {
			raw = 0
		}
	}
	dmg := raw - h.TotalDefense()
	if dmg < 0 {
		dmg = 0
	}
	h.CurrentHealth -= dmg
	if h.CurrentHealth < 0 {
		h.CurrentHealth = 0
	}
	return dmg
}

// LoseHealth subtracts unmitigated damage (status effect ticks, hazards),
// clamped at zero.
func (h *Hero) LoseHealth(amount int) int {
	if !h.Alive() || amount <= 0 {
		return 0
	}
	if amount > h.CurrentHealth {
		amount = h.CurrentHealth
	}
	h.CurrentHealth -= amount
	return amount
}

// Heal restores health clamped to max, returning the amount actually healed.
func (h *Hero) Heal(amount int) int {
	healed := h.CurrentHealth + amount
	if healed > h.MaxHealth {
		healed = h.MaxHealth
	}
	gained := healed - h.CurrentHealth
	h.CurrentHealth = healed
	return gained
}

// SpendMana fails with ErrInsufficientResource when the hero cannot afford cost.
func (h *Hero) SpendMana(cost int) error {
	if h.CurrentMana < cost {
		return gameerrors.ErrInsufficientResource
	}
	h.CurrentMana -= cost
	return nil
}

// RegenerateMana restores mana clamped to max, including the armor bonus.
func (h *Hero) RegenerateMana(base int) {
	amount := base
	if h.Armor != nil {
		amount += h.Armor.ManaRegen
	}
	h.CurrentMana += amount
	if h.CurrentMana > h.MaxMana {
		h.CurrentMana = h.MaxMana
	}
}

// Equip places the item in its slot, returning the replaced card if any.
func (h *Hero) Equip(card deck.Card, tmpl catalog.CardTemplate) *deck.Card {
	item := &EquippedItem{
		Card:          card,
		AttackBonus:   tmpl.AttackBonus,
		DefenseBonus:  tmpl.DefenseBonus,
		AppliesIgnite: tmpl.AppliesIgnite,
		ManaRegen:     tmpl.ManaRegen,
	}
	var replaced *deck.Card
	switch tmpl.Slot {
	case catalog.SlotWeapon:
		if h.Weapon != nil {
			old := h.Weapon.Card
			replaced = &old
		}
		h.Weapon = item
	case catalog.SlotArmor:
		if h.Armor != nil {
			old := h.Armor.Card
			replaced = &old
		}
		h.Armor = item
	}
	return replaced
}

// HasEffect reports whether an effect of the given kind is active.
func (h *Hero) HasEffect(kind EffectKind) bool {
	for _, e := range h.Effects {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

// AddEffect appends a status effect.
func (h *Hero) AddEffect(e Effect) {
	h.Effects = append(h.Effects, e)
}

// RemoveEffect removes all effects of the given kind.
func (h *Hero) RemoveEffect(kind EffectKind) {
	out := h.Effects[:0]
	for _, e := range h.Effects {
		if e.Kind != kind {
			out = append(out, e)
		}
	}
	h.Effects = out
}

// Cleanse removes every debuff-kind effect, permanent curses included.
func (h *Hero) Cleanse() {
	out := h.Effects[:0]
	for _, e := range h.Effects {
		if !e.Kind.IsDebuff() {
			out = append(out, e)
		}
	}
	h.Effects = out
}
