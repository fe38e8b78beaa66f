package catalog

// CardKind separates the three card pools.
type CardKind string

const (
	KindSpell     CardKind = "spell"
	KindEquipment CardKind = "equipment"
	KindEvent     CardKind = "event"
)

// TargetKind is a card's or ability's target requirement.
type TargetKind string

const (
	TargetNone  TargetKind = ""
	TargetSelf  TargetKind = "self"
	TargetAlly  TargetKind = "ally"
	TargetEnemy TargetKind = "enemy"
	TargetAll   TargetKind = "all"
)

// SpellSchool tags spells for combo detection.
type SpellSchool string

const (
	SchoolFire   SpellSchool = "fire"
	SchoolIce    SpellSchool = "ice"
	SchoolLight  SpellSchool = "light"
	SchoolShadow SpellSchool = "shadow"
	SchoolNature SpellSchool = "nature"
)

// Rarity weights for deck construction (target distribution 60/30/10).
type Rarity string

const (
	RarityCommon   Rarity = "common"
	RarityUncommon Rarity = "uncommon"
	RarityRare     Rarity = "rare"
)

// EquipSlot is the equipment slot a card occupies.
type EquipSlot string

const (
	SlotWeapon EquipSlot = "weapon"
	SlotArmor  EquipSlot = "armor"
)

// EventChoice is one branch of an event card.
type EventChoice struct {
	Text         string
	TreasureCost int
	Effect       EventEffect
}

// EventEffectKind enumerates event outcomes.
type EventEffectKind string

const (
	EventPermanentHP    EventEffectKind = "permanent_hp"
	EventDrawCards      EventEffectKind = "draw_cards"
	EventGrantEquipment EventEffectKind = "grant_equipment"
	EventCursedTreasure EventEffectKind = "cursed_treasure"
)

// EventEffect is the payload of an event choice.
type EventEffect struct {
	Kind     EventEffectKind
	Amount   int
	Rarity   Rarity // for grant_equipment
	Treasure int    // for cursed_treasure
}

// CardTemplate is the immutable catalog definition a Card instance derives from.
type CardTemplate struct {
	ID       string
	Name     string
	Kind     CardKind
	ManaCost int
	Target   TargetKind
	Rarity   Rarity

	// Spell payload
	School SpellSchool

	// Equipment payload
	Slot         EquipSlot
	AttackBonus  int
	DefenseBonus int
	AppliesIgnite bool // flame_blade: attacks apply ignite
	ManaRegen    int  // magic_robes: extra mana regeneration per turn

	// Event payload
	Story   string
	Choices []EventChoice
}

var spellCards = []CardTemplate{
	{ID: "fireball", Name: "Fireball", Kind: KindSpell, School: SchoolFire,
		ManaCost: 2, Target: TargetEnemy, Rarity: RarityCommon},
	{ID: "ice_shard", Name: "Ice Shard", Kind: KindSpell, School: SchoolIce,
		ManaCost: 2, Target: TargetEnemy, Rarity: RarityCommon},
	{ID: "greater_heal", Name: "Greater Heal", Kind: KindSpell, School: SchoolLight,
		ManaCost: 3, Target: TargetAlly, Rarity: RarityUncommon},
	{ID: "shadow_strike", Name: "Shadow Strike", Kind: KindSpell, School: SchoolShadow,
		ManaCost: 2, Target: TargetEnemy, Rarity: RarityUncommon},
	{ID: "natures_grace", Name: "Nature's Grace", Kind: KindSpell, School: SchoolNature,
		ManaCost: 2, Target: TargetAlly, Rarity: RarityCommon},
	{ID: "divine_blessing", Name: "Divine Blessing", Kind: KindSpell, School: SchoolLight,
		ManaCost: 2, Target: TargetAlly, Rarity: RarityRare},
}

var equipmentCards = []CardTemplate{
	{ID: "iron_sword", Name: "Iron Sword", Kind: KindEquipment, Slot: SlotWeapon,
		AttackBonus: 2, Rarity: RarityCommon},
	{ID: "flame_blade", Name: "Flame Blade", Kind: KindEquipment, Slot: SlotWeapon,
		AttackBonus: 1, AppliesIgnite: true, ManaCost: 1, Rarity: RarityRare},
	{ID: "chain_mail", Name: "Chain Mail", Kind: KindEquipment, Slot: SlotArmor,
		DefenseBonus: 2, Rarity: RarityCommon},
	{ID: "magic_robes", Name: "Magic Robes", Kind: KindEquipment, Slot: SlotArmor,
		DefenseBonus: 1, ManaRegen: 1, Rarity: RarityUncommon},
}

var eventCards = []CardTemplate{
	{ID: "ancient_blessing", Name: "Ancient Blessing", Kind: KindEvent, Rarity: RarityRare,
		Story: "You discover an ancient shrine radiating divine energy. Its blessing could strengthen your entire party permanently.",
		Choices: []EventChoice{
			{Text: "Accept blessing", Effect: EventEffect{Kind: EventPermanentHP, Amount: 1}},
			{Text: "Leave untouched", Effect: EventEffect{Kind: EventDrawCards, Amount: 2}},
		}},
	{ID: "mysterious_merchant", Name: "Mysterious Merchant", Kind: KindEvent, Rarity: RarityUncommon,
		Story: "A hooded figure emerges from the shadows, offering to trade rare magical items for your hard-earned treasure.",
		Choices: []EventChoice{
			{Text: "Trade 2 treasure for rare equipment", TreasureCost: 2,
				Effect: EventEffect{Kind: EventGrantEquipment, Rarity: RarityRare}},
			{Text: "Decline politely", Effect: EventEffect{Kind: EventDrawCards, Amount: 1}},
		}},
	{ID: "cursed_treasure", Name: "Cursed Treasure", Kind: KindEvent, Rarity: RarityUncommon,
		Story: "An ornate chest pulses with dark energy. Great wealth lies within, but curses often accompany such treasures.",
		Choices: []EventChoice{
			{Text: "Take the treasure", Effect: EventEffect{Kind: EventCursedTreasure, Treasure: 3}},
			{Text: "Leave it sealed", Effect: EventEffect{Kind: EventDrawCards, Amount: 1}},
		}},
}

var cardsByID = func() map[string]CardTemplate {
	m := make(map[string]CardTemplate)
	for _, pool := range [][]CardTemplate{spellCards, equipmentCards, eventCards} {
		for _, c := range pool {
			m[c.ID] = c
		}
	}
	return m
}()

// Card returns the card template with the given catalog id.
func Card(id string) (CardTemplate, bool) {
	c, ok := cardsByID[id]
	return c, ok
}

// SpellCards returns the spell pool.
func SpellCards() []CardTemplate { return spellCards }

// EquipmentCards returns the equipment pool.
func EquipmentCards() []CardTemplate { return equipmentCards }

// EventCards returns the event pool.
func EventCards() []CardTemplate { return eventCards }

// DeckPool returns the spell and equipment pools used for deck construction.
// Event cards are not shuffled into the deck; they trigger on room entry.
func DeckPool() []CardTemplate {
	pool := make([]CardTemplate, 0, len(spellCards)+len(equipmentCards))
	pool = append(pool, spellCards...)
	pool = append(pool, equipmentCards...)
	return pool
}

// EquipmentOfRarity returns equipment templates of the given rarity.
func EquipmentOfRarity(r Rarity) []CardTemplate {
	var out []CardTemplate
	for _, c := range equipmentCards {
		if c.Rarity == r {
			out = append(out, c)
		}
	}
	return out
}
