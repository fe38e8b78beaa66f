package catalog

// HeroType enumerates the playable hero archetypes.
type HeroType string

const (
	Knight HeroType = "knight"
	Wizard HeroType = "wizard"
	Rogue  HeroType = "rogue"
	Cleric HeroType = "cleric"
)

// AbilityID enumerates hero special abilities.
type AbilityID string

const (
	ShieldWall         AbilityID = "shield_wall"
	ArcaneBlast        AbilityID = "arcane_blast"
	ShadowStep         AbilityID = "shadow_step"
	DivineIntervention AbilityID = "divine_intervention"
)

// Ability is the immutable definition of a hero special ability.
type Ability struct {
	ID          AbilityID
	Name        string
	Description string
	Cooldown    int
	ManaCost    int
	Target     TargetKind
}

// HeroTemplate is the immutable definition of a hero archetype.
type HeroTemplate struct {
	Type        HeroType
	Name        string
	Health      int
	Mana        int
	Attack      int
	Defense     int
	Special     Ability
	Description string
}

var heroes = map[HeroType]HeroTemplate{
	Knight: {
		Type: Knight, Name: "Knight",
		Health: 8, Mana: 3, Attack: 2, Defense: 2,
		Special: Ability{
			ID: ShieldWall, Name: "Shield Wall",
			Description: "Grant target ally immunity to the next attack",
			Cooldown:    2, ManaCost: 1, Target: TargetAlly,
		},
		Description: "Stalwart defender who protects allies",
	},
	Wizard: {
		Type: Wizard, Name: "Wizard",
		Health: 5, Mana: 5, Attack: 1, Defense: 0,
		Special: Ability{
			ID: ArcaneBlast, Name: "Arcane Blast",
			Description: "Deal 4 damage and ignite, or 6 damage to boss enemies",
			Cooldown:    3, ManaCost: 2, Target: TargetEnemy,
		},
		Description: "Master of elemental magic with devastating spells",
	},
	Rogue: {
		Type: Rogue, Name: "Rogue",
		Health: 6, Mana: 4, Attack: 2, Defense: 1,
		Special: Ability{
			ID: ShadowStep, Name: "Shadow Step",
			Description: "Enter stealth, next attack deals +2 damage and grants +1 treasure",
			Cooldown:    2, ManaCost: 1, Target: TargetSelf,
		},
		Description: "Swift and cunning, strikes from the shadows",
	},
	Cleric: {
		Type: Cleric, Name: "Cleric",
		Health: 7, Mana: 4, Attack: 1, Defense: 1,
		Special: Ability{
			ID: DivineIntervention, Name: "Divine Intervention",
			Description: "Heal target for 4 HP, cleanse all debuffs and grant regeneration",
			Cooldown:    2, ManaCost: 2, Target: TargetAlly,
		},
		Description: "Holy healer blessed with divine powers",
	},
}

// Hero returns the template for the given hero type.
func Hero(t HeroType) (HeroTemplate, bool) {
	h, ok := heroes[t]
	return h, ok
}

// HeroTypes lists all playable hero types in a stable order.
func HeroTypes() []HeroType {
	return []HeroType{Knight, Wizard, Rogue, Cleric}
}
