package catalog

import "testing"

func TestHero_AllFourClasses(t *testing.T) {
	cases := []struct {
		ht      HeroType
		hp, mp  int
		atk     int
		def     int
		special AbilityID
	}{
		{Knight, 8, 3, 2, 2, ShieldWall},
		{Wizard, 5, 5, 1, 0, ArcaneBlast},
		{Rogue, 6, 4, 2, 1, ShadowStep},
		{Cleric, 7, 4, 1, 1, DivineIntervention},
	}
	for _, tc := range cases {
		h, ok := Hero(tc.ht)
		if !ok {
			t.Fatalf("hero %q missing", tc.ht)
		}
		if h.Health != tc.hp || h.Mana != tc.mp || h.Attack != tc.atk || h.Defense != tc.def {
			t.Errorf("%s stats: got %d/%d/%d/%d", tc.ht, h.Health, h.Mana, h.Attack, h.Defense)
		}
		if h.Special.ID != tc.special {
			t.Errorf("%s special: got %s, want %s", tc.ht, h.Special.ID, tc.special)
		}
	}
	if _, ok := Hero("necromancer"); ok {
		t.Error("unknown hero type must not resolve")
	}
}

func TestCard_Lookup(t *testing.T) {
	c, ok := Card("fireball")
	if !ok {
		t.Fatal("fireball missing from catalog")
	}
	if c.Kind != KindSpell || c.School != SchoolFire || c.ManaCost != 2 || c.Target != TargetEnemy {
		t.Errorf("unexpected fireball template: %+v", c)
	}
	if _, ok := Card("no_such_card"); ok {
		t.Error("unknown card id must not resolve")
	}
}

func TestDeckPool_ExcludesEvents(t *testing.T) {
	pool := DeckPool()
	if len(pool) != len(SpellCards())+len(EquipmentCards()) {
		t.Errorf("pool size %d does not match spell+equipment pools", len(pool))
	}
	for _, c := range pool {
		if c.Kind == KindEvent {
			t.Errorf("event card %q leaked into the deck pool", c.ID)
		}
	}
}

func TestEquipmentOfRarity(t *testing.T) {
	rare := EquipmentOfRarity(RarityRare)
	if len(rare) != 1 || rare[0].ID != "flame_blade" {
		t.Errorf("expected only the flame blade at rare, got %+v", rare)
	}
	for _, c := range EquipmentOfRarity(RarityCommon) {
		if c.Rarity != RarityCommon {
			t.Errorf("rarity filter leaked %q", c.ID)
		}
	}
}

func TestDungeon_Shape(t *testing.T) {
	rooms := Dungeon()
	if len(rooms) != 7 {
		t.Fatalf("expected 7 rooms, got %d", len(rooms))
	}
	if rooms[0].Type != RoomSafe || rooms[0].Enemy != nil {
		t.Error("the first room must be a safe entrance")
	}
	last := rooms[len(rooms)-1]
	if last.Type != RoomBoss || last.Enemy == nil || !last.Enemy.Boss {
		t.Error("the last room must hold the boss")
	}
	if last.Reward.Kind != RewardVictory {
		t.Error("clearing the boss room must end the run")
	}
	for i, r := range rooms {
		switch r.Type {
		case RoomCombat, RoomBoss, RoomReward:
			if r.Enemy == nil {
				t.Errorf("room %d (%s) needs an enemy", i, r.Name)
			}
		case RoomChallenge:
			if r.Challenge == nil {
				t.Errorf("room %d (%s) needs a challenge", i, r.Name)
			}
		}
	}
}
