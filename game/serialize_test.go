package game

import (
	"testing"

	"dungeon-legends-server/catalog"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	cfg := testConfig()
	m := newTestMatch(t, cfg, catalog.Knight, catalog.Wizard)
	m.CurrentRoom = 2
	m.CurrentParticipant = 1
	m.TurnCounter = 9
	m.RoundCounter = 5
	m.ComboTally[catalog.SchoolFire] = 1
	m.comboFired[catalog.SchoolIce] = true
	m.Participants[0].Hero.Treasure = 3
	m.Participants[0].Hero.AddEffect(Effect{Kind: EffectWeakness, Duration: PermanentDuration})

	data, err := m.marshalState()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	loaded, err := LoadMatch(data, cfg, nil, nil)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if loaded.ID != m.ID || loaded.Status != m.Status || loaded.Mode != m.Mode {
		t.Errorf("identity fields differ: %+v", loaded)
	}
	if loaded.CurrentRoom != 2 || loaded.CurrentParticipant != 1 {
		t.Errorf("position differs: room=%d seat=%d", loaded.CurrentRoom, loaded.CurrentParticipant)
	}
	if loaded.TurnCounter != 9 || loaded.RoundCounter != 5 {
		t.Errorf("counters differ: turn=%d round=%d", loaded.TurnCounter, loaded.RoundCounter)
	}
	if loaded.ComboTally[catalog.SchoolFire] != 1 || !loaded.comboFired[catalog.SchoolIce] {
		t.Error("combo bookkeeping lost in round trip")
	}
	if loaded.Participants[0].Hero.Treasure != 3 {
		t.Errorf("treasure lost: %d", loaded.Participants[0].Hero.Treasure)
	}
	if !loaded.Participants[0].Hero.HasEffect(EffectWeakness) {
		t.Error("permanent effect lost in round trip")
	}
	if loaded.Deck.Remaining() != m.Deck.Remaining() {
		t.Errorf("deck size differs: %d vs %d", loaded.Deck.Remaining(), m.Deck.Remaining())
	}

	// The restored match must be actionable straight away.
	if _, err := loaded.apply(loaded.Participants[1].ID, Action{Kind: ActionPass}); err != nil {
		t.Fatalf("restored match rejected a legal pass: %v", err)
	}
}

func TestLoadMatch_RejectsGarbage(t *testing.T) {
	if _, err := LoadMatch([]byte("not json"), testConfig(), nil, nil); err == nil {
		t.Error("expected an error for malformed input")
	}
	if _, err := LoadMatch([]byte(`{"version":99}`), testConfig(), nil, nil); err == nil {
		t.Error("expected an error for an unsupported version")
	}
	if _, err := LoadMatch([]byte(`{"version":1,"id":""}`), testConfig(), nil, nil); err == nil {
		t.Error("expected an error for an incomplete save")
	}
}
