package deck

import (
	"testing"

	"dungeon-legends-server/catalog"
	"dungeon-legends-server/gameerrors"
)

func TestNew_SizeAndPool(t *testing.T) {
	d := New(40)
	if d.Remaining() != 40 {
		t.Fatalf("expected 40 cards, got %d", d.Remaining())
	}

	valid := map[string]bool{}
	for _, tmpl := range catalog.DeckPool() {
		valid[tmpl.ID] = true
	}
	for _, c := range d.Cards {
		if !valid[c.CardID] {
			t.Errorf("card %q is not in the deck pool", c.CardID)
		}
		if c.Kind == catalog.KindEvent {
			t.Errorf("event card %q must never be dealt", c.CardID)
		}
	}
}

func TestFromTemplate_UniqueInstanceIDs(t *testing.T) {
	tmpl, ok := catalog.Card("iron_sword")
	if !ok {
		t.Fatal("iron_sword missing from catalog")
	}
	a := FromTemplate(tmpl)
	b := FromTemplate(tmpl)
	if a.ID == b.ID {
		t.Error("two instances of the same template must have distinct ids")
	}
	if a.CardID != "iron_sword" || b.CardID != "iron_sword" {
		t.Error("instances must keep the template id")
	}
}

func TestDraw_Order(t *testing.T) {
	d := New(10)
	top := d.Cards[len(d.Cards)-1]
	c, err := d.Draw()
	if err != nil {
		t.Fatalf("draw failed: %v", err)
	}
	if c.ID != top.ID {
		t.Error("draw must pop the top card")
	}
	if d.Remaining() != 9 {
		t.Errorf("expected 9 remaining, got %d", d.Remaining())
	}
}

func TestDraw_ReshufflesDiscard(t *testing.T) {
	d := New(3)
	cards, err := d.DrawN(3)
	if err != nil {
		t.Fatalf("drawing the whole deck failed: %v", err)
	}
	for _, c := range cards {
		d.PutDiscard(c)
	}

	c, err := d.Draw()
	if err != nil {
		t.Fatalf("draw after reshuffle failed: %v", err)
	}
	if d.Remaining() != 2 || len(d.Discard) != 0 {
		t.Errorf("reshuffle bookkeeping wrong: %d remaining, %d discarded", d.Remaining(), len(d.Discard))
	}
	found := false
	for _, orig := range cards {
		if orig.ID == c.ID {
			found = true
		}
	}
	if !found {
		t.Error("reshuffled card must come from the discard pile")
	}
}

func TestDraw_Exhausted(t *testing.T) {
	d := New(2)
	if _, err := d.DrawN(2); err != nil {
		t.Fatalf("drawing the whole deck failed: %v", err)
	}
	if _, err := d.Draw(); err != gameerrors.ErrDeckExhausted {
		t.Fatalf("expected ErrDeckExhausted, got %v", err)
	}
}

func TestDrawN_StopsOnExhaustion(t *testing.T) {
	d := New(3)
	cards, err := d.DrawN(5)
	if err != gameerrors.ErrDeckExhausted {
		t.Fatalf("expected ErrDeckExhausted, got %v", err)
	}
	if len(cards) != 3 {
		t.Errorf("expected the 3 available cards, got %d", len(cards))
	}
}
