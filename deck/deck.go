package deck

import (
	"math/rand"

	"github.com/google/uuid"

	"dungeon-legends-server/catalog"
	"dungeon-legends-server/gameerrors"
)

// Card is a drawn instance of a catalog template. The instance id is unique;
// everything else is immutable catalog data.
type Card struct {
	ID       string `json:"id"`
	CardID   string `json:"cardId"` // catalog template id
	Name     string `json:"name"`
	Kind     catalog.CardKind `json:"kind"`
	ManaCost int    `json:"manaCost"`
	Target   catalog.TargetKind `json:"target,omitempty"`
	School   catalog.SpellSchool `json:"school,omitempty"`
	Slot     catalog.EquipSlot `json:"slot,omitempty"`
}

// FromTemplate creates a card instance with a fresh unique id.
func FromTemplate(t catalog.CardTemplate) Card {
	return Card{
		ID:       uuid.NewString(),
		CardID:   t.ID,
		Name:     t.Name,
		Kind:     t.Kind,
		ManaCost: t.ManaCost,
		Target:   t.Target,
		School:   t.School,
		Slot:     t.Slot,
	}
}

// Deck holds the draw pile and discard pile for one match.
// Cards move Deck -> Hand -> Discard and are never duplicated in place.
type Deck struct {
	Cards   []Card `json:"cards"`
	Discard []Card `json:"discard"`
}

// rarityWeight maps rarity to its sampling weight (common 60, uncommon 30, rare 10).
func rarityWeight(r catalog.Rarity) int {
	switch r {
	case catalog.RarityCommon:
		return 60
	case catalog.RarityUncommon:
		return 30
	case catalog.RarityRare:
		return 10
	default:
		return 0
	}
}

// New builds a deck of size cards via rarity-weighted sampling from the
// catalog's spell and equipment pools, then shuffles it.
func New(size int) *Deck {
	pool := catalog.DeckPool()
	total := 0
	for _, t := range pool {
		total += rarityWeight(t.Rarity)
	}

	d := &Deck{Cards: make([]Card, 0, size)}
	for len(d.Cards) < size {
		roll := rand.Intn(total)
		for _, t := range pool {
			roll -= rarityWeight(t.Rarity)
			if roll < 0 {
				d.Cards = append(d.Cards, FromTemplate(t))
				break
			}
		}
	}
	d.Shuffle()
	return d
}

// Shuffle applies a uniform Fisher-Yates permutation to the draw pile.
func (d *Deck) Shuffle() {
	for i := len(d.Cards) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
	}
}

// Draw pops the top card, reshuffling the discard pile into the deck first if
// the draw pile is empty. Returns ErrDeckExhausted when both are empty; this
// is fatal for the match and must be surfaced, not swallowed.
func (d *Deck) Draw() (Card, error) {
	if len(d.Cards) == 0 {
		if len(d.Discard) == 0 {
			return Card{}, gameerrors.ErrDeckExhausted
		}
		d.Cards = d.Discard
		d.Discard = nil
		d.Shuffle()
	}
	c := d.Cards[len(d.Cards)-1]
	d.Cards = d.Cards[:len(d.Cards)-1]
	return c, nil
}

// DrawN draws up to n cards, stopping early only on exhaustion.
func (d *Deck) DrawN(n int) ([]Card, error) {
	out := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		c, err := d.Draw()
		if err != nil {
			return out, err
		}
		out = append(out, c)
	}
	return out, nil
}

// PutDiscard moves a played or removed card to the discard pile.
func (d *Deck) PutDiscard(c Card) {
	d.Discard = append(d.Discard, c)
}

// Remaining returns the number of cards left in the draw pile.
func (d *Deck) Remaining() int { return len(d.Cards) }
