package deck

import "github.com/valyala/fastrand"

// Canonical Flip 7 composition, 94 cards total. A number's multiplicity
// grows with its face value, except 0 which appears once.
var (
	numberCounts = [13]int{1, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}

	modifierCounts = []struct {
		Modifier Modifier
		Count    int
	}{
		{ModifierPlus2, 1},
		{ModifierPlus4, 3},
		{ModifierPlus6, 1},
		{ModifierPlus8, 1},
		{ModifierPlus10, 1},
		{ModifierX2, 2},
	}

	actionCounts = []struct {
		Action Action
		Count  int
	}{
		{ActionFreeze, 2},
		{ActionFlipThree, 2},
		{ActionSecondChance, 2},
	}
)

const Size = 94

// Source yields uniform random numbers in [0, n). Shuffling goes
// through it so tests can substitute a deterministic generator.
type Source interface {
	Intn(n int) int
}

// FastSource is the production Source.
type FastSource struct {
	rng fastrand.RNG
}

func (s *FastSource) Intn(n int) int {
	return int(s.rng.Uint32n(uint32(n)))
}

// Build produces the canonical 94-card multiset in enumeration order:
// numbers ascending, then modifiers, then actions.
func Build() []Card {
	cards := make([]Card, 0, Size)
	for value, count := range numberCounts {
		for i := 0; i < count; i++ {
			cards = append(cards, NumberCard(value))
		}
	}
	for _, m := range modifierCounts {
		for i := 0; i < m.Count; i++ {
			cards = append(cards, ModifierCard(m.Modifier))
		}
	}
	for _, a := range actionCounts {
		for i := 0; i < a.Count; i++ {
			cards = append(cards, ActionCard(a.Action))
		}
	}
	return cards
}

// Shuffle returns a uniformly random permutation of cards without
// mutating the input.
func Shuffle(src Source, cards []Card) []Card {
	a := make([]Card, len(cards))
	copy(a, cards)
	for i := len(a) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		a[i], a[j] = a[j], a[i]
	}
	return a
}

func NewShuffled(src Source) []Card {
	return Shuffle(src, Build())
}
