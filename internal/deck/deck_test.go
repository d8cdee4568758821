package deck

import "testing"

// identitySource makes Shuffle a no-op permutation.
type identitySource struct{}

func (identitySource) Intn(n int) int { return n - 1 }

func TestBuildComposition(t *testing.T) {
	t.Parallel()

	cards := Build()
	if len(cards) != Size {
		t.Fatalf("expected %d cards got %d", Size, len(cards))
	}

	tally := NewTally()
	for _, c := range cards {
		tally.Add(c)
	}

	if got := tally.Numbers[0]; got != 1 {
		t.Errorf("expected one 0 card got %d", got)
	}
	for value := 1; value <= 12; value++ {
		if got := tally.Numbers[value]; got != value {
			t.Errorf("expected %d copies of %d got %d", value, value, got)
		}
	}
	if got := tally.Modifiers[ModifierPlus4]; got != 3 {
		t.Errorf("expected 3 copies of +4 got %d", got)
	}
	if got := tally.Modifiers[ModifierX2]; got != 2 {
		t.Errorf("expected 2 copies of ×2 got %d", got)
	}
	for _, a := range []Action{ActionFreeze, ActionFlipThree, ActionSecondChance} {
		if got := tally.Actions[a]; got != 2 {
			t.Errorf("expected 2 copies of %s got %d", a, got)
		}
	}
}

func TestShuffleDoesNotMutate(t *testing.T) {
	t.Parallel()

	original := Build()
	snapshot := make([]Card, len(original))
	copy(snapshot, original)

	shuffled := Shuffle(&FastSource{}, original)

	for i := range original {
		if original[i] != snapshot[i] {
			t.Fatalf("input mutated at index %d", i)
		}
	}
	if len(shuffled) != len(original) {
		t.Fatalf("expected %d cards got %d", len(original), len(shuffled))
	}

	tally := NewTally()
	for _, c := range shuffled {
		tally.Add(c)
	}
	if tally.Total() != Size {
		t.Errorf("shuffle changed the multiset: %d cards", tally.Total())
	}
}

func TestShuffleDeterministicSource(t *testing.T) {
	t.Parallel()

	built := Build()
	shuffled := Shuffle(identitySource{}, built)
	for i := range built {
		if shuffled[i] != built[i] {
			t.Fatalf("identity source must preserve order, diverged at %d", i)
		}
	}
}

func TestNewShuffled(t *testing.T) {
	t.Parallel()

	cards := NewShuffled(&FastSource{})
	if len(cards) != Size {
		t.Fatalf("expected %d cards got %d", Size, len(cards))
	}
}
