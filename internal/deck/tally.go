package deck

// Tally counts cards per kind and value.
type Tally struct {
	Numbers   map[int]int      `json:"numbers"`
	Modifiers map[Modifier]int `json:"modifiers"`
	Actions   map[Action]int   `json:"actions"`
}

func NewTally() Tally {
	return Tally{
		Numbers:   map[int]int{},
		Modifiers: map[Modifier]int{},
		Actions:   map[Action]int{},
	}
}

func (t Tally) Add(c Card) {
	switch c.Kind {
	case KindNumber:
		t.Numbers[c.Number]++
	case KindModifier:
		t.Modifiers[c.Modifier]++
	case KindAction:
		t.Actions[c.Action]++
	}
}

func (t Tally) Total() int {
	var n int
	for _, c := range t.Numbers {
		n += c
	}
	for _, c := range t.Modifiers {
		n += c
	}
	for _, c := range t.Actions {
		n += c
	}
	return n
}

// Full returns the canonical composition as a tally.
func Full() Tally {
	t := NewTally()
	for value, count := range numberCounts {
		t.Numbers[value] = count
	}
	for _, m := range modifierCounts {
		t.Modifiers[m.Modifier] = m.Count
	}
	for _, a := range actionCounts {
		t.Actions[a.Action] = a.Count
	}
	return t
}

// Remaining subtracts the dealt tallies from the canonical composition,
// clamping every count at zero. Over-accounting never goes negative.
func Remaining(dealt ...Tally) Tally {
	remaining := Full()
	for _, t := range dealt {
		for value, count := range t.Numbers {
			remaining.Numbers[value] = clamp(remaining.Numbers[value] - count)
		}
		for modifier, count := range t.Modifiers {
			remaining.Modifiers[modifier] = clamp(remaining.Modifiers[modifier] - count)
		}
		for action, count := range t.Actions {
			remaining.Actions[action] = clamp(remaining.Actions[action] - count)
		}
	}
	return remaining
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
