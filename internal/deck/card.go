package deck

import "fmt"

type Kind uint8

const (
	KindNumber Kind = iota + 1
	KindModifier
	KindAction
)

type Modifier string

const (
	ModifierPlus2  Modifier = "+2"
	ModifierPlus4  Modifier = "+4"
	ModifierPlus6  Modifier = "+6"
	ModifierPlus8  Modifier = "+8"
	ModifierPlus10 Modifier = "+10"
	ModifierX2     Modifier = "×2"
)

type Action string

const (
	ActionFreeze       Action = "Freeze"
	ActionFlipThree    Action = "Flip Three"
	ActionSecondChance Action = "Second Chance"
)

// Card is a tagged union: exactly one payload field is meaningful,
// selected by Kind. Cards are immutable values with no identity
// beyond kind+value.
type Card struct {
	Kind     Kind     `json:"kind"`
	Number   int      `json:"number,omitempty"`
	Modifier Modifier `json:"modifier,omitempty"`
	Action   Action   `json:"action,omitempty"`
}

func NumberCard(n int) Card {
	return Card{Kind: KindNumber, Number: n}
}

func ModifierCard(m Modifier) Card {
	return Card{Kind: KindModifier, Modifier: m}
}

func ActionCard(a Action) Card {
	return Card{Kind: KindAction, Action: a}
}

func (c Card) String() string {
	switch c.Kind {
	case KindNumber:
		return fmt.Sprintf("%d", c.Number)
	case KindModifier:
		return string(c.Modifier)
	case KindAction:
		return string(c.Action)
	}
	return "?"
}
