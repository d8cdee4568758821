package engine

import "github.com/flip7-games/flip7/internal/deck"

type HandStatus string

const (
	StatusPlaying HandStatus = "playing"
	StatusStood   HandStatus = "stood"
	StatusFrozen  HandStatus = "frozen"
	StatusBusted  HandStatus = "busted"
)

// Hand is one player's cards for the round in progress. A hand in a
// terminal status never receives further deals until the round ends.
type Hand struct {
	NumberCards []int           `json:"numberCards"`
	Modifiers   []deck.Modifier `json:"modifiers"`
	Actions     []deck.Action   `json:"actions"`
	// Cards removed from play by a Second Chance save. Kept for
	// deck-accounting, excluded from score.
	CancelledCards  []deck.Card `json:"cancelledCards"`
	Status          HandStatus  `json:"status"`
	HasSecondChance bool        `json:"hasSecondChance"`
}

func NewHand() *Hand {
	return &Hand{
		NumberCards:    []int{},
		Modifiers:      []deck.Modifier{},
		Actions:        []deck.Action{},
		CancelledCards: []deck.Card{},
		Status:         StatusPlaying,
	}
}

func (h *Hand) Playing() bool {
	return h.Status == StatusPlaying
}

func (h *Hand) CardCount() int {
	return len(h.NumberCards) + len(h.Modifiers) + len(h.Actions)
}

func (h *Hand) Clone() *Hand {
	clone := &Hand{
		NumberCards:     make([]int, len(h.NumberCards)),
		Modifiers:       make([]deck.Modifier, len(h.Modifiers)),
		Actions:         make([]deck.Action, len(h.Actions)),
		CancelledCards:  make([]deck.Card, len(h.CancelledCards)),
		Status:          h.Status,
		HasSecondChance: h.HasSecondChance,
	}
	copy(clone.NumberCards, h.NumberCards)
	copy(clone.Modifiers, h.Modifiers)
	copy(clone.Actions, h.Actions)
	copy(clone.CancelledCards, h.CancelledCards)
	return clone
}

// Flatten merges cancelled cards back into the flat card lists, the
// shape used for round results and deck-remaining accounting.
func (h *Hand) Flatten() (numbers []int, modifiers []deck.Modifier, actions []deck.Action) {
	numbers = append([]int{}, h.NumberCards...)
	modifiers = append([]deck.Modifier{}, h.Modifiers...)
	actions = append([]deck.Action{}, h.Actions...)
	for _, c := range h.CancelledCards {
		switch c.Kind {
		case deck.KindNumber:
			numbers = append(numbers, c.Number)
		case deck.KindModifier:
			modifiers = append(modifiers, c.Modifier)
		case deck.KindAction:
			actions = append(actions, c.Action)
		}
	}
	return numbers, modifiers, actions
}

// tally counts every card the hand physically holds, cancelled ones
// included.
func (h *Hand) tally(into deck.Tally) {
	for _, n := range h.NumberCards {
		into.Add(deck.NumberCard(n))
	}
	for _, m := range h.Modifiers {
		into.Add(deck.ModifierCard(m))
	}
	for _, a := range h.Actions {
		into.Add(deck.ActionCard(a))
	}
	for _, c := range h.CancelledCards {
		into.Add(c)
	}
}

// removeSecondChance removes one Second Chance entry from Actions.
func (h *Hand) removeSecondChance() {
	for i, a := range h.Actions {
		if a == deck.ActionSecondChance {
			h.Actions = append(h.Actions[:i], h.Actions[i+1:]...)
			return
		}
	}
}
