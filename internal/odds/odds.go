// Package odds derives the chance that the next draw busts a hand,
// from the remaining-card counts of the deck.
package odds

import "github.com/flip7-games/flip7/internal/deck"

type Chance struct {
	Percent        float64 `json:"bustChance"`
	BustCards      int     `json:"bustCards"`
	TotalRemaining int     `json:"totalRemaining"`
}

// BustChance computes the chance that the next card busts a hand
// holding the given number values. dealt tallies cover everything no
// longer in the deck: past rounds plus every currently held hand.
// Duplicates in the hand count their value once.
func BustChance(handNumbers []int, dealt ...deck.Tally) Chance {
	remaining := deck.Remaining(dealt...)
	totalRemaining := remaining.Total()

	unique := make(map[int]struct{}, len(handNumbers))
	var bustCards int
	for _, n := range handNumbers {
		if _, ok := unique[n]; ok {
			continue
		}
		unique[n] = struct{}{}
		bustCards += remaining.Numbers[n]
	}

	var percent float64
	if totalRemaining > 0 {
		percent = float64(bustCards) / float64(totalRemaining) * 100
	}

	return Chance{Percent: percent, BustCards: bustCards, TotalRemaining: totalRemaining}
}
