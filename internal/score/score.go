// Package score computes a hand's point total from its number cards
// and modifiers, including bust and Flip 7 bonus rules.
package score

import (
	"strconv"

	"github.com/flip7-games/flip7/internal/deck"
	"github.com/flip7-games/flip7/internal/strpool"
)

const Flip7Bonus = 15

type Result struct {
	Total         int    `json:"total"`
	NumberSum     int    `json:"numberSum"`
	Doubled       bool   `json:"doubled"`
	ModifierBonus int    `json:"modifierBonus"`
	Flip7         bool   `json:"flip7"`
	Breakdown     string `json:"breakdown"`
}

// HasDuplicates reports whether any number value repeats. Zero counts
// as a real value: [0,0] is a duplicate.
func HasDuplicates(numbers []int) bool {
	seen := make(map[int]struct{}, len(numbers))
	for _, n := range numbers {
		if _, ok := seen[n]; ok {
			return true
		}
		seen[n] = struct{}{}
	}
	return false
}

// Calculate never fails: a busted or duplicate-holding hand scores a
// zero result rather than an error.
func Calculate(numbers []int, modifiers []deck.Modifier, busted bool) Result {
	if busted || HasDuplicates(numbers) {
		return Result{Breakdown: "Busted! 0 pts"}
	}

	var numberSum int
	for _, n := range numbers {
		numberSum += n
	}

	var hasX2 bool
	var modifierBonus int
	for _, m := range modifiers {
		if m == deck.ModifierX2 {
			hasX2 = true
			continue
		}
		bonus, err := strconv.Atoi(string(m[1:]))
		if err == nil {
			modifierBonus += bonus
		}
	}

	doubled := numberSum
	if hasX2 {
		doubled = numberSum * 2
	}

	flip7 := len(numbers) == 7
	total := doubled + modifierBonus
	if flip7 {
		total += Flip7Bonus
	}

	return Result{
		Total:         total,
		NumberSum:     numberSum,
		Doubled:       hasX2,
		ModifierBonus: modifierBonus,
		Flip7:         flip7,
		Breakdown:     breakdown(numberSum, doubled, modifierBonus, hasX2, flip7, total),
	}
}

func breakdown(numberSum, doubled, modifierBonus int, hasX2, flip7 bool, total int) string {
	buf := strpool.Get()
	defer func() {
		buf.Reset()
		strpool.Put(buf)
	}()

	buf.WriteString("Cards: ")
	buf.WriteString(strconv.Itoa(numberSum))
	if hasX2 {
		buf.WriteString(" → ×2 = ")
		buf.WriteString(strconv.Itoa(doubled))
	}
	if modifierBonus > 0 {
		buf.WriteString(" + ")
		buf.WriteString(strconv.Itoa(modifierBonus))
		buf.WriteString(" bonus")
	}
	if flip7 {
		buf.WriteString(" + 15 (Flip 7!)")
	}
	buf.WriteString(" = ")
	buf.WriteString(strconv.Itoa(total))

	return buf.String()
}
