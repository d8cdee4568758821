// Package strategy holds the computer player policy: pure decision
// functions over game snapshots, deterministic for identical inputs.
package strategy

import (
	"github.com/flip7-games/flip7/internal/engine"
	"github.com/flip7-games/flip7/internal/odds"
	"github.com/flip7-games/flip7/internal/score"
)

type Decision string

const (
	Hit   Decision = "hit"
	Stand Decision = "stand"
)

const (
	baseThreshold = 35
	minThreshold  = 20
	maxThreshold  = 65
)

// DecideAction decides hit or stand for the player's current hand.
// Stand when the bust chance meets a threshold tuned by hand size,
// hand value and relative standings.
func DecideAction(g *engine.Game, playerID string) Decision {
	pr := g.PlayRound
	if pr == nil {
		return Stand
	}
	hand := pr.PlayerHands[playerID]
	if hand == nil {
		return Stand
	}

	// Nothing drawn yet: there is no information to act on.
	if hand.CardCount() == 0 {
		return Hit
	}

	// An active shield absorbs one bust for free.
	if hand.HasSecondChance {
		return Hit
	}

	chance := odds.BustChance(hand.NumberCards, g.DealtTally(), pr.HeldTally())
	result := score.Calculate(hand.NumberCards, hand.Modifiers, false)
	myTotal := g.PlayerTotal(playerID)

	// Chase early growth: one card and survivable odds is always a hit.
	if hand.CardCount() <= 1 && chance.Percent < 60 {
		return Hit
	}

	threshold := baseThreshold

	// More cards in hand raises risk tolerance: chase the Flip 7 bonus.
	switch {
	case hand.CardCount() >= 6:
		threshold += 12
	case hand.CardCount() >= 5:
		threshold += 6
	}

	// Protect a strong hand, gamble a worthless one.
	switch {
	case result.Total <= 5:
		threshold += 10
	case result.Total >= 30:
		threshold -= 10
	case result.Total >= 20:
		threshold -= 5
	}

	var opponents []engine.Player
	for _, p := range g.Players {
		if p.ID != playerID {
			opponents = append(opponents, p)
		}
	}

	if len(opponents) > 0 {
		maxOpponent := g.PlayerTotal(opponents[0].ID)
		anyNearWin := false
		for _, p := range opponents {
			total := g.PlayerTotal(p.ID)
			if total > maxOpponent {
				maxOpponent = total
			}
			if total >= 170 {
				anyNearWin = true
			}
		}

		switch {
		case maxOpponent-myTotal > 50:
			threshold += 10
		case maxOpponent-myTotal > 20:
			threshold += 5
		}
		if myTotal-maxOpponent > 30 {
			threshold -= 8
		}
		if anyNearWin {
			threshold += 8
		}

		threshold += roundAwareness(pr, opponents, result.Total)
	}

	if threshold < minThreshold {
		threshold = minThreshold
	}
	if threshold > maxThreshold {
		threshold = maxThreshold
	}

	if chance.Percent >= float64(threshold) {
		return Stand
	}
	return Hit
}

// roundAwareness adjusts for how the current round is going for the
// opponents that are in it.
func roundAwareness(pr *engine.PlayRound, opponents []engine.Player, myRoundScore int) int {
	var hands []*engine.Hand
	for _, p := range opponents {
		if hand, ok := pr.PlayerHands[p.ID]; ok {
			hands = append(hands, hand)
		}
	}
	if len(hands) == 0 {
		return 0
	}

	var busted, done int
	bestStanding := 0
	for _, hand := range hands {
		switch hand.Status {
		case engine.StatusBusted:
			busted++
			done++
		case engine.StatusStood, engine.StatusFrozen:
			done++
			if total := score.Calculate(hand.NumberCards, hand.Modifiers, false).Total; total > bestStanding {
				bestStanding = total
			}
		}
	}

	// The risk pool just thinned favorably: protect current gains.
	if busted*2 > len(hands) {
		return -10
	}
	// Everyone else is finished and ahead: must catch up.
	if done == len(hands) && bestStanding-myRoundScore >= 10 {
		return 8
	}
	return 0
}

// ChooseFlipThreeTarget picks the opponent with the highest cumulative
// score; self when no other eligible player exists. Ties break on
// encounter order.
func ChooseFlipThreeTarget(chooserID string, eligibleIDs []string, g *engine.Game) string {
	var opponents []string
	for _, id := range eligibleIDs {
		if id != chooserID {
			opponents = append(opponents, id)
		}
	}
	if len(opponents) == 0 {
		return chooserID
	}

	best, bestScore := opponents[0], g.PlayerTotal(opponents[0])
	for _, id := range opponents[1:] {
		if total := g.PlayerTotal(id); total > bestScore {
			best, bestScore = id, total
		}
	}
	return best
}

// ChooseSecondChanceTarget gifts the shield to the least threatening
// eligible player: the lowest cumulative score, ties on encounter
// order.
func ChooseSecondChanceTarget(eligibleIDs []string, g *engine.Game) string {
	if len(eligibleIDs) == 0 {
		return ""
	}
	if len(eligibleIDs) == 1 {
		return eligibleIDs[0]
	}

	best, bestScore := eligibleIDs[0], g.PlayerTotal(eligibleIDs[0])
	for _, id := range eligibleIDs[1:] {
		if total := g.PlayerTotal(id); total < bestScore {
			best, bestScore = id, total
		}
	}
	return best
}
