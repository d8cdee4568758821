package match

import (
	"sort"
	"strconv"

	"github.com/enescakir/emoji"
	"github.com/flip7-games/flip7/internal/deck"
	"github.com/flip7-games/flip7/internal/engine"
	"github.com/flip7-games/flip7/internal/score"
	"github.com/flip7-games/flip7/internal/strpool"
)

func renderCard(c deck.Card) string {
	switch c.Kind {
	case deck.KindNumber:
		return "*" + strconv.Itoa(c.Number) + "*"
	case deck.KindModifier:
		return "*" + string(c.Modifier) + "*"
	case deck.KindAction:
		return "*" + string(c.Action) + "*"
	}
	return "?"
}

func statusMark(status engine.HandStatus) string {
	switch status {
	case engine.StatusBusted:
		return emoji.Collision.String()
	case engine.StatusFrozen:
		return emoji.Snowflake.String()
	case engine.StatusStood:
		return emoji.CheckMarkButton.String()
	}
	return emoji.GameDie.String()
}

func handTotal(g *engine.Game, playerID string) int {
	hand := g.PlayRound.PlayerHands[playerID]
	busted := hand.Status == engine.StatusBusted
	return score.Calculate(hand.NumberCards, hand.Modifiers, busted).Total
}

// renderHands draws the table state in turn order.
func renderHands(g *engine.Game) string {
	buf := strpool.Get()
	defer func() {
		buf.Reset()
		strpool.Put(buf)
	}()

	pr := g.PlayRound
	for _, id := range pr.TurnOrder {
		hand := pr.PlayerHands[id]
		p, _ := g.Player(id)

		buf.WriteString(statusMark(hand.Status))
		buf.WriteString(" ")
		buf.WriteString(p.Name)
		buf.WriteString(": ")

		for i, n := range hand.NumberCards {
			if i > 0 {
				buf.WriteString(" ")
			}
			buf.WriteString(strconv.Itoa(n))
		}
		for _, m := range hand.Modifiers {
			buf.WriteString(" ")
			buf.WriteString(string(m))
		}
		if hand.HasSecondChance {
			buf.WriteString(" ")
			buf.WriteString(emoji.Shield.String())
		}

		buf.WriteString(" — ")
		buf.WriteString(strconv.Itoa(handTotal(g, id)))
		buf.WriteString(" pts\n")
	}

	return buf.String()
}

// renderRoundResults draws the score table after round roundIdx.
func renderRoundResults(g *engine.Game, roundIdx int) string {
	buf := strpool.Get()
	defer func() {
		buf.Reset()
		strpool.Put(buf)
	}()

	round := g.Rounds[roundIdx]

	sorted := make([]engine.Player, len(g.Players))
	copy(sorted, g.Players)
	sort.SliceStable(sorted, func(i, j int) bool {
		return g.PlayerTotal(sorted[i].ID) > g.PlayerTotal(sorted[j].ID)
	})

	for _, p := range sorted {
		result := round.PlayerResults[p.ID]

		buf.WriteString(p.Name)
		buf.WriteString(": +")
		buf.WriteString(strconv.Itoa(result.Score))
		if result.Flip7 {
			buf.WriteString(" ")
			buf.WriteString(emoji.PartyPopper.String())
		}
		if result.Busted {
			buf.WriteString(" ")
			buf.WriteString(emoji.Collision.String())
		}
		buf.WriteString(" → ")
		buf.WriteString(strconv.Itoa(g.PlayerTotal(p.ID)))
		buf.WriteString(" total\n")
	}

	return buf.String()
}
