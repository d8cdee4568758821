package match

import (
	"strings"
	"testing"

	"github.com/flip7-games/flip7/internal/deck"
	"github.com/flip7-games/flip7/internal/engine"
)

func TestRenderCard(t *testing.T) {
	t.Parallel()

	if got := renderCard(deck.NumberCard(7)); got != "*7*" {
		t.Errorf("expected *7* got %s", got)
	}
	if got := renderCard(deck.ModifierCard(deck.ModifierX2)); got != "*×2*" {
		t.Errorf("expected *×2* got %s", got)
	}
	if got := renderCard(deck.ActionCard(deck.ActionFreeze)); got != "*Freeze*" {
		t.Errorf("expected *Freeze* got %s", got)
	}
}

func TestHandTotal(t *testing.T) {
	t.Parallel()

	p := engine.NewPlayer("a", false)
	g := engine.NewGame([]engine.Player{p})
	hand := engine.NewHand()
	hand.NumberCards = []int{4, 7}
	hand.Modifiers = []deck.Modifier{deck.ModifierX2}
	g.PlayRound = &engine.PlayRound{
		TurnOrder:   []string{p.ID},
		PlayerHands: map[string]*engine.Hand{p.ID: hand},
	}

	if got := handTotal(g, p.ID); got != 22 {
		t.Errorf("expected 22 got %d", got)
	}

	hand.Status = engine.StatusBusted
	if got := handTotal(g, p.ID); got != 0 {
		t.Errorf("busted hand totals 0, got %d", got)
	}
}

func TestRenderRoundResultsOrder(t *testing.T) {
	t.Parallel()

	a, b := engine.NewPlayer("alice", false), engine.NewPlayer("bob", false)
	g := engine.NewGame([]engine.Player{a, b})
	g.Rounds = append(g.Rounds, engine.RoundResult{
		RoundNumber: 1,
		PlayerResults: map[string]engine.PlayerResult{
			a.ID: {Score: 12},
			b.ID: {Score: 30},
		},
	})

	out := renderRoundResults(g, 0)
	if strings.Index(out, "bob") > strings.Index(out, "alice") {
		t.Errorf("leader must render first:\n%s", out)
	}
	if !strings.Contains(out, "bob: +30") || !strings.Contains(out, "30 total") {
		t.Errorf("missing score line:\n%s", out)
	}
}
