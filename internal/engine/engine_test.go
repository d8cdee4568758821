package engine

import (
	"testing"

	"github.com/flip7-games/flip7/internal/deck"
)

// identitySource keeps Build's enumeration order through a shuffle, so
// tests know exactly which card is on top.
type identitySource struct{}

func (identitySource) Intn(n int) int { return n - 1 }

// table builds a started round over a fixed deck. Dealer sits last so
// the turn order matches the seating order.
func table(t *testing.T, names []string, cards []deck.Card) (*Engine, *Game) {
	t.Helper()

	players := make([]Player, 0, len(names))
	for _, name := range names {
		players = append(players, NewPlayer(name, false))
	}
	g := NewGame(players)
	g.DealerIndex = len(players) - 1
	g.Deck = cards

	eng := New(identitySource{})
	g = eng.StartRound(g)
	if g.PlayRound == nil {
		t.Fatal("round did not start")
	}
	return eng, g
}

func cards(cs ...deck.Card) []deck.Card { return cs }

func TestStartRoundTurnOrder(t *testing.T) {
	t.Parallel()

	players := []Player{NewPlayer("a", false), NewPlayer("b", false), NewPlayer("c", false)}
	g := NewGame(players)
	g.DealerIndex = 1
	g.Deck = cards(deck.NumberCard(1))

	g = New(identitySource{}).StartRound(g)

	want := []string{players[2].ID, players[0].ID, players[1].ID}
	for i, id := range want {
		if g.PlayRound.TurnOrder[i] != id {
			t.Errorf("turn order[%d]: expected %s got %s", i, id, g.PlayRound.TurnOrder[i])
		}
	}
	if g.PlayRound.ActivePlayerID() != players[2].ID {
		t.Errorf("seat after the dealer must open")
	}
	for _, hand := range g.PlayRound.PlayerHands {
		if hand.CardCount() != 0 {
			t.Error("hands must start empty")
		}
	}
}

func TestStartRoundTiebreakerFilter(t *testing.T) {
	t.Parallel()

	players := []Player{NewPlayer("a", false), NewPlayer("b", false), NewPlayer("c", false)}
	g := NewGame(players)
	g.DealerIndex = 2
	g.Deck = cards(deck.NumberCard(1))
	g.Tiebreaker = &Tiebreaker{PlayerIDs: []string{players[0].ID, players[2].ID}}

	g = New(identitySource{}).StartRound(g)

	if len(g.PlayRound.TurnOrder) != 2 {
		t.Fatalf("expected 2 participants got %d", len(g.PlayRound.TurnOrder))
	}
	if g.PlayRound.TurnOrder[0] != players[0].ID || g.PlayRound.TurnOrder[1] != players[2].ID {
		t.Error("tiebreaker filter must preserve relative seating")
	}
	if _, ok := g.PlayRound.PlayerHands[players[1].ID]; ok {
		t.Error("excluded player must have no hand")
	}
}

func TestStartRoundNoopWhenRoundActive(t *testing.T) {
	t.Parallel()

	eng, g := table(t, []string{"a", "b"}, cards(deck.NumberCard(1)))
	if got := eng.StartRound(g); got != g {
		t.Error("starting over an active round must be a no-op")
	}
}

func TestHitDealsOneCardAndAdvances(t *testing.T) {
	t.Parallel()

	eng, g := table(t, []string{"a", "b"}, cards(deck.NumberCard(5), deck.NumberCard(9)))
	a := g.PlayRound.TurnOrder[0]

	ng := eng.Hit(g)

	hand := ng.PlayRound.PlayerHands[a]
	if len(hand.NumberCards) != 1 || hand.NumberCards[0] != 5 {
		t.Fatalf("expected [5] got %v", hand.NumberCards)
	}
	if len(ng.Deck) != 1 {
		t.Errorf("expected 1 card left got %d", len(ng.Deck))
	}
	if ng.PlayRound.TurnIndex != 1 {
		t.Errorf("turn must pass, index %d", ng.PlayRound.TurnIndex)
	}
	if len(ng.PlayRound.DealLog) != 1 || ng.PlayRound.DealLog[0].Event != EventDeal {
		t.Errorf("expected one deal event got %v", ng.PlayRound.DealLog)
	}

	// The input snapshot stays untouched.
	if len(g.PlayRound.PlayerHands[a].NumberCards) != 0 {
		t.Error("transition mutated its input")
	}
}

func TestHitDuplicateBusts(t *testing.T) {
	t.Parallel()

	eng, g := table(t, []string{"a", "b"},
		cards(deck.NumberCard(5), deck.NumberCard(9), deck.NumberCard(5)))
	a := g.PlayRound.TurnOrder[0]

	g = eng.Hit(g) // a: 5
	g = eng.Hit(g) // b: 9
	g = eng.Hit(g) // a: 5 again

	hand := g.PlayRound.PlayerHands[a]
	if hand.Status != StatusBusted {
		t.Fatalf("expected busted got %s", hand.Status)
	}
	last := g.PlayRound.DealLog[len(g.PlayRound.DealLog)-1]
	if last.Event != EventBust || last.PlayerID != a {
		t.Errorf("expected bust event for %s got %+v", a, last)
	}
	// The deal itself is logged before the bust.
	penultimate := g.PlayRound.DealLog[len(g.PlayRound.DealLog)-2]
	if penultimate.Event != EventDeal || penultimate.PlayerID != a {
		t.Errorf("expected deal event before bust got %+v", penultimate)
	}
}

func TestHitFlip7Locks(t *testing.T) {
	t.Parallel()

	deckCards := []deck.Card{}
	for _, pair := range [][2]int{{1, 8}, {2, 9}, {3, 10}, {4, 11}, {5, 12}, {6, 0}} {
		deckCards = append(deckCards, deck.NumberCard(pair[0]), deck.NumberCard(pair[1]))
	}
	deckCards = append(deckCards, deck.NumberCard(7))

	eng, g := table(t, []string{"a", "b"}, deckCards)
	a := g.PlayRound.TurnOrder[0]

	for i := 0; i < 13; i++ {
		g = eng.Hit(g)
	}

	hand := g.PlayRound.PlayerHands[a]
	if len(hand.NumberCards) != 7 {
		t.Fatalf("expected 7 numbers got %v", hand.NumberCards)
	}
	if hand.Status != StatusStood {
		t.Errorf("a flip 7 must lock the hand, got %s", hand.Status)
	}
}

func TestStand(t *testing.T) {
	t.Parallel()

	eng, g := table(t, []string{"a", "b"}, cards(deck.NumberCard(1)))
	a := g.PlayRound.TurnOrder[0]

	g = eng.Stand(g)

	if g.PlayRound.PlayerHands[a].Status != StatusStood {
		t.Error("expected stood")
	}
	if g.PlayRound.ActivePlayerID() == a {
		t.Error("turn must pass")
	}
}

func TestFreezeEndsHand(t *testing.T) {
	t.Parallel()

	eng, g := table(t, []string{"a", "b"}, cards(deck.ActionCard(deck.ActionFreeze)))
	a := g.PlayRound.TurnOrder[0]

	g = eng.Hit(g)

	if g.PlayRound.PlayerHands[a].Status != StatusFrozen {
		t.Errorf("expected frozen got %s", g.PlayRound.PlayerHands[a].Status)
	}
	if g.PlayRound.ActivePlayerID() == a {
		t.Error("turn must pass")
	}
}

func TestSecondChanceSave(t *testing.T) {
	t.Parallel()

	eng, g := table(t, []string{"a", "b"}, cards(
		deck.ActionCard(deck.ActionSecondChance), // a
		deck.NumberCard(1),                       // b
		deck.NumberCard(5),                       // a
		deck.NumberCard(2),                       // b
		deck.NumberCard(5),                       // a, duplicate
	))
	a := g.PlayRound.TurnOrder[0]

	for i := 0; i < 5; i++ {
		g = eng.Hit(g)
	}

	hand := g.PlayRound.PlayerHands[a]
	if hand.Status != StatusPlaying {
		t.Fatalf("shield must keep the hand alive, got %s", hand.Status)
	}
	if len(hand.NumberCards) != 1 || hand.NumberCards[0] != 5 {
		t.Errorf("duplicate must leave the hand, got %v", hand.NumberCards)
	}
	if hand.HasSecondChance {
		t.Error("shield is consumed")
	}
	if len(hand.Actions) != 0 {
		t.Errorf("consumed shield must leave actions, got %v", hand.Actions)
	}
	// Both the duplicate and the spent shield stay accounted for.
	if len(hand.CancelledCards) != 2 {
		t.Fatalf("expected 2 cancelled cards got %v", hand.CancelledCards)
	}
	if hand.CancelledCards[0] != deck.NumberCard(5) ||
		hand.CancelledCards[1] != deck.ActionCard(deck.ActionSecondChance) {
		t.Errorf("unexpected cancelled cards %v", hand.CancelledCards)
	}
	last := g.PlayRound.DealLog[len(g.PlayRound.DealLog)-1]
	if last.Event != EventSecondChanceSave {
		t.Errorf("expected save event got %+v", last)
	}
}

func TestSecondChanceGift(t *testing.T) {
	t.Parallel()

	eng, g := table(t, []string{"a", "b"}, cards(
		deck.ActionCard(deck.ActionSecondChance), // a
		deck.NumberCard(1),                       // b
		deck.ActionCard(deck.ActionSecondChance), // a, duplicate shield
	))
	a, b := g.PlayRound.TurnOrder[0], g.PlayRound.TurnOrder[1]

	g = eng.Hit(g)
	g = eng.Hit(g)
	g = eng.Hit(g)

	pending := g.PlayRound.PendingAction
	if pending == nil || pending.Kind != PendingSecondChanceGift {
		t.Fatalf("expected gift pending got %+v", pending)
	}
	if pending.SourcePlayerID != a {
		t.Errorf("expected source %s got %s", a, pending.SourcePlayerID)
	}
	if len(pending.EligiblePlayerIDs) != 1 || pending.EligiblePlayerIDs[0] != b {
		t.Errorf("expected eligible [%s] got %v", b, pending.EligiblePlayerIDs)
	}

	g = eng.ResolveSecondChance(g, b)

	if g.PlayRound.PendingAction != nil {
		t.Fatal("gift must clear the pending action")
	}
	if !g.PlayRound.PlayerHands[b].HasSecondChance {
		t.Error("target must hold the shield")
	}
	if !g.PlayRound.PlayerHands[a].HasSecondChance {
		t.Error("source keeps its own shield")
	}
	if len(g.PlayRound.PlayerHands[a].Actions) != 1 {
		t.Errorf("source must keep exactly one shield action, got %v", g.PlayRound.PlayerHands[a].Actions)
	}
	last := g.PlayRound.DealLog[len(g.PlayRound.DealLog)-1]
	if last.Event != EventSecondChanceGift || last.PlayerID != b {
		t.Errorf("expected gift event for %s got %+v", b, last)
	}
}

func TestSecondChanceDiscardedNoEligible(t *testing.T) {
	t.Parallel()

	eng, g := table(t, []string{"a", "b"}, cards(
		deck.ActionCard(deck.ActionSecondChance), // a
		deck.ActionCard(deck.ActionSecondChance), // b
		deck.ActionCard(deck.ActionSecondChance), // a, nobody can take it
	))

	g = eng.Hit(g)
	g = eng.Hit(g)
	g = eng.Hit(g)

	if g.PlayRound.PendingAction != nil {
		t.Fatal("no eligible target must resolve immediately")
	}
	last := g.PlayRound.DealLog[len(g.PlayRound.DealLog)-1]
	if last.Event != EventSecondChanceDiscarded {
		t.Errorf("expected discard event got %+v", last)
	}
}

func TestFlipThreeTargetAndStagger(t *testing.T) {
	t.Parallel()

	eng, g := table(t, []string{"a", "b"}, cards(
		deck.ActionCard(deck.ActionFlipThree),
		deck.NumberCard(2),
		deck.NumberCard(5),
		deck.NumberCard(9),
		deck.NumberCard(11),
	))
	a, b := g.PlayRound.TurnOrder[0], g.PlayRound.TurnOrder[1]

	g = eng.Hit(g)

	pending := g.PlayRound.PendingAction
	if pending == nil || pending.Kind != PendingFlipThreeTarget {
		t.Fatalf("expected target pending got %+v", pending)
	}
	if pending.ChooserID != a {
		t.Errorf("drawer chooses the target")
	}

	g = eng.ResolveFlipThree(g, b)

	// First card lands synchronously, the rest are staggered.
	if got := g.PlayRound.PlayerHands[b].NumberCards; len(got) != 1 || got[0] != 2 {
		t.Fatalf("expected [2] got %v", got)
	}
	pending = g.PlayRound.PendingAction
	if pending == nil || pending.Kind != PendingFlipThreeDealing || pending.Remaining != 2 {
		t.Fatalf("expected dealing pending with 2 remaining got %+v", pending)
	}
	if pending.TargetPlayerID != b {
		t.Errorf("expected target %s got %s", b, pending.TargetPlayerID)
	}

	g = eng.FlipThreeDealNext(g)
	if got := g.PlayRound.PlayerHands[b].NumberCards; len(got) != 2 {
		t.Fatalf("expected 2 cards got %v", got)
	}
	g = eng.FlipThreeDealNext(g)
	if got := g.PlayRound.PlayerHands[b].NumberCards; len(got) != 3 {
		t.Fatalf("expected 3 cards got %v", got)
	}
	if g.PlayRound.PendingAction != nil {
		t.Error("resolution must finish after three cards")
	}
}

func TestFlipThreeStopsOnBust(t *testing.T) {
	t.Parallel()

	eng, g := table(t, []string{"a", "b"}, cards(
		deck.ActionCard(deck.ActionFlipThree),
		deck.NumberCard(5),
		deck.NumberCard(5), // duplicate busts the target
		deck.NumberCard(9),
	))
	b := g.PlayRound.TurnOrder[1]

	g = eng.Hit(g)
	g = eng.ResolveFlipThree(g, b)
	g = eng.FlipThreeDealNext(g)

	if g.PlayRound.PlayerHands[b].Status != StatusBusted {
		t.Fatalf("expected busted got %s", g.PlayRound.PlayerHands[b].Status)
	}
	if g.PlayRound.PendingAction != nil {
		t.Error("a stopped target ends the resolution early")
	}
	if len(g.Deck) != 1 {
		t.Errorf("third card must stay on the deck, %d left", len(g.Deck))
	}
}

func TestFlipThreeAutoTargetSoleSurvivor(t *testing.T) {
	t.Parallel()

	eng, g := table(t, []string{"a", "b"}, cards(
		deck.NumberCard(1),
		deck.ActionCard(deck.ActionFlipThree),
		deck.NumberCard(4),
		deck.NumberCard(6),
		deck.NumberCard(8),
	))
	a := g.PlayRound.TurnOrder[0]

	g = eng.Hit(g)   // a: 1
	g = eng.Stand(g) // b out
	g = eng.Hit(g)   // a draws Flip Three alone

	// No prompt: the drawer targets itself and the first card lands.
	pending := g.PlayRound.PendingAction
	if pending == nil || pending.Kind != PendingFlipThreeDealing {
		t.Fatalf("expected auto-dealing pending got %+v", pending)
	}
	if pending.TargetPlayerID != a {
		t.Errorf("sole survivor must be targeted, got %s", pending.TargetPlayerID)
	}
	if got := g.PlayRound.PlayerHands[a].NumberCards; len(got) != 2 {
		t.Fatalf("expected 2 numbers got %v", got)
	}
}

func TestFlipThreeChainsQueuedResolution(t *testing.T) {
	t.Parallel()

	// The staggered deal hits another Flip Three: it queues and opens a
	// fresh target prompt once the current resolution finishes.
	eng, g := table(t, []string{"a", "b"}, cards(
		deck.ActionCard(deck.ActionFlipThree),
		deck.NumberCard(2),
		deck.ActionCard(deck.ActionFlipThree),
		deck.NumberCard(6),
		deck.NumberCard(9),
	))
	b := g.PlayRound.TurnOrder[1]

	g = eng.Hit(g)
	g = eng.ResolveFlipThree(g, b)
	g = eng.FlipThreeDealNext(g) // b draws the second Flip Three
	g = eng.FlipThreeDealNext(g)

	pending := g.PlayRound.PendingAction
	if pending == nil || pending.Kind != PendingFlipThreeTarget {
		t.Fatalf("queued flip three must surface after the deal, got %+v", pending)
	}
	if pending.ChooserID != b {
		t.Errorf("the player who drew it chooses, got %s", pending.ChooserID)
	}
}

func TestDefensiveNoops(t *testing.T) {
	t.Parallel()

	eng := New(identitySource{})
	g := NewGame([]Player{NewPlayer("a", false)})

	if got := eng.Hit(g); got != g {
		t.Error("hit without a round must be a no-op")
	}
	if got := eng.Stand(g); got != g {
		t.Error("stand without a round must be a no-op")
	}
	if got := eng.FlipThreeDealNext(g); got != g {
		t.Error("deal-next without a resolution must be a no-op")
	}
	if got := eng.ResolveFlipThree(g, "x"); got != g {
		t.Error("resolve without a pending target must be a no-op")
	}
	if got := eng.ResolveSecondChance(g, "x"); got != g {
		t.Error("resolve without a pending gift must be a no-op")
	}
	if got := eng.EndRound(g); got != g {
		t.Error("end-round without a round must be a no-op")
	}
}

func TestHitBlockedWhilePending(t *testing.T) {
	t.Parallel()

	eng, g := table(t, []string{"a", "b"}, cards(
		deck.ActionCard(deck.ActionFlipThree),
		deck.NumberCard(2),
	))

	g = eng.Hit(g)
	if g.PlayRound.PendingAction == nil {
		t.Fatal("expected pending action")
	}
	if got := eng.Hit(g); got != g {
		t.Error("hit must be blocked while a resolution is pending")
	}
	if got := eng.Stand(g); got != g {
		t.Error("stand must be blocked while a resolution is pending")
	}
}

func TestReshuffleExcludesHeldCards(t *testing.T) {
	t.Parallel()

	eng, g := table(t, []string{"a", "b"}, cards(deck.NumberCard(12)))
	a := g.PlayRound.TurnOrder[0]

	g = eng.Hit(g) // a: 12, deck now empty
	g = eng.Hit(g) // b hits, forcing a mid-round reshuffle

	var reshuffles int
	for _, ev := range g.PlayRound.DealLog {
		if ev.Event == EventReshuffle {
			reshuffles++
		}
	}
	if reshuffles != 1 {
		t.Fatalf("expected one reshuffle event got %d", reshuffles)
	}

	// 94 minus the held 12, minus the card just drawn.
	if len(g.Deck) != deck.Size-2 {
		t.Errorf("expected %d cards got %d", deck.Size-2, len(g.Deck))
	}

	var twelves int
	for _, c := range g.Deck {
		if c.Kind == deck.KindNumber && c.Number == 12 {
			twelves++
		}
	}
	held := 0
	for _, n := range g.PlayRound.PlayerHands[a].NumberCards {
		if n == 12 {
			held++
		}
	}
	if twelves+held != 12 {
		t.Errorf("12s out of balance: %d in deck, %d held", twelves, held)
	}
}

func TestEndRound(t *testing.T) {
	t.Parallel()

	eng, g := table(t, []string{"a", "b"}, cards(
		deck.NumberCard(5),
		deck.NumberCard(9),
		deck.NumberCard(7),
		deck.NumberCard(9), // busts b
	))
	a, b := g.PlayRound.TurnOrder[0], g.PlayRound.TurnOrder[1]
	dealerBefore := g.DealerIndex

	g = eng.Hit(g)   // a: 5
	g = eng.Hit(g)   // b: 9
	g = eng.Hit(g)   // a: 7
	g = eng.Hit(g)   // b: 9, bust
	g = eng.Stand(g) // a stops at 12

	if !g.PlayRound.Over() {
		t.Fatal("round should be over")
	}

	g = eng.EndRound(g)

	if g.PlayRound != nil {
		t.Fatal("play round must clear")
	}
	if len(g.Rounds) != 1 || g.Rounds[0].RoundNumber != 1 {
		t.Fatalf("expected round 1 got %+v", g.Rounds)
	}
	if got := g.Rounds[0].PlayerResults[a].Score; got != 12 {
		t.Errorf("expected 12 got %d", got)
	}
	resB := g.Rounds[0].PlayerResults[b]
	if resB.Score != 0 || !resB.Busted {
		t.Errorf("expected busted zero got %+v", resB)
	}
	if got := g.DealerIndex; got != (dealerBefore+1)%2 {
		t.Errorf("dealer must rotate, got %d", got)
	}
}

func TestEndRoundZeroResultForExcluded(t *testing.T) {
	t.Parallel()

	players := []Player{NewPlayer("a", false), NewPlayer("b", false), NewPlayer("c", false)}
	g := NewGame(players)
	g.DealerIndex = 2
	g.Deck = cards(deck.NumberCard(3))
	g.Tiebreaker = &Tiebreaker{PlayerIDs: []string{players[0].ID, players[1].ID}}

	eng := New(identitySource{})
	g = eng.StartRound(g)
	g = eng.Stand(g)
	g = eng.Stand(g)
	g = eng.EndRound(g)

	res, ok := g.Rounds[0].PlayerResults[players[2].ID]
	if !ok {
		t.Fatal("excluded player needs a result entry")
	}
	if res.Score != 0 || res.Busted {
		t.Errorf("expected zero non-busted result got %+v", res)
	}
}

func TestEndRoundFlattensCancelledCards(t *testing.T) {
	t.Parallel()

	eng, g := table(t, []string{"a", "b"}, cards(
		deck.ActionCard(deck.ActionSecondChance), // a
		deck.NumberCard(1),                       // b
		deck.NumberCard(5),                       // a
		deck.NumberCard(2),                       // b
		deck.NumberCard(5),                       // a, saved
	))
	a := g.PlayRound.TurnOrder[0]

	for i := 0; i < 5; i++ {
		g = eng.Hit(g)
	}
	g = eng.Stand(g) // b
	g = eng.Stand(g) // a
	g = eng.EndRound(g)

	res := g.Rounds[0].PlayerResults[a]
	// Score counts the single surviving 5; accounting sees both plus
	// the spent shield.
	if res.Score != 5 {
		t.Errorf("expected 5 got %d", res.Score)
	}
	if len(res.NumberCards) != 2 {
		t.Errorf("cancelled duplicate must flatten back, got %v", res.NumberCards)
	}
	if len(res.Actions) != 1 {
		t.Errorf("spent shield must flatten back, got %v", res.Actions)
	}

	dealt := g.DealtTally()
	if dealt.Numbers[5] != 2 {
		t.Errorf("both 5s must count as dealt, got %d", dealt.Numbers[5])
	}
	if dealt.Actions[deck.ActionSecondChance] != 1 {
		t.Errorf("shield must count as dealt, got %d", dealt.Actions[deck.ActionSecondChance])
	}
}

func TestSetAndClearTiebreaker(t *testing.T) {
	t.Parallel()

	eng := New(identitySource{})
	g := NewGame([]Player{NewPlayer("a", false), NewPlayer("b", false)})

	g = eng.SetTiebreaker(g, []string{g.Players[0].ID, g.Players[1].ID})
	if g.Tiebreaker == nil || len(g.Tiebreaker.PlayerIDs) != 2 {
		t.Fatalf("expected tiebreaker got %+v", g.Tiebreaker)
	}

	g = eng.ClearTiebreaker(g)
	if g.Tiebreaker != nil {
		t.Error("expected cleared tiebreaker")
	}
}
