package engine

import (
	"time"

	"github.com/flip7-games/flip7/internal/deck"
	"github.com/google/uuid"
)

// WinScore is the cumulative total a player must reach to win.
const WinScore = 200

type Player struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Computer bool   `json:"computer"`
}

func NewPlayer(name string, computer bool) Player {
	return Player{ID: uuid.New().String(), Name: name, Computer: computer}
}

// PlayerResult is one player's share of a completed round, immutable
// once written. Cancelled cards are merged back into the flat lists so
// deck-remaining accounting still treats them as seen.
type PlayerResult struct {
	NumberCards []int           `json:"numberCards"`
	Modifiers   []deck.Modifier `json:"modifiers"`
	Actions     []deck.Action   `json:"actions"`
	Busted      bool            `json:"busted"`
	Score       int             `json:"score"`
	Flip7       bool            `json:"flip7"`
}

type RoundResult struct {
	RoundNumber   int                     `json:"roundNumber"`
	PlayerResults map[string]PlayerResult `json:"playerResults"`
	DealOrder     []DealEvent             `json:"dealOrder"`
}

// Tiebreaker restricts subsequent rounds to the players tied at the
// top once the win line is crossed.
type Tiebreaker struct {
	PlayerIDs      []string `json:"playerIds"`
	StartedAtRound int      `json:"startedAtRound"`
}

// Game is the top-level aggregate. Plain nested records throughout:
// it round-trips through JSON verbatim, mid-round state included.
type Game struct {
	ID          string       `json:"id"`
	Players     []Player     `json:"players"`
	Rounds      []RoundResult `json:"rounds"`
	Deck        []deck.Card  `json:"deck"`
	DealerIndex int          `json:"dealerIndex"`
	Tiebreaker  *Tiebreaker  `json:"tiebreaker"`
	PlayRound   *PlayRound   `json:"playRound"`
	CreatedAt   time.Time    `json:"createdAt"`
}

func NewGame(players []Player) *Game {
	return &Game{
		ID:        uuid.New().String(),
		Players:   append([]Player{}, players...),
		Rounds:    []RoundResult{},
		Deck:      []deck.Card{},
		CreatedAt: time.Now(),
	}
}

// Clone returns a deep, independent snapshot. Every transition works
// on a clone so callers can safely diff old vs. new state.
func (g *Game) Clone() *Game {
	clone := &Game{
		ID:          g.ID,
		Players:     append([]Player(nil), g.Players...),
		Rounds:      append([]RoundResult(nil), g.Rounds...),
		Deck:        append([]deck.Card(nil), g.Deck...),
		DealerIndex: g.DealerIndex,
		CreatedAt:   g.CreatedAt,
	}
	if g.Tiebreaker != nil {
		tb := *g.Tiebreaker
		tb.PlayerIDs = append([]string(nil), g.Tiebreaker.PlayerIDs...)
		clone.Tiebreaker = &tb
	}
	if g.PlayRound != nil {
		clone.PlayRound = g.PlayRound.Clone()
	}
	return clone
}

func (g *Game) Player(id string) (Player, bool) {
	for _, p := range g.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// PlayerTotal is the player's cumulative score over completed rounds.
func (g *Game) PlayerTotal(id string) int {
	var total int
	for _, round := range g.Rounds {
		if result, ok := round.PlayerResults[id]; ok {
			total += result.Score
		}
	}
	return total
}

// DealtTally counts every card seen in completed rounds.
func (g *Game) DealtTally() deck.Tally {
	t := deck.NewTally()
	for _, round := range g.Rounds {
		for _, result := range round.PlayerResults {
			for _, n := range result.NumberCards {
				t.Add(deck.NumberCard(n))
			}
			for _, m := range result.Modifiers {
				t.Add(deck.ModifierCard(m))
			}
			for _, a := range result.Actions {
				t.Add(deck.ActionCard(a))
			}
		}
	}
	return t
}

// Winner returns the sole player at or above the win line. No winner
// while a tiebreaker is active or the top score is shared.
func (g *Game) Winner() (Player, bool) {
	if len(g.Rounds) == 0 || g.Tiebreaker != nil || len(g.Players) == 0 {
		return Player{}, false
	}

	top, topTotal := g.Players[0], g.PlayerTotal(g.Players[0].ID)
	var secondTotal int
	for _, p := range g.Players[1:] {
		total := g.PlayerTotal(p.ID)
		if total > topTotal {
			secondTotal = topTotal
			top, topTotal = p, total
		} else if total > secondTotal {
			secondTotal = total
		}
	}

	if topTotal < WinScore {
		return Player{}, false
	}
	if len(g.Players) > 1 && secondTotal == topTotal {
		return Player{}, false
	}
	return top, true
}

// TiebreakerCandidates returns the players tied for the top score when
// that score has crossed the win line; nil otherwise.
func (g *Game) TiebreakerCandidates() []string {
	var topTotal int
	for _, p := range g.Players {
		if total := g.PlayerTotal(p.ID); total > topTotal {
			topTotal = total
		}
	}
	if topTotal < WinScore {
		return nil
	}

	var tied []string
	for _, p := range g.Players {
		if g.PlayerTotal(p.ID) == topTotal {
			tied = append(tied, p.ID)
		}
	}
	if len(tied) < 2 {
		return nil
	}
	return tied
}

// TiebreakerResolved reports whether exactly one of the restricted
// players holds the sole maximum among them.
func (g *Game) TiebreakerResolved() bool {
	if g.Tiebreaker == nil {
		return false
	}

	var maxTotal int
	for _, id := range g.Tiebreaker.PlayerIDs {
		if total := g.PlayerTotal(id); total > maxTotal {
			maxTotal = total
		}
	}

	var leaders int
	for _, id := range g.Tiebreaker.PlayerIDs {
		if g.PlayerTotal(id) == maxTotal {
			leaders++
		}
	}
	return leaders == 1
}
