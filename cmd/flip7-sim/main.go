package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/flip7-games/flip7/internal/deck"
	"github.com/flip7-games/flip7/internal/engine"
	"github.com/flip7-games/flip7/internal/logging"
	"github.com/flip7-games/flip7/internal/shutdown"
	"github.com/flip7-games/flip7/internal/strategy"
)

// flip7-sim plays computer-only games to completion and prints
// aggregate outcomes. Useful for eyeballing the hit/stand policy.
func main() {
	var (
		games   = flag.Int("games", 1000, "number of games to simulate")
		players = flag.Int("players", 4, "seats per game")
		seed    = flag.Int64("seed", 1, "rng seed, 0 for non-deterministic")
		debug   = flag.Bool("debug", false, "verbose logging")
	)
	flag.Parse()

	ctx, done := shutdown.New()
	defer done()
	logger := logging.NewLogger(*debug).Named("sim")

	var src deck.Source = &deck.FastSource{}
	if *seed != 0 {
		src = rand.New(rand.NewSource(*seed))
	}
	eng := engine.New(src)

	var (
		totalRounds int
		winScoreSum int
		flip7s      int
		wonBySeat   = make([]int, *players)
	)

	for i := 0; i < *games; i++ {
		if ctx.Err() != nil {
			logger.Infof("interrupted after %d games", i)
			os.Exit(1)
		}

		g, winnerID := play(eng, newTable(*players))
		totalRounds += len(g.Rounds)
		winScoreSum += g.PlayerTotal(winnerID)
		for seat, p := range g.Players {
			if p.ID == winnerID {
				wonBySeat[seat]++
			}
		}
		for _, round := range g.Rounds {
			for _, result := range round.PlayerResults {
				if result.Flip7 {
					flip7s++
				}
			}
		}
	}

	fmt.Printf("games: %d, players: %d\n", *games, *players)
	fmt.Printf("avg rounds per game: %.1f\n", float64(totalRounds)/float64(*games))
	fmt.Printf("avg winning score: %.1f\n", float64(winScoreSum)/float64(*games))
	fmt.Printf("flip 7s per game: %.2f\n", float64(flip7s)/float64(*games))
	for seat, won := range wonBySeat {
		fmt.Printf("seat %d win rate: %.1f%%\n", seat+1, 100*float64(won)/float64(*games))
	}
}

func newTable(players int) *engine.Game {
	seats := make([]engine.Player, 0, players)
	for i := 0; i < players; i++ {
		seats = append(seats, engine.NewPlayer(fmt.Sprintf("bot-%d", i+1), true))
	}
	return engine.NewGame(seats)
}

// play drives one game to a winner, resolving every pending action the
// way the computer policy would.
func play(eng *engine.Engine, g *engine.Game) (*engine.Game, string) {
	for {
		if g.TiebreakerResolved() {
			g = eng.ClearTiebreaker(g)
		} else if g.Tiebreaker == nil {
			if tied := g.TiebreakerCandidates(); tied != nil {
				g = eng.SetTiebreaker(g, tied)
			}
		}
		g = eng.StartRound(g)

		for !g.PlayRound.Over() {
			if pending := g.PlayRound.PendingAction; pending != nil {
				switch pending.Kind {
				case engine.PendingFlipThreeDealing:
					g = eng.FlipThreeDealNext(g)
				case engine.PendingFlipThreeTarget:
					var playing []string
					for _, id := range g.PlayRound.TurnOrder {
						if g.PlayRound.PlayerHands[id].Playing() {
							playing = append(playing, id)
						}
					}
					g = eng.ResolveFlipThree(g, strategy.ChooseFlipThreeTarget(pending.ChooserID, playing, g))
				case engine.PendingSecondChanceGift:
					g = eng.ResolveSecondChance(g, strategy.ChooseSecondChanceTarget(pending.EligiblePlayerIDs, g))
				}
				continue
			}

			activeID := g.PlayRound.ActivePlayerID()
			if strategy.DecideAction(g, activeID) == strategy.Hit {
				g = eng.Hit(g)
			} else {
				g = eng.Stand(g)
			}
		}

		g = eng.EndRound(g)
		if winner, ok := g.Winner(); ok {
			return g, winner.ID
		}
	}
}
