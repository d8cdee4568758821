package engine

import "github.com/flip7-games/flip7/internal/deck"

// PlayRound is the live state of a round being dealt. Owned by the
// Game while in progress, folded into a RoundResult when it ends.
type PlayRound struct {
	TurnOrder     []string          `json:"turnOrder"`
	TurnIndex     int               `json:"turnIndex"`
	PlayerHands   map[string]*Hand  `json:"playerHands"`
	DealLog       []DealEvent       `json:"dealLog"`
	PendingAction *PendingAction    `json:"pendingAction"`
}

func (pr *PlayRound) Clone() *PlayRound {
	clone := &PlayRound{
		TurnOrder:     append([]string(nil), pr.TurnOrder...),
		TurnIndex:     pr.TurnIndex,
		PlayerHands:   make(map[string]*Hand, len(pr.PlayerHands)),
		DealLog:       append([]DealEvent(nil), pr.DealLog...),
		PendingAction: pr.PendingAction.Clone(),
	}
	for id, hand := range pr.PlayerHands {
		clone.PlayerHands[id] = hand.Clone()
	}
	return clone
}

// ActivePlayerID is the player whose turn it is.
func (pr *PlayRound) ActivePlayerID() string {
	if len(pr.TurnOrder) == 0 {
		return ""
	}
	return pr.TurnOrder[pr.TurnIndex]
}

func (pr *PlayRound) PlayingCount() int {
	var n int
	for _, id := range pr.TurnOrder {
		if pr.PlayerHands[id].Playing() {
			n++
		}
	}
	return n
}

// nextPlayingIndex scans forward circularly from afterIndex for the
// next hand still playing, skipping terminal hands. Returns -1 when
// none remains.
func (pr *PlayRound) nextPlayingIndex(afterIndex int) int {
	for i := 1; i <= len(pr.TurnOrder); i++ {
		idx := (afterIndex + i) % len(pr.TurnOrder)
		if pr.PlayerHands[pr.TurnOrder[idx]].Playing() {
			return idx
		}
	}
	return -1
}

// advanceTurn moves TurnIndex to the next playing participant, or
// leaves it unchanged when the round is effectively over.
func (pr *PlayRound) advanceTurn() {
	if idx := pr.nextPlayingIndex(pr.TurnIndex); idx != -1 {
		pr.TurnIndex = idx
	}
}

func (pr *PlayRound) log(ev DealEvent) {
	pr.DealLog = append(pr.DealLog, ev)
}

// HeldTally counts every card currently held in any hand of the round,
// cancelled cards included.
func (pr *PlayRound) HeldTally() deck.Tally {
	t := deck.NewTally()
	for _, hand := range pr.PlayerHands {
		hand.tally(t)
	}
	return t
}

// eligibleGiftTargets lists players a duplicate Second Chance may be
// gifted to: still playing, no shield, not the source.
func (pr *PlayRound) eligibleGiftTargets(sourceID string) []string {
	var eligible []string
	for _, id := range pr.TurnOrder {
		if id == sourceID {
			continue
		}
		hand := pr.PlayerHands[id]
		if hand.Playing() && !hand.HasSecondChance {
			eligible = append(eligible, id)
		}
	}
	return eligible
}

// Over reports whether nothing remains to play: no pending resolution
// and every hand terminal.
func (pr *PlayRound) Over() bool {
	return pr.PendingAction == nil && pr.PlayingCount() == 0
}
