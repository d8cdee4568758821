// Package engine implements the Flip 7 play-round state machine: turn
// order, one-card-at-a-time dealing, bust and shield resolution, the
// two interactive action cards and round completion. Every operation
// is a pure transition from one Game snapshot to a fresh one; ordinary
// game conditions are states and events, never errors, and invalid
// operation sequencing is a defensive no-op returning the input
// unchanged.
package engine

import (
	"github.com/flip7-games/flip7/internal/deck"
	"github.com/flip7-games/flip7/internal/score"
)

type Engine struct {
	src deck.Source
}

// New creates an engine over the given random source. Tests substitute
// a seeded source for deterministic shuffles.
func New(src deck.Source) *Engine {
	return &Engine{src: src}
}

// StartRound opens a new round: turn order starts at the seat after
// the dealer and wraps the full player list, with tiebreaker filtering
// removing non-participants but preserving relative seating. Hands
// start empty; no cards are dealt until the first explicit Hit.
func (e *Engine) StartRound(g *Game) *Game {
	if len(g.Players) == 0 || g.PlayRound != nil {
		return g
	}

	ng := g.Clone()

	participates := func(id string) bool {
		if ng.Tiebreaker == nil {
			return true
		}
		for _, tid := range ng.Tiebreaker.PlayerIDs {
			if tid == id {
				return true
			}
		}
		return false
	}

	var turnOrder []string
	for i := 1; i <= len(ng.Players); i++ {
		p := ng.Players[(ng.DealerIndex+i)%len(ng.Players)]
		if participates(p.ID) {
			turnOrder = append(turnOrder, p.ID)
		}
	}

	hands := make(map[string]*Hand, len(turnOrder))
	for _, id := range turnOrder {
		hands[id] = NewHand()
	}

	if len(ng.Deck) == 0 {
		ng.Deck = deck.NewShuffled(e.src)
	}

	ng.PlayRound = &PlayRound{
		TurnOrder:   turnOrder,
		TurnIndex:   0,
		PlayerHands: hands,
		DealLog:     []DealEvent{},
	}
	return ng
}

// Hit draws exactly one card for the active player and applies it.
func (e *Engine) Hit(g *Game) *Game {
	pr := g.PlayRound
	if pr == nil || pr.PendingAction != nil || len(pr.TurnOrder) == 0 {
		return g
	}
	if !pr.PlayerHands[pr.ActivePlayerID()].Playing() {
		return g
	}

	ng := g.Clone()
	pr = ng.PlayRound
	playerID := pr.ActivePlayerID()

	_, pending := e.dealOne(ng, playerID)

	switch pending {
	case PendingFlipThreeTarget:
		// With at most one player still in, skip the prompt: target the
		// sole remaining player and start dealing immediately.
		if pr.PlayingCount() <= 1 {
			e.beginFlipThree(ng, playerID, playerID, nil)
			return ng
		}
		pr.PendingAction = &PendingAction{
			Kind:           PendingFlipThreeTarget,
			SourcePlayerID: playerID,
			ChooserID:      playerID,
		}
		return ng

	case PendingSecondChanceGift:
		eligible := pr.eligibleGiftTargets(playerID)
		if len(eligible) == 0 {
			pr.log(DealEvent{
				PlayerID: playerID,
				Card:     deck.ActionCard(deck.ActionSecondChance),
				Event:    EventSecondChanceDiscarded,
			})
			pr.advanceTurn()
			return ng
		}
		pr.PendingAction = &PendingAction{
			Kind:              PendingSecondChanceGift,
			SourcePlayerID:    playerID,
			EligiblePlayerIDs: eligible,
		}
		return ng
	}

	pr.advanceTurn()
	return ng
}

// Stand locks in the active player's hand and passes the turn.
func (e *Engine) Stand(g *Game) *Game {
	pr := g.PlayRound
	if pr == nil || pr.PendingAction != nil || len(pr.TurnOrder) == 0 {
		return g
	}

	ng := g.Clone()
	pr = ng.PlayRound
	pr.PlayerHands[pr.ActivePlayerID()].Status = StatusStood
	pr.advanceTurn()
	return ng
}

// ResolveFlipThree consumes a flip_three_target pending action: the
// chosen target receives the first of three cards synchronously, the
// rest arrive one per FlipThreeDealNext call.
func (e *Engine) ResolveFlipThree(g *Game, targetID string) *Game {
	pr := g.PlayRound
	if pr == nil || pr.PendingAction == nil || pr.PendingAction.Kind != PendingFlipThreeTarget {
		return g
	}
	if _, ok := pr.PlayerHands[targetID]; !ok {
		return g
	}

	ng := g.Clone()
	pending := ng.PlayRound.PendingAction
	ng.PlayRound.PendingAction = nil
	e.beginFlipThree(ng, targetID, pending.SourcePlayerID, pending.FlipThreeQueue)
	return ng
}

// FlipThreeDealNext deals one more card of an active flip_three_dealing
// resolution. No-op when no such resolution is pending.
func (e *Engine) FlipThreeDealNext(g *Game) *Game {
	pr := g.PlayRound
	if pr == nil || pr.PendingAction == nil || pr.PendingAction.Kind != PendingFlipThreeDealing {
		return g
	}

	ng := g.Clone()
	pr = ng.PlayRound
	pending := pr.PendingAction
	pr.PendingAction = nil

	stopped, queued := e.dealFlipThreeCard(ng, pending.TargetPlayerID)
	combined := append(queued, pending.FlipThreeQueue...)
	remaining := pending.Remaining - 1

	if stopped || remaining <= 0 {
		e.finishResolution(ng, combined)
		return ng
	}

	pr.PendingAction = &PendingAction{
		Kind:           PendingFlipThreeDealing,
		SourcePlayerID: pending.SourcePlayerID,
		TargetPlayerID: pending.TargetPlayerID,
		Remaining:      remaining,
		FlipThreeQueue: combined,
	}
	return ng
}

// ResolveSecondChance consumes a second_chance_gift pending action,
// moving the duplicate shield from the source hand to the target.
func (e *Engine) ResolveSecondChance(g *Game, targetID string) *Game {
	pr := g.PlayRound
	if pr == nil || pr.PendingAction == nil || pr.PendingAction.Kind != PendingSecondChanceGift {
		return g
	}
	if _, ok := pr.PlayerHands[targetID]; !ok {
		return g
	}

	ng := g.Clone()
	pr = ng.PlayRound
	pending := pr.PendingAction
	pr.PendingAction = nil

	source := pr.PlayerHands[pending.SourcePlayerID]
	source.removeSecondChance()

	target := pr.PlayerHands[targetID]
	target.Actions = append(target.Actions, deck.ActionSecondChance)
	target.HasSecondChance = true

	pr.log(DealEvent{
		PlayerID: targetID,
		Card:     deck.ActionCard(deck.ActionSecondChance),
		Event:    EventSecondChanceGift,
	})

	e.finishResolution(ng, pending.FlipThreeQueue)
	return ng
}

// EndRound folds every hand into an immutable RoundResult, gives
// tiebreaker-excluded players a zero non-busted result, rotates the
// dealer seat and clears the play round.
func (e *Engine) EndRound(g *Game) *Game {
	pr := g.PlayRound
	if pr == nil {
		return g
	}

	ng := g.Clone()
	pr = ng.PlayRound

	results := make(map[string]PlayerResult, len(ng.Players))
	for id, hand := range pr.PlayerHands {
		busted := hand.Status == StatusBusted
		res := score.Calculate(hand.NumberCards, hand.Modifiers, busted)
		numbers, modifiers, actions := hand.Flatten()
		results[id] = PlayerResult{
			NumberCards: numbers,
			Modifiers:   modifiers,
			Actions:     actions,
			Busted:      busted,
			Score:       res.Total,
			Flip7:       res.Flip7,
		}
	}

	for _, p := range ng.Players {
		if _, ok := results[p.ID]; !ok {
			results[p.ID] = PlayerResult{
				NumberCards: []int{},
				Modifiers:   []deck.Modifier{},
				Actions:     []deck.Action{},
			}
		}
	}

	ng.Rounds = append(ng.Rounds, RoundResult{
		RoundNumber:   len(ng.Rounds) + 1,
		PlayerResults: results,
		DealOrder:     pr.DealLog,
	})
	ng.DealerIndex = (ng.DealerIndex + 1) % len(ng.Players)
	ng.PlayRound = nil
	return ng
}

// SetTiebreaker restricts subsequent rounds to the given players.
func (e *Engine) SetTiebreaker(g *Game, playerIDs []string) *Game {
	ng := g.Clone()
	ng.Tiebreaker = &Tiebreaker{
		PlayerIDs:      append([]string{}, playerIDs...),
		StartedAtRound: len(ng.Rounds),
	}
	return ng
}

func (e *Engine) ClearTiebreaker(g *Game) *Game {
	ng := g.Clone()
	ng.Tiebreaker = nil
	return ng
}

// ensureDeck guarantees at least one drawable card. Mid-round the
// reconstituted deck excludes every card players are physically
// holding; with no round active the full set is reshuffled fresh.
// Either way the reshuffle lands in the deal log.
func (e *Engine) ensureDeck(ng *Game) {
	if len(ng.Deck) > 0 {
		return
	}

	if ng.PlayRound == nil {
		ng.Deck = deck.NewShuffled(e.src)
		return
	}

	full := deck.Build()
	held := ng.PlayRound.HeldTally()
	remaining := full[:0]
	for _, c := range full {
		holds := false
		switch c.Kind {
		case deck.KindNumber:
			holds = held.Numbers[c.Number] > 0
		case deck.KindModifier:
			holds = held.Modifiers[c.Modifier] > 0
		case deck.KindAction:
			holds = held.Actions[c.Action] > 0
		}
		if holds {
			switch c.Kind {
			case deck.KindNumber:
				held.Numbers[c.Number]--
			case deck.KindModifier:
				held.Modifiers[c.Modifier]--
			case deck.KindAction:
				held.Actions[c.Action]--
			}
			continue
		}
		remaining = append(remaining, c)
	}

	ng.Deck = deck.Shuffle(e.src, remaining)
	ng.PlayRound.log(DealEvent{Event: EventReshuffle})
}

// dealOne draws the top card for playerID and applies its effect.
// Returns the card and the pending resolution kind it demands, if any.
func (e *Engine) dealOne(ng *Game, playerID string) (deck.Card, PendingKind) {
	e.ensureDeck(ng)

	pr := ng.PlayRound
	card := ng.Deck[0]
	ng.Deck = ng.Deck[1:]
	hand := pr.PlayerHands[playerID]

	switch card.Kind {
	case deck.KindNumber:
		hand.NumberCards = append(hand.NumberCards, card.Number)
		pr.log(DealEvent{PlayerID: playerID, Card: card, Event: EventDeal})

		if score.HasDuplicates(hand.NumberCards) {
			if hand.HasSecondChance {
				// Shield absorbs the bust: the duplicate and the consumed
				// Second Chance both leave play but stay accounted for.
				hand.NumberCards = hand.NumberCards[:len(hand.NumberCards)-1]
				hand.HasSecondChance = false
				hand.removeSecondChance()
				hand.CancelledCards = append(hand.CancelledCards,
					card,
					deck.ActionCard(deck.ActionSecondChance),
				)
				pr.log(DealEvent{PlayerID: playerID, Card: card, Event: EventSecondChanceSave})
			} else {
				hand.Status = StatusBusted
				pr.log(DealEvent{PlayerID: playerID, Card: card, Event: EventBust})
			}
		} else if len(hand.NumberCards) == 7 {
			// A full Flip 7 always locks in.
			hand.Status = StatusStood
		}
		return card, ""

	case deck.KindModifier:
		hand.Modifiers = append(hand.Modifiers, card.Modifier)
		pr.log(DealEvent{PlayerID: playerID, Card: card, Event: EventDeal})
		return card, ""

	default:
		hand.Actions = append(hand.Actions, card.Action)
		pr.log(DealEvent{PlayerID: playerID, Card: card, Event: EventDeal})

		switch card.Action {
		case deck.ActionFreeze:
			hand.Status = StatusFrozen
		case deck.ActionSecondChance:
			if hand.HasSecondChance {
				return card, PendingSecondChanceGift
			}
			hand.HasSecondChance = true
		case deck.ActionFlipThree:
			return card, PendingFlipThreeTarget
		}
		return card, ""
	}
}

// dealFlipThreeCard deals one card of a Flip Three resolution to the
// target. A non-playing target is never dealt to; stopped reports that
// the resolution must not deal further.
func (e *Engine) dealFlipThreeCard(ng *Game, targetID string) (stopped bool, queued []QueuedResolution) {
	hand := ng.PlayRound.PlayerHands[targetID]
	if !hand.Playing() {
		return true, nil
	}

	_, pending := e.dealOne(ng, targetID)
	switch pending {
	case PendingFlipThreeTarget:
		queued = append(queued, QueuedResolution{Kind: PendingFlipThreeTarget, ChooserID: targetID})
	case PendingSecondChanceGift:
		queued = append(queued, QueuedResolution{Kind: PendingSecondChanceGift, ChooserID: targetID})
	}

	return !hand.Playing(), queued
}

// beginFlipThree deals the first of three cards synchronously and
// either finishes (target stopped) or opens the staggered dealing
// state for the remaining two.
func (e *Engine) beginFlipThree(ng *Game, targetID, sourceID string, tail []QueuedResolution) {
	stopped, queued := e.dealFlipThreeCard(ng, targetID)
	// Resolutions triggered by the card just dealt run before whatever
	// was already waiting.
	combined := append(queued, tail...)

	if stopped {
		e.finishResolution(ng, combined)
		return
	}

	ng.PlayRound.PendingAction = &PendingAction{
		Kind:           PendingFlipThreeDealing,
		SourcePlayerID: sourceID,
		TargetPlayerID: targetID,
		Remaining:      2,
		FlipThreeQueue: combined,
	}
}

// finishResolution installs the next queued resolution, or returns to
// normal turn advancement when the queue drains.
func (e *Engine) finishResolution(ng *Game, queue []QueuedResolution) {
	pr := ng.PlayRound
	pr.PendingAction = processQueue(pr, queue)
	if pr.PendingAction == nil {
		pr.advanceTurn()
	}
}

// processQueue pops resolutions off the FIFO queue until one is
// actionable. Gifts with no eligible recipient are skipped silently.
func processQueue(pr *PlayRound, queue []QueuedResolution) *PendingAction {
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		switch next.Kind {
		case PendingFlipThreeTarget:
			return &PendingAction{
				Kind:           PendingFlipThreeTarget,
				SourcePlayerID: next.ChooserID,
				ChooserID:      next.ChooserID,
				FlipThreeQueue: queue,
			}
		case PendingSecondChanceGift:
			eligible := pr.eligibleGiftTargets(next.ChooserID)
			if len(eligible) == 0 {
				continue
			}
			return &PendingAction{
				Kind:              PendingSecondChanceGift,
				SourcePlayerID:    next.ChooserID,
				EligiblePlayerIDs: eligible,
				FlipThreeQueue:    queue,
			}
		}
	}
	return nil
}
