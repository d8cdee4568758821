package engine

import "github.com/flip7-games/flip7/internal/deck"

type EventKind string

// Expected game states are first-class events, never errors.
const (
	EventDeal                  EventKind = "deal"
	EventBust                  EventKind = "bust"
	EventSecondChanceSave      EventKind = "second_chance_save"
	EventSecondChanceGift      EventKind = "second_chance_gift"
	EventSecondChanceDiscarded EventKind = "second_chance_discarded"
	EventReshuffle             EventKind = "reshuffle"
)

// DealEvent is one entry of the append-only deal log.
type DealEvent struct {
	PlayerID string    `json:"playerId,omitempty"`
	Card     deck.Card `json:"card,omitempty"`
	Event    EventKind `json:"event"`
}
