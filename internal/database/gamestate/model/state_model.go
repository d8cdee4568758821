package model

import (
	"time"

	"github.com/flip7-games/flip7/internal/engine"
)

// State binds a serialized game to the chat that plays it. The game
// value round-trips verbatim, mid-round state included.
type State struct {
	ChatID  int64        `json:"chatId"`
	OwnerID int64        `json:"ownerId"`
	Game    *engine.Game `json:"game"`

	// Telegram user id per seat; computer seats are absent.
	SeatUserIDs map[string]int64 `json:"seatUserIds"`

	CreatedAt time.Time `json:"createdAt"`
}
