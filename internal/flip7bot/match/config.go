package match

import (
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

type Config struct {
	ChatID  int64
	OwnerID int64

	// Delay between automated moves and staggered Flip Three cards.
	TurnDelay time.Duration

	Tg *tgbotapi.BotAPI `json:"-"`

	// DoneFn runs once when the game has a winner.
	DoneFn func(session *Session) error `json:"-"`
	// SaveFn persists the session after every transition, best-effort:
	// failures are logged by the caller, never surfaced to the game.
	SaveFn func(session *Session) error `json:"-"`
}
