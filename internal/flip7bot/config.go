package flip7bot

import (
	"time"

	"github.com/flip7-games/flip7/internal/database"
)

type Config struct {
	Admin string `envconfig:"FLIP7_ADMIN_USERNAME" default:""`

	// Logging all requests and responses from telegram
	Debug bool `envconfig:"FLIP7_DEBUG" default:"false"`

	// Number of items in the cache
	CacheSize int `envconfig:"FLIP7_CACHE_SIZE" default:"1024"`

	// Port on which the health check is launched
	Port string `envconfig:"FLIP7_PORT" default:"1234"`

	// profile port
	ProfPort string `envconfig:"FLIP7_PROF_PORT" default:"8888"`

	// Telegram bot token
	BotToken string `envconfig:"FLIP7_BOT_TOKEN"`

	// Delay between a computer player's moves, and between the
	// staggered Flip Three cards. Purely for perceptibility: the
	// engine behaves identically without any pause.
	TurnDelay time.Duration `envconfig:"FLIP7_TURN_DELAY" default:"2s"`

	TgBotPollTimeout time.Duration `envconfig:"FLIP7_TG_BOT_POLL_TIMEOUT" default:"60s"`
	Db               database.Config
}
