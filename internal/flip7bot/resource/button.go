package resource

import (
	"github.com/enescakir/emoji"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

const (
	HitButtonData   = "flip7:hit"
	StandButtonData = "flip7:stand"

	// Target choices carry the seat id after the colon.
	FlipThreeButtonPrefix    = "flip7:f3:"
	SecondChanceButtonPrefix = "flip7:sc:"
)

var (
	HitButtonText   = emoji.GameDie.String() + " Hit"
	StandButtonText = emoji.RaisedHand.String() + " Stand"
)

func TurnKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(HitButtonText, HitButtonData),
			tgbotapi.NewInlineKeyboardButtonData(StandButtonText, StandButtonData),
		),
	)
}

// TargetKeyboard renders one button per eligible seat, one row each.
func TargetKeyboard(prefix string, names map[string]string, ids []string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(names[id], prefix+id),
		))
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}
