package resource

import "github.com/enescakir/emoji"

const (
	ProjectName    = "flip7bot"
	ProjectVersion = "v1.0.0"

	GithubFlip7Url = "https://github.com/flip7-games/flip7"
)

const Graffiti = `
  _____ _ _        _____
 |  ___| (_)_ __  |___  |
 | |_  | | | '_ \    / /
 |  _| | | | |_) |  / /
 |_|   |_|_| .__/  /_/
           |_|
`

const GreetingCLI = "%s %s\nA companion bot for the Flip 7 card game\n%s\n\n"

// manage text messages
var (
	TextGreetingMsg = emoji.GameDie.String() + " Hi, %s\n\n" +
		"This is a bot for playing *Flip 7* — the press-your-luck card game. " +
		"Hit to flip cards one at a time, stand to bank them, bust on a duplicate. " +
		"Seven unique numbers score a +15 bonus, first to 200 points wins " + emoji.Trophy.String() + "\n\n" +
		"*Commands:*\n" +
		"/new - create a game in this chat\n" +
		"/join - take a seat in the pending game\n" +
		"/bot - add a computer player\n" +
		"/begin - deal the first round\n" +
		"/score - show the score table\n" +
		"/profile - your all-time stats\n" +
		"/rules - the full rules\n\n" +
		"*Project on github:* [flip7](" + GithubFlip7Url + ")"

	TextRulesMsg = emoji.ClubSuit.String() + " *Flip 7 rules*\n\n" +
		"The deck holds 94 cards: numbers 0-12 (a value appears as many times as its face, 0 once), " +
		"bonus modifiers +2/+4/+6/+8/+10 and ×2, and three action cards.\n\n" +
		"On your turn *Hit* to flip a card or *Stand* to bank your hand. " +
		"Drawing a number you already hold busts you to zero — unless a *Second Chance* shield absorbs it. " +
		"*Freeze* ends your turn on the spot. *Flip Three* forces a chosen player to flip three cards in a row. " +
		"Exactly seven unique numbers is a *Flip 7*: +15 points and the hand locks in.\n\n" +
		"First player over 200 wins; a tie at the top triggers tiebreaker rounds between the leaders."

	TextGameCreatedMsg = emoji.Unicorn.String() + " Game created. Take a seat with /join, " +
		"add computer players with /bot, then /begin deals the first round"
	TextGameAlreadyMsg     = "There is already a game in this chat. Finish it or /abort it first"
	TextGameNotFoundMsg    = "No game in this chat yet — create one with /new"
	TextGameNotYoursMsg    = "Only the game owner can do that"
	TextJoinedMsg          = "%s is in " + emoji.RaisingHands.String()
	TextAlreadyJoinedMsg   = "You already have a seat"
	TextBotAddedMsg        = emoji.Robot.String() + " %s joins the table"
	TextTooFewPlayersMsg   = "Need at least two seats before dealing"
	TextGameAbortedMsg     = "Game aborted " + emoji.WavingHand.String()
	TextGameInProgressMsg  = "The round is already running"
	TextRoundStartedMsg    = emoji.GameDie.String() + " *Round %d* — dealer seat: %s\n%s opens. Hit or stand!"
	TextTiebreakerRoundMsg = emoji.HighVoltage.String() + " *Tiebreaker!* Only %s keep playing"

	TextYourTurnMsg   = "%s — your move. Bust chance: %.0f%%"
	TextHitMsg        = "%s flips %s"
	TextStandMsg      = "%s stands with %d pts"
	TextBustMsg       = emoji.Collision.String() + " %s busts on a duplicate %s!"
	TextSaveMsg       = emoji.Shield.String() + " Second Chance saves %s — the duplicate %s is cancelled"
	TextFreezeMsg     = emoji.Snowflake.String() + " %s is frozen and banks the hand"
	TextFlip7Msg      = emoji.PartyPopper.String() + " *FLIP 7!* %s locks in seven uniques, +15"
	TextReshuffleMsg  = emoji.CounterclockwiseArrowsButton.String() + " Deck reshuffled mid-round"
	TextDiscardSCMsg  = "Nobody can take the spare Second Chance — it is discarded"
	TextGiftPromptMsg = "%s drew a second Second Chance — choose who gets it"
	TextGiftMsg       = emoji.WrappedGift.String() + " %s receives a Second Chance"
	TextF3PromptMsg   = emoji.ThreeOClock.String() + " %s drew Flip Three — choose the victim"
	TextF3TargetMsg   = emoji.ThreeOClock.String() + " %s must flip three cards"

	TextRoundOverMsg     = emoji.ChequeredFlag.String() + " *Round %d over*\n\n%s"
	TextWinnerMsg        = emoji.Trophy.String() + " *%s wins with %d points!*"
	TextNoProfileMsg     = "No finished games yet"
	TextProfileMsg       = emoji.BarChart.String() + " *%s*\nGames: %d\nWins: %d\nBest game: %d pts\nBest round: %d pts\nFlip 7s: %d\nBusts: %d\nAvg score: %d"
	TextRestoredGameMsg  = emoji.FloppyDisk.String() + " Restored the unfinished game — picking up where we left off"
	TextCrashMsg         = "Something went wrong, the game is paused. Try /begin to resume"
)
