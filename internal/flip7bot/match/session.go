package match

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/flip7-games/flip7/internal/deck"
	"github.com/flip7-games/flip7/internal/engine"
	"github.com/flip7-games/flip7/internal/flip7bot/resource"
	"github.com/flip7-games/flip7/internal/logging"
	"github.com/flip7-games/flip7/internal/odds"
	"github.com/flip7-games/flip7/internal/strategy"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

var botNames = []string{"Botvinnik", "Deep Flip", "Card Counter", "Lady Luck", "The House"}

func NewSession(config Config, eng *engine.Engine) *Session {
	return &Session{
		Config:    config,
		tg:        config.Tg,
		eng:       eng,
		game:      engine.NewGame(nil),
		Seats:     map[string]int64{},
		stepCh:    make(chan struct{}, 1),
		CreatedAt: time.Now(),
	}
}

// Restore rebuilds a session around a previously persisted game.
func Restore(config Config, eng *engine.Engine, game *engine.Game, seats map[string]int64) *Session {
	s := NewSession(config, eng)
	s.game = game
	s.Started = game.PlayRound != nil || len(game.Rounds) > 0
	if seats != nil {
		s.Seats = seats
	}
	return s
}

// Session owns one game per chat. All transitions go through the
// engine; the session only renders outcomes and schedules automation.
type Session struct {
	Config Config

	CreatedAt time.Time

	tg  *tgbotapi.BotAPI
	eng *engine.Engine

	mtx  sync.RWMutex
	game *engine.Game
	// Seats maps engine seat id to telegram user id; computer seats
	// are absent.
	Seats   map[string]int64
	Started bool

	stepCh chan struct{}
	sema   sync.Once
	cancel func()
}

func (s *Session) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Session) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.sema.Do(func() {
		go s.loop(ctx)
	})
}

// Game returns the current snapshot. Transitions replace it wholesale,
// so the returned value is safe to read concurrently.
func (s *Session) Game() *engine.Game {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.game
}

func (s *Session) AddHuman(userID int64, name string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.Started {
		return fmt.Errorf("game already started")
	}
	for _, uid := range s.Seats {
		if uid == userID {
			return fmt.Errorf("already seated")
		}
	}

	p := engine.NewPlayer(name, false)
	s.game.Players = append(s.game.Players, p)
	s.Seats[p.ID] = userID
	return nil
}

func (s *Session) AddBot() (string, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.Started {
		return "", fmt.Errorf("game already started")
	}

	name := botNames[len(s.game.Players)%len(botNames)]
	p := engine.NewPlayer(name, true)
	s.game.Players = append(s.game.Players, p)
	return name, nil
}

func (s *Session) PlayersLen() int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return len(s.game.Players)
}

// Begin deals the first round, or resumes a restored one.
func (s *Session) Begin() error {
	s.mtx.Lock()
	if len(s.game.Players) < 2 {
		s.mtx.Unlock()
		return fmt.Errorf("too few players")
	}

	s.Started = true
	if s.game.PlayRound == nil {
		s.startRoundLocked()
	}
	s.mtx.Unlock()

	s.kick()
	return nil
}

// startRoundLocked opens a round, installing or clearing a tiebreaker
// first when the standings call for it.
func (s *Session) startRoundLocked() {
	g := s.game
	if g.TiebreakerResolved() {
		g = s.eng.ClearTiebreaker(g)
	} else if g.Tiebreaker == nil {
		if tied := g.TiebreakerCandidates(); tied != nil {
			g = s.eng.SetTiebreaker(g, tied)
			s.send(fmt.Sprintf(resource.TextTiebreakerRoundMsg, seatNames(g, tied)))
		}
	}

	g = s.eng.StartRound(g)
	s.game = g

	dealer := g.Players[g.DealerIndex].Name
	opener := s.nameOf(g.PlayRound.ActivePlayerID())
	s.send(fmt.Sprintf(resource.TextRoundStartedMsg, len(g.Rounds)+1, dealer, opener))
}

// Execute dispatches a button press from a seated player.
func (s *Session) Execute(userID int64, query *tgbotapi.CallbackQuery) error {
	data := query.Data

	switch {
	case data == resource.HitButtonData:
		s.applyTurn(userID, strategy.Hit)
	case data == resource.StandButtonData:
		s.applyTurn(userID, strategy.Stand)
	case strings.HasPrefix(data, resource.FlipThreeButtonPrefix):
		s.applyFlipThreeTarget(userID, strings.TrimPrefix(data, resource.FlipThreeButtonPrefix))
	case strings.HasPrefix(data, resource.SecondChanceButtonPrefix):
		s.applySecondChanceTarget(userID, strings.TrimPrefix(data, resource.SecondChanceButtonPrefix))
	default:
		return fmt.Errorf("match.Session: unknown button %q", data)
	}

	if _, err := s.tg.AnswerCallbackQuery(tgbotapi.NewCallback(query.ID, "")); err != nil {
		return fmt.Errorf("answer callback: %w", err)
	}

	return nil
}

func (s *Session) applyTurn(userID int64, decision strategy.Decision) {
	s.mtx.Lock()
	pr := s.game.PlayRound
	if pr == nil || pr.PendingAction != nil || s.Seats[pr.ActivePlayerID()] != userID {
		s.mtx.Unlock()
		return
	}

	before := len(pr.DealLog)
	if decision == strategy.Hit {
		s.game = s.eng.Hit(s.game)
	} else {
		actor := s.nameOf(pr.ActivePlayerID())
		total := s.handTotal(pr.ActivePlayerID())
		s.game = s.eng.Stand(s.game)
		s.send(fmt.Sprintf(resource.TextStandMsg, actor, total))
	}
	events := s.game.PlayRound.DealLog[before:]
	s.mtx.Unlock()

	s.announce(events)
	s.kick()
}

func (s *Session) applyFlipThreeTarget(userID int64, targetID string) {
	s.mtx.Lock()
	pr := s.game.PlayRound
	if pr == nil || pr.PendingAction == nil || pr.PendingAction.Kind != engine.PendingFlipThreeTarget ||
		s.Seats[pr.PendingAction.ChooserID] != userID {
		s.mtx.Unlock()
		return
	}

	before := len(pr.DealLog)
	s.game = s.eng.ResolveFlipThree(s.game, targetID)
	target := s.nameOf(targetID)
	events := s.game.PlayRound.DealLog[before:]
	s.mtx.Unlock()

	s.send(fmt.Sprintf(resource.TextF3TargetMsg, target))
	s.announce(events)
	s.kick()
}

func (s *Session) applySecondChanceTarget(userID int64, targetID string) {
	s.mtx.Lock()
	pr := s.game.PlayRound
	if pr == nil || pr.PendingAction == nil || pr.PendingAction.Kind != engine.PendingSecondChanceGift ||
		s.Seats[pr.PendingAction.SourcePlayerID] != userID {
		s.mtx.Unlock()
		return
	}

	before := len(pr.DealLog)
	s.game = s.eng.ResolveSecondChance(s.game, targetID)
	events := s.game.PlayRound.DealLog[before:]
	s.mtx.Unlock()

	s.announce(events)
	s.kick()
}

// kick schedules one advance pass. The channel is buffered: a pending
// kick already covers whatever happened since.
func (s *Session) kick() {
	select {
	case s.stepCh <- struct{}{}:
	default:
	}
}

func (s *Session) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stepCh:
			s.advance(ctx)
		}
	}
}

// advance runs every transition that needs no human input: staggered
// Flip Three cards, computer decisions, round completion. It stops at
// the first state waiting on a button press.
func (s *Session) advance(ctx context.Context) {
	logger := logging.FromContext(ctx).Named("match.advance")

	for {
		if ctx.Err() != nil {
			return
		}

		s.persist(logger)

		s.mtx.RLock()
		g := s.game
		pr := g.PlayRound
		s.mtx.RUnlock()

		if pr == nil {
			return
		}

		if pending := pr.PendingAction; pending != nil {
			switch pending.Kind {
			case engine.PendingFlipThreeDealing:
				s.pause(ctx)
				s.dealNext()
				continue

			case engine.PendingFlipThreeTarget:
				if s.isComputer(pending.ChooserID) {
					s.pause(ctx)
					s.resolveComputerFlipThree(pending)
					continue
				}
				s.promptFlipThree(g, pending)
				return

			case engine.PendingSecondChanceGift:
				if s.isComputer(pending.SourcePlayerID) {
					s.pause(ctx)
					s.resolveComputerGift(pending)
					continue
				}
				s.promptSecondChance(g, pending)
				return
			}
		}

		if pr.Over() {
			s.finishRound(logger)
			s.mtx.RLock()
			done := s.game.PlayRound == nil && !s.Started
			s.mtx.RUnlock()
			if done {
				return
			}
			continue
		}

		activeID := pr.ActivePlayerID()
		if s.isComputer(activeID) {
			s.pause(ctx)
			s.computerTurn(activeID)
			continue
		}

		s.promptTurn(g, activeID)
		return
	}
}

func (s *Session) dealNext() {
	s.mtx.Lock()
	pr := s.game.PlayRound
	if pr == nil || pr.PendingAction == nil || pr.PendingAction.Kind != engine.PendingFlipThreeDealing {
		s.mtx.Unlock()
		return
	}
	before := len(pr.DealLog)
	s.game = s.eng.FlipThreeDealNext(s.game)
	events := s.game.PlayRound.DealLog[before:]
	s.mtx.Unlock()

	s.announce(events)
}

func (s *Session) resolveComputerFlipThree(pending *engine.PendingAction) {
	s.mtx.Lock()
	pr := s.game.PlayRound
	if pr == nil || pr.PendingAction != pending {
		s.mtx.Unlock()
		return
	}

	var playing []string
	for _, id := range pr.TurnOrder {
		if pr.PlayerHands[id].Playing() {
			playing = append(playing, id)
		}
	}
	targetID := strategy.ChooseFlipThreeTarget(pending.ChooserID, playing, s.game)

	before := len(pr.DealLog)
	s.game = s.eng.ResolveFlipThree(s.game, targetID)
	target := s.nameOf(targetID)
	events := s.game.PlayRound.DealLog[before:]
	s.mtx.Unlock()

	s.send(fmt.Sprintf(resource.TextF3TargetMsg, target))
	s.announce(events)
}

func (s *Session) resolveComputerGift(pending *engine.PendingAction) {
	s.mtx.Lock()
	pr := s.game.PlayRound
	if pr == nil || pr.PendingAction != pending {
		s.mtx.Unlock()
		return
	}

	targetID := strategy.ChooseSecondChanceTarget(pending.EligiblePlayerIDs, s.game)

	before := len(pr.DealLog)
	s.game = s.eng.ResolveSecondChance(s.game, targetID)
	events := s.game.PlayRound.DealLog[before:]
	s.mtx.Unlock()

	s.announce(events)
}

func (s *Session) computerTurn(playerID string) {
	s.mtx.Lock()
	pr := s.game.PlayRound
	if pr == nil || pr.PendingAction != nil || pr.ActivePlayerID() != playerID {
		s.mtx.Unlock()
		return
	}

	decision := strategy.DecideAction(s.game, playerID)
	before := len(pr.DealLog)
	var stood string
	var total int
	if decision == strategy.Hit {
		s.game = s.eng.Hit(s.game)
	} else {
		stood = s.nameOf(playerID)
		total = s.handTotal(playerID)
		s.game = s.eng.Stand(s.game)
	}
	events := s.game.PlayRound.DealLog[before:]
	s.mtx.Unlock()

	if stood != "" {
		s.send(fmt.Sprintf(resource.TextStandMsg, stood, total))
	}
	s.announce(events)
}

func (s *Session) finishRound(logger interface{ Errorf(string, ...interface{}) }) {
	s.mtx.Lock()
	g := s.eng.EndRound(s.game)
	s.game = g
	roundNum := len(g.Rounds)
	table := renderRoundResults(g, roundNum-1)
	winner, won := g.Winner()
	s.mtx.Unlock()

	s.send(fmt.Sprintf(resource.TextRoundOverMsg, roundNum, table))

	if won {
		s.mtx.Lock()
		s.Started = false
		s.mtx.Unlock()
		s.send(fmt.Sprintf(resource.TextWinnerMsg, winner.Name, s.Game().PlayerTotal(winner.ID)))
		if s.Config.DoneFn != nil {
			if err := s.Config.DoneFn(s); err != nil {
				logger.Errorf("done function: %v", err)
			}
		}
		return
	}

	s.mtx.Lock()
	s.startRoundLocked()
	s.mtx.Unlock()
}

func (s *Session) persist(logger interface{ Errorf(string, ...interface{}) }) {
	if s.Config.SaveFn == nil {
		return
	}
	if err := s.Config.SaveFn(s); err != nil {
		// Best-effort: a failed save never stops the game.
		logger.Errorf("save session: %v", err)
	}
}

func (s *Session) pause(ctx context.Context) {
	if s.Config.TurnDelay <= 0 {
		return
	}
	timer := time.NewTimer(s.Config.TurnDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func (s *Session) isComputer(playerID string) bool {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	p, ok := s.game.Player(playerID)
	return ok && p.Computer
}

func (s *Session) nameOf(playerID string) string {
	p, ok := s.game.Player(playerID)
	if !ok {
		return "?"
	}
	return p.Name
}

func (s *Session) handTotal(playerID string) int {
	return handTotal(s.game, playerID)
}

func (s *Session) promptTurn(g *engine.Game, playerID string) {
	chance := odds.BustChance(
		g.PlayRound.PlayerHands[playerID].NumberCards,
		g.DealtTally(),
		g.PlayRound.HeldTally(),
	)

	msg := tgbotapi.NewMessage(s.Config.ChatID,
		renderHands(g)+"\n"+
			fmt.Sprintf(resource.TextYourTurnMsg, s.nameOf(playerID), chance.Percent))
	msg.ReplyMarkup = resource.TurnKeyboard()
	s.sendMsg(msg)
}

func (s *Session) promptFlipThree(g *engine.Game, pending *engine.PendingAction) {
	var playing []string
	for _, id := range g.PlayRound.TurnOrder {
		if g.PlayRound.PlayerHands[id].Playing() {
			playing = append(playing, id)
		}
	}

	msg := tgbotapi.NewMessage(s.Config.ChatID,
		fmt.Sprintf(resource.TextF3PromptMsg, s.nameOf(pending.ChooserID)))
	msg.ReplyMarkup = resource.TargetKeyboard(resource.FlipThreeButtonPrefix, s.seatNameIndex(g), playing)
	s.sendMsg(msg)
}

func (s *Session) promptSecondChance(g *engine.Game, pending *engine.PendingAction) {
	msg := tgbotapi.NewMessage(s.Config.ChatID,
		fmt.Sprintf(resource.TextGiftPromptMsg, s.nameOf(pending.SourcePlayerID)))
	msg.ReplyMarkup = resource.TargetKeyboard(
		resource.SecondChanceButtonPrefix,
		s.seatNameIndex(g),
		pending.EligiblePlayerIDs,
	)
	s.sendMsg(msg)
}

func (s *Session) seatNameIndex(g *engine.Game) map[string]string {
	names := make(map[string]string, len(g.Players))
	for _, p := range g.Players {
		names[p.ID] = p.Name
	}
	return names
}

// announce renders freshly appended deal-log events.
func (s *Session) announce(events []engine.DealEvent) {
	for _, ev := range events {
		if text := s.renderEvent(ev); text != "" {
			s.send(text)
		}
	}
}

func (s *Session) renderEvent(ev engine.DealEvent) string {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	name := s.nameOf(ev.PlayerID)
	switch ev.Event {
	case engine.EventDeal:
		text := fmt.Sprintf(resource.TextHitMsg, name, renderCard(ev.Card))
		if hand := s.handOf(ev.PlayerID); hand != nil {
			if ev.Card.Kind == deck.KindNumber && len(hand.NumberCards) == 7 && hand.Status == engine.StatusStood {
				text += "\n" + fmt.Sprintf(resource.TextFlip7Msg, name)
			}
			if ev.Card.Kind == deck.KindAction && ev.Card.Action == deck.ActionFreeze {
				text += "\n" + fmt.Sprintf(resource.TextFreezeMsg, name)
			}
		}
		return text
	case engine.EventBust:
		return fmt.Sprintf(resource.TextBustMsg, name, renderCard(ev.Card))
	case engine.EventSecondChanceSave:
		return fmt.Sprintf(resource.TextSaveMsg, name, renderCard(ev.Card))
	case engine.EventSecondChanceGift:
		return fmt.Sprintf(resource.TextGiftMsg, name)
	case engine.EventSecondChanceDiscarded:
		return resource.TextDiscardSCMsg
	case engine.EventReshuffle:
		return resource.TextReshuffleMsg
	}
	return ""
}

func (s *Session) handOf(playerID string) *engine.Hand {
	if s.game.PlayRound == nil {
		return nil
	}
	return s.game.PlayRound.PlayerHands[playerID]
}

func (s *Session) send(text string) {
	msg := tgbotapi.NewMessage(s.Config.ChatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	s.sendMsg(msg)
}

func (s *Session) sendMsg(msg tgbotapi.Chattable) {
	if _, err := s.tg.Send(msg); err != nil {
		logging.DefaultLogger().Errorf("send tg: %v", err)
	}
}

func seatNames(g *engine.Game, ids []string) string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if p, ok := g.Player(id); ok {
			names = append(names, p.Name)
		}
	}
	return strings.Join(names, ", ")
}
