package flip7bot

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/flip7-games/flip7/internal/database/gamestate/database"
	gamestateModel "github.com/flip7-games/flip7/internal/database/gamestate/model"
	statDb "github.com/flip7-games/flip7/internal/database/stat/database"
	statModel "github.com/flip7-games/flip7/internal/database/stat/model"
	userDb "github.com/flip7-games/flip7/internal/database/user/database"
	userModel "github.com/flip7-games/flip7/internal/database/user/model"
	"github.com/flip7-games/flip7/internal/deck"
	"github.com/flip7-games/flip7/internal/engine"
	"github.com/flip7-games/flip7/internal/flip7bot/match"
	"github.com/flip7-games/flip7/internal/flip7bot/resource"
	"github.com/flip7-games/flip7/internal/logging"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"golang.org/x/sync/errgroup"
)

var ErrCommandNotFound = fmt.Errorf("command not found")

func NewManager(tg *tgbotapi.BotAPI, config *Config, userDb *userDb.DB, statDb *statDb.DB, stateDb *database.DB) *Manager {
	return &Manager{
		tg:       tg,
		config:   config,
		eng:      engine.New(&deck.FastSource{}),
		sessions: map[int64]*match.Session{},
		userDb:   userDb,
		statDb:   statDb,
		stateDb:  stateDb,
	}
}

type Manager struct {
	mtx sync.RWMutex

	tg     *tgbotapi.BotAPI
	config *Config
	eng    *engine.Engine

	// key: chat id of the playing chat
	sessions map[int64]*match.Session

	userDb  *userDb.DB
	statDb  *statDb.DB
	stateDb *database.DB

	cancel     func()
	ctxSess    context.Context
	cancelSess func()
}

func (m *Manager) Stop() {
	m.cancel()
}

func (m *Manager) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.ctxSess, m.cancelSess = context.WithCancel(logging.WithLogger(context.Background(), logging.FromContext(ctx)))

	upd := tgbotapi.NewUpdate(0)
	upd.Timeout = int(m.config.TgBotPollTimeout.Seconds())
	updates, err := m.tg.GetUpdatesChan(upd)
	if err != nil {
		return fmt.Errorf("tg get updates chan: %v", err)
	}

	if err := m.deserialize(ctx); err != nil {
		return fmt.Errorf("deserialize: %v", err)
	}

	wg := &sync.WaitGroup{}
	poolWorkerNum := runtime.NumCPU()
	wg.Add(poolWorkerNum)

	for i := 0; i < poolWorkerNum; i++ {
		go m.pool(ctx, wg, updates)
	}

	wg.Wait()
	m.shutdown()
	return nil
}

func (m *Manager) pool(ctx context.Context, wg *sync.WaitGroup, updates tgbotapi.UpdatesChannel) {
	defer wg.Done()
	logger := logging.FromContext(ctx).Named("manager.pool")

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := m.handle(ctx, update); err != nil {
				logger.Errorf("handle update: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (m *Manager) handle(ctx context.Context, update tgbotapi.Update) error {
	if update.CallbackQuery != nil {
		session, ok := m.session(update.CallbackQuery.Message.Chat.ID)
		if !ok {
			return nil
		}
		return session.Execute(int64(update.CallbackQuery.From.ID), update.CallbackQuery)
	}

	if update.Message == nil {
		return nil
	}

	if err := m.registerUser(update.Message.From); err != nil {
		return fmt.Errorf("register user: %w", err)
	}

	if !update.Message.IsCommand() {
		return nil
	}

	if err := m.command(ctx, update.Message); err != nil {
		if errors.Is(err, ErrCommandNotFound) {
			return nil
		}
		return fmt.Errorf("command %q: %w", update.Message.Command(), err)
	}

	return nil
}

func (m *Manager) registerUser(from *tgbotapi.User) error {
	if from == nil {
		return nil
	}

	if _, err := m.userDb.Fetch(int64(from.ID)); err == nil {
		return nil
	} else if !errors.Is(err, userDb.ErrNotFound) {
		return fmt.Errorf("fetch user: %w", err)
	}

	u := userModel.User{
		ID:           int64(from.ID),
		FirstName:    from.FirstName,
		LastName:     from.LastName,
		LanguageCode: from.LanguageCode,
		Username:     from.UserName,
		Status:       userModel.StatusActive,
		CreatedAt:    time.Now(),
		Admin:        m.config.Admin != "" && m.config.Admin == from.UserName,
	}

	if err := m.userDb.Store(u); err != nil {
		return fmt.Errorf("store user: %w", err)
	}

	return nil
}

func (m *Manager) command(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	userID := int64(msg.From.ID)

	switch msg.Command() {
	case "start":
		return m.sendMarkdown(chatID, fmt.Sprintf(resource.TextGreetingMsg, msg.From.FirstName))
	case "rules":
		return m.sendMarkdown(chatID, resource.TextRulesMsg)
	case "new":
		return m.newGame(chatID, userID)
	case "join":
		return m.join(chatID, userID, msg.From.FirstName)
	case "bot":
		return m.addBot(chatID, userID)
	case "begin":
		return m.begin(chatID, userID)
	case "score":
		return m.score(chatID)
	case "profile":
		return m.profile(chatID, userID, msg.From.FirstName)
	case "abort":
		return m.abort(chatID, userID)
	}

	return ErrCommandNotFound
}

func (m *Manager) newGame(chatID, userID int64) error {
	m.mtx.Lock()
	if _, ok := m.sessions[chatID]; ok {
		m.mtx.Unlock()
		return m.sendMarkdown(chatID, resource.TextGameAlreadyMsg)
	}

	session := match.NewSession(match.Config{
		ChatID:    chatID,
		OwnerID:   userID,
		TurnDelay: m.config.TurnDelay,
		Tg:        m.tg,
		DoneFn:    m.doneFn,
		SaveFn:    m.saveFn,
	}, m.eng)
	m.sessions[chatID] = session
	m.mtx.Unlock()

	session.Run(m.ctxSess)
	return m.sendMarkdown(chatID, resource.TextGameCreatedMsg)
}

func (m *Manager) join(chatID, userID int64, name string) error {
	session, ok := m.session(chatID)
	if !ok {
		return m.sendMarkdown(chatID, resource.TextGameNotFoundMsg)
	}

	if err := session.AddHuman(userID, name); err != nil {
		return m.sendMarkdown(chatID, resource.TextAlreadyJoinedMsg)
	}

	return m.sendMarkdown(chatID, fmt.Sprintf(resource.TextJoinedMsg, name))
}

func (m *Manager) addBot(chatID, userID int64) error {
	session, ok := m.session(chatID)
	if !ok {
		return m.sendMarkdown(chatID, resource.TextGameNotFoundMsg)
	}
	if session.Config.OwnerID != userID {
		return m.sendMarkdown(chatID, resource.TextGameNotYoursMsg)
	}

	name, err := session.AddBot()
	if err != nil {
		return m.sendMarkdown(chatID, resource.TextGameInProgressMsg)
	}

	return m.sendMarkdown(chatID, fmt.Sprintf(resource.TextBotAddedMsg, name))
}

func (m *Manager) begin(chatID, userID int64) error {
	session, ok := m.session(chatID)
	if !ok {
		return m.sendMarkdown(chatID, resource.TextGameNotFoundMsg)
	}
	if session.Config.OwnerID != userID {
		return m.sendMarkdown(chatID, resource.TextGameNotYoursMsg)
	}

	if err := session.Begin(); err != nil {
		return m.sendMarkdown(chatID, resource.TextTooFewPlayersMsg)
	}

	return nil
}

func (m *Manager) score(chatID int64) error {
	session, ok := m.session(chatID)
	if !ok {
		return m.sendMarkdown(chatID, resource.TextGameNotFoundMsg)
	}

	g := session.Game()
	var text string
	for _, p := range g.Players {
		text += fmt.Sprintf("%s: %d\n", p.Name, g.PlayerTotal(p.ID))
	}
	if text == "" {
		text = resource.TextGameNotFoundMsg
	}

	return m.sendMarkdown(chatID, text)
}

func (m *Manager) profile(chatID, userID int64, name string) error {
	agg, err := m.statDb.FetchProfileStat(userID)
	if err != nil {
		return fmt.Errorf("fetch profile stat: %w", err)
	}

	if agg.Count == 0 {
		return m.sendMarkdown(chatID, resource.TextNoProfileMsg)
	}

	return m.sendMarkdown(chatID, fmt.Sprintf(
		resource.TextProfileMsg,
		name, agg.Count, agg.Wins, agg.BestScore, agg.BestRound, agg.Flip7s, agg.Busts, agg.AvgScore,
	))
}

func (m *Manager) abort(chatID, userID int64) error {
	session, ok := m.session(chatID)
	if !ok {
		return m.sendMarkdown(chatID, resource.TextGameNotFoundMsg)
	}
	if session.Config.OwnerID != userID {
		return m.sendMarkdown(chatID, resource.TextGameNotYoursMsg)
	}

	m.removeSession(chatID)
	session.Stop()
	if err := m.stateDb.Delete(chatID); err != nil {
		return fmt.Errorf("state db delete: %w", err)
	}

	return m.sendMarkdown(chatID, resource.TextGameAbortedMsg)
}

// doneFn records stats for every human seat and drops the finished
// game from the store.
func (m *Manager) doneFn(session *match.Session) error {
	g := session.Game()
	winner, _ := g.Winner()

	for seatID, tgUserID := range session.Seats {
		stat := statModel.NewStat(tgUserID)
		stat.Score = g.PlayerTotal(seatID)
		stat.Won = winner.ID == seatID
		stat.RoundsNum = len(g.Rounds)
		stat.PlayersNum = len(g.Players)

		for _, round := range g.Rounds {
			result, ok := round.PlayerResults[seatID]
			if !ok {
				continue
			}
			if result.Score > stat.BestRound {
				stat.BestRound = result.Score
			}
			if result.Flip7 {
				stat.Flip7s++
			}
			if result.Busted {
				stat.Busts++
			}
		}

		if err := m.statDb.Add(stat); err != nil {
			return fmt.Errorf("stat db add: %w", err)
		}
	}

	m.removeSession(session.Config.ChatID)
	if err := m.stateDb.Delete(session.Config.ChatID); err != nil {
		return fmt.Errorf("state db delete: %w", err)
	}

	return nil
}

func (m *Manager) saveFn(session *match.Session) error {
	return m.serialize(session)
}

func (m *Manager) serialize(session *match.Session) error {
	state := gamestateModel.State{
		ChatID:      session.Config.ChatID,
		OwnerID:     session.Config.OwnerID,
		Game:        session.Game(),
		SeatUserIDs: session.Seats,
		CreatedAt:   session.CreatedAt,
	}

	if err := m.stateDb.Save(state); err != nil {
		return fmt.Errorf("state db save: %w", err)
	}

	return nil
}

// deserialize restores unfinished games on startup and tells their
// chats the table is live again.
func (m *Manager) deserialize(ctx context.Context) error {
	logger := logging.FromContext(ctx).Named("manager.deserialize")

	states, err := m.stateDb.FetchAll()
	if err != nil {
		if errors.Is(err, database.ErrEntryNotFound) {
			return nil
		}
		return fmt.Errorf("state db fetch all: %w", err)
	}

	group, _ := errgroup.WithContext(ctx)
	for _, state := range states {
		state := state
		session := match.Restore(match.Config{
			ChatID:    state.ChatID,
			OwnerID:   state.OwnerID,
			TurnDelay: m.config.TurnDelay,
			Tg:        m.tg,
			DoneFn:    m.doneFn,
			SaveFn:    m.saveFn,
		}, m.eng, state.Game, state.SeatUserIDs)

		m.mtx.Lock()
		m.sessions[state.ChatID] = session
		m.mtx.Unlock()

		session.Run(m.ctxSess)

		group.Go(func() error {
			return m.sendMarkdown(state.ChatID, resource.TextRestoredGameMsg)
		})
	}

	if err := group.Wait(); err != nil {
		logger.Errorf("notify restored chats: %v", err)
	}

	logger.Infof("restored %d unfinished games", len(states))
	return nil
}

func (m *Manager) shutdown() {
	logger := logging.DefaultLogger().Named("manager.shutdown")

	m.mtx.RLock()
	sessions := make([]*match.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		sessions = append(sessions, session)
	}
	m.mtx.RUnlock()

	for _, session := range sessions {
		if err := m.serialize(session); err != nil {
			logger.Errorf("serialize session: %v", err)
		}
	}

	m.cancelSess()
}

func (m *Manager) session(chatID int64) (*match.Session, bool) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	session, ok := m.sessions[chatID]
	return session, ok
}

func (m *Manager) removeSession(chatID int64) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	delete(m.sessions, chatID)
}

func (m *Manager) sendMarkdown(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := m.tg.Send(msg); err != nil {
		return fmt.Errorf("send msg: %w", err)
	}
	return nil
}
