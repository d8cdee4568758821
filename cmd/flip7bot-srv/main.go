package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/flip7-games/flip7/internal/cache/cachelru"
	"github.com/flip7-games/flip7/internal/database"
	stateDb "github.com/flip7-games/flip7/internal/database/gamestate/database"
	statDb "github.com/flip7-games/flip7/internal/database/stat/database"
	userDb "github.com/flip7-games/flip7/internal/database/user/database"
	"github.com/flip7-games/flip7/internal/flip7bot"
	"github.com/flip7-games/flip7/internal/flip7bot/resource"
	"github.com/flip7-games/flip7/internal/logging"
	"github.com/flip7-games/flip7/internal/server"
	"github.com/flip7-games/flip7/internal/shutdown"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/kelseyhightower/envconfig"
)

func main() {
	_, _ = fmt.Fprint(os.Stdout, resource.Graffiti)
	_, _ = fmt.Fprintf(
		os.Stdout,
		resource.GreetingCLI,
		resource.ProjectName,
		resource.ProjectVersion,
		resource.GithubFlip7Url,
	)

	ctx, done := shutdown.New()
	defer done()
	config := flip7bot.Config{}
	if err := envconfig.Process("", &config); err != nil {
		logging.DefaultLogger().Fatalf("processing the config: %v", err)
	}

	logger := logging.NewLogger(config.Debug)

	if err := realMain(ctx, config, done); err != nil {
		logger.Fatalf("main.realMain: %v", err)
	}
}

func realMain(ctx context.Context, config flip7bot.Config, done func()) error {
	logger := logging.FromContext(ctx).Named("main.realMain")
	if config.BotToken == "" {
		return fmt.Errorf("bot token not found, register your bot with @BotFather and set FLIP7_BOT_TOKEN")
	}

	tg, err := tgbotapi.NewBotAPI(config.BotToken)
	if err != nil {
		return fmt.Errorf("bot api: %w", err)
	}

	tg.Debug = config.Debug

	_, _ = fmt.Fprint(os.Stdout, "Authorization in telegram was successful: ", tg.Self.UserName, "\n")

	db, err := database.NewFromEnv(ctx, &config.Db)
	if err != nil {
		return fmt.Errorf("new database from env: %w", err)
	}

	defer db.Close(ctx)

	userCache, err := cachelru.NewLRU(config.CacheSize)
	if err != nil {
		return fmt.Errorf("can not create lru cache: %w", err)
	}

	statCache, err := cachelru.NewLRU(config.CacheSize)
	if err != nil {
		return fmt.Errorf("can not create lru cache: %w", err)
	}

	srv, err := server.New(config.Port)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/health", server.HandleHealth(ctx))

	go func() {
		if err := srv.ServeHTTP(ctx, &http.Server{Handler: mux}); err != nil {
			logger.Fatalf("srv.ServeHTTP: %v", err)
			done()
		}
	}()

	go func() {
		if err := http.ListenAndServe(":"+config.ProfPort, nil); err != nil {
			logger.Fatalf("pprof default server: %v", err)
			done()
		}
	}()

	manager := flip7bot.NewManager(tg, &config, userDb.New(db, userCache), statDb.New(db, statCache), stateDb.New(db))
	if err := manager.Run(ctx); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	return nil
}
