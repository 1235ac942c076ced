package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"todobot/internal/bot"
	"todobot/internal/config"
	"todobot/internal/health"
	"todobot/internal/logging"
	"todobot/internal/storage"
	"todobot/internal/telegram"
	"todobot/internal/ui"
)

const consoleLogFile = "todobot.log"

func main() {
	configPath := config.ResolveConfigPath()
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("invalid config %s: %v\n", configPath, err)
		os.Exit(1)
	}

	// The console transport owns the terminal, so logs go to a file.
	var logOut io.Writer = os.Stderr
	if cfg.Transport == config.TransportConsole {
		f, err := os.OpenFile(consoleLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Printf("failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	logger, err := logging.New(cfg.Log, logOut)
	if err != nil {
		fmt.Printf("failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Fatalf("failed to open database: %v", err)
	}
	defer store.Close()

	dispatcher := bot.NewDispatcher(store, logging.NewActionLog(logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, store, dispatcher, logger); err != nil {
		logger.WithError(err).Error("todobot stopped")
		store.Close()
		os.Exit(1)
	}
	logger.Info("todobot stopped")
}

func run(ctx context.Context, cfg config.Config, store *storage.Store, dispatcher *bot.Dispatcher, logger *log.Logger) error {
	g, ctx := errgroup.WithContext(ctx)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.Health.Enabled {
		srv := health.NewServer(store, logger)
		g.Go(func() error {
			logger.WithField("addr", cfg.Health.Addr).Info("health server listening")
			return health.Serve(ctx, srv, cfg.Health.Addr)
		})
	}

	g.Go(func() error {
		// Either transport ending stops the health server too.
		defer cancel()
		switch cfg.Transport {
		case config.TransportConsole:
			return ui.Run(dispatcher, cfg)
		default:
			api, err := telegram.Dial(cfg.Telegram)
			if err != nil {
				return err
			}
			logger.WithField("bot", api.Self.UserName).Info("authorized on telegram")
			return telegram.New(api, dispatcher, logger, cfg.Telegram.PollTimeout).Run(ctx)
		}
	})

	return g.Wait()
}
