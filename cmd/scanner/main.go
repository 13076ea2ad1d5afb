package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/kalpesh33in-max/banknifty-dashboard/internal/config"
	"github.com/kalpesh33in-max/banknifty-dashboard/internal/dashboard"
	"github.com/kalpesh33in-max/banknifty-dashboard/internal/engine"
	"github.com/kalpesh33in-max/banknifty-dashboard/internal/feed"
	"github.com/kalpesh33in-max/banknifty-dashboard/internal/instrument"
	"github.com/kalpesh33in-max/banknifty-dashboard/internal/logger"
	"github.com/kalpesh33in-max/banknifty-dashboard/internal/models"
	"github.com/kalpesh33in-max/banknifty-dashboard/internal/notify"
	"github.com/kalpesh33in-max/banknifty-dashboard/internal/storage"
)

var configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s (%d symbols)", *configPath, len(cfg.Scanner.Symbols))

	// The crash path must return, not exit, so the deferred dispatcher
	// drain and journal close still run.
	if err := run(cfg); err != nil {
		logger.Error("Scanner stopped with error: %v", err)
		os.Exit(1)
	}
	logger.Info("Scanner stopped")
}

func run(cfg *config.Config) error {
	journal, err := storage.Open(cfg.Storage.DBPath, cfg.Storage.MaxAlerts)
	if err != nil {
		return fmt.Errorf("open alert journal: %w", err)
	}
	defer func() {
		if err := journal.Close(); err != nil {
			logger.Error("Failed to close alert journal: %v", err)
		}
	}()

	dispatcher, err := buildDispatcher(cfg)
	if err != nil {
		return fmt.Errorf("initialize alert channels: %w", err)
	}
	defer dispatcher.Wait()

	parser := instrument.NewParser(cfg.Scanner.Underlyings())
	eng := engine.New(engineConfig(cfg), parser, dispatcher, journal)

	feedClient := feed.NewClient(
		feed.Config{
			WSSURL:         cfg.Feed.WSSURL,
			Exchange:       cfg.Feed.Exchange,
			APIKey:         cfg.Feed.APIKey,
			Symbols:        cfg.Scanner.Symbols,
			PingInterval:   cfg.Feed.PingInterval,
			AuthRetryDelay: cfg.Feed.AuthRetryDelay,
			ReconnectDelay: cfg.Feed.ReconnectDelay,
		},
		func(tick models.Tick) { eng.ProcessTick(tick) },
		func() { dispatcher.Dispatch("✅ OI scanner is LIVE and monitoring the market.") },
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, cleaning up...")
		dispatcher.Dispatch("🛑 OI scanner was stopped.")
		cancel()
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return feedClient.Run(gctx)
	})
	if cfg.Dashboard.Enabled {
		g.Go(func() error {
			return dashboard.NewServer(eng, journal).Serve(gctx, cfg.Dashboard.ListenAddr)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		dispatcher.Dispatch(fmt.Sprintf("💥 OI scanner CRASHED with a critical error: %v", err))
		return err
	}

	return nil
}

func buildDispatcher(cfg *config.Config) (*notify.Dispatcher, error) {
	var senders []notify.Sender

	if cfg.WhatsApp.Enabled {
		senders = append(senders, notify.NewWhatsAppSender(
			cfg.WhatsApp.APIBaseURL,
			cfg.WhatsApp.InstanceID,
			cfg.WhatsApp.Token,
			cfg.WhatsApp.GroupID,
			cfg.WhatsApp.Timeout,
		))
		logger.Info("WhatsApp channel initialized")
	}

	if cfg.Telegram.Enabled {
		tg, err := notify.NewTelegramSender(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			return nil, fmt.Errorf("telegram: %w", err)
		}
		senders = append(senders, tg)
		logger.Info("Telegram channel initialized")
	}

	if len(senders) == 0 {
		logger.Warn("No alert channels enabled; alerts will only be journaled")
	}

	return notify.NewDispatcher(senders...), nil
}

func engineConfig(cfg *config.Config) engine.Config {
	buckets := make([]engine.BucketBound, 0, len(cfg.Scanner.Buckets))
	for _, b := range cfg.Scanner.Buckets {
		buckets = append(buckets, engine.BucketBound{MinLots: b.MinLots, Label: models.Bucket(b.Label)})
	}
	return engine.Config{
		Symbols:        cfg.Scanner.Symbols,
		LotSizes:       cfg.Scanner.LotSizes,
		DefaultLotSize: cfg.Scanner.DefaultLotSize,
		OIRoCThreshold: cfg.Scanner.OIRoCThreshold,
		MinLots:        cfg.Scanner.MinLots,
		ATMBand:        cfg.Scanner.ATMBand,
		Buckets:        buckets,
	}
}
