package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mixelka/stashbot/internal/categorize"
	"github.com/mixelka/stashbot/internal/config"
	"github.com/mixelka/stashbot/internal/database"
	"github.com/mixelka/stashbot/internal/document"
	"github.com/mixelka/stashbot/internal/formatter"
	applog "github.com/mixelka/stashbot/internal/log"
	"github.com/mixelka/stashbot/internal/ocr"
	"github.com/mixelka/stashbot/internal/parser"
	"github.com/mixelka/stashbot/internal/telegram"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the Telegram bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBot(cmd.Context())
		},
	}
}

func runBot(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.ValidateBot(); err != nil {
		return err
	}

	logger := applog.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting stashbot", "version", getVersion())

	rules, err := loadRules(cfg)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}

	// Connect to database
	db, err := database.New(cfg.DatabasePath, database.WithNoteWindow(cfg.NoteDedupWindow))
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return err
	}
	logger.Info("database migrations completed", "path", cfg.DatabasePath)

	// Create components
	engine := categorize.NewEngine(rules, logger)
	service := categorize.NewService(engine, db, logger)
	tesseract := ocr.NewTesseract(cfg.OCRLanguage)
	ocrProvider := ocr.New(tesseract, cfg.OCRConcurrency, cfg.MaxImageSize, logger)
	documents := document.NewExtractor(parser.NewHTMLParser(), cfg.MaxImageSize)

	bot, err := telegram.NewBot(telegram.BotDeps{
		Config:    cfg,
		DB:        db,
		Service:   service,
		OCR:       ocrProvider,
		Documents: documents,
		Formatter: formatter.NewTelegramFormatter(),
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	logger.Info("bot is running, press Ctrl+C to stop", "ocr_languages", tesseract.Languages())
	bot.Start(ctx)

	logger.Info("bot stopped")
	return nil
}
