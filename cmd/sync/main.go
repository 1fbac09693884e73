package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/dvloznov/cashew-autofill/internal/cashew"
	"github.com/dvloznov/cashew-autofill/internal/classify"
	"github.com/dvloznov/cashew-autofill/internal/config"
	"github.com/dvloznov/cashew-autofill/internal/logger"
	"github.com/dvloznov/cashew-autofill/internal/mailbox"
	"github.com/dvloznov/cashew-autofill/internal/pipeline"
	"github.com/dvloznov/cashew-autofill/internal/state"
	"github.com/fatih/color"
)

func main() {
	log := logger.New()

	configPath := flag.String("config", "config.yaml", "Path to the YAML configuration file")
	credentialsPath := flag.String("credentials", "credentials.json", "Path to the Google OAuth client secrets file")
	tokenPath := flag.String("token", "token.json", "Path to the cached Gmail OAuth token")
	flag.Parse()

	// Create context with timeout so the CLI doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Loading configuration failed")
	}

	ts, err := mailbox.TokenSource(ctx, *credentialsPath, *tokenPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Loading Gmail credentials failed")
	}
	source, err := mailbox.NewGmail(ctx, ts)
	if err != nil {
		log.Fatal().Err(err).Msg("Creating Gmail client failed")
	}

	oracle, err := classify.NewGemini(ctx, cfg.GeminiAPIKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Creating Gemini client failed")
	}

	store := &state.FileStore{Path: cfg.StatePath}
	deliverer := cashew.NewMessenger(cfg.Phone, cfg.Accounts)

	log.Info().Str("state_path", cfg.StatePath).Msg("Starting ingestion")

	txs, err := pipeline.Run(ctx, cfg, source, oracle, deliverer, store)
	if err != nil {
		log.Fatal().Err(err).Msg("Ingestion failed")
	}

	if len(txs) == 0 {
		fmt.Println("No new transactions.")
		return
	}

	color.Green("Sent %d transaction(s) to Cashew:", len(txs))
	for _, tx := range txs {
		fmt.Printf("  %s  %s  %s (%s)\n", tx.Date, tx.Amount, tx.Title, tx.Category)
	}
}
