package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	gmailapi "google.golang.org/api/gmail/v1"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/inboxrow/inboxrow/auth"
	"github.com/inboxrow/inboxrow/config"
	"github.com/inboxrow/inboxrow/gmail"
	"github.com/inboxrow/inboxrow/ledger"
	"github.com/inboxrow/inboxrow/runner"
	"github.com/inboxrow/inboxrow/sheets"
	"github.com/inboxrow/inboxrow/store"
	"github.com/inboxrow/inboxrow/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.SpreadsheetID == "" {
		log.Fatalf("No spreadsheet configured. Set spreadsheet_id in config.json or INBOXROW_SPREADSHEET_ID.")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutdown signal received, cancelling context...")
		cancel()
	}()

	// One-shot mode: process unread mail once and exit.
	if len(os.Args) > 1 && os.Args[1] == "run" {
		run, err := buildRunner(ctx, cfg, nil)
		if err != nil {
			log.Fatalf("Failed to initialize: %v", err)
		}
		count, err := run.Run(ctx)
		if err != nil {
			log.Fatalf("Run failed: %v", err)
		}
		log.Printf("Run complete. Processed %d new emails.", count)
		return
	}

	// Server mode: expose the trigger surface.
	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open run-history database: %v", err)
	}
	runs := store.NewRunStore(db)

	run, err := buildRunner(ctx, cfg, runs)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}

	router := web.SetupRouter(web.NewHandler(run.Mail(), run, runs))
	log.Printf("Listening on port %s...", cfg.APIPort)
	if err := router.Run(":" + cfg.APIPort); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// buildRunner wires the credential stores, API clients, ledger and workflow
// together. runs may be nil when run recording is not wanted.
func buildRunner(ctx context.Context, cfg *config.Config, runs *store.RunStore) (*runner.Runner, error) {
	gmailAuth := auth.NewStore("gmail", cfg.CredentialsFile, cfg.GmailTokenFile,
		cfg.Interactive, gmailapi.GmailModifyScope)
	sheetsAuth := auth.NewStore("sheets", cfg.CredentialsFile, cfg.SheetsTokenFile,
		cfg.Interactive, sheetsapi.SpreadsheetsScope)

	mail, err := gmail.NewClient(ctx, gmailAuth.TokenSource(ctx))
	if err != nil {
		return nil, err
	}
	sheet, err := sheets.NewClient(ctx, sheetsAuth.TokenSource(ctx), cfg.SpreadsheetID)
	if err != nil {
		return nil, err
	}

	led := ledger.New(cfg.LedgerPath)
	creds := []runner.Credential{gmailAuth, sheetsAuth}
	return runner.New(led, mail, sheet, cfg.SheetRange, creds, runs), nil
}
