package runner

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/oauth2"

	"github.com/inboxrow/inboxrow/gmail"
	"github.com/inboxrow/inboxrow/ledger"
	"github.com/inboxrow/inboxrow/store"
)

// Mailbox is the slice of the mail provider the workflow needs.
type Mailbox interface {
	ListUnread(ctx context.Context) ([]string, error)
	FetchRecord(ctx context.Context, id string) (gmail.EmailRecord, error)
	MarkRead(ctx context.Context, id string) error
}

// Appender is the slice of the spreadsheet provider the workflow needs.
type Appender interface {
	AppendRow(ctx context.Context, rangeName string, row []any) error
}

// Credential obtains a valid provider token. Both provider credential stores
// are checked up front so an authentication failure aborts the run before any
// provider-side mutation.
type Credential interface {
	Token(ctx context.Context) (*oauth2.Token, error)
}

// ErrAsyncUnavailable indicates StartAsync was called without a run store.
var ErrAsyncUnavailable = errors.New("runner: no run store configured")

// Runner executes the idempotent mail-to-sheet workflow.
type Runner struct {
	ledger     *ledger.Ledger
	mail       Mailbox
	sheet      Appender
	sheetRange string
	creds      []Credential
	runs       *store.RunStore // may be nil; run recording is then disabled
}

// New creates a Runner. creds lists the provider credential stores verified
// at the start of each run; runs may be nil.
func New(led *ledger.Ledger, mail Mailbox, sheet Appender, sheetRange string, creds []Credential, runs *store.RunStore) *Runner {
	return &Runner{
		ledger:     led,
		mail:       mail,
		sheet:      sheet,
		sheetRange: sheetRange,
		creds:      creds,
		runs:       runs,
	}
}

// Mail exposes the mailbox so the trigger surface can list unread messages
// live without going through a run.
func (r *Runner) Mail() Mailbox {
	return r.mail
}

// Run processes all unread inbox messages once, sequentially, in listing
// order, and returns how many were fully processed.
//
// Failure policy: ledger load, credential and listing failures abort the run;
// any failure while handling a single message is logged and that message is
// skipped, to be retried on the next run. A message ID is only added to the
// ledger after both the row append and the mark-read succeeded, so a
// transient failure mid-message can never lose mail — at worst it produces a
// duplicate row on the retry.
func (r *Runner) Run(ctx context.Context) (int, error) {
	log.Println("[Runner] Starting email processing run...")

	processed, err := r.ledger.Load()
	if err != nil {
		return 0, fmt.Errorf("load processed IDs: %w", err)
	}
	log.Printf("[Runner] Loaded %d previously processed message IDs.", len(processed))

	for _, cred := range r.creds {
		if _, err := cred.Token(ctx); err != nil {
			return 0, fmt.Errorf("authenticate: %w", err)
		}
	}

	ids, err := r.mail.ListUnread(ctx)
	if err != nil {
		return 0, fmt.Errorf("list unread emails: %w", err)
	}
	log.Printf("[Runner] Found %d unread emails in INBOX.", len(ids))
	if len(ids) == 0 {
		return 0, nil
	}

	count := 0
	for _, id := range ids {
		if _, done := processed[id]; done {
			log.Printf("[Runner] Skipping already processed email %s.", id)
			continue
		}

		if err := r.processOne(ctx, id); err != nil {
			if !errors.Is(err, errSkipped) {
				log.Printf("[Runner] Error processing email %s: %v", id, err)
			}
			continue
		}

		processed[id] = struct{}{}
		count++
	}

	// One save after the loop. Rows already appended and messages already
	// marked read stay that way even if this fails.
	if err := r.ledger.Save(processed); err != nil {
		return count, fmt.Errorf("save processed IDs: %w", err)
	}
	log.Printf("[Runner] Saved %d processed message IDs. Processed %d new emails.", len(processed), count)
	return count, nil
}

// processOne handles a single message: fetch, extract, append, mark read.
// A record with no usable fields is skipped without side effects.
func (r *Runner) processOne(ctx context.Context, id string) error {
	rec, err := r.mail.FetchRecord(ctx, id)
	if err != nil {
		return err
	}

	if rec.Empty() {
		log.Printf("[Runner] No data extracted from email %s, skipping.", id)
		return errSkipped
	}

	if err := r.sheet.AppendRow(ctx, r.sheetRange, rec.Row()); err != nil {
		return err
	}
	log.Printf("[Runner] Appended email from %v to sheet.", rec.Row()[0])

	if err := r.mail.MarkRead(ctx, id); err != nil {
		return err
	}
	log.Printf("[Runner] Marked email %s as read.", id)
	return nil
}

// errSkipped keeps an all-absent message out of the ledger without treating
// it as a processing failure worth more than a log line.
var errSkipped = errors.New("nothing to record")

// StartAsync launches a run in the background and returns its pending run
// record immediately. Overlapping runs are not mutually excluded; each gets
// its own record. The run is detached from the caller's request context.
func (r *Runner) StartAsync() (*store.Run, error) {
	if r.runs == nil {
		return nil, ErrAsyncUnavailable
	}

	run, err := r.runs.Create()
	if err != nil {
		return nil, err
	}

	go func() {
		if err := r.runs.MarkRunning(run.ID); err != nil {
			log.Printf("[Runner] Failed to mark run %d running: %v", run.ID, err)
		}
		count, runErr := r.Run(context.Background())
		if runErr != nil {
			log.Printf("[Runner] Run %d failed: %v", run.ID, runErr)
		}
		if err := r.runs.Finish(run.ID, count, runErr); err != nil {
			log.Printf("[Runner] Failed to record outcome of run %d: %v", run.ID, err)
		}
	}()

	return run, nil
}
