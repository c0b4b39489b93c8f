package web

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/inboxrow/inboxrow/auth"
	"github.com/inboxrow/inboxrow/runner"
	"github.com/inboxrow/inboxrow/store"
)

const bodyPreviewLen = 100

// Workflow is what the trigger surface needs from the orchestrator.
type Workflow interface {
	StartAsync() (*store.Run, error)
}

// Handler serves the trigger surface: a live unread listing and the endpoints
// to start and poll workflow runs.
type Handler struct {
	mail     runner.Mailbox
	workflow Workflow
	runs     *store.RunStore
}

// NewHandler creates the trigger surface handler.
func NewHandler(mail runner.Mailbox, workflow Workflow, runs *store.RunStore) *Handler {
	return &Handler{mail: mail, workflow: workflow, runs: runs}
}

// EmailResponse is one unread message as shown in the listing view.
type EmailResponse struct {
	ID         string `json:"id"`
	Sender     string `json:"sender"`
	Subject    string `json:"subject"`
	ReceivedAt string `json:"received_at"`
	Body       string `json:"body"` // preview, truncated
}

// StartRunRequest carries the listing view's selection. The selection is
// accepted but not used for filtering: a run always covers all unread mail.
type StartRunRequest struct {
	IDs []string `json:"ids"`
}

// ListEmails returns the current unread messages, fetched live for display.
// The ledger is never consulted here.
// GET /api/emails
func (h *Handler) ListEmails(c *gin.Context) {
	ctx := c.Request.Context()

	ids, err := h.mail.ListUnread(ctx)
	if err != nil {
		fail(c, err)
		return
	}

	emails := make([]EmailResponse, 0, len(ids))
	for _, id := range ids {
		rec, err := h.mail.FetchRecord(ctx, id)
		if err != nil {
			log.Printf("[Web] Failed to fetch email %s for listing: %v", id, err)
			continue
		}
		emails = append(emails, EmailResponse{
			ID:         id,
			Sender:     rec.Sender,
			Subject:    rec.Subject,
			ReceivedAt: rec.ReceivedAt,
			Body:       truncate(rec.Body, bodyPreviewLen),
		})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "emails": emails})
}

// StartRun launches a workflow run in the background and acknowledges
// immediately with the pending run record.
// POST /api/runs
func (h *Handler) StartRun(c *gin.Context) {
	var req StartRunRequest
	// An empty body means "process everything"; a present but empty
	// selection is refused.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   gin.H{"code": "BAD_REQUEST", "message": err.Error()},
			})
			return
		}
		if len(req.IDs) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   gin.H{"code": "NO_SELECTION", "message": "No emails selected for automation."},
			})
			return
		}
	}

	run, err := h.workflow.StartAsync()
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Email automation started successfully!",
		"run":     run,
	})
}

// GetRun returns one run record for polling.
// GET /api/runs/:id
func (h *Handler) GetRun(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   gin.H{"code": "BAD_REQUEST", "message": "Invalid run ID"},
		})
		return
	}

	run, err := h.runs.Get(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   gin.H{"code": "NOT_FOUND", "message": "Run not found"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "run": run})
}

// ListRuns returns recent runs, newest first.
// GET /api/runs
func (h *Handler) ListRuns(c *gin.Context) {
	runs, err := h.runs.Recent(20)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "runs": runs})
}

// fail writes an error response, distinguishing authentication failures so
// the front end can show its one-line notice.
func fail(c *gin.Context, err error) {
	if errors.Is(err, auth.ErrAuthRequired) {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   gin.H{"code": "AUTH_REQUIRED", "message": "Authentication failed: re-run interactively to grant access."},
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   gin.H{"code": "INTERNAL", "message": err.Error()},
	})
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
