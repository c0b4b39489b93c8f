package store

import (
	"time"

	"gorm.io/gorm"
)

// Run statuses.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Run records one workflow execution so the trigger surface can poll its
// outcome instead of firing it off blindly.
type Run struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Status     string     `gorm:"size:20;not null" json:"status"`
	Processed  int        `gorm:"default:0" json:"processed"`
	Error      string     `gorm:"type:text" json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// RunStore persists run records.
type RunStore struct {
	db *gorm.DB
}

// NewRunStore creates a RunStore on top of an open database.
func NewRunStore(db *gorm.DB) *RunStore {
	return &RunStore{db: db}
}

// Create inserts a new pending run and returns it.
func (s *RunStore) Create() (*Run, error) {
	run := &Run{Status: StatusPending, StartedAt: time.Now()}
	if err := s.db.Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

// MarkRunning flips a run to the running state.
func (s *RunStore) MarkRunning(id uint) error {
	return s.db.Model(&Run{}).Where("id = ?", id).
		Update("status", StatusRunning).Error
}

// Finish records the outcome of a run. A non-nil runErr marks it failed;
// processed is recorded either way, since a failed save can still follow
// successfully processed messages.
func (s *RunStore) Finish(id uint, processed int, runErr error) error {
	now := time.Now()
	updates := map[string]any{
		"status":      StatusSucceeded,
		"processed":   processed,
		"finished_at": &now,
	}
	if runErr != nil {
		updates["status"] = StatusFailed
		updates["error"] = runErr.Error()
	}
	return s.db.Model(&Run{}).Where("id = ?", id).Updates(updates).Error
}

// Get returns one run by ID.
func (s *RunStore) Get(id uint) (*Run, error) {
	var run Run
	if err := s.db.First(&run, id).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// Recent returns up to limit runs, newest first.
func (s *RunStore) Recent(limit int) ([]Run, error) {
	var runs []Run
	err := s.db.Order("id DESC").Limit(limit).Find(&runs).Error
	return runs, err
}
