package models

import (
	"math/rand"
	"time"
)

// TaskStatus represents the status of an async refresh task
type TaskStatus string

const (
	TaskStatusQueued     TaskStatus = "queued"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// RefreshSummary is the outcome of one bulk refresh run
type RefreshSummary struct {
	Checked   int `json:"checked"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// RefreshTask represents an async bulk price refresh triggered through the
// API. Clients poll it by ID until it reaches a final state.
type RefreshTask struct {
	ID          string          `json:"id"`
	Status      TaskStatus      `json:"status"`
	Message     string          `json:"message"`
	Result      *RefreshSummary `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// NewRefreshTask creates a new queued refresh task
func NewRefreshTask() *RefreshTask {
	return &RefreshTask{
		ID:        generateTaskID(),
		Status:    TaskStatusQueued,
		Message:   "Refresh queued",
		CreatedAt: time.Now(),
	}
}

// Start marks the task as processing
func (t *RefreshTask) Start() {
	t.Status = TaskStatusProcessing
	t.Message = "Refreshing prices..."
	now := time.Now()
	t.StartedAt = &now
}

// Complete marks the task as completed with a summary
func (t *RefreshTask) Complete(summary *RefreshSummary) {
	t.Status = TaskStatusCompleted
	t.Message = "Refresh completed"
	t.Result = summary
	now := time.Now()
	t.CompletedAt = &now
}

// Fail marks the task as failed with an error message
func (t *RefreshTask) Fail(errMsg string) {
	t.Status = TaskStatusFailed
	t.Message = "Refresh failed"
	t.Error = errMsg
	now := time.Now()
	t.CompletedAt = &now
}

// IsCompleted returns true if the task is in a final state
func (t *RefreshTask) IsCompleted() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusFailed
}

// IsActive returns true if the task is still running
func (t *RefreshTask) IsActive() bool {
	return t.Status == TaskStatusQueued || t.Status == TaskStatusProcessing
}

// Duration returns how long the task has been (or was) running
func (t *RefreshTask) Duration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}

	endTime := time.Now()
	if t.CompletedAt != nil {
		endTime = *t.CompletedAt
	}

	return endTime.Sub(*t.StartedAt)
}

// generateTaskID generates a unique task ID
func generateTaskID() string {
	return "task_" + time.Now().Format("20060102150405") + "_" + randomString(8)
}

func randomString(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
