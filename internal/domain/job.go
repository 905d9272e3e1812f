package domain

import (
	"strings"
	"time"
)

// Status enumerates presentation job lifecycle states.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"

	// StatusUnrecognized marks cache values outside the known set. It is
	// never persisted and never returned to callers.
	StatusUnrecognized Status = ""
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Recognized reports whether the status belongs to the closed set.
func (s Status) Recognized() bool {
	return s == StatusPending || s.Terminal()
}

// ParseStatus normalizes a worker-written status string. Workers write
// free-form case, so comparison happens after trimming and uppercasing.
// Anything outside the known set comes back as StatusUnrecognized.
func ParseStatus(raw string) Status {
	switch s := Status(strings.ToUpper(strings.TrimSpace(raw))); s {
	case StatusPending, StatusCompleted, StatusFailed:
		return s
	default:
		return StatusUnrecognized
	}
}

// Reconcile folds a cache-observed status into the stored one and reports
// whether the durable record should advance. The stored status only ever
// moves PENDING -> COMPLETED or PENDING -> FAILED; terminal states absorb
// every later observation, including a stale PENDING.
func Reconcile(current, observed Status) (Status, bool) {
	if !observed.Recognized() {
		return current, false
	}
	if current.Terminal() {
		return current, false
	}
	if observed == current {
		return current, false
	}
	return observed, true
}

// Job is the durable system of record for one presentation request.
type Job struct {
	ID        string
	UserID    string
	Prompt    string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WorkDescriptor is the queue payload: everything a worker needs to run the
// generation without re-reading the job record.
type WorkDescriptor struct {
	JobID  string `json:"job_id"`
	Prompt string `json:"prompt"`
}
