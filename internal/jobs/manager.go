package jobs

import (
	"errors"
	"fmt"
	"sync"

	"cloud-transcriber/internal/domain"
)

// ErrJobAlreadyRunning is returned when starting a second active job.
var ErrJobAlreadyRunning = errors.New("job already running")

// Manager tracks the single allowed active job and its transitions.
// A run cannot be aborted mid-flight; it only leaves the active states
// through done or failed.
type Manager struct {
	mu      sync.RWMutex
	current domain.Job
}

// NewManager creates a manager in idle state.
func NewManager() *Manager {
	return &Manager{
		current: domain.Job{
			Status: domain.JobStatusIdle,
		},
	}
}

// Start creates a new job and moves it to validating state.
func (m *Manager) Start(jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if isRunning(m.current.Status) {
		return ErrJobAlreadyRunning
	}

	m.current = domain.Job{
		ID:     jobID,
		Status: domain.JobStatusValidating,
	}
	return nil
}

// Transition validates and applies state transitions for the current job.
func (m *Manager) Transition(status domain.JobStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.ID == "" && status != domain.JobStatusIdle {
		return fmt.Errorf("cannot transition without an active job")
	}
	if status == m.current.Status {
		return nil
	}
	if !isValidTransition(m.current.Status, status) {
		return fmt.Errorf("invalid transition: %s -> %s", m.current.Status, status)
	}

	m.current.Status = status
	return nil
}

// Current returns a snapshot of the current job.
func (m *Manager) Current() domain.Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Reset clears job metadata and returns the manager to idle.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = domain.Job{Status: domain.JobStatusIdle}
}

// IsRunning reports whether the current state is an active stage.
func (m *Manager) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return isRunning(m.current.Status)
}

// isRunning checks if a status represents active pipeline execution.
func isRunning(status domain.JobStatus) bool {
	switch status {
	case domain.JobStatusValidating,
		domain.JobStatusTranscribing,
		domain.JobStatusWritingArtifacts,
		domain.JobStatusSummarizing:
		return true
	default:
		return false
	}
}

// isValidTransition enforces the allowed job state machine edges. Failed is
// reachable from every active stage; summarizing is optional on the way to
// done.
func isValidTransition(from, to domain.JobStatus) bool {
	switch from {
	case domain.JobStatusIdle:
		return to == domain.JobStatusValidating
	case domain.JobStatusValidating:
		return to == domain.JobStatusTranscribing || to == domain.JobStatusFailed
	case domain.JobStatusTranscribing:
		return to == domain.JobStatusWritingArtifacts || to == domain.JobStatusFailed
	case domain.JobStatusWritingArtifacts:
		return to == domain.JobStatusSummarizing || to == domain.JobStatusDone || to == domain.JobStatusFailed
	case domain.JobStatusSummarizing:
		return to == domain.JobStatusDone || to == domain.JobStatusFailed
	case domain.JobStatusDone, domain.JobStatusFailed:
		return to == domain.JobStatusValidating || to == domain.JobStatusIdle
	default:
		return false
	}
}
