package show

import (
	"sync"
	"time"

	"github.com/Gida-concept/ai-radio-show-bot/internal/models"
)

// CycleStatus is a point-in-time snapshot of the bot, served by the status
// API.
type CycleStatus struct {
	EpisodeID       string               `json:"episode_id,omitempty"`
	Status          models.EpisodeStatus `json:"status,omitempty"`
	StartedAt       *time.Time           `json:"started_at,omitempty"`
	PartsTotal      int                  `json:"parts_total"`
	PartsPublished  int                  `json:"parts_published"`
	LastError       string               `json:"last_error,omitempty"`
	CyclesCompleted int                  `json:"cycles_completed"`
	CyclesFailed    int                  `json:"cycles_failed"`
}

// Tracker holds the current cycle's state behind a mutex. The orchestrator
// writes, the API reads.
type Tracker struct {
	mu      sync.Mutex
	current CycleStatus
}

func NewTracker() *Tracker {
	return &Tracker{}
}

func (t *Tracker) Begin(episodeID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now().UTC()
	completed, failed := t.current.CyclesCompleted, t.current.CyclesFailed
	t.current = CycleStatus{
		EpisodeID:       episodeID,
		Status:          models.EpisodeStatusPreparing,
		StartedAt:       &now,
		CyclesCompleted: completed,
		CyclesFailed:    failed,
	}
}

func (t *Tracker) SetStatus(status models.EpisodeStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current.Status = status
}

func (t *Tracker) SetParts(total, published int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current.PartsTotal = total
	t.current.PartsPublished = published
}

func (t *Tracker) Complete() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current.Status = models.EpisodeStatusCompleted
	t.current.CyclesCompleted++
}

func (t *Tracker) Fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current.Status = models.EpisodeStatusFailed
	t.current.CyclesFailed++
	if err != nil {
		t.current.LastError = err.Error()
	}
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() CycleStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}
