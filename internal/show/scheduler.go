package show

import (
	"context"
	"log"
	"time"
)

// ---------------------------------------------------------------------------
// Scheduler
// Runs the first show cycle immediately at startup, then one cycle per
// interval. A cycle failure (or even a panic) is contained: the scheduler
// logs it and waits for the next tick.
// ---------------------------------------------------------------------------

// panicPause spaces out restarts after a panicking cycle so a persistent
// crash cannot spin the loop.
const panicPause = 60 * time.Second

type Scheduler struct {
	orchestrator *Orchestrator
	interval     time.Duration

	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

func NewScheduler(orchestrator *Orchestrator, interval time.Duration) *Scheduler {
	return &Scheduler{
		orchestrator: orchestrator,
		interval:     interval,
		sleep:        time.Sleep,
	}
}

// Run blocks until ctx is cancelled, executing cycles on the configured
// cadence. The first cycle starts immediately.
func (s *Scheduler) Run(ctx context.Context) {
	log.Printf("[Scheduler] Starting. A new show cycle runs every %s", s.interval)
	log.Printf("[Scheduler] Executing the first show cycle immediately")
	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[Scheduler] Shutdown signal received, exiting")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// runOnce executes a single cycle with panic containment.
func (s *Scheduler) runOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Scheduler] PANIC in show cycle: %v", r)
			log.Printf("[Scheduler] Pausing %s before accepting the next cycle", panicPause)
			s.sleep(panicPause)
		}
	}()

	if err := s.orchestrator.RunCycle(ctx); err != nil {
		log.Printf("[Scheduler] Cycle ended with error, waiting for next scheduled run: %v", err)
	}
}
