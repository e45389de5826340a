// Package worker runs the background workflows of the escrow: a scheduled
// checkpoint that keeps the global history dense when no participant is
// transacting.
package worker

import (
	"fmt"
	"sync"

	"github.com/ardanlabs/escrow/foundation/escrow/account"
	"github.com/ardanlabs/escrow/foundation/escrow/state"
	"github.com/robfig/cron/v3"
)

// Config represents the settings the worker needs.
type Config struct {
	State     *state.State
	Operator  account.Account // Account the scheduled checkpoints are applied as.
	Schedule  string          // Cron expression with a leading seconds field.
	EvHandler state.EventHandler
}

// Worker manages the checkpoint workflow for the escrow.
type Worker struct {
	state      *state.State
	operator   account.Account
	cron       *cron.Cron
	wg         sync.WaitGroup
	shut       chan struct{}
	checkpoint chan bool
	evHandler  state.EventHandler
}

// Run creates a worker, registers the schedule and starts the goroutine
// applying checkpoints.
func Run(cfg Config) (*Worker, error) {
	ev := cfg.EvHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	w := Worker{
		state:      cfg.State,
		operator:   cfg.Operator,
		cron:       cron.New(cron.WithSeconds()),
		shut:       make(chan struct{}),
		checkpoint: make(chan bool, 1),
		evHandler:  ev,
	}

	if cfg.Schedule != "" {
		if _, err := w.cron.AddFunc(cfg.Schedule, w.SignalCheckpoint); err != nil {
			return nil, fmt.Errorf("register checkpoint schedule %q: %w", cfg.Schedule, err)
		}
	}

	w.wg.Add(1)

	// We don't want to return until we know the G is up and running.
	hasStarted := make(chan bool)

	go func() {
		defer w.wg.Done()
		hasStarted <- true
		w.checkpointOperations()
	}()

	<-hasStarted
	w.cron.Start()

	return &w, nil
}

// Shutdown stops the schedule and terminates the goroutine performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: stop schedule")
	<-w.cron.Stop().Done()

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()
}

// SignalCheckpoint requests a checkpoint. If there is already a signal
// pending in the channel, just return since a checkpoint will be applied.
func (w *Worker) SignalCheckpoint() {
	select {
	case w.checkpoint <- true:
	default:
	}
	w.evHandler("worker: SignalCheckpoint: checkpoint signaled")
}

// =============================================================================

// checkpointOperations handles checkpoint signals until shutdown.
func (w *Worker) checkpointOperations() {
	w.evHandler("worker: checkpointOperations: G started")
	defer w.evHandler("worker: checkpointOperations: G completed")

	for {
		select {
		case <-w.checkpoint:
			if !w.isShutdown() {
				w.runCheckpointOperation()
			}
		case <-w.shut:
			w.evHandler("worker: checkpointOperations: received shut signal")
			return
		}
	}
}

// runCheckpointOperation advances the global history to now.
func (w *Worker) runCheckpointOperation() {
	before := w.state.GlobalEpoch()

	if err := w.state.Checkpoint(w.operator); err != nil {
		w.evHandler("worker: runCheckpointOperation: ERROR: %s", err)
		return
	}

	w.evHandler("worker: runCheckpointOperation: global epoch[%d] -> [%d]", before, w.state.GlobalEpoch())
}

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
