// Package worker runs the periodic lifecycle sweep that moves events past
// their deadlines and end dates without waiting for a request.
package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper is satisfied by service.EventService.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

type SweepWorker struct {
	svc      Sweeper
	interval time.Duration
	log      zerolog.Logger
	done     chan struct{}
	cancel   context.CancelFunc
}

func NewSweepWorker(svc Sweeper, interval time.Duration, log zerolog.Logger) *SweepWorker {
	return &SweepWorker{
		svc:      svc,
		interval: interval,
		log:      log,
		done:     make(chan struct{}),
	}
}

// Start sweeps once immediately and then on every tick until ctx is
// cancelled or Stop is called.
func (w *SweepWorker) Start(ctx context.Context) {
	cctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.log.Info().Dur("interval", w.interval).Msg("sweep worker started")

	go func() {
		defer close(w.done)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		w.sweep(cctx)
		for {
			select {
			case <-cctx.Done():
				w.log.Info().Msg("sweep worker stopped")
				return
			case <-ticker.C:
				w.sweep(cctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for the running sweep to return.
func (w *SweepWorker) Stop() {
	if w.cancel != nil {
		w.cancel()
		<-w.done
	}
}

func (w *SweepWorker) sweep(ctx context.Context) {
	fired, err := w.svc.Sweep(ctx)
	if err != nil && ctx.Err() == nil {
		w.log.Error().Err(err).Msg("sweep failed")
		return
	}
	if fired > 0 {
		w.log.Info().Int("transitions", fired).Msg("sweep finished")
	}
}
