package worker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusworks/examportal-backend/internal/service"
)

const sweepBatchSize = 100

// SweepWorker closes in-progress attempts whose time allowance ran out,
// submitting them on the student's behalf. Students who lose their
// connection mid-exam still get graded.
type SweepWorker struct {
	attempts *service.AttemptService
	log      zerolog.Logger
	interval time.Duration
}

func NewSweepWorker(attempts *service.AttemptService, log zerolog.Logger, interval time.Duration) *SweepWorker {
	return &SweepWorker{
		attempts: attempts,
		log:      log.With().Str("component", "sweep_worker").Logger(),
		interval: interval,
	}
}

func (w *SweepWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("SweepWorker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("SweepWorker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *SweepWorker) sweep(ctx context.Context) {
	overdue, err := w.attempts.ListOverdue(ctx, sweepBatchSize)
	if err != nil {
		w.log.Error().Err(err).Msg("failed to list overdue attempts")
		return
	}
	if len(overdue) == 0 {
		return
	}

	closed := 0
	for _, attempt := range overdue {
		if ctx.Err() != nil {
			return
		}
		_, err := w.attempts.AutoSubmit(ctx, attempt.ID)
		if err != nil {
			// Someone submitted between the listing and here; fine.
			if errors.Is(err, service.ErrAttemptAlreadySubmitted) {
				continue
			}
			w.log.Error().Err(err).
				Str("attempt_id", attempt.ID.String()).
				Msg("failed to auto-submit attempt")
			continue
		}
		closed++
	}

	if closed > 0 {
		w.log.Info().Int("closed", closed).Msg("overdue attempts auto-submitted")
	}
}
