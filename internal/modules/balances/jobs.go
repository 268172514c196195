package balances

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// RecomputeAllJob runs a full recompute of every journal on a schedule
type RecomputeAllJob struct {
	service *Service
	timeout time.Duration
	log     zerolog.Logger
}

// NewRecomputeAllJob creates the scheduled full recompute job
func NewRecomputeAllJob(service *Service, timeout time.Duration, log zerolog.Logger) *RecomputeAllJob {
	return &RecomputeAllJob{
		service: service,
		timeout: timeout,
		log:     log.With().Str("job", "recompute_balances").Logger(),
	}
}

// Name returns the job name
func (j *RecomputeAllJob) Name() string {
	return "recompute_balances"
}

// Run executes the full recompute
func (j *RecomputeAllJob) Run() error {
	ctx := context.Background()
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	start := time.Now()
	err := j.service.RecomputeAll(ctx)
	j.log.Info().
		Dur("took", time.Since(start)).
		Bool("ok", err == nil).
		Msg("Scheduled balance recompute finished")
	return err
}
