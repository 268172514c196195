// Package di provides dependency injection for scheduler jobs.
package di

import (
	"fmt"
	"time"

	"github.com/homebooks/balances/internal/config"
	"github.com/homebooks/balances/internal/modules/balances"
	"github.com/homebooks/balances/internal/scheduler"
	"github.com/rs/zerolog"
)

// recomputeTimeout bounds one scheduled full recompute
const recomputeTimeout = 30 * time.Minute

// RegisterJobs creates the scheduled jobs and registers them with sched.
// Returns JobInstances for manual triggering.
func RegisterJobs(container *Container, cfg *config.Config, sched *scheduler.Scheduler, log zerolog.Logger) (*JobInstances, error) {
	if container == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}

	instances := &JobInstances{
		RecomputeBalances:  balances.NewRecomputeAllJob(container.BalanceService, recomputeTimeout, log),
		CheckWALCheckpoint: scheduler.NewCheckWALCheckpointsJob(container.LedgerDB, container.BalancesDB),
		CheckDatabases:     scheduler.NewCheckDatabasesJob(container.LedgerDB, container.BalancesDB),
	}
	instances.CheckWALCheckpoint.SetLogger(log)
	instances.CheckDatabases.SetLogger(log)

	if sched == nil {
		return instances, nil
	}

	if err := sched.AddJob(cfg.RecomputeSchedule, instances.RecomputeBalances); err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", instances.RecomputeBalances.Name(), err)
	}
	if err := sched.AddJob(cfg.MaintenanceSchedule, instances.CheckWALCheckpoint); err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", instances.CheckWALCheckpoint.Name(), err)
	}
	if err := sched.AddJob(cfg.MaintenanceSchedule, instances.CheckDatabases); err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", instances.CheckDatabases.Name(), err)
	}

	return instances, nil
}
