package balances

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/homebooks/balances/internal/domain"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// Sync run statuses
const (
	RunSuccess = "success"
	RunFailed  = "failed"
)

// SyncRun is the journal entry of one recompute
type SyncRun struct {
	ID         string             `json:"id"`
	JournalID  int64              `json:"journal_id"`
	Profile    domain.ProfileKind `json:"profile"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	Inserted   int                `json:"inserted"`
	Updated    int                `json:"updated"`
	Deleted    int                `json:"deleted"`
	Status     string             `json:"status"`
	Error      string             `json:"error,omitempty"`
	// Changes lists the keys touched by the run
	Changes *ChangeSummary `json:"changes,omitempty"`
}

// ChangeSummary is the key-only form of a ChangeSet, stored msgpack-encoded
type ChangeSummary struct {
	Inserted []Key `json:"inserted" msgpack:"i"`
	Updated  []Key `json:"updated" msgpack:"u"`
	Deleted  []Key `json:"deleted" msgpack:"d"`
}

// Summarize reduces a change set to its keys
func Summarize(cs ChangeSet) *ChangeSummary {
	return &ChangeSummary{
		Inserted: cs.Insert.Keys(),
		Updated:  cs.Update.Keys(),
		Deleted:  cs.Delete.Keys(),
	}
}

// NewRunID returns a fresh sync run identifier
func NewRunID() string {
	return uuid.New().String()
}

// RunRepository persists sync runs in the balances database
type RunRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRunRepository creates a sync run repository
func NewRunRepository(db *sql.DB, log zerolog.Logger) *RunRepository {
	return &RunRepository{
		db:  db,
		log: log.With().Str("repo", "balance_sync_runs").Logger(),
	}
}

// Record stores run. A missing ID is filled in.
func (r *RunRepository) Record(ctx context.Context, run *SyncRun) error {
	if run.ID == "" {
		run.ID = NewRunID()
	}

	var blob []byte
	if run.Changes != nil {
		var err error
		blob, err = msgpack.Marshal(run.Changes)
		if err != nil {
			return fmt.Errorf("failed to encode change summary: %w", err)
		}
	}

	var errText interface{}
	if run.Error != "" {
		errText = run.Error
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO balance_sync_runs
			(id, journal_id, profile, started_at, finished_at, inserted, updated, deleted, status, error, change_set)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.JournalID,
		string(run.Profile),
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.Inserted,
		run.Updated,
		run.Deleted,
		run.Status,
		errText,
		blob,
	)
	if err != nil {
		return fmt.Errorf("failed to record sync run: %w", err)
	}

	r.log.Debug().
		Str("run_id", run.ID).
		Str("status", run.Status).
		Msg("Sync run recorded")

	return nil
}

// Recent returns up to limit runs, newest first
func (r *RunRepository) Recent(ctx context.Context, limit int) ([]SyncRun, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, journal_id, profile, started_at, finished_at, inserted, updated, deleted, status, error, change_set
		FROM balance_sync_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync runs: %w", err)
	}
	defer rows.Close()

	runs := []SyncRun{}
	for rows.Next() {
		var (
			run                 SyncRun
			profile             string
			startedAt, finished string
			errText             sql.NullString
			blob                []byte
		)
		if err := rows.Scan(&run.ID, &run.JournalID, &profile, &startedAt, &finished,
			&run.Inserted, &run.Updated, &run.Deleted, &run.Status, &errText, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan sync run: %w", err)
		}

		run.Profile = domain.ProfileKind(profile)
		run.Error = errText.String
		if run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, fmt.Errorf("failed to parse started_at: %w", err)
		}
		if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
			return nil, fmt.Errorf("failed to parse finished_at: %w", err)
		}
		if len(blob) > 0 {
			var summary ChangeSummary
			if err := msgpack.Unmarshal(blob, &summary); err != nil {
				return nil, fmt.Errorf("failed to decode change summary of run %s: %w", run.ID, err)
			}
			run.Changes = &summary
		}

		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync runs: %w", err)
	}

	return runs, nil
}
