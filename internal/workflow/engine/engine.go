// Package engine is the transactional façade of the workflow. Every action
// runs as: begin tx, lock the application row, validate via the state machine,
// persist the mutation plus one ledger entry, commit. Notifications are
// enqueued only after a successful commit and never affect the outcome.
package engine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	wferrors "hiring-workflow/internal/common/errors"
	"hiring-workflow/internal/common/logger"
	"hiring-workflow/internal/common/metrics"
	"hiring-workflow/internal/models"
	"hiring-workflow/internal/workflow/ledger"
)

// Dispatcher consumes committed workflow events. Implementations must not
// block; delivery is best-effort.
type Dispatcher interface {
	Enqueue(n models.Notification)
}

// Cache is the subset of the redis client used for the upcoming-interviews
// listing. A nil cache disables caching.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type Engine struct {
	db         *sql.DB
	recorder   *ledger.Recorder
	dispatcher Dispatcher
	cache      Cache
	cacheTTL   time.Duration
	logger     logger.Logger
}

func New(db *sql.DB, dispatcher Dispatcher, cache Cache, cacheTTL time.Duration, log logger.Logger) *Engine {
	return &Engine{
		db:         db,
		recorder:   ledger.NewRecorder(),
		dispatcher: dispatcher,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     log.WithFields(map[string]interface{}{"component": "workflow-engine"}),
	}
}

// runInTx executes one workflow action atomically. fn returns notifications
// to dispatch after commit; on any error the transaction is rolled back and
// nothing is dispatched.
func (e *Engine) runInTx(ctx context.Context, action models.WorkflowAction, fn func(tx *sql.Tx) ([]models.Notification, error)) error {
	start := time.Now()

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		e.observe(action, start, err)
		return wferrors.NewStoreUnavailableError(err)
	}

	pending, err := fn(tx)
	if err != nil {
		_ = tx.Rollback()
		e.observe(action, start, err)
		return asWorkflowError(err)
	}

	if err := tx.Commit(); err != nil {
		e.observe(action, start, err)
		return wferrors.NewStoreUnavailableError(err)
	}

	e.observe(action, start, nil)

	for _, n := range pending {
		e.dispatcher.Enqueue(n)
	}
	return nil
}

func (e *Engine) observe(action models.WorkflowAction, start time.Time, err error) {
	metrics.WorkflowActionDuration.WithLabelValues(action.String()).Observe(time.Since(start).Seconds())
	if err != nil {
		code := wferrors.CodeOf(asWorkflowError(err))
		metrics.WorkflowActionsRejected.WithLabelValues(action.String(), string(code)).Inc()
		return
	}
	metrics.WorkflowActionsAccepted.WithLabelValues(action.String()).Inc()
}

// asWorkflowError keeps workflow error kinds untouched and maps everything
// else (driver failures, lock timeouts) to the retryable store kind.
func asWorkflowError(err error) error {
	var wfErr *wferrors.WorkflowError
	if errors.As(err, &wfErr) {
		return wfErr
	}
	return wferrors.NewStoreUnavailableError(err)
}

// loadApplicationForUpdate reads and row-locks the application for the
// duration of the transaction, serializing concurrent actions against it.
func (e *Engine) loadApplicationForUpdate(ctx context.Context, tx *sql.Tx, applicationID string) (*models.Application, error) {
	var app models.Application
	err := tx.QueryRowContext(ctx, `
		SELECT id, candidate_id, job_id, status, created_at, updated_at
		FROM applications
		WHERE id = $1
		FOR UPDATE`, applicationID).
		Scan(&app.ID, &app.CandidateID, &app.JobID, &app.Status, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, wferrors.NewNotFoundError("application", applicationID)
		}
		return nil, wferrors.NewStoreUnavailableError(err)
	}
	return &app, nil
}

func (e *Engine) updateApplicationStatus(ctx context.Context, tx *sql.Tx, applicationID string, status models.ApplicationStatus, now string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE applications SET status = $1, updated_at = $2 WHERE id = $3`,
		status, now, applicationID)
	if err != nil {
		return wferrors.NewStoreUnavailableError(err)
	}
	return nil
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
