// Package ledger is the append-only workflow history for applications.
// Entries are only ever inserted; ordering is performed_at descending with
// entry id as the tie-break.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	wferrors "hiring-workflow/internal/common/errors"
	"hiring-workflow/internal/models"

	"github.com/google/uuid"
)

// Querier is satisfied by both *sql.DB and *sql.Tx, so entries can be
// appended inside an orchestrator transaction and read outside one.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

type Recorder struct{}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends one history entry. It is called only after the primary
// mutation has been validated, inside the same transaction.
func (r *Recorder) Record(ctx context.Context, q Querier, entry *models.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.PerformedAt == "" {
		entry.PerformedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO workflow_history (
			id, application_id, status, action, performed_by, notes, performed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID,
		entry.ApplicationID,
		entry.Status,
		entry.Action,
		entry.PerformedBy,
		entry.Notes,
		entry.PerformedAt,
	)
	if err != nil {
		return fmt.Errorf("append history entry: %w", err)
	}
	return nil
}

// History returns the ledger for one application, newest first, each entry
// annotated with the performing user's display name.
func (r *Recorder) History(ctx context.Context, q Querier, applicationID string) ([]models.HistoryEntry, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT h.id, h.application_id, h.status, h.action, h.performed_by,
		       COALESCE(u.name, ''), h.notes, h.performed_at
		FROM workflow_history h
		LEFT JOIN users u ON u.id = h.performed_by
		WHERE h.application_id = $1
		ORDER BY h.performed_at DESC, h.id DESC`,
		applicationID,
	)
	if err != nil {
		return nil, wferrors.NewStoreUnavailableError(err)
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var e models.HistoryEntry
		if err := rows.Scan(&e.ID, &e.ApplicationID, &e.Status, &e.Action,
			&e.PerformedBy, &e.PerformedByName, &e.Notes, &e.PerformedAt); err != nil {
			return nil, wferrors.NewStoreUnavailableError(err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wferrors.NewStoreUnavailableError(err)
	}
	return entries, nil
}
