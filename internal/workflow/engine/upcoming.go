// internal/workflow/engine/upcoming.go
package engine

import (
	"context"
	"encoding/json"
	"fmt"

	wferrors "hiring-workflow/internal/common/errors"
	"hiring-workflow/internal/models"

	"github.com/lib/pq"
)

// UpcomingInterviews lists scheduled interviews that have not happened yet,
// scoped by the caller's role. Candidates see interviews on their own
// applications, hiring managers see interviews for jobs they own, and super
// admins see everything. Results are served from redis when fresh.
func (e *Engine) UpcomingInterviews(ctx context.Context, actor models.Actor) ([]models.Interview, error) {
	if !actor.Role.IsValid() {
		return nil, wferrors.NewForbiddenError(fmt.Sprintf("unknown role: %s", actor.Role))
	}

	cacheKey := upcomingCacheKey(actor)
	if e.cache != nil {
		if cached, err := e.cache.Get(ctx, cacheKey); err == nil && cached != "" {
			var interviews []models.Interview
			if err := json.Unmarshal([]byte(cached), &interviews); err == nil {
				return interviews, nil
			}
			// Corrupt entry, fall through to the database.
			_ = e.cache.Del(ctx, cacheKey)
		}
	}

	interviews, err := e.queryUpcoming(ctx, actor)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		if payload, err := json.Marshal(interviews); err == nil {
			if err := e.cache.Set(ctx, cacheKey, string(payload), e.cacheTTL); err != nil {
				e.logger.WithError(err).Warn("failed to cache upcoming interviews", map[string]interface{}{
					"cache_key": cacheKey,
				})
			}
		}
	}
	return interviews, nil
}

func (e *Engine) queryUpcoming(ctx context.Context, actor models.Actor) ([]models.Interview, error) {
	const base = `
		SELECT i.id, i.application_id, i.type, i.scheduled_date, i.location,
		       i.meeting_link, i.interviewers, i.status, i.notes,
		       i.created_at, i.updated_at
		FROM interviews i
		JOIN applications a ON a.id = i.application_id`

	var (
		query string
		args  []interface{}
	)
	switch actor.Role {
	case models.RoleCandidate:
		query = base + `
		WHERE a.candidate_id = $1 AND i.status = $2 AND i.scheduled_date >= NOW()
		ORDER BY i.scheduled_date ASC`
		args = []interface{}{actor.ID, models.InterviewScheduled}
	case models.RoleHiringManager:
		query = base + `
		JOIN jobs j ON j.id = a.job_id
		WHERE j.hiring_manager_id = $1 AND i.status = $2 AND i.scheduled_date >= NOW()
		ORDER BY i.scheduled_date ASC`
		args = []interface{}{actor.ID, models.InterviewScheduled}
	case models.RoleSuperAdmin:
		query = base + `
		WHERE i.status = $1 AND i.scheduled_date >= NOW()
		ORDER BY i.scheduled_date ASC`
		args = []interface{}{models.InterviewScheduled}
	}

	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wferrors.NewStoreUnavailableError(err)
	}
	defer rows.Close()

	interviews := []models.Interview{}
	for rows.Next() {
		var iv models.Interview
		var interviewers pq.StringArray
		if err := rows.Scan(&iv.ID, &iv.ApplicationID, &iv.Type, &iv.ScheduledDate,
			&iv.Location, &iv.MeetingLink, &interviewers, &iv.Status, &iv.Notes,
			&iv.CreatedAt, &iv.UpdatedAt); err != nil {
			return nil, wferrors.NewStoreUnavailableError(err)
		}
		iv.Interviewers = interviewers
		interviews = append(interviews, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, wferrors.NewStoreUnavailableError(err)
	}
	return interviews, nil
}

// invalidateUpcoming drops the affected candidate's cached listing after an
// interview write. Manager and admin listings are left to expire with the
// TTL since they cannot be keyed back from a single candidate.
func (e *Engine) invalidateUpcoming(ctx context.Context, candidateID string) {
	if e.cache == nil {
		return
	}
	key := upcomingCacheKey(models.Actor{ID: candidateID, Role: models.RoleCandidate})
	if err := e.cache.Del(ctx, key); err != nil {
		e.logger.WithError(err).Warn("failed to invalidate upcoming interviews cache", map[string]interface{}{
			"cache_key": key,
		})
	}
}

func upcomingCacheKey(actor models.Actor) string {
	return fmt.Sprintf("upcoming:%s:%s", actor.Role, actor.ID)
}
