// internal/api/handlers.go
package api

import (
	"encoding/json"
	"io"
	"net/http"

	wferrors "hiring-workflow/internal/common/errors"
	"hiring-workflow/internal/common/logger"
	"hiring-workflow/internal/models"
	"hiring-workflow/internal/workflow/engine"
)

const maxBodyBytes = 1 << 20

// Handlers exposes the workflow engine over HTTP. Authentication happens
// upstream; the caller's identity arrives in the X-Actor-ID and X-Actor-Role
// headers.
type Handlers struct {
	engine     *engine.Engine
	errHandler *wferrors.ErrorHandler
	logger     logger.Logger
}

func NewHandlers(eng *engine.Engine, log logger.Logger) *Handlers {
	return &Handlers{
		engine:     eng,
		errHandler: wferrors.NewErrorHandler(log),
		logger:     log.WithFields(map[string]interface{}{"component": "api"}),
	}
}

func (h *Handlers) actor(r *http.Request) (models.Actor, error) {
	id := r.Header.Get("X-Actor-ID")
	role := models.Role(r.Header.Get("X-Actor-Role"))
	if id == "" {
		return models.Actor{}, wferrors.NewValidationFailedError("X-Actor-ID header is required")
	}
	if !role.IsValid() {
		return models.Actor{}, wferrors.NewValidationFailedError("X-Actor-Role header must be one of candidate, hiring_manager, super_admin")
	}
	return models.Actor{ID: id, Role: role}, nil
}

func (h *Handlers) readBody(w http.ResponseWriter, r *http.Request, schema map[string]interface{}, dst interface{}) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return wferrors.NewValidationFailedError("unable to read request body")
	}
	if err := validateBody(schema, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return wferrors.NewValidationFailedError("invalid JSON body: " + err.Error())
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// PUT /applications/{id}/status
func (h *Handlers) ChangeApplicationStatus(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.errHandler.WriteError(w, err)
		return
	}

	var req struct {
		Status string `json:"status"`
		Notes  string `json:"notes"`
	}
	if err := h.readBody(w, r, statusChangeSchema, &req); err != nil {
		h.errHandler.WriteError(w, err)
		return
	}

	app, err := h.engine.ChangeStatus(r.Context(), r.PathValue("id"),
		models.ApplicationStatus(req.Status), req.Notes, actor)
	if err != nil {
		h.errHandler.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// GET /applications/{id}/history
func (h *Handlers) ApplicationHistory(w http.ResponseWriter, r *http.Request) {
	if _, err := h.actor(r); err != nil {
		h.errHandler.WriteError(w, err)
		return
	}

	entries, err := h.engine.History(r.Context(), r.PathValue("id"))
	if err != nil {
		h.errHandler.WriteError(w, err)
		return
	}
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"history": entries})
}

// POST /interviews
func (h *Handlers) ScheduleInterview(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.errHandler.WriteError(w, err)
		return
	}

	var req struct {
		ApplicationID string   `json:"applicationId"`
		Type          string   `json:"type"`
		ScheduledDate string   `json:"scheduledDate"`
		Location      string   `json:"location"`
		MeetingLink   string   `json:"meetingLink"`
		Interviewers  []string `json:"interviewers"`
		Notes         string   `json:"notes"`
	}
	if err := h.readBody(w, r, scheduleInterviewSchema, &req); err != nil {
		h.errHandler.WriteError(w, err)
		return
	}

	iv, err := h.engine.ScheduleInterview(r.Context(), engine.ScheduleInterviewInput{
		ApplicationID: req.ApplicationID,
		Type:          models.InterviewType(req.Type),
		ScheduledDate: req.ScheduledDate,
		Location:      req.Location,
		MeetingLink:   req.MeetingLink,
		Interviewers:  req.Interviewers,
		Notes:         req.Notes,
	}, actor)
	if err != nil {
		h.errHandler.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, iv)
}

// PUT /interviews/{id}/status
func (h *Handlers) UpdateInterviewStatus(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.errHandler.WriteError(w, err)
		return
	}

	var req struct {
		Status string `json:"status"`
		Notes  string `json:"notes"`
	}
	if err := h.readBody(w, r, interviewStatusSchema, &req); err != nil {
		h.errHandler.WriteError(w, err)
		return
	}

	err = h.engine.UpdateInterviewStatus(r.Context(), r.PathValue("id"),
		models.InterviewStatus(req.Status), req.Notes, actor)
	if err != nil {
		h.errHandler.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

// GET /interviews/upcoming
func (h *Handlers) UpcomingInterviews(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.errHandler.WriteError(w, err)
		return
	}

	interviews, err := h.engine.UpcomingInterviews(r.Context(), actor)
	if err != nil {
		h.errHandler.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"interviews": interviews})
}

// POST /offers
func (h *Handlers) MakeOffer(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.errHandler.WriteError(w, err)
		return
	}

	var req struct {
		ApplicationID string `json:"applicationId"`
		Salary        int    `json:"salary"`
		StartDate     string `json:"startDate"`
		Benefits      string `json:"benefits"`
		Conditions    string `json:"conditions"`
		Notes         string `json:"notes"`
	}
	if err := h.readBody(w, r, makeOfferSchema, &req); err != nil {
		h.errHandler.WriteError(w, err)
		return
	}

	offer, err := h.engine.MakeOffer(r.Context(), engine.MakeOfferInput{
		ApplicationID: req.ApplicationID,
		Salary:        req.Salary,
		StartDate:     req.StartDate,
		Benefits:      req.Benefits,
		Conditions:    req.Conditions,
		Notes:         req.Notes,
	}, actor)
	if err != nil {
		h.errHandler.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, offer)
}

// PUT /offers/{id}/response
func (h *Handlers) RespondToOffer(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.errHandler.WriteError(w, err)
		return
	}

	var req struct {
		Response string `json:"response"`
		Notes    string `json:"notes"`
	}
	if err := h.readBody(w, r, offerResponseSchema, &req); err != nil {
		h.errHandler.WriteError(w, err)
		return
	}

	err = h.engine.RespondToOffer(r.Context(), r.PathValue("id"),
		models.OfferStatus(req.Response), req.Notes, actor)
	if err != nil {
		h.errHandler.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"response": req.Response})
}
