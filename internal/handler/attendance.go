package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"accshift/internal/clock"
	"accshift/internal/i18n"
	"accshift/internal/model"
	"accshift/internal/service"
)

// AttendanceHandler exposes the attendance button and the weekly grid to the
// UI layer.
type AttendanceHandler struct {
	button *service.ButtonService
	status *service.StatusService
}

func NewAttendanceHandler(button *service.ButtonService, status *service.StatusService) *AttendanceHandler {
	return &AttendanceHandler{button: button, status: status}
}

// StateResponse is the reconstructed button state for today.
type StateResponse struct {
	State model.ButtonState `json:"state"`
}

// HandleState returns today's button state, recomputed from the log.
func (h *AttendanceHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	state, err := h.button.State(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("reconstruct state")
		writeError(w, http.StatusInternalServerError, "failed to load state")
		return
	}
	writeJSON(w, StateResponse{State: state})
}

// HandlePress handles a press of the multi-function button. A tripped
// timing gate comes back as a needs_confirmation decision for the UI to
// prompt on.
func (h *AttendanceHandler) HandlePress(w http.ResponseWriter, r *http.Request) {
	res, err := h.button.Press(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("button press")
		writeError(w, http.StatusInternalServerError, "failed to record action")
		return
	}
	writeJSON(w, res)
}

// HandleConfirm re-enters a press after the user accepted the gate prompt.
func (h *AttendanceHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	res, err := h.button.Confirm(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("button confirm")
		writeError(w, http.StatusInternalServerError, "failed to record action")
		return
	}
	writeJSON(w, res)
}

// HandlePunch records an informational punch while working.
func (h *AttendanceHandler) HandlePunch(w http.ResponseWriter, r *http.Request) {
	entry, err := h.button.Punch(r.Context())
	if errors.Is(err, service.ErrPunchUnavailable) {
		writeError(w, http.StatusConflict, "punch is not available right now")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("punch")
		writeError(w, http.StatusInternalServerError, "failed to record punch")
		return
	}
	writeJSON(w, entry)
}

// HandleReset clears today's log after the UI confirmed the action with the
// user.
func (h *AttendanceHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.button.Reset(r.Context()); err != nil {
		log.Error().Err(err).Msg("reset day")
		writeError(w, http.StatusInternalServerError, "failed to reset today")
		return
	}
	writeJSON(w, StateResponse{State: model.StateGoWork})
}

// WeekDay is one cell of the weekly grid, with the localized status label.
type WeekDay struct {
	*model.DailyStatus
	Label string `json:"label"`
}

// HandleWeek derives the seven statuses for the week starting at ?start=
// (YYYY-MM-DD, defaults to the current week's Monday).
func (h *AttendanceHandler) HandleWeek(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	start := r.URL.Query().Get("start")
	var weekStart time.Time
	if start == "" {
		now := time.Now()
		offset := (int(now.Weekday()) + 6) % 7 // days since Monday
		weekStart = now.AddDate(0, 0, -offset)
	} else {
		var err error
		weekStart, err = clock.ParseDayKey(start, time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, "start must be YYYY-MM-DD")
			return
		}
	}

	week, err := h.status.WeekStatuses(ctx, weekStart)
	if err != nil {
		log.Error().Err(err).Msg("derive week statuses")
		writeError(w, http.StatusInternalServerError, "failed to load week")
		return
	}

	out := make([]WeekDay, len(week))
	for i, day := range week {
		out[i] = WeekDay{DailyStatus: day, Label: i18n.StatusLabel(ctx, string(day.Status))}
	}
	writeJSON(w, out)
}

// ManualStatusRequest is the user's day-status override.
type ManualStatusRequest struct {
	Status model.DayStatus `json:"status"`
	Notes  string          `json:"notes"`
}

// HandleSetStatus records a manual leave/sick/holiday/absent/late/early
// status for a date.
func (h *AttendanceHandler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	var req ManualStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}
	record, err := h.status.SetManualStatus(r.Context(), date, req.Status, req.Notes)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, record)
}

// HandleDayStats returns the statistics-screen late/early comparison for a
// date.
func (h *AttendanceHandler) HandleDayStats(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	if _, err := clock.ParseDayKey(date, time.Local); err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	stats, err := h.status.LateEarlyStats(r.Context(), date)
	if err != nil {
		log.Error().Err(err).Str("date", date).Msg("day stats")
		writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	writeJSON(w, stats)
}

// RegisterRoutes registers all attendance routes on the given mux.
func (h *AttendanceHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/attendance/state", h.HandleState)
	mux.HandleFunc("POST /api/attendance/press", h.HandlePress)
	mux.HandleFunc("POST /api/attendance/confirm", h.HandleConfirm)
	mux.HandleFunc("POST /api/attendance/punch", h.HandlePunch)
	mux.HandleFunc("POST /api/attendance/reset", h.HandleReset)
	mux.HandleFunc("GET /api/attendance/week", h.HandleWeek)
	mux.HandleFunc("PUT /api/attendance/status/{date}", h.HandleSetStatus)
	mux.HandleFunc("GET /api/attendance/stats/{date}", h.HandleDayStats)
}

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSONStatus(w, status, errorResponse{Error: msg})
}
