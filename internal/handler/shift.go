package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"accshift/internal/model"
	"accshift/internal/service"
	"accshift/internal/weather"
)

// ShiftHandler exposes shift and note configuration, the app settings and
// the weather lookup.
type ShiftHandler struct {
	shifts   *service.ShiftService
	notes    *service.NoteService
	settings *service.SettingsService
	weather  *weather.Client
}

func NewShiftHandler(shifts *service.ShiftService, notes *service.NoteService,
	settings *service.SettingsService, wc *weather.Client) *ShiftHandler {
	return &ShiftHandler{shifts: shifts, notes: notes, settings: settings, weather: wc}
}

// ValidationResponse carries field-level validation messages back to the
// form; the UI shows them inline and blocks the save.
type ValidationResponse struct {
	Errors map[string]string `json:"errors"`
}

func (h *ShiftHandler) HandleListShifts(w http.ResponseWriter, r *http.Request) {
	shifts, err := h.shifts.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list shifts")
		writeError(w, http.StatusInternalServerError, "failed to load shifts")
		return
	}
	if shifts == nil {
		shifts = []*model.ShiftConfig{}
	}
	writeJSON(w, shifts)
}

func (h *ShiftHandler) HandleSaveShift(w http.ResponseWriter, r *http.Request) {
	var shift model.ShiftConfig
	if err := json.NewDecoder(r.Body).Decode(&shift); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}

	fieldErrs, err := h.shifts.Save(r.Context(), &shift)
	if err != nil {
		log.Error().Err(err).Msg("save shift")
		writeError(w, http.StatusInternalServerError, "failed to save shift")
		return
	}
	if len(fieldErrs) > 0 {
		writeJSONStatus(w, http.StatusUnprocessableEntity, ValidationResponse{Errors: fieldErrs})
		return
	}
	writeJSON(w, shift)
}

func (h *ShiftHandler) HandleDeleteShift(w http.ResponseWriter, r *http.Request) {
	if err := h.shifts.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ShiftHandler) HandleActivateShift(w http.ResponseWriter, r *http.Request) {
	if err := h.shifts.Activate(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ShiftHandler) HandleListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.notes.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list notes")
		writeError(w, http.StatusInternalServerError, "failed to load notes")
		return
	}
	if notes == nil {
		notes = []*model.Note{}
	}
	writeJSON(w, notes)
}

func (h *ShiftHandler) HandleSaveNote(w http.ResponseWriter, r *http.Request) {
	var note model.Note
	if err := json.NewDecoder(r.Body).Decode(&note); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}

	fieldErrs, err := h.notes.Save(r.Context(), &note)
	if err != nil {
		log.Error().Err(err).Msg("save note")
		writeError(w, http.StatusInternalServerError, "failed to save note")
		return
	}
	if len(fieldErrs) > 0 {
		writeJSONStatus(w, http.StatusUnprocessableEntity, ValidationResponse{Errors: fieldErrs})
		return
	}
	writeJSON(w, note)
}

func (h *ShiftHandler) HandleDeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.notes.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ShiftHandler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Get(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("load settings")
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	writeJSON(w, settings)
}

func (h *ShiftHandler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var in service.Settings
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}
	settings, err := h.settings.Update(r.Context(), in)
	if err != nil {
		log.Error().Err(err).Msg("update settings")
		writeError(w, http.StatusInternalServerError, "failed to update settings")
		return
	}
	writeJSON(w, settings)
}

// WeatherResponse pairs the current conditions with the resolved place name.
type WeatherResponse struct {
	*weather.Conditions
	Location string `json:"location,omitempty"`
}

// HandleWeather proxies the current-conditions lookup for ?lat=&lon=.
func (h *ShiftHandler) HandleWeather(w http.ResponseWriter, r *http.Request) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if errLat != nil || errLon != nil {
		writeError(w, http.StatusBadRequest, "lat and lon are required")
		return
	}

	conditions, err := h.weather.Current(r.Context(), lat, lon)
	if err != nil {
		log.Warn().Err(err).Msg("weather lookup")
		writeError(w, http.StatusBadGateway, "weather service unavailable")
		return
	}

	// Place name is cosmetic, ignore lookup failures.
	location, err := h.weather.ReverseGeocode(r.Context(), lat, lon)
	if err != nil {
		log.Warn().Err(err).Msg("reverse geocode")
	}
	writeJSON(w, WeatherResponse{Conditions: conditions, Location: location})
}

// RegisterRoutes registers shift, note and weather routes on the given mux.
func (h *ShiftHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/shifts", h.HandleListShifts)
	mux.HandleFunc("POST /api/shifts", h.HandleSaveShift)
	mux.HandleFunc("DELETE /api/shifts/{id}", h.HandleDeleteShift)
	mux.HandleFunc("POST /api/shifts/{id}/activate", h.HandleActivateShift)
	mux.HandleFunc("GET /api/notes", h.HandleListNotes)
	mux.HandleFunc("POST /api/notes", h.HandleSaveNote)
	mux.HandleFunc("DELETE /api/notes/{id}", h.HandleDeleteNote)
	mux.HandleFunc("GET /api/settings", h.HandleGetSettings)
	mux.HandleFunc("PUT /api/settings", h.HandleUpdateSettings)
	mux.HandleFunc("GET /api/weather/current", h.HandleWeather)
}
