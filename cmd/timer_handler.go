package main

import (
	"net/http"
	"time"

	"brewdayService/internal/clock"

	"github.com/go-chi/chi/v5"
)

// TimerHandler exposes the timer control surface
type TimerHandler struct {
	registry *clock.Registry
}

func NewTimerHandler(registry *clock.Registry) *TimerHandler {
	return &TimerHandler{registry: registry}
}

// TimerResponse is the observable state of one timer
type TimerResponse struct {
	Kind             clock.Kind        `json:"kind"`
	Status           clock.Status      `json:"status"`
	RunID            string            `json:"runId,omitempty"`
	StepIndex        int               `json:"stepIndex"`
	RemainingSeconds int64             `json:"remainingSeconds"`
	Formatted        string            `json:"formatted"`
	Paused           bool              `json:"paused"`
	Running          bool              `json:"running"`
	EndTime          string            `json:"endTime,omitempty"`
	NotificationIDs  map[string]string `json:"notificationIds"`
	ServerTime       string            `json:"serverTime"`
}

// StartTimerRequest starts a timer manually
type StartTimerRequest struct {
	DurationSeconds int64  `json:"durationSeconds"`
	ID              string `json:"id"`
	StepIndex       int    `json:"stepIndex"`
}

func timerResponse(t *clock.Timer) TimerResponse {
	resp := TimerResponse{
		Kind:             t.Kind(),
		Status:           t.Status(),
		RemainingSeconds: t.GetRemainingSeconds(),
		Formatted:        t.GetFormattedTime(),
		Paused:           t.IsPaused(),
		Running:          t.IsRunning(),
		NotificationIDs:  t.NotificationIDs(),
		ServerTime:       time.Now().Format(time.RFC3339),
	}
	if state := t.Snapshot(); state != nil {
		resp.RunID = state.ID
		resp.StepIndex = state.StepIndex
	}
	if end, ok := t.EndTime(); ok {
		resp.EndTime = end.Format(time.RFC3339)
	}
	return resp
}

func (h *TimerHandler) timer(w http.ResponseWriter, r *http.Request) (*clock.Timer, bool) {
	kind, err := clock.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeDomainError(w, err)
		return nil, false
	}
	t, err := h.registry.Timer(kind)
	if err != nil {
		writeDomainError(w, err)
		return nil, false
	}
	return t, true
}

// ListTimers returns both timers
func (h *TimerHandler) ListTimers(w http.ResponseWriter, r *http.Request) {
	timers := make([]TimerResponse, 0, len(clock.Kinds))
	for _, kind := range clock.Kinds {
		t, _ := h.registry.Timer(kind)
		timers = append(timers, timerResponse(t))
	}
	writeJSON(w, http.StatusOK, timers)
}

func (h *TimerHandler) GetTimer(w http.ResponseWriter, r *http.Request) {
	t, ok := h.timer(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, timerResponse(t))
}

// StartTimer stops both timers and starts the requested one with only a
// completion alert
func (h *TimerHandler) StartTimer(w http.ResponseWriter, r *http.Request) {
	t, ok := h.timer(w, r)
	if !ok {
		return
	}

	var req StartTimerRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON", "Failed to parse request body")
		return
	}
	if req.DurationSeconds <= 0 {
		writeError(w, http.StatusBadRequest, "Validation error", "durationSeconds must be positive")
		return
	}

	err := h.registry.Start(r.Context(), t.Kind(), req.DurationSeconds, nil,
		clock.WithRunID(req.ID), clock.WithStepIndex(req.StepIndex))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, timerResponse(t))
}

func (h *TimerHandler) PauseTimer(w http.ResponseWriter, r *http.Request) {
	t, ok := h.timer(w, r)
	if !ok {
		return
	}
	if err := h.registry.Pause(r.Context(), t.Kind()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, timerResponse(t))
}

// ResumeTimer resumes with the completion alert only. Hop alerts of a
// recipe boil are rescheduled by the brew toggle route.
func (h *TimerHandler) ResumeTimer(w http.ResponseWriter, r *http.Request) {
	t, ok := h.timer(w, r)
	if !ok {
		return
	}
	if err := h.registry.Resume(r.Context(), t.Kind(), nil); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, timerResponse(t))
}

func (h *TimerHandler) ResetTimer(w http.ResponseWriter, r *http.Request) {
	t, ok := h.timer(w, r)
	if !ok {
		return
	}
	if err := h.registry.Reset(r.Context(), t.Kind()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, timerResponse(t))
}

func (h *TimerHandler) StopAll(w http.ResponseWriter, r *http.Request) {
	h.registry.StopAllTimers(r.Context())
	h.ListTimers(w, r)
}
