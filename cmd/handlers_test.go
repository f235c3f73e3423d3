package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brewdayService/internal/auth"
	"brewdayService/internal/brewcalc"
	"brewdayService/internal/brewday"
	"brewdayService/internal/clock"
	"brewdayService/internal/recipe"
)

func newTestApp(t *testing.T, secret string) http.Handler {
	t.Helper()

	realClock := clock.NewRealClock()
	registry := clock.NewRegistry(
		clock.NewTimer(clock.KindMash, realClock, nil),
		clock.NewTimer(clock.KindBoil, realClock, nil),
		clock.NewScheduler(clock.NoopNotifier{}, realClock),
		clock.NewMemoryStore(),
	)

	recipes := recipe.NewMemoryRepository()
	require.NoError(t, recipes.Save(context.Background(), &recipe.Recipe{
		ID:        "pils",
		Name:      "Pils",
		BatchSize: 20,
		MashSteps: []recipe.MashStep{
			{Temperature: 63, DurationMinutes: 40},
			{Temperature: 72, DurationMinutes: 20},
		},
		BoilMinutes: 70,
		HopSchedule: []recipe.HopAddition{
			{Name: "Saaz", AmountGrams: 30, MinutesBeforeEnd: 70},
			{Name: "Tettnanger", AmountGrams: 15, MinutesBeforeEnd: 15},
		},
	}))

	app := Config{
		Registry: registry,
		Runner:   brewday.NewRunner(registry, recipes),
		Recipes:  recipes,
		AuthRepo: auth.NewMemoryRepository(),
		JWT:      auth.NewJWTManager(secret),
	}
	return app.routes()
}

func do(t *testing.T, h http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestPing(t *testing.T) {
	h := newTestApp(t, "")
	rec := do(t, h, http.MethodGet, "/ping", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTimerLifecycle(t *testing.T) {
	h := newTestApp(t, "")

	timers := decode[[]TimerResponse](t, do(t, h, http.MethodGet, "/timers", nil, ""))
	require.Len(t, timers, 2)
	for _, timer := range timers {
		assert.Equal(t, clock.StatusIdle, timer.Status)
		assert.Equal(t, "0:00", timer.Formatted)
	}

	rec := do(t, h, http.MethodPost, "/timers/boil/start", StartTimerRequest{DurationSeconds: 600, ID: "manual"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	boil := decode[TimerResponse](t, rec)
	assert.Equal(t, clock.StatusRunning, boil.Status)
	assert.True(t, boil.Running)
	assert.Equal(t, "manual", boil.RunID)
	assert.InDelta(t, 600, boil.RemainingSeconds, 1)
	assert.NotEmpty(t, boil.EndTime)
	assert.Contains(t, boil.NotificationIDs, clock.AlertKey(clock.KindBoil, clock.CompleteLabel))

	rec = do(t, h, http.MethodPost, "/timers/boil/start", StartTimerRequest{DurationSeconds: 900, ID: "again"}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "manual", decode[TimerResponse](t, do(t, h, http.MethodGet, "/timers/boil", nil, "")).RunID)

	rec = do(t, h, http.MethodPost, "/timers/boil/pause", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	boil = decode[TimerResponse](t, rec)
	assert.True(t, boil.Paused)
	assert.Empty(t, boil.NotificationIDs)

	rec = do(t, h, http.MethodPost, "/timers/boil/pause", nil, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/timers/boil/resume", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[TimerResponse](t, rec).Running)

	rec = do(t, h, http.MethodPost, "/timers/boil/reset", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, clock.StatusIdle, decode[TimerResponse](t, rec).Status)

	rec = do(t, h, http.MethodPost, "/timers/mash/resume", nil, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestStartingOneTimerStopsTheOther(t *testing.T) {
	h := newTestApp(t, "")

	do(t, h, http.MethodPost, "/timers/boil/start", StartTimerRequest{DurationSeconds: 600}, "")
	rec := do(t, h, http.MethodPost, "/timers/mash/start", StartTimerRequest{DurationSeconds: 300, StepIndex: 2}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[TimerResponse](t, rec).StepIndex)

	boil := decode[TimerResponse](t, do(t, h, http.MethodGet, "/timers/boil", nil, ""))
	assert.Equal(t, clock.StatusIdle, boil.Status)

	timers := decode[[]TimerResponse](t, do(t, h, http.MethodPost, "/timers/stop-all", nil, ""))
	for _, timer := range timers {
		assert.Equal(t, clock.StatusIdle, timer.Status)
	}
}

func TestTimerRequestErrors(t *testing.T) {
	h := newTestApp(t, "")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unknown kind", http.MethodGet, "/timers/fermentation", nil, http.StatusNotFound},
		{"unknown kind start", http.MethodPost, "/timers/fermentation/start", StartTimerRequest{DurationSeconds: 10}, http.StatusNotFound},
		{"zero duration", http.MethodPost, "/timers/mash/start", StartTimerRequest{}, http.StatusBadRequest},
		{"bad json", http.MethodPost, "/timers/mash/start", "not an object", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body, "")
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestBrewDay(t *testing.T) {
	h := newTestApp(t, "")

	rec := do(t, h, http.MethodGet, "/recipes", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]recipe.Recipe](t, rec), 1)

	rec = do(t, h, http.MethodPost, "/brew/pils/mash/0", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	mash := decode[brewday.MashStatus](t, rec)
	assert.Equal(t, 0, mash.StepIndex)
	assert.Equal(t, int64(40*60), mash.DurationSeconds)

	rec = do(t, h, http.MethodPost, "/brew/pils/mash/next", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	mash = decode[brewday.MashStatus](t, rec)
	assert.Equal(t, 1, mash.StepIndex)
	assert.True(t, mash.IsLast)

	rec = do(t, h, http.MethodPost, "/brew/pils/mash/next", nil, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/brew/pils/boil?targetSize=40", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	boil := decode[brewday.BoilStatus](t, rec)
	assert.Equal(t, clock.StatusRunning, boil.Status)
	assert.Equal(t, 2.0, boil.Scale)
	require.Len(t, boil.FirstWortHops, 1)
	assert.Equal(t, "Saaz", boil.FirstWortHops[0].Name)
	assert.Equal(t, 60.0, boil.FirstWortHops[0].AmountGrams)

	mashTimer := decode[TimerResponse](t, do(t, h, http.MethodGet, "/timers/mash", nil, ""))
	assert.Equal(t, clock.StatusIdle, mashTimer.Status)

	rec = do(t, h, http.MethodPost, "/brew/pils/boil/toggle", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, clock.StatusPaused, decode[brewday.BoilStatus](t, rec).Status)

	rec = do(t, h, http.MethodPost, "/brew/pils/boil/toggle", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, clock.StatusRunning, decode[brewday.BoilStatus](t, rec).Status)

	rec = do(t, h, http.MethodPost, "/brew/pils/boil/reset", nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestBrewDayErrors(t *testing.T) {
	h := newTestApp(t, "")

	tests := []struct {
		name string
		path string
		want int
	}{
		{"missing recipe", "/brew/stout/mash/0", http.StatusNotFound},
		{"step out of range", "/brew/pils/mash/5", http.StatusNotFound},
		{"step not a number", "/brew/pils/mash/first", http.StatusBadRequest},
		{"bad target size", "/brew/pils/boil?targetSize=big", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tt.path, nil, "")
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}

	rec := do(t, h, http.MethodGet, "/recipes/stout", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCalculators(t *testing.T) {
	h := newTestApp(t, "")

	rec := do(t, h, http.MethodGet, "/calc/convert?value=12&from=plato&to=brix", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 12.47, decode[valueResponse](t, rec).Value)

	rec = do(t, h, http.MethodGet, "/calc/abv?og=12&fg=3", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4.73, decode[valueResponse](t, rec).Value)

	rec = do(t, h, http.MethodGet, "/calc/priming?temp=20&co2=5&kind=sugar", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	priming := decode[brewcalc.PrimingResult](t, rec)
	assert.Equal(t, 6.6, priming.Amount)
	assert.Equal(t, "g/L", priming.AmountUnit)

	rec = do(t, h, http.MethodGet, "/calc/hops?amount=20&originalAA=5&actualAA=4", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 25.0, decode[valueResponse](t, rec).Value)

	rec = do(t, h, http.MethodGet, "/calc/dilution?og=16&volume=20&target=12", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 6.67, decode[valueResponse](t, rec).Value)

	rec = do(t, h, http.MethodGet, "/calc/temperature?plato=12&calTemp=20&measTemp=20", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 12, decode[valueResponse](t, rec).Value, 0.05)

	rec = do(t, h, http.MethodGet, "/calc/presets", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[[]brewcalc.Preset](t, rec))
}

func TestCalculatorErrors(t *testing.T) {
	h := newTestApp(t, "")

	for _, path := range []string{
		"/calc/convert?value=12&from=oechsle&to=brix",
		"/calc/convert?value=abc&from=plato&to=brix",
		"/calc/abv?og=12&fg=3&unit=oechsle",
		"/calc/priming?temp=20&co2=7.5",
		"/calc/priming?temp=20&co2=5&kind=honey",
		"/calc/hops?amount=20&originalAA=5&actualAA=0",
	} {
		rec := do(t, h, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestProtectedRoutes(t *testing.T) {
	h := newTestApp(t, "test-secret")

	rec := do(t, h, http.MethodPost, "/timers/boil/start", StartTimerRequest{DurationSeconds: 60}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodPost, "/brew/pils/boil", nil, "bogus")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// reads stay open
	rec = do(t, h, http.MethodGet, "/timers", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/auth/register", auth.NewUserRequest{
		Username: "brewer",
		Password: "mash-tun-42",
		Email:    "brewer@example.com",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	registered := decode[auth.UserRegistrationResponse](t, rec)
	require.NotEmpty(t, registered.Token)

	rec = do(t, h, http.MethodPost, "/timers/boil/start", StartTimerRequest{DurationSeconds: 60}, registered.Token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/auth/login", auth.UserLoginCredentials{Username: "brewer", Password: "wrong-password"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodPost, "/auth/login", auth.UserLoginCredentials{Username: "brewer", Password: "mash-tun-42"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode[auth.UserLoginResponse](t, rec).Token

	rec = do(t, h, http.MethodGet, "/auth/profile", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "brewer", decode[auth.User](t, rec).Username)

	rec = do(t, h, http.MethodPost, "/auth/register", auth.NewUserRequest{
		Username: "brewer",
		Password: "mash-tun-42",
		Email:    "other@example.com",
	}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}
