package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"brewdayService/internal/auth"
	"brewdayService/internal/brewcalc"
	"brewdayService/internal/brewday"
	"brewdayService/internal/clock"
	"brewdayService/internal/recipe"

	"github.com/jackc/pgx/v5/pgxpool"
)

const maxDBAttempts = 10

// connectToDB keeps trying dsn until Postgres answers. It returns nil when
// no DSN is configured or every attempt failed.
func connectToDB(dsn string) *pgxpool.Pool {
	if dsn == "" {
		log.Printf("No DSN configured, using in-memory repositories")
		return nil
	}

	for counts := 1; ; counts++ {
		connection, err := openDB(dsn)
		if err == nil {
			log.Printf("Connected to Postgres!")
			return connection
		}
		log.Printf("Postgres is not yet ready")

		if counts >= maxDBAttempts {
			log.Println(err)
			return nil
		}

		log.Println("Backing off for two seconds...")
		time.Sleep(2 * time.Second)
	}
}

func openDB(dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	err = pool.Ping(context.Background())
	if err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, errorMsg, message string) {
	writeJSON(w, status, auth.ErrorResponse{
		Error:   errorMsg,
		Message: message,
	})
}

// writeDomainError maps an engine error to its HTTP status
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, clock.ErrAlreadyRunning),
		errors.Is(err, clock.ErrNotRunning),
		errors.Is(err, clock.ErrNotPaused),
		errors.Is(err, clock.ErrNoTimeRemaining),
		errors.Is(err, brewday.ErrNoMoreSteps):
		writeError(w, http.StatusConflict, "Invalid transition", err.Error())
	case errors.Is(err, clock.ErrUnknownKind),
		errors.Is(err, recipe.ErrNotFound),
		errors.Is(err, brewday.ErrNoSuchStep):
		writeError(w, http.StatusNotFound, "Not found", err.Error())
	case errors.Is(err, brewday.ErrNoMashSteps),
		errors.Is(err, brewday.ErrNoBoilTime),
		errors.Is(err, recipe.ErrInvalidInput),
		errors.Is(err, brewcalc.ErrInvalidUnit),
		errors.Is(err, brewcalc.ErrInvalidInput),
		errors.Is(err, brewcalc.ErrInvalidPrimingKind),
		errors.Is(err, brewcalc.ErrCarbonationTooHigh):
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
	default:
		log.Printf("❌ Request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal error", "Internal server error")
	}
}

// readJSON decodes the request body into v. An empty body leaves v as is.
func readJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func queryFloat(r *http.Request, key string) (float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", brewcalc.ErrInvalidInput, key)
	}
	return v, nil
}
