package brewday

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"brewdayService/internal/clock"
	"brewdayService/internal/recipe"
)

var (
	ErrNoMashSteps = errors.New("recipe has no mash steps")
	ErrNoSuchStep  = errors.New("no such mash step")
	ErrNoMoreSteps = errors.New("no more mash steps")
	ErrNoBoilTime  = errors.New("recipe has no boil time")
)

// MashStatus describes the mash rest that was started
type MashStatus struct {
	RecipeID        string  `json:"recipeId"`
	RunID           string  `json:"runId"`
	StepIndex       int     `json:"stepIndex"`
	TotalSteps      int     `json:"totalSteps"`
	Temperature     float64 `json:"temperature"`
	DurationSeconds int64   `json:"durationSeconds"`
	IsLast          bool    `json:"isLast"`
}

// BoilStatus describes the boil after a start or toggle
type BoilStatus struct {
	RecipeID         string             `json:"recipeId"`
	RunID            string             `json:"runId"`
	Status           clock.Status       `json:"status"`
	RemainingSeconds int64              `json:"remainingSeconds"`
	Scale            float64            `json:"scale"`
	FirstWortHops    []recipe.ScaledHop `json:"firstWortHops,omitempty"`
}

// Runner drives a brew day: the mash rests in order, then the boil with
// its hop additions. All timer changes go through the registry.
type Runner struct {
	registry *clock.Registry
	recipes  recipe.Repository

	mu    sync.Mutex
	plans map[string]*StepPlan
}

// NewRunner creates a runner. It subscribes to the registry's expiry events.
func NewRunner(registry *clock.Registry, recipes recipe.Repository) *Runner {
	r := &Runner{
		registry: registry,
		recipes:  recipes,
		plans:    make(map[string]*StepPlan),
	}
	registry.OnExpire(r.handleExpire)
	return r
}

// MashRunID identifies the run of one mash rest
func MashRunID(recipeID string, stepIndex int) string {
	return fmt.Sprintf("%s-mash-%d", recipeID, stepIndex)
}

// BoilRunID identifies the boil run of a recipe
func BoilRunID(recipeID string) string {
	return recipeID + "-boil"
}

// StartMashStep stops the boil and starts rest stepIndex of the recipe
// with a single completion alert. It fails with clock.ErrAlreadyRunning
// while a mash rest is counting down.
func (r *Runner) StartMashStep(ctx context.Context, recipeID string, stepIndex int) (*MashStatus, error) {
	rec, err := r.recipes.Get(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	plan, err := r.plan(rec)
	if err != nil {
		return nil, err
	}
	if _, ok := plan.At(stepIndex); !ok {
		return nil, fmt.Errorf("%w: %d of %d", ErrNoSuchStep, stepIndex, plan.Total())
	}
	if r.registry.Mash().IsRunning() {
		return nil, clock.ErrAlreadyRunning
	}

	prev := plan.CurrentIndex()
	plan.SetCurrent(stepIndex)
	status, err := r.startCurrent(ctx, rec, plan)
	if err != nil {
		plan.SetCurrent(prev)
		return nil, err
	}
	return status, nil
}

// NextMashStep advances to the recipe's next rest and starts it. A rest
// of this recipe still counting down is ended early; a mash run of
// another recipe makes it fail with clock.ErrAlreadyRunning.
func (r *Runner) NextMashStep(ctx context.Context, recipeID string) (*MashStatus, error) {
	rec, err := r.recipes.Get(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	plan, err := r.plan(rec)
	if err != nil {
		return nil, err
	}
	prev := plan.CurrentIndex()
	if !plan.Next() {
		return nil, ErrNoMoreSteps
	}

	if state := r.registry.Mash().Snapshot(); state != nil && state.ID == MashRunID(rec.ID, prev) {
		if err := r.registry.Reset(ctx, clock.KindMash); err != nil {
			plan.SetCurrent(prev)
			return nil, err
		}
	}

	status, err := r.startCurrent(ctx, rec, plan)
	if err != nil {
		plan.SetCurrent(prev)
		return nil, err
	}
	return status, nil
}

// StartBoil stops any running timer and starts the boil, scheduling an
// alert per hop addition. Hop amounts are scaled to targetSize litres; 0
// keeps the recipe's batch size. The first wort hops are returned for the
// caller to announce before the countdown matters.
func (r *Runner) StartBoil(ctx context.Context, recipeID string, targetSize float64) (*BoilStatus, error) {
	rec, err := r.recipes.Get(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	return r.startBoil(ctx, rec, targetSize)
}

// ToggleBoil pauses a running boil, resumes a paused one, or starts a new
// boil when there is nothing to resume
func (r *Runner) ToggleBoil(ctx context.Context, recipeID string, targetSize float64) (*BoilStatus, error) {
	rec, err := r.recipes.Get(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	boil := r.registry.Boil()
	scale := rec.ScaleFactor(targetSize)

	switch {
	case boil.IsRunning():
		if err := r.registry.Pause(ctx, clock.KindBoil); err != nil {
			return nil, err
		}
	case boil.IsPaused() && boil.GetRemainingSeconds() > 0:
		if err := r.registry.Resume(ctx, clock.KindBoil, rec.HopAlerts(scale)); err != nil {
			return nil, err
		}
	default:
		return r.startBoil(ctx, rec, targetSize)
	}

	return r.boilStatus(rec, scale, nil), nil
}

// ResetBoil stops the boil and cancels its alerts
func (r *Runner) ResetBoil(ctx context.Context) error {
	return r.registry.Reset(ctx, clock.KindBoil)
}

// ResetMash stops the mash and moves the recipe's plan back to its first rest
func (r *Runner) ResetMash(ctx context.Context, recipeID string) error {
	r.mu.Lock()
	if plan, ok := r.plans[recipeID]; ok {
		plan.Reset()
	}
	r.mu.Unlock()

	return r.registry.Reset(ctx, clock.KindMash)
}

func (r *Runner) startCurrent(ctx context.Context, rec *recipe.Recipe, plan *StepPlan) (*MashStatus, error) {
	step, _ := plan.Current()
	seconds := int64(step.Duration.Seconds())
	runID := MashRunID(rec.ID, step.Index)

	err := r.registry.Start(ctx, clock.KindMash, seconds, nil,
		clock.WithRunID(runID), clock.WithStepIndex(step.Index))
	if err != nil {
		return nil, err
	}

	log.Printf("🌡️ Mash step %d/%d of %s: %.0f°C for %s",
		step.Index+1, plan.Total(), rec.Name, step.Temperature, clock.FormatDurationLong(step.Duration))

	return &MashStatus{
		RecipeID:        rec.ID,
		RunID:           runID,
		StepIndex:       step.Index,
		TotalSteps:      plan.Total(),
		Temperature:     step.Temperature,
		DurationSeconds: seconds,
		IsLast:          plan.IsLast(),
	}, nil
}

func (r *Runner) startBoil(ctx context.Context, rec *recipe.Recipe, targetSize float64) (*BoilStatus, error) {
	seconds := rec.BoilSeconds()
	if seconds <= 0 {
		return nil, ErrNoBoilTime
	}

	scale := rec.ScaleFactor(targetSize)
	firstWort := rec.FirstWortHops(scale)

	err := r.registry.Start(ctx, clock.KindBoil, seconds, rec.BoilOffsets(scale),
		clock.WithRunID(BoilRunID(rec.ID)))
	if err != nil {
		return nil, err
	}

	for _, hop := range firstWort {
		log.Printf("🌿 First wort hop for %s: %s", rec.Name, hop.Text())
	}
	return r.boilStatus(rec, scale, firstWort), nil
}

func (r *Runner) boilStatus(rec *recipe.Recipe, scale float64, firstWort []recipe.ScaledHop) *BoilStatus {
	boil := r.registry.Boil()
	return &BoilStatus{
		RecipeID:         rec.ID,
		RunID:            BoilRunID(rec.ID),
		Status:           boil.Status(),
		RemainingSeconds: boil.GetRemainingSeconds(),
		Scale:            scale,
		FirstWortHops:    firstWort,
	}
}

// plan returns the recipe's step plan. A new plan starts at the rest the
// mash timer is on if it belongs to this recipe, e.g. after a restart.
func (r *Runner) plan(rec *recipe.Recipe) (*StepPlan, error) {
	if len(rec.MashSteps) == 0 {
		return nil, ErrNoMashSteps
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if plan, ok := r.plans[rec.ID]; ok && plan.Total() == len(rec.MashSteps) {
		return plan, nil
	}

	plan := NewStepPlan(rec)
	if state := r.registry.Mash().Snapshot(); state != nil && strings.HasPrefix(state.ID, rec.ID+"-mash-") {
		plan.SetCurrent(state.StepIndex)
	}
	r.plans[rec.ID] = plan
	return plan, nil
}

func (r *Runner) handleExpire(state *clock.TimerState) {
	switch state.Kind {
	case clock.KindMash:
		log.Printf("⏰ Mash rest %d finished (%s), the next step can begin", state.StepIndex+1, state.ID)
	case clock.KindBoil:
		log.Printf("⏰ Boil finished (%s), time to chill the wort", state.ID)
	}
}
