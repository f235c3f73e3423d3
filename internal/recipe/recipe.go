package recipe

import (
	"errors"
	"fmt"

	"brewdayService/internal/clock"
)

// Sentinel errors returned by repositories
var (
	ErrNotFound     = errors.New("recipe not found")
	ErrInvalidInput = errors.New("invalid recipe")
)

// Ingredient is a malt or yeast entry
type Ingredient struct {
	Name   string  `json:"name" yaml:"name"`
	Amount float64 `json:"amount" yaml:"amount"`
}

// HopIngredient is a hop variety with the alpha acid the recipe assumes
type HopIngredient struct {
	Name      string  `json:"name" yaml:"name"`
	Amount    float64 `json:"amount" yaml:"amount"`
	AlphaAcid float64 `json:"alphaAcid" yaml:"alphaAcid"`
}

// MashStep is one rest: a temperature in degrees Celsius held for minutes
type MashStep struct {
	Temperature     float64 `json:"temperature" yaml:"temperature"`
	DurationMinutes int     `json:"duration" yaml:"duration"`
}

// HopAddition is a boil addition MinutesBeforeEnd minutes before the end
// of the boil, AmountGrams at the recipe's batch size
type HopAddition struct {
	Name             string  `json:"name" yaml:"name"`
	AmountGrams      float64 `json:"amount" yaml:"amount"`
	MinutesBeforeEnd int     `json:"time" yaml:"time"`
}

// Recipe is the part of a stored recipe the brew day needs
type Recipe struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	BatchSize   float64         `json:"batchSize" yaml:"batchSize"` // litres
	Malts       []Ingredient    `json:"malts,omitempty" yaml:"malts,omitempty"`
	Hops        []HopIngredient `json:"hops,omitempty" yaml:"hops,omitempty"`
	Yeast       []Ingredient    `json:"yeast,omitempty" yaml:"yeast,omitempty"`
	MashSteps   []MashStep      `json:"mashSteps" yaml:"mashSteps"`
	BoilMinutes int             `json:"boilTime" yaml:"boilTime"`
	HopSchedule []HopAddition   `json:"hopSchedule" yaml:"hopSchedule"`
}

// Validate checks the fields the brew day relies on
func (r *Recipe) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	if r.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if r.BatchSize < 0 {
		return fmt.Errorf("%w: batch size must not be negative", ErrInvalidInput)
	}
	if r.BoilMinutes < 0 {
		return fmt.Errorf("%w: boil time must not be negative", ErrInvalidInput)
	}
	for i, step := range r.MashSteps {
		if step.DurationMinutes < 0 {
			return fmt.Errorf("%w: mash step %d has a negative duration", ErrInvalidInput, i)
		}
	}
	return nil
}

// BoilSeconds returns the boil length in seconds
func (r *Recipe) BoilSeconds() int64 {
	if r.BoilMinutes <= 0 {
		return 0
	}
	return int64(r.BoilMinutes) * 60
}

// MashStepSeconds returns the length of rest i, false if there is none
func (r *Recipe) MashStepSeconds(i int) (int64, bool) {
	if i < 0 || i >= len(r.MashSteps) {
		return 0, false
	}
	minutes := r.MashSteps[i].DurationMinutes
	if minutes < 0 {
		minutes = 0
	}
	return int64(minutes) * 60, true
}

// ScaleFactor returns how much hop amounts scale for a brew of targetSize
// litres. It is 1 when either size is unknown.
func (r *Recipe) ScaleFactor(targetSize float64) float64 {
	if r.BatchSize <= 0 || targetSize <= 0 {
		return 1
	}
	return targetSize / r.BatchSize
}

// ScaledHop is a hop addition with its amount scaled to the brew size
type ScaledHop struct {
	Name             string  `json:"name"`
	AmountGrams      float64 `json:"amount"`
	MinutesBeforeEnd int     `json:"time"`
}

// Text describes the addition, e.g. "12.5 g Cascade"
func (h ScaledHop) Text() string {
	return fmt.Sprintf("%.1f g %s", h.AmountGrams, h.Name)
}

// ScaledHops returns the hop schedule scaled by factor
func (r *Recipe) ScaledHops(factor float64) []ScaledHop {
	hops := make([]ScaledHop, 0, len(r.HopSchedule))
	for _, hop := range r.HopSchedule {
		hops = append(hops, ScaledHop{
			Name:             hop.Name,
			AmountGrams:      hop.AmountGrams * factor,
			MinutesBeforeEnd: hop.MinutesBeforeEnd,
		})
	}
	return hops
}

// FirstWortHops returns the additions due at or before the start of the
// boil. They are announced when the boil starts and never scheduled.
func (r *Recipe) FirstWortHops(factor float64) []ScaledHop {
	boil := r.BoilSeconds()

	var out []ScaledHop
	for _, hop := range r.ScaledHops(factor) {
		if int64(hop.MinutesBeforeEnd)*60 >= boil {
			out = append(out, hop)
		}
	}
	return out
}

func hopLabel(i int) string {
	return fmt.Sprintf("hop-%d", i)
}

func hopTitle() string {
	return "Hop addition"
}

func hopBody(hop ScaledHop) string {
	return fmt.Sprintf("Add %s now (%d minutes before the end)!", hop.Text(), hop.MinutesBeforeEnd)
}

// BoilOffsets returns one alert per hop addition measured from the start
// of the boil
func (r *Recipe) BoilOffsets(factor float64) []clock.Offset {
	boil := int64(r.BoilMinutes)

	offsets := make([]clock.Offset, 0, len(r.HopSchedule))
	for i, hop := range r.ScaledHops(factor) {
		offsets = append(offsets, clock.Offset{
			Label:         hopLabel(i),
			OffsetSeconds: (boil - int64(hop.MinutesBeforeEnd)) * 60,
			Title:         hopTitle(),
			Body:          hopBody(hop),
		})
	}
	return offsets
}

// HopAlerts returns one alert per hop addition measured back from the end
// of the boil, for rescheduling a resumed boil
func (r *Recipe) HopAlerts(factor float64) []clock.HopAlert {
	alerts := make([]clock.HopAlert, 0, len(r.HopSchedule))
	for i, hop := range r.ScaledHops(factor) {
		alerts = append(alerts, clock.HopAlert{
			Label:            hopLabel(i),
			SecondsBeforeEnd: int64(hop.MinutesBeforeEnd) * 60,
			Title:            hopTitle(),
			Body:             hopBody(hop),
		})
	}
	return alerts
}
