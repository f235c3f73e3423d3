// Package brewcalc holds the brew-day calculators: extract unit
// conversion, alcohol, hop and temperature correction, dilution and
// priming.
package brewcalc

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrInvalidUnit  = errors.New("invalid unit, use 'plato', 'brix' or 'gravity'")
	ErrInvalidInput = errors.New("invalid input")
)

// Unit is an extract measurement scale
type Unit string

const (
	UnitPlato   Unit = "plato"
	UnitBrix    Unit = "brix"
	UnitGravity Unit = "gravity"
)

// RefractometerCorrection is the wort correction factor applied to brix
// readings
const RefractometerCorrection = 1.02

// ParseUnit accepts a unit name in any case
func ParseUnit(s string) (Unit, error) {
	switch u := Unit(strings.ToLower(strings.TrimSpace(s))); u {
	case UnitPlato, UnitBrix, UnitGravity:
		return u, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidUnit, s)
}

// PlatoToSG converts degrees Plato to specific gravity (ASBC polynomial)
func PlatoToSG(plato float64) float64 {
	return 1.00001 +
		3.8661e-3*plato +
		1.3488e-5*plato*plato +
		4.3074e-8*plato*plato*plato
}

// SGToPlato converts specific gravity to degrees Plato
func SGToPlato(sg float64) float64 {
	return -668.962 + 1262.45*sg - 776.43*sg*sg + 182.94*sg*sg*sg
}

func PlatoToBrix(plato float64) float64 {
	return plato / 0.962
}

func BrixToPlato(brix float64) float64 {
	return brix * 0.962
}

// ABV returns the alcohol by volume in percent, rounded to two decimals.
// Plato and gravity readings use the Balling formula; brix readings use
// Terrill's refractometer formula with RefractometerCorrection.
func ABV(og, fg float64, unit Unit) (float64, error) {
	switch unit {
	case UnitPlato:
		return abvFromPlato(og, fg)
	case UnitBrix:
		return ABVRefractometer(og, fg, RefractometerCorrection)
	case UnitGravity:
		return abvFromPlato(SGToPlato(og), SGToPlato(fg))
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidUnit, unit)
	}
}

// ABVRefractometer computes alcohol from refractometer brix readings
// taken before and after fermentation
func ABVRefractometer(ogBrix, fgBrix, correction float64) (float64, error) {
	if correction <= 0 {
		return 0, fmt.Errorf("%w: correction factor must be positive", ErrInvalidInput)
	}
	og := ogBrix / correction
	fg := fgBrix / correction
	if og <= 0 {
		return 0, fmt.Errorf("%w: original extract must be positive", ErrInvalidInput)
	}

	sg := 1.0 - 0.00085683*og + 0.0034941*fg
	apparent := -463.37 + 668.72*sg - 205.347*sg*sg
	realExtract := 0.1808*og + 0.8192*apparent
	return round(alcoholByVolume(og, realExtract), 2), nil
}

func abvFromPlato(og, fg float64) (float64, error) {
	if og <= 0 {
		return 0, fmt.Errorf("%w: original extract must be positive", ErrInvalidInput)
	}
	realExtract := (1 - 0.81*(og-fg)/og) * og
	return round(alcoholByVolume(og, realExtract), 2), nil
}

// alcoholByVolume applies Balling's alcohol by weight and converts it to
// volume
func alcoholByVolume(og, realExtract float64) float64 {
	byWeight := (realExtract - og) / ((1.0665 * og / 100) - 2.0665)
	return byWeight / 0.795
}

// Convert converts an extract reading between units with plato as the
// intermediate. Plato and brix results have two decimals, gravity three.
func Convert(value float64, from, to Unit) (float64, error) {
	var plato float64
	switch from {
	case UnitPlato:
		plato = value
	case UnitBrix:
		plato = BrixToPlato(value)
	case UnitGravity:
		plato = SGToPlato(value)
	default:
		return 0, fmt.Errorf("%w: source %q", ErrInvalidUnit, from)
	}

	switch to {
	case UnitPlato, UnitBrix, UnitGravity:
		if from == to {
			return value, nil
		}
	default:
		return 0, fmt.Errorf("%w: target %q", ErrInvalidUnit, to)
	}

	switch to {
	case UnitBrix:
		return round(PlatoToBrix(plato), 2), nil
	case UnitGravity:
		return round(PlatoToSG(plato), 3), nil
	default:
		return round(plato, 2), nil
	}
}

// AdjustHopAmount scales a hop amount planned at originalAA percent alpha
// acid to a lot with actualAA, rounded to 0.1 g
func AdjustHopAmount(amount, originalAA, actualAA float64) (float64, error) {
	if actualAA <= 0 {
		return 0, fmt.Errorf("%w: actual alpha acid must be positive", ErrInvalidInput)
	}
	return round(amount*originalAA/actualAA, 1), nil
}

// CorrectPlatoTemp corrects a hydrometer reading taken at measTemp for an
// instrument calibrated at calTemp, both in degrees Celsius
func CorrectPlatoTemp(measuredPlato, calTemp, measTemp float64) float64 {
	sg := PlatoToSG(measuredPlato) + 0.000303*(measTemp-calTemp)
	return round(SGToPlato(sg), 2)
}

// DilutionVolume returns the water to add to volume litres at
// gravity og to reach targetGravity. Both gravities share one unit.
func DilutionVolume(og, volume, targetGravity float64) (float64, error) {
	if targetGravity <= 0 {
		return 0, fmt.Errorf("%w: target gravity must be positive", ErrInvalidInput)
	}
	return round(og*volume/targetGravity-volume, 2), nil
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
