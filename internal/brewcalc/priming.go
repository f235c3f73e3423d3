package brewcalc

import (
	"errors"
	"fmt"
	"strings"
)

// MaxCarbonation is the highest target CO2 content in g/L accepted
const MaxCarbonation = 7.0

var (
	ErrCarbonationTooHigh = fmt.Errorf("target CO2 must not exceed %.1f g/L", MaxCarbonation)
	ErrInvalidPrimingKind = errors.New("invalid priming kind, use 'sugar', 'glucose' or 'wort'")
)

// PrimingKind is what is added to the green beer for bottle conditioning
type PrimingKind string

const (
	PrimingSucrose PrimingKind = "sugar"
	PrimingGlucose PrimingKind = "glucose"
	PrimingWort    PrimingKind = "wort" // reserved unfermented wort (Speise)
)

const (
	// CO2 released per gram of fermented sugar
	sucroseCO2Yield = 0.5
	glucoseCO2Yield = 0.46

	// grams of ethanol per gram of CO2 (one mole each)
	ethanolPerCO2 = 46.07 / 44.01
	// grams of ethanol per litre for one percent by volume
	ethanolPerABV = 7.89

	volumesToGrams = 1.96
)

// PrimingResult is the priming addition per litre of green beer
type PrimingResult struct {
	ResidualCO2   float64 `json:"residualCO2"`   // g/L already dissolved
	CO2Difference float64 `json:"co2Difference"` // g/L still to produce
	Amount        float64 `json:"amount"`
	AmountUnit    string  `json:"amountUnit"` // g/L, or ml/L for wort
	AdditionalABV float64 `json:"additionalABV"`
}

// ParsePrimingKind accepts a priming kind name in any case
func ParsePrimingKind(s string) (PrimingKind, error) {
	switch k := PrimingKind(strings.ToLower(strings.TrimSpace(s))); k {
	case PrimingSucrose, PrimingGlucose, PrimingWort:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPrimingKind, s)
}

// ResidualCO2 returns the CO2 in g/L that stays dissolved in beer that
// finished fermenting at tempC degrees Celsius
func ResidualCO2(tempC float64) float64 {
	f := tempC*9/5 + 32
	volumes := 3.0378 - 0.050062*f + 0.00026555*f*f
	return volumes * volumesToGrams
}

// PrimingSugar computes how much to add per litre to reach targetCO2 g/L.
// og and fg are the wort's extract in degrees Plato before and after
// fermentation and are only read for PrimingWort. A beer already at or
// above the target needs nothing.
func PrimingSugar(tempC, targetCO2 float64, kind PrimingKind, og, fg float64) (PrimingResult, error) {
	if targetCO2 > MaxCarbonation {
		return PrimingResult{}, ErrCarbonationTooHigh
	}
	if targetCO2 < 0 {
		return PrimingResult{}, fmt.Errorf("%w: target CO2 must not be negative", ErrInvalidInput)
	}

	residual := ResidualCO2(tempC)
	difference := targetCO2 - residual
	if difference < 0 {
		difference = 0
	}

	result := PrimingResult{
		ResidualCO2:   round(residual, 2),
		CO2Difference: round(difference, 2),
		AmountUnit:    "g/L",
		AdditionalABV: round(difference*ethanolPerCO2/ethanolPerABV, 2),
	}

	switch kind {
	case PrimingSucrose:
		result.Amount = round(difference/sucroseCO2Yield, 1)
	case PrimingGlucose:
		result.Amount = round(difference/glucoseCO2Yield, 1)
	case PrimingWort:
		if og <= fg {
			return PrimingResult{}, fmt.Errorf("%w: original extract must exceed final extract", ErrInvalidInput)
		}
		// fermentable extract in g per litre of wort
		fermentable := (og - fg) * 10 * PlatoToSG(og)
		result.Amount = round(difference/sucroseCO2Yield/fermentable*1000, 0)
		result.AmountUnit = "ml/L"
	default:
		return PrimingResult{}, fmt.Errorf("%w: %q", ErrInvalidPrimingKind, kind)
	}
	return result, nil
}

// WortSplit describes a wort priming amount as the reserved wort and
// green beer that make up one litre
func WortSplit(mlPerLitre float64) (wort, beer float64) {
	return mlPerLitre, 1000 - mlPerLitre
}
