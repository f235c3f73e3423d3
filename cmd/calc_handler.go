package main

import (
	"net/http"

	"brewdayService/internal/brewcalc"
)

// CalcHandler serves the brewing calculators. All inputs are query
// parameters.
type CalcHandler struct{}

func NewCalcHandler() *CalcHandler {
	return &CalcHandler{}
}

type valueResponse struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

// floats reads the named query parameters, writing a 400 on the first bad
// one
func floats(w http.ResponseWriter, r *http.Request, keys ...string) ([]float64, bool) {
	out := make([]float64, len(keys))
	for i, key := range keys {
		v, err := queryFloat(r, key)
		if err != nil {
			writeDomainError(w, err)
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func unitParam(r *http.Request, key string, fallback brewcalc.Unit) (brewcalc.Unit, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	return brewcalc.ParseUnit(raw)
}

// Convert handles /calc/convert?value=&from=&to=
func (h *CalcHandler) Convert(w http.ResponseWriter, r *http.Request) {
	v, ok := floats(w, r, "value")
	if !ok {
		return
	}
	from, err := brewcalc.ParseUnit(r.URL.Query().Get("from"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	to, err := brewcalc.ParseUnit(r.URL.Query().Get("to"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	result, err := brewcalc.Convert(v[0], from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, valueResponse{Value: result, Unit: string(to)})
}

// ABV handles /calc/abv?og=&fg=&unit=, unit defaulting to plato
func (h *CalcHandler) ABV(w http.ResponseWriter, r *http.Request) {
	v, ok := floats(w, r, "og", "fg")
	if !ok {
		return
	}
	unit, err := unitParam(r, "unit", brewcalc.UnitPlato)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	abv, err := brewcalc.ABV(v[0], v[1], unit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, valueResponse{Value: abv, Unit: "%vol"})
}

// Priming handles /calc/priming?temp=&co2=&kind=&og=&fg=
func (h *CalcHandler) Priming(w http.ResponseWriter, r *http.Request) {
	v, ok := floats(w, r, "temp", "co2", "og", "fg")
	if !ok {
		return
	}
	kind := brewcalc.PrimingSucrose
	if raw := r.URL.Query().Get("kind"); raw != "" {
		k, err := brewcalc.ParsePrimingKind(raw)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		kind = k
	}

	result, err := brewcalc.PrimingSugar(v[0], v[1], kind, v[2], v[3])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *CalcHandler) Presets(w http.ResponseWriter, r *http.Request) {
	presets, err := brewcalc.Presets()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, presets)
}

// HopAmount handles /calc/hops?amount=&originalAA=&actualAA=
func (h *CalcHandler) HopAmount(w http.ResponseWriter, r *http.Request) {
	v, ok := floats(w, r, "amount", "originalAA", "actualAA")
	if !ok {
		return
	}
	amount, err := brewcalc.AdjustHopAmount(v[0], v[1], v[2])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, valueResponse{Value: amount, Unit: "g"})
}

// Temperature handles /calc/temperature?plato=&calTemp=&measTemp=
func (h *CalcHandler) Temperature(w http.ResponseWriter, r *http.Request) {
	v, ok := floats(w, r, "plato", "calTemp", "measTemp")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, valueResponse{
		Value: brewcalc.CorrectPlatoTemp(v[0], v[1], v[2]),
		Unit:  string(brewcalc.UnitPlato),
	})
}

// Dilution handles /calc/dilution?og=&volume=&target=
func (h *CalcHandler) Dilution(w http.ResponseWriter, r *http.Request) {
	v, ok := floats(w, r, "og", "volume", "target")
	if !ok {
		return
	}
	water, err := brewcalc.DilutionVolume(v[0], v[1], v[2])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, valueResponse{Value: water, Unit: "L"})
}
