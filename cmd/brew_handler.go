package main

import (
	"net/http"
	"strconv"

	"brewdayService/internal/brewday"
	"brewdayService/internal/recipe"

	"github.com/go-chi/chi/v5"
)

// BrewHandler drives a recipe's brew day
type BrewHandler struct {
	runner  *brewday.Runner
	recipes recipe.Repository
}

func NewBrewHandler(runner *brewday.Runner, recipes recipe.Repository) *BrewHandler {
	return &BrewHandler{runner: runner, recipes: recipes}
}

func (h *BrewHandler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.recipes.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recipes)
}

func (h *BrewHandler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	rec, err := h.recipes.Get(r.Context(), chi.URLParam(r, "recipeID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// StartMashStep starts the rest given by the step path parameter, counted
// from 0
func (h *BrewHandler) StartMashStep(w http.ResponseWriter, r *http.Request) {
	step, err := strconv.Atoi(chi.URLParam(r, "step"))
	if err != nil || step < 0 {
		writeError(w, http.StatusBadRequest, "Validation error", "step must be a non-negative number")
		return
	}

	status, err := h.runner.StartMashStep(r.Context(), chi.URLParam(r, "recipeID"), step)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *BrewHandler) NextMashStep(w http.ResponseWriter, r *http.Request) {
	status, err := h.runner.NextMashStep(r.Context(), chi.URLParam(r, "recipeID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *BrewHandler) ResetMash(w http.ResponseWriter, r *http.Request) {
	if err := h.runner.ResetMash(r.Context(), chi.URLParam(r, "recipeID")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StartBoil starts the boil. ?targetSize= scales the hop amounts to a
// batch of that many litres.
func (h *BrewHandler) StartBoil(w http.ResponseWriter, r *http.Request) {
	targetSize, err := queryFloat(r, "targetSize")
	if err != nil {
		writeDomainError(w, err)
		return
	}

	status, err := h.runner.StartBoil(r.Context(), chi.URLParam(r, "recipeID"), targetSize)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *BrewHandler) ToggleBoil(w http.ResponseWriter, r *http.Request) {
	targetSize, err := queryFloat(r, "targetSize")
	if err != nil {
		writeDomainError(w, err)
		return
	}

	status, err := h.runner.ToggleBoil(r.Context(), chi.URLParam(r, "recipeID"), targetSize)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *BrewHandler) ResetBoil(w http.ResponseWriter, r *http.Request) {
	if err := h.runner.ResetBoil(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
