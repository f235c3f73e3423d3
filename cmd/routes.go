package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (app *Config) routes() http.Handler {
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	mux.Use(middleware.Heartbeat("/ping"))

	timerHandler := NewTimerHandler(app.Registry)
	brewHandler := NewBrewHandler(app.Runner, app.Recipes)
	calcHandler := NewCalcHandler()
	authHandler := NewAuthHandler(app.AuthRepo, app.JWT)

	// Authentication routes
	mux.Post("/auth/register", authHandler.RegisterUser)
	mux.Post("/auth/login", authHandler.LoginUser)
	mux.With(app.JWT.RequireToken).Get("/auth/profile", authHandler.GetProfile)

	// Timer control surface; reads are open, changes need a token
	mux.Get("/timers", timerHandler.ListTimers)
	mux.Get("/timers/{kind}", timerHandler.GetTimer)
	mux.Group(func(r chi.Router) {
		r.Use(app.JWT.RequireToken)
		r.Post("/timers/stop-all", timerHandler.StopAll)
		r.Post("/timers/{kind}/start", timerHandler.StartTimer)
		r.Post("/timers/{kind}/pause", timerHandler.PauseTimer)
		r.Post("/timers/{kind}/resume", timerHandler.ResumeTimer)
		r.Post("/timers/{kind}/reset", timerHandler.ResetTimer)
	})

	// Brew day
	mux.Get("/recipes", brewHandler.ListRecipes)
	mux.Get("/recipes/{recipeID}", brewHandler.GetRecipe)
	mux.Route("/brew/{recipeID}", func(r chi.Router) {
		r.Use(app.JWT.RequireToken)
		r.Post("/mash/next", brewHandler.NextMashStep)
		r.Post("/mash/reset", brewHandler.ResetMash)
		r.Post("/mash/{step}", brewHandler.StartMashStep)
		r.Post("/boil", brewHandler.StartBoil)
		r.Post("/boil/toggle", brewHandler.ToggleBoil)
		r.Post("/boil/reset", brewHandler.ResetBoil)
	})

	// Calculators
	mux.Route("/calc", func(r chi.Router) {
		r.Get("/convert", calcHandler.Convert)
		r.Get("/abv", calcHandler.ABV)
		r.Get("/priming", calcHandler.Priming)
		r.Get("/presets", calcHandler.Presets)
		r.Get("/hops", calcHandler.HopAmount)
		r.Get("/temperature", calcHandler.Temperature)
		r.Get("/dilution", calcHandler.Dilution)
	})

	return mux
}
