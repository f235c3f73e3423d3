package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"brewdayService/internal/auth"
	"brewdayService/internal/brewday"
	"brewdayService/internal/clock"
	"brewdayService/internal/recipe"

	"github.com/jackc/pgx/v5/pgxpool"
)

const shutdownTimeout = 5 * time.Second

type Config struct {
	Registry *clock.Registry
	Runner   *brewday.Runner
	Recipes  recipe.Repository
	AuthRepo auth.AuthRepository
	JWT      *auth.JWTManager
}

// durableStore is what timer persistence and the run log need from a store
type durableStore interface {
	clock.KVStore
	clock.RunRecorder
}

type schemaOwner interface {
	EnsureSchema(ctx context.Context) error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings, err := loadSettings()
	if err != nil {
		log.Panic(err)
	}

	store := openStore(ctx, settings.RedisAddr)
	persistence := clock.NewPersistenceManager(store)

	conn := connectToDB(settings.DSN)
	if conn != nil {
		defer conn.Close()
	}
	recipes, authRepo := setupRepos(ctx, conn)

	if settings.RecipesFile != "" {
		n, err := recipe.Seed(ctx, recipes, settings.RecipesFile)
		if err != nil {
			log.Printf("⚠️ Failed to seed recipes from %s: %v", settings.RecipesFile, err)
		} else {
			log.Printf("📖 Seeded %d recipes from %s", n, settings.RecipesFile)
		}
	}

	realClock := clock.NewRealClock()
	scheduler := clock.NewScheduler(newNotifier(settings.Notifications), realClock)
	scheduler.Setup(ctx)

	registry := clock.NewRegistry(
		clock.NewTimer(clock.KindMash, realClock, persistence),
		clock.NewTimer(clock.KindBoil, realClock, persistence),
		scheduler,
		store,
	)
	for _, result := range registry.Restore(ctx, clock.NewResumeManager(persistence, realClock)) {
		log.Printf("🔄 Restored %s timer: %s (expired while down: %v)", result.Kind, result.Status, result.Expired)
	}

	jwtManager := auth.NewJWTManager(settings.JWTSecret)
	if !jwtManager.Enabled() {
		log.Printf("⚠️ JWT_SECRET not set, timer routes are open")
	}

	app := Config{
		Registry: registry,
		Runner:   brewday.NewRunner(registry, recipes),
		Recipes:  recipes,
		AuthRepo: authRepo,
		JWT:      jwtManager,
	}

	go registry.Run(ctx, time.Second)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", settings.WebPort),
		Handler: app.routes(),
	}

	go func() {
		<-ctx.Done()
		log.Printf("Shutting down brewday service")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("⚠️ Server shutdown failed: %v", err)
		}
	}()

	log.Printf("Starting brewday service on port %s\n", settings.WebPort)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Panic(err)
	}

	if err := persistence.Close(); err != nil {
		log.Printf("⚠️ Failed to close timer store: %v", err)
	}
}

// openStore connects to Redis, falling back to an in-memory store
func openStore(ctx context.Context, redisAddr string) durableStore {
	if redisAddr == "" {
		log.Printf("No REDIS_ADDR configured, timer state is kept in memory")
		return clock.NewMemoryStore()
	}

	store, err := clock.NewRedisStore(ctx, redisAddr)
	if err != nil {
		log.Printf("Warning: failed to initialize Redis persistence, falling back to in-memory: %v", err)
		return clock.NewMemoryStore()
	}
	return store
}

func setupRepos(ctx context.Context, conn *pgxpool.Pool) (recipe.Repository, auth.AuthRepository) {
	recipes := recipe.NewRepository(conn)
	authRepo := auth.NewAuthRepository(conn)

	for _, repo := range []any{recipes, authRepo} {
		owner, ok := repo.(schemaOwner)
		if !ok {
			continue
		}
		if err := owner.EnsureSchema(ctx); err != nil {
			log.Panicf("failed to create schema: %v", err)
		}
	}
	return recipes, authRepo
}

func newNotifier(mode string) clock.Notifier {
	switch mode {
	case "off":
		log.Printf("Notifications disabled")
		return clock.NoopNotifier{}
	case "log":
		return clock.NewLogNotifier()
	default:
		log.Printf("⚠️ Unknown NOTIFICATIONS mode %q, using log", mode)
		return clock.NewLogNotifier()
	}
}
