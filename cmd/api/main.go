package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/accountforge/service-identity-go/internal/identity/repo"
	"github.com/accountforge/service-identity-go/internal/router"
	"github.com/accountforge/service-identity-go/internal/token"
	"github.com/accountforge/service-identity-go/pkg/database"
	"github.com/accountforge/service-identity-go/pkg/utilities"
)

func main() {
	// load .env file if present so os.Getenv picks values from it
	// this is best-effort: if no .env exists, continue (use defaults or real env)
	_ = godotenv.Load()

	// init logger
	lg, err := utilities.InitLogger(utilities.LogConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting service-identity")

	// token signing secret is process-wide configuration, loaded once here
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		sugar.Fatal("JWT_SECRET is required")
	}
	ttl := time.Duration(0)
	if env := os.Getenv("TOKEN_TTL_MINUTES"); env != "" {
		parsed, err := time.ParseDuration(env + "m")
		if err != nil {
			sugar.Fatalf("invalid TOKEN_TTL_MINUTES: %v", err)
		}
		ttl = parsed
	}
	tokens := token.NewService(secret, ttl)

	// init db
	cfg := database.ConfigFromEnv()
	sqlDB, err := database.Connect(cfg)
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	// wrap with sqlx for convenience in the repo; closing the wrapper closes
	// the underlying *sql.DB
	sqlxDB := sqlx.NewDb(sqlDB, "postgres")
	defer sqlxDB.Close()

	store := repo.NewUserRepo(sqlxDB)
	if err := store.EnsureTable(context.Background()); err != nil {
		sugar.Fatalf("ensure users table: %v", err)
	}

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}

	// mount http server
	handler := router.RegisterRoutes(sugar, store, tokens)
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: handler,
	}

	// run server in background
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	sugar.Infof("api is listening on port %s", port)

	<-ctx.Done()

	sugar.Info("shutting down")

	// give a short grace period for cleanup
	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
