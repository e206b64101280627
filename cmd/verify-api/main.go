package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	verify "github.com/goliatone/go-verify"
)

func main() {
	cfg, err := verify.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	db, err := openDB(cfg.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := verify.EnsureSchema(ctx, db); err != nil {
		log.Fatal(err)
	}

	repos := verify.NewRepositoryManager(db)
	repos.MustValidate()

	created, err := verify.SeedAdmin(ctx, repos.Users(), cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		log.Fatal(err)
	}
	if created {
		log.Printf("seeded default admin account %q, change its password", cfg.AdminUsername)
	}

	tokens := verify.NewTokenService([]byte(cfg.JWTSecret), cfg.TokenExpirationHours, "verify-api")
	guard := verify.NewGuard(tokens, nil)

	activity := verify.NewQueuedSink(repos.Activity(), nil, 0)
	defer activity.Close()

	auther := verify.NewAuthenticator(repos.Users(), tokens).
		WithActivitySink(activity)

	verifications := verify.NewVerificationService(repos.Verifications()).
		WithActivitySink(activity)

	userAdmin := verify.NewUserAdmin(repos.Users()).
		WithActivitySink(activity)

	app := verify.NewApp(verify.AppDeps{
		Guard:           guard,
		Auth:            auther,
		Verifications:   verifications,
		Users:           userAdmin,
		Activity:        repos.Activity(),
		Analytics:       verify.NewAnalytics(db),
		RateLimitMax:    cfg.RateLimitMax,
		RateLimitWindow: cfg.RateLimitWindow,
		StaticDir:       cfg.StaticDir,
	})

	go func() {
		if err := app.Listen(cfg.Addr()); err != nil {
			log.Fatal(err)
		}
	}()

	log.Printf("listening on %s", cfg.Addr())

	waitExitSignal()

	if err := app.Shutdown(); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

func openDB(path string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, path)
	if err != nil {
		return nil, err
	}

	if _, err := sqldb.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

func waitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
