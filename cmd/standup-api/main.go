package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dimitrije/standup-api/internal/config"
	"github.com/dimitrije/standup-api/internal/database"
	"github.com/dimitrije/standup-api/internal/handlers"
	authmw "github.com/dimitrije/standup-api/internal/middleware"
	"github.com/dimitrije/standup-api/internal/services"
	"github.com/dimitrije/standup-api/internal/store"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	if cfg.IsProduction() {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}

	documents := store.Store(store.NewPostgres(db))

	// The cache only fronts the team/user read path; standup documents
	// and tokens always go straight to the store so the concurrency
	// protocol never sees a stale read.
	directory := documents
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.WithError(err).Fatal("invalid REDIS_URL")
		}
		directory = store.NewCached(documents, redis.NewClient(opts), cfg.CacheTTL)
	}

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	userService := services.NewUserService(directory)
	teamService := services.NewTeamService(directory, userService, log, cfg.DefaultTeamName, cfg.DefaultCutoff)
	standupService := services.NewStandupService(documents, userService)
	kpiService := services.NewKPIService(documents, standupService)
	tokenService := services.NewTokenService(documents)
	emailService := services.NewEmailService(cfg.SMTP)

	authHandler := handlers.NewAuthHandler(cfg, userService, tokenService, jwtService, emailService, log)
	userHandler := handlers.NewUserHandler(userService)
	teamHandler := handlers.NewTeamHandler(teamService, userService, emailService, log, cfg.FrontendCallbackURL)
	standupHandler := handlers.NewStandupHandler(standupService, teamService, userService, kpiService)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())
	app.Use(authmw.RequestLogger(log))

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/magic-link", authHandler.MagicLink)
	auth.Get("/verify", authHandler.Verify)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/logout", authHandler.Logout)

	protected := api.Group("")
	protected.Use(authmw.Auth(jwtService))

	protected.Post("/auth/logout-all", authHandler.LogoutAll)

	protected.Get("/users/me", userHandler.GetMe)
	protected.Patch("/users/me", userHandler.UpdateMe)
	protected.Post("/users/me/active-team", userHandler.SetActiveTeam)

	protected.Post("/teams", teamHandler.Create)
	protected.Get("/teams/active", teamHandler.Active)
	protected.Post("/teams/join", teamHandler.Join)
	protected.Get("/teams/:id", teamHandler.Get)
	protected.Patch("/teams/:id", teamHandler.Update)
	protected.Get("/teams/:id/members", teamHandler.Members)
	protected.Post("/teams/:id/members", teamHandler.AddMember)
	protected.Delete("/teams/:id/members/:memberId", teamHandler.RemoveMember)
	protected.Post("/teams/:id/join-code", teamHandler.RegenerateJoinCode)
	protected.Post("/teams/:id/leave", teamHandler.Leave)

	protected.Get("/teams/:id/standups", standupHandler.Dates)
	protected.Get("/teams/:id/standups/today", standupHandler.Today)
	protected.Get("/teams/:id/standups/:date", standupHandler.Get)
	protected.Post("/teams/:id/standups/:date", standupHandler.Create)
	protected.Patch("/teams/:id/standups/:date/entries/:userId", standupHandler.UpdateEntry)
	protected.Get("/teams/:id/kpi", standupHandler.KPI)

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		for range ticker.C {
			if err := tokenService.CleanupExpired(context.Background()); err != nil {
				log.WithError(err).Warn("token cleanup failed")
			}
		}
	}()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.WithField("addr", addr).Info("server starting")
		if err := app.Run(addr); err != nil {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
}
