package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"calificaciones_app_go/config"
	"calificaciones_app_go/db"
	"calificaciones_app_go/handlers"
	"calificaciones_app_go/logging"
	"calificaciones_app_go/services"
	"calificaciones_app_go/services/jobs"
	"calificaciones_app_go/services/scoring"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.Init(cfg.LogLevel, cfg.Environment)
	if err != nil {
		panic(err)
	}
	defer logger.Closer()
	log := logging.L()

	// Initialize database
	if err := db.Initialize(db.Options{
		Driver:      cfg.DBDriver,
		Path:        cfg.DBPath,
		DatabaseURL: cfg.DatabaseURL,
		Environment: cfg.Environment,
	}); err != nil {
		log.Fatalw("failed to initialize database", "error", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(db.AllModels()...); err != nil {
		log.Fatalw("failed to run migrations", "error", err)
	}

	if cfg.ScoringPolicyPath != "" {
		policy, err := scoring.LoadPolicy(cfg.ScoringPolicyPath)
		if err != nil {
			log.Fatalw("failed to load scoring policy", "path", cfg.ScoringPolicyPath, "error", err)
		}
		services.SetScoringPolicy(policy)
		log.Infow("scoring policy loaded", "path", cfg.ScoringPolicyPath)
	}

	services.InitializeStorage(cfg)
	services.ConfigureNotifications(cfg)

	scheduler, err := jobs.NewScheduler(db.DB, cfg)
	if err != nil {
		log.Fatalw("failed to configure scheduler", "error", err)
	}
	scheduler.Start()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			if v.Error != nil {
				log.Warnw("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency, "error", v.Error)
				return nil
			}
			log.Debugw("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: true,
	}))

	// Make config available to handlers
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})

	handlers.RegisterRoutes(e)

	// Start server
	go func() {
		log.Infow("server starting", "port", cfg.ServerPort, "environment", cfg.Environment)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down")
	<-scheduler.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Errorw("server shutdown failed", "error", err)
	}
}
