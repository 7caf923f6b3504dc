package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/testhall/config"
	adminctrl "github.com/lshigami/testhall/internal/controller/admin"
	satctrl "github.com/lshigami/testhall/internal/controller/sat"
	userctrl "github.com/lshigami/testhall/internal/controller/user"
	"github.com/lshigami/testhall/internal/database"
	"github.com/lshigami/testhall/internal/event"
	"github.com/lshigami/testhall/internal/logger"
	"github.com/lshigami/testhall/internal/middleware"
	"github.com/lshigami/testhall/internal/model"
	"github.com/lshigami/testhall/internal/repository"
	"github.com/lshigami/testhall/internal/server"
	"github.com/lshigami/testhall/internal/service"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Testhall API
// @version 1.0
// @description Test taking backend: eligibility, grading, attempts, suspend/resume and sectioned SAT scoring.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()

	app := fx.New(
		// Core Application Components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase, // Provides *gorm.DB
			server.NewGinEngine,
			middleware.NewAuthMiddleware,
			NewPublisher,
			service.SystemClock,
		),

		// Repositories Layer
		fx.Provide(
			repository.NewTestRepository,
			repository.NewQuestionRepository,
			repository.NewTestAttemptRepository,
			repository.NewAnswerRepository,
			repository.NewSuspendRepository,
			repository.NewLockRepository,
			repository.NewGroupRepository,
			repository.NewSatTestRepository,
			repository.NewSatAttemptRepository,
			repository.NewDeadlineRepository,
		),

		// Services Layer
		fx.Provide(
			service.NewAdminTestService,
			service.NewDeadlineService,
			service.NewUserTestService,
			service.NewTestSubmissionService,
			service.NewSuspendService,
			service.NewSatSubmissionService,
			service.NewGeminiLLMService,
			service.NewFeedbackService,
		),

		// API Controllers Layer
		fx.Provide(
			adminctrl.NewAdminTestController,
			userctrl.NewUserTestController,
			satctrl.NewSatTestController,
		),

		fx.Invoke(ConfigureLogger),
		fx.Invoke(AutoMigrateDB),
		fx.Invoke(server.RegisterRoutes),
		fx.Invoke(StartServer),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	// Wait for a shutdown signal
	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
	stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("Failed to stop application cleanly")
	}
}

func ConfigureLogger(cfg *config.Config) {
	logger.Configure(cfg.Log.Level, cfg.Log.Pretty)
}

// NewPublisher connects the submission event publisher and closes it on stop.
func NewPublisher(lc fx.Lifecycle, cfg *config.Config) (event.Publisher, error) {
	publisher, err := event.NewEventPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return publisher.Close()
		},
	})
	return publisher, nil
}

// StartServer manages the HTTP server lifecycle.
func StartServer(lc fx.Lifecycle, router *gin.Engine, cfg *config.Config) {
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Testhall API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	if err := db.AutoMigrate(model.Models()...); err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
