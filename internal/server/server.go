// Package server assembles the gin engine and the API routes.
package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lshigami/testhall/config"
	adminctrl "github.com/lshigami/testhall/internal/controller/admin"
	satctrl "github.com/lshigami/testhall/internal/controller/sat"
	userctrl "github.com/lshigami/testhall/internal/controller/user"
	"github.com/lshigami/testhall/internal/dto"
	"github.com/lshigami/testhall/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

func NewGinEngine(cfg *config.Config) *gin.Engine {
	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(gin.Recovery())

	origins := cfg.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID},
		AllowCredentials: !containsWildcard(origins),
		MaxAge:           12 * time.Hour,
	}))

	// URL: http://localhost:PORT/swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

// RegisterRoutes mounts the health check and the /api/v1 routes.
func RegisterRoutes(
	router *gin.Engine,
	db *gorm.DB,
	auth *middleware.AuthMiddleware,
	adminTestCtrl *adminctrl.AdminTestController,
	userTestCtrl *userctrl.UserTestController,
	satTestCtrl *satctrl.SatTestController,
) {
	router.GET("/healthz", func(ctx *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx.Request.Context())
		}
		if err != nil {
			ctx.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Message: "database unavailable"})
			return
		}
		ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "ok"})
	})

	api := router.Group("/api/v1", auth.RequireAuth())

	// Admin Routes (prefixed with /api/v1/admin)
	adminAPIGroup := api.Group("/admin", middleware.RequireStaff())
	{
		adminAPIGroup.POST("/tests", adminTestCtrl.CreateTest)
		adminAPIGroup.GET("/tests/:test_id/explanations", adminTestCtrl.GetExplanations)
		adminAPIGroup.POST("/sat-tests", adminTestCtrl.CreateSatTest)
		adminAPIGroup.GET("/sat-tests/:id/deadlines", adminTestCtrl.ListDeadlines)
		adminAPIGroup.POST("/deadlines", adminTestCtrl.CreateDeadline)
		adminAPIGroup.PUT("/deadlines/:id", adminTestCtrl.UpdateDeadline)
		adminAPIGroup.DELETE("/deadlines/:id", adminTestCtrl.DeleteDeadline)
	}

	// Test listing, taking and review
	{
		api.GET("/tests", userTestCtrl.GetAllTests)
		api.GET("/tests/:test_id", userTestCtrl.GetTestDetails)
		api.POST("/tests/:test_id/submit", userTestCtrl.SubmitTest)
		api.POST("/tests/:test_id/suspend", userTestCtrl.SuspendTest)
		api.GET("/tests/:test_id/continue", userTestCtrl.ContinueTest)
		api.GET("/tests/:test_id/my-attempts", userTestCtrl.GetUserTestAttempts)
		api.GET("/test-attempts/:attempt_id", userTestCtrl.GetSpecificTestAttemptDetails)
		api.POST("/test-attempts/:attempt_id/feedback", userTestCtrl.RequestWritingFeedback)
	}

	// SAT tests
	{
		api.GET("/satTests/:id", satTestCtrl.GetSatTest)
		api.POST("/satTests/:id/submit", satTestCtrl.SubmitSatTest)
		api.GET("/satAttempts/:attempt_id/user/:user_id/answers", satTestCtrl.GetAttemptAnswers)
	}
}
