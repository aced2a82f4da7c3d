package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/kgarud95/LearningX-version-10/api/swagger"
	"github.com/kgarud95/LearningX-version-10/internal/handler"
	"github.com/kgarud95/LearningX-version-10/internal/middleware"
	"github.com/kgarud95/LearningX-version-10/internal/repository"
	"github.com/kgarud95/LearningX-version-10/internal/service"
	"github.com/kgarud95/LearningX-version-10/pkg/cache"
	"github.com/kgarud95/LearningX-version-10/pkg/config"
	"github.com/kgarud95/LearningX-version-10/pkg/database"
	"github.com/kgarud95/LearningX-version-10/pkg/logger"
	corsmiddleware "github.com/kgarud95/LearningX-version-10/pkg/middleware/cors"
	reqidmiddleware "github.com/kgarud95/LearningX-version-10/pkg/middleware/requestid"
)

// @title LearningX API
// @version 1.0.0
// @description Online learning platform backend
// @BasePath /api
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, catalog cache disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:    cfg.JWT.Secret,
		Algorithm: cfg.JWT.Algorithm,
		Expiry:    cfg.JWT.Expiration,
	})

	identityClient := &http.Client{Timeout: cfg.Identity.HTTPTimeout}
	identitySvc := service.NewIdentityService(userRepo, identityClient, validate, logr, service.IdentityConfig{
		EmergentSessionURL: cfg.Identity.EmergentSessionURL,
		GoogleClientID:     cfg.OAuth.GoogleClientID,
		GoogleClientSecret: cfg.OAuth.GoogleClientSecret,
		GoogleTokenURL:     cfg.OAuth.GoogleTokenURL,
		GoogleUserInfoURL:  cfg.OAuth.GoogleUserInfoURL,
	})

	sessionSvc := service.NewSessionService(sessionRepo, logr, cfg.Sessions.TTL)
	courseSvc := service.NewCourseService(courseRepo, userRepo, cacheRepo, cfg.Catalog.CacheTTL, metricsSvc, validate, logr)
	curriculumSvc := service.NewCurriculumService(courseRepo, enrollmentRepo, progressRepo, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, courseRepo, logr)
	progressSvc := service.NewProgressService(progressRepo, courseRepo, enrollmentRepo, validate, logr)

	authHandler := handler.NewAuthHandler(authSvc, identitySvc, sessionSvc)
	courseHandler := handler.NewCourseHandler(courseSvc, authSvc)
	curriculumHandler := handler.NewCurriculumHandler(curriculumSvc, authSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc, authSvc)
	progressHandler := handler.NewProgressHandler(progressSvc, authSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/session", authHandler.EmergentSession)
	auth.POST("/google", authHandler.Google)
	auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)

	api.GET("/users/:id", authHandler.GetUser)

	api.GET("/courses", courseHandler.List)
	api.GET("/courses/:id", courseHandler.Get)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))

	protected.POST("/courses", courseHandler.Create)
	protected.PUT("/courses/:id", courseHandler.Update)
	protected.DELETE("/courses/:id", courseHandler.Delete)

	protected.POST("/courses/:id/modules", curriculumHandler.AddModule)
	api.GET("/courses/:id/modules", curriculumHandler.ListModules)
	protected.PUT("/modules/:id", curriculumHandler.UpdateModule)
	protected.DELETE("/modules/:id", curriculumHandler.DeleteModule)

	protected.POST("/modules/:id/lessons", curriculumHandler.AddLesson)
	protected.GET("/lessons/:id", curriculumHandler.GetLesson)
	protected.PUT("/lessons/:id", curriculumHandler.UpdateLesson)
	protected.DELETE("/lessons/:id", curriculumHandler.DeleteLesson)

	protected.GET("/courses/:id/structure", curriculumHandler.Structure)
	protected.GET("/courses/:id/learn", curriculumHandler.Learn)

	protected.POST("/enrollments", enrollmentHandler.Enroll)
	protected.GET("/enrollments", enrollmentHandler.ListOwn)

	protected.POST("/progress", progressHandler.Record)
	protected.GET("/courses/:id/progress", progressHandler.CourseProgress)
	protected.GET("/courses/:id/progress/export", progressHandler.ExportReport)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
