package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/whopranjalshah/me-api-playground/adapters/event"
	httpAdapter "github.com/whopranjalshah/me-api-playground/adapters/http"
	"github.com/whopranjalshah/me-api-playground/adapters/media_storage"
	"github.com/whopranjalshah/me-api-playground/adapters/persistence"
	"github.com/whopranjalshah/me-api-playground/internal/application/service"
	authUC "github.com/whopranjalshah/me-api-playground/internal/application/usecase/auth"
	backupUC "github.com/whopranjalshah/me-api-playground/internal/application/usecase/backup"
	experienceUC "github.com/whopranjalshah/me-api-playground/internal/application/usecase/experience"
	profileUC "github.com/whopranjalshah/me-api-playground/internal/application/usecase/profile"
	projectUC "github.com/whopranjalshah/me-api-playground/internal/application/usecase/project"
	queryUC "github.com/whopranjalshah/me-api-playground/internal/application/usecase/query"
	"github.com/whopranjalshah/me-api-playground/internal/config"
	"github.com/whopranjalshah/me-api-playground/pkg/auth"
	"github.com/whopranjalshah/me-api-playground/pkg/logger"
	"github.com/whopranjalshah/me-api-playground/pkg/tracing"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		panic("cannot load config: " + err.Error())
	}

	log := logger.NewZapLogger(cfg.App.Env, cfg.App.LogLevel)
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", err)
	}
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.Jaeger.OTLPEndpoint != "" {
		tp, err := tracing.NewTracerProvider(cfg, log, "profile-api")
		if err != nil {
			log.Fatal("Cannot init tracer", err)
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				log.Error("Failed to shutdown tracer provider", err)
			}
		}()
	}

	dbPool, err := persistence.NewPostgresPool(cfg, log)
	if err != nil {
		log.Fatal("Cannot connect Postgres", err)
	}
	defer dbPool.Close()

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = persistence.NewRedisClient(cfg, log)
		if err != nil {
			log.Warn("Redis unavailable, rate limits are kept in memory", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	var publisher service.EventPublisher = event.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.Brokers[0] != "" {
		kafkaClient, err := event.NewKafkaProducerClient(cfg, log)
		if err != nil {
			log.Fatal("Cannot init Kafka", err)
		}
		defer kafkaClient.Close()
		publisher = kafkaClient
	} else {
		log.Info("No Kafka brokers configured, profile events are dropped")
	}

	// Repositories
	userRepo := persistence.NewPostgresUserRepo(dbPool)
	profileRepo := persistence.NewPostgresProfileRepo(dbPool, log)
	projectRepo := persistence.NewPostgresProjectRepo(dbPool, log)
	experienceRepo := persistence.NewPostgresExperienceRepo(dbPool, log)
	searchRepo := persistence.NewPostgresSearchRepo(dbPool, log)

	// Services
	jwtSvc, err := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan, cfg.Auth.Issuer)
	if err != nil {
		log.Fatal("Cannot init JWT service", err)
	}

	var backupUseCase *backupUC.BackupUseCase
	if cfg.Cloudinary.CloudName != "" {
		uploader, err := media_storage.NewCloudinaryAdapter(cfg, log)
		if err != nil {
			log.Fatal("Failed to initialize uploader", err)
		}
		backupUseCase = backupUC.NewBackupUseCase(cfg.DB.DSN, backupUC.PgDump, uploader, log)
	}

	// Use Cases
	loginUseCase := authUC.NewLoginUseCase(authUC.NewUserCredentialPolicy(userRepo), jwtSvc, log)
	createProfileUseCase := profileUC.NewCreateProfileUseCase(profileRepo, publisher, log)
	getProfileUseCase := profileUC.NewGetProfileUseCase(profileRepo)
	listProfilesUseCase := profileUC.NewListProfilesUseCase(profileRepo)
	updateProfileUseCase := profileUC.NewUpdateProfileUseCase(profileRepo, publisher, log)
	deleteProfileUseCase := profileUC.NewDeleteProfileUseCase(profileRepo, publisher, log)
	createProjectUseCase := projectUC.NewCreateProjectUseCase(projectRepo, publisher, log)
	getProjectUseCase := projectUC.NewGetProjectUseCase(projectRepo)
	updateProjectUseCase := projectUC.NewUpdateProjectUseCase(projectRepo, publisher, log)
	deleteProjectUseCase := projectUC.NewDeleteProjectUseCase(projectRepo, publisher, log)
	experienceUseCase := experienceUC.NewExperienceUseCase(experienceRepo, publisher, log)
	queryUseCase := queryUC.NewQueryUseCase(searchRepo, log)

	// HTTP Handlers
	handlers := httpAdapter.Handlers{
		Auth: httpAdapter.NewAuthHandler(loginUseCase, log),
		Profile: httpAdapter.NewProfileHandler(
			createProfileUseCase,
			getProfileUseCase,
			listProfilesUseCase,
			updateProfileUseCase,
			deleteProfileUseCase,
			log,
		),
		Project: httpAdapter.NewProjectHandler(
			createProjectUseCase,
			getProjectUseCase,
			updateProjectUseCase,
			deleteProjectUseCase,
			log,
		),
		Experience: httpAdapter.NewExperienceHandler(experienceUseCase),
		Query:      httpAdapter.NewQueryHandler(queryUseCase),
		Health:     httpAdapter.NewHealthHandler(dbPool, log),
		Backup:     httpAdapter.NewBackupHandler(backupUseCase),
	}

	// Middleware
	authMiddleware := httpAdapter.AuthMiddleware(jwtSvc, log)
	limiterStore, err := httpAdapter.NewRateLimitStore(redisClient)
	if err != nil {
		log.Fatal("Cannot init rate limiter store", err)
	}
	loginLimiter := httpAdapter.RateLimitMiddleware(limiterStore, cfg.RateLimit.Login, cfg.RateLimit.Period, log)

	policy := httpAdapter.OriginPolicy{
		AllowedOrigins: cfg.HTTP.CORSOrigins,
		TrustedHosts:   cfg.HTTP.TrustedHosts,
	}
	log.Info("HTTP origin policy",
		zap.Strings("cors_origins", policy.AllowedOrigins),
		zap.Strings("trusted_hosts", policy.TrustedHosts))

	router := httpAdapter.NewRouter(handlers, authMiddleware, loginLimiter, policy, log)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server running", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Cannot run server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", err)
	}
}
