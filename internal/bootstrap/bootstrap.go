package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/swimdesk/internal/app/auth"
	appControllers "github.com/yigit/swimdesk/internal/app/controllers"
	appMigrations "github.com/yigit/swimdesk/internal/app/migrations"
	appRepos "github.com/yigit/swimdesk/internal/app/repositories"
	appRoutes "github.com/yigit/swimdesk/internal/app/routes"
	appServices "github.com/yigit/swimdesk/internal/app/services"
	"github.com/yigit/swimdesk/internal/config"
	"github.com/yigit/swimdesk/internal/db"
	"github.com/yigit/swimdesk/internal/domain"
	appMiddleware "github.com/yigit/swimdesk/internal/middleware"
	pkgAuth "github.com/yigit/swimdesk/internal/pkg/auth"
	"github.com/yigit/swimdesk/internal/pkg/cache"
	"github.com/yigit/swimdesk/internal/pkg/events"
	"github.com/yigit/swimdesk/internal/pkg/helpers"
	"github.com/yigit/swimdesk/internal/pkg/logger"
	"github.com/yigit/swimdesk/internal/pkg/metrics"
	"github.com/yigit/swimdesk/internal/pkg/validation"
	"github.com/yigit/swimdesk/internal/pkg/websocket"
	"github.com/yigit/swimdesk/internal/seed"
)

// DefaultConfigPath is where the YAML configuration is looked up
var DefaultConfigPath = filepath.Join("configs", "config.yaml")

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	Services       *appServices.Services
	Handlers       appRoutes.Handlers
	AuthMiddleware *appMiddleware.AuthMiddleware
	JWTService     *pkgAuth.JWTService
	AuthzService   *appAuth.AuthorizationService
	Hub            *websocket.Hub
	Publisher      events.Publisher
	RedisClient    *redis.Client
	Logger         zerolog.Logger
}

// Close releases the broker and cache connections
func (d *Dependencies) Close() error {
	var errs []error
	if d.Publisher != nil {
		errs = append(errs, d.Publisher.Close())
	}
	if d.RedisClient != nil {
		errs = append(errs, d.RedisClient.Close())
	}
	return errors.Join(errs...)
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.ConfigFromStrings(cfg.Logging.Level, cfg.Logging.Format))
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and seeds the admin.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	if err := RunMigrations(ctx, database, cfg.Database.MigrationsDir, lgr); err != nil {
		database.Close()
		return nil, err
	}

	account := seed.AdminAccount{
		Email:     cfg.Admin.Email,
		Password:  cfg.Admin.Password,
		FirstName: cfg.Admin.FirstName,
		LastName:  cfg.Admin.LastName,
	}
	if err := seed.CreateDefaultAdmin(ctx, appRepos.NewUserRepository(database.Pool), account, lgr); err != nil {
		// The API still serves existing accounts without a seeded admin
		lgr.Error().Err(err).Msg("Failed to create default admin, proceeding anyway...")
	}

	return database, nil
}

// RunMigrations applies every pending SQL file in dir
func RunMigrations(ctx context.Context, database *db.PostgresDB, dir string, lgr zerolog.Logger) error {
	lgr.Info().Str("path", dir).Msg("Running database migrations...")

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		lgr.Error().Str("path", dir).Msg("Migrations directory not found")
		return fmt.Errorf("migrations directory not found at %s: %w", dir, err)
	}

	applied, err := appMigrations.NewMigrator(database.Pool).MigrateFromDirectory(ctx, dir)
	if err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}

	lgr.Info().Int("applied", applied).Msg("Database migrations successfully applied.")
	return nil
}

// setupUsageCache connects to redis when enabled. Any failure falls back to no caching.
func setupUsageCache(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (cache.UsageCache, *redis.Client) {
	if !cfg.Redis.Enabled {
		lgr.Info().Msg("Usage cache disabled")
		return cache.NoopUsageCache{}, nil
	}

	client, err := cache.NewRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		lgr.Warn().Err(err).Msg("Redis unavailable, usage cache disabled")
		return cache.NoopUsageCache{}, nil
	}

	ttl := helpers.ParseDuration(cfg.Redis.UsageTTL, 5*time.Minute)
	lgr.Info().Dur("ttl", ttl).Msg("Redis usage cache enabled")
	return cache.NewRedisUsageCache(client, ttl), client
}

// setupPublisher connects to RabbitMQ when enabled. Any failure falls back to dropping events.
func setupPublisher(cfg *config.Config, lgr zerolog.Logger) events.Publisher {
	if !cfg.RabbitMQ.Enabled {
		lgr.Info().Msg("Enrollment events disabled")
		return events.NoopPublisher{}
	}

	publisher, err := events.NewRabbitPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
	if err != nil {
		lgr.Warn().Err(err).Msg("RabbitMQ unavailable, enrollment events disabled")
		return events.NoopPublisher{}
	}
	return publisher
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	if err := validation.RegisterWithGin(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	location, err := time.LoadLocation(cfg.Roster.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid roster timezone: %w", err)
	}

	deps := &Dependencies{Logger: lgr}
	deps.Repos = appRepos.NewRepositories(database.Pool)
	repos := deps.Repos

	usageCache, redisClient := setupUsageCache(ctx, cfg, lgr)
	deps.RedisClient = redisClient
	deps.Publisher = setupPublisher(cfg, lgr)
	deps.Hub = websocket.NewHub(lgr.With().Str("component", "websocket").Logger())

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})
	deps.AuthzService = appAuth.NewAuthorizationService(repos.UserRepository, repos.SessionRepository)

	defaultRatio := domain.ClassRatio(cfg.Capacity.DefaultClassRatio)
	svc := &appServices.Services{}
	svc.AuthService = appServices.NewAuthService(repos.UserRepository, repos.TokenRepository, deps.JWTService, lgr)
	svc.OfferingService = appServices.NewOfferingService(repos.OfferingRepository, appServices.CapacityDefaults{
		BaseCapacity: cfg.Capacity.DefaultBaseCapacity,
		ClassRatio:   defaultRatio,
	}, lgr)
	svc.InstructorService = appServices.NewInstructorService(repos.InstructorRepository, lgr)
	svc.SwimmerService = appServices.NewSwimmerService(repos.SwimmerRepository, lgr)
	svc.SessionService = appServices.NewSessionService(
		database,
		repos.SessionRepository,
		repos.OfferingRepository,
		repos.InstructorRepository,
		repos.EnrollmentRepository,
		usageCache,
		deps.Hub,
		lgr,
	)
	svc.EnrollmentService = appServices.NewEnrollmentService(
		database,
		repos.SessionRepository,
		repos.SwimmerRepository,
		repos.EnrollmentRepository,
		repos.PaymentRepository,
		usageCache,
		deps.Publisher,
		deps.Hub,
		defaultRatio,
		lgr,
	)
	svc.RosterService = appServices.NewRosterService(repos.SessionRepository, repos.EnrollmentRepository, location, lgr)
	svc.PaymentService = appServices.NewPaymentService(repos.PaymentRepository, repos.EnrollmentRepository, lgr)
	deps.Services = svc

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.AuthzService)

	deps.Handlers = appRoutes.Handlers{
		Auth:       appControllers.NewAuthController(svc.AuthService, lgr),
		Offering:   appControllers.NewOfferingController(svc.OfferingService, lgr),
		Instructor: appControllers.NewInstructorController(svc.InstructorService, lgr),
		Swimmer:    appControllers.NewSwimmerController(svc.SwimmerService, lgr),
		Session:    appControllers.NewSessionController(svc.SessionService, lgr),
		Enrollment: appControllers.NewEnrollmentController(svc.EnrollmentService, lgr),
		Roster:     appControllers.NewRosterController(svc.RosterService, lgr),
		Payment:    appControllers.NewPaymentController(svc.PaymentService, lgr),
		Websocket:  websocket.NewHandler(deps.Hub, svc.SessionService.LookupUsage, appMiddleware.HandleAPIError, lgr),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		appMiddleware.RequestID(),
		appMiddleware.RequestLogger(),
		metrics.Middleware(),
	)

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Handlers, deps.AuthMiddleware)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
