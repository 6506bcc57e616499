// Package main provides the main entry point for the PingFlow ping scheduling engine
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/emalab/pingflow/app/handlers"
	"github.com/emalab/pingflow/app/middleware"
	"github.com/emalab/pingflow/app/router"
	"github.com/emalab/pingflow/app/services"
	businessflow "github.com/emalab/pingflow/business_flow"
	"github.com/emalab/pingflow/config"
	_ "github.com/emalab/pingflow/docs"
	"github.com/emalab/pingflow/repository"
	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/emalab/pingflow/models"
	"github.com/emalab/pingflow/utils"

	"github.com/emalab/pingflow/app/scheduler"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting PingFlow application...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pooling
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the Cache client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	if client == nil {
		return func() {}
	}
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeMessageSender selects the delivery channel for ping messages
func initializeMessageSender(cfg *config.ProductionConfig) (services.MessageSender, error) {
	if !cfg.Telegram.Enabled {
		log.Println("Telegram delivery disabled, pings will be logged instead of sent")
		return services.NewMockMessageSender(), nil
	}

	sender, err := services.NewTelegramSender(cfg.Telegram.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telegram sender: %w", err)
	}

	log.Printf("Telegram sender initialized for bot %s", cfg.Telegram.BotName)
	return sender, nil
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}

	cancel := startCacheHealthMonitor(context.Background(), rc, cfg.Cache.CleanupInterval)
	stopFuncs = append(stopFuncs, cancel)

	// Seed the bootstrap researcher account using config
	if err := ensureAdminAccount(db, cfg); err != nil {
		return nil, err
	}

	// Initialize repositories
	accountRepo := repository.NewAccountRepository(db)
	studyRepo := repository.NewStudyRepository(db)
	memberRepo := repository.NewStudyMemberRepository(db)
	templateRepo := repository.NewPingTemplateRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	pingRepo := repository.NewPingRepository(db)
	runRepo := repository.NewScheduleRunRepository(db)

	// Initialize services
	sender, err := initializeMessageSender(cfg)
	if err != nil {
		return nil, err
	}

	// Initialize token service
	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	// Log that services are initialized
	log.Printf("Token service initialized with issuer: %s, audience: %s", cfg.JWT.Issuer, cfg.JWT.Audience)

	// Initialize flows
	materializeFlow := businessflow.NewMaterializeFlow(
		enrollmentRepo,
		templateRepo,
		pingRepo,
		db,
		businessflow.UniformPicker,
	)

	studyFlow := businessflow.NewStudyFlow(
		studyRepo,
		memberRepo,
		accountRepo,
		db,
	)

	templateFlow := businessflow.NewPingTemplateFlow(
		studyRepo,
		memberRepo,
		templateRepo,
		pingRepo,
		db,
	)

	enrollmentFlow := businessflow.NewEnrollmentFlow(
		studyRepo,
		memberRepo,
		enrollmentRepo,
		pingRepo,
		materializeFlow,
		db,
	)

	participantFlow := businessflow.NewParticipantFlow(
		studyRepo,
		enrollmentRepo,
		pingRepo,
		materializeFlow,
		rc,
		&cfg.Cache,
		&cfg.Telegram,
		&cfg.Engine,
		db,
	)

	botFlow := businessflow.NewBotFlow(
		studyRepo,
		enrollmentRepo,
		pingRepo,
		rc,
		&cfg.Cache,
		&cfg.Engine,
		db,
	)

	pingFlow := businessflow.NewPingFlow(
		studyRepo,
		memberRepo,
		pingRepo,
		db,
	)

	deliveryFlow := businessflow.NewPingDeliveryFlow(
		pingRepo,
		sender,
		&cfg.Engine,
		cfg.Scheduler.DispatchBatchSize,
	)

	// Initialize handlers
	studyHandler := handlers.NewStudyHandler(studyFlow)
	templateHandler := handlers.NewPingTemplateHandler(templateFlow)
	enrollmentHandler := handlers.NewEnrollmentHandler(enrollmentFlow)
	pingHandler := handlers.NewPingHandler(pingFlow)
	participantHandler := handlers.NewParticipantHandler(participantFlow)
	botHandler := handlers.NewBotHandler(botFlow)

	// Initialize auth middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenService, cfg.Telegram.APISecretKey)

	// Initialize router
	appRouter := router.NewFiberRouter(
		cfg,
		studyHandler,
		templateHandler,
		enrollmentHandler,
		pingHandler,
		participantHandler,
		botHandler,
		authMiddleware,
	)

	if cfg.Scheduler.Enabled {
		// Start the materialization sweep and dispatch/reminder loops
		sched := scheduler.NewPingScheduler(materializeFlow, deliveryFlow, runRepo, rc, cfg.Scheduler, cfg.Cache, cfg.Logging)
		stopScheduler := sched.Start(context.Background())
		stopFuncs = append(stopFuncs, stopScheduler)
	}

	// Create application struct from FiberRouter
	fiberRouter := appRouter.(*router.FiberRouter)
	application := &Application{
		router:    fiberRouter,
		config:    cfg,
		server:    fiberRouter.GetApp(),
		stopFuncs: stopFuncs,
	}

	return application, nil
}

// ensureAdminAccount creates the researcher account named in config when it
// does not exist yet. Studies are invite-only, so a fresh deployment needs at
// least one account able to sign in and create them.
func ensureAdminAccount(db *gorm.DB, cfg *config.ProductionConfig) error {
	if cfg.Admin.Email == "" {
		return nil
	}

	accountRepo := repository.NewAccountRepository(db)

	existing, err := accountRepo.ByEmail(context.Background(), cfg.Admin.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	cost := cfg.Security.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Admin.Password), cost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	account := models.Account{
		Email:        cfg.Admin.Email,
		PasswordHash: string(hash),
		FirstName:    cfg.Admin.FirstName,
		LastName:     cfg.Admin.LastName,
		CreatedAt:    utils.UTCNow(),
		UpdatedAt:    utils.UTCNow(),
	}
	if err := accountRepo.Save(context.Background(), &account); err != nil {
		return err
	}

	log.Printf("Seeded researcher account %s", cfg.Admin.Email)
	return nil
}
