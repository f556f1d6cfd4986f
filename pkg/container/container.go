package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/crypto/bcrypt"

	"wavehouse-backend/internal/config"
	adminHandler "wavehouse-backend/internal/domains/admin/handler"
	adminService "wavehouse-backend/internal/domains/admin/service"
	bookingHandler "wavehouse-backend/internal/domains/booking/handler"
	"wavehouse-backend/internal/domains/booking/notifier"
	bookingRepo "wavehouse-backend/internal/domains/booking/repository"
	bookingService "wavehouse-backend/internal/domains/booking/service"
	infraCache "wavehouse-backend/internal/infrastructure/cache"
	"wavehouse-backend/internal/infrastructure/database"
	"wavehouse-backend/internal/infrastructure/queue"
	"wavehouse-backend/pkg/cache"
	"wavehouse-backend/pkg/jwt"
)

const cachePrefix = "wavehouse:"

// ========================================
// CONTAINER STRUCT
// ========================================

// Container holds every dependency of the application.
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================

	Config      *config.Config
	DB          *database.PostgresDB // nil with the memory store
	Redis       *infraCache.RedisClient
	Cache       cache.Cache
	AsynqClient *asynq.Client // nil when Redis is unreachable
	JWTManager  *jwt.Manager

	// ========================================
	// REPOSITORY LAYER
	// ========================================

	BookingStore bookingRepo.Store

	// ========================================
	// SERVICE LAYER
	// ========================================

	Notifier       notifier.Notifier
	BookingService bookingService.ServiceInterface
	AdminService   adminService.ServiceInterface

	// ========================================
	// HANDLER LAYER
	// ========================================

	PublicBookingHandler *bookingHandler.PublicHandler
	AdminBookingHandler  *bookingHandler.AdminHandler
	AdminHandler         *adminHandler.Handler

	monitorCancel context.CancelFunc
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer builds the dependency graph in order:
// config, infrastructure, repositories, services, handlers.
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Printf("✅ Config loaded (Environment: %s)", cfg.App.Environment)

	// ========================================
	// STEP 2: INFRASTRUCTURE
	// ========================================
	if err := c.initDatabase(); err != nil {
		return nil, err
	}
	c.initCache()
	c.JWTManager = jwt.NewManager(cfg.Admin.JWTSecret)

	// ========================================
	// STEP 3: SERVICES
	// ========================================
	log.Println("⚙️  Initializing services...")
	if err := c.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}
	log.Println("✅ Services initialized")

	// ========================================
	// STEP 4: HANDLERS
	// ========================================
	c.initHandlers()
	log.Println("✅ Handlers initialized")

	log.Println("🎉 DI Container initialized successfully")
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initDatabase() error {
	if c.Config.Booking.StoreDriver == config.StoreDriverMemory {
		log.Println("⚠️  Using in-memory booking store (data is lost on restart)")
		c.BookingStore = bookingRepo.NewMemoryStore()
		return nil
	}

	log.Println("🗄️  Connecting to PostgreSQL...")
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return err
	}

	monitorCtx, monitorCancel := context.WithCancel(context.Background())
	go db.MonitorPoolHealth(monitorCtx, time.Minute)
	c.monitorCancel = monitorCancel

	c.DB = db
	c.BookingStore = bookingRepo.NewPostgresStore(db.Pool)
	log.Println("✅ Database connected")
	return nil
}

// initCache falls back to a process-local cache and a log-only notifier
// when Redis is unreachable.
func (c *Container) initCache() {
	log.Println("🔴 Connecting to Redis...")

	redisClient := infraCache.NewRedisClient(c.Config.Redis.Host, c.Config.Redis.Password, c.Config.Redis.DB)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Connect(ctx); err != nil {
		log.Printf("⚠️  Redis connection failed (non-critical): %v", err)
		_ = redisClient.Close()

		c.Cache = infraCache.NewMemoryCache()
		c.Notifier = notifier.NewLogNotifier()
		return
	}

	c.Redis = redisClient
	c.Cache = infraCache.NewRedisCache(redisClient.Client, cachePrefix)

	opt := queue.RedisOpt(c.Config.Queue.RedisAddr, c.Config.Redis.Password, c.Config.Redis.DB)
	c.AsynqClient = queue.NewClient(opt)
	c.Notifier = notifier.NewQueueNotifier(c.AsynqClient)
	log.Println("✅ Redis connected")
}

func (c *Container) initServices() error {
	cfg := c.Config

	c.BookingService = bookingService.NewBookingService(
		c.BookingStore,
		c.Notifier,
		c.Cache,
		bookingService.Config{
			StoreTimeout:    cfg.Booking.StoreTimeout,
			NotifyTimeout:   cfg.Booking.NotifyTimeout,
			AvailabilityTTL: cfg.Booking.AvailabilityTTL,
		},
	)

	hash, err := adminPasswordHash(cfg.Admin)
	if err != nil {
		return err
	}
	c.AdminService = adminService.NewAdminService(
		c.BookingStore,
		c.Cache,
		c.JWTManager,
		adminService.Config{
			PasswordHash:     hash,
			SessionTTL:       cfg.Admin.SessionTTL,
			MaxLoginAttempts: cfg.Admin.MaxLoginAttempts,
			LoginWindow:      cfg.Admin.LoginWindow,
			StoreTimeout:     cfg.Booking.StoreTimeout,
		},
	)
	return nil
}

func (c *Container) initHandlers() {
	c.PublicBookingHandler = bookingHandler.NewPublicHandler(c.BookingService)
	c.AdminBookingHandler = bookingHandler.NewAdminHandler(c.BookingService)
	c.AdminHandler = adminHandler.NewHandler(c.AdminService, c.Config.App.IsProduction())
}

// adminPasswordHash prefers the configured bcrypt hash and otherwise hashes
// the plain development password.
func adminPasswordHash(cfg config.AdminConfig) ([]byte, error) {
	if cfg.PasswordHash != "" {
		if _, err := bcrypt.Cost([]byte(cfg.PasswordHash)); err != nil {
			return nil, fmt.Errorf("ADMIN_PASSWORD_HASH is not a bcrypt hash: %w", err)
		}
		return []byte(cfg.PasswordHash), nil
	}

	log.Println("⚠️  ADMIN_PASSWORD_HASH not set, hashing ADMIN_PASSWORD")
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}
	return hash, nil
}

// Cleanup waits for in-flight notifications, then closes connections.
func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container resources...")

	if c.BookingService != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := c.BookingService.Drain(ctx); err != nil {
			log.Printf("⚠️  Pending notifications not drained: %v", err)
		}
		cancel()
	}

	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Printf("⚠️  Failed to close queue client: %v", err)
		}
	}

	if c.monitorCancel != nil {
		c.monitorCancel()
	}
	if c.DB != nil {
		_ = c.DB.Close()
		log.Println("✅ Database connections closed")
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Printf("⚠️  Failed to close Redis: %v", err)
		} else {
			log.Println("✅ Redis connections closed")
		}
	}

	log.Println("✅ Container cleanup completed")
}
