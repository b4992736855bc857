package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"human-connection/internal/config"
	"human-connection/internal/domain"
	"human-connection/internal/events"
	"human-connection/internal/handler"
	"human-connection/internal/metrics"
	"human-connection/internal/middleware"
	"human-connection/internal/repository"
	"human-connection/internal/repository/graph"
	"human-connection/internal/service"
	"human-connection/internal/service/auth"
	"human-connection/internal/service/media"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()

	zlog, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	if envErr != nil {
		zlog.Info("no .env file found, using environment variables")
	}

	repos, closeStore, err := openRepositories(cfg)
	if err != nil {
		zlog.Fatal("failed to connect to graph store", zap.String("backend", cfg.GraphBackend), zap.Error(err))
	}
	defer closeStore()

	redisClient, err := config.NewRedisClient(cfg)
	if err != nil {
		zlog.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	minioClient, err := config.NewMinIOClient(cfg, zlog)
	if err != nil {
		zlog.Warn("failed to connect to MinIO, image upload disabled", zap.Error(err))
		minioClient = nil
	}

	bus, closeBus, err := openBus(cfg, redisClient, zlog)
	if err != nil {
		zlog.Fatal("failed to start event bus", zap.String("bus", cfg.EventBus), zap.Error(err))
	}
	defer closeBus()

	m := metrics.New()

	services, err := service.NewServices(repos, redisClient, minioClient, bus, m, cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to build services", zap.Error(err))
	}
	handlers := handler.NewHandlers(services, bus, zlog)

	app := newApp(cfg, zlog)
	setupRoutes(app, handlers, services.Auth, m)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		zlog.Info("shutting down")
		// Ends open event streams before the server waits for them.
		if err := bus.Close(); err != nil {
			zlog.Warn("event bus close failed", zap.Error(err))
		}
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			zlog.Warn("server shutdown failed", zap.Error(err))
		}
	}()

	zlog.Info("server starting",
		zap.String("port", cfg.Port),
		zap.String("backend", cfg.GraphBackend),
		zap.String("bus", cfg.EventBus),
	)
	if err := app.Listen(":" + cfg.Port); err != nil {
		zlog.Fatal("failed to start server", zap.Error(err))
	}
}

func newApp(cfg *config.Config, zlog *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(zlog),
		BodyLimit:    media.MaxImageSize + 1<<20,
	})

	app.Use(recover.New())
	app.Use(helmet.New())
	app.Use(logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health" || c.Path() == "/metrics"
		},
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))

	return app
}

func openRepositories(cfg *config.Config) (*repository.Repositories, func(), error) {
	if cfg.GraphBackend == config.BackendNeo4j {
		driver, err := config.NewNeo4jDriver(cfg)
		if err != nil {
			return nil, nil, err
		}
		return graph.NewRepositories(driver, cfg.Neo4jDatabase), func() { driver.Close(context.Background()) }, nil
	}

	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	return repository.NewRepositories(db), func() { db.Close() }, nil
}

func openBus(cfg *config.Config, redisClient *redis.Client, zlog *zap.Logger) (events.Bus, func(), error) {
	busLogger := zlog.Named("events")

	switch cfg.EventBus {
	case config.BusRedis:
		bus := events.NewRedisBus(redisClient, busLogger)
		return bus, func() { bus.Close() }, nil
	case config.BusNATS:
		conn, err := config.NewNATSConn(cfg, busLogger)
		if err != nil {
			return nil, nil, err
		}
		bus := events.NewNATSBus(conn, busLogger)
		return bus, func() {
			bus.Close()
			conn.Close()
		}, nil
	}

	bus := events.NewMemoryBus(busLogger)
	return bus, func() { bus.Close() }, nil
}

func setupRoutes(app *fiber.App, h *handler.Handlers, authService auth.Service, m *metrics.Metrics) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
	app.Get("/.well-known/webfinger", h.WebFinger.WebFinger)

	required := middleware.AuthRequired(authService)
	optional := middleware.OptionalAuth(authService)

	v1 := app.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.Post("/signup", h.Auth.Signup)
	authGroup.Post("/login", h.Auth.Login)
	authGroup.Get("/me", required, h.Auth.Me)

	posts := v1.Group("/posts")
	posts.Get("/", optional, h.Post.List)
	posts.Get("/search", optional, h.Post.Search)
	posts.Post("/", required, h.Post.Create)
	posts.Get("/:id", optional, h.Post.Get)
	posts.Get("/:id/related", optional, h.Post.Related)
	posts.Put("/:id", required, h.Post.Update)
	posts.Delete("/:id", required, h.Post.Delete)
	posts.Post("/:id/pin", required, middleware.RequireRole(domain.RoleAdmin), h.Post.Pin)
	posts.Delete("/:id/pin", required, middleware.RequireRole(domain.RoleAdmin), h.Post.Unpin)
	posts.Post("/:id/emotions", required, h.Post.AddEmotion)
	posts.Delete("/:id/emotions", required, h.Post.RemoveEmotion)
	posts.Get("/:id/emotions/count", h.Post.EmotionsCount)
	posts.Get("/:id/emotions/mine", required, h.Post.MyEmotions)
	posts.Get("/:id/comments", optional, h.Comment.ListByPost)
	posts.Post("/:id/comments", required, h.Comment.Create)

	v1.Put("/comments/:id", required, h.Comment.Update)

	users := v1.Group("/users")
	users.Get("/me/blocked", required, h.User.Blocked)
	users.Get("/:id", optional, h.User.Get)
	users.Get("/:id/posts", optional, h.Post.ProfilePosts)
	users.Post("/:id/block", required, h.User.Block)
	users.Delete("/:id/block", required, h.User.Unblock)

	notifications := v1.Group("/notifications", required)
	notifications.Get("/", h.Notification.List)
	notifications.Get("/unread-count", h.Notification.GetUnreadCount)
	notifications.Patch("/read", h.Notification.MarkAsRead)
	notifications.Post("/mark-all-read", h.Notification.MarkAllAsRead)

	v1.Post("/reports", required, h.Moderation.Report)

	moderation := v1.Group("/moderation", required, middleware.RequireRole(domain.RoleModerator))
	moderation.Post("/:kind/:id/disable", h.Moderation.Disable)
	moderation.Delete("/:kind/:id/disable", h.Moderation.Release)

	emails := v1.Group("/emails", required)
	emails.Post("/", h.User.AddEmailAddress)
	emails.Post("/verify", h.User.VerifyEmailAddress)

	v1.Get("/subscriptions/post-added", h.Subscription.PostAdded)
}
