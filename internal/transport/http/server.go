package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tastebook/internal/cache"
	"tastebook/internal/config"
	"tastebook/internal/database"
	"tastebook/internal/handler"
	"tastebook/internal/queue"
	"tastebook/internal/realtime"
	appredis "tastebook/internal/redis"
	"tastebook/internal/repository"
	"tastebook/internal/service"
	"tastebook/internal/worker"
)

// Run wires the whole application: config, database, Redis, repositories,
// services, the stream worker and the HTTP server. Blocks until SIGINT or
// SIGTERM, then shuts down gracefully.
func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	redisClient, err := appredis.NewClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer redisClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := redisClient.Ping(ctx); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Println("Connected to Redis successfully")

	// Repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	engagementRepo := repository.NewEngagementRepository(db)
	followRepo := repository.NewFollowRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// Redis-backed infrastructure
	feedCache := cache.NewFeedCache(redisClient.Client)
	publisher := queue.NewPublisher(redisClient.Client)
	consumer := queue.NewConsumer(redisClient.Client)
	commentBroker := realtime.NewCommentBroker(redisClient.Client)

	// Services
	authService := service.NewAuthService(refreshTokenRepo, cfg)
	userService := service.NewUserService(userRepo, followRepo, recipeRepo)
	catalogService := service.NewCatalogService(categoryRepo, recipeRepo, userRepo, engagementRepo)
	feedService := service.NewFeedService(feedCache, recipeRepo, userRepo, engagementRepo)
	recipeService := service.NewRecipeService(recipeRepo, commentRepo, userRepo, categoryRepo, engagementRepo, publisher, feedCache)
	engagementService := service.NewEngagementService(engagementRepo, followRepo, recipeRepo, userRepo)
	commentService := service.NewCommentService(commentRepo, recipeRepo, publisher, commentBroker)

	mediaService, err := service.NewMediaService(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create media service: %w", err)
	}

	// Stream worker: feeds the cache and relays live comments
	workerHandler := worker.NewHandler(feedCache, commentRepo)
	workerHandler.SetCommentRelay(commentBroker)
	manager := worker.NewManager(consumer, workerHandler, worker.DefaultManagerConfig())
	if err := manager.Start(ctx); err != nil {
		return fmt.Errorf("failed to start workers: %w", err)
	}
	defer manager.Stop()

	// Handlers
	router := NewRouter(RouterConfig{
		AuthHandler:       handler.NewAuthHandler(userService, authService, mediaService, cfg),
		UserHandler:       handler.NewUserHandler(userService),
		CatalogHandler:    handler.NewCatalogHandler(catalogService),
		RecipeHandler:     handler.NewRecipeHandler(recipeService, feedService),
		EngagementHandler: handler.NewEngagementHandler(engagementService),
		CommentHandler:    handler.NewCommentHandler(commentService),
		MediaHandler:      handler.NewMediaHandler(mediaService),
		JWTSecret:         cfg.JWTSecret,
	})

	server := &stdhttp.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on :%s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		log.Printf("Received signal %v, shutting down...", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Println("Server stopped")
	return nil
}
