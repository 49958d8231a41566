package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"huddleup/internal/cache"
	"huddleup/internal/config"
	"huddleup/internal/database"
	"huddleup/internal/handler"
	"huddleup/internal/queue"
	"huddleup/internal/redis"
	"huddleup/internal/repository"
	"huddleup/internal/service"
	"huddleup/internal/worker"
)

func Run() error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Connect to Database and apply migrations
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// 3. Connect to Redis
	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer redisClient.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := redisClient.Ping(pingCtx); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	log.Println("Connected to Redis successfully")

	// 4. Repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	friendRepo := repository.NewFriendRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	// 5. Queue and cache
	publisher := queue.NewPublisher(redisClient.Client)
	consumer := queue.NewConsumer(redisClient.Client)
	treeCache := cache.NewCommentTreeCache(redisClient.Client)

	// 6. Services
	authService := service.NewAuthService(refreshTokenRepo, cfg)
	userService := service.NewUserService(userRepo, friendRepo)
	commentService := service.NewCommentService(commentRepo, userRepo, treeCache, publisher)
	friendService := service.NewFriendService(friendRepo, userRepo, publisher)
	notifService := service.NewNotificationService(notifRepo)

	mediaService, err := service.NewMediaService(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to create media service: %w", err)
	}

	// 7. Workers consuming the activity stream
	workerHandler := worker.NewHandler(commentRepo, notifService)
	manager := worker.NewManager(consumer, workerHandler, worker.ManagerConfig{
		WorkerCount: cfg.WorkerCount,
	})
	if err := manager.Start(context.Background()); err != nil {
		return fmt.Errorf("failed to start workers: %w", err)
	}
	defer manager.Stop()

	// 8. HTTP handlers and router
	router := NewRouter(RouterConfig{
		AuthHandler:         handler.NewAuthHandler(userService, authService, cfg),
		UserHandler:         handler.NewUserHandler(userService),
		CommentHandler:      handler.NewCommentHandler(commentService),
		FriendHandler:       handler.NewFriendHandler(friendService),
		MediaHandler:        handler.NewMediaHandler(mediaService, userService, cfg),
		NotificationHandler: handler.NewNotificationHandler(notifService),
		JWTSecret:           cfg.JWTSecret,
	})

	server := &stdhttp.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	// 9. Serve until interrupted, then drain in-flight requests
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on :%s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		log.Printf("Received signal %v, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Println("Server stopped")
	return nil
}
