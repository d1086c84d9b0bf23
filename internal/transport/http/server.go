package http

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"marketforum/internal/cache"
	"marketforum/internal/config"
	"marketforum/internal/database"
	"marketforum/internal/handler"
	"marketforum/internal/redis"
	"marketforum/internal/repository"
	"marketforum/internal/service"
)

const tokenPurgeInterval = time.Hour

func Run() error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warnf("unknown LOG_LEVEL %q, keeping %s", cfg.LogLevel, log.GetLevel())
	}

	// 2. Connect to Database
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// 3. Optional infrastructure
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var catalogCache cache.CatalogCache
	if cfg.RedisURL != "" {
		rdb, err := redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Warnf("redis unavailable, catalog cache disabled: %v", err)
		} else {
			defer rdb.Close()
			catalogCache = cache.NewCatalogCache(rdb.Client, cfg.CatalogCacheTTL)
		}
	}

	var photos service.PhotoStore
	if cfg.MediaConfigured() {
		mediaService, err := service.NewMediaService(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to init media service: %w", err)
		}
		photos = mediaService
	} else {
		log.Info("R2 not configured, product photo uploads disabled")
	}

	// 4. Repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	postRepo := repository.NewForumPostRepository(db)
	replyRepo := repository.NewReplyRepository(db)
	reactionRepo := repository.NewReactionRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	cartRepo := repository.NewCartRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)

	// 5. Services
	userService := service.NewUserService(userRepo)
	authService := service.NewAuthService(refreshTokenRepo, cfg)
	forumService := service.NewForumService(postRepo, replyRepo, reactionRepo, userRepo)
	reactionService := service.NewReactionService(reactionRepo)
	catalogService := service.NewCatalogService(categoryRepo, productRepo, reviewRepo, userRepo, catalogCache, photos)
	reviewService := service.NewReviewService(reviewRepo, userRepo, catalogCache)
	cartService := service.NewCartService(cartRepo)
	favoriteService := service.NewFavoriteService(favoriteRepo)

	// 6. Router
	router := NewRouter(RouterConfig{
		AuthHandler:     handler.NewAuthHandler(userService, authService),
		ForumHandler:    handler.NewForumHandler(forumService),
		ReactionHandler: handler.NewReactionHandler(reactionService),
		CatalogHandler:  handler.NewCatalogHandler(catalogService),
		ReviewHandler:   handler.NewReviewHandler(reviewService),
		CartHandler:     handler.NewCartHandler(cartService),
		FavoriteHandler: handler.NewFavoriteHandler(favoriteService),
		JWTSecret:       cfg.JWTSecret,
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		purgeExpiredTokens(ctx, authService)
	}()

	// 7. Serve until SIGINT/SIGTERM
	server := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); !errors.Is(err, stdhttp.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		stop()
		wg.Wait()
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, shutdownRelease := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownRelease()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	wg.Wait()
	log.Info("Server stopped")
	return nil
}

func purgeExpiredTokens(ctx context.Context, authService *service.AuthService) {
	ticker := time.NewTicker(tokenPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := authService.PurgeExpiredTokens(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Warnf("[server] token purge failed: %v", err)
			}
		}
	}
}
