package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coinboard/internal/activity"
	"coinboard/internal/api"
	"coinboard/internal/auth"
	"coinboard/internal/board"
	"coinboard/internal/bookmark"
	"coinboard/internal/cache"
	"coinboard/internal/coingecko"
	"coinboard/internal/comment"
	"coinboard/internal/config"
	"coinboard/internal/database"
	"coinboard/internal/events"
	"coinboard/internal/feed"
	"coinboard/internal/logger"
	"coinboard/internal/market"
	"coinboard/internal/notice"
	"coinboard/internal/notification"
	"coinboard/internal/post"
	"coinboard/internal/tag"
	"coinboard/internal/trending"
	"coinboard/internal/vote"
	"coinboard/internal/watchlist"
	"go.uber.org/zap"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		panic(fmt.Sprintf("could not load config: %v", err))
	}

	// Initialize logger
	log, err := logger.New(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Caches
	marketTTL := time.Duration(cfg.Cache.MarketTTLSeconds) * time.Second
	freshCache := cache.New(marketTTL, cfg.Cache.MaxEntries)
	lastKnownCache := cache.New(24*time.Hour, cfg.Cache.MaxEntries)
	trendingCache := cache.New(time.Duration(cfg.Cache.TrendingTTLSeconds)*time.Second, cfg.Cache.MaxEntries)
	viewDedupCache := cache.New(time.Duration(cfg.Cache.ViewDedupTTLHours)*time.Hour, cfg.Cache.MaxEntries)
	unreadCountCache := cache.New(time.Duration(cfg.Cache.NotificationCountTTLSecs)*time.Second, cfg.Cache.MaxEntries)

	// Market gateway
	geckoClient := coingecko.NewClient(&cfg.CoinGecko, log)
	marketService := market.NewService(geckoClient, cfg.CoinGecko, freshCache, lastKnownCache, log)

	// Event bus and listeners
	bus := events.NewBus(256, log)
	activityService := activity.NewService(db)
	notificationService := notification.NewService(db, unreadCountCache, log)
	bus.Subscribe(activity.NewListener(activityService, log).Handle)
	bus.Subscribe(notification.NewListener(notificationService, log).Handle)
	go bus.Run(ctx)

	// Forum services
	tokens := auth.NewTokenProvider(cfg.Auth)
	authService := auth.NewService(db, tokens, cfg.Auth.BcryptCost, log)
	boardService := board.NewService(db)
	postService := post.NewService(db, post.NewViewTracker(viewDedupCache), bus, log)
	commentService := comment.NewService(db, bus)
	voteService := vote.NewService(db, bus)
	bookmarkService := bookmark.NewService(db)
	tagService := tag.NewService(db)
	noticeService := notice.NewService(db)

	// Trending engine with its periodic refresh loop
	trendingEngine := trending.NewEngine(trending.NewGormSource(db), trendingCache, cfg.Trending.DefaultLimit, log)
	go trendingEngine.Run(ctx, time.Duration(cfg.Trending.RefreshIntervalSeconds)*time.Second)

	watchlistService := watchlist.NewService(db, marketService, cfg.Watchlist, log)
	feedService := feed.NewService(trendingEngine, postService, commentService, watchlistService, cfg.Trending.DefaultLimit, 10, 6, log)

	server := api.NewServer(api.Services{
		Auth:          authService,
		Boards:        boardService,
		Posts:         postService,
		Comments:      commentService,
		Votes:         voteService,
		Bookmarks:     bookmarkService,
		Notifications: notificationService,
		Notices:       noticeService,
		Activity:      activityService,
		Tags:          tagService,
		Trending:      trendingEngine,
		Market:        marketService,
		Watchlist:     watchlistService,
		Feed:          feedService,
	}, tokens, log)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.Router(),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown failed", zap.Error(err))
		}
	}()

	log.Info("Starting HTTP server", zap.Int("port", cfg.Server.Port))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("HTTP server failed", zap.Error(err))
	}

	log.Info("Server has been shut down.")
}
