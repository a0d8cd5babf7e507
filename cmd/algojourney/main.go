package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/algojourney/algojourney/internal/api/admin"
	"github.com/algojourney/algojourney/internal/api/user"
	"github.com/algojourney/algojourney/internal/cache"
	"github.com/algojourney/algojourney/internal/config"
	"github.com/algojourney/algojourney/internal/database"
	"github.com/algojourney/algojourney/internal/fetcher"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var Version = "dev-build"

func main() {

	fmt.Fprintf(os.Stderr, "AlgoJourney %s - Competitive Programming Practice Platform\n\n", Version)

	// config
	var configPath string
	flag.StringVar(&configPath, "c", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// logger
	var logger *zap.Logger
	if cfg.Logger.Level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	// database
	db, err := database.Init(cfg.Storage.Database)
	if err != nil {
		zap.S().Fatalf("failed to initialize database: %v", err)
	}
	zap.S().Info("database initialized successfully")

	// leaderboard cache (optional)
	leaderboard := cache.NewLeaderboard(cfg.Redis)
	if cfg.Redis.Addr != "" {
		zap.S().Infof("leaderboard cache enabled at %s", cfg.Redis.Addr)
	}

	// background stats refresher
	refresher := fetcher.NewRefresher(db, cfg.Fetcher)
	refresher.Start()
	zap.S().Info("stats refresher started")

	// scheduled bulk refresh
	if cfg.Fetcher.CronSpec != "" {
		scheduler := cron.New()
		if _, err := scheduler.AddFunc(cfg.Fetcher.CronSpec, func() {
			if err := refresher.EnqueueAll(); err != nil {
				zap.S().Errorf("scheduled stats refresh failed: %v", err)
			}
		}); err != nil {
			zap.S().Fatalf("invalid fetcher cron spec %q: %v", cfg.Fetcher.CronSpec, err)
		}
		scheduler.Start()
		zap.S().Infof("scheduled stats refresh with spec %q", cfg.Fetcher.CronSpec)
	}

	// API routers
	userEngine := user.NewUserRouter(cfg, db, refresher, leaderboard)
	adminEngine := admin.NewAdminRouter(cfg, db, refresher, leaderboard)

	// start servers
	go func() {
		zap.S().Infof("starting user server at %s", cfg.Listen)
		if err := userEngine.Run(cfg.Listen); err != nil {
			zap.S().Fatalf("failed to start user server: %v", err)
		}
	}()

	if cfg.Admin.Enabled {
		go func() {
			zap.S().Infof("starting admin server at %s", cfg.Admin.Listen)
			if err := adminEngine.Run(cfg.Admin.Listen); err != nil {
				zap.S().Fatalf("failed to start admin server: %v", err)
			}
		}()
	}

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.S().Info("shutting down server...")
}
