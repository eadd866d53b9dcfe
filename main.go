package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seo-optimizer/auditor/api"
	"github.com/seo-optimizer/auditor/audit"
	"github.com/seo-optimizer/auditor/config"
	"github.com/seo-optimizer/auditor/history"
	"github.com/seo-optimizer/auditor/logging"
	"github.com/seo-optimizer/auditor/middleware"
	"github.com/seo-optimizer/auditor/sitecrawl"
	"github.com/seo-optimizer/auditor/stats"
)

// Months of monthly counters kept in DATA_DIR/stats.json.
const statsRetentionMonths = 12

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	logger := logging.NewLogger("server")
	logger.SetDebug(cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	monthly, err := stats.NewStorage(cfg.DataDir, logger.With("stats"))
	if err != nil {
		log.Fatalf("stats: %v", err)
	}
	monthly.Cleanup(statsRetentionMonths)

	requests, err := logging.NewStatistics(cfg.DataDir, cfg.DevMode)
	if err != nil {
		log.Fatalf("statistics: %v", err)
	}

	rules, err := config.LoadRules(cfg.RulesFile)
	if err != nil {
		log.Fatalf("rules: %v", err)
	}

	recorder, err := history.Open(ctx, cfg.History())
	if err != nil {
		log.Fatalf("history: %v", err)
	}

	svc, err := audit.New(cfg.NewFetcher(logger.With("robots")), audit.ServiceOptions{
		Rules:     rules.Rules,
		StopWords: rules.StopWords(),
		CacheTTL:  cfg.CacheTTL,
		CacheSize: cfg.CacheSize,
		Stats:     monthly,
		History:   recorder,
		Logger:    logger.With("audit"),
	})
	if err != nil {
		log.Fatalf("audit service: %v", err)
	}

	handler := api.NewHandler(api.Deps{
		Audits: svc,
		Site:   sitecrawl.NewAuditor(svc, logger.With("sitecrawl")),
		SiteOpts: sitecrawl.Options{
			Discover: sitecrawl.DiscoverOptions{
				MaxPages:      cfg.SiteMaxPages,
				MaxDepth:      cfg.SiteMaxDepth,
				Parallelism:   cfg.SiteConcurrency,
				UserAgent:     cfg.UserAgent,
				Timeout:       cfg.FetchTimeout,
				RespectRobots: cfg.RespectRobots,
			},
			Concurrency: cfg.SiteConcurrency,
		},
		Requests: requests,
		Monthly:  monthly,
		Logger:   logger.With("api"),
	})

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go pruneLimiter(ctx, limiter, logger)

	r := api.NewRouter(handler,
		gin.Logger(),
		middleware.ErrorHandler(logger.With("http")),
		limiter.RateLimit(),
		middleware.CORS(),
		middleware.RequestStats(requests, logger.With("stats"), 100, api.AuditPaths...),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown: %v", err)
	}
	if err := svc.Shutdown(); err != nil {
		logger.Error("audit shutdown: %v", err)
	}
	if err := requests.Save(); err != nil {
		logger.Error("save statistics: %v", err)
	}
}

// pruneLimiter drops rate limit buckets for clients idle longer than ten minutes.
func pruneLimiter(ctx context.Context, rl *middleware.RateLimiter, logger *logging.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.Prune(10 * time.Minute); n > 0 {
				logger.Debug("pruned %d idle rate limit buckets", n)
			}
		}
	}
}
