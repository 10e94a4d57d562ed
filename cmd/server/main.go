package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tri-star/chase-light-sub003/internal/config"
	"github.com/tri-star/chase-light-sub003/internal/db"
	"github.com/tri-star/chase-light-sub003/internal/github"
	transport "github.com/tri-star/chase-light-sub003/internal/http"
	"github.com/tri-star/chase-light-sub003/internal/logger"
	"github.com/tri-star/chase-light-sub003/internal/pipeline"
	"github.com/tri-star/chase-light-sub003/internal/queue"
	"github.com/tri-star/chase-light-sub003/internal/release"
	"github.com/tri-star/chase-light-sub003/internal/repository"
	"github.com/tri-star/chase-light-sub003/internal/scheduler"
	"github.com/tri-star/chase-light-sub003/internal/service"
	"github.com/tri-star/chase-light-sub003/internal/snowflake"
	"github.com/tri-star/chase-light-sub003/internal/summarizer"
	"github.com/tri-star/chase-light-sub003/internal/worker/analyze"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.ParseLevel(cfg.LogLevel))

	if err := snowflake.Init(1); err != nil {
		log.Fatalf("init snowflake: %v", err)
	}

	dbConn, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer dbConn.Close()

	userRepo := repository.NewUserRepository(dbConn)
	feedRepo := repository.NewFeedRepository(dbConn)
	feedLogRepo := repository.NewFeedLogRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)

	// The authenticated REST client sees full release history; without a
	// token fall back to the public releases.atom feed.
	var source release.Source
	if cfg.GitHubToken != "" {
		source = github.NewClient(cfg.GitHubToken, github.WithAPIBase(cfg.GitHubAPIBase))
	} else {
		source = github.NewAtomSource(nil, "")
	}
	finder := release.NewFinder(source)

	provider, err := summarizer.NewProvider(summarizer.Config{
		Provider: cfg.AIProvider,
		APIKey:   cfg.AIAPIKey,
		BaseURL:  cfg.AIBaseURL,
		Model:    cfg.AIModel,
		Language: cfg.AILanguage,
	})
	if err != nil {
		log.Fatalf("create summarizer provider: %v", err)
	}
	sum := summarizer.New(provider, summarizer.NewRateLimiter(cfg.AIRateQPS), cfg.AILanguage)

	q := queue.NewMemoryQueue(cfg.QueueMaxReceive, cfg.VisibilityTimeout)

	fetchService := service.NewFeedFetchService(feedRepo, feedLogRepo, finder, cfg.ReleaseLimit)
	enqueueService := service.NewEnqueueService(feedLogRepo, q)
	notificationService := service.NewNotificationService(userRepo, feedRepo, feedLogRepo, notificationRepo)

	pipe := pipeline.New(feedRepo, fetchService, enqueueService, notificationService, cfg.FetchConcurrency)

	worker := analyze.NewWorker(q, analyze.NewHandler(feedRepo, feedLogRepo, source, sum), cfg.AnalyzeBatchSize, cfg.AnalyzeConcurrency)
	worker.Start()

	sched := scheduler.New(pipe, cfg.PollInterval)
	sched.Start()

	router := transport.NewRouter(transport.NewOpsHandler(pipe))

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("shutting down...")
		sched.Stop()
		worker.Stop()
		os.Exit(0)
	}()

	if err := router.Start(cfg.Addr); err != nil {
		log.Fatalf("start server: %v", err)
	}
}
