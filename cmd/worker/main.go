package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yungbote/toxicity-backend/internal/analysis"
	"github.com/yungbote/toxicity-backend/internal/data/db"
	"github.com/yungbote/toxicity-backend/internal/data/repos"
	"github.com/yungbote/toxicity-backend/internal/pipeline"
	"github.com/yungbote/toxicity-backend/internal/pkg/envutil"
	"github.com/yungbote/toxicity-backend/internal/pkg/logger"
	"github.com/yungbote/toxicity-backend/internal/scoring"
	"github.com/yungbote/toxicity-backend/internal/temporalx"
	"github.com/yungbote/toxicity-backend/internal/temporalx/temporalworker"
)

func main() {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Init postgres failed", "error", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres automigrate failed", "error", err)
	}
	theDB := pg.DB()

	channels := repos.NewChannelRepo(theDB, log)
	comments := repos.NewCommentRepo(theDB, log)
	scores := repos.NewToxicityScoreRepo(theDB, log)

	scorer, err := scoring.FromEnv(log)
	if err != nil {
		log.Fatal("Init scorer failed", "error", err)
	}
	runner := pipeline.NewRunner(channels, comments, scores, scoring.NewBatchScorer(scorer, log), pipeline.LoadConfig(), log)

	// The registry is only shared with the API process through redis; without
	// it the poller reconciles purely from workflow status.
	var jobs analysis.JobStore
	if envutil.String("REDIS_ADDR", "") != "" {
		jobs, err = analysis.NewRedisStore(log)
		if err != nil {
			log.Fatal("Init redis job store failed", "error", err)
		}
	}

	tc, err := temporalx.NewClient(log)
	if err != nil {
		log.Fatal("Temporal dial failed", "error", err)
	}
	if tc == nil {
		log.Fatal("TEMPORAL_ADDRESS is required for the worker")
	}
	defer tc.Close()

	w, err := temporalworker.NewRunner(log, tc, runner, jobs)
	if err != nil {
		log.Fatal("Init temporal worker failed", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		log.Fatal("Temporal worker start failed", "error", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("Shutting down worker")
}
