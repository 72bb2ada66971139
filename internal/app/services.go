package app

import (
	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/yungbote/toxicity-backend/internal/analysis"
	"github.com/yungbote/toxicity-backend/internal/ingestion"
	"github.com/yungbote/toxicity-backend/internal/pipeline"
	"github.com/yungbote/toxicity-backend/internal/pkg/envutil"
	"github.com/yungbote/toxicity-backend/internal/pkg/logger"
	"github.com/yungbote/toxicity-backend/internal/scoring"
	"github.com/yungbote/toxicity-backend/internal/services"
)

type Services struct {
	Scorer     scoring.Scorer
	Runner     *pipeline.Runner
	Ingester   ingestion.Ingester
	Jobs       analysis.JobStore
	Dispatcher services.WorkflowDispatcher
	Analysis   services.AnalysisService
}

func wireServices(log *logger.Logger, reposet Repos, tc temporalsdkclient.Client) (Services, error) {
	var set Services

	scorer, err := scoring.FromEnv(log)
	if err != nil {
		return set, err
	}
	set.Scorer = scorer

	batch := scoring.NewBatchScorer(scorer, log)
	set.Runner = pipeline.NewRunner(reposet.Channels, reposet.Comments, reposet.Scores, batch, pipeline.LoadConfig(), log)

	ing, err := ingestion.NewYouTubeIngester(log, reposet.Channels, reposet.Videos, reposet.Comments)
	if err != nil {
		return set, err
	}
	set.Ingester = ing

	set.Jobs, err = wireJobStore(log)
	if err != nil {
		return set, err
	}

	if tc != nil {
		set.Dispatcher, err = services.NewTemporalDispatcher(log, tc)
		if err != nil {
			return set, err
		}
	} else {
		log.Warn("Temporal not configured; analyses run in-process")
		set.Dispatcher = services.NewLocalDispatcher(log, set.Runner, set.Jobs)
	}

	set.Analysis, err = services.NewAnalysisService(log, set.Jobs, set.Ingester, set.Dispatcher, set.Runner, reposet.Channels, reposet.Comments)
	if err != nil {
		return set, err
	}
	return set, nil
}

func wireJobStore(log *logger.Logger) (analysis.JobStore, error) {
	if envutil.String("REDIS_ADDR", "") != "" {
		return analysis.NewRedisStore(log)
	}
	return analysis.NewMemoryStore(), nil
}
