package services

import (
	"context"
	"time"

	"github.com/yungbote/toxicity-backend/internal/analysis"
	types "github.com/yungbote/toxicity-backend/internal/domain"
	"github.com/yungbote/toxicity-backend/internal/pipeline"
	"github.com/yungbote/toxicity-backend/internal/pkg/logger"
	"github.com/yungbote/toxicity-backend/internal/temporalx"
	"github.com/yungbote/toxicity-backend/internal/temporalx/analysisrun"
)

// localDispatcher runs analyses in-process when no Temporal cluster is
// configured. The goroutine owns the terminal registry write, so status
// probes only ever see Pending from Check; the registry answers the rest.
type localDispatcher struct {
	log    *logger.Logger
	runner *pipeline.Runner
	jobs   analysis.JobStore
}

func NewLocalDispatcher(log *logger.Logger, runner *pipeline.Runner, jobs analysis.JobStore) WorkflowDispatcher {
	return &localDispatcher{log: log.With("service", "LocalDispatcher"), runner: runner, jobs: jobs}
}

func (d *localDispatcher) Dispatch(ctx context.Context, in analysisrun.Input) (*types.RemoteHandle, error) {
	go d.run(in)
	return &types.RemoteHandle{WorkflowID: "local/" + in.AnalysisID}, nil
}

func (d *localDispatcher) run(in analysisrun.Input) {
	// Detached from the request context on purpose; the caller already got
	// its 202.
	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Hour)
	defer cancel()

	res, err := d.runner.Run(ctx, in.ChannelID)
	if err != nil {
		d.log.Error("Inline analysis failed", "analysis_id", in.AnalysisID, "error", err)
		d.finish(ctx, in.AnalysisID, func(j *types.AnalysisJob) {
			j.Status = types.StatusError
			j.Message = err.Error()
		})
		return
	}
	d.finish(ctx, in.AnalysisID, func(j *types.AnalysisJob) {
		if res.Status == pipeline.StatusSuccess {
			j.Status = types.StatusCompleted
			j.Progress = 1.0
		} else {
			j.Status = types.StatusError
		}
		j.Message = res.Message
	})
}

func (d *localDispatcher) finish(ctx context.Context, analysisID string, mutate func(*types.AnalysisJob)) {
	if _, err := d.jobs.Update(ctx, analysisID, mutate); err != nil {
		d.log.Warn("Job registry update failed", "analysis_id", analysisID, "error", err)
	}
}

func (d *localDispatcher) Check(ctx context.Context, h types.RemoteHandle) (temporalx.CheckResult, error) {
	return temporalx.CheckResult{State: temporalx.CheckPending}, nil
}
