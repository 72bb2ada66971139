package analysisrun

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.temporal.io/sdk/activity"

	"github.com/yungbote/toxicity-backend/internal/analysis"
	types "github.com/yungbote/toxicity-backend/internal/domain"
	"github.com/yungbote/toxicity-backend/internal/pipeline"
	"github.com/yungbote/toxicity-backend/internal/pkg/logger"
)

type Activities struct {
	Log    *logger.Logger
	Runner *pipeline.Runner
	Jobs   analysis.JobStore
}

// RunPipeline executes the scoring pipeline for one channel and mirrors the
// outcome into the job registry. Registry writes are best-effort: the status
// probe reconciles from the execution status anyway, so a store hiccup here
// must not fail an otherwise healthy run.
func (a *Activities) RunPipeline(ctx context.Context, in Input) (Output, error) {
	if a == nil || a.Runner == nil {
		return Output{}, fmt.Errorf("analysisrun: activity not configured")
	}
	channelID := strings.TrimSpace(in.ChannelID)
	if channelID == "" {
		return Output{}, fmt.Errorf("analysisrun: missing channel_id")
	}

	stopHB := startHeartbeat(ctx)
	defer stopHB()

	a.updateJob(ctx, in.AnalysisID, func(j *types.AnalysisJob) {
		j.Status = types.StatusAnalyzing
		if j.Progress < 0.5 {
			j.Progress = 0.5
		}
		j.Message = "analyzing comments"
	})

	res, err := a.Runner.Run(ctx, channelID)
	if err != nil {
		a.updateJob(ctx, in.AnalysisID, func(j *types.AnalysisJob) {
			j.Status = types.StatusError
			j.Message = err.Error()
		})
		return Output{}, err
	}

	out := Output{Status: res.Status, Message: res.Message, Processed: res.Processed}
	a.updateJob(ctx, in.AnalysisID, func(j *types.AnalysisJob) {
		if res.Status == pipeline.StatusSuccess {
			j.Status = types.StatusCompleted
			j.Progress = 1.0
		} else {
			j.Status = types.StatusError
		}
		j.Message = res.Message
	})
	return out, nil
}

func (a *Activities) updateJob(ctx context.Context, analysisID string, mutate func(*types.AnalysisJob)) {
	if a == nil || a.Jobs == nil || strings.TrimSpace(analysisID) == "" {
		return
	}
	if _, err := a.Jobs.Update(ctx, analysisID, mutate); err != nil && a.Log != nil {
		a.Log.Warn("Job registry update failed", "analysis_id", analysisID, "error", err)
	}
}

func startHeartbeat(ctx context.Context) func() {
	done := make(chan struct{})
	go func() {
		hb := time.NewTicker(30 * time.Second)
		defer hb.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-hb.C:
				activity.RecordHeartbeat(ctx)
			}
		}
	}()
	return func() { close(done) }
}
