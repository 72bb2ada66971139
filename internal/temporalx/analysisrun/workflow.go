package analysisrun

import (
	"fmt"
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/yungbote/toxicity-backend/internal/pipeline"
)

// Workflow runs the whole scoring pipeline as a single long activity. Retries
// stay disabled at the activity level; the pipeline is idempotent, so a caller
// who wants another attempt just starts a fresh analysis.
func Workflow(ctx workflow.Context, in Input) (Output, error) {
	if strings.TrimSpace(in.ChannelID) == "" {
		return Output{}, fmt.Errorf("analysisrun: missing channel_id")
	}

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 4 * time.Hour,
		HeartbeatTimeout:    2 * time.Minute,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	})

	var out Output
	if err := workflow.ExecuteActivity(ctx, ActivityRunPipeline, in).Get(ctx, &out); err != nil {
		return out, err
	}

	// A domain-level error result (unknown channel, empty channel) surfaces
	// as a failed execution so a status probe reports it without needing the
	// workflow result payload.
	if out.Status == pipeline.StatusError {
		return out, fmt.Errorf("analysis failed: %s", out.Message)
	}
	return out, nil
}
