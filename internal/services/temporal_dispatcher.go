package services

import (
	"context"
	"fmt"

	enumspb "go.temporal.io/api/enums/v1"
	temporalsdkclient "go.temporal.io/sdk/client"

	types "github.com/yungbote/toxicity-backend/internal/domain"
	"github.com/yungbote/toxicity-backend/internal/pkg/logger"
	"github.com/yungbote/toxicity-backend/internal/temporalx"
	"github.com/yungbote/toxicity-backend/internal/temporalx/analysisrun"
)

type temporalDispatcher struct {
	log *logger.Logger
	tc  temporalsdkclient.Client
}

func NewTemporalDispatcher(log *logger.Logger, tc temporalsdkclient.Client) (WorkflowDispatcher, error) {
	if tc == nil {
		return nil, fmt.Errorf("temporal client is not configured")
	}
	return &temporalDispatcher{log: log, tc: tc}, nil
}

func (d *temporalDispatcher) Dispatch(ctx context.Context, in analysisrun.Input) (*types.RemoteHandle, error) {
	cfg := temporalx.LoadConfig()
	run, err := d.tc.ExecuteWorkflow(ctx, temporalsdkclient.StartWorkflowOptions{
		ID:        "channel-analysis-" + in.AnalysisID,
		TaskQueue: cfg.TaskQueue,
		// Re-running an analysis id is allowed once the previous execution
		// finished; the pipeline converges to the same rows either way.
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
	}, analysisrun.WorkflowName, in)
	if err != nil {
		return nil, fmt.Errorf("start workflow: %w", err)
	}
	return &types.RemoteHandle{WorkflowID: run.GetID(), RunID: run.GetRunID()}, nil
}

func (d *temporalDispatcher) Check(ctx context.Context, h types.RemoteHandle) (temporalx.CheckResult, error) {
	return temporalx.CheckExecution(ctx, d.tc, h.WorkflowID, h.RunID)
}
