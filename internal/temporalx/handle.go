package temporalx

import (
	"context"
	"fmt"
	"time"

	enumspb "go.temporal.io/api/enums/v1"
	temporalsdkclient "go.temporal.io/sdk/client"
)

// CheckState classifies a workflow execution for a non-blocking progress probe.
type CheckState int

const (
	CheckPending CheckState = iota
	CheckDone
	CheckFailed
)

type CheckResult struct {
	State CheckState

	// Reason is set for CheckFailed and names the terminal status observed.
	Reason string
}

// CheckExecution asks the server for the current status of an execution
// without waiting on its result. Transport failures come back as an error so
// callers can treat them as transient rather than as a workflow failure.
func CheckExecution(ctx context.Context, c temporalsdkclient.Client, workflowID, runID string) (CheckResult, error) {
	if c == nil {
		return CheckResult{}, fmt.Errorf("temporal client is not configured")
	}
	timeout := durationSecondsFromEnv("TEMPORAL_DESCRIBE_TIMEOUT_SECONDS", 5)
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.DescribeWorkflowExecution(ctx, workflowID, runID)
	if err != nil {
		return CheckResult{}, fmt.Errorf("describe workflow execution (workflow_id=%s): %w", workflowID, err)
	}

	info := resp.GetWorkflowExecutionInfo()
	if info == nil {
		return CheckResult{State: CheckPending}, nil
	}

	switch info.GetStatus() {
	case enumspb.WORKFLOW_EXECUTION_STATUS_COMPLETED:
		return CheckResult{State: CheckDone}, nil
	case enumspb.WORKFLOW_EXECUTION_STATUS_FAILED:
		return CheckResult{State: CheckFailed, Reason: "workflow failed"}, nil
	case enumspb.WORKFLOW_EXECUTION_STATUS_CANCELED:
		return CheckResult{State: CheckFailed, Reason: "workflow canceled"}, nil
	case enumspb.WORKFLOW_EXECUTION_STATUS_TERMINATED:
		return CheckResult{State: CheckFailed, Reason: "workflow terminated"}, nil
	case enumspb.WORKFLOW_EXECUTION_STATUS_TIMED_OUT:
		return CheckResult{State: CheckFailed, Reason: "workflow timed out"}, nil
	default:
		// Running and continued-as-new both count as still in flight.
		return CheckResult{State: CheckPending}, nil
	}
}
