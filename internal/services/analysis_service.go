package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/toxicity-backend/internal/analysis"
	"github.com/yungbote/toxicity-backend/internal/data/repos"
	types "github.com/yungbote/toxicity-backend/internal/domain"
	"github.com/yungbote/toxicity-backend/internal/ingestion"
	"github.com/yungbote/toxicity-backend/internal/pipeline"
	"github.com/yungbote/toxicity-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/toxicity-backend/internal/pkg/errors"
	"github.com/yungbote/toxicity-backend/internal/pkg/logger"
	"github.com/yungbote/toxicity-backend/internal/temporalx"
	"github.com/yungbote/toxicity-backend/internal/temporalx/analysisrun"
)

// WorkflowDispatcher starts analysis executions on the compute cluster and
// answers non-blocking status probes for them.
type WorkflowDispatcher interface {
	Dispatch(ctx context.Context, in analysisrun.Input) (*types.RemoteHandle, error)
	Check(ctx context.Context, h types.RemoteHandle) (temporalx.CheckResult, error)
}

type AnalysisService interface {
	// StartAnalysis registers a job for the referenced channel and kicks off
	// scoring without waiting for it. Invalid channel references come back
	// wrapped in ErrInvalidArgument and are never recorded in the registry.
	StartAnalysis(ctx context.Context, channelRef, analysisID string) (*types.AnalysisJob, error)
	// Progress reports the job's current state. Unknown ids yield a
	// not_found snapshot, not an error.
	Progress(ctx context.Context, analysisID string) (*types.AnalysisJob, error)
	// RunInline executes the scoring pipeline synchronously.
	RunInline(ctx context.Context, channelID string) (pipeline.Result, error)
}

type analysisService struct {
	log *logger.Logger

	jobs       analysis.JobStore
	ingester   ingestion.Ingester
	dispatcher WorkflowDispatcher
	runner     *pipeline.Runner
	channels   repos.ChannelRepo
	comments   repos.CommentRepo
	policy     analysis.ProgressPolicy
}

func NewAnalysisService(
	log *logger.Logger,
	jobs analysis.JobStore,
	ingester ingestion.Ingester,
	dispatcher WorkflowDispatcher,
	runner *pipeline.Runner,
	channels repos.ChannelRepo,
	comments repos.CommentRepo,
) (AnalysisService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if jobs == nil || ingester == nil || dispatcher == nil || runner == nil || channels == nil || comments == nil {
		return nil, fmt.Errorf("analysis service missing deps")
	}
	return &analysisService{
		log:        log.With("service", "AnalysisService"),
		jobs:       jobs,
		ingester:   ingester,
		dispatcher: dispatcher,
		runner:     runner,
		channels:   channels,
		comments:   comments,
		policy:     analysis.LoadProgressPolicy(),
	}, nil
}

func (s *analysisService) StartAnalysis(ctx context.Context, channelRef, analysisID string) (*types.AnalysisJob, error) {
	channelID, err := s.ingester.ResolveChannelID(ctx, channelRef)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrInvalidArgument, err)
	}
	analysisID = strings.TrimSpace(analysisID)
	if analysisID == "" {
		analysisID = uuid.NewString()
	}
	log := s.log.With("analysis_id", analysisID, "channel_id", channelID)
	dbc := dbctx.Context{Ctx: ctx}

	known, err := s.channels.Exists(dbc, channelID)
	if err != nil {
		return nil, fmt.Errorf("check channel: %w", err)
	}

	job := &types.AnalysisJob{
		AnalysisID: analysisID,
		ChannelID:  channelID,
	}

	if !known {
		job.Status = types.StatusIngesting
		job.Progress = 0.1
		job.Message = "fetching channel comments"
		if err := s.jobs.Put(ctx, job); err != nil {
			return nil, fmt.Errorf("register job: %w", err)
		}

		stats, err := s.ingester.IngestChannel(ctx, channelID)
		if err != nil {
			log.Error("Channel ingestion failed", "error", err)
			s.record(ctx, analysisID, func(j *types.AnalysisJob) {
				j.Status = types.StatusError
				j.Message = fmt.Sprintf("failed to fetch channel data: %v", err)
			})
			return nil, fmt.Errorf("ingest channel %s: %w", channelID, err)
		}
		log.Info("Channel ingested", "videos", stats.Videos, "comments", stats.Comments)

		job = s.record(ctx, analysisID, func(j *types.AnalysisJob) {
			j.Status = types.StatusStarting
			j.Progress = 0.3
			j.Message = "starting analysis"
		})
	} else {
		total, err := s.comments.CountByChannel(dbc, channelID)
		if err != nil {
			return nil, fmt.Errorf("count comments: %w", err)
		}
		unscored, err := s.comments.CountUnscoredByChannel(dbc, channelID)
		if err != nil {
			return nil, fmt.Errorf("count unscored comments: %w", err)
		}

		// Everything already scored: answer terminal immediately, nothing to
		// run remotely.
		if total > 0 && unscored == 0 {
			job.Status = types.StatusCompleted
			job.Progress = 1.0
			job.Message = "all comments for this channel have already been processed"
			if err := s.jobs.Put(ctx, job); err != nil {
				return nil, fmt.Errorf("register job: %w", err)
			}
			return job, nil
		}

		job.Status = types.StatusAnalyzing
		job.Progress = 0.5
		job.Message = "analyzing comments"
		if err := s.jobs.Put(ctx, job); err != nil {
			return nil, fmt.Errorf("register job: %w", err)
		}
	}

	handle, err := s.dispatcher.Dispatch(ctx, analysisrun.Input{
		AnalysisID: analysisID,
		ChannelID:  channelID,
	})
	if err != nil {
		log.Error("Workflow dispatch failed", "error", err)
		s.record(ctx, analysisID, func(j *types.AnalysisJob) {
			j.Status = types.StatusError
			j.Message = "failed to start analysis"
		})
		return nil, fmt.Errorf("dispatch analysis: %w", err)
	}

	job = s.record(ctx, analysisID, func(j *types.AnalysisJob) {
		j.Handle = handle
	})
	log.Info("Analysis dispatched", "workflow_id", handle.WorkflowID, "run_id", handle.RunID)
	return job, nil
}

func (s *analysisService) Progress(ctx context.Context, analysisID string) (*types.AnalysisJob, error) {
	job, err := s.jobs.Get(ctx, analysisID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return &types.AnalysisJob{
				AnalysisID: analysisID,
				Status:     types.StatusNotFound,
				Message:    "analysis not found",
			}, nil
		}
		return nil, fmt.Errorf("load job: %w", err)
	}

	if job.Status.Terminal() || job.Handle == nil {
		return job, nil
	}

	res, err := s.dispatcher.Check(ctx, *job.Handle)
	if err != nil {
		// Transient describe failure: keep reporting the last known state.
		s.log.Warn("Workflow status check failed", "analysis_id", analysisID, "error", err)
		return job, nil
	}

	switch res.State {
	case temporalx.CheckDone:
		return s.record(ctx, analysisID, func(j *types.AnalysisJob) {
			j.Status = types.StatusCompleted
			j.Progress = 1.0
			if strings.TrimSpace(j.Message) == "" || j.Message == "analyzing comments" {
				j.Message = "analysis complete"
			}
		}), nil
	case temporalx.CheckFailed:
		return s.record(ctx, analysisID, func(j *types.AnalysisJob) {
			j.Status = types.StatusError
			j.Progress = 0.0
			if res.Reason != "" {
				j.Message = res.Reason
			}
		}), nil
	default:
		return s.record(ctx, analysisID, func(j *types.AnalysisJob) {
			if j.Status == types.StatusAnalyzing {
				j.Progress = s.policy.Advance(j.Progress)
			}
		}), nil
	}
}

func (s *analysisService) RunInline(ctx context.Context, channelID string) (pipeline.Result, error) {
	return s.runner.Run(ctx, channelID)
}

// record applies a registry mutation and returns the resulting snapshot. The
// registry is advisory from here on out, so failures log and fall back to a
// best-effort read.
func (s *analysisService) record(ctx context.Context, analysisID string, mutate func(*types.AnalysisJob)) *types.AnalysisJob {
	job, err := s.jobs.Update(ctx, analysisID, mutate)
	if err != nil {
		s.log.Warn("Job registry update failed", "analysis_id", analysisID, "error", err)
		if cur, gerr := s.jobs.Get(ctx, analysisID); gerr == nil {
			return cur
		}
		return &types.AnalysisJob{AnalysisID: analysisID, Status: types.StatusNotFound}
	}
	return job
}
