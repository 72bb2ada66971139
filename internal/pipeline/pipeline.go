package pipeline

import (
	"context"
	"fmt"

	"github.com/yungbote/toxicity-backend/internal/data/repos"
	types "github.com/yungbote/toxicity-backend/internal/domain"
	"github.com/yungbote/toxicity-backend/internal/pkg/dbctx"
	"github.com/yungbote/toxicity-backend/internal/pkg/envutil"
	"github.com/yungbote/toxicity-backend/internal/pkg/logger"
	"github.com/yungbote/toxicity-backend/internal/scoring"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the terminal outcome of one pipeline run.
type Result struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Processed int    `json:"processed"`
}

type Config struct {
	// PageSize is the fixed page size P for the offset cursor walk.
	PageSize int
	// BatchSize caps how many comments go to the model per call.
	BatchSize int
	// ChunkSize caps how many scores each storage upsert carries.
	ChunkSize int
}

func LoadConfig() Config {
	cfg := Config{
		PageSize:  envutil.Int("PIPELINE_PAGE_SIZE", 500),
		BatchSize: envutil.Int("PIPELINE_BATCH_SIZE", 32),
		ChunkSize: envutil.Int("SCORE_UPSERT_CHUNK", 100),
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 500
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 32
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 100
	}
	return cfg
}

// Runner walks a channel's comments page by page, scores whatever has no
// score yet, and persists results as it goes. Two concurrent runs over the
// same channel may both score an overlapping set; that wastes model time
// but converges to the same rows because the writes are idempotent upserts.
type Runner struct {
	channels repos.ChannelRepo
	comments repos.CommentRepo
	scores   repos.ToxicityScoreRepo
	batch    *scoring.BatchScorer
	cfg      Config
	log      *logger.Logger
}

func NewRunner(
	channels repos.ChannelRepo,
	comments repos.CommentRepo,
	scores repos.ToxicityScoreRepo,
	batch *scoring.BatchScorer,
	cfg Config,
	baseLog *logger.Logger,
) *Runner {
	return &Runner{
		channels: channels,
		comments: comments,
		scores:   scores,
		batch:    batch,
		cfg:      cfg,
		log:      baseLog.With("service", "PipelineRunner"),
	}
}

// Run processes every unscored comment of the channel. The returned error
// is reserved for infrastructure failures (store reads, score persistence);
// domain outcomes such as an unknown channel come back as an error Result
// with nothing written.
func (r *Runner) Run(ctx context.Context, channelID string) (Result, error) {
	dbc := dbctx.Context{Ctx: ctx}
	log := r.log.With("channel_id", channelID)

	exists, err := r.channels.Exists(dbc, channelID)
	if err != nil {
		return Result{}, fmt.Errorf("check channel: %w", err)
	}
	if !exists {
		return Result{
			Status:  StatusError,
			Message: fmt.Sprintf("channel %s not found in database", channelID),
		}, nil
	}

	total, err := r.comments.CountByChannel(dbc, channelID)
	if err != nil {
		return Result{}, fmt.Errorf("count comments: %w", err)
	}
	if total == 0 {
		return Result{
			Status:  StatusError,
			Message: "no comments found for this channel",
		}, nil
	}

	// Snapshot of already-scored ids, extended locally as batches land so
	// later pages never re-send ids the store may not have caught up on.
	processed, err := r.scores.ExistingIDs(dbc)
	if err != nil {
		return Result{}, fmt.Errorf("load processed ids: %w", err)
	}

	log.Info("Starting toxicity pipeline", "total_comments", total, "already_scored", len(processed))

	processedCount := 0
	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		page, err := r.comments.ListByChannelPage(dbc, channelID, r.cfg.PageSize, offset)
		if err != nil {
			return Result{}, fmt.Errorf("fetch page at offset %d: %w", offset, err)
		}
		if len(page) == 0 {
			break
		}

		unprocessed := make([]*types.Comment, 0, len(page))
		for _, c := range page {
			if _, ok := processed[c.ID]; ok {
				continue
			}
			unprocessed = append(unprocessed, c)
		}

		if len(unprocessed) > 0 {
			n, err := r.scorePage(ctx, unprocessed, processed)
			if err != nil {
				return Result{}, err
			}
			processedCount += n
			log.Debug("Page processed", "offset", offset, "page", len(page), "scored", n)
		}

		if len(page) < r.cfg.PageSize {
			break
		}
		offset += r.cfg.PageSize
	}

	msg := fmt.Sprintf("processed %d new comments", processedCount)
	if processedCount == 0 {
		msg = "all comments for this channel have already been processed"
	}
	log.Info("Pipeline finished", "processed", processedCount)
	return Result{Status: StatusSuccess, Message: msg, Processed: processedCount}, nil
}

// scorePage scores one page's unprocessed comments in model-sized batches,
// persists them, and folds the ids into the processed set.
func (r *Runner) scorePage(ctx context.Context, unprocessed []*types.Comment, processed map[string]struct{}) (int, error) {
	dbc := dbctx.Context{Ctx: ctx}

	pageScores := make([]*types.ToxicityScore, 0, len(unprocessed))
	for i := 0; i < len(unprocessed); i += r.cfg.BatchSize {
		end := i + r.cfg.BatchSize
		if end > len(unprocessed) {
			end = len(unprocessed)
		}
		pageScores = append(pageScores, r.batch.ScoreBatch(ctx, unprocessed[i:end])...)
	}
	if len(pageScores) == 0 {
		return 0, nil
	}

	if _, err := r.scores.UpsertBatch(dbc, pageScores, r.cfg.ChunkSize); err != nil {
		return 0, fmt.Errorf("store scores: %w", err)
	}
	for _, s := range pageScores {
		processed[s.ID] = struct{}{}
	}
	return len(pageScores), nil
}
