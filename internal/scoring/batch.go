package scoring

import (
	"context"
	"strings"

	types "github.com/yungbote/toxicity-backend/internal/domain"
	"github.com/yungbote/toxicity-backend/internal/pkg/logger"
)

// NeutralFallbackScore is assigned to every id in a batch whose model call
// failed. Degrade-not-drop: each requested id always yields exactly one
// score, so a flaky model never stalls the pipeline.
const NeutralFallbackScore = 0.5

// BatchScorer applies the model to batches of comments and enforces the
// scoring contract around it.
type BatchScorer struct {
	scorer Scorer
	log    *logger.Logger
}

func NewBatchScorer(scorer Scorer, baseLog *logger.Logger) *BatchScorer {
	return &BatchScorer{
		scorer: scorer,
		log:    baseLog.With("service", "BatchScorer"),
	}
}

// ScoreBatch scores one batch of comments:
//
//   - comments without an id are dropped with a warning, never scored or
//     stored;
//   - empty or whitespace-only text never reaches the model and scores 0.0;
//   - the remaining texts go to the model in one call, and returned scores
//     are mapped back strictly by input position (the model only sees raw
//     text, never ids);
//   - if the model call fails, every surviving id in the batch (including
//     the already-resolved empty-text ones) gets NeutralFallbackScore.
//
// It never returns an error.
func (b *BatchScorer) ScoreBatch(ctx context.Context, comments []*types.Comment) []*types.ToxicityScore {
	if len(comments) == 0 {
		return nil
	}

	surviving := make([]*types.Comment, 0, len(comments))
	for _, c := range comments {
		if c == nil || c.ID == "" {
			b.log.Warn("Comment missing id, skipping", "video_id", safeVideoID(c))
			continue
		}
		surviving = append(surviving, c)
	}
	if len(surviving) == 0 {
		return nil
	}

	texts := make([]string, len(surviving))
	for i, c := range surviving {
		texts[i] = c.Text
	}
	scores := b.scoreTexts(ctx, texts)

	out := make([]*types.ToxicityScore, len(surviving))
	for i, c := range surviving {
		out[i] = &types.ToxicityScore{ID: c.ID, Score: scores[i]}
	}
	return out
}

// scoreTexts returns one score per input text, positionally. Blank texts
// resolve to 0.0 without a model call; a model failure resolves the whole
// batch to the neutral fallback.
func (b *BatchScorer) scoreTexts(ctx context.Context, texts []string) []float64 {
	out := make([]float64, len(texts))

	validTexts := make([]string, 0, len(texts))
	validIdx := make([]int, 0, len(texts))
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			continue
		}
		validTexts = append(validTexts, strings.TrimSpace(t))
		validIdx = append(validIdx, i)
	}
	if len(validTexts) == 0 {
		return out
	}

	scores, err := b.scorer.Predict(ctx, validTexts)
	if err != nil || len(scores) != len(validTexts) {
		b.log.Warn("Model call failed, assigning neutral fallback to batch",
			"batch_size", len(texts), "error", err)
		for i := range out {
			out[i] = NeutralFallbackScore
		}
		return out
	}

	for i, idx := range validIdx {
		out[idx] = clamp01(scores[i])
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func safeVideoID(c *types.Comment) string {
	if c == nil {
		return ""
	}
	return c.VideoID
}
