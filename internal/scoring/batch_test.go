package scoring

import (
	"context"
	"errors"
	"testing"

	types "github.com/yungbote/toxicity-backend/internal/domain"
	"github.com/yungbote/toxicity-backend/internal/pkg/logger"
)

type fakeScorer struct {
	scores []float64
	err    error
	calls  [][]string
}

func (f *fakeScorer) Predict(ctx context.Context, texts []string) ([]float64, error) {
	f.calls = append(f.calls, texts)
	if f.err != nil {
		return nil, f.err
	}
	if f.scores != nil {
		return f.scores, nil
	}
	out := make([]float64, len(texts))
	for i := range out {
		out[i] = 0.1
	}
	return out, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func TestScoreBatchEmptyTextNeverReachesModel(t *testing.T) {
	scorer := &fakeScorer{scores: []float64{0.1}}
	b := NewBatchScorer(scorer, testLogger(t))

	out := b.ScoreBatch(context.Background(), []*types.Comment{
		{ID: "c1", Text: "hello"},
		{ID: "c2", Text: ""},
		{ID: "c3", Text: "   \t\n"},
	})
	if len(out) != 3 {
		t.Fatalf("expected 3 scores, got %d", len(out))
	}
	byID := map[string]float64{}
	for _, s := range out {
		byID[s.ID] = s.Score
	}
	if byID["c1"] != 0.1 {
		t.Fatalf("c1: got %v want 0.1", byID["c1"])
	}
	if byID["c2"] != 0.0 || byID["c3"] != 0.0 {
		t.Fatalf("blank comments must score 0.0, got c2=%v c3=%v", byID["c2"], byID["c3"])
	}

	if len(scorer.calls) != 1 {
		t.Fatalf("expected exactly one model call, got %d", len(scorer.calls))
	}
	if len(scorer.calls[0]) != 1 || scorer.calls[0][0] != "hello" {
		t.Fatalf("model must only see non-blank text, saw %v", scorer.calls[0])
	}
}

func TestScoreBatchMissingIDDropped(t *testing.T) {
	scorer := &fakeScorer{scores: []float64{0.2, 0.8}}
	b := NewBatchScorer(scorer, testLogger(t))

	out := b.ScoreBatch(context.Background(), []*types.Comment{
		{ID: "", Text: "no id"},
		{ID: "c1", Text: "first"},
		nil,
		{ID: "c2", Text: "second"},
	})
	if len(out) != 2 {
		t.Fatalf("expected 2 scores (dropped id-less entries), got %d", len(out))
	}
	if out[0].ID != "c1" || out[0].Score != 0.2 {
		t.Fatalf("positional mapping broken: %+v", out[0])
	}
	if out[1].ID != "c2" || out[1].Score != 0.8 {
		t.Fatalf("positional mapping broken: %+v", out[1])
	}
}

func TestScoreBatchNeutralFallbackOnModelError(t *testing.T) {
	scorer := &fakeScorer{err: errors.New("cuda out of memory")}
	b := NewBatchScorer(scorer, testLogger(t))

	out := b.ScoreBatch(context.Background(), []*types.Comment{
		{ID: "c1", Text: "one"},
		{ID: "c2", Text: "two"},
		{ID: "c3", Text: "three"},
		{ID: "c4", Text: ""},
	})
	if len(out) != 4 {
		t.Fatalf("expected 4 scores, got %d", len(out))
	}
	for _, s := range out {
		if s.Score != NeutralFallbackScore {
			t.Fatalf("%s: got %v want neutral %v", s.ID, s.Score, NeutralFallbackScore)
		}
	}
}

func TestScoreBatchScoreCountMismatchFallsBack(t *testing.T) {
	scorer := &fakeScorer{scores: []float64{0.3}}
	b := NewBatchScorer(scorer, testLogger(t))

	out := b.ScoreBatch(context.Background(), []*types.Comment{
		{ID: "c1", Text: "one"},
		{ID: "c2", Text: "two"},
	})
	for _, s := range out {
		if s.Score != NeutralFallbackScore {
			t.Fatalf("%s: got %v want neutral fallback on mismatch", s.ID, s.Score)
		}
	}
}

func TestScoreBatchClampsOutOfRangeScores(t *testing.T) {
	scorer := &fakeScorer{scores: []float64{-0.4, 1.7}}
	b := NewBatchScorer(scorer, testLogger(t))

	out := b.ScoreBatch(context.Background(), []*types.Comment{
		{ID: "c1", Text: "one"},
		{ID: "c2", Text: "two"},
	})
	if out[0].Score != 0 || out[1].Score != 1 {
		t.Fatalf("expected scores clamped to [0,1], got %v %v", out[0].Score, out[1].Score)
	}
}
