package analysis

import (
	"context"
	"errors"
	"sync"
	"testing"

	types "github.com/yungbote/toxicity-backend/internal/domain"
	pkgerrors "github.com/yungbote/toxicity-backend/internal/pkg/errors"
)

func TestMemoryStorePutGetOverwrite(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.Get(ctx, "nope"); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	job := &types.AnalysisJob{
		AnalysisID: "a1",
		ChannelID:  "UCx",
		Status:     types.StatusAnalyzing,
		Progress:   0.5,
		Message:    "Analysis in progress",
	}
	if err := store.Put(ctx, job); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := store.Get(ctx, "a1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != types.StatusAnalyzing || got.Progress != 0.5 {
		t.Fatalf("unexpected snapshot: %+v", got)
	}

	// A new request for the same analysis id replaces the old entry.
	if err := store.Put(ctx, &types.AnalysisJob{
		AnalysisID: "a1",
		ChannelID:  "UCy",
		Status:     types.StatusIngesting,
		Progress:   0.1,
	}); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, err = store.Get(ctx, "a1")
	if err != nil {
		t.Fatalf("Get after overwrite: %v", err)
	}
	if got.ChannelID != "UCy" || got.Status != types.StatusIngesting {
		t.Fatalf("overwrite did not replace entry: %+v", got)
	}

	// Mutating the returned snapshot must not leak into the store.
	got.Progress = 0.99
	again, _ := store.Get(ctx, "a1")
	if again.Progress == 0.99 {
		t.Fatalf("Get returned a shared pointer")
	}
}

func TestMemoryStoreUpdateAtomic(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Put(ctx, &types.AnalysisJob{
		AnalysisID: "a2",
		Status:     types.StatusAnalyzing,
		Progress:   0,
	}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Concurrent increments must not lose updates.
	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, _ = store.Update(ctx, "a2", func(j *types.AnalysisJob) {
				j.Progress += 0.01
			})
		}()
	}
	wg.Wait()

	got, err := store.Get(ctx, "a2")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Progress < 0.999 {
		t.Fatalf("lost updates: progress=%v want ~1.0", got.Progress)
	}

	if _, err := store.Update(ctx, "missing", func(j *types.AnalysisJob) {}); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestProgressPolicyAdvance(t *testing.T) {
	p := ProgressPolicy{Step: 0.05, Cap: 0.9}

	// Scenario: in-flight job starting at 0.5 advances 0.55, 0.60, ... and
	// caps at 0.90 without ever reaching 1.0.
	cur := 0.5
	want := []float64{0.55, 0.60, 0.65, 0.70, 0.75, 0.80, 0.85, 0.90, 0.90, 0.90}
	for i, w := range want {
		cur = p.Advance(cur)
		if diff := cur - w; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("step %d: got %v want %v", i, cur, w)
		}
	}
	if cur >= 1.0 {
		t.Fatalf("heuristic must never reach 1.0, got %v", cur)
	}

	// Never regress even if current already exceeds the cap.
	if got := p.Advance(0.95); got != 0.95 {
		t.Fatalf("Advance(0.95)=%v, want 0.95 (no regression)", got)
	}
}

func TestLoadProgressPolicyDefaults(t *testing.T) {
	p := LoadProgressPolicy()
	if p.Step != 0.05 || p.Cap != 0.9 {
		t.Fatalf("unexpected defaults: %+v", p)
	}
}
