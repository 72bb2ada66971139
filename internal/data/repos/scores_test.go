package repos

import (
	"context"
	"testing"

	"github.com/yungbote/toxicity-backend/internal/data/repos/testutil"
	types "github.com/yungbote/toxicity-backend/internal/domain"
	"github.com/yungbote/toxicity-backend/internal/pkg/dbctx"
)

func TestToxicityScoreRepoUpsertIdempotent(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	testutil.SeedChannel(t, ctx, tx, "UCscorechan0000000000001")
	testutil.SeedVideo(t, ctx, tx, "UCscorechan0000000000001", "vid-scores-1")
	comments := testutil.SeedComments(t, ctx, tx, "vid-scores-1", 5)

	repo := NewToxicityScoreRepo(gdb, testutil.Logger(t))

	scores := make([]*types.ToxicityScore, 0, len(comments))
	for _, c := range comments {
		scores = append(scores, &types.ToxicityScore{ID: c.ID, Score: 0.25})
	}

	written, err := repo.UpsertBatch(dbc, scores, 2)
	if err != nil {
		t.Fatalf("UpsertBatch: %v", err)
	}
	if written != 3 {
		t.Fatalf("UpsertBatch: expected 3 chunks, got %d", written)
	}

	// Re-writing the same ids with new values must not add rows.
	for _, s := range scores {
		s.Score = 0.75
	}
	if _, err := repo.UpsertBatch(dbc, scores, 2); err != nil {
		t.Fatalf("UpsertBatch again: %v", err)
	}

	count, err := repo.CountForChannel(dbc, "UCscorechan0000000000001")
	if err != nil {
		t.Fatalf("CountForChannel: %v", err)
	}
	if count != int64(len(comments)) {
		t.Fatalf("CountForChannel: expected %d, got %d", len(comments), count)
	}

	rows, err := repo.ListByChannel(dbc, "UCscorechan0000000000001")
	if err != nil {
		t.Fatalf("ListByChannel: %v", err)
	}
	for _, row := range rows {
		if row.Score != 0.75 {
			t.Fatalf("expected updated score 0.75 for %s, got %v", row.ID, row.Score)
		}
	}

	ids, err := repo.ExistingIDs(dbc)
	if err != nil {
		t.Fatalf("ExistingIDs: %v", err)
	}
	for _, c := range comments {
		if _, ok := ids[c.ID]; !ok {
			t.Fatalf("ExistingIDs missing %s", c.ID)
		}
	}
}

func TestToxicityScoreRepoUpsertAbortReportsChunks(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx, cancel := context.WithCancel(context.Background())
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	testutil.SeedChannel(t, ctx, tx, "UCscorechan0000000000002")
	testutil.SeedVideo(t, ctx, tx, "UCscorechan0000000000002", "vid-scores-2")
	comments := testutil.SeedComments(t, ctx, tx, "vid-scores-2", 4)

	repo := NewToxicityScoreRepo(gdb, testutil.Logger(t))

	scores := make([]*types.ToxicityScore, 0, len(comments))
	for _, c := range comments {
		scores = append(scores, &types.ToxicityScore{ID: c.ID, Score: 0.5})
	}

	// Cancel mid-call so later chunks fail; the writer must report what it
	// managed to write and must not attempt the remaining chunks.
	cancel()
	written, err := repo.UpsertBatch(dbc, scores, 2)
	if err == nil {
		t.Fatalf("expected error from canceled context")
	}
	if written != 0 {
		t.Fatalf("expected 0 chunks written after immediate cancel, got %d", written)
	}
}
