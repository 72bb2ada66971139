package repos

import (
	"context"
	"testing"

	"github.com/yungbote/toxicity-backend/internal/data/repos/testutil"
	types "github.com/yungbote/toxicity-backend/internal/domain"
	"github.com/yungbote/toxicity-backend/internal/pkg/dbctx"
)

func TestCommentRepoPagination(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	channelID := "UCcommentchan00000000001"
	testutil.SeedChannel(t, ctx, tx, channelID)
	testutil.SeedVideo(t, ctx, tx, channelID, "vid-comments-1")
	testutil.SeedComments(t, ctx, tx, "vid-comments-1", 7)

	// Comments on another channel must never appear in the page walk.
	testutil.SeedChannel(t, ctx, tx, "UCcommentchan00000000002")
	testutil.SeedVideo(t, ctx, tx, "UCcommentchan00000000002", "vid-comments-other")
	testutil.SeedComments(t, ctx, tx, "vid-comments-other", 3)

	repo := NewCommentRepo(gdb, testutil.Logger(t))

	total, err := repo.CountByChannel(dbc, channelID)
	if err != nil {
		t.Fatalf("CountByChannel: %v", err)
	}
	if total != 7 {
		t.Fatalf("CountByChannel: expected 7, got %d", total)
	}

	seen := map[string]bool{}
	pageSize := 3
	offset := 0
	pages := 0
	for {
		page, err := repo.ListByChannelPage(dbc, channelID, pageSize, offset)
		if err != nil {
			t.Fatalf("ListByChannelPage offset=%d: %v", offset, err)
		}
		if len(page) == 0 {
			break
		}
		pages++
		for _, c := range page {
			if seen[c.ID] {
				t.Fatalf("comment %s returned on two pages", c.ID)
			}
			seen[c.ID] = true
			if c.VideoID != "vid-comments-1" {
				t.Fatalf("comment %s belongs to wrong video %s", c.ID, c.VideoID)
			}
		}
		if len(page) < pageSize {
			break
		}
		offset += pageSize
	}
	if pages != 3 {
		t.Fatalf("expected 3 page fetches for 7 rows at size 3, got %d", pages)
	}
	if len(seen) != 7 {
		t.Fatalf("expected 7 distinct comments, got %d", len(seen))
	}

	unscored, err := repo.CountUnscoredByChannel(dbc, channelID)
	if err != nil {
		t.Fatalf("CountUnscoredByChannel: %v", err)
	}
	if unscored != 7 {
		t.Fatalf("expected 7 unscored before any scoring, got %d", unscored)
	}

	// Scoring two comments must shrink the unscored count.
	if err := tx.WithContext(ctx).Create([]*types.ToxicityScore{
		{ID: "vid-comments-1-c000", Score: 0.1},
		{ID: "vid-comments-1-c001", Score: 0.2},
	}).Error; err != nil {
		t.Fatalf("seed scores: %v", err)
	}
	unscored, err = repo.CountUnscoredByChannel(dbc, channelID)
	if err != nil {
		t.Fatalf("CountUnscoredByChannel: %v", err)
	}
	if unscored != 5 {
		t.Fatalf("expected 5 unscored after scoring 2, got %d", unscored)
	}
}
