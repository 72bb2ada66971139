package testutil

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/gorm"

	types "github.com/yungbote/toxicity-backend/internal/domain"
)

func SeedChannel(tb testing.TB, ctx context.Context, tx *gorm.DB, id string) *types.Channel {
	tb.Helper()
	ch := &types.Channel{
		ID:   id,
		Name: "channel " + id,
	}
	if err := tx.WithContext(ctx).Create(ch).Error; err != nil {
		tb.Fatalf("seed channel: %v", err)
	}
	return ch
}

func SeedVideo(tb testing.TB, ctx context.Context, tx *gorm.DB, channelID, id string) *types.Video {
	tb.Helper()
	v := &types.Video{
		ID:        id,
		ChannelID: channelID,
		Title:     "video " + id,
	}
	if err := tx.WithContext(ctx).Create(v).Error; err != nil {
		tb.Fatalf("seed video: %v", err)
	}
	return v
}

func SeedComments(tb testing.TB, ctx context.Context, tx *gorm.DB, videoID string, n int) []*types.Comment {
	tb.Helper()
	out := make([]*types.Comment, 0, n)
	for i := 0; i < n; i++ {
		c := &types.Comment{
			ID:      fmt.Sprintf("%s-c%03d", videoID, i),
			VideoID: videoID,
			Text:    fmt.Sprintf("comment %d", i),
		}
		out = append(out, c)
	}
	if err := tx.WithContext(ctx).Create(&out).Error; err != nil {
		tb.Fatalf("seed comments: %v", err)
	}
	return out
}
