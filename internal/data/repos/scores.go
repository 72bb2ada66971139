package repos

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/toxicity-backend/internal/domain"
	"github.com/yungbote/toxicity-backend/internal/pkg/dbctx"
	"github.com/yungbote/toxicity-backend/internal/pkg/logger"
)

type ToxicityScoreRepo interface {
	// ExistingIDs returns the set of comment ids that already have a score.
	ExistingIDs(dbc dbctx.Context) (map[string]struct{}, error)
	// UpsertBatch writes scores in fixed-size chunks, one idempotent upsert
	// per chunk keyed by id. On a chunk failure it aborts the remaining
	// chunks and returns the number of chunks that were written; already
	// written chunks are not rolled back (re-running converges).
	UpsertBatch(dbc dbctx.Context, scores []*types.ToxicityScore, chunkSize int) (int, error)
	ListByChannel(dbc dbctx.Context, channelID string) ([]*types.ToxicityScore, error)
	CountForChannel(dbc dbctx.Context, channelID string) (int64, error)
}

type toxicityScoreRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewToxicityScoreRepo(db *gorm.DB, baseLog *logger.Logger) ToxicityScoreRepo {
	return &toxicityScoreRepo{
		db:  db,
		log: baseLog.With("repo", "ToxicityScoreRepo"),
	}
}

func (r *toxicityScoreRepo) ExistingIDs(dbc dbctx.Context) (map[string]struct{}, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []string
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.ToxicityScore{}).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}

func (r *toxicityScoreRepo) UpsertBatch(dbc dbctx.Context, scores []*types.ToxicityScore, chunkSize int) (int, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(scores) == 0 {
		return 0, nil
	}
	if chunkSize <= 0 {
		chunkSize = 100
	}

	written := 0
	for i := 0; i < len(scores); i += chunkSize {
		end := i + chunkSize
		if end > len(scores) {
			end = len(scores)
		}
		chunk := scores[i:end]
		if err := transaction.WithContext(dbc.Ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"toxicity_score", "updated_at"}),
			}).
			Create(&chunk).Error; err != nil {
			return written, fmt.Errorf("upsert scores chunk %d (%d chunks written): %w", i/chunkSize, written, err)
		}
		written++
	}
	return written, nil
}

func (r *toxicityScoreRepo) ListByChannel(dbc dbctx.Context, channelID string) ([]*types.ToxicityScore, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ToxicityScore
	if channelID == "" {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.ToxicityScore{}).
		Joins("JOIN comments ON comments.id = comment_toxicity.id").
		Joins("JOIN videos ON videos.id = comments.video_id").
		Where("videos.channel_id = ?", channelID).
		Order("comment_toxicity.id").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *toxicityScoreRepo) CountForChannel(dbc dbctx.Context, channelID string) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if channelID == "" {
		return 0, nil
	}
	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.ToxicityScore{}).
		Joins("JOIN comments ON comments.id = comment_toxicity.id").
		Joins("JOIN videos ON videos.id = comments.video_id").
		Where("videos.channel_id = ?", channelID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
