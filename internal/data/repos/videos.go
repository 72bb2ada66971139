package repos

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/toxicity-backend/internal/domain"
	"github.com/yungbote/toxicity-backend/internal/pkg/dbctx"
	"github.com/yungbote/toxicity-backend/internal/pkg/logger"
)

type VideoRepo interface {
	UpsertBatch(dbc dbctx.Context, videos []*types.Video) error
	ListByChannel(dbc dbctx.Context, channelID string) ([]*types.Video, error)
}

type videoRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVideoRepo(db *gorm.DB, baseLog *logger.Logger) VideoRepo {
	return &videoRepo{
		db:  db,
		log: baseLog.With("repo", "VideoRepo"),
	}
}

func (r *videoRepo) UpsertBatch(dbc dbctx.Context, videos []*types.Video) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(videos) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "published_at"}),
		}).
		Create(&videos).Error
}

func (r *videoRepo) ListByChannel(dbc dbctx.Context, channelID string) ([]*types.Video, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Video
	if channelID == "" {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("channel_id = ?", channelID).
		Order("id").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
