package repos

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/toxicity-backend/internal/domain"
	"github.com/yungbote/toxicity-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/toxicity-backend/internal/pkg/errors"
	"github.com/yungbote/toxicity-backend/internal/pkg/logger"
)

type ChannelRepo interface {
	Get(dbc dbctx.Context, id string) (*types.Channel, error)
	Exists(dbc dbctx.Context, id string) (bool, error)
	Upsert(dbc dbctx.Context, channel *types.Channel) error
}

type channelRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChannelRepo(db *gorm.DB, baseLog *logger.Logger) ChannelRepo {
	return &channelRepo{
		db:  db,
		log: baseLog.With("repo", "ChannelRepo"),
	}
}

func (r *channelRepo) Get(dbc dbctx.Context, id string) (*types.Channel, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == "" {
		return nil, pkgerrors.ErrInvalidArgument
	}
	var ch types.Channel
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		First(&ch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

func (r *channelRepo) Exists(dbc dbctx.Context, id string) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == "" {
		return false, nil
	}
	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Channel{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *channelRepo) Upsert(dbc dbctx.Context, channel *types.Channel) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if channel == nil || channel.ID == "" {
		return pkgerrors.ErrInvalidArgument
	}
	return transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "uploads_playlist", "updated_at"}),
		}).
		Create(channel).Error
}
