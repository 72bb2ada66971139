package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/toxicity-backend/internal/data/repos"
	"github.com/yungbote/toxicity-backend/internal/pkg/logger"
)

type Repos struct {
	Channels repos.ChannelRepo
	Videos   repos.VideoRepo
	Comments repos.CommentRepo
	Scores   repos.ToxicityScoreRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		Channels: repos.NewChannelRepo(db, log),
		Videos:   repos.NewVideoRepo(db, log),
		Comments: repos.NewCommentRepo(db, log),
		Scores:   repos.NewToxicityScoreRepo(db, log),
	}
}
