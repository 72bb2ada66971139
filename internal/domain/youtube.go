package domain

import "time"

// Channel is a YouTube channel tracked for toxicity analysis.
type Channel struct {
	ID              string    `gorm:"primaryKey;size:64" json:"id"`
	Name            string    `gorm:"column:name;not null" json:"name"`
	UploadsPlaylist string    `gorm:"column:uploads_playlist" json:"uploads_playlist,omitempty"`
	CreatedAt       time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Channel) TableName() string { return "channels" }

type Video struct {
	ID          string     `gorm:"primaryKey;size:64" json:"id"`
	ChannelID   string     `gorm:"column:channel_id;size:64;not null;index" json:"channel_id"`
	Title       string     `gorm:"column:title" json:"title"`
	PublishedAt *time.Time `gorm:"column:published_at" json:"published_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;default:now()" json:"created_at"`
}

func (Video) TableName() string { return "videos" }

// Comment is immutable once ingested; the pipeline only reads it.
type Comment struct {
	ID          string     `gorm:"primaryKey;size:64" json:"id"`
	VideoID     string     `gorm:"column:video_id;size:64;not null;index" json:"video_id"`
	Author      string     `gorm:"column:author" json:"author,omitempty"`
	Text        string     `gorm:"column:text" json:"text"`
	PublishedAt *time.Time `gorm:"column:published_at" json:"published_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;default:now()" json:"created_at"`
}

func (Comment) TableName() string { return "comments" }

// ToxicityScore is the upsert target keyed by comment id. Re-writing the
// same id is safe; the converged state is exactly one row per comment.
type ToxicityScore struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Score     float64   `gorm:"column:toxicity_score;not null" json:"toxicity_score"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ToxicityScore) TableName() string { return "comment_toxicity" }
