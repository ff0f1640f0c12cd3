package entities

import (
	"github.com/google/uuid"
	"time"
)

type Video struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null;index:idx_videos_name"`
	Uploader  string    `json:"uploader" gorm:"type:varchar(255);not null;index:idx_videos_uploader"`
	Public    bool      `json:"public" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
}

func (Video) TableName() string {
	return "videos"
}

// ObjectKey is the storage backend key the video's bytes live under.
func (v Video) ObjectKey() string {
	return v.ID.String() + ".mp4"
}
