package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// ProjectMedia is one ordered asset of a project. SortOrder is the zero-based
// position in the list submitted on the last save.
type ProjectMedia struct {
	ID          uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	ProjectSlug string    `json:"project_slug" db:"project_slug" gorm:"column:project_slug;type:text;not null;index:idx_project_media_slug_order,priority:1"`
	SortOrder   int       `json:"sort_order" db:"sort_order" gorm:"column:sort_order;not null;default:0;index:idx_project_media_slug_order,priority:2"`
	Type        string    `json:"type" db:"type" gorm:"type:text;not null"`
	Src         string    `json:"src" db:"src" gorm:"type:text;not null;default:''"`
	Alt         *string   `json:"alt,omitempty" db:"alt" gorm:"type:text"`
	Thumb       *string   `json:"thumb,omitempty" db:"thumb" gorm:"type:text"`
	Poster      *string   `json:"poster,omitempty" db:"poster" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" db:"created_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
}

func (ProjectMedia) TableName() string { return "project_media" }
