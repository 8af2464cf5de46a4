package models

import (
	"time"

	"gorm.io/datatypes"
)

// Project is a showcase entry keyed by its slug.
type Project struct {
	Slug        string                      `json:"slug" db:"slug" gorm:"type:text;primaryKey"`
	Name        string                      `json:"name" db:"name" gorm:"type:text;not null"`
	Description string                      `json:"description" db:"description" gorm:"type:text;not null;default:''"`
	Status      string                      `json:"status" db:"status" gorm:"type:text;not null;default:''"`
	StatusColor string                      `json:"status_color" db:"status_color" gorm:"column:status_color;type:text;not null;default:''"`
	CTALabel    string                      `json:"cta_label" db:"cta_label" gorm:"column:cta_label;type:text;not null;default:''"`
	Href        string                      `json:"href" db:"href" gorm:"type:text;not null;default:''"`
	ExternalURL *string                     `json:"external_url,omitempty" db:"external_url" gorm:"column:external_url;type:text"`
	Published   bool                        `json:"published" db:"published" gorm:"not null;default:false;index"`
	Highlights  datatypes.JSONSlice[string] `json:"highlights" db:"highlights" gorm:"type:jsonb"`
	KeyFeatures datatypes.JSONSlice[string] `json:"key_features" db:"key_features" gorm:"column:key_features;type:jsonb"`
	Roadmap     datatypes.JSONSlice[string] `json:"roadmap" db:"roadmap" gorm:"type:jsonb"`
	TechStack   datatypes.JSONSlice[string] `json:"tech_stack" db:"tech_stack" gorm:"column:tech_stack;type:jsonb"`
	Problem     string                      `json:"problem" db:"problem" gorm:"type:text;not null;default:''"`
	Solution    string                      `json:"solution" db:"solution" gorm:"type:text;not null;default:''"`
	UpdatedAt   time.Time                   `json:"updated_at" db:"updated_at" gorm:"column:updated_at;type:timestamptz;not null"`
	Media       []ProjectMedia              `json:"-" gorm:"foreignKey:ProjectSlug;references:Slug;constraint:OnDelete:CASCADE"`
}

func (Project) TableName() string { return "projects" }
