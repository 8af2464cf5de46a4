package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"

	LeadSourceContact  = "contact"
	LeadSourcePartner  = "partner"
	LeadSourceInvestor = "investor"
	LeadSourceProject  = "project"
)

// Lead is a captured contact form submission. Only Status and ContactedAt
// change after insert.
type Lead struct {
	ID          uuid.UUID  `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	ProjectSlug *string    `json:"project_slug" db:"project_slug" gorm:"column:project_slug;type:text;index"`
	Name        string     `json:"name" db:"name" gorm:"type:text;not null"`
	Email       string     `json:"email" db:"email" gorm:"type:text;not null"`
	Company     string     `json:"company" db:"company" gorm:"type:text;not null;default:''"`
	Message     string     `json:"message" db:"message" gorm:"type:text;not null;default:''"`
	Source      string     `json:"source" db:"source" gorm:"type:text;not null;default:'contact'"`
	Status      string     `json:"status" db:"status" gorm:"type:text;not null;default:'new';index"`
	ContactedAt *time.Time `json:"contacted_at" db:"contacted_at" gorm:"column:contacted_at;type:timestamptz"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP;index"`
}

func (Lead) TableName() string { return "leads" }
