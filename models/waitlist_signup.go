package models

import (
	"time"

	"github.com/google/uuid"
)

// WaitlistSignup is a media product waitlist registration.
type WaitlistSignup struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	Product   string    `json:"product" db:"product" gorm:"type:text;not null;index"`
	Email     string    `json:"email" db:"email" gorm:"type:text;not null"`
	FullName  string    `json:"full_name" db:"full_name" gorm:"column:full_name;type:text;not null;default:''"`
	Phone     string    `json:"phone" db:"phone" gorm:"type:text;not null;default:''"`
	Company   string    `json:"company" db:"company" gorm:"type:text;not null;default:''"`
	Note      string    `json:"note" db:"note" gorm:"type:text;not null;default:''"`
	Source    string    `json:"source" db:"source" gorm:"type:text;not null;default:''"`
	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
}

func (WaitlistSignup) TableName() string { return "waitlist_signups" }
