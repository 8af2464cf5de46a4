package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ridgeline-labs/site-backend/models"
	"gorm.io/gorm"
)

type WaitlistRepo struct {
	db *gorm.DB
}

func NewWaitlistRepo(db *gorm.DB) *WaitlistRepo {
	return &WaitlistRepo{db}
}

func (r *WaitlistRepo) Add(ctx context.Context, signup *models.WaitlistSignup) error {
	if signup.ID == uuid.Nil {
		signup.ID = uuid.New()
	}
	if signup.CreatedAt.IsZero() {
		signup.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(signup).Error
}
