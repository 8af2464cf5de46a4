package database

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ridgeline-labs/site-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LeadRepo struct {
	db *gorm.DB
}

func NewLeadRepo(db *gorm.DB) *LeadRepo {
	return &LeadRepo{db}
}

// LeadFilter narrows lead searches. Empty fields match everything.
type LeadFilter struct {
	Query       string
	ProjectSlug string
	Status      string
}

// Add inserts a new lead, assigning its id when unset.
func (r *LeadRepo) Add(ctx context.Context, lead *models.Lead) error {
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(lead).Error
}

// Search returns leads matching filter, newest first, and the total match
// count. A limit of zero or less returns every match.
func (r *LeadRepo) Search(ctx context.Context, filter LeadFilter, limit, offset int) ([]models.Lead, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := leadFilter(db.Model(&models.Lead{}), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var leads []models.Lead
	if err := leadPage(db, filter, limit, offset).Find(&leads).Error; err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

func leadPage(db *gorm.DB, filter LeadFilter, limit, offset int) *gorm.DB {
	q := leadFilter(db.Model(&models.Lead{}), filter).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	return q
}

func leadFilter(db *gorm.DB, filter LeadFilter) *gorm.DB {
	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + escapeLike(q) + "%"
		db = db.Where(
			"(name ILIKE ? OR email ILIKE ? OR company ILIKE ? OR message ILIKE ? OR project_slug ILIKE ?)",
			pattern, pattern, pattern, pattern, pattern,
		)
	}
	if filter.ProjectSlug != "" {
		db = db.Where("project_slug = ?", filter.ProjectSlug)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	return db
}

// UpdateStatus sets status and contacted_at on one lead and returns the
// updated row, or nil when the id is unknown. The row comes back from the
// UPDATE itself rather than a second read.
func (r *LeadRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string, contactedAt *time.Time) (*models.Lead, error) {
	var lead models.Lead
	res := updateLeadStatus(r.db.WithContext(ctx), &lead, id, status, contactedAt)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &lead, nil
}

func updateLeadStatus(db *gorm.DB, dest *models.Lead, id uuid.UUID, status string, contactedAt *time.Time) *gorm.DB {
	return db.Model(dest).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "contacted_at": contactedAt})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
