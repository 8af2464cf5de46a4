package database

import (
	"context"
	"errors"

	"github.com/ridgeline-labs/site-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db}
}

// FindAll returns every project row, most recently updated first. Media is
// not preloaded; use FindMedia.
func (r *ProjectRepo) FindAll(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.WithContext(ctx).Order("updated_at desc").Find(&projects).Error
	return projects, err
}

// FindBySlug returns nil, nil when no project has the slug.
func (r *ProjectRepo) FindBySlug(ctx context.Context, slug string) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// FindMedia loads media for all slugs in one query, ordered by slug then
// sort_order.
func (r *ProjectRepo) FindMedia(ctx context.Context, slugs []string) ([]models.ProjectMedia, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	var media []models.ProjectMedia
	err := mediaForSlugs(r.db.WithContext(ctx), slugs).Find(&media).Error
	return media, err
}

// Replace overwrites the project row by slug and swaps its media list for
// media, all in one transaction. The stored media is read back inside the
// same transaction, so callers never see a lagging replica.
func (r *ProjectRepo) Replace(ctx context.Context, project *models.Project, media []models.ProjectMedia) ([]models.ProjectMedia, error) {
	var stored []models.ProjectMedia
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsertProject(tx, project).Error; err != nil {
			return err
		}
		if err := deleteMedia(tx, project.Slug).Error; err != nil {
			return err
		}
		if len(media) > 0 {
			if err := insertMedia(tx, project.Slug, media).Error; err != nil {
				return err
			}
		}
		return mediaForSlugs(tx, []string{project.Slug}).Find(&stored).Error
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func mediaForSlugs(db *gorm.DB, slugs []string) *gorm.DB {
	return db.Where("project_slug IN ?", slugs).
		Order("project_slug asc").
		Order("sort_order asc")
}

func upsertProject(tx *gorm.DB, project *models.Project) *gorm.DB {
	return tx.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		UpdateAll: true,
	}).Create(project)
}

func deleteMedia(tx *gorm.DB, slug string) *gorm.DB {
	return tx.Where("project_slug = ?", slug).Delete(&models.ProjectMedia{})
}

// insertMedia numbers media by position.
func insertMedia(tx *gorm.DB, slug string, media []models.ProjectMedia) *gorm.DB {
	for i := range media {
		media[i].ProjectSlug = slug
		media[i].SortOrder = i
	}
	return tx.Create(&media)
}

// Delete removes the project and its media. It reports whether a row existed.
func (r *ProjectRepo) Delete(ctx context.Context, slug string) (bool, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_slug = ?", slug).Delete(&models.ProjectMedia{}).Error; err != nil {
			return err
		}
		res := tx.Where("slug = ?", slug).Delete(&models.Project{})
		deleted = res.RowsAffected
		return res.Error
	})
	return deleted > 0, err
}
