package projectstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ridgeline-labs/site-backend/cache"
	"github.com/ridgeline-labs/site-backend/errs"
	"github.com/ridgeline-labs/site-backend/metrics"
	"github.com/ridgeline-labs/site-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrValidation = errors.New("invalid project")
	ErrNotFound   = errors.New("project not found")
)

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

const publishedCacheKey = "projects:published"

// Repository is the storage the store needs. *database.ProjectRepo
// satisfies it.
type Repository interface {
	FindAll(ctx context.Context) ([]models.Project, error)
	FindBySlug(ctx context.Context, slug string) (*models.Project, error)
	FindMedia(ctx context.Context, slugs []string) ([]models.ProjectMedia, error)
	// Replace returns the media rows as stored once the write has committed.
	Replace(ctx context.Context, project *models.Project, media []models.ProjectMedia) ([]models.ProjectMedia, error)
	Delete(ctx context.Context, slug string) (bool, error)
}

type Store struct {
	repo     Repository
	cache    cache.Cache
	ttl      time.Duration
	defaults Defaults
	now      func() time.Time
	logger   zerolog.Logger
}

type Option func(*Store)

// WithCache serves ListPublished through c for ttl.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Store) {
		if c != nil {
			s.cache = c
		}
		s.ttl = ttl
	}
}

func WithDefaults(d Defaults) Option {
	return func(s *Store) {
		if d.Status != "" {
			s.defaults.Status = d.Status
		}
		if d.StatusColor != "" {
			s.defaults.StatusColor = d.StatusColor
		}
		if d.CTALabel != "" {
			s.defaults.CTALabel = d.CTALabel
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns a store over repo. A nil repo is allowed; every operation
// then fails with a storage unavailable error.
func New(repo Repository, opts ...Option) *Store {
	s := &Store{
		repo:     repo,
		cache:    cache.NewNoop(),
		defaults: DefaultDefaults(),
		now:      func() time.Time { return time.Now().UTC() },
		logger:   log.With().Str("component", "projectstore").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate normalizes input and checks the fields required for a save.
func (s *Store) Validate(input map[string]any) (Project, error) {
	p := fromInput(input, s.defaults)
	if p.Slug == "" {
		return p, &ValidationError{Field: "slug", Reason: "is required"}
	}
	if p.Name == "" {
		return p, &ValidationError{Field: "name", Reason: "is required"}
	}
	if len(p.Media) == 0 {
		return p, &ValidationError{Field: "media", Reason: "must contain at least one image or video"}
	}
	return p, nil
}

// List returns every project, drafts included, each with its media sorted.
func (s *Store) List(ctx context.Context) ([]Project, error) {
	if s.repo == nil {
		return nil, errs.NewStorageUnavailableError("project")
	}

	rows, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "projects", err)
	}
	if len(rows) == 0 {
		return []Project{}, nil
	}

	slugs := make([]string, 0, len(rows))
	for _, row := range rows {
		slugs = append(slugs, row.Slug)
	}

	media, err := s.repo.FindMedia(ctx, slugs)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "project media", err)
	}
	bySlug := groupMedia(media)

	projects := make([]Project, 0, len(rows))
	for _, row := range rows {
		projects = append(projects, fromModel(row, bySlug[row.Slug], s.defaults))
	}
	return projects, nil
}

// ListPublished is List filtered to published projects, served from cache
// when one is configured.
func (s *Store) ListPublished(ctx context.Context) ([]Project, error) {
	if cached, ok, err := s.cache.Get(ctx, publishedCacheKey); err != nil {
		s.logger.Warn().Err(err).Msg("Published projects cache read failed")
	} else if ok {
		var projects []Project
		if err := json.Unmarshal(cached, &projects); err == nil {
			return projects, nil
		}
		s.logger.Warn().Msg("Discarding undecodable published projects cache entry")
	}

	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	published := make([]Project, 0, len(all))
	for _, p := range all {
		if p.Published {
			published = append(published, p)
		}
	}

	if encoded, err := json.Marshal(published); err == nil {
		if err := s.cache.Set(ctx, publishedCacheKey, encoded, s.ttl); err != nil {
			s.logger.Warn().Err(err).Msg("Published projects cache write failed")
		}
	}
	return published, nil
}

// Get returns one project with its media, or ErrNotFound.
func (s *Store) Get(ctx context.Context, slug string) (Project, error) {
	if s.repo == nil {
		return Project{}, errs.NewStorageUnavailableError("project")
	}

	slug = Slugify(slug)
	if slug == "" {
		return Project{}, ErrNotFound
	}

	row, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return Project{}, errs.NewDatabaseError("get", "project", err)
	}
	if row == nil {
		return Project{}, ErrNotFound
	}

	media, err := s.repo.FindMedia(ctx, []string{slug})
	if err != nil {
		return Project{}, errs.NewDatabaseError("get", "project media", err)
	}
	return fromModel(*row, groupMedia(media)[slug], s.defaults), nil
}

// Upsert validates input, overwrites the project row keyed by slug, replaces
// its media with the submitted list and returns what is now stored.
// updated_at is set on every call.
func (s *Store) Upsert(ctx context.Context, input map[string]any) (Project, error) {
	p, err := s.Validate(input)
	if err != nil {
		return Project{}, err
	}
	if s.repo == nil {
		return Project{}, errs.NewStorageUnavailableError("project")
	}

	p.UpdatedAt = s.now()
	stored, err := s.repo.Replace(ctx, p.toModel(), mediaToModels(p.Media))
	if err != nil {
		return Project{}, errs.NewDatabaseError("save", "project", err)
	}
	s.invalidate(ctx)
	metrics.ProjectUpserts.Inc()

	result := fromModel(*p.toModel(), groupMedia(stored)[p.Slug], s.defaults)
	s.logger.Info().Str("slug", p.Slug).Int("media", len(result.Media)).Bool("published", result.Published).Msg("Project saved")
	return result, nil
}

// Delete removes a project and its media, or returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, slug string) error {
	if s.repo == nil {
		return errs.NewStorageUnavailableError("project")
	}

	slug = Slugify(slug)
	if slug == "" {
		return ErrNotFound
	}

	existed, err := s.repo.Delete(ctx, slug)
	if err != nil {
		return errs.NewDatabaseError("delete", "project", err)
	}
	if !existed {
		return ErrNotFound
	}
	s.invalidate(ctx)
	s.logger.Info().Str("slug", slug).Msg("Project deleted")
	return nil
}

func (s *Store) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, publishedCacheKey); err != nil {
		s.logger.Warn().Err(err).Msg("Published projects cache invalidation failed")
	}
}

func groupMedia(media []models.ProjectMedia) map[string][]models.ProjectMedia {
	bySlug := make(map[string][]models.ProjectMedia)
	for _, m := range media {
		bySlug[m.ProjectSlug] = append(bySlug[m.ProjectSlug], m)
	}
	for slug := range bySlug {
		group := bySlug[slug]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].SortOrder < group[j].SortOrder
		})
	}
	return bySlug
}
