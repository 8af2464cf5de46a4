package leads

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ridgeline-labs/site-backend/database"
	"github.com/ridgeline-labs/site-backend/errs"
	"github.com/ridgeline-labs/site-backend/metrics"
	"github.com/ridgeline-labs/site-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrNotFound = errors.New("lead not found")

const (
	DefaultPageSize = 20
	MaxPageSize     = 50
)

// Repository is implemented by *database.LeadRepo.
type Repository interface {
	Add(ctx context.Context, lead *models.Lead) error
	Search(ctx context.Context, filter database.LeadFilter, limit, offset int) ([]models.Lead, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, contactedAt *time.Time) (*models.Lead, error)
}

// WaitlistRepository is implemented by *database.WaitlistRepo.
type WaitlistRepository interface {
	Add(ctx context.Context, signup *models.WaitlistSignup) error
}

// Query is an admin lead search. Page and PageSize are clamped by Search.
type Query struct {
	Q        string
	Project  string
	Status   string
	Page     int
	PageSize int
}

type Page struct {
	Items    []models.Lead `json:"items"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
	Total    int64         `json:"total"`
}

type Service struct {
	repo      Repository
	waitlist  WaitlistRepository
	notifier  *Notifier
	validator *Validator
	now       func() time.Time
	logger    zerolog.Logger
}

// NewService accepts nil repositories when storage is not configured.
func NewService(repo Repository, waitlist WaitlistRepository, notifier *Notifier) *Service {
	return &Service{
		repo:      repo,
		waitlist:  waitlist,
		notifier:  notifier,
		validator: NewValidator(),
		now:       func() time.Time { return time.Now().UTC() },
		logger:    log.With().Str("component", "leads").Logger(),
	}
}

// Submit validates, stores and emails a contact lead. Missing email
// configuration fails before anything is stored.
func (s *Service) Submit(ctx context.Context, sub Submission) (models.Lead, error) {
	sub = sub.normalized()
	if err := s.validator.Struct(sub); err != nil {
		return models.Lead{}, err
	}

	if !s.notifier.EmailConfigured() {
		return models.Lead{}, errs.NewConfigError("lead notification email", nil)
	}
	if s.repo == nil {
		return models.Lead{}, errs.NewStorageUnavailableError("lead")
	}

	lead := models.Lead{
		ID:        uuid.New(),
		Name:      sub.Name,
		Email:     sub.Email,
		Company:   sub.Firm,
		Message:   sub.Message,
		Source:    sub.source(),
		Status:    models.LeadStatusNew,
		CreatedAt: s.now(),
	}
	if sub.ProjectSlug != "" {
		slug := sub.ProjectSlug
		lead.ProjectSlug = &slug
	}

	if err := s.repo.Add(ctx, &lead); err != nil {
		return models.Lead{}, errs.NewDatabaseError("save", "lead", err)
	}
	metrics.RecordLead(lead.Source)

	if err := s.notifier.NotifyLead(ctx, lead); err != nil {
		s.logger.Error().Err(err).Str("leadId", lead.ID.String()).Msg("Lead stored but notification email failed")
		return lead, errs.NewInternalErrorWithCause("lead notification email failed", err)
	}

	s.logger.Info().Str("leadId", lead.ID.String()).Str("source", lead.Source).Msg("Lead captured")
	return lead, nil
}

// JoinWaitlist stores a waitlist signup. Without storage the signup is still
// confirmed and stored is false. Notification failures are only logged.
func (s *Service) JoinWaitlist(ctx context.Context, sub WaitlistSubmission) (stored bool, err error) {
	sub = sub.normalized()
	if err := s.validator.Struct(sub); err != nil {
		return false, err
	}

	signup := models.WaitlistSignup{
		ID:        uuid.New(),
		Product:   sub.Product,
		Email:     sub.Email,
		FullName:  sub.FullName,
		Phone:     sub.Phone,
		Company:   sub.Company,
		Note:      sub.Note,
		Source:    sub.Source,
		CreatedAt: s.now(),
	}

	if s.waitlist == nil {
		s.logger.Warn().Str("product", signup.Product).Msg("Waitlist storage not configured; signup not stored")
	} else {
		if err := s.waitlist.Add(ctx, &signup); err != nil {
			return false, errs.NewDatabaseError("save", "waitlist signup", err)
		}
		stored = true
	}
	metrics.RecordWaitlist(stored)

	if err := s.notifier.NotifyWaitlist(ctx, signup); err != nil {
		s.logger.Warn().Err(err).Str("product", signup.Product).Msg("Waitlist notification email failed")
	}
	return stored, nil
}

// Search returns one page of leads, newest first.
func (s *Service) Search(ctx context.Context, q Query) (Page, error) {
	filter, err := s.filter(q)
	if err != nil {
		return Page{}, err
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	size := q.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	items, total, err := s.repo.Search(ctx, filter, size, (page-1)*size)
	if err != nil {
		return Page{}, errs.NewDatabaseError("list", "leads", err)
	}
	if items == nil {
		items = []models.Lead{}
	}
	return Page{Items: items, Page: page, PageSize: size, Total: total}, nil
}

// Export writes every lead matching q as CSV, ignoring pagination.
func (s *Service) Export(ctx context.Context, q Query, w io.Writer) (int, error) {
	filter, err := s.filter(q)
	if err != nil {
		return 0, err
	}

	items, _, err := s.repo.Search(ctx, filter, 0, 0)
	if err != nil {
		return 0, errs.NewDatabaseError("export", "leads", err)
	}
	if err := WriteCSV(w, items); err != nil {
		return 0, err
	}
	return len(items), nil
}

func (s *Service) filter(q Query) (database.LeadFilter, error) {
	if s.repo == nil {
		return database.LeadFilter{}, errs.NewStorageUnavailableError("lead")
	}
	status := strings.ToLower(strings.TrimSpace(q.Status))
	if status != "" && !IsValidStatus(status) {
		return database.LeadFilter{}, invalid("status", "status must be one of new, contacted")
	}
	return database.LeadFilter{
		Query:       strings.TrimSpace(q.Q),
		ProjectSlug: strings.ToLower(strings.TrimSpace(q.Project)),
		Status:      status,
	}, nil
}

// UpdateStatus sets status; contacted stamps contacted_at with now and new
// clears it.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (models.Lead, error) {
	leadID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return models.Lead{}, invalid("id", "id must be a valid lead id")
	}
	status = strings.ToLower(strings.TrimSpace(status))
	if !IsValidStatus(status) {
		return models.Lead{}, invalid("status", "status must be one of new, contacted")
	}
	if s.repo == nil {
		return models.Lead{}, errs.NewStorageUnavailableError("lead")
	}

	var contactedAt *time.Time
	if status == models.LeadStatusContacted {
		now := s.now()
		contactedAt = &now
	}

	updated, err := s.repo.UpdateStatus(ctx, leadID, status, contactedAt)
	if err != nil {
		return models.Lead{}, errs.NewDatabaseError("update", "lead", err)
	}
	if updated == nil {
		return models.Lead{}, ErrNotFound
	}
	s.logger.Info().Str("leadId", leadID.String()).Str("status", status).Msg("Lead status updated")
	return *updated, nil
}
