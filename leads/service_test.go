package leads

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ridgeline-labs/site-backend/database"
	"github.com/ridgeline-labs/site-backend/errs"
	"github.com/ridgeline-labs/site-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Add(ctx context.Context, lead *models.Lead) error {
	return m.Called(ctx, lead).Error(0)
}

func (m *mockRepo) Search(ctx context.Context, filter database.LeadFilter, limit, offset int) ([]models.Lead, int64, error) {
	args := m.Called(ctx, filter, limit, offset)
	items, _ := args.Get(0).([]models.Lead)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *mockRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string, contactedAt *time.Time) (*models.Lead, error) {
	args := m.Called(ctx, id, status, contactedAt)
	lead, _ := args.Get(0).(*models.Lead)
	return lead, args.Error(1)
}

type mockWaitlist struct {
	mock.Mock
}

func (m *mockWaitlist) Add(ctx context.Context, signup *models.WaitlistSignup) error {
	return m.Called(ctx, signup).Error(0)
}

type fakeEmail struct {
	mu      sync.Mutex
	err     error
	subject []string
	html    []string
}

func (f *fakeEmail) SendEmail(ctx context.Context, subject, html, replyTo string, recipients []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subject = append(f.subject, subject)
	f.html = append(f.html, html)
	return f.err
}

type fakeSMS struct {
	mu   sync.Mutex
	err  error
	sent []string
}

func (f *fakeSMS) SendSMS(ctx context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, to+": "+body)
	return f.err
}

func notifier(email EmailSender) *Notifier {
	return NewNotifier(email, nil, NotifyConfig{Recipients: []string{"team@example.com"}, SiteURL: "https://site.example"})
}

func validSubmission() Submission {
	return Submission{Kind: "partner", Name: "Jane", Email: "jane@acme.example", Message: "We would like to partner on a pilot.", Firm: "Acme"}
}

func TestSubmitStoresAndNotifies(t *testing.T) {
	repo := new(mockRepo)
	repo.On("Add", mock.Anything, mock.AnythingOfType("*models.Lead")).Return(nil)
	email := &fakeEmail{}
	svc := NewService(repo, nil, notifier(email))

	lead, err := svc.Submit(context.Background(), validSubmission())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, lead.ID)
	assert.Equal(t, models.LeadSourcePartner, lead.Source)
	assert.Equal(t, models.LeadStatusNew, lead.Status)
	assert.Equal(t, "Acme", lead.Company)
	assert.Nil(t, lead.ProjectSlug)
	require.Len(t, email.subject, 1)
	assert.Equal(t, "New partner lead: Jane", email.subject[0])
	assert.Contains(t, email.html[0], "We would like to partner on a pilot.")
	repo.AssertExpectations(t)
}

func TestSubmitProjectKindFromSlug(t *testing.T) {
	repo := new(mockRepo)
	repo.On("Add", mock.Anything, mock.Anything).Return(nil)
	email := &fakeEmail{}
	svc := NewService(repo, nil, notifier(email))

	sub := validSubmission()
	sub.Kind = ""
	sub.ProjectSlug = " Acme "
	lead, err := svc.Submit(context.Background(), sub)
	require.NoError(t, err)

	assert.Equal(t, models.LeadSourceProject, lead.Source)
	require.NotNil(t, lead.ProjectSlug)
	assert.Equal(t, "acme", *lead.ProjectSlug)
	assert.Contains(t, email.html[0], "https://site.example/projects/acme")
}

func TestSubmitValidation(t *testing.T) {
	cases := map[string]struct {
		mutate func(*Submission)
		field  string
	}{
		"bad email":     {func(s *Submission) { s.Email = "not-an-email" }, "email"},
		"missing email": {func(s *Submission) { s.Email = "" }, "email"},
		"short name":    {func(s *Submission) { s.Name = " J " }, "name"},
		"short message": {func(s *Submission) { s.Message = "hi there" }, "message"},
		"unknown kind":  {func(s *Submission) { s.Kind = "spam" }, "kind"},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			repo := new(mockRepo)
			svc := NewService(repo, nil, notifier(&fakeEmail{}))

			sub := validSubmission()
			c.mutate(&sub)
			_, err := svc.Submit(context.Background(), sub)

			require.ErrorIs(t, err, ErrInvalid)
			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Contains(t, vErr.Fields, c.field)
			repo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
		})
	}
}

func TestSubmitWithoutEmailConfigStoresNothing(t *testing.T) {
	repo := new(mockRepo)
	svc := NewService(repo, nil, NewNotifier(nil, nil, NotifyConfig{}))

	_, err := svc.Submit(context.Background(), validSubmission())
	require.Error(t, err)
	assert.True(t, errs.IsConfigError(err))
	repo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

func TestSubmitEmailFailureAfterStore(t *testing.T) {
	repo := new(mockRepo)
	repo.On("Add", mock.Anything, mock.Anything).Return(nil)
	svc := NewService(repo, nil, notifier(&fakeEmail{err: errors.New("resend down")}))

	_, err := svc.Submit(context.Background(), validSubmission())
	var apiErr *errs.ApiErr
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 500, apiErr.StatusCode)
	repo.AssertNumberOfCalls(t, "Add", 1)
}

func TestSubmitSMSFailureIsSoft(t *testing.T) {
	repo := new(mockRepo)
	repo.On("Add", mock.Anything, mock.Anything).Return(nil)
	sms := &fakeSMS{err: errors.New("twilio down")}
	n := NewNotifier(&fakeEmail{}, sms, NotifyConfig{Recipients: []string{"team@example.com"}, AlertPhone: "+15550001111"})
	svc := NewService(repo, nil, n)

	_, err := svc.Submit(context.Background(), validSubmission())
	require.NoError(t, err)
	require.Len(t, sms.sent, 1)
	assert.True(t, strings.HasPrefix(sms.sent[0], "+15550001111: New partner lead from Jane"))
}

func TestJoinWaitlist(t *testing.T) {
	waitlist := new(mockWaitlist)
	waitlist.On("Add", mock.Anything, mock.AnythingOfType("*models.WaitlistSignup")).Return(nil)
	svc := NewService(nil, waitlist, notifier(&fakeEmail{err: errors.New("ignored")}))

	stored, err := svc.JoinWaitlist(context.Background(), WaitlistSubmission{Product: "Studio", Email: "a@b.co"})
	require.NoError(t, err)
	assert.True(t, stored)
	waitlist.AssertExpectations(t)
}

func TestJoinWaitlistDegradesWithoutStorage(t *testing.T) {
	svc := NewService(nil, nil, nil)

	stored, err := svc.JoinWaitlist(context.Background(), WaitlistSubmission{Product: "Studio", Email: "a@b.co"})
	require.NoError(t, err)
	assert.False(t, stored)
}

func TestJoinWaitlistValidation(t *testing.T) {
	svc := NewService(nil, nil, nil)

	_, err := svc.JoinWaitlist(context.Background(), WaitlistSubmission{Email: "a@b.co"})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = svc.JoinWaitlist(context.Background(), WaitlistSubmission{Product: "Studio", Email: "nope"})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestSearchClampsPaging(t *testing.T) {
	repo := new(mockRepo)
	filter := database.LeadFilter{Query: "acme", ProjectSlug: "studio", Status: "new"}
	repo.On("Search", mock.Anything, filter, 50, 50).Return([]models.Lead{{Name: "Jane"}}, int64(51), nil)
	repo.On("Search", mock.Anything, database.LeadFilter{}, 20, 0).Return(nil, int64(0), nil)
	svc := NewService(repo, nil, nil)

	page, err := svc.Search(context.Background(), Query{Q: " acme ", Project: "Studio", Status: "NEW", Page: 2, PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 50, page.PageSize)
	assert.Equal(t, int64(51), page.Total)
	assert.Len(t, page.Items, 1)

	empty, err := svc.Search(context.Background(), Query{Page: -3})
	require.NoError(t, err)
	assert.Equal(t, 1, empty.Page)
	assert.Equal(t, DefaultPageSize, empty.PageSize)
	assert.NotNil(t, empty.Items)
	repo.AssertExpectations(t)
}

func TestSearchRejectsUnknownStatus(t *testing.T) {
	repo := new(mockRepo)
	svc := NewService(repo, nil, nil)

	_, err := svc.Search(context.Background(), Query{Status: "archived"})
	assert.ErrorIs(t, err, ErrInvalid)
	repo.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExportIgnoresPaging(t *testing.T) {
	repo := new(mockRepo)
	repo.On("Search", mock.Anything, database.LeadFilter{}, 0, 0).Return([]models.Lead{{ID: uuid.New(), Name: "Jane"}}, int64(1), nil)
	svc := NewService(repo, nil, nil)

	var buf bytes.Buffer
	n, err := svc.Export(context.Background(), Query{Page: 3, PageSize: 10}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, strings.Split(strings.TrimRight(buf.String(), "\n"), "\n"), 2)
}

func TestUpdateStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	id := uuid.New()

	repo := new(mockRepo)
	repo.On("UpdateStatus", mock.Anything, id, "contacted", &now).Return(&models.Lead{ID: id, Status: "contacted", ContactedAt: &now}, nil)
	repo.On("UpdateStatus", mock.Anything, id, "new", (*time.Time)(nil)).Return(&models.Lead{ID: id, Status: "new"}, nil)
	svc := NewService(repo, nil, nil)
	svc.now = func() time.Time { return now }

	lead, err := svc.UpdateStatus(context.Background(), id.String(), "Contacted")
	require.NoError(t, err)
	require.NotNil(t, lead.ContactedAt)
	assert.Equal(t, now, *lead.ContactedAt)

	lead, err = svc.UpdateStatus(context.Background(), id.String(), "new")
	require.NoError(t, err)
	assert.Nil(t, lead.ContactedAt)
	repo.AssertExpectations(t)
}

func TestUpdateStatusErrors(t *testing.T) {
	id := uuid.New()
	repo := new(mockRepo)
	repo.On("UpdateStatus", mock.Anything, id, "new", (*time.Time)(nil)).Return(nil, nil)
	svc := NewService(repo, nil, nil)

	_, err := svc.UpdateStatus(context.Background(), "nope", "new")
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = svc.UpdateStatus(context.Background(), id.String(), "archived")
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = svc.UpdateStatus(context.Background(), id.String(), "new")
	assert.ErrorIs(t, err, ErrNotFound)
}
