package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ridgeline-labs/site-backend/content"
	"github.com/ridgeline-labs/site-backend/database"
	"github.com/ridgeline-labs/site-backend/leads"
	"github.com/ridgeline-labs/site-backend/models"
	"github.com/stretchr/testify/require"
)

const testToken = "s3cret-admin-token"

func newTestRouter(t *testing.T, cfg map[string]string, deps Dependencies) http.Handler {
	t.Helper()
	if deps.Content == nil {
		lib, err := content.Default()
		require.NoError(t, err)
		deps.Content = lib
	}
	if deps.Leads == nil {
		deps.Leads = leads.NewService(nil, nil, leads.NewNotifier(nil, nil, leads.NotifyConfig{}))
	}
	if cfg == nil {
		cfg = map[string]string{}
	}
	return newRouter(deps, withConfig(cfg), withStartupTime(time.Now()))
}

func doRequest(h http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func adminHeaders() map[string]string {
	return map[string]string{"x-admin-token": testToken}
}

// memLeads is an in-memory lead table.
type memLeads struct {
	mu    sync.Mutex
	items []models.Lead
}

func (m *memLeads) Add(ctx context.Context, lead *models.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	m.items = append(m.items, *lead)
	return nil
}

func (m *memLeads) Search(ctx context.Context, filter database.LeadFilter, limit, offset int) ([]models.Lead, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Lead
	for _, l := range m.items {
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		out = append(out, l)
	}
	total := int64(len(out))
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

func (m *memLeads) UpdateStatus(ctx context.Context, id uuid.UUID, status string, contactedAt *time.Time) (*models.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].Status = status
			m.items[i].ContactedAt = contactedAt
			lead := m.items[i]
			return &lead, nil
		}
	}
	return nil, nil
}

func (m *memLeads) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

type recordingEmail struct {
	mu    sync.Mutex
	sent  int
	reply []string
}

func (r *recordingEmail) SendEmail(ctx context.Context, subject, html, replyTo string, recipients []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent++
	r.reply = append(r.reply, replyTo)
	return nil
}
