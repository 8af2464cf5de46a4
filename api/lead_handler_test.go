package api

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ridgeline-labs/site-backend/leads"
	"github.com/ridgeline-labs/site-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leadRouter(t *testing.T, repo *memLeads, email leads.EmailSender) http.Handler {
	t.Helper()
	notifier := leads.NewNotifier(email, nil, leads.NotifyConfig{Recipients: []string{"team@example.com"}})
	return newTestRouter(t, map[string]string{"ADMIN_TOKEN": testToken}, Dependencies{
		Leads: leads.NewService(repo, nil, notifier),
	})
}

func TestSubmitLeadRejectsInvalidEmail(t *testing.T) {
	repo := &memLeads{}
	email := &recordingEmail{}
	router := leadRouter(t, repo, email)

	rec := doRequest(router, http.MethodPost, "/leads",
		`{"name":"Ada Lovelace","email":"not-an-email","message":"We would like a quote."}`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "email")
	assert.Contains(t, body.Fields, "email")
	assert.Equal(t, 0, repo.count())
	assert.Equal(t, 0, email.sent)
}

func TestSubmitLeadMalformedBody(t *testing.T) {
	repo := &memLeads{}
	router := leadRouter(t, repo, &recordingEmail{})

	rec := doRequest(router, http.MethodPost, "/leads", `{"name":`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, repo.count())
}

func TestSubmitLeadStoresAndNotifies(t *testing.T) {
	repo := &memLeads{}
	email := &recordingEmail{}
	router := leadRouter(t, repo, email)

	rec := doRequest(router, http.MethodPost, "/leads",
		`{"name":"Ada Lovelace","email":"ada@example.com","message":"We would like a quote.","projectSlug":"acme"}`, nil)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var body LeadCreated
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.OK)
	_, err := uuid.Parse(body.ID)
	assert.NoError(t, err)

	require.Equal(t, 1, repo.count())
	assert.Equal(t, models.LeadSourceProject, repo.items[0].Source)
	assert.Equal(t, 1, email.sent)
	assert.Equal(t, []string{"ada@example.com"}, email.reply)
}

func TestSubmitLeadWithoutEmailConfigured(t *testing.T) {
	repo := &memLeads{}
	router := leadRouter(t, repo, nil)

	rec := doRequest(router, http.MethodPost, "/leads",
		`{"name":"Ada Lovelace","email":"ada@example.com","message":"We would like a quote."}`, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 0, repo.count())
}

func TestJoinWaitlistWithoutStorage(t *testing.T) {
	router := newTestRouter(t, nil, Dependencies{})

	rec := doRequest(router, http.MethodPost, "/waitlist", `{"product":"reels","email":"ada@example.com"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body WaitlistJoined
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.OK)
	assert.False(t, body.Stored)

	rec = doRequest(router, http.MethodPost, "/waitlist", `{"product":"reels","email":"nope"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func seedLeads(repo *memLeads) {
	base := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	slug := "acme"
	repo.items = []models.Lead{
		{ID: uuid.New(), Name: "Ada", Email: "ada@example.com", Message: "Hello, we need a site", Source: models.LeadSourceContact, Status: models.LeadStatusNew, CreatedAt: base},
		{ID: uuid.New(), Name: "Grace", Email: "grace@example.com", Company: "Navy", Message: `She said "ship it"`, Source: models.LeadSourcePartner, Status: models.LeadStatusNew, CreatedAt: base.Add(time.Hour)},
		{ID: uuid.New(), ProjectSlug: &slug, Name: "Linus", Email: "linus@example.com", Message: "Interested in the demo", Source: models.LeadSourceProject, Status: models.LeadStatusNew, CreatedAt: base.Add(2 * time.Hour)},
	}
}

func TestExportLeadsCSV(t *testing.T) {
	repo := &memLeads{}
	seedLeads(repo)
	router := leadRouter(t, repo, &recordingEmail{})

	rec := doRequest(router, http.MethodGet, "/admin/leads?format=csv", "", adminHeaders())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Equal(t, `attachment; filename="leads.csv"`, rec.Header().Get("Content-Disposition"))

	lines := strings.Split(strings.TrimSuffix(rec.Body.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "id,created_at,status,contacted_at,source,project_slug,name,email,company,message", lines[0])
	assert.Contains(t, lines[1], `"Hello, we need a site"`)
	assert.Contains(t, lines[2], `"She said ""ship it"""`)

	records, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "acme", records[3][5])
}

func TestListLeadsPaging(t *testing.T) {
	repo := &memLeads{}
	seedLeads(repo)
	router := leadRouter(t, repo, &recordingEmail{})

	rec := doRequest(router, http.MethodGet, "/admin/leads?page=2&pageSize=2", "", adminHeaders())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var page leads.Page
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.PageSize)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Items, 1)

	rec = doRequest(router, http.MethodGet, "/admin/leads?status=archived", "", adminHeaders())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateLeadStatus(t *testing.T) {
	repo := &memLeads{}
	seedLeads(repo)
	router := leadRouter(t, repo, &recordingEmail{})
	id := repo.items[0].ID.String()

	rec := doRequest(router, http.MethodPatch, "/admin/leads", `{"id":"`+id+`","status":"contacted"}`, adminHeaders())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var lead models.Lead
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lead))
	assert.Equal(t, models.LeadStatusContacted, lead.Status)
	assert.NotNil(t, lead.ContactedAt)

	rec = doRequest(router, http.MethodPatch, "/admin/leads", `{"id":"`+id+`","status":"new"}`, adminHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, repo.items[0].ContactedAt)

	rec = doRequest(router, http.MethodPatch, "/admin/leads", `{"id":"`+id+`","status":"archived"}`, adminHeaders())
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(router, http.MethodPatch, "/admin/leads", `{"id":"`+uuid.NewString()+`","status":"new"}`, adminHeaders())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
