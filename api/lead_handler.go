package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/ridgeline-labs/site-backend/errs"
	"github.com/ridgeline-labs/site-backend/leads"
	"github.com/ridgeline-labs/site-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const maxFormBodyBytes = 64 << 10

// LeadService captures and administers form submissions.
type LeadService interface {
	Submit(ctx context.Context, sub leads.Submission) (models.Lead, error)
	JoinWaitlist(ctx context.Context, sub leads.WaitlistSubmission) (bool, error)
	Search(ctx context.Context, q leads.Query) (leads.Page, error)
	Export(ctx context.Context, q leads.Query, w io.Writer) (int, error)
	UpdateStatus(ctx context.Context, id, status string) (models.Lead, error)
}

type leadHandler struct {
	responder Responder
	logger    zerolog.Logger
	leads     LeadService
}

func newLeadHandler(leads LeadService) leadHandler {
	logger := log.With().Str("handlerName", "leadHandler").Logger()

	return leadHandler{
		responder: NewResponder(logger),
		logger:    logger,
		leads:     leads,
	}
}

// LeadCreated acknowledges a stored submission
type LeadCreated struct {
	OK bool   `json:"ok"`
	ID string `json:"id"`
}

// WaitlistJoined reports whether the signup reached storage
type WaitlistJoined struct {
	OK     bool `json:"ok"`
	Stored bool `json:"stored"`
}

// StatusUpdate is the admin lead status change body
type StatusUpdate struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// submitLead stores a contact, partner, investor or project enquiry
// @Summary Submit lead
// @Description Validates and stores a lead, then notifies the team by email
// @Tags Leads
// @Accept json
// @Produce json
// @Param lead body leads.Submission true "Lead submission"
// @Success 201 {object} LeadCreated "Lead stored"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid submission"
// @Failure 429 {object} ErrorResponse "Too Many Requests"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Email not configured or storage failure"
// @Router /leads [post]
func (h leadHandler) submitLead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sub leads.Submission
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormBodyBytes)).Decode(&sub); err != nil {
			h.responder.WriteError(w, errs.NewMalformedPayloadError("lead", err))
			return
		}

		lead, err := h.leads.Submit(r.Context(), sub)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, LeadCreated{OK: true, ID: lead.ID.String()})
	}
}

// joinWaitlist records interest in an upcoming product
// @Summary Join waitlist
// @Description Stores a waitlist signup when storage is configured. Without storage the request still succeeds with stored=false.
// @Tags Leads
// @Accept json
// @Produce json
// @Param signup body leads.WaitlistSubmission true "Waitlist signup"
// @Success 200 {object} WaitlistJoined "Signup accepted"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid signup"
// @Failure 429 {object} ErrorResponse "Too Many Requests"
// @Router /waitlist [post]
func (h leadHandler) joinWaitlist() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sub leads.WaitlistSubmission
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormBodyBytes)).Decode(&sub); err != nil {
			h.responder.WriteError(w, errs.NewMalformedPayloadError("waitlist", err))
			return
		}

		stored, err := h.leads.JoinWaitlist(r.Context(), sub)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, WaitlistJoined{OK: true, Stored: stored})
	}
}

// listLeads searches captured leads
// @Summary List leads
// @Description Searches leads newest first. format=csv downloads every match as leads.csv.
// @Tags Admin
// @Produce json
// @Produce text/csv
// @Security AdminToken
// @Param q query string false "Matches name, email, company, message or project slug"
// @Param project query string false "Project slug"
// @Param status query string false "new or contacted"
// @Param page query int false "Page number, from 1"
// @Param pageSize query int false "Page size, at most 50"
// @Param format query string false "csv for a file download"
// @Success 200 {object} leads.Page "Matching leads"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid filter"
// @Failure 401 {object} ErrorResponse "Unauthorized - Missing or invalid admin token"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error fetching leads"
// @Router /admin/leads [get]
func (h leadHandler) listLeads() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := r.URL.Query()
		q := leads.Query{
			Q:        params.Get("q"),
			Project:  params.Get("project"),
			Status:   params.Get("status"),
			Page:     atoiOrZero(params.Get("page")),
			PageSize: atoiOrZero(params.Get("pageSize")),
		}

		if strings.EqualFold(params.Get("format"), "csv") {
			// Buffered so a failed query still gets a JSON error instead of a
			// truncated download.
			var buf bytes.Buffer
			count, err := h.leads.Export(r.Context(), q, &buf)
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}

			h.logger.Info().Int("rows", count).Msg("Leads exported")
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			w.Header().Set("Content-Disposition", `attachment; filename="leads.csv"`)
			w.WriteHeader(http.StatusOK)
			if _, err := w.Write(buf.Bytes()); err != nil {
				h.logger.Error().Err(err).Msg("error writing csv export")
			}
			return
		}

		page, err := h.leads.Search(r.Context(), q)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, page)
	}
}

// updateLeadStatus marks a lead new or contacted
// @Summary Update lead status
// @Tags Admin
// @Accept json
// @Produce json
// @Security AdminToken
// @Param update body StatusUpdate true "Lead id and status"
// @Success 200 {object} models.Lead "Updated lead"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid id or status"
// @Failure 401 {object} ErrorResponse "Unauthorized - Missing or invalid admin token"
// @Failure 404 {object} ErrorResponse "Not Found - Lead not found"
// @Router /admin/leads [patch]
func (h leadHandler) updateLeadStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body StatusUpdate
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormBodyBytes)).Decode(&body); err != nil {
			h.responder.WriteError(w, errs.NewMalformedPayloadError("status update", err))
			return
		}

		lead, err := h.leads.UpdateStatus(r.Context(), body.ID, body.Status)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.logger.Info().Str("leadID", lead.ID.String()).Str("status", lead.Status).Msg("Lead status updated")
		h.responder.WriteJSON(w, lead)
	}
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
