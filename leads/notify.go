package leads

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/ridgeline-labs/site-backend/metrics"
	"github.com/ridgeline-labs/site-backend/models"
	"github.com/ridgeline-labs/site-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type EmailSender interface {
	SendEmail(ctx context.Context, subject, html, replyTo string, recipients []string) error
}

type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

type NotifyConfig struct {
	Recipients []string
	AlertPhone string
	SiteURL    string
}

// Notifier tells the team about new leads. Email is the primary channel; SMS
// is an optional extra whose failures are only logged.
type Notifier struct {
	email  EmailSender
	sms    SMSSender
	cfg    NotifyConfig
	logger zerolog.Logger
}

// NewNotifier accepts nil senders for unconfigured channels.
func NewNotifier(email EmailSender, sms SMSSender, cfg NotifyConfig) *Notifier {
	return &Notifier{
		email:  email,
		sms:    sms,
		cfg:    cfg,
		logger: log.With().Str("component", "leads.notifier").Logger(),
	}
}

// EmailConfigured reports whether lead emails can be sent at all.
func (n *Notifier) EmailConfigured() bool {
	return n != nil && n.email != nil && len(n.cfg.Recipients) > 0
}

// NotifyLead sends the lead email and, when configured, an SMS alert in
// parallel. Only the email outcome is returned.
func (n *Notifier) NotifyLead(ctx context.Context, lead models.Lead) error {
	if !n.EmailConfigured() {
		return fmt.Errorf("lead notification email is not configured")
	}

	html, err := buildLeadNotificationHTML(n.leadView(lead))
	if err != nil {
		return fmt.Errorf("render lead email: %w", err)
	}
	subject := fmt.Sprintf("New %s lead: %s", lead.Source, lead.Name)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := n.email.SendEmail(gctx, subject, html, lead.Email, n.cfg.Recipients)
		metrics.RecordNotification("email", err)
		return err
	})
	if n.sms != nil && n.cfg.AlertPhone != "" {
		g.Go(func() error {
			body := fmt.Sprintf("New %s lead from %s <%s>", lead.Source, lead.Name, lead.Email)
			err := n.sms.SendSMS(ctx, n.cfg.AlertPhone, body)
			metrics.RecordNotification("sms", err)
			if err != nil {
				n.logger.Warn().Err(err).Str("leadId", lead.ID.String()).Msg("Lead SMS alert failed")
			}
			return nil
		})
	}
	return g.Wait()
}

// NotifyWaitlist emails the team about a waitlist signup. Callers log and
// discard the error.
func (n *Notifier) NotifyWaitlist(ctx context.Context, signup models.WaitlistSignup) error {
	if !n.EmailConfigured() {
		return nil
	}
	html, err := buildWaitlistNotificationHTML(signup)
	if err != nil {
		return fmt.Errorf("render waitlist email: %w", err)
	}
	err = n.email.SendEmail(ctx, fmt.Sprintf("Waitlist signup: %s", signup.Product), html, signup.Email, n.cfg.Recipients)
	metrics.RecordNotification("email", err)
	return err
}

type leadView struct {
	models.Lead
	ProjectURL string
	AdminURL   string
}

func (n *Notifier) leadView(lead models.Lead) leadView {
	slug := ""
	if lead.ProjectSlug != nil {
		slug = *lead.ProjectSlug
	}
	return leadView{
		Lead:       lead,
		ProjectURL: services.BuildProjectURL(n.cfg.SiteURL, slug),
		AdminURL:   services.BuildAdminLeadsURL(n.cfg.SiteURL, slug),
	}
}

const leadNotificationTemplate = `<!DOCTYPE html>
<html>
<body>
  <h3>New {{.Source}} lead</h3>
  <p><strong>Name:</strong> {{.Name}}</p>
  <p><strong>Email:</strong> {{.Email}}</p>
  {{if .Company}}<p><strong>Company:</strong> {{.Company}}</p>{{end}}
  {{if .ProjectURL}}<p><strong>Project:</strong> <a href="{{.ProjectURL}}">{{.ProjectURL}}</a></p>{{end}}
  <p><strong>ID:</strong> {{.ID}}</p>
  <p><strong>Message:</strong><br/>{{.Message}}</p>
  {{if .AdminURL}}<p><a href="{{.AdminURL}}">Open in admin</a></p>{{end}}
</body>
</html>`

const waitlistNotificationTemplate = `<!DOCTYPE html>
<html>
<body>
  <h3>Waitlist signup for {{.Product}}</h3>
  <p><strong>Email:</strong> {{.Email}}</p>
  {{if .FullName}}<p><strong>Name:</strong> {{.FullName}}</p>{{end}}
  {{if .Phone}}<p><strong>Phone:</strong> {{.Phone}}</p>{{end}}
  {{if .Company}}<p><strong>Company:</strong> {{.Company}}</p>{{end}}
  {{if .Source}}<p><strong>Source:</strong> {{.Source}}</p>{{end}}
  {{if .Note}}<p><strong>Note:</strong><br/>{{.Note}}</p>{{end}}
</body>
</html>`

var (
	leadNotificationTmpl     = template.Must(template.New("lead_notification").Parse(leadNotificationTemplate))
	waitlistNotificationTmpl = template.Must(template.New("waitlist_notification").Parse(waitlistNotificationTemplate))
)

func buildLeadNotificationHTML(view leadView) (string, error) {
	var buf bytes.Buffer
	if err := leadNotificationTmpl.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func buildWaitlistNotificationHTML(signup models.WaitlistSignup) (string, error) {
	var buf bytes.Buffer
	if err := waitlistNotificationTmpl.Execute(&buf, signup); err != nil {
		return "", err
	}
	return buf.String(), nil
}
