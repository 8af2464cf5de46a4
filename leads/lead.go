package leads

import (
	"strings"

	"github.com/ridgeline-labs/site-backend/models"
)

// Submission is the public contact form body.
type Submission struct {
	Kind        string `json:"kind" validate:"omitempty,oneof=contact partner investor project"`
	Name        string `json:"name" validate:"min=2,max=200"`
	Email       string `json:"email" validate:"required,leademail,max=320"`
	Message     string `json:"message" validate:"min=10,max=10000"`
	Firm        string `json:"firm" validate:"max=200"`
	ProjectSlug string `json:"projectSlug" validate:"max=200"`
}

func (s Submission) normalized() Submission {
	s.Kind = strings.ToLower(strings.TrimSpace(s.Kind))
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	s.Message = strings.TrimSpace(s.Message)
	s.Firm = strings.TrimSpace(s.Firm)
	s.ProjectSlug = strings.ToLower(strings.TrimSpace(s.ProjectSlug))
	return s
}

// source returns the lead origin tag. A project slug without a kind marks a
// project page enquiry.
func (s Submission) source() string {
	if s.Kind != "" {
		return s.Kind
	}
	if s.ProjectSlug != "" {
		return models.LeadSourceProject
	}
	return models.LeadSourceContact
}

// WaitlistSubmission is the media product waitlist body.
type WaitlistSubmission struct {
	Product  string `json:"product" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,leademail,max=320"`
	FullName string `json:"fullName" validate:"max=200"`
	Phone    string `json:"phone" validate:"max=50"`
	Company  string `json:"company" validate:"max=200"`
	Note     string `json:"note" validate:"max=5000"`
	Source   string `json:"source" validate:"max=100"`
}

func (w WaitlistSubmission) normalized() WaitlistSubmission {
	w.Product = strings.TrimSpace(w.Product)
	w.Email = strings.TrimSpace(w.Email)
	w.FullName = strings.TrimSpace(w.FullName)
	w.Phone = strings.TrimSpace(w.Phone)
	w.Company = strings.TrimSpace(w.Company)
	w.Note = strings.TrimSpace(w.Note)
	w.Source = strings.TrimSpace(w.Source)
	return w
}

func IsValidStatus(status string) bool {
	return status == models.LeadStatusNew || status == models.LeadStatusContacted
}
