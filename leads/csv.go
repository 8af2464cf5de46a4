package leads

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/ridgeline-labs/site-backend/models"
)

var csvHeader = []string{"id", "created_at", "status", "contacted_at", "source", "project_slug", "name", "email", "company", "message"}

// WriteCSV writes the header and one row per lead. Fields containing a comma,
// quote or newline are quoted.
func WriteCSV(w io.Writer, leads []models.Lead) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, lead := range leads {
		contactedAt := ""
		if lead.ContactedAt != nil {
			contactedAt = lead.ContactedAt.UTC().Format(time.RFC3339)
		}
		projectSlug := ""
		if lead.ProjectSlug != nil {
			projectSlug = *lead.ProjectSlug
		}

		record := []string{
			lead.ID.String(),
			lead.CreatedAt.UTC().Format(time.RFC3339),
			lead.Status,
			contactedAt,
			lead.Source,
			projectSlug,
			lead.Name,
			lead.Email,
			lead.Company,
			lead.Message,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
