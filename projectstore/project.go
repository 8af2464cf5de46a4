package projectstore

import (
	"time"

	"github.com/ridgeline-labs/site-backend/models"
	"gorm.io/datatypes"
)

const (
	MediaImage = models.MediaTypeImage
	MediaVideo = models.MediaTypeVideo
)

// Project is the canonical payload handed to page renderers and admin
// clients.
type Project struct {
	Slug        string      `json:"slug"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Status      string      `json:"status"`
	StatusColor string      `json:"statusColor"`
	CTALabel    string      `json:"ctaLabel"`
	Href        string      `json:"href"`
	ExternalURL *string     `json:"externalUrl"`
	Published   bool        `json:"published"`
	Highlights  []string    `json:"highlights"`
	KeyFeatures []string    `json:"keyFeatures"`
	Roadmap     []string    `json:"roadmap"`
	TechStack   []string    `json:"techStack"`
	Problem     string      `json:"problem"`
	Solution    string      `json:"solution"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	Media       []MediaItem `json:"media"`
}

// MediaItem is an image or video. For videos Thumb is the poster frame.
type MediaItem struct {
	Type  string `json:"type"`
	Src   string `json:"src"`
	Alt   string `json:"alt,omitempty"`
	Thumb string `json:"thumb,omitempty"`
}

// Defaults fill display fields left blank on save.
type Defaults struct {
	Status      string
	StatusColor string
	CTALabel    string
}

func DefaultDefaults() Defaults {
	return Defaults{
		Status:      "In development",
		StatusColor: "neutral",
		CTALabel:    "View project",
	}
}

// fromInput normalizes admin input against d. It does not validate.
func fromInput(input map[string]any, d Defaults) Project {
	slug := Slugify(String(input["slug"], ""))
	return Project{
		Slug:        slug,
		Name:        String(input["name"], ""),
		Description: String(input["description"], ""),
		Status:      String(input["status"], d.Status),
		StatusColor: String(field(input, "statusColor", "status_color"), d.StatusColor),
		CTALabel:    String(field(input, "ctaLabel", "cta_label"), d.CTALabel),
		Href:        String(input["href"], "/projects/"+slug),
		ExternalURL: ExternalURL(field(input, "externalUrl", "external_url")),
		Published:   Bool(input["published"], false),
		Highlights:  StringList(input["highlights"]),
		KeyFeatures: StringList(field(input, "keyFeatures", "key_features")),
		Roadmap:     StringList(input["roadmap"]),
		TechStack:   StringList(field(input, "techStack", "tech_stack")),
		Problem:     String(input["problem"], ""),
		Solution:    String(input["solution"], ""),
		Media:       Media(input["media"]),
	}
}

func (p Project) toModel() *models.Project {
	return &models.Project{
		Slug:        p.Slug,
		Name:        p.Name,
		Description: p.Description,
		Status:      p.Status,
		StatusColor: p.StatusColor,
		CTALabel:    p.CTALabel,
		Href:        p.Href,
		ExternalURL: p.ExternalURL,
		Published:   p.Published,
		Highlights:  datatypes.JSONSlice[string](p.Highlights),
		KeyFeatures: datatypes.JSONSlice[string](p.KeyFeatures),
		Roadmap:     datatypes.JSONSlice[string](p.Roadmap),
		TechStack:   datatypes.JSONSlice[string](p.TechStack),
		Problem:     p.Problem,
		Solution:    p.Solution,
		UpdatedAt:   p.UpdatedAt,
	}
}

func mediaToModels(items []MediaItem) []models.ProjectMedia {
	rows := make([]models.ProjectMedia, 0, len(items))
	for i, item := range items {
		row := models.ProjectMedia{
			Type:      item.Type,
			Src:       item.Src,
			SortOrder: i,
			Alt:       optional(item.Alt),
		}
		if item.Type == MediaVideo {
			row.Poster = optional(item.Thumb)
		} else {
			row.Thumb = optional(item.Thumb)
		}
		rows = append(rows, row)
	}
	return rows
}

// fromModel rebuilds the payload from stored rows, applying the same
// normalization as a save so legacy rows read back cleanly.
func fromModel(row models.Project, media []models.ProjectMedia, d Defaults) Project {
	slug := Slugify(row.Slug)
	p := Project{
		Slug:        slug,
		Name:        String(row.Name, ""),
		Description: String(row.Description, ""),
		Status:      String(row.Status, d.Status),
		StatusColor: String(row.StatusColor, d.StatusColor),
		CTALabel:    String(row.CTALabel, d.CTALabel),
		Href:        String(row.Href, "/projects/"+slug),
		ExternalURL: ExternalURL(row.ExternalURL),
		Published:   row.Published,
		Highlights:  StringList([]string(row.Highlights)),
		KeyFeatures: StringList([]string(row.KeyFeatures)),
		Roadmap:     StringList([]string(row.Roadmap)),
		TechStack:   StringList([]string(row.TechStack)),
		Problem:     String(row.Problem, ""),
		Solution:    String(row.Solution, ""),
		UpdatedAt:   row.UpdatedAt,
		Media:       []MediaItem{},
	}

	for _, m := range media {
		item := MediaItem{Type: m.Type, Src: m.Src, Alt: deref(m.Alt)}
		switch m.Type {
		case MediaImage:
			if item.Src == "" {
				continue
			}
			item.Thumb = deref(m.Thumb)
		case MediaVideo:
			item.Thumb = deref(m.Poster)
			if item.Thumb == "" {
				item.Thumb = deref(m.Thumb)
			}
		default:
			continue
		}
		p.Media = append(p.Media, item)
	}
	return p
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
