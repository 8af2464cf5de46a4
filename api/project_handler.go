package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/ridgeline-labs/site-backend/carousel"
	"github.com/ridgeline-labs/site-backend/errs"
	"github.com/ridgeline-labs/site-backend/projectstore"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const maxProjectBodyBytes = 1 << 20

// ProjectService is the project store as seen by the HTTP layer.
type ProjectService interface {
	List(ctx context.Context) ([]projectstore.Project, error)
	ListPublished(ctx context.Context) ([]projectstore.Project, error)
	Get(ctx context.Context, slug string) (projectstore.Project, error)
	Upsert(ctx context.Context, input map[string]any) (projectstore.Project, error)
	Delete(ctx context.Context, slug string) error
}

type projectHandler struct {
	responder Responder
	logger    zerolog.Logger
	projects  ProjectService
}

func newProjectHandler(projects ProjectService) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder: NewResponder(logger),
		logger:    logger,
		projects:  projects,
	}
}

// ProjectCollection is a list of normalized projects
type ProjectCollection struct {
	Projects []projectstore.Project `json:"projects"`
	Total    int                    `json:"total"`
}

// ProjectDetail is a project with the viewer state its page starts from.
type ProjectDetail struct {
	projectstore.Project
	Redirect *string           `json:"redirect,omitempty"`
	Carousel carousel.Snapshot `json:"carousel"`
}

// listPublished retrieves the published projects
// @Summary List published projects
// @Description Retrieves every published project with its ordered media
// @Tags Projects
// @Produce json
// @Success 200 {object} ProjectCollection "Published projects"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error fetching projects"
// @Router /projects [get]
func (h projectHandler) listPublished() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.projects == nil {
			h.responder.WriteError(w, errs.NewStorageUnavailableError("project"))
			return
		}

		projects, err := h.projects.ListPublished(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, ProjectCollection{Projects: projects, Total: len(projects)})
	}
}

// getProject retrieves a project by slug
// @Summary Get project
// @Description Retrieves a published project by slug. Drafts are visible to the admin only.
// @Tags Projects
// @Produce json
// @Param slug path string true "Project slug"
// @Success 200 {object} ProjectDetail "Project with carousel snapshot"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error fetching project"
// @Router /projects/{slug} [get]
func (h projectHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.projects == nil {
			h.responder.WriteError(w, errs.NewStorageUnavailableError("project"))
			return
		}

		slug := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "slug")))
		if slug == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("slug"))
			return
		}

		project, err := h.projects.Get(r.Context(), slug)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if !project.Published && !ctxHasCapability(r.Context(), AdminAccess) {
			h.responder.WriteError(w, errs.NewNotFoundError(projectstore.ErrNotFound.Error()))
			return
		}

		h.responder.WriteJSON(w, projectDetail(project))
	}
}

func projectDetail(p projectstore.Project) ProjectDetail {
	slides := make([]carousel.Slide, 0, len(p.Media))
	for _, m := range p.Media {
		slides = append(slides, carousel.Slide{Type: m.Type, Src: m.Src, Thumb: m.Thumb, Alt: m.Alt})
	}
	viewer := carousel.New(slides)
	defer viewer.Close()

	return ProjectDetail{
		Project:  p,
		Redirect: p.ExternalURL,
		Carousel: viewer.Snapshot(),
	}
}

// listAll retrieves every project including drafts
// @Summary List all projects
// @Description Retrieves every project, published or not
// @Tags Admin
// @Produce json
// @Security AdminToken
// @Success 200 {object} ProjectCollection "All projects"
// @Failure 401 {object} ErrorResponse "Unauthorized - Missing or invalid admin token"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error fetching projects"
// @Router /admin/projects [get]
func (h projectHandler) listAll() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.projects == nil {
			h.responder.WriteError(w, errs.NewStorageUnavailableError("project"))
			return
		}

		projects, err := h.projects.List(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, ProjectCollection{Projects: projects, Total: len(projects)})
	}
}

// upsertProject creates or replaces a project and its media
// @Summary Publish project
// @Description Normalizes the submitted project, replaces its media in submission order and returns the stored result
// @Tags Admin
// @Accept json
// @Produce json
// @Security AdminToken
// @Param project body object true "Project fields and a non-empty media list"
// @Success 200 {object} projectstore.Project "Stored project"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid project data"
// @Failure 401 {object} ErrorResponse "Unauthorized - Missing or invalid admin token"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error storing project"
// @Router /admin/projects [post]
func (h projectHandler) upsertProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxProjectBodyBytes))
		decoder.UseNumber()

		var input map[string]any
		if err := decoder.Decode(&input); err != nil {
			h.logger.Warn().Err(err).Msg("Failed to decode project payload")
			h.responder.WriteError(w, errs.NewMalformedPayloadError("project", err))
			return
		}
		if input == nil {
			h.responder.WriteError(w, errs.NewMalformedPayloadError("project", nil))
			return
		}

		if h.projects == nil {
			h.responder.WriteError(w, errs.NewStorageUnavailableError("project"))
			return
		}

		project, err := h.projects.Upsert(r.Context(), input)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.logger.Info().Str("slug", project.Slug).Int("media", len(project.Media)).Msg("Project saved")
		h.responder.WriteJSON(w, project)
	}
}

// deleteProject removes a project and its media
// @Summary Delete project
// @Tags Admin
// @Produce json
// @Security AdminToken
// @Param slug path string true "Project slug"
// @Success 200 {object} map[string]string "Deleted"
// @Failure 401 {object} ErrorResponse "Unauthorized - Missing or invalid admin token"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error deleting project"
// @Router /admin/projects/{slug} [delete]
func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.projects == nil {
			h.responder.WriteError(w, errs.NewStorageUnavailableError("project"))
			return
		}

		slug := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "slug")))
		if err := h.projects.Delete(r.Context(), slug); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.logger.Info().Str("slug", slug).Msg("Project deleted")
		h.responder.WriteJSON(w, map[string]string{"status": "deleted", "slug": slug})
	}
}
