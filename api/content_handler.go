package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/ridgeline-labs/site-backend/content"
	"github.com/ridgeline-labs/site-backend/errs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ContentLibrary serves the static articles and marketing pages.
type ContentLibrary interface {
	Articles() []content.Article
	Article(slug string) (content.Article, bool)
	Page(name string) (content.Page, bool)
}

type contentHandler struct {
	responder Responder
	logger    zerolog.Logger
	library   ContentLibrary
}

func newContentHandler(library ContentLibrary) contentHandler {
	logger := log.With().Str("handlerName", "contentHandler").Logger()

	return contentHandler{
		responder: NewResponder(logger),
		logger:    logger,
		library:   library,
	}
}

// ArticleCollection lists insights without their bodies
type ArticleCollection struct {
	Articles []content.Article `json:"articles"`
	Total    int               `json:"total"`
}

// listArticles lists insights newest first
// @Summary List insights
// @Tags Content
// @Produce json
// @Success 200 {object} ArticleCollection "Articles without bodies"
// @Router /insights [get]
func (h contentHandler) listArticles() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		articles := h.library.Articles()
		h.responder.WriteJSON(w, ArticleCollection{Articles: articles, Total: len(articles)})
	}
}

// getArticle returns one insight with its rendered body
// @Summary Get insight
// @Tags Content
// @Produce json
// @Param slug path string true "Article slug"
// @Success 200 {object} content.Article "Article with HTML body"
// @Failure 404 {object} ErrorResponse "Not Found - Article not found"
// @Router /insights/{slug} [get]
func (h contentHandler) getArticle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := strings.ToLower(chi.URLParam(r, "slug"))
		article, ok := h.library.Article(slug)
		if !ok {
			h.responder.WriteError(w, errs.NewNotFoundError("article not found"))
			return
		}
		h.responder.WriteJSON(w, article)
	}
}

// getPage returns the copy for a marketing page
// @Summary Get page content
// @Tags Content
// @Produce json
// @Param name path string true "home, about, services, contact, partner or investors"
// @Success 200 {object} map[string]interface{} "Page sections"
// @Failure 404 {object} ErrorResponse "Not Found - Page not found"
// @Router /pages/{name} [get]
func (h contentHandler) getPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.ToLower(chi.URLParam(r, "name"))
		page, ok := h.library.Page(name)
		if !ok {
			h.responder.WriteError(w, errs.NewNotFoundError("page not found"))
			return
		}
		h.responder.WriteJSON(w, page)
	}
}
