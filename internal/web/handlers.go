package web

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/worklens/worklens/internal/config"
	"github.com/worklens/worklens/internal/errors"
	"github.com/worklens/worklens/internal/ops"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	renderer *Renderer
}

// HandleList handles GET /sessions: list stored sessions.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	scope := r.URL.Query().Get("scope")

	result, err := ops.List(r.Context(), h.db, h.cfg, ops.ListInput{
		Scope: ops.ListScope(scope),
		Dir:   ".",
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "list", ListPageData{
		PageData: PageData{
			Title:   "Sessions",
			Version: h.renderer.version,
			Nav:     "sessions",
		},
		Sessions: result.Sessions,
		Scope:    scope,
		Total:    result.Total,
	})
}

// HandleDetail handles GET /sessions/{id}: view a single session as a
// rendered markdown summary.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("session id is required"))
		return
	}

	result, err := ops.Get(r.Context(), h.db, h.cfg, ops.GetInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "detail", DetailPageData{
		PageData: PageData{
			Title:   result.Session.Title,
			Version: h.renderer.version,
			Nav:     "sessions",
		},
		Session:      result.Session,
		RenderedHTML: renderMarkdown(result.Session.Markdown()),
	})
}

// HandleDelete handles DELETE /sessions/{id}.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("session id is required"))
		return
	}

	result, err := ops.Delete(r.Context(), h.db, h.cfg, ops.DeleteInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, map[string]any{
			"deleted":   result.Deleted,
			"remaining": result.Remaining,
		})
		return
	}

	http.Redirect(w, r, "/sessions", http.StatusFound)
}

// HandleNote handles POST /sessions/{id}/note: replace the note.
func (h *Handlers) HandleNote(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	result, err := ops.AddNote(r.Context(), h.db, h.cfg, ops.AddNoteInput{
		ID:    id,
		Notes: r.FormValue("notes"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if !result.Updated {
		h.renderer.renderError(w, r, errors.NewNotFound(id))
		return
	}

	http.Redirect(w, r, "/sessions/"+id, http.StatusFound)
}

// HandleStats handles GET /stats: the productivity report.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Stats(r.Context(), h.db, h.cfg, ops.StatsInput{})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "stats", StatsPageData{
		PageData: PageData{
			Title:   "Stats",
			Version: h.renderer.version,
			Nav:     "stats",
		},
		Metrics:      result.Metrics,
		RenderedHTML: renderMarkdown(result.Report),
	})
}
