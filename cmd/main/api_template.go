package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/CTAG07/FunMoneyGames/pkg/locale"
	"github.com/CTAG07/FunMoneyGames/pkg/page"
	"github.com/CTAG07/FunMoneyGames/pkg/templating"
)

// maxTemplateSize bounds template uploads and test bodies.
const maxTemplateSize = 1 << 20

// TemplateAPI holds the dependencies for the template API handlers.
type TemplateAPI struct {
	tm       *templating.TemplateManager
	renderer *page.Renderer
	clock    func() time.Time
	logger   *slog.Logger
}

// NewTemplateAPI creates a new instance of the TemplateAPI.
func NewTemplateAPI(tm *templating.TemplateManager, renderer *page.Renderer, clock func() time.Time, logger *slog.Logger) *TemplateAPI {
	return &TemplateAPI{
		tm:       tm,
		renderer: renderer,
		clock:    clock,
		logger:   logger,
	}
}

// RegisterRoutes sets up the routing for all /api/templates endpoints.
func (t *TemplateAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/templates/refresh", t.handleRefresh)
	mux.HandleFunc("/api/templates/test", t.handleTest)
	mux.HandleFunc("/api/templates", t.handleList)
	mux.HandleFunc("/api/templates/", t.handleFile)
}

// TemplateList describes the loaded template set.
type TemplateList struct {
	Source        string   `json:"source"`
	PageTemplate  string   `json:"page_template"`
	PageTemplates []string `json:"page_templates"`
	Files         []string `json:"files"`
}

// handleRefresh triggers a manual refresh of templates from their source.
func (t *TemplateAPI) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !requireScope(w, r, scopeTemplatesWrite) {
		return
	}
	if err := t.tm.Refresh(); err != nil {
		t.logger.Error("API triggered refresh failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to refresh templates: %v", err))
		return
	}
	t.logger.Info("Templates refreshed via API")
	w.WriteHeader(http.StatusNoContent)
}

// handleList returns the loaded template names.
func (t *TemplateAPI) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !requireScope(w, r, scopeRenderRead) {
		return
	}
	cfg := t.tm.GetConfig()
	source := cfg.TemplateDir
	if source == "" {
		source = "embedded"
	}
	respondWithJSON(w, http.StatusOK, TemplateList{
		Source:        source,
		PageTemplate:  cfg.PageTemplate,
		PageTemplates: t.tm.GetPageTemplates(),
		Files:         t.tm.GetTemplateNames(),
	})
}

// handleTest executes the request body as a template against the current document
// without saving it. The now and lang query parameters select the document.
func (t *TemplateAPI) handleTest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !requireScope(w, r, scopeRenderRead) {
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxTemplateSize))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to read request body: %v", err))
		return
	}

	now := r.URL.Query().Get("now")
	if now == "" {
		now = page.FormatTimestamp(t.clock())
	}
	loc, _ := locale.Lookup(r.URL.Query().Get("lang"))
	doc, err := t.renderer.Render(now, loc)
	if err != nil {
		if errors.Is(err, page.ErrInvalidTimestamp) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to render page: %v", err))
		return
	}

	var buf bytes.Buffer
	if err = t.tm.ExecuteTemplateString(&buf, string(body), doc); err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Template execution failed: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleFile manages CRUD operations for a single template file in the override
// directory. The embedded set is read-only.
func (t *TemplateAPI) handleFile(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/api/templates/")
	if name == "" || strings.HasSuffix(name, "/") {
		respondWithError(w, http.StatusNotFound, "Not Found")
		return
	}

	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) ||
		(!strings.HasSuffix(name, ".tmpl.html") && !strings.HasSuffix(name, ".part.html")) {
		respondWithError(w, http.StatusBadRequest, "Invalid template name format")
		return
	}

	if t.tm.GetTemplateDir() == "" {
		respondWithError(w, http.StatusConflict, "Templates are embedded; set template_dir to edit them")
		return
	}

	templateDir, err := filepath.Abs(t.tm.GetTemplateDir())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to resolve template directory")
		return
	}

	path := filepath.Join(templateDir, name)
	if !strings.HasPrefix(path, templateDir+string(filepath.Separator)) {
		respondWithError(w, http.StatusForbidden, "Access denied: Path outside template directory")
		return
	}

	switch r.Method {
	case http.MethodGet:
		if !requireScope(w, r, scopeRenderRead) {
			return
		}
		content, err := os.ReadFile(path)
		if err != nil {
			respondWithError(w, http.StatusNotFound, "Template not found")
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write(content)

	case http.MethodPut:
		if !requireScope(w, r, scopeTemplatesWrite) {
			return
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, maxTemplateSize))
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to read request body: %v", err))
			return
		}
		if err = os.WriteFile(path, body, 0644); err != nil {
			respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to write template file: %v", err))
			return
		}
		if err = t.tm.Refresh(); err != nil {
			t.logger.Warn("Saved template does not parse", "template", name, "error", err)
			respondWithError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Template saved but failed to load: %v", err))
			return
		}
		t.logger.Info("Template saved via API", "template", name)
		w.WriteHeader(http.StatusNoContent)

	case http.MethodDelete:
		if !requireScope(w, r, scopeTemplatesWrite) {
			return
		}
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				respondWithError(w, http.StatusNotFound, "Template not found")
				return
			}
			respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to delete template file: %v", err))
			return
		}
		if err := t.tm.Refresh(); err != nil {
			t.logger.Warn("Template set failed to load after delete", "template", name, "error", err)
		}
		t.logger.Info("Template deleted via API", "template", name)
		w.WriteHeader(http.StatusNoContent)

	default:
		w.Header().Set("Allow", "GET, PUT, DELETE")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
