package main

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/CTAG07/FunMoneyGames/pkg/locale"
	"github.com/CTAG07/FunMoneyGames/pkg/page"
	"github.com/CTAG07/FunMoneyGames/pkg/seo"
	"github.com/CTAG07/FunMoneyGames/pkg/templating"
)

// RenderAPI lets operators render the page for an arbitrary instant and locale.
type RenderAPI struct {
	renderer *page.Renderer
	tm       *templating.TemplateManager
	clock    func() time.Time
	logger   *slog.Logger
}

// MetadataResponse is the head and structured data of the landing page.
type MetadataResponse struct {
	Head           []seo.MetadataEntry `json:"head"`
	StructuredData seo.StructuredData  `json:"structured_data"`
}

// NewRenderAPI creates a new instance of the RenderAPI.
func NewRenderAPI(renderer *page.Renderer, tm *templating.TemplateManager, clock func() time.Time, logger *slog.Logger) *RenderAPI {
	return &RenderAPI{
		renderer: renderer,
		tm:       tm,
		clock:    clock,
		logger:   logger,
	}
}

// RegisterRoutes sets up the routing for all /api/render endpoints.
func (a *RenderAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/render/preview", a.handlePreview)
	mux.HandleFunc("/api/render/metadata", a.handleMetadata)
}

// renderFromQuery renders the document described by the now, lang and faq query
// parameters. It writes the error response itself and returns nil on failure.
func (a *RenderAPI) renderFromQuery(w http.ResponseWriter, r *http.Request) *page.Document {
	q := r.URL.Query()

	now := q.Get("now")
	if now == "" {
		now = page.FormatTimestamp(a.clock())
	}

	var loc locale.Locale
	if tag := q.Get("lang"); tag != "" {
		var ok bool
		if loc, ok = locale.Lookup(tag); !ok {
			respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Unsupported locale '%s'", tag))
			return nil
		}
	}

	doc, err := a.renderer.Render(now, loc)
	if err != nil {
		if errors.Is(err, page.ErrInvalidTimestamp) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return nil
		}
		a.logger.Error("Preview render failed", "now", now, "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to render page: %v", err))
		return nil
	}

	if faq := q.Get("faq"); faq != "" {
		indexes, err := parseFAQIndexes(faq)
		if err == nil {
			err = doc.ExpandFAQ(indexes...)
		}
		if err != nil {
			respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid faq parameter: %v", err))
			return nil
		}
	}
	return doc
}

// handlePreview renders the page as HTML (default) or as the JSON document tree.
func (a *RenderAPI) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !requireScope(w, r, scopeRenderRead) {
		return
	}

	format := r.URL.Query().Get("format")
	if format != "" && format != "html" && format != "json" {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'format' must be 'html' or 'json'")
		return
	}

	doc := a.renderFromQuery(w, r)
	if doc == nil {
		return
	}

	if format == "json" {
		respondWithJSON(w, http.StatusOK, doc)
		return
	}

	var buf bytes.Buffer
	if err := a.tm.ExecutePage(&buf, doc); err != nil {
		a.logger.Error("Preview template execution failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to execute page template: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Language", doc.Lang)
	_, _ = buf.WriteTo(w)
}

// handleMetadata returns the head entries and the decoded JSON-LD payload.
func (a *RenderAPI) handleMetadata(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !requireScope(w, r, scopeRenderRead) {
		return
	}

	doc := a.renderFromQuery(w, r)
	if doc == nil {
		return
	}
	data, err := seo.ParseStructuredData(doc.StructuredData)
	if err != nil {
		a.logger.Error("Failed to decode structured data", "error", err)
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, MetadataResponse{Head: doc.Head, StructuredData: data})
}

// parseFAQIndexes parses a comma separated list of FAQ entry indexes.
func parseFAQIndexes(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	indexes := make([]int, 0, len(parts))
	for _, p := range parts {
		i, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%q is not an index", p)
		}
		indexes = append(indexes, i)
	}
	return indexes, nil
}
