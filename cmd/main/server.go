package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/CTAG07/FunMoneyGames/pkg/content"
	"github.com/CTAG07/FunMoneyGames/pkg/locale"
	"github.com/CTAG07/FunMoneyGames/pkg/page"
	"github.com/CTAG07/FunMoneyGames/pkg/stats"
	"github.com/CTAG07/FunMoneyGames/pkg/templating"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// statsTimeout bounds the page-view write made after a page is rendered.
const statsTimeout = 2 * time.Second

type Server struct {
	cm          *ConfigManager
	db          *sql.DB
	logger      *slog.Logger
	clock       func() time.Time
	renderer    *page.Renderer
	tm          *templating.TemplateManager
	store       *stats.Store
	authAPI     *AuthAPI
	renderAPI   *RenderAPI
	templateAPI *TemplateAPI
	statsAPI    *StatsAPI
	serverAPI   *ServerAPI
	siteRouter  chi.Router
	apiMux      *http.ServeMux
}

// loadContent returns the shipped content, with articles read from dir when set.
func loadContent(dir string) (*content.Content, error) {
	if dir == "" {
		return content.Default()
	}
	return content.Load(os.DirFS(dir))
}

func NewServer(cm *ConfigManager, logger *slog.Logger, db *sql.DB, dialect stats.Dialect, actionChan chan string) (*Server, error) {
	config := cm.Get()

	c, err := loadContent(config.Server.ArticlesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load content: %w", err)
	}

	defaultLocale := locale.Default()
	if l, ok := locale.Lookup(config.Server.DefaultLocale); ok {
		defaultLocale = l
	}
	renderer := page.NewRenderer(c, page.WithLocale(defaultLocale))

	tm, err := templating.NewTemplateManager(logger, config.Templates)
	if err != nil {
		return nil, fmt.Errorf("failed to create template manager: %w", err)
	}
	cm.SetTemplateManager(tm)

	store, err := stats.NewStore(db, dialect, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create stats store: %w", err)
	}

	server := &Server{
		cm:          cm,
		db:          db,
		logger:      logger,
		clock:       time.Now,
		renderer:    renderer,
		tm:          tm,
		store:       store,
		authAPI:     NewAuthAPI(db, logger),
		renderAPI:   NewRenderAPI(renderer, tm, time.Now, logger),
		templateAPI: NewTemplateAPI(tm, renderer, time.Now, logger),
		statsAPI:    NewStatsAPI(store, logger),
		serverAPI:   NewServerAPI(cm, actionChan, logger),
		apiMux:      http.NewServeMux(),
	}

	protected := http.NewServeMux()
	server.authAPI.RegisterRoutes(protected)
	server.renderAPI.RegisterRoutes(protected)
	server.templateAPI.RegisterRoutes(protected)
	server.statsAPI.RegisterRoutes(protected)
	server.serverAPI.RegisterRoutes(protected)

	// Make sure api functions must pass through authentication first
	authedAPI := server.authAPI.Authenticate(protected)
	// ... except for the health check, which is unauthed so something like docker can use it
	server.apiMux.HandleFunc("/api/health", server.serverAPI.handleHealthCheck)
	server.apiMux.Handle("/api/", authedAPI)

	server.siteRouter = server.newSiteRouter(time.Duration(config.Server.RequestTimeoutSec) * time.Second)
	return server, nil
}

func (s *Server) newSiteRouter(timeout time.Duration) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.trustedRealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if timeout > 0 {
		r.Use(middleware.Timeout(timeout))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.HandleFunc("/favicon.ico", handleFavicon)
	r.Get("/", s.handleHome)
	return r
}

// trustedRealIP applies chi's RealIP only to requests arriving from a trusted proxy,
// so clients cannot spoof their address with forwarding headers.
func (s *Server) trustedRealIP(next http.Handler) http.Handler {
	withRealIP := middleware.RealIP(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if s.cm.IsTrusted(host) {
			withRealIP.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// viewerLocale picks the locale from an explicit lang parameter, then Accept-Language.
func (s *Server) viewerLocale(r *http.Request) locale.Locale {
	if tag := r.URL.Query().Get("lang"); tag != "" {
		if loc, ok := locale.Lookup(tag); ok {
			return loc
		}
	}
	if header := r.Header.Get("Accept-Language"); header != "" {
		return locale.Negotiate(header)
	}
	return locale.Locale{}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	renderID := uuid.NewString()
	at := s.clock()
	now := page.FormatTimestamp(at)
	loc := s.viewerLocale(r)

	doc, err := s.renderer.Render(now, loc)
	if err != nil {
		s.logger.Error("Failed to render page", "render_id", renderID, "now", now, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if raw := r.URL.Query().Get("faq"); raw != "" {
		if i, err := strconv.Atoi(raw); err == nil {
			if err = doc.ExpandFAQ(i); err != nil {
				s.logger.Debug("Ignoring faq deep link", "faq", raw, "error", err)
			}
		}
	}

	var buf bytes.Buffer
	if err = s.tm.ExecutePage(&buf, doc); err != nil {
		s.logger.Error("Failed to execute page template", "render_id", renderID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	s.setPageHeaders(w, doc, renderID)
	s.logger.Info(
		"Serving landing page",
		"render_id", renderID,
		"request_id", middleware.GetReqID(r.Context()),
		"remote_addr", r.RemoteAddr,
		"locale", doc.Lang)

	if s.cm.Get().Server.StatsEnabled {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), statsTimeout)
		if err = s.store.RecordView(ctx, stats.NewPageView(at, doc.Lang)); err != nil {
			s.logger.Warn("Failed to record page view", "render_id", renderID, "error", err)
		}
		cancel()
	}

	_, _ = buf.WriteTo(w)
}

func (s *Server) setPageHeaders(w http.ResponseWriter, doc *page.Document, renderID string) {
	h := w.Header()
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("Content-Language", doc.Lang)
	h.Add("Vary", "Accept-Language")
	h.Set("X-Render-ID", renderID)
	if cc := s.tm.GetConfig().CacheControl; cc != "" {
		h.Set("Cache-Control", cc)
	}
	h.Set("X-Content-Type-Options", "nosniff")
}

// handleFavicon returns no content so browsers stop asking and page views are not double counted.
func handleFavicon(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
