package templating

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/CTAG07/FunMoneyGames/pkg/page"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// ErrPageTemplateMissing is returned by Refresh when the configured page template is
// not part of the loaded set.
var ErrPageTemplateMissing = errors.New("page template not found")

// TemplateManager is the central controller for the templating engine.
// It manages the template set, configuration and function map, and is responsible
// for loading, parsing, and executing templates in a concurrent-safe manner.
// All methods are concurrent-safe.
type TemplateManager struct {
	logger         *slog.Logger
	config         *TemplateConfig
	templates      *template.Template
	cleanTemplates *template.Template
	templateNames  []string
	funcMap        template.FuncMap
	mu             sync.RWMutex
}

// NewTemplateManager creates, initializes, and returns a new TemplateManager.
// A nil config selects DefaultConfig. It performs an initial Refresh, so a broken
// override directory is reported here.
func NewTemplateManager(logger *slog.Logger, config *TemplateConfig) (*TemplateManager, error) {
	if config == nil {
		config = DefaultConfig()
	}
	tm := &TemplateManager{
		logger: logger,
		config: config,
	}
	tm.funcMap = template.FuncMap{
		"jsonLD": jsonLD,
		"inc":    inc,
	}

	if err := tm.Refresh(); err != nil {
		return nil, err
	}

	logger.Info("Template manager initialized", "template_dir", config.TemplateDir)
	return tm, nil
}

// SetConfig applies a new configuration to the TemplateManager. A changed
// TemplateDir only takes effect on the next Refresh.
func (tm *TemplateManager) SetConfig(config *TemplateConfig) {
	if config == nil {
		config = DefaultConfig()
	}
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.config = config
}

func (tm *TemplateManager) source() (fs.FS, error) {
	if tm.config.TemplateDir == "" {
		return fs.Sub(embeddedTemplates, "templates")
	}
	info, err := os.Stat(tm.config.TemplateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open template dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("template dir %s is not a directory", tm.config.TemplateDir)
	}
	return os.DirFS(tm.config.TemplateDir), nil
}

// Refresh reloads all templates from the configured source. Full templates
// (*.tmpl.html) are parsed first, then partials (*.part.html). A set without the
// configured page template is rejected. On error the previous template set stays active.
func (tm *TemplateManager) Refresh() error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	fsys, err := tm.source()
	if err != nil {
		tm.logger.Error("Failed to open template source", "error", err)
		return err
	}

	tm.logger.Info("Loading template files...")
	parsedFiles, err := template.New("").Funcs(tm.funcMap).ParseFS(fsys, "*.tmpl.html")
	var names []string
	if err != nil {
		if !strings.Contains(err.Error(), "pattern matches no files") {
			tm.logger.Error("Failed to parse template files", "error", err)
			return err
		}
		parsedFiles = template.New("").Funcs(tm.funcMap)
	} else {
		for _, t := range parsedFiles.Templates() {
			if strings.HasSuffix(t.Name(), ".tmpl.html") {
				names = append(names, t.Name())
			}
		}
	}

	tm.logger.Info("Loading partial files...")
	withParts, err := parsedFiles.ParseFS(fsys, "*.part.html")
	if err != nil {
		if !strings.Contains(err.Error(), "pattern matches no files") {
			tm.logger.Error("Failed to parse partial files", "error", err)
			return err
		}
		withParts = parsedFiles
	}

	if len(names) == 0 {
		tm.logger.Warn("No template files found", "template_dir", tm.config.TemplateDir)
	}
	if withParts.Lookup(tm.config.PageTemplate) == nil {
		tm.logger.Error("Page template not found", "template", tm.config.PageTemplate, "template_dir", tm.config.TemplateDir)
		return fmt.Errorf("%w: %s", ErrPageTemplateMissing, tm.config.PageTemplate)
	}

	// Clone before any execution so string templates always start from a clean set.
	clean, err := withParts.Clone()
	if err != nil {
		tm.logger.Error("Failed to create a clean clone of templates", "error", err)
		return err
	}

	sort.Strings(names)
	tm.templates = withParts
	tm.cleanTemplates = clean
	tm.templateNames = names
	tm.logger.Info("Loaded template and partial files", "count", len(withParts.Templates())-1)
	return nil
}

// Execute renders a specific template by name, writing the output to w.
func (tm *TemplateManager) Execute(w io.Writer, name string, data interface{}) error {
	if name == "" {
		return nil
	}
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.templates.ExecuteTemplate(w, name, data)
}

// ExecutePage renders doc with the configured page template.
func (tm *TemplateManager) ExecutePage(w io.Writer, doc *page.Document) error {
	if doc == nil {
		return fmt.Errorf("no document to render")
	}
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.templates.ExecuteTemplate(w, tm.config.PageTemplate, doc)
}

// GetConfig returns a copy of the current configuration.
func (tm *TemplateManager) GetConfig() TemplateConfig {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return *tm.config
}

// GetTemplateNames returns the names of every loaded file, partials included.
func (tm *TemplateManager) GetTemplateNames() []string {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	var names []string
	for _, t := range tm.templates.Templates() {
		// The root template has no name and define blocks have no extension.
		if strings.HasSuffix(t.Name(), ".html") {
			names = append(names, t.Name())
		}
	}
	sort.Strings(names)
	return names
}

// GetPageTemplates returns the names of the loaded full templates.
func (tm *TemplateManager) GetPageTemplates() []string {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return append([]string(nil), tm.templateNames...)
}

// GetTemplateDir returns the override directory, or "" when the embedded set is used.
func (tm *TemplateManager) GetTemplateDir() string {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.config.TemplateDir
}

// ExecuteTemplateString parses and executes a raw template string using the manager's
// function map and partials. This is ideal for testing template edits before saving them.
func (tm *TemplateManager) ExecuteTemplateString(w io.Writer, content string, data interface{}) error {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	tempSet, err := tm.cleanTemplates.Clone()
	if err != nil {
		return fmt.Errorf("failed to clone clean templates for string execution: %w", err)
	}

	t, err := tempSet.Parse(content)
	if err != nil {
		return fmt.Errorf("failed to parse string template: %w", err)
	}

	return t.Execute(w, data)
}
