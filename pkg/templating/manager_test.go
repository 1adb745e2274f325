package templating

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/CTAG07/FunMoneyGames/pkg/content"
	"github.com/CTAG07/FunMoneyGames/pkg/locale"
	"github.com/CTAG07/FunMoneyGames/pkg/page"
	"golang.org/x/net/html"
)

var renderer *page.Renderer

// TestMain loads the shipped content once for every test in this package.
func TestMain(m *testing.M) {
	c, err := content.Default()
	if err != nil {
		log.Fatalf("failed to load content: %v", err)
	}
	renderer = page.NewRenderer(c, page.WithClock(func() time.Time {
		return time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	}))
	os.Exit(m.Run())
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupTestManager creates a TemplateManager over the embedded templates.
func setupTestManager(tb testing.TB) *TemplateManager {
	tb.Helper()
	tm, err := NewTemplateManager(testLogger(), DefaultConfig())
	if err != nil {
		tb.Fatalf("NewTemplateManager failed: %v", err)
	}
	return tm
}

func renderDoc(tb testing.TB) *page.Document {
	tb.Helper()
	doc, err := renderer.Render("2024-01-15T00:00:00.000Z", locale.Default())
	if err != nil {
		tb.Fatalf("Render failed: %v", err)
	}
	return doc
}

func writeTemplate(tb testing.TB, dir, name, body string) {
	tb.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0644); err != nil {
		tb.Fatalf("failed to write template %s: %v", name, err)
	}
}

func parseHTML(t *testing.T, raw []byte) *html.Node {
	t.Helper()
	root, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("output is not parseable HTML: %v", err)
	}
	return root
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasClass(n *html.Node, class string) bool {
	v, _ := attr(n, "class")
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func byTag(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool { return n.Data == tag }
}

func TestNewTemplateManager(t *testing.T) {
	tm := setupTestManager(t)
	if got := tm.GetPageTemplates(); len(got) != 1 || got[0] != "page.tmpl.html" {
		t.Errorf("page templates = %v", got)
	}
	names := tm.GetTemplateNames()
	for _, want := range []string{"head.part.html", "games.part.html", "faq.part.html", "page.tmpl.html"} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
			}
		}
		if !found {
			t.Errorf("template %s missing from %v", want, names)
		}
	}
	if tm.GetTemplateDir() != "" {
		t.Errorf("embedded manager reports dir %q", tm.GetTemplateDir())
	}
}

func TestExecutePage(t *testing.T) {
	tm := setupTestManager(t)
	doc := renderDoc(t)

	var buf bytes.Buffer
	if err := tm.ExecutePage(&buf, doc); err != nil {
		t.Fatalf("ExecutePage failed: %v", err)
	}
	root := parseHTML(t, buf.Bytes())

	if htmlEl := findAll(root, byTag("html")); len(htmlEl) != 1 {
		t.Fatal("missing html element")
	} else if lang, _ := attr(htmlEl[0], "lang"); lang != "en-US" {
		t.Errorf("lang = %q", lang)
	}

	titles := findAll(root, byTag("title"))
	if len(titles) != 1 {
		t.Fatalf("got %d title elements, want 1", len(titles))
	}
	if got := textOf(titles[0]); got != doc.Head[0].Title {
		t.Errorf("title = %q, want %q", got, doc.Head[0].Title)
	}

	canonical := findAll(root, func(n *html.Node) bool {
		rel, _ := attr(n, "rel")
		return n.Data == "link" && rel == "canonical"
	})
	if len(canonical) != 1 {
		t.Errorf("got %d canonical links, want 1", len(canonical))
	}

	cards := findAll(root, func(n *html.Node) bool { return hasClass(n, "game-card") })
	games := content.Games()
	if len(cards) != len(games) {
		t.Fatalf("got %d game cards, want %d", len(cards), len(games))
	}
	for i, card := range cards {
		h3 := findAll(card, byTag("h3"))
		if len(h3) != 1 || textOf(h3[0]) != games[i].Title {
			t.Errorf("card %d title mismatch", i)
		}
		if !strings.Contains(textOf(card), games[i].Description) {
			t.Errorf("card %d is missing its description", i)
		}
	}

	details := findAll(root, byTag("details"))
	if len(details) != 6 {
		t.Fatalf("got %d details elements, want 6", len(details))
	}
	for i, d := range details {
		if _, open := attr(d, "open"); open {
			t.Errorf("FAQ entry %d rendered expanded", i)
		}
	}

	if got := len(findAll(root, func(n *html.Node) bool { return hasClass(n, "long-form") })); got != 16 {
		t.Errorf("got %d articles, want 16", got)
	}

	times := findAll(root, byTag("time"))
	if len(times) != 1 || textOf(times[0]) != "1/15/2024" {
		t.Errorf("top bar date not rendered as expected")
	}

	footer := findAll(root, byTag("footer"))
	if len(footer) != 1 || !strings.Contains(textOf(footer[0]), "© 2025 FunMoneyGames.com") {
		t.Error("footer copyright missing")
	}
}

func TestExecutePageStructuredData(t *testing.T) {
	tm := setupTestManager(t)
	doc := renderDoc(t)

	var buf bytes.Buffer
	if err := tm.ExecutePage(&buf, doc); err != nil {
		t.Fatalf("ExecutePage failed: %v", err)
	}
	scripts := findAll(parseHTML(t, buf.Bytes()), func(n *html.Node) bool {
		typ, _ := attr(n, "type")
		return n.Data == "script" && typ == "application/ld+json"
	})
	if len(scripts) != 1 {
		t.Fatalf("got %d JSON-LD blocks, want 1", len(scripts))
	}
	raw := textOf(scripts[0])
	if raw != doc.StructuredData {
		t.Error("JSON-LD block was altered by the template")
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		t.Fatalf("JSON-LD block does not decode: %v", err)
	}
	if decoded["@context"] != "https://schema.org" {
		t.Errorf("@context = %v", decoded["@context"])
	}
}

func TestExecutePageExpandedFAQ(t *testing.T) {
	tm := setupTestManager(t)
	doc := renderDoc(t)
	if err := doc.ExpandFAQ(2); err != nil {
		t.Fatalf("ExpandFAQ failed: %v", err)
	}

	var buf bytes.Buffer
	if err := tm.ExecutePage(&buf, doc); err != nil {
		t.Fatalf("ExecutePage failed: %v", err)
	}
	for i, d := range findAll(parseHTML(t, buf.Bytes()), byTag("details")) {
		_, open := attr(d, "open")
		if open != (i == 2) {
			t.Errorf("FAQ entry %d open = %v", i, open)
		}
		if id, _ := attr(d, "id"); i == 2 && id != "faq-2" {
			t.Errorf("FAQ entry id = %q", id)
		}
	}
}

func TestExecutePageNil(t *testing.T) {
	if err := setupTestManager(t).ExecutePage(io.Discard, nil); err == nil {
		t.Error("expected an error for a nil document")
	}
}

func TestManager_TemplateDir(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "page.tmpl.html", `Hello {{.Lang}} {{template "sig"}}`)
	writeTemplate(t, dir, "sig.part.html", `{{define "sig"}}from disk{{end}}`)

	config := DefaultConfig()
	config.TemplateDir = dir
	tm, err := NewTemplateManager(testLogger(), config)
	if err != nil {
		t.Fatalf("NewTemplateManager failed: %v", err)
	}

	var buf bytes.Buffer
	if err = tm.ExecutePage(&buf, renderDoc(t)); err != nil {
		t.Fatalf("ExecutePage failed: %v", err)
	}
	if buf.String() != "Hello en-US from disk" {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestManager_Refresh(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "page.tmpl.html", `v1`)
	config := DefaultConfig()
	config.TemplateDir = dir
	tm, err := NewTemplateManager(testLogger(), config)
	if err != nil {
		t.Fatalf("NewTemplateManager failed: %v", err)
	}

	writeTemplate(t, dir, "page.tmpl.html", `v2`)
	writeTemplate(t, dir, "extra.tmpl.html", `extra`)
	if err = tm.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if got := len(tm.GetPageTemplates()); got != 2 {
		t.Errorf("expected 2 templates after refresh, got %d", got)
	}
	var buf bytes.Buffer
	_ = tm.Execute(&buf, "page.tmpl.html", nil)
	if buf.String() != "v2" {
		t.Errorf("refresh did not pick up the edit: %q", buf.String())
	}

	writeTemplate(t, dir, "page.tmpl.html", `{{.Broken`)
	if err = tm.Refresh(); err == nil {
		t.Fatal("expected Refresh to fail on a broken template")
	}
	buf.Reset()
	if err = tm.Execute(&buf, "page.tmpl.html", nil); err != nil || buf.String() != "v2" {
		t.Errorf("failed refresh replaced the active set: %q, %v", buf.String(), err)
	}
}

func TestManager_MissingDir(t *testing.T) {
	config := DefaultConfig()
	config.TemplateDir = filepath.Join(t.TempDir(), "missing")
	if _, err := NewTemplateManager(testLogger(), config); err == nil {
		t.Error("expected an error for a missing template dir")
	}
}

func TestManager_MissingPageTemplate(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "footer.part.html", `{{define "footer"}}disk footer{{end}}`)

	config := DefaultConfig()
	config.TemplateDir = dir
	if _, err := NewTemplateManager(testLogger(), config); !errors.Is(err, ErrPageTemplateMissing) {
		t.Fatalf("NewTemplateManager error = %v, want ErrPageTemplateMissing", err)
	}

	tm := setupTestManager(t)
	tm.SetConfig(config)
	if err := tm.Refresh(); !errors.Is(err, ErrPageTemplateMissing) {
		t.Fatalf("Refresh error = %v, want ErrPageTemplateMissing", err)
	}

	var buf bytes.Buffer
	if err := tm.ExecutePage(&buf, renderDoc(t)); err != nil {
		t.Fatalf("previous set was not kept: %v", err)
	}
	if !strings.Contains(buf.String(), `class="game-card"`) {
		t.Error("page no longer renders from the embedded set")
	}
}

func TestManager_Execute(t *testing.T) {
	tm := setupTestManager(t)
	err := tm.Execute(io.Discard, "nonexistent.tmpl.html", nil)
	if err == nil {
		t.Fatal("expected an error for non-existent template, but got nil")
	}
	expectedErrString := `html/template: "nonexistent.tmpl.html" is undefined`
	if !strings.Contains(err.Error(), expectedErrString) {
		t.Errorf("error message mismatch: got '%v', expected to contain '%s'", err, expectedErrString)
	}
	if err = tm.Execute(io.Discard, "", nil); err != nil {
		t.Errorf("empty name should be a no-op, got %v", err)
	}
}

func TestManager_ExecuteTemplateString(t *testing.T) {
	tm := setupTestManager(t)
	doc := renderDoc(t)

	var buf bytes.Buffer
	if err := tm.ExecuteTemplateString(&buf, `{{template "footer" .Footer}}`, doc); err != nil {
		t.Fatalf("ExecuteTemplateString failed: %v", err)
	}
	if !strings.Contains(buf.String(), template.HTMLEscapeString(doc.Footer.Tagline)) {
		t.Errorf("partial not available to string templates: %q", buf.String())
	}

	// A string template must not leak into later page renders.
	buf.Reset()
	if err := tm.ExecuteTemplateString(&buf, `{{define "footer"}}hijacked{{end}}ok`, doc); err != nil {
		t.Fatalf("ExecuteTemplateString failed: %v", err)
	}
	buf.Reset()
	if err := tm.ExecutePage(&buf, doc); err != nil {
		t.Fatalf("ExecutePage failed: %v", err)
	}
	if strings.Contains(buf.String(), "hijacked") {
		t.Error("string template redefined a shared partial")
	}

	if err := tm.ExecuteTemplateString(io.Discard, `{{.Nope`, nil); err == nil {
		t.Error("expected a parse error")
	}
}

func TestManager_SetConfig(t *testing.T) {
	tm := setupTestManager(t)
	dir := t.TempDir()
	writeTemplate(t, dir, "alt.tmpl.html", `alt page`)

	newConfig := DefaultConfig()
	newConfig.TemplateDir = dir
	newConfig.PageTemplate = "alt.tmpl.html"
	tm.SetConfig(newConfig)
	if err := tm.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	var buf bytes.Buffer
	if err := tm.ExecutePage(&buf, renderDoc(t)); err != nil {
		t.Fatalf("ExecutePage failed: %v", err)
	}
	if buf.String() != "alt page" {
		t.Errorf("unexpected output %q", buf.String())
	}
	if got := tm.GetConfig(); got.PageTemplate != "alt.tmpl.html" {
		t.Errorf("GetConfig returned %+v", got)
	}
}

func BenchmarkExecutePage(b *testing.B) {
	tm := setupTestManager(b)
	doc := renderDoc(b)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = tm.ExecutePage(io.Discard, doc)
	}
}
