package content

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/goliatone/go-slug"
	"github.com/yuin/goldmark"
)

//go:embed articles/*.md
var embeddedArticles embed.FS

type articleMeta struct {
	Title string `yaml:"title"`
	Slug  string `yaml:"slug"`
	Order int    `yaml:"order"`
	Draft bool   `yaml:"draft"`
}

// markdown is stateless and safe for concurrent use. Raw HTML in article sources is not
// passed through.
var markdown = goldmark.New()

// LoadArticles reads every *.md file at the root of fsys, parses its front matter and
// renders the body to HTML. Drafts are skipped. Articles are sorted by their order
// field, then by file name.
func LoadArticles(fsys fs.FS) ([]Article, error) {
	names, err := fs.Glob(fsys, "*.md")
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	sort.Strings(names)

	articles := make([]Article, 0, len(names))
	for _, name := range names {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read article %s: %w", name, err)
		}
		article, draft, err := ParseArticle(name, raw)
		if err != nil {
			return nil, err
		}
		if draft {
			continue
		}
		articles = append(articles, article)
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].Order < articles[j].Order
	})
	return articles, nil
}

// ParseArticle converts a single Markdown source with front matter into an Article.
// The returned bool reports whether the article is marked as a draft.
func ParseArticle(name string, source []byte) (Article, bool, error) {
	var meta articleMeta
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return Article{}, false, fmt.Errorf("failed to parse front matter of %s: %w", name, err)
	}

	title := strings.TrimSpace(meta.Title)
	if title == "" {
		return Article{}, false, fmt.Errorf("article %s has no title", name)
	}

	id := strings.TrimSpace(meta.Slug)
	if id == "" {
		id = title
	}
	id, err = slug.Normalize(id)
	if err != nil {
		return Article{}, false, fmt.Errorf("failed to derive anchor for %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err = markdown.Convert(body, &buf); err != nil {
		return Article{}, false, fmt.Errorf("failed to render article %s: %w", name, err)
	}

	return Article{
		ID:     id,
		Title:  title,
		Order:  meta.Order,
		HTML:   template.HTML(buf.String()),
		Source: name,
	}, meta.Draft, nil
}
