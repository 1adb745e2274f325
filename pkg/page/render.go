package page

import (
	"fmt"
	"strconv"
	"time"

	"github.com/CTAG07/FunMoneyGames/pkg/content"
	"github.com/CTAG07/FunMoneyGames/pkg/locale"
	"github.com/CTAG07/FunMoneyGames/pkg/seo"
)

const (
	gamesAnchor     = "games"
	faqAnchor       = "faq"
	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// Renderer builds documents from immutable content. It is safe for concurrent use.
type Renderer struct {
	content *content.Content
	clock   func() time.Time
	locale  locale.Locale
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithClock sets the clock used for the footer year.
func WithClock(clock func() time.Time) Option {
	return func(r *Renderer) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithLocale sets the locale used when Render is called with the zero Locale.
func WithLocale(loc locale.Locale) Option {
	return func(r *Renderer) {
		r.locale = loc
	}
}

// NewRenderer returns a renderer over c. c must not be modified afterwards.
func NewRenderer(c *content.Content, opts ...Option) *Renderer {
	r := &Renderer{
		content: c,
		clock:   time.Now,
		locale:  locale.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Content returns the content the renderer was built with.
func (r *Renderer) Content() *content.Content {
	return r.content
}

// ParseTimestamp parses an RFC 3339 instant with optional fractional seconds. A bare
// ISO-8601 date is read as midnight UTC.
func ParseTimestamp(now string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, now)
	if err == nil {
		return t, nil
	}
	if d, dateErr := time.Parse(time.DateOnly, now); dateErr == nil {
		return d, nil
	}
	return time.Time{}, &TimestampError{Value: now, Err: err}
}

// Render builds the page for the instant now as seen by a viewer in loc. The zero
// Locale selects the renderer default. On error no document is returned.
func (r *Renderer) Render(now string, loc locale.Locale) (*Document, error) {
	t, err := ParseTimestamp(now)
	if err != nil {
		return nil, err
	}
	if loc.IsZero() {
		loc = r.locale
	}

	c := r.content
	structured, err := seo.BuildStructuredData(c.Site, c.FAQ).Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to build structured data: %w", err)
	}

	year := r.clock().Year()
	return &Document{
		Lang:           loc.String(),
		Head:           seo.BuildMetadata(c.Site),
		StructuredData: structured,
		TopBar: TopBar{
			Label:      c.TopBarLabel,
			DatePrefix: c.UpdatedLabel,
			Date:       loc.FormatShort(t),
			ISODate:    t.Format(time.DateOnly),
			LongDate:   loc.FormatLong(t),
		},
		Hero:      cloneHero(c.Hero),
		Games:     r.games(),
		InfoCards: append([]content.InfoCard(nil), c.InfoCards...),
		Articles:  r.articles(),
		FAQ:       r.faq(),
		Footer: Footer{
			Year:      year,
			Copyright: "© " + strconv.Itoa(year) + " " + c.Site.Domain,
			Tagline:   c.Tagline,
		},
	}, nil
}

func cloneHero(h content.Hero) content.Hero {
	h.Popular = append([]string(nil), h.Popular...)
	return h
}

func (r *Renderer) games() GameSection {
	c := r.content
	cards := make([]GameCard, 0, len(c.Games))
	for _, g := range c.Games {
		cards = append(cards, GameCard{
			Title:       g.Title,
			Description: g.Description,
			CTALabel:    c.PlayLabel,
		})
	}
	return GameSection{
		ID:      gamesAnchor,
		Heading: c.GamesHeading,
		Intro:   c.GamesIntro,
		Cards:   cards,
	}
}

func (r *Renderer) articles() []ArticleSection {
	out := make([]ArticleSection, 0, len(r.content.Articles))
	for _, a := range r.content.Articles {
		out = append(out, ArticleSection{ID: a.ID, Title: a.Title, Body: a.HTML})
	}
	return out
}

func (r *Renderer) faq() FAQSection {
	c := r.content
	items := make([]FAQItem, 0, len(c.FAQ))
	for i, entry := range c.FAQ {
		items = append(items, FAQItem{
			ID:       faqAnchor + "-" + strconv.Itoa(i),
			Question: entry.Question,
			Answer:   entry.Answer,
		})
	}
	return FAQSection{
		ID:      faqAnchor,
		Heading: c.FAQHeading,
		Items:   items,
	}
}

// FormatTimestamp renders t the way the site handler passes it to Render: a UTC
// instant with millisecond precision, e.g. 2024-01-15T00:00:00.000Z.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
