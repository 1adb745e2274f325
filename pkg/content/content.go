package content

import "html/template"

// Site carries the identity of the website used for metadata and structured data.
type Site struct {
	Name                  string   `json:"name"`
	Domain                string   `json:"domain"`
	URL                   string   `json:"url"`
	Title                 string   `json:"title"`
	Description           string   `json:"description"`
	Keywords              []string `json:"keywords"`
	Robots                string   `json:"robots"`
	OGImage               string   `json:"og_image"`
	ThemeColor            string   `json:"theme_color"`
	StructuredDescription string   `json:"structured_description"`
}

// GameListing is a single featured game card. Title doubles as the rendering key.
type GameListing struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// FaqEntry is a question/answer pair shown in the FAQ accordion and the FAQPage schema.
type FaqEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// InfoCard is a short headed text block.
type InfoCard struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// Article is a long-form section rendered from Markdown.
type Article struct {
	ID     string        `json:"id"`
	Title  string        `json:"title"`
	Order  int           `json:"order"`
	HTML   template.HTML `json:"html"`
	Source string        `json:"source,omitempty"`
}

// Hero is the copy above the fold.
type Hero struct {
	Heading        string   `json:"heading"`
	Intro          string   `json:"intro"`
	CTALabel       string   `json:"cta_label"`
	CTAAnchor      string   `json:"cta_anchor"`
	PopularHeading string   `json:"popular_heading"`
	Popular        []string `json:"popular"`
}

// Content is the full set of page copy passed to the renderer.
type Content struct {
	Site         Site          `json:"site"`
	TopBarLabel  string        `json:"top_bar_label"`
	UpdatedLabel string        `json:"updated_label"`
	Hero         Hero          `json:"hero"`
	GamesHeading string        `json:"games_heading"`
	GamesIntro   string        `json:"games_intro"`
	PlayLabel    string        `json:"play_label"`
	Games        []GameListing `json:"games"`
	InfoCards    []InfoCard    `json:"info_cards"`
	Articles     []Article     `json:"articles"`
	FAQHeading   string        `json:"faq_heading"`
	FAQ          []FaqEntry    `json:"faq"`
	Tagline      string        `json:"tagline"`
}

// WithArticles returns a copy of c using the given articles. The receiver is left untouched.
func (c *Content) WithArticles(articles []Article) *Content {
	clone := *c
	clone.Articles = append([]Article(nil), articles...)
	return &clone
}
