// Package page turns the site content and a request timestamp into a serialisable
// document tree. Rendering is pure: the only inputs are the timestamp, the viewer locale
// and the renderer clock used for the footer year.
package page

import (
	"fmt"
	"html/template"

	"github.com/CTAG07/FunMoneyGames/pkg/content"
	"github.com/CTAG07/FunMoneyGames/pkg/seo"
)

// Document is the full landing page.
type Document struct {
	Lang           string              `json:"lang"`
	Head           []seo.MetadataEntry `json:"head"`
	StructuredData string              `json:"structured_data"`
	TopBar         TopBar              `json:"top_bar"`
	Hero           content.Hero        `json:"hero"`
	Games          GameSection         `json:"games"`
	InfoCards      []content.InfoCard  `json:"info_cards"`
	Articles       []ArticleSection    `json:"articles"`
	FAQ            FAQSection          `json:"faq"`
	Footer         Footer              `json:"footer"`
}

// TopBar shows the label and the last-updated date derived from the request timestamp.
type TopBar struct {
	Label      string `json:"label"`
	DatePrefix string `json:"date_prefix"`
	Date       string `json:"date"`
	ISODate    string `json:"iso_date"`
	LongDate   string `json:"long_date"`
}

// GameCard is one entry of the game grid. The call to action has no behaviour.
type GameCard struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CTALabel    string `json:"cta_label"`
}

// GameSection is the game grid anchored at #games.
type GameSection struct {
	ID      string     `json:"id"`
	Heading string     `json:"heading"`
	Intro   string     `json:"intro"`
	Cards   []GameCard `json:"cards"`
}

// ArticleSection is a long-form article with its anchor.
type ArticleSection struct {
	ID    string        `json:"id"`
	Title string        `json:"title"`
	Body  template.HTML `json:"body"`
}

// FAQItem is a disclosure entry. The answer is only visible when Open is set.
type FAQItem struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Open     bool   `json:"open"`
}

// FAQSection is the accordion anchored at #faq.
type FAQSection struct {
	ID      string    `json:"id"`
	Heading string    `json:"heading"`
	Items   []FAQItem `json:"items"`
}

// Footer carries the copyright line and tagline.
type Footer struct {
	Year      int    `json:"year"`
	Copyright string `json:"copyright"`
	Tagline   string `json:"tagline"`
}

// Toggle returns a copy of the section with entry i flipped between collapsed and
// expanded. The receiver and the other entries are left as they are.
func (s FAQSection) Toggle(i int) (FAQSection, error) {
	if i < 0 || i >= len(s.Items) {
		return s, fmt.Errorf("faq entry %d out of range [0,%d)", i, len(s.Items))
	}
	items := append([]FAQItem(nil), s.Items...)
	items[i].Open = !items[i].Open
	s.Items = items
	return s, nil
}

// Expanded returns the indexes of the open entries.
func (s FAQSection) Expanded() []int {
	var out []int
	for i, item := range s.Items {
		if item.Open {
			out = append(out, i)
		}
	}
	return out
}

// ExpandFAQ opens the given FAQ entries, used for deep links such as /?faq=2#faq-2.
// Entries that are already open stay open.
func (d *Document) ExpandFAQ(indexes ...int) error {
	section := d.FAQ
	for _, i := range indexes {
		if i >= 0 && i < len(section.Items) && section.Items[i].Open {
			continue
		}
		var err error
		if section, err = section.Toggle(i); err != nil {
			return err
		}
	}
	d.FAQ = section
	return nil
}
