package content

import (
	"errors"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var (
	hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	anchor   = regexp.MustCompile(`^#[A-Za-z][A-Za-z0-9_-]*$`)
)

// Validate implements validation.Validatable.
func (s Site) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.Required),
		validation.Field(&s.Domain, validation.Required),
		validation.Field(&s.URL, validation.Required, is.URL),
		validation.Field(&s.Title, validation.Required),
		validation.Field(&s.Description, validation.Required),
		validation.Field(&s.Keywords, validation.Required, validation.Each(validation.Required)),
		validation.Field(&s.OGImage, is.URL),
		validation.Field(&s.ThemeColor, validation.Match(hexColor)),
		validation.Field(&s.StructuredDescription, validation.Required),
	)
}

// Validate implements validation.Validatable.
func (g GameListing) Validate() error {
	return validation.ValidateStruct(&g,
		validation.Field(&g.Title, validation.Required),
		validation.Field(&g.Description, validation.Required),
	)
}

// Validate implements validation.Validatable.
func (f FaqEntry) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Question, validation.Required),
		validation.Field(&f.Answer, validation.Required),
	)
}

// Validate implements validation.Validatable.
func (c InfoCard) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Heading, validation.Required),
		validation.Field(&c.Body, validation.Required),
	)
}

// Validate implements validation.Validatable.
func (a Article) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.ID, validation.Required),
		validation.Field(&a.Title, validation.Required),
		validation.Field(&a.HTML, validation.Required),
	)
}

// Validate implements validation.Validatable.
func (h Hero) Validate() error {
	return validation.ValidateStruct(&h,
		validation.Field(&h.Heading, validation.Required),
		validation.Field(&h.Intro, validation.Required),
		validation.Field(&h.CTAAnchor, validation.Required, validation.Match(anchor)),
		validation.Field(&h.Popular, validation.Each(validation.Required)),
	)
}

// Validate checks every table for missing copy and duplicate rendering keys.
func (c *Content) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Site),
		validation.Field(&c.Hero),
		validation.Field(&c.UpdatedLabel, validation.Required),
		validation.Field(&c.PlayLabel, validation.Required),
		validation.Field(&c.Games, validation.Required, validation.By(uniqueGameTitles)),
		validation.Field(&c.InfoCards),
		validation.Field(&c.Articles, validation.By(uniqueArticleIDs)),
		validation.Field(&c.FAQ, validation.Required, validation.By(uniqueQuestions)),
	)
}

func uniqueGameTitles(value interface{}) error {
	games, _ := value.([]GameListing)
	seen := make(map[string]struct{}, len(games))
	for _, g := range games {
		if _, dup := seen[g.Title]; dup {
			return errors.New("duplicate game title " + g.Title)
		}
		seen[g.Title] = struct{}{}
	}
	return nil
}

func uniqueQuestions(value interface{}) error {
	entries, _ := value.([]FaqEntry)
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.Question]; dup {
			return errors.New("duplicate question " + e.Question)
		}
		seen[e.Question] = struct{}{}
	}
	return nil
}

func uniqueArticleIDs(value interface{}) error {
	articles, _ := value.([]Article)
	seen := make(map[string]struct{}, len(articles))
	for _, a := range articles {
		if _, dup := seen[a.ID]; dup {
			return errors.New("duplicate article anchor " + a.ID)
		}
		seen[a.ID] = struct{}{}
	}
	return nil
}
