// Package seo builds the document head metadata and the JSON-LD structured data block.
package seo

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/CTAG07/FunMoneyGames/pkg/content"
)

// Kind identifies which shape a MetadataEntry carries.
type Kind int

const (
	KindTitle Kind = iota
	KindName
	KindProperty
	KindLink
)

func (k Kind) String() string {
	switch k {
	case KindTitle:
		return "title"
	case KindName:
		return "name"
	case KindProperty:
		return "property"
	case KindLink:
		return "link"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MetadataEntry is one document head directive. Exactly one group of fields is set,
// selected by Kind: Title; Name and Content; Property and Content; Rel and Href.
// The JSON form carries exactly the keys of its shape, empty values included.
type MetadataEntry struct {
	Kind     Kind
	Title    string
	Name     string
	Property string
	Content  string
	Rel      string
	Href     string
}

type titleJSON struct {
	Title string `json:"title"`
}

type nameJSON struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type propertyJSON struct {
	Property string `json:"property"`
	Content  string `json:"content"`
}

type linkJSON struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

// MarshalJSON encodes the entry in the shape selected by its Kind.
func (m MetadataEntry) MarshalJSON() ([]byte, error) {
	switch m.Kind {
	case KindTitle:
		return json.Marshal(titleJSON{Title: m.Title})
	case KindName:
		return json.Marshal(nameJSON{Name: m.Name, Content: m.Content})
	case KindProperty:
		return json.Marshal(propertyJSON{Property: m.Property, Content: m.Content})
	case KindLink:
		return json.Marshal(linkJSON{Rel: m.Rel, Href: m.Href})
	default:
		return nil, fmt.Errorf("%w: cannot encode %s", ErrInvalidMetadata, m.Kind)
	}
}

// UnmarshalJSON restores the Kind from the keys present in the object.
func (m *MetadataEntry) UnmarshalJSON(data []byte) error {
	var fields map[string]string
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}
	has := func(key string) bool {
		_, ok := fields[key]
		return ok
	}
	switch {
	case has("title"):
		*m = Title(fields["title"])
	case has("name"):
		*m = Name(fields["name"], fields["content"])
	case has("property"):
		*m = Property(fields["property"], fields["content"])
	case has("rel"):
		*m = Link(fields["rel"], fields["href"])
	default:
		return fmt.Errorf("%w: unrecognised entry %s", ErrInvalidMetadata, data)
	}
	return nil
}

// Title returns the document title entry.
func Title(title string) MetadataEntry {
	return MetadataEntry{Kind: KindTitle, Title: title}
}

// Name returns a <meta name content> entry.
func Name(name, content string) MetadataEntry {
	return MetadataEntry{Kind: KindName, Name: name, Content: content}
}

// Property returns a <meta property content> entry.
func Property(property, content string) MetadataEntry {
	return MetadataEntry{Kind: KindProperty, Property: property, Content: content}
}

// Link returns a <link rel href> entry.
func Link(rel, href string) MetadataEntry {
	return MetadataEntry{Kind: KindLink, Rel: rel, Href: href}
}

// IsTitle, IsName, IsProperty and IsLink are used by templates to pick the tag shape.
func (m MetadataEntry) IsTitle() bool    { return m.Kind == KindTitle }
func (m MetadataEntry) IsName() bool     { return m.Kind == KindName }
func (m MetadataEntry) IsProperty() bool { return m.Kind == KindProperty }
func (m MetadataEntry) IsLink() bool     { return m.Kind == KindLink }

// BuildMetadata returns the head entries for the landing page in document order.
func BuildMetadata(site content.Site) []MetadataEntry {
	return []MetadataEntry{
		Title(site.Title),
		Name("description", site.Description),
		Name("keywords", strings.Join(site.Keywords, ", ")),
		Link("canonical", site.URL),
		Name("robots", site.Robots),
		Property("og:title", site.Title),
		Property("og:description", site.Description),
		Property("og:type", "website"),
		Property("og:url", site.URL),
		Property("og:image", site.OGImage),
		Name("theme-color", site.ThemeColor),
	}
}

// ErrInvalidMetadata is returned by ValidateMetadata.
var ErrInvalidMetadata = errors.New("invalid metadata")

// ValidateMetadata checks that entries contain exactly one title, at most one canonical
// link, and that name and property values are unique within their namespace.
func ValidateMetadata(entries []MetadataEntry) error {
	titles, canonicals := 0, 0
	names := make(map[string]struct{})
	properties := make(map[string]struct{})

	for i, e := range entries {
		switch e.Kind {
		case KindTitle:
			titles++
		case KindName:
			if _, dup := names[e.Name]; dup {
				return fmt.Errorf("%w: duplicate name %q at %d", ErrInvalidMetadata, e.Name, i)
			}
			names[e.Name] = struct{}{}
		case KindProperty:
			if _, dup := properties[e.Property]; dup {
				return fmt.Errorf("%w: duplicate property %q at %d", ErrInvalidMetadata, e.Property, i)
			}
			properties[e.Property] = struct{}{}
		case KindLink:
			if e.Rel == "canonical" {
				canonicals++
			}
		default:
			return fmt.Errorf("%w: unknown %s at %d", ErrInvalidMetadata, e.Kind, i)
		}
	}

	if titles != 1 {
		return fmt.Errorf("%w: expected exactly one title, found %d", ErrInvalidMetadata, titles)
	}
	if canonicals > 1 {
		return fmt.Errorf("%w: found %d canonical links", ErrInvalidMetadata, canonicals)
	}
	return nil
}
