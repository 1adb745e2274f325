package seo

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/CTAG07/FunMoneyGames/pkg/content"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaOrg = "https://schema.org"

var (
	// ErrSerialization wraps failures to encode the structured data payload.
	ErrSerialization = errors.New("structured data serialization failed")
	// ErrInvalidStructuredData is returned when a payload does not match the JSON-LD schema.
	ErrInvalidStructuredData = errors.New("invalid structured data")
)

//go:embed jsonld.schema.json
var schemaSource []byte

var (
	compiledSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
)

// Answer is a schema.org Answer.
type Answer struct {
	Type string `json:"@type"`
	Text string `json:"text"`
}

// Question is a schema.org Question with its accepted answer.
type Question struct {
	Type           string `json:"@type"`
	Name           string `json:"name"`
	AcceptedAnswer Answer `json:"acceptedAnswer"`
}

// Node is a single entry of the @graph array. Only the fields relevant to its @type are set.
type Node struct {
	Type        string     `json:"@type"`
	Name        string     `json:"name,omitempty"`
	URL         string     `json:"url,omitempty"`
	Description string     `json:"description,omitempty"`
	MainEntity  []Question `json:"mainEntity,omitempty"`
}

// StructuredData is the JSON-LD document embedded in the page.
type StructuredData struct {
	Context string `json:"@context"`
	Graph   []Node `json:"@graph"`
}

// BuildStructuredData returns a graph with one WebSite node and one FAQPage node whose
// questions follow the order of faq.
func BuildStructuredData(site content.Site, faq []content.FaqEntry) StructuredData {
	questions := make([]Question, 0, len(faq))
	for _, entry := range faq {
		questions = append(questions, Question{
			Type: "Question",
			Name: entry.Question,
			AcceptedAnswer: Answer{
				Type: "Answer",
				Text: entry.Answer,
			},
		})
	}

	return StructuredData{
		Context: schemaOrg,
		Graph: []Node{
			{
				Type:        "WebSite",
				Name:        site.Name,
				URL:         site.URL,
				Description: site.StructuredDescription,
			},
			{
				Type:       "FAQPage",
				MainEntity: questions,
			},
		},
	}
}

// Node returns the first graph node of the given @type.
func (d StructuredData) Node(typ string) (Node, bool) {
	for _, n := range d.Graph {
		if n.Type == typ {
			return n, true
		}
	}
	return Node{}, false
}

// Marshal serializes the payload and validates it against the JSON-LD schema.
// The encoder escapes <, > and & so the result can be embedded in a script element as is.
func (d StructuredData) Marshal() (string, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	if err = ValidateStructuredData(data); err != nil {
		return "", err
	}
	return string(data), nil
}

// ParseStructuredData decodes a serialized payload.
func ParseStructuredData(raw string) (StructuredData, error) {
	var d StructuredData
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return StructuredData{}, fmt.Errorf("%w: %v", ErrInvalidStructuredData, err)
	}
	return d, nil
}

// ValidateStructuredData checks raw JSON against the embedded JSON-LD schema.
func ValidateStructuredData(raw []byte) error {
	schema, err := loadSchema()
	if err != nil {
		return err
	}

	var doc interface{}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err = decoder.Decode(&doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStructuredData, err)
	}
	if err = schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStructuredData, err)
	}
	return nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("jsonld.schema.json", bytes.NewReader(schemaSource)); err != nil {
			compileErr = fmt.Errorf("failed to load JSON-LD schema: %w", err)
			return
		}
		compiledSchema, compileErr = compiler.Compile("jsonld.schema.json")
	})
	return compiledSchema, compileErr
}
