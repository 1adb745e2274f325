package templating

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var pageTemplatePattern = regexp.MustCompile(`^[^/\\]+\.tmpl\.html$`)

// TemplateConfig holds all configuration options for the templating engine.
type TemplateConfig struct {
	// TemplateDir overrides the embedded templates with the files in this directory.
	// Leave empty to use the templates shipped with the binary.
	TemplateDir string `json:"template_dir"`

	// PageTemplate is the name of the full template used for the landing page.
	PageTemplate string `json:"page_template"`

	// CacheControl is sent with every rendered page. Empty disables the header.
	CacheControl string `json:"cache_control"`
}

// DefaultConfig returns a TemplateConfig that renders the embedded landing page.
func DefaultConfig() *TemplateConfig {
	return &TemplateConfig{
		TemplateDir:  "",
		PageTemplate: "page.tmpl.html",
		CacheControl: "public, max-age=300",
	}
}

// Validate checks that the configuration can be used to render the page.
func (c TemplateConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.PageTemplate,
			validation.Required,
			validation.Match(pageTemplatePattern).Error("must be a *.tmpl.html file name")),
	)
}
