package templating

import "html/template"

// jsonLD marks an already serialised and validated JSON-LD payload as safe for a
// script element. It must only ever receive page.Document.StructuredData.
func jsonLD(payload string) template.JS {
	return template.JS(payload)
}

// inc returns i + 1.
func inc(i int) int {
	return i + 1
}
