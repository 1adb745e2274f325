/*
Package templating renders page documents to HTML with html/template.

The default template set is embedded in the binary. Setting TemplateConfig.TemplateDir
switches the manager to an on-disk directory so the markup can be edited and reloaded
with Refresh without a restart. Full pages are named *.tmpl.html, reusable fragments
*.part.html.

All values are escaped by html/template except the JSON-LD payload, which is emitted
verbatim through the jsonLD function, and article bodies, which are already rendered
HTML.
*/
package templating
