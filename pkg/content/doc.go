/*
Package content holds the copy and literal tables that make up the Fun Money Games
landing page: site identity, the featured game list, the FAQ, hero and info-card copy,
and the long-form articles.

Content is built once (see Default) and treated as immutable configuration. The page
renderer receives it at construction time, so every render is a pure function of the
content and the request timestamp.
*/
package content
