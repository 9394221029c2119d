// Package web embeds the page templates and static assets served with the
// intake form.
package web

import "embed"

//go:embed templates static
var FS embed.FS
