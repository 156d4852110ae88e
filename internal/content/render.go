package content

import (
	"strings"

	"github.com/russross/blackfriday/v2"
)

// RenderHTML converts a markdown body into the HTML WordPress stores.
func RenderHTML(markdown string) string {
	out := blackfriday.Run([]byte(markdown), blackfriday.WithExtensions(
		blackfriday.CommonExtensions|blackfriday.AutoHeadingIDs,
	))
	return strings.TrimSpace(string(out))
}
