// Package templates embeds the HTML documents rendered for quotes.
package templates

import "embed"

//go:embed *.html
var FS embed.FS

const (
	QuoteDocument = "quote.html"
	QuoteEmail    = "quote_email.html"
	QuoteNotice   = "quote_notice.html"
)
