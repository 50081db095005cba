package domain

import (
	"strings"
)

// SearchSource represents the audio node search prefix for a query.
type SearchSource string

const (
	// SourceYouTube searches YouTube.
	SourceYouTube SearchSource = "ytsearch"
	// SourceDirect indicates a direct URL (no search prefix).
	SourceDirect SearchSource = ""
)

// SearchQuery represents a user-supplied "play" argument.
type SearchQuery struct {
	Query  string       // The search term or URL
	Source SearchSource // The search source
}

// NewSearchQuery creates a SearchQuery from user input.
// URLs are passed to the audio node as-is, anything else is searched on YouTube.
// Angle brackets Discord users put around links to suppress embeds are stripped.
func NewSearchQuery(input string) SearchQuery {
	input = strings.TrimSpace(input)
	if unwrapped, ok := strings.CutPrefix(input, "<"); ok {
		if unwrapped, ok = strings.CutSuffix(unwrapped, ">"); ok && isURL(unwrapped) {
			input = unwrapped
		}
	}

	if isURL(input) {
		return SearchQuery{Query: input, Source: SourceDirect}
	}
	return SearchQuery{Query: input, Source: SourceYouTube}
}

// IsURL returns true if the query is a direct link.
func (q SearchQuery) IsURL() bool {
	return q.Source == SourceDirect
}

// LavalinkQuery returns the identifier to hand to the audio node.
func (q SearchQuery) LavalinkQuery() string {
	if q.IsURL() {
		return q.Query
	}
	return string(q.Source) + ":" + q.Query
}

// IsValid returns true if the query is not empty.
func (q SearchQuery) IsValid() bool {
	return q.Query != ""
}

func isURL(input string) bool {
	return strings.HasPrefix(input, "http://") ||
		strings.HasPrefix(input, "https://") ||
		strings.HasPrefix(input, "www.")
}
