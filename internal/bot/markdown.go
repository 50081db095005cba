package bot

import "strings"

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"~", `\~`,
	"|", `\|`,
	">", `\>`,
	"[", `\[`,
	"]", `\]`,
)

// EscapeMarkdown escapes Discord markdown so text is rendered literally.
func EscapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}

// linkTargetEscaper keeps a URI from closing the masked link early.
// Markdown escapes are not applied to link targets, Discord would keep the
// backslashes in the URL.
var linkTargetEscaper = strings.NewReplacer(")", "%29", " ", "%20")

// MaskedLink renders "[text](uri)" with the text escaped and the URI left
// as is. Without a URI only the escaped text is returned.
func MaskedLink(text, uri string) string {
	if uri == "" {
		return EscapeMarkdown(text)
	}
	return "[" + EscapeMarkdown(text) + "](" + linkTargetEscaper.Replace(uri) + ")"
}
