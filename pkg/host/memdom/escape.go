package memdom

import "strings"

// Text nodes only need the characters that open markup or entities.
var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// Attribute values are always written double-quoted. Whitespace control
// characters are encoded so the value survives parser normalization.
var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
	"\n", "&#10;",
	"\r", "&#13;",
	"\t", "&#9;",
)

func writeText(b *strings.Builder, s string) {
	textEscaper.WriteString(b, s)
}

func writeAttrValue(b *strings.Builder, s string) {
	attrEscaper.WriteString(b, s)
}
