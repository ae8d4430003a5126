package badge

import "strings"

var xmlEscaper = strings.NewReplacer(
	`&`, "&amp;",
	`"`, "&quot;",
	`'`, "&apos;",
	`<`, "&lt;",
	`>`, "&gt;",
)

// EscapeXML makes s safe to embed in SVG text and attribute values. Characters
// that XML 1.0 does not allow at all are dropped.
func EscapeXML(s string) string {
	return xmlEscaper.Replace(strings.Map(xmlChar, s))
}

func xmlChar(r rune) rune {
	switch {
	case r == '\t' || r == '\n' || r == '\r':
		return r
	case r >= 0x20 && r <= 0xD7FF:
		return r
	case r >= 0xE000 && r <= 0xFFFD:
		return r
	case r >= 0x10000 && r <= 0x10FFFF:
		return r
	default:
		return -1
	}
}
