package model

import "strings"

// Attribute is one comment line attached to a declaration, kept verbatim
// including its comment markers.
type Attribute struct {
	Text string
}

// IsDirective reports whether the line is a Go directive comment:
// "//" immediately followed by a lower-case name and a colon, as in
// //go:noinline or //lint:ignore.
func (a Attribute) IsDirective() bool {
	return directiveName(a.Text) != ""
}

// Namespace returns the part of a directive before the colon ("go" for
// //go:noinline), or "" for ordinary comment lines.
func (a Attribute) Namespace() string {
	return directiveName(a.Text)
}

// IsPolyenum reports whether the line is one of the generator's own
// directives. Those are consumed and never forwarded.
func (a Attribute) IsPolyenum() bool {
	return a.Namespace() == "polyenum"
}

// Directives returns the directive lines of attrs, without polyenum's own.
func Directives(attrs []Attribute) []Attribute {
	var out []Attribute
	for _, a := range attrs {
		if a.IsDirective() && !a.IsPolyenum() {
			out = append(out, a)
		}
	}
	return out
}

// Forwardable returns comment lines without polyenum's own directives.
func Forwardable(lines []string) []string {
	var out []string
	for _, l := range lines {
		if !(Attribute{Text: l}).IsPolyenum() {
			out = append(out, l)
		}
	}
	return out
}

// DocText returns the prose lines of a comment group: directive lines are
// dropped, and so are the empty "//" separators left dangling at the end.
func DocText(lines []string) []string {
	var out []string
	for _, l := range lines {
		if !(Attribute{Text: l}).IsDirective() {
			out = append(out, l)
		}
	}
	for len(out) > 0 && strings.TrimSpace(out[len(out)-1]) == "//" {
		out = out[:len(out)-1]
	}
	return out
}

func directiveName(text string) string {
	rest, ok := strings.CutPrefix(text, "//")
	if !ok {
		return ""
	}
	colon := strings.IndexByte(rest, ':')
	if colon <= 0 {
		return ""
	}
	name := rest[:colon]
	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return name
}
