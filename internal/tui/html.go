package tui

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// StripHTML renders an HTML fragment, such as a product description or a lookbook
// body, as plain text. List items become bullets and script or style content is dropped.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	skip := 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			return tidyText(b.String())

		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}

		case html.StartTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if a == atom.Script || a == atom.Style {
				skip++
				continue
			}
			openTag(&b, a)

		case html.SelfClosingTagToken:
			name, _ := z.TagName()
			openTag(&b, atom.Lookup(name))

		case html.EndTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if a == atom.Script || a == atom.Style {
				if skip > 0 {
					skip--
				}
				continue
			}
			if isBlock(a) {
				b.WriteString("\n")
			}
		}
	}
}

func openTag(b *strings.Builder, a atom.Atom) {
	switch {
	case a == atom.Li:
		b.WriteString("\n• ")
	case a == atom.Br || isBlock(a):
		b.WriteString("\n")
	}
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Li, atom.Ul, atom.Ol, atom.Blockquote, atom.Tr,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return true
	}
	return false
}

// tidyText collapses runs of spaces and drops blank lines.
func tidyText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")

	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// Excerpt flattens an HTML fragment to one line of at most limit runes.
// A limit of zero or less keeps the whole text.
func Excerpt(s string, limit int) string {
	text := strings.ReplaceAll(StripHTML(s), "\n", " ")
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return text
	}
	if limit == 1 {
		return "…"
	}
	return strings.TrimSpace(string(runes[:limit-1])) + "…"
}
