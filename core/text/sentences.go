package text

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var sentenceBreak = regexp.MustCompile(`\.\s*`)

// CapitalizeSentences splits text on periods and capitalizes every segment.
//
// Segments are trimmed, get an upper-case first letter and a lower-case remainder, and are
// joined with ". ". Empty segments (consecutive periods) are written back as literal
// periods. When a segment ends in a digit and the next one starts with a digit the period
// between them is restored verbatim ("12.5"), so decimal numbers survive.
func CapitalizeSentences(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}

	parts := sentenceBreak.Split(s, -1)
	for i, p := range parts {
		parts[i] = capitalize(strings.TrimSpace(p))
	}

	var b strings.Builder
	numeric := false
	for i, p := range parts {
		if p == "" {
			b.WriteString(".")
			continue
		}

		switch {
		case numeric:
			b.WriteString(".")
			b.WriteString(p)
			numeric = false
		case i == 0:
			b.WriteString(p)
		default:
			b.WriteString(". ")
			b.WriteString(p)
		}

		if i+1 < len(parts) && endsWithDigit(p) && startsWithDigit(parts[i+1]) {
			numeric = true
		}
	}
	return b.String()
}

// TitleWords title-cases every word of s.
func TitleWords(s string) string {
	// Casers keep state, so each call gets its own.
	return cases.Title(language.Spanish).String(s)
}

// LocationText drops the leading label word of a scraped location ("Ubicación: ...")
// and title-cases the rest.
func LocationText(raw string) string {
	words := strings.Split(strings.TrimSpace(raw), " ")
	if len(words) <= 1 {
		return ""
	}
	return TitleWords(strings.Join(words[1:], " "))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return cases.Upper(language.Spanish).String(string(r)) + cases.Lower(language.Spanish).String(s[size:])
}

func endsWithDigit(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r != utf8.RuneError && unicode.IsDigit(r)
}

func startsWithDigit(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r != utf8.RuneError && unicode.IsDigit(r)
}
