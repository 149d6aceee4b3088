package text

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMalformedText is returned when a text still carries broken characters after repair.
var ErrMalformedText = errors.New("malformed text")

const replacementChar = "�"

var knownWords = map[string]string{
	"ba" + replacementChar + "o":          "baño",
	"cami" + replacementChar + "n":        "camión",
	"el" + replacementChar + "ctrico":     "eléctrico",
	"rob" + replacementChar + "tico":      "robótico",
	"eletroqu" + replacementChar + "mico": "eletroquímico",
	"travesa" + replacementChar + "os":    "travesaños",
	"ni" + replacementChar + "o":          "niño",
	"caf" + replacementChar:               "café",
	"preparaci" + replacementChar + "n":   "preparación",
}

var (
	wordRepairer = newWordRepairer()
	brokenWord   = regexp.MustCompile(`\S*` + replacementChar + `\S*`)
)

func newWordRepairer() *strings.Replacer {
	pairs := make([]string, 0, len(knownWords)*4)
	for bad, good := range knownWords {
		pairs = append(pairs, bad, good, capitalize(bad), capitalize(good))
	}
	return strings.NewReplacer(pairs...)
}

// RepairMojibake replaces the known broken words of s, in lower and capitalized form.
func RepairMojibake(s string) string {
	if !strings.Contains(s, replacementChar) {
		return s
	}
	return wordRepairer.Replace(s)
}

// FindMojibake returns the words of s that still carry a replacement character.
func FindMojibake(s string) []string {
	return brokenWord.FindAllString(s, -1)
}

// Repair fixes s and fails with ErrMalformedText when broken words remain.
func Repair(s string) (string, error) {
	fixed := RepairMojibake(s)
	if words := FindMojibake(fixed); len(words) > 0 {
		return fixed, fmt.Errorf("%w: [%s]", ErrMalformedText, strings.Join(words, ","))
	}
	return fixed, nil
}
