package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// English reduces transcripts to a canonical written form before alignment:
// lowercase, common contractions expanded, punctuation stripped, whitespace
// collapsed. Word error rates should measure recognition mistakes, not
// formatting differences between annotators and recognizers.
type English struct{}

// NewEnglish creates the default normalizer.
func NewEnglish() *English { return &English{} }

// Contractions that the suffix rules would expand incorrectly.
var irregularContractions = map[string]string{
	"won't":  "will not",
	"can't":  "can not",
	"shan't": "shall not",
	"ain't":  "are not",
	"let's":  "let us",
	"y'all":  "you all",
}

var contractionSuffixes = []struct {
	suffix      string
	replacement string
}{
	{"n't", " not"},
	{"'re", " are"},
	{"'ve", " have"},
	{"'ll", " will"},
	{"'m", " am"},
	{"'d", " would"},
}

// Everything except letters, digits, and apostrophes becomes a word break.
// Apostrophes survive until contraction handling.
var nonWord = regexp.MustCompile(`[^\p{L}\p{N}']+`)

// Normalize canonicalizes one transcript. The input is never mutated; the
// only failure mode is a transcript that is not valid UTF-8.
func (n *English) Normalize(text string) (string, error) {
	if !utf8.ValidString(text) {
		return "", fmt.Errorf("transcript is not valid UTF-8")
	}

	text = strings.ToLower(text)
	text = nonWord.ReplaceAllString(text, " ")

	words := strings.Fields(text)
	normalized := make([]string, 0, len(words))
	for _, word := range words {
		normalized = append(normalized, expandContraction(word))
	}

	return strings.Join(normalized, " "), nil
}

func expandContraction(word string) string {
	if expanded, ok := irregularContractions[word]; ok {
		return expanded
	}
	for _, rule := range contractionSuffixes {
		if base, ok := strings.CutSuffix(word, rule.suffix); ok && base != "" {
			return base + rule.replacement
		}
	}
	// Leftover apostrophes (possessives, quoted words) carry no spoken
	// content of their own.
	return strings.ReplaceAll(word, "'", "")
}
