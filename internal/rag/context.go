package rag

import "strings"

const (
	// DefaultSummaryLength is the rune budget of a case summary.
	DefaultSummaryLength = 400

	// minSentenceCut is the smallest offset at which a summary may be cut on
	// a sentence boundary; earlier periods fall back to a hard cut.
	minSentenceCut = 50

	ellipsis         = " …"
	contextSeparator = "\n\n---\n\n"
)

// BuildContext renders passages as a citation-tagged context block in the
// order they were retrieved.
func BuildContext(passages []Passage) string {
	parts := make([]string, 0, len(passages))
	for _, p := range passages {
		parts = append(parts, "[Source: "+sourceOf(p)+"]\n"+p.Text)
	}
	return strings.Join(parts, contextSeparator)
}

// BuildCases derives one CaseSummary per passage, index-aligned.
func BuildCases(passages []Passage) []CaseSummary {
	cases := make([]CaseSummary, 0, len(passages))
	for _, p := range passages {
		cases = append(cases, CaseSummary{
			Source:     sourceOf(p),
			ChunkIndex: p.ChunkIndex,
			Summary:    Summarize(p.Text, DefaultSummaryLength),
			Content:    p.Text,
			Metadata:   metadataOf(p),
		})
	}
	return cases
}

// Summarize collapses whitespace and shortens text to maxLength runes,
// preferring to end on the last full sentence of the kept window.
func Summarize(text string, maxLength int) string {
	normalized := normalizeWhitespace(text)
	runes := []rune(normalized)
	if len(runes) <= maxLength {
		return normalized
	}

	truncated := runes[:maxLength]
	if cut := lastIndexRune(truncated, '.'); cut > minSentenceCut {
		return string(truncated[:cut+1]) + ellipsis
	}
	return string(truncated) + ellipsis
}

func normalizeWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if isSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteRune(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

// isSpace matches the ECMAScript whitespace and line terminator set, which
// includes U+FEFF and excludes U+0085.
func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ',
		'\u00a0', '\u1680', '\u2028', '\u2029', '\u202f', '\u205f', '\u3000', '\ufeff':
		return true
	}
	return r >= '\u2000' && r <= '\u200a'
}

func lastIndexRune(rs []rune, target rune) int {
	for i := len(rs) - 1; i >= 0; i-- {
		if rs[i] == target {
			return i
		}
	}
	return -1
}

func sourceOf(p Passage) string {
	if p.Source == "" {
		return UnknownSource
	}
	return p.Source
}

func metadataOf(p Passage) Metadata {
	if p.Metadata == nil {
		return Metadata{}
	}
	return p.Metadata
}
