package rag_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/m-mizutani/gt"

	"github.com/josinaldojr/legal-rag/internal/rag"
)

func TestBuildContext(t *testing.T) {
	t.Run("tags every passage and keeps rank order", func(t *testing.T) {
		passages := []rag.Passage{
			{Text: "Cruelty is a ground.", Source: "Case B", Score: 0.4},
			{Text: "Desertion for two years.", Source: "Case A", Score: 0.9},
		}

		got := rag.BuildContext(passages)
		gt.Value(t, got).Equal("[Source: Case B]\nCruelty is a ground.\n\n---\n\n[Source: Case A]\nDesertion for two years.")
	})

	t.Run("falls back to Unknown source", func(t *testing.T) {
		got := rag.BuildContext([]rag.Passage{{Text: "text"}})
		gt.Value(t, got).Equal("[Source: Unknown]\ntext")
	})

	t.Run("empty input yields empty context", func(t *testing.T) {
		gt.Value(t, rag.BuildContext(nil)).Equal("")
	})
}

func TestSummarize(t *testing.T) {
	t.Run("short text is returned normalized", func(t *testing.T) {
		got := rag.Summarize("  The   court\n\nheld\tthat  ", 400)
		gt.Value(t, got).Equal("The court held that")
	})

	t.Run("byte order mark counts as whitespace, next line does not", func(t *testing.T) {
		gt.Value(t, rag.Summarize("a\ufeff\u3000b", 400)).Equal("a b")
		gt.Value(t, rag.Summarize("a\u0085b", 400)).Equal("a\u0085b")
	})

	t.Run("text of exactly max length is not truncated", func(t *testing.T) {
		text := strings.Repeat("a", 400)
		gt.Value(t, rag.Summarize(text, 400)).Equal(text)
	})

	t.Run("cuts at the last sentence boundary after offset 50", func(t *testing.T) {
		first := strings.Repeat("x", 60) + "."
		text := first + " " + strings.Repeat("y", 500)

		got := rag.Summarize(text, 400)
		gt.Value(t, got).Equal(first + " …")
	})

	t.Run("hard cut when the only period is too early", func(t *testing.T) {
		text := "Short. " + strings.Repeat("z", 600)

		got := rag.Summarize(text, 400)
		gt.Value(t, got).Equal(text[:400] + " …")
	})

	t.Run("period exactly at offset 50 is not a valid cut", func(t *testing.T) {
		text := strings.Repeat("p", 50) + "." + strings.Repeat("q", 600)

		got := rag.Summarize(text, 400)
		gt.Value(t, got).Equal(text[:400] + " …")
	})

	t.Run("long output stays within max length plus marker", func(t *testing.T) {
		text := strings.Repeat("The appellant filed a petition. ", 40)

		got := rag.Summarize(text, 400)
		gt.Bool(t, utf8.RuneCountInString(got) <= 400+utf8.RuneCountInString(" …")).True()
		gt.Bool(t, strings.HasSuffix(got, ". …")).True()
	})

	t.Run("counts runes, not bytes", func(t *testing.T) {
		text := strings.Repeat("न्याय ", 100)

		got := rag.Summarize(text, 400)
		gt.Bool(t, utf8.ValidString(got)).True()
		gt.Number(t, utf8.RuneCountInString(got)).Equal(400 + utf8.RuneCountInString(" …"))
	})
}

func TestBuildCases(t *testing.T) {
	long := strings.Repeat("The High Court considered the appeal. ", 30)
	passages := []rag.Passage{
		{Text: long, Source: "Case A", ChunkIndex: 3, Metadata: rag.Metadata{"source": "Case A", "chunk_index": 3.0}},
		{Text: "brief", Source: "Case B", ChunkIndex: 1},
	}

	cases := rag.BuildCases(passages)
	gt.Array(t, cases).Length(2).Required()

	gt.Value(t, cases[0].Source).Equal("Case A")
	gt.Value(t, cases[0].ChunkIndex).Equal(3)
	gt.Value(t, cases[0].Content).Equal(long)
	gt.Value(t, cases[0].Summary).Equal(rag.Summarize(long, rag.DefaultSummaryLength))
	gt.Value(t, cases[1].Summary).Equal("brief")
	gt.Value(t, cases[1].Metadata).NotNil()
}
