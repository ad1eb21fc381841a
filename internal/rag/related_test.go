package rag_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/josinaldojr/legal-rag/internal/rag"
)

func TestSuggestRelatedQuestions(t *testing.T) {
	testCases := map[string]struct {
		question string
		answer   string
		want     []string
	}{
		"criminal keyword in question": {
			question: "How do I file an FIR?",
			want: []string{
				"How do I file an FIR online?",
				"What are my rights if I'm arrested?",
				"Can I get anticipatory bail?",
			},
		},
		"keyword found only in the answer": {
			question: "What should I do next?",
			answer:   "You can approach the Consumer forum in your district.",
			want: []string{
				"How do I file a consumer complaint?",
				"What is the time limit for filing a consumer case?",
				"Can I claim compensation for defective products?",
			},
		},
		"first matching topic wins": {
			// "landlord" contains "land", and property is listed before tenancy.
			question: "My landlord keeps my deposit",
			want: []string{
				"What documents are required for property registration?",
				"How is property divided among legal heirs?",
				"Can agricultural land be sold to non-farmers?",
			},
		},
		"near duplicate of the question is skipped": {
			question: "Grounds for divorce India?",
			want: []string{
				"How long does the divorce process typically take?",
				"What are the child custody laws in India?",
				"Can I file for divorce without mutual consent?",
			},
		},
		"no topic falls back to generic questions": {
			question: "What is the meaning of habeas corpus?",
			want:     rag.FallbackQuestions(),
		},
		"empty input falls back": {
			want: rag.FallbackQuestions(),
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got := rag.SuggestRelatedQuestions(tc.question, tc.answer)
			gt.Value(t, got).Equal(tc.want)
		})
	}
}

func TestSuggestRelatedQuestionsBounds(t *testing.T) {
	inputs := []string{
		"divorce", "property", "bail", "refund", "salary", "breach", "eviction", "scam", "nothing here",
	}
	for _, in := range inputs {
		got := rag.SuggestRelatedQuestions(in, "")
		gt.Bool(t, len(got) > 0 && len(got) <= 4).True()
	}
}

func TestSuggestedQuestionsComeFromTables(t *testing.T) {
	known := map[string]bool{}
	for _, qs := range rag.Topics() {
		for _, q := range qs {
			known[q] = true
		}
	}
	for _, q := range rag.FallbackQuestions() {
		known[q] = true
	}

	for _, in := range []string{"custody battle", "online fraud", "lease agreement", "random"} {
		for _, q := range rag.SuggestRelatedQuestions(in, "") {
			gt.Bool(t, known[q]).True()
		}
	}
}

func TestQuestionSimilarity(t *testing.T) {
	t.Run("ignores case and punctuation", func(t *testing.T) {
		got := rag.QuestionSimilarity("Property registration documents?", "documents for PROPERTY registration")
		gt.Value(t, got).Equal(1.0)
	})

	t.Run("byte order mark separates words", func(t *testing.T) {
		got := rag.QuestionSimilarity("divorce\ufeffgrounds", "grounds divorce")
		gt.Value(t, got).Equal(1.0)
	})

	t.Run("short words never count", func(t *testing.T) {
		gt.Value(t, rag.QuestionSimilarity("can I get an fir", "can I get an fir")).Equal(0.0)
	})

	t.Run("divides by the smaller set", func(t *testing.T) {
		got := rag.QuestionSimilarity("divorce grounds", "what are the grounds for divorce in india")
		gt.Value(t, got).Equal(1.0)
	})

	t.Run("empty side yields zero", func(t *testing.T) {
		gt.Value(t, rag.QuestionSimilarity("", "divorce")).Equal(0.0)
		gt.Value(t, rag.QuestionSimilarity("?!", "divorce")).Equal(0.0)
	})

	t.Run("exactly half is not above threshold", func(t *testing.T) {
		q := "What are the grounds for divorce in India?"
		gt.Value(t, rag.QuestionSimilarity(q, q)).Equal(0.5)

		got := rag.SuggestRelatedQuestions(q, "")
		gt.Value(t, got[0]).Equal(q)
	})
}
