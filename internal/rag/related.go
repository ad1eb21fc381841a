package rag

import "strings"

const (
	maxRelatedQuestions   = 4
	questionsPerTopic     = 3
	tooSimilarThreshold   = 0.5
	minSignificantWordLen = 3
)

type topic struct {
	keywords  []string
	questions []string
}

// matches reports whether any keyword occurs in the lower-cased text.
func (t topic) matches(text string) bool {
	for _, kw := range t.keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// topics is scanned in order and the first match wins, so reordering it
// changes which suggestions users see.
var topics = []topic{
	{
		keywords: []string{"divorce", "marriage", "separation", "custody"},
		questions: []string{
			"What are the grounds for divorce in India?",
			"How long does the divorce process typically take?",
			"What are the child custody laws in India?",
			"Can I file for divorce without mutual consent?",
		},
	},
	{
		keywords: []string{"property", "land", "real estate", "inheritance", "will"},
		questions: []string{
			"What documents are required for property registration?",
			"How is property divided among legal heirs?",
			"Can agricultural land be sold to non-farmers?",
			"What are the stamp duty charges for property transfer?",
		},
	},
	{
		keywords: []string{"criminal", "fir", "police", "arrest", "bail"},
		questions: []string{
			"How do I file an FIR online?",
			"What are my rights if I'm arrested?",
			"Can I get anticipatory bail?",
			"What is the difference between bailable and non-bailable offenses?",
		},
	},
	{
		keywords: []string{"consumer", "complaint", "refund", "defective", "warranty"},
		questions: []string{
			"How do I file a consumer complaint?",
			"What is the time limit for filing a consumer case?",
			"Can I claim compensation for defective products?",
			"Where should I file a consumer complaint?",
		},
	},
	{
		keywords: []string{"employment", "labor", "salary", "termination", "resignation"},
		questions: []string{
			"What are my rights if I'm terminated unfairly?",
			"Can my employer withhold my salary?",
			"What is the notice period required for resignation?",
			"How do I claim unpaid wages?",
		},
	},
	{
		keywords: []string{"contract", "agreement", "breach", "dispute"},
		questions: []string{
			"What makes a contract legally valid?",
			"What are the remedies for breach of contract?",
			"Can an oral agreement be enforced?",
			"How do I draft a legal agreement?",
		},
	},
	{
		keywords: []string{"tenant", "landlord", "rent", "eviction", "lease"},
		questions: []string{
			"What are the rights of a tenant in India?",
			"How can a landlord evict a tenant legally?",
			"Can rent be increased without notice?",
			"What is rent control act?",
		},
	},
	{
		keywords: []string{"cyber", "online", "fraud", "scam", "digital"},
		questions: []string{
			"How do I report cybercrime?",
			"What legal action can I take against online fraud?",
			"Are social media posts legally protected?",
			"What are the penalties for cybercrime?",
		},
	},
}

var fallbackQuestions = []string{
	"What are the legal remedies available in my case?",
	"What documents do I need to prepare?",
	"How long does this legal process typically take?",
}

// SuggestRelatedQuestions proposes follow-up questions from the first topic
// whose keywords appear in the question or the answer.
func SuggestRelatedQuestions(question, answer string) []string {
	text := strings.ToLower(question) + "\n" + strings.ToLower(answer)

	var questions []string
	for _, t := range topics {
		if !t.matches(text) {
			continue
		}
		for _, q := range t.questions {
			if len(questions) == questionsPerTopic {
				break
			}
			if questionSimilarity(q, question) > tooSimilarThreshold {
				continue
			}
			questions = append(questions, q)
		}
		break
	}

	if len(questions) == 0 {
		questions = append(questions, fallbackQuestions...)
	}
	if len(questions) > maxRelatedQuestions {
		questions = questions[:maxRelatedQuestions]
	}
	return questions
}

// questionSimilarity counts shared words longer than three characters and
// divides by the size of the smaller word set.
func questionSimilarity(a, b string) float64 {
	wa, wb := wordSet(a), wordSet(b)
	smaller := min(len(wa), len(wb))
	if smaller == 0 {
		return 0
	}

	common := 0
	for w := range wa {
		if _, ok := wb[w]; ok && len(w) > minSignificantWordLen {
			common++
		}
	}
	return float64(common) / float64(smaller)
}

func wordSet(s string) map[string]struct{} {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', isSpace(r):
			b.WriteRune(r)
		}
	}

	set := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(b.String(), isSpace) {
		set[w] = struct{}{}
	}
	return set
}
