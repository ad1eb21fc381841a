package rag

// QuestionSimilarity exposes questionSimilarity for testing
func QuestionSimilarity(a, b string) float64 {
	return questionSimilarity(a, b)
}

// Topics returns the candidate questions of every topic, in table order
func Topics() [][]string {
	out := make([][]string, 0, len(topics))
	for _, t := range topics {
		out = append(out, t.questions)
	}
	return out
}

// FallbackQuestions exposes the generic suggestions for testing
func FallbackQuestions() []string {
	return fallbackQuestions
}
