package rag

// AssembleResponse combines retrieved passages and the generated answer.
// sources[i] and cases[i] both describe passages[i].
func AssembleResponse(passages []Passage, answer string) *QueryResponse {
	if len(passages) == 0 {
		return &QueryResponse{Answer: answer}
	}

	sources := make([]Metadata, 0, len(passages))
	for _, p := range passages {
		sources = append(sources, metadataOf(p))
	}

	return &QueryResponse{
		Answer:  answer,
		Sources: sources,
		Cases:   BuildCases(passages),
	}
}

// NewAnswerResult records which passages an answer was generated from.
func NewAnswerResult(text string, passages []Passage) AnswerResult {
	cited := make([]Passage, len(passages))
	copy(cited, passages)
	return AnswerResult{Text: text, CitedSources: cited}
}
