package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// RefusalAnswer is the sentence the model is told to emit when the context
// does not contain the answer.
const RefusalAnswer = "I cannot find the answer in the available documents."

// answerTemplate must only ever vary by the context and question it is
// filled with, so that evaluation runs are reproducible.
const answerTemplate = `You are an expert Indian Legal Assistant.
Use the following pieces of retrieved context to answer the user's question.

Rules:
1. Answer solely based on the Context provided below.
2. Cite the Source (Source: ...) for every claim you make.
3. If the answer is not in the context, say "%s"

CONTEXT:
%s

USER QUESTION:
%s
`

// BuildPrompt fills the fixed instruction template.
func BuildPrompt(query, contextText string) string {
	return fmt.Sprintf(answerTemplate, RefusalAnswer, contextText, query)
}

// AnswerGenerator produces grounded answers through a Generator.
type AnswerGenerator struct {
	generator Generator
}

func NewAnswerGenerator(generator Generator) *AnswerGenerator {
	return &AnswerGenerator{generator: generator}
}

// Generate asks the model to answer query from contextText. Failures are not
// retried; an empty completion counts as a failure.
func (g *AnswerGenerator) Generate(ctx context.Context, query, contextText string) (string, error) {
	if g.generator == nil {
		return "", goerr.Wrap(ErrGenerationUnavailable, "generator is not configured")
	}

	text, err := g.generator.Generate(ctx, BuildPrompt(query, contextText))
	if err != nil {
		return "", Mark(ErrGenerationUnavailable, err, "failed to generate answer", goerr.V(QueryLengthKey, len(query)))
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", goerr.Wrap(ErrGenerationUnavailable, "model returned empty text", goerr.V(QueryLengthKey, len(query)))
	}
	return text, nil
}
