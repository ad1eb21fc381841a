package main

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/josinaldojr/legal-rag/internal/config"
	"github.com/josinaldojr/legal-rag/internal/logging"
	"github.com/josinaldojr/legal-rag/internal/rag"
)

func TestPrintAnswer(t *testing.T) {
	var buf bytes.Buffer
	resp := rag.AssembleResponse([]rag.Passage{
		{Text: "The accused may apply for anticipatory bail.", Source: "Case A", ChunkIndex: 2},
	}, "Anticipatory bail is available (Source: Case A).")

	printAnswer(&buf, "Can I get bail?", resp)

	out := buf.String()
	gt.String(t, out).Contains("Anticipatory bail is available (Source: Case A).\n")
	gt.String(t, out).Contains("[1] Case A (chunk 2)")
	gt.String(t, out).Contains("The accused may apply for anticipatory bail.")
	gt.String(t, out).Contains("Related questions:\n  - ")
}

func TestAskRequiresQuestion(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	var buf bytes.Buffer
	err := newCommand(&buf).Run(t.Context(), []string{"legal-rag-ask"})
	gt.Value(t, err).NotNil()
	gt.Value(t, buf.Len()).Equal(0)
}

func TestRunLogsConfigErrors(t *testing.T) {
	t.Setenv("EMBEDDING_PROVIDER", "bogus")

	prev := logging.Default()
	t.Cleanup(func() { logging.SetDefault(prev) })
	var logs bytes.Buffer
	logging.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))

	var out bytes.Buffer
	err := run(t.Context(), []string{"legal-rag-ask", "what is bail"}, &out)
	gt.Error(t, err).Is(config.ErrInvalidConfig)
	gt.String(t, logs.String()).Contains("unknown embedding provider")
	gt.Value(t, out.Len()).Equal(0)
}
