package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/josinaldojr/legal-rag/internal/config"
	"github.com/josinaldojr/legal-rag/internal/logging"
	"github.com/josinaldojr/legal-rag/internal/rag"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args, os.Stdout); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if err := newCommand(out).Run(ctx, args); err != nil {
		logging.Default().Error("ask failed", "error", err)
		return err
	}
	return nil
}

func newCommand(out io.Writer) *cli.Command {
	var cfg config.Config
	var asJSON bool

	flags := append(cfg.Flags(), &cli.BoolFlag{
		Name:        "json",
		Usage:       "print the raw query response as JSON",
		Destination: &asJSON,
	})

	return &cli.Command{
		Name:      "legal-rag-ask",
		Usage:     "Ask one legal question from the terminal",
		ArgsUsage: "QUESTION",
		Flags:     flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if err := cfg.Validate(); err != nil {
				return ctx, err
			}
			level, _ := cfg.Level()
			logging.SetDefault(logging.New(os.Stderr, logging.Format(cfg.LogFormat), level))
			return ctx, nil
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if question == "" {
				return goerr.New("a question is required")
			}

			comp, err := cfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure pipeline")
			}
			defer comp.Close()

			resp, err := comp.Service.Query(ctx, rag.QueryRequest{Prompt: question})
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}
			printAnswer(out, question, resp)
			return nil
		},
	}
}

func printAnswer(out io.Writer, question string, resp *rag.QueryResponse) {
	fmt.Fprintf(out, "%s\n", resp.Answer)

	if len(resp.Cases) > 0 {
		fmt.Fprintf(out, "\nSources:\n")
		for i, c := range resp.Cases {
			fmt.Fprintf(out, "  [%d] %s (chunk %d)\n      %s\n", i+1, c.Source, c.ChunkIndex, c.Summary)
		}
	}

	fmt.Fprintf(out, "\nRelated questions:\n")
	for _, q := range rag.SuggestRelatedQuestions(question, resp.Answer) {
		fmt.Fprintf(out, "  - %s\n", q)
	}
}
