package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"github.com/josinaldojr/legal-rag/internal/config"
	apphttp "github.com/josinaldojr/legal-rag/internal/http"
	"github.com/josinaldojr/legal-rag/internal/logging"
)

const shutdownTimeout = 15 * time.Second

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if err := newCommand().Run(ctx, args); err != nil {
		logging.Default().Error("failed to run api", "error", err)
		return err
	}
	return nil
}

func newCommand() *cli.Command {
	var cfg config.Config

	return &cli.Command{
		Name:  "legal-rag-api",
		Usage: "Legal question answering over indexed judgments",
		Flags: cfg.Flags(),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if err := cfg.Validate(); err != nil {
				return ctx, err
			}
			level, _ := cfg.Level()
			logging.SetDefault(logging.New(os.Stderr, logging.Format(cfg.LogFormat), level))
			return ctx, nil
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return serve(ctx, &cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := logging.Default()
	logger.Info("starting legal-rag api", cfg.LogAttrs()...)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
			return goerr.Wrap(err, "failed to init sentry")
		}
		defer sentry.Flush(2 * time.Second)
	}

	comp, err := cfg.Configure(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to configure pipeline")
	}
	defer comp.Close()

	if cfg.EmbedWarmup {
		if err := comp.Embeddings.Warmup(ctx); err != nil {
			return goerr.Wrap(err, "embedding model warmup failed")
		}
	}

	h := apphttp.NewHandler(comp.Service, comp.Embeddings, cfg.RetrievalTimeout+cfg.GenerationTimeout+30*time.Second)
	srv := &http.Server{
		Handler:           apphttp.NewRouter(h, cfg.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return goerr.Wrap(err, "failed to listen", goerr.V("addr", cfg.Addr))
	}
	if cfg.MaxConns > 0 {
		ln = netutil.LimitListener(ln, cfg.MaxConns)
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		logger.Info("API listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return goerr.Wrap(err, "http server stopped")
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
