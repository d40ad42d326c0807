package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/salpyeo/dream/pkg/cli"
	"github.com/salpyeo/dream/pkg/docstore"
	"github.com/salpyeo/dream/pkg/funcserver"
	"github.com/salpyeo/dream/pkg/media"
	"github.com/salpyeo/dream/pkg/planner"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the function app",
	Long: `Run the function app that stores chat histories and extracts schedules.

The server is configured by a YAML or JSON file given with -f:

  addr: ":7071"
  server:
    master_key: SECRET
    timezone: Asia/Seoul
  store:
    kind: local          # local, s3, badger or memory
    dir: /var/lib/dream
  planner:
    provider: openai     # openai, azure or gemini
    api_key: sk-...
    model: gpt-4o
  media:                 # optional, enables create_image and set_message
    provider: openai     # openai or azure
    api_key: sk-...

Without a store dir, documents are kept in ~/.dream/dream/data.

Examples:
  dream serve -f serve.yaml
  dream serve -f serve.yaml --addr 127.0.0.1:8080`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default :7071)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if inputFile == "" {
		return fmt.Errorf("server config is required, use -f")
	}
	cfg, err := cli.LoadServerConfig(inputFile)
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Store.Dir == "" && cfg.Store.Kind != docstore.KindS3 && cfg.Store.Kind != docstore.KindMemory {
		paths, err := cli.NewPaths(appName)
		if err != nil {
			return err
		}
		if cfg.Store.Dir, err = cli.EnsureDir(paths.DataDir()); err != nil {
			return err
		}
	}

	store, closer, err := docstore.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var p planner.Planner
	if cfg.Planner != nil {
		if p, err = planner.Open(ctx, *cfg.Planner); err != nil {
			return err
		}
	} else {
		slog.Warn("no planner configured, schedule extraction is disabled")
	}

	var opts []funcserver.Option
	if cfg.Media != nil {
		m, err := media.Open(*cfg.Media)
		if err != nil {
			return err
		}
		opts = append(opts, funcserver.WithImageGenerator(m), funcserver.WithSpeechSynthesizer(m))
	} else {
		slog.Warn("no media configured, create_image and set_message are disabled")
	}

	handler, err := funcserver.New(cfg.Server, store, p, opts...)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	cli.PrintSuccess("Function app listening on %s", cfg.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	slog.Info("shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
