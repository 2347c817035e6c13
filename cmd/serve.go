package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/giantswarm/actionmock/internal/config"
	"github.com/giantswarm/actionmock/internal/watch"
	"github.com/giantswarm/actionmock/pkg/logging"
	"github.com/giantswarm/actionmock/pkg/mock/gate"
	"github.com/giantswarm/actionmock/pkg/mock/githubmock"
)

type serveOptions struct {
	mocksFile string
	host      string
	port      int
	watch     bool
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the github mock rules as a local HTTP API",
		Long: `Serve answers HTTP requests from the github rules of a mocks file, the same
way the github interceptor answers them inside a run. Point any GitHub client
at the printed endpoint. Every request is logged to stdout.

With --watch the rules are reloaded whenever the mocks file changes.`,
		Example: `  actionmock serve --mocks mocks.yaml --port 8099 --watch`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serveMocks(ctx, cmd, opts, nil)
		},
	}

	cmd.Flags().StringVarP(&opts.mocksFile, "mocks", "m", "", "Mocks file (YAML or JSON)")
	cmd.Flags().StringVar(&opts.host, "host", "", "Host to bind to (default from config.yaml)")
	cmd.Flags().IntVar(&opts.port, "port", -1, "Port to listen on, 0 picks a free one (default from config.yaml)")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Reload rules when the mocks file changes")
	_ = cmd.MarkFlagRequired("mocks")

	return cmd
}

// serveMocks runs until ctx is done. ready, when set, receives the endpoint
// once the server listens.
func serveMocks(ctx context.Context, cmd *cobra.Command, opts *serveOptions, ready chan<- string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}
	host, port := cfg.Serve.Host, cfg.Serve.Port
	if opts.host != "" {
		host = opts.host
	}
	if opts.port >= 0 {
		port = opts.port
	}

	rules, err := loadGitHubRules(opts.mocksFile)
	if err != nil {
		return err
	}

	out := &lockedWriter{w: cmd.OutOrStdout()}
	interceptor := githubmock.New(nil)
	interceptor.SetLog(func(line string) { fmt.Fprintln(out, line) })
	interceptor.Replace(rules...)

	server := gate.NewServer(gate.Handler(interceptor), host)
	if _, err := server.Listen(port); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(stopCtx); err != nil {
			logging.Warn("Serve", "Failed to stop mock API server: %v", err)
		}
	}()

	fmt.Fprintf(out, "Serving %d github rules on %s\n", len(rules), server.Endpoint())
	if ready != nil {
		ready <- server.Endpoint()
	}

	if !opts.watch {
		<-ctx.Done()
		return nil
	}

	watcher := watch.NewFileWatcher(opts.mocksFile, cfg.Watch.Debounce)
	changes := make(chan struct{}, 1)
	if err := watcher.Start(ctx, changes); err != nil {
		return fmt.Errorf("failed to watch %s: %w", opts.mocksFile, err)
	}
	defer watcher.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			rules, err := loadGitHubRules(opts.mocksFile)
			if err != nil {
				logging.Warn("Serve", "Keeping previous rules, reload failed: %v", err)
				continue
			}
			interceptor.Replace(rules...)
			fmt.Fprintf(out, "Reloaded %d github rules\n", len(rules))
		}
	}
}

func loadGitHubRules(path string) ([]githubmock.Rule, error) {
	f, err := config.LoadMocksFile(path)
	if err != nil {
		return nil, err
	}
	return f.GitHubRules()
}

// lockedWriter serializes writes from concurrent request handlers.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
