package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/princebabou/wishCraft/internal/app"
	"github.com/princebabou/wishCraft/internal/handlers"
	"github.com/princebabou/wishCraft/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

type serveOptions struct {
	port    string
	baseURL string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long: `Serve the card API, the creation page and the card view.

The schema is created on startup. The server stops gracefully on SIGINT
or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.port, "port", "p", "", "listen port, default $PORT")
	cmd.Flags().StringVar(&opts.baseURL, "base-url", "", "public origin used in share links, default $BASE_URL")

	return cmd
}

func runServe(ctx context.Context, rootOpts *RootOptions, opts *serveOptions, cmd *cobra.Command) error {
	cfg := rootOpts.Config
	if opts.port != "" {
		cfg.Port = opts.port
	}
	if opts.baseURL != "" {
		cfg.BaseURL = opts.baseURL
	}

	store, err := rootOpts.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	a := &app.App{
		Cards:   store,
		Metrics: metrics.New(),
		BaseURL: cfg.BaseURL,
	}

	srv := &http.Server{
		Handler:      handlers.NewRouter(a),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	ln, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return fmt.Errorf("listen on port %s: %w", cfg.Port, err)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", ln.Addr().String()).Str("driver", cfg.DBDriver).Msg("server starting")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}
	log.Info().Msg("shutdown signal received")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
		return err
	}
	log.Info().Msg("server shutdown complete")
	return nil
}
