package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/fwojciec/parley/fakebackend"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newFakeBackendCmd(a *app) *cobra.Command {
	var (
		addr  string
		token string
		delay time.Duration
	)
	cmd := &cobra.Command{
		Use:   "fake-backend",
		Short: "Serve a local backend that echoes messages",
		Long: `Serve a local backend that echoes messages back as a stream.

The routes are mounted under /api, so the default base URL talks to it
when it listens on the default address. The conversation is kept in
memory until the process exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			fb := fakebackend.New(
				fakebackend.WithToken(token),
				fakebackend.WithDelay(delay),
				fakebackend.WithLogger(a.logger),
			)
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("fake-backend: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s/api\n", ln.Addr())
			return serve(ctx, &http.Server{Handler: fb.Handler(), ReadHeaderTimeout: 10 * time.Second}, ln, a.logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:5000", "listen address")
	cmd.Flags().StringVar(&token, "require-token", "", "reject requests without this bearer token")
	cmd.Flags().DurationVar(&delay, "delay", 50*time.Millisecond, "pause between streamed chunks")
	return cmd
}

// serve runs srv on ln until ctx is done, then shuts it down.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, logger *zap.Logger) error {
	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("fake-backend: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("fake-backend: shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("fake-backend: %w", err)
	}
	return nil
}
