package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/vbonduro/boxoffice/internal/web"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := e.app
			svc := a.service(a.pipeline(a.cfg.RequireImage))
			server := web.NewServer(svc, a.blobs, a.cfg.CORSAllowedOrigins, a.logger)
			httpServer := server.HTTPServer(a.cfg.ListenAddr)

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("starting server", "addr", a.cfg.ListenAddr)
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
			}

			a.logger.Info("shutting down server")
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(ctx); err != nil {
				return err
			}
			server.Wait()
			if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
}
