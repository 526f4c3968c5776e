package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teleperson/demo-generator/internal/build"
	"github.com/teleperson/demo-generator/internal/handler"
)

func newServeCmd() *cobra.Command {
	var promptFile string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(promptFile)
			if err != nil {
				return err
			}
			defer a.close()

			router := handler.NewRouter(handler.Deps{
				Generator: a.generator,
				Relay:     a.relay,
				Pages:     a.pages,
				Logger:    a.logger.Named("http"),
			})
			srv := &http.Server{
				Addr:              a.cfg.HTTP.Addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("listening",
					zap.String("addr", a.cfg.HTTP.Addr),
					zap.String("version", build.Version),
					zap.String("storage", a.cfg.Storage.Driver),
				)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				a.logger.Info("shutting down")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&promptFile, "research-prompt", "", "YAML file replacing the built-in research prompt")
	return cmd
}
