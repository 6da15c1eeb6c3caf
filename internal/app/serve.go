package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"wallet-credit-score/internal/metrics"
	"wallet-credit-score/internal/server"
)

// Serve runs the HTTP scoring endpoint until SIGINT/SIGTERM or ctx ends.
func (a *App) Serve(ctx context.Context, opts ServeOptions) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	addr := firstNonEmpty(opts.Addr, a.Config.Server.Addr)
	recorder := metrics.NewRecorder()

	srv := server.New(server.Options{
		Addr:         addr,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		MaxBodyBytes: a.Config.Server.MaxBodyBytes,
	}, a.newPipeline(recorder), recorder, a.Logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.Logger.Info().Msg("shutting down http server")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	if err := <-errCh; err != nil {
		return fmt.Errorf("http server: %w", err)
	}

	a.Logger.Info().Msg("http server stopped")
	return nil
}
