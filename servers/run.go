package servers

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// RunWithGracefulShutdown serves until ctx is canceled (e.g. by the core shutdown signal listener)
// or the server fails.
// - cleanup: optional cleanup function to release resources, run after the server stopped
// - timeout: max duration for shutdown
func RunWithGracefulShutdown(ctx context.Context, server *http.Server, logger *zap.SugaredLogger, cleanup func(), timeout time.Duration) error {
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return err
	}
	return Serve(ctx, server, ln, logger, cleanup, timeout)
}

// Serve is RunWithGracefulShutdown on an existing listener
func Serve(ctx context.Context, server *http.Server, ln net.Listener, logger *zap.SugaredLogger, cleanup func(), timeout time.Duration) error {
	// Channel to capture server errors
	serverErrChan := make(chan error, 1)

	go func() {
		logger.Infow("listening", "addr", ln.Addr().String())
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		} else {
			serverErrChan <- nil
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Infow("shutting down server", "cause", context.Cause(ctx))
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		// Stop accepting new requests immediately. Requests already being processed get time to finish
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Errorw("server shutdown failed", "error", err)
		}
		serveErr = <-serverErrChan
	case serveErr = <-serverErrChan:
	}

	if cleanup != nil {
		cleanup()
	}
	if serveErr != nil {
		return serveErr
	}
	logger.Info("server shutdown complete")
	return nil
}
