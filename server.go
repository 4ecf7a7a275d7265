package autovhost

import (
	"context"
	"errors"
	"net"
	"net/http"

	"golang.org/x/sync/errgroup"
)

// Run listens on Config.Server.Addr, plus the metrics address when
// configured, and serves until ctx is done. It then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.config.Server.Addr)
	if err != nil {
		return err
	}

	var metricsLn net.Listener
	if a.config.Registry != nil && a.config.Server.MetricsAddr != "" {
		metricsLn, err = net.Listen("tcp", a.config.Server.MetricsAddr)
		if err != nil {
			ln.Close()
			return err
		}
	}
	return a.Serve(ctx, ln, metricsLn)
}

// Serve serves virtual hosts on ln and metrics on metricsLn, which may be
// nil, until ctx is done or a listener fails.
func (a *App) Serve(ctx context.Context, ln, metricsLn net.Listener) error {
	cfg := a.config.Server
	servers := []*http.Server{{
		Handler:           a,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}}
	listeners := []net.Listener{ln}

	if metricsLn != nil {
		mux := http.NewServeMux()
		mux.Handle(cfg.MetricsPath, a.MetricsHandler())
		servers = append(servers, &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		})
		listeners = append(listeners, metricsLn)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, srv := range servers {
		ln := listeners[i]
		g.Go(func() error {
			a.logger.Info("server starting", "address", ln.Addr().String())
			if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Error("shutdown error", "error", err)
				errs = append(errs, err)
			}
		}
		if len(errs) == 0 {
			a.logger.Info("server shutdown complete")
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}
