package metrics

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/js-lib-com/wood-sub003/log"
	"github.com/js-lib-com/wood-sub003/pkg"
)

// ErrServe is returned when the metrics listener fails.
var ErrServe = pkg.NewError("serve metrics")

const shutdownTimeout = 5 * time.Second

// Mux returns a handler serving /metrics and /health. Binaries built with the
// pprof tag also answer /debug/pprof/.
func Mux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/debug/pprof/", http.DefaultServeMux)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok\n")
	})

	return mux
}

// Serve listens on addr and serves [Mux] until ctx is done.
func Serve(ctx context.Context, addr string, logger log.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return ErrServe.Wrap(err).With(slog.String("addr", addr))
	}

	return serve(ctx, ln, logger)
}

func serve(ctx context.Context, ln net.Listener, logger log.Logger) error {
	srv := &http.Server{
		Handler:           Mux(),
		ReadHeaderTimeout: shutdownTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	done := make(chan struct{})

	go func() {
		defer close(done)

		<-ctx.Done()

		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(sctx)
	}()

	logger.InfoContext(ctx, "metrics", slog.String("addr", ln.Addr().String()))

	err := srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		<-done

		return nil
	}

	return ErrServe.Wrap(err).With(slog.String("addr", ln.Addr().String()))
}
