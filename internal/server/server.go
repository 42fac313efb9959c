package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler is an [http.Handler] that declares the path patterns it serves.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Mux routes GET requests for each of handler's routes to handler wrapped in middleware. The first middleware
// given is the outermost. Other methods on those paths get 405 from [http.ServeMux].
func Mux(handler Handler, middleware ...Middleware) http.Handler {
	var wrapped http.Handler = handler
	for i := len(middleware) - 1; i >= 0; i-- {
		wrapped = middleware[i](wrapped)
	}

	mux := http.NewServeMux()
	for _, route := range handler.Routes() {
		mux.Handle(http.MethodGet+" "+route, wrapped)
	}
	return mux
}

// RequestLogger logs every request at debug level with its status and duration.
func RequestLogger(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Debug("callback request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "elapsed", time.Since(started))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// CallbackServer is a short-lived local HTTP server that waits for one OAuth redirect.
type CallbackServer struct {
	srv      *http.Server
	listener net.Listener
}

// Listen binds addr and starts serving router in the background.
func Listen(addr string, router http.Handler) (*CallbackServer, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s := &CallbackServer{
		srv:      &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second},
		listener: listener,
	}
	go func() {
		if err := s.srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("callback server stopped", "error", err)
		}
	}()
	return s, nil
}

// Addr returns the bound address, useful when listening on port 0.
func (s *CallbackServer) Addr() string {
	return s.listener.Addr().String()
}

// Shutdown stops the server, waiting for in-flight requests until ctx ends.
func (s *CallbackServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
