package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"SalesCast/pkg/http/middleware"
	applogger "SalesCast/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ServerOption func(*Server)

// Server runs the echo API plus /metrics. Middleware order is
// recover, metrics, request log, CORS.
type Server struct {
	echo *echo.Echo
	addr string

	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration
	slowThreshold   time.Duration
	corsOrigins     []string
	l               *applogger.Logger
}

func NewServer(handler Handler, opts ...ServerOption) *Server {
	s := &Server{
		addr:            ":5001",
		readTimeout:     10 * time.Second,
		writeTimeout:    30 * time.Second,
		shutdownTimeout: 10 * time.Second,
		slowThreshold:   2 * time.Second,
		corsOrigins:     []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = s.readTimeout
	e.Server.WriteTimeout = s.writeTimeout

	e.Use(
		middleware.Recover(s.l),
		middleware.Metrics(s.l, s.slowThreshold),
		middleware.RequestLogging(s.l),
	)
	if len(s.corsOrigins) > 0 {
		e.Use(middleware.CORS(s.corsOrigins))
	}

	if handler != nil {
		handler.RegisterRoutes(e)
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	s.echo = e
	return s
}

// Start listens in the background. The channel yields a listener failure
// and is closed once the server stops.
func (s *Server) Start() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		s.log("http server listening", applogger.String("addr", s.addr))
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	return errCh
}

func (s *Server) Stop(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	s.log("http server stopped")
	return nil
}

func (s *Server) ShutdownTimeout() time.Duration { return s.shutdownTimeout }

func (s *Server) Addr() string { return s.addr }

// Echo exposes the router for tests.
func (s *Server) Echo() *echo.Echo { return s.echo }

func (s *Server) log(msg string, fields ...applogger.Field) {
	if s.l != nil {
		s.l.Info(msg, fields...)
	}
}

// WithAddr sets the listen address; an empty host binds every interface.
func WithAddr(host string, port int) ServerOption {
	return func(s *Server) { s.addr = net.JoinHostPort(host, strconv.Itoa(port)) }
}

// WithTimeouts ignores zero values.
func WithTimeouts(read, write, shutdown time.Duration) ServerOption {
	return func(s *Server) {
		if read > 0 {
			s.readTimeout = read
		}
		if write > 0 {
			s.writeTimeout = write
		}
		if shutdown > 0 {
			s.shutdownTimeout = shutdown
		}
	}
}

// WithCORS sets the allowed browser origins. An empty list disables CORS.
func WithCORS(origins []string) ServerOption {
	return func(s *Server) { s.corsOrigins = origins }
}

func WithLogger(l *applogger.Logger) ServerOption {
	return func(s *Server) { s.l = l }
}

// WithSlowThreshold sets the latency logged as slow; zero disables it.
func WithSlowThreshold(d time.Duration) ServerOption {
	return func(s *Server) { s.slowThreshold = d }
}
