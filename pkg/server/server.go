package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	handlers "github.com/de-tools/route-trends/pkg/handlers/page"
	"github.com/de-tools/route-trends/pkg/services/session"

	routetrendsmiddleware "github.com/de-tools/route-trends/pkg/server/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const (
	defaultShutdownTimeout = 10 * time.Second
	defaultIdleTimeout     = 30 * time.Minute
)

type WebAPI struct {
	router   http.Handler
	logger   *zerolog.Logger
	server   *http.Server
	sessions *session.Registry
	timeout  time.Duration

	idleTimeout time.Duration
	evictEvery  time.Duration
	evictCtx    context.Context
	stopEvict   context.CancelFunc
}

type Dependencies struct {
	Sessions *session.Registry
	Logger   zerolog.Logger
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	// SessionIdleTimeout is how long a session may go unused before it is
	// closed.
	SessionIdleTimeout time.Duration
	Dependencies       Dependencies
}

func ConfigureRouter(config Config) http.Handler {
	logger := config.Dependencies.Logger
	pageHandler := handlers.NewHandler(config.Dependencies.Sessions)

	router := chi.NewRouter()

	router.Use(routetrendsmiddleware.Logger(&logger))
	router.Use(middleware.Recoverer)

	router.Get("/", pageHandler.Page)
	router.Post("/", pageHandler.SubmitForm)
	router.Get("/chart.svg", pageHandler.Chart)
	router.Get("/healthz", pageHandler.Health)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/state", pageHandler.State)
		r.Put("/fields/{field}", pageHandler.UpdateField)
		r.Post("/analyze", pageHandler.Analyze)
	})

	return router
}

func NewWebAPI(config Config) *WebAPI {
	router := ConfigureRouter(config)
	logger := config.Dependencies.Logger

	timeout := config.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	idle := config.SessionIdleTimeout
	if idle <= 0 {
		idle = defaultIdleTimeout
	}

	evictCtx, stopEvict := context.WithCancel(context.Background())

	return &WebAPI{
		router:      router,
		logger:      &logger,
		sessions:    config.Dependencies.Sessions,
		timeout:     timeout,
		idleTimeout: idle,
		evictEvery:  max(idle/2, time.Millisecond),
		evictCtx:    evictCtx,
		stopEvict:   stopEvict,
		server: &http.Server{
			Addr:    config.Addr,
			Handler: router,
		},
	}
}

// Start serves until SIGINT/SIGTERM, then drains requests and closes every
// session.
func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	if w.sessions != nil {
		go w.sessions.Run(w.evictCtx, w.idleTimeout, w.evictEvery)
	}

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")
	}

	return w.Shutdown()
}

func (w *WebAPI) Shutdown() error {
	// Give outstanding requests a deadline for completion.
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	err := w.server.Shutdown(ctx)
	if err != nil {
		w.logger.Error().Err(err).Msg("graceful shutdown failed")
		err = w.server.Close()
	}

	w.stopEvict()
	if w.sessions != nil {
		w.sessions.Close()
	}
	return err
}
