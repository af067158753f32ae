package server

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/synapserag/synapse/internal/adapter/utils"
	"github.com/synapserag/synapse/internal/config"
	"github.com/synapserag/synapse/internal/handlers"
	"github.com/synapserag/synapse/internal/middleware"
	"github.com/synapserag/synapse/pkg/logger_i"
)

var (
	server  *http.Server
	_logger *logger_i.Logger
)

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	CloseServices    context.CancelFunc
}

func CreateServer(listenAddr string) {
	_logger = logger_i.NewLogger("Server")

	r := utils.GetRouter()

	r.Router.Get("/", middleware.Wrap(handlers.RootHandler))
	r.Router.Route("/api", func(api chi.Router) {
		api.Post("/upload", middleware.Wrap(handlers.UploadHandler))
		api.Post("/chat", middleware.Wrap(handlers.ChatHandler))
		api.Get("/documents", middleware.Wrap(handlers.DocumentsHandler))
		api.Delete("/documents/{doc_id}", middleware.Wrap(handlers.DeleteDocumentHandler))
		api.Get("/health", middleware.Wrap(handlers.HealthHandler))
		api.Get("/status", middleware.Wrap(handlers.StatusHandler))
		// browsers preflight the credentialed POSTs
		api.Options("/*", middleware.Wrap(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
	})

	server = &http.Server{
		Addr:         listenAddr,
		Handler:      r.Router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	_logger.Info("Server is listening at", "address", listenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("Server crashed", "error :", err.Error(), "addr", listenAddr)
	}
}

func ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	println("\nServer is shutting down", state)

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		server.SetKeepAlivesEnabled(false)

		if err := server.Shutdown(ctx); err != nil {
			_logger.Error("Could not shutdown gracefully: %s", err)
		}

		shutdownParams.CloseServices()
		close(shutdownParams.StopExecution)
		close(done)
	}()

	select {
	case <-done:
		_logger.Info("Gracefully is shutting down")
	case <-ctx.Done():
		_logger.Info("Force Shut down")
		os.Exit(1)
	}
}
