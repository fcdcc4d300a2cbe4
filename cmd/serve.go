package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/atelier-labs/fitroom/internal/config"
	"github.com/atelier-labs/fitroom/internal/gemini"
	"github.com/atelier-labs/fitroom/internal/handlers"
	"github.com/atelier-labs/fitroom/internal/session"
	"github.com/atelier-labs/fitroom/internal/store"
	"github.com/atelier-labs/fitroom/internal/viewer"
)

func newServeCmd(configPath *string) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server for the try-on interface",
		Long: `Starts the Fitroom web interface on the specified port.

The interface lets you upload a model photo and a garment photo, generate a
try-on composite with Gemini, and browse the result history. Session state
persists across restarts in a local SQLite database.`,
		Example: `  # Start server on default port 8888
  fitroom serve

  # Start server on custom port
  fitroom serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}

			st, err := store.Open(cfg.DataPath)
			if err != nil {
				return err
			}
			defer st.Close()

			controller := session.New(st, gemini.New(cfg.GeminiModel))
			handler := handlers.New(controller, viewer.New())

			// Set up routes
			mux := http.NewServeMux()
			mux.HandleFunc("/api/session", handler.HandleSession)
			mux.HandleFunc("/api/slots/", handler.HandleSlot)
			mux.HandleFunc("/api/prompt", handler.HandlePrompt)
			mux.HandleFunc("/api/generate", handler.HandleGenerate)
			mux.HandleFunc("/api/history", handler.HandleHistory)
			mux.HandleFunc("/api/history/", handler.HandleHistoryItem)
			mux.HandleFunc("/api/result/download", handler.HandleDownload)
			mux.HandleFunc("/api/viewer", handler.HandleViewer)
			mux.HandleFunc("/api/viewer/", handler.HandleViewer)
			mux.HandleFunc("/", handler.HandleStatic)
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := ":" + cfg.Port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Fitroom interface available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides config)")

	return cmd
}
