package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mymedia/leadgen-cli/internal/model"
	"github.com/mymedia/leadgen-cli/internal/store"
)

var servePort int

// enrichFunc runs enrichment for one webhook-submitted business.
type enrichFunc func(ctx context.Context, jobID string, business model.Business)

// newRouter builds the webhook API. enrich is called on its own
// goroutine per accepted job.
func newRouter(enrich enrichFunc) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"}) //nolint:errcheck
	})

	r.Post("/webhook/enrich", func(w http.ResponseWriter, req *http.Request) {
		var payload struct {
			Name    string `json:"name"`
			Website string `json:"website"`
			City    string `json:"city"`
			Phone   string `json:"phone"`
		}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if payload.Website == "" {
			http.Error(w, `{"error":"website is required"}`, http.StatusBadRequest)
			return
		}

		jobID := uuid.NewString()
		business := model.Business{
			Name:    payload.Name,
			Website: payload.Website,
			City:    payload.City,
			Phone:   payload.Phone,
		}

		// The job outlives the request; it is bound to the server
		// lifetime, not the connection.
		go enrich(context.WithoutCancel(req.Context()), jobID, business)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{ //nolint:errcheck
			"status": "accepted",
			"job_id": jobID,
		})
	})

	return r
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook server for enrichment requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		cache := store.NewCache(st)

		orch := newOrchestrator(cache)
		enrich := func(jobCtx context.Context, jobID string, business model.Business) {
			results, err := orch.Run(jobCtx, []model.Business{business})
			if err != nil {
				zap.L().Error("webhook enrichment failed",
					zap.String("job_id", jobID),
					zap.String("business", business.Name),
					zap.Error(err),
				)
				return
			}
			zap.L().Info("webhook enrichment complete",
				zap.String("job_id", jobID),
				zap.String("business", business.Name),
				zap.Int("contacts", len(results[0].ContactPersons)),
			)
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(enrich),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(context.Background()) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
