package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fuelsignal/leadgen-cli/internal/config"
	"github.com/fuelsignal/leadgen-cli/internal/dossier"
	"github.com/fuelsignal/leadgen-cli/internal/model"
	"github.com/fuelsignal/leadgen-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the lead API server",
	Long:  "Serves the REST API used by the field app: lead listing, outcome capture, and notification polling.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env, cfg.Server),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newRouter(env *pipelineEnv, serverCfg config.ServerConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: serverCfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/leads/process", func(w http.ResponseWriter, req *http.Request) {
		var item model.RawItem
		if err := json.NewDecoder(req.Body).Decode(&item); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		lead, err := env.Pipeline.ProcessItem(req.Context(), item)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, eris.ToString(err, false))
			return
		}
		writeJSON(w, http.StatusCreated, lead)
	})

	r.Get("/leads", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		filter := store.LeadFilter{
			Status:   model.LeadStatus(q.Get("status")),
			Priority: model.Priority(q.Get("priority")),
		}
		if v := q.Get("min_score"); v != "" {
			filter.MinScore, _ = strconv.ParseFloat(v, 64)
		}
		if v := q.Get("limit"); v != "" {
			filter.Limit, _ = strconv.Atoi(v)
		}
		leads, err := env.Store.ListLeads(req.Context(), filter)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "list leads failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"leads": leads, "count": len(leads)})
	})

	r.Get("/leads/{id}", func(w http.ResponseWriter, req *http.Request) {
		lead, err := env.Store.GetLead(req.Context(), chi.URLParam(req, "id"))
		if err != nil {
			if eris.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "lead not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "get lead failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"lead":         lead,
			"battlecards":  dossier.Cards(lead.Products),
			"pitch_script": dossier.PitchScript(lead),
		})
	})

	r.Post("/leads/{id}/outcome", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Status    string `json:"status"`
			OfficerID *int64 `json:"officer_id"`
			Notes     string `json:"notes"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		event, err := env.Pipeline.RecordOutcome(req.Context(), chi.URLParam(req, "id"), model.LeadStatus(body.Status), body.OfficerID, body.Notes)
		if err != nil {
			if eris.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "lead not found")
				return
			}
			writeError(w, http.StatusUnprocessableEntity, eris.ToString(err, false))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": body.Status, "feedback": event})
	})

	r.Post("/retrain", func(w http.ResponseWriter, req *http.Request) {
		result, err := env.Pipeline.Retrain(req.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "retrain failed")
			return
		}
		writeJSON(w, http.StatusOK, result)
	})

	r.Get("/notifications", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		var officerID *int64
		if v := q.Get("officer_id"); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid officer_id")
				return
			}
			officerID = &id
		}
		limit := 50
		if v := q.Get("limit"); v != "" {
			limit, _ = strconv.Atoi(v)
		}
		notifications, err := env.Store.ListNotifications(req.Context(), officerID, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "list notifications failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"notifications": notifications, "count": len(notifications)})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
