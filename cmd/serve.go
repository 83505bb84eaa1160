package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kuro68k/kibom/internal/config"
	"github.com/kuro68k/kibom/internal/kicad"
	"github.com/kuro68k/kibom/internal/lookup"
	"github.com/kuro68k/kibom/internal/metrics"
	"github.com/kuro68k/kibom/internal/report"
	"github.com/kuro68k/kibom/internal/store"
)

// maxUploadBytes caps the size of a posted KiCad export.
const maxUploadBytes = 16 << 20

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the BOM HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if d, _ := cmd.Flags().GetString("tables"); d != "" {
			cfg.Tables.Dir = d
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		tablesDir := cfg.Tables.Dir
		if tablesDir == "" {
			tablesDir = "."
		}
		env, err := initEnv(ctx, cfg, tablesDir)
		if err != nil {
			return err
		}
		defer env.Close()

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           buildRouter(env, cfg.Server),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				zap.L().Warn("server shutdown", zap.Error(err))
			}
		}()

		zap.L().Info("starting server", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

var contentTypes = map[string]string{
	"tsv":  "text/tab-separated-values; charset=utf-8",
	"md":   "text/markdown; charset=utf-8",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"pdf":  "application/pdf",
	"json": "application/json",
	"txt":  "text/plain; charset=utf-8",
}

// buildRouter wires the HTTP API. env.Store may be nil, in which case the
// history routes answer 404.
func buildRouter(env *bomEnv, sc config.ServerConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: sc.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"X-BOM-ID", "X-BOM-Warnings"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.With(rateLimit(sc.RateLimit, sc.RateBurst)).Post("/bom", handleGenerate(env))
		r.Get("/defaults", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, env.Tables.Defaults.All())
		})
		r.Get("/defaults/{designator}", handleDefault(env.Tables.Defaults))
		r.Get("/boms", handleListBOMs(env.Store))
		r.Get("/boms/{id}", handleGetBOM(env.Store))
		r.Delete("/boms/{id}", handleDeleteBOM(env.Store))
	})

	return r
}

// rateLimit rejects requests beyond perSecond with 429. A non-positive
// perSecond disables it.
func rateLimit(perSecond float64, burst int) func(http.Handler) http.Handler {
	if perSecond <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	limiter := rate.NewLimiter(rate.Limit(perSecond), burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func handleGenerate(env *bomEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format := r.URL.Query().Get("format")
		if format == "" {
			format = "json"
		}
		writer, err := report.ForFormat(format)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		start := time.Now()
		body := http.MaxBytesReader(w, r.Body, maxUploadBytes)
		doc, warns, err := env.buildDocument(r.Context(), body)
		if err != nil {
			metrics.RecordGenerate(writer.Ext(), "error", 0, 0, time.Since(start))
			status := http.StatusBadRequest
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				status = http.StatusRequestEntityTooLarge
			} else if errors.Is(err, kicad.ErrNoComponents) {
				status = http.StatusUnprocessableEntity
			}
			zap.L().Warn("generate request failed", zap.Error(err))
			writeError(w, status, err.Error())
			return
		}
		logWarnings(warns)

		var buf bytes.Buffer
		if err := writer.Write(&buf, doc); err != nil {
			zap.L().Error("render bom", zap.String("format", format), zap.Error(err))
			metrics.RecordGenerate(writer.Ext(), "error", 0, len(warns), time.Since(start))
			writeError(w, http.StatusInternalServerError, "render failed")
			return
		}
		metrics.RecordGenerate(writer.Ext(), "ok", docParts(doc), len(warns), time.Since(start))

		if env.Store != nil {
			rec, err := env.Store.SaveBOM(r.Context(), doc)
			if err != nil {
				zap.L().Error("archive bom", zap.Error(err))
			} else {
				w.Header().Set("X-BOM-ID", rec.ID)
			}
		}

		w.Header().Set("Content-Type", contentTypes[writer.Ext()])
		w.Header().Set("X-BOM-Warnings", strconv.Itoa(len(warns)))
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes()) //nolint:errcheck
	}
}

func handleDefault(defaults *lookup.Defaults) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		designator := chi.URLParam(r, "designator")
		def, ok := defaults.Lookup(designator)
		if !ok {
			writeError(w, http.StatusNotFound, "no default for designator "+designator)
			return
		}
		writeJSON(w, http.StatusOK, def)
	}
}

func handleListBOMs(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if st == nil {
			writeError(w, http.StatusNotFound, "history is disabled")
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		recs, err := st.ListBOMs(r.Context(), store.BOMFilter{
			Source: r.URL.Query().Get("source"),
			Limit:  limit,
		})
		if err != nil {
			zap.L().Error("list boms", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "list failed")
			return
		}
		if recs == nil {
			recs = []store.BOMRecord{}
		}
		writeJSON(w, http.StatusOK, recs)
	}
}

func handleGetBOM(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if st == nil {
			writeError(w, http.StatusNotFound, "history is disabled")
			return
		}
		rec, err := st.GetBOM(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "bom not found")
			return
		}
		if err != nil {
			zap.L().Error("get bom", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "lookup failed")
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func handleDeleteBOM(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if st == nil {
			writeError(w, http.StatusNotFound, "history is disabled")
			return
		}
		id := chi.URLParam(r, "id")
		err := st.DeleteBOM(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "bom not found")
			return
		}
		if err != nil {
			zap.L().Error("delete bom", zap.String("id", id), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "delete failed")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func docParts(doc report.Document) int {
	n := 0
	for _, g := range doc.Groups {
		n += g.Parts()
	}
	return n
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
	serveCmd.Flags().String("tables", "", "lookup tables directory (default from config, else .)")
	rootCmd.AddCommand(serveCmd)
}
