package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	api "github.com/bioradar/implementation-scorecard/internal/api/http"
	"github.com/bioradar/implementation-scorecard/internal/catalog"
	"github.com/bioradar/implementation-scorecard/internal/config"
	"github.com/bioradar/implementation-scorecard/internal/db"
	"github.com/bioradar/implementation-scorecard/internal/logging"
	"github.com/bioradar/implementation-scorecard/internal/metrics"
	"github.com/bioradar/implementation-scorecard/internal/session"
	"github.com/bioradar/implementation-scorecard/internal/storage"
	"github.com/bioradar/implementation-scorecard/internal/store"
	syncx "github.com/bioradar/implementation-scorecard/internal/sync"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("scorecardd stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	// --- Store ---
	var (
		st     store.Store
		events api.EventLog
	)
	if db.Driver(cfg.DBDriver) == db.DriverMemory {
		st = store.NewMemory()
	} else {
		openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		dbh, err := db.Open(openCtx, db.Driver(cfg.DBDriver), cfg.DBDSN)
		cancel()
		if err != nil {
			return err
		}
		defer dbh.Close()
		st = store.NewSQLStore(dbh)
		events = syncx.NewEventRepo(dbh, cfg.SiteID)
	}

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		return err
	}

	// --- Default catalog ---
	loader := catalog.NewLoader(cfg.CatalogPath, logger.Named("catalog"))
	if cfg.CatalogPath != "" && cfg.WatchCatalog {
		w, err := catalog.Watch(ctx, loader, 200*time.Millisecond, logger.Named("catalog"))
		if err != nil {
			logger.Warn("catalog watch disabled", zap.String("path", cfg.CatalogPath), zap.Error(err))
		} else {
			defer w.Close()
		}
	}

	// --- Session ---
	m := metrics.New()
	sess := session.New(
		session.WithDebounce(cfg.ResizeDebounce),
		session.WithObserver(func(s *session.State) {
			m.SessionRev.Set(float64(s.Revision))
			m.SessionAnswers.Set(float64(s.Answered()))
		}),
	)
	defer sess.Close()
	hydrate(ctx, st, loader, sess, logger)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, logging.RequestLogger(logger.Named("http")), middleware.Recoverer)
	r.Use(m.Middleware)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	api.Mount(r, &api.Deps{
		Store:   st,
		Session: sess,
		Loader:  loader,
		Blobs:   bs,
		Events:  events,
		Metrics: m,
		Log:     logger,
		TopN:    cfg.TopN,
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logger.Info("listening",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("db", cfg.DBDriver),
		zap.String("catalog", cfg.CatalogPath))

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutCtx)
}

// hydrate restores the session from the latest stored catalog (or the
// default one) and the latest stored result.
func hydrate(ctx context.Context, st store.Store, loader *catalog.Loader, sess *session.Controller, logger *zap.Logger) {
	if rec, err := st.LatestCatalog(ctx); err == nil {
		rec.Catalog.Source = catalog.SourceUploaded
		sess.Load(rec.Catalog)
	} else if cat, err := loader.Get(); err == nil {
		sess.Load(cat)
	} else if !errors.Is(err, catalog.ErrNoDefault) {
		logger.Warn("default catalog unreadable", zap.String("path", loader.Path()), zap.Error(err))
	}

	rec, err := st.LatestResult(ctx)
	switch {
	case err == nil:
		sess.LoadResult(rec.Result)
	case !errors.Is(err, store.ErrNotFound):
		logger.Error("load latest result", zap.Error(err))
	}
}
