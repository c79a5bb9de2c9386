package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bioradar/implementation-scorecard/internal/catalog"
	"github.com/bioradar/implementation-scorecard/internal/metrics"
	"github.com/bioradar/implementation-scorecard/internal/radial"
	"github.com/bioradar/implementation-scorecard/internal/scorecard"
	"github.com/bioradar/implementation-scorecard/internal/session"
	"github.com/bioradar/implementation-scorecard/internal/storage"
	"github.com/bioradar/implementation-scorecard/internal/store"
)

// EventLog is the append side of syncx.EventRepo.
type EventLog interface {
	Append(ctx context.Context, typ, key string, payload any) error
}

// Deps are the collaborators shared by the handlers. Loader, Blobs, Events
// and Metrics are optional.
type Deps struct {
	Store   store.Store
	Session *session.Controller
	Loader  *catalog.Loader
	Blobs   storage.BlobStore
	Events  EventLog
	Metrics *metrics.Metrics
	Log     *zap.Logger

	TopN   int
	Layout radial.Options
	NewID  func() string
}

func (d *Deps) defaults() {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.TopN <= 0 {
		d.TopN = 2
	}
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
	if d.Layout == (radial.Options{}) {
		d.Layout = radial.DefaultOptions()
	}
}

// Mount registers every route on r.
func Mount(r chi.Router, d *Deps) {
	d.defaults()
	if d.Loader != nil {
		d.Loader.OnReload(d.defaultReloaded)
	}

	r.Get("/health", HealthHandler(false))
	r.Get("/api/health", HealthHandler(true))

	r.Post("/api/upload", UploadHandler(d))
	r.Get("/api/questionnaire/template", TemplateHandler(d))
	r.Get("/api/questionnaire/pages", PagesHandler(d))
	r.Post("/api/questionnaire/calculate", CalculateHandler(d))
	r.Get("/api/results/latest", LatestResultHandler(d))

	r.Route("/api/scorecard", func(sr chi.Router) {
		sr.Delete("/", ResetHandler(d))
		sr.Get("/{sector}/cells", CellsHandler(d))
		sr.Get("/{sector}/summary", SummaryHandler(d))
		sr.Get("/{sector}/layout", LayoutHandler(d))
		sr.Get("/{sector}/diagram.svg", DiagramHandler(d))
		sr.Get("/{sector}/chart", ChartHandler(d))
	})

	r.Route("/api/session", func(sr chi.Router) {
		sr.Get("/", SessionHandler(d))
		sr.Put("/viewport", ViewportHandler(d))
		sr.Post("/answers", AnswerHandler(d))
		sr.Post("/submit", SessionSubmitHandler(d))
	})

	if d.Blobs != nil {
		r.Route("/api/archive", func(ar chi.Router) {
			MountArchive(ar, d.Blobs)
		})
	}

	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics.Handler())
	}
}

func HealthHandler(api bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]string{"status": "healthy"}
		if api {
			body["message"] = "API is running"
		}
		writeJSON(w, http.StatusOK, body)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// fail maps domain errors to status codes.
func fail(w http.ResponseWriter, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, catalog.ErrNoDefault):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, scorecard.ErrMissingSector), errors.Is(err, catalog.ErrMalformedCatalog),
		errors.Is(err, session.ErrUnknownQuestion), errors.Is(err, session.ErrScoreRange):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Error("request failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (d *Deps) event(ctx context.Context, typ, key string, payload any) {
	if d.Events == nil {
		return
	}
	if err := d.Events.Append(ctx, typ, key, payload); err != nil {
		d.Log.Warn("event log append failed", zap.String("type", typ), zap.Error(err))
	}
}

// seedSession loads the current template into the session. Having no template
// at all leaves the session empty.
func (d *Deps) seedSession(ctx context.Context) *session.State {
	cat, err := d.template(ctx)
	switch {
	case err == nil:
		return d.Session.Load(cat)
	case errors.Is(err, store.ErrNotFound), errors.Is(err, catalog.ErrNoDefault):
	default:
		d.Log.Warn("template unavailable for session", zap.Error(err))
	}
	return d.Session.State()
}

// defaultReloaded moves the session onto a reloaded default catalog unless an
// uploaded catalog is in use.
func (d *Deps) defaultReloaded(cat catalog.Catalog) {
	_, err := d.Store.LatestCatalog(context.Background())
	if !errors.Is(err, store.ErrNotFound) {
		return
	}
	st := d.Session.Load(cat)
	d.Log.Info("session moved to reloaded default catalog",
		zap.String("session", st.ID),
		zap.Int("pages", len(st.Pages)))
}

// template returns the latest uploaded catalog, or the default one.
func (d *Deps) template(ctx context.Context) (catalog.Catalog, error) {
	rec, err := d.Store.LatestCatalog(ctx)
	if err == nil {
		rec.Catalog.Source = catalog.SourceUploaded
		return rec.Catalog, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return catalog.Catalog{}, err
	}
	if d.Loader == nil {
		return catalog.Catalog{}, store.ErrNotFound
	}
	return d.Loader.Get()
}
