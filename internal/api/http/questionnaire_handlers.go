package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/bioradar/implementation-scorecard/internal/catalog"
	"github.com/bioradar/implementation-scorecard/internal/scorecard"
	"github.com/bioradar/implementation-scorecard/internal/storage"
	"github.com/bioradar/implementation-scorecard/internal/store"
	syncx "github.com/bioradar/implementation-scorecard/internal/sync"
)

const maxUploadBytes = 10 << 20

// POST /api/upload (body: catalog envelope)
func UploadHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
		if err != nil {
			d.countUpload("error")
			http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
			return
		}
		cat, err := catalog.Decode(bytes.NewReader(body))
		if err != nil {
			d.countUpload("error")
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if len(cat.Questions) == 0 {
			d.countUpload("empty")
			http.Error(w, "No questions found in file", http.StatusBadRequest)
			return
		}
		cat.Success = true
		cat.Source = catalog.SourceUploaded

		id := d.NewID()
		rec := store.CatalogRecord{ID: id, Catalog: cat, CreatedAt: time.Now().UTC()}
		if err := d.Store.PutCatalog(r.Context(), rec); err != nil {
			d.countUpload("error")
			fail(w, d.Log, err)
			return
		}
		if d.Blobs != nil {
			key, err := d.Blobs.Put(storage.CatalogKey(id), bytes.NewReader(body))
			if err != nil {
				d.Log.Warn("archive upload failed", zap.String("id", id), zap.Error(err))
			} else if u, err := d.Blobs.URL(key); err == nil {
				d.Log.Debug("upload archived", zap.String("id", id), zap.String("url", u))
			}
		}
		d.event(r.Context(), syncx.TypeCatalogUploaded, id, map[string]any{
			"sector":          cat.Sector,
			"total_questions": cat.TotalQuestions,
		})
		st := d.Session.Load(cat)
		d.countUpload("ok")
		d.Log.Info("catalog uploaded",
			zap.String("id", id),
			zap.String("sector", cat.Sector),
			zap.Int("questions", cat.TotalQuestions),
			zap.Int("pages", len(st.Pages)))

		writeJSON(w, http.StatusOK, map[string]any{
			"success":         true,
			"id":              id,
			"message":         "Questions uploaded",
			"questions":       cat.Questions,
			"sector":          cat.Sector,
			"total_questions": cat.TotalQuestions,
			"pages":           len(st.Pages),
		})
	}
}

func (d *Deps) countUpload(result string) {
	if d.Metrics != nil {
		d.Metrics.Uploads.WithLabelValues(result).Inc()
	}
}

// GET /api/questionnaire/template
func TemplateHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cat, err := d.template(r.Context())
		if err != nil {
			if errors.Is(err, catalog.ErrNoDefault) || errors.Is(err, store.ErrNotFound) {
				http.Error(w, "No questionnaire data available. Please upload a file first.", http.StatusNotFound)
				return
			}
			fail(w, d.Log, err)
			return
		}
		writeJSON(w, http.StatusOK, cat)
	}
}

type pageView struct {
	Sector          string                                           `json:"sector"`
	Goal            int                                              `json:"goal"`
	GoalDescription string                                           `json:"sdg_description"`
	QuestionIDs     [scorecard.NumDimensions]string                  `json:"question_ids"`
	Rows            [scorecard.NumDimensions]scorecard.NormalizedRow `json:"rows"`
}

// GET /api/questionnaire/pages?sector=Textiles&sector=Packaging
func PagesHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cat, err := d.template(r.Context())
		if err != nil {
			fail(w, d.Log, err)
			return
		}
		sectors := r.URL.Query()["sector"]
		if len(sectors) == 0 {
			sectors = scorecard.Sectors
		}
		active := make([]string, 0, len(sectors))
		for _, s := range sectors {
			active = append(active, scorecard.NormalizeSector(s, ""))
		}

		pages := scorecard.BuildPages(cat.Rows(), active)
		out := make([]pageView, 0, len(pages))
		for _, p := range pages {
			out = append(out, pageView{
				Sector:          p.Sector,
				Goal:            p.Goal,
				GoalDescription: scorecard.GoalDescription(p.Goal),
				QuestionIDs:     p.IDs(),
				Rows:            p.Rows,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"sectors": scorecard.OrderSectors(active),
			"pages":   out,
			"total":   len(out),
		})
	}
}

// POST /api/questionnaire/calculate (body: responses + questions)
func CalculateHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sub scorecard.Submission
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if len(sub.Questions) == 0 {
			cat, err := d.template(r.Context())
			if err != nil {
				http.Error(w, "questions required", http.StatusBadRequest)
				return
			}
			sub.Questions = cat.Questions
			if sub.Sector == "" {
				sub.Sector = cat.Sector
			}
		}
		res, err := d.saveResult(r, "", sub)
		if err != nil {
			fail(w, d.Log, err)
			return
		}
		d.Session.LoadResult(res)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": res})
	}
}

func (d *Deps) saveResult(r *http.Request, sessionID string, sub scorecard.Submission) (scorecard.Result, error) {
	res := scorecard.ScoreResponses(sub)
	id := d.NewID()
	rec := store.ResultRecord{ID: id, SessionID: sessionID, Result: res, CreatedAt: time.Now().UTC()}
	if err := d.Store.PutResult(r.Context(), rec); err != nil {
		return nil, err
	}
	d.event(r.Context(), syncx.TypeResultSubmitted, id, map[string]any{
		"session_id": sessionID,
		"responses":  len(sub.Responses),
		"sectors":    res.Sectors(),
	})
	if d.Metrics != nil {
		d.Metrics.Submissions.Inc()
	}
	d.Log.Info("result submitted", zap.String("id", id), zap.Int("responses", len(sub.Responses)))
	return res, nil
}

// GET /api/results/latest
func LatestResultHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := d.Store.LatestResult(r.Context())
		if err != nil {
			fail(w, d.Log, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":    true,
			"id":         rec.ID,
			"created_at": rec.CreatedAt,
			"sectors":    rec.Result.Sectors(),
			"data":       rec.Result,
		})
	}
}
