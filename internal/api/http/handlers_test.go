package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bioradar/implementation-scorecard/internal/catalog"
	"github.com/bioradar/implementation-scorecard/internal/metrics"
	"github.com/bioradar/implementation-scorecard/internal/scorecard"
	"github.com/bioradar/implementation-scorecard/internal/session"
	"github.com/bioradar/implementation-scorecard/internal/storage"
	"github.com/bioradar/implementation-scorecard/internal/store"
	syncx "github.com/bioradar/implementation-scorecard/internal/sync"
)

type recordedEvent struct{ typ, key string }

type fakeEvents struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (f *fakeEvents) Append(_ context.Context, typ, key string, _ any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{typ, key})
	return nil
}

func (f *fakeEvents) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.typ)
	}
	return out
}

const defaultCatalog = `{"success":true,"sector":"Packaging","questions":[
	{"sdg_number":1,"sustainability_dimension":"economic","question":"d-econ"},
	{"sdg_number":1,"sustainability_dimension":"circular","question":"d-circ"},
	{"sdg_number":1,"sustainability_dimension":"environmental","question":"d-env"},
	{"sdg_number":1,"sustainability_dimension":"social","question":"d-soc"}
]}`

func uploadBody() string {
	var qs []string
	for _, goal := range []string{"1", "2"} {
		for _, d := range []string{"Economic", "Circular", "Environmental", "Social"} {
			qs = append(qs, `{"sdg_number":"`+goal+`","sustainability_dimension":"`+d+`","question":"q"}`)
		}
	}
	return `{"success":true,"sector":"textile","questions":[` + strings.Join(qs, ",") + `]}`
}

type fixture struct {
	router  http.Handler
	deps    *Deps
	events  *fakeEvents
	blobDir string
}

func newFixture(t *testing.T, withDefault bool) *fixture {
	t.Helper()
	dir := t.TempDir()
	path := ""
	if withDefault {
		path = filepath.Join(dir, "catalog.json")
		require.NoError(t, os.WriteFile(path, []byte(defaultCatalog), 0o644))
	}
	blobDir := filepath.Join(dir, "blobs")
	bs, err := storage.NewFSStore(blobDir)
	require.NoError(t, err)

	sess := session.New(session.WithDebounce(0))
	t.Cleanup(sess.Close)

	n := 0
	ev := &fakeEvents{}
	d := &Deps{
		Store:   store.NewMemory(),
		Session: sess,
		Loader:  catalog.NewLoader(path, nil),
		Blobs:   bs,
		Events:  ev,
		Metrics: metrics.New(),
		NewID: func() string {
			n++
			return "id" + string(rune('0'+n))
		},
	}
	r := chi.NewRouter()
	Mount(r, d)
	return &fixture{router: r, deps: d, events: ev, blobDir: blobDir}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealth(t *testing.T) {
	f := newFixture(t, false)
	rec := f.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/health", "").Code)
}

func TestTemplateFallsBackToDefault(t *testing.T) {
	f := newFixture(t, false)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/questionnaire/template", "").Code)

	f = newFixture(t, true)
	rec := f.do(t, http.MethodGet, "/api/questionnaire/template", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var cat catalog.Catalog
	decode(t, rec, &cat)
	assert.Equal(t, catalog.SourceDefault, cat.Source)
	assert.Equal(t, 4, cat.TotalQuestions)
}

func TestUploadThenTemplateAndPages(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(t, http.MethodPost, "/api/upload", uploadBody())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var up struct {
		ID             string `json:"id"`
		TotalQuestions int    `json:"total_questions"`
		Pages          int    `json:"pages"`
	}
	decode(t, rec, &up)
	assert.Equal(t, "id1", up.ID)
	assert.Equal(t, 8, up.TotalQuestions)
	assert.Equal(t, 2, up.Pages)
	_, err := os.Stat(filepath.Join(f.blobDir, "catalogs", "id1.json"))
	assert.NoError(t, err)
	rec = f.do(t, http.MethodGet, "/api/archive/catalogs/id1.json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, uploadBody(), rec.Body.String())
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/archive/catalogs/nope.json", "").Code)

	rec = f.do(t, http.MethodGet, "/api/questionnaire/template", "")
	var cat catalog.Catalog
	decode(t, rec, &cat)
	assert.Equal(t, catalog.SourceUploaded, cat.Source)

	rec = f.do(t, http.MethodGet, "/api/questionnaire/pages", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var pages struct {
		Pages []pageView `json:"pages"`
		Total int        `json:"total"`
	}
	decode(t, rec, &pages)
	require.Equal(t, 2, pages.Total)
	assert.Equal(t, scorecard.Textiles, pages.Pages[0].Sector)
	assert.Equal(t, "textiles|1|economic performance", pages.Pages[0].QuestionIDs[0])
	assert.Equal(t, "No Poverty", pages.Pages[0].GoalDescription)

	rec = f.do(t, http.MethodGet, "/api/questionnaire/pages?sector=packaging", "")
	decode(t, rec, &pages)
	assert.Zero(t, pages.Total)

	assert.Equal(t, []string{syncx.TypeCatalogUploaded}, f.events.types())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.deps.Metrics.Uploads.WithLabelValues("ok")))
}

func TestUploadRejectsEmptyAndMalformed(t *testing.T) {
	f := newFixture(t, false)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/upload", `{"questions":[]}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/upload", `{"questions":"nope"}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/upload", `{`).Code)
	assert.Empty(t, f.events.types())
}

func TestCalculateAndScorecardViews(t *testing.T) {
	f := newFixture(t, false)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/results/latest", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/scorecard/textiles/cells", "").Code)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/upload", uploadBody()).Code)

	body := `{"responses":[
		{"question_id":"textiles|1|economic performance","score":4},
		{"question_id":"textiles|2|social performance","score":2}
	]}`
	rec := f.do(t, http.MethodPost, "/api/questionnaire/calculate", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var calc struct {
		Success bool             `json:"success"`
		Data    scorecard.Result `json:"data"`
	}
	decode(t, rec, &calc)
	assert.True(t, calc.Success)
	assert.Len(t, calc.Data.Rows(scorecard.Textiles), 8)

	rec = f.do(t, http.MethodGet, "/api/scorecard/textile/cells", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var cells struct {
		Sector string           `json:"sector"`
		Cells  []scorecard.Cell `json:"cells"`
	}
	decode(t, rec, &cells)
	assert.Equal(t, scorecard.Textiles, cells.Sector)
	require.Len(t, cells.Cells, scorecard.NumCells)
	assert.Equal(t, 4, scorecard.Grid(cells.Cells).At(1, scorecard.Economic).Score)

	rec = f.do(t, http.MethodGet, "/api/scorecard/Textiles/summary?n=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var sum struct {
		Summary scorecard.Summary `json:"summary"`
	}
	decode(t, rec, &sum)
	require.Len(t, sum.Summary.TopGoals, 1)
	assert.Equal(t, 1, sum.Summary.TopGoals[0].Goal)

	rec = f.do(t, http.MethodGet, "/api/scorecard/Textiles/layout?w=400&h=400", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var lay struct {
		Diagram struct {
			Segments []json.RawMessage `json:"segments"`
		} `json:"diagram"`
	}
	decode(t, rec, &lay)
	assert.Len(t, lay.Diagram.Segments, 6)

	rec = f.do(t, http.MethodGet, "/api/scorecard/Textiles/layout", "")
	decode(t, rec, &lay)
	assert.Empty(t, lay.Diagram.Segments)

	rec = f.do(t, http.MethodGet, "/api/scorecard/Textiles/diagram.svg?w=300&h=300", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<svg")

	rec = f.do(t, http.MethodGet, "/api/scorecard/Textiles/chart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "echarts")

	// the calculate result also replaced the session's result
	st := f.deps.Session.State()
	g, ok := st.Grid(scorecard.Textiles)
	require.True(t, ok)
	assert.Equal(t, 2, g.At(2, scorecard.Social).Score)
}

func TestResetClearsEverything(t *testing.T) {
	f := newFixture(t, false)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/upload", uploadBody()).Code)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/questionnaire/calculate", `{"responses":[]}`).Code)

	rec := f.do(t, http.MethodDelete, "/api/scorecard", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/results/latest", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/questionnaire/template", "").Code)
	assert.Empty(t, f.deps.Session.State().Pages)
	assert.Equal(t,
		[]string{syncx.TypeCatalogUploaded, syncx.TypeResultSubmitted, syncx.TypeScorecardReset},
		f.events.types())
}

func TestResetReseedsSessionFromDefault(t *testing.T) {
	f := newFixture(t, true)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/upload", uploadBody()).Code)
	require.Len(t, f.deps.Session.State().Pages, 2)

	require.Equal(t, http.StatusOK, f.do(t, http.MethodDelete, "/api/scorecard", "").Code)

	rec := f.do(t, http.MethodGet, "/api/questionnaire/pages", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var pages struct {
		Total int `json:"total"`
	}
	decode(t, rec, &pages)
	assert.Equal(t, 1, pages.Total)
	assert.Len(t, f.deps.Session.State().Pages, 1)

	rec = f.do(t, http.MethodPost, "/api/session/answers", `{"question_id":"packaging|1|economic performance","score":3}`)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestDefaultReloadReachesSession(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.deps.Loader.Reload())
	require.Len(t, f.deps.Session.State().Pages, 1)

	two := strings.Replace(defaultCatalog, `"question":"d-soc"}`,
		`"question":"d-soc"},
	{"sdg_number":2,"sustainability_dimension":"economic"},
	{"sdg_number":2,"sustainability_dimension":"circular"},
	{"sdg_number":2,"sustainability_dimension":"environmental"},
	{"sdg_number":2,"sustainability_dimension":"social"}`, 1)
	require.NoError(t, os.WriteFile(f.deps.Loader.Path(), []byte(two), 0o644))
	require.NoError(t, f.deps.Loader.Reload())
	assert.Len(t, f.deps.Session.State().Pages, 2)

	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/upload", uploadBody()).Code)
	require.NoError(t, os.WriteFile(f.deps.Loader.Path(), []byte(defaultCatalog), 0o644))
	require.NoError(t, f.deps.Loader.Reload())
	assert.Equal(t, scorecard.Textiles, f.deps.Session.State().Pages[0].Sector, "uploads take precedence")
}

func TestSessionFlow(t *testing.T) {
	f := newFixture(t, false)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/upload", uploadBody()).Code)

	rec := f.do(t, http.MethodPost, "/api/session/answers", `{"question_id":"textiles|2|circular performance","score":5}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var view sessionView
	decode(t, rec, &view)
	assert.Equal(t, map[string]int{"textiles|2|circular performance": 5}, view.Answers)
	assert.Equal(t, 2, view.Pages)

	assert.Equal(t, http.StatusBadRequest,
		f.do(t, http.MethodPost, "/api/session/answers", `{"question_id":"textiles|9|circular performance","score":1}`).Code)
	assert.Equal(t, http.StatusBadRequest,
		f.do(t, http.MethodPost, "/api/session/answers", `{"question_id":"textiles|2|circular performance","score":7}`).Code)

	rec = f.do(t, http.MethodPut, "/api/session/viewport?flush=1", `{"width":500,"height":400}`)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &view)
	require.Contains(t, view.Diagrams, scorecard.Textiles)
	assert.Len(t, view.Diagrams[scorecard.Textiles].Segments, 5)

	assert.Equal(t, http.StatusAccepted, f.do(t, http.MethodPut, "/api/session/viewport", `{"width":10,"height":10}`).Code)

	rec = f.do(t, http.MethodPost, "/api/session/submit", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var sub struct {
		Data scorecard.Result `json:"data"`
	}
	decode(t, rec, &sub)
	g, err := scorecard.Aggregate(sub.Data.Rows(scorecard.Textiles), scorecard.Textiles)
	require.NoError(t, err)
	assert.Equal(t, 5, g.At(2, scorecard.Circular).Score)

	rec = f.do(t, http.MethodGet, "/api/session", "")
	var after sessionView
	decode(t, rec, &after)
	assert.True(t, after.Submitted)
	assert.Nil(t, after.Diagrams)
}

func TestSessionSubmitWithoutCatalog(t *testing.T) {
	f := newFixture(t, false)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/session/submit", "").Code)
}

func TestMetricsRoute(t *testing.T) {
	f := newFixture(t, false)
	rec := f.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "scorecard_results_submitted_total")
}
