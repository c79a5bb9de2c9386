package http

import (
	"encoding/json"
	"net/http"

	"github.com/bioradar/implementation-scorecard/internal/radial"
	"github.com/bioradar/implementation-scorecard/internal/scorecard"
	"github.com/bioradar/implementation-scorecard/internal/session"
)

type sessionView struct {
	ID        string                    `json:"id"`
	Revision  int                       `json:"revision"`
	Sectors   []string                  `json:"sectors"`
	Pages     int                       `json:"pages"`
	Answers   map[string]int            `json:"answers"`
	Submitted bool                      `json:"submitted"`
	Size      radial.Size               `json:"size"`
	Diagrams  map[string]radial.Diagram `json:"diagrams,omitempty"`
}

func viewOf(st *session.State, geometry bool) sessionView {
	v := sessionView{
		ID:        st.ID,
		Revision:  st.Revision,
		Sectors:   st.Sectors,
		Pages:     len(st.Pages),
		Answers:   st.Responses(),
		Submitted: st.Submitted,
		Size:      st.Size,
	}
	if geometry {
		v.Diagrams = map[string]radial.Diagram{}
		for _, s := range st.Result.Sectors() {
			if dg, ok := st.Diagram(s); ok {
				v.Diagrams[scorecard.NormalizeSector(s, "")] = dg
			}
		}
	}
	return v
}

// GET /api/session?geometry=1
func SessionHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, viewOf(d.Session.State(), r.URL.Query().Get("geometry") == "1"))
	}
}

// PUT /api/session/viewport (body: {"width":..,"height":..}); ?flush=1
// applies it immediately instead of after the debounce.
func ViewportHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var size radial.Size
		if err := json.NewDecoder(r.Body).Decode(&size); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		d.Session.Resize(size)
		if r.URL.Query().Get("flush") == "1" {
			writeJSON(w, http.StatusOK, viewOf(d.Session.Flush(), true))
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

// POST /api/session/answers (body: {"question_id":..,"score":..})
func AnswerHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scorecard.Response
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		st, err := d.Session.Answer(req.QuestionID, req.Score)
		if err != nil {
			fail(w, d.Log, err)
			return
		}
		if d.Metrics != nil {
			d.Metrics.SessionAnswers.Set(float64(st.Answered()))
		}
		writeJSON(w, http.StatusOK, viewOf(st, false))
	}
}

// POST /api/session/submit scores the session's answers and stores the result.
func SessionSubmitHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, sub := d.Session.Submit()
		if len(sub.Questions) == 0 {
			http.Error(w, "no questionnaire loaded", http.StatusBadRequest)
			return
		}
		res, err := d.saveResult(r, st.ID, sub)
		if err != nil {
			fail(w, d.Log, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "session": st.ID, "data": res})
	}
}
