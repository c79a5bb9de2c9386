// Package session keeps the questionnaire's application state as immutable
// snapshots replaced wholesale by a Controller.
package session

import (
	"github.com/bioradar/implementation-scorecard/internal/catalog"
	"github.com/bioradar/implementation-scorecard/internal/radial"
	"github.com/bioradar/implementation-scorecard/internal/scorecard"
)

// State is one snapshot. Nothing reachable from a published State is ever
// modified; callers must treat slices they read from it as read-only.
type State struct {
	ID       string
	Revision int

	Catalog   catalog.Catalog
	Sectors   []string
	Pages     []scorecard.QuestionSet
	Submitted bool
	Result    scorecard.Result
	Size      radial.Size

	responses map[string]int
	grids     map[string]scorecard.Grid
	diagrams  map[string]radial.Diagram
}

// Response returns the recorded score for a question id.
func (s *State) Response(id string) (int, bool) {
	v, ok := s.responses[id]
	return v, ok
}

// Responses returns a copy of all recorded answers.
func (s *State) Responses() map[string]int {
	out := make(map[string]int, len(s.responses))
	for k, v := range s.responses {
		out[k] = v
	}
	return out
}

// Answered counts how many questions of the current pages have a response.
func (s *State) Answered() int { return len(s.responses) }

// Grid returns the aggregated cells for a sector.
func (s *State) Grid(sector string) (scorecard.Grid, bool) {
	g, ok := s.grids[scorecard.NormalizeSector(sector, "")]
	return g, ok
}

// Diagram returns the geometry for a sector at the current size.
func (s *State) Diagram(sector string) (radial.Diagram, bool) {
	d, ok := s.diagrams[scorecard.NormalizeSector(sector, "")]
	return d, ok
}

// Submission is the scoring request for the current answers.
func (s *State) Submission() scorecard.Submission {
	resp := make([]scorecard.Response, 0, len(s.responses))
	for _, p := range s.Pages {
		for _, id := range p.IDs() {
			if v, ok := s.responses[id]; ok {
				resp = append(resp, scorecard.Response{QuestionID: id, Score: v})
			}
		}
	}
	return scorecard.Submission{
		Responses: resp,
		Questions: s.Catalog.Questions,
		Sector:    s.Catalog.Sector,
	}
}

func (s *State) pageIDs() map[string]bool {
	ids := make(map[string]bool, len(s.Pages)*scorecard.NumDimensions)
	for _, p := range s.Pages {
		for _, id := range p.IDs() {
			ids[id] = true
		}
	}
	return ids
}

// next returns a shallow copy with the revision bumped.
func (s *State) next() *State {
	n := *s
	n.Revision++
	return &n
}
