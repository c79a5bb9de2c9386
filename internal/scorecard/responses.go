package scorecard

import (
	"encoding/json"
	"sort"
	"strings"
)

// Response is one answered question.
type Response struct {
	QuestionID string `json:"question_id"`
	Score      int    `json:"score"`
}

// Submission is what the questionnaire posts for scoring.
type Submission struct {
	Responses []Response `json:"responses"`
	Questions []RawRow   `json:"questions"`
	Sector    string     `json:"sector"`
}

type SectorRows struct {
	Rows []NormalizedRow `json:"rows"`
}

// Result is the scored row set, one flat bucket per sector label.
type Result map[string]SectorRows

// Sectors lists the result's sectors, canonical ones first in canonical order.
func (r Result) Sectors() []string {
	out := make([]string, 0, len(r))
	for s := range r {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := sectorRank(out[i]), sectorRank(out[j])
		switch {
		case ri >= 0 && rj >= 0:
			return ri < rj
		case ri >= 0:
			return true
		case rj >= 0:
			return false
		}
		return out[i] < out[j]
	})
	return out
}

// Rows returns the rows of the bucket whose label canonicalizes to sector.
func (r Result) Rows(sector string) []NormalizedRow {
	want := NormalizeSector(sector, "")
	var out []NormalizedRow
	for _, s := range r.Sectors() {
		if NormalizeSector(s, "") == want {
			out = append(out, r[s].Rows...)
		}
	}
	return out
}

// UnmarshalJSON accepts loosely typed rows and normalizes them, using the
// bucket label as the fallback sector.
func (r *Result) UnmarshalJSON(b []byte) error {
	var raw map[string]struct {
		Rows []RawRow `json:"rows"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(Result, len(raw))
	for label, bucket := range raw {
		out[label] = SectorRows{Rows: NormalizeAll(bucket.Rows, label)}
	}
	*r = out
	return nil
}

// ScoreResponses attaches the submitted scores to the questions and groups the
// scored rows by sector. A question is matched by its composite id first and
// by its explicit id second; unanswered questions score 0. When an id is
// answered more than once the last response wins.
func ScoreResponses(sub Submission) Result {
	answers := make(map[string]int, len(sub.Responses))
	for _, resp := range sub.Responses {
		id := strings.ToLower(strings.TrimSpace(resp.QuestionID))
		if id == "" {
			continue
		}
		answers[id] = clamp(resp.Score, MinScore, MaxScore)
	}

	out := Result{}
	for _, q := range sub.Questions {
		row := Normalize(q, sub.Sector)
		score, ok := answers[row.Key()]
		if !ok && row.ID != "" {
			score = answers[strings.ToLower(row.ID)]
		}
		row.Score = intPtr(score)
		row.ScoreDescription = ScoreDescription(score)
		if row.GoalDescription == "" {
			row.GoalDescription = GoalDescription(row.Goal())
		}
		bucket := out[row.Sector]
		bucket.Rows = append(bucket.Rows, row)
		out[row.Sector] = bucket
	}
	return out
}
