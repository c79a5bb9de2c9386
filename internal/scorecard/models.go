package scorecard

import (
	"encoding/json"
	"strings"
)

// RawRow is a questionnaire row as it arrives from the upload parser or a
// form post. The four scoring fields keep whatever JSON type they came in with.
type RawRow struct {
	ID         string `json:"id,omitempty"`
	GoalNumber any    `json:"sdg_number,omitempty"`
	Sector     any    `json:"sector,omitempty"`
	Dimension  any    `json:"sustainability_dimension,omitempty"`
	Score      any    `json:"score,omitempty"`

	GoalDescription  string `json:"sdg_description,omitempty"`
	Target           string `json:"sdg_target,omitempty"`
	KPI              string `json:"kpi,omitempty"`
	Question         string `json:"question,omitempty"`
	ScoreDescription string `json:"score_description,omitempty"`
	Source           string `json:"source,omitempty"`
	Notes            string `json:"notes,omitempty"`
	Status           string `json:"status,omitempty"`
	Comment          string `json:"comment,omitempty"`
}

// Accepted spellings per field; the first present key wins.
var rawAliases = map[string][]string{
	"id":          {"id", "question_id"},
	"goal":        {"sdg_number", "goal_number", "goal", "sdg"},
	"sector":      {"sector"},
	"dimension":   {"sustainability_dimension", "dimension"},
	"score":       {"score"},
	"description": {"sdg_description", "goal_description"},
	"target":      {"sdg_target", "target"},
	"kpi":         {"kpi"},
	"question":    {"question"},
	"score_desc":  {"score_description"},
	"source":      {"source"},
	"notes":       {"notes", "note"},
	"status":      {"status"},
	"comment":     {"comment", "comments"},
}

func (r *RawRow) UnmarshalJSON(b []byte) error {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	pick := func(field string) any {
		for _, k := range rawAliases[field] {
			if v, ok := m[k]; ok && v != nil {
				return v
			}
		}
		return nil
	}
	text := func(field string) string {
		switch v := pick(field).(type) {
		case nil:
			return ""
		case string:
			return strings.TrimSpace(v)
		default:
			out, _ := json.Marshal(v)
			return string(out)
		}
	}
	*r = RawRow{
		ID:               text("id"),
		GoalNumber:       pick("goal"),
		Sector:           pick("sector"),
		Dimension:        pick("dimension"),
		Score:            pick("score"),
		GoalDescription:  text("description"),
		Target:           text("target"),
		KPI:              text("kpi"),
		Question:         text("question"),
		ScoreDescription: text("score_desc"),
		Source:           text("source"),
		Notes:            text("notes"),
		Status:           text("status"),
		Comment:          text("comment"),
	}
	return nil
}

// NormalizedRow is the strict projection of a RawRow. A nil GoalNumber or
// Score and an empty Dimension stand for null.
type NormalizedRow struct {
	ID         string    `json:"id,omitempty"`
	GoalNumber *int      `json:"sdg_number"`
	Sector     string    `json:"sector"`
	Dimension  Dimension `json:"sustainability_dimension"`
	Score      *int      `json:"score"`

	GoalDescription  string `json:"sdg_description,omitempty"`
	Target           string `json:"sdg_target,omitempty"`
	KPI              string `json:"kpi,omitempty"`
	Question         string `json:"question,omitempty"`
	ScoreDescription string `json:"score_description,omitempty"`
	Source           string `json:"source,omitempty"`
	Notes            string `json:"notes,omitempty"`
	Status           string `json:"status,omitempty"`
	Comment          string `json:"comment,omitempty"`
}

// Raw converts n back to the loose shape, so it can be fed to Normalize again.
func (n NormalizedRow) Raw() RawRow {
	r := RawRow{
		ID:               n.ID,
		Sector:           n.Sector,
		GoalDescription:  n.GoalDescription,
		Target:           n.Target,
		KPI:              n.KPI,
		Question:         n.Question,
		ScoreDescription: n.ScoreDescription,
		Source:           n.Source,
		Notes:            n.Notes,
		Status:           n.Status,
		Comment:          n.Comment,
	}
	if n.GoalNumber != nil {
		r.GoalNumber = *n.GoalNumber
	}
	if n.Dimension != "" {
		r.Dimension = string(n.Dimension)
	}
	if n.Score != nil {
		r.Score = *n.Score
	}
	return r
}

// Locatable reports whether the row can be placed on the goal x dimension grid.
func (n NormalizedRow) Locatable() bool {
	return n.GoalNumber != nil && n.Dimension.Valid()
}

// Goal returns the goal number or 0 when it is null.
func (n NormalizedRow) Goal() int {
	if n.GoalNumber == nil {
		return 0
	}
	return *n.GoalNumber
}

// Key is the composite question id for the row, or "" when it is not locatable.
func (n NormalizedRow) Key() string {
	if !n.Locatable() {
		return ""
	}
	return QuestionID(n.Sector, *n.GoalNumber, n.Dimension)
}

func intPtr(v int) *int { return &v }
