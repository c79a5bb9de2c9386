package scorecard

import (
	"strconv"
	"strings"
)

// QuestionSet is one presentable questionnaire page: one row per dimension,
// in Dimensions order, all for the same sector and goal.
type QuestionSet struct {
	Sector string                       `json:"sector"`
	Goal   int                          `json:"goal"`
	Rows   [NumDimensions]NormalizedRow `json:"rows"`
}

// IDs returns the question ids of the page in dimension order.
func (q QuestionSet) IDs() [NumDimensions]string {
	var out [NumDimensions]string
	for i, d := range Dimensions {
		out[i] = QuestionID(q.Sector, q.Goal, d)
	}
	return out
}

// QuestionID builds the composite "sector|goal|dimension" key, lower-cased.
// Collaborators matching responses back to questions must build it the same way.
func QuestionID(sector string, goal int, d Dimension) string {
	return strings.ToLower(strings.Join([]string{sector, strconv.Itoa(goal), string(d)}, "|"))
}

// BuildPages groups rows into complete pages. Sectors are visited in canonical
// order (free-form sectors after, in the order requested) and goals ascending.
// A (sector, goal) that lacks any dimension yields no page.
func BuildPages(rows []NormalizedRow, activeSectors []string) []QuestionSet {
	sectors := OrderSectors(activeSectors)
	if len(sectors) == 0 {
		return []QuestionSet{}
	}

	// First occurrence of a (sector, goal, dimension) wins; re-uploaded
	// duplicates never become extra questions.
	type slot struct {
		sector string
		goal   int
	}
	groups := map[slot]*[NumDimensions]*NormalizedRow{}
	for i := range rows {
		r := &rows[i]
		if !r.Locatable() {
			continue
		}
		k := slot{r.Sector, *r.GoalNumber}
		g, ok := groups[k]
		if !ok {
			g = &[NumDimensions]*NormalizedRow{}
			groups[k] = g
		}
		if di := r.Dimension.Index(); g[di] == nil {
			g[di] = r
		}
	}

	pages := make([]QuestionSet, 0, len(groups))
	for _, s := range sectors {
		for goal := MinGoal; goal <= MaxGoal; goal++ {
			g, ok := groups[slot{s, goal}]
			if !ok {
				continue
			}
			page, complete := QuestionSet{Sector: s, Goal: goal}, true
			for i, r := range g {
				if r == nil {
					complete = false
					break
				}
				page.Rows[i] = *r
			}
			if complete {
				pages = append(pages, page)
			}
		}
	}
	return pages
}

// OrderSectors canonicalizes and de-duplicates labels, putting canonical
// sectors first in canonical order and free-form ones after as given.
func OrderSectors(requested []string) []string {
	want := map[string]bool{}
	var extra []string
	for _, s := range requested {
		if strings.TrimSpace(s) == "" {
			continue
		}
		c := NormalizeSector(s, "")
		if want[c] {
			continue
		}
		want[c] = true
		if sectorRank(c) < 0 {
			extra = append(extra, c)
		}
	}
	out := make([]string, 0, len(want))
	for _, s := range Sectors {
		if want[s] {
			out = append(out, s)
		}
	}
	return append(out, extra...)
}
