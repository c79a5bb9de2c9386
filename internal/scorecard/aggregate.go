package scorecard

import (
	"errors"
	"strings"
)

// ErrMissingSector is returned when an entry point needs a sector and got none.
var ErrMissingSector = errors.New("sector is required")

// Cell is the aggregated score of one (goal, dimension) pair.
type Cell struct {
	Goal      int             `json:"goal"`
	Dimension Dimension       `json:"dimension"`
	Score     int             `json:"score"`
	Count     int             `json:"count"`
	Items     []NormalizedRow `json:"items"`
}

// Grid holds exactly NumCells cells, goal-major and dimension-minor.
type Grid []Cell

// At returns the cell for goal and d. Out of range lookups return a zero Cell.
func (g Grid) At(goal int, d Dimension) Cell {
	i := cellIndex(goal, d)
	if i < 0 || i >= len(g) {
		return Cell{}
	}
	return g[i]
}

// Goal returns the four cells of one goal in dimension order.
func (g Grid) Goal(goal int) []Cell {
	i := cellIndex(goal, Dimensions[0])
	if i < 0 || i+NumDimensions > len(g) {
		return nil
	}
	return g[i : i+NumDimensions]
}

func cellIndex(goal int, d Dimension) int {
	di := d.Index()
	if goal < MinGoal || goal > MaxGoal || di < 0 {
		return -1
	}
	return (goal-MinGoal)*NumDimensions + di
}

type bucket struct {
	sum, count int
	items      []NormalizedRow
}

// Aggregate buckets the rows of one sector onto the fixed grid. Rows without a
// goal or dimension are ignored; rows without a score are kept as items but do
// not move the mean.
func Aggregate(rows []NormalizedRow, sector string) (Grid, error) {
	if strings.TrimSpace(sector) == "" {
		return nil, ErrMissingSector
	}
	sector = NormalizeSector(sector, "")

	var buckets [NumCells]bucket
	for _, r := range rows {
		if r.Sector != sector || !r.Locatable() {
			continue
		}
		b := &buckets[cellIndex(*r.GoalNumber, r.Dimension)]
		b.items = append(b.items, r)
		if r.Score != nil {
			b.sum += *r.Score
			b.count++
		}
	}

	grid := make(Grid, 0, NumCells)
	for goal := MinGoal; goal <= MaxGoal; goal++ {
		for _, d := range Dimensions {
			b := buckets[cellIndex(goal, d)]
			items := b.items
			if items == nil {
				items = []NormalizedRow{}
			}
			grid = append(grid, Cell{
				Goal:      goal,
				Dimension: d,
				Score:     roundedMean(b.sum, b.count),
				Count:     b.count,
				Items:     items,
			})
		}
	}
	return grid, nil
}

// roundedMean rounds sum/count half away from zero. Scores are never
// negative, so this is integer round-half-up.
func roundedMean(sum, count int) int {
	if count == 0 {
		return 0
	}
	return (2*sum + count) / (2 * count)
}
