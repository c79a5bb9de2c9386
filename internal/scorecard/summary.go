package scorecard

import "sort"

type DimensionScore struct {
	Dimension  Dimension `json:"dimension"`
	Total      int       `json:"total"`
	Percentage int       `json:"percentage"`
}

type GoalScore struct {
	Goal        int    `json:"goal"`
	Description string `json:"description"`
	Total       int    `json:"total"`
	Percentage  int    `json:"percentage"`
}

// Summary is the derived statistics block shown beside the diagram.
type Summary struct {
	PerDimension []DimensionScore `json:"per_dimension"`
	Goals        []GoalScore      `json:"goals"`
	TopGoals     []GoalScore      `json:"top_goals"`
	BottomGoals  []GoalScore      `json:"bottom_goals"`
}

// Summarize totals a grid per dimension and per goal and ranks goals.
// TopGoals holds the n best goals; BottomGoals the n worst, worst first.
// Goals with equal totals keep ascending goal order.
func Summarize(grid Grid, n int) Summary {
	var dimTotals [NumDimensions]int
	var goalTotals [NumGoals]int
	for _, c := range grid {
		di := c.Dimension.Index()
		if di < 0 || c.Goal < MinGoal || c.Goal > MaxGoal {
			continue
		}
		dimTotals[di] += c.Score
		goalTotals[c.Goal-MinGoal] += c.Score
	}

	s := Summary{
		PerDimension: make([]DimensionScore, 0, NumDimensions),
		Goals:        make([]GoalScore, 0, NumGoals),
	}
	for i, d := range Dimensions {
		s.PerDimension = append(s.PerDimension, DimensionScore{
			Dimension:  d,
			Total:      dimTotals[i],
			Percentage: percent(dimTotals[i], MaxDimensionTotal),
		})
	}
	for i, t := range goalTotals {
		goal := i + MinGoal
		s.Goals = append(s.Goals, GoalScore{
			Goal:        goal,
			Description: GoalDescription(goal),
			Total:       t,
			Percentage:  percent(t, MaxGoalTotal),
		})
	}

	ranked := append([]GoalScore(nil), s.Goals...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Total > ranked[j].Total })

	n = clamp(n, 0, len(ranked))
	s.TopGoals = append([]GoalScore{}, ranked[:n]...)
	s.BottomGoals = make([]GoalScore, 0, n)
	for i := len(ranked) - 1; i >= len(ranked)-n; i-- {
		s.BottomGoals = append(s.BottomGoals, ranked[i])
	}
	return s
}

// percent is round(part/whole*100) with halves rounding up.
func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return (200*part + whole) / (2 * whole)
}
