package scorecard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeGoal(sector string, goal int) []NormalizedRow {
	out := make([]NormalizedRow, 0, NumDimensions)
	for _, d := range Dimensions {
		out = append(out, NormalizedRow{Sector: sector, GoalNumber: intPtr(goal), Dimension: d, Question: string(d)})
	}
	return out
}

func TestBuildPagesOnlyCompletePages(t *testing.T) {
	var rows []NormalizedRow
	rows = append(rows, completeGoal(Textiles, 2)...)
	for _, d := range []Dimension{Economic, Environmental, Social} {
		rows = append(rows, row(Textiles, 5, d, intPtr(3)))
	}

	pages := BuildPages(rows, []string{Textiles})
	require.Len(t, pages, 1)
	assert.Equal(t, 2, pages[0].Goal)

	for _, p := range pages {
		seen := map[Dimension]bool{}
		for i, r := range p.Rows {
			assert.Equal(t, Dimensions[i], r.Dimension)
			assert.Equal(t, p.Sector, r.Sector)
			assert.Equal(t, p.Goal, r.Goal())
			seen[r.Dimension] = true
		}
		assert.Len(t, seen, NumDimensions)
	}

	// the three present dimensions still aggregate
	grid, err := Aggregate(rows, Textiles)
	require.NoError(t, err)
	assert.Equal(t, 3, grid.At(5, Economic).Score)
	assert.Equal(t, 0, grid.At(5, Circular).Count)
	assert.Equal(t, 3, grid.At(5, Social).Score)
}

func TestBuildPagesOrdering(t *testing.T) {
	var rows []NormalizedRow
	rows = append(rows, completeGoal(Packaging, 1)...)
	rows = append(rows, completeGoal(Textiles, 9)...)
	rows = append(rows, completeGoal("Mining", 4)...)
	rows = append(rows, completeGoal(Textiles, 3)...)
	rows = append(rows, completeGoal(Fertilizers, 17)...)

	pages := BuildPages(rows, []string{"Mining", "packaging", Textiles, "fertilizers"})
	got := make([][2]any, 0, len(pages))
	for _, p := range pages {
		got = append(got, [2]any{p.Sector, p.Goal})
	}
	assert.Equal(t, [][2]any{
		{Textiles, 3}, {Textiles, 9}, {Fertilizers, 17}, {Packaging, 1}, {"Mining", 4},
	}, got)

	onlyPack := BuildPages(rows, []string{Packaging})
	require.Len(t, onlyPack, 1)
	assert.Equal(t, Packaging, onlyPack[0].Sector)

	assert.Empty(t, BuildPages(rows, nil))
}

func TestBuildPagesFirstDuplicateWins(t *testing.T) {
	first := row(Textiles, 7, Circular, intPtr(1))
	first.Question = "first"
	second := row(Textiles, 7, Circular, intPtr(5))
	second.Question = "second"

	var rows []NormalizedRow
	for _, r := range completeGoal(Textiles, 7) {
		if r.Dimension == Circular {
			rows = append(rows, first, second)
			continue
		}
		rows = append(rows, r)
	}

	pages := BuildPages(rows, Sectors)
	require.Len(t, pages, 1)
	assert.Equal(t, "first", pages[0].Rows[Circular.Index()].Question)

	// the aggregator is independent and averages both
	grid, err := Aggregate(rows, Textiles)
	require.NoError(t, err)
	assert.Equal(t, 2, grid.At(7, Circular).Count)
	assert.Equal(t, 3, grid.At(7, Circular).Score)
}

func TestBuildPagesDeterministic(t *testing.T) {
	rows := append(completeGoal(Textiles, 1), completeGoal(Textiles, 2)...)
	assert.Equal(t, BuildPages(rows, Sectors), BuildPages(rows, Sectors))
}

func TestQuestionID(t *testing.T) {
	assert.Equal(t, "textiles|3|economic performance", QuestionID(Textiles, 3, Economic))

	p := BuildPages(completeGoal(Packaging, 12), Sectors)[0]
	assert.Equal(t, [NumDimensions]string{
		"packaging|12|economic performance",
		"packaging|12|circular performance",
		"packaging|12|environmental performance",
		"packaging|12|social performance",
	}, p.IDs())
	assert.Equal(t, p.IDs()[0], p.Rows[0].Key())
}
