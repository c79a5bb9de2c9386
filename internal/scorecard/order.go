package scorecard

// Dimension is one of the four fixed performance axes.
type Dimension string

const (
	Economic      Dimension = "Economic Performance"
	Circular      Dimension = "Circular Performance"
	Environmental Dimension = "Environmental Performance"
	Social        Dimension = "Social Performance"
)

// Dimensions is the layout order shared by the aggregator, the page builder
// and the radial engine. It is not alphabetical.
var Dimensions = [NumDimensions]Dimension{Economic, Circular, Environmental, Social}

// Index returns the position of d in Dimensions, or -1.
func (d Dimension) Index() int {
	for i, v := range Dimensions {
		if v == d {
			return i
		}
	}
	return -1
}

// Valid reports whether d is one of the canonical dimensions.
func (d Dimension) Valid() bool { return d.Index() >= 0 }

// Canonical sector labels.
const (
	Textiles    = "Textiles"
	Fertilizers = "Fertilizers"
	Packaging   = "Packaging"

	// DefaultSector is used when neither the row nor the caller names one.
	DefaultSector = "General"
)

// Sectors is the canonical sector order used for paging.
var Sectors = []string{Textiles, Fertilizers, Packaging}

const (
	MinGoal  = 1
	MaxGoal  = 17
	NumGoals = MaxGoal - MinGoal + 1

	MinScore = 0
	MaxScore = 5

	NumDimensions = 4
	NumCells      = NumGoals * NumDimensions

	// MaxDimensionTotal is the best possible sum of one dimension over all goals.
	MaxDimensionTotal = NumGoals * MaxScore
	// MaxGoalTotal is the best possible sum of one goal over all dimensions.
	MaxGoalTotal = NumDimensions * MaxScore
)

// ScoreLevels are the drawable rings, innermost first.
var ScoreLevels = [MaxScore]int{1, 2, 3, 4, 5}

// Goals returns 1..17 in ascending order.
func Goals() []int {
	out := make([]int, 0, NumGoals)
	for g := MinGoal; g <= MaxGoal; g++ {
		out = append(out, g)
	}
	return out
}

func sectorRank(s string) int {
	for i, v := range Sectors {
		if v == s {
			return i
		}
	}
	return -1
}
