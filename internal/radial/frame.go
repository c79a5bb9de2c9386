package radial

import (
	"github.com/bioradar/implementation-scorecard/internal/scorecard"
)

// Wedge is the baseline guide of one goal plus its label anchor.
type Wedge struct {
	Goal       int     `json:"goal"`
	StartAngle float64 `json:"start_angle"`
	EndAngle   float64 `json:"end_angle"`
	LabelX     float64 `json:"label_x"`
	LabelY     float64 `json:"label_y"`
}

// Frame is the fixed decoration drawn under the data: ring guides, goal
// wedges and label anchors.
type Frame struct {
	CenterX     float64   `json:"center_x"`
	CenterY     float64   `json:"center_y"`
	InnerRadius float64   `json:"inner_radius"`
	OuterRadius float64   `json:"outer_radius"`
	Rings       []float64 `json:"rings"`
	Wedges      []Wedge   `json:"wedges"`
}

func (e *Engine) Frame() Frame {
	cx, cy := e.Center()
	f := Frame{
		CenterX:     cx,
		CenterY:     cy,
		InnerRadius: e.inner,
		OuterRadius: e.outer,
		Rings:       make([]float64, 0, len(scorecard.ScoreLevels)+1),
		Wedges:      make([]Wedge, 0, scorecard.NumGoals),
	}
	f.Rings = append(f.Rings, e.inner)
	for _, level := range scorecard.ScoreLevels {
		_, outer := e.Band(level)
		f.Rings = append(f.Rings, outer)
	}
	labelR := e.outer + e.opts.Margin/2
	for goal := scorecard.MinGoal; goal <= scorecard.MaxGoal; goal++ {
		sa, ea := e.GoalWedge(goal)
		x, y := Point((sa+ea)/2, labelR)
		f.Wedges = append(f.Wedges, Wedge{Goal: goal, StartAngle: sa, EndAngle: ea, LabelX: x, LabelY: y})
	}
	return f
}

// Diagram is everything a renderer needs for one grid at one size.
type Diagram struct {
	Size     Size      `json:"size"`
	Frame    *Frame    `json:"frame,omitempty"`
	Segments []Segment `json:"segments"`
}

// Empty reports whether there is nothing to draw.
func (d Diagram) Empty() bool { return d.Frame == nil }

// Build lays out grid and its frame. For an unusable size the diagram is
// empty and carries no segments.
func Build(grid scorecard.Grid, size Size, opts Options) Diagram {
	e, ok := New(size, opts)
	if !ok {
		return Diagram{Size: size, Segments: []Segment{}}
	}
	f := e.Frame()
	return Diagram{Size: size, Frame: &f, Segments: e.Segments(grid)}
}
