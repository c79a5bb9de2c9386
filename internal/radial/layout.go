// Package radial computes the ring-segment geometry of the scorecard diagram.
//
// Angles are radians measured clockwise from 12 o'clock. Radii and points are
// in the container's units, relative to the container center unless noted.
package radial

import (
	"math"

	"github.com/bioradar/implementation-scorecard/internal/scorecard"
)

// Size is the drawing area available to the diagram.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether s has a positive, finite area.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0 && !math.IsInf(s.Width, 0) && !math.IsInf(s.Height, 0)
}

type Options struct {
	// Margin is kept free between the outer ring and the container edge.
	Margin float64 `json:"margin" yaml:"margin"`
	// InnerRatio sizes the center legend as a fraction of the outer radius.
	InnerRatio float64 `json:"inner_ratio" yaml:"inner_ratio"`
	// WedgePadding is the fraction of each goal wedge left empty.
	WedgePadding float64 `json:"wedge_padding" yaml:"wedge_padding"`
}

func DefaultOptions() Options {
	return Options{Margin: 48, InnerRatio: 0.22, WedgePadding: 0.01}
}

func (o Options) sanitized() Options {
	d := DefaultOptions()
	if o.Margin < 0 || math.IsNaN(o.Margin) {
		o.Margin = d.Margin
	}
	if o.InnerRatio < 0 || o.InnerRatio >= 1 || math.IsNaN(o.InnerRatio) {
		o.InnerRatio = d.InnerRatio
	}
	if o.WedgePadding < 0 || o.WedgePadding >= 1 || math.IsNaN(o.WedgePadding) {
		o.WedgePadding = d.WedgePadding
	}
	return o
}

// Segment is the draw geometry of one score level of one cell.
type Segment struct {
	Goal        int                 `json:"goal"`
	Dimension   scorecard.Dimension `json:"dimension"`
	Level       int                 `json:"level"`
	StartAngle  float64             `json:"start_angle"`
	EndAngle    float64             `json:"end_angle"`
	InnerRadius float64             `json:"inner_radius"`
	OuterRadius float64             `json:"outer_radius"`
}

// Engine holds the resolved radial scale for one container size.
type Engine struct {
	opts  Options
	size  Size
	inner float64
	outer float64
	band  float64
}

// New resolves the scale for size. It returns false when the container is
// too small to hold any ring, in which case nothing should be drawn.
func New(size Size, opts Options) (*Engine, bool) {
	if !size.Valid() {
		return nil, false
	}
	opts = opts.sanitized()
	outer := math.Min(size.Width, size.Height)/2 - opts.Margin
	if outer <= 0 {
		return nil, false
	}
	inner := outer * opts.InnerRatio
	return &Engine{
		opts:  opts,
		size:  size,
		inner: inner,
		outer: outer,
		band:  (outer - inner) / float64(len(scorecard.ScoreLevels)),
	}, true
}

// Center returns the container center in container coordinates.
func (e *Engine) Center() (x, y float64) { return e.size.Width / 2, e.size.Height / 2 }

// Radii returns the inner and outer radius of the score band.
func (e *Engine) Radii() (inner, outer float64) { return e.inner, e.outer }

// GoalWedge returns the padded angular extent of a goal.
func (e *Engine) GoalWedge(goal int) (start, end float64) {
	return goalWedge(goal, e.opts.WedgePadding)
}

// DimensionWedge returns the sub-wedge of d inside the goal's wedge.
func (e *Engine) DimensionWedge(goal int, d scorecard.Dimension) (start, end float64) {
	gs, ge := e.GoalWedge(goal)
	step := (ge - gs) / scorecard.NumDimensions
	i := float64(d.Index())
	return gs + i*step, gs + (i+1)*step
}

// Band returns the radial extent of a score level, 1 innermost.
func (e *Engine) Band(level int) (inner, outer float64) {
	inner = e.inner + float64(level-1)*e.band
	return inner, inner + e.band
}

// Segment computes one level of one cell regardless of the cell's score;
// renderers use it to draw muted placeholders.
func (e *Engine) Segment(goal int, d scorecard.Dimension, level int) Segment {
	sa, ea := e.DimensionWedge(goal, d)
	ir, or := e.Band(level)
	return Segment{
		Goal:        goal,
		Dimension:   d,
		Level:       level,
		StartAngle:  sa,
		EndAngle:    ea,
		InnerRadius: ir,
		OuterRadius: or,
	}
}

// Segments emits levels 1..score for every scored cell, in grid order.
func (e *Engine) Segments(grid scorecard.Grid) []Segment {
	out := make([]Segment, 0, len(grid))
	for _, c := range grid {
		if !c.Dimension.Valid() || c.Goal < scorecard.MinGoal || c.Goal > scorecard.MaxGoal {
			continue
		}
		for level := 1; level <= c.Score && level <= scorecard.MaxScore; level++ {
			out = append(out, e.Segment(c.Goal, c.Dimension, level))
		}
	}
	return out
}

// Layout computes the segments of grid for size. A zero or unusable size
// yields no geometry.
func (o Options) Layout(grid scorecard.Grid, size Size) []Segment {
	e, ok := New(size, o)
	if !ok {
		return nil
	}
	return e.Segments(grid)
}

// Layout is Options.Layout with DefaultOptions.
func Layout(grid scorecard.Grid, size Size) []Segment {
	return DefaultOptions().Layout(grid, size)
}

// Point converts a polar position to center-relative x/y with y pointing down.
func Point(angle, radius float64) (x, y float64) {
	return radius * math.Sin(angle), -radius * math.Cos(angle)
}

func goalWedge(goal int, padding float64) (start, end float64) {
	width := 2 * math.Pi / scorecard.NumGoals
	pad := width * padding / 2
	start = float64(goal-scorecard.MinGoal) * width
	return start + pad, start + width - pad
}
