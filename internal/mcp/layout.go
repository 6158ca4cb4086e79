package mcpserver

import (
	"math"

	"sitebuilder/internal/domain"
	"sitebuilder/internal/registry"
)

const (
	GridSize = 10.0 // canvas snap step
	Padding  = 20.0 // gap between components
	MaxRowW  = 1200.0
)

// footprints approximates the rendered size of each builtin kind with its
// default props. Components carry only a position, so placement works on
// these estimates.
var footprints = map[domain.Kind][2]float64{
	registry.KindText:    {320, 60},
	registry.KindHeading: {420, 80},
	registry.KindButton:  {160, 60},
	registry.KindImage:   {320, 240},
	registry.KindSection: {640, 240},
	registry.KindForm:    {380, 380},
}

// Footprint returns the estimated width and height of a component of kind.
func Footprint(kind domain.Kind) (float64, float64) {
	if f, ok := footprints[kind]; ok {
		return f[0], f[1]
	}
	return 320, 100
}

// LayoutEngine places components added by agents so they don't overlap
// existing ones.
type LayoutEngine struct {
	gridSize float64
	padding  float64
	maxRowW  float64
}

func NewLayoutEngine() *LayoutEngine {
	return &LayoutEngine{
		gridSize: GridSize,
		padding:  Padding,
		maxRowW:  MaxRowW,
	}
}

// snap rounds v to the nearest grid point.
func (le *LayoutEngine) snap(v float64) float64 {
	return math.Round(v/le.gridSize) * le.gridSize
}

type rect struct {
	x, y, w, h float64
}

func (a rect) intersects(b rect) bool {
	return a.x < b.x+b.w && a.x+a.w > b.x &&
		a.y < b.y+b.h && a.y+a.h > b.y
}

func footprintRect(c domain.Component) rect {
	w, h := Footprint(c.Kind)
	return rect{c.Position.X, c.Position.Y, w, h}
}

// NextPosition finds the first free grid position, scanning rows top to
// bottom, for a new component of kind.
func (le *LayoutEngine) NextPosition(existing []domain.Component, kind domain.Kind) domain.Position {
	if len(existing) == 0 {
		return domain.Position{X: le.padding, Y: le.padding}
	}

	occupied := make([]rect, len(existing))
	for i, c := range existing {
		r := footprintRect(c)
		occupied[i] = rect{r.x - le.padding, r.y - le.padding, r.w + le.padding*2, r.h + le.padding*2}
	}

	w, h := Footprint(kind)
	candidate := rect{w: w, h: h}
	for y := le.padding; y < 20000; y += le.gridSize {
		for x := le.padding; x+w <= le.maxRowW; x += le.gridSize {
			candidate.x = le.snap(x)
			candidate.y = le.snap(y)

			overlaps := false
			for _, occ := range occupied {
				if candidate.intersects(occ) {
					overlaps = true
					break
				}
			}
			if !overlaps {
				return domain.Position{X: candidate.x, Y: candidate.y}
			}
		}
	}

	// Below everything.
	maxY := 0.0
	for _, c := range existing {
		r := footprintRect(c)
		if r.y+r.h > maxY {
			maxY = r.y + r.h
		}
	}
	return domain.Position{X: le.padding, Y: le.snap(maxY + le.padding)}
}

// Arrange lays components out in document order, left to right, wrapping
// rows at the canvas width. It returns the new position of each component.
func (le *LayoutEngine) Arrange(comps []domain.Component, startX, startY float64) []domain.Position {
	out := make([]domain.Position, len(comps))
	x := le.snap(startX)
	y := le.snap(startY)
	rowHeight := 0.0

	for i, c := range comps {
		w, h := Footprint(c.Kind)
		if x > le.snap(startX) && x+w > le.maxRowW {
			x = le.snap(startX)
			y += le.snap(rowHeight + le.padding)
			rowHeight = 0
		}
		out[i] = domain.Position{X: x, Y: y}
		if h > rowHeight {
			rowHeight = h
		}
		x += le.snap(w + le.padding)
	}
	return out
}
