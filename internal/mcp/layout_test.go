package mcpserver

import (
	"testing"

	"sitebuilder/internal/domain"
	"sitebuilder/internal/registry"
)

func TestNextPosition_EmptyCanvas(t *testing.T) {
	le := NewLayoutEngine()
	p := le.NextPosition(nil, registry.KindText)
	if p.X != Padding || p.Y != Padding {
		t.Errorf("expected (%.0f, %.0f) for empty canvas, got (%.0f, %.0f)", Padding, Padding, p.X, p.Y)
	}
}

func TestNextPosition_AvoidsExisting(t *testing.T) {
	le := NewLayoutEngine()
	existing := []domain.Component{
		{Kind: registry.KindSection, Position: domain.Position{X: 20, Y: 20}},
		{Kind: registry.KindImage, Position: domain.Position{X: 700, Y: 20}},
	}
	p := le.NextPosition(existing, registry.KindForm)

	w, h := Footprint(registry.KindForm)
	r := rect{p.X, p.Y, w, h}
	for _, c := range existing {
		cw, ch := Footprint(c.Kind)
		padded := rect{c.Position.X - Padding, c.Position.Y - Padding, cw + Padding*2, ch + Padding*2}
		if r.intersects(padded) {
			t.Errorf("position (%.0f, %.0f) overlaps component at (%.0f, %.0f)", p.X, p.Y, c.Position.X, c.Position.Y)
		}
	}
	if p.X+w > MaxRowW {
		t.Errorf("position (%.0f, %.0f) exceeds canvas width", p.X, p.Y)
	}
}

func TestArrange(t *testing.T) {
	le := NewLayoutEngine()
	comps := []domain.Component{
		{Kind: registry.KindSection},
		{Kind: registry.KindSection},
		{Kind: registry.KindButton},
	}
	got := le.Arrange(comps, 0, 0)

	if got[0] != (domain.Position{X: 0, Y: 0}) {
		t.Errorf("first component at %+v, want origin", got[0])
	}
	// Two sections don't fit in one row.
	if got[1].X != 0 || got[1].Y <= got[0].Y {
		t.Errorf("second section should wrap, got %+v", got[1])
	}
	if got[2].Y != got[1].Y || got[2].X <= got[1].X {
		t.Errorf("button should follow the second section, got %+v", got[2])
	}
}

func TestFootprint_UnknownKind(t *testing.T) {
	w, h := Footprint("carousel")
	if w <= 0 || h <= 0 {
		t.Errorf("unknown kind needs a positive footprint, got %.0fx%.0f", w, h)
	}
}
