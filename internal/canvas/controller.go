package canvas

import (
	"sync"

	"sitebuilder/internal/document"
	"sitebuilder/internal/domain"
)

// Point is a pointer location in client coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// IsSpuriousDragEnd reports whether a drag event at p must be ignored.
//
// Browsers fire a final drag event with client coordinates (0,0) when the
// drag ends. That event does not describe a real pointer location, so
// moves to exactly (0,0) are dropped. A genuine move to the very corner of
// the viewport is dropped too; it is indistinguishable. Callers that know
// a drag has ended should call DragEnd instead of relying on this filter.
func IsSpuriousDragEnd(p Point) bool {
	return p.X == 0 && p.Y == 0
}

// Controller translates canvas gestures into session operations.
// Every accepted move is applied immediately, so the last move wins.
type Controller struct {
	session *document.Session

	mu       sync.Mutex
	origin   Point
	dragging string
}

// NewController returns a controller for s with the canvas origin at (0,0).
func NewController(s *document.Session) *Controller {
	return &Controller{session: s}
}

// SetOrigin records the canvas container's top-left corner in client
// coordinates (its bounding rectangle).
func (c *Controller) SetOrigin(p Point) {
	c.mu.Lock()
	c.origin = p
	c.mu.Unlock()
}

// Origin returns the canvas origin.
func (c *Controller) Origin() Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.origin
}

// Local converts a client pointer location to a canvas position.
func (c *Controller) Local(p Point) domain.Position {
	o := c.Origin()
	return domain.Position{X: p.X - o.X, Y: p.Y - o.Y}
}

// Dragging returns the id of the component being dragged, or "".
func (c *Controller) Dragging() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dragging
}

// DragStart begins dragging the component with the given id.
func (c *Controller) DragStart(id string) error {
	if _, err := c.session.Component(id); err != nil {
		return err
	}
	c.mu.Lock()
	c.dragging = id
	c.mu.Unlock()
	return nil
}

// DragMove moves the dragged component under the pointer. Moves outside a
// drag and spurious end events are ignored.
func (c *Controller) DragMove(p Point) error {
	id := c.Dragging()
	if id == "" || IsSpuriousDragEnd(p) {
		return nil
	}
	pos := c.Local(p)
	if err := c.session.UpdateComponent(id, document.Update{Position: &pos}); err != nil {
		c.endDrag()
		return err
	}
	return nil
}

// DragEnd finishes the drag. When a final pointer location is known it is
// applied as a last move; otherwise the position of the last move stays.
func (c *Controller) DragEnd(p *Point) error {
	var err error
	if p != nil {
		err = c.DragMove(*p)
	}
	c.endDrag()
	return err
}

func (c *Controller) endDrag() {
	c.mu.Lock()
	c.dragging = ""
	c.mu.Unlock()
}

// ClickComponent selects the clicked component.
func (c *Controller) ClickComponent(id string) {
	c.session.Select(id)
}

// ClickEmpty clears the selection when the bare canvas is clicked.
func (c *Controller) ClickEmpty() {
	c.session.ClearSelection()
}

// Delete handles the delete control of the selected component.
func (c *Controller) Delete(id string) error {
	return c.session.DeleteComponent(id)
}

// Drop adds a component of kind where a toolbox item was dropped.
func (c *Controller) Drop(kind domain.Kind, p Point) (domain.Component, error) {
	pos := c.Local(p)
	return c.session.AddComponent(kind, &pos)
}
