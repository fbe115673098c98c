package review

// Point is an offset of the review card in CSS pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type dragState struct {
	position Point
	start    Point
	dragging bool
}

// BeginDrag starts moving the card from pointer position (x, y).
func (c *Controller) BeginDrag(x, y float64) {
	c.mu.Lock()
	c.drag.dragging = true
	c.drag.start = Point{X: x - c.drag.position.X, Y: y - c.drag.position.Y}
	c.mu.Unlock()
	c.changed()
}

// DragTo moves the card with the pointer. It reports false when no drag is
// in progress.
func (c *Controller) DragTo(x, y float64) bool {
	c.mu.Lock()
	if !c.drag.dragging {
		c.mu.Unlock()
		return false
	}
	c.drag.position = Point{X: x - c.drag.start.X, Y: y - c.drag.start.Y}
	c.mu.Unlock()
	c.changed()
	return true
}

// EndDrag leaves the card where it is.
func (c *Controller) EndDrag() {
	c.mu.Lock()
	c.drag.dragging = false
	c.mu.Unlock()
	c.changed()
}
