// Package surface is an in-memory document of drawing canvases. It stands in
// for the host page that owns the pattern visualiser's canvas.
package surface

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrNotFound    = errors.New("canvas not found")
	ErrDuplicateID = errors.New("canvas id already in use")
)

// Canvas is a drawing surface.
type Canvas struct {
	ID     string
	Width  int
	Height int
	Attrs  map[string]string
}

// Clone returns a deep copy of c.
func (c *Canvas) Clone() *Canvas {
	out := &Canvas{ID: c.ID, Width: c.Width, Height: c.Height}
	if c.Attrs != nil {
		out.Attrs = make(map[string]string, len(c.Attrs))
		for k, v := range c.Attrs {
			out.Attrs[k] = v
		}
	}
	return out
}

func (c *Canvas) String() string {
	return fmt.Sprintf("canvas#%s(%dx%d)", c.ID, c.Width, c.Height)
}

// Document keeps canvases in display order. It is safe for concurrent use.
type Document struct {
	mu       sync.RWMutex
	canvases []*Canvas
}

// NewDocument returns a document holding canvases in the given order.
func NewDocument(canvases ...*Canvas) *Document {
	return &Document{canvases: append([]*Canvas(nil), canvases...)}
}

// ElementByID returns the canvas with the given id, or nil.
func (d *Document) ElementByID(id string) *Canvas {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if i := d.index(id); i >= 0 {
		return d.canvases[i]
	}
	return nil
}

// InsertAfter places c directly after ref.
func (d *Document) InsertAfter(ref, c *Canvas) error {
	if ref == nil {
		return fmt.Errorf("%w: nil reference", ErrNotFound)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if c.ID != "" && d.index(c.ID) >= 0 {
		return fmt.Errorf("%w: %q", ErrDuplicateID, c.ID)
	}
	for i, cur := range d.canvases {
		if cur == ref {
			d.canvases = append(d.canvases[:i+1], append([]*Canvas{c}, d.canvases[i+1:]...)...)
			return nil
		}
	}
	return fmt.Errorf("%w: reference %q", ErrNotFound, ref.ID)
}

// Remove deletes the canvas with the given id and reports whether it existed.
func (d *Document) Remove(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := d.index(id)
	if i < 0 {
		return false
	}
	d.canvases = append(d.canvases[:i], d.canvases[i+1:]...)
	return true
}

// Canvases returns the canvases in display order.
func (d *Document) Canvases() []*Canvas {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]*Canvas(nil), d.canvases...)
}

func (d *Document) index(id string) int {
	for i, c := range d.canvases {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Context is the drawing context of the pattern visualiser: it hands out the
// canvas the visualiser paints on.
type Context struct {
	canvas *Canvas
}

// NewContext returns a drawing context over canvas.
func NewContext(canvas *Canvas) *Context { return &Context{canvas: canvas} }

func (c *Context) Canvas() *Canvas { return c.canvas }
