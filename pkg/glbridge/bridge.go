// Package glbridge binds a shader runtime to a canvas next to the pattern
// visualiser and feeds it pattern values once per frame.
//
// The runtime is loaded lazily: Bridge.Init loads it, clones the visualiser's
// canvas under a reserved id and returns a Handle. Only the Handle can render,
// so nothing can draw before initialisation has finished.
package glbridge

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/james-see/voicebridge/pkg/pattern"
	"github.com/james-see/voicebridge/pkg/surface"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// DefaultCanvasID is the id reserved for the shader canvas.
const DefaultCanvasID = "c"

var ErrClosed = errors.New("shader handle closed")

// Document is the page that holds canvases.
type Document interface {
	ElementByID(id string) *surface.Canvas
	InsertAfter(ref, c *surface.Canvas) error
	Remove(id string) bool
}

// DrawContext provides the canvas of the pattern visualiser.
type DrawContext interface {
	Canvas() *surface.Canvas
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithRuntimeURL selects the runtime module to load.
func WithRuntimeURL(url string) Option { return func(b *Bridge) { b.url = url } }

// WithCanvasID changes the reserved canvas id.
func WithCanvasID(id string) Option { return func(b *Bridge) { b.canvasID = id } }

// WithClock sets the clock handed to accessors and the frame loop.
func WithClock(c Clock) Option { return func(b *Bridge) { b.clock = c } }

func WithLogger(l zerolog.Logger) Option { return func(b *Bridge) { b.log = l } }

// Bridge lazily binds a shader runtime to the document.
type Bridge struct {
	doc      Document
	draw     DrawContext
	loader   Loader
	url      string
	canvasID string
	clock    Clock
	log      zerolog.Logger

	group  singleflight.Group
	mu     sync.Mutex
	handle *Handle
}

// New returns an uninitialised bridge. A nil loader means RegistryLoader.
func New(doc Document, draw DrawContext, loader Loader, opts ...Option) *Bridge {
	if loader == nil {
		loader = RegistryLoader{}
	}
	b := &Bridge{
		doc:      doc,
		draw:     draw,
		loader:   loader,
		url:      DefaultRuntimeURL,
		canvasID: DefaultCanvasID,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.clock == nil {
		b.clock = NewCycleClock(0.5)
	}
	return b
}

// Init loads the runtime and binds it to the reserved canvas. It is
// idempotent: once a handle is bound, later calls return it. Concurrent
// calls share a single initialisation.
func (b *Bridge) Init(ctx context.Context) (*Handle, error) {
	if h := b.current(); h != nil {
		return h, nil
	}
	v, err, shared := b.group.Do(b.canvasID, func() (any, error) {
		if h := b.current(); h != nil {
			return h, nil
		}
		return b.init(ctx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		b.log.Debug().Str("canvas", b.canvasID).Msg("joined in-flight shader init")
	}
	return v.(*Handle), nil
}

// Handle returns the bound handle, or nil before Init.
func (b *Bridge) Handle() *Handle { return b.current() }

func (b *Bridge) current() *Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handle != nil && b.doc.ElementByID(b.canvasID) != b.handle.canvas {
		// the canvas was removed behind our back
		b.handle = nil
	}
	return b.handle
}

func (b *Bridge) init(ctx context.Context) (*Handle, error) {
	mod, err := b.loader.Load(ctx, b.url)
	if err != nil {
		return nil, fmt.Errorf("load shader runtime: %w", err)
	}

	inserted := false
	canvas := b.doc.ElementByID(b.canvasID)
	if canvas != nil {
		b.log.Info().Str("canvas", b.canvasID).Msg("adopting existing shader canvas")
	} else {
		src := b.draw.Canvas()
		if src == nil {
			return nil, errors.New("draw context has no canvas")
		}
		canvas = src.Clone()
		canvas.ID = b.canvasID
		if err := b.doc.InsertAfter(src, canvas); err != nil {
			return nil, fmt.Errorf("insert shader canvas: %w", err)
		}
		inserted = true
	}

	r, err := mod.Bind(canvas)
	if err != nil {
		if inserted {
			b.doc.Remove(b.canvasID)
		}
		return nil, fmt.Errorf("bind shader runtime: %w", err)
	}

	h := &Handle{bridge: b, canvas: canvas, renderer: r, clock: b.clock}
	b.mu.Lock()
	b.handle = h
	b.mu.Unlock()
	b.log.Info().Str("url", b.url).Str("canvas", canvas.String()).Msg("shader runtime ready")
	return h, nil
}

func (b *Bridge) release(h *Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handle == h {
		b.handle = nil
	}
}

// Handle is the initialised shader runtime. It is valid until Close.
type Handle struct {
	bridge   *Bridge
	canvas   *surface.Canvas
	renderer Renderer
	clock    Clock

	mu     sync.Mutex
	closed bool
}

// Canvas returns the reserved canvas the runtime draws on.
func (h *Handle) Canvas() *surface.Canvas { return h.canvas }

// Clock returns the clock accessors built by ToGL read from.
func (h *Handle) Clock() Clock { return h.clock }

// Render draws one frame.
func (h *Handle) Render(u Uniforms) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	return h.renderer.Render(u)
}

// Draw evaluates params, merges extra over them and renders the result.
func (h *Handle) Draw(params Params, extra Uniforms) error {
	u, err := params.Eval()
	if err != nil {
		return err
	}
	for k, v := range extra {
		u[k] = v
	}
	return h.Render(u)
}

// ToGL is ToGL with GL over the handle's clock as the default factory.
func (h *Handle) ToGL(pats map[string]*pattern.Pattern, f AccessorFactory) Params {
	if f == nil {
		f = GL(h.clock)
	}
	return ToGL(pats, f)
}

// Close releases the renderer and removes the reserved canvas.
func (h *Handle) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.mu.Unlock()

	h.bridge.release(h)
	h.bridge.doc.Remove(h.canvas.ID)
	return h.renderer.Close()
}
