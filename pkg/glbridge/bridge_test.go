package glbridge

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/james-see/voicebridge/pkg/pattern"
	"github.com/james-see/voicebridge/pkg/surface"
)

// mockRenderer implements Renderer for testing
type mockRenderer struct {
	mu     sync.Mutex
	frames []Uniforms
	closed bool
}

func (m *mockRenderer) Render(u Uniforms) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = append(m.frames, u)
	return nil
}

func (m *mockRenderer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// mockLoader counts loads and binds
type mockLoader struct {
	mu       sync.Mutex
	loads    int
	binds    int
	gate     chan struct{}
	loadErr  error
	bindErr  error
	renderer *mockRenderer
}

func (m *mockLoader) Load(ctx context.Context, url string) (Module, error) {
	if m.gate != nil {
		<-m.gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return ModuleFunc(func(c *surface.Canvas) (Renderer, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.binds++
		if m.bindErr != nil {
			return nil, m.bindErr
		}
		m.renderer = &mockRenderer{}
		return m.renderer, nil
	}), nil
}

func newTestBridge(loader Loader) (*Bridge, *surface.Document) {
	vis := &surface.Canvas{ID: "test-canvas", Width: 800, Height: 600}
	doc := surface.NewDocument(vis, &surface.Canvas{ID: "footer"})
	return New(doc, surface.NewContext(vis), loader, WithClock(FixedClock{})), doc
}

func countID(doc *surface.Document, id string) int {
	n := 0
	for _, c := range doc.Canvases() {
		if c.ID == id {
			n++
		}
	}
	return n
}

func TestInitInsertsCanvasAfterVisualiser(t *testing.T) {
	loader := &mockLoader{}
	b, doc := newTestBridge(loader)

	h, err := b.Init(context.Background())
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	canvases := doc.Canvases()
	if len(canvases) != 3 || canvases[1].ID != DefaultCanvasID {
		t.Fatalf("canvases after Init = %v, want shader canvas second", canvases)
	}
	if canvases[1].Width != 800 || canvases[1].Height != 600 {
		t.Errorf("shader canvas size = %dx%d, want clone of visualiser", canvases[1].Width, canvases[1].Height)
	}
	if h.Canvas() != canvases[1] {
		t.Error("Handle.Canvas() is not the inserted canvas")
	}
}

func TestInitIdempotent(t *testing.T) {
	loader := &mockLoader{}
	b, doc := newTestBridge(loader)

	first, err := b.Init(context.Background())
	if err != nil {
		t.Fatalf("first Init() error = %v", err)
	}
	second, err := b.Init(context.Background())
	if err != nil {
		t.Fatalf("second Init() error = %v", err)
	}
	if first != second {
		t.Error("second Init() returned a different handle")
	}
	if n := countID(doc, DefaultCanvasID); n != 1 {
		t.Errorf("found %d reserved canvases, want 1", n)
	}
	if loader.loads != 1 {
		t.Errorf("runtime loaded %d times, want 1", loader.loads)
	}
}

func TestInitConcurrent(t *testing.T) {
	loader := &mockLoader{gate: make(chan struct{})}
	b, doc := newTestBridge(loader)

	const callers = 8
	var wg sync.WaitGroup
	handles := make([]*Handle, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handles[i], errs[i] = b.Init(context.Background())
		}(i)
	}
	close(loader.gate)
	wg.Wait()

	for i := range handles {
		if errs[i] != nil {
			t.Fatalf("Init() #%d error = %v", i, errs[i])
		}
		if handles[i] != handles[0] {
			t.Errorf("Init() #%d returned a different handle", i)
		}
	}
	if n := countID(doc, DefaultCanvasID); n != 1 {
		t.Errorf("found %d reserved canvases, want 1", n)
	}
	if loader.binds != 1 {
		t.Errorf("runtime bound %d times, want 1", loader.binds)
	}
}

func TestInitAdoptsExistingCanvas(t *testing.T) {
	loader := &mockLoader{}
	vis := &surface.Canvas{ID: "test-canvas"}
	existing := &surface.Canvas{ID: DefaultCanvasID}
	doc := surface.NewDocument(vis, existing)
	b := New(doc, surface.NewContext(vis), loader)

	h, err := b.Init(context.Background())
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if h.Canvas() != existing {
		t.Error("Init() did not adopt the existing reserved canvas")
	}
	if len(doc.Canvases()) != 2 {
		t.Errorf("document has %d canvases, want 2", len(doc.Canvases()))
	}
}

func TestInitErrors(t *testing.T) {
	loadErr := errors.New("network down")
	bindErr := errors.New("no webgl")

	t.Run("load", func(t *testing.T) {
		b, doc := newTestBridge(&mockLoader{loadErr: loadErr})
		if _, err := b.Init(context.Background()); !errors.Is(err, loadErr) {
			t.Errorf("Init() error = %v, want %v", err, loadErr)
		}
		if doc.ElementByID(DefaultCanvasID) != nil {
			t.Error("reserved canvas inserted despite load failure")
		}
	})

	t.Run("bind", func(t *testing.T) {
		b, doc := newTestBridge(&mockLoader{bindErr: bindErr})
		if _, err := b.Init(context.Background()); !errors.Is(err, bindErr) {
			t.Errorf("Init() error = %v, want %v", err, bindErr)
		}
		if doc.ElementByID(DefaultCanvasID) != nil {
			t.Error("reserved canvas left behind after bind failure")
		}
	})

	t.Run("unregistered", func(t *testing.T) {
		b, _ := newTestBridge(nil)
		b.url = "https://example.invalid/runtime.mjs"
		if _, err := b.Init(context.Background()); !errors.Is(err, ErrModuleNotFound) {
			t.Errorf("Init() error = %v, want ErrModuleNotFound", err)
		}
	})
}

func TestHandleClose(t *testing.T) {
	loader := &mockLoader{}
	b, doc := newTestBridge(loader)
	h, err := b.Init(context.Background())
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	if err := h.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !loader.renderer.closed {
		t.Error("Close() did not close the renderer")
	}
	if doc.ElementByID(DefaultCanvasID) != nil {
		t.Error("Close() did not remove the reserved canvas")
	}
	if err := h.Render(Uniforms{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Render() after Close error = %v, want ErrClosed", err)
	}
	if b.Handle() != nil {
		t.Error("bridge still holds the closed handle")
	}

	again, err := b.Init(context.Background())
	if err != nil {
		t.Fatalf("Init() after Close error = %v", err)
	}
	if again == h {
		t.Error("Init() after Close returned the closed handle")
	}
}

func TestDrawEvaluatesParams(t *testing.T) {
	loader := &mockLoader{}
	b, _ := newTestBridge(loader)
	h, err := b.Init(context.Background())
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	params := h.ToGL(map[string]*pattern.Pattern{
		"r": pattern.Sequence(1.0, 2.0),
	}, nil)
	if err := h.Draw(params, Uniforms{"time": 0.0}); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	frames := loader.renderer.frames
	if len(frames) != 1 || frames[0]["r"] != 1.0 || frames[0]["time"] != 0.0 {
		t.Errorf("rendered frames = %v", frames)
	}
}

func TestLoopStops(t *testing.T) {
	loader := &mockLoader{}
	b, _ := newTestBridge(loader)
	h, err := b.Init(context.Background())
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	var seen []int
	err = h.Loop(context.Background(), 1000, func(f Frame) error {
		seen = append(seen, f.Index)
		if f.Index == 2 {
			return ErrStopLoop
		}
		return nil
	})
	if err != nil {
		t.Errorf("Loop() error = %v, want nil after ErrStopLoop", err)
	}
	if len(seen) != 3 {
		t.Errorf("Loop() ran %d frames, want 3", len(seen))
	}

	boom := errors.New("boom")
	if err := h.Loop(context.Background(), 1000, func(Frame) error { return boom }); !errors.Is(err, boom) {
		t.Errorf("Loop() error = %v, want %v", err, boom)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	if err := h.Loop(ctx, 1000, func(Frame) error { calls++; return nil }); err != nil {
		t.Errorf("Loop() with cancelled context error = %v", err)
	}
	if calls != 0 {
		t.Errorf("Loop() with cancelled context ran %d frames, want 0", calls)
	}
}

func TestLoopCancelledMidway(t *testing.T) {
	loader := &mockLoader{}
	b, _ := newTestBridge(loader)
	h, err := b.Init(context.Background())
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	calls := 0
	err = h.Loop(ctx, 1000, func(f Frame) error {
		calls++
		if f.Index == 1 {
			cancel()
		}
		return nil
	})
	if err != nil {
		t.Errorf("Loop() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("Loop() ran %d frames after cancel, want 2", calls)
	}
}
