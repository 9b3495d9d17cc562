// Package headless is a shader runtime that draws nothing. It records the
// uniforms of every frame, which is enough to preview parameter patterns in a
// terminal and to test code driving a glbridge.Handle.
//
// Importing the package registers it under URL.
package headless

import (
	"errors"
	"sort"
	"sync"

	"github.com/james-see/voicebridge/pkg/glbridge"
	"github.com/james-see/voicebridge/pkg/surface"
	"github.com/rs/zerolog"
)

// URL is the runtime URL the default module is registered under.
const URL = "headless://recorder"

var ErrClosed = errors.New("headless renderer closed")

func init() {
	glbridge.Register(URL, &Module{Limit: 1024})
}

// Module binds Recorders. Limit caps the frames kept per recorder; zero keeps
// all of them.
type Module struct {
	Limit   int
	Log     zerolog.Logger
	OnFrame func(canvas *surface.Canvas, u glbridge.Uniforms)
}

func (m *Module) Bind(canvas *surface.Canvas) (glbridge.Renderer, error) {
	if canvas == nil {
		return nil, errors.New("headless: nil canvas")
	}
	m.Log.Debug().Str("canvas", canvas.String()).Msg("headless renderer bound")
	return &Recorder{module: m, canvas: canvas}, nil
}

// Recorder is the renderer returned by Module.Bind.
type Recorder struct {
	module *Module
	canvas *surface.Canvas

	mu     sync.Mutex
	frames []glbridge.Uniforms
	count  int
	closed bool
}

func (r *Recorder) Render(u glbridge.Uniforms) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	frame := make(glbridge.Uniforms, len(u))
	for k, v := range u {
		frame[k] = v
	}
	r.frames = append(r.frames, frame)
	if limit := r.module.Limit; limit > 0 && len(r.frames) > limit {
		r.frames = r.frames[len(r.frames)-limit:]
	}
	r.count++
	r.mu.Unlock()

	if r.module.OnFrame != nil {
		r.module.OnFrame(r.canvas, frame)
	}
	return nil
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Frames returns the recorded frames, oldest first.
func (r *Recorder) Frames() []glbridge.Uniforms {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]glbridge.Uniforms(nil), r.frames...)
}

// Count returns how many frames were rendered, including dropped ones.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Keys returns the sorted uniform names of a frame.
func Keys(u glbridge.Uniforms) []string {
	keys := make([]string, 0, len(u))
	for k := range u {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
