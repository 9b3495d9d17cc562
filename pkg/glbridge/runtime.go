package glbridge

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/james-see/voicebridge/pkg/surface"
)

// DefaultRuntimeURL is where the SwissGL shader runtime is published.
const DefaultRuntimeURL = "https://jarmitage.github.io/swissgl/swissgl.mjs"

var ErrModuleNotFound = errors.New("shader runtime module not found")

// Uniforms are the values handed to the renderer for one frame.
type Uniforms map[string]any

// Renderer draws one frame per Render call.
type Renderer interface {
	Render(u Uniforms) error
	Close() error
}

// Module is a loaded shader runtime. Bind initialises it against a canvas.
type Module interface {
	Bind(canvas *surface.Canvas) (Renderer, error)
}

// ModuleFunc adapts a function to Module.
type ModuleFunc func(canvas *surface.Canvas) (Renderer, error)

func (f ModuleFunc) Bind(canvas *surface.Canvas) (Renderer, error) { return f(canvas) }

// Loader resolves a runtime URL to a module.
type Loader interface {
	Load(ctx context.Context, url string) (Module, error)
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Module{}
)

// Register makes m loadable from url. Runtime packages call it from init,
// so importing them for side effects is enough to make them available.
func Register(url string, m Module) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if m == nil {
		panic("glbridge: Register module is nil")
	}
	registry[url] = m
}

// RegistryLoader loads modules from the Register table.
type RegistryLoader struct{}

func (RegistryLoader) Load(ctx context.Context, url string) (Module, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	m, ok := registry[url]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, url)
	}
	return m, nil
}
