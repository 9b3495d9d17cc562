package glbridge

import (
	"errors"
	"fmt"

	"github.com/james-see/voicebridge/pkg/pattern"
)

var (
	ErrNoEvent   = errors.New("no event at current time")
	ErrNoFactory = errors.New("no accessor factory")
)

// Accessor returns a parameter's value for the current frame.
type Accessor func() (any, error)

// AccessorFactory turns a pattern into an Accessor.
type AccessorFactory func(p *pattern.Pattern) Accessor

// GL returns a factory whose accessors query their pattern at the clock's
// current instant and yield the value of the first hap found there.
func GL(clock Clock) AccessorFactory {
	return func(p *pattern.Pattern) Accessor {
		return func() (any, error) {
			now := clock.Now()
			haps := p.QueryArc(now, now)
			if len(haps) == 0 {
				return nil, fmt.Errorf("%w: %s", ErrNoEvent, now)
			}
			return haps[0].Value, nil
		}
	}
}

// Params maps shader parameter names to accessors.
type Params map[string]Accessor

// ToGL applies f to every pattern, keeping the names. With a nil f every
// accessor fails with ErrNoFactory; Handle.ToGL supplies the handle's clock.
func ToGL(pats map[string]*pattern.Pattern, f AccessorFactory) Params {
	if f == nil {
		f = func(*pattern.Pattern) Accessor {
			return func() (any, error) { return nil, ErrNoFactory }
		}
	}
	out := make(Params, len(pats))
	for name, p := range pats {
		out[name] = f(p)
	}
	return out
}

// Eval calls every accessor once. The first failure aborts evaluation.
func (p Params) Eval() (Uniforms, error) {
	u := make(Uniforms, len(p))
	for name, get := range p {
		v, err := get()
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", name, err)
		}
		u[name] = v
	}
	return u, nil
}

// Shader is the template tag for shader source: it returns the first literal
// part only. Interpolated values are dropped, so shader sources passed
// through it must not interpolate anything.
func Shader(parts ...string) string {
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}
