package glbridge

import (
	"errors"
	"testing"

	"github.com/james-see/voicebridge/pkg/pattern"
)

func TestGL(t *testing.T) {
	p := pattern.Sequence(10.0, 20.0)
	tests := []struct {
		at   pattern.Fraction
		want any
	}{
		{pattern.Int(0), 10.0},
		{pattern.NewFraction(1, 4), 10.0},
		{pattern.NewFraction(1, 2), 20.0},
		{pattern.NewFraction(7, 4), 20.0},
	}
	for _, tt := range tests {
		t.Run(tt.at.String(), func(t *testing.T) {
			got, err := GL(FixedClock{T: tt.at})(p)()
			if err != nil {
				t.Fatalf("accessor error = %v", err)
			}
			if got != tt.want {
				t.Errorf("accessor at %s = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestGLNoEvent(t *testing.T) {
	get := GL(FixedClock{T: pattern.NewFraction(1, 2)})(pattern.MustMini("1 ~"))
	if _, err := get(); !errors.Is(err, ErrNoEvent) {
		t.Errorf("accessor on a rest error = %v, want ErrNoEvent", err)
	}
}

func TestShader(t *testing.T) {
	if got := Shader("sin(x)", "+1"); got != "sin(x)" {
		t.Errorf("Shader() = %q, want %q", got, "sin(x)")
	}
	if got := Shader(); got != "" {
		t.Errorf("Shader() with no parts = %q, want empty", got)
	}
}

func TestToGL(t *testing.T) {
	clock := FixedClock{T: pattern.NewFraction(1, 3)}
	pa := pattern.Sequence(1.0, 2.0, 3.0)
	pb := pattern.Pure("b")

	params := ToGL(map[string]*pattern.Pattern{"a": pa, "b": pb}, GL(clock))
	if len(params) != 2 || params["a"] == nil || params["b"] == nil {
		t.Fatalf("ToGL() = %v, want keys a and b", params)
	}
	got, err := params["a"]()
	if err != nil {
		t.Fatal(err)
	}
	want, err := GL(clock)(pa)()
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("params[a]() = %v, GL(pa)() = %v", got, want)
	}

	u, err := params.Eval()
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	if u["a"] != 2.0 || u["b"] != "b" {
		t.Errorf("Eval() = %v", u)
	}
}

func TestToGLCustomFactory(t *testing.T) {
	calls := 0
	f := func(p *pattern.Pattern) Accessor {
		calls++
		return func() (any, error) { return "const", nil }
	}
	params := ToGL(map[string]*pattern.Pattern{"x": pattern.Silence()}, f)
	if calls != 1 {
		t.Errorf("factory called %d times, want 1", calls)
	}
	if v, _ := params["x"](); v != "const" {
		t.Errorf("params[x]() = %v, want const", v)
	}
}

func TestEvalError(t *testing.T) {
	params := Params{"bad": func() (any, error) { return nil, ErrNoEvent }}
	if _, err := params.Eval(); !errors.Is(err, ErrNoEvent) {
		t.Errorf("Eval() error = %v, want ErrNoEvent", err)
	}
}

func TestToGLNilFactory(t *testing.T) {
	params := ToGL(map[string]*pattern.Pattern{"a": pattern.Pure(1.0)}, nil)
	if _, err := params.Eval(); !errors.Is(err, ErrNoFactory) {
		t.Errorf("Eval() error = %v, want ErrNoFactory", err)
	}
}
