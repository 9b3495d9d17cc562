package pattern

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// SyntaxError reports a malformed mini-notation string.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("mini-notation: %s at offset %d", e.Msg, e.Pos)
}

// Mini parses a mini-notation string:
//
//	a b c      sequence, squeezed into one cycle
//	~          rest
//	[a b]      subsequence
//	[a, b]     stack of sequences
//	<a b>      one element per cycle
//	a*2 a/2    speed up or slow down an element
//
// Words that parse as numbers become float64 values, other words strings.
func Mini(src string) (*Pattern, error) {
	p := &miniParser{src: src}
	pat, err := p.stack(0)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos])
	}
	return pat, nil
}

// MustMini is like Mini but panics on error. It is meant for literals.
func MustMini(src string) *Pattern {
	p, err := Mini(src)
	if err != nil {
		panic(err)
	}
	return p
}

type miniParser struct {
	src string
	pos int
}

func (p *miniParser) errorf(format string, args ...any) error {
	return &SyntaxError{Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *miniParser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *miniParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

// stack parses comma separated sequences up to the closing byte.
func (p *miniParser) stack(closing byte) (*Pattern, error) {
	var layers []*Pattern
	for {
		seq, err := p.sequence(closing)
		if err != nil {
			return nil, err
		}
		layers = append(layers, Fastcat(seq...))
		if p.peek() != ',' {
			break
		}
		p.pos++
	}
	if len(layers) == 1 {
		return layers[0], nil
	}
	return Stack(layers...), nil
}

func (p *miniParser) sequence(closing byte) ([]*Pattern, error) {
	var steps []*Pattern
	for {
		p.skipSpace()
		c := p.peek()
		if c == 0 || c == closing || c == ',' {
			return steps, nil
		}
		step, err := p.step()
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
}

func (p *miniParser) step() (*Pattern, error) {
	var pat *Pattern
	start := p.pos
	switch c := p.peek(); c {
	case '[':
		p.pos++
		inner, err := p.stack(']')
		if err != nil {
			return nil, err
		}
		if p.peek() != ']' {
			return nil, p.errorf("missing ']' for '[' at offset %d", start)
		}
		p.pos++
		pat = inner
	case '<':
		p.pos++
		seq, err := p.sequence('>')
		if err != nil {
			return nil, err
		}
		if p.peek() != '>' {
			return nil, p.errorf("missing '>' for '<' at offset %d", start)
		}
		p.pos++
		pat = Slowcat(seq...)
	case ']', '>', '*', '/':
		return nil, p.errorf("unexpected %q", c)
	default:
		word := p.word()
		if word == "" {
			return nil, p.errorf("unexpected %q", c)
		}
		pat = wordPattern(word)
	}
	return p.modifiers(pat)
}

func (p *miniParser) modifiers(pat *Pattern) (*Pattern, error) {
	for {
		c := p.peek()
		if c != '*' && c != '/' {
			return pat, nil
		}
		p.pos++
		word := p.word()
		// ParseFloat bounds the exponent before the exact parse.
		if x, err := strconv.ParseFloat(word, 64); err != nil || x <= 0 {
			return nil, p.errorf("invalid factor %q", word)
		}
		f, err := ParseFraction(word)
		if err != nil || f.Sign() <= 0 {
			return nil, p.errorf("invalid factor %q", word)
		}
		if c == '*' {
			pat = pat.Fast(f)
		} else {
			pat = pat.Slow(f)
		}
	}
}

func (p *miniParser) word() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if unicode.IsSpace(rune(c)) || strings.IndexByte("[]<>,*/", c) >= 0 {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func wordPattern(word string) *Pattern {
	if word == "~" {
		return Silence()
	}
	if f, err := strconv.ParseFloat(word, 64); err == nil {
		return Pure(f)
	}
	return Pure(word)
}
