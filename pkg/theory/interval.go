package theory

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidInterval = errors.New("invalid interval")

// majorSemitones holds the perfect or major size of the simple intervals 1..7.
var majorSemitones = [7]int{0, 2, 4, 5, 7, 9, 11}

// Semitones parses an interval in number-quality form ("3m", "9M", "5P",
// "11A", "5d") and returns its size in semitones.
func Semitones(iv string) (int, error) {
	iv = strings.TrimSpace(iv)
	if len(iv) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidInterval, iv)
	}
	num, err := strconv.Atoi(iv[:len(iv)-1])
	if err != nil || num < 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidInterval, iv)
	}
	simple := (num-1)%7 + 1
	octaves := (num - 1) / 7
	semis := majorSemitones[simple-1] + 12*octaves
	perfect := simple == 1 || simple == 4 || simple == 5

	switch q := iv[len(iv)-1]; {
	case q == 'P' && perfect, q == 'M' && !perfect:
	case q == 'm' && !perfect:
		semis--
	case q == 'A':
		semis++
	case q == 'd' && perfect:
		semis--
	case q == 'd':
		semis -= 2
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidInterval, iv)
	}
	return semis, nil
}

// ParseIntervals parses a space separated interval list.
func ParseIntervals(s string) ([]int, error) {
	fields := strings.Fields(s)
	out := make([]int, len(fields))
	for i, f := range fields {
		n, err := Semitones(f)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}
