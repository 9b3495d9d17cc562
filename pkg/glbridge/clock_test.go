package glbridge

import (
	"testing"
	"time"

	"github.com/james-see/voicebridge/pkg/pattern"
)

func TestCycleClock(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		cps     float64
		elapsed time.Duration
		want    pattern.Fraction
	}{
		{"start", 0.5, 0, pattern.Int(0)},
		{"two seconds", 0.5, 2 * time.Second, pattern.Int(1)},
		{"sub-millisecond dropped", 1, 1500*time.Microsecond + 999, pattern.NewFraction(1, 1000)},
		{"long run", 0.5, 600*time.Second + 700*time.Millisecond, pattern.NewFraction(6007, 20)},
		{"a year", 2, 365 * 24 * time.Hour, pattern.Int(2 * 365 * 24 * 3600)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &CycleClock{cps: pattern.FromFloat(tt.cps), start: start}
			c.now = func() time.Time { return start.Add(tt.elapsed) }
			if got := c.Now(); !got.Eq(tt.want) {
				t.Errorf("Now() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCycleClockLateQuery(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &CycleClock{cps: pattern.FromFloat(0.5), start: start}
	c.now = func() time.Time { return start.Add(600*time.Second + 700*time.Millisecond) }

	got, err := GL(c)(pattern.MustMini("a*0.3"))()
	if err != nil {
		t.Fatalf("accessor error = %v", err)
	}
	if got != "a" {
		t.Errorf("accessor = %v, want a", got)
	}
}
