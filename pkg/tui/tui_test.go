package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/james-see/voicebridge/pkg/config"
	"github.com/james-see/voicebridge/pkg/midiexport"
	"github.com/james-see/voicebridge/pkg/pattern"
	"github.com/rs/zerolog"
)

func TestVoiceCycles(t *testing.T) {
	cfg := config.Default()
	cfg.RangeLow, cfg.RangeHigh = "C3", "C5"

	_, cycles, err := VoiceCycles("<Cmaj7 Dm7> G7", cfg, zerolog.Nop(), 2)
	if err != nil {
		t.Fatalf("VoiceCycles() error = %v", err)
	}
	if len(cycles) != 2 {
		t.Fatalf("got %d cycles, want 2", len(cycles))
	}

	tests := []struct {
		cycle, index int
		chord, notes string
	}{
		{0, 0, "Cmaj7", "E3 G3 B3 D4"},
		{0, 1, "G7", "F3 A3 B3 E4"},
		{1, 0, "Dm7", ""},
		{1, 1, "G7", ""},
	}
	for _, tt := range tests {
		ch := cycles[tt.cycle][tt.index]
		if ch.Chord != tt.chord {
			t.Errorf("cycle %d chord %d = %s, want %s", tt.cycle, tt.index, ch.Chord, tt.chord)
		}
		if ch.Err != nil {
			t.Errorf("%s: unexpected error %v", ch.Chord, ch.Err)
		}
		if tt.notes != "" && strings.Join(ch.Notes, " ") != tt.notes {
			t.Errorf("%s voiced to %v, want %s", ch.Chord, ch.Notes, tt.notes)
		}
		if len(ch.Notes) != 4 {
			t.Errorf("%s voiced to %d notes, want 4", ch.Chord, len(ch.Notes))
		}
	}
}

func TestVoiceCyclesUnknownChord(t *testing.T) {
	_, cycles, err := VoiceCycles("Cmaj7 Qx", config.Default(), zerolog.Nop(), 1)
	if err != nil {
		t.Fatalf("VoiceCycles() error = %v", err)
	}
	bad := cycles[0][1]
	if bad.Err == nil || len(bad.Notes) != 0 {
		t.Errorf("unknown chord = %+v, want an error and no notes", bad)
	}
	if cycles[0][0].Err != nil {
		t.Errorf("Cmaj7 error = %v", cycles[0][0].Err)
	}
}

func TestVoiceCyclesErrors(t *testing.T) {
	var syntax *pattern.SyntaxError
	if _, _, err := VoiceCycles("[Cmaj7", config.Default(), zerolog.Nop(), 1); !errors.As(err, &syntax) {
		t.Errorf("VoiceCycles() error = %v, want a SyntaxError", err)
	}

	cfg := config.Default()
	cfg.Dictionary = "nope"
	if _, _, err := VoiceCycles("Cmaj7", cfg, zerolog.Nop(), 1); err == nil {
		t.Error("VoiceCycles() with an unknown dictionary should fail")
	}
}

func TestVoiceCyclesRejectsNonPositiveCycles(t *testing.T) {
	for _, n := range []int{0, -1} {
		if _, _, err := VoiceCycles("Cmaj7", config.Default(), zerolog.Nop(), n); err == nil {
			t.Errorf("VoiceCycles() with %d cycles should fail", n)
		}
	}
}

func TestVoiceCyclesStackedChords(t *testing.T) {
	cfg := config.Default()
	cfg.RangeLow, cfg.RangeHigh = "C3", "C5"

	_, cycles, err := VoiceCycles("[Cmaj7, G7]", cfg, zerolog.Nop(), 1)
	if err != nil {
		t.Fatalf("VoiceCycles() error = %v", err)
	}
	if len(cycles[0]) != 2 {
		t.Fatalf("got %d chords, want 2", len(cycles[0]))
	}
	for _, ch := range cycles[0] {
		if len(ch.Notes) != 4 {
			t.Errorf("%s voiced to %v, want 4 notes", ch.Chord, ch.Notes)
		}
	}
	if strings.Join(cycles[0][0].Notes, " ") == strings.Join(cycles[0][1].Notes, " ") {
		t.Errorf("Cmaj7 and G7 share the notes %v", cycles[0][0].Notes)
	}
}

func TestModelNavigation(t *testing.T) {
	m := New(config.Default(), zerolog.Nop())
	m.input.SetValue("<Dm7 G7> Cmaj7")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if m.state != StateVoicing || cmd == nil {
		t.Fatalf("enter: state = %v, want StateVoicing", m.state)
	}

	next, _ = m.Update(m.performVoicing()())
	m = next.(Model)
	if m.state != StateView || len(m.cycles) != DefaultCycles {
		t.Fatalf("after voicing: state = %v, %d cycles", m.state, len(m.cycles))
	}

	keys := []struct {
		key  tea.KeyMsg
		want int
	}{
		{tea.KeyMsg{Type: tea.KeyLeft}, 0},
		{tea.KeyMsg{Type: tea.KeyRight}, 1},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("l")}, 2},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("h")}, 1},
	}
	for _, k := range keys {
		next, _ = m.Update(k.key)
		m = next.(Model)
		if m.cycle != k.want {
			t.Errorf("after %s: cycle = %d, want %d", k.key, m.cycle, k.want)
		}
	}
	if !strings.Contains(m.View(), "CYCLE 2/8") {
		t.Errorf("View() does not show the current cycle")
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	if m.state != StateInput {
		t.Errorf("esc: state = %v, want StateInput", m.state)
	}
}

func TestModelVoicingError(t *testing.T) {
	m := New(config.Default(), zerolog.Nop())
	next, _ := m.Update(voicingDoneMsg{err: errors.New("boom")})
	m = next.(Model)
	if m.state != StateInput || m.err == nil {
		t.Fatalf("state = %v err = %v", m.state, m.err)
	}
	if !strings.Contains(m.View(), "boom") {
		t.Error("View() does not show the error")
	}
}

func TestModelExport(t *testing.T) {
	cfg := config.Default()
	m := New(cfg, zerolog.Nop())
	m.input.SetValue("Cmaj7 G7")
	next, _ := m.Update(m.performVoicing()())
	m = next.(Model)
	m.OutputPath = filepath.Join(t.TempDir(), "out.mid")

	next, _ = m.Update(m.performExport()())
	m = next.(Model)
	if m.state != StateResult || m.err != nil {
		t.Fatalf("export: state = %v err = %v", m.state, m.err)
	}
	if m.outputFile != m.OutputPath {
		t.Errorf("outputFile = %s, want %s", m.outputFile, m.OutputPath)
	}
	data, err := os.ReadFile(m.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	notes, _, err := midiexport.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 8*DefaultCycles {
		t.Errorf("exported %d notes, want %d", len(notes), 8*DefaultCycles)
	}
}

func TestModelExportMatchesView(t *testing.T) {
	cfg := config.Default()
	m := New(cfg, zerolog.Nop())
	m.input.SetValue("Dm7 G7 Cmaj7")
	next, _ := m.Update(m.performVoicing()())
	m = next.(Model)

	var shown []string
	for _, chords := range m.cycles {
		for _, ch := range chords {
			shown = append(shown, ch.Notes...)
		}
	}

	// exporting twice must not drift from what is on screen
	for i := 0; i < 2; i++ {
		m.OutputPath = filepath.Join(t.TempDir(), "out.mid")
		next, _ = m.Update(m.performExport()())
		m = next.(Model)
		if m.err != nil {
			t.Fatalf("export %d: %v", i, m.err)
		}
		data, err := os.ReadFile(m.OutputPath)
		if err != nil {
			t.Fatal(err)
		}
		notes, _, err := midiexport.Decode(data)
		if err != nil {
			t.Fatal(err)
		}
		saved := make([]string, len(notes))
		for j, n := range notes {
			saved[j] = n.Note.String()
		}
		if strings.Join(saved, " ") != strings.Join(shown, " ") {
			t.Errorf("export %d saved %v, view shows %v", i, saved, shown)
		}
	}
}
