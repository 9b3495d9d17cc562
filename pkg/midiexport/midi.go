package midiexport

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/james-see/voicebridge/pkg/pattern"
	"github.com/james-see/voicebridge/pkg/theory"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

var ErrNoNotes = errors.New("pattern has no notes")

// MIDIEncoder renders note patterns to Standard MIDI Files. One cycle is one
// 4/4 bar.
type MIDIEncoder struct {
	ticksPerQuarter uint16
	cps             float64
	channel         uint8
	velocity        uint8
}

// NewMIDIEncoder creates an encoder at 480 ticks per quarter and half a
// cycle per second (120 BPM).
func NewMIDIEncoder(opts ...Option) *MIDIEncoder {
	m := &MIDIEncoder{
		ticksPerQuarter: 480,
		cps:             0.5,
		velocity:        100,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Option configures a MIDIEncoder.
type Option func(*MIDIEncoder)

func WithTicksPerQuarter(tpq uint16) Option {
	return func(m *MIDIEncoder) { m.ticksPerQuarter = tpq }
}

// WithCPS sets the tempo in cycles per second.
func WithCPS(cps float64) Option { return func(m *MIDIEncoder) { m.cps = cps } }

func WithChannel(ch uint8) Option { return func(m *MIDIEncoder) { m.channel = ch & 0x0F } }

func WithVelocity(v uint8) Option { return func(m *MIDIEncoder) { m.velocity = v & 0x7F } }

// NoteEvent is a note read from or written to a MIDI file, in ticks.
type NoteEvent struct {
	Note     theory.Note
	Velocity uint8
	Start    uint32
	End      uint32
}

// Tempo returns the tempo in beats per minute.
func (m *MIDIEncoder) Tempo() float64 { return m.cps * 240 }

func (m *MIDIEncoder) ticksPerCycle() int64 { return int64(m.ticksPerQuarter) * 4 }

func (m *MIDIEncoder) tick(t pattern.Fraction) uint32 {
	return uint32(t.Mul(pattern.Int(m.ticksPerCycle())).Sam().Num())
}

// Notes queries the first cycles of p and returns its note onsets in ticks,
// ordered by start and then pitch. Haps whose values are not notes are
// skipped.
func (m *MIDIEncoder) Notes(p *pattern.Pattern, cycles int) []NoteEvent {
	end := pattern.Int(int64(cycles))
	var notes []NoteEvent
	for _, h := range p.QueryArc(pattern.Int(0), end) {
		if !h.HasOnset() {
			continue
		}
		n, ok := toNote(h.Value)
		if !ok {
			continue
		}
		notes = append(notes, NoteEvent{
			Note:     n,
			Velocity: m.velocity,
			Start:    m.tick(h.Whole.Begin),
			End:      m.tick(h.Whole.End.Min(end)),
		})
	}
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].Start != notes[j].Start {
			return notes[i].Start < notes[j].Start
		}
		return notes[i].Note < notes[j].Note
	})
	return notes
}

func toNote(v any) (theory.Note, bool) {
	switch n := v.(type) {
	case theory.Note:
		return n, n >= 0 && n <= 127
	case int:
		return theory.Note(n), n >= 0 && n <= 127
	case float64:
		return theory.Note(n), n >= 0 && n <= 127 && n == float64(int(n))
	case string:
		note, err := theory.ParseNote(n)
		return note, err == nil && note >= 0 && note <= 127
	}
	return 0, false
}

// Encode renders the first cycles of p as a single-track MIDI file.
func (m *MIDIEncoder) Encode(p *pattern.Pattern, cycles int) ([]byte, error) {
	if p == nil {
		return nil, errors.New("nil pattern")
	}
	if cycles <= 0 {
		return nil, fmt.Errorf("cycles must be positive, got %d", cycles)
	}
	notes := m.Notes(p, cycles)
	if len(notes) == 0 {
		return nil, ErrNoNotes
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(m.ticksPerQuarter)

	var track smf.Track

	// Add tempo meta event
	microsecondsPerBeat := uint32(60000000.0 / m.Tempo())
	tempoData := smf.Message([]byte{
		0xFF, 0x51, 0x03,
		byte(microsecondsPerBeat >> 16),
		byte(microsecondsPerBeat >> 8),
		byte(microsecondsPerBeat),
	})
	track.Add(0, tempoData)

	// Add time signature (4/4)
	timeSigData := smf.Message([]byte{0xFF, 0x58, 0x04, 0x04, 0x02, 0x18, 0x08})
	track.Add(0, timeSigData)

	type event struct {
		tick uint32
		on   bool
		note NoteEvent
	}
	events := make([]event, 0, 2*len(notes))
	for _, n := range notes {
		events = append(events, event{tick: n.Start, on: true, note: n}, event{tick: n.End, note: n})
	}
	// note offs sort before note ons on the same tick, so repeated notes retrigger
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return !events[i].on && events[j].on
	})

	var currentTick uint32
	for _, ev := range events {
		delta := ev.tick - currentTick
		key := uint8(ev.note.Note)
		if ev.on {
			track.Add(delta, midi.NoteOn(m.channel, key, ev.note.Velocity))
		} else {
			track.Add(delta, midi.NoteOff(m.channel, key))
		}
		currentTick = ev.tick
	}

	// Pad to a whole number of bars
	total := uint32(int64(cycles) * m.ticksPerCycle())
	if currentTick < total {
		track.Add(total-currentTick, smf.Message([]byte{0xFF, 0x06, 0x00}))
	}
	track.Close(0)

	if err := s.Add(track); err != nil {
		return nil, fmt.Errorf("failed to add track: %w", err)
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode reads the notes of a MIDI file back, in ticks, along with the file's
// tempo in BPM (120 when the file has no tempo event).
func Decode(data []byte) ([]NoteEvent, float64, error) {
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse MIDI: %w", err)
	}

	tempo := 120.0
	var notes []NoteEvent
	for _, track := range s.Tracks {
		open := map[uint8]int{}
		var currentTick uint32
		for _, ev := range track {
			currentTick += ev.Delta
			msg := ev.Message

			// Tempo meta message (FF 51 03 ...)
			if len(msg) >= 6 && msg[0] == 0xFF && msg[1] == 0x51 && msg[2] == 0x03 {
				microsecondsPerBeat := uint32(msg[3])<<16 | uint32(msg[4])<<8 | uint32(msg[5])
				if microsecondsPerBeat > 0 {
					tempo = 60000000.0 / float64(microsecondsPerBeat)
				}
				continue
			}
			if len(msg) < 3 {
				continue
			}
			status, key, velocity := msg[0], msg[1], msg[2]
			switch {
			case status >= 0x90 && status <= 0x9F && velocity > 0:
				open[key] = len(notes)
				notes = append(notes, NoteEvent{
					Note:     theory.Note(key),
					Velocity: velocity,
					Start:    currentTick,
					End:      currentTick,
				})
			case status >= 0x80 && status <= 0x8F, status >= 0x90 && status <= 0x9F:
				if i, ok := open[key]; ok {
					notes[i].End = currentTick
					delete(open, key)
				}
			}
		}
	}
	return notes, tempo, nil
}
