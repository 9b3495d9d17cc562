// Package midiexport writes voiced note patterns to files
package midiexport

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/james-see/voicebridge/pkg/pattern"
)

// Format represents an output file format
type Format string

const (
	FormatMIDI    Format = "midi"
	FormatText    Format = "text"
	FormatUnknown Format = "unknown"
)

// DetectFormat detects the output format from a file extension
func DetectFormat(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".mid", ".midi":
		return FormatMIDI
	case ".txt":
		return FormatText
	default:
		return FormatUnknown
	}
}

// Exporter writes the first Cycles cycles of a pattern
type Exporter struct {
	encoder *MIDIEncoder
	cycles  int
}

// New creates an Exporter
func New(cycles int, opts ...Option) *Exporter {
	return &Exporter{encoder: NewMIDIEncoder(opts...), cycles: cycles}
}

// Export renders p in the given format
func (e *Exporter) Export(p *pattern.Pattern, format Format) ([]byte, error) {
	switch format {
	case FormatMIDI:
		return e.encoder.Encode(p, e.cycles)
	case FormatText:
		return []byte(Listing(p, e.cycles)), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// ExportFile writes p to outputPath, choosing the format from its extension
func (e *Exporter) ExportFile(p *pattern.Pattern, outputPath string) error {
	format := DetectFormat(outputPath)
	if format == FormatUnknown {
		return errors.New("cannot determine output format from filename")
	}

	data, err := e.Export(p, format)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// Listing prints one line per hap onset: its span and value
func Listing(p *pattern.Pattern, cycles int) string {
	var b strings.Builder
	for c := 0; c < cycles; c++ {
		for _, h := range p.QueryArc(pattern.Int(int64(c)), pattern.Int(int64(c+1))) {
			if h.Whole != nil && !h.HasOnset() {
				continue
			}
			fmt.Fprintf(&b, "%-14s %v\n", h.WholeOrPart(), h.Value)
		}
	}
	return b.String()
}

// GetSupportedFormats returns the formats Export understands
func GetSupportedFormats() []string {
	return []string{
		string(FormatMIDI),
		string(FormatText),
	}
}
