// Package voicing picks concrete chord voicings from interval dictionaries and
// extends patterns of chord symbols into stacked notes.
package voicing

import (
	"fmt"
	"sort"
	"sync"

	"github.com/james-see/voicebridge/pkg/theory"
)

// Dictionary maps a chord symbol to its candidate voicings, each written as
// a space separated interval list from the root.
type Dictionary map[string][]string

// Lefthand holds rootless left-hand piano voicings.
var Lefthand = Dictionary{
	"m7":   {"3m 5P 7m 9M", "7m 9M 10m 12P"},
	"7":    {"3M 6M 7m 9M", "7m 9M 10M 13M"},
	"^7":   {"3M 5P 7M 9M", "7M 9M 10M 12P"},
	"69":   {"3M 5P 6A 9M"},
	"m7b5": {"3m 5d 7m 8P", "7m 8P 10m 12d"},
	"7b9":  {"3M 6m 7m 9m", "7m 9m 10M 13m"},
	"7b13": {"3M 6m 7m 9m", "7m 9m 10M 13m"},
	"o7":   {"1P 3m 5d 6M", "5d 6M 8P 10m"},
	"7#11": {"7m 9M 11A 13A"},
	"7#9":  {"3M 7m 9A"},
	"mM7":  {"3m 5P 7M 9M", "7M 9M 10m 12P"},
	"m6":   {"3m 5P 6M 9M", "6M 9M 10m 12P"},
}

// Triads holds the three inversions of the basic triads.
var Triads = Dictionary{
	"M":   {"1P 3M 5P", "3M 5P 8P", "5P 8P 10M"},
	"m":   {"1P 3m 5P", "3m 5P 8P", "5P 8P 10m"},
	"o":   {"1P 3m 5d", "3m 5d 8P", "5d 8P 10m"},
	"aug": {"1P 3M 5A", "3M 5A 8P", "5A 8P 10M"},
}

// Guidetones holds two-note third/seventh shells.
var Guidetones = Dictionary{
	"m7":   {"3m 7m", "7m 10m"},
	"m9":   {"3m 7m", "7m 10m"},
	"7":    {"3M 7m", "7m 10M"},
	"^7":   {"3M 7M", "7M 10M"},
	"^9":   {"3M 7M", "7M 10M"},
	"69":   {"3M 6M"},
	"6":    {"3M 6M", "6M 10M"},
	"m7b5": {"3m 7m", "7m 10m"},
	"7b9":  {"3M 7m", "7m 10M"},
	"7b13": {"3M 7m", "7m 10M"},
	"o7":   {"3m 6M", "6M 10m"},
	"7#11": {"3M 7m", "7m 10M"},
	"7#9":  {"3M 7m", "7m 10M"},
	"mM7":  {"3m 7M", "7M 10m"},
	"m6":   {"3m 6M", "6M 10m"},
}

var (
	dictMu       sync.RWMutex
	dictionaries = map[string]Dictionary{
		"lefthand":   Lefthand,
		"triads":     Triads,
		"guidetones": Guidetones,
	}
)

// RegisterDictionary makes d available under name, replacing any previous
// dictionary of that name.
func RegisterDictionary(name string, d Dictionary) {
	dictMu.Lock()
	defer dictMu.Unlock()
	dictionaries[name] = d
}

// LookupDictionary returns the dictionary registered under name.
func LookupDictionary(name string) (Dictionary, bool) {
	dictMu.RLock()
	defer dictMu.RUnlock()
	d, ok := dictionaries[name]
	return d, ok
}

// DictionaryNames returns the registered dictionary names, sorted.
func DictionaryNames() []string {
	dictMu.RLock()
	defer dictMu.RUnlock()
	names := make([]string, 0, len(dictionaries))
	for name := range dictionaries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that every shape of d is a non-empty interval list.
func (d Dictionary) Validate() error {
	for _, symbol := range d.Symbols() {
		if len(d[symbol]) == 0 {
			return fmt.Errorf("chord %q has no voicings", symbol)
		}
		for _, shape := range d[symbol] {
			ivs, err := theory.ParseIntervals(shape)
			if err != nil {
				return fmt.Errorf("chord %q: %w", symbol, err)
			}
			if len(ivs) == 0 {
				return fmt.Errorf("chord %q has an empty voicing", symbol)
			}
		}
	}
	return nil
}

// Symbols returns the chord symbols of d, sorted.
func (d Dictionary) Symbols() []string {
	out := make([]string, 0, len(d))
	for s := range d {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
