// Package morse turns text into timed Morse symbols and plays them, in
// order, against a tone driver.
package morse

import "time"

// Symbol is a single Morse timing element.
type Symbol int

const (
	// Short is a dit: tone on for one unit.
	Short Symbol = iota
	// Long is a dah: tone on for three units.
	Long
	// IntraGap separates dits and dahs inside one character.
	IntraGap
	// InterGap separates characters.
	InterGap
	// WordGap separates words. It always follows an InterGap.
	WordGap
)

// String returns the string representation of the symbol.
func (s Symbol) String() string {
	switch s {
	case Short:
		return "short"
	case Long:
		return "long"
	case IntraGap:
		return "intra-gap"
	case InterGap:
		return "inter-gap"
	case WordGap:
		return "word-gap"
	default:
		return "unknown"
	}
}

// Valid reports whether s is one of the defined symbols.
func (s Symbol) Valid() bool {
	return s >= Short && s <= WordGap
}

// Toned reports whether the symbol drives the tone.
func (s Symbol) Toned() bool {
	return s == Short || s == Long
}

// Units returns how many tempo units the symbol lasts.
//
// InterGap is three units. WordGap is four more on top of the InterGap that
// precedes it, which gives the usual seven unit word spacing.
func (s Symbol) Units() int {
	switch s {
	case Short, IntraGap:
		return 1
	case Long, InterGap:
		return 3
	case WordGap:
		return 4
	default:
		return 0
	}
}

// Duration returns how long the symbol takes at the given tempo.
func (s Symbol) Duration(tempo time.Duration) time.Duration {
	return time.Duration(s.Units()) * tempo
}

// Duration returns the total playing time of symbols at the given tempo.
func Duration(symbols []Symbol, tempo time.Duration) time.Duration {
	var total time.Duration
	for _, s := range symbols {
		total += s.Duration(tempo)
	}
	return total
}

// TempoFromWPM converts words per minute to the length of one unit using the
// PARIS standard word of fifty units.
func TempoFromWPM(wpm int) time.Duration {
	if wpm <= 0 {
		return 0
	}
	return 1200 * time.Millisecond / time.Duration(wpm)
}
