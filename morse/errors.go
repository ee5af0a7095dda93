package morse

import (
	"errors"
	"fmt"
)

// Common errors for the morse package.
var (
	// Channel errors
	ErrChannelClosed = errors.New("symbol channel is closed")
	ErrInvalidSymbol = errors.New("invalid symbol")

	// Encoder errors
	ErrUnsupportedCharacter = errors.New("character is not in the morse alphabet")
	ErrInvalidNotation      = errors.New("invalid morse notation")

	// Driver errors
	ErrToneDriver = errors.New("tone driver failure")
	ErrNilDriver  = errors.New("tone driver is nil")

	// Configuration errors
	ErrInvalidTempo  = errors.New("tempo must be positive")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ToneError reports a tone driver failure during playback. The scheduler
// stops when one occurs, because a symbol cannot be resumed halfway through
// its timing.
type ToneError struct {
	Err    error  // The error returned by the driver
	Action string // "engage" or "disengage"
	Symbol Symbol // Symbol being played
}

// Error implements the error interface.
func (e *ToneError) Error() string {
	return fmt.Sprintf("%s: %s while playing %s: %v", ErrToneDriver, e.Action, e.Symbol, e.Err)
}

// Unwrap returns both the driver error and ErrToneDriver so either can be
// matched with errors.Is.
func (e *ToneError) Unwrap() []error {
	return []error{ErrToneDriver, e.Err}
}

// EncodeError reports a character the encoder cannot represent.
type EncodeError struct {
	Rune     rune // The offending character
	Position int  // Rune index in the input
}

// Error implements the error interface.
func (e *EncodeError) Error() string {
	return fmt.Sprintf("character %q (%d) at position %d is not in the morse alphabet", e.Rune, e.Rune, e.Position)
}

// Unwrap returns ErrUnsupportedCharacter.
func (e *EncodeError) Unwrap() error {
	return ErrUnsupportedCharacter
}

// IsRecoverableError checks if an error leaves the scheduler usable.
func IsRecoverableError(err error) bool {
	if err == nil {
		return true
	}

	switch {
	case errors.Is(err, ErrChannelClosed),
		errors.Is(err, ErrToneDriver),
		errors.Is(err, ErrNilDriver),
		errors.Is(err, ErrInvalidTempo):
		return false
	}

	// Encoder errors and canceled waits only affect the caller
	return true
}
