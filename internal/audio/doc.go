// Package audio provides tone drivers for Morse playback: a sine tone
// through oto/v3 or the beep speaker, the terminal bell, and a recording
// mock for tests.
package audio
