package utils

import (
	"path/filepath"
	"slices"
	"testing"

	"github.com/mitchellh/go-homedir"
)

func TestExpandPath(t *testing.T) {
	t.Setenv("MORSE_TEST_DIR", "/tmp/morse")

	home, err := homedir.Dir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		in       string
		expected string
	}{
		{"~/morse.yml", filepath.Join(home, "morse.yml")},
		{"$MORSE_TEST_DIR/morse.yml", "/tmp/morse/morse.yml"},
		{"/etc/morse.yml", "/etc/morse.yml"},
	}

	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.expected {
			t.Errorf("ExpandPath(%q): expected %q, got %q", tt.in, tt.expected, got)
		}
	}
}

func TestSplitLines(t *testing.T) {
	got := SplitLines("CQ CQ\r\n\n  \nDE K1ABC\n")
	expected := []string{"CQ CQ", "DE K1ABC"}
	if !slices.Equal(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
	if SplitLines("") != nil {
		t.Error("Expected no lines for empty input")
	}
}
