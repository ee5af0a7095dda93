package ui

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config contains TUI-specific configuration.
type Config struct {
	Prompt       string `env:"MORSE_PROMPT"        envDefault:"> "`
	LampColor    string `env:"MORSE_LAMP_COLOR"    envDefault:"#FFB000"`
	ShowNotation bool   `env:"MORSE_SHOW_NOTATION" envDefault:"true"`
	HistorySize  int    `env:"MORSE_HISTORY"       envDefault:"8"`
	EnableMouse  bool

	// Set by the CLI from the playback configuration
	Tempo  time.Duration
	Driver string
}

// LoadConfig reads the TUI configuration from the environment.
func LoadConfig() (Config, error) {
	return env.ParseAs[Config]()
}
