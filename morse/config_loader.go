package morse

import (
	"fmt"

	"github.com/spf13/viper"
)

// LoadConfigFromViper loads playback configuration from Viper.
func LoadConfigFromViper() (Config, error) {
	return LoadConfig(viper.GetViper())
}

// LoadConfig loads playback configuration from v. Keys that are not set
// keep their defaults.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := DefaultConfig()

	// Timing
	if v.IsSet("tempo") {
		cfg.Tempo = v.GetInt("tempo")
	}
	if v.IsSet("wpm") {
		cfg.WPM = v.GetInt("wpm")
	}

	// Tone settings
	if v.IsSet("driver") {
		cfg.Driver = v.GetString("driver")
	}
	if v.IsSet("frequency") {
		cfg.Frequency = v.GetFloat64("frequency")
	}
	if v.IsSet("volume") {
		cfg.Volume = v.GetFloat64("volume")
	}
	if v.IsSet("sample_rate") {
		cfg.SampleRate = v.GetInt("sample_rate")
	}

	// Input handling
	if v.IsSet("sanitize") {
		cfg.Sanitize = v.GetBool("sanitize")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid morse configuration: %w", err)
	}

	return cfg, nil
}

// SetDefaults registers the default values with Viper.
func SetDefaults() {
	d := DefaultConfig()
	viper.SetDefault("tempo", d.Tempo)
	viper.SetDefault("wpm", d.WPM)
	viper.SetDefault("driver", d.Driver)
	viper.SetDefault("frequency", d.Frequency)
	viper.SetDefault("volume", d.Volume)
	viper.SetDefault("sample_rate", d.SampleRate)
	viper.SetDefault("sanitize", d.Sanitize)
}
