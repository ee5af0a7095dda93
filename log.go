package main

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
)

func getLogFilePath() (string, error) {
	dir, err := gap.NewScope(gap.User, "morse").CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "morse.log"), nil
}

// setupLog sends warnings to stderr. With debug set everything goes to the
// log file instead, so it does not garble the keyer.
func setupLog(debug bool) (func() error, error) {
	log.SetOutput(os.Stderr)
	log.SetLevel(log.WarnLevel)
	if !debug {
		return func() error { return nil }, nil
	}

	logFile, err := getLogFilePath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil { //nolint:gosec
		return nil, err
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644) //nolint:gosec
	if err != nil {
		return nil, err
	}
	log.SetOutput(f)
	log.SetLevel(log.DebugLevel)
	log.SetReportTimestamp(true)
	log.Debug("Logging to file", "path", logFile)
	return f.Close, nil
}
