// Package main provides the entry point for the morse CLI application.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/morse/morse"
	"github.com/dgnsrekt/morse/ui"
	"github.com/dgnsrekt/morse/utils"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	debug      bool
	printCode  bool
	logCloser  = func() error { return nil }

	rootCmd = &cobra.Command{
		Use:   "morse [TEXT...]",
		Short: "Play text as Morse code",
		Long: paragraph(
			fmt.Sprintf("\nPlay text as Morse code, %s!", keyword("one dit at a time")),
		),
		Example: paragraph("morse SOS\necho 'CQ CQ DE K1ABC' | morse --wpm 20\nmorse"),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

func validateOptions(cmd *cobra.Command) error {
	if cmd.Flags().Changed("config") {
		viper.SetConfigFile(utils.ExpandPath(configFile))
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config file: %w", err)
		}
	}

	debug = viper.GetBool("debug")
	closer, err := setupLog(debug)
	if err != nil {
		return err
	}
	logCloser = closer

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", used)
	}

	// Fail early on bad settings rather than halfway through a message.
	_, err = morse.LoadConfigFromViper()
	return err
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

func execute(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	cfg, err := morse.LoadConfigFromViper()
	if err != nil {
		return err
	}

	// text given as arguments
	if len(args) > 0 {
		return playAll(ctx, cfg, []string{strings.Join(args, " ")})
	}

	// if stdin is a pipe then play it line by line
	if yes, err := stdinIsPipe(); err != nil {
		return err
	} else if yes {
		return playReader(ctx, cfg, os.Stdin)
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return cmd.Help()
	}
	return runKeyer(ctx, cfg)
}

// playAll plays every line and then waits for the scheduler to finish.
func playAll(ctx context.Context, cfg morse.Config, lines []string) error {
	s, err := newSession(cfg, printCode, os.Stdout)
	if err != nil {
		return err
	}
	for _, l := range lines {
		if err := s.play(ctx, l); err != nil {
			return s.abort(err)
		}
	}
	return s.finish()
}

// playReader plays lines as they arrive on r.
func playReader(ctx context.Context, cfg morse.Config, r io.Reader) error {
	s, err := newSession(cfg, printCode, os.Stdout)
	if err != nil {
		return err
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			log.Error("Unable to read input", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return s.abort(ctx.Err())
		case l, ok := <-lines:
			if !ok {
				return s.finish()
			}
			if err := s.play(ctx, l); err != nil {
				return s.abort(err)
			}
		}
	}
}

func runKeyer(ctx context.Context, cfg morse.Config) error {
	uiCfg, err := ui.LoadConfig()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}
	uiCfg.Tempo = cfg.TempoDuration()
	uiCfg.Driver = cfg.Driver

	// The keyer validates input itself, keep typed characters as they are.
	cfg.Sanitize = false
	s, err := newSession(cfg, false, io.Discard)
	if err != nil {
		return err
	}

	if err := ui.Run(ctx, uiCfg, s.scheduler); err != nil {
		if errors.Is(err, morse.ErrChannelClosed) {
			return s.finish()
		}
		return s.abort(fmt.Errorf("unable to run tui program: %w", err))
	}
	return s.finish()
}

func main() {
	err := rootCmd.Execute()
	_ = logCloser()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	flags := rootCmd.PersistentFlags()
	// Registering the flag resets configFile, so keep what was discovered.
	flags.StringVar(&configFile, "config", configFile, "config file")
	flags.Int("tempo", 0, "unit length in milliseconds")
	flags.Int("wpm", 0, "words per minute, overrides --tempo")
	flags.Float64("frequency", 0, "tone pitch in Hz")
	flags.Float64("volume", 0, "volume level from 0.0 to 1.0")
	flags.String("driver", "", fmt.Sprintf("tone driver (%s)", strings.Join(morse.Drivers, ", ")))
	flags.Bool("debug", false, "write a debug log to the cache directory")
	flags.BoolVar(&printCode, "print", false, "print dits and dahs as they play")

	// Config bindings
	_ = viper.BindPFlag("tempo", flags.Lookup("tempo"))
	_ = viper.BindPFlag("wpm", flags.Lookup("wpm"))
	_ = viper.BindPFlag("frequency", flags.Lookup("frequency"))
	_ = viper.BindPFlag("volume", flags.Lookup("volume"))
	_ = viper.BindPFlag("driver", flags.Lookup("driver"))
	_ = viper.BindPFlag("debug", flags.Lookup("debug"))

	morse.SetDefaults()
	viper.SetDefault("debug", false)

	rootCmd.AddCommand(playCmd, encodeCmd, decodeCmd, chartCmd, configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "morse")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "morse")}, dirs...)
	}

	if c := os.Getenv("MORSE_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("morse")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("morse")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		configFile = used
		return
	}

	configFile = filepath.Join(dirs[0], "morse.yml")
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
