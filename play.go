package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/morse/internal/audio"
	"github.com/dgnsrekt/morse/internal/text"
	"github.com/dgnsrekt/morse/internal/watch"
	"github.com/dgnsrekt/morse/morse"
	"github.com/dgnsrekt/morse/utils"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	follow bool

	playCmd = &cobra.Command{
		Use:   "play FILE",
		Short: "Play a text or markdown file",
		Long: paragraph(fmt.Sprintf("\n%s a text or markdown file line by line. Markdown is reduced to its prose first. With --follow, text appended to the file is played as it arrives.",
			keyword("Play"))),
		Example: paragraph("morse play notes.md\nmorse play --follow /var/log/beacon.txt"),
		Args:    cobra.ExactArgs(1),
		RunE:    executePlay,
	}
)

// session ties a tone driver to a scheduler for one command.
type session struct {
	cfg       morse.Config
	driver    audio.Driver
	scheduler *morse.Scheduler
	started   time.Time

	echoing  bool
	echo     io.Writer
	echoMu   sync.Mutex
	toneFrom time.Time
}

func newSession(cfg morse.Config, echoing bool, echo io.Writer) (*session, error) {
	dcfg := audio.DefaultDriverConfig()
	dcfg.Name = cfg.Driver
	dcfg.Frequency = cfg.Frequency
	dcfg.Volume = cfg.Volume
	dcfg.SampleRate = cfg.SampleRate

	driver, err := audio.NewDriver(dcfg)
	if err != nil {
		if cfg.Driver == "bell" || cfg.Driver == "mock" {
			return nil, err
		}
		log.Warn("Audio is not available, using the terminal bell", "driver", cfg.Driver, "error", err)
		driver = audio.NewBellDriver(os.Stdout)
	}

	scheduler, err := morse.NewScheduler(driver, cfg.ToSchedulerConfig())
	if err != nil {
		_ = driver.Close()
		return nil, err
	}

	s := &session{
		cfg:       cfg,
		driver:    driver,
		scheduler: scheduler,
		started:   time.Now(),
		echoing:   echoing,
		echo:      echo,
	}
	if echoing {
		scheduler.Subscribe(s.echoTone)
	}
	return s, nil
}

// echoTone prints a dit or a dah when a tone ends, judged by its length.
func (s *session) echoTone(e morse.Event) {
	s.echoMu.Lock()
	defer s.echoMu.Unlock()

	switch e {
	case morse.EventStarted:
		s.toneFrom = time.Now()
	case morse.EventStopped:
		mark := "."
		if time.Since(s.toneFrom) >= 2*s.scheduler.Tempo() {
			mark = "-"
		}
		_, _ = io.WriteString(s.echo, mark)
	}
}

// play enqueues one line and returns once its last symbol is playing.
func (s *session) play(ctx context.Context, line string) error {
	if s.cfg.Sanitize {
		line = morse.Sanitize(line)
	}
	if line == "" {
		return nil
	}

	log.Debug("Playing line", "text", line)
	err := s.scheduler.EnqueueText(ctx, line+" ")

	if s.echoing {
		s.echoMu.Lock()
		_, _ = io.WriteString(s.echo, "\n")
		s.echoMu.Unlock()
	}

	if errors.Is(err, morse.ErrChannelClosed) {
		// The scheduler stopped on its own, report why.
		if serr := s.scheduler.Wait(); serr != nil {
			return serr
		}
	}
	return err
}

// finish lets the last symbol play out, then releases the driver.
func (s *session) finish() error {
	s.scheduler.Shutdown()
	err := s.scheduler.Wait()
	s.close()
	return err
}

// abort stops playback after err. A canceled context is the user's doing and
// is not reported.
func (s *session) abort(err error) error {
	serr := s.finish()
	if errors.Is(err, context.Canceled) {
		return serr
	}
	if serr != nil && !errors.Is(err, serr) {
		return errors.Join(err, serr)
	}
	return err
}

func (s *session) close() {
	if err := s.driver.Close(); err != nil {
		log.Warn("Unable to close tone driver", "error", err)
	}

	st := s.scheduler.Stats()
	log.Info("Playback finished",
		"symbols", humanize.Comma(st.Symbols),
		"tones", humanize.Comma(st.Tones),
		"tone_time", st.ToneTime.Round(time.Millisecond),
		"took", time.Since(s.started).Round(time.Millisecond))
}

func executePlay(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	cfg, err := morse.LoadConfigFromViper()
	if err != nil {
		return err
	}

	path := utils.ExpandPath(args[0])
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to open file: %w", err)
	}

	content := string(b)
	if text.IsMarkdown(path) {
		content = text.PlainText(content)
	}
	log.Debug("Playing file", "path", path, "size", humanize.Bytes(uint64(len(b))))

	s, err := newSession(cfg, printCode, os.Stdout)
	if err != nil {
		return err
	}
	for _, l := range utils.SplitLines(content) {
		if err := s.play(ctx, l); err != nil {
			return s.abort(err)
		}
	}

	if !follow {
		return s.finish()
	}

	f, err := watch.NewFollower(path, int64(len(b)))
	if err != nil {
		return s.abort(err)
	}
	return s.abort(f.Run(ctx, func(line string) error {
		return s.play(ctx, line)
	}))
}

func init() {
	playCmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep playing text appended to the file")
}
