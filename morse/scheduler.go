package morse

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/morse/internal/queue"
)

// Scheduler plays symbols one at a time against a ToneDriver. A single
// goroutine drains the symbol channel; Enqueue may be called from any number
// of goroutines and never lets producers get more than one symbol ahead of
// playback.
type Scheduler struct {
	// Core components
	driver  ToneDriver
	channel *queue.Channel[Symbol]
	machine *StateMachine

	// Timing
	tempo time.Duration
	sleep func(time.Duration)

	// Listeners
	listenersMu sync.RWMutex
	listeners   map[Subscription]Listener
	nextID      Subscription

	// Accounting
	statsMu sync.Mutex
	stats   SchedulerStats

	// Termination
	done         chan struct{}
	err          error // written once before done is closed
	shutdownOnce sync.Once

	logger *log.Logger
}

// SchedulerConfig holds configuration for a Scheduler.
type SchedulerConfig struct {
	Tempo  time.Duration       // Length of one unit (a dit)
	Logger *log.Logger         // Defaults to the global logger with a "morse" prefix
	Sleep  func(time.Duration) // Waits out a symbol; defaults to time.Sleep
}

// DefaultSchedulerConfig returns a sensible default configuration.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Tempo: DefaultTempo,
	}
}

// SchedulerStats summarizes what a scheduler has played.
type SchedulerStats struct {
	Symbols  int64         // Symbols fully played
	Tones    int64         // Short and Long symbols played
	ToneTime time.Duration // Time the tone was engaged
	Elapsed  time.Duration // Total timing waited, tones and gaps
}

// NewScheduler creates a scheduler and starts its playback goroutine. The
// driver stays owned by the caller.
func NewScheduler(driver ToneDriver, cfg SchedulerConfig) (*Scheduler, error) {
	if driver == nil {
		return nil, ErrNilDriver
	}
	if cfg.Tempo <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidTempo, cfg.Tempo)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.Default().WithPrefix("morse")
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	s := &Scheduler{
		driver:    driver,
		channel:   queue.New[Symbol](),
		machine:   NewStateMachine(),
		tempo:     cfg.Tempo,
		sleep:     sleep,
		listeners: make(map[Subscription]Listener),
		done:      make(chan struct{}),
		logger:    logger,
	}

	s.machine.OnEnter(StateDraining, func(from StateType) {
		s.logger.Debug("Scheduler state changed", "from", from, "to", StateDraining, "tempo", s.tempo)
	})
	s.machine.OnEnter(StateClosed, func(from StateType) {
		s.logger.Debug("Scheduler state changed", "from", from, "to", StateClosed)
	})

	s.machine.Transition(StateDraining)
	go s.run()

	return s, nil
}

// run is the playback loop.
func (s *Scheduler) run() {
	defer close(s.done)

	for symbol := range s.channel.All(context.Background()) {
		if err := s.play(symbol); err != nil {
			s.logger.Error("Tone driver failed", "symbol", symbol, "err", err)
			s.err = err
			// Producers still waiting would otherwise hang forever.
			_ = s.channel.Close()
			break
		}
	}

	s.machine.Transition(StateClosed)
}

// play executes the timing of a single symbol.
func (s *Scheduler) play(symbol Symbol) error {
	d := symbol.Duration(s.tempo)

	if symbol.Toned() {
		if err := s.driver.Engage(); err != nil {
			return &ToneError{Err: err, Action: "engage", Symbol: symbol}
		}
		s.publish(EventStarted)

		s.sleep(d)

		if err := s.driver.Disengage(); err != nil {
			return &ToneError{Err: err, Action: "disengage", Symbol: symbol}
		}
		s.publish(EventStopped)
	} else {
		s.sleep(d)
	}

	s.statsMu.Lock()
	s.stats.Symbols++
	s.stats.Elapsed += d
	if symbol.Toned() {
		s.stats.Tones++
		s.stats.ToneTime += d
	}
	s.statsMu.Unlock()

	return nil
}

// publish calls every listener with e, in subscription order.
func (s *Scheduler) publish(e Event) {
	s.listenersMu.RLock()
	ids := slices.Sorted(maps.Keys(s.listeners))
	listeners := make([]Listener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, s.listeners[id])
	}
	s.listenersMu.RUnlock()

	for _, l := range listeners {
		l(e)
	}
}

// Enqueue appends symbols to the playback stream. It returns once every
// symbol has been picked up by the playback goroutine, fails with
// ErrChannelClosed after Shutdown, and with ctx.Err() if ctx ends first.
func (s *Scheduler) Enqueue(ctx context.Context, symbols ...Symbol) error {
	for _, symbol := range symbols {
		if !symbol.Valid() {
			return fmt.Errorf("%w: %d", ErrInvalidSymbol, int(symbol))
		}
	}

	err := s.channel.Send(ctx, symbols...)
	if errors.Is(err, queue.ErrClosed) {
		return ErrChannelClosed
	}
	return err
}

// EnqueueText encodes text and enqueues it as one sequence. Nothing is
// enqueued if the text contains an unsupported character.
func (s *Scheduler) EnqueueText(ctx context.Context, text string) error {
	symbols, err := Encode(text)
	if err != nil {
		return err
	}
	return s.Enqueue(ctx, symbols...)
}

// Subscribe registers a listener for started and stopped events.
func (s *Scheduler) Subscribe(l Listener) Subscription {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	s.nextID++
	s.listeners[s.nextID] = l
	return s.nextID
}

// Unsubscribe removes a listener. It reports whether the subscription was
// registered.
func (s *Scheduler) Unsubscribe(id Subscription) bool {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	if _, ok := s.listeners[id]; !ok {
		return false
	}
	delete(s.listeners, id)
	return true
}

// Shutdown closes the symbol channel. The playback goroutine finishes the
// symbol it is timing, if any, and exits. Pending and future Enqueue calls
// fail with ErrChannelClosed.
func (s *Scheduler) Shutdown() {
	s.shutdownOnce.Do(func() {
		s.machine.Transition(StateClosed)
		_ = s.channel.Close()
	})
}

// Done returns a channel that is closed when the playback goroutine exits.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the playback goroutine exits and returns the reason it
// stopped: nil after Shutdown, a *ToneError after a driver failure.
func (s *Scheduler) Wait() error {
	<-s.done
	return s.err
}

// Err returns the termination error without blocking. It is nil while the
// scheduler is still running.
func (s *Scheduler) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// State returns the current lifecycle state.
func (s *Scheduler) State() StateType {
	return s.machine.Current()
}

// Tempo returns the unit duration.
func (s *Scheduler) Tempo() time.Duration {
	return s.tempo
}

// Stats returns playback counters.
func (s *Scheduler) Stats() SchedulerStats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return s.stats
}
