// Package ui provides the interactive keyer for the morse application.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/morse/morse"
	"github.com/muesli/reflow/wordwrap"
)

const statusMessageTimeout = time.Second * 3 // how long to show notes like "unsupported"

// Player is the playback side of the keyer.
type Player interface {
	EnqueueText(ctx context.Context, text string) error
	Subscribe(l morse.Listener) morse.Subscription
	Unsubscribe(id morse.Subscription) bool
}

type (
	// lampMsg reports the tone switching on or off.
	lampMsg bool

	// sentMsg reports that a keyed character was taken by the scheduler.
	sentMsg struct {
		r   rune
		err error
	}

	statusMessageTimeoutMsg struct{ id int }
)

// line is one entered line and what was keyed for it.
type line struct {
	text     string
	notation string
}

type model struct {
	cfg    Config
	ctx    context.Context
	player Player

	keys keyMap
	help help.Model

	width int

	// Keying
	lamp     bool
	current  []rune // characters typed on the current line
	backlog  []rune // typed but not yet handed to the player
	inFlight bool   // an EnqueueText call is running
	sent     int
	history  []line

	status   string
	statusID int
	fatalErr error
}

func newModel(ctx context.Context, cfg Config, player Player) model {
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 8
	}
	return model{
		cfg:    cfg,
		ctx:    ctx,
		player: player,
		keys:   newKeyMap(),
		help:   help.New(),
		width:  80,
	}
}

// NewProgram returns a new Tea program keying to player. The lamp follows
// player's started and stopped events once Run subscribes it.
func NewProgram(ctx context.Context, cfg Config, player Player) *tea.Program {
	log.Debug("Starting keyer", "tempo", cfg.Tempo, "driver", cfg.Driver)

	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	return tea.NewProgram(newModel(ctx, cfg, player), opts...)
}

// Run starts the keyer and blocks until the user quits.
func Run(ctx context.Context, cfg Config, player Player) error {
	p := NewProgram(ctx, cfg, player)

	id := player.Subscribe(func(e morse.Event) {
		p.Send(lampMsg(e == morse.EventStarted))
	})
	defer player.Unsubscribe(id)

	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(model); ok && m.fatalErr != nil {
		return m.fatalErr
	}
	return nil
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case lampMsg:
		m.lamp = bool(msg)
		return m, nil

	case sentMsg:
		m.inFlight = false
		if msg.err != nil {
			if errors.Is(msg.err, morse.ErrChannelClosed) || errors.Is(msg.err, context.Canceled) {
				m.fatalErr = msg.err
				return m, tea.Quit
			}
			log.Warn("Keyer could not send character", "rune", string(msg.r), "error", msg.err)
			return m.setStatus(msg.err.Error())
		}
		m.sent++
		return m, m.next()

	case statusMessageTimeoutMsg:
		if msg.id == m.statusID {
			m.status = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		m.history = nil
		return m, nil

	case key.Matches(msg, m.keys.Send):
		return m.commitLine()

	case key.Matches(msg, m.keys.Erase):
		// Already keyed characters cannot be taken back, this only edits
		// the line shown and anything still waiting.
		if len(m.current) > 0 {
			m.current = m.current[:len(m.current)-1]
			if len(m.backlog) > 0 {
				m.backlog = m.backlog[:len(m.backlog)-1]
			}
		}
		return m, nil
	}

	if msg.Type != tea.KeyRunes && msg.Type != tea.KeySpace {
		return m, nil
	}

	var cmds []tea.Cmd
	for _, r := range msg.Runes {
		if !morse.Supported(r) {
			var cmd tea.Cmd
			m, cmd = m.setStatus(fmt.Sprintf("%q has no morse code", r))
			cmds = append(cmds, cmd)
			continue
		}
		m.current = append(m.current, r)
		m.backlog = append(m.backlog, r)
	}
	cmds = append(cmds, m.next())
	return m, tea.Batch(cmds...)
}

// commitLine moves the current line to the history. A word gap is keyed
// so the next line does not run into this one.
func (m model) commitLine() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(string(m.current))
	if text == "" {
		return m, nil
	}

	symbols, _ := morse.Encode(strings.ToUpper(text))
	m.history = append(m.history, line{
		text:     strings.ToUpper(text),
		notation: morse.Notation(symbols),
	})
	if over := len(m.history) - m.cfg.HistorySize; over > 0 {
		m.history = m.history[over:]
	}
	m.current = nil

	if n := len(m.backlog); n == 0 || m.backlog[n-1] != ' ' {
		m.backlog = append(m.backlog, ' ')
	}
	return m, m.next()
}

// next hands the oldest waiting character to the player. Only one call is
// in flight at a time so characters are keyed in the order they were typed.
func (m *model) next() tea.Cmd {
	if m.inFlight || len(m.backlog) == 0 {
		return nil
	}
	r := m.backlog[0]
	m.backlog = m.backlog[1:]
	m.inFlight = true

	ctx, player := m.ctx, m.player
	return func() tea.Msg {
		return sentMsg{r: r, err: player.EnqueueText(ctx, string(r))}
	}
}

func (m model) setStatus(s string) (model, tea.Cmd) {
	m.status = s
	m.statusID++
	id := m.statusID
	return m, tea.Tick(statusMessageTimeout, func(time.Time) tea.Msg {
		return statusMessageTimeoutMsg{id: id}
	})
}

func (m model) View() string {
	var b strings.Builder

	lamp := lampOffStyle("○")
	if m.lamp {
		lamp = lampOnStyle(m.cfg.LampColor)("●")
	}
	fmt.Fprintf(&b, "%s %s", titleStyle("morse"), lamp)
	if m.cfg.Tempo > 0 {
		fmt.Fprintf(&b, " %s", historyStyle(fmt.Sprintf("%v/unit", m.cfg.Tempo)))
	}
	b.WriteString("\n\n")

	for _, l := range m.history {
		b.WriteString(historyStyle(l.text))
		b.WriteRune('\n')
		if m.cfg.ShowNotation {
			b.WriteString(notationStyle(wordwrap.String(l.notation, m.width)))
			b.WriteRune('\n')
		}
	}
	if len(m.history) > 0 {
		b.WriteRune('\n')
	}

	current := strings.ToUpper(string(m.current))
	b.WriteString(m.cfg.Prompt + current + "█\n")
	if m.cfg.ShowNotation && current != "" {
		if symbols, err := morse.Encode(current); err == nil {
			b.WriteString(notationStyle(wordwrap.String(morse.Notation(symbols), m.width)))
		}
	}
	b.WriteRune('\n')

	switch {
	case m.fatalErr != nil:
		b.WriteString(errorStyle(m.fatalErr.Error()))
	case m.status != "":
		b.WriteString(statusStyle(m.status))
	}
	b.WriteString("\n\n")

	b.WriteString(m.help.View(m.keys))
	return b.String()
}
