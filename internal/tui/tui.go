// Package tui is the interactive terminal front end for a SpellJack session.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/spelljack/internal/deck"
	"github.com/lox/spelljack/internal/effects"
	"github.com/lox/spelljack/internal/game"
)

const eventBuffer = 256

// Wallet is the part of the session the TUI displays.
type Wallet interface {
	Coins() int
}

// Options configures a Model.
type Options struct {
	Engine *game.Engine
	Wallet Wallet
	Logger *log.Logger

	// Color enables ANSI colours in log lines.
	Color bool

	// RoundOptions supplies options for each new round.
	RoundOptions func() []game.RoundOption

	// OnRoundEnd is called once per resolved round, e.g. to persist the session.
	OnRoundEnd func(game.Snapshot)

	// TestMode captures log lines instead of rendering them.
	TestMode bool
}

// actionDoneMsg carries the result of an engine action
type actionDoneMsg struct {
	action string
	snap   game.Snapshot
	err    error
}

// eventMsg carries one published round event
type eventMsg struct {
	event game.GameEvent
}

// QuitMsg is a custom message to signal quit
type QuitMsg struct{}

// Model is the Bubble Tea model for a SpellJack session
type Model struct {
	ctx        context.Context
	engine     *game.Engine
	wallet     Wallet
	logger     *log.Logger
	formatter  *game.EventFormatter
	roundOpts  func() []game.RoundOption
	onRoundEnd func(game.Snapshot)

	keys        keyMap
	help        help.Model
	logViewport viewport.Model

	events  chan game.GameEvent
	snap    game.Snapshot
	busy    bool
	ended   string // id of the last round handed to onRoundEnd
	gameLog []string

	focusedPane int // 0 = log, 1 = table
	width       int
	height      int
	quitting    bool

	testMode    bool
	capturedLog []string
}

// NewModel creates a model and subscribes it to the engine's events.
func NewModel(ctx context.Context, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	roundOpts := opts.RoundOptions
	if roundOpts == nil {
		roundOpts = func() []game.RoundOption { return nil }
	}
	m := &Model{
		ctx:         ctx,
		engine:      opts.Engine,
		wallet:      opts.Wallet,
		logger:      logger.WithPrefix("tui"),
		formatter:   game.NewEventFormatter(game.FormattingOptions{Color: opts.Color, ShowScores: true}),
		roundOpts:   roundOpts,
		onRoundEnd:  opts.OnRoundEnd,
		keys:        defaultKeyMap(),
		help:        help.New(),
		logViewport: viewport.New(10, 5),
		events:      make(chan game.GameEvent, eventBuffer),
		snap:        opts.Engine.RoundState(),
		focusedPane: 1,
		testMode:    opts.TestMode,
	}
	opts.Engine.EventBus().Subscribe(game.SubscriberFunc(m.enqueue))
	return m
}

// enqueue runs on the engine's goroutine and must not block.
func (m *Model) enqueue(event game.GameEvent) {
	select {
	case m.events <- event:
	default:
		m.logger.Warn("Event buffer full, dropping event", "type", event.EventType())
	}
}

// Init starts the first round and the event listener
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.listenForEvents(), m.newRound())
}

func (m *Model) listenForEvents() tea.Cmd {
	return func() tea.Msg {
		select {
		case e := <-m.events:
			return eventMsg{event: e}
		case <-m.ctx.Done():
			return QuitMsg{}
		}
	}
}

// run executes an engine action off the UI goroutine.
func (m *Model) run(action string, fn func(context.Context) (game.Snapshot, error)) tea.Cmd {
	if m.busy {
		return nil
	}
	m.busy = true
	ctx := m.ctx
	return func() tea.Msg {
		snap, err := fn(ctx)
		return actionDoneMsg{action: action, snap: snap, err: err}
	}
}

func (m *Model) newRound() tea.Cmd {
	opts := m.roundOpts()
	return m.run("start", func(ctx context.Context) (game.Snapshot, error) {
		return m.engine.StartRound(ctx, opts...)
	})
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case QuitMsg:
		m.quitting = true
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case eventMsg:
		m.AddLogEntry(m.formatter.Format(msg.event))
		m.snap = m.engine.RoundState()
		return m, m.listenForEvents()

	case actionDoneMsg:
		m.busy = false
		m.snap = msg.snap
		if msg.err != nil {
			m.logger.Debug("Action failed", "action", msg.action, "error", msg.err)
			if errors.Is(msg.err, game.ErrBusy) {
				return m, nil
			}
		}
		if m.snap.Phase == game.PhaseResolved && m.snap.RoundID != m.ended {
			m.ended = m.snap.RoundID
			if m.onRoundEnd != nil {
				m.onRoundEnd(m.snap)
			}
		}
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	if m.focusedPane == 0 {
		var cmd tea.Cmd
		m.logViewport, cmd = m.logViewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return nil
	case key.Matches(msg, m.keys.Focus):
		m.focusedPane = 1 - m.focusedPane
		return nil
	}

	if m.focusedPane == 0 {
		var cmd tea.Cmd
		m.logViewport, cmd = m.logViewport.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, m.keys.Hit):
		return m.run("hit", m.engine.Hit)
	case key.Matches(msg, m.keys.Stand):
		return m.run("stand", m.engine.Stand)
	case key.Matches(msg, m.keys.NewRound):
		if m.snap.Active() && msg.String() == "enter" {
			return nil
		}
		return m.newRound()
	case key.Matches(msg, m.keys.Slot):
		idx, _ := slotIndex(msg.String())
		return m.useSlot(idx)
	}
	return nil
}

// useSlot answers a pending choice or activates a loadout card.
func (m *Model) useSlot(idx int) tea.Cmd {
	switch m.snap.PendingChoice {
	case effects.SuitChoice:
		if idx >= len(deck.Suits) {
			return nil
		}
		suit := deck.Suits[idx]
		return m.run("choose suit", func(ctx context.Context) (game.Snapshot, error) {
			return m.engine.ChooseSuit(ctx, suit)
		})
	case effects.CardChoice:
		return m.run("choose card", func(ctx context.Context) (game.Snapshot, error) {
			return m.engine.ChooseCriticalCard(ctx, idx)
		})
	}
	if idx >= len(m.snap.Loadout) {
		return nil
	}
	id := m.snap.Loadout[idx].Card.ID
	return m.run("activate", func(ctx context.Context) (game.Snapshot, error) {
		return m.engine.ActivateSpecialCard(ctx, id)
	})
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	table := m.renderTable()
	tableHeight := lipgloss.Height(table)
	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(blurredBorder).
		Width(max(m.width-2, 1))
	if m.focusedPane == 1 {
		tableStyle = tableStyle.BorderForeground(focusedBorder)
	}

	sidebar := m.renderSidebar()
	sidebarWidth := max(lipgloss.Width(sidebar), 24)
	paneHeight := max(m.height-tableHeight-4, 1)
	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(blurredBorder).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebar)

	m.logViewport.Width = max(m.width-sidebarWidth-4, 1)
	m.logViewport.Height = paneHeight
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(blurredBorder).
		Width(m.logViewport.Width).
		Height(paneHeight)
	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(focusedBorder)
	}

	top := lipgloss.JoinHorizontal(lipgloss.Top, logStyle.Render(m.logViewport.View()), sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Left, top, tableStyle.Render(table))
}

// renderTable renders both hands, the prompt and the help footer
func (m *Model) renderTable() string {
	s := m.snap
	var b strings.Builder

	b.WriteString(HeaderStyle.Render("SpellJack"))
	if s.Phase != game.PhaseSetup {
		b.WriteString("  ")
		b.WriteString(TargetStyle.Render(fmt.Sprintf("Target %d", s.Target)))
		b.WriteString(InfoStyle.Render(fmt.Sprintf("  deck %d", s.PlayerDeckSize)))
	}
	b.WriteString("\n\n")

	if len(s.DealerHand) > 0 {
		dealerScore := s.DealerScore
		if s.DealerHidden() {
			dealerScore = s.DealerUpScore
		}
		fmt.Fprintf(&b, "Dealer: %s %s\n", m.formatHand(s.DealerHand, s.DealerHidden()), ScoreStyle.Render(fmt.Sprint(dealerScore)))
		fmt.Fprintf(&b, "You:    %s %s\n", m.formatHand(s.PlayerHand, false), ScoreStyle.Render(fmt.Sprint(s.PlayerScore)))
		b.WriteString("\n")
	}

	b.WriteString(m.renderPrompt())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderPrompt() string {
	s := m.snap
	switch {
	case m.busy:
		return InfoStyle.Render("...")
	case s.PendingChoice == effects.SuitChoice:
		var opts []string
		for i, suit := range deck.Suits {
			opts = append(opts, fmt.Sprintf("%d %s %s", i+1, suit, s.Multipliers.Get(suit)))
		}
		return WarningStyle.Render("Choose a suit: ") + strings.Join(opts, "  ")
	case s.PendingChoice == effects.CardChoice:
		var opts []string
		for i, c := range s.CriticalOptions {
			opts = append(opts, fmt.Sprintf("%d %s", i+1, m.formatCard(c)))
		}
		return WarningStyle.Render("Choose a card: ") + strings.Join(opts, "  ")
	case s.Phase == game.PhaseResolved:
		style := ErrorStyle
		if s.Outcome.Result.PlayerWon() {
			style = SuccessStyle
		} else if s.Outcome.Result == game.ResultPush {
			style = WarningStyle
		}
		return style.Render(game.FormatOutcome(s.Outcome)) + InfoStyle.Render("  n for a new round")
	case s.LastMessage() != "":
		return s.LastMessage()
	}
	return ""
}

// renderSidebar shows coins, multipliers, active effects and the loadout
func (m *Model) renderSidebar() string {
	s := m.snap
	var b strings.Builder

	if m.wallet != nil {
		b.WriteString(WarningStyle.Render(fmt.Sprintf("Coins: %d", m.wallet.Coins())))
		b.WriteString("\n\n")
	}

	b.WriteString(InfoStyle.Render("Multipliers"))
	b.WriteString("\n")
	for _, suit := range deck.Suits {
		fmt.Fprintf(&b, "  %s %s\n", suit, s.Multipliers.Get(suit))
	}

	if len(s.ActiveEffects) > 0 {
		b.WriteString("\n")
		b.WriteString(InfoStyle.Render("Active"))
		b.WriteString("\n")
		for _, name := range s.ActiveEffects {
			fmt.Fprintf(&b, "  %s\n", name)
		}
	}

	if len(s.Loadout) > 0 {
		b.WriteString("\n")
		b.WriteString(InfoStyle.Render("Loadout"))
		b.WriteString("\n")
		for i, lc := range s.Loadout {
			line := fmt.Sprintf("  %d %s", i+1, lc.Card)
			if lc.Used {
				line = InfoStyle.Render(line + " (used)")
			} else if lc.Card.Activation != deck.Manual {
				line += InfoStyle.Render(" " + string(lc.Card.Activation))
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// formatHand formats cards with colours, masking the hole card when hidden
func (m *Model) formatHand(cards []deck.Card, hideHole bool) string {
	parts := make([]string, 0, len(cards))
	for i, c := range cards {
		if hideHole && i == 1 {
			parts = append(parts, HiddenCardStyle.Render("??"))
			continue
		}
		parts = append(parts, m.formatCard(c))
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (m *Model) formatCard(c deck.Card) string {
	switch {
	case c.Special:
		return SpecialCardStyle.Render(c.String())
	case c.IsRed():
		return RedCardStyle.Render(c.String())
	}
	return BlackCardStyle.Render(c.String())
}

// AddLogEntry adds an entry to the game log
func (m *Model) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)
	if m.testMode {
		m.capturedLog = append(m.capturedLog, entry)
		return
	}
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// GetCapturedLog returns the captured log entries (test mode only)
func (m *Model) GetCapturedLog() []string {
	if !m.testMode {
		return nil
	}
	out := make([]string, len(m.capturedLog))
	copy(out, m.capturedLog)
	return out
}

// Snapshot returns the round as last seen by the UI.
func (m *Model) Snapshot() game.Snapshot {
	return m.snap
}

// IsTestMode returns whether the model captures its log
func (m *Model) IsTestMode() bool {
	return m.testMode
}
