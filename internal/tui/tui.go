// Package tui provides a Bubble Tea terminal user interface for ydl-music.
//
// Questions the pipeline asks (a corrected title, edited chapter times)
// are shown as an in-place prompt instead of being read from stdin.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/handiism/ydl-music/internal/config"
	"github.com/handiism/ydl-music/internal/model"
	"github.com/handiism/ydl-music/internal/operator"
	"github.com/handiism/ydl-music/internal/pipeline"
	"github.com/handiism/ydl-music/internal/runner"
	"github.com/rs/zerolog"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	albumStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// ErrPromptCancelled is returned to the pipeline when the user dismisses
// a prompt.
var ErrPromptCancelled = errors.New("prompt cancelled by user")

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateProcessing
	StatePrompt
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   pipeline.ProgressLevel
}

type promptReply struct {
	answer string
	err    error
}

// Message types
type (
	// ProgressMsg is sent when the pipeline reports progress.
	ProgressMsg struct {
		Event pipeline.ProgressEvent
	}

	// PromptMsg is sent when the pipeline needs an answer.
	PromptMsg struct {
		Question string
		reply    chan<- promptReply
	}

	// DoneMsg is sent when all videos are processed.
	DoneMsg struct {
		Albums []*model.Album
		Err    error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// bridge lets background work reach the running program.
type bridge struct {
	mu      sync.Mutex
	program *tea.Program
}

func (b *bridge) send(msg tea.Msg) {
	b.mu.Lock()
	p := b.program
	b.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// promptOperator answers pipeline questions through the UI.
type promptOperator struct {
	send func(tea.Msg)
}

// NewOperator returns an operator.Operator that posts a PromptMsg through
// send and waits for the model to answer it.
func NewOperator(send func(tea.Msg)) operator.Operator {
	return promptOperator{send: send}
}

func (o promptOperator) Ask(ctx context.Context, question string) (string, error) {
	reply := make(chan promptReply, 1)
	o.send(PromptMsg{Question: question, reply: reply})

	select {
	case r := <-reply:
		return strings.TrimSpace(r.answer), r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state       State
	videoInput  textinput.Model
	answerInput textinput.Model
	spinner     spinner.Model
	progress    progress.Model
	settings    *config.Settings
	log         zerolog.Logger
	bridge      *bridge
	logs        []LogEntry
	albums      []*model.Album
	err         error

	// Processing context
	ctx    context.Context
	cancel context.CancelFunc

	processor *pipeline.Processor
	stats     pipeline.Stats
	total     int
	prompt    *PromptMsg

	// Options
	playlist  bool
	editTimes bool
	verbose   bool

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel(settings *config.Settings, log zerolog.Logger) Model {
	ti := textinput.New()
	ti.Placeholder = "video id or URL, several separated by spaces"
	ti.Focus()
	ti.CharLimit = 2000
	ti.Width = 60

	ai := textinput.New()
	ai.CharLimit = 500
	ai.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:       StateInput,
		videoInput:  ti,
		answerInput: ai,
		spinner:     sp,
		progress:    prog,
		settings:    settings,
		log:         log,
		bridge:      &bridge{},
		logs:        make([]LogEntry, 0),
		ctx:         ctx,
		cancel:      cancel,
		playlist:    settings.CreatePlaylist,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			m.answerPrompt("", ErrPromptCancelled)
			return m, tea.Quit

		case "esc":
			switch m.state {
			case StateInput:
				return m, tea.Quit
			case StatePrompt:
				m.answerPrompt("", ErrPromptCancelled)
				m.state = StateProcessing
				return m, nil
			case StateProcessing:
				m.cancel()
			}

		case "enter":
			switch m.state {
			case StateInput:
				ids := splitIDs(m.videoInput.Value())
				if len(ids) > 0 {
					m.state = StateProcessing
					run := m.start(ids)
					return m, tea.Batch(run, m.spinner.Tick, m.tickProgress())
				}
			case StatePrompt:
				m.answerPrompt(m.answerInput.Value(), nil)
				m.state = StateProcessing
				return m, nil
			}

		case "ctrl+p":
			if m.state == StateInput {
				m.playlist = !m.playlist
			}

		case "ctrl+e":
			if m.state == StateInput {
				m.editTimes = !m.editTimes
			}

		case "ctrl+d":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m = m.reset()
				return m, nil
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		// Filter verbose messages if not in verbose mode
		if msg.Event.Level == pipeline.LevelVerbose && !m.verbose {
			return m, nil
		}
		m.logs = append(m.logs, LogEntry{
			Message: msg.Event.Message,
			Level:   msg.Event.Level,
		})
		// Keep only last 10 logs
		if len(m.logs) > 10 {
			m.logs = m.logs[len(m.logs)-10:]
		}

	case PromptMsg:
		m.prompt = &msg
		m.state = StatePrompt
		m.answerInput.SetValue("")
		m.answerInput.Focus()
		return m, textinput.Blink

	case DoneMsg:
		m.albums = msg.Albums
		if m.processor != nil {
			m.stats = m.processor.Stats()
		}
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
		}

	case TickMsg:
		if m.processor != nil && (m.state == StateProcessing || m.state == StatePrompt) {
			m.stats = m.processor.Stats()
			var percent float64
			if m.total > 0 {
				percent = float64(m.stats.Videos) / float64(m.total)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	switch m.state {
	case StateInput:
		var cmd tea.Cmd
		m.videoInput, cmd = m.videoInput.Update(msg)
		cmds = append(cmds, cmd)
	case StatePrompt:
		var cmd tea.Cmd
		m.answerInput, cmd = m.answerInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) answerPrompt(answer string, err error) {
	if m.prompt == nil {
		return
	}
	m.prompt.reply <- promptReply{answer: answer, err: err}
	m.prompt = nil
	m.answerInput.Blur()
}

func (m Model) reset() Model {
	m.state = StateInput
	m.logs = nil
	m.albums = nil
	m.err = nil
	m.processor = nil
	m.stats = pipeline.Stats{}
	m.total = 0
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.videoInput.SetValue("")
	m.videoInput.Focus()
	return m
}

// start builds the processor and returns the command that runs it.
func (m *Model) start(ids []string) tea.Cmd {
	settings := *m.settings
	settings.CreatePlaylist = m.playlist

	send := m.bridge.send
	proc := pipeline.NewProcessor(&settings, runner.NewExecRunner(m.log), NewOperator(send), m.log,
		func(event pipeline.ProgressEvent) {
			send(ProgressMsg{Event: event})
		})

	reqs := make([]pipeline.VideoRequest, len(ids))
	for i, id := range ids {
		reqs[i] = pipeline.VideoRequest{VideoID: id, EditTimes: m.editTimes}
	}

	m.processor = proc
	m.total = len(reqs)
	ctx := m.ctx

	return func() tea.Msg {
		albums, err := proc.ProcessPlaylist(ctx, reqs)
		return DoneMsg{Albums: albums, Err: err}
	}
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

func splitIDs(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("♫ ydl-music"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Split music videos into tagged albums"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateProcessing:
		b.WriteString(m.viewProcessing())
	case StatePrompt:
		b.WriteString(m.viewPrompt())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter video:"))
	b.WriteString("\n\n")
	b.WriteString(m.videoInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Create playlist file (ctrl+p)\n", checkbox(m.playlist)))
	b.WriteString(fmt.Sprintf("  %s Edit chapter times (ctrl+e)\n", checkbox(m.editTimes)))
	b.WriteString(fmt.Sprintf("  %s Verbose output (ctrl+d)\n", checkbox(m.verbose)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Music root: %s", m.settings.MusicRoot)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewProcessing() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Processing %d video(s)...", m.total)))
	b.WriteString("\n\n")

	var percent float64
	if m.total > 0 {
		percent = float64(m.stats.Videos) / float64(m.total)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Videos: %d/%d | Tracks: %d | Written: %s",
		m.stats.Videos,
		m.total,
		m.stats.Tracks,
		humanize.Bytes(uint64(m.stats.Bytes)),
	)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewPrompt() string {
	var b strings.Builder

	if m.prompt != nil {
		b.WriteString(warningStyle.Render(m.prompt.Question))
		b.WriteString("\n\n")
	}
	b.WriteString(m.answerInput.View())
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	var albums strings.Builder
	for _, album := range m.albums {
		albums.WriteString(albumStyle.Render(fmt.Sprintf("  ♪ %s (%d tracks)", album.Identity, len(album.Tracks))))
		albums.WriteString("\n")
	}

	box := boxStyle.Render(fmt.Sprintf(
		"✨ Done!\n\n"+
			"%s\n"+
			"Videos: %d\n"+
			"Tracks: %d\n"+
			"Size: %s",
		strings.TrimRight(albums.String(), "\n"),
		m.stats.Videos,
		m.stats.Tracks,
		humanize.Bytes(uint64(m.stats.Bytes)),
	))
	b.WriteString(box)

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("✗ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case pipeline.LevelError:
			style = errorStyle
			prefix = "✗"
		case pipeline.LevelWarning:
			style = warningStyle
			prefix = "!"
		case pipeline.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case pipeline.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • ctrl+p: playlist • ctrl+e: edit times • ctrl+d: verbose • esc: quit"
	case StateProcessing:
		return "esc: cancel"
	case StatePrompt:
		return "enter: answer • esc: dismiss"
	case StateComplete, StateError:
		return "r: new run • q: quit"
	}
	return ""
}

// Run starts the TUI application.
func Run(settings *config.Settings, log zerolog.Logger) error {
	m := NewModel(settings, log)
	p := tea.NewProgram(m, tea.WithAltScreen())

	m.bridge.mu.Lock()
	m.bridge.program = p
	m.bridge.mu.Unlock()

	_, err := p.Run()
	m.cancel()
	return err
}
