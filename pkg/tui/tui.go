// Package tui provides a terminal user interface for voicebridge
package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/james-see/voicebridge/pkg/config"
	"github.com/james-see/voicebridge/pkg/midiexport"
	"github.com/james-see/voicebridge/pkg/pattern"
	"github.com/james-see/voicebridge/pkg/voicing"
	"github.com/rs/zerolog"
)

// Acid-inspired color scheme
var (
	acidGreen  = lipgloss.Color("#39FF14")
	acidYellow = lipgloss.Color("#FFFF00")
	silverGray = lipgloss.Color("#C0C0C0")
	darkGray   = lipgloss.Color("#333333")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(acidGreen).
			Background(darkGray).
			Padding(0, 2).
			MarginBottom(1)

	chordStyle = lipgloss.NewStyle().
			Foreground(acidGreen).
			Bold(true).
			Width(10)

	spanStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Width(14)

	notesStyle = lipgloss.NewStyle().
			Foreground(silverGray)

	statusStyle = lipgloss.NewStyle().
			Foreground(acidYellow).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(acidGreen).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(acidGreen).
			Padding(1, 2)
)

// State represents the current TUI state
type State int

const (
	StateInput State = iota
	StateVoicing
	StateView
	StateResult
)

// DefaultCycles is how many cycles are voiced for browsing.
const DefaultCycles = 8

// ChordView is one chord of a cycle and the notes it was voiced to. Err is set
// when the chord could not be voiced.
type ChordView struct {
	Span  string
	Chord string
	Notes []string
	Err   error
}

// Model represents the TUI model
type Model struct {
	state      State
	input      textinput.Model
	spinner    spinner.Model
	cfg        config.Config
	log        zerolog.Logger
	cycles     [][]ChordView
	cycle      int
	voiced     *voicing.Voiced
	OutputPath string
	outputFile string
	err        error
	width      int
	height     int
}

// voicingDoneMsg signals the pattern was voiced
type voicingDoneMsg struct {
	voiced *voicing.Voiced
	cycles [][]ChordView
	err    error
}

// exportDoneMsg signals export completion
type exportDoneMsg struct {
	outputFile string
	err        error
}

// New creates a new TUI model
func New(cfg config.Config, log zerolog.Logger) Model {
	ti := textinput.New()
	ti.Placeholder = "<Dm7 G7> Cmaj7"
	ti.Prompt = "▸ "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(acidGreen)
	ti.CharLimit = 256
	ti.Width = 60
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(acidGreen)

	return Model{
		state:      StateInput,
		input:      ti,
		spinner:    s,
		cfg:        cfg,
		log:        log,
		OutputPath: "voicings.mid",
	}
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateInput:
			return m.updateInput(msg)
		case StateView:
			return m.updateView(msg)
		case StateResult:
			return m.updateResult(msg)
		}
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case voicingDoneMsg:
		if msg.err != nil {
			m.state = StateInput
			m.err = msg.err
			return m, nil
		}
		m.state = StateView
		m.err = nil
		m.voiced = msg.voiced
		m.cycles = msg.cycles
		m.cycle = 0
		return m, nil

	case exportDoneMsg:
		m.state = StateResult
		m.outputFile = msg.outputFile
		m.err = msg.err
		return m, nil
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if strings.TrimSpace(m.input.Value()) == "" {
			return m, nil
		}
		m.state = StateVoicing
		return m, tea.Batch(m.spinner.Tick, m.performVoicing())
	case "esc", "ctrl+c":
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "h":
		if m.cycle > 0 {
			m.cycle--
		}
	case "right", "l":
		if m.cycle < len(m.cycles)-1 {
			m.cycle++
		}
	case "s":
		return m, m.performExport()
	case "e", "esc":
		m.state = StateInput
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.state = StateView
		m.err = nil
		m.outputFile = ""
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) performVoicing() tea.Cmd {
	text, cfg, log := m.input.Value(), m.cfg, m.log
	return func() tea.Msg {
		voiced, cycles, err := VoiceCycles(text, cfg, log, DefaultCycles)
		return voicingDoneMsg{voiced: voiced, cycles: cycles, err: err}
	}
}

func (m Model) performExport() tea.Cmd {
	voiced, path := m.voiced, m.OutputPath
	exp := midiexport.New(len(m.cycles),
		midiexport.WithCPS(m.cfg.CPS),
		midiexport.WithTicksPerQuarter(m.cfg.TicksPerQuarter),
	)
	return func() tea.Msg {
		voiced.Reset()
		if err := exp.ExportFile(voiced.Pattern(), path); err != nil {
			return exportDoneMsg{err: err}
		}
		return exportDoneMsg{outputFile: path}
	}
}

// VoiceCycles parses a chord pattern, voices its first cycles with the
// configured settings and groups them by chord. The cycles are voiced in one
// query from cycle 0, the same traversal an export makes after Reset, so the
// returned Voiced reproduces the listed notes.
func VoiceCycles(text string, cfg config.Config, log zerolog.Logger, cycles int) (*voicing.Voiced, [][]ChordView, error) {
	if cycles <= 0 {
		return nil, nil, fmt.Errorf("cycles must be positive, got %d", cycles)
	}
	src, err := pattern.Mini(text)
	if err != nil {
		return nil, nil, err
	}
	opts, err := cfg.VoicingOptions(log)
	if err != nil {
		return nil, nil, err
	}
	voiced := voicing.NewVoicings(src, opts...)

	out := make([][]ChordView, cycles)
	span := pattern.Span(pattern.Int(0), pattern.Int(int64(cycles)))
	for _, c := range voiced.QueryChords(span) {
		h := c.Hap
		if h.Whole != nil && !h.HasOnset() {
			continue
		}
		i := h.Part.Begin.Sam().Num()
		if i < 0 || i >= int64(cycles) {
			continue
		}
		out[i] = append(out[i], ChordView{
			Span:  h.WholeOrPart().String(),
			Chord: fmt.Sprint(h.Value),
			Notes: c.Notes.Names(),
			Err:   c.Err,
		})
	}
	voiced.Reset()
	return voiced, out, nil
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(asciiLogo())
	s.WriteString("\n")

	switch m.state {
	case StateInput:
		s.WriteString(m.viewInput())
	case StateVoicing:
		s.WriteString(m.viewVoicing())
	case StateView:
		s.WriteString(m.viewCycle())
	case StateResult:
		s.WriteString(m.viewResult())
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render(m.help()))

	return s.String()
}

func (m Model) help() string {
	switch m.state {
	case StateView:
		return "←/→: cycle • s: save MIDI • e: edit • q: quit"
	case StateResult:
		return "enter: back • q: quit"
	default:
		return "enter: voice • esc: quit"
	}
}

func (m Model) viewInput() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" CHORD PATTERN "))
	s.WriteString("\n\n")
	s.WriteString(m.input.View())
	s.WriteString("\n")
	s.WriteString(statusStyle.Render(fmt.Sprintf("%s voicings, %s..%s, %s",
		m.cfg.Dictionary, m.cfg.RangeLow, m.cfg.RangeHigh, m.cfg.Picker)))
	if m.err != nil {
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s", m.err.Error())))
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewVoicing() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" VOICING "))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("%s Voicing %s...\n", m.spinner.View(), m.input.Value()))

	return boxStyle.Render(s.String())
}

func (m Model) viewCycle() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(fmt.Sprintf(" CYCLE %d/%d ", m.cycle+1, len(m.cycles))))
	s.WriteString("\n\n")

	if m.cycle < len(m.cycles) {
		chords := m.cycles[m.cycle]
		if len(chords) == 0 {
			s.WriteString(notesStyle.Render("(rest)"))
			s.WriteString("\n")
		}
		for _, ch := range chords {
			s.WriteString(spanStyle.Render(ch.Span))
			s.WriteString(chordStyle.Render(ch.Chord))
			if ch.Err != nil {
				s.WriteString(errorStyle.Render("✗ " + ch.Err.Error()))
			} else {
				s.WriteString(notesStyle.Render(strings.Join(ch.Notes, " ")))
			}
			s.WriteString("\n")
		}
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewResult() string {
	var s strings.Builder

	if m.err != nil {
		s.WriteString(titleStyle.Render(" ERROR "))
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ Export failed: %s", m.err.Error())))
	} else {
		s.WriteString(titleStyle.Render(" SUCCESS "))
		s.WriteString("\n\n")
		s.WriteString(successStyle.Render("✓ Export complete!"))
		s.WriteString("\n\n")
		s.WriteString(fmt.Sprintf("Pattern: %s\n", m.input.Value()))
		s.WriteString(fmt.Sprintf("Output:  %s", filepath.Base(m.outputFile)))
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Press enter to continue"))

	return boxStyle.Render(s.String())
}

func asciiLogo() string {
	logo := `
 __     _____ ___ ____ _____ ____  ____  ___ ____   ____ _____
 \ \   / / _ \_ _/ ___| ____| __ )|  _ \|_ _|  _ \ / ___| ____|
  \ \ / / | | | | |   |  _| |  _ \| |_) || || | | | |  _|  _|
   \ V /| |_| | | |___| |___| |_) |  _ < | || |_| | |_| | |___
    \_/  \___/___\____|_____|____/|_| \_\___|____/ \____|_____|
`
	return lipgloss.NewStyle().Foreground(acidGreen).Render(logo)
}

// Run starts the TUI application
func Run(cfg config.Config, log zerolog.Logger) error {
	p := tea.NewProgram(New(cfg, log), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
