package viz

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/orbits/internal/automation"
	"github.com/san-kum/orbits/internal/config"
)

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// tunable is a configuration field the setup screen can edit.
type tunable struct {
	name string
	step float64
}

var tunables = []tunable{
	{"count", 1},
	{"seed", 1},
	{"g", 0.05},
	{"friction", 0.00005},
	{"bounce", 0.05},
	{"fling", 0.005},
}

type model struct {
	state, cursor int
	presets       []string
	selected      string
	cfg           *config.Config
	build         Builder
	paramCursor   int
	editing       bool
	editBuf       string
	err           error
	width, height int
	liveModel     Model
}

// NewInteractiveApp returns the preset picker. Sessions are created through
// build once a preset is started.
func NewInteractiveApp(build Builder) *model {
	return &model{
		state:   stateMenu,
		presets: config.ListPresets(),
		build:   build,
		width:   80, height: 24,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.state == stateSim {
			return m.forward(msg)
		}
		return m, nil
	default:
		if m.state == stateSim {
			return m.forward(msg)
		}
	}
	return m, nil
}

func (m model) forward(msg tea.Msg) (model, tea.Cmd) {
	newLive, cmd := m.liveModel.Update(msg)
	m.liveModel = newLive.(Model)
	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		if msg.String() == "backspace" {
			m.liveModel.Close()
			m.state = stateConfig
			return m, nil
		}
		return m.forward(msg)
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.selected = m.presets[m.cursor]
		m.cfg = config.GetPreset(m.selected)
		m.state, m.paramCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m model) configKey(msg tea.KeyMsg) (model, tea.Cmd) {
	name := tunables[m.paramCursor].name
	if m.editing {
		switch msg.String() {
		case "enter":
			if v, err := strconv.ParseFloat(m.editBuf, 64); err == nil {
				m.err = setTunable(m.cfg, name, v)
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(tunables)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		m.editing, m.editBuf = true, strconv.FormatFloat(tunableValue(m.cfg, name), 'f', -1, 64)
	case "s":
		cmd := m.start()
		return m, cmd
	case "left", "h":
		m.err = setTunable(m.cfg, name, tunableValue(m.cfg, name)-tunables[m.paramCursor].step)
	case "right", "l":
		m.err = setTunable(m.cfg, name, tunableValue(m.cfg, name)+tunables[m.paramCursor].step)
	}
	return m, nil
}

func tunableValue(cfg *config.Config, name string) float64 {
	switch name {
	case "count":
		return float64(cfg.Count)
	case "seed":
		return float64(cfg.Seed)
	case "g":
		return cfg.Physics.G
	case "friction":
		return cfg.Physics.Friction
	case "bounce":
		return cfg.Physics.Bounce
	case "fling":
		return cfg.Interaction.Fling
	}
	return 0
}

// setTunable applies v and rolls back if the result does not validate.
func setTunable(cfg *config.Config, name string, v float64) error {
	prev := cfg.Clone()
	var err error
	switch name {
	case "count":
		cfg.Count = int(v)
	case "seed":
		cfg.Seed = int64(v)
	default:
		err = automation.SetParam(cfg, name, v)
	}
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		*cfg = *prev
	}
	return err
}

func (m *model) start() tea.Cmd {
	live, err := newModel(m.cfg.Clone(), m.build, m.width, m.height)
	if err != nil {
		m.err = err
		return nil
	}
	m.liveModel = live
	m.state = stateSim
	return m.liveModel.Init()
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.liveModel.View()
	}
	return ""
}

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	subStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	idleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

func hints(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(keyStyle.Render(pairs[i]) + idleStyle.Render(" "+pairs[i+1]+"  "))
	}
	return b.String()
}

func (m model) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + titleStyle.Render("ORBITS") + "\n    " + subStyle.Render("gravitational node field") + "\n    " + subStyle.Render("─────────────────────────") + "\n\n")
	for i, name := range m.presets {
		desc := config.PresetDescriptions[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", cursorStyle.Render("▸"), activeStyle.Render(fmt.Sprintf("%-10s", name)), accentStyle.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", idleStyle.Render(fmt.Sprintf("  %-10s", name)), dimStyle.Render(desc)))
		}
	}
	b.WriteString("\n    " + hints("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m model) viewConfig() string {
	var b strings.Builder
	b.WriteString("\n\n    " + titleStyle.Render(strings.ToUpper(m.selected)) + "\n    " + subStyle.Render(config.PresetDescriptions[m.selected]) + "\n    " + subStyle.Render("─────────────────────────") + "\n\n")
	for i, t := range tunables {
		valStr := fmt.Sprintf("%10.5g", tunableValue(m.cfg, t.name))
		if m.editing && i == m.paramCursor {
			valStr = fmt.Sprintf("%10s", m.editBuf+"_")
		}
		if i == m.paramCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", cursorStyle.Render("▸"), activeStyle.Render(fmt.Sprintf("%-10s", t.name)), accentStyle.Bold(true).Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", idleStyle.Render(fmt.Sprintf("  %-10s", t.name)), dimStyle.Render(valStr)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + lipgloss.NewStyle().Foreground(CurrentTheme.Warning).Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + hints("j/k", "select", "h/l", "adjust", "s", "start", "esc", "back") + "\n")
	return b.String()
}

// RunInteractive opens the preset picker.
func RunInteractive(build Builder) error {
	final, err := tea.NewProgram(NewInteractiveApp(build), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	if fm, ok := final.(model); ok && fm.state == stateSim {
		fm.liveModel.Close()
	}
	return err
}
