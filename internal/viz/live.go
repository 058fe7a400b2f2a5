package viz

import (
	"context"
	"fmt"
	"image"
	"math"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/orbits/internal/config"
	"github.com/san-kum/orbits/internal/dynamo"
	"github.com/san-kum/orbits/internal/projector"
	"github.com/san-kum/orbits/internal/sim"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	trailCapacity   = 40

	// DotScale is the number of viewport pixels covered by one braille dot.
	DotScale = 5.0

	panelWidth = 46
	padX, padY = 2, 1
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(padY, padX)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(45)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

// Builder turns a configuration into a fresh session. The CLI uses it to
// attach exporters before the session starts.
type Builder func(cfg *config.Config) (*sim.Session, error)

// Model renders one live session on a braille canvas and forwards mouse
// drags to it as pointer events.
type Model struct {
	cfg     *config.Config
	build   Builder
	session *sim.Session

	width, height int
	canvas        *Canvas
	trails        map[dynamo.NodeID][]image.Point
	energyHistory []float64

	showEdges bool
	showHalos bool
	showHelp  bool
	recording bool
	frames    []*image.Paletted
	status    string
	err       error

	now func() time.Time
}

// NewModel builds and starts a session for cfg on the default canvas.
func NewModel(cfg *config.Config, build Builder) (Model, error) {
	return newModel(cfg, build, 0, 0)
}

// newModel sizes the canvas for a termW x termH terminal before the session
// is built, so the first layout fills the visible viewport. Zero sizes keep
// the default canvas.
func newModel(cfg *config.Config, build Builder, termW, termH int) (Model, error) {
	m := Model{
		cfg:       cfg,
		build:     build,
		width:     width,
		height:    height,
		canvas:    NewCanvas(width, height),
		trails:    make(map[dynamo.NodeID][]image.Point),
		showEdges: true,
		showHalos: true,
		now:       time.Now,
	}
	if termW > 0 && termH > 0 {
		m.fitCanvas(termW, termH)
	}
	if err := m.start(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func (m *Model) start() error {
	s, err := m.build(m.cfg.WithViewport(m.viewportSize()))
	if err != nil {
		return err
	}
	s.Resize(m.viewportSize())
	fps := m.cfg.FPS
	if fps <= 0 {
		fps = config.DefaultFPS
	}
	if err := s.Start(context.Background(), fps); err != nil {
		return err
	}
	m.session = s
	return nil
}

// Session exposes the running session.
func (m Model) Session() *sim.Session { return m.session }

// Close stops the session loop.
func (m Model) Close() {
	if m.session != nil {
		m.session.Stop()
	}
}

func (m Model) viewportSize() (float64, float64) {
	w, h := m.canvas.Dots()
	return float64(w) * DotScale, float64(h) * DotScale
}

// cellToWorld maps a terminal cell to the viewport pixel at its centre.
func cellToWorld(x, y int) dynamo.Vec2 {
	col := x - padX
	row := y - padY
	return dynamo.Vec2{
		X: (float64(col)*2 + 1) * DotScale,
		Y: (float64(row)*4 + 2) * DotScale,
	}
}

func worldToDot(p dynamo.Vec2) (int, int) {
	return int(math.Round(p.X / DotScale)), int(math.Round(p.Y / DotScale))
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.Close()
			return m, tea.Quit
		case " ":
			m.session.SetPaused(!m.session.Paused())
		case "r":
			m.reset()
		case "e":
			m.showEdges = !m.showEdges
		case "h":
			m.showHalos = !m.showHalos
		case "esc":
			m.session.Cancel()
		case "g":
			m.toggleRecording()
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			NextTheme()
		}
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case TickMsg:
		m.sample()
		m.draw()
		if m.recording {
			m.frames = append(m.frames, canvasImage(m.canvas))
		}
		return m, tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	p := cellToWorld(msg.X, msg.Y)
	t := m.now()
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.session.PointerDownAt(p, t)
		}
	case tea.MouseActionMotion:
		m.session.PointerMove(p, t)
	case tea.MouseActionRelease:
		m.session.PointerUp(p, t)
	}
}

func (m *Model) resize(termW, termH int) {
	m.fitCanvas(termW, termH)
	m.session.Resize(m.viewportSize())
}

func (m *Model) fitCanvas(termW, termH int) {
	cols := max(termW-panelWidth-2*padX, 10)
	rows := max(termH-2*padY-1, 5)
	m.width, m.height = cols, rows
	m.canvas = NewCanvas(cols, rows)
}

// sample records the kinetic energy of the current frame.
func (m *Model) sample() {
	frame := m.session.Frame()
	m.energyHistory = append(m.energyHistory, frameEnergy(frame))
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}
	for _, n := range frame.Nodes {
		x, y := worldToDot(dynamo.Vec2{X: n.X, Y: n.Y})
		trail := append(m.trails[n.ID], image.Pt(x, y))
		if len(trail) > trailCapacity {
			trail = trail[1:]
		}
		m.trails[n.ID] = trail
	}
}

func frameEnergy(f projector.Frame) float64 {
	var ke float64
	for _, n := range f.Nodes {
		ke += 0.5 * n.Mass * n.Speed * n.Speed
	}
	return ke
}

// reset rebuilds the session from the configuration.
func (m *Model) reset() {
	paused := m.session.Paused()
	m.session.Stop()
	m.energyHistory = m.energyHistory[:0]
	m.trails = make(map[dynamo.NodeID][]image.Point)
	if err := m.start(); err != nil {
		m.err = err
		return
	}
	m.session.SetPaused(paused)
	m.err = nil
}

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.frames = make([]*image.Paletted, 0)
		m.status = ""
		return
	}
	m.recording = false
	path := fmt.Sprintf("orbits_%s.gif", m.now().Format("20060102_150405"))
	if err := SaveGIF(path, m.frames); err != nil {
		m.status = "gif: " + err.Error()
	} else if len(m.frames) > 0 {
		m.status = "saved " + path
	}
	m.frames = nil
}

func (m *Model) draw() {
	m.canvas.Clear()
	frame := m.session.Frame()
	theme := CurrentTheme

	if m.showHalos {
		m.canvas.Pen(theme.Halo)
		for _, n := range frame.Nodes {
			x, y := worldToDot(dynamo.Vec2{X: n.X, Y: n.Y})
			m.canvas.DrawCircle(x, y, int(n.FieldRadius/DotScale))
		}
	}

	if m.showEdges {
		pullCap := m.cfg.Render.PullCap
		for _, e := range frame.Edges {
			a, okA := frame.Node(e.From)
			b, okB := frame.Node(e.To)
			if !okA || !okB {
				continue
			}
			m.canvas.Pen(Blend(theme.Halo, theme.Edge, e.Pull/pullCap))
			x0, y0 := worldToDot(dynamo.Vec2{X: a.X, Y: a.Y})
			x1, y1 := worldToDot(dynamo.Vec2{X: b.X, Y: b.Y})
			m.canvas.DrawLine(x0, y0, x1, y1)
		}
	}

	m.canvas.Pen(theme.Trail)
	for _, trail := range m.trails {
		for _, p := range trail {
			m.canvas.Set(p.X, p.Y)
		}
	}

	for _, n := range frame.Nodes {
		x, y := worldToDot(dynamo.Vec2{X: n.X, Y: n.Y})
		r := int(n.Radius / DotScale)
		if n.Captured {
			m.canvas.Pen(theme.Edge)
			m.canvas.DrawCircle(x, y, r+2)
		}
		m.canvas.Pen(n.Color)
		m.canvas.FillCircle(x, y, r)
	}
	m.canvas.Pen("")
}

func (m Model) View() string {
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render(GradientText(strings.ToUpper(m.presetName()), CurrentTheme.Primary, CurrentTheme.Accent)) + "\n")

	status := StatusRunning.Render("RUNNING")
	if m.session.Paused() {
		status = StatusPaused.Render("PAUSED")
	}
	if m.recording {
		status += " " + StatusRecording.Render(fmt.Sprintf("REC %d", len(m.frames)))
	}
	s.WriteString(status + "\n\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Kinetic energy"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	energy := 0.0
	if len(m.energyHistory) > 0 {
		energy = m.energyHistory[len(m.energyHistory)-1]
	}
	w, h := m.session.Bounds().Extent()
	s.WriteString(labelStyle.Render("Steps") + valueStyle.Render(fmt.Sprintf("%d", m.session.Steps())) + "\n")
	s.WriteString(labelStyle.Render("Energy") + valueStyle.Render(fmt.Sprintf("%.3f", energy)) + "\n")
	s.WriteString(labelStyle.Render("Viewport") + valueStyle.Render(fmt.Sprintf("%.0fx%.0f", w, h)) + "\n")

	s.WriteString("\nNODES\n")
	frame := m.session.Frame()
	for _, n := range frame.Nodes {
		s.WriteString(nodeReadout(n) + "\n")
	}

	if m.err != nil {
		s.WriteString("\n" + lipgloss.NewStyle().Foreground(CurrentTheme.Warning).Render(m.err.Error()) + "\n")
	} else if m.status != "" {
		s.WriteString("\n" + Subtle.Render(m.status) + "\n")
	}

	s.WriteString(helpStyle.Render("\n" + Separator(30) + "\nSP:Pause R:Reset Q:Quit\nT:Theme  G:Record ?:Help\nE:Edges  H:Halos Drag:Fling"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume stepping    ║
║  R        - Rebuild from config      ║
║  Q        - Quit                     ║
║  Mouse    - Drag a node, release to  ║
║             fling it                 ║
║  Esc      - Drop the held node       ║
║  E / H    - Toggle edges / halos     ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

func (m Model) presetName() string {
	if len(m.cfg.Nodes) > 0 {
		return "custom"
	}
	if m.cfg.Preset == "" {
		return config.DefaultPreset
	}
	return m.cfg.Preset
}

// nodeReadout formats one node as "A  M=1.00  V=0.52".
func nodeReadout(n projector.NodeView) string {
	label := lipgloss.NewStyle().Foreground(lipgloss.Color(n.Color)).Bold(n.Captured).Render(fmt.Sprintf("%-3s", n.Label))
	return label + MetricLabel.Render(" M=") + MetricValue.Render(fmt.Sprintf("%.2f", n.Mass)) +
		MetricLabel.Render("  V=") + MetricValue.Render(fmt.Sprintf("%.2f", n.Speed))
}

// Run starts the live view for cfg and blocks until the user quits.
func Run(cfg *config.Config, build Builder) error {
	termW, termH, err := term.GetSize(os.Stdout.Fd())
	if err != nil {
		termW, termH = 0, 0
	}
	m, err := newModel(cfg, build, termW, termH)
	if err != nil {
		return err
	}
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.Close()
	}
	return err
}
