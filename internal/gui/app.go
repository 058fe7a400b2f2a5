package gui

import (
	"fmt"
	"log/slog"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/orbits/internal/config"
	"github.com/san-kum/orbits/internal/dynamo"
	"github.com/san-kum/orbits/internal/logging"
	"github.com/san-kum/orbits/internal/projector"
	"github.com/san-kum/orbits/internal/sim"
)

var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
)

const (
	windowW, windowH = 1280, 720
	maxTelemetry     = 200
)

// Builder creates the session for a configuration.
type Builder func(cfg *config.Config) (*sim.Session, error)

// App is the windowed front end. The session is stepped from the draw loop,
// so stepping and pointer events share one goroutine.
type App struct {
	Build   Builder
	Config  *config.Config
	Session *sim.Session
	Frame   projector.Frame
	Logger  *slog.Logger

	Running    bool
	InMenu     bool
	Presets    []string
	Selected   int
	Telemetry  []float64
	ShowFields bool
	ShowLabels bool
	Font       rl.Font
	Err        error
}

func initWindow(fps int) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(windowW, windowH, "orbits")
	rl.SetTargetFPS(int32(fps))
	rl.SetExitKey(0)
}

func loadFont() rl.Font {
	font := rl.LoadFontEx("/usr/share/fonts/liberation/LiberationMono-Regular.ttf", 32, nil, 0)
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

// NewApp prepares an app. With interactive set the preset menu is shown
// first; otherwise cfg is loaded straight away.
func NewApp(cfg *config.Config, build Builder, interactive bool, logger *slog.Logger) *App {
	app := &App{
		Build:      build,
		Config:     cfg,
		Logger:     logging.OrNop(logger),
		Presets:    config.ListPresets(),
		InMenu:     interactive,
		Telemetry:  make([]float64, 0, maxTelemetry),
		ShowFields: true,
		ShowLabels: true,
		Font:       loadFont(),
	}
	if !interactive {
		app.load(cfg)
	}
	return app
}

// RunInteractive opens the window on the preset menu.
func RunInteractive(build Builder, logger *slog.Logger) {
	initWindow(config.DefaultFPS)
	defer rl.CloseWindow()
	app := NewApp(config.DefaultConfig(), build, true, logger)
	app.RunLoop()
}

// Run opens the window directly on cfg.
func Run(cfg *config.Config, build Builder, logger *slog.Logger) {
	initWindow(cfg.FPS)
	defer rl.CloseWindow()
	app := NewApp(cfg, build, false, logger)
	app.RunLoop()
}

func (a *App) RunLoop() {
	defer a.close()
	for !rl.WindowShouldClose() {
		if !a.Update() {
			return
		}
		a.Draw()
	}
}

func (a *App) close() {
	if a.Session != nil {
		a.Session.Stop()
	}
}

func (a *App) load(cfg *config.Config) {
	a.close()
	a.Config = cfg
	a.Telemetry = a.Telemetry[:0]

	s, err := a.Build(cfg.WithViewport(float64(rl.GetScreenWidth()), float64(rl.GetScreenHeight())))
	if err != nil {
		a.Err = err
		a.Session = nil
		a.Logger.Error("build session", "err", err)
		return
	}
	s.Resize(float64(rl.GetScreenWidth()), float64(rl.GetScreenHeight()))
	a.Session, a.Err = s, nil
	a.Running = true
	a.Frame = s.Frame()
}

// Update handles input and advances the session by one step. It returns
// false when the app should exit.
func (a *App) Update() bool {
	if rl.IsKeyPressed(rl.KeyQ) {
		return false
	}

	if a.InMenu {
		a.updateMenu()
		return true
	}
	if rl.IsKeyPressed(rl.KeyEscape) {
		a.close()
		a.Session = nil
		a.InMenu = true
		return true
	}
	if a.Session == nil {
		return true
	}

	if rl.IsWindowResized() {
		a.Session.Resize(float64(rl.GetScreenWidth()), float64(rl.GetScreenHeight()))
	}

	switch {
	case rl.IsKeyPressed(rl.KeySpace):
		a.Running = !a.Running
	case rl.IsKeyPressed(rl.KeyR):
		a.load(a.Config.Clone())
		return true
	case rl.IsKeyPressed(rl.KeyF):
		a.ShowFields = !a.ShowFields
	case rl.IsKeyPressed(rl.KeyL):
		a.ShowLabels = !a.ShowLabels
	}

	a.handlePointer()

	if a.Running {
		if _, err := a.Session.Step(); err != nil {
			a.Err = err
		}
	}
	a.Frame = a.Session.Frame()
	a.record()
	return true
}

func (a *App) handlePointer() {
	mouse := rl.GetMousePosition()
	p := dynamo.Vec2{X: float64(mouse.X), Y: float64(mouse.Y)}
	now := time.Now()

	switch {
	case rl.IsMouseButtonPressed(rl.MouseButtonLeft):
		if id, ok := a.Session.PointerDownAt(p, now); ok {
			a.Logger.Debug("grabbed node", "node", id)
		}
	case rl.IsMouseButtonReleased(rl.MouseButtonLeft):
		a.Session.PointerUp(p, now)
	case rl.IsMouseButtonDown(rl.MouseButtonLeft):
		a.Session.PointerMove(p, now)
	}
}

func (a *App) record() {
	var ke float64
	for _, n := range a.Frame.Nodes {
		ke += 0.5 * n.Mass * n.Speed * n.Speed
	}
	a.Telemetry = append(a.Telemetry, ke)
	if len(a.Telemetry) > maxTelemetry {
		a.Telemetry = a.Telemetry[1:]
	}
}

func (a *App) updateMenu() {
	if rl.IsKeyPressed(rl.KeyDown) || rl.IsKeyPressed(rl.KeyJ) {
		a.Selected++
	}
	if rl.IsKeyPressed(rl.KeyUp) || rl.IsKeyPressed(rl.KeyK) {
		a.Selected--
	}

	if a.Selected >= len(a.Presets) {
		a.Selected = 0
	}
	if a.Selected < 0 {
		a.Selected = len(a.Presets) - 1
	}

	if rl.IsKeyPressed(rl.KeyEnter) || rl.IsKeyPressed(rl.KeySpace) {
		a.InMenu = false
		a.load(config.GetPreset(a.Presets[a.Selected]))
	}
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	if a.InMenu {
		a.drawMenu()
	} else {
		a.drawScene()
		a.DrawHUD()
	}

	rl.EndDrawing()
}

func (a *App) DrawHUD() {
	w, h := int(rl.GetScreenWidth()), int(rl.GetScreenHeight())
	a.drawText("orbits", 30, 30, 24, ColSelect)
	a.drawText(fmt.Sprintf(":: %s", a.Config.Preset), 130, 34, 16, ColText)

	a.DrawTelemetry(30, h-120)

	status := "RUNNING"
	col := ColSelect
	if !a.Running {
		status = "PAUSED"
		col = ColTextDim
	}
	a.drawText(status, w-130, 30, 16, col)

	y := 70
	for _, n := range a.Frame.Nodes {
		a.drawText(fmt.Sprintf("%-3s M=%.2f V=%.2f", n.Label, n.Mass, n.Speed), w-220, y, 14, hexColor(n.Color, 255))
		y += 20
	}

	if a.Err != nil {
		a.drawText(a.Err.Error(), 30, 70, 14, rl.Red)
	}

	a.drawText("[SPACE] PAUSE  [R] RESET  [F] FIELDS  [L] LABELS  [ESC] MENU  [Q] QUIT", w-640, h-40, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", int32(rl.GetFPS())), 30, h-40, 14, ColTextDim)
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}

func (a *App) DrawTelemetry(rectX, rectY int) {
	if len(a.Telemetry) < 2 {
		return
	}
	width, height := 400, 60

	minVal, maxVal := a.Telemetry[0], a.Telemetry[0]
	for _, v := range a.Telemetry {
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, val := range a.Telemetry {
		px := float32(rectX) + (float32(i)/float32(len(a.Telemetry)))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColAccent)
	a.drawText(fmt.Sprintf("KE: %.2e", a.Telemetry[len(a.Telemetry)-1]), rectX+width+10, rectY+height-10, 14, ColText)
}

func (a *App) drawMenu() {
	a.drawText("orbits", 50, 50, 40, ColSelect)
	a.drawText("Select Preset", 50, 100, 16, ColTextDim)

	y := 160
	for i, name := range a.Presets {
		line := fmt.Sprintf("  %-10s %s", name, config.PresetDescriptions[name])
		col := ColText
		if i == a.Selected {
			line = fmt.Sprintf("> %-10s %s", name, config.PresetDescriptions[name])
			col = ColSelect
		}
		a.drawText(line, 50, y, 20, col)
		y += 28
	}

	if a.Err != nil {
		a.drawText(a.Err.Error(), 50, y+20, 16, rl.Red)
	}
	a.drawText("ARROWS: NAVIGATE  ENTER: SELECT  Q: QUIT", int(rl.GetScreenWidth())-430, int(rl.GetScreenHeight())-40, 14, ColTextDim)
}
