package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/san-kum/orbits/internal/dynamo"
	"github.com/san-kum/orbits/internal/interaction"
	"github.com/san-kum/orbits/internal/logging"
	"github.com/san-kum/orbits/internal/physics"
	"github.com/san-kum/orbits/internal/projector"
	"github.com/san-kum/orbits/internal/store"
)

var errAlreadyRunning = errors.New("orbits: session loop already running")

type Options struct {
	Params      physics.Params
	Interaction interaction.Options
	Style       projector.Style
	Logger      *slog.Logger
}

func DefaultOptions() Options {
	return Options{
		Params:      physics.DefaultParams(),
		Interaction: interaction.DefaultOptions(),
		Style:       projector.DefaultStyle(),
	}
}

// Session owns one visualization instance. Every step, pointer event and
// resize runs under a single mutex, so the repeating frame task and the
// host's input callbacks never interleave mid-update.
type Session struct {
	mu        sync.Mutex
	store     *store.Store
	stepper   Stepper
	ctl       *interaction.Controller
	proj      *projector.Projector
	metrics   []Metric
	observers []Observer
	logger    *slog.Logger

	steps  int
	paused bool
	closed bool
	cancel context.CancelFunc
	done   chan struct{}
}

func New(st *store.Store, opts Options) *Session {
	logger := logging.OrNop(opts.Logger)
	return &Session{
		store:   st,
		stepper: physics.NewGravity(opts.Params, logger),
		ctl:     interaction.New(st, opts.Interaction, logger),
		proj:    projector.New(opts.Style, opts.Params),
		logger:  logger,
	}
}

// WithStepper replaces the physics stepper. It must be called before the
// session is shared.
func (s *Session) WithStepper(st Stepper) *Session {
	s.stepper = st
	return s
}

func (s *Session) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Session) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Start runs Step at fps on a background goroutine until ctx is cancelled
// or Stop is called.
func (s *Session) Start(ctx context.Context, fps int) error {
	if fps <= 0 {
		return fmt.Errorf("fps must be positive, got %d", fps)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return dynamo.ErrSessionClosed
	}
	if s.cancel != nil {
		return errAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(ctx, time.Second/time.Duration(fps), s.done)

	s.logger.Info("session started", "fps", fps, "nodes", s.store.Len())
	return nil
}

func (s *Session) loop(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			if !s.closed && !s.paused {
				s.stepLocked()
			}
			s.mu.Unlock()
		}
	}
}

// Stop tears the session down: the frame task is cancelled and awaited,
// any capture is dropped and later steps and pointer events are ignored.
// Stop is idempotent.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.ctl.Cancel()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	s.logger.Info("session stopped", "steps", s.Steps())
}

// SetPaused suspends or resumes the frame task without tearing it down.
// Pointer events keep working while paused.
func (s *Session) SetPaused(p bool) {
	s.mu.Lock()
	s.paused = p
	s.mu.Unlock()
}

func (s *Session) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Step advances the simulation by one frame.
func (s *Session) Step() (dynamo.StepStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return dynamo.StepStats{}, dynamo.ErrSessionClosed
	}
	return s.stepLocked(), nil
}

func (s *Session) stepLocked() dynamo.StepStats {
	var frozen []dynamo.NodeID
	if id, ok := s.ctl.CapturedID(); ok {
		frozen = append(frozen, id)
	}

	next, stats := s.stepper.Step(s.store.Nodes(), s.store.Bounds(), frozen...)
	if err := s.store.Replace(next); err != nil {
		s.logger.Error("step result rejected", "error", err)
		return stats
	}

	s.steps++
	stats.Step = s.steps
	if stats.Sanitized > 0 {
		s.logger.Warn("non-finite state recovered", "step", s.steps, "count", stats.Sanitized)
	}

	for _, m := range s.metrics {
		m.Observe(next, s.store.Bounds(), stats)
	}
	for _, o := range s.observers {
		o.OnStep(next, stats)
	}
	return stats
}

// Run advances the session cfg.Steps times without a clock. It stops early
// with ctx.Err() when ctx is cancelled, returning the partial result.
func (s *Session) Run(ctx context.Context, cfg RunConfig) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	result := &Result{
		Seed:    cfg.Seed,
		Metrics: make(map[string]float64),
	}
	if cfg.RecordEvery > 0 {
		result.Trace = append(result.Trace, Sample{Step: 0, Nodes: s.Nodes()})
	}

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result)
			return result, ctx.Err()
		default:
		}

		stats, err := s.Step()
		if err != nil {
			s.finish(result)
			return result, err
		}
		result.Steps++
		result.Bounces += stats.Bounces
		result.Sanitized += stats.Sanitized

		if cfg.RecordEvery > 0 && result.Steps%cfg.RecordEvery == 0 {
			result.Trace = append(result.Trace, Sample{Step: stats.Step, Nodes: s.Nodes()})
		}
	}

	s.finish(result)
	return result, nil
}

func (s *Session) finish(r *Result) {
	r.Final = s.Nodes()
	for _, m := range s.metrics {
		r.Metrics[m.Name()] = m.Value()
	}
}

// Frame projects the current node set for drawing.
func (s *Session) Frame() projector.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	var captured []dynamo.NodeID
	if id, ok := s.ctl.CapturedID(); ok {
		captured = append(captured, id)
	}
	return s.proj.Project(s.store.Nodes(), s.store.Bounds(), captured...)
}

func (s *Session) Nodes() []dynamo.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Nodes()
}

func (s *Session) Bounds() dynamo.Bounds {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Bounds()
}

func (s *Session) Steps() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.steps
}

func (s *Session) Captured() (dynamo.NodeID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctl.CapturedID()
}

func (s *Session) PointerDown(id dynamo.NodeID, p dynamo.Vec2, t time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	ok := s.ctl.PointerDown(id, p, t)
	if ok {
		s.notifyCapture(id)
	}
	return ok
}

// PointerDownAt captures whichever node is drawn under p.
func (s *Session) PointerDownAt(p dynamo.Vec2, t time.Time) (dynamo.NodeID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, false
	}
	id, hit := s.ctl.HitTest(p, s.proj.Style.Radius)
	if !hit || !s.ctl.PointerDown(id, p, t) {
		return 0, false
	}
	s.notifyCapture(id)
	return id, true
}

func (s *Session) PointerMove(p dynamo.Vec2, t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.ctl.PointerMove(p, t)
}

func (s *Session) PointerUp(p dynamo.Vec2, t time.Time) dynamo.Vec2 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return dynamo.Vec2{}
	}
	id, held := s.ctl.CapturedID()
	vel := s.ctl.PointerUp(p, t)
	if held {
		for _, o := range s.observers {
			if po, ok := o.(PointerObserver); ok {
				po.OnRelease(id, vel)
			}
		}
	}
	return vel
}

func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctl.Cancel()
}

// Resize updates the viewport. Degenerate sizes are ignored.
func (s *Session) Resize(width, height float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	ok := s.store.Resize(width, height)
	if ok {
		s.logger.Debug("viewport resized", "width", width, "height", height)
	}
	return ok
}

func (s *Session) notifyCapture(id dynamo.NodeID) {
	for _, o := range s.observers {
		if po, ok := o.(PointerObserver); ok {
			po.OnCapture(id)
		}
	}
}
