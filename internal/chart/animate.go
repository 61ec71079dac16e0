package chart

import (
	"sync"
	"time"
)

// Phase reports whether an animator is mid-transition or settled.
type Phase string

const (
	PhaseTransitioning Phase = "transitioning"
	PhaseIdle          Phase = "idle"
)

// Frame is one emitted animation step. It lives only for the duration of
// one interpolation run and is superseded by the next run.
type Frame struct {
	Path  string `json:"path"`
	Phase Phase  `json:"phase"`
}

// DefaultDuration is the total transition time when none is configured.
const DefaultDuration = 200 * time.Millisecond

// Scheduler delivers the per-frame ticks that drive an animation run. It
// stands in for the host's display refresh callback, so the step math can
// be tested without a real frame clock.
type Scheduler interface {
	// Start begins delivering ticks to fn and returns a stop function.
	// fn runs on the scheduler's goroutine.
	Start(fn func()) (stop func())
	// Interval is the nominal time between ticks.
	Interval() time.Duration
}

// TickerScheduler delivers ticks on a wall-clock ticker.
type TickerScheduler struct {
	interval time.Duration
}

// NewTickerScheduler returns a scheduler firing every interval;
// non-positive intervals default to roughly a 60Hz refresh.
func NewTickerScheduler(interval time.Duration) *TickerScheduler {
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &TickerScheduler{interval: interval}
}

func (s *TickerScheduler) Interval() time.Duration { return s.interval }

func (s *TickerScheduler) Start(fn func()) func() {
	done := make(chan struct{})
	var once sync.Once
	go func() {
		t := time.NewTicker(s.interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				fn()
			case <-done:
				return
			}
		}
	}()
	return func() { once.Do(func() { close(done) }) }
}

// ManualScheduler delivers a tick only when Tick is called. Tests drive it
// as a deterministic frame clock.
type ManualScheduler struct {
	mu      sync.Mutex
	fn      func()
	Nominal time.Duration
}

func (s *ManualScheduler) Interval() time.Duration {
	if s.Nominal <= 0 {
		return time.Second / 60
	}
	return s.Nominal
}

func (s *ManualScheduler) Start(fn func()) func() {
	s.mu.Lock()
	s.fn = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.fn = nil
		s.mu.Unlock()
	}
}

// Tick fires one frame callback, if a run is active.
func (s *ManualScheduler) Tick() {
	s.mu.Lock()
	fn := s.fn
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Animator morphs one path description into another over a fixed duration,
// one interpolated frame per scheduler tick.
//
// It is an explicit two-state machine: idle until a differing target path
// arrives, transitioning until progress reaches 1.0, then idle again. At
// the transition-to-idle boundary the previous-path memory updates; that
// memory lives here as an owned field, nowhere else.
//
// Exactly one run is in flight per animator. Submitting a new target while
// transitioning supersedes the run in place: interpolation continues toward
// the newest target from the last emitted frame, and only the newest
// target's callback ever sees the terminal idle frame.
type Animator struct {
	mu       sync.Mutex
	sched    Scheduler
	duration time.Duration

	phase   Phase
	prev    string // last committed idle path
	current string // most recently emitted path
	target  string
	from    []vertex
	to      []vertex
	t       float64
	step    float64
	run     uint64 // generation, guards stale cancels
	stop    func()
	onFrame func(Frame)
}

// NewAnimator returns an idle animator whose previous-path memory starts
// at initial (usually the first statically rendered path, possibly empty).
// A nil scheduler means the host cannot deliver frame callbacks; every
// Animate then degrades to a single immediate idle frame.
func NewAnimator(initial string, sched Scheduler, duration time.Duration) *Animator {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Animator{
		sched:    sched,
		duration: duration,
		phase:    PhaseIdle,
		prev:     initial,
		current:  initial,
	}
}

// Phase reports the animator's current state.
func (a *Animator) Phase() Phase {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.phase
}

// Previous returns the last committed idle path. It only changes at the
// transition-to-idle boundary, never mid-flight.
func (a *Animator) Previous() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.prev
}

// Current returns the most recently emitted path.
func (a *Animator) Current() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// Animate begins interpolating from the current path toward next, calling
// onFrame with each step and a final idle frame exactly equal to next.
// onFrame runs on the scheduler goroutine and must not call back into the
// animator. A target equal to the current settled path is a no-op. The
// returned cancel stops this run's frames without emitting a terminal
// frame and does not return while a frame delivery is in progress; a
// newer Animate call makes the cancel a no-op.
func (a *Animator) Animate(next string, onFrame func(Frame)) (cancel func()) {
	a.mu.Lock()

	if a.phase == PhaseIdle && next == a.current {
		a.mu.Unlock()
		return func() {}
	}

	// No frame scheduling available, or nothing to morph from: show the
	// final state immediately.
	if a.sched == nil || a.current == "" {
		a.settleLocked(next)
		a.mu.Unlock()
		if onFrame != nil {
			onFrame(Frame{Path: next, Phase: PhaseIdle})
		}
		return func() {}
	}

	a.run++
	run := a.run
	a.target = next
	a.onFrame = onFrame
	a.from = parsePath(a.current)
	a.to = parsePath(next)
	a.t = 0
	a.step = float64(a.sched.Interval()) / float64(a.duration)
	a.phase = PhaseTransitioning
	if a.stop == nil {
		a.stop = a.sched.Start(a.tick)
	}
	a.mu.Unlock()

	return func() { a.cancelRun(run) }
}

// tick advances progress by one step and emits the corresponding frame.
// The callback runs with the lock held: a cancel that has returned can
// never be followed by another frame, at the cost that onFrame must not
// call back into the animator.
func (a *Animator) tick() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.phase != PhaseTransitioning {
		return
	}

	a.t += a.step
	var frame Frame
	if a.t >= 1 {
		a.settleLocked(a.target)
		frame = Frame{Path: a.current, Phase: PhaseIdle}
	} else {
		a.current = interpolateVertices(a.from, a.to, a.t)
		frame = Frame{Path: a.current, Phase: PhaseTransitioning}
	}
	if a.onFrame != nil {
		a.onFrame(frame)
	}
}

// settleLocked commits path as the new idle state and releases the
// scheduler. Caller holds the lock.
func (a *Animator) settleLocked(path string) {
	a.phase = PhaseIdle
	a.current = path
	a.prev = path
	a.target = ""
	a.from, a.to = nil, nil
	if a.stop != nil {
		a.stop()
		a.stop = nil
	}
}

func (a *Animator) cancelRun(run uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.run != run || a.phase != PhaseTransitioning {
		return
	}
	// Stall at the last emitted frame; the settled value is never lost,
	// only the transition is interrupted. Frame delivery holds the same
	// lock, so an in-flight callback completes before this returns.
	a.phase = PhaseIdle
	a.target = ""
	a.from, a.to = nil, nil
	a.onFrame = nil
	if a.stop != nil {
		a.stop()
		a.stop = nil
	}
}

// interpolateVertices blends two vertex lists at progress t and renders
// the in-between path. Lists of unequal length are reconciled by index
// resampling of the shorter one, so series growth and shrinkage both
// animate without tearing.
func interpolateVertices(from, to []vertex, t float64) string {
	n := len(from)
	if len(to) > n {
		n = len(to)
	}
	if n == 0 {
		panic("chart: cannot interpolate empty paths")
	}
	from = resample(from, n)
	to = resample(to, n)

	out := make([]vertex, n)
	for i := range out {
		out[i] = vertex{
			x: from[i].x + (to[i].x-from[i].x)*t,
			y: from[i].y + (to[i].y-from[i].y)*t,
		}
	}
	return linePath(out)
}

// resample stretches verts to n entries with a monotone index mapping,
// duplicating entries evenly. n is never smaller than len(verts).
func resample(verts []vertex, n int) []vertex {
	if len(verts) == n {
		return verts
	}
	out := make([]vertex, n)
	for i := range out {
		out[i] = verts[i*len(verts)/n]
	}
	return out
}
