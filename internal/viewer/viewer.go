package viewer

import (
	"sync"
	"time"

	"github.com/atelier-labs/fitroom/internal/models"
)

const (
	// MinZoom and MaxZoom bound the continuous zoom level.
	MinZoom = 1.0
	MaxZoom = 5.0

	// ZoomStep is the fixed step used by the discrete zoom controls; wheel
	// gestures pass finer-grained deltas directly.
	ZoomStep = 0.2

	// resetDelay defers the zoom/pan reset after close so a host's
	// transition-out animation is not disrupted by an instantaneous reset.
	resetDelay = 200 * time.Millisecond
)

// Offset is a 2-D pan offset in display coordinates.
type Offset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// State is the ephemeral, never-persisted viewer state. Pan is only
// meaningful while Zoom > MinZoom but is always safe to apply when rendering;
// it is zeroed whenever zoom returns to MinZoom.
type State struct {
	Open     bool    `json:"open"`
	Zoom     float64 `json:"zoom"`
	Pan      Offset  `json:"pan"`
	Dragging bool    `json:"dragging"`
}

// Machine is the modal image viewer state machine. A host UI drives it from
// its event handlers and observes it through Subscribe; enter/exit hooks give
// the host an explicit place to attach and detach global listeners (such as a
// cancellation key observer) for exactly the lifetime of the open state.
type Machine struct {
	mu    sync.Mutex
	state State
	image *models.NormalizedImage

	dragOriginPt  Offset
	dragOriginPan Offset

	// epoch invalidates a pending deferred reset when the viewer reopens
	// before the delay has elapsed.
	epoch int

	onEnter   func()
	onExit    func()
	listeners []func(State)
}

// New returns a closed viewer at the identity view.
func New() *Machine {
	return &Machine{state: State{Zoom: MinZoom}}
}

// SetHooks registers the enter/exit hooks invoked on the open and close
// transitions. Must be called before the machine is driven.
func (m *Machine) SetHooks(onEnter, onExit func()) {
	m.mu.Lock()
	m.onEnter = onEnter
	m.onExit = onExit
	m.mu.Unlock()
}

// Subscribe registers a listener notified with a state snapshot after every
// transition.
func (m *Machine) Subscribe(fn func(State)) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

// State returns a snapshot of the current viewer state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Image returns the image being viewed, or nil while closed.
func (m *Machine) Image() *models.NormalizedImage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.image == nil {
		return nil
	}
	img := *m.image
	return &img
}

// Open transitions the viewer to the identity view over img. A nil image is
// a no-op.
func (m *Machine) Open(img *models.NormalizedImage) {
	if img == nil {
		return
	}

	m.mu.Lock()
	copied := *img
	m.image = &copied
	m.state = State{Open: true, Zoom: MinZoom}
	m.epoch++
	enter := m.onEnter
	snapshot := m.state
	m.mu.Unlock()

	if enter != nil {
		enter()
	}
	m.notify(snapshot)
}

// Close leaves the open state. Zoom and pan keep their values for resetDelay
// so the host's closing animation renders from the last view, then reset to
// identity unless the viewer was reopened in the meantime.
func (m *Machine) Close() {
	m.mu.Lock()
	if !m.state.Open {
		m.mu.Unlock()
		return
	}
	m.state.Open = false
	m.state.Dragging = false
	m.image = nil
	epoch := m.epoch
	exit := m.onExit
	snapshot := m.state
	m.mu.Unlock()

	if exit != nil {
		exit()
	}
	m.notify(snapshot)

	time.AfterFunc(resetDelay, func() {
		m.mu.Lock()
		if m.epoch != epoch || m.state.Open {
			m.mu.Unlock()
			return
		}
		m.state.Zoom = MinZoom
		m.state.Pan = Offset{}
		reset := m.state
		m.mu.Unlock()
		m.notify(reset)
	})
}

// Cancel is the Escape-equivalent cancellation event. It is observed only
// while open and triggers the close transition.
func (m *Machine) Cancel() {
	m.mu.Lock()
	open := m.state.Open
	m.mu.Unlock()
	if open {
		m.Close()
	}
}

// ZoomDelta adjusts zoom by d, clamped to [MinZoom, MaxZoom]. Pan is zeroed
// whenever zoom lands back at MinZoom.
func (m *Machine) ZoomDelta(d float64) {
	m.mu.Lock()
	if !m.state.Open {
		m.mu.Unlock()
		return
	}
	z := m.state.Zoom + d
	if z < MinZoom {
		z = MinZoom
	}
	if z > MaxZoom {
		z = MaxZoom
	}
	m.state.Zoom = z
	if z <= MinZoom {
		m.state.Pan = Offset{}
	}
	snapshot := m.state
	m.mu.Unlock()
	m.notify(snapshot)
}

// ZoomIn and ZoomOut are the discrete zoom controls.
func (m *Machine) ZoomIn()  { m.ZoomDelta(ZoomStep) }
func (m *Machine) ZoomOut() { m.ZoomDelta(-ZoomStep) }

// DragStart begins a pan drag from pointer position pt. Ignored unless the
// viewer is open and zoomed in; panning is only meaningful past MinZoom.
func (m *Machine) DragStart(pt Offset) {
	m.mu.Lock()
	if !m.state.Open || m.state.Zoom <= MinZoom {
		m.mu.Unlock()
		return
	}
	m.state.Dragging = true
	m.dragOriginPt = pt
	m.dragOriginPan = m.state.Pan
	snapshot := m.state
	m.mu.Unlock()
	m.notify(snapshot)
}

// DragMove updates pan from the current pointer position. The offset is
// computed against the position recorded at drag start rather than
// incrementally, so rounding never accumulates into drift. Valid only while
// dragging.
func (m *Machine) DragMove(pt Offset) {
	m.mu.Lock()
	if !m.state.Dragging {
		m.mu.Unlock()
		return
	}
	m.state.Pan = Offset{
		X: m.dragOriginPan.X + pt.X - m.dragOriginPt.X,
		Y: m.dragOriginPan.Y + pt.Y - m.dragOriginPt.Y,
	}
	snapshot := m.state
	m.mu.Unlock()
	m.notify(snapshot)
}

// DragEnd finishes a drag, keeping the accumulated pan.
func (m *Machine) DragEnd() {
	m.mu.Lock()
	if !m.state.Dragging {
		m.mu.Unlock()
		return
	}
	m.state.Dragging = false
	snapshot := m.state
	m.mu.Unlock()
	m.notify(snapshot)
}

// CanReset reports whether the current view differs from the identity view,
// guarding the reset affordance.
func (m *Machine) CanReset() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Open && (m.state.Zoom != MinZoom || m.state.Pan != Offset{})
}

// ResetView returns to the identity view. A no-op when already there.
func (m *Machine) ResetView() {
	m.mu.Lock()
	if !m.state.Open || (m.state.Zoom == MinZoom && m.state.Pan == Offset{}) {
		m.mu.Unlock()
		return
	}
	m.state.Zoom = MinZoom
	m.state.Pan = Offset{}
	snapshot := m.state
	m.mu.Unlock()
	m.notify(snapshot)
}

func (m *Machine) notify(s State) {
	m.mu.Lock()
	listeners := make([]func(State), len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()
	for _, fn := range listeners {
		fn(s)
	}
}
