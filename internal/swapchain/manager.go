// Package swapchain owns the presentable image chain and rebuilds it when
// the surface changes size or orientation.
package swapchain

import (
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
)

type State int

const (
	// Absent means no chain exists, either before setup or while the native
	// window is being replaced.
	Absent State = iota
	Live
	// Stale means the chain no longer matches the surface and must be
	// rebuilt before the next frame.
	Stale
)

func (s State) String() string {
	switch s {
	case Absent:
		return "absent"
	case Live:
		return "live"
	case Stale:
		return "stale"
	}
	return "unknown"
}

var ErrNoChain = errors.New("swapchain: no chain to rebuild")

// Builder does the driver work for a Manager.
type Builder interface {
	Support() (Support, error)
	// Build creates the chain, its image views and framebuffers.
	Build(info Info) error
	// Teardown destroys everything Build created.
	Teardown()
	WaitIdle() error
	SetSurface(surface khr_surface.Surface)
}

type Manager struct {
	builder Builder
	logger  *slog.Logger

	state State
	info  Info
	built bool
}

func NewManager(builder Builder, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{builder: builder, logger: logger}
}

func (m *Manager) State() State { return m.state }

func (m *Manager) Stale() bool { return m.state == Stale }

// Info is the shape of the current chain. It is only meaningful while Live.
func (m *Manager) Info() Info { return m.info }

// Create builds the first chain for the current surface.
func (m *Manager) Create() error {
	if m.state != Absent {
		return errors.Newf("swapchain: create while %s", m.state)
	}
	// A chain that cannot be built yet still needs rebuilding later.
	m.state = Stale
	return m.build("created")
}

// MarkStale flags a live chain for rebuilding at the next opportunity.
func (m *Manager) MarkStale() {
	if m.state == Live {
		m.state = Stale
	}
}

// Recreate waits for the GPU to finish with the current chain, destroys it
// and builds a new one against the surface's current capabilities. When the
// surface has no drawable area the manager stays Stale and nothing is built.
func (m *Manager) Recreate() error {
	if m.state == Absent {
		return ErrNoChain
	}

	support, err := m.builder.Support()
	if err != nil {
		return err
	}
	if !Plan(support).Drawable() {
		m.state = Stale
		return nil
	}

	if err = m.builder.WaitIdle(); err != nil {
		return err
	}
	m.teardown()
	m.state = Stale
	return m.buildFrom(support, "rebuilt")
}

func (m *Manager) build(event string) error {
	support, err := m.builder.Support()
	if err != nil {
		return err
	}
	return m.buildFrom(support, event)
}

func (m *Manager) buildFrom(support Support, event string) error {
	info := Plan(support)
	if !info.Drawable() {
		m.logger.Debug("surface has no area, deferring swapchain")
		return nil
	}

	if err := m.builder.Build(info); err != nil {
		m.builder.Teardown()
		return errors.Wrap(err, "swapchain: build")
	}

	m.info = info
	m.built = true
	m.state = Live
	m.logger.Info("swapchain "+event,
		slog.Int("images", info.ImageCount),
		slog.String("format", info.Format.String()),
		slog.Int("width", info.Extent.Width),
		slog.Int("height", info.Extent.Height))
	return nil
}

func (m *Manager) teardown() {
	if m.built {
		m.builder.Teardown()
		m.built = false
	}
}

// Release destroys the chain and returns to Absent. The caller must have
// waited for the device to go idle.
func (m *Manager) Release() {
	m.teardown()
	m.state = Absent
}

// ReplaceSurface points the manager at a new surface. It is only legal
// while Absent.
func (m *Manager) ReplaceSurface(surface khr_surface.Surface) error {
	if m.state != Absent {
		return errors.Newf("swapchain: replace surface while %s", m.state)
	}
	m.builder.SetSurface(surface)
	return nil
}
