package swapchain

import (
	"log"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"

	"GPU_present_chain/vkd"
)

// LatestImage makes an AttachmentView follow the most recently acquired image.
const LatestImage = -1

// Manager owns the current Chain of a surface and rebuilds it with the same strategies when the
// surface changes. Exactly one chain is current at any time between NewManager and Destroy.
type Manager struct {
	dev        vkd.Device
	surface    *Surface
	strategies []Strategy
	props      PropertiesFunc

	current    *Chain
	last       *Properties
	generation int
	destroyed  bool
}

// NewManager queries the surface, applies strategies in order and builds the first chain.
func NewManager(dev vkd.Device, surface *Surface, strategies ...Strategy) (*Manager, error) {
	m := &Manager{
		dev:        dev,
		surface:    surface,
		strategies: append([]Strategy(nil), strategies...),
		props:      surface.Properties(dev.Physical),
	}
	c, p, err := m.build(nil)
	if err != nil {
		return nil, err
	}
	m.current = c
	m.last = p
	return m, nil
}

func (m *Manager) build(previous *Chain) (*Chain, *Properties, error) {
	p, err := m.props()
	if err != nil {
		return nil, nil, err
	}
	b := NewBuilder(m.surface).Previous(previous)
	for _, s := range m.strategies {
		if err := s.Configure(b, p); err != nil {
			return nil, nil, errors.Wrap(err, "configure swap chain")
		}
	}
	c, err := b.Build(m.dev, p)
	if err != nil {
		return nil, nil, err
	}
	return c, p, nil
}

// Chain returns the current chain, nil after Destroy.
func (m *Manager) Chain() *Chain {
	return m.current
}

// Properties returns the snapshot the current chain was built from.
func (m *Manager) Properties() *Properties {
	return m.last
}

// Generation counts successful recreations.
func (m *Manager) Generation() int {
	return m.generation
}

// Recreate builds a replacement chain from freshly queried properties, handing the current chain to
// the driver as the old swap chain, then destroys the current chain. The caller must make sure no
// submitted work still uses the current images.
//
// A rebuild failing before the driver saw the current chain leaves it untouched. Once handed over the
// current chain is retired even if the creation failed: it stays current, acquires report OutOfDate
// and the next Recreate builds without it before destroying it.
func (m *Manager) Recreate() (*Chain, error) {
	if m.destroyed {
		return nil, errors.Wrap(ErrDestroyed, "recreate")
	}
	old := m.current
	c, p, err := m.build(old)
	if err != nil {
		if old.Retired() {
			log.Printf("Swap chain %s retired by a failed recreate", old.ID())
		}
		return nil, errors.Wrap(err, "recreate swap chain")
	}
	old.Destroy()
	m.current = c
	m.last = p
	m.generation++
	log.Printf("Successfully recreated swap chain %s -> %s (generation %d)", old.ID(), c.ID(), m.generation)
	return c, nil
}

// AttachmentView returns a view source that resolves against whichever chain is current when Resolve
// is called. index is an image index or LatestImage.
func (m *Manager) AttachmentView(index int) *AttachmentView {
	return &AttachmentView{manager: m, index: index}
}

// Destroy destroys the current chain. The surface stays alive.
func (m *Manager) Destroy() error {
	if m.destroyed {
		return errors.Wrap(ErrDestroyed, "destroy manager")
	}
	m.current.Destroy()
	m.current = nil
	m.destroyed = true
	return nil
}

// AttachmentView names a chain image view indirectly, so consumers survive chain recreation.
type AttachmentView struct {
	manager *Manager
	index   int
}

func (a *AttachmentView) Index() int {
	return a.index
}

// Resolve returns the view of the current chain.
func (a *AttachmentView) Resolve() (vk.ImageView, error) {
	c := a.manager.current
	if a.manager.destroyed || c == nil {
		return nil, errors.Wrap(ErrDestroyed, "resolve attachment view")
	}
	idx := a.index
	if idx == LatestImage {
		latest, ok := c.Latest()
		if !ok {
			return nil, errors.Newf("resolve attachment view: no image acquired on swap chain %s yet", c.ID())
		}
		idx = int(latest)
	}
	if idx < 0 || idx >= c.ImageCount() {
		return nil, errors.Newf("resolve attachment view: image %d out of range, swap chain has %d images", idx, c.ImageCount())
	}
	return c.View(idx), nil
}
