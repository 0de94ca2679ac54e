package swapchain

import (
	"log"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/google/uuid"

	"GPU_present_chain/vkd"
)

// Sharing describes how the chain images are shared between queue families.
type Sharing struct {
	Mode     vk.SharingMode
	Families []uint32
}

// Config holds every property a swap chain is created with. Image count, format and extent have no
// defaults, the remaining fields are defaulted when the Builder is created.
type Config struct {
	ImageCount     uint32
	Format         vk.SurfaceFormat
	Extent         vk.Extent2D
	PresentMode    vk.PresentMode
	Sharing        Sharing
	CompositeAlpha vk.CompositeAlphaFlagBits
}

// Builder collects a Config for one surface and turns it into a Chain. Setters return the Builder so
// calls can be chained. A Builder is used for a single Build.
type Builder struct {
	surface  *Surface
	previous *Chain
	cfg      Config

	hasCount, hasFormat, hasExtent, hasAlpha bool
}

// NewBuilder starts a configuration for surface with FIFO presentation and exclusive sharing.
func NewBuilder(surface *Surface) *Builder {
	return &Builder{
		surface: surface,
		cfg: Config{
			PresentMode: vk.PresentModeFifo,
			Sharing:     Sharing{Mode: vk.SharingModeExclusive},
		},
	}
}

func (b *Builder) ImageCount(n uint32) *Builder {
	b.cfg.ImageCount = n
	b.hasCount = true
	return b
}

func (b *Builder) Format(f vk.SurfaceFormat) *Builder {
	b.cfg.Format = vk.SurfaceFormat{Format: f.Format, ColorSpace: f.ColorSpace}
	b.hasFormat = true
	return b
}

func (b *Builder) Extent(e vk.Extent2D) *Builder {
	b.cfg.Extent = vk.Extent2D{Width: e.Width, Height: e.Height}
	b.hasExtent = true
	return b
}

func (b *Builder) PresentMode(m vk.PresentMode) *Builder {
	b.cfg.PresentMode = m
	return b
}

func (b *Builder) Sharing(mode vk.SharingMode, families ...uint32) *Builder {
	b.cfg.Sharing = Sharing{Mode: mode, Families: append([]uint32(nil), families...)}
	return b
}

func (b *Builder) CompositeAlpha(a vk.CompositeAlphaFlagBits) *Builder {
	b.cfg.CompositeAlpha = a
	b.hasAlpha = true
	return b
}

// Previous hands the chain being replaced to the driver so it can reuse its resources. The caller
// still destroys the previous chain after Build.
func (b *Builder) Previous(c *Chain) *Builder {
	b.previous = c
	return b
}

// Config returns the configuration as set so far, with the composite alpha default applied for p.
func (b *Builder) Config(p *Properties) Config {
	cfg := b.cfg
	cfg.Sharing.Families = append([]uint32(nil), b.cfg.Sharing.Families...)
	if !b.hasAlpha {
		cfg.CompositeAlpha = defaultCompositeAlpha(p)
	}
	return cfg
}

// defaultCompositeAlpha prefers opaque and otherwise picks the lowest supported bit.
func defaultCompositeAlpha(p *Properties) vk.CompositeAlphaFlagBits {
	if p.SupportsCompositeAlpha(vk.CompositeAlphaOpaqueBit) {
		return vk.CompositeAlphaOpaqueBit
	}
	supported := uint32(p.Capabilities.SupportedCompositeAlpha)
	for bit := uint32(1); bit != 0; bit <<= 1 {
		if supported&bit != 0 {
			return vk.CompositeAlphaFlagBits(bit)
		}
	}
	return 0
}

func (b *Builder) validate(cfg Config, p *Properties) error {
	if b.surface == nil {
		return errors.Wrap(ErrInvalidConfig, "no surface")
	}
	if b.surface.IsDestroyed() {
		return errors.Wrap(ErrInvalidConfig, "surface already destroyed")
	}
	if b.previous != nil && b.previous.IsDestroyed() {
		return errors.Wrap(ErrInvalidConfig, "previous chain already destroyed")
	}
	switch {
	case !b.hasCount:
		return errors.Wrap(ErrInvalidConfig, "image count not set")
	case !b.hasFormat:
		return errors.Wrap(ErrInvalidConfig, "surface format not set")
	case !b.hasExtent:
		return errors.Wrap(ErrInvalidConfig, "extent not set")
	}

	caps := p.Capabilities
	if cfg.ImageCount < caps.MinImageCount || (p.ImageCountBounded() && cfg.ImageCount > caps.MaxImageCount) {
		return errors.Wrapf(ErrInvalidConfig, "image count %d outside [%d, %d]",
			cfg.ImageCount, caps.MinImageCount, caps.MaxImageCount)
	}
	if cfg.ImageCount == 0 {
		return errors.Wrap(ErrInvalidConfig, "image count is zero")
	}
	e := cfg.Extent
	if e.Width == 0 || e.Height == 0 {
		return errors.Wrapf(ErrInvalidConfig, "zero extent %dx%d", e.Width, e.Height)
	}
	if e.Width < caps.MinImageExtent.Width || e.Width > caps.MaxImageExtent.Width ||
		e.Height < caps.MinImageExtent.Height || e.Height > caps.MaxImageExtent.Height {
		return errors.Wrapf(ErrInvalidConfig, "extent %dx%d outside [%dx%d, %dx%d]",
			e.Width, e.Height,
			caps.MinImageExtent.Width, caps.MinImageExtent.Height,
			caps.MaxImageExtent.Width, caps.MaxImageExtent.Height)
	}
	if !p.SupportsFormat(cfg.Format) {
		return errors.Wrapf(ErrInvalidConfig, "surface format %s not supported", FormatName(cfg.Format))
	}
	if cfg.PresentMode != FallbackPresentMode && !p.SupportsPresentMode(cfg.PresentMode) {
		return errors.Wrapf(ErrInvalidConfig, "present mode %s not supported", PresentModeName(cfg.PresentMode))
	}
	if !p.SupportsUsage(vk.ImageUsageColorAttachmentBit) {
		return errors.Wrap(ErrInvalidConfig, "surface does not support colour attachment usage")
	}
	if cfg.CompositeAlpha == 0 || !p.SupportsCompositeAlpha(cfg.CompositeAlpha) {
		return errors.Wrapf(ErrInvalidConfig, "composite alpha %d not supported", cfg.CompositeAlpha)
	}
	switch cfg.Sharing.Mode {
	case vk.SharingModeExclusive:
	case vk.SharingModeConcurrent:
		if len(distinct(cfg.Sharing.Families)) < 2 {
			return errors.Wrap(ErrInvalidConfig, "concurrent sharing needs at least two distinct queue families")
		}
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown sharing mode %d", cfg.Sharing.Mode)
	}
	return nil
}

// Build validates the configuration against p and creates the chain with one colour view per image.
// Validation failures wrap ErrInvalidConfig and happen before any native call. When a native call
// fails, everything created up to that point is released again.
func (b *Builder) Build(dev vkd.Device, p *Properties) (*Chain, error) {
	if p == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "no surface properties")
	}
	cfg := b.Config(p)
	if err := b.validate(cfg, p); err != nil {
		return nil, err
	}

	createInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          b.surface.Handle(),
		MinImageCount:    cfg.ImageCount,
		ImageFormat:      cfg.Format.Format,
		ImageColorSpace:  cfg.Format.ColorSpace,
		ImageExtent:      cfg.Extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode: cfg.Sharing.Mode,
		PreTransform:     p.Capabilities.CurrentTransform,
		CompositeAlpha:   cfg.CompositeAlpha,
		PresentMode:      cfg.PresentMode,
		Clipped:          vk.True,
	}
	if cfg.Sharing.Mode == vk.SharingModeConcurrent {
		families := distinct(cfg.Sharing.Families)
		createInfo.QueueFamilyIndexCount = uint32(len(families))
		createInfo.PQueueFamilyIndices = families
	}
	if b.previous != nil && !b.previous.retired {
		createInfo.OldSwapchain = b.previous.Handle()
	}

	d := dev.Dispatch
	handle, res := d.CreateSwapchain(dev.Logical, &createInfo)
	if createInfo.OldSwapchain != nil {
		b.previous.retired = true
	}
	if err := vkd.Check(res, "vkCreateSwapchainKHR"); err != nil {
		return nil, errors.Wrap(err, "create swap chain")
	}

	images, res := d.GetSwapchainImages(dev.Logical, handle)
	if err := vkd.Check(res, "vkGetSwapchainImagesKHR"); err != nil {
		d.DestroySwapchain(dev.Logical, handle)
		return nil, errors.Wrap(err, "get swap chain images")
	}

	views := make([]vk.ImageView, 0, len(images))
	for i, img := range images {
		iv, err := createColorView(dev, img, cfg.Format.Format)
		if err != nil {
			for _, v := range views {
				d.DestroyImageView(dev.Logical, v)
			}
			d.DestroySwapchain(dev.Logical, handle)
			return nil, errors.Wrapf(err, "create view for swap chain image %d", i)
		}
		views = append(views, iv)
	}

	c := &Chain{
		id:          uuid.New(),
		dev:         dev,
		handle:      handle,
		format:      cfg.Format,
		extent:      cfg.Extent,
		presentMode: cfg.PresentMode,
		images:      images,
		views:       views,
		latest:      -1,
	}
	log.Printf("Successfully created swap chain %s: %d images, %dx%d, %s, %s",
		c.id, len(images), cfg.Extent.Width, cfg.Extent.Height, FormatName(cfg.Format), PresentModeName(cfg.PresentMode))
	return c, nil
}

func createColorView(dev vkd.Device, img vk.Image, format vk.Format) (vk.ImageView, error) {
	info := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    img,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
	iv, res := dev.Dispatch.CreateImageView(dev.Logical, &info)
	if err := vkd.Check(res, "vkCreateImageView"); err != nil {
		return nil, err
	}
	return iv, nil
}
