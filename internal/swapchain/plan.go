package swapchain

import (
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
)

// Info is the negotiated shape of a swapchain.
type Info struct {
	ImageCount     int
	Format         core1_0.Format
	ColorSpace     khr_surface.ColorSpace
	Extent         core1_0.Extent2D
	PreTransform   khr_surface.SurfaceTransformFlags
	CompositeAlpha khr_surface.CompositeAlphaFlags
	PresentMode    khr_surface.PresentMode
}

// Drawable reports whether the extent has a non-zero area.
func (i Info) Drawable() bool {
	return i.Extent.Width > 0 && i.Extent.Height > 0
}

// Support is what the surface reports at the moment a chain is planned.
type Support struct {
	Capabilities *khr_surface.SurfaceCapabilities
	Formats      []khr_surface.SurfaceFormat
	// Window is the drawable size, used only when the surface leaves the
	// extent up to the application.
	Window core1_0.Extent2D
}

// Plan derives the swapchain shape from what the surface supports.
func Plan(s Support) Info {
	format := ChooseSurfaceFormat(s.Formats)
	return Info{
		ImageCount:     ChooseImageCount(s.Capabilities),
		Format:         format.Format,
		ColorSpace:     format.ColorSpace,
		Extent:         IdentityExtent(s.Capabilities, s.Window),
		PreTransform:   s.Capabilities.CurrentTransform,
		CompositeAlpha: ChooseCompositeAlpha(s.Capabilities),
		PresentMode:    khr_surface.PresentModeFIFO,
	}
}

// ChooseSurfaceFormat prefers BGRA8 sRGB with the sRGB nonlinear color space
// and otherwise takes the first reported format.
func ChooseSurfaceFormat(formats []khr_surface.SurfaceFormat) khr_surface.SurfaceFormat {
	for _, format := range formats {
		if format.Format == core1_0.FormatB8G8R8A8SRGB && format.ColorSpace == khr_surface.ColorSpaceSRGBNonlinear {
			return format
		}
	}
	return formats[0]
}

// ChooseImageCount asks for one image more than the minimum, capped by the
// maximum when the surface has one.
func ChooseImageCount(caps *khr_surface.SurfaceCapabilities) int {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

// IdentityExtent is the surface extent in the display's natural orientation.
// Width and height are swapped when the compositor reports a quarter turn,
// because the chain is created unrotated and the pretransform does the rest.
func IdentityExtent(caps *khr_surface.SurfaceCapabilities, window core1_0.Extent2D) core1_0.Extent2D {
	extent := caps.CurrentExtent
	if extent.Width == -1 {
		extent = clamp(window, caps.MinImageExtent, caps.MaxImageExtent)
	}

	if caps.CurrentTransform&(khr_surface.TransformRotate90|khr_surface.TransformRotate270) != 0 {
		extent.Width, extent.Height = extent.Height, extent.Width
	}
	return extent
}

func clamp(e, lo, hi core1_0.Extent2D) core1_0.Extent2D {
	e.Width = max(lo.Width, min(hi.Width, e.Width))
	e.Height = max(lo.Height, min(hi.Height, e.Height))
	return e
}

func ChooseCompositeAlpha(caps *khr_surface.SurfaceCapabilities) khr_surface.CompositeAlphaFlags {
	if caps.SupportedCompositeAlpha&khr_surface.CompositeAlphaInherit != 0 {
		return khr_surface.CompositeAlphaInherit
	}
	return khr_surface.CompositeAlphaOpaque
}
