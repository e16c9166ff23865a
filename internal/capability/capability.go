// Package capability enumerates physical devices and picks one that can
// render to and present on a surface.
package capability

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
)

var ErrNoSuitableDevice = errors.New("no suitable GPU found")

// RequiredExtensions are the device extensions a candidate must expose.
var RequiredExtensions = []string{khr_swapchain.ExtensionName}

type QueueFamilies struct {
	GraphicsFamily *int
	PresentFamily  *int
}

func (f QueueFamilies) IsComplete() bool {
	return f.GraphicsFamily != nil && f.PresentFamily != nil
}

// Candidate is everything selection needs to know about one physical device.
type Candidate struct {
	Device core1_0.PhysicalDevice
	Name   string
	QueueFamilies

	Extensions   map[string]bool
	Formats      []khr_surface.SurfaceFormat
	PresentModes []khr_surface.PresentMode
}

// Suitable reports whether the candidate has both queue roles, every
// required extension, and at least one surface format and present mode.
func (c *Candidate) Suitable(required []string) bool {
	if !c.IsComplete() {
		return false
	}
	for _, ext := range required {
		if !c.Extensions[ext] {
			return false
		}
	}
	return len(c.Formats) > 0 && len(c.PresentModes) > 0
}

// ResolveFamilies scans queue families for a graphics family and a family
// that can present. The two may be the same index. Scanning stops at the
// first index where both are known.
func ResolveFamilies(flags []core1_0.QueueFlags, canPresent func(family int) (bool, error)) (QueueFamilies, error) {
	var families QueueFamilies
	for idx, f := range flags {
		if families.GraphicsFamily == nil && f&core1_0.QueueGraphics != 0 {
			families.GraphicsFamily = new(int)
			*families.GraphicsFamily = idx
		}

		if families.PresentFamily == nil {
			supported, err := canPresent(idx)
			if err != nil {
				return families, err
			}
			if supported {
				families.PresentFamily = new(int)
				*families.PresentFamily = idx
			}
		}

		if families.IsComplete() {
			break
		}
	}
	return families, nil
}

// Select returns the first suitable candidate in enumeration order.
func Select(candidates []*Candidate, required []string) (*Candidate, error) {
	for _, c := range candidates {
		if c.Suitable(required) {
			return c, nil
		}
	}
	return nil, errors.Wrapf(ErrNoSuitableDevice, "capability: %d devices checked", len(candidates))
}
