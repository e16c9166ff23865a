package capability

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
)

// Query builds a Candidate for every physical device against surface.
func Query(driver core1_0.CoreInstanceDriver, surfaceDriver khr_surface.ExtensionDriver, surface khr_surface.Surface) ([]*Candidate, error) {
	devices, _, err := driver.EnumeratePhysicalDevices()
	if err != nil {
		return nil, errors.Wrap(err, "capability: enumerate physical devices")
	}

	var candidates []*Candidate
	for _, device := range devices {
		c, err := describe(driver, surfaceDriver, surface, device)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

func describe(driver core1_0.CoreInstanceDriver, surfaceDriver khr_surface.ExtensionDriver, surface khr_surface.Surface, device core1_0.PhysicalDevice) (*Candidate, error) {
	c := &Candidate{Device: device, Extensions: map[string]bool{}}

	props, err := driver.GetPhysicalDeviceProperties(device)
	if err != nil {
		return nil, errors.Wrap(err, "capability: device properties")
	}
	c.Name = props.DriverName

	var flags []core1_0.QueueFlags
	for _, family := range driver.GetPhysicalDeviceQueueFamilyProperties(device) {
		flags = append(flags, family.QueueFlags)
	}
	c.QueueFamilies, err = ResolveFamilies(flags, func(family int) (bool, error) {
		supported, _, err := surfaceDriver.GetPhysicalDeviceSurfaceSupport(surface, device, family)
		return supported, err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "capability: present support on %s", c.Name)
	}

	extensions, _, err := driver.EnumerateDeviceExtensionProperties(device)
	if err != nil {
		return nil, errors.Wrapf(err, "capability: device extensions on %s", c.Name)
	}
	for name := range extensions {
		c.Extensions[name] = true
	}

	c.Formats, _, err = surfaceDriver.GetPhysicalDeviceSurfaceFormats(surface, device)
	if err != nil {
		return nil, errors.Wrapf(err, "capability: surface formats on %s", c.Name)
	}

	c.PresentModes, _, err = surfaceDriver.GetPhysicalDeviceSurfacePresentModes(surface, device)
	if err != nil {
		return nil, errors.Wrapf(err, "capability: present modes on %s", c.Name)
	}

	return c, nil
}

// CanPresent re-checks that family can present to a replacement surface.
func CanPresent(surfaceDriver khr_surface.ExtensionDriver, surface khr_surface.Surface, c *Candidate) (bool, error) {
	if c.PresentFamily == nil {
		return false, nil
	}
	supported, _, err := surfaceDriver.GetPhysicalDeviceSurfaceSupport(surface, c.Device, *c.PresentFamily)
	if err != nil {
		return false, errors.Wrap(err, "capability: present support")
	}
	return supported, nil
}
