// Package device opens the logical device and fetches its queues.
package device

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_portability_subset"
	"github.com/vkngwrapper/hellovk/internal/capability"
)

// Device is the logical device with its graphics and present queues. It
// lives for the whole process.
type Device struct {
	Driver   core1_0.CoreDeviceDriver
	Physical core1_0.PhysicalDevice

	GraphicsFamily int
	PresentFamily  int
	Graphics       core1_0.Queue
	Present        core1_0.Queue
}

// UniqueFamilies returns the family indices that need a queue, with the
// duplicate dropped when graphics and present share a family.
func UniqueFamilies(graphics, present int) []int {
	if graphics == present {
		return []int{graphics}
	}
	return []int{graphics, present}
}

// Extensions returns the device extensions to enable given what the device
// supports.
func Extensions(required []string, supported map[string]bool) []string {
	names := append([]string(nil), required...)
	if supported[khr_portability_subset.ExtensionName] {
		names = append(names, khr_portability_subset.ExtensionName)
	}
	return names
}

func Open(driver core1_0.CoreInstanceDriver, candidate *capability.Candidate, required []string) (*Device, error) {
	if !candidate.IsComplete() {
		return nil, errors.Newf("device: %s has unresolved queue families", candidate.Name)
	}

	graphics, present := *candidate.GraphicsFamily, *candidate.PresentFamily

	var queues []core1_0.DeviceQueueCreateInfo
	for _, family := range UniqueFamilies(graphics, present) {
		queues = append(queues, core1_0.DeviceQueueCreateInfo{
			QueueFamilyIndex: family,
			QueuePriorities:  []float32{1.0},
		})
	}

	deviceDriver, _, err := driver.CreateDevice(candidate.Device, nil, core1_0.DeviceCreateInfo{
		QueueCreateInfos:      queues,
		EnabledFeatures:       &core1_0.PhysicalDeviceFeatures{},
		EnabledExtensionNames: Extensions(required, candidate.Extensions),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "device: create on %s", candidate.Name)
	}

	return &Device{
		Driver:         deviceDriver,
		Physical:       candidate.Device,
		GraphicsFamily: graphics,
		PresentFamily:  present,
		Graphics:       deviceDriver.GetQueue(graphics, 0),
		Present:        deviceDriver.GetQueue(present, 0),
	}, nil
}

// SharedFamilies returns the queue family indices a swapchain image must be
// shared between, or nil when one family does both jobs.
func (d *Device) SharedFamilies() []int {
	if d.GraphicsFamily == d.PresentFamily {
		return nil
	}
	return []int{d.GraphicsFamily, d.PresentFamily}
}

func (d *Device) WaitIdle() error {
	_, err := d.Driver.DeviceWaitIdle()
	return errors.Wrap(err, "device: wait idle")
}

func (d *Device) Close() {
	if d.Driver != nil {
		d.Driver.DestroyDevice(nil)
		d.Driver = nil
	}
}
