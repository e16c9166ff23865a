package main

import (
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	vkng_sdl2 "github.com/vkngwrapper/integrations/sdl2/v3"
)

// sdlWindow adapts an SDL window to engine.Window. A new adapter for the
// same SDL window counts as a new native window.
type sdlWindow struct {
	window *sdl.Window
}

func (w *sdlWindow) ProcAddr() unsafe.Pointer {
	return sdl.VulkanGetVkGetInstanceProcAddr()
}

func (w *sdlWindow) InstanceExtensions() []string {
	return w.window.VulkanGetInstanceExtensions()
}

func (w *sdlWindow) DrawableSize() (int, int) {
	width, height := w.window.VulkanGetDrawableSize()
	return int(width), int(height)
}

func (w *sdlWindow) CreateSurface(instance core1_0.Instance, surfaceDriver khr_surface.ExtensionDriver) (khr_surface.Surface, error) {
	return vkng_sdl2.CreateSurface(instance, surfaceDriver, w.window)
}
