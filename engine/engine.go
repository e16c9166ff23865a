// Package engine is the renderer's platform-facing API. A host hands it a
// native window and an asset source, then drives Initialize, Render,
// OnSurfaceChanged and Shutdown from a single thread.
package engine

import (
	"context"
	"encoding/binary"
	"log/slog"
	"time"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/loov/hrtime"
	"github.com/vkngwrapper/core/v3"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
	"github.com/vkngwrapper/hellovk/internal/alloc"
	"github.com/vkngwrapper/hellovk/internal/assets"
	"github.com/vkngwrapper/hellovk/internal/capability"
	"github.com/vkngwrapper/hellovk/internal/descriptor"
	"github.com/vkngwrapper/hellovk/internal/device"
	"github.com/vkngwrapper/hellovk/internal/frame"
	"github.com/vkngwrapper/hellovk/internal/instance"
	"github.com/vkngwrapper/hellovk/internal/lifetime"
	"github.com/vkngwrapper/hellovk/internal/pipeline"
	"github.com/vkngwrapper/hellovk/internal/scene"
	"github.com/vkngwrapper/hellovk/internal/swapchain"
)

var (
	ErrNoWindow       = errors.New("engine: no window to render to")
	ErrNotInitialized = errors.New("engine: not initialized")
	ErrCannotPresent  = errors.New("engine: device cannot present to the new window")
)

const fpsInterval = 5 * time.Second

// Window is the native window the engine renders into.
type Window interface {
	// ProcAddr returns the loader's vkGetInstanceProcAddr.
	ProcAddr() unsafe.Pointer
	InstanceExtensions() []string
	CreateSurface(instance core1_0.Instance, surfaceDriver khr_surface.ExtensionDriver) (khr_surface.Surface, error)
	// DrawableSize is the window's size in pixels.
	DrawableSize() (width, height int)
}

// Assets loads the files the renderer needs.
type Assets interface {
	LoadBinary(path string) ([]byte, error)
	DecodeImage(data []byte) (*assets.Image, error)
}

// Prefetcher is implemented by asset sources that can load several files at
// once.
type Prefetcher interface {
	Prefetch(ctx context.Context, paths ...string) (map[string][]byte, error)
}

type Engine struct {
	cfg    Config
	assets Assets
	logger *slog.Logger

	window      Window
	initialized bool
	stack       *lifetime.Stack

	instance      *instance.Instance
	surfaceDriver khr_surface.ExtensionDriver
	surface       khr_surface.Surface
	candidate     *capability.Candidate
	device        *device.Device
	builder       *swapchain.VulkanBuilder
	chain         *swapchain.Manager
	pipeline      *pipeline.Pipeline
	scheduler     *frame.Scheduler

	fpsStart  time.Duration
	fpsFrames uint64
}

func New(cfg Config, source Assets, logger *slog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		cfg:    cfg,
		assets: source,
		logger: logger,
	}, nil
}

func (e *Engine) Initialized() bool { return e.initialized }

func (e *Engine) windowExtent() core1_0.Extent2D {
	w, h := e.window.DrawableSize()
	return core1_0.Extent2D{Width: w, Height: h}
}

func (e *Engine) loadFiles(paths ...string) (map[string][]byte, error) {
	if p, ok := e.assets.(Prefetcher); ok {
		return p.Prefetch(context.Background(), paths...)
	}
	files := make(map[string][]byte, len(paths))
	for _, path := range paths {
		data, err := e.assets.LoadBinary(path)
		if err != nil {
			return nil, err
		}
		files[path] = data
	}
	return files, nil
}

// Initialize brings up everything between the instance and the first
// frame. On failure whatever was created is released again.
func (e *Engine) Initialize() (err error) {
	if e.initialized {
		return nil
	}
	if e.window == nil {
		return ErrNoWindow
	}

	e.stack = lifetime.NewStack(e.logger)
	defer func() {
		if err != nil {
			if e.device != nil {
				_ = e.device.WaitIdle()
			}
			e.stack.Release()
			e.reset()
		}
	}()

	paths := []string{e.cfg.VertexShader, e.cfg.FragmentShader}
	if e.cfg.Texture != "" {
		paths = append(paths, e.cfg.Texture)
	}
	files, err := e.loadFiles(paths...)
	if err != nil {
		return errors.Wrap(err, "engine: load assets")
	}

	global, err := core.CreateDriverFromProcAddr(e.window.ProcAddr())
	if err != nil {
		return errors.Wrap(err, "engine: load vulkan")
	}

	e.instance, err = instance.Create(global, instance.Options{
		AppName:          e.cfg.AppName,
		WindowExtensions: e.window.InstanceExtensions(),
		EnableValidation: e.cfg.EnableValidation,
		Logger:           e.logger,
	})
	if err != nil {
		return err
	}
	e.stack.Push("instance", e.instance.Destroy)

	e.surfaceDriver = khr_surface.CreateExtensionDriverFromCoreDriver(e.instance.Driver)
	e.surface, err = e.window.CreateSurface(e.instance.Driver.Instance(), e.surfaceDriver)
	if err != nil {
		return errors.Wrap(err, "engine: create surface")
	}
	e.stack.Push("surface", e.destroySurface)

	candidates, err := capability.Query(e.instance.Driver, e.surfaceDriver, e.surface)
	if err != nil {
		return err
	}
	e.candidate, err = capability.Select(candidates, capability.RequiredExtensions)
	if err != nil {
		return err
	}
	e.logger.Info("selected GPU", slog.String("name", e.candidate.Name))

	e.device, err = device.Open(e.instance.Driver, e.candidate, capability.RequiredExtensions)
	if err != nil {
		return err
	}
	e.stack.Push("device", e.device.Close)

	props, err := e.instance.Driver.GetPhysicalDeviceProperties(e.device.Physical)
	if err != nil {
		return errors.Wrap(err, "engine: device properties")
	}

	swapchainDriver := khr_swapchain.CreateExtensionDriverFromCoreDriver(e.device.Driver)
	e.builder = swapchain.NewVulkanBuilder(e.device, e.surfaceDriver, swapchainDriver, e.surface, e.windowExtent)
	e.chain = swapchain.NewManager(e.builder, e.logger)
	e.stack.Push("render pass", e.builder.DestroyRenderPass)
	e.stack.Push("swapchain", e.chain.Release)
	if err = e.chain.Create(); err != nil {
		return err
	}
	if !e.builder.RenderPass().Initialized() {
		// the pipeline needs the render pass, which comes with the first chain
		return errors.Wrap(ErrNoWindow, "engine: window has no drawable area")
	}

	layouts, err := descriptor.NewLayouts(e.device.Driver)
	if err != nil {
		return err
	}
	e.stack.Push("descriptor layouts", layouts.Destroy)

	e.pipeline, err = pipeline.Build(e.device.Driver, pipeline.Config{
		VertexShader:     files[e.cfg.VertexShader],
		FragmentShader:   files[e.cfg.FragmentShader],
		RenderPass:       e.builder.RenderPass(),
		SetLayouts:       layouts.All(),
		VertexBindings:   scene.VertexBindings(),
		VertexAttributes: scene.VertexAttributes(),
		CacheData:        e.cfg.PipelineCache,
		Identity: pipeline.Identity{
			VendorID:  props.VendorID,
			DeviceID:  props.DeviceID,
			CacheUUID: props.PipelineCacheUUID,
		},
		Logger: e.logger,
	})
	if err != nil {
		return err
	}
	e.stack.Push("pipeline", e.pipeline.Destroy)

	pool, err := frame.NewCommandPool(e.device.Driver, e.device.GraphicsFamily)
	if err != nil {
		return err
	}
	e.stack.Push("command pool", func() { e.device.Driver.DestroyCommandPool(pool, nil) })

	allocator := alloc.New(e.device.Driver, e.instance.Driver.GetPhysicalDeviceMemoryProperties(e.device.Physical), pool, e.device.Graphics)

	sc, err := scene.Default(e.cfg.Texture)
	if err != nil {
		return err
	}

	geometry, err := allocator.Upload(sc.Geometry.Bytes, core1_0.BufferUsageVertexBuffer|core1_0.BufferUsageIndexBuffer)
	if err != nil {
		return errors.Wrap(err, "engine: upload geometry")
	}
	e.stack.Push("geometry", func() { allocator.DestroyBuffer(geometry) })

	image := assets.Solid(255, 255, 255, 255)
	if e.cfg.Texture != "" {
		image, err = e.assets.DecodeImage(files[e.cfg.Texture])
		if err != nil {
			return errors.Wrapf(err, "engine: decode %s", e.cfg.Texture)
		}
	}
	texture, err := allocator.UploadTexture(image)
	if err != nil {
		return err
	}
	e.stack.Push("texture", func() { allocator.DestroyTexture(texture) })

	var uniforms []descriptor.Uniform
	for _, id := range sc.Objects() {
		u := descriptor.Uniform{ID: id, Size: binary.Size(scene.ObjectUniform{}), Layout: layouts.Object}
		if id == scene.ObjectLight {
			u.Size, u.Layout = binary.Size(scene.LightUniform{}), layouts.Light
		}
		uniforms = append(uniforms, u)
	}

	descriptors, err := descriptor.New(e.device.Driver, allocator, descriptor.Options{
		Frames:        e.cfg.FramesInFlight,
		Uniforms:      uniforms,
		Texture:       texture,
		TextureLayout: layouts.Texture,
	})
	if err != nil {
		return err
	}
	e.stack.Push("descriptors", descriptors.Destroy)

	slots, err := frame.NewSlots(e.device.Driver, pool, e.cfg.FramesInFlight)
	if err != nil {
		return err
	}
	e.stack.Push("frame slots", slots.Destroy)

	target := &frameTarget{
		dev:         e.device,
		chain:       e.chain,
		builder:     e.builder,
		slots:       slots,
		pipeline:    e.pipeline,
		geometry:    geometry,
		scene:       sc,
		descriptors: descriptors,
		animator:    scene.NewAnimator(nil),
		clearColor:  e.cfg.ClearColor,
	}
	e.scheduler = frame.NewScheduler(target, e.chain, e.cfg.FramesInFlight)

	e.fpsStart = hrtime.Now()
	e.initialized = true
	return nil
}

func (e *Engine) destroySurface() {
	if e.surface.Initialized() {
		e.surfaceDriver.DestroySurface(e.surface, nil)
		e.surface = khr_surface.Surface{}
	}
}

func (e *Engine) reset() {
	e.initialized = false
	e.instance = nil
	e.candidate = nil
	e.device = nil
	e.builder = nil
	e.chain = nil
	e.pipeline = nil
	e.scheduler = nil
}

// Render draws one frame. It does nothing until Initialize has succeeded, or
// while a replacement window has no chain yet.
func (e *Engine) Render() error {
	if !e.initialized || e.chain.State() == swapchain.Absent {
		return nil
	}
	if err := e.scheduler.Render(); err != nil {
		return err
	}
	e.countFrame()
	return nil
}

func (e *Engine) countFrame() {
	e.fpsFrames++
	now := hrtime.Now()
	if elapsed := now - e.fpsStart; elapsed >= fpsInterval {
		stats := e.scheduler.Stats()
		e.logger.Debug("frame rate",
			slog.Float64("fps", float64(e.fpsFrames)/elapsed.Seconds()),
			slog.Uint64("rendered", stats.Rendered),
			slog.Uint64("dropped", stats.Dropped))
		e.fpsStart = now
		e.fpsFrames = 0
	}
}

// OnSurfaceChanged tells the engine about its window. Before Initialize it
// only records the window. The same window again means it was resized. A
// different window replaces the surface and the chain built on it.
func (e *Engine) OnSurfaceChanged(window Window) error {
	if window == nil {
		return ErrNoWindow
	}
	if !e.initialized {
		e.window = window
		return nil
	}
	if window == e.window {
		e.chain.MarkStale()
		return nil
	}

	if err := e.device.WaitIdle(); err != nil {
		return err
	}
	e.chain.Release()
	e.destroySurface()
	e.window = window

	surface, err := window.CreateSurface(e.instance.Driver.Instance(), e.surfaceDriver)
	if err != nil {
		return errors.Wrap(err, "engine: create replacement surface")
	}
	e.surface = surface

	ok, err := capability.CanPresent(e.surfaceDriver, surface, e.candidate)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(ErrCannotPresent, "engine: %s", e.candidate.Name)
	}

	if err = e.chain.ReplaceSurface(surface); err != nil {
		return err
	}
	e.logger.Info("surface replaced")
	return e.chain.Create()
}

// PipelineCacheData returns the driver's pipeline cache so the host can
// pass it back through Config.PipelineCache on the next run.
func (e *Engine) PipelineCacheData() ([]byte, error) {
	if e.pipeline == nil {
		return nil, ErrNotInitialized
	}
	return e.pipeline.CacheData()
}

// Shutdown waits for the GPU and destroys everything in reverse creation
// order. The engine may be initialized again afterwards.
func (e *Engine) Shutdown() error {
	if !e.initialized {
		return nil
	}
	err := e.device.WaitIdle()
	e.stack.Release()
	e.reset()
	return err
}
