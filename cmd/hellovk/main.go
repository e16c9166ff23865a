package main

//go:generate glslc ../../assets/shaders/shader.vert -o ../../assets/shaders/shader.vert.spv
//go:generate glslc ../../assets/shaders/shader.frag -o ../../assets/shaders/shader.frag.spv

import (
	"io/fs"
	"log"
	"log/slog"
	"os"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/hellovk/engine"
	"github.com/vkngwrapper/hellovk/internal/assets"
)

type app struct {
	opts    options
	logger  *slog.Logger
	window  *sdl.Window
	// current is the adapter the engine last saw
	current *sdlWindow
	engine  *engine.Engine
}

func engineConfig(opts options, cache []byte) engine.Config {
	cfg := engine.DefaultConfig()
	cfg.EnableValidation = opts.Validation
	if opts.TextureSet {
		cfg.Texture = opts.Texture
	}
	if opts.Frames > 0 {
		cfg.FramesInFlight = opts.Frames
	}
	cfg.PipelineCache = cache
	return cfg
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// explainMissingAssets points at the generate step when an asset file is
// absent, which out of a fresh checkout means the shader bytecode.
func explainMissingAssets(err error, dir string) error {
	if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return errors.Wrapf(err, "asset missing under %s; compile the shaders with go generate ./cmd/hellovk (needs glslc)", dir)
}

func (a *app) Run() error {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return errors.Wrap(err, "init sdl")
	}
	defer sdl.Quit()

	window, err := sdl.CreateWindow(engine.DefaultAppName, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, 800, 600, sdl.WINDOW_SHOWN|sdl.WINDOW_VULKAN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		return errors.Wrap(err, "create window")
	}
	defer window.Destroy()
	a.window = window
	a.current = &sdlWindow{window: window}

	var cache []byte
	if a.opts.PipelineCache != "" {
		cache, err = os.ReadFile(a.opts.PipelineCache)
		if err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "read pipeline cache %s", a.opts.PipelineCache)
		}
	}

	a.engine, err = engine.New(engineConfig(a.opts, cache), assets.NewProvider(os.DirFS(a.opts.AssetDir)), a.logger)
	if err != nil {
		return err
	}

	if err = a.engine.OnSurfaceChanged(a.current); err != nil {
		return err
	}
	if err = a.engine.Initialize(); err != nil {
		return explainMissingAssets(err, a.opts.AssetDir)
	}
	defer func() {
		if err := a.engine.Shutdown(); err != nil {
			a.logger.Error("shutdown", slog.String("error", err.Error()))
		}
	}()

	if err = a.mainLoop(); err != nil {
		return err
	}
	return a.saveCache()
}

func (a *app) saveCache() error {
	if a.opts.PipelineCache == "" {
		return nil
	}
	data, err := a.engine.PipelineCacheData()
	if err != nil {
		return err
	}
	return errors.Wrapf(os.WriteFile(a.opts.PipelineCache, data, 0o644), "write pipeline cache %s", a.opts.PipelineCache)
}

func (a *app) mainLoop() error {
	rendering := true

appLoop:
	for true {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch e := event.(type) {
			case *sdl.QuitEvent:
				break appLoop
			case *sdl.WindowEvent:
				switch e.Event {
				case sdl.WINDOWEVENT_MINIMIZED:
					rendering = false
				case sdl.WINDOWEVENT_RESTORED:
					rendering = true
				case sdl.WINDOWEVENT_RESIZED, sdl.WINDOWEVENT_SIZE_CHANGED:
					w, h := a.current.DrawableSize()
					rendering = w > 0 && h > 0
					if err := a.engine.OnSurfaceChanged(a.current); err != nil {
						return err
					}
				}
			case *sdl.RenderEvent:
				if e.Type == sdl.RENDER_DEVICE_RESET {
					// the native surface is gone, start over on a fresh one
					a.current = &sdlWindow{window: a.window}
					if err := a.engine.OnSurfaceChanged(a.current); err != nil {
						return err
					}
				}
			}
		}
		if rendering {
			if err := a.engine.Render(); err != nil {
				return err
			}
		}
	}

	return nil
}

func main() {
	runtime.LockOSThread()

	opts, err := parseArgs(os.Args[1:])
	if errors.Is(err, errHelp) {
		printUsage(os.Stdout)
		os.Exit(0)
	}
	if err != nil {
		log.Printf("%v", err)
		log.Fatalln("Use --help or -h for option list.")
	}

	a := &app{opts: opts, logger: newLogger(opts.Verbose)}
	if err = a.Run(); err != nil {
		log.Fatalf("%+v\n", err)
	}
}
