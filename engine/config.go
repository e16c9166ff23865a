package engine

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/hellovk/internal/frame"
)

const (
	DefaultAppName        = "hellovk"
	DefaultVertexShader   = "shaders/shader.vert.spv"
	DefaultFragmentShader = "shaders/shader.frag.spv"
	DefaultTexture        = "textures/texture.png"
)

var ErrInvalidConfig = errors.New("invalid engine config")

type Config struct {
	AppName          string
	FramesInFlight   int
	EnableValidation bool

	// Asset paths, resolved by the engine's Assets.
	VertexShader   string
	FragmentShader string
	// Texture is drawn on the floor. Empty means plain white.
	Texture string

	ClearColor [4]float32

	// PipelineCache is a blob from an earlier PipelineCacheData call. It is
	// ignored if another driver wrote it.
	PipelineCache []byte
}

func DefaultConfig() Config {
	return Config{
		AppName:        DefaultAppName,
		FramesInFlight: frame.DefaultFramesInFlight,
		VertexShader:   DefaultVertexShader,
		FragmentShader: DefaultFragmentShader,
		Texture:        DefaultTexture,
		ClearColor:     [4]float32{0.2588, 0.2863, 0.2863, 1},
	}
}

func (c Config) Validate() error {
	if c.FramesInFlight < 1 {
		return errors.Wrapf(ErrInvalidConfig, "frames in flight is %d", c.FramesInFlight)
	}
	if c.VertexShader == "" {
		return errors.Wrap(ErrInvalidConfig, "no vertex shader")
	}
	if c.FragmentShader == "" {
		return errors.Wrap(ErrInvalidConfig, "no fragment shader")
	}
	return nil
}
