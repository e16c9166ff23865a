// Package assets reads shader bytecode and texture images from a file system.
package assets

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"

	"github.com/cockroachdb/errors"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

// Image is a decoded texture in tightly packed, non-premultiplied RGBA8 rows.
type Image struct {
	Width    int
	Height   int
	Channels int
	Pixels   []byte
}

type Provider struct {
	fsys fs.FS
}

func NewProvider(fsys fs.FS) *Provider {
	return &Provider{fsys: fsys}
}

func (p *Provider) LoadBinary(path string) ([]byte, error) {
	data, err := fs.ReadFile(p.fsys, path)
	if err != nil {
		return nil, errors.Wrapf(err, "assets: read %s", path)
	}
	return data, nil
}

// DecodeImage decodes any registered image format into straight RGBA8.
func (p *Provider) DecodeImage(data []byte) (*Image, error) {
	return DecodeImage(data)
}

func DecodeImage(data []byte) (*Image, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "assets: decode image")
	}

	bounds := src.Bounds()
	if bounds.Empty() {
		return nil, errors.Newf("assets: %s image has no pixels", format)
	}

	// Straight alpha: the pipeline samples .rgb without blending.
	nrgba, ok := src.(*image.NRGBA)
	if !ok || nrgba.Stride != bounds.Dx()*4 || bounds.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		xdraw.Draw(nrgba, nrgba.Bounds(), src, bounds.Min, xdraw.Src)
	}

	return &Image{
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Channels: 4,
		Pixels:   nrgba.Pix,
	}, nil
}

// Solid returns a 1x1 texture of the given color.
func Solid(r, g, b, a byte) *Image {
	return &Image{Width: 1, Height: 1, Channels: 4, Pixels: []byte{r, g, b, a}}
}

// Prefetch loads every path concurrently. The result is keyed by path.
func (p *Provider) Prefetch(ctx context.Context, paths ...string) (map[string][]byte, error) {
	results := make([][]byte, len(paths))
	group, ctx := errgroup.WithContext(ctx)

	for i, path := range paths {
		i, path := i, path
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := p.LoadBinary(path)
			if err != nil {
				return err
			}
			results[i] = data
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string][]byte, len(paths))
	for i, path := range paths {
		out[path] = results[i]
	}
	return out, nil
}
