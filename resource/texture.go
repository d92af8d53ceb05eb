package resource

import (
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/rotisserie/eris"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/plus3/orrery/gpu"
)

// DefaultMaxTextureSize bounds the longest edge of loaded textures.
const DefaultMaxTextureSize = 2048

// DecodeTexture reads an image file and scales it down so that its longest
// edge does not exceed maxSize. A maxSize of 0 disables scaling.
func DecodeTexture(path string, maxSize int) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open texture %s", path)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, eris.Wrapf(err, "decode texture %s", path)
	}

	return fitTexture(img, maxSize), nil
}

// LoadTexture decodes path and uploads it.
func (r *Registry) LoadTexture(path string, wrap gpu.WrapMode, maxSize int) (TextureHandle, error) {
	img, err := DecodeTexture(path, maxSize)
	if err != nil {
		return 0, err
	}
	return r.AddTexture(img, wrap)
}

// AddSolidTexture uploads a 1x1 texture of a single color. It stands in for
// assets that are not available.
func (r *Registry) AddSolidTexture(c color.Color) (TextureHandle, error) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, c)
	return r.AddTexture(img, gpu.WrapRepeat)
}

func fitTexture(img image.Image, maxSize int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSize <= 0 || (w <= maxSize && h <= maxSize) {
		return img
	}

	scale := float64(maxSize) / float64(max(w, h))
	nw := max(int(float64(w)*scale), 1)
	nh := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
