package loaders

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/spaghettifunk/sdengine/engine/resources"
)

// ImageLoader decodes an image file into CPU-side RGBA pixels.
type ImageLoader struct {
	// FlipY stores rows bottom-up, as most GPU texture coordinates expect.
	FlipY bool
}

func NewImageLoader() *ImageLoader {
	return &ImageLoader{}
}

func (il *ImageLoader) Load(path string) (any, error) {
	return decodeImage(path, il.FlipY)
}

func (il *ImageLoader) Unload(payload any) error {
	if _, ok := payload.(*resources.Image); !ok {
		return fmt.Errorf("image loader cannot unload %T", payload)
	}
	return nil
}

// decodeImage reads path and converts it to tightly packed RGBA.
func decodeImage(path string, flipY bool) (*resources.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	src, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image '%s': %w", path, err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("image '%s' (%s) is empty", path, format)
	}

	rgba, ok := src.(*image.NRGBA)
	if !ok || rgba.Stride != width*4 || bounds.Min != (image.Point{}) {
		rgba = image.NewNRGBA(image.Rect(0, 0, width, height))
		draw.Draw(rgba, rgba.Bounds(), src, bounds.Min, draw.Src)
	}

	pixels := rgba.Pix
	if flipY {
		pixels = make([]uint8, len(rgba.Pix))
		stride := width * 4
		for y := 0; y < height; y++ {
			copy(pixels[y*stride:(y+1)*stride], rgba.Pix[(height-1-y)*stride:(height-y)*stride])
		}
	}

	return &resources.Image{
		ChannelCount: 4,
		Width:        uint32(width),
		Height:       uint32(height),
		Pixels:       pixels,
	}, nil
}

func hasTransparency(img *resources.Image) bool {
	if img.ChannelCount != 4 {
		return false
	}
	for i := 3; i < len(img.Pixels); i += 4 {
		if img.Pixels[i] < 255 {
			return true
		}
	}
	return false
}
