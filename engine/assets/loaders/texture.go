package loaders

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/sdengine/engine/renderer"
	"github.com/spaghettifunk/sdengine/engine/renderer/metadata"
	"github.com/spaghettifunk/sdengine/engine/resources"
)

// TextureLoader decodes an image and uploads it as a 2D texture. Unload
// destroys the GPU texture.
type TextureLoader struct {
	device renderer.Device
	FlipY  bool
}

func NewTextureLoader(device renderer.Device) *TextureLoader {
	return &TextureLoader{device: device}
}

func (tl *TextureLoader) Load(path string) (any, error) {
	img, err := decodeImage(path, tl.FlipY)
	if err != nil {
		return nil, err
	}
	return uploadTexture(tl.device, textureName(path), img)
}

func (tl *TextureLoader) Unload(payload any) error {
	tex, ok := payload.(*resources.Texture)
	if !ok {
		return fmt.Errorf("texture loader cannot unload %T", payload)
	}
	return destroyTexture(tl.device, tex)
}

func uploadTexture(device renderer.Device, name string, img *resources.Image) (*resources.Texture, error) {
	handle, err := device.CreateTexture(&metadata.TextureDesc{
		Name:         name,
		Width:        img.Width,
		Height:       img.Height,
		ChannelCount: img.ChannelCount,
		Layers:       [][]uint8{img.Pixels},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload texture '%s': %w", name, err)
	}
	return &resources.Texture{
		Name:            name,
		TextureType:     resources.TextureType2d,
		Width:           img.Width,
		Height:          img.Height,
		ChannelCount:    img.ChannelCount,
		HasTransparency: hasTransparency(img),
		Handle:          handle,
	}, nil
}

func destroyTexture(device renderer.Device, tex *resources.Texture) error {
	if tex == nil || !tex.Handle.IsValid() {
		return nil
	}
	err := device.Destroy(tex.Handle)
	tex.Handle = metadata.InvalidGPUHandle
	return err
}

// textureName is the file name without directory and extension.
func textureName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
