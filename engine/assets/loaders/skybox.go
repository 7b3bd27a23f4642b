package loaders

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/sdengine/engine/renderer"
	"github.com/spaghettifunk/sdengine/engine/renderer/metadata"
	"github.com/spaghettifunk/sdengine/engine/resources"
)

// skyboxFile lists six face images ordered +X, -X, +Y, -Y, +Z, -Z. Relative
// face paths are resolved against the descriptor's directory.
type skyboxFile struct {
	Name  string   `toml:"name"`
	Faces []string `toml:"faces"`
}

// SkyboxLoader builds a cubemap texture from a TOML descriptor. The cubemap
// belongs to the skybox and is destroyed with it.
type SkyboxLoader struct {
	device renderer.Device
}

func NewSkyboxLoader(device renderer.Device) *SkyboxLoader {
	return &SkyboxLoader{device: device}
}

func (sl *SkyboxLoader) Load(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file skyboxFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Faces) != 6 {
		return nil, fmt.Errorf("skybox needs 6 faces, got %d", len(file.Faces))
	}
	if file.Name == "" {
		file.Name = textureName(path)
	}

	skybox := &resources.Skybox{Name: file.Name}
	layers := make([][]uint8, 6)
	var width, height uint32
	for i, face := range file.Faces {
		facePath := resolveRelative(path, face)
		img, err := decodeImage(facePath, false)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			width, height = img.Width, img.Height
		} else if img.Width != width || img.Height != height {
			return nil, fmt.Errorf("skybox face '%s' is %dx%d, expected %dx%d", face, img.Width, img.Height, width, height)
		}
		skybox.Faces[i] = facePath
		layers[i] = img.Pixels
	}

	handle, err := sl.device.CreateTexture(&metadata.TextureDesc{
		Name:         file.Name,
		Width:        width,
		Height:       height,
		ChannelCount: 4,
		Layers:       layers,
		Cubemap:      true,
	})
	if err != nil {
		return nil, err
	}
	skybox.Cubemap = &resources.Texture{
		Name:         file.Name,
		TextureType:  resources.TextureTypeCube,
		Width:        width,
		Height:       height,
		ChannelCount: 4,
		Handle:       handle,
	}
	return skybox, nil
}

func (sl *SkyboxLoader) Unload(payload any) error {
	skybox, ok := payload.(*resources.Skybox)
	if !ok {
		return fmt.Errorf("skybox loader cannot unload %T", payload)
	}
	return destroyTexture(sl.device, skybox.Cubemap)
}

// resolveRelative resolves ref against the directory of the file that
// references it.
func resolveRelative(from, ref string) string {
	if filepath.IsAbs(ref) {
		return filepath.Clean(ref)
	}
	return filepath.Join(filepath.Dir(from), ref)
}
