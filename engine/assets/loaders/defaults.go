package loaders

import (
	"github.com/spaghettifunk/sdengine/engine/assets"
	"github.com/spaghettifunk/sdengine/engine/renderer"
	"github.com/spaghettifunk/sdengine/engine/resources"
)

// RegisterDefaults registers a loader for every built-in asset kind. Loaders
// that create GPU objects use device.
func RegisterDefaults(m *assets.Manager, device renderer.Device) error {
	regs := []func() error{
		func() error {
			return assets.RegisterLoader[*resources.Image](m, assets.KindImage, func() (assets.Loader, error) { return NewImageLoader(), nil })
		},
		func() error {
			return assets.RegisterLoader[*resources.BitmapFont](m, assets.KindBitmapFont, func() (assets.Loader, error) { return NewBitmapFontLoader(), nil })
		},
		func() error {
			return assets.RegisterLoader[*resources.SystemFont](m, assets.KindSystemFont, func() (assets.Loader, error) { return NewSystemFontLoader(), nil })
		},
		func() error {
			return assets.RegisterLoader[*resources.Shader](m, assets.KindShader, func() (assets.Loader, error) { return NewShaderLoader(device), nil })
		},
		func() error {
			return assets.RegisterLoader[*resources.Model](m, assets.KindModel, func() (assets.Loader, error) { return NewModelLoader(), nil })
		},
		func() error {
			return assets.RegisterLoader[*resources.Material](m, assets.KindMaterial, func() (assets.Loader, error) { return NewMaterialLoader(), nil })
		},
		func() error {
			return assets.RegisterLoader[*resources.Texture](m, assets.KindTexture, func() (assets.Loader, error) { return NewTextureLoader(device), nil })
		},
		func() error {
			return assets.RegisterLoader[*resources.Skybox](m, assets.KindSkybox, func() (assets.Loader, error) { return NewSkyboxLoader(device), nil })
		},
		func() error {
			return assets.RegisterLoader[*resources.SpriteSheet](m, assets.KindSprite, func() (assets.Loader, error) { return NewSpriteLoader(device), nil })
		},
		func() error {
			return assets.RegisterLoader[*resources.Sound](m, assets.KindSound, func() (assets.Loader, error) { return NewSoundLoader(), nil })
		},
	}
	for _, reg := range regs {
		if err := reg(); err != nil {
			return err
		}
	}
	return nil
}
