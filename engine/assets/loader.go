package assets

import "fmt"

// Kind selects the loader responsible for an asset.
type Kind int

const (
	KindImage Kind = iota
	KindBitmapFont
	KindSystemFont
	KindShader
	KindModel
	KindMaterial
	KindTexture
	KindSkybox
	KindSprite
	KindSound
	// KindCustom is the first kind available to application loaders
	// (KindCustom, KindCustom+1, ...).
	KindCustom Kind = 0x100
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindBitmapFont:
		return "bitmap_font"
	case KindSystemFont:
		return "system_font"
	case KindShader:
		return "shader"
	case KindModel:
		return "model"
	case KindMaterial:
		return "material"
	case KindTexture:
		return "texture"
	case KindSkybox:
		return "skybox"
	case KindSprite:
		return "sprite"
	case KindSound:
		return "sound"
	}
	if k >= KindCustom {
		return fmt.Sprintf("custom(%d)", int(k-KindCustom))
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Loader turns a canonical file path into an in-memory payload. Loaders do
// not cache; the Manager does. Unload runs once when the last reference to a
// payload goes away and releases whatever the payload owns (GPU handles).
type Loader interface {
	Load(path string) (any, error)
	Unload(payload any) error
}

// LoaderFactory builds the loader for a kind the first time it is needed.
type LoaderFactory func() (Loader, error)
