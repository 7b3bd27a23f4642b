package loaders

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/spaghettifunk/sdengine/engine/math"
	"github.com/spaghettifunk/sdengine/engine/renderer"
	"github.com/spaghettifunk/sdengine/engine/resources"
)

type spriteSheetFile struct {
	Name       string                `yaml:"name"`
	Texture    string                `yaml:"texture"`
	Frames     []spriteFrameFile     `yaml:"frames"`
	Animations []spriteAnimationFile `yaml:"animations"`
}

type spriteFrameFile struct {
	Name   string `yaml:"name"`
	X      uint32 `yaml:"x"`
	Y      uint32 `yaml:"y"`
	Width  uint32 `yaml:"width"`
	Height uint32 `yaml:"height"`
}

type spriteAnimationFile struct {
	Name   string   `yaml:"name"`
	Frames []string `yaml:"frames"`
	FPS    float32  `yaml:"fps"`
	Loop   bool     `yaml:"loop"`
}

// SpriteLoader reads a YAML sprite sheet, uploads its atlas and computes
// frame UVs. The atlas texture belongs to the sheet.
type SpriteLoader struct {
	device renderer.Device
}

func NewSpriteLoader(device renderer.Device) *SpriteLoader {
	return &SpriteLoader{device: device}
}

func (sl *SpriteLoader) Load(path string) (any, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var desc spriteSheetFile
	if err := yaml.NewDecoder(file).Decode(&desc); err != nil {
		return nil, err
	}
	if desc.Texture == "" {
		return nil, fmt.Errorf("sprite sheet has no texture")
	}
	if desc.Name == "" {
		desc.Name = textureName(path)
	}

	img, err := decodeImage(resolveRelative(path, desc.Texture), false)
	if err != nil {
		return nil, err
	}
	sheet, err := buildSpriteSheet(&desc, img.Width, img.Height)
	if err != nil {
		return nil, err
	}

	tex, err := uploadTexture(sl.device, desc.Name, img)
	if err != nil {
		return nil, err
	}
	sheet.Texture = tex
	return sheet, nil
}

func (sl *SpriteLoader) Unload(payload any) error {
	sheet, ok := payload.(*resources.SpriteSheet)
	if !ok {
		return fmt.Errorf("sprite loader cannot unload %T", payload)
	}
	return destroyTexture(sl.device, sheet.Texture)
}

func buildSpriteSheet(desc *spriteSheetFile, width, height uint32) (*resources.SpriteSheet, error) {
	sheet := &resources.SpriteSheet{
		Name:       desc.Name,
		Frames:     make(map[string]resources.SpriteFrame, len(desc.Frames)),
		Animations: make(map[string]resources.SpriteAnimation, len(desc.Animations)),
	}

	w, h := float32(width), float32(height)
	for _, f := range desc.Frames {
		if f.Name == "" {
			return nil, fmt.Errorf("sprite frame without a name")
		}
		if _, dup := sheet.Frames[f.Name]; dup {
			return nil, fmt.Errorf("duplicate sprite frame '%s'", f.Name)
		}
		if f.Width == 0 || f.Height == 0 || f.X+f.Width > width || f.Y+f.Height > height {
			return nil, fmt.Errorf("sprite frame '%s' lies outside the %dx%d atlas", f.Name, width, height)
		}
		sheet.Frames[f.Name] = resources.SpriteFrame{
			Name:   f.Name,
			X:      f.X,
			Y:      f.Y,
			Width:  f.Width,
			Height: f.Height,
			UVMin:  math.NewVec2(float32(f.X)/w, float32(f.Y)/h),
			UVMax:  math.NewVec2(float32(f.X+f.Width)/w, float32(f.Y+f.Height)/h),
		}
	}

	for _, a := range desc.Animations {
		if a.FPS <= 0 {
			return nil, fmt.Errorf("sprite animation '%s' needs a positive fps", a.Name)
		}
		for _, frame := range a.Frames {
			if _, ok := sheet.Frames[frame]; !ok {
				return nil, fmt.Errorf("sprite animation '%s' references unknown frame '%s'", a.Name, frame)
			}
		}
		sheet.Animations[a.Name] = resources.SpriteAnimation{
			Name:   a.Name,
			Frames: a.Frames,
			FPS:    a.FPS,
			Loop:   a.Loop,
		}
	}
	return sheet, nil
}
