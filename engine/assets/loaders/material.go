package loaders

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/sdengine/engine/core"
	"github.com/spaghettifunk/sdengine/engine/math"
	"github.com/spaghettifunk/sdengine/engine/resources"
)

// materialFile is the on-disk layout of a .toml material:
//
//	name = "brick"
//	shader = "shaders/builtin.material.vert.spv"
//	diffuse_colour = [1.0, 1.0, 1.0, 1.0]
//	shininess = 32.0
//	diffuse_map_name = "textures/brick.png"
type materialFile struct {
	Name            string     `toml:"name"`
	Shader          string     `toml:"shader"`
	DiffuseColour   *[]float32 `toml:"diffuse_colour"`
	Shininess       float32    `toml:"shininess"`
	DiffuseMapName  string     `toml:"diffuse_map_name"`
	SpecularMapName string     `toml:"specular_map_name"`
	NormalMapName   string     `toml:"normal_map_name"`
}

type MaterialLoader struct{}

func NewMaterialLoader() *MaterialLoader {
	return &MaterialLoader{}
}

func (ml *MaterialLoader) Load(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseMaterial(data)
}

func (ml *MaterialLoader) Unload(payload any) error {
	if _, ok := payload.(*resources.Material); !ok {
		return fmt.Errorf("material loader cannot unload %T", payload)
	}
	return nil
}

func parseMaterial(data []byte) (*resources.Material, error) {
	var file materialFile
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		var strict *toml.StrictMissingError
		if !errors.As(err, &strict) {
			return nil, err
		}
		// unknown keys are tolerated but reported
		core.LogWarn("material has unknown keys: %s", strict.String())
		file = materialFile{}
		if err := toml.Unmarshal(data, &file); err != nil {
			return nil, err
		}
	}

	material := &resources.Material{
		Name:            file.Name,
		ShaderName:      file.Shader,
		DiffuseColour:   math.NewVec4One(),
		Shininess:       file.Shininess,
		DiffuseMapName:  file.DiffuseMapName,
		SpecularMapName: file.SpecularMapName,
		NormalMapName:   file.NormalMapName,
	}
	if file.DiffuseColour != nil {
		c := *file.DiffuseColour
		if len(c) != 4 {
			return nil, fmt.Errorf("invalid diffuse_colour, expected 4 values, got %d", len(c))
		}
		material.DiffuseColour = math.NewVec4(c[0], c[1], c[2], c[3])
	}

	if err := validateMaterial(material); err != nil {
		return nil, err
	}
	return material, nil
}

func validateMaterial(material *resources.Material) error {
	if material.Name == "" {
		return fmt.Errorf("material name is required")
	}
	if material.ShaderName == "" {
		return fmt.Errorf("shader name is required")
	}
	if !isValidVec4(material.DiffuseColour) {
		return fmt.Errorf("diffuse_colour values must be between 0.0 and 1.0")
	}
	if material.Shininess < 0 {
		return fmt.Errorf("shininess must be a non-negative value")
	}
	return nil
}

func isValidVec4(v math.Vec4) bool {
	return inRange(v.X) && inRange(v.Y) && inRange(v.Z) && inRange(v.W)
}

func inRange(value float32) bool {
	return value >= 0.0 && value <= 1.0
}
