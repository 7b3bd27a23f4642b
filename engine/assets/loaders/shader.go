package loaders

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/sdengine/engine/renderer"
	"github.com/spaghettifunk/sdengine/engine/renderer/metadata"
	"github.com/spaghettifunk/sdengine/engine/resources"
)

const spirvMagic uint32 = 0x07230203

// ShaderLoader reads compiled SPIR-V and creates a shader module on the
// device. The stage comes from the file name: "name.vert.spv",
// "name.frag.spv" or "name.comp.spv".
type ShaderLoader struct {
	device renderer.Device
}

func NewShaderLoader(device renderer.Device) *ShaderLoader {
	return &ShaderLoader{device: device}
}

func (sl *ShaderLoader) Load(path string) (any, error) {
	stage, err := shaderStage(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	code, err := bytesToBytecode(data)
	if err != nil {
		return nil, fmt.Errorf("invalid SPIR-V in '%s': %w", path, err)
	}

	name := textureName(path)
	handle, err := sl.device.CreateShader(&metadata.ShaderDesc{
		Name:  name,
		Stage: stage,
		Code:  code,
	})
	if err != nil {
		return nil, err
	}
	return &resources.Shader{
		Name:     name,
		Stage:    stage,
		Handle:   handle,
		CodeSize: len(data),
	}, nil
}

func (sl *ShaderLoader) Unload(payload any) error {
	shader, ok := payload.(*resources.Shader)
	if !ok {
		return fmt.Errorf("shader loader cannot unload %T", payload)
	}
	if !shader.Handle.IsValid() {
		return nil
	}
	err := sl.device.Destroy(shader.Handle)
	shader.Handle = metadata.InvalidGPUHandle
	return err
}

func shaderStage(path string) (metadata.ShaderStage, error) {
	name := strings.TrimSuffix(filepath.Base(path), ".spv")
	switch filepath.Ext(name) {
	case ".vert":
		return metadata.ShaderStageVertex, nil
	case ".frag":
		return metadata.ShaderStageFragment, nil
	case ".comp":
		return metadata.ShaderStageCompute, nil
	}
	return 0, fmt.Errorf("cannot tell shader stage of '%s', expected .vert, .frag or .comp", filepath.Base(path))
}

// bytesToBytecode packs little-endian bytes into SPIR-V words.
func bytesToBytecode(b []byte) ([]uint32, error) {
	if len(b) == 0 || len(b)%4 != 0 {
		return nil, fmt.Errorf("size %d is not a positive multiple of 4", len(b))
	}
	byteCode := make([]uint32, len(b)/4)
	for i := range byteCode {
		byteCode[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	if byteCode[0] != spirvMagic {
		return nil, fmt.Errorf("bad magic number 0x%08x", byteCode[0])
	}
	return byteCode, nil
}
