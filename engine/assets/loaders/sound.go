package loaders

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"

	"github.com/spaghettifunk/sdengine/engine/resources"
)

// SoundLoader decodes a WAV file fully into memory.
type SoundLoader struct{}

func NewSoundLoader() *SoundLoader {
	return &SoundLoader{}
}

func (sl *SoundLoader) Load(path string) (any, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".wav" {
		return nil, fmt.Errorf("unsupported sound type '%s'", ext)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	// the decoder closes the file
	streamer, format, err := wav.Decode(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	defer streamer.Close()

	buffer := beep.NewBuffer(format)
	buffer.Append(streamer)
	if err := streamer.Err(); err != nil {
		return nil, err
	}
	return &resources.Sound{Format: format, Buffer: buffer}, nil
}

func (sl *SoundLoader) Unload(payload any) error {
	if _, ok := payload.(*resources.Sound); !ok {
		return fmt.Errorf("sound loader cannot unload %T", payload)
	}
	return nil
}
