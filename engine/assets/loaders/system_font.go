package loaders

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/image/font/opentype"

	"github.com/spaghettifunk/sdengine/engine/resources"
)

// SystemFontLoader reads a font descriptor of "file=" and "face=" lines:
//
//	# comments are skipped
//	file=NotoSans.ttc
//	face=Noto Sans
//	face=Noto Sans Bold
//
// The file is a TrueType/OpenType font or collection relative to the
// descriptor; faces are numbered in the order they are listed.
type SystemFontLoader struct{}

func NewSystemFontLoader() *SystemFontLoader {
	return &SystemFontLoader{}
}

func (fl *SystemFontLoader) Load(path string) (any, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	rd := &resources.SystemFont{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}

		switch {
		case strings.HasPrefix(line, "file="):
			if rd.Collection != nil {
				return nil, fmt.Errorf("font descriptor lists more than one file")
			}
			fontBytes, err := os.ReadFile(resolveRelative(path, strings.TrimPrefix(line, "file=")))
			if err != nil {
				return nil, err
			}
			collection, err := opentype.ParseCollection(fontBytes)
			if err != nil {
				return nil, err
			}
			rd.Collection = collection
			rd.BinarySize = uint64(len(fontBytes))
		case strings.HasPrefix(line, "face="):
			rd.Faces = append(rd.Faces, resources.SystemFontFace{
				Name:  strings.TrimPrefix(line, "face="),
				Index: len(rd.Faces),
			})
		default:
			return nil, fmt.Errorf("invalid font descriptor line '%s'", line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if rd.Collection == nil {
		return nil, fmt.Errorf("font descriptor has no file")
	}
	if len(rd.Faces) == 0 {
		return nil, fmt.Errorf("font descriptor has no face")
	}
	if n := rd.Collection.NumFonts(); len(rd.Faces) > n {
		return nil, fmt.Errorf("font descriptor lists %d faces, file has %d", len(rd.Faces), n)
	}
	return rd, nil
}

func (fl *SystemFontLoader) Unload(payload any) error {
	if _, ok := payload.(*resources.SystemFont); !ok {
		return fmt.Errorf("system font loader cannot unload %T", payload)
	}
	return nil
}
