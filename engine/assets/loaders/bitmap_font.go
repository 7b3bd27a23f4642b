package loaders

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/fzipp/bmfont"

	"github.com/spaghettifunk/sdengine/engine/resources"
)

// BitmapFontLoader imports AngelCode .fnt descriptors. Page images are
// listed by file name; uploading them is left to the text renderer.
type BitmapFontLoader struct{}

func NewBitmapFontLoader() *BitmapFontLoader {
	return &BitmapFontLoader{}
}

func (fl *BitmapFontLoader) Load(path string) (any, error) {
	if ext := filepath.Ext(path); ext != ".fnt" {
		return nil, fmt.Errorf("unsupported bitmap font type '%s'", ext)
	}
	font, err := bmfont.Load(path)
	if err != nil {
		return nil, err
	}
	d := font.Descriptor

	out := &resources.BitmapFont{
		Face:       d.Info.Face,
		Size:       uint32(d.Info.Size),
		LineHeight: int32(d.Common.LineHeight),
		Baseline:   int32(d.Common.Base),
		AtlasSizeX: int32(d.Common.ScaleW),
		AtlasSizeY: int32(d.Common.ScaleH),
		Glyphs:     make([]resources.FontGlyph, 0, len(d.Chars)),
		Kernings:   make([]resources.FontKerning, 0, len(d.Kerning)),
		Pages:      make([]resources.BitmapFontPage, 0, len(d.Pages)),
	}

	for _, p := range d.Pages {
		out.Pages = append(out.Pages, resources.BitmapFontPage{
			ID:   int8(p.ID),
			File: p.File,
		})
	}
	for _, g := range d.Chars {
		out.Glyphs = append(out.Glyphs, resources.FontGlyph{
			Codepoint: rune(g.ID),
			X:         uint16(g.X),
			Y:         uint16(g.Y),
			Width:     uint16(g.Width),
			Height:    uint16(g.Height),
			XOffset:   int16(g.XOffset),
			YOffset:   int16(g.YOffset),
			XAdvance:  int16(g.XAdvance),
			PageID:    uint8(g.Page),
		})
	}
	for p, k := range d.Kerning {
		out.Kernings = append(out.Kernings, resources.FontKerning{
			Codepoint0: rune(p.First),
			Codepoint1: rune(p.Second),
			Amount:     int16(k.Amount),
		})
	}

	// descriptor tables are maps
	sort.Slice(out.Pages, func(i, j int) bool { return out.Pages[i].ID < out.Pages[j].ID })
	sort.Slice(out.Glyphs, func(i, j int) bool { return out.Glyphs[i].Codepoint < out.Glyphs[j].Codepoint })
	sort.Slice(out.Kernings, func(i, j int) bool {
		a, b := out.Kernings[i], out.Kernings[j]
		if a.Codepoint0 != b.Codepoint0 {
			return a.Codepoint0 < b.Codepoint0
		}
		return a.Codepoint1 < b.Codepoint1
	})
	return out, nil
}

func (fl *BitmapFontLoader) Unload(payload any) error {
	if _, ok := payload.(*resources.BitmapFont); !ok {
		return fmt.Errorf("bitmap font loader cannot unload %T", payload)
	}
	return nil
}
