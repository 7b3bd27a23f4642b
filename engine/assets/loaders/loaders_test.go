package loaders

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/sdengine/engine/assets"
	"github.com/spaghettifunk/sdengine/engine/math"
	"github.com/spaghettifunk/sdengine/engine/renderer"
	"github.com/spaghettifunk/sdengine/engine/renderer/metadata"
	"github.com/spaghettifunk/sdengine/engine/resources"
)

func writePNG(t *testing.T, path string, w, h int, fill color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, fill)
		}
	}
	// mark the top-left pixel so row order is observable
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func writeText(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newManager(t *testing.T) (*assets.Manager, *renderer.Headless, string) {
	t.Helper()
	dir := t.TempDir()
	m, err := assets.NewManager(assets.ManagerConfig{BasePath: dir})
	require.NoError(t, err)
	device := renderer.NewHeadless()
	require.NoError(t, RegisterDefaults(m, device))
	return m, device, dir
}

func TestRegisterDefaultsTwiceFails(t *testing.T) {
	m, device, _ := newManager(t)
	assert.Error(t, RegisterDefaults(m, device))
}

func TestImageLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "img.png")
	writePNG(t, path, 3, 2, color.NRGBA{G: 255, A: 128})

	payload, err := NewImageLoader().Load(path)
	require.NoError(t, err)
	img := payload.(*resources.Image)
	assert.EqualValues(t, 3, img.Width)
	assert.EqualValues(t, 2, img.Height)
	assert.EqualValues(t, 4, img.ChannelCount)
	assert.Len(t, img.Pixels, 3*2*4)
	assert.Equal(t, []uint8{255, 0, 0, 255}, img.Pixels[:4])
	assert.True(t, hasTransparency(img))

	flipped, err := (&ImageLoader{FlipY: true}).Load(path)
	require.NoError(t, err)
	rows := flipped.(*resources.Image).Pixels
	assert.Equal(t, []uint8{255, 0, 0, 255}, rows[3*4:3*4+4])

	_, err = NewImageLoader().Load(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)

	writeText(t, filepath.Join(dir, "junk.png"), "not an image")
	_, err = NewImageLoader().Load(filepath.Join(dir, "junk.png"))
	assert.Error(t, err)
}

func TestTextureLifetimeFollowsHandles(t *testing.T) {
	m, device, dir := newManager(t)
	writePNG(t, filepath.Join(dir, "textures", "crate.png"), 4, 4, color.NRGBA{B: 255, A: 255})

	h, err := assets.LoadAndGet[*resources.Texture](m, "textures/crate.png")
	require.NoError(t, err)
	tex := h.Value()
	handle := tex.Handle
	assert.Equal(t, "crate", tex.Name)
	assert.Equal(t, resources.TextureType2d, tex.TextureType)
	assert.False(t, tex.HasTransparency)
	assert.True(t, device.Live(handle))

	m.Unload(h.ID())
	assert.True(t, device.Live(handle))

	h.Release()
	assert.False(t, device.Live(handle))
	assert.Equal(t, 1, device.DestroyCount(handle))
}

func TestShaderLoader(t *testing.T) {
	dir := t.TempDir()
	device := renderer.NewHeadless()
	loader := NewShaderLoader(device)

	code := make([]byte, 20)
	binary.LittleEndian.PutUint32(code, spirvMagic)
	path := filepath.Join(dir, "builtin.world.frag.spv")
	require.NoError(t, os.WriteFile(path, code, 0o644))

	payload, err := loader.Load(path)
	require.NoError(t, err)
	shader := payload.(*resources.Shader)
	assert.Equal(t, metadata.ShaderStageFragment, shader.Stage)
	assert.Equal(t, 20, shader.CodeSize)
	assert.True(t, device.Live(shader.Handle))

	require.NoError(t, loader.Unload(shader))
	assert.False(t, shader.Handle.IsValid())
	assert.Equal(t, 0, device.ResourceCount())

	noStage := filepath.Join(dir, "builtin.spv")
	require.NoError(t, os.WriteFile(noStage, code, 0o644))
	_, err = loader.Load(noStage)
	assert.Error(t, err)

	badMagic := filepath.Join(dir, "bad.vert.spv")
	require.NoError(t, os.WriteFile(badMagic, make([]byte, 8), 0o644))
	_, err = loader.Load(badMagic)
	assert.Error(t, err)

	odd := filepath.Join(dir, "odd.comp.spv")
	require.NoError(t, os.WriteFile(odd, code[:7], 0o644))
	_, err = loader.Load(odd)
	assert.Error(t, err)
}

const quadOBJ = `# a quad and a triangle
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
o plane
f 1/1 2/2 3/3 4/4
usemtl red
s off
f -4 -3 -2
`

func TestModelLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quad.obj")
	writeText(t, path, quadOBJ)

	payload, err := NewModelLoader().Load(path)
	require.NoError(t, err)
	model := payload.(*resources.Model)

	assert.Equal(t, "quad", model.Name)
	require.Len(t, model.Meshes, 2)
	assert.EqualValues(t, 9, model.IndexCount())

	plane := model.Meshes[0]
	assert.Equal(t, "plane", plane.Name)
	assert.Empty(t, plane.MaterialName)
	assert.Len(t, plane.Vertices, 4)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, plane.Indices)
	assert.Equal(t, math.NewVec3(0, 0, 1), plane.Vertices[0].Normal)
	assert.Equal(t, math.NewVec2(1, 1), plane.Vertices[2].Texcoord)
	assert.Equal(t, math.NewVec3(0.5, 0.5, 0), plane.Center)

	tri := model.Meshes[1]
	assert.Equal(t, "red", tri.MaterialName)
	assert.Len(t, tri.Indices, 3)

	assert.Equal(t, math.NewVec3(0, 0, 0), model.Extents.Min)
	assert.Equal(t, math.NewVec3(1, 1, 0), model.Extents.Max)
}

func TestModelLoaderErrors(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"empty.obj":     "v 0 0 0\n",
		"range.obj":     "v 0 0 0\nv 1 0 0\nf 1 2 3\n",
		"short.obj":     "v 0 0 0\nv 1 0 0\nf 1 2\n",
		"badfloat.obj":  "v 0 x 0\n",
		"badcorner.obj": "v 0 0 0\nv 1 0 0\nv 1 1 0\nf 1/a 2 3\n",
	}
	for name, content := range cases {
		path := filepath.Join(dir, name)
		writeText(t, path, content)
		_, err := NewModelLoader().Load(path)
		assert.Error(t, err, name)
	}
}

func TestMaterialLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "brick.toml")
	writeText(t, path, `
name = "brick"
shader = "shaders/builtin.world.vert.spv"
diffuse_colour = [1.0, 0.5, 0.25, 1.0]
shininess = 32.0
diffuse_map_name = "textures/brick.png"
autorelease = true
`)

	payload, err := NewMaterialLoader().Load(path)
	require.NoError(t, err)
	mat := payload.(*resources.Material)
	assert.Equal(t, "brick", mat.Name)
	assert.Equal(t, "shaders/builtin.world.vert.spv", mat.ShaderName)
	assert.Equal(t, math.NewVec4(1, 0.5, 0.25, 1), mat.DiffuseColour)
	assert.EqualValues(t, 32, mat.Shininess)
	assert.Equal(t, "textures/brick.png", mat.DiffuseMapName)

	defaults, err := parseMaterial([]byte("name = \"plain\"\nshader = \"s.vert.spv\"\n"))
	require.NoError(t, err)
	assert.Equal(t, math.NewVec4One(), defaults.DiffuseColour)
}

func TestMaterialValidation(t *testing.T) {
	cases := map[string]string{
		"no name":     `shader = "s"`,
		"no shader":   `name = "m"`,
		"colour":      "name = \"m\"\nshader = \"s\"\ndiffuse_colour = [2.0, 0, 0, 1]",
		"colour size": "name = \"m\"\nshader = \"s\"\ndiffuse_colour = [1.0, 1.0]",
		"shininess":   "name = \"m\"\nshader = \"s\"\nshininess = -1.0",
		"syntax":      "name = ",
	}
	for name, content := range cases {
		_, err := parseMaterial([]byte(content))
		assert.Error(t, err, name)
	}
}

func TestSkyboxLoader(t *testing.T) {
	m, device, dir := newManager(t)
	faces := []string{"px", "nx", "py", "ny", "pz", "nz"}
	for _, f := range faces {
		writePNG(t, filepath.Join(dir, "sky", f+".png"), 2, 2, color.NRGBA{B: 200, A: 255})
	}
	writeText(t, filepath.Join(dir, "sky", "day.toml"), `
name = "day"
faces = ["px.png", "nx.png", "py.png", "ny.png", "pz.png", "nz.png"]
`)

	h, err := assets.LoadAndGet[*resources.Skybox](m, "sky/day.toml")
	require.NoError(t, err)
	sky := h.Value()
	assert.Equal(t, "day", sky.Name)
	assert.Equal(t, resources.TextureTypeCube, sky.Cubemap.TextureType)
	assert.Equal(t, filepath.Join(filepath.Dir(h.Path()), "nz.png"), sky.Faces[5])
	cubemap := sky.Cubemap.Handle
	assert.True(t, device.Live(cubemap))

	h.Release()
	m.Clear()
	assert.False(t, device.Live(cubemap))
}

func TestSkyboxLoaderErrors(t *testing.T) {
	dir := t.TempDir()
	loader := NewSkyboxLoader(renderer.NewHeadless())

	writeText(t, filepath.Join(dir, "five.toml"), `faces = ["a.png", "b.png", "c.png", "d.png", "e.png"]`)
	_, err := loader.Load(filepath.Join(dir, "five.toml"))
	assert.Error(t, err)

	for i, f := range []string{"a", "b", "c", "d", "e", "f"} {
		size := 2
		if i == 5 {
			size = 4
		}
		writePNG(t, filepath.Join(dir, f+".png"), size, size, color.NRGBA{A: 255})
	}
	writeText(t, filepath.Join(dir, "mixed.toml"), `faces = ["a.png", "b.png", "c.png", "d.png", "e.png", "f.png"]`)
	_, err = loader.Load(filepath.Join(dir, "mixed.toml"))
	assert.Error(t, err)
}

const heroSheet = `
name: hero
texture: hero.png
frames:
  - {name: idle_0, x: 0, y: 0, width: 16, height: 16}
  - {name: idle_1, x: 16, y: 0, width: 16, height: 16}
animations:
  - name: idle
    frames: [idle_0, idle_1]
    fps: 4
    loop: true
  - name: die
    frames: [idle_0, idle_1]
    fps: 4
`

func TestSpriteLoader(t *testing.T) {
	m, device, dir := newManager(t)
	writePNG(t, filepath.Join(dir, "sprites", "hero.png"), 32, 16, color.NRGBA{G: 255, A: 255})
	writeText(t, filepath.Join(dir, "sprites", "hero.yaml"), heroSheet)

	h, err := assets.LoadAndGet[*resources.SpriteSheet](m, "sprites/hero.yaml")
	require.NoError(t, err)
	defer h.Release()
	sheet := h.Value()

	assert.Equal(t, "hero", sheet.Name)
	assert.True(t, device.Live(sheet.Texture.Handle))

	frame, ok := sheet.Frame("idle_1")
	require.True(t, ok)
	assert.Equal(t, math.NewVec2(0.5, 0), frame.UVMin)
	assert.Equal(t, math.NewVec2(1, 1), frame.UVMax)

	f, ok := sheet.FrameAt("idle", 0.6)
	require.True(t, ok)
	assert.Equal(t, "idle_0", f.Name)
	f, ok = sheet.FrameAt("die", 10)
	require.True(t, ok)
	assert.Equal(t, "idle_1", f.Name)
}

func TestSpriteSheetValidation(t *testing.T) {
	cases := map[string]*spriteSheetFile{
		"outside": {Frames: []spriteFrameFile{{Name: "a", X: 30, Width: 4, Height: 4}}},
		"dup":     {Frames: []spriteFrameFile{{Name: "a", Width: 1, Height: 1}, {Name: "a", Width: 1, Height: 1}}},
		"unnamed": {Frames: []spriteFrameFile{{Width: 1, Height: 1}}},
		"unknown": {Animations: []spriteAnimationFile{{Name: "run", Frames: []string{"x"}, FPS: 1}}},
		"fps":     {Animations: []spriteAnimationFile{{Name: "run"}}},
	}
	for name, desc := range cases {
		_, err := buildSpriteSheet(desc, 32, 16)
		assert.Error(t, err, name)
	}
}

// wavFile builds a 16-bit mono PCM file.
func wavFile(sampleRate uint32, samples int) []byte {
	var buf bytes.Buffer
	dataLen := uint32(samples * 2)
	le := binary.LittleEndian
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, le, 36+dataLen)
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, le, uint32(16))
	_ = binary.Write(&buf, le, uint16(1))
	_ = binary.Write(&buf, le, uint16(1))
	_ = binary.Write(&buf, le, sampleRate)
	_ = binary.Write(&buf, le, sampleRate*2)
	_ = binary.Write(&buf, le, uint16(2))
	_ = binary.Write(&buf, le, uint16(16))
	buf.WriteString("data")
	_ = binary.Write(&buf, le, dataLen)
	buf.Write(make([]byte, dataLen))
	return buf.Bytes()
}

func TestSoundLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "beep.wav")
	require.NoError(t, os.WriteFile(path, wavFile(8000, 4000), 0o644))

	payload, err := NewSoundLoader().Load(path)
	require.NoError(t, err)
	sound := payload.(*resources.Sound)
	assert.EqualValues(t, 8000, sound.Format.SampleRate)
	assert.InDelta(t, 0.5, sound.Seconds(), 0.01)

	writeText(t, filepath.Join(dir, "music.ogg"), "x")
	_, err = NewSoundLoader().Load(filepath.Join(dir, "music.ogg"))
	assert.Error(t, err)

	writeText(t, filepath.Join(dir, "broken.wav"), "RIFF")
	_, err = NewSoundLoader().Load(filepath.Join(dir, "broken.wav"))
	assert.Error(t, err)
}

func TestFontLoaderErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewBitmapFontLoader().Load(filepath.Join(dir, "font.kbf"))
	assert.Error(t, err)
	_, err = NewBitmapFontLoader().Load(filepath.Join(dir, "missing.fnt"))
	assert.Error(t, err)

	noFile := filepath.Join(dir, "nofile.fontcfg")
	writeText(t, noFile, "# only a face\nface=Sans\n")
	_, err = NewSystemFontLoader().Load(noFile)
	assert.Error(t, err)

	writeText(t, filepath.Join(dir, "garbage.ttf"), "not a font")
	badFont := filepath.Join(dir, "bad.fontcfg")
	writeText(t, badFont, "file=garbage.ttf\nface=Sans\n")
	_, err = NewSystemFontLoader().Load(badFont)
	assert.Error(t, err)

	badLine := filepath.Join(dir, "line.fontcfg")
	writeText(t, badLine, "size=12\n")
	_, err = NewSystemFontLoader().Load(badLine)
	assert.Error(t, err)
}
