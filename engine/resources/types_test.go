package resources

import (
	"testing"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sheet() *SpriteSheet {
	return &SpriteSheet{
		Name: "hero",
		Frames: map[string]SpriteFrame{
			"a": {Name: "a"},
			"b": {Name: "b"},
			"c": {Name: "c"},
		},
		Animations: map[string]SpriteAnimation{
			"run":   {Name: "run", Frames: []string{"a", "b", "c"}, FPS: 10, Loop: true},
			"die":   {Name: "die", Frames: []string{"a", "b"}, FPS: 2},
			"empty": {Name: "empty", FPS: 5},
			"stuck": {Name: "stuck", Frames: []string{"a"}},
		},
	}
}

func TestFrameAt(t *testing.T) {
	s := sheet()
	cases := []struct {
		anim    string
		elapsed float64
		want    string
	}{
		{"run", 0, "a"},
		{"run", 0.15, "b"},
		{"run", 0.25, "c"},
		{"run", 0.35, "a"},
		{"run", -1, "a"},
		{"die", 0.6, "b"},
		{"die", 100, "b"},
	}
	for _, c := range cases {
		f, ok := s.FrameAt(c.anim, c.elapsed)
		require.True(t, ok, "%s@%v", c.anim, c.elapsed)
		assert.Equal(t, c.want, f.Name, "%s@%v", c.anim, c.elapsed)
	}

	for _, anim := range []string{"missing", "empty", "stuck"} {
		_, ok := s.FrameAt(anim, 1)
		assert.False(t, ok, anim)
	}
	_, ok := s.Frame("z")
	assert.False(t, ok)
}

func TestModelIndexCount(t *testing.T) {
	m := &Model{Meshes: []*Mesh{
		{Indices: []uint32{0, 1, 2}},
		{Indices: []uint32{0, 1, 2, 2, 3, 0}},
	}}
	assert.EqualValues(t, 9, m.IndexCount())
	assert.Zero(t, (&Model{}).IndexCount())
}

func TestSoundSeconds(t *testing.T) {
	format := beep.Format{SampleRate: 100, NumChannels: 1, Precision: 2}
	buf := beep.NewBuffer(format)
	buf.Append(beep.Silence(250))

	s := &Sound{Format: format, Buffer: buf}
	assert.InDelta(t, 2.5, s.Seconds(), 1e-9)
	assert.Zero(t, (&Sound{}).Seconds())
}
