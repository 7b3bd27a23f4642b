package platform

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/sdengine/engine/core"
)

func TestTranslateKey(t *testing.T) {
	cases := map[glfw.Key]core.KeyCode{
		glfw.KeyW:      core.KEY_W,
		glfw.KeyA:      core.KEY_A,
		glfw.KeyEscape: core.KEY_ESCAPE,
		glfw.KeySpace:  core.KEY_SPACE,
		glfw.KeyF5:     core.KEY_F5,
		glfw.KeyUp:     core.KEY_UP,
	}
	for in, want := range cases {
		got, ok := translateKey(in)
		assert.True(t, ok, "key %d", in)
		assert.Equal(t, want, got)
	}

	_, ok := translateKey(glfw.KeyPrintScreen)
	assert.False(t, ok)
}
