package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/veandco/go-sdl2/sdl"
)

func TestAttributes(t *testing.T) {
	attrs := Config{}.attributes()
	assert.Equal(t, 4, attrs[sdl.GL_CONTEXT_MAJOR_VERSION])
	assert.Equal(t, 1, attrs[sdl.GL_CONTEXT_MINOR_VERSION])
	assert.Equal(t, 24, attrs[sdl.GL_DEPTH_SIZE])
	assert.NotContains(t, attrs, sdl.GL_MULTISAMPLESAMPLES)

	attrs = Config{Samples: 4}.attributes()
	assert.Equal(t, 1, attrs[sdl.GL_MULTISAMPLEBUFFERS])
	assert.Equal(t, 4, attrs[sdl.GL_MULTISAMPLESAMPLES])
}

func TestFlags(t *testing.T) {
	windowed := Config{}.flags()
	assert.NotZero(t, windowed&sdl.WINDOW_OPENGL)
	assert.NotZero(t, windowed&sdl.WINDOW_RESIZABLE)
	assert.Zero(t, windowed&sdl.WINDOW_FULLSCREEN)

	full := Config{Fullscreen: true}.flags()
	assert.Equal(t, uint32(sdl.WINDOW_FULLSCREEN_DESKTOP), full&sdl.WINDOW_FULLSCREEN_DESKTOP)
}
