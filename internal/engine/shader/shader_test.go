package shader

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestInfoLog(t *testing.T) {
	driver := "0:3(1): error: syntax error\n\x00"
	msg := infoLog(int32(len(driver)), func(buf *uint8) {
		copy(unsafe.Slice(buf, len(driver)), driver)
	})
	assert.Equal(t, "0:3(1): error: syntax error", msg)

	assert.Equal(t, "no driver log", infoLog(0, func(*uint8) { t.Fatal("read with empty log") }))
}
