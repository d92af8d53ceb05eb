package glbackend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompileError(t *testing.T) {
	err := compileError("0:3(1): error: syntax error\n\x00\x00")
	assert.ErrorIs(t, err, ErrShaderCompile)
	assert.Contains(t, err.Error(), "0:3(1): error: syntax error")
	assert.NotContains(t, err.Error(), "\x00")
}
