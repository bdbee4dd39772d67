package otp

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericCodeGenerate(t *testing.T) {
	g := NewNumericCode()
	seen := make(map[string]struct{})

	for range 5000 {
		code, err := g.Generate()
		require.NoError(t, err)

		require.Len(t, code, 4)
		assert.NotEqual(t, byte('0'), code[0])
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, minCode)
		assert.LessOrEqual(t, n, maxCode)
		seen[code] = struct{}{}
	}

	assert.Greater(t, len(seen), 1000)
}

func TestNumericCodeSourceError(t *testing.T) {
	g := &NumericCode{rand: bytes.NewReader(nil)}

	_, err := g.Generate()

	assert.Error(t, err)
}
