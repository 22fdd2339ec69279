package sample

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConverter(t *testing.T) {
	conv := NewConverter(256)

	assert.Equal(t, float32(0), conv(0))
	assert.Equal(t, float32(1), conv(256))
	assert.InDelta(t, 12.5, conv(3200), 1e-6)
}

func TestConverter_NonPositiveDivisor(t *testing.T) {
	assert.Equal(t, float32(300), NewConverter(0)(300))
	assert.Equal(t, float32(300), NewConverter(-4)(300))
}
