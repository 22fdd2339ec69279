package sample

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEMA_Update(t *testing.T) {
	e := NewEMA(0.5, 10)
	assert.Equal(t, float32(10), e.Value())

	assert.InDelta(t, 15.0, e.Update(20), 1e-6)
	assert.InDelta(t, 17.5, e.Update(20), 1e-6)
	assert.InDelta(t, 17.5, e.Value(), 1e-6)
}

func TestEMA_ConvergesMonotonicallyFromBelow(t *testing.T) {
	const c = float32(42)
	e := NewEMA(0.05, 0)

	prev := e.Value()
	for i := 0; i < 100; i++ {
		v := e.Update(c)
		assert.GreaterOrEqual(t, v, prev, "step %d", i)
		assert.LessOrEqual(t, v, c, "never exceeds max(seed, c)")
		prev = v
	}
	assert.InDelta(t, c, prev, 0.5)
}

func TestEMA_ConvergesMonotonicallyFromAbove(t *testing.T) {
	const c = float32(3)
	seed := float32(50)
	e := NewEMA(0.05, seed)

	prev := e.Value()
	for i := 0; i < 100; i++ {
		v := e.Update(c)
		assert.LessOrEqual(t, v, prev, "step %d", i)
		assert.LessOrEqual(t, v, seed, "never exceeds max(seed, c)")
		assert.GreaterOrEqual(t, v, c)
		prev = v
	}
	assert.InDelta(t, c, prev, 0.5)
}

func TestEMA_AlphaClamp(t *testing.T) {
	// Alpha above 1 is clamped to 1
	assert.Equal(t, float32(4), NewEMA(3, 0).Update(4))
	// Non-positive alpha still moves towards the input
	assert.Greater(t, NewEMA(0, 0).Update(10), float32(0))
	assert.Greater(t, NewEMA(-1, 0).Update(10), float32(0))

	// Alpha 1 follows the input exactly
	e := NewEMA(1, 5)
	assert.Equal(t, float32(9), e.Update(9))
}
