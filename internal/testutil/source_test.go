package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZeroSource(t *testing.T) {
	src := ZeroSource{}
	assert.Equal(t, 0, src.Intn(1))
	assert.Equal(t, 0, src.Intn(100))

	vals := []int{1, 2, 3}
	src.Shuffle(len(vals), func(i, j int) { vals[i], vals[j] = vals[j], vals[i] })
	assert.Equal(t, []int{1, 2, 3}, vals, "shuffle is the identity")
}

func TestScriptedSource_PlaysScriptInOrder(t *testing.T) {
	src := NewScriptedSource(1, 0, 2)

	assert.Equal(t, 1, src.Intn(3))
	assert.Equal(t, 0, src.Intn(2))
	assert.Equal(t, 2, src.Intn(3))
}

func TestScriptedSource_ReducesModuloBound(t *testing.T) {
	src := NewScriptedSource(5)
	assert.Equal(t, 1, src.Intn(2))
}

func TestScriptedSource_PanicsWhenExhausted(t *testing.T) {
	src := NewScriptedSource(0)
	src.Intn(1)
	assert.Panics(t, func() { src.Intn(1) })
}
