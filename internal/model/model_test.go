package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDrop(t *testing.T) {
	t.Parallel()

	p := ProcessConditions{InletPressure: 10, OutletPressure: 8}
	assert.InDelta(t, 2.0, p.Drop(), 1e-12)
}

func TestParseStyle(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"globe", "ball", "butterfly"} {
		s, ok := ParseStyle(name)
		assert.True(t, ok, name)
		assert.Equal(t, name, s.String())
	}

	s, ok := ParseStyle("gate")
	assert.False(t, ok)
	assert.Equal(t, Globe, s) // conservative fallback
}

func TestStyleString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "unknown", ValveStyle(42).String())
}

func TestWarnings(t *testing.T) {
	t.Parallel()

	var w Warnings
	assert.Empty(t, w.Tags())

	w.Add("choked", "flow is choked")
	w.Add("viscous", "Fr below 0.8")
	assert.Equal(t, []string{"choked", "viscous"}, w.Tags())
	assert.Len(t, w, 2)
}
