package sizing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procflow/sizer-cli/internal/units"
)

func TestFittingLosses(t *testing.T) {
	t.Parallel()

	sumK, err := FittingLosses(100, 100)
	require.NoError(t, err)
	assert.Zero(t, sumK)

	// 4" valve in a 6" line: ratio = (d/D)^2, sumK = 1.5*(1-ratio)^2.
	ratio := (100.0 / 150.0) * (100.0 / 150.0)
	want := 1.5 * (1 - ratio) * (1 - ratio)
	sumK, err = FittingLosses(100, 150)
	require.NoError(t, err)
	assert.InDelta(t, want, sumK, 1e-12)

	_, err = FittingLosses(150, 100)
	require.Error(t, err)
	assert.True(t, IsInputError(err))
}

func TestPipingFactor(t *testing.T) {
	t.Parallel()
	c := units.For(units.Metric)

	fp, err := PipingFactor(0, 400, 100, c)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, fp, 1e-12)

	sumK := 0.5
	fp, err = PipingFactor(sumK, 400, 100, c)
	require.NoError(t, err)
	ratio := 400.0 / (100.0 * 100.0)
	want := 1 / math.Sqrt(1+(sumK/c.N2)*ratio*ratio)
	assert.InDelta(t, want, fp, 1e-12)
	assert.Less(t, fp, 1.0)

	_, err = PipingFactor(-1, 400, 100, c)
	require.Error(t, err)
	assert.True(t, IsInputError(err))
}

func TestResolvePipingLineSize(t *testing.T) {
	t.Parallel()
	c := units.For(units.Metric)

	fp, cv, err := resolvePiping(100, 100, c, func(fp float64) float64 {
		return 400 / fp
	})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, fp, 1e-12)
	assert.InDelta(t, 400.0, cv, 1e-9)
}

func TestResolvePipingWithReducersConverges(t *testing.T) {
	t.Parallel()
	c := units.For(units.Metric)

	fp, cv, err := resolvePiping(100, 150, c, func(fp float64) float64 {
		return 400 / fp
	})
	require.NoError(t, err)

	// Reducers cost capacity: Fp < 1 and the corrected Cv exceeds the
	// line-size answer.
	assert.Less(t, fp, 1.0)
	assert.Greater(t, cv, 400.0)

	// The pair must sit on the fixed point: Fp recomputed from the final
	// Cv matches the returned Fp.
	sumK, err := FittingLosses(100, 150)
	require.NoError(t, err)
	again, err := PipingFactor(sumK, cv, 100, c)
	require.NoError(t, err)
	assert.InDelta(t, fp, again, 1e-3)
}
