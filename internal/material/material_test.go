package material

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	t.Parallel()

	g, err := Lookup("A216-WCB")
	require.NoError(t, err)
	assert.Equal(t, "carbon-steel", g.Category)

	_, err = Lookup("A999-XX")
	require.Error(t, err)
}

func TestCodesCostOrdered(t *testing.T) {
	t.Parallel()

	codes := Codes()
	require.Len(t, codes, 4)
	assert.Equal(t, "A216-WCB", codes[0]) // cheapest first
	for i := 1; i < len(codes); i++ {
		assert.LessOrEqual(t, grades[codes[i-1]].CostFactor, grades[codes[i]].CostFactor)
	}
}

func TestAllowablePressureInterpolation(t *testing.T) {
	t.Parallel()
	wcb, err := Lookup("A216-WCB")
	require.NoError(t, err)

	tests := []struct {
		name  string
		class int
		tempC float64
		want  float64
	}{
		{"class 300 at first rung", 300, 38, 51.7},
		{"class 300 below first rung", 300, 0, 51.7},
		{"class 300 on second rung", 300, 93, 46.2},
		{"class 300 midway 38-93", 300, 65.5, (51.7 + 46.2) / 2},
		{"class 150 on last rung", 150, 316, 7.1},
		{"class 150 above last rung under ceiling", 150, 400, 7.1},
		{"class 600 quarter into 93-149", 600, 107, 92.4 + (107.0-93.0)/(149.0-93.0)*(82.7-92.4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := wcb.AllowablePressure(tt.class, tt.tempC)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestAllowablePressureLimits(t *testing.T) {
	t.Parallel()
	wcb, err := Lookup("A216-WCB")
	require.NoError(t, err)

	_, err = wcb.AllowablePressure(300, 500) // above 425 C ceiling
	require.Error(t, err)

	_, err = wcb.AllowablePressure(300, -60) // below -29 C floor
	require.Error(t, err)

	_, err = wcb.AllowablePressure(2500, 100) // class not rated
	require.Error(t, err)

	// Duplex carries no high-class tables.
	duplex, err := Lookup("A890-4A")
	require.NoError(t, err)
	_, err = duplex.AllowablePressure(900, 100)
	require.Error(t, err)
}

func TestCheckRating(t *testing.T) {
	t.Parallel()
	wcb, err := Lookup("A216-WCB")
	require.NoError(t, err)

	// Comfortable point: 30 bar against 46.2 allowable.
	c, err := wcb.CheckRating(300, 30, 93)
	require.NoError(t, err)
	assert.True(t, c.Compliant)
	assert.InDelta(t, 46.2, c.AllowablePressure, 1e-9)
	assert.InDelta(t, (46.2-30)/46.2, c.SafetyMargin, 1e-9)
	assert.InDelta(t, 46.2/51.7, c.DeratingFactor, 1e-9)
	assert.Empty(t, c.Warnings)

	// Over the rating.
	c, err = wcb.CheckRating(300, 50, 93)
	require.NoError(t, err)
	assert.False(t, c.Compliant)
	assert.Contains(t, c.Warnings.Tags(), "rating-exceeded")

	// Thin margin.
	c, err = wcb.CheckRating(300, 45, 93)
	require.NoError(t, err)
	assert.True(t, c.Compliant)
	assert.Contains(t, c.Warnings.Tags(), "rating-margin")

	// Near the temperature ceiling (425 C * 0.8 = 340).
	c, err = wcb.CheckRating(300, 10, 371)
	require.NoError(t, err)
	assert.Contains(t, c.Warnings.Tags(), "temperature-margin")
}

func TestRecommend(t *testing.T) {
	t.Parallel()

	// Moderate sweet service: every grade qualifies.
	sweet := Recommend(100, false)
	require.Len(t, sweet, 4)
	for i := 1; i < len(sweet); i++ {
		assert.GreaterOrEqual(t, sweet[i-1].Score, sweet[i].Score)
	}

	// Sour service drops WCB (limited per NACE).
	sour := Recommend(100, true)
	for _, c := range sour {
		assert.GreaterOrEqual(t, int(c.Grade.Sour), int(SourSuitable), c.Grade.Code)
	}
	assert.Len(t, sour, 3)

	// Cryogenic service keeps only the austenitic grades.
	cryo := Recommend(-150, false)
	require.NotEmpty(t, cryo)
	for _, c := range cryo {
		assert.Equal(t, "stainless-steel", c.Grade.Category)
	}

	// Beyond every ceiling.
	assert.Empty(t, Recommend(900, false))
}

func TestSourRatingString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "not-suitable", SourNotSuitable.String())
	assert.Equal(t, "excellent", SourExcellent.String())
}
