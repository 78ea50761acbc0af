package traffic

import (
	"fmt"
	"testing"

	"site-traffic-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sumAges(d models.Demographics) float64 {
	var total float64
	for _, g := range d.AgeGroups {
		total += g.Percentage
	}
	return total
}

func TestEstimateDemographics_SumsTo100(t *testing.T) {
	src := NewSeededJitter(2024)

	for tier := 0; tier <= 4; tier++ {
		for i := 0; i < 200; i++ {
			d := EstimateDemographics(tier, src.ForVenue(fmt.Sprintf("venue-%d-%d", tier, i)))

			assert.InDelta(t, 100, sumAges(d), 1)

			require.NotNil(t, d.Gender)
			g := d.Gender
			assert.Equal(t, 100.0, g.Male+g.Female+g.Other)
			assert.GreaterOrEqual(t, g.Other, 0.0)
			assert.LessOrEqual(t, g.Other, 2.0)
			assert.GreaterOrEqual(t, g.Male, 44.0)
			assert.LessOrEqual(t, g.Male, 56.0)
			assert.GreaterOrEqual(t, g.Female, 44.0)
			assert.LessOrEqual(t, g.Female, 56.0)
		}
	}
}

func TestEstimateDemographics_TierSkew(t *testing.T) {
	j := NewSeededJitter(1).ForVenue("v")

	tests := []struct {
		name       string
		tier       int
		wantYoung  float64
		wantMature float64
	}{
		{"budget skews young", 1, 65, 35},
		{"mid range is balanced", 2, 50, 50},
		{"unknown tier is treated as mid range", 0, 50, 50},
		{"premium skews mature", 3, 35, 65},
		{"luxury skews mature", 4, 35, 65},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := EstimateDemographics(tt.tier, j)
			assert.Equal(t, tt.wantYoung, youngShare(d))
			assert.Equal(t, tt.wantMature, matureShare(d))
		})
	}
}

func TestAgeBounds(t *testing.T) {
	lo, hi, ok := ageBounds("25-34")
	assert.True(t, ok)
	assert.Equal(t, 25, lo)
	assert.Equal(t, 34, hi)

	lo, _, ok = ageBounds("55+")
	assert.True(t, ok)
	assert.Equal(t, 55, lo)

	_, _, ok = ageBounds("teens")
	assert.False(t, ok)
}
