package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baselineWith(cognitive, chemical float64) BaselineScore {
	return BaselineScore{
		AthleteUserID:          "a1",
		Season:                 "2024-2025",
		CognitiveFunctionScore: cognitive,
		ChemicalMarkerScore:    chemical,
	}
}

func scoreWith(cognitive, chemical float64) TestScore {
	return TestScore{
		AthleteUserID:          "a1",
		Season:                 "2024-2025",
		ScoreType:              ScoreTypeScreen,
		CognitiveFunctionScore: cognitive,
		ChemicalMarkerScore:    chemical,
	}
}

func TestComputeDeviation(t *testing.T) {
	d := ComputeDeviation(scoreWith(110, 1.8), baselineWith(100, 2))

	require.NotNil(t, d.CognitiveFunctionDeviation)
	require.NotNil(t, d.ChemicalMarkerDeviation)
	require.NotNil(t, d.CombinedDeviationScore)

	assert.InDelta(t, 10.0, *d.CognitiveFunctionDeviation, 1e-9)
	assert.InDelta(t, -10.0, *d.ChemicalMarkerDeviation, 1e-9)
	assert.InDelta(t, 0.0, *d.CombinedDeviationScore, 1e-9)
}

func TestComputeDeviationNoChange(t *testing.T) {
	d := ComputeDeviation(scoreWith(100, 2), baselineWith(100, 2))

	require.NotNil(t, d.CombinedDeviationScore)
	assert.InDelta(t, 0.0, *d.CognitiveFunctionDeviation, 1e-9)
	assert.InDelta(t, 0.0, *d.ChemicalMarkerDeviation, 1e-9)
	assert.InDelta(t, 0.0, *d.CombinedDeviationScore, 1e-9)
}

func TestComputeDeviationZeroBaselineMetric(t *testing.T) {
	d := ComputeDeviation(scoreWith(110, 1.8), baselineWith(0, 2))

	assert.Nil(t, d.CognitiveFunctionDeviation)
	require.NotNil(t, d.ChemicalMarkerDeviation)
	assert.InDelta(t, -10.0, *d.ChemicalMarkerDeviation, 1e-9)
	// Combined only exists when both per-metric deviations do.
	assert.Nil(t, d.CombinedDeviationScore)
}

func TestComputeDeviationBothBaselinesZero(t *testing.T) {
	d := ComputeDeviation(scoreWith(50, 1), baselineWith(0, 0))

	assert.Nil(t, d.CognitiveFunctionDeviation)
	assert.Nil(t, d.ChemicalMarkerDeviation)
	assert.Nil(t, d.CombinedDeviationScore)
}

func TestComputeDeviationZeroTestScore(t *testing.T) {
	d := ComputeDeviation(scoreWith(0, 0), baselineWith(100, 2))

	require.NotNil(t, d.CombinedDeviationScore)
	assert.InDelta(t, -100.0, *d.CognitiveFunctionDeviation, 1e-9)
	assert.InDelta(t, -100.0, *d.ChemicalMarkerDeviation, 1e-9)
	assert.InDelta(t, -100.0, *d.CombinedDeviationScore, 1e-9)
}
