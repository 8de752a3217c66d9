package domain

// Deviation holds percentage deviations of a test score from the seasonal
// baseline. A baseline metric of zero makes the corresponding deviation
// undefined, represented as nil rather than 0 or NaN so chart readers are
// never shown a misleading value.
type Deviation struct {
	ChemicalMarkerDeviation    *float64
	CognitiveFunctionDeviation *float64
	CombinedDeviationScore     *float64
}

// DeviationPoint is one deviation-annotated entry in an athlete's history.
type DeviationPoint struct {
	TestScore TestScore
	Deviation Deviation
}

// ComputeDeviation compares a test score against the baseline sharing its
// season and athlete. Callers are responsible for the season match.
func ComputeDeviation(test TestScore, baseline BaselineScore) Deviation {
	var d Deviation

	if baseline.ChemicalMarkerScore != 0 {
		v := (test.ChemicalMarkerScore - baseline.ChemicalMarkerScore) / baseline.ChemicalMarkerScore * 100
		d.ChemicalMarkerDeviation = &v
	}
	if baseline.CognitiveFunctionScore != 0 {
		v := (test.CognitiveFunctionScore - baseline.CognitiveFunctionScore) / baseline.CognitiveFunctionScore * 100
		d.CognitiveFunctionDeviation = &v
	}
	if d.ChemicalMarkerDeviation != nil && d.CognitiveFunctionDeviation != nil {
		combined := (*d.ChemicalMarkerDeviation + *d.CognitiveFunctionDeviation) / 2
		d.CombinedDeviationScore = &combined
	}

	return d
}
