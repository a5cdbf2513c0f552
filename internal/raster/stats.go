package raster

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats holds the descriptive statistics of one layer, computed over
// non-nodata values only. When ValidCount is zero every other field holds
// the nodata sentinel; that is a defined result, not a failure.
type Stats struct {
	ValidCount int
	Min        float64
	Max        float64
	Mean       float64
	Std        float64 // population standard deviation (divide by count)
	Range      float64 // Max - Min
}

// computeStats makes a single filtering pass over values, excluding the
// nodata sentinel, then derives the summary with gonum.
func computeStats(values []float64, nodata float64) Stats {
	valid := make([]float64, 0, len(values))
	for _, v := range values {
		if v != nodata {
			valid = append(valid, v)
		}
	}
	if len(valid) == 0 {
		return Stats{Min: nodata, Max: nodata, Mean: nodata, Std: nodata, Range: nodata}
	}
	min := floats.Min(valid)
	max := floats.Max(valid)
	return Stats{
		ValidCount: len(valid),
		Min:        min,
		Max:        max,
		Mean:       stat.Mean(valid, nil),
		Std:        stat.PopStdDev(valid, nil),
		Range:      max - min,
	}
}
