package raster

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/gridraster/internal/grid"
)

func maskedOpts(m Mask) LoadOptions {
	opts := DefaultLoadOptions()
	opts.Mask = m
	return opts
}

func TestMaskCopyShapesRaster(t *testing.T) {
	t.Parallel()
	mask := maskRaster(t)
	r := demRaster(t, maskedOpts(mask))

	// The index is the mask's verbatim: 13 cells, including the three
	// positions where the dem itself holds nodata.
	assert.Equal(t, 13, r.CellNumber())
	assert.Equal(t, mask.CellNumber(), r.CellNumber())
	assert.True(t, r.MaskExtentUsed())
	assert.True(t, r.PositionsCalculated())
	assert.False(t, r.PositionsStored(), "index is borrowed, not owned")
	assert.Equal(t, Mask(mask), r.Mask())

	want := []float64{1.5, 2.5, nd, 3, 4, nd, 5.5, 6, 7, 8, nd, 0.5, 9}
	for i, w := range want {
		assert.Equal(t, w, r.ValueAt(i), "ordinal %d", i)
	}

	// Row/col lookups route through the borrowed index.
	assert.Equal(t, 10, r.Position(2, 2))
	assert.Equal(t, nd, r.Value(2, 2), "mask cell over a dem hole reads nodata")
	assert.Equal(t, 0.5, r.Value(2, 3))
	assert.Equal(t, nd, r.Value(3, 1), "valid dem cell outside the mask is invisible")

	// Statistics cover the 10 non-nodata compacted values.
	assert.Equal(t, 10, r.ValidNumber())
	assert.Equal(t, 0.5, r.Minimum())
	assert.Equal(t, 9.0, r.Maximum())
	assert.InDelta(t, 4.7, r.Mean(), 1e-12)
}

func TestMaskExtentMismatch(t *testing.T) {
	t.Parallel()
	g := &grid.Grid{Header: fixtureHeader(), Values: maskValues()}
	g.Header[grid.KeyXll] = 40
	mask, err := NewFromGrid[int32](g, DefaultLoadOptions())
	require.NoError(t, err)

	_, err = NewFromGrid[float64](demGrid(), maskedOpts(mask))
	assert.True(t, errors.Is(err, ErrExtentMismatch), "got %v", err)
}

func TestMaskCountOnlyExtentCheck(t *testing.T) {
	t.Parallel()
	g := &grid.Grid{Header: fixtureHeader(), Values: maskValues()}
	g.Header[grid.KeyXll] = 40
	g.Header[grid.KeyYll] = 60
	mask, err := NewFromGrid[int32](g, DefaultLoadOptions())
	require.NoError(t, err)

	opts := maskedOpts(mask)
	opts.CountOnlyExtentCheck = true
	r := demRaster(t, opts)

	// The raster adopts the mask's corner coordinates.
	assert.Equal(t, 40.0, r.XllCenter())
	assert.Equal(t, 60.0, r.YllCenter())
	assert.Equal(t, 13, r.CellNumber())
	assert.Equal(t, nd, r.NoDataValue(), "nodata is not clobbered by the merge")
}

func TestMaskWithoutPositionsFallsBackToScan(t *testing.T) {
	t.Parallel()
	full := DefaultLoadOptions()
	full.ExcludeNodata = false
	mask, err := NewFromGrid[int32](&grid.Grid{Header: fixtureHeader(), Values: maskValues()}, full)
	require.NoError(t, err)
	_, ok := mask.PositionData()
	require.False(t, ok)

	r := demRaster(t, maskedOpts(mask))
	assert.False(t, r.MaskExtentUsed())
	assert.Equal(t, 13, r.CellNumber())
	assert.Equal(t, 10.0, r.Value(3, 1), "scan-built, not mask-shaped")
	assert.True(t, r.PositionsStored())
	assert.Equal(t, Mask(mask), r.Mask(), "the reference is still retained")
}

func TestUseMaskExtentDisabled(t *testing.T) {
	t.Parallel()
	mask := maskRaster(t)
	opts := maskedOpts(mask)
	opts.UseMaskExtent = false
	r := demRaster(t, opts)

	assert.False(t, r.MaskExtentUsed())
	assert.Equal(t, 13, r.CellNumber())
	assert.Equal(t, 10.0, r.Value(3, 1))
	assert.Equal(t, Mask(mask), r.Mask())
}
