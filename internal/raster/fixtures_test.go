package raster

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/banshee-data/gridraster/internal/grid"
)

const nd = -9999.0

func fixtureHeader() grid.Header {
	return grid.Header{
		grid.KeyRows: 4, grid.KeyCols: 5, grid.KeyCellSize: 2,
		grid.KeyXll: 19, grid.KeyYll: 25, grid.KeyNoData: nd, grid.KeyLayers: 1,
	}
}

// demValues is a 4x5 elevation grid with 13 valid cells: sum 80, min 0.5,
// max 12. Scan ordinal 0 is (0,1), ordinal 12 is (3,3).
func demValues() []float64 {
	return []float64{
		nd, 1.5, 2.5, nd, 3,
		4, nd, 5.5, 6, nd,
		7, 8, nd, 0.5, 9,
		nd, 10, 11, 12, nd,
	}
}

// maskValues marks 13 cells valid: row 0 cols 1-4, row 1 cols 0-3 and all
// of row 2. Three of them ((0,3), (1,1), (2,2)) sit on dem nodata holes.
func maskValues() []float64 {
	return []float64{
		nd, 1, 1, 1, 1,
		1, 1, 1, 1, nd,
		1, 1, 1, 1, 1,
		nd, nd, nd, nd, nd,
	}
}

func demGrid() *grid.Grid {
	return &grid.Grid{Header: fixtureHeader(), Values: demValues()}
}

func demRaster(t *testing.T, opts LoadOptions) *Raster[float64] {
	t.Helper()
	r, err := NewFromGrid[float64](demGrid(), opts)
	require.NoError(t, err)
	return r
}

func maskRaster(t *testing.T) *Raster[int32] {
	t.Helper()
	m, err := NewFromGrid[int32](&grid.Grid{Header: fixtureHeader(), Values: maskValues()}, DefaultLoadOptions())
	require.NoError(t, err)
	return m
}

func writeASC(t *testing.T, dir, name string, values []float64) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, grid.Encode(path, &grid.Grid{Header: fixtureHeader(), Values: values}))
	return path
}
