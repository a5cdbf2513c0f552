package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/gridraster/internal/grid"
	"github.com/banshee-data/gridraster/internal/raster"
)

func testRaster(t *testing.T) *raster.Raster[float64] {
	t.Helper()
	g := &grid.Grid{
		Header: grid.Header{
			grid.KeyRows: 3, grid.KeyCols: 4, grid.KeyCellSize: 2,
			grid.KeyXll: 10, grid.KeyYll: 20, grid.KeyNoData: -9999, grid.KeyLayers: 1,
		},
		Values: []float64{
			1, 2, -9999, 4,
			5, 6, 7, -9999,
			9, 10, 11, 12,
		},
	}
	r, err := raster.NewFromGrid[float64](g, raster.DefaultLoadOptions())
	require.NoError(t, err)
	r.SetCoreName("sample")
	return r
}

func TestLayerGridAdapter(t *testing.T) {
	t.Parallel()
	g := layerGrid[float64]{r: testRaster(t), layer: 1}

	c, r := g.Dims()
	assert.Equal(t, 4, c)
	assert.Equal(t, 3, r)
	assert.Equal(t, 10.0, g.X(0))
	assert.Equal(t, 16.0, g.X(3))
	assert.Equal(t, 20.0, g.Y(0))

	// Plot row 0 is the bottom raster row; nodata becomes NaN.
	assert.Equal(t, 9.0, g.Z(0, 0))
	assert.Equal(t, 1.0, g.Z(0, 2))
	assert.True(t, g.Z(2, 2) != g.Z(2, 2), "nodata cell must map to NaN")
}

func TestWriteHeatmapPNG(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, WriteHeatmapPNG(path, testRaster(t), 1))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data[:4])
}

func TestWriteHeatmapPNGErrors(t *testing.T) {
	t.Parallel()
	r := testRaster(t)
	path := filepath.Join(t.TempDir(), "out.png")

	assert.Error(t, WriteHeatmapPNG(path, r, 0))
	assert.Error(t, WriteHeatmapPNG(path, r, 2))
}
