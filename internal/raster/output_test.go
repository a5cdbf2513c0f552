package raster

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/gridraster/internal/grid"
)

func TestWriteReconstructsNodataHoles(t *testing.T) {
	t.Parallel()
	r := demRaster(t, DefaultLoadOptions())
	path := filepath.Join(t.TempDir(), "dem.asc")
	require.NoError(t, r.Write(path))

	g, err := grid.Decode(path)
	require.NoError(t, err)
	assert.Equal(t, demValues(), g.Values)
	assert.Equal(t, 19.0, g.Header.XllCenter())
	assert.Equal(t, nd, g.Header.NoData())
}

func TestWriteBinaryRoundTrip(t *testing.T) {
	t.Parallel()
	r := demRaster(t, DefaultLoadOptions())
	path := filepath.Join(t.TempDir(), "dem.grd")
	require.NoError(t, r.Write(path))

	back, err := Load[float64](path, DefaultLoadOptions())
	require.NoError(t, err)
	assert.Equal(t, r.CellNumber(), back.CellNumber())
	for row := 0; row < r.Rows(); row++ {
		for col := 0; col < r.Cols(); col++ {
			assert.Equal(t, r.Value(row, col), back.Value(row, col))
		}
	}
}

func TestWriteWithoutPositionsFails(t *testing.T) {
	t.Parallel()
	opts := DefaultLoadOptions()
	opts.StorePositions = false
	r := demRaster(t, opts)

	err := r.Write(filepath.Join(t.TempDir(), "dem.asc"))
	assert.Error(t, err, "compacted layout without an index cannot be reconstructed")
}

func TestWriteMissingDirectory(t *testing.T) {
	t.Parallel()
	r := demRaster(t, DefaultLoadOptions())
	err := r.Write(filepath.Join(t.TempDir(), "missing", "dem.asc"))
	assert.Error(t, err)
}

func TestWriteUninitialized(t *testing.T) {
	t.Parallel()
	var r Raster[float64]
	assert.Error(t, r.Write(filepath.Join(t.TempDir(), "zero.asc")))
}

// memStore is an in-memory BlobGetter/BlobPutter for store round trips.
type memStore map[string][]byte

func (s memStore) Put(name string, data []byte) error {
	s[name] = data
	return nil
}

func (s memStore) Get(name string) ([]byte, error) {
	b, ok := s[name]
	if !ok {
		return nil, fmt.Errorf("no blob named %s", name)
	}
	return b, nil
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()
	store := memStore{}
	r := demRaster(t, DefaultLoadOptions())
	require.NoError(t, r.WriteToStore(store, "grids/dem"))

	back, err := LoadFromStore[float64](store, "grids/dem", DefaultLoadOptions())
	require.NoError(t, err)
	assert.Equal(t, "dem", back.CoreName())
	assert.Equal(t, 13, back.CellNumber())
	assert.Equal(t, r.Value(2, 3), back.Value(2, 3))
	assert.InDelta(t, r.Mean(), back.Mean(), 1e-12)
}

func TestLoadFromStoreMissing(t *testing.T) {
	t.Parallel()
	_, err := LoadFromStore[float64](memStore{}, "absent", DefaultLoadOptions())
	assert.Error(t, err)
}
