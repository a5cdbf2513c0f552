package grid

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multiLayerGrid(t *testing.T) *Grid {
	t.Helper()
	hdr := testHeader()
	hdr[KeyRows] = 2
	hdr[KeyCols] = 3
	hdr[KeyLayers] = 2
	return &Grid{
		Header: hdr,
		Values: []float64{1, 2, 3, 4, 5, 6, -9999, 20, 30, 40, 50, 60},
		SRS:    "EPSG:32650",
	}
}

func TestBinaryBytesRoundTrip(t *testing.T) {
	t.Parallel()
	g := multiLayerGrid(t)

	blob, err := EncodeBytes(g)
	require.NoError(t, err)
	back, err := DecodeBytes(blob)
	require.NoError(t, err)

	assert.Equal(t, g.Values, back.Values)
	assert.Equal(t, g.SRS, back.SRS)
	assert.Equal(t, 2, back.LayerCount())
	assert.Equal(t, []float64{-9999, 20, 30, 40, 50, 60}, back.Layer(2))
	assert.Nil(t, back.Layer(3))
}

func TestBinaryFileRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "multi.grd")
	g := multiLayerGrid(t)

	require.NoError(t, Encode(path, g))
	back, err := Decode(path)
	require.NoError(t, err)
	assert.Equal(t, g.Values, back.Values)
	assert.Equal(t, g.Header.Layers(), back.Header.Layers())
}

func TestBinaryDecodeErrors(t *testing.T) {
	t.Parallel()

	_, err := DecodeBytes(nil)
	assert.True(t, errors.Is(err, ErrFormat))

	_, err = DecodeBytes([]byte("not gzip at all"))
	assert.True(t, errors.Is(err, ErrFormat))
}

func TestBinaryEncodeLengthMismatch(t *testing.T) {
	t.Parallel()
	g := multiLayerGrid(t)
	g.Values = g.Values[:5]
	_, err := EncodeBytes(g)
	assert.True(t, errors.Is(err, ErrFormat))
}
