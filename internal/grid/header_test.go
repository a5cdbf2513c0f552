package grid

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHeader() Header {
	return Header{
		KeyRows: 4, KeyCols: 5, KeyCellSize: 2,
		KeyXll: 19, KeyYll: 25, KeyNoData: -9999, KeyLayers: 1,
	}
}

func TestHeaderGet(t *testing.T) {
	t.Parallel()
	h := testHeader()

	v, err := h.Get(KeyCellSize)
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	_, err = h.Get("BOGUS")
	assert.True(t, errors.Is(err, ErrKeyNotFound))
}

func TestHeaderMergeOverlays(t *testing.T) {
	t.Parallel()
	h := testHeader()
	h.Merge(Header{KeyXll: 100, "EXTRA": 7})

	assert.Equal(t, 100.0, h.XllCenter())
	assert.Equal(t, 7.0, h["EXTRA"])
	assert.Equal(t, 4, h.Rows()) // untouched keys survive
}

func TestHeaderClone(t *testing.T) {
	t.Parallel()
	h := testHeader()
	c := h.Clone()
	c[KeyRows] = 99

	assert.Equal(t, 4, h.Rows())
	if diff := cmp.Diff(h, testHeader()); diff != "" {
		t.Errorf("original mutated (-got +want):\n%s", diff)
	}
}

func TestHeaderSameExtent(t *testing.T) {
	t.Parallel()
	base := testHeader()

	tests := []struct {
		name      string
		mutate    func(Header)
		countOnly bool
		want      bool
	}{
		{"identical", func(Header) {}, false, true},
		{"within tolerance", func(h Header) { h[KeyXll] += 1e-9 }, false, true},
		{"corner shifted", func(h Header) { h[KeyXll] += 0.5 }, false, false},
		{"corner shifted, count only", func(h Header) { h[KeyXll] += 0.5 }, true, true},
		{"cellsize differs", func(h Header) { h[KeyCellSize] = 3 }, false, false},
		{"rows differ", func(h Header) { h[KeyRows] = 5 }, false, false},
		{"rows differ, count only", func(h Header) { h[KeyRows] = 5 }, true, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			other := base.Clone()
			tc.mutate(other)
			assert.Equal(t, tc.want, base.SameExtent(other, 1e-6, tc.countOnly))
		})
	}
}
