package grid

import (
	"errors"
	"fmt"
)

// Canonical header keys. Coordinates and nodata are stored as float64 even
// for integral cell types to avoid truncation of coordinate values.
const (
	KeyNoData   = "NODATA_VALUE"
	KeyXll      = "XLLCENTER" // decoded from XLLCENTER or XLLCORNER
	KeyYll      = "YLLCENTER" // decoded from YLLCENTER or YLLCORNER
	KeyRows     = "NROWS"
	KeyCols     = "NCOLS"
	KeyCellSize = "CELLSIZE"
	KeyLayers   = "LAYERS"
	KeySRS      = "SRS" // flag: 1 when a spatial reference string is present
)

// ErrKeyNotFound reports a header lookup for a key that is not present.
var ErrKeyNotFound = errors.New("header key not found")

// Header is the numeric metadata table of a grid. Values are float64;
// NROWS, NCOLS and LAYERS hold non-negative integers, CELLSIZE is > 0.
// Callers are responsible for key correctness; Get is the only operation
// that can fail.
type Header map[string]float64

// Get returns the value stored under key.
func (h Header) Get(key string) (float64, error) {
	v, ok := h[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return v, nil
}

// Merge overlays every entry of other onto h. Existing keys are
// overwritten. Used to propagate a mask's header onto an aligned raster.
func (h Header) Merge(other Header) {
	for k, v := range other {
		h[k] = v
	}
}

// Clone returns an independent copy of h.
func (h Header) Clone() Header {
	out := make(Header, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// Convenience accessors. Missing keys read as zero, matching the decoded
// defaults (a grid without LAYERS is single-layer once normalised).

func (h Header) Rows() int          { return int(h[KeyRows]) }
func (h Header) Cols() int          { return int(h[KeyCols]) }
func (h Header) Layers() int        { return int(h[KeyLayers]) }
func (h Header) CellSize() float64  { return h[KeyCellSize] }
func (h Header) XllCenter() float64 { return h[KeyXll] }
func (h Header) YllCenter() float64 { return h[KeyYll] }
func (h Header) NoData() float64    { return h[KeyNoData] }

// SameExtent reports whether h and other agree on row/column counts, cell
// size and lower-left corner. Cell size and corner coordinates are compared
// with the given absolute tolerance; counts must match exactly. When
// countOnly is set, only the row/column counts are compared.
func (h Header) SameExtent(other Header, tol float64, countOnly bool) bool {
	if h.Rows() != other.Rows() || h.Cols() != other.Cols() {
		return false
	}
	if countOnly {
		return true
	}
	return absDiff(h.CellSize(), other.CellSize()) <= tol &&
		absDiff(h.XllCenter(), other.XllCenter()) <= tol &&
		absDiff(h.YllCenter(), other.YllCenter()) <= tol
}

func absDiff(a, b float64) float64 {
	d := a - b
	if d < 0 {
		return -d
	}
	return d
}
