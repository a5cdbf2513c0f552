package raster

import (
	"math"

	"github.com/banshee-data/gridraster/internal/grid"
)

// Cell is the numeric element constraint for raster values. The mask of a
// raster is typed independently (see Mask), so an integer mask can shape a
// float raster.
type Cell interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~int | ~uint8 | ~float32 | ~float64
}

// Mask is the read-only view a raster needs of the raster shaping it.
// *Raster[T] satisfies Mask for any element type. The mask is a non-owning
// reference: its lifetime belongs to the caller and the dependent model
// never mutates it.
type Mask interface {
	CellNumber() int
	PositionData() ([]CellPos, bool)
	Header() grid.Header
}

// Raster is the in-memory raster model. It holds exactly one of a flat
// single-layer buffer or a per-layer buffer (layer-major: one contiguous
// allocation per layer, indexed layers[layer][ordinal]), never both.
//
// When nodata cells are excluded at load time the buffers are compacted:
// ordinal i is the i-th valid cell in row-major scan order, and the
// position index maps ordinals back to (row, col). Otherwise the buffers
// are the full row-major scan and ordinals equal row*Cols+col.
type Raster[T Cell] struct {
	hdr      grid.Header
	srs      string
	coreName string
	path     string

	nodata       T
	defaultValue T

	cells  []T   // 1D layout, nil for 2D models
	layers [][]T // 2D layout, nil for 1D models
	nCells int
	nLyrs  int

	pos      *PositionIndex // nil when positions were not kept
	posOwned bool           // index retained by this model, not mask-aligned

	mask Mask

	initialized     bool
	is2D            bool
	excludeNodata   bool
	posCalculated   bool
	maskExtentUsed  bool
	statsCalculated bool

	stats []Stats // per layer, valid when statsCalculated
}

// Header metadata accessors.

func (r *Raster[T]) Rows() int          { return r.hdr.Rows() }
func (r *Raster[T]) Cols() int          { return r.hdr.Cols() }
func (r *Raster[T]) CellSize() float64  { return r.hdr.CellSize() }
func (r *Raster[T]) XllCenter() float64 { return r.hdr.XllCenter() }
func (r *Raster[T]) YllCenter() float64 { return r.hdr.YllCenter() }
func (r *Raster[T]) Layers() int        { return r.nLyrs }

// CellNumber returns the number of represented cells: the compacted length
// when nodata is excluded, Rows*Cols otherwise.
func (r *Raster[T]) CellNumber() int { return r.nCells }

// Header returns the model's header table. Treat it as read-only; use
// CopyHeader to overlay changes.
func (r *Raster[T]) Header() grid.Header { return r.hdr }

// NoDataValue returns the nodata sentinel of the element type.
func (r *Raster[T]) NoDataValue() T { return r.nodata }

// DefaultValue is the fill value used where no measurement exists.
func (r *Raster[T]) DefaultValue() T     { return r.defaultValue }
func (r *Raster[T]) SetDefaultValue(v T) { r.defaultValue = v }

func (r *Raster[T]) SRS() string { return r.srs }

// CoreName is the human-readable name of the raster, derived from the
// source file name at load time.
func (r *Raster[T]) CoreName() string        { return r.coreName }
func (r *Raster[T]) SetCoreName(name string) { r.coreName = name }

// FilePath returns the source path, or the pattern the layers were loaded
// from for multi-file models.
func (r *Raster[T]) FilePath() string { return r.path }

// Mask returns the mask reference supplied at load time, nil when none.
func (r *Raster[T]) Mask() Mask { return r.mask }

// Structural flags.

func (r *Raster[T]) Initialized() bool          { return r.initialized }
func (r *Raster[T]) Is2D() bool                 { return r.is2D }
func (r *Raster[T]) ExcludingNoData() bool      { return r.excludeNodata }
func (r *Raster[T]) PositionsCalculated() bool  { return r.posCalculated }
func (r *Raster[T]) PositionsStored() bool      { return r.pos != nil && r.posOwned }
func (r *Raster[T]) MaskExtentUsed() bool       { return r.maskExtentUsed }
func (r *Raster[T]) StatisticsCalculated() bool { return r.statsCalculated }

// Data returns the flat buffer of a 1D model. The second return is false
// for 2D models.
func (r *Raster[T]) Data() ([]T, bool) {
	if r.is2D || r.cells == nil {
		return nil, false
	}
	return r.cells, true
}

// Data2D returns the per-layer buffers of a 2D model, layer-major. The
// second return is false for 1D models.
func (r *Raster[T]) Data2D() ([][]T, bool) {
	if !r.is2D || r.layers == nil {
		return nil, false
	}
	return r.layers, true
}

// PositionData returns the ordinal -> (row, col) table. The second return
// is false when positions were neither calculated nor retained.
func (r *Raster[T]) PositionData() ([]CellPos, bool) {
	if r.pos == nil {
		return nil, false
	}
	return r.pos.Positions(), true
}

// buffer returns the storage of the 1-based layer, nil when out of range.
func (r *Raster[T]) buffer(layer int) []T {
	if layer < 1 || layer > r.nLyrs {
		return nil
	}
	if r.is2D {
		return r.layers[layer-1]
	}
	return r.cells
}

// slot resolves (row, col) to the buffer ordinal, or -1 when the cell is
// out of range or absent from the compacted representation.
func (r *Raster[T]) slot(row, col int) int {
	if row < 0 || row >= r.Rows() || col < 0 || col >= r.Cols() {
		return -1
	}
	if !r.excludeNodata {
		return row*r.Cols() + col
	}
	return r.pos.Ordinal(row, col)
}

// Value returns the cell value at (row, col) on layer 1. Any out-of-range
// input returns the nodata sentinel; reads never fail.
func (r *Raster[T]) Value(row, col int) T {
	return r.LayerValue(row, col, 1)
}

// LayerValue returns the cell value at (row, col) on the 1-based layer.
func (r *Raster[T]) LayerValue(row, col, layer int) T {
	buf := r.buffer(layer)
	if buf == nil {
		return r.nodata
	}
	i := r.slot(row, col)
	if i < 0 {
		return r.nodata
	}
	return buf[i]
}

// ValueAt returns the layer-1 value at a compacted ordinal. This is the
// O(1) hot path for consumers iterating the compacted buffer directly.
func (r *Raster[T]) ValueAt(ordinal int) T {
	return r.LayerValueAt(ordinal, 1)
}

// LayerValueAt returns the value at a compacted ordinal on the 1-based
// layer. Ordinal or layer out of range returns the nodata sentinel.
func (r *Raster[T]) LayerValueAt(ordinal, layer int) T {
	buf := r.buffer(layer)
	if buf == nil || ordinal < 0 || ordinal >= r.nCells {
		return r.nodata
	}
	return buf[ordinal]
}

// ValueVector returns the values of every layer at (row, col), or nil when
// the location is out of range or unrepresented.
func (r *Raster[T]) ValueVector(row, col int) []T {
	i := r.slot(row, col)
	if i < 0 {
		return nil
	}
	return r.valueVectorAt(i)
}

// ValueVectorAt returns the values of every layer at a compacted ordinal,
// or nil when the ordinal is out of range.
func (r *Raster[T]) ValueVectorAt(ordinal int) []T {
	if ordinal < 0 || ordinal >= r.nCells {
		return nil
	}
	return r.valueVectorAt(ordinal)
}

func (r *Raster[T]) valueVectorAt(i int) []T {
	out := make([]T, r.nLyrs)
	for l := 0; l < r.nLyrs; l++ {
		out[l] = r.buffer(l + 1)[i]
	}
	return out
}

// SetValue writes v at (row, col) on layer 1. See SetLayerValue.
func (r *Raster[T]) SetValue(row, col int, v T) {
	r.SetLayerValue(row, col, 1, v)
}

// SetLayerValue writes v at (row, col) on the 1-based layer. The call is a
// silent no-op when the location, or layer, is out of range, or when the
// cell's current stored value is the nodata sentinel: per-cell mutation
// never fills in nodata cells. A successful write marks the cached
// statistics stale.
func (r *Raster[T]) SetLayerValue(row, col, layer int, v T) {
	buf := r.buffer(layer)
	if buf == nil {
		return
	}
	i := r.slot(row, col)
	if i < 0 || buf[i] == r.nodata {
		return
	}
	buf[i] = v
	r.statsCalculated = false
}

// Position returns the compacted ordinal of (row, col), or -1 when the
// cell is out of range or no position table is available.
func (r *Raster[T]) Position(row, col int) int {
	return r.slot(row, col)
}

// PositionOf returns the compacted ordinal of the cell containing the
// coordinate (x, y), or -1.
func (r *Raster[T]) PositionOf(x, y float64) int {
	row, col := r.RowColOf(x, y)
	return r.Position(row, col)
}

// CoordinateOf returns the center coordinate of the cell at (row, col).
// Pure affine transform; out-of-range rows/cols map to out-of-range
// coordinates and bounds-checking is the caller's responsibility.
func (r *Raster[T]) CoordinateOf(row, col int) (x, y float64) {
	cs := r.CellSize()
	x = r.XllCenter() + float64(col)*cs
	y = r.YllCenter() + float64(r.Rows()-1-row)*cs
	return x, y
}

// RowColOf returns the (row, col) of the cell containing (x, y). The
// inverse of CoordinateOf; never fails.
func (r *Raster[T]) RowColOf(x, y float64) (row, col int) {
	cs := r.CellSize()
	col = int(math.Floor((x - r.XllCenter() + cs/2) / cs))
	topEdge := r.YllCenter() + float64(r.Rows())*cs - cs/2
	row = int(math.Floor((topEdge - y) / cs))
	return row, col
}

// CopyHeader overlays the entries of src onto the model's header table.
func (r *Raster[T]) CopyHeader(src grid.Header) {
	r.hdr.Merge(src)
}

// UpdateStatistics recomputes the per-layer statistics over the current
// buffers. Mutation via SetValue only marks statistics stale; recomputation
// happens here or lazily on the first Stats query.
func (r *Raster[T]) UpdateStatistics() {
	for l := 1; l <= r.nLyrs; l++ {
		r.stats[l-1] = computeStats(r.layerFloats(l), float64(r.nodata))
	}
	r.statsCalculated = true
}

// Stats returns the statistics of the 1-based layer, computing them first
// when the cache is stale. A layer out of range yields the zero-count
// sentinel record.
func (r *Raster[T]) Stats(layer int) Stats {
	if layer < 1 || layer > r.nLyrs {
		nd := float64(r.nodata)
		return Stats{Min: nd, Max: nd, Mean: nd, Std: nd, Range: nd}
	}
	if !r.statsCalculated {
		r.UpdateStatistics()
	}
	return r.stats[layer-1]
}

// Layer-1 statistics conveniences for single-layer models.

func (r *Raster[T]) ValidNumber() int { return r.Stats(1).ValidCount }
func (r *Raster[T]) Minimum() float64 { return r.Stats(1).Min }
func (r *Raster[T]) Maximum() float64 { return r.Stats(1).Max }
func (r *Raster[T]) Mean() float64    { return r.Stats(1).Mean }
func (r *Raster[T]) STD() float64     { return r.Stats(1).Std }
func (r *Raster[T]) Range() float64   { return r.Stats(1).Range }

// layerFloats converts one layer's buffer to float64 for the statistics
// engine.
func (r *Raster[T]) layerFloats(layer int) []float64 {
	buf := r.buffer(layer)
	out := make([]float64, len(buf))
	for i, v := range buf {
		out[i] = float64(v)
	}
	return out
}
