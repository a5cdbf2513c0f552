package raster

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/banshee-data/gridraster/internal/grid"
)

// LoadOptions is the explicit load-time configuration. The zero value
// loads the full grid; use DefaultLoadOptions for the usual compacted
// layout.
type LoadOptions struct {
	// ExcludeNodata drops nodata cells from the compacted representation.
	// When false the buffer is the full row-major scan and the mask and
	// position machinery is skipped.
	ExcludeNodata bool

	// StorePositions retains the scan-built row/col<->ordinal table for
	// the model's lifetime. When false the table is consumed to build the
	// compacted buffer and then discarded: row/col lookups degrade to
	// not-found and row-major output is no longer possible. Mask-aligned
	// models always answer row/col lookups through the mask's table,
	// regardless of this flag.
	StorePositions bool

	// Mask shapes this raster's valid-cell set from the mask's position
	// index when UseMaskExtent is set; otherwise the reference is retained
	// only for later Mask() queries.
	Mask          Mask
	UseMaskExtent bool

	// ExtentTolerance is the absolute tolerance for comparing cell size
	// and corner coordinates against the mask or between layers.
	ExtentTolerance float64

	// CountOnlyExtentCheck relaxes the mask extent rule to row/column
	// counts only; the raster then adopts the mask's corner and cell size.
	CountOnlyExtentCheck bool
}

// DefaultLoadOptions matches the conventional load: exclude nodata, retain
// positions, honour a supplied mask's extent.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		ExcludeNodata:   true,
		StorePositions:  true,
		UseMaskExtent:   true,
		ExtentTolerance: 1e-6,
	}
}

// Load constructs a model from a single grid source. The codec is chosen
// by the path's extension. Fatal errors (missing file, malformed data,
// mask extent mismatch) are returned; the model is only returned
// initialized.
func Load[T Cell](path string, opts LoadOptions) (*Raster[T], error) {
	g, err := grid.Decode(path)
	if err != nil {
		return nil, err
	}
	return build[T](g, path, coreName(path), opts)
}

// LoadLayers constructs a 2D model from one source file per layer. All
// layers must share an identical extent; the valid-cell set is the union
// rule (a cell is valid when any layer is non-nodata there) unless a mask
// shapes it.
func LoadLayers[T Cell](paths []string, opts LoadOptions) (*Raster[T], error) {
	if len(paths) == 0 {
		return nil, ErrNoLayers
	}
	if len(paths) == 1 {
		return Load[T](paths[0], opts)
	}

	first, err := grid.Decode(paths[0])
	if err != nil {
		return nil, err
	}
	if first.LayerCount() != 1 {
		return nil, fmt.Errorf("%w: %s is already multi-layer", ErrLayerExtentMismatch, paths[0])
	}
	hdr := first.Header.Clone()
	layers := [][]float64{first.Layer(1)}
	tol := opts.ExtentTolerance

	for _, p := range paths[1:] {
		g, err := grid.Decode(p)
		if err != nil {
			return nil, err
		}
		if g.LayerCount() != 1 || !hdr.SameExtent(g.Header, tol, false) {
			return nil, fmt.Errorf("%w: %s", ErrLayerExtentMismatch, p)
		}
		layers = append(layers, g.Layer(1))
	}

	hdr[grid.KeyLayers] = float64(len(paths))
	multi := &grid.Grid{Header: hdr, SRS: first.SRS}
	multi.Values = make([]float64, 0, len(layers)*len(layers[0]))
	for _, lyr := range layers {
		multi.Values = append(multi.Values, lyr...)
	}
	return build[T](multi, layerPathPattern(paths), commonCoreName(paths), opts)
}

// BlobGetter is the read half of a named-blob store.
type BlobGetter interface {
	Get(name string) ([]byte, error)
}

// LoadFromStore constructs a model from a binary grid blob held in a
// document store under name.
func LoadFromStore[T Cell](store BlobGetter, name string, opts LoadOptions) (*Raster[T], error) {
	blob, err := store.Get(name)
	if err != nil {
		return nil, err
	}
	g, err := grid.DecodeBytes(blob)
	if err != nil {
		return nil, fmt.Errorf("blob %s: %w", name, err)
	}
	return build[T](g, name, coreName(name), opts)
}

// NewFromGrid constructs a model by direct injection of a decoded grid,
// bypassing the codecs. Used by callers that assemble headers and buffers
// themselves.
func NewFromGrid[T Cell](g *grid.Grid, opts LoadOptions) (*Raster[T], error) {
	return build[T](g, "", "", opts)
}

// build reconciles a fully decoded grid against the load options and the
// optional mask, producing an initialized model. This is the single
// construction path behind every Load variant.
func build[T Cell](g *grid.Grid, path, core string, opts LoadOptions) (*Raster[T], error) {
	hdr := g.Header.Clone()
	if hdr.Layers() < 1 {
		hdr[grid.KeyLayers] = 1
	}
	rows, cols := hdr.Rows(), hdr.Cols()
	nLyrs := hdr.Layers()
	if rows <= 0 || cols <= 0 || len(g.Values) != rows*cols*nLyrs {
		return nil, fmt.Errorf("%w: header %dx%dx%d does not match buffer length %d",
			grid.ErrFormat, rows, cols, nLyrs, len(g.Values))
	}
	nodata := hdr.NoData()

	r := &Raster[T]{
		hdr:           hdr,
		srs:           g.SRS,
		coreName:      core,
		path:          path,
		nodata:        T(nodata),
		defaultValue:  T(nodata),
		nLyrs:         nLyrs,
		is2D:          nLyrs > 1,
		mask:          opts.Mask,
		excludeNodata: opts.ExcludeNodata,
	}
	if g.SRS != "" {
		hdr[grid.KeySRS] = 1
	}

	full := make([][]float64, nLyrs)
	for l := 0; l < nLyrs; l++ {
		full[l] = g.Values[l*rows*cols : (l+1)*rows*cols]
	}

	switch {
	case !opts.ExcludeNodata:
		// Full layout: every cell represented, ordinal == row*cols+col.
		r.nCells = rows * cols
		r.storeBuffers(full, nil)

	case opts.Mask != nil && opts.UseMaskExtent:
		maskPos, ok := opts.Mask.PositionData()
		if !ok {
			// A mask without its own index cannot shape this raster;
			// fall back to an independent scan.
			r.compactByScan(full, rows, cols, nodata, opts.StorePositions)
			break
		}
		maskHdr := opts.Mask.Header()
		if !hdr.SameExtent(maskHdr, opts.ExtentTolerance, opts.CountOnlyExtentCheck) {
			return nil, fmt.Errorf("%w: raster %s vs mask", ErrExtentMismatch, core)
		}
		// The raster inherits its shape from the mask: the index is the
		// mask's verbatim, and each compacted value is looked up at the
		// mask's (row, col) — it may itself be nodata when the raster is
		// narrower than the mask there.
		r.hdr.Merge(extentOnly(maskHdr))
		idx := maskCopy(maskPos, cols)
		r.nCells = idx.Len()
		r.storeBuffers(compactLayers(full, idx.Positions(), cols), idx)
		r.posOwned = false
		r.posCalculated = true
		r.maskExtentUsed = true

	default:
		r.compactByScan(full, rows, cols, nodata, opts.StorePositions)
	}

	r.stats = make([]Stats, nLyrs)
	r.initialized = true
	return r, nil
}

// compactByScan builds the compacted layout from the raster's own nodata
// pattern: single-layer models index non-nodata cells, multi-layer models
// index cells valid on any layer.
func (r *Raster[T]) compactByScan(full [][]float64, rows, cols int, nodata float64, store bool) {
	var idx *PositionIndex
	if len(full) == 1 {
		idx = scanBuild(full[0], rows, cols, nodata)
	} else {
		idx = scanBuildUnion(full, rows, cols, nodata)
	}
	r.nCells = idx.Len()
	buffers := compactLayers(full, idx.Positions(), cols)
	if store {
		r.storeBuffers(buffers, idx)
		r.posOwned = true
	} else {
		r.storeBuffers(buffers, nil)
	}
	r.posCalculated = true
}

// storeBuffers converts the float64 working buffers to the element type
// and installs them as the 1D or 2D layout.
func (r *Raster[T]) storeBuffers(buffers [][]float64, idx *PositionIndex) {
	r.pos = idx
	if r.is2D {
		r.layers = make([][]T, len(buffers))
		for l, buf := range buffers {
			r.layers[l] = convertBuffer[T](buf)
		}
		return
	}
	r.cells = convertBuffer[T](buffers[0])
}

// compactLayers gathers, for every indexed position, each layer's value at
// that (row, col).
func compactLayers(full [][]float64, pos []CellPos, cols int) [][]float64 {
	out := make([][]float64, len(full))
	for l, lyr := range full {
		buf := make([]float64, len(pos))
		for i, p := range pos {
			buf[i] = lyr[p.Row*cols+p.Col]
		}
		out[l] = buf
	}
	return out
}

func convertBuffer[T Cell](src []float64) []T {
	out := make([]T, len(src))
	for i, v := range src {
		out[i] = T(v)
	}
	return out
}

// extentOnly reduces a header to the keys that define spatial extent, so a
// merge adopts the mask's footprint without clobbering nodata or layers.
func extentOnly(h grid.Header) grid.Header {
	out := grid.Header{}
	for _, k := range []string{grid.KeyRows, grid.KeyCols, grid.KeyCellSize, grid.KeyXll, grid.KeyYll} {
		if v, ok := h[k]; ok {
			out[k] = v
		}
	}
	return out
}

// coreName strips directory and extension from a source path.
func coreName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// commonCoreName derives the shared stem of per-layer files: dem_1.asc,
// dem_2.asc, dem_3.asc -> "dem". Falls back to the first file's core name
// when the stems disagree.
func commonCoreName(paths []string) string {
	stem := layerStem(coreName(paths[0]))
	for _, p := range paths[1:] {
		if layerStem(coreName(p)) != stem {
			return coreName(paths[0])
		}
	}
	return stem
}

// layerStem removes a trailing _<digits> suffix.
func layerStem(core string) string {
	i := strings.LastIndex(core, "_")
	if i <= 0 || i == len(core)-1 {
		return core
	}
	for _, ch := range core[i+1:] {
		if ch < '0' || ch > '9' {
			return core
		}
	}
	return core[:i]
}

// layerPathPattern renders the multi-file source as a single path with a
// %d placeholder, e.g. data/dem_%d.asc.
func layerPathPattern(paths []string) string {
	dir := filepath.Dir(paths[0])
	ext := filepath.Ext(paths[0])
	return filepath.Join(dir, commonCoreName(paths)+"_%d"+ext)
}
