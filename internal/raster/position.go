package raster

// CellPos is the (row, column) location of one compacted cell in the full
// grid. Row 0 is the top row, matching row-major scan order.
type CellPos struct {
	Row int
	Col int
}

// PositionIndex maps a compacted valid-cell ordinal (0..N-1) to its
// location in the full grid, and back. Ordinal i always refers to the i-th
// valid cell encountered in row-major scan order (or, for a mask-copied
// index, the i-th entry of the mask's index).
type PositionIndex struct {
	pos     []CellPos
	cols    int         // full-grid column count, for the reverse key
	ordinal map[int]int // row*cols+col -> ordinal
}

// newPositionIndex wraps an already-built position sequence.
func newPositionIndex(pos []CellPos, cols int) *PositionIndex {
	idx := &PositionIndex{pos: pos, cols: cols, ordinal: make(map[int]int, len(pos))}
	for i, p := range pos {
		idx.ordinal[p.Row*cols+p.Col] = i
	}
	return idx
}

// Len returns the number of indexed cells.
func (x *PositionIndex) Len() int {
	if x == nil {
		return 0
	}
	return len(x.pos)
}

// At returns the (row, col) of ordinal i.
func (x *PositionIndex) At(i int) (CellPos, bool) {
	if x == nil || i < 0 || i >= len(x.pos) {
		return CellPos{}, false
	}
	return x.pos[i], true
}

// Ordinal returns the compacted ordinal of (row, col), or -1 when the cell
// is not part of the index.
func (x *PositionIndex) Ordinal(row, col int) int {
	if x == nil {
		return -1
	}
	if i, ok := x.ordinal[row*x.cols+col]; ok {
		return i
	}
	return -1
}

// Positions returns the backing (row, col) sequence. The slice is shared,
// not copied; callers treat it as read-only.
func (x *PositionIndex) Positions() []CellPos {
	if x == nil {
		return nil
	}
	return x.pos
}

// scanBuild iterates a decoded row-major buffer and collects the position
// of every cell that is not the nodata sentinel. This defines the canonical
// ordinal ordering used everywhere else.
func scanBuild(values []float64, rows, cols int, nodata float64) *PositionIndex {
	var pos []CellPos
	for r := 0; r < rows; r++ {
		base := r * cols
		for c := 0; c < cols; c++ {
			if values[base+c] != nodata {
				pos = append(pos, CellPos{Row: r, Col: c})
			}
		}
	}
	return newPositionIndex(pos, cols)
}

// scanBuildUnion is the multi-layer variant: a cell is valid when ANY layer
// holds a non-nodata value at that location.
func scanBuildUnion(layers [][]float64, rows, cols int, nodata float64) *PositionIndex {
	var pos []CellPos
	for r := 0; r < rows; r++ {
		base := r * cols
		for c := 0; c < cols; c++ {
			for _, lyr := range layers {
				if lyr[base+c] != nodata {
					pos = append(pos, CellPos{Row: r, Col: c})
					break
				}
			}
		}
	}
	return newPositionIndex(pos, cols)
}

// maskCopy builds an index that is the mask's index verbatim, establishing
// the 1:1 ordinal correspondence between mask cell i and raster cell i.
func maskCopy(maskPos []CellPos, cols int) *PositionIndex {
	pos := make([]CellPos, len(maskPos))
	copy(pos, maskPos)
	return newPositionIndex(pos, cols)
}
