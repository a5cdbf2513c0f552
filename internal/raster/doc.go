// Package raster implements the in-memory raster model: a generic grid of
// numeric cells that can represent either every cell of its extent or only
// the non-nodata cells, compacted into a dense buffer with a row/column
// lookup table. The valid-cell set can be shaped by a mask raster, per-layer
// descriptive statistics are computed lazily, and grids are read and written
// through the codecs in internal/grid.
//
// A model instance is single-threaded: one logical owner builds, queries,
// mutates and writes it. A mask may be shared read-only across several
// dependent models; the model never takes ownership of its mask and never
// mutates it. Mutating a shared mask while dependents exist is a caller
// obligation to avoid, not something the type enforces.
package raster
