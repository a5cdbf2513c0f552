package raster

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/banshee-data/gridraster/internal/grid"
)

// fullLayer reconstructs the full row-major buffer of the 1-based layer,
// substituting the nodata sentinel for every position absent from the
// compacted representation. Returns nil when the compacted layout has no
// position table to reconstruct from.
func (r *Raster[T]) fullLayer(layer int) []float64 {
	buf := r.buffer(layer)
	if buf == nil {
		return nil
	}
	rows, cols := r.Rows(), r.Cols()
	if !r.excludeNodata {
		out := make([]float64, rows*cols)
		for i, v := range buf {
			out[i] = float64(v)
		}
		return out
	}
	if r.pos == nil {
		return nil
	}
	nodata := float64(r.nodata)
	out := make([]float64, rows*cols)
	for i := range out {
		out[i] = nodata
	}
	for i, p := range r.pos.Positions() {
		out[p.Row*cols+p.Col] = float64(buf[i])
	}
	return out
}

// outputHeader is the header written alongside reconstructed buffers.
func (r *Raster[T]) outputHeader(layers int) grid.Header {
	hdr := r.hdr.Clone()
	hdr[grid.KeyLayers] = float64(layers)
	return hdr
}

// Write reconstructs the full row-major grid and hands it to the codec
// matching the path's extension. A 2D model written to a single-layer
// format produces one file per layer named <core>_<n>.<ext> next to the
// given path. A nil return is success; errors (missing destination
// directory, codec write failure, no position table) never panic, so
// batch export loops can continue past individual failures.
func (r *Raster[T]) Write(path string) error {
	if !r.initialized {
		return fmt.Errorf("raster not initialized")
	}
	ext := strings.ToLower(filepath.Ext(path))

	if r.is2D && ext == ".asc" {
		dir := filepath.Dir(path)
		core := coreName(path)
		for l := 1; l <= r.nLyrs; l++ {
			values := r.fullLayer(l)
			if values == nil {
				return fmt.Errorf("layer %d: no position data to reconstruct row-major buffer", l)
			}
			layerPath := filepath.Join(dir, fmt.Sprintf("%s_%d%s", core, l, ext))
			g := &grid.Grid{Header: r.outputHeader(1), Values: values, SRS: r.srs}
			if err := grid.Encode(layerPath, g); err != nil {
				return err
			}
			log.Printf("[Raster] wrote layer %d of %s to %s", l, r.coreName, layerPath)
		}
		return nil
	}

	g, err := r.exportGrid()
	if err != nil {
		return err
	}
	return grid.Encode(path, g)
}

// BlobPutter is the write half of a named-blob store.
type BlobPutter interface {
	Put(name string, data []byte) error
}

// WriteToStore encodes the full reconstructed grid in the binary format
// and stores it under name.
func (r *Raster[T]) WriteToStore(store BlobPutter, name string) error {
	g, err := r.exportGrid()
	if err != nil {
		return err
	}
	blob, err := grid.EncodeBytes(g)
	if err != nil {
		return err
	}
	return store.Put(name, blob)
}

// exportGrid assembles the self-describing exchange value for the whole
// model, all layers reconstructed to row-major order.
func (r *Raster[T]) exportGrid() (*grid.Grid, error) {
	if !r.initialized {
		return nil, fmt.Errorf("raster not initialized")
	}
	rows, cols := r.Rows(), r.Cols()
	values := make([]float64, 0, rows*cols*r.nLyrs)
	for l := 1; l <= r.nLyrs; l++ {
		lyr := r.fullLayer(l)
		if lyr == nil {
			return nil, fmt.Errorf("layer %d: no position data to reconstruct row-major buffer", l)
		}
		values = append(values, lyr...)
	}
	return &grid.Grid{Header: r.outputHeader(r.nLyrs), Values: values, SRS: r.srs}, nil
}
