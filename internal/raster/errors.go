package raster

import "errors"

// Fatal-at-construction errors. A constructor that returns one of these
// never returns a usable model; every other operation follows the sentinel
// contract and does not fail.
var (
	// ErrExtentMismatch reports a mask whose extent does not line up with
	// the raster being loaded.
	ErrExtentMismatch = errors.New("raster and mask extents do not match")

	// ErrLayerExtentMismatch reports multi-file layer sources whose headers
	// disagree.
	ErrLayerExtentMismatch = errors.New("layer extents do not match")

	// ErrNoLayers reports a multi-file load with an empty path list.
	ErrNoLayers = errors.New("no layer sources given")
)
