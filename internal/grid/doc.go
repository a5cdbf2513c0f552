// Package grid holds the leaf data types shared by the raster model and its
// format adapters: the numeric header table, the row-major Grid exchange
// value, and the extension-keyed codec registry with the built-in ESRI
// ASCII and compressed binary codecs.
//
// A Grid is always fully decoded: every cell of every layer is present in
// Values, nodata cells included. Compaction against a nodata sentinel or a
// mask is the raster model's job, not the codecs'.
package grid
