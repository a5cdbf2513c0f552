// Package render draws raster layers as PNG heatmaps with gonum/plot.
package render

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/gridraster/internal/raster"
)

// layerGrid adapts one raster layer to plotter.GridXYZ. Nodata cells map
// to NaN so the palette skips them. Plot rows count upward from the
// bottom, raster rows downward from the top.
type layerGrid[T raster.Cell] struct {
	r     *raster.Raster[T]
	layer int
}

func (g layerGrid[T]) Dims() (c, r int) { return g.r.Cols(), g.r.Rows() }

func (g layerGrid[T]) X(c int) float64 { return g.r.XllCenter() + float64(c)*g.r.CellSize() }

func (g layerGrid[T]) Y(r int) float64 { return g.r.YllCenter() + float64(r)*g.r.CellSize() }

func (g layerGrid[T]) Z(c, r int) float64 {
	row := g.r.Rows() - 1 - r
	v := g.r.LayerValue(row, c, g.layer)
	if v == g.r.NoDataValue() {
		return math.NaN()
	}
	return float64(v)
}

// WriteHeatmapPNG renders the 1-based layer of r to a PNG file. The plot
// is sized proportionally to the grid extent.
func WriteHeatmapPNG[T raster.Cell](path string, r *raster.Raster[T], layer int) error {
	if layer < 1 || layer > r.Layers() {
		return fmt.Errorf("layer %d out of range [1,%d]", layer, r.Layers())
	}
	g := layerGrid[T]{r: r, layer: layer}

	st := r.Stats(layer)
	if st.ValidCount == 0 {
		return fmt.Errorf("layer %d has no valid cells to render", layer)
	}

	pal := palette.Heat(255, 1)
	hm := plotter.NewHeatMap(g, pal)
	hm.Min = st.Min
	hm.Max = st.Max
	hm.NaN = nil // leave nodata cells unpainted

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s (layer %d)", r.CoreName(), layer)
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"
	p.Add(hm)

	width := 6 * vg.Inch
	height := width * vg.Length(r.Rows()) / vg.Length(r.Cols())
	return p.Save(width, height, path)
}
