// Package report renders descriptive-statistics reports for raster layers
// as standalone HTML pages using go-echarts.
package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/gridraster/internal/raster"
)

// DefaultBins is the histogram bin count used when the caller passes 0.
const DefaultBins = 20

// WriteHistogram writes an HTML histogram of the valid (non-nodata) values
// of the 1-based layer to w.
func WriteHistogram[T raster.Cell](w io.Writer, r *raster.Raster[T], layer, bins int) error {
	if layer < 1 || layer > r.Layers() {
		return fmt.Errorf("layer %d out of range [1,%d]", layer, r.Layers())
	}
	if bins <= 0 {
		bins = DefaultBins
	}

	st := r.Stats(layer)
	if st.ValidCount == 0 {
		return fmt.Errorf("layer %d has no valid cells", layer)
	}
	width := (st.Max - st.Min) / float64(bins)
	if width == 0 {
		// Constant-valued layer: a single bin holds everything.
		bins = 1
		width = 1
	}

	counts := make([]int, bins)
	nodata := r.NoDataValue()
	for i := 0; i < r.CellNumber(); i++ {
		v := r.LayerValueAt(i, layer)
		if v == nodata {
			continue
		}
		b := int((float64(v) - st.Min) / width)
		if b >= bins {
			b = bins - 1 // max value lands in the last bin
		}
		counts[b]++
	}

	labels := make([]string, bins)
	data := make([]opts.BarData, bins)
	for b := 0; b < bins; b++ {
		labels[b] = fmt.Sprintf("%.4g", st.Min+(float64(b)+0.5)*width)
		data[b] = opts.BarData{Value: counts[b]}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: fmt.Sprintf("%s histogram", r.CoreName()),
			Width:     "900px",
			Height:    "500px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title: fmt.Sprintf("%s (layer %d)", r.CoreName(), layer),
			Subtitle: fmt.Sprintf("valid=%d min=%.4g max=%.4g mean=%.4g std=%.4g",
				st.ValidCount, st.Min, st.Max, st.Mean, st.Std),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels).AddSeries("cells", data)
	return bar.Render(w)
}
