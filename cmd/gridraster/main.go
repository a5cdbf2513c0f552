// Command gridraster inspects, converts and exports raster grid files
// (.asc ESRI ASCII, .grd compressed binary) and named grid blobs held in a
// SQLite document store.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/banshee-data/gridraster/internal/blobstore"
	"github.com/banshee-data/gridraster/internal/raster"
	"github.com/banshee-data/gridraster/internal/render"
	"github.com/banshee-data/gridraster/internal/report"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: gridraster <command> [flags]

commands:
  info    <file>...            print header and layout of each grid
  stats   [-layer n] <file>    print per-layer statistics
  convert [-mask f] [-keep-nodata] <src> <dst>
                               load a grid (optionally masked) and write it
  merge   <dst> <layer>...     combine single-layer files into one multi-layer grid
  render  [-layer n] <src> <out.png>
                               render a layer as a PNG heatmap
  report  [-layer n] [-bins n] <src> <out.html>
                               write an HTML value histogram
  blob    -db <file> put|get|list [args]
                               move grids in and out of a blob store
`)
	os.Exit(2)
}

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		usage()
	}
	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "info":
		runInfo(args)
	case "stats":
		runStats(args)
	case "convert":
		runConvert(args)
	case "merge":
		runMerge(args)
	case "render":
		runRender(args)
	case "report":
		runReport(args)
	case "blob":
		runBlob(args)
	default:
		usage()
	}
}

func runInfo(args []string) {
	if len(args) == 0 {
		usage()
	}
	for _, path := range args {
		r, err := raster.Load[float64](path, raster.DefaultLoadOptions())
		if err != nil {
			// Keep going: batch inspection continues past bad files.
			log.Printf("info: %s: %v", path, err)
			continue
		}
		fmt.Printf("%s: %dx%d cellsize=%g xll=%g yll=%g layers=%d cells=%d nodata=%g\n",
			r.CoreName(), r.Rows(), r.Cols(), r.CellSize(),
			r.XllCenter(), r.YllCenter(), r.Layers(), r.CellNumber(), r.NoDataValue())
	}
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	layer := fs.Int("layer", 0, "layer to report (0 = all)")
	fs.Parse(args)
	if fs.NArg() != 1 {
		usage()
	}

	r, err := raster.Load[float64](fs.Arg(0), raster.DefaultLoadOptions())
	if err != nil {
		log.Fatalf("stats: %v", err)
	}
	from, to := 1, r.Layers()
	if *layer > 0 {
		from, to = *layer, *layer
	}
	for l := from; l <= to; l++ {
		st := r.Stats(l)
		fmt.Printf("layer %d: valid=%d min=%g max=%g mean=%g std=%g range=%g\n",
			l, st.ValidCount, st.Min, st.Max, st.Mean, st.Std, st.Range)
	}
}

func runConvert(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	maskPath := fs.String("mask", "", "mask grid shaping the valid-cell set")
	keepNodata := fs.Bool("keep-nodata", false, "represent every cell instead of compacting")
	fs.Parse(args)
	if fs.NArg() != 2 {
		usage()
	}

	opts := raster.DefaultLoadOptions()
	opts.ExcludeNodata = !*keepNodata
	if *maskPath != "" {
		mask, err := raster.Load[int32](*maskPath, raster.DefaultLoadOptions())
		if err != nil {
			log.Fatalf("convert: mask: %v", err)
		}
		opts.Mask = mask
	}

	r, err := raster.Load[float64](fs.Arg(0), opts)
	if err != nil {
		log.Fatalf("convert: %v", err)
	}
	if err := r.Write(fs.Arg(1)); err != nil {
		log.Fatalf("convert: write %s: %v", fs.Arg(1), err)
	}
}

func runMerge(args []string) {
	if len(args) < 2 {
		usage()
	}
	r, err := raster.LoadLayers[float64](args[1:], raster.DefaultLoadOptions())
	if err != nil {
		log.Fatalf("merge: %v", err)
	}
	if err := r.Write(args[0]); err != nil {
		log.Fatalf("merge: write %s: %v", args[0], err)
	}
	log.Printf("merged %d layers (%d cells) into %s", r.Layers(), r.CellNumber(), args[0])
}

func runRender(args []string) {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	layer := fs.Int("layer", 1, "layer to render")
	fs.Parse(args)
	if fs.NArg() != 2 {
		usage()
	}

	r, err := raster.Load[float64](fs.Arg(0), raster.DefaultLoadOptions())
	if err != nil {
		log.Fatalf("render: %v", err)
	}
	if err := render.WriteHeatmapPNG(fs.Arg(1), r, *layer); err != nil {
		log.Fatalf("render: %v", err)
	}
}

func runReport(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	layer := fs.Int("layer", 1, "layer to report")
	bins := fs.Int("bins", report.DefaultBins, "histogram bin count")
	fs.Parse(args)
	if fs.NArg() != 2 {
		usage()
	}

	r, err := raster.Load[float64](fs.Arg(0), raster.DefaultLoadOptions())
	if err != nil {
		log.Fatalf("report: %v", err)
	}
	out, err := os.Create(fs.Arg(1))
	if err != nil {
		log.Fatalf("report: %v", err)
	}
	defer out.Close()
	if err := report.WriteHistogram(out, r, *layer, *bins); err != nil {
		log.Fatalf("report: %v", err)
	}
}

func runBlob(args []string) {
	fs := flag.NewFlagSet("blob", flag.ExitOnError)
	dbPath := fs.String("db", "grids.db", "blob store database file")
	fs.Parse(args)
	rest := fs.Args()
	if len(rest) == 0 {
		usage()
	}

	store, err := blobstore.Open(*dbPath)
	if err != nil {
		log.Fatalf("blob: %v", err)
	}
	defer store.Close()

	switch rest[0] {
	case "put":
		if len(rest) != 3 {
			usage()
		}
		r, err := raster.Load[float64](rest[2], raster.DefaultLoadOptions())
		if err != nil {
			log.Fatalf("blob put: %v", err)
		}
		if err := r.WriteToStore(store, rest[1]); err != nil {
			log.Fatalf("blob put: %v", err)
		}
	case "get":
		if len(rest) != 3 {
			usage()
		}
		r, err := raster.LoadFromStore[float64](store, rest[1], raster.DefaultLoadOptions())
		if err != nil {
			log.Fatalf("blob get: %v", err)
		}
		if err := r.Write(rest[2]); err != nil {
			log.Fatalf("blob get: write %s: %v", rest[2], err)
		}
	case "list":
		names, err := store.List()
		if err != nil {
			log.Fatalf("blob list: %v", err)
		}
		for _, n := range names {
			fmt.Println(n)
		}
	default:
		usage()
	}
}
