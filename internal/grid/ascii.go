package grid

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// asciiCodec reads and writes the ESRI ASCII grid layout: header lines of
// the form "KEY value" (keys case-insensitive), followed by NROWS lines of
// NCOLS whitespace-separated values in row-major order, top row first.
// Data tokens may wrap across lines; only token count matters.
type asciiCodec struct{}

// defaultNoData is used when the optional NODATA_VALUE header is absent.
const defaultNoData = -9999.0

func (asciiCodec) Decode(r io.Reader) (*Grid, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	hdr := Header{KeyNoData: defaultNoData, KeyLayers: 1}
	required := map[string]bool{
		"NCOLS": false, "NROWS": false, "CELLSIZE": false,
		"XLL": false, "YLL": false,
	}
	xCorner, yCorner := false, false

	// Header section: KEY token followed by a value token, until the first
	// token that is not a known keyword (the first data value).
	var pending string
	for sc.Scan() {
		tok := sc.Text()
		key := strings.ToUpper(tok)
		var target string
		switch key {
		case "NCOLS", "NROWS", "CELLSIZE", "NODATA_VALUE",
			"XLLCENTER", "XLLCORNER", "YLLCENTER", "YLLCORNER":
			target = key
		default:
			pending = tok
		}
		if pending != "" {
			break
		}
		if !sc.Scan() {
			return nil, fmt.Errorf("%w: header %s has no value", ErrFormat, key)
		}
		v, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: header %s: %v", ErrFormat, key, err)
		}
		switch target {
		case "NCOLS":
			hdr[KeyCols] = v
			required["NCOLS"] = true
		case "NROWS":
			hdr[KeyRows] = v
			required["NROWS"] = true
		case "CELLSIZE":
			if v <= 0 {
				return nil, fmt.Errorf("%w: CELLSIZE must be greater than 0", ErrFormat)
			}
			hdr[KeyCellSize] = v
			required["CELLSIZE"] = true
		case "NODATA_VALUE":
			hdr[KeyNoData] = v
		case "XLLCENTER", "XLLCORNER":
			hdr[KeyXll] = v
			xCorner = target == "XLLCORNER"
			required["XLL"] = true
		case "YLLCENTER", "YLLCORNER":
			hdr[KeyYll] = v
			yCorner = target == "YLLCORNER"
			required["YLL"] = true
		}
	}
	for name, seen := range required {
		if !seen {
			return nil, fmt.Errorf("%w: missing mandatory header %s", ErrFormat, name)
		}
	}

	// A CORNER coordinate refers to the cell edge; shift by half a cell so
	// the stored value is always the cell-center convention.
	if xCorner {
		hdr[KeyXll] += hdr[KeyCellSize] / 2
	}
	if yCorner {
		hdr[KeyYll] += hdr[KeyCellSize] / 2
	}

	n := hdr.Rows() * hdr.Cols()
	if n <= 0 {
		return nil, fmt.Errorf("%w: empty grid (%dx%d)", ErrFormat, hdr.Rows(), hdr.Cols())
	}
	values := make([]float64, 0, n)
	if pending != "" {
		v, err := strconv.ParseFloat(pending, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: unknown header keyword %q", ErrFormat, pending)
		}
		values = append(values, v)
	}
	for len(values) < n && sc.Scan() {
		v, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: data token %q", ErrFormat, sc.Text())
		}
		values = append(values, v)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(values) < n {
		return nil, fmt.Errorf("%w: got %d of %d values", ErrFormat, len(values), n)
	}
	return &Grid{Header: hdr, Values: values}, nil
}

func (asciiCodec) Encode(w io.Writer, g *Grid) error {
	if g.LayerCount() != 1 {
		return fmt.Errorf("%w: ASCII grid holds a single layer, got %d", ErrFormat, g.LayerCount())
	}
	rows, cols := g.Header.Rows(), g.Header.Cols()
	if rows <= 0 || cols <= 0 || len(g.Values) < rows*cols {
		return fmt.Errorf("%w: buffer shorter than %dx%d", ErrFormat, rows, cols)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "NCOLS %d\n", cols)
	fmt.Fprintf(bw, "NROWS %d\n", rows)
	fmt.Fprintf(bw, "XLLCENTER %s\n", formatValue(g.Header.XllCenter()))
	fmt.Fprintf(bw, "YLLCENTER %s\n", formatValue(g.Header.YllCenter()))
	fmt.Fprintf(bw, "CELLSIZE %s\n", formatValue(g.Header.CellSize()))
	fmt.Fprintf(bw, "NODATA_VALUE %s\n", formatValue(g.Header.NoData()))
	for r := 0; r < rows; r++ {
		row := g.Values[r*cols : (r+1)*cols]
		for c, v := range row {
			if c > 0 {
				bw.WriteByte(' ')
			}
			bw.WriteString(formatValue(v))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// formatValue renders a header or cell value with the shortest exact
// decimal representation so round-trips are lossless.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
