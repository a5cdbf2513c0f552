package grid

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrFormat reports a source that could not be decoded as a grid.
var ErrFormat = errors.New("malformed grid data")

// ErrUnsupported reports a file extension with no registered codec.
var ErrUnsupported = errors.New("unsupported grid format")

// Grid is the self-describing exchange value passed between the raster
// model and the format codecs: a header plus a fully populated row-major
// buffer (top row first). Multi-layer grids append one row-major plane per
// layer, so len(Values) == Rows*Cols*max(Layers,1).
type Grid struct {
	Header Header
	Values []float64
	SRS    string // spatial reference text, empty when unknown
}

// LayerCount returns the number of layers, treating a missing or zero
// LAYERS entry as a single layer.
func (g *Grid) LayerCount() int {
	if n := g.Header.Layers(); n > 1 {
		return n
	}
	return 1
}

// Layer returns the row-major plane of the 1-based layer, or nil when the
// layer or the buffer length is out of range.
func (g *Grid) Layer(lyr int) []float64 {
	n := g.Header.Rows() * g.Header.Cols()
	if lyr < 1 || lyr > g.LayerCount() || n <= 0 || len(g.Values) < lyr*n {
		return nil
	}
	return g.Values[(lyr-1)*n : lyr*n]
}

// Codec decodes and encodes one backing format. Implementations work on
// streams; file handling and destination checks live in Decode/Encode.
type Codec interface {
	Decode(r io.Reader) (*Grid, error)
	Encode(w io.Writer, g *Grid) error
}

var (
	codecMu sync.RWMutex
	codecs  = map[string]Codec{}
)

// Register associates a codec with a file extension (".asc" form,
// case-insensitive). Later registrations replace earlier ones.
func Register(ext string, c Codec) {
	codecMu.Lock()
	defer codecMu.Unlock()
	codecs[strings.ToLower(ext)] = c
}

// Lookup returns the codec registered for ext.
func Lookup(ext string) (Codec, bool) {
	codecMu.RLock()
	defer codecMu.RUnlock()
	c, ok := codecs[strings.ToLower(ext)]
	return c, ok
}

func init() {
	Register(".asc", asciiCodec{})
	Register(".grd", binaryCodec{})
}

// Decode reads the grid file at path using the codec matching its
// extension. A missing file surfaces as an fs.ErrNotExist wrapped error.
func Decode(path string) (*Grid, error) {
	c, ok := Lookup(filepath.Ext(path))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := c.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return g, nil
}

// Encode writes g to path using the codec matching its extension. The
// destination directory must already exist; Encode never creates it.
func Encode(path string, g *Grid) error {
	c, ok := Lookup(filepath.Ext(path))
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
	}
	if dir := filepath.Dir(path); dir != "" {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return fmt.Errorf("destination directory does not exist: %s", dir)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := c.Encode(f, g); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
