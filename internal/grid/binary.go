package grid

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"io"
)

// binaryCodec is the compressed binary grid format (.grd): a gob-encoded
// envelope inside a gzip stream. Unlike ASCII it carries multi-layer grids
// and the spatial reference text in a single file.
type binaryCodec struct{}

// binaryEnvelope is the on-disk shape. Fields are exported for gob.
type binaryEnvelope struct {
	Header Header
	Values []float64
	SRS    string
}

func (binaryCodec) Decode(r io.Reader) (*Grid, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	defer gz.Close()

	var env binaryEnvelope
	if err := gob.NewDecoder(gz).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	g := &Grid{Header: env.Header, Values: env.Values, SRS: env.SRS}
	if g.Header == nil {
		return nil, fmt.Errorf("%w: envelope has no header", ErrFormat)
	}
	n := g.Header.Rows() * g.Header.Cols() * g.LayerCount()
	if n <= 0 || len(g.Values) != n {
		return nil, fmt.Errorf("%w: buffer length %d does not match header (%d expected)",
			ErrFormat, len(g.Values), n)
	}
	return g, nil
}

func (binaryCodec) Encode(w io.Writer, g *Grid) error {
	n := g.Header.Rows() * g.Header.Cols() * g.LayerCount()
	if n <= 0 || len(g.Values) != n {
		return fmt.Errorf("%w: buffer length %d does not match header (%d expected)",
			ErrFormat, len(g.Values), n)
	}
	gz := gzip.NewWriter(w)
	enc := gob.NewEncoder(gz)
	if err := enc.Encode(binaryEnvelope{Header: g.Header, Values: g.Values, SRS: g.SRS}); err != nil {
		gz.Close()
		return err
	}
	return gz.Close()
}

// DecodeBytes decodes a binary-format grid blob, as stored by a named-blob
// store. EncodeBytes is the inverse.
func DecodeBytes(blob []byte) (*Grid, error) {
	if len(blob) == 0 {
		return nil, fmt.Errorf("%w: empty grid blob", ErrFormat)
	}
	return binaryCodec{}.Decode(bytes.NewReader(blob))
}

// EncodeBytes encodes g in the binary format for blob storage.
func EncodeBytes(g *Grid) ([]byte, error) {
	var buf bytes.Buffer
	if err := (binaryCodec{}).Encode(&buf, g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
