package codec

import (
	"fmt"
	"io"
	"math"

	"github.com/icza/bitio"
)

// Endian selects byte order for the fixed-width helpers.
type Endian uint8

// Supported byte orders.
const (
	BigEndian Endian = iota
	LittleEndian
)

// order splits v's bytes (width bytes wide) into write order.
func order(v uint64, width int, e Endian) []byte {
	out := make([]byte, width)
	for i := 0; i < width; i++ {
		shift := uint((width - 1 - i) * 8)
		out[i] = byte(v >> shift)
	}
	if e == LittleEndian {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

// WriteFixed writes v using width bytes (1, 2, 3, 4 or 8) in the
// given byte order, driven through icza/bitio's bit writer so that
// partial (24-bit) widths fall out of the same code path as the
// whole-byte ones.
func WriteFixed(w io.Writer, v uint64, width int, e Endian) error {
	bw, ok := w.(bitWriterOut)
	var closer *bitio.Writer
	if !ok {
		closer = bitio.NewWriter(&byteWriterAdapter{w})
		bw = closer
	}

	for _, b := range order(v, width, e) {
		if err := bw.WriteBits(uint64(b), 8); err != nil {
			return fmt.Errorf("codec: write fixed%d: %w", width*8, err)
		}
	}
	if closer != nil {
		return closer.Close()
	}
	return nil
}

// ReadFixed reads width bytes (1, 2, 3, 4 or 8) in the given byte
// order and returns them as a uint64.
func ReadFixed(r io.Reader, width int, e Endian) (uint64, error) {
	br := bitio.NewReader(io.LimitReader(r, int64(width)))

	raw := make([]byte, width)
	for i := 0; i < width; i++ {
		b, err := br.ReadBits(8)
		if err != nil {
			return 0, fmt.Errorf("codec: read fixed%d: %w", width*8, err)
		}
		raw[i] = byte(b)
	}
	if e == LittleEndian {
		for i, j := 0, len(raw)-1; i < j; i, j = i+1, j-1 {
			raw[i], raw[j] = raw[j], raw[i]
		}
	}

	var v uint64
	for _, b := range raw {
		v = (v << 8) | uint64(b)
	}
	return v, nil
}

// bitWriterOut is the subset of *bitio.Writer used by WriteFixed, so
// a caller-supplied bitio.Writer (e.g. when fixed-width fields are
// interleaved with bit-packed codec headers) is reused instead of
// wrapped again.
type bitWriterOut interface {
	WriteBits(r uint64, n uint8) error
}

type byteWriterAdapter struct{ io.Writer }

func (b *byteWriterAdapter) WriteByte(c byte) error {
	_, err := b.Write([]byte{c})
	return err
}

// WriteFloat32 writes an IEEE-754 single-precision float, big-endian.
func WriteFloat32(w io.Writer, f float32) error {
	return WriteFixed(w, uint64(math.Float32bits(f)), 4, BigEndian)
}

// ReadFloat32 reads an IEEE-754 single-precision float, big-endian.
func ReadFloat32(r io.Reader) (float32, error) {
	v, err := ReadFixed(r, 4, BigEndian)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(uint32(v)), nil
}

// WriteFloat64 writes an IEEE-754 double-precision float, big-endian.
func WriteFloat64(w io.Writer, f float64) error {
	return WriteFixed(w, math.Float64bits(f), 8, BigEndian)
}

// ReadFloat64 reads an IEEE-754 double-precision float, big-endian.
func ReadFloat64(r io.Reader) (float64, error) {
	v, err := ReadFixed(r, 8, BigEndian)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// WriteString writes a varint length prefix followed by the raw
// UTF-8 bytes (no NUL terminator on the wire).
func WriteString(w io.Writer, s string) error {
	if _, err := WriteUint64V(w, uint64(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

// ReadString reads a varint-length-prefixed UTF-8 string.
func ReadString(r io.Reader) (string, error) {
	n, _, err := ReadUint64V(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("codec: read string payload: %w", err)
	}
	return string(buf), nil
}

// WriteBuffer writes a varint length prefix followed by the raw bytes.
func WriteBuffer(w io.Writer, b []byte) error {
	if _, err := WriteUint64V(w, uint64(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// ReadBuffer reads a varint-length-prefixed byte buffer.
func ReadBuffer(r io.Reader) ([]byte, error) {
	n, _, err := ReadUint64V(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("codec: read buffer payload: %w", err)
	}
	return buf, nil
}
