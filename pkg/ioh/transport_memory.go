package ioh

import (
	"io"

	"github.com/bplaum/gavl/pkg/value"
)

// NewMemoryHandle wraps an in-memory byte buffer as a seekable,
// read-only Handle. It grounds the memory-buffer transport of
// spec §4.3/§6.2, mirroring the teacher's in-memory seekable writer
// (pkg/video/hls/writerseeker) used to stage a muxer's output before
// it is flushed to its real destination.
func NewMemoryHandle(data []byte) *Handle {
	pos := 0
	h := &Handle{
		Caps:       Caps{CanRead: true, CanSeek: true, IsRegular: true},
		Descriptor: descriptorFor("mem://", "", int64(len(data))),
	}
	h.read = func(p []byte) (int, error) {
		if pos >= len(data) {
			return 0, io.EOF
		}
		n := copy(p, data[pos:])
		pos += n
		return n, nil
	}
	h.seek = func(offset int64, whence int) (int64, error) {
		var np int64
		switch whence {
		case io.SeekStart:
			np = offset
		case io.SeekCurrent:
			np = int64(pos) + offset
		case io.SeekEnd:
			np = int64(len(data)) + offset
		}
		if np < 0 {
			return 0, io.ErrUnexpectedEOF
		}
		pos = int(np)
		return np, nil
	}
	return h
}

// NewMemoryBuffer returns a writable, growable, seekable in-memory
// Handle, backed by a byte slice that callers can retrieve with
// Bytes() once writing is complete.
type MemoryBuffer struct {
	*Handle
	data *[]byte
}

// Bytes returns the buffer's current contents.
func (m *MemoryBuffer) Bytes() []byte { return *m.data }

// NewMemoryBuffer constructs an empty, writable, seekable memory
// buffer handle.
func NewMemoryBuffer() *MemoryBuffer {
	data := make([]byte, 0, 256)
	pos := 0
	pdata := &data

	h := &Handle{
		Caps:       Caps{CanRead: true, CanWrite: true, CanSeek: true},
		Descriptor: descriptorFor("mem://", "", 0),
	}
	h.read = func(p []byte) (int, error) {
		if pos >= len(*pdata) {
			return 0, io.EOF
		}
		n := copy(p, (*pdata)[pos:])
		pos += n
		return n, nil
	}
	h.write = func(p []byte) (int, error) {
		need := pos + len(p)
		if need > len(*pdata) {
			grown := make([]byte, need)
			copy(grown, *pdata)
			*pdata = grown
		}
		copy((*pdata)[pos:], p)
		pos += len(p)
		return len(p), nil
	}
	h.seek = func(offset int64, whence int) (int64, error) {
		var np int64
		switch whence {
		case io.SeekStart:
			np = offset
		case io.SeekCurrent:
			np = int64(pos) + offset
		case io.SeekEnd:
			np = int64(len(*pdata)) + offset
		}
		if np < 0 {
			return 0, io.ErrUnexpectedEOF
		}
		pos = int(np)
		return np, nil
	}

	return &MemoryBuffer{Handle: h, data: pdata}
}

func descriptorFor(uri, mimetype string, size int64) *value.Dictionary {
	d := value.NewDictionary()
	if uri != "" {
		d.Set("uri", value.String(uri))
	}
	if mimetype != "" {
		d.Set("mimetype", value.String(mimetype))
	}
	d.Set("size", value.Long(size))
	return d
}
