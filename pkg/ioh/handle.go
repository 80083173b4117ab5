// Package ioh implements the I/O abstraction of spec §4.3: a handle
// carrying read/write/seek/poll/flush function slots plus capability
// flags, an unread look-ahead buffer, sticky EOF/error flags and a
// descriptor dictionary, together with the chunk framing of §4.4 and
// concrete transports (§6.2) built on top of it.
package ioh

import (
	"fmt"
	"io"

	"github.com/bplaum/gavl/pkg/value"
)

// Whence mirrors io.Seek* for the Seek function slot.
type Whence = int

// ReadFunc reads up to len(p) bytes, returning the count read. A
// short blocking read that returns 0 sets EOF; a negative count (-1)
// sets the error flag, matching the contract in spec §4.3.
type ReadFunc func(p []byte) (int, error)

// WriteFunc writes p, returning the count written.
type WriteFunc func(p []byte) (int, error)

// SeekFunc seeks to an absolute or relative position.
type SeekFunc func(offset int64, whence Whence) (int64, error)

// PollFunc waits up to timeoutMS milliseconds for the handle to
// become ready for the requested direction, returning whether it did.
type PollFunc func(timeoutMS int, wantWrite bool) (bool, error)

// CloseFunc releases the handle's underlying resource.
type CloseFunc func() error

// FlushFunc flushes any buffered writes to the underlying resource.
type FlushFunc func() error

// Caps are the capability flags a Handle advertises.
type Caps struct {
	CanRead    bool
	CanWrite   bool
	CanSeek    bool
	IsPipe     bool
	IsSocket   bool
	IsUnixSock bool
	IsRegular  bool
}

// Handle is an I/O handle. Function slots left nil are unsupported;
// callers must consult Caps before using them.
type Handle struct {
	Caps Caps

	read  ReadFunc
	write WriteFunc
	seek  SeekFunc
	poll  PollFunc
	close CloseFunc
	flush FlushFunc

	pos int64

	unread []byte // look-ahead buffer; consumed before calling read.

	eof   bool
	erred bool
	err   error

	// Descriptor carries URI, mimetype, size - the handle's
	// self-description, per spec §4.3.
	Descriptor *value.Dictionary
}

// New constructs a Handle from the given function slots and
// capability flags. Any of the funcs may be nil.
func New(caps Caps, read ReadFunc, write WriteFunc, seek SeekFunc, poll PollFunc, closeFn CloseFunc, flush FlushFunc) *Handle {
	return &Handle{
		Caps:       caps,
		read:       read,
		write:      write,
		seek:       seek,
		poll:       poll,
		close:      closeFn,
		flush:      flush,
		Descriptor: value.NewDictionary(),
	}
}

// GotEOF reports the sticky EOF flag (spec §7).
func (h *Handle) GotEOF() bool { return h.eof }

// GotError reports the sticky error flag and the error that set it.
func (h *Handle) GotError() (bool, error) { return h.erred, h.err }

// Position returns the handle's current byte position.
func (h *Handle) Position() int64 { return h.pos }

func (h *Handle) setErr(err error) {
	h.erred = true
	h.err = err
}

// Read satisfies from the unread buffer first, then the underlying
// read function, per spec §4.3's contract.
func (h *Handle) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	total := 0
	if len(h.unread) > 0 {
		n := copy(p, h.unread)
		h.unread = h.unread[n:]
		total += n
		h.pos += int64(n)
		if total == len(p) {
			return total, nil
		}
	}

	if h.read == nil {
		return total, fmt.Errorf("ioh: handle does not support read")
	}

	n, err := h.read(p[total:])
	if n < 0 {
		h.setErr(fmt.Errorf("ioh: read error"))
		return total, h.err
	}
	if n == 0 && err == nil {
		h.eof = true
	}
	if err == io.EOF {
		h.eof = true
	} else if err != nil {
		// A poll-style timeout is a non-fatal "would block" (spec
		// §5/§7), not a sticky transport error.
		if ne, ok := err.(interface{ Timeout() bool }); !ok || !ne.Timeout() {
			h.setErr(err)
		}
	}
	h.pos += int64(n)
	total += n

	if total == 0 && h.eof {
		return 0, io.EOF
	}
	if err != nil && err != io.EOF {
		return total, err
	}
	return total, nil
}

// Write calls the underlying write function.
func (h *Handle) Write(p []byte) (int, error) {
	if h.write == nil {
		return 0, fmt.Errorf("ioh: handle does not support write")
	}
	n, err := h.write(p)
	if n < 0 {
		h.setErr(fmt.Errorf("ioh: write error"))
		return n, h.err
	}
	if err != nil {
		h.setErr(err)
	}
	h.pos += int64(n)
	return n, err
}

// Unread prepends bytes to the look-ahead buffer and rolls the
// position back by len(b), per spec §4.3.
func (h *Handle) Unread(b []byte) {
	h.unread = append(append([]byte{}, b...), h.unread...)
	h.pos -= int64(len(b))
}

// Seek repositions the handle if it supports seeking, clearing the
// look-ahead buffer (stale after a jump).
func (h *Handle) Seek(offset int64, whence Whence) (int64, error) {
	if h.seek == nil {
		return 0, fmt.Errorf("ioh: handle does not support seek")
	}
	h.unread = nil
	pos, err := h.seek(offset, whence)
	if err != nil {
		h.setErr(err)
		return pos, err
	}
	h.pos = pos
	h.eof = false
	return pos, nil
}

// Skip advances n bytes, using Seek when available and falling back
// to discarding reads otherwise, per spec §4.3.
func (h *Handle) Skip(n int64) error {
	if h.Caps.CanSeek {
		_, err := h.Seek(n, io.SeekCurrent)
		return err
	}
	buf := make([]byte, 4096)
	for n > 0 {
		chunk := int64(len(buf))
		if n < chunk {
			chunk = n
		}
		read, err := h.Read(buf[:chunk])
		n -= int64(read)
		if err != nil {
			return err
		}
		if read == 0 {
			return io.EOF
		}
	}
	return nil
}

// Poll waits for readiness, if the handle supports polling.
func (h *Handle) Poll(timeoutMS int, wantWrite bool) (bool, error) {
	if h.poll == nil {
		return true, nil
	}
	return h.poll(timeoutMS, wantWrite)
}

// Flush flushes buffered writes, if supported.
func (h *Handle) Flush() error {
	if h.flush == nil {
		return nil
	}
	return h.flush()
}

// Close releases the handle's resource. Subsequent reads on a closed
// handle must report EOF at the caller's layer (the container runtime
// enforces this by dropping its reference, per spec §7).
func (h *Handle) Close() error {
	if h.close == nil {
		return nil
	}
	return h.close()
}

const alignBoundary = 8

// AlignRead discards bytes until Position() is a multiple of 8.
func (h *Handle) AlignRead() error {
	pad := (alignBoundary - int(h.pos%alignBoundary)) % alignBoundary
	if pad == 0 {
		return nil
	}
	return h.Skip(int64(pad))
}

// AlignWrite writes zero bytes until Position() is a multiple of 8.
func (h *Handle) AlignWrite() error {
	pad := (alignBoundary - int(h.pos%alignBoundary)) % alignBoundary
	if pad == 0 {
		return nil
	}
	zeros := make([]byte, pad)
	_, err := h.Write(zeros)
	return err
}
