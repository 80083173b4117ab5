package hwbuf

import (
	"context"
	"errors"

	"github.com/bplaum/gavl/pkg/gavlerr"
)

var errNilFrame = errors.New("hwbuf: transfer called with a nil frame")

var noopCtx = context.Background()

// Context binds a Pool to its Capabilities for negotiation, the Go
// shape of the original's gavl_hw_context_t: a pool that also knows
// what it can import/export/transfer to/from a peer.
type Context struct {
	Pool *Pool
	Caps Capabilities
}

// NewContext returns a Context wrapping a freshly built Pool.
func NewContext(caps Capabilities, role Role, maxFrames, frameSize int) *Context {
	return &Context{
		Pool: NewPool(caps, role, maxFrames, frameSize),
		Caps: caps,
	}
}

// CanImport reports whether this context can import frames produced
// by src (gavl_hw_ctx_can_import).
func (c *Context) CanImport(src *Context) bool {
	return c.Caps.CanImport(src.Caps.FourCC)
}

// CanExport reports whether this context can export to dst
// (gavl_hw_ctx_can_export).
func (c *Context) CanExport(dst *Context) bool {
	return c.Caps.CanExport(dst.Caps.FourCC)
}

// CanTransfer reports whether a frame can move from src to dst by
// either path (gavl_hw_ctx_can_transfer): dst importing from src, or
// src exporting to dst.
func CanTransfer(src, dst *Context) bool {
	return dst.CanImport(src) || src.CanExport(dst)
}

// Transfer moves (or copies, for the RAM-copy fallback) a frame from
// src to dst, preferring import over export when both are possible,
// mirroring gavl_hw_ctx_transfer_video_frame's precedence. When
// neither context declares the other's FourCC compatible, the frame
// is copied through RAM: every Context here is RAM-backed in this
// rewrite (see DESIGN.md's HardwareContext note). Both paths take the
// output frame from dst's pool via GetWrite with a zero timeout and
// return its error when dst has no free frame or is an importer.
func Transfer(src, dst *Context, f *Frame) (*Frame, error) {
	if f == nil {
		return nil, gavlerr.New(gavlerr.KindProtocol, "hwbuf.Transfer", errNilFrame)
	}

	if dst.CanImport(src) || src.CanExport(dst) {
		out, err := dst.Pool.GetWrite(noopCtx, 0)
		if err != nil {
			return nil, err
		}
		out.FourCC = f.FourCC
		out.Data = append(out.Data[:0], f.Data...)
		return out, nil
	}

	// RAM-copy fallback: both ends are RAM-backed pools in this
	// rewrite, so only dst's GetWrite can fail here.
	out, err := dst.Pool.GetWrite(noopCtx, 0)
	if err != nil {
		return nil, err
	}
	out.FourCC = dst.Caps.FourCC
	out.Data = append(out.Data[:0], f.Data...)
	return out, nil
}
