// Package stream implements the Source/Sink/Connector contracts of
// spec §4.5 — Component F: pull and push data-flow endpoints with
// format negotiation, converter insertion and lock/unlock hooks, the
// Go shape of gortsplib's track/server-stream pairing in the teacher
// (`pkg/video/gortsplib/serverstream.go`) generalised from RTSP
// specifically to the spec's generic frame-source contract.
package stream

import (
	"context"
	"errors"

	"github.com/bplaum/gavl/pkg/hwbuf"
	"github.com/bplaum/gavl/pkg/packet"
)

// Status is the result of a pull-mode Read or a push-mode Put.
type Status uint8

// Recognised statuses.
const (
	// StatusOK reports a packet/frame was produced or accepted.
	StatusOK Status = iota
	// StatusAgain reports no data is available yet without blocking
	// (spec §4.5's "AGAIN" status, used by non-blocking sources).
	StatusAgain
	// StatusEOF reports the source/sink is permanently exhausted.
	StatusEOF
)

// Flags advertise what a Source or Sink supports.
type Flags uint32

// Recognised flags.
const (
	// FlagFramesHW indicates frames may carry a hwbuf.Frame rather
	// than owned bytes.
	FlagFramesHW Flags = 1 << iota
	// FlagSamplesSkippable indicates the audio Skip/SkipTo operations
	// are supported.
	FlagSamplesSkippable
)

// ErrAgain is returned by a pull-mode Source.Read when no packet is
// ready yet; callers should retry rather than treat it as EOF.
var ErrAgain = errors.New("stream: no packet available yet")

// Lock/unlock callbacks let a connector coordinate access to shared
// state (e.g. a hardware context) around a batch of reads, per spec
// §4.5's "lock/unlock callbacks" requirement.
type (
	LockFunc   func()
	UnlockFunc func()
)

// Source is a pull-mode packet producer. Passing a nil dst to Read
// requests the source return its own internally buffered packet
// rather than copying into the caller's, per spec §4.5 "a null dst
// returns the internal buffer".
type Source interface {
	// Read produces the next packet. If dst is nil, the returned
	// packet is owned by the Source until the next Read call.
	Read(ctx context.Context, dst *packet.Packet) (*packet.Packet, Status, error)
	Flags() Flags
	// Lock acquires whatever coordination the Source needs around a
	// batch of Read calls and returns the matching unlock callback.
	Lock() UnlockFunc
}

// Sink is a push-mode packet consumer.
type Sink interface {
	Put(ctx context.Context, p *packet.Packet) (Status, error)
	Flags() Flags
}

// Converter transparently adapts a Source's output to a format a
// downstream Sink accepts, inserted automatically by Connect when
// advertised flags disagree (spec §4.5 "format negotiation/
// conversion insertion").
type Converter interface {
	Source
	// Bind wires the converter in front of src; subsequent Read calls
	// pull from src and transform.
	Bind(src Source)
}

// NegotiateFunc decides whether a Converter is required between src
// and dst, and builds one if so.
type NegotiateFunc func(srcFlags, dstFlags Flags) (Converter, bool)

// Connect wires src to dst, inserting a converter via negotiate when
// the two disagree on FlagFramesHW (the only format axis this
// RAM-backed rewrite distinguishes; see DESIGN.md's HardwareContext
// note). Returns the effective Source dst should pull from.
func Connect(src Source, dstFlags Flags, negotiate NegotiateFunc) Source {
	if negotiate == nil {
		return src
	}
	conv, needed := negotiate(src.Flags(), dstFlags)
	if !needed {
		return src
	}
	conv.Bind(src)
	return conv
}

// AudioSkipper is implemented by audio sources advertising
// FlagSamplesSkippable.
type AudioSkipper interface {
	// Skip discards n samples from the front of the stream.
	Skip(ctx context.Context, n int64) error
	// SkipTo discards samples until the running sample position
	// reaches pos.
	SkipTo(ctx context.Context, pos int64) error
}

// HWImporter is implemented by a Source whose packets may carry a
// hardware frame reference that a Sink needs imported into its own
// context before use (spec §4.5 / §4.6 boundary).
type HWImporter interface {
	Import(ctx *hwbuf.Context, p *packet.Packet) (*packet.Packet, error)
}
