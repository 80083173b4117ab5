// Package packet implements the packet model of spec §3/§4.4's
// Component D: an owned-buffer-or-borrowed-hw-frame struct with
// timing metadata, plus stream-level stats accumulation and a PTS
// cache.
package packet

// FrameType classifies a compressed packet for GOP-aware streams.
type FrameType uint8

// Recognised frame types.
const (
	FrameTypeUnknown FrameType = iota
	FrameTypeI
	FrameTypeP
	FrameTypeB
)

// Flags are the boolean packet attributes of spec §3.
type Flags uint32

// Recognised packet flags.
const (
	FlagKeyframe Flags = 1 << iota
	FlagFieldPicture
	FlagLastInStream
	FlagSkip
	FlagHasHeader
)

// Rect is an integer source rectangle, used for overlay packets.
type Rect struct {
	X, Y, W, H int32
}

// Point is an integer destination offset, used for overlay packets.
type Point struct {
	X, Y int32
}

// HWFrameRef is a borrowed (non-owning) reference to a hardware frame
// held by a pkg/hwbuf pool. When non-nil on a Packet, the packet's
// Data field is not the owner of media bytes; the union is tagged by
// this field's presence, per spec §9 "Packet-frame ownership".
type HWFrameRef interface {
	// Release returns the referenced frame to its pool, decrementing
	// its refcount. Every call drops one reference.
	Release()
}

// Packet is an owned byte buffer plus timing/classification metadata,
// or (when HWFrame is set) a borrowed hardware frame reference plus
// the same metadata.
type Packet struct {
	Data []byte

	PTS      int64
	DTS      int64
	Duration int64 // UndefinedTimestamp means "not yet known".

	StreamID int32
	Flags    Flags
	Type     FrameType

	SrcRect  *Rect
	DstPoint *Point

	// PESPTS is the lower-resolution upstream timestamp used as a
	// fallback when packet-level PTS is unavailable (spec Glossary).
	PESPTS    int64
	HasPESPTS bool

	HWFrame HWFrameRef
}

// UndefinedTimestamp marks a PTS/DTS/Duration field as not yet known.
const UndefinedTimestamp = int64(-1 << 62)

// New returns a zero Packet with all timestamps undefined.
func New() *Packet {
	return &Packet{
		PTS:      UndefinedTimestamp,
		DTS:      UndefinedTimestamp,
		Duration: UndefinedTimestamp,
	}
}

// HasKeyframe reports the keyframe flag.
func (p *Packet) HasKeyframe() bool { return p.Flags&FlagKeyframe != 0 }

// HasFieldPicture reports the field-picture flag.
func (p *Packet) HasFieldPicture() bool { return p.Flags&FlagFieldPicture != 0 }

// HasSkip reports the skip flag.
func (p *Packet) HasSkip() bool { return p.Flags&FlagSkip != 0 }

// HasLast reports the last-in-stream flag.
func (p *Packet) HasLast() bool { return p.Flags&FlagLastInStream != 0 }

// PTSDefined reports whether PTS has been resolved.
func (p *Packet) PTSDefined() bool { return p.PTS != UndefinedTimestamp }

// DurationDefined reports whether Duration has been resolved.
func (p *Packet) DurationDefined() bool { return p.Duration != UndefinedTimestamp }

// Reset clears p for reuse from a free-pool, releasing any held
// hardware frame reference first so the correct side of the tagged
// union is always dropped (spec §9).
func (p *Packet) Reset() {
	if p.HWFrame != nil {
		p.HWFrame.Release()
		p.HWFrame = nil
	}
	p.Data = p.Data[:0]
	p.PTS = UndefinedTimestamp
	p.DTS = UndefinedTimestamp
	p.Duration = UndefinedTimestamp
	p.StreamID = 0
	p.Flags = 0
	p.Type = FrameTypeUnknown
	p.SrcRect = nil
	p.DstPoint = nil
	p.PESPTS = 0
	p.HasPESPTS = false
}

// Len returns the packet payload length: the owned buffer's length,
// or 0 for a hardware-frame-backed packet (callers read frame size
// from the hw frame itself).
func (p *Packet) Len() int {
	if p.HWFrame != nil {
		return 0
	}
	return len(p.Data)
}
