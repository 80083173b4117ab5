// Package reorder implements the packet reorder/retiming buffer of
// spec §4.4 — Component G, the hardest algorithmic piece of the
// pipeline. The admission rules and the two timestamp-inference
// algorithms are ported line-for-line in spirit from the original C
// implementation (gavl/packetbuffer.c), not reinvented: see DESIGN.md.
package reorder

import (
	"github.com/bplaum/gavl/pkg/log"
	"github.com/bplaum/gavl/pkg/packet"
)

// CompressionFlags mirror the subset of a stream's compression info
// that the reorder buffer reads at first use (spec §4.4: "Each buffer
// is bound to exactly one stream descriptor from which it reads
// compression flags, timescale, and sample-timescale at first use").
type CompressionFlags uint32

// Recognised compression flags.
const (
	FlagHasBFrames CompressionFlags = 1 << iota
	FlagLowDelay
)

// StreamBinding is the subset of a stream descriptor the buffer binds
// to on its first packet.
type StreamBinding struct {
	CompressionFlags CompressionFlags
	PacketTimescale  int32
	SampleTimescale  int32
	DurationDivisor  int64 // 0 disables the PES-PTS duration-divisor path.
}

// Options configure buffer-wide behaviour, independent of the bound
// stream.
type Options struct {
	// MarkLast requests that the final packet emitted before EOF be
	// tagged packet.FlagLastInStream.
	MarkLast bool
	// CalcFrameDurations requests that Read withhold a packet until
	// its Duration is resolved, not just its PTS.
	CalcFrameDurations bool
	// HighWaterMark is the queue length above which Buffer logs a
	// debug warning (spec §4.4 "a debug mode logs when the queue
	// exceeds a configurable high-water mark"). Zero disables it.
	HighWaterMark int
}

const undefined = packet.UndefinedTimestamp

// Buffer is the packet reorder/retiming buffer. It owns a queue of
// in-flight packets and a free-pool, and exposes sink (Put) and
// source (Read) operations. Not safe for concurrent use, per the
// single-threaded-cooperative model of spec §5.
type Buffer struct {
	logger *log.Logger
	srcID  string

	bound   bool
	binding StreamBinding
	opts    Options

	queue []*packet.Packet
	pool  []*packet.Packet

	outPTS       int64
	lastDuration int64

	keyframesSeen int
	ipFramesSeen  int
	maxPTS        int64

	flushing bool
	lastTagged bool
}

// New returns a Buffer with the given options. Bind must be called
// (directly, or implicitly via the first Put) before packets flow.
func New(logger *log.Logger, streamID string, opts Options) *Buffer {
	return &Buffer{
		logger: logger,
		srcID:  streamID,
		opts:   opts,
		outPTS: undefined,
		maxPTS: undefined,
	}
}

// Bind binds the buffer to a stream's compression flags/timescales.
// Calling Bind more than once is a no-op: spec §4.4 binds "at first
// use" only.
func (b *Buffer) Bind(binding StreamBinding) {
	if b.bound {
		return
	}
	b.binding = binding
	b.bound = true
}

// Get returns a packet from the free-pool built up by recycled
// packets, or a freshly allocated one if the pool is empty. Callers
// that write directly into a packet before calling Put (rather than
// handing the buffer one they already own) should obtain it here, the
// same free-list pattern the original's buf_t queue uses to avoid
// reallocating a gavl_packet_t per frame.
func (b *Buffer) Get() *packet.Packet {
	if n := len(b.pool); n > 0 {
		p := b.pool[n-1]
		b.pool = b.pool[:n-1]
		return p
	}
	return packet.New()
}

func (b *Buffer) recycle(p *packet.Packet) {
	p.Reset()
	b.pool = append(b.pool, p)
}

// Put admits p into the buffer (spec §4.4 steps 1-4), then re-derives
// timestamps for the whole queue. p is always either queued or
// recycled; the buffer never fails (spec §7: "The packet buffer never
// fails: it degrades timestamp quality").
func (b *Buffer) Put(p *packet.Packet) {
	if p.HasSkip() {
		b.recycle(p)
		return
	}

	hasBFrames := b.binding.CompressionFlags&FlagHasBFrames != 0
	lowDelay := b.binding.CompressionFlags&FlagLowDelay != 0

	// Pre-keyframe discard for P-frame streams, with low-delay PTS
	// bootstrap even for discarded packets.
	if b.keyframesSeen == 0 && !p.HasKeyframe() {
		if lowDelay {
			b.advanceLowDelayPTSFromPESOnDiscard(p)
		}
		b.recycle(p)
		return
	}
	if p.HasKeyframe() {
		b.keyframesSeen++
	}

	// Field-picture merge: combine with the queue tail if both are
	// field pictures.
	if p.HasFieldPicture() && len(b.queue) > 0 {
		tail := b.queue[len(b.queue)-1]
		if tail.HasFieldPicture() {
			mergeFields(tail, p)
			b.recycle(p)
			b.deriveTimestamps()
			return
		}
	}

	if hasBFrames {
		b.inferFrameType(p)

		// Open-GOP leading B-frame drop: before the second I/P frame.
		if p.Type == packet.FrameTypeB && b.ipFramesSeen < 2 {
			b.recycle(p)
			return
		}
		if p.Type != packet.FrameTypeB {
			b.ipFramesSeen++
		}
	}

	b.queue = append(b.queue, p)
	b.checkHighWater()
	b.deriveTimestamps()
}

func mergeFields(first, second *packet.Packet) {
	first.Data = append(first.Data, second.Data...)
	if second.Duration != undefined && first.Duration != undefined {
		first.Duration += second.Duration
	}
	first.Flags &^= packet.FlagFieldPicture
}

func (b *Buffer) inferFrameType(p *packet.Packet) {
	if p.Type != packet.FrameTypeUnknown {
		if p.PTSDefined() && p.PTS > b.maxPTS {
			b.maxPTS = p.PTS
		}
		return
	}
	if p.HasKeyframe() {
		p.Type = packet.FrameTypeI
		if p.PTSDefined() {
			b.maxPTS = p.PTS
		}
		return
	}
	if p.PTSDefined() && (b.maxPTS == undefined || p.PTS > b.maxPTS) {
		p.Type = packet.FrameTypeP
		if p.PTSDefined() {
			b.maxPTS = p.PTS
		}
		return
	}
	p.Type = packet.FrameTypeB
}

func (b *Buffer) advanceLowDelayPTSFromPESOnDiscard(p *packet.Packet) {
	if !p.HasPESPTS {
		return
	}
	if b.outPTS == undefined {
		b.outPTS = rescale(b.binding.PacketTimescale, b.binding.SampleTimescale, p.PESPTS)
	}
	b.outPTS += b.lastDuration
}

func rescale(from, to int32, v int64) int64 {
	if from == 0 || to == 0 || from == to {
		return v
	}
	return v * int64(to) / int64(from)
}

func (b *Buffer) checkHighWater() {
	if b.opts.HighWaterMark > 0 && len(b.queue) > b.opts.HighWaterMark && b.logger != nil {
		b.logger.Debug().
			Src("reorder").
			StreamID(b.srcID).
			Msgf("queue depth %d exceeds high-water mark %d", len(b.queue), b.opts.HighWaterMark)
	}
}

// Flush forces resolution of every still-pending timestamp (spec §4.4
// "on explicit flush, fill any last-packet durations by nearest
// neighbour lookup"), then lets Read drain the queue. After Flush, a
// subsequent Read sequence exhausts exactly the accepted-minus-
// discarded packet count, per spec §8's testable property.
func (b *Buffer) Flush() {
	b.flushing = true
	b.deriveTimestamps()
}

// Clear returns every queued packet to the free-pool and resets the
// running PTS (spec §4.4).
func (b *Buffer) Clear() {
	for _, p := range b.queue {
		b.recycle(p)
	}
	b.queue = nil
	b.outPTS = undefined
	b.maxPTS = undefined
	b.lastDuration = 0
	b.keyframesSeen = 0
	b.ipFramesSeen = 0
	b.flushing = false
	b.lastTagged = false
}

// SetOutPTS seeds the running output PTS after a seek.
func (b *Buffer) SetOutPTS(pts int64) {
	b.outPTS = pts
}

// Read dequeues the next packet whose timestamps are sufficiently
// resolved (PTS always; Duration too, if CalcFrameDurations was
// requested), or reports that none is ready yet. If MarkLast is set,
// the very last packet is held back until Flush so it can be tagged
// packet.FlagLastInStream.
func (b *Buffer) Read() (*packet.Packet, bool) {
	if len(b.queue) == 0 {
		return nil, false
	}

	holdback := 0
	if b.opts.MarkLast && !b.flushing {
		holdback = 1
	}
	if len(b.queue) <= holdback {
		return nil, false
	}

	p := b.queue[0]
	if !p.PTSDefined() {
		return nil, false
	}
	if b.opts.CalcFrameDurations && !p.DurationDefined() {
		return nil, false
	}

	b.queue = b.queue[1:]

	if b.opts.MarkLast && b.flushing && len(b.queue) == 0 && !b.lastTagged {
		p.Flags |= packet.FlagLastInStream
		b.lastTagged = true
	}
	return p, true
}

// Pending reports how many packets are currently queued.
func (b *Buffer) Pending() int { return len(b.queue) }
