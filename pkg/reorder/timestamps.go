package reorder

import "github.com/bplaum/gavl/pkg/packet"

// deriveTimestamps re-derives timestamps for the whole queue after an
// admission event, mirroring the original's update_timestamps
// dispatcher: an early-return check for "nothing left to resolve",
// then one of two stream-shape-specific passes.
func (b *Buffer) deriveTimestamps() {
	n := len(b.queue)
	if n < 1 {
		return
	}

	last := b.queue[n-1]
	if last.PTSDefined() && (!b.opts.CalcFrameDurations || last.DurationDefined()) {
		return
	}

	if b.binding.CompressionFlags&FlagHasBFrames != 0 {
		b.deriveBFrames()
	} else {
		b.deriveLowDelay()
	}
}

// durationFromDTS bootstraps a packet's duration from the DTS delta to
// its successor, decode-order spacing standing in for the
// presentation-order gap until real PTS values are known. This only
// runs while the buffer hasn't yet resolved the last packet's PTS:
// once a real PTS stream is flowing, durationFromPTSBFrames derives
// true presentation-order durations instead, and re-deriving from DTS
// here would stamp every packet with its decode-order spacing instead
// (original: update_timestamps_b_frames's "Duration from dts" guard,
// gavl/packetbuffer.c:449-462). Scans backward and stops at the first
// pair that isn't eligible, since every earlier pair was already
// resolved by a prior call.
func (b *Buffer) durationFromDTS() {
	n := len(b.queue)
	if n < 1 {
		return
	}
	last := b.queue[n-1]
	if last.PTSDefined() || last.DTS == packet.UndefinedTimestamp || last.DurationDefined() {
		return
	}

	for i := n - 2; i >= 0; i-- {
		cur, next := b.queue[i], b.queue[i+1]
		if cur.Duration <= 0 && cur.DTS != packet.UndefinedTimestamp && next.DTS != packet.UndefinedTimestamp {
			cur.Duration = next.DTS - cur.DTS
			b.lastDuration = cur.Duration
		} else {
			break
		}
	}
}

// deriveLowDelay implements the no-B-frames path: decode order equals
// presentation order, so PTS comes straight from DTS (or, lacking
// that, from the PES-level timestamp divided through the
// duration-divisor), and duration comes from the PTS delta to the
// following packet.
func (b *Buffer) deriveLowDelay() {
	for _, p := range b.queue {
		if p.PTSDefined() {
			continue
		}
		switch {
		case p.DTS != packet.UndefinedTimestamp:
			p.PTS = p.DTS
		case p.HasPESPTS && b.binding.DurationDivisor > 0:
			scaled := rescale(b.binding.PacketTimescale, b.binding.SampleTimescale, p.PESPTS)
			p.PTS = (scaled / b.binding.DurationDivisor) * b.binding.DurationDivisor
		}
	}

	n := len(b.queue)
	for i := 0; i+1 < n; i++ {
		cur, next := b.queue[i], b.queue[i+1]
		if cur.PTSDefined() && next.PTSDefined() && !cur.DurationDefined() {
			cur.Duration = next.PTS - cur.PTS
			b.lastDuration = cur.Duration
		}
	}
	if b.flushing && n > 0 {
		last := b.queue[n-1]
		if !last.DurationDefined() && b.lastDuration > 0 {
			last.Duration = b.lastDuration
		}
	}
}

// deriveBFrames implements the B-frame path. I/P frames ("anchors")
// are decoded ahead of the B frames they precede in display order, so
// an anchor's PTS is not known until the next anchor arrives (its DTS
// marks the point by which every intervening B frame has already been
// displayed). B frames themselves carry no such delay and keep
// PTS == DTS. Durations are then filled in by finding each packet's
// nearest successor by PTS — a brute-force scan is unavoidable because
// anchors are reordered relative to the B frames around them; on
// flush the same scan runs even for trailing packets with no true
// successor yet, falling back to the last known duration.
func (b *Buffer) deriveBFrames() {
	b.durationFromDTS()
	b.assignAnchorPTS()
	b.assignBFramePTS()
	b.durationFromPTSBFrames()
}

func (b *Buffer) assignAnchorPTS() {
	var anchors []int
	for i, p := range b.queue {
		if p.Type == packet.FrameTypeI || p.Type == packet.FrameTypeP {
			anchors = append(anchors, i)
		}
	}
	if len(anchors) == 0 {
		return
	}
	if !b.queue[anchors[0]].PTSDefined() {
		// Bootstrap: the very first anchor has nothing to wait on.
		b.queue[anchors[0]].PTS = b.queue[anchors[0]].DTS
	}
	for k := 0; k+1 < len(anchors); k++ {
		cur, next := b.queue[anchors[k]], b.queue[anchors[k+1]]
		if !cur.PTSDefined() {
			// The next anchor's DTS is the point by which every B frame
			// decoded between them has already been displayed.
			cur.PTS = next.DTS
		}
	}
	if b.flushing {
		last := b.queue[anchors[len(anchors)-1]]
		if !last.PTSDefined() {
			bCount := 0
			for i := anchors[len(anchors)-1] + 1; i < len(b.queue); i++ {
				if b.queue[i].Type == packet.FrameTypeB {
					bCount++
				}
			}
			last.PTS = last.DTS + int64(bCount)*maxInt64(b.lastDuration, 1)
		}
	}
}

func (b *Buffer) assignBFramePTS() {
	for _, p := range b.queue {
		if p.Type == packet.FrameTypeB && !p.PTSDefined() && p.DTS != packet.UndefinedTimestamp {
			p.PTS = p.DTS
		}
	}
}

// durationFromPTSBFrames finds, for every packet with a resolved PTS,
// the smallest PTS strictly greater than its own among the rest of the
// queue (get_next_by_pts in the original), and uses the gap as the
// duration. On flush, a packet with no such successor falls back to
// the last known duration.
//
// This re-derives every packet's duration on each call rather than
// skipping ones already resolved: early in a GOP, a packet's nearest
// pts-neighbour seen so far may not be its true nearest once later
// packets are admitted (a B frame's real successor can arrive after
// an anchor that looked like one), so a value assigned too early has
// to be free to improve before the queue is complete.
func (b *Buffer) durationFromPTSBFrames() {
	n := len(b.queue)
	for i := 0; i < n; i++ {
		p := b.queue[i]
		if !p.PTSDefined() {
			continue
		}
		best := packet.UndefinedTimestamp
		found := false
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			q := b.queue[j]
			if !q.PTSDefined() || q.PTS <= p.PTS {
				continue
			}
			if !found || q.PTS < best {
				best = q.PTS
				found = true
			}
		}
		if found {
			p.Duration = best - p.PTS
			b.lastDuration = p.Duration
		} else if b.flushing && b.lastDuration > 0 {
			p.Duration = b.lastDuration
		}
	}
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
