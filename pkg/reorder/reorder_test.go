package reorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bplaum/gavl/pkg/packet"
)

func mustRead(t *testing.T, b *Buffer) *packet.Packet {
	t.Helper()
	p, ok := b.Read()
	require.True(t, ok, "expected a packet to be ready")
	return p
}

func TestLowDelayFlushProducesSequentialTimestamps(t *testing.T) {
	b := New(nil, "video0", Options{CalcFrameDurations: true})
	b.Bind(StreamBinding{})

	for _, dts := range []int64{0, 10, 20} {
		p := packet.New()
		p.DTS = dts
		p.Flags |= packet.FlagKeyframe
		b.Put(p)
	}
	b.Flush()

	var pts, dur []int64
	for {
		p, ok := b.Read()
		if !ok {
			break
		}
		pts = append(pts, p.PTS)
		dur = append(dur, p.Duration)
	}

	assert.Equal(t, []int64{0, 10, 20}, pts)
	assert.Equal(t, []int64{10, 10, 10}, dur)
}

func TestBFrameReorderResolvesAnchorsOnFlush(t *testing.T) {
	b := New(nil, "video0", Options{CalcFrameDurations: true})
	b.Bind(StreamBinding{CompressionFlags: FlagHasBFrames})

	types := []packet.FrameType{packet.FrameTypeI, packet.FrameTypeP, packet.FrameTypeB, packet.FrameTypeB, packet.FrameTypeP}
	for i, typ := range types {
		p := packet.New()
		p.DTS = int64(i * 10)
		p.Type = typ
		if typ == packet.FrameTypeI {
			p.Flags |= packet.FlagKeyframe
		}
		b.Put(p)
	}
	b.Flush()

	var pts []int64
	for {
		p, ok := b.Read()
		if !ok {
			break
		}
		pts = append(pts, p.PTS)
	}

	require.Len(t, pts, 5)
	// I is never delayed: displayed at its own decode time.
	assert.Equal(t, int64(0), pts[0])
	// B frames carry no reorder delay of their own: PTS == DTS.
	assert.Equal(t, int64(20), pts[2])
	assert.Equal(t, int64(30), pts[3])
	// The first P anchors to the DTS of the following anchor (P#2),
	// since every B frame between them displays first.
	assert.Equal(t, int64(40), pts[1])
}

// TestBFrameReorderWithExplicitPTSUsesRealDurations covers the §8
// scenario 5 shape: I,P,B,B,P with DTS 0..4 and PTS already known for
// every packet (a constant-frame-rate GOP: I at 0, the two B frames
// at 10 and 20, the anchor P frames at 30 and 40). Durations must
// come from the true PTS gaps, not from the decode-order DTS spacing
// the buffer would otherwise bootstrap from a still-undefined PTS
// stream.
func TestBFrameReorderWithExplicitPTSUsesRealDurations(t *testing.T) {
	b := New(nil, "video0", Options{CalcFrameDurations: true})
	b.Bind(StreamBinding{CompressionFlags: FlagHasBFrames})

	types := []packet.FrameType{packet.FrameTypeI, packet.FrameTypeP, packet.FrameTypeB, packet.FrameTypeB, packet.FrameTypeP}
	explicitPTS := []int64{0, 30, 10, 20, 40}
	for i, typ := range types {
		p := packet.New()
		p.DTS = int64(i)
		p.PTS = explicitPTS[i]
		p.Type = typ
		if typ == packet.FrameTypeI {
			p.Flags |= packet.FlagKeyframe
		}
		b.Put(p)
	}
	b.Flush()

	var pts, dur []int64
	for {
		p, ok := b.Read()
		if !ok {
			break
		}
		pts = append(pts, p.PTS)
		dur = append(dur, p.Duration)
	}

	require.Len(t, pts, 5)
	assert.Equal(t, explicitPTS, pts)
	assert.Equal(t, []int64{10, 10, 10, 10, 10}, dur)
}

func TestFieldPictureMerge(t *testing.T) {
	b := New(nil, "video0", Options{})
	b.Bind(StreamBinding{})

	first := packet.New()
	first.DTS = 0
	first.Duration = 5
	first.Flags |= packet.FlagKeyframe | packet.FlagFieldPicture
	b.Put(first)

	second := packet.New()
	second.DTS = 5
	second.Duration = 5
	second.Flags |= packet.FlagFieldPicture
	b.Put(second)

	assert.Equal(t, 1, b.Pending())
	p := mustRead(t, b)
	assert.Equal(t, int64(10), p.Duration)
}

func TestPreKeyframeDiscard(t *testing.T) {
	b := New(nil, "video0", Options{})
	b.Bind(StreamBinding{})

	p := packet.New()
	p.DTS = 0
	b.Put(p) // No keyframe flag: discarded.
	assert.Equal(t, 0, b.Pending())

	key := packet.New()
	key.DTS = 10
	key.Flags |= packet.FlagKeyframe
	b.Put(key)
	assert.Equal(t, 1, b.Pending())
}

func TestOpenGOPLeadingBFrameDrop(t *testing.T) {
	b := New(nil, "video0", Options{})
	b.Bind(StreamBinding{CompressionFlags: FlagHasBFrames})

	lead := packet.New()
	lead.DTS = 0
	lead.Type = packet.FrameTypeB
	lead.Flags |= packet.FlagKeyframe // keyframe gate only cares about this flag
	b.Put(lead)
	assert.Equal(t, 0, b.Pending(), "leading B frame before two anchors must be dropped")
}

func TestSkipFlaggedPacketsAreDiscarded(t *testing.T) {
	b := New(nil, "video0", Options{})
	b.Bind(StreamBinding{})

	p := packet.New()
	p.Flags |= packet.FlagSkip | packet.FlagKeyframe
	b.Put(p)
	assert.Equal(t, 0, b.Pending())
}

func TestMarkLastHoldsBackFinalPacketUntilFlush(t *testing.T) {
	b := New(nil, "video0", Options{MarkLast: true})
	b.Bind(StreamBinding{})

	for _, dts := range []int64{0, 10} {
		p := packet.New()
		p.DTS = dts
		p.Flags |= packet.FlagKeyframe
		b.Put(p)
	}

	_, ok := b.Read()
	require.True(t, ok)
	_, ok = b.Read()
	assert.False(t, ok, "final packet is held back pending flush")

	b.Flush()
	last := mustRead(t, b)
	assert.True(t, last.HasLast())
}

func TestClearResetsState(t *testing.T) {
	b := New(nil, "video0", Options{})
	b.Bind(StreamBinding{})

	p := packet.New()
	p.DTS = 0
	p.Flags |= packet.FlagKeyframe
	b.Put(p)
	require.Equal(t, 1, b.Pending())

	b.Clear()
	assert.Equal(t, 0, b.Pending())
	assert.Equal(t, undefined, b.outPTS)
}
