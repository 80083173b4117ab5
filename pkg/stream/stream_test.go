package stream

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bplaum/gavl/pkg/packet"
)

func TestQueueSourceReadOrderAndEOF(t *testing.T) {
	q := NewQueueSource(4, 0)
	p0 := packet.New()
	p0.PTS = 0
	p1 := packet.New()
	p1.PTS = 10
	q.Push(p0)
	q.Push(p1)
	q.Close()

	got, status, err := q.Read(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, status)
	assert.Equal(t, int64(0), got.PTS)

	got, status, err = q.Read(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, status)
	assert.Equal(t, int64(10), got.PTS)

	_, status, err = q.Read(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, StatusEOF, status)
}

func TestQueueSinkDrain(t *testing.T) {
	s := NewQueueSink(0)
	p := packet.New()
	p.PTS = 5
	status, err := s.Put(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, status)

	out := s.Drain()
	require.Len(t, out, 1)
	assert.Equal(t, int64(5), out[0].PTS)
	assert.Empty(t, s.Drain())
}

type passthroughConverter struct {
	src Source
}

func (c *passthroughConverter) Bind(src Source) { c.src = src }
func (c *passthroughConverter) Flags() Flags    { return FlagFramesHW }
func (c *passthroughConverter) Lock() UnlockFunc { return func() {} }
func (c *passthroughConverter) Read(ctx context.Context, dst *packet.Packet) (*packet.Packet, Status, error) {
	return c.src.Read(ctx, dst)
}

func TestConnectInsertsConverterOnFlagMismatch(t *testing.T) {
	q := NewQueueSource(1, 0)
	inserted := false
	negotiate := func(srcFlags, dstFlags Flags) (Converter, bool) {
		if srcFlags == dstFlags {
			return nil, false
		}
		inserted = true
		return &passthroughConverter{}, true
	}

	effective := Connect(q, FlagFramesHW, negotiate)
	assert.True(t, inserted)
	assert.NotEqual(t, Source(q), effective)
}

func TestConnectSkipsConverterWhenFlagsMatch(t *testing.T) {
	q := NewQueueSource(1, FlagFramesHW)
	negotiate := func(srcFlags, dstFlags Flags) (Converter, bool) {
		return nil, srcFlags != dstFlags
	}

	effective := Connect(q, FlagFramesHW, negotiate)
	assert.Equal(t, Source(q), effective)
}
