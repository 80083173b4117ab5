package container

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bplaum/gavl/pkg/ioh"
	"github.com/bplaum/gavl/pkg/packet"
)

func TestPacketWriterReaderRoundTrip(t *testing.T) {
	mb := ioh.NewMemoryBuffer()

	pw, err := BeginPacketChunk(mb.Handle)
	require.NoError(t, err)
	p0 := packet.New()
	p0.StreamID = 0
	p0.Data = []byte("frame-a")
	p1 := packet.New()
	p1.StreamID = 1
	p1.Data = []byte("frame-b")
	require.NoError(t, pw.Write(p0))
	require.NoError(t, pw.Write(p1))
	require.NoError(t, pw.Commit())

	r := ioh.NewMemoryHandle(mb.Bytes())
	hdr, err := ioh.ReadChunkHeader(r)
	require.NoError(t, err)
	require.Equal(t, ioh.TagPackets, hdr.Tag)
	payload, err := ioh.ReadChunkPayload(r, hdr)
	require.NoError(t, err)

	pr := NewPacketReader(payload)
	var dst packet.Packet
	got, err := pr.Next(&dst)
	require.NoError(t, err)
	assert.Equal(t, int32(0), got.StreamID)
	assert.Equal(t, "frame-a", string(got.Data))

	got, err = pr.Next(&dst)
	require.NoError(t, err)
	assert.Equal(t, int32(1), got.StreamID)
	assert.Equal(t, "frame-b", string(got.Data))

	_, err = pr.Next(&dst)
	assert.ErrorIs(t, err, io.EOF)
}
