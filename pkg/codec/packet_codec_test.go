package codec

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bplaum/gavl/pkg/packet"
)

type noopAligner struct {
	*bytes.Reader
}

func (noopAligner) AlignRead() error { return nil }

func TestEncodeDecodePacketRoundTrip(t *testing.T) {
	p := packet.New()
	p.StreamID = 3
	p.Data = []byte("hello packet")

	var buf bytes.Buffer
	require.NoError(t, EncodePacket(&buf, p))

	var dst packet.Packet
	r := noopAligner{bytes.NewReader(buf.Bytes())}
	got, err := decodePacketFromAligner(r, &dst)
	require.NoError(t, err)
	assert.Equal(t, int32(3), got.StreamID)
	assert.Equal(t, "hello packet", string(got.Data))
}

func decodePacketFromAligner(r alignedReader, dst *packet.Packet) (*packet.Packet, error) {
	if err := DecodePacket(r, dst); err != nil {
		return nil, err
	}
	return dst, nil
}

func TestDecodePacketReturnsEOFOnEmptyInput(t *testing.T) {
	var dst packet.Packet
	r := noopAligner{bytes.NewReader(nil)}
	err := DecodePacket(r, &dst)
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecodePacketSkipsZeroPadByte(t *testing.T) {
	p := packet.New()
	p.StreamID = 1
	p.Data = []byte("x")

	var buf bytes.Buffer
	buf.WriteByte(0)
	require.NoError(t, EncodePacket(&buf, p))

	var dst packet.Packet
	r := noopAligner{bytes.NewReader(buf.Bytes())}
	err := DecodePacket(r, &dst)
	require.NoError(t, err)
	assert.Equal(t, "x", string(dst.Data))
}
