package rtpsource

import (
	"context"
	"testing"

	"github.com/pion/rtp"
	psdp "github.com/pion/sdp/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bplaum/gavl/pkg/stream"
)

func TestTrackFromSDP(t *testing.T) {
	raw := []byte("v=0\r\n" +
		"o=- 0 0 IN IP4 127.0.0.1\r\n" +
		"s=-\r\n" +
		"t=0 0\r\n" +
		"m=video 0 RTP/AVP 96\r\n" +
		"a=rtpmap:96 H264/90000\r\n")

	var sd psdp.SessionDescription
	require.NoError(t, sd.Unmarshal(raw))

	track, err := TrackFromSDP(&sd, "video")
	require.NoError(t, err)
	assert.Equal(t, uint32(90000), track.ClockRate)
	assert.Equal(t, uint8(96), track.PayloadType)
}

func TestSourceReadDerivesPTSFromRTPTimestamp(t *testing.T) {
	ch := make(chan []byte, 2)
	src := New(TrackInfo{ClockRate: 90000}, ch)

	first := rtp.Packet{
		Header:  rtp.Header{Version: 2, Timestamp: 1000, SequenceNumber: 1},
		Payload: []byte{0x01, 0x02},
	}
	second := rtp.Packet{
		Header:  rtp.Header{Version: 2, Timestamp: 1000 + 3000, SequenceNumber: 2},
		Payload: []byte{0x03},
	}
	b1, err := first.Marshal()
	require.NoError(t, err)
	b2, err := second.Marshal()
	require.NoError(t, err)
	ch <- b1
	ch <- b2
	close(ch)

	p1, status, err := src.Read(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, stream.StatusOK, status)
	assert.Equal(t, int64(0), p1.PTS)

	p2, _, err := src.Read(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), p2.PTS)

	_, status, err = src.Read(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, stream.StatusEOF, status)
}
