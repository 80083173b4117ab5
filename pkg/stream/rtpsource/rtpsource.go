// Package rtpsource adapts an RTP-fed network source into a
// stream.Source, wiring github.com/pion/rtp for packet parsing and
// github.com/pion/sdp/v3 for the session description that identifies
// each track's clock rate and payload type. Grounded on the teacher's
// `pkg/video/gortsplib` track/session-description handling
// (`track_h264.go`, `pkg/rtph264/decoder.go`), generalised from
// RTSP-specific track types to the spec's generic packet Source.
package rtpsource

import (
	"context"
	"fmt"

	"github.com/pion/rtp"
	psdp "github.com/pion/sdp/v3"

	"github.com/bplaum/gavl/pkg/packet"
	"github.com/bplaum/gavl/pkg/stream"
)

// TrackInfo is the subset of an SDP media description this source
// needs to interpret RTP timestamps.
type TrackInfo struct {
	ClockRate uint32
	PayloadType uint8
	Keyframe func(payload []byte) bool
}

// TrackFromSDP extracts clock rate and payload type for the first
// media description matching mediaType (e.g. "video"), the same
// rtpmap-attribute lookup the teacher's track constructors perform
// against a *psdp.MediaDescription.
func TrackFromSDP(sd *psdp.SessionDescription, mediaType string) (TrackInfo, error) {
	for _, md := range sd.MediaDescriptions {
		if md.MediaName.Media != mediaType {
			continue
		}
		if len(md.MediaName.Formats) == 0 {
			continue
		}
		payloadType, err := parsePayloadType(md.MediaName.Formats[0])
		if err != nil {
			return TrackInfo{}, err
		}
		rtpmap, ok := md.Attribute("rtpmap")
		if !ok {
			return TrackInfo{}, fmt.Errorf("rtpsource: rtpmap attribute missing for %s track", mediaType)
		}
		clockRate, err := parseClockRate(rtpmap)
		if err != nil {
			return TrackInfo{}, err
		}
		return TrackInfo{ClockRate: clockRate, PayloadType: payloadType}, nil
	}
	return TrackInfo{}, fmt.Errorf("rtpsource: no %s media description found", mediaType)
}

// Source turns a feed of raw RTP packets into a stream.Source
// emitting packet.Packet values, with PTS taken as the RTP timestamp's
// offset from the first packet's, in the track's clock-rate units
// without rescaling (spec's PESPTS-
// style fallback path for network sources that supply no other
// timing).
type Source struct {
	track TrackInfo
	raw   <-chan []byte

	haveBase bool
	baseRTP  uint32
}

// New returns a Source reading raw RTP packet bytes from raw.
func New(track TrackInfo, raw <-chan []byte) *Source {
	return &Source{track: track, raw: raw}
}

// Read implements stream.Source.
func (s *Source) Read(ctx context.Context, dst *packet.Packet) (*packet.Packet, stream.Status, error) {
	var raw []byte
	select {
	case b, ok := <-s.raw:
		if !ok {
			return nil, stream.StatusEOF, nil
		}
		raw = b
	case <-ctx.Done():
		return nil, stream.StatusAgain, ctx.Err()
	}

	var pkt rtp.Packet
	if err := pkt.Unmarshal(raw); err != nil {
		return nil, stream.StatusAgain, fmt.Errorf("rtpsource: unmarshal RTP packet: %w", err)
	}

	if !s.haveBase {
		s.baseRTP = pkt.Timestamp
		s.haveBase = true
	}

	p := dst
	if p == nil {
		p = packet.New()
	}
	p.Data = append(p.Data[:0], pkt.Payload...)
	p.PTS = rescaleRTPTimestamp(pkt.Timestamp, s.baseRTP, s.track.ClockRate)
	p.DTS = p.PTS
	if s.track.Keyframe != nil && s.track.Keyframe(pkt.Payload) {
		p.Flags |= packet.FlagKeyframe
	}
	if pkt.Marker {
		// The marker bit closes out a frame's fragments; duration isn't
		// known from a single RTP packet, so leave it for pkg/reorder.
		p.Duration = packet.UndefinedTimestamp
	}
	return p, stream.StatusOK, nil
}

// Flags implements stream.Source: RTP sources never carry hardware
// frame references.
func (s *Source) Flags() stream.Flags { return 0 }

// Lock implements stream.Source; the RTP feed channel needs no
// external coordination.
func (s *Source) Lock() stream.UnlockFunc { return func() {} }

func rescaleRTPTimestamp(ts, base uint32, clockRate uint32) int64 {
	if clockRate == 0 {
		return int64(ts - base)
	}
	// gavl's internal timescale is nanoseconds-free integer ticks at
	// the stream's own rate, so PTS is reported in clockRate units
	// directly; callers rescale against the container timescale the
	// way pkg/codec's Value-dictionary stream descriptors record it.
	return int64(int32(ts - base))
}

func parsePayloadType(format string) (uint8, error) {
	var pt uint8
	if _, err := fmt.Sscanf(format, "%d", &pt); err != nil {
		return 0, fmt.Errorf("rtpsource: invalid payload type %q: %w", format, err)
	}
	return pt, nil
}

func parseClockRate(rtpmap string) (uint32, error) {
	var payloadType int
	var name string
	var rate uint32
	if _, err := fmt.Sscanf(rtpmap, "%d %s", &payloadType, &name); err != nil {
		return 0, fmt.Errorf("rtpsource: invalid rtpmap %q: %w", rtpmap, err)
	}
	for i := 0; i < len(name); i++ {
		if name[i] == '/' {
			if _, err := fmt.Sscanf(name[i+1:], "%d", &rate); err != nil {
				return 0, fmt.Errorf("rtpsource: invalid clock rate in rtpmap %q: %w", rtpmap, err)
			}
			return rate, nil
		}
	}
	return 0, fmt.Errorf("rtpsource: rtpmap %q has no clock rate", rtpmap)
}
