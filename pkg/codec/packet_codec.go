package codec

import (
	"fmt"
	"io"

	"github.com/bplaum/gavl/pkg/packet"
)

// PacketMarker is the single byte preceding every packet on the wire
// (spec §6.1). A zero byte in its place means "seek to the next
// 8-byte alignment and try again" — the padding gavl's writer inserts
// so chunk payloads stay 8-byte aligned even mid-GAVFPKTS.
const PacketMarker = 0x01

// EncodePacket writes one packet frame: the marker byte, the stream
// id and payload length as varints, then the raw payload bytes.
func EncodePacket(w io.Writer, p *packet.Packet) error {
	if _, err := w.Write([]byte{PacketMarker}); err != nil {
		return fmt.Errorf("codec: write packet marker: %w", err)
	}
	if _, err := WriteInt32V(w, p.StreamID); err != nil {
		return fmt.Errorf("codec: write packet stream id: %w", err)
	}
	if _, err := WriteUint64V(w, uint64(len(p.Data))); err != nil {
		return fmt.Errorf("codec: write packet length: %w", err)
	}
	if _, err := w.Write(p.Data); err != nil {
		return fmt.Errorf("codec: write packet payload: %w", err)
	}
	return nil
}

// alignedReader is the subset of *ioh.Handle's behaviour DecodePacket
// needs to skip realignment padding: byte-at-a-time Read plus the
// caller's own AlignRead, kept minimal to avoid an import cycle
// between pkg/codec and pkg/ioh.
type alignedReader interface {
	io.Reader
	AlignRead() error
}

// DecodePacket reads one packet frame into dst, handling the
// realignment-padding byte per spec §6.1: "a zero byte before the
// marker means seek to next 8-byte alignment and try again". Returns
// io.EOF when r is exhausted before a marker is found.
func DecodePacket(r alignedReader, dst *packet.Packet) error {
	marker := make([]byte, 1)
	for {
		if _, err := io.ReadFull(r, marker); err != nil {
			return err
		}
		if marker[0] == PacketMarker {
			break
		}
		if marker[0] == 0 {
			if err := r.AlignRead(); err != nil {
				return fmt.Errorf("codec: realign after zero pad byte: %w", err)
			}
			continue
		}
		return fmt.Errorf("codec: unexpected byte 0x%02x where packet marker or pad was expected", marker[0])
	}

	streamID, _, err := ReadInt32V(r)
	if err != nil {
		return fmt.Errorf("codec: read packet stream id: %w", err)
	}
	length, _, err := ReadUint64V(r)
	if err != nil {
		return fmt.Errorf("codec: read packet length: %w", err)
	}

	if dst.Data == nil || cap(dst.Data) < int(length) {
		dst.Data = make([]byte, length)
	} else {
		dst.Data = dst.Data[:length]
	}
	if _, err := io.ReadFull(r, dst.Data); err != nil {
		return fmt.Errorf("codec: read packet payload: %w", err)
	}
	dst.StreamID = streamID
	return nil
}
