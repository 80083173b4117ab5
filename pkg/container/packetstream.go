package container

import (
	"errors"
	"fmt"
	"io"

	"github.com/bplaum/gavl/pkg/codec"
	"github.com/bplaum/gavl/pkg/gavlerr"
	"github.com/bplaum/gavl/pkg/ioh"
	"github.com/bplaum/gavl/pkg/packet"
)

// PacketReader demuxes the GAVFPKTS chunk stream (spec §6.1) into
// individual packets, tagged by stream id, recovering from a
// corrupted framing byte by resyncing to the next GAVFSYNC tag
// (SPEC_FULL.md §3, ported from gavf.c's bufsync behaviour) instead
// of failing the whole stream outright.
type PacketReader struct {
	h *ioh.Handle
}

// NewPacketReader wraps h for packet-frame demuxing.
func NewPacketReader(h *ioh.Handle) *PacketReader {
	return &PacketReader{h: h}
}

// Next reads the next packet frame into dst. It does not consume
// GAVFPKTS/GAVFSYNC/GAVFFOOT/GAVFPEND chunk headers. On any decode
// error other than EOF it scans forward to the next GAVFSYNC tag,
// leaves the handle positioned at that tag, and returns a protocol
// error.
func (pr *PacketReader) Next(dst *packet.Packet) (*packet.Packet, error) {
	err := codec.DecodePacket(pr.h, dst)
	switch {
	case err == nil:
		return dst, nil
	case errors.Is(err, io.EOF):
		return nil, io.EOF
	default:
		if resyncErr := ioh.ResyncToTag(pr.h, ioh.TagSync); resyncErr != nil {
			return nil, gavlerr.New(gavlerr.KindProtocol, "container.PacketReader.Next",
				fmt.Errorf("lost sync and failed to resync: %w (original: %v)", resyncErr, err))
		}
		return nil, gavlerr.New(gavlerr.KindProtocol, "container.PacketReader.Next",
			fmt.Errorf("lost sync, resynced to %s: %w", ioh.TagSync, err))
	}
}

// PacketWriter muxes packets into a GAVFPKTS chunk.
type PacketWriter struct {
	cw *ioh.ChunkWriter
}

// BeginPacketChunk starts a new GAVFPKTS chunk on h.
func BeginPacketChunk(h *ioh.Handle) (*PacketWriter, error) {
	cw, err := ioh.BeginChunk(h, ioh.TagPackets)
	if err != nil {
		return nil, err
	}
	return &PacketWriter{cw: cw}, nil
}

// Write encodes p as the next packet frame in the chunk.
func (pw *PacketWriter) Write(p *packet.Packet) error {
	return codec.EncodePacket(pw.cw, p)
}

// Commit finalises the GAVFPKTS chunk.
func (pw *PacketWriter) Commit() error {
	return pw.cw.Commit()
}
