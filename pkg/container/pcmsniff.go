package container

import (
	"fmt"
	"io"

	"github.com/go-audio/wav"
)

// SniffRawPCM reads a WAV header from r and derives the implicit
// metadata (bitrate, endian, codec name) a raw-PCM stream needs,
// folding the result into s via InjectImplicitMetadata. Grounded on
// the ausocean-av example's wav handling; uses go-audio/wav's decoder
// (rather than that example's hand-rolled header writer) since here
// the direction is read-and-sniff, not encode.
func SniffRawPCM(s *StreamInfo, r io.Reader) error {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		return fmt.Errorf("container: SniffRawPCM requires a seekable reader")
	}
	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return fmt.Errorf("container: not a valid WAV stream")
	}
	dec.ReadInfo()
	if dec.SampleRate == 0 || dec.NumChans == 0 || dec.BitDepth == 0 {
		return fmt.Errorf("container: incomplete WAV format chunk")
	}

	bitrate := int64(dec.SampleRate) * int64(dec.NumChans) * int64(dec.BitDepth)
	codecName := fmt.Sprintf("PCM %d-bit", dec.BitDepth)
	// WAV's "fmt " chunk is always little-endian (RIFF byte order);
	// gavl's raw-PCM endian tag exists for the platforms that don't
	// carry this convention (AIFF, raw dumps), so this is pinned here
	// rather than derived.
	InjectImplicitMetadata(s, bitrate, "audio/x-wav", codecName, false)
	return nil
}
