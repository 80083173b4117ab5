package value

// SampleFormat identifies the on-the-wire layout of audio samples.
type SampleFormat uint8

// Recognised sample formats.
const (
	SampleFormatU8 SampleFormat = iota
	SampleFormatS16
	SampleFormatS32
	SampleFormatFloat
	SampleFormatDouble
)

// AudioFormat describes a PCM audio stream. HWContext is a weak,
// non-owning back-reference to the hardware context that produced
// frames in this format, populated only when frames carry zero-copy
// hardware payloads; it is never serialized.
type AudioFormat struct {
	SampleRate int32
	Channels   int32
	SampleFmt  SampleFormat
	Interleave bool

	HWContext uintptr // weak reference, see pkg/hwbuf
}

// Timescale is the sample-accurate timescale derivable from an
// AudioFormat, per the invariant in spec §3.
func (f AudioFormat) Timescale() int32 { return f.SampleRate }

// PixelFormat identifies the on-the-wire layout of video frames.
type PixelFormat uint8

// Recognised pixel formats (uncompressed planar/packed YUV/RGB).
const (
	PixelFormatYUV420P PixelFormat = iota
	PixelFormatYUV422P
	PixelFormatYUV444P
	PixelFormatRGB24
	PixelFormatBGR24
	PixelFormatRGBA32
	PixelFormatBGRA32
)

// InterlaceMode identifies field ordering for a video format.
type InterlaceMode uint8

// Recognised interlace modes.
const (
	InterlaceNone InterlaceMode = iota
	InterlaceTopFirst
	InterlaceBottomFirst
	InterlaceMixed
)

// ChromaPlacement identifies chroma sample siting for subsampled formats.
type ChromaPlacement uint8

// Recognised chroma placements.
const (
	ChromaPlacementDefault ChromaPlacement = iota
	ChromaPlacementMPEG2
	ChromaPlacementTopLeft
)

// VideoFormat describes a raw video stream.
type VideoFormat struct {
	Width, Height int32
	PixelFmt      PixelFormat

	FramerateNum, FramerateDen int32
	Interlace                  InterlaceMode
	Chroma                     ChromaPlacement

	FrameSize int32 // 0 means variable (compressed).

	HWContext uintptr // weak reference, see pkg/hwbuf
}

// Timescale is the sample-accurate timescale derivable from a
// VideoFormat, per the invariant in spec §3: for video it is the
// format's own frame timescale (the framerate numerator, i.e. ticks
// per second), not the framerate itself.
func (f VideoFormat) Timescale() int32 {
	if f.FramerateDen == 0 {
		return f.FramerateNum
	}
	return f.FramerateNum
}

// FrameDuration returns the nominal duration of one frame in
// Timescale units, i.e. FramerateDen (ticks per frame at FramerateNum
// ticks per second).
func (f VideoFormat) FrameDuration() int64 {
	if f.FramerateNum == 0 {
		return 0
	}
	return int64(f.FramerateDen)
}
