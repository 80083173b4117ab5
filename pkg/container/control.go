package container

import (
	"fmt"

	"github.com/bplaum/gavl/pkg/codec"
	"github.com/bplaum/gavl/pkg/gavlerr"
	"github.com/bplaum/gavl/pkg/value"
)

// Control-message namespaces (spec §6.3). Consumer-to-producer
// messages use the SRC namespace; producer-to-consumer messages use
// GAVF. Within each namespace, the message id selects which of the
// recognised pairs it is.
const (
	NamespaceSrc  = "SRC"
	NamespaceGAVF = "GAVF"
)

// SRC namespace message ids (consumer to producer).
const (
	SrcSelectTrack int32 = iota
	SrcStart
	SrcSeek
	SrcPause
	SrcResume
)

// GAVF namespace message ids (producer to consumer).
const (
	GAVFMediaInfo int32 = iota
	GAVFSelectTrack
	GAVFGotEOF
	GAVFStart
)

// NewSelectTrack builds a SRC.SELECT_TRACK(track_index:int) request.
func NewSelectTrack(trackIndex int32) codec.Message {
	return codec.Message{Namespace: NamespaceSrc, ID: SrcSelectTrack, Args: []value.Value{
		value.Int(trackIndex),
	}}
}

// NewStart builds a SRC.START() request.
func NewStart() codec.Message {
	return codec.Message{Namespace: NamespaceSrc, ID: SrcStart}
}

// NewSeek builds a SRC.SEEK(time:long, scale:int) request.
func NewSeek(time int64, scale int32) codec.Message {
	return codec.Message{Namespace: NamespaceSrc, ID: SrcSeek, Args: []value.Value{
		value.Long(time), value.Int(scale),
	}}
}

// NewPause builds a SRC.PAUSE() request.
func NewPause() codec.Message {
	return codec.Message{Namespace: NamespaceSrc, ID: SrcPause}
}

// NewResume builds a SRC.RESUME() request.
func NewResume() codec.Message {
	return codec.Message{Namespace: NamespaceSrc, ID: SrcResume}
}

// NewMediaInfoMessage builds a GAVF.MEDIA_INFO(info:dict) response.
func NewMediaInfoMessage(info *MediaInfo) codec.Message {
	return codec.Message{Namespace: NamespaceGAVF, ID: GAVFMediaInfo, Args: []value.Value{
		info.ToValue(),
	}}
}

// NewSelectTrackResponse builds the GAVF.SELECT_TRACK(track:dict)
// response emitted once the writer has re-initialised its streams
// for the newly selected track (§4.7).
func NewSelectTrackResponse(t *Track) codec.Message {
	return codec.Message{Namespace: NamespaceGAVF, ID: GAVFSelectTrack, Args: []value.Value{
		value.FromDict(t.Meta.Copy()),
	}}
}

// NewGotEOF builds a GAVF.GOT_EOF() notification.
func NewGotEOF() codec.Message {
	return codec.Message{Namespace: NamespaceGAVF, ID: GAVFGotEOF}
}

// NewGAVFStart builds a GAVF.START(track:dict) notification.
func NewGAVFStart(t *Track) codec.Message {
	return codec.Message{Namespace: NamespaceGAVF, ID: GAVFStart, Args: []value.Value{
		value.FromDict(t.Meta.Copy()),
	}}
}

// DecodeSelectTrackIndex extracts the track index from a
// SRC.SELECT_TRACK message.
func DecodeSelectTrackIndex(m codec.Message) (int32, error) {
	if m.Namespace != NamespaceSrc || m.ID != SrcSelectTrack || len(m.Args) < 1 {
		return 0, gavlerr.New(gavlerr.KindProtocol, "container.DecodeSelectTrackIndex",
			fmt.Errorf("not a SELECT_TRACK message"))
	}
	idx, ok := m.Args[0].Int()
	if !ok {
		return 0, gavlerr.New(gavlerr.KindProtocol, "container.DecodeSelectTrackIndex",
			fmt.Errorf("argument 0 is not an int"))
	}
	return idx, nil
}
