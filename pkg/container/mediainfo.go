// Package container implements the container runtime of spec §4.7 —
// Component H: a media-info dictionary of tracks, the open-mode
// dispatch (disk/pipe/socket), the in-band control-message stream,
// and the on-disk media-info cache. Grounded on the teacher's
// `pkg/video/rtsp` session state machine (`rtsp_session.go`,
// `path_manager.go`) for the connect/handshake/re-init shape, and on
// `gavl/trackinfo.c` + `gavl/gavf/gavf.c` in `original_source/` for
// the exact field names and protocol sequence.
package container

import (
	"fmt"

	"github.com/bplaum/gavl/pkg/gavlerr"
	"github.com/bplaum/gavl/pkg/packet"
	"github.com/bplaum/gavl/pkg/value"
)

// Recognised media classes (trackinfo.c's gavl_track_get_media_class
// closed vocabulary; spec §3 names the key, not every legal value).
const (
	MediaClassVideo      = "video"
	MediaClassAudio      = "audio"
	MediaClassText       = "text"
	MediaClassOverlay    = "overlay"
	MediaClassMessage    = "msg"
	MediaClassLocation   = "location"
	MediaClassMovie      = "item.movie"
	MediaClassAudioDisc  = "item.audio"
	MediaClassPhoto      = "item.photo"
	MediaClassSong       = "item.song"
	MediaClassDirectory  = "container.directory"
	MediaClassPlaylist   = "container.playlist"
	MediaClassMultitrack = "container.multitrack"
)

var validMediaClasses = map[string]bool{
	MediaClassVideo: true, MediaClassAudio: true, MediaClassText: true,
	MediaClassOverlay: true, MediaClassMessage: true, MediaClassLocation: true,
	MediaClassMovie: true, MediaClassAudioDisc: true, MediaClassPhoto: true,
	MediaClassSong: true, MediaClassDirectory: true, MediaClassPlaylist: true,
	MediaClassMultitrack: true,
}

// ValidateMediaClass rejects a media-class string outside the fixed
// closed vocabulary (trackinfo.c's gavl_track_get_media_class),
// instead of silently accepting a typo as an opaque label.
func ValidateMediaClass(class string) error {
	if !validMediaClasses[class] {
		return gavlerr.New(gavlerr.KindProtocol, "container.ValidateMediaClass",
			fmt.Errorf("unrecognised media class %q", class))
	}
	return nil
}

// Dictionary keys used throughout track/stream metadata, mirroring
// trackinfo.c's GAVL_META_* string constants.
const (
	MetaClass       = "class"
	MetaLabel       = "label"
	MetaNumStreams  = "numstreams"
	MetaBitrate     = "bitrate"
	MetaMimetype    = "mimetype"
	MetaCodecName   = "codecname"
	MetaEndian      = "endian"
	MetaStats       = "stats"
	MetaStreamClass = "streamclass"
)

// Recognised stream classes within a track (§4.7 "audio, video, text,
// overlay, and message streams").
const (
	StreamClassAudio   = "audio"
	StreamClassVideo   = "video"
	StreamClassText    = "text"
	StreamClassOverlay = "overlay"
	StreamClassMessage = "message"
)

// StreamIDBase is the reserved first stream id; stream discovery
// assigns increasing ids from here (§4.7 "stream ids begin at a
// reserved constant and increase").
const StreamIDBase = 0

// ControlStreamID is the reserved id of the in-band control-message
// stream (§6.1 "id = -2").
const ControlStreamID = -2

// StreamInfo describes one elementary stream within a Track.
type StreamInfo struct {
	ID    int
	Class string
	Meta  *value.Dictionary
	Stats *packet.Stats
}

// SyncStats folds the accumulator's current counters into the
// stream's stats sub-dictionary (§3's "stream stats" key), so a
// snapshot written into the media-info dictionary reflects packets
// seen so far.
func (s *StreamInfo) SyncStats() {
	if s.Stats == nil {
		return
	}
	if s.Meta == nil {
		s.Meta = value.NewDictionary()
	}
	stats := value.NewDictionary()
	stats.Set("packets", value.Long(s.Stats.PacketCount))
	stats.Set("bytes", value.Long(s.Stats.ByteCount))
	stats.Set("pts_start", value.Long(s.Stats.PTSStart))
	stats.Set("pts_end", value.Long(s.Stats.PTSEnd))
	stats.Set("size_min", value.Long(s.Stats.SizeMin))
	stats.Set("size_max", value.Long(s.Stats.SizeMax))
	stats.Set("duration_min", value.Long(s.Stats.DurationMin))
	stats.Set("duration_max", value.Long(s.Stats.DurationMax))
	s.Meta.Set(MetaStats, value.FromDict(stats))
}

// Track is one selectable program within a MediaInfo: an ordered list
// of streams plus track-level metadata.
type Track struct {
	Meta    *value.Dictionary
	Streams []StreamInfo
}

// Class returns the track's media class, or "" if unset.
func (t *Track) Class() string {
	if t.Meta == nil {
		return ""
	}
	if v, ok := t.Meta.Get(MetaClass); ok {
		s, _ := v.String()
		return s
	}
	return ""
}

// DiscoverStreams enumerates the track's streams in declaration
// order, assigning ids from StreamIDBase upward, mirroring §4.7's
// "stream discovery within a track".
func (t *Track) DiscoverStreams() []StreamInfo {
	out := make([]StreamInfo, len(t.Streams))
	for i, s := range t.Streams {
		s.ID = StreamIDBase + i
		out[i] = s
	}
	t.Streams = out
	return out
}

// MediaInfo is the top-level media-info dictionary: an array of
// tracks (§4.7 "a media-info dictionary (array of tracks)").
type MediaInfo struct {
	Tracks []*Track
}

// NewMediaInfo returns an empty MediaInfo.
func NewMediaInfo() *MediaInfo { return &MediaInfo{} }

// AddTrack validates class and appends a new Track, returning it for
// further population.
func (m *MediaInfo) AddTrack(class string) (*Track, error) {
	if err := ValidateMediaClass(class); err != nil {
		return nil, err
	}
	meta := value.NewDictionary()
	meta.Set(MetaClass, value.String(class))
	t := &Track{Meta: meta}
	m.Tracks = append(m.Tracks, t)
	return t, nil
}

// ToValue serialises the media-info dictionary into a value.Value
// suitable for encoding via pkg/codec (the GAVFPHDR chunk payload).
func (m *MediaInfo) ToValue() value.Value {
	arr := value.NewArray()
	for _, t := range m.Tracks {
		td := t.Meta.Copy()
		streams := value.NewArray()
		for _, s := range t.Streams {
			sd := value.NewDictionary()
			if s.Meta != nil {
				sd = s.Meta.Copy()
			}
			sd.Set(MetaStreamClass, value.String(s.Class))
			streams.Push(value.FromDict(sd))
		}
		td.Set("streams", value.FromArray(streams))
		arr.Push(value.FromDict(td))
	}
	return value.FromArray(arr)
}

// MediaInfoFromValue is the inverse of ToValue.
func MediaInfoFromValue(v value.Value) (*MediaInfo, error) {
	arr, ok := v.Arr()
	if !ok {
		return nil, gavlerr.New(gavlerr.KindFormat, "container.MediaInfoFromValue",
			fmt.Errorf("expected an array of tracks"))
	}
	m := &MediaInfo{}
	for i := 0; i < arr.Len(); i++ {
		td, ok := arr.Get(i).Dict()
		if !ok {
			return nil, gavlerr.New(gavlerr.KindFormat, "container.MediaInfoFromValue",
				fmt.Errorf("track %d is not a dictionary", i))
		}
		class := ""
		if cv, ok := td.Get(MetaClass); ok {
			class, _ = cv.String()
		}
		if err := ValidateMediaClass(class); err != nil {
			return nil, err
		}
		t := &Track{Meta: td.Copy()}
		if sv, ok := td.Get("streams"); ok {
			if sarr, ok := sv.Arr(); ok {
				for j := 0; j < sarr.Len(); j++ {
					sd, ok := sarr.Get(j).Dict()
					if !ok {
						continue
					}
					class := ""
					if cv, ok := sd.Get(MetaStreamClass); ok {
						class, _ = cv.String()
					}
					t.Streams = append(t.Streams, StreamInfo{ID: j, Class: class, Meta: sd.Copy()})
				}
			}
		}
		t.Meta.Delete("streams")
		m.Tracks = append(m.Tracks, t)
	}
	return m, nil
}

// InjectImplicitMetadata fills bitrate/mime type/codec name/endian
// tag derived from a stream's compression info, so readers can render
// labels without decoder-specific tables (§4.7's "implicit metadata").
func InjectImplicitMetadata(s *StreamInfo, bitrate int64, mimetype, codecName string, bigEndian bool) {
	if s.Meta == nil {
		s.Meta = value.NewDictionary()
	}
	if bitrate > 0 {
		s.Meta.Set(MetaBitrate, value.Long(bitrate))
	}
	if mimetype != "" {
		s.Meta.Set(MetaMimetype, value.String(mimetype))
	}
	if codecName != "" {
		s.Meta.Set(MetaCodecName, value.String(codecName))
	}
	endian := "little"
	if bigEndian {
		endian = "big"
	}
	s.Meta.Set(MetaEndian, value.String(endian))
}
