package packet

// Stats accumulates per-stream byte/packet counts and PTS/size/
// duration bounds, ported from the original C implementation's stream
// stats accumulation (gavl/utils.c), which the distilled spec names
// as a stream-descriptor key ("stream stats (byte/packet counts, pts
// range, size/duration bounds)") without specifying the update
// operation — see SPEC_FULL.md §3.
type Stats struct {
	PacketCount int64
	ByteCount   int64

	PTSStart int64
	PTSEnd   int64
	havePTS  bool

	SizeMin, SizeMax int64
	haveSize         bool

	DurationMin, DurationMax int64
	haveDuration             bool
}

// NewStats returns a zeroed Stats accumulator.
func NewStats() *Stats { return &Stats{} }

// Update folds p into the accumulator.
func (s *Stats) Update(p *Packet) {
	s.PacketCount++
	s.ByteCount += int64(p.Len())

	if p.PTSDefined() {
		if !s.havePTS {
			s.PTSStart = p.PTS
			s.PTSEnd = p.PTS
			s.havePTS = true
		} else {
			if p.PTS < s.PTSStart {
				s.PTSStart = p.PTS
			}
			if p.PTS > s.PTSEnd {
				s.PTSEnd = p.PTS
			}
		}
	}

	size := int64(p.Len())
	if !s.haveSize {
		s.SizeMin, s.SizeMax = size, size
		s.haveSize = true
	} else {
		if size < s.SizeMin {
			s.SizeMin = size
		}
		if size > s.SizeMax {
			s.SizeMax = size
		}
	}

	if p.DurationDefined() {
		if !s.haveDuration {
			s.DurationMin, s.DurationMax = p.Duration, p.Duration
			s.haveDuration = true
		} else {
			if p.Duration < s.DurationMin {
				s.DurationMin = p.Duration
			}
			if p.Duration > s.DurationMax {
				s.DurationMax = p.Duration
			}
		}
	}
}

// Reset clears the accumulator.
func (s *Stats) Reset() { *s = Stats{} }
