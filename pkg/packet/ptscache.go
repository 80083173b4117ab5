package packet

// PTSCache maps DTS values to resolved PTS values for streams whose
// decode order differs from presentation order (B-frame streams), so
// a later stage (e.g. a muxer writing an index) can look a packet's
// PTS back up by its DTS without re-running the reorder algorithm.
type PTSCache struct {
	byDTS map[int64]int64
	order []int64
	cap   int
}

// NewPTSCache returns a cache holding at most capacity entries,
// evicting the oldest (by insertion) once full.
func NewPTSCache(capacity int) *PTSCache {
	return &PTSCache{byDTS: make(map[int64]int64, capacity), cap: capacity}
}

// Put records that dts maps to pts.
func (c *PTSCache) Put(dts, pts int64) {
	if _, exists := c.byDTS[dts]; !exists {
		c.order = append(c.order, dts)
		if c.cap > 0 && len(c.order) > c.cap {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.byDTS, oldest)
		}
	}
	c.byDTS[dts] = pts
}

// Get looks up the PTS previously recorded for dts.
func (c *PTSCache) Get(dts int64) (int64, bool) {
	pts, ok := c.byDTS[dts]
	return pts, ok
}

// Clear empties the cache.
func (c *PTSCache) Clear() {
	c.byDTS = make(map[int64]int64, c.cap)
	c.order = nil
}
