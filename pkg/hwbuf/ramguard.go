package hwbuf

import "github.com/shirou/gopsutil/v3/mem"

// ramStatFunc matches mem.VirtualMemory's signature, adapted from
// pkg/system/system.go's ramFunc so Pool.GetWrite's grow phase can be
// exercised against a fake without touching /proc in tests.
type ramStatFunc func() (*mem.VirtualMemoryStat, error)

// defaultMaxRAMUsedPercent is the system-wide used-memory ceiling
// above which GetWrite refuses to grow the pool further and falls
// through to the timed wait for a freed slot instead, matching the
// original's preference for backpressure over an OOM kill when a
// consumer stalls.
const defaultMaxRAMUsedPercent = 95.0

// ramGuardAllowsGrowth reports whether system RAM headroom allows
// allocating one more frame. A probe error fails open: RAM pressure
// is a best-effort guard on top of maxFrames, not a hard dependency.
func (p *Pool) ramGuardAllowsGrowth() bool {
	if p.ramProbe == nil {
		return true
	}
	stat, err := p.ramProbe()
	if err != nil {
		return true
	}
	return stat.UsedPercent < p.maxRAMUsedPercent
}

// SetRAMGuard overrides the RAM probe and used-percent ceiling,
// primarily so tests can simulate memory pressure without touching
// the real host. Passing a nil probe disables the guard.
func (p *Pool) SetRAMGuard(probe ramStatFunc, maxUsedPercent float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ramProbe = probe
	p.maxRAMUsedPercent = maxUsedPercent
}
