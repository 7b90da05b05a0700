package closure

import "sync"

// SlotPool hands out wasm table indices, reusing released slots before
// growing into fresh ones. Released indices are reused LIFO.
type SlotPool struct {
	mu   sync.Mutex
	free []uint32
	next uint32
}

// NewSlotPool returns a pool whose first fresh index is start. Table
// indices below start are assumed to belong to the host's own
// functions and are never handed out.
func NewSlotPool(start uint32) *SlotPool {
	return &SlotPool{
		free: make([]uint32, 0, 16),
		next: start,
	}
}

// Get returns a free table index, growing the index space if no
// released slot is available.
func (p *SlotPool) Get() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n := len(p.free); n > 0 {
		idx := p.free[n-1]
		p.free = p.free[:n-1]
		return idx
	}
	idx := p.next
	p.next++
	return idx
}

// Put returns a previously handed-out index to the pool.
func (p *SlotPool) Put(idx uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.free = append(p.free, idx)
}

// Free reports how many released indices are awaiting reuse.
func (p *SlotPool) Free() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

// High returns the lowest index the pool has never handed out.
func (p *SlotPool) High() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.next
}
