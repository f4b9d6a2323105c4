package spikegemm

import "sync"

// Barrier is a reusable counting barrier synchronizing the warps of one
// threadblock. Wait blocks until all parties arrive, then releases every
// waiter and resets for the next phase. It is the analogue of the
// block-wide synchronization between the load and compute phases of the
// pipelined mainloop.
type Barrier struct {
	mu         sync.Mutex
	cond       *sync.Cond
	parties    int
	count      int
	generation int
}

// NewBarrier creates a barrier for the given number of parties.
func NewBarrier(parties int) *Barrier {
	assertShape(parties > 0, "barrier needs at least one party, got %d", parties)
	b := &Barrier{parties: parties}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Wait blocks until all parties have called Wait for the current phase.
func (b *Barrier) Wait() {
	b.mu.Lock()
	defer b.mu.Unlock()

	gen := b.generation
	b.count++
	if b.count == b.parties {
		b.count = 0
		b.generation++
		b.cond.Broadcast()
		return
	}
	for gen == b.generation {
		b.cond.Wait()
	}
}

// Parties returns the number of participants the barrier was created for.
func (b *Barrier) Parties() int { return b.parties }
