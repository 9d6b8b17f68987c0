// Package galloc implements the global block allocator: a mutex-guarded
// pool of free blocks shared by every process, handing out fresh mmap'd
// blocks on demand and recycling reclaimed ones.
package galloc

import (
	"sync"

	"github.com/nyxvm/corevm/block"
	"github.com/nyxvm/corevm/config"
)

// GlobalAllocator is the process-wide source and sink of Immix blocks.
// It is safe for concurrent use by every process's LocalAllocator and by
// the collector's reclamation phase. softCap bounds how many idle blocks
// it retains (config.GlobalAllocatorSoftCap); blocks returned beyond that
// are released back to the OS instead of pooled indefinitely.
type GlobalAllocator struct {
	mu      sync.Mutex
	pool    []*block.Block
	softCap int
}

// New returns an empty global allocator bounded by cfg.GlobalAllocatorSoftCap.
func New(cfg config.Config) *GlobalAllocator {
	return &GlobalAllocator{softCap: cfg.GlobalAllocatorSoftCap}
}

// RequestBlock returns a block from the free pool if one is available,
// otherwise mmaps a fresh one. The second return reports whether a new
// block had to be allocated, mirroring the original's
// `(block, allocated_new)` pair used for allocation statistics.
func (g *GlobalAllocator) RequestBlock() (*block.Block, bool, error) {
	g.mu.Lock()
	if n := len(g.pool); n > 0 {
		blk := g.pool[n-1]
		g.pool = g.pool[:n-1]
		g.mu.Unlock()
		return blk, false, nil
	}
	g.mu.Unlock()

	blk, err := block.New()
	if err != nil {
		return nil, false, err
	}
	return blk, true, nil
}

// AddBlock returns a single reclaimed, already-reset block to the pool, or
// releases it outright if the pool is already at its soft cap.
func (g *GlobalAllocator) AddBlock(blk *block.Block) {
	g.AddBlocks([]*block.Block{blk})
}

// AddBlocks returns a batch of reclaimed blocks to the pool in one lock
// acquisition, used by the collector's reclaim phase which typically frees
// many blocks per cycle. Once the pool holds softCap blocks, any further
// blocks in the batch are closed (munmap'd) instead of retained, so a
// process that frees a large burst of blocks doesn't let the global pool
// grow without bound.
func (g *GlobalAllocator) AddBlocks(blocks []*block.Block) {
	if len(blocks) == 0 {
		return
	}

	g.mu.Lock()
	var overflow []*block.Block
	if g.softCap > 0 {
		room := g.softCap - len(g.pool)
		if room < 0 {
			room = 0
		}
		if room < len(blocks) {
			overflow = blocks[room:]
			blocks = blocks[:room]
		}
	}
	g.pool = append(g.pool, blocks...)
	g.mu.Unlock()

	for _, blk := range overflow {
		blk.Close()
	}
}

// PooledBlocks returns the number of blocks currently sitting idle in the
// free pool, used for telemetry.
func (g *GlobalAllocator) PooledBlocks() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pool)
}
