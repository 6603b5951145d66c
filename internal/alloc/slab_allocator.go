package alloc

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/standardbeagle/fiosym/internal/debug"
	fioerrors "github.com/standardbeagle/fiosym/internal/errors"
)

var (
	// ErrNegativeLength is returned for allocation requests below zero bytes
	ErrNegativeLength = errors.New("negative length")

	// ErrObjectTooLarge is returned when a request exceeds MaxObjectSize
	ErrObjectTooLarge = errors.New("object too large")
)

// BufferAllocator reserves the variable-length backing buffers of objects.
// Every buffer it returns holds length+1 bytes with a NUL at index length.
// Small buffers come from tiered pools and can be handed back with Release.
type BufferAllocator struct {
	// Pools for different size categories (pointers to avoid copying sync.Pool)
	tiers []*poolTier

	// MaxObjectSize caps the content length of one request; 0 means no cap
	maxObjectSize int

	allocations    atomic.Int64
	reuses         atomic.Int64
	poolMisses     atomic.Int64
	releases       atomic.Int64
	bytesRequested atomic.Int64
}

// poolTier represents a single size tier in the allocator
type poolTier struct {
	capacity int
	pool     sync.Pool // holds *[]byte with cap == capacity
	hits     atomic.Int64
}

// SlabTierConfig defines the configuration for a single slab tier
type SlabTierConfig struct {
	Capacity int
	Weight   float64 // Relative weight for this tier (for auto-sizing)
}

// SymbolTierConfigs is sized for symbol names, which are mostly short identifiers.
// Capacities include the terminator byte.
var SymbolTierConfigs = []SlabTierConfig{
	{Capacity: 16, Weight: 0.45},  // short keys and identifiers
	{Capacity: 32, Weight: 0.30},  // qualified names
	{Capacity: 64, Weight: 0.15},  // formatted composite keys
	{Capacity: 128, Weight: 0.07}, // paths
	{Capacity: 256, Weight: 0.03}, // long generated names
}

// Options configures a BufferAllocator
type Options struct {
	Tiers         []SlabTierConfig
	MaxObjectSize int
}

// TierStats reports usage of one pool tier
type TierStats struct {
	Capacity int
	Hits     int64
}

// AllocatorStats tracks allocation statistics
type AllocatorStats struct {
	Allocations    int64 // buffers created with make
	Reuses         int64 // buffers served from a pool
	PoolHits       int64
	PoolMisses     int64
	Releases       int64 // buffers accepted back into a pool
	BytesRequested int64 // content bytes requested, terminators excluded
	Tiers          []TierStats
}

// NewBufferAllocator creates an allocator with the given tiers and size cap
func NewBufferAllocator(opts Options) *BufferAllocator {
	configs := opts.Tiers
	if len(configs) == 0 {
		configs = SymbolTierConfigs
	}

	ba := &BufferAllocator{
		tiers:         make([]*poolTier, len(configs)),
		maxObjectSize: opts.MaxObjectSize,
	}
	for i, config := range configs {
		ba.tiers[i] = &poolTier{capacity: config.Capacity}
	}
	return ba
}

// NewBufferAllocatorWithDefaults creates an allocator with SymbolTierConfigs and no size cap
func NewBufferAllocatorWithDefaults() *BufferAllocator {
	return NewBufferAllocator(Options{})
}

// MaxObjectSize returns the configured content size cap (0 = unlimited)
func (ba *BufferAllocator) MaxObjectSize() int {
	return ba.maxObjectSize
}

// Allocate reserves length+1 bytes for an object of the given kind, copies
// initial into the buffer when it is non-nil, and writes the terminator.
// The returned slice has len == length+1.
func (ba *BufferAllocator) Allocate(kind string, length int, initial []byte) ([]byte, error) {
	if length < 0 {
		return nil, fioerrors.NewAllocError(kind, length, ba.maxObjectSize, ErrNegativeLength)
	}
	if ba.maxObjectSize > 0 && length > ba.maxObjectSize {
		debug.LogAlloc("refusing %s of %d bytes (limit %d)\n", kind, length, ba.maxObjectSize)
		return nil, fioerrors.NewAllocError(kind, length, ba.maxObjectSize, ErrObjectTooLarge)
	}

	ba.bytesRequested.Add(int64(length))
	buf := ba.get(length + 1)
	if initial != nil {
		copy(buf, initial[:min(len(initial), length)])
	}
	buf[length] = 0
	return buf, nil
}

// Release hands a buffer obtained from Allocate back to its tier.
// Buffers whose capacity matches no tier are left to the garbage collector.
func (ba *BufferAllocator) Release(buf []byte) {
	if cap(buf) == 0 {
		return
	}

	capacity := cap(buf)
	for _, tier := range ba.tiers {
		if tier.capacity == capacity {
			full := buf[:capacity]
			clear(full)
			tier.pool.Put(&full)
			ba.releases.Add(1)
			return
		}
	}
}

// get returns a zeroed slice of length size
func (ba *BufferAllocator) get(size int) []byte {
	// Find the smallest tier that can accommodate the request
	for _, tier := range ba.tiers {
		if tier.capacity < size {
			continue
		}
		if p, ok := tier.pool.Get().(*[]byte); ok {
			tier.hits.Add(1)
			ba.reuses.Add(1)
			return (*p)[:size]
		}
		ba.poolMisses.Add(1)
		ba.allocations.Add(1)
		return make([]byte, size, tier.capacity)
	}

	// No tier large enough, allocate directly
	ba.poolMisses.Add(1)
	ba.allocations.Add(1)
	return make([]byte, size)
}

// Stats returns a snapshot of allocation statistics
func (ba *BufferAllocator) Stats() AllocatorStats {
	stats := AllocatorStats{
		Allocations:    ba.allocations.Load(),
		Reuses:         ba.reuses.Load(),
		PoolMisses:     ba.poolMisses.Load(),
		Releases:       ba.releases.Load(),
		BytesRequested: ba.bytesRequested.Load(),
		Tiers:          make([]TierStats, len(ba.tiers)),
	}
	for i, tier := range ba.tiers {
		hits := tier.hits.Load()
		stats.Tiers[i] = TierStats{Capacity: tier.capacity, Hits: hits}
		stats.PoolHits += hits
	}
	return stats
}

// ResetStats resets all statistics to zero
func (ba *BufferAllocator) ResetStats() {
	ba.allocations.Store(0)
	ba.reuses.Store(0)
	ba.poolMisses.Store(0)
	ba.releases.Store(0)
	ba.bytesRequested.Store(0)
	for _, tier := range ba.tiers {
		tier.hits.Store(0)
	}
}

// EstimateOptimalSize returns the tier capacity with the most pool hits,
// or the middle tier when there is no history yet
func (ba *BufferAllocator) EstimateOptimalSize() int {
	if len(ba.tiers) == 0 {
		return 0
	}

	best := ba.tiers[len(ba.tiers)/2]
	var bestHits int64
	for _, tier := range ba.tiers {
		if hits := tier.hits.Load(); hits > bestHits {
			bestHits = hits
			best = tier
		}
	}
	return best.capacity
}
