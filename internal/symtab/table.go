// Package symtab interns symbols: it keeps one canonical *fiobj.Symbol per
// fingerprint so that callers holding the same content share one object.
//
// Fingerprint collisions cannot change the result of an equality check, since
// symbols compare by fingerprint alone, but the table keeps an xxhash
// checksum of each canonical content and reports a mismatch as a
// CollisionError so that callers can log it.
package symtab

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/fiosym/internal/debug"
	fioerrors "github.com/standardbeagle/fiosym/internal/errors"
	"github.com/standardbeagle/fiosym/internal/fingerprint"
	"github.com/standardbeagle/fiosym/pkg/fiobj"
)

// DefaultShards is the shard count used when Options.Shards is zero
const DefaultShards = 16

// Options configures a Table
type Options struct {
	Shards int         // rounded up to a power of two
	Heap   *fiobj.Heap // nil selects fiobj.Default()
}

// Table is a concurrent, sharded symbol interning table
type Table struct {
	heap   *fiobj.Heap
	shards []*shard
	mask   uint64

	// keyOf derives the table key; always fingerprint.Sum64 outside tests
	keyOf func([]byte) uint64

	collisions atomic.Int64
}

type shard struct {
	mu      sync.RWMutex
	entries map[uint64]entry
}

type entry struct {
	sym      *fiobj.Symbol
	checksum uint64 // xxhash of the canonical content
}

// Stats summarizes table contents
type Stats struct {
	Symbols    int
	Shards     int
	Collisions int64
	MaxShard   int // entries in the fullest shard
}

// New creates an empty table
func New(opts Options) *Table {
	n := opts.Shards
	if n <= 0 {
		n = DefaultShards
	}
	n = nextPowerOfTwo(n)

	heap := opts.Heap
	if heap == nil {
		heap = fiobj.Default()
	}

	t := &Table{
		heap:   heap,
		shards: make([]*shard, n),
		mask:   uint64(n - 1),
		keyOf:  fingerprint.Sum64,
	}
	for i := range t.shards {
		t.shards[i] = &shard{entries: make(map[uint64]entry)}
	}
	debug.LogTable("created table with %d shards\n", n)
	return t
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func (t *Table) shardFor(key uint64) *shard {
	// The low bits of a SipHash output are as well mixed as the high bits
	return t.shards[key&t.mask]
}

// Intern returns the canonical symbol for b, creating it on first use.
//
// When b shares a fingerprint with different canonical content, the
// canonical symbol is still returned together with a *errors.CollisionError.
// Allocation failures return a nil symbol and the allocator's error.
func (t *Table) Intern(b []byte) (*fiobj.Symbol, error) {
	key := t.keyOf(b)
	sum := xxhash.Sum64(b)
	sh := t.shardFor(key)

	// Fast path: already interned
	sh.mu.RLock()
	e, ok := sh.entries[key]
	sh.mu.RUnlock()
	if ok {
		return e.sym, t.verify(key, e, sum, b)
	}

	sym, err := t.heap.NewSymbol(b)
	if err != nil {
		return nil, err
	}

	sh.mu.Lock()
	// Double-check after acquiring write lock
	if e, ok := sh.entries[key]; ok {
		sh.mu.Unlock()
		t.heap.Free(sym)
		return e.sym, t.verify(key, e, sum, b)
	}
	sh.entries[key] = entry{sym: sym, checksum: sum}
	sh.mu.Unlock()

	return sym, nil
}

// InternString is Intern for string content
func (t *Table) InternString(s string) (*fiobj.Symbol, error) {
	return t.Intern([]byte(s))
}

func (t *Table) verify(key uint64, e entry, sum uint64, b []byte) error {
	if e.checksum == sum && e.sym.Len() == len(b) {
		return nil
	}
	t.collisions.Add(1)
	debug.LogTable("fingerprint %016x collision: %q vs %q\n", key, e.sym.String(), b)
	return fioerrors.NewCollisionError(key, e.sym.Bytes(), bytes.Clone(b))
}

// Lookup returns the canonical symbol for a fingerprint
func (t *Table) Lookup(fp uint64) (*fiobj.Symbol, bool) {
	sh := t.shardFor(fp)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	e, ok := sh.entries[fp]
	return e.sym, ok
}

// Contains reports whether o is a symbol whose fingerprint is interned
func (t *Table) Contains(o fiobj.Object) bool {
	if fiobj.KindOf(o) != fiobj.KindSymbol {
		return false
	}
	_, ok := t.Lookup(fiobj.SymbolID(o))
	return ok
}

// Len returns the number of interned symbols
func (t *Table) Len() int {
	total := 0
	for _, sh := range t.shards {
		sh.mu.RLock()
		total += len(sh.entries)
		sh.mu.RUnlock()
	}
	return total
}

// Collisions returns how many collisions have been reported
func (t *Table) Collisions() int64 {
	return t.collisions.Load()
}

// Stats returns a snapshot of the table
func (t *Table) Stats() Stats {
	stats := Stats{Shards: len(t.shards), Collisions: t.collisions.Load()}
	for _, sh := range t.shards {
		sh.mu.RLock()
		n := len(sh.entries)
		sh.mu.RUnlock()
		stats.Symbols += n
		stats.MaxShard = max(stats.MaxShard, n)
	}
	return stats
}

// InternAll interns every input using at most workers goroutines.
// The result slice is index-aligned with inputs. Allocation failures and
// context cancellation abort the run; collisions do not, and are returned
// together as an *errors.MultiError once all inputs are interned.
func (t *Table) InternAll(ctx context.Context, inputs [][]byte, workers int) ([]*fiobj.Symbol, error) {
	if workers <= 0 {
		workers = 1
	}
	out := make([]*fiobj.Symbol, len(inputs))

	var (
		mu         sync.Mutex
		collisions []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, in := range inputs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sym, err := t.Intern(in)
			if sym == nil {
				return err
			}
			out[i] = sym
			if err != nil {
				mu.Lock()
				collisions = append(collisions, err)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return out, fioerrors.NewMultiError(collisions).ErrorOrNil()
}
