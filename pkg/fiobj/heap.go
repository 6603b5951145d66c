package fiobj

import (
	"errors"
	"fmt"

	"github.com/standardbeagle/fiosym/internal/alloc"
	"github.com/standardbeagle/fiosym/internal/debug"
	"github.com/standardbeagle/fiosym/internal/fingerprint"
	"github.com/standardbeagle/fiosym/internal/format"
)

// ErrNoValue is returned, with a nil symbol, when a formatted construction
// fails its dry run. The result is never a usable symbol.
var ErrNoValue = errors.New("no value")

// Args is the argument list accepted by SymbolfArgs.
type Args = format.Args

// Allocator reserves object backing buffers. Allocate returns length+1
// bytes holding a copy of initial (when non-nil) and a trailing NUL.
type Allocator interface {
	Allocate(kind string, length int, initial []byte) ([]byte, error)
	Release(buf []byte)
}

// Heap builds objects on top of an Allocator.
type Heap struct {
	alloc Allocator
}

// NewHeap returns a heap backed by a. A nil allocator selects a pooled
// allocator with default tiers and no size cap.
func NewHeap(a Allocator) *Heap {
	if a == nil {
		a = alloc.NewBufferAllocatorWithDefaults()
	}
	return &Heap{alloc: a}
}

var defaultHeap = NewHeap(nil)

// Default returns the package-level heap used by the free functions.
func Default() *Heap {
	return defaultHeap
}

// NewSymbol copies b into a new symbol. Allocator errors are returned unchanged.
func (h *Heap) NewSymbol(b []byte) (*Symbol, error) {
	buf, err := h.alloc.Allocate(KindSymbol.String(), len(b), b)
	if err != nil {
		return nil, err
	}
	return newSymbol(buf, b), nil
}

// NewSymbolString is NewSymbol for string content.
func (h *Heap) NewSymbolString(s string) (*Symbol, error) {
	buf, err := h.alloc.Allocate(KindSymbol.String(), len(s), nil)
	if err != nil {
		return nil, err
	}
	copy(buf, s)
	return &Symbol{buf: buf, hash: fingerprint.SumString(s)}, nil
}

// SymbolfArgs builds a symbol from a template and an argument list.
//
// The template is measured first. A zero length yields the empty symbol; a
// negative length (malformed template) yields a nil symbol and an error
// wrapping ErrNoValue, without allocating. Otherwise a buffer of exactly the
// measured length is allocated and the template is rendered into it. The
// measured length is authoritative.
func (h *Heap) SymbolfArgs(template string, args Args) (*Symbol, error) {
	n, err := format.Measure(template, args.Clone())
	if n < 0 {
		debug.LogSymbol("dry run failed for %q: %v\n", template, err)
		return nil, fmt.Errorf("%w: %w", ErrNoValue, err)
	}

	if n == 0 {
		buf, err := h.alloc.Allocate(KindSymbol.String(), 0, nil)
		if err != nil {
			return nil, err
		}
		return &Symbol{buf: buf, hash: fingerprint.Empty}, nil
	}

	buf, err := h.alloc.Allocate(KindSymbol.String(), n, nil)
	if err != nil {
		return nil, err
	}
	if written := format.Write(buf[:n], template, args.Clone()); written != n {
		debug.LogSymbol("render of %q wrote %d of %d measured bytes\n", template, written, n)
	}
	return newSymbol(buf, buf[:n]), nil
}

// Symbolf is the variadic form of SymbolfArgs.
func (h *Heap) Symbolf(template string, args ...any) (*Symbol, error) {
	return h.SymbolfArgs(template, Args(args).Clone())
}

// Free ends the caller's ownership of a symbol and returns its buffer to
// the allocator. The symbol must not be used afterwards. Non-symbols, nil,
// and already freed symbols are ignored.
func (h *Heap) Free(o Object) {
	s, ok := o.(*Symbol)
	if !ok || s == nil {
		return
	}
	if !s.released.CompareAndSwap(false, true) {
		return
	}
	h.alloc.Release(s.buf)
}

// NewSymbol builds a symbol on the default heap.
func NewSymbol(b []byte) (*Symbol, error) {
	return defaultHeap.NewSymbol(b)
}

// NewSymbolString builds a symbol from a string on the default heap.
func NewSymbolString(s string) (*Symbol, error) {
	return defaultHeap.NewSymbolString(s)
}

// SymbolfArgs builds a formatted symbol on the default heap.
func SymbolfArgs(template string, args Args) (*Symbol, error) {
	return defaultHeap.SymbolfArgs(template, args)
}

// Symbolf builds a formatted symbol on the default heap.
func Symbolf(template string, args ...any) (*Symbol, error) {
	return defaultHeap.Symbolf(template, args...)
}

// Free releases a symbol built on the default heap.
func Free(o Object) {
	defaultHeap.Free(o)
}
