package fiobj

import (
	"sync/atomic"

	"github.com/standardbeagle/fiosym/internal/fingerprint"
)

// Symbol is an immutable byte sequence identified by its fingerprint.
//
// Two symbols are equal when their fingerprints are equal. The contents are
// never compared, so two distinct contents that collide on the 64-bit
// fingerprint are treated as the same symbol. That risk is accepted in
// exchange for O(1) equality independent of length.
//
// The zero Symbol behaves as the empty symbol.
type Symbol struct {
	buf      []byte // content followed by a NUL terminator
	hash     uint64 // fingerprint.Sum64 of content, fixed at construction
	released atomic.Bool
}

func (*Symbol) Kind() Kind { return KindSymbol }

// Len returns the content length, terminator excluded.
func (s *Symbol) Len() int {
	if len(s.buf) == 0 {
		return 0
	}
	return len(s.buf) - 1
}

// Bytes returns a copy of the content.
func (s *Symbol) Bytes() []byte {
	out := make([]byte, s.Len())
	copy(out, s.buf)
	return out
}

func (s *Symbol) String() string {
	return string(s.buf[:s.Len()])
}

// CString returns the backing buffer including the trailing NUL, for
// handing to text APIs that expect a terminator. The result must not be
// modified.
func (s *Symbol) CString() []byte {
	if len(s.buf) == 0 {
		return []byte{0}
	}
	return s.buf[:len(s.buf):len(s.buf)]
}

// Fingerprint returns the fingerprint computed at construction.
func (s *Symbol) Fingerprint() uint64 {
	if len(s.buf) == 0 {
		return fingerprint.Empty
	}
	return s.hash
}

// Equal reports whether o is a symbol with the same fingerprint.
func (s *Symbol) Equal(o Object) bool {
	return SymbolsEqual(s, o)
}

// SymbolsEqual reports whether a and b are both symbols with equal
// fingerprints. Any other combination, including nil, is false.
func SymbolsEqual(a, b Object) bool {
	sa, ok := a.(*Symbol)
	if !ok || sa == nil {
		return false
	}
	sb, ok := b.(*Symbol)
	if !ok || sb == nil {
		return false
	}
	return sa.Fingerprint() == sb.Fingerprint()
}

// SymbolID returns the fingerprint of o if it is a symbol and 0 otherwise.
// Zero is also a possible fingerprint, so check KindOf first when the
// difference matters.
func SymbolID(o Object) uint64 {
	switch v := o.(type) {
	case *Symbol:
		if v == nil {
			return 0
		}
		return v.Fingerprint()
	default:
		return 0
	}
}

func newSymbol(buf []byte, content []byte) *Symbol {
	return &Symbol{buf: buf, hash: fingerprint.Sum64(content)}
}
