package fiobj

import (
	"errors"
	"fmt"
	"testing"

	"github.com/standardbeagle/fiosym/internal/alloc"
	fioerrors "github.com/standardbeagle/fiosym/internal/errors"
	"github.com/standardbeagle/fiosym/internal/fingerprint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolf_ContentMatch(t *testing.T) {
	sym, err := Symbolf("%d-%d", 1, 2)
	require.NoError(t, err)
	require.NotNil(t, sym)

	assert.Equal(t, "1-2", sym.String())
	assert.Equal(t, 3, sym.Len())
	assert.Equal(t, []byte("1-2\x00"), sym.CString())
	assert.Equal(t, fingerprint.Sum64([]byte("1-2")), sym.Fingerprint())
	assert.True(t, SymbolsEqual(sym, mustSymbol(t, "1-2")))
}

func TestSymbolf_Empty(t *testing.T) {
	for _, tc := range []struct {
		template string
		args     []any
	}{
		{"", nil},
		{"%s", []any{""}},
		{"%s%s", []any{"", ""}},
	} {
		sym, err := Symbolf(tc.template, tc.args...)
		require.NoError(t, err, tc.template)
		require.NotNil(t, sym, tc.template)

		assert.Equal(t, 0, sym.Len())
		assert.Equal(t, fingerprint.Empty, sym.Fingerprint())
		assert.True(t, SymbolsEqual(sym, mustSymbol(t, "")), tc.template)
	}
}

func TestSymbolf_Malformed(t *testing.T) {
	rec := newRecordingAllocator()
	heap := NewHeap(rec)

	for _, tc := range []struct {
		template string
		args     []any
	}{
		{"%", nil},
		{"broken %y", []any{1}},
		{"%d-%d", []any{1}},
		{"%[2]d", []any{1, 2}},
		{"%d", []any{"x"}},
		{"%s and %f", []any{"ok", 3}},
	} {
		sym, err := heap.Symbolf(tc.template, tc.args...)
		assert.Nil(t, sym, tc.template)
		require.Error(t, err, tc.template)
		assert.True(t, errors.Is(err, ErrNoValue), tc.template)
		assert.True(t, errors.Is(err, fioerrors.ErrMalformedTemplate), tc.template)

		var formatErr *fioerrors.FormatError
		require.True(t, errors.As(err, &formatErr), tc.template)
		assert.Equal(t, tc.template, formatErr.Template)
	}

	assert.Empty(t, rec.lengths, "malformed templates must not allocate")
}

func TestSymbolfArgs_SizesBufferFromDryRun(t *testing.T) {
	rec := newRecordingAllocator()
	heap := NewHeap(rec)

	args := Args{"user", 42, 3.5}
	sym, err := heap.SymbolfArgs("%s:%04d:%.1f", args)
	require.NoError(t, err)

	assert.Equal(t, "user:0042:3.5", sym.String())
	require.Len(t, rec.lengths, 1)
	assert.Equal(t, len("user:0042:3.5"), rec.lengths[0])
	assert.Equal(t, []string{"SYMBOL"}, rec.kinds)

	// The caller's list is untouched and reusable
	again, err := heap.SymbolfArgs("%s:%04d:%.1f", args)
	require.NoError(t, err)
	assert.True(t, SymbolsEqual(sym, again))
}

func TestSymbolf_VariadicCopiesArgs(t *testing.T) {
	args := []any{"a", "b"}
	sym, err := Symbolf("%s/%s", args...)
	require.NoError(t, err)

	args[0] = "changed"
	assert.Equal(t, "a/b", sym.String())
}

// flipper renders differently on every call, so the real pass may
// disagree with the dry run.
type flipper struct{ calls int }

func (f *flipper) String() string {
	f.calls++
	if f.calls == 1 {
		return "short"
	}
	return "much longer text"
}

func TestSymbolfArgs_DryRunLengthIsAuthoritative(t *testing.T) {
	sym, err := Symbolf("%s", &flipper{})
	require.NoError(t, err)

	assert.Equal(t, 5, sym.Len())
	assert.Equal(t, "much ", sym.String())
	assert.Equal(t, fingerprint.SumString("much "), sym.Fingerprint())
}

func TestSymbolf_AllocatorErrorPropagates(t *testing.T) {
	heap := NewHeap(alloc.NewBufferAllocator(alloc.Options{MaxObjectSize: 3}))

	sym, err := heap.Symbolf("%d", 12345)
	assert.Nil(t, sym)
	assert.True(t, errors.Is(err, alloc.ErrObjectTooLarge))
	assert.False(t, errors.Is(err, ErrNoValue))

	ok, err := heap.Symbolf("%d", 123)
	require.NoError(t, err)
	assert.Equal(t, "123", ok.String())
}

func TestSymbolf_LongOutputBypassesTiers(t *testing.T) {
	long := fmt.Sprintf("%0300d", 7)
	sym, err := Symbolf("%0300d", 7)
	require.NoError(t, err)

	assert.Equal(t, 300, sym.Len())
	assert.Equal(t, long, sym.String())
	assert.True(t, SymbolsEqual(sym, mustSymbol(t, long)))
}

func TestTailBoundarySymbols(t *testing.T) {
	s7 := mustSymbol(t, "1234567")
	s8 := mustSymbol(t, "12345678")
	s9 := mustSymbol(t, "123456789")

	assert.False(t, SymbolsEqual(s7, s8))
	assert.False(t, SymbolsEqual(s8, s9))
	assert.False(t, SymbolsEqual(s7, s9))

	f9, err := Symbolf("%d", 123456789)
	require.NoError(t, err)
	assert.True(t, SymbolsEqual(s9, f9))
}

func BenchmarkNewSymbol(b *testing.B) {
	heap := NewHeap(nil)
	content := []byte("benchmark:symbol:name")

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		sym, _ := heap.NewSymbol(content)
		heap.Free(sym)
	}
}

func BenchmarkSymbolf(b *testing.B) {
	heap := NewHeap(nil)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		sym, _ := heap.Symbolf("key:%d:%s", i, "suffix")
		heap.Free(sym)
	}
}

func BenchmarkSymbolsEqual(b *testing.B) {
	x, _ := NewSymbolString("a fairly long symbol name that would be slow to compare byte by byte")
	y, _ := NewSymbolString("a fairly long symbol name that would be slow to compare byte by byte")

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		SymbolsEqual(x, y)
	}
}
