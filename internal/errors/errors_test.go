package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatError(t *testing.T) {
	err := NewFormatError("%d-%", 3, ErrMalformedTemplate)

	assert.Equal(t, ErrorTypeFormat, err.Type)
	assert.Equal(t, "%d-%", err.Template)
	assert.True(t, errors.Is(err, ErrMalformedTemplate))
	assert.False(t, err.Timestamp.IsZero())
	assert.Equal(t, `format "%d-%" failed at offset 3: malformed template`, err.Error())

	noOffset := NewFormatError("%d", -1, errors.New("argument count mismatch"))
	assert.Equal(t, `format "%d" failed: argument count mismatch`, noOffset.Error())
}

func TestAllocError(t *testing.T) {
	limit := errors.New("object too large")
	err := NewAllocError("SYMBOL", 2048, 1024, limit)

	assert.Equal(t, ErrorTypeAlloc, err.Type)
	assert.Equal(t, 2048, err.Requested)
	assert.True(t, errors.Is(err, limit))
	assert.Equal(t, "alloc SYMBOL of 2048 bytes failed (limit 1024): object too large", err.Error())

	unlimited := NewAllocError("SYMBOL", -1, 0, errors.New("negative length"))
	assert.Equal(t, "alloc SYMBOL of -1 bytes failed: negative length", unlimited.Error())
}

func TestCollisionError(t *testing.T) {
	err := NewCollisionError(0xdeadbeef, []byte("a"), []byte("b"))

	assert.Equal(t, ErrorTypeCollision, err.Type)
	assert.Equal(t, uint64(0xdeadbeef), err.Fingerprint)
	assert.Equal(t, `fingerprint 00000000deadbeef collision: "a" vs "b"`, err.Error())

	var target *CollisionError
	assert.True(t, errors.As(error(err), &target))
}

func TestConfigError(t *testing.T) {
	underlying := errors.New("invalid value")
	err := NewConfigError("table.shards", "3", underlying)

	assert.True(t, errors.Is(err, underlying))
	assert.Equal(t, "config error for field table.shards (value 3): invalid value", err.Error())
}

func TestMultiError(t *testing.T) {
	err1 := errors.New("error 1")
	err2 := errors.New("error 2")

	multi := NewMultiError([]error{err1, nil, err2})
	assert.Len(t, multi.Errors, 2)
	assert.True(t, errors.Is(multi, err1))
	assert.True(t, errors.Is(multi, err2))
	assert.Equal(t, "2 errors: [error 1 error 2]", multi.Error())

	single := NewMultiError([]error{err1})
	assert.Equal(t, "error 1", single.Error())

	empty := NewMultiError(nil)
	assert.Equal(t, "no errors", empty.Error())
	assert.NoError(t, empty.ErrorOrNil())
	assert.Error(t, multi.ErrorOrNil())
}
