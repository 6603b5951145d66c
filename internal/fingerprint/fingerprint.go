// Package fingerprint computes the 64-bit content fingerprint carried by
// symbol values.
//
// The construction is a fixed-key SipHash-2-4: input is absorbed in 8-byte
// little-endian blocks with two rounds per block, the final 0-7 bytes are
// packed into a tail block whose top byte holds the input length modulo 256,
// and four finalization rounds follow. The key is hardcoded, so fingerprints
// are suitable for equality testing only, never for hashing adversarial input
// or as a persisted wire format.
package fingerprint

import (
	"encoding/binary"
	"math/bits"
	"unsafe"
)

// Fixed key words (bytes 0x00..0x0f read little-endian).
const (
	key0 = 0x0706050403020100
	key1 = 0x0f0e0d0c0b0a0908
)

// Initial accumulator words: key XOR the ASCII seed "somepseudorandomlygeneratedbytes".
const (
	seed0 = key0 ^ 0x736f6d6570736575
	seed1 = key1 ^ 0x646f72616e646f6d
	seed2 = key0 ^ 0x6c7967656e657261
	seed3 = key1 ^ 0x7465646279746573
)

// Empty is the fingerprint of the empty byte sequence.
var Empty = Sum64(nil)

// blockOrder selects how an 8-byte block is loaded from memory.
type blockOrder uint8

const (
	// orderLittle loads blocks on little-endian hosts, no swap needed.
	orderLittle blockOrder = iota
	// orderBig loads blocks the way a big-endian host reads them natively and
	// swaps them back into little-endian order before mixing.
	orderBig
)

var hostOrder = detectHostOrder()

func detectHostOrder() blockOrder {
	probe := [2]byte{0x01, 0x02}
	if binary.NativeEndian.Uint16(probe[:]) == 0x0102 {
		return orderBig
	}
	return orderLittle
}

// load reads b[0:8] as a little-endian word.
func (o blockOrder) load(b []byte) uint64 {
	if o == orderBig {
		return bits.ReverseBytes64(binary.BigEndian.Uint64(b))
	}
	return binary.LittleEndian.Uint64(b)
}

type state struct {
	v0, v1, v2, v3 uint64
}

func (s *state) round() {
	s.v2 += s.v3
	s.v3 = bits.RotateLeft64(s.v3, 16) ^ s.v2
	s.v0 += s.v1
	s.v1 = bits.RotateLeft64(s.v1, 13) ^ s.v0
	s.v0 = bits.RotateLeft64(s.v0, 32)
	s.v2 += s.v1
	s.v0 += s.v3
	s.v1 = bits.RotateLeft64(s.v1, 17) ^ s.v2
	s.v3 = bits.RotateLeft64(s.v3, 21) ^ s.v0
	s.v2 = bits.RotateLeft64(s.v2, 32)
}

// absorb mixes one message word with two rounds.
func (s *state) absorb(m uint64) {
	s.v3 ^= m
	s.round()
	s.round()
	s.v0 ^= m
}

// Sum64 returns the fingerprint of data. A nil or empty slice is valid and
// yields Empty. Safe for concurrent use.
func Sum64(data []byte) uint64 {
	return sum64With(hostOrder, data)
}

// SumString is Sum64 over the bytes of s without copying them.
func SumString(s string) uint64 {
	return Sum64(unsafe.Slice(unsafe.StringData(s), len(s)))
}

func sum64With(order blockOrder, data []byte) uint64 {
	s := state{v0: seed0, v1: seed1, v2: seed2, v3: seed3}
	lenByte := byte(len(data))

	for len(data) >= 8 {
		s.absorb(order.load(data))
		data = data[8:]
	}

	// The tail block is always mixed, even when len(data) == 0.
	var tail [8]byte
	copy(tail[:], data)
	tail[7] = lenByte
	s.absorb(order.load(tail[:]))

	s.v2 ^= 0xff
	s.round()
	s.round()
	s.round()
	s.round()

	return s.v0 ^ s.v1 ^ s.v2 ^ s.v3
}
