/*
Package hash contains the hashing primitives behind the filters and estimators.

ProbeIndex derives the Bloom filter bit positions from SHA-256, one digest per
probe. The HyperLogLog estimators take a 64 bit Hasher64, murmur3 by default,
with xxHash64 and metro64 as alternatives.
*/
package hash

import (
	"github.com/cespare/xxhash/v2"
	"github.com/dgryski/go-metro"
)

// Hasher64 maps a byte slice to a uniformly distributed 64 bit value
type Hasher64 interface {
	Sum64(data []byte) uint64
}

// Murmur3 is the high half of the murmur3 x64 128 hash
type Murmur3 struct{}

func (Murmur3) Sum64(data []byte) uint64 {
	h1, _ := Sum128(data)
	return h1
}

// XXHash is xxHash64 with seed 0
type XXHash struct{}

func (XXHash) Sum64(data []byte) uint64 {
	return xxhash.Sum64(data)
}

const metroSeed = 1373

// Metro is metro64 with a fixed seed
type Metro struct{}

func (Metro) Sum64(data []byte) uint64 {
	return metro.Hash64(data, metroSeed)
}
