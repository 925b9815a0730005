/*
Package bitset implements the bit arrays behind the Bloom filters - both in-memory
and Redis. For in-memory, https://github.com/bits-and-blooms/bitset is used while
for Redis, the bitmap commands (SETBIT, GETBIT, BITCOUNT) on a string are used.
*/
package bitset

import (
	"github.com/bits-and-blooms/bitset"
)

// BitSetMem is a fixed size in-memory bitset.
// _size_ is the number of bits in the bitset
// _set_ is the bitset implementation adopted from https://github.com/bits-and-blooms/bitset
type BitSetMem struct {
	set  *bitset.BitSet
	size uint
}

// NewBitSetMem creates a new BitSetMem of size _size_ with every bit unset
func NewBitSetMem(size uint) *BitSetMem {
	return &BitSetMem{bitset.New(size), size}
}

// Size returns the size of the bitset
func (bitSet *BitSetMem) Size() uint {
	return bitSet.size
}

// Has checks if the bit at index _index_ is set
func (bitSet *BitSetMem) Has(index uint) bool {
	return bitSet.set.Test(index)
}

// HasAll checks if the bits at every index in _indexes_ are set
func (bitSet *BitSetMem) HasAll(indexes []uint) bool {
	for _, index := range indexes {
		if !bitSet.set.Test(index) {
			return false
		}
	}
	return true
}

// Insert sets the bit at index specified by _index_. Bits are never cleared.
func (bitSet *BitSetMem) Insert(index uint) {
	bitSet.set.Set(index)
}

// InsertMulti sets the bits at the indices passed in _indexes_
func (bitSet *BitSetMem) InsertMulti(indexes []uint) {
	for _, index := range indexes {
		bitSet.set.Set(index)
	}
}

// BitCount returns the total number of set bits in the bitset
func (bitSet *BitSetMem) BitCount() uint {
	return bitSet.set.Count()
}

// Equals checks if two BitSetMem are equal or not
func (bitSet *BitSetMem) Equals(other *BitSetMem) bool {
	return bitSet.size == other.size && bitSet.set.Equal(other.set)
}
