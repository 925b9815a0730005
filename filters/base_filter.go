/*
Package filters provides the Bloom filter used for approximate membership: a
fixed size bit array plus k hash probes per item. Inserted items are always
reported present; items never inserted are reported present with the false
positive probability (1 - e^(-kn/size))^k. Choosing size and k for an expected
number of items is up to the caller, see NewBloomFilterWithParameters.

The package implements both in-memory (BloomFilter) and Redis backed
(BloomFilterRedis) filters. Neither is safe for concurrent inserts; serialize
access per instance.
*/
package filters

import (
	"fmt"

	"github.com/sketchkit/sketchkit"
	"github.com/sketchkit/sketchkit/hash"
)

// AbstractBloomFilter holds what both filter variants share
// _size_ denotes the number of bits in the filter
// _numHashes_ denotes the number of probes computed per item
type AbstractBloomFilter struct {
	size      uint
	numHashes uint
}

// MakeAbstractBloomFilter validates _size_ and _numHashes_
func MakeAbstractBloomFilter(size, numHashes uint) (*AbstractBloomFilter, error) {
	if size == 0 {
		return nil, fmt.Errorf("%w: bloom filter size must be a positive integer", sketchkit.ErrInvalidArgument)
	}
	if numHashes == 0 {
		return nil, fmt.Errorf("%w: bloom filter num_hashes must be a positive integer", sketchkit.ErrInvalidArgument)
	}
	return &AbstractBloomFilter{size, numHashes}, nil
}

// planParameters sizes a filter for _numItems_ items at _errorRate_
func planParameters(numItems uint, errorRate float64) (uint, uint, error) {
	size, err := sketchkit.CalculateFilterSize(numItems, errorRate)
	if err != nil {
		return 0, 0, err
	}
	return size, sketchkit.CalculateNumHashes(size, numItems), nil
}

// Size returns the number of bits in the filter
func (f *AbstractBloomFilter) Size() uint {
	return f.size
}

// NumHashes returns the number of probes per item
func (f *AbstractBloomFilter) NumHashes() uint {
	return f.numHashes
}

// FalsePositiveRate is the theoretical false positive rate after _numItems_ inserts
func (f *AbstractBloomFilter) FalsePositiveRate(numItems uint) float64 {
	return sketchkit.FalsePositiveRate(f.size, f.numHashes, numItems)
}

func (f *AbstractBloomFilter) fillRate(bitCount uint) float64 {
	rate := 1.0
	fill := float64(bitCount) / float64(f.size)
	for i := uint(0); i < f.numHashes; i++ {
		rate *= fill
	}
	return rate
}

func (f *AbstractBloomFilter) getIndexes(item string) []uint {
	indexes := make([]uint, f.numHashes)
	for i := range indexes {
		indexes[i] = uint(hash.ProbeIndex(item, uint64(i), uint64(f.size)))
	}
	return indexes
}
