package filters

import (
	"github.com/sketchkit/sketchkit/bitset"
)

// BloomFilter is the in-memory Bloom filter.
// _filter_ is the bitset backing the filter; bits are only ever set.
type BloomFilter struct {
	AbstractBloomFilter
	filter *bitset.BitSetMem
}

// NewBloomFilter creates and returns a new BloomFilter
// _size_ is the number of bits in the filter
// _numHashes_ is the number of probes computed per item
// Both must be positive, otherwise sketchkit.ErrInvalidArgument is returned.
func NewBloomFilter(size, numHashes uint) (*BloomFilter, error) {
	abstractFilter, err := MakeAbstractBloomFilter(size, numHashes)
	if err != nil {
		return nil, err
	}
	return &BloomFilter{*abstractFilter, bitset.NewBitSetMem(size)}, nil
}

// NewBloomFilterWithParameters creates a BloomFilter sized for _numItems_ items
// at the false positive rate _errorRate_
func NewBloomFilterWithParameters(numItems uint, errorRate float64) (*BloomFilter, error) {
	size, numHashes, err := planParameters(numItems, errorRate)
	if err != nil {
		return nil, err
	}
	return NewBloomFilter(size, numHashes)
}

// Insert sets the bits of every probe of _item_
func (bloomFilter *BloomFilter) Insert(item string) {
	bloomFilter.filter.InsertMulti(bloomFilter.getIndexes(item))
}

// ProbablyContains returns true if the bits of all probes of _item_ are set,
// otherwise false. A false result is exact; a true result may be a false positive.
func (bloomFilter *BloomFilter) ProbablyContains(item string) bool {
	for _, index := range bloomFilter.getIndexes(item) {
		if !bloomFilter.filter.Has(index) {
			return false
		}
	}
	return true
}

// BitCount returns the number of set bits
func (bloomFilter *BloomFilter) BitCount() uint {
	return bloomFilter.filter.BitCount()
}

// EstimatedFalsePositiveRate returns the false positive rate implied by the
// current fill of the bitset
func (bloomFilter *BloomFilter) EstimatedFalsePositiveRate() float64 {
	return bloomFilter.fillRate(bloomFilter.filter.BitCount())
}

// Equals checks if two BloomFilter's have the same parameters and bits
func (bloomFilter *BloomFilter) Equals(other *BloomFilter) bool {
	return bloomFilter.size == other.size &&
		bloomFilter.numHashes == other.numHashes &&
		bloomFilter.filter.Equals(other.filter)
}
