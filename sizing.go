package sketchkit

import (
	"fmt"
	"math"
)

// CalculateFilterSize returns the number of bits a Bloom filter needs to hold
// _length_ items at the false positive rate _errorRate_
func CalculateFilterSize(length uint, errorRate float64) (uint, error) {
	if length == 0 {
		return 0, fmt.Errorf("%w: number of items must be positive", ErrInvalidArgument)
	}
	if errorRate <= 0 || errorRate >= 1 {
		return 0, fmt.Errorf("%w: error rate %v not in (0, 1)", ErrInvalidArgument, errorRate)
	}
	return uint(math.Ceil(-((float64(length) * math.Log(errorRate)) / math.Pow(math.Log(2), 2)))), nil
}

// CalculateNumHashes returns the optimal number of hash probes for a filter of
// _size_ bits holding _length_ items. It is never less than 1.
func CalculateNumHashes(size, length uint) uint {
	if length == 0 {
		return 1
	}
	return Max(uint(math.Ceil(float64(size)/float64(length)*math.Log(2))), 1)
}

// FalsePositiveRate is the standard Bloom bound (1 - e^(-kn/size))^k
func FalsePositiveRate(size, numHashes, numItems uint) float64 {
	if size == 0 {
		return 1
	}
	k := float64(numHashes)
	return math.Pow(1-math.Exp(-k*float64(numItems)/float64(size)), k)
}

func Max(a, b uint) uint {
	if a > b {
		return a
	}
	return b
}
