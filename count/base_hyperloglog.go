/*
Package count implements the HyperLogLog cardinality estimator: m = 2^p small
registers, each holding the largest rank (1 + leading zero run) seen among the
hashes routed to it, combined by a bias corrected harmonic mean.

Items are hashed to 64 bits. The top p bits pick the register and the remaining
64-p bits give the rank, so a register never sees the bits that selected it.
The estimate has a relative standard error of about 1.04/sqrt(m). Small
cardinalities are corrected with linear counting. The large range correction of
the original paper exists for 32 bit hashes (estimates above 2^32/30); with 64
bit hashes it is unreachable in practice and is not applied.

Refer: Flajolet et al., "HyperLogLog: the analysis of a near-optimal cardinality
estimation algorithm", 2007.

The package implements both in-mem (HyperLogLog) and Redis backed
(HyperLogLogRedis) estimators. The in-memory estimator is not thread-safe.
*/
package count

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/sketchkit/sketchkit"
	"github.com/sketchkit/sketchkit/hash"
)

const (
	// MinPrecision and MaxPrecision bound p. Ranks of up to 64-4+1 = 61 fit
	// in the 6 bits a register needs.
	MinPrecision = 4
	MaxPrecision = 18

	hashBits = 64
)

// AbstractHyperLogLog is what the in-memory and Redis estimators share
// _precision_ is p, the number of hash bits selecting a register
// _numRegisters_ is m = 2^p
// _alpha_ is the bias correction constant for m registers
// _hasher_ maps items to 64 bit hashes
type AbstractHyperLogLog struct {
	precision    uint8
	numRegisters uint64
	alpha        float64
	hasher       hash.Hasher64
}

// Option configures an estimator at construction
type Option func(*AbstractHyperLogLog)

// WithHasher replaces the default murmur3 hash
func WithHasher(hasher hash.Hasher64) Option {
	return func(h *AbstractHyperLogLog) {
		h.hasher = hasher
	}
}

// MakeAbstractHyperLogLog validates _precision_ and applies _opts_
func MakeAbstractHyperLogLog(precision uint8, opts ...Option) (*AbstractHyperLogLog, error) {
	if precision < MinPrecision || precision > MaxPrecision {
		return nil, fmt.Errorf("%w: hyperloglog precision %d not in [%d, %d]", sketchkit.ErrInvalidArgument, precision, MinPrecision, MaxPrecision)
	}
	h := &AbstractHyperLogLog{
		precision:    precision,
		numRegisters: 1 << precision,
		hasher:       hash.Murmur3{},
	}
	h.alpha = getAlpha(h.numRegisters)
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Precision returns p
func (h *AbstractHyperLogLog) Precision() uint8 {
	return h.precision
}

// NumRegisters returns m
func (h *AbstractHyperLogLog) NumRegisters() uint64 {
	return h.numRegisters
}

// Accuracy returns the relative standard error 1.04/sqrt(m)
func (h *AbstractHyperLogLog) Accuracy() float64 {
	return 1.04 / math.Sqrt(float64(h.numRegisters))
}

func getAlpha(m uint64) (result float64) {
	switch m {
	case 16:
		result = 0.673
	case 32:
		result = 0.697
	case 64:
		result = 0.709
	default:
		result = 0.7213 / (1.0 + 1.079/float64(m))
	}
	return result
}

// getRegisterIndexAndRank splits the hash of _data_ into the register index
// (top p bits) and the rank of the remaining 64-p bits, capped at 64-p+1.
func (h *AbstractHyperLogLog) getRegisterIndexAndRank(data []byte) (uint64, uint8) {
	x := h.hasher.Sum64(data)
	registerIndex := x >> (hashBits - h.precision)
	maxRank := hashBits - h.precision + 1
	rank := uint8(bits.LeadingZeros64(x<<h.precision)) + 1
	if rank > maxRank {
		rank = maxRank
	}
	return registerIndex, rank
}

// estimate computes the cardinality from a snapshot of the registers
func (h *AbstractHyperLogLog) estimate(registers []uint8) float64 {
	m := float64(h.numRegisters)
	sum := 0.0
	zeros := 0
	for _, r := range registers {
		sum += math.Ldexp(1, -int(r))
		if r == 0 {
			zeros++
		}
	}
	estimation := h.alpha * m * m / sum
	if estimation <= 2.5*m && zeros > 0 {
		estimation = m * math.Log(m/float64(zeros))
	}
	return estimation
}
