package count

import (
	"math"
)

// HyperLogLog is the in-memory estimator
// _registers_ holds one rank per register, each only ever increases
type HyperLogLog struct {
	AbstractHyperLogLog
	registers []uint8
}

// NewHyperLogLog creates a new HyperLogLog with 2^_precision_ registers.
// _precision_ must be in [MinPrecision, MaxPrecision], otherwise
// sketchkit.ErrInvalidArgument is returned.
func NewHyperLogLog(precision uint8, opts ...Option) (*HyperLogLog, error) {
	abstractLog, err := MakeAbstractHyperLogLog(precision, opts...)
	if err != nil {
		return nil, err
	}
	return &HyperLogLog{*abstractLog, make([]uint8, abstractLog.numRegisters)}, nil
}

// Insert adds _item_ to the estimator
func (h *HyperLogLog) Insert(item string) {
	h.InsertBytes([]byte(item))
}

// InsertBytes adds _data_ to the estimator
func (h *HyperLogLog) InsertBytes(data []byte) {
	registerIndex, rank := h.getRegisterIndexAndRank(data)
	if rank > h.registers[registerIndex] {
		h.registers[registerIndex] = rank
	}
}

// Estimate returns the approximate number of distinct items inserted so far.
// It doesn't modify the estimator.
func (h *HyperLogLog) Estimate() float64 {
	return h.estimate(h.registers)
}

// Count returns Estimate rounded to the nearest integer
func (h *HyperLogLog) Count() uint64 {
	return uint64(math.Round(h.Estimate()))
}

// Registers returns a copy of the registers
func (h *HyperLogLog) Registers() []uint8 {
	registers := make([]uint8, len(h.registers))
	copy(registers, h.registers)
	return registers
}

// Equals checks if two HyperLogLog's have the same precision and registers
func (h *HyperLogLog) Equals(g *HyperLogLog) bool {
	if h.precision != g.precision {
		return false
	}
	for i := range h.registers {
		if h.registers[i] != g.registers[i] {
			return false
		}
	}
	return true
}
