package count

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/sketchkit/sketchkit"
	"github.com/sketchkit/sketchkit/hash"
	"github.com/stretchr/testify/require"
)

type fixedHasher uint64

func (f fixedHasher) Sum64([]byte) uint64 {
	return uint64(f)
}

func TestHyperLogLogPrecisionRange(t *testing.T) {
	for _, p := range []uint8{0, 3, 19, 64} {
		_, err := NewHyperLogLog(p)
		if !errors.Is(err, sketchkit.ErrInvalidArgument) {
			t.Errorf("precision %d: expected ErrInvalidArgument, got %v", p, err)
		}
	}
	for p := uint8(MinPrecision); p <= MaxPrecision; p++ {
		h, err := NewHyperLogLog(p)
		require.NoError(t, err)
		require.Equal(t, uint64(1)<<p, h.NumRegisters())
		require.Len(t, h.Registers(), 1<<p)
		require.Equal(t, p, h.Precision())
	}
}

func TestHyperLogLogAlpha(t *testing.T) {
	require.Equal(t, 0.673, getAlpha(16))
	require.Equal(t, 0.697, getAlpha(32))
	require.Equal(t, 0.709, getAlpha(64))
	require.InDelta(t, 0.7213/(1+1.079/1024), getAlpha(1024), 1e-15)
}

func TestHyperLogLogRegisterIndexAndRank(t *testing.T) {
	tests := []struct {
		hash  uint64
		index uint64
		rank  uint8
	}{
		{0x1800000000000000, 1, 1},
		{0x0400000000000000, 0, 2},
		{0x0000000000000001, 0, 60},
		{0xF000000000000000, 15, 61}, // remaining bits all zero, capped at 64-p+1
	}
	for _, tt := range tests {
		h, _ := NewHyperLogLog(4, WithHasher(fixedHasher(tt.hash)))
		index, rank := h.getRegisterIndexAndRank(nil)
		require.Equal(t, tt.index, index, "index of %x", tt.hash)
		require.Equal(t, tt.rank, rank, "rank of %x", tt.hash)
	}
}

func TestHyperLogLogRegisterKeepsMax(t *testing.T) {
	h, _ := NewHyperLogLog(4, WithHasher(fixedHasher(0x0000000000000001)))
	h.Insert("x")
	require.Equal(t, uint8(60), h.registers[0])

	h.hasher = fixedHasher(0x0800000000000000)
	h.Insert("y")
	require.Equal(t, uint8(60), h.registers[0], "a lower rank must not lower the register")
}

func TestHyperLogLogEmpty(t *testing.T) {
	h, _ := NewHyperLogLog(10)
	require.Equal(t, 0.0, h.Estimate())
	require.Equal(t, uint64(0), h.Count())
}

func TestHyperLogLogSmallScenario(t *testing.T) {
	h, _ := NewHyperLogLog(10)
	for _, item := range []string{"a", "a", "b", "c"} {
		h.Insert(item)
	}
	estimation := h.Estimate()
	if math.Abs(math.Round(estimation)-3) > 2 {
		t.Errorf("estimate %v too far from 3", estimation)
	}
}

func TestHyperLogLog(t *testing.T) {
	numDistinct := 100
	h, _ := NewHyperLogLog(7)
	for i := 0; i < 1000; i++ {
		h.Insert(fmt.Sprint(i % numDistinct))
	}
	distinctVals := h.Estimate()
	if math.Abs(distinctVals-float64(numDistinct))/float64(numDistinct) > 3*h.Accuracy() {
		t.Errorf("too much variance in calculated distinct values; got %v, exact %d", distinctVals, numDistinct)
	}
}

func testAccuracy(t *testing.T, precision uint8, n int, opts ...Option) {
	h, _ := NewHyperLogLog(precision, opts...)
	for i := 0; i < n; i++ {
		h.Insert(fmt.Sprintf("item-%d", i))
	}
	relErr := math.Abs(h.Estimate()-float64(n)) / float64(n)
	if relErr > 3*h.Accuracy() {
		t.Errorf("p=%d n=%d: relative error %v above 3 * %v", precision, n, relErr, h.Accuracy())
	}
}

func TestHyperLogLogAccuracy(t *testing.T) {
	testAccuracy(t, 14, 100000)
}

func TestHyperLogLogAccuracyXXHash(t *testing.T) {
	testAccuracy(t, 14, 100000, WithHasher(hash.XXHash{}))
}

func TestHyperLogLogAccuracyMetro(t *testing.T) {
	testAccuracy(t, 14, 100000, WithHasher(hash.Metro{}))
}

func TestHyperLogLogAccuracyLowPrecision(t *testing.T) {
	testAccuracy(t, 10, 50000)
}

func TestHyperLogLogDuplicatesDontChangeEstimate(t *testing.T) {
	h, _ := NewHyperLogLog(12)
	for i := 0; i < 5000; i++ {
		h.Insert(fmt.Sprintf("10.0.%d.%d", i/256, i%256))
	}
	before := h.Estimate()
	registers := h.Registers()
	for i := 0; i < 5000; i++ {
		h.Insert(fmt.Sprintf("10.0.%d.%d", i/256, i%256))
	}
	require.Equal(t, before, h.Estimate())
	require.Equal(t, registers, h.Registers())
}

func TestHyperLogLogEstimateGrows(t *testing.T) {
	h, _ := NewHyperLogLog(10)
	previous := 0.0
	for i := 1; i <= 20000; i++ {
		h.Insert(fmt.Sprintf("item-%d", i))
		if i%500 != 0 {
			continue
		}
		estimation := h.Estimate()
		if estimation < previous*(1-3*h.Accuracy()) {
			t.Fatalf("estimate dropped from %v to %v after %d inserts", previous, estimation, i)
		}
		previous = math.Max(previous, estimation)
	}
}

func TestHyperLogLogEstimateIsPure(t *testing.T) {
	h, _ := NewHyperLogLog(8)
	h.Insert("foo")
	h.Insert("bar")
	first := h.Estimate()
	second := h.Estimate()
	require.Equal(t, first, second)
}

func TestHyperLogLogEquals(t *testing.T) {
	f, _ := NewHyperLogLog(5)
	g, _ := NewHyperLogLog(4)
	h, _ := NewHyperLogLog(4)

	h.Insert("john")
	h.Insert("jane")

	g.Insert("john")
	g.Insert("jane")

	if f.Equals(g) || f.Equals(h) {
		t.Errorf("f is neither equal to g nor h")
	}

	if !h.Equals(g) {
		t.Errorf("h and g should be equal")
	}

	for i := 0; i < 50; i++ {
		g.Insert(fmt.Sprintf("alice-%d", i))
	}

	if h.Equals(g) {
		t.Errorf("h and g shouldn't be equal")
	}
}
