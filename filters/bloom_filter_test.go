package filters

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/sketchkit/sketchkit"
)

func TestFilterInvalidArguments(t *testing.T) {
	tests := []struct {
		size, numHashes uint
	}{
		{0, 3},
		{1000, 0},
		{0, 0},
	}
	for _, tt := range tests {
		_, err := NewBloomFilter(tt.size, tt.numHashes)
		if !errors.Is(err, sketchkit.ErrInvalidArgument) {
			t.Errorf("size %d numHashes %d: expected ErrInvalidArgument, got %v", tt.size, tt.numHashes, err)
		}
	}
}

func TestFilterInsertLookup(t *testing.T) {
	filter, _ := NewBloomFilter(1000, 4)
	b1 := "John"
	b2 := "Jane"
	b3 := "Alice"
	b4 := "Bob"
	filter.Insert(b1)
	ok1 := filter.ProbablyContains(b2)
	ok2 := filter.ProbablyContains(b1)
	filter.Insert(b3)
	ok3 := filter.ProbablyContains(b4)
	ok4 := filter.ProbablyContains(b3)
	if ok1 {
		t.Errorf("%v should not be in filter", b2)
	}
	if !ok2 {
		t.Errorf("%v should be in filter", b1)
	}
	if ok3 {
		t.Errorf("%v should not be in filter", b4)
	}
	if !ok4 {
		t.Errorf("%v should be in filter", b3)
	}
}

func TestFilterAccessors(t *testing.T) {
	filter, _ := NewBloomFilter(1000, 3)
	if filter.Size() != 1000 {
		t.Errorf("size: %v should be 1000", filter.Size())
	}
	if filter.NumHashes() != 3 {
		t.Errorf("numHash: %v should be 3", filter.NumHashes())
	}
	if filter.BitCount() != 0 {
		t.Errorf("new filter should have no bits set, got %v", filter.BitCount())
	}
	filter.Insert("password123")
	if c := filter.BitCount(); c == 0 || c > 3 {
		t.Errorf("one insert sets between 1 and 3 bits, got %v", c)
	}
	before := filter.BitCount()
	filter.Insert("password123")
	if filter.BitCount() != before {
		t.Error("inserting the same item twice should not change the bits")
	}
}

func TestNoFalseNegatives(t *testing.T) {
	filter, _ := NewBloomFilter(5000, 5)
	for i := 0; i < 2000; i++ {
		item := fmt.Sprintf("item-%d", i)
		filter.Insert(item)
		if !filter.ProbablyContains(item) {
			t.Fatalf("%s should be in filter right after insert", item)
		}
	}
	for i := 0; i < 2000; i++ {
		item := fmt.Sprintf("item-%d", i)
		if !filter.ProbablyContains(item) {
			t.Fatalf("%s should still be in filter", item)
		}
	}
}

func TestMonotonicity(t *testing.T) {
	filter, _ := NewBloomFilter(200, 2)
	positive := map[string]bool{}
	for round := 0; round < 50; round++ {
		filter.Insert(fmt.Sprintf("round-%d", round))
		for i := 0; i < 100; i++ {
			item := fmt.Sprintf("query-%d", i)
			ok := filter.ProbablyContains(item)
			if positive[item] && !ok {
				t.Fatalf("%s was reported present and is now absent", item)
			}
			if ok {
				positive[item] = true
			}
		}
	}
}

func empiricalFalsePositiveRate(filter *BloomFilter, probes int) float64 {
	falsePositives := 0
	for i := 0; i < probes; i++ {
		if filter.ProbablyContains(fmt.Sprintf("never-inserted-%d", i)) {
			falsePositives++
		}
	}
	return float64(falsePositives) / float64(probes)
}

func TestFalsePositiveRateSmall(t *testing.T) {
	filter, _ := NewBloomFilter(1000, 3)
	for _, pw := range []string{"password123", "admin123", "qwerty123"} {
		filter.Insert(pw)
	}
	expected := math.Pow(1-math.Exp(-3.0*3/1000), 3)
	if math.Abs(filter.FalsePositiveRate(3)-expected) > 1e-12 {
		t.Errorf("theoretical rate %v, expected %v", filter.FalsePositiveRate(3), expected)
	}
	// at most 9 of 1000 bits are set so no more than (9/1000)^3 of probes can collide
	rate := empiricalFalsePositiveRate(filter, 100000)
	if rate > 1e-4 {
		t.Errorf("empirical false positive rate %v too high, theoretical %v", rate, expected)
	}
	if est := filter.EstimatedFalsePositiveRate(); est > math.Pow(9.0/1000, 3) {
		t.Errorf("estimated rate %v above the fill bound", est)
	}
}

func TestFalsePositiveRateLoaded(t *testing.T) {
	filter, _ := NewBloomFilter(10000, 3)
	for i := 0; i < 1000; i++ {
		filter.Insert(fmt.Sprintf("item-%d", i))
	}
	expected := filter.FalsePositiveRate(1000)
	rate := empiricalFalsePositiveRate(filter, 20000)
	if math.Abs(rate-expected)/expected > 0.25 {
		t.Errorf("empirical false positive rate %v too far from theoretical %v", rate, expected)
	}
	if est := filter.EstimatedFalsePositiveRate(); math.Abs(est-expected)/expected > 0.25 {
		t.Errorf("estimated false positive rate %v too far from theoretical %v", est, expected)
	}
}

func testPositiveRate(nItems uint, errorRate float64, t *testing.T) {
	filter, err := NewBloomFilterWithParameters(nItems, errorRate)
	if err != nil {
		t.Fatalf("error creating filter: %v", err)
	}
	for i := uint(0); i < nItems; i++ {
		filter.Insert(fmt.Sprintf("item-%d", i))
	}
	if rate := empiricalFalsePositiveRate(filter, 20000); rate > 1.5*errorRate {
		t.Errorf("empirical error rate %v too high for nItems %v and expected error rate %v", rate, nItems, errorRate)
	}
}

func TestPositiveRate1000_001(t *testing.T) {
	testPositiveRate(1000, 0.01, t)
}

func TestPositiveRate10000_001(t *testing.T) {
	testPositiveRate(10000, 0.01, t)
}

func TestPositiveRate1000_01(t *testing.T) {
	testPositiveRate(1000, 0.1, t)
}

func TestWithParametersInvalid(t *testing.T) {
	if _, err := NewBloomFilterWithParameters(0, 0.01); !errors.Is(err, sketchkit.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
	if _, err := NewBloomFilterWithParameters(100, 1.5); !errors.Is(err, sketchkit.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestFilterEquals(t *testing.T) {
	a, _ := NewBloomFilter(1000, 3)
	b, _ := NewBloomFilter(1000, 3)
	c, _ := NewBloomFilter(1000, 4)
	a.Insert("foo")
	b.Insert("foo")
	c.Insert("foo")
	if !a.Equals(b) {
		t.Error("a and b should be equal")
	}
	if a.Equals(c) {
		t.Error("a and c differ in numHashes")
	}
	b.Insert("bar")
	if a.Equals(b) {
		t.Error("a and b shouldn't be equal")
	}
}
