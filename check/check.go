/*
Package check classifies candidate values (e.g. passwords) as unique or already
used with a Bloom filter, inserting every new value so later duplicates in the
same batch are caught.
*/
package check

import (
	"context"
	"fmt"

	"github.com/sketchkit/sketchkit"
	"github.com/sketchkit/sketchkit/filters"
	"github.com/sketchkit/sketchkit/prom"
)

// Status is the classification of one input item
type Status string

const (
	Unique       Status = "unique"
	AlreadyUsed  Status = "already used"
	InvalidInput Status = "invalid input"
)

// Filter is the membership filter the check queries and fills.
// *filters.BloomFilterRedis satisfies it; wrap a *filters.BloomFilter with Memory.
type Filter interface {
	ProbablyContains(ctx context.Context, item string) (bool, error)
	Insert(ctx context.Context, item string) error
}

type memoryFilter struct {
	filter *filters.BloomFilter
}

func (m memoryFilter) ProbablyContains(_ context.Context, item string) (bool, error) {
	return m.filter.ProbablyContains(item), nil
}

func (m memoryFilter) Insert(_ context.Context, item string) error {
	m.filter.Insert(item)
	return nil
}

// Memory adapts an in-memory Bloom filter to Filter
func Memory(filter *filters.BloomFilter) Filter {
	return memoryFilter{filter}
}

// Result is the outcome for one input occurrence. Err wraps
// sketchkit.ErrTypeMismatch for InvalidInput results.
type Result struct {
	Item   any
	Status Status
	Err    error
}

// Report holds one Result per input item, in input order. Duplicate inputs
// each get their own entry.
type Report []Result

// Map collapses the report to a mapping keyed by the item's string form, the
// last occurrence of a duplicate winning. Keys come from fmt.Sprint, so an
// invalid item and a string with the same text (42 and "42") share a key; use
// the Report itself when that matters.
func (r Report) Map() map[string]Status {
	m := make(map[string]Status, len(r))
	for _, res := range r {
		m[fmt.Sprint(res.Item)] = res.Status
	}
	return m
}

// Count returns how many results have _status_
func (r Report) Count(status Status) int {
	n := 0
	for _, res := range r {
		if res.Status == status {
			n++
		}
	}
	return n
}

// Strings converts a string slice into check input
func Strings(items []string) []any {
	out := make([]any, len(items))
	for i := range items {
		out[i] = items[i]
	}
	return out
}

// Run classifies every item of _items_ in order. Items that aren't strings are
// InvalidInput and never touch the filter. An item the filter probably contains
// is AlreadyUsed and isn't inserted again. Anything else is Unique and is
// inserted before the next item is looked at. Only filter errors abort the batch.
func Run(ctx context.Context, filter Filter, items []any) (Report, error) {
	prom.CheckBatches.Inc()
	report := make(Report, 0, len(items))
	for i, item := range items {
		res := Result{Item: item}
		str, ok := item.(string)
		if !ok {
			res.Status = InvalidInput
			res.Err = fmt.Errorf("%w: item %d is %T, not a string", sketchkit.ErrTypeMismatch, i, item)
		} else {
			seen, err := filter.ProbablyContains(ctx, str)
			if err != nil {
				return report, fmt.Errorf("sketchkit: checking item %d: %w", i, err)
			}
			if seen {
				res.Status = AlreadyUsed
			} else {
				res.Status = Unique
				err = filter.Insert(ctx, str)
				if err != nil {
					return report, fmt.Errorf("sketchkit: inserting item %d: %w", i, err)
				}
			}
		}
		prom.CheckResults.WithLabelValues(string(res.Status)).Inc()
		report = append(report, res)
	}
	return report, nil
}

// Seed inserts _items_ into the filter without classifying them
func Seed(ctx context.Context, filter Filter, items []string) error {
	for _, item := range items {
		err := filter.Insert(ctx, item)
		if err != nil {
			return fmt.Errorf("sketchkit: seeding filter: %w", err)
		}
	}
	return nil
}
