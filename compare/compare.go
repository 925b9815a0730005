package compare

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/sketchkit/sketchkit/count"
	"github.com/sketchkit/sketchkit/prom"
	"github.com/sketchkit/sketchkit/settings"
)

// DefaultPrecision gives 2^14 registers, about 0.8% relative error
const DefaultPrecision = 14

// Result is one exact vs HyperLogLog comparison
type Result struct {
	Items         int
	Precision     uint8
	Exact         int
	Approx        float64
	ExactElapsed  time.Duration
	ApproxElapsed time.Duration
}

// RelativeError is |approx - exact| / exact, 0 when nothing was counted
func (r Result) RelativeError() float64 {
	if r.Exact == 0 {
		return 0
	}
	return math.Abs(r.Approx-float64(r.Exact)) / float64(r.Exact)
}

// ExactCount returns the number of distinct _items_ using a set
func ExactCount(items []string) int {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return len(set)
}

// HLLCount returns the HyperLogLog estimate of the number of distinct _items_
func HLLCount(items []string, precision uint8, opts ...count.Option) (float64, error) {
	h, err := count.NewHyperLogLog(precision, opts...)
	if err != nil {
		return 0, err
	}
	for _, item := range items {
		h.Insert(item)
	}
	return h.Estimate(), nil
}

// Counter is an approximate distinct count over a slice of items
type Counter func(items []string) (float64, error)

// HLLCounter is a Counter backed by an in-memory HyperLogLog of _precision_
func HLLCounter(precision uint8, opts ...count.Option) Counter {
	return func(items []string) (float64, error) {
		return HLLCount(items, precision, opts...)
	}
}

// HLLRedisCounter is a Counter backed by a HyperLogLogRedis of _precision_.
// The registers are removed from Redis once the estimate is read.
func HLLRedisCounter(ctx context.Context, client redis.Cmdable, precision uint8, opts ...count.Option) Counter {
	return func(items []string) (float64, error) {
		h, err := count.NewHyperLogLogRedis(ctx, client, precision, opts...)
		if err != nil {
			return 0, err
		}
		defer func() {
			if err := h.Delete(ctx); err != nil {
				settings.Logger.Warn().Err(err).Str("metadata_key", h.MetadataKey()).Msg("could not delete hyperloglog from redis")
			}
		}()
		err = h.InsertMany(ctx, items)
		if err != nil {
			return 0, err
		}
		return h.Estimate(ctx)
	}
}

// Run times ExactCount and _approx_ over _items_
func Run(items []string, precision uint8, approx Counter) (Result, error) {
	if approx == nil {
		approx = HLLCounter(precision)
	}
	result := Result{Items: len(items), Precision: precision}
	prom.CompareItems.Add(float64(len(items)))

	start := time.Now()
	result.Exact = ExactCount(items)
	result.ExactElapsed = time.Since(start)
	prom.CompareDuration.WithLabelValues("exact").Observe(result.ExactElapsed.Seconds())

	start = time.Now()
	estimation, err := approx(items)
	if err != nil {
		return result, err
	}
	result.Approx = estimation
	result.ApproxElapsed = time.Since(start)
	prom.CompareDuration.WithLabelValues("hyperloglog").Observe(result.ApproxElapsed.Seconds())
	return result, nil
}

// Render writes _r_ as a GitHub markdown table with centered columns
func Render(w io.Writer, r Result) error {
	rows := [][]string{
		{"Metric", "Exact count", "HyperLogLog"},
		{"Unique elements", fmt.Sprint(r.Exact), fmt.Sprintf("%.1f", r.Approx)},
		{"Time (s)", fmt.Sprintf("%.4f", r.ExactElapsed.Seconds()), fmt.Sprintf("%.4f", r.ApproxElapsed.Seconds())},
	}
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}
	var b strings.Builder
	writeRow := func(row []string) {
		for i, cell := range row {
			pad := widths[i] - len(cell)
			left := pad / 2
			fmt.Fprintf(&b, "| %s%s%s ", strings.Repeat(" ", left), cell, strings.Repeat(" ", pad-left))
		}
		b.WriteString("|\n")
	}
	writeRow(rows[0])
	for i := range widths {
		fmt.Fprintf(&b, "|:%s:", strings.Repeat("-", widths[i]))
	}
	b.WriteString("|\n")
	for _, row := range rows[1:] {
		writeRow(row)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

type jsonResult struct {
	Items         int     `json:"items"`
	Precision     uint8   `json:"precision"`
	Exact         int     `json:"exact"`
	Approx        float64 `json:"approx"`
	RelativeError float64 `json:"relative_error"`
	ExactSeconds  float64 `json:"exact_seconds"`
	ApproxSeconds float64 `json:"approx_seconds"`
}

// WriteJSON writes _r_ as a single JSON object followed by a newline
func WriteJSON(w io.Writer, r Result) error {
	return json.NewEncoder(w).Encode(jsonResult{
		Items:         r.Items,
		Precision:     r.Precision,
		Exact:         r.Exact,
		Approx:        r.Approx,
		RelativeError: r.RelativeError(),
		ExactSeconds:  r.ExactElapsed.Seconds(),
		ApproxSeconds: r.ApproxElapsed.Seconds(),
	})
}
