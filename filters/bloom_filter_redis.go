package filters

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/sketchkit/sketchkit"
	"github.com/sketchkit/sketchkit/bitset"
)

// BloomFilterRedis is the Redis backed Bloom filter.
// _filter_ is the bitset in Redis
// _metadataKey_ is the Redis hash holding size, numHashes and the bitset key so
// the filter can be reopened with NewBloomFilterRedisFromKey
type BloomFilterRedis struct {
	AbstractBloomFilter
	client      redis.Cmdable
	filter      *bitset.BitSetRedis
	metadataKey string
}

// NewBloomFilterRedis creates and returns a new BloomFilterRedis
// _size_ and _numHashes_ must be positive as for NewBloomFilter
func NewBloomFilterRedis(ctx context.Context, client redis.Cmdable, size, numHashes uint) (*BloomFilterRedis, error) {
	abstractFilter, err := MakeAbstractBloomFilter(size, numHashes)
	if err != nil {
		return nil, err
	}
	filter, err := bitset.NewBitSetRedis(ctx, client, size)
	if err != nil {
		return nil, err
	}
	metadataKey := sketchkit.GenerateRandomString(16)
	metadata := map[string]interface{}{
		"size":      size,
		"numHashes": numHashes,
		"bitsetKey": filter.Key(),
	}
	err = client.HSet(ctx, metadataKey, metadata).Err()
	if err != nil {
		filter.Delete(ctx)
		return nil, fmt.Errorf("sketchkit: error while creating bloom filter redis, error: %w", err)
	}
	return &BloomFilterRedis{*abstractFilter, client, filter, metadataKey}, nil
}

// NewBloomFilterRedisWithParameters creates a BloomFilterRedis sized for
// _numItems_ items at the false positive rate _errorRate_
func NewBloomFilterRedisWithParameters(ctx context.Context, client redis.Cmdable, numItems uint, errorRate float64) (*BloomFilterRedis, error) {
	size, numHashes, err := planParameters(numItems, errorRate)
	if err != nil {
		return nil, err
	}
	return NewBloomFilterRedis(ctx, client, size, numHashes)
}

// NewBloomFilterRedisFromKey reopens a filter from the _metadataKey_ returned by MetadataKey
func NewBloomFilterRedisFromKey(ctx context.Context, client redis.Cmdable, metadataKey string) (*BloomFilterRedis, error) {
	values, err := client.HGetAll(ctx, metadataKey).Result()
	if err != nil {
		return nil, fmt.Errorf("sketchkit: error while fetching bloom filter metadata from redis, error: %w", err)
	}
	size, _ := strconv.ParseUint(values["size"], 10, 64)
	numHashes, _ := strconv.ParseUint(values["numHashes"], 10, 64)
	abstractFilter, err := MakeAbstractBloomFilter(uint(size), uint(numHashes))
	if err != nil {
		return nil, fmt.Errorf("sketchkit: no bloom filter at key %s: %w", metadataKey, err)
	}
	filter, err := bitset.FromRedisKey(ctx, client, values["bitsetKey"], uint(size))
	if err != nil {
		return nil, err
	}
	return &BloomFilterRedis{*abstractFilter, client, filter, metadataKey}, nil
}

// MetadataKey returns the Redis key holding the filter metadata
func (bloomFilter *BloomFilterRedis) MetadataKey() string {
	return bloomFilter.metadataKey
}

// Insert sets the bits of every probe of _item_ in one pipelined round trip
func (bloomFilter *BloomFilterRedis) Insert(ctx context.Context, item string) error {
	err := bloomFilter.filter.InsertMulti(ctx, bloomFilter.getIndexes(item))
	if err != nil {
		return fmt.Errorf("sketchkit: error inserting into bloom filter redis, error: %w", err)
	}
	return nil
}

// ProbablyContains returns true if the bits of all probes of _item_ are set
func (bloomFilter *BloomFilterRedis) ProbablyContains(ctx context.Context, item string) (bool, error) {
	ok, err := bloomFilter.filter.HasAll(ctx, bloomFilter.getIndexes(item))
	if err != nil {
		return false, fmt.Errorf("sketchkit: error querying bloom filter redis, error: %w", err)
	}
	return ok, nil
}

// BitCount returns the number of set bits
func (bloomFilter *BloomFilterRedis) BitCount(ctx context.Context) (uint, error) {
	return bloomFilter.filter.BitCount(ctx)
}

// EstimatedFalsePositiveRate returns the false positive rate implied by the
// current fill of the bitset
func (bloomFilter *BloomFilterRedis) EstimatedFalsePositiveRate(ctx context.Context) (float64, error) {
	count, err := bloomFilter.filter.BitCount(ctx)
	if err != nil {
		return 0, err
	}
	return bloomFilter.fillRate(count), nil
}

// Delete removes the bitset and the metadata from Redis
func (bloomFilter *BloomFilterRedis) Delete(ctx context.Context) error {
	if err := bloomFilter.filter.Delete(ctx); err != nil {
		return err
	}
	return bloomFilter.client.Del(ctx, bloomFilter.metadataKey).Err()
}
