package bitset

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sketchkit/sketchkit"
)

// BitSetRedis is a fixed size bitset stored in Redis.
// _size_ is the number of bits in the bitset
// _key_ is the Redis key of the string holding the bits
// Bitsets or Bitmaps are implemented in Redis using strings.
// All bit operations are done on the string stored at _key_.
// For more details, please refer https://redis.io/docs/data-types/bitmaps/
type BitSetRedis struct {
	client redis.Cmdable
	size   uint
	key    string
}

// NewBitSetRedis creates a new BitSetRedis of size _size_ at a random key.
// The string is preallocated so Redis doesn't grow it on every SETBIT.
func NewBitSetRedis(ctx context.Context, client redis.Cmdable, size uint) (*BitSetRedis, error) {
	key := sketchkit.GenerateRandomString(16)
	bytes := make([]byte, (size+7)/8)
	err := client.Set(ctx, key, string(bytes), 0).Err()
	if err != nil {
		return nil, fmt.Errorf("sketchkit: error creating bitset in redis, error: %w", err)
	}
	return &BitSetRedis{client, size, key}, nil
}

// FromRedisKey attaches to an existing bitset of _size_ bits saved at Redis key _key_
func FromRedisKey(ctx context.Context, client redis.Cmdable, key string, size uint) (*BitSetRedis, error) {
	n, err := client.StrLen(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("sketchkit: error reading bitset at key %s, error: %w", key, err)
	}
	if uint(n)*8 < size {
		return nil, fmt.Errorf("%w: bitset at key %s holds %d bits, %d requested", sketchkit.ErrInvalidArgument, key, n*8, size)
	}
	return &BitSetRedis{client, size, key}, nil
}

// Size returns the size of the bitset saved in redis
func (bitSet *BitSetRedis) Size() uint {
	return bitSet.size
}

// Key gives the key at which the bitset is saved in redis
func (bitSet *BitSetRedis) Key() string {
	return bitSet.key
}

// Has checks if the bit at index _index_ is set
func (bitSet *BitSetRedis) Has(ctx context.Context, index uint) (bool, error) {
	val, err := bitSet.client.GetBit(ctx, bitSet.key, int64(index)).Result()
	if err != nil {
		return false, err
	}
	return val != 0, nil
}

// HasAll checks if the bits at every index in _indexes_ are set, in a single
// pipelined round trip
func (bitSet *BitSetRedis) HasAll(ctx context.Context, indexes []uint) (bool, error) {
	if len(indexes) == 0 {
		return false, fmt.Errorf("%w: at least 1 index is required", sketchkit.ErrInvalidArgument)
	}
	pipe := bitSet.client.Pipeline()
	values := make([]*redis.IntCmd, len(indexes))
	for i := range indexes {
		values[i] = pipe.GetBit(ctx, bitSet.key, int64(indexes[i]))
	}
	_, err := pipe.Exec(ctx)
	if err != nil {
		return false, err
	}
	for i := range values {
		if values[i].Val() == 0 {
			return false, nil
		}
	}
	return true, nil
}

// Insert sets the bit at index specified by _index_
func (bitSet *BitSetRedis) Insert(ctx context.Context, index uint) error {
	return bitSet.client.SetBit(ctx, bitSet.key, int64(index), 1).Err()
}

// InsertMulti sets the bits at the indices passed in _indexes_, pipelined
func (bitSet *BitSetRedis) InsertMulti(ctx context.Context, indexes []uint) error {
	if len(indexes) == 0 {
		return fmt.Errorf("%w: at least 1 index is required", sketchkit.ErrInvalidArgument)
	}
	pipe := bitSet.client.Pipeline()
	for i := range indexes {
		pipe.SetBit(ctx, bitSet.key, int64(indexes[i]), 1)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// BitCount returns the total number of set bits in the bitset
func (bitSet *BitSetRedis) BitCount(ctx context.Context) (uint, error) {
	bitRange := &redis.BitCount{Start: 0, End: -1}
	val, err := bitSet.client.BitCount(ctx, bitSet.key, bitRange).Result()
	if err != nil {
		return 0, err
	}
	return uint(val), nil
}

// Delete removes the bitset from Redis
func (bitSet *BitSetRedis) Delete(ctx context.Context) error {
	return bitSet.client.Del(ctx, bitSet.key).Err()
}
