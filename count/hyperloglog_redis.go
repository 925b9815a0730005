package count

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/sketchkit/sketchkit"
)

// insertBatchSize bounds the number of scripts queued per pipeline in InsertMany
const insertBatchSize = 1000

// updateRegister keeps the max of the stored and the new rank for one register.
// The registers are a string of m bytes, one byte per register.
var updateRegister = redis.NewScript(`
	local key = KEYS[1]
	local index = ARGV[1]
	local rank = tonumber(ARGV[2])
	local current = redis.call('GETRANGE', key, index, index)
	if current == '' or string.byte(current) < rank then
		redis.call('SETRANGE', key, index, string.char(rank))
		return 1
	end
	return 0
`)

// HyperLogLogRedis is the Redis backed estimator
// _key_ holds the Redis key to the string which has the registers
// _metadataKey_ is used to store the additional information about HyperLogLogRedis
// for retrieving the estimator by the Redis key
type HyperLogLogRedis struct {
	AbstractHyperLogLog
	client      redis.Cmdable
	key         string
	metadataKey string
}

// NewHyperLogLogRedis creates new HyperLogLogRedis with 2^_precision_ registers
func NewHyperLogLogRedis(ctx context.Context, client redis.Cmdable, precision uint8, opts ...Option) (*HyperLogLogRedis, error) {
	abstractLog, err := MakeAbstractHyperLogLog(precision, opts...)
	if err != nil {
		return nil, err
	}
	h := &HyperLogLogRedis{
		AbstractHyperLogLog: *abstractLog,
		client:              client,
		key:                 sketchkit.GenerateRandomString(16),
		metadataKey:         sketchkit.GenerateRandomString(16),
	}
	metadata := map[string]interface{}{
		"precision": h.precision,
		"key":       h.key,
	}
	err = client.HSet(ctx, h.metadataKey, metadata).Err()
	if err != nil {
		return nil, fmt.Errorf("sketchkit: error creating hyperloglog redis, error: %w", err)
	}
	err = client.Set(ctx, h.key, string(make([]byte, h.numRegisters)), 0).Err()
	if err != nil {
		client.Del(ctx, h.metadataKey)
		return nil, fmt.Errorf("sketchkit: error initializing hyperloglog registers in redis, error: %w", err)
	}
	return h, nil
}

// NewHyperLogLogRedisFromKey reopens an estimator from the _metadataKey_ returned
// by MetadataKey. The hasher isn't stored, pass the same options as at creation.
func NewHyperLogLogRedisFromKey(ctx context.Context, client redis.Cmdable, metadataKey string, opts ...Option) (*HyperLogLogRedis, error) {
	values, err := client.HGetAll(ctx, metadataKey).Result()
	if err != nil {
		return nil, fmt.Errorf("sketchkit: error creating hyperloglog from redis key, error: %w", err)
	}
	precision, _ := strconv.Atoi(values["precision"])
	if precision < 0 || precision > math.MaxUint8 {
		precision = 0
	}
	abstractLog, err := MakeAbstractHyperLogLog(uint8(precision), opts...)
	if err != nil {
		return nil, fmt.Errorf("sketchkit: no hyperloglog at key %s: %w", metadataKey, err)
	}
	return &HyperLogLogRedis{*abstractLog, client, values["key"], metadataKey}, nil
}

// MetadataKey returns the metadataKey
func (h *HyperLogLogRedis) MetadataKey() string {
	return h.metadataKey
}

// Insert adds _item_ to the estimator. The register update is atomic in Redis.
func (h *HyperLogLogRedis) Insert(ctx context.Context, item string) error {
	registerIndex, rank := h.getRegisterIndexAndRank([]byte(item))
	err := updateRegister.Run(ctx, h.client, []string{h.key}, registerIndex, rank).Err()
	if err != nil {
		return fmt.Errorf("sketchkit: error while updating hyperloglog registers in redis, error: %w", err)
	}
	return nil
}

// InsertMany adds every item of _items_, pipelining the register updates
func (h *HyperLogLogRedis) InsertMany(ctx context.Context, items []string) error {
	err := updateRegister.Load(ctx, h.client).Err()
	if err != nil {
		return fmt.Errorf("sketchkit: error loading hyperloglog script, error: %w", err)
	}
	for start := 0; start < len(items); start += insertBatchSize {
		end := min(start+insertBatchSize, len(items))
		pipe := h.client.Pipeline()
		for _, item := range items[start:end] {
			registerIndex, rank := h.getRegisterIndexAndRank([]byte(item))
			pipe.EvalSha(ctx, updateRegister.Hash(), []string{h.key}, registerIndex, rank)
		}
		_, err = pipe.Exec(ctx)
		if err != nil {
			return fmt.Errorf("sketchkit: error while updating hyperloglog registers in redis, error: %w", err)
		}
	}
	return nil
}

// Registers returns the registers as stored in Redis
func (h *HyperLogLogRedis) Registers(ctx context.Context) ([]uint8, error) {
	registers, err := h.client.Get(ctx, h.key).Bytes()
	if err != nil {
		return nil, fmt.Errorf("sketchkit: error fetching registers from redis, error: %w", err)
	}
	if uint64(len(registers)) != h.numRegisters {
		return nil, fmt.Errorf("sketchkit: expected %d registers at key %s, found %d", h.numRegisters, h.key, len(registers))
	}
	return registers, nil
}

// Estimate returns the approximate number of distinct items inserted so far
func (h *HyperLogLogRedis) Estimate(ctx context.Context) (float64, error) {
	registers, err := h.Registers(ctx)
	if err != nil {
		return 0, err
	}
	return h.estimate(registers), nil
}

// Count returns Estimate rounded to the nearest integer
func (h *HyperLogLogRedis) Count(ctx context.Context) (uint64, error) {
	estimation, err := h.Estimate(ctx)
	if err != nil {
		return 0, err
	}
	return uint64(math.Round(estimation)), nil
}

// Delete removes the registers and the metadata from Redis
func (h *HyperLogLogRedis) Delete(ctx context.Context) error {
	return h.client.Del(ctx, h.key, h.metadataKey).Err()
}
