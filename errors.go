/*
Package sketchkit holds the helpers shared by the probabilistic data structures in
the subpackages: sentinel errors, sizing formulas for Bloom filters, random Redis
keys and the Redis client bootstrap.

  - filters: Bloom filter (approximate membership), in-memory and Redis backed
  - count: HyperLogLog (approximate cardinality), in-memory and Redis backed
  - check: password uniqueness check on top of a Bloom filter
  - compare: exact vs HyperLogLog distinct counting over access logs
*/
package sketchkit

import "errors"

// ErrInvalidArgument is returned by constructors when a size, hash count or
// precision is out of range. No instance is created when it is returned.
var ErrInvalidArgument = errors.New("sketchkit: invalid argument")

// ErrTypeMismatch is reported for items that are not strings. The uniqueness
// check records it per item instead of aborting the batch.
var ErrTypeMismatch = errors.New("sketchkit: type mismatch")
