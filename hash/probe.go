package hash

import (
	"crypto/sha256"
	"encoding/binary"
	"math/bits"
	"strconv"
)

// ProbeIndex returns the bit index for probe number _probe_ of _item_ in a
// filter of _size_ bits: SHA-256 of "item:probe", read as a 256 bit big-endian
// integer, modulo size. size must be positive.
func ProbeIndex(item string, probe, size uint64) uint64 {
	buf := make([]byte, 0, len(item)+21)
	buf = append(buf, item...)
	buf = append(buf, ':')
	buf = strconv.AppendUint(buf, probe, 10)
	digest := sha256.Sum256(buf)
	return modBigEndian(digest[:], size)
}

// modBigEndian reduces a big-endian integer of whole 64 bit words modulo m
// using Horner's rule on base 2^64. rem < m always holds so Div64 cannot panic.
func modBigEndian(b []byte, m uint64) uint64 {
	var rem uint64
	for i := 0; i+8 <= len(b); i += 8 {
		_, rem = bits.Div64(rem, binary.BigEndian.Uint64(b[i:]), m)
	}
	return rem
}
