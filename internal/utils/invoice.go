package utils

import (
	"crypto/rand"
	"io"
	"math/big"
	"time"
)

const orderNumberAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

var randReader io.Reader = rand.Reader

// GenerateOrderNumber returns ORD-YYYYMMDD-XXXXXX with a random suffix.
func GenerateOrderNumber(now time.Time) string {
	size := big.NewInt(int64(len(orderNumberAlphabet)))
	suffix := make([]byte, 6)
	for i := range suffix {
		n, err := rand.Int(randReader, size)
		if err != nil {
			// fallback: time-based entropy; unsigned so pre-epoch times stay in range
			n = new(big.Int).SetUint64((uint64(now.UnixNano()) >> (i * 5)) % uint64(len(orderNumberAlphabet)))
		}
		suffix[i] = orderNumberAlphabet[n.Int64()]
	}

	return "ORD-" + now.UTC().Format("20060102") + "-" + string(suffix)
}
