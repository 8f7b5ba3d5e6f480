package repository

import (
	"crypto/sha256"
	"encoding/hex"
)

// cacheKey hashes a request URL into a fixed-size key
func cacheKey(requestURL string) string {
	sum := sha256.Sum256([]byte(requestURL))
	return hex.EncodeToString(sum[:])
}
