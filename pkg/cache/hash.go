package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey builds a cache key of the form "stage:<sha256>" from the
// stage name and the inputs that distinguish the entry. Inputs are
// JSON-encoded before hashing so option structs and plain strings key
// identically regardless of field order in the caller.
func hashKey(stage string, inputs ...any) string {
	encoded, _ := json.Marshal(inputs)
	sum := sha256.Sum256(encoded)
	return fmt.Sprintf("%s:%s", stage, hex.EncodeToString(sum[:]))
}

// Hash returns the hex SHA-256 of data. The full 64-character digest
// is kept: cache keys double as content addresses for books and
// artifacts, and a truncated digest would reintroduce the collision
// risk the fingerprinting side already rules out.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
