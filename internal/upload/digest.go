package upload

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Digest returns the hex blake3-256 digest of a payload.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
