package util

import (
	"crypto/md5"
	"encoding/hex"

	"github.com/google/uuid"
)

// Md5ThenHex is a quick hasher
func Md5ThenHex(value []byte) string {
	hasher := md5.New()
	hasher.Write(value)
	return hex.EncodeToString(hasher.Sum(nil))
}

// ContentUUID derives a deterministic UUID from raw bytes. Two identical
// pixel buffers always hash to the same UUID, which is what the analyze
// tooling uses to spot duplicate decodes.
func ContentUUID(value []byte) string {
	hasher := md5.New()
	hasher.Write(value)
	hash := hasher.Sum(nil)
	id, err := uuid.FromBytes(hash[:16])
	if err != nil {
		return ""
	}
	return id.String()
}
