package domain

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"

	"github.com/segmentio/ksuid"
)

// CalculateFileHash generates the SHA-256 fingerprint of a downloaded payload.
func CalculateFileHash(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashBytes is CalculateFileHash for an in-memory buffer.
func HashBytes(data []byte) string {
	// bytes.Reader never fails
	sum, _ := CalculateFileHash(bytes.NewReader(data))
	return sum
}

// NewDownloadID returns a KSUID, so IDs sort chronologically.
func NewDownloadID() string {
	return ksuid.New().String()
}
