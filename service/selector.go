package service

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// GenerateServerSeed produces a random 32-byte server seed and its
// SHA-256 commitment, both hex encoded. The commitment is published at
// round creation; the seed stays secret until the draw reveals it, at
// which point anyone can recompute the winning index.
func GenerateServerSeed() (seed string, commitment string, err error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("failed to generate server seed: %w", err)
	}

	sum := sha256.Sum256(raw)
	return hex.EncodeToString(raw), hex.EncodeToString(sum[:]), nil
}

// hmacSelector picks the winning index by keying HMAC-SHA256 with the
// committed server seed over the round ID and entry count, reducing the
// first 8 bytes of the digest modulo the entry count. Deterministic for
// a given seed, so the draw is verifiable after the reveal.
type hmacSelector struct{}

// NewDrawSelector creates the default seeded draw selector
func NewDrawSelector() DrawSelector {
	return &hmacSelector{}
}

func (s *hmacSelector) Pick(serverSeed []byte, lotteryID uuid.UUID, entryCount int) (int, error) {
	if len(serverSeed) == 0 {
		return 0, fmt.Errorf("server seed must not be empty")
	}
	if entryCount <= 0 {
		return 0, fmt.Errorf("entry count must be positive, got %d", entryCount)
	}

	var count [8]byte
	binary.BigEndian.PutUint64(count[:], uint64(entryCount))

	mac := hmac.New(sha256.New, serverSeed)
	mac.Write(lotteryID[:])
	mac.Write(count[:])
	digest := mac.Sum(nil)

	n := binary.BigEndian.Uint64(digest[:8])
	return int(n % uint64(entryCount)), nil
}
