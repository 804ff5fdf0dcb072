package testutil

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"raffler/models"

	"github.com/google/uuid"
)

// CreateTestLottery creates an open test round with default parameters
func CreateTestLottery(owner, admin string) *models.Lottery {
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i + 1)
	}
	sum := sha256.Sum256(seed)
	return &models.Lottery{
		ID:                 uuid.New(),
		OwnerAddress:       owner,
		AdminAddress:       admin,
		EntryFee:           1000,
		MaxEntries:         3,
		LotteryFeeDivisor:  25,
		PlatformFeeDivisor: 50,
		ServerSeed:         hex.EncodeToString(seed),
		SeedCommitment:     hex.EncodeToString(sum[:]),
		CreatedAt:          time.Now().UTC(),
	}
}

// CreateTestLotteryWithQuota creates a test round with a specific fee and quota
func CreateTestLotteryWithQuota(owner, admin string, entryFee int64, maxEntries int) *models.Lottery {
	lottery := CreateTestLottery(owner, admin)
	lottery.EntryFee = entryFee
	lottery.MaxEntries = maxEntries
	return lottery
}

// CreateTestEntry creates a test entry at the given position
func CreateTestEntry(lotteryID uuid.UUID, address string, position int, amount int64) *models.Entry {
	return &models.Entry{
		LotteryID: lotteryID,
		Address:   address,
		Position:  position,
		Amount:    amount,
	}
}
