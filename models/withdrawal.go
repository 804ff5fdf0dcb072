package models

import (
	"time"

	"github.com/google/uuid"
)

// PendingWithdrawal is an amount credited to an address by a draw but
// not yet transferred. Withdrawing zeroes Amount and stamps WithdrawnAt.
type PendingWithdrawal struct {
	ID          int64      `db:"id"`
	LotteryID   uuid.UUID  `db:"lottery_id"`
	Address     string     `db:"address"`
	Amount      int64      `db:"amount"`
	CreatedAt   time.Time  `db:"created_at"`
	WithdrawnAt *time.Time `db:"withdrawn_at"`
}

// DrawResult is returned to the caller after a successful draw.
type DrawResult struct {
	LotteryID     uuid.UUID
	WinnerAddress string
	WinnerIndex   int
	Winnings      int64
	OwnerFee      int64
	PlatformFee   int64
	ServerSeed    string
}

// WithdrawalResult is returned to the caller after a successful withdrawal.
type WithdrawalResult struct {
	LotteryID uuid.UUID
	Payee     string
	Amount    int64
}
