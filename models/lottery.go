package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Lottery represents a single escrow round: a fixed quota of fixed-fee
// entries, one draw, and pull-based withdrawals for the three payees.
type Lottery struct {
	ID                 uuid.UUID  `db:"id"`
	OwnerAddress       string     `db:"owner_address"`
	AdminAddress       string     `db:"admin_address"`
	EntryFee           int64      `db:"entry_fee"`
	MaxEntries         int        `db:"max_entries"`
	LotteryFeeDivisor  int64      `db:"lottery_fee_divisor"`
	PlatformFeeDivisor int64      `db:"platform_fee_divisor"`
	Pool               int64      `db:"pool"`
	EntryCount         int        `db:"entry_count"`
	Drawn              bool       `db:"drawn"`
	WinnerAddress      *string    `db:"winner_address"`
	Winnings           *int64     `db:"winnings"`
	ServerSeed         string     `db:"server_seed"`     // hex, revealed once the draw completes
	SeedCommitment     string     `db:"seed_commitment"` // hex SHA-256 of the seed, public from creation
	CreatedAt          time.Time  `db:"created_at"`
	DrawnAt            *time.Time `db:"drawn_at"`
}

// LotteryParams holds the immutable construction parameters of a round.
type LotteryParams struct {
	OwnerAddress       string
	AdminAddress       string
	EntryFee           int64
	MaxEntries         int
	LotteryFeeDivisor  int64
	PlatformFeeDivisor int64
}

// Validate checks all construction parameters. A zero divisor would turn
// fee computation into a division by zero, so it is rejected here.
func (p LotteryParams) Validate() error {
	if p.OwnerAddress == "" {
		return fmt.Errorf("%w: owner address is required", ErrInvalidParameter)
	}
	if p.AdminAddress == "" {
		return fmt.Errorf("%w: admin address is required", ErrInvalidParameter)
	}
	if p.EntryFee <= 0 {
		return fmt.Errorf("%w: entry fee must be positive, got %d", ErrInvalidParameter, p.EntryFee)
	}
	if p.MaxEntries <= 0 {
		return fmt.Errorf("%w: max entries must be positive, got %d", ErrInvalidParameter, p.MaxEntries)
	}
	if p.LotteryFeeDivisor <= 0 {
		return fmt.Errorf("%w: lottery fee divisor must be positive, got %d", ErrInvalidParameter, p.LotteryFeeDivisor)
	}
	if p.PlatformFeeDivisor <= 0 {
		return fmt.Errorf("%w: platform fee divisor must be positive, got %d", ErrInvalidParameter, p.PlatformFeeDivisor)
	}
	return nil
}

// Settlement is the three-way split of the pool produced by a draw.
type Settlement struct {
	OwnerFee    int64
	PlatformFee int64
	Winnings    int64
}

// Total returns the sum of all three shares. For any valid settlement
// this equals the pre-draw pool exactly.
func (s Settlement) Total() int64 {
	return s.OwnerFee + s.PlatformFee + s.Winnings
}

// SettlePool splits the current pool between the lottery owner, the
// platform admin, and the winner. Fees use floor division in sequence:
// the owner fee comes off the full pool, the platform fee off the
// already-reduced pool, and the winner takes whatever remains, so
// integer-division remainders accrue to the winner rather than the fees.
func (l *Lottery) SettlePool() Settlement {
	pool := l.Pool
	ownerFee := pool / l.LotteryFeeDivisor
	pool -= ownerFee
	platformFee := pool / l.PlatformFeeDivisor
	pool -= platformFee
	return Settlement{
		OwnerFee:    ownerFee,
		PlatformFee: platformFee,
		Winnings:    pool,
	}
}

// IsFull returns true once the entry quota has been reached.
func (l *Lottery) IsFull() bool {
	return l.EntryCount >= l.MaxEntries
}

// CanAcceptEntries returns true while the round is open for entries.
func (l *Lottery) CanAcceptEntries() bool {
	return !l.Drawn && !l.IsFull()
}

// EscrowAddress returns the ledger account that holds the round's funds.
func (l *Lottery) EscrowAddress() string {
	return "lottery:" + l.ID.String()
}

// Complete marks the round as drawn with the selected winner and payout.
func (l *Lottery) Complete(winner string, winnings int64) {
	l.Drawn = true
	l.WinnerAddress = &winner
	l.Winnings = &winnings
	l.Pool = 0
	now := time.Now().UTC()
	l.DrawnAt = &now
}
