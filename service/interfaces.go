package service

import (
	"context"

	"raffler/events"
	"raffler/models"

	"github.com/google/uuid"
)

// Role identifies a capability granted on a lottery round
type Role string

const (
	RoleLotteryOwner  Role = "lottery_owner"
	RolePlatformAdmin Role = "platform_admin"
)

// AccessControl is the injected role provider consulted on every
// privileged operation. Grants are scoped per round.
type AccessControl interface {
	// HasRole reports whether the address holds the role on the round
	HasRole(ctx context.Context, lotteryID uuid.UUID, role Role, address string) (bool, error)

	// GrantRole assigns the role to the address on the round
	GrantRole(ctx context.Context, lotteryID uuid.UUID, role Role, address string) error
}

// PauseControl is the injected pause-flag provider consulted on every
// state-mutating operation
type PauseControl interface {
	// IsPaused reports whether the round is currently paused
	IsPaused(ctx context.Context, lotteryID uuid.UUID) (bool, error)

	// SetPaused flips the pause flag for the round
	SetPaused(ctx context.Context, lotteryID uuid.UUID, paused bool) error
}

// DrawSelector picks the winning entry index from the committed seed.
// Implementations must be deterministic for a given seed so the draw is
// verifiable after the seed is revealed.
type DrawSelector interface {
	// Pick returns an index in [0, entryCount)
	Pick(serverSeed []byte, lotteryID uuid.UUID, entryCount int) (int, error)
}

// LotteryRepository defines the interface for lottery round data access
type LotteryRepository interface {
	// Create persists a new lottery round
	Create(ctx context.Context, lottery *models.Lottery) error

	// GetByID retrieves a round by its ID, nil if absent
	GetByID(ctx context.Context, id uuid.UUID) (*models.Lottery, error)

	// GetByIDForUpdate retrieves a round with a row lock
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Lottery, error)

	// RecordEntry adds an accepted fee to the pool and bumps the entry count
	RecordEntry(ctx context.Context, id uuid.UUID, fee int64) error

	// MarkDrawn finalizes the draw exactly once
	MarkDrawn(ctx context.Context, id uuid.UUID, winner string, winnings int64) error

	// GetAll returns all rounds, newest first
	GetAll(ctx context.Context) ([]*models.Lottery, error)
}

// EntryRepository defines the interface for entry data access
type EntryRepository interface {
	// Create persists an accepted entry
	Create(ctx context.Context, entry *models.Entry) error

	// GetByAddress returns the entry for an address, nil if absent
	GetByAddress(ctx context.Context, lotteryID uuid.UUID, address string) (*models.Entry, error)

	// ListByLottery returns all entries in insertion order
	ListByLottery(ctx context.Context, lotteryID uuid.UUID) ([]*models.Entry, error)

	// CountByLottery returns the number of accepted entries
	CountByLottery(ctx context.Context, lotteryID uuid.UUID) (int, error)
}

// WithdrawalRepository defines the interface for pending-withdrawal data access
type WithdrawalRepository interface {
	// Credit adds to an address's pending balance, accumulating on collision
	Credit(ctx context.Context, lotteryID uuid.UUID, address string, amount int64) error

	// GetByAddress returns the pending withdrawal for an address, nil if absent
	GetByAddress(ctx context.Context, lotteryID uuid.UUID, address string) (*models.PendingWithdrawal, error)

	// MarkWithdrawn zeroes a positive pending balance
	MarkWithdrawn(ctx context.Context, lotteryID uuid.UUID, address string) error

	// TotalOutstanding sums all unpaid pending balances for a round
	TotalOutstanding(ctx context.Context, lotteryID uuid.UUID) (int64, error)

	// ListByLottery returns all pending withdrawals of a round
	ListByLottery(ctx context.Context, lotteryID uuid.UUID) ([]*models.PendingWithdrawal, error)
}

// AccountRepository is the ledger collaborator: credit/debit semantics
// over per-address balances
type AccountRepository interface {
	// GetByAddress retrieves an account, nil if absent
	GetByAddress(ctx context.Context, address string) (*models.Account, error)

	// GetBalance returns the balance of an address, zero if absent
	GetBalance(ctx context.Context, address string) (int64, error)

	// AddBalance credits an address
	AddBalance(ctx context.Context, address string, amount int64) error

	// DeductBalance debits an address, failing on insufficient balance
	DeductBalance(ctx context.Context, address string, amount int64) error

	// Transfer moves value between two addresses
	Transfer(ctx context.Context, from, to string, amount int64) error
}

// LotteryService defines the escrow state machine operations
type LotteryService interface {
	// CreateLottery opens a new round with the given immutable parameters
	CreateLottery(ctx context.Context, params models.LotteryParams) (*models.Lottery, error)

	// Enter admits an address that supplies exactly the entry fee
	Enter(ctx context.Context, lotteryID uuid.UUID, address string, amount int64) (*models.EntryResult, error)

	// DrawWinner settles a full round: selects the winner and splits the
	// pool into pending withdrawals
	DrawWinner(ctx context.Context, lotteryID uuid.UUID, caller string) (*models.DrawResult, error)

	// Withdraw pays out the caller's accrued pending balance
	Withdraw(ctx context.Context, lotteryID uuid.UUID, caller string) (*models.WithdrawalResult, error)

	// WithdrawBalance sweeps the escrow's residual balance, net of
	// outstanding pending withdrawals, to the platform admin
	WithdrawBalance(ctx context.Context, lotteryID uuid.UUID, caller string) (*models.WithdrawalResult, error)

	// CheckBalance returns the total value held by the round's escrow account
	CheckBalance(ctx context.Context, lotteryID uuid.UUID, caller string) (int64, error)

	// Pause suspends enter, draw, and withdraw for the round
	Pause(ctx context.Context, lotteryID uuid.UUID, caller string) error

	// Unpause resumes the round
	Unpause(ctx context.Context, lotteryID uuid.UUID, caller string) error

	// Deposit records an unsolicited value receipt into the escrow account
	Deposit(ctx context.Context, lotteryID uuid.UUID, sender string, amount int64) error

	// GetLottery returns a round by ID
	GetLottery(ctx context.Context, lotteryID uuid.UUID) (*models.Lottery, error)

	// GetPendingWithdrawal returns an address's unpaid pending amount
	GetPendingWithdrawal(ctx context.Context, lotteryID uuid.UUID, address string) (int64, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	LotteryRepository() LotteryRepository
	EntryRepository() EntryRepository
	WithdrawalRepository() WithdrawalRepository
	AccountRepository() AccountRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}
