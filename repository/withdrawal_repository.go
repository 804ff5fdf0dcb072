package repository

import (
	"context"
	"fmt"

	"raffler/database"
	"raffler/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WithdrawalRepository implements the WithdrawalRepository interface
type WithdrawalRepository struct {
	q queryable
}

// NewWithdrawalRepository creates a new withdrawal repository
func NewWithdrawalRepository(db *database.DB) *WithdrawalRepository {
	return &WithdrawalRepository{q: db.Pool}
}

// newWithdrawalRepositoryWithTx creates a new withdrawal repository with a transaction
func newWithdrawalRepositoryWithTx(tx queryable) *WithdrawalRepository {
	return &WithdrawalRepository{q: tx}
}

// Credit adds an amount to an address's pending balance for a round.
// Amounts accumulate when the same address is credited twice, which
// happens when the winner is also the owner or the admin, so the sum of
// all pending balances always equals the distributed pool.
func (r *WithdrawalRepository) Credit(ctx context.Context, lotteryID uuid.UUID, address string, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("credit amount must not be negative, got %d", amount)
	}

	query := `
		INSERT INTO pending_withdrawals (lottery_id, address, amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (lottery_id, address)
		DO UPDATE SET amount = pending_withdrawals.amount + EXCLUDED.amount, withdrawn_at = NULL
	`

	if _, err := r.q.Exec(ctx, query, lotteryID, address, amount); err != nil {
		return fmt.Errorf("failed to credit %s in lottery %s: %w", address, lotteryID, err)
	}

	return nil
}

// GetByAddress returns the pending withdrawal for an address in a round,
// or nil if the address has never been credited.
func (r *WithdrawalRepository) GetByAddress(ctx context.Context, lotteryID uuid.UUID, address string) (*models.PendingWithdrawal, error) {
	query := `
		SELECT id, lottery_id, address, amount, created_at, withdrawn_at
		FROM pending_withdrawals
		WHERE lottery_id = $1 AND address = $2
	`

	var pw models.PendingWithdrawal
	err := r.q.QueryRow(ctx, query, lotteryID, address).Scan(
		&pw.ID,
		&pw.LotteryID,
		&pw.Address,
		&pw.Amount,
		&pw.CreatedAt,
		&pw.WithdrawnAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending withdrawal for %s in lottery %s: %w", address, lotteryID, err)
	}

	return &pw, nil
}

// MarkWithdrawn zeroes a positive pending balance and stamps the
// withdrawal time. The guard on amount > 0 makes a concurrent second
// withdrawal lose the race instead of paying twice.
func (r *WithdrawalRepository) MarkWithdrawn(ctx context.Context, lotteryID uuid.UUID, address string) error {
	query := `
		UPDATE pending_withdrawals
		SET amount = 0, withdrawn_at = NOW()
		WHERE lottery_id = $1 AND address = $2 AND amount > 0
	`

	result, err := r.q.Exec(ctx, query, lotteryID, address)
	if err != nil {
		return fmt.Errorf("failed to mark withdrawal for %s in lottery %s: %w", address, lotteryID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: no positive pending balance for %s in lottery %s", models.ErrNothingToWithdraw, address, lotteryID)
	}

	return nil
}

// TotalOutstanding returns the sum of all unpaid pending balances for a round
func (r *WithdrawalRepository) TotalOutstanding(ctx context.Context, lotteryID uuid.UUID) (int64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM pending_withdrawals
		WHERE lottery_id = $1
	`

	var total int64
	if err := r.q.QueryRow(ctx, query, lotteryID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum outstanding withdrawals for lottery %s: %w", lotteryID, err)
	}

	return total, nil
}

// ListByLottery returns all pending withdrawals of a round
func (r *WithdrawalRepository) ListByLottery(ctx context.Context, lotteryID uuid.UUID) ([]*models.PendingWithdrawal, error) {
	query := `
		SELECT id, lottery_id, address, amount, created_at, withdrawn_at
		FROM pending_withdrawals
		WHERE lottery_id = $1
		ORDER BY id ASC
	`

	rows, err := r.q.Query(ctx, query, lotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending withdrawals for lottery %s: %w", lotteryID, err)
	}
	defer rows.Close()

	var withdrawals []*models.PendingWithdrawal
	for rows.Next() {
		var pw models.PendingWithdrawal
		err := rows.Scan(
			&pw.ID,
			&pw.LotteryID,
			&pw.Address,
			&pw.Amount,
			&pw.CreatedAt,
			&pw.WithdrawnAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pending withdrawal: %w", err)
		}
		withdrawals = append(withdrawals, &pw)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending withdrawals: %w", err)
	}

	return withdrawals, nil
}
