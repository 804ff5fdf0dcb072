package repository

import (
	"context"
	"fmt"

	"raffler/database"
	"raffler/models"

	"github.com/jackc/pgx/v5"
)

// AccountRepository implements the ledger over the accounts table:
// credit/debit semantics with a non-negative balance constraint.
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository with a transaction
func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

// GetByAddress retrieves an account by address, or nil if none exists
func (r *AccountRepository) GetByAddress(ctx context.Context, address string) (*models.Account, error) {
	query := `
		SELECT address, balance, created_at, updated_at
		FROM accounts
		WHERE address = $1
	`

	var account models.Account
	err := r.q.QueryRow(ctx, query, address).Scan(
		&account.Address,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", address, err)
	}

	return &account, nil
}

// GetBalance returns the balance of an address. An address with no
// account row holds zero.
func (r *AccountRepository) GetBalance(ctx context.Context, address string) (int64, error) {
	query := `SELECT COALESCE((SELECT balance FROM accounts WHERE address = $1), 0)`

	var balance int64
	if err := r.q.QueryRow(ctx, query, address).Scan(&balance); err != nil {
		return 0, fmt.Errorf("failed to get balance for %s: %w", address, err)
	}

	return balance, nil
}

// AddBalance credits an address, creating the account row on first use
func (r *AccountRepository) AddBalance(ctx context.Context, address string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		INSERT INTO accounts (address, balance)
		VALUES ($1, $2)
		ON CONFLICT (address)
		DO UPDATE SET balance = accounts.balance + EXCLUDED.balance, updated_at = NOW()
	`

	if _, err := r.q.Exec(ctx, query, address, amount); err != nil {
		return fmt.Errorf("failed to add balance for %s: %w", address, err)
	}

	return nil
}

// DeductBalance debits an address atomically, failing if the balance is
// insufficient
func (r *AccountRepository) DeductBalance(ctx context.Context, address string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE accounts
		SET balance = balance - $1, updated_at = NOW()
		WHERE address = $2 AND balance >= $1
	`

	result, err := r.q.Exec(ctx, query, amount, address)
	if err != nil {
		return fmt.Errorf("failed to deduct balance for %s: %w", address, err)
	}

	if result.RowsAffected() == 0 {
		balance, err := r.GetBalance(ctx, address)
		if err != nil {
			return fmt.Errorf("failed to check account %s: %w", address, err)
		}
		return fmt.Errorf("%w: insufficient balance for %s: have %d, need %d",
			models.ErrTransferFailed, address, balance, amount)
	}

	return nil
}

// Transfer moves value between two addresses. The debit side enforces
// sufficiency, so a failed transfer leaves both accounts untouched when
// run inside a transaction.
func (r *AccountRepository) Transfer(ctx context.Context, from, to string, amount int64) error {
	if err := r.DeductBalance(ctx, from, amount); err != nil {
		return err
	}
	if err := r.AddBalance(ctx, to, amount); err != nil {
		return err
	}
	return nil
}
