package repository

import (
	"context"
	"fmt"

	"raffler/database"
	"raffler/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LotteryRepository implements the LotteryRepository interface
type LotteryRepository struct {
	q queryable
}

// NewLotteryRepository creates a new lottery repository
func NewLotteryRepository(db *database.DB) *LotteryRepository {
	return &LotteryRepository{q: db.Pool}
}

// newLotteryRepositoryWithTx creates a new lottery repository with a transaction
func newLotteryRepositoryWithTx(tx queryable) *LotteryRepository {
	return &LotteryRepository{q: tx}
}

const lotteryColumns = `
	id, owner_address, admin_address, entry_fee, max_entries,
	lottery_fee_divisor, platform_fee_divisor, pool, entry_count,
	drawn, winner_address, winnings, server_seed, seed_commitment,
	created_at, drawn_at
`

func scanLottery(row pgx.Row) (*models.Lottery, error) {
	var l models.Lottery
	err := row.Scan(
		&l.ID,
		&l.OwnerAddress,
		&l.AdminAddress,
		&l.EntryFee,
		&l.MaxEntries,
		&l.LotteryFeeDivisor,
		&l.PlatformFeeDivisor,
		&l.Pool,
		&l.EntryCount,
		&l.Drawn,
		&l.WinnerAddress,
		&l.Winnings,
		&l.ServerSeed,
		&l.SeedCommitment,
		&l.CreatedAt,
		&l.DrawnAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create persists a new lottery round
func (r *LotteryRepository) Create(ctx context.Context, lottery *models.Lottery) error {
	query := `
		INSERT INTO lotteries (
			id, owner_address, admin_address, entry_fee, max_entries,
			lottery_fee_divisor, platform_fee_divisor, server_seed, seed_commitment
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING pool, entry_count, drawn, created_at
	`

	err := r.q.QueryRow(ctx, query,
		lottery.ID,
		lottery.OwnerAddress,
		lottery.AdminAddress,
		lottery.EntryFee,
		lottery.MaxEntries,
		lottery.LotteryFeeDivisor,
		lottery.PlatformFeeDivisor,
		lottery.ServerSeed,
		lottery.SeedCommitment,
	).Scan(&lottery.Pool, &lottery.EntryCount, &lottery.Drawn, &lottery.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create lottery %s: %w", lottery.ID, err)
	}

	return nil
}

// GetByID retrieves a lottery round by its ID
func (r *LotteryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Lottery, error) {
	query := `SELECT ` + lotteryColumns + ` FROM lotteries WHERE id = $1`

	lottery, err := scanLottery(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery %s: %w", id, err)
	}

	return lottery, nil
}

// GetByIDForUpdate retrieves a lottery round with a row lock, serializing
// concurrent mutating operations on the same round at the database level.
func (r *LotteryRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Lottery, error) {
	query := `SELECT ` + lotteryColumns + ` FROM lotteries WHERE id = $1 FOR UPDATE`

	lottery, err := scanLottery(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock lottery %s: %w", id, err)
	}

	return lottery, nil
}

// RecordEntry atomically adds an accepted entry fee to the pool and bumps
// the entry count, guarded by the quota so a stale read can never
// overfill the round.
func (r *LotteryRepository) RecordEntry(ctx context.Context, id uuid.UUID, fee int64) error {
	query := `
		UPDATE lotteries
		SET pool = pool + $1, entry_count = entry_count + 1
		WHERE id = $2 AND NOT drawn AND entry_count < max_entries
	`

	result, err := r.q.Exec(ctx, query, fee, id)
	if err != nil {
		return fmt.Errorf("failed to record entry for lottery %s: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: lottery %s cannot accept entries", models.ErrEntriesFull, id)
	}

	return nil
}

// MarkDrawn finalizes the draw: zeroes the pool, stores the winner and
// winnings, and flips the drawn flag exactly once.
func (r *LotteryRepository) MarkDrawn(ctx context.Context, id uuid.UUID, winner string, winnings int64) error {
	query := `
		UPDATE lotteries
		SET drawn = TRUE, pool = 0, winner_address = $1, winnings = $2, drawn_at = NOW()
		WHERE id = $3 AND NOT drawn
	`

	result, err := r.q.Exec(ctx, query, winner, winnings, id)
	if err != nil {
		return fmt.Errorf("failed to mark lottery %s drawn: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: lottery %s", models.ErrAlreadyDrawn, id)
	}

	return nil
}

// GetAll returns all lottery rounds, newest first
func (r *LotteryRepository) GetAll(ctx context.Context) ([]*models.Lottery, error) {
	query := `SELECT ` + lotteryColumns + ` FROM lotteries ORDER BY created_at DESC`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get lotteries: %w", err)
	}
	defer rows.Close()

	var lotteries []*models.Lottery
	for rows.Next() {
		lottery, err := scanLottery(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lottery: %w", err)
		}
		lotteries = append(lotteries, lottery)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lotteries: %w", err)
	}

	return lotteries, nil
}
