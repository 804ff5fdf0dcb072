package repository

import (
	"context"
	"fmt"

	"raffler/database"
	"raffler/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// EntryRepository implements the EntryRepository interface
type EntryRepository struct {
	q queryable
}

// NewEntryRepository creates a new entry repository
func NewEntryRepository(db *database.DB) *EntryRepository {
	return &EntryRepository{q: db.Pool}
}

// newEntryRepositoryWithTx creates a new entry repository with a transaction
func newEntryRepositoryWithTx(tx queryable) *EntryRepository {
	return &EntryRepository{q: tx}
}

// Create persists an accepted entry at the next position in the round
func (r *EntryRepository) Create(ctx context.Context, entry *models.Entry) error {
	query := `
		INSERT INTO entries (lottery_id, address, position, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		entry.LotteryID,
		entry.Address,
		entry.Position,
		entry.Amount,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create entry for %s in lottery %s: %w", entry.Address, entry.LotteryID, err)
	}

	return nil
}

// GetByAddress returns the entry for an address in a round, or nil if the
// address has not entered.
func (r *EntryRepository) GetByAddress(ctx context.Context, lotteryID uuid.UUID, address string) (*models.Entry, error) {
	query := `
		SELECT id, lottery_id, address, position, amount, created_at
		FROM entries
		WHERE lottery_id = $1 AND address = $2
	`

	var entry models.Entry
	err := r.q.QueryRow(ctx, query, lotteryID, address).Scan(
		&entry.ID,
		&entry.LotteryID,
		&entry.Address,
		&entry.Position,
		&entry.Amount,
		&entry.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry for %s in lottery %s: %w", address, lotteryID, err)
	}

	return &entry, nil
}

// ListByLottery returns all entries of a round in insertion order. This
// ordering is the candidate pool for winner selection.
func (r *EntryRepository) ListByLottery(ctx context.Context, lotteryID uuid.UUID) ([]*models.Entry, error) {
	query := `
		SELECT id, lottery_id, address, position, amount, created_at
		FROM entries
		WHERE lottery_id = $1
		ORDER BY position ASC
	`

	rows, err := r.q.Query(ctx, query, lotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries for lottery %s: %w", lotteryID, err)
	}
	defer rows.Close()

	var entries []*models.Entry
	for rows.Next() {
		var entry models.Entry
		err := rows.Scan(
			&entry.ID,
			&entry.LotteryID,
			&entry.Address,
			&entry.Position,
			&entry.Amount,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}

	return entries, nil
}

// CountByLottery returns the number of accepted entries in a round
func (r *EntryRepository) CountByLottery(ctx context.Context, lotteryID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM entries WHERE lottery_id = $1`

	var count int
	if err := r.q.QueryRow(ctx, query, lotteryID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count entries for lottery %s: %w", lotteryID, err)
	}

	return count, nil
}
