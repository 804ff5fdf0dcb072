package models

import (
	"time"

	"github.com/google/uuid"
)

// Entry represents one accepted admission into a lottery round.
// Position records insertion order and doubles as the candidate index
// for winner selection.
type Entry struct {
	ID        int64     `db:"id"`
	LotteryID uuid.UUID `db:"lottery_id"`
	Address   string    `db:"address"`
	Position  int       `db:"position"`
	Amount    int64     `db:"amount"`
	CreatedAt time.Time `db:"created_at"`
}

// EntryResult is returned to the caller after a successful entry.
type EntryResult struct {
	LotteryID  uuid.UUID
	Address    string
	Position   int
	EntryCount int
	Pool       int64
}
