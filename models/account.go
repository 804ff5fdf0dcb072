package models

import (
	"time"
)

// Account represents a ledger account holding value in the smallest
// unit. Participants, payees, and each lottery's escrow all map to one
// account row keyed by address.
type Account struct {
	Address   string    `db:"address"`
	Balance   int64     `db:"balance"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
