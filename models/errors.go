package models

import "errors"

// Sentinel errors for every way an escrow operation can be rejected.
// Service methods wrap these with context; callers match with errors.Is.
var (
	ErrAlreadyEntered      = errors.New("address has already entered")
	ErrIncorrectFee        = errors.New("supplied value does not match the entry fee")
	ErrEntriesFull         = errors.New("entry quota reached")
	ErrInsufficientEntries = errors.New("not enough entries to draw a winner")
	ErrNotAuthorized       = errors.New("caller is not authorized")
	ErrAlreadyDrawn        = errors.New("winner has already been drawn")
	ErrNotYetDrawn         = errors.New("winner has not been drawn yet")
	ErrNothingToWithdraw   = errors.New("no pending balance to withdraw")
	ErrPaused              = errors.New("lottery is paused")
	ErrTransferFailed      = errors.New("value transfer failed")
	ErrInvalidParameter    = errors.New("invalid lottery parameter")
	ErrLotteryNotFound     = errors.New("lottery not found")
)
