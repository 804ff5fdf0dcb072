package service

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"raffler/events"
	"raffler/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type lotteryService struct {
	uowFactory UnitOfWorkFactory
	access     AccessControl
	pause      PauseControl
	selector   DrawSelector
	locks      *lockTable
}

// NewLotteryService creates a new lottery escrow service
func NewLotteryService(uowFactory UnitOfWorkFactory, access AccessControl, pause PauseControl, selector DrawSelector) LotteryService {
	return &lotteryService{
		uowFactory: uowFactory,
		access:     access,
		pause:      pause,
		selector:   selector,
		locks:      newLockTable(),
	}
}

// CreateLottery opens a new round. The server seed is generated here and
// only its commitment leaves the service until the draw reveals it.
func (s *lotteryService) CreateLottery(ctx context.Context, params models.LotteryParams) (*models.Lottery, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	seed, commitment, err := GenerateServerSeed()
	if err != nil {
		return nil, err
	}

	lottery := &models.Lottery{
		ID:                 uuid.New(),
		OwnerAddress:       params.OwnerAddress,
		AdminAddress:       params.AdminAddress,
		EntryFee:           params.EntryFee,
		MaxEntries:         params.MaxEntries,
		LotteryFeeDivisor:  params.LotteryFeeDivisor,
		PlatformFeeDivisor: params.PlatformFeeDivisor,
		ServerSeed:         seed,
		SeedCommitment:     commitment,
		CreatedAt:          time.Now().UTC(),
	}

	// Role grants precede the insert. The provider is not transactional,
	// and grants on an ID that never gets persisted are inert.
	if err := s.access.GrantRole(ctx, lottery.ID, RoleLotteryOwner, params.OwnerAddress); err != nil {
		return nil, fmt.Errorf("failed to grant owner role: %w", err)
	}
	if err := s.access.GrantRole(ctx, lottery.ID, RolePlatformAdmin, params.AdminAddress); err != nil {
		return nil, fmt.Errorf("failed to grant admin role: %w", err)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.LotteryRepository().Create(ctx, lottery); err != nil {
		return nil, fmt.Errorf("failed to create lottery: %w", err)
	}

	uow.EventBus().Publish(events.LotteryCreatedEvent{
		LotteryID:      lottery.ID,
		OwnerAddress:   lottery.OwnerAddress,
		AdminAddress:   lottery.AdminAddress,
		EntryFee:       lottery.EntryFee,
		MaxEntries:     lottery.MaxEntries,
		SeedCommitment: lottery.SeedCommitment,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"lotteryID":  lottery.ID,
		"owner":      lottery.OwnerAddress,
		"entryFee":   lottery.EntryFee,
		"maxEntries": lottery.MaxEntries,
	}).Info("lottery round created")

	return lottery, nil
}

// Enter admits an address into the round. The supplied amount must match
// the entry fee exactly; it is debited from the entrant and escrowed
// atomically with the entry record.
func (s *lotteryService) Enter(ctx context.Context, lotteryID uuid.UUID, address string, amount int64) (*models.EntryResult, error) {
	if address == "" {
		return nil, fmt.Errorf("%w: entrant address is required", models.ErrInvalidParameter)
	}

	defer s.locks.acquire(lotteryID)()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	lottery, err := uow.LotteryRepository().GetByIDForUpdate(ctx, lotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery: %w", err)
	}
	if lottery == nil {
		return nil, models.ErrLotteryNotFound
	}

	paused, err := s.pause.IsPaused(ctx, lotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pause state: %w", err)
	}
	if paused {
		return nil, models.ErrPaused
	}

	if amount != lottery.EntryFee {
		return nil, fmt.Errorf("%w: got %d, want %d", models.ErrIncorrectFee, amount, lottery.EntryFee)
	}

	if lottery.IsFull() || lottery.Drawn {
		return nil, models.ErrEntriesFull
	}

	existing, err := uow.EntryRepository().GetByAddress(ctx, lotteryID, address)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing entry: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrAlreadyEntered, address)
	}

	// Move the fee into escrow before recording the entry, so an
	// insufficient entrant balance rejects the whole operation.
	if err := uow.AccountRepository().DeductBalance(ctx, address, amount); err != nil {
		return nil, err
	}
	if err := uow.AccountRepository().AddBalance(ctx, lottery.EscrowAddress(), amount); err != nil {
		return nil, fmt.Errorf("failed to credit escrow: %w", err)
	}

	entry := &models.Entry{
		LotteryID: lotteryID,
		Address:   address,
		Position:  lottery.EntryCount,
		Amount:    amount,
	}
	if err := uow.EntryRepository().Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}

	if err := uow.LotteryRepository().RecordEntry(ctx, lotteryID, amount); err != nil {
		return nil, fmt.Errorf("failed to record entry: %w", err)
	}

	uow.EventBus().Publish(events.EnteredEvent{
		LotteryID: lotteryID,
		Player:    address,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.EntryResult{
		LotteryID:  lotteryID,
		Address:    address,
		Position:   entry.Position,
		EntryCount: lottery.EntryCount + 1,
		Pool:       lottery.Pool + amount,
	}, nil
}

// DrawWinner settles a full round: picks the winner from the committed
// seed, splits the pool into pending withdrawals, and zeroes the pool.
// No value leaves escrow here; payees pull their shares via Withdraw.
func (s *lotteryService) DrawWinner(ctx context.Context, lotteryID uuid.UUID, caller string) (*models.DrawResult, error) {
	defer s.locks.acquire(lotteryID)()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	lottery, err := uow.LotteryRepository().GetByIDForUpdate(ctx, lotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery: %w", err)
	}
	if lottery == nil {
		return nil, models.ErrLotteryNotFound
	}

	if err := s.requireRole(ctx, lotteryID, caller, RoleLotteryOwner, RolePlatformAdmin); err != nil {
		return nil, err
	}

	paused, err := s.pause.IsPaused(ctx, lotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pause state: %w", err)
	}
	if paused {
		return nil, models.ErrPaused
	}

	if lottery.Drawn {
		return nil, models.ErrAlreadyDrawn
	}
	if !lottery.IsFull() {
		return nil, fmt.Errorf("%w: have %d, need %d", models.ErrInsufficientEntries, lottery.EntryCount, lottery.MaxEntries)
	}

	entries, err := uow.EntryRepository().ListByLottery(ctx, lotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	if len(entries) != lottery.EntryCount {
		return nil, fmt.Errorf("entry count mismatch: round says %d, found %d", lottery.EntryCount, len(entries))
	}

	seed, err := hex.DecodeString(lottery.ServerSeed)
	if err != nil {
		return nil, fmt.Errorf("failed to decode server seed: %w", err)
	}
	index, err := s.selector.Pick(seed, lotteryID, lottery.EntryCount)
	if err != nil {
		return nil, fmt.Errorf("failed to select winner: %w", err)
	}
	winner := entries[index].Address

	settlement := lottery.SettlePool()

	// Credit accumulates on address collisions, so a winner who is also
	// the owner or the admin ends up with one combined pending balance
	// and the three shares still sum to the pre-draw pool.
	if err := uow.WithdrawalRepository().Credit(ctx, lotteryID, lottery.OwnerAddress, settlement.OwnerFee); err != nil {
		return nil, fmt.Errorf("failed to credit owner fee: %w", err)
	}
	if err := uow.WithdrawalRepository().Credit(ctx, lotteryID, lottery.AdminAddress, settlement.PlatformFee); err != nil {
		return nil, fmt.Errorf("failed to credit platform fee: %w", err)
	}
	if err := uow.WithdrawalRepository().Credit(ctx, lotteryID, winner, settlement.Winnings); err != nil {
		return nil, fmt.Errorf("failed to credit winnings: %w", err)
	}

	if err := uow.LotteryRepository().MarkDrawn(ctx, lotteryID, winner, settlement.Winnings); err != nil {
		return nil, fmt.Errorf("failed to mark lottery drawn: %w", err)
	}

	uow.EventBus().Publish(events.WinnerEvent{
		LotteryID: lotteryID,
		Winner:    winner,
		Winnings:  settlement.Winnings,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"lotteryID":   lotteryID,
		"winner":      winner,
		"winnerIndex": index,
		"winnings":    settlement.Winnings,
		"ownerFee":    settlement.OwnerFee,
		"platformFee": settlement.PlatformFee,
	}).Info("lottery winner drawn")

	return &models.DrawResult{
		LotteryID:     lotteryID,
		WinnerAddress: winner,
		WinnerIndex:   index,
		Winnings:      settlement.Winnings,
		OwnerFee:      settlement.OwnerFee,
		PlatformFee:   settlement.PlatformFee,
		ServerSeed:    lottery.ServerSeed,
	}, nil
}

// Withdraw pays the caller's accrued pending balance out of escrow. The
// pending balance is zeroed before the transfer inside one transaction,
// so a failed transfer rolls the balance back and a concurrent second
// withdrawal finds nothing to take.
func (s *lotteryService) Withdraw(ctx context.Context, lotteryID uuid.UUID, caller string) (*models.WithdrawalResult, error) {
	defer s.locks.acquire(lotteryID)()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	lottery, err := uow.LotteryRepository().GetByID(ctx, lotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery: %w", err)
	}
	if lottery == nil {
		return nil, models.ErrLotteryNotFound
	}

	paused, err := s.pause.IsPaused(ctx, lotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pause state: %w", err)
	}
	if paused {
		return nil, models.ErrPaused
	}

	pending, err := uow.WithdrawalRepository().GetByAddress(ctx, lotteryID, caller)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending withdrawal: %w", err)
	}
	if pending == nil || pending.Amount <= 0 {
		return nil, fmt.Errorf("%w: %s", models.ErrNothingToWithdraw, caller)
	}
	amount := pending.Amount

	if err := uow.WithdrawalRepository().MarkWithdrawn(ctx, lotteryID, caller); err != nil {
		return nil, fmt.Errorf("failed to mark withdrawal: %w", err)
	}

	if err := uow.AccountRepository().Transfer(ctx, lottery.EscrowAddress(), caller, amount); err != nil {
		return nil, fmt.Errorf("failed to transfer withdrawal: %w", err)
	}

	uow.EventBus().Publish(events.FundsWithdrawnEvent{
		LotteryID: lotteryID,
		Payee:     caller,
		Amount:    amount,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"lotteryID": lotteryID,
		"payee":     caller,
		"amount":    amount,
	}).Info("pending withdrawal paid out")

	return &models.WithdrawalResult{
		LotteryID: lotteryID,
		Payee:     caller,
		Amount:    amount,
	}, nil
}

// WithdrawBalance sweeps whatever the escrow holds beyond outstanding
// pending withdrawals to the platform admin. Unsolicited deposits are
// the usual source of such residue; earmarked payee funds never move.
func (s *lotteryService) WithdrawBalance(ctx context.Context, lotteryID uuid.UUID, caller string) (*models.WithdrawalResult, error) {
	defer s.locks.acquire(lotteryID)()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	lottery, err := uow.LotteryRepository().GetByIDForUpdate(ctx, lotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery: %w", err)
	}
	if lottery == nil {
		return nil, models.ErrLotteryNotFound
	}

	if err := s.requireRole(ctx, lotteryID, caller, RolePlatformAdmin); err != nil {
		return nil, err
	}

	if !lottery.Drawn {
		return nil, models.ErrNotYetDrawn
	}

	balance, err := uow.AccountRepository().GetBalance(ctx, lottery.EscrowAddress())
	if err != nil {
		return nil, fmt.Errorf("failed to get escrow balance: %w", err)
	}
	outstanding, err := uow.WithdrawalRepository().TotalOutstanding(ctx, lotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum outstanding withdrawals: %w", err)
	}

	residual := balance - outstanding
	if residual <= 0 {
		return nil, fmt.Errorf("%w: escrow holds %d with %d outstanding", models.ErrNothingToWithdraw, balance, outstanding)
	}

	if err := uow.AccountRepository().Transfer(ctx, lottery.EscrowAddress(), caller, residual); err != nil {
		return nil, fmt.Errorf("failed to transfer residual balance: %w", err)
	}

	uow.EventBus().Publish(events.FundsWithdrawnEvent{
		LotteryID: lotteryID,
		Payee:     caller,
		Amount:    residual,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"lotteryID": lotteryID,
		"payee":     caller,
		"amount":    residual,
	}).Info("residual escrow balance swept")

	return &models.WithdrawalResult{
		LotteryID: lotteryID,
		Payee:     caller,
		Amount:    residual,
	}, nil
}

// CheckBalance returns the escrow account balance. Admin only.
func (s *lotteryService) CheckBalance(ctx context.Context, lotteryID uuid.UUID, caller string) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	lottery, err := uow.LotteryRepository().GetByID(ctx, lotteryID)
	if err != nil {
		return 0, fmt.Errorf("failed to get lottery: %w", err)
	}
	if lottery == nil {
		return 0, models.ErrLotteryNotFound
	}

	if err := s.requireRole(ctx, lotteryID, caller, RolePlatformAdmin); err != nil {
		return 0, err
	}

	balance, err := uow.AccountRepository().GetBalance(ctx, lottery.EscrowAddress())
	if err != nil {
		return 0, fmt.Errorf("failed to get escrow balance: %w", err)
	}
	return balance, nil
}

// Pause suspends entry, draw, and withdrawal on the round.
func (s *lotteryService) Pause(ctx context.Context, lotteryID uuid.UUID, caller string) error {
	return s.setPaused(ctx, lotteryID, caller, true)
}

// Unpause resumes the round.
func (s *lotteryService) Unpause(ctx context.Context, lotteryID uuid.UUID, caller string) error {
	return s.setPaused(ctx, lotteryID, caller, false)
}

func (s *lotteryService) setPaused(ctx context.Context, lotteryID uuid.UUID, caller string, paused bool) error {
	defer s.locks.acquire(lotteryID)()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	lottery, err := uow.LotteryRepository().GetByID(ctx, lotteryID)
	if err != nil {
		return fmt.Errorf("failed to get lottery: %w", err)
	}
	if lottery == nil {
		return models.ErrLotteryNotFound
	}

	if err := s.requireRole(ctx, lotteryID, caller, RoleLotteryOwner, RolePlatformAdmin); err != nil {
		return err
	}

	if err := s.pause.SetPaused(ctx, lotteryID, paused); err != nil {
		return fmt.Errorf("failed to set pause state: %w", err)
	}

	if paused {
		uow.EventBus().Publish(events.LotteryPausedEvent{LotteryID: lotteryID, Actor: caller})
	} else {
		uow.EventBus().Publish(events.LotteryUnpausedEvent{LotteryID: lotteryID, Actor: caller})
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"lotteryID": lotteryID,
		"actor":     caller,
		"paused":    paused,
	}).Info("lottery pause state changed")

	return nil
}

// Deposit records an unsolicited value receipt into the round's escrow
// account. The amount is not earmarked for any payee; the admin can
// later sweep it with WithdrawBalance.
func (s *lotteryService) Deposit(ctx context.Context, lotteryID uuid.UUID, sender string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: deposit amount must be positive, got %d", models.ErrInvalidParameter, amount)
	}

	defer s.locks.acquire(lotteryID)()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	lottery, err := uow.LotteryRepository().GetByID(ctx, lotteryID)
	if err != nil {
		return fmt.Errorf("failed to get lottery: %w", err)
	}
	if lottery == nil {
		return models.ErrLotteryNotFound
	}

	if err := uow.AccountRepository().Transfer(ctx, sender, lottery.EscrowAddress(), amount); err != nil {
		return fmt.Errorf("failed to transfer deposit: %w", err)
	}

	uow.EventBus().Publish(events.FundsReceivedEvent{
		LotteryID: lotteryID,
		Sender:    sender,
		Amount:    amount,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetLottery returns a round by ID.
func (s *lotteryService) GetLottery(ctx context.Context, lotteryID uuid.UUID) (*models.Lottery, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	lottery, err := uow.LotteryRepository().GetByID(ctx, lotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery: %w", err)
	}
	if lottery == nil {
		return nil, models.ErrLotteryNotFound
	}
	return lottery, nil
}

// GetPendingWithdrawal returns the caller's unpaid pending amount, zero
// if nothing is owed.
func (s *lotteryService) GetPendingWithdrawal(ctx context.Context, lotteryID uuid.UUID, address string) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	pending, err := uow.WithdrawalRepository().GetByAddress(ctx, lotteryID, address)
	if err != nil {
		return 0, fmt.Errorf("failed to get pending withdrawal: %w", err)
	}
	if pending == nil {
		return 0, nil
	}
	return pending.Amount, nil
}

// requireRole returns ErrNotAuthorized unless the caller holds at least
// one of the given roles on the round.
func (s *lotteryService) requireRole(ctx context.Context, lotteryID uuid.UUID, caller string, roles ...Role) error {
	for _, role := range roles {
		ok, err := s.access.HasRole(ctx, lotteryID, role, caller)
		if err != nil {
			return fmt.Errorf("failed to check role %s: %w", role, err)
		}
		if ok {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", models.ErrNotAuthorized, caller)
}
