package service

import (
	"context"

	"raffler/events"
	"raffler/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockLotteryRepository is a mock implementation of LotteryRepository
type MockLotteryRepository struct {
	mock.Mock
}

func (m *MockLotteryRepository) Create(ctx context.Context, lottery *models.Lottery) error {
	args := m.Called(ctx, lottery)
	return args.Error(0)
}

func (m *MockLotteryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Lottery, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lottery), args.Error(1)
}

func (m *MockLotteryRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Lottery, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lottery), args.Error(1)
}

func (m *MockLotteryRepository) RecordEntry(ctx context.Context, id uuid.UUID, fee int64) error {
	args := m.Called(ctx, id, fee)
	return args.Error(0)
}

func (m *MockLotteryRepository) MarkDrawn(ctx context.Context, id uuid.UUID, winner string, winnings int64) error {
	args := m.Called(ctx, id, winner, winnings)
	return args.Error(0)
}

func (m *MockLotteryRepository) GetAll(ctx context.Context) ([]*models.Lottery, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Lottery), args.Error(1)
}

// MockEntryRepository is a mock implementation of EntryRepository
type MockEntryRepository struct {
	mock.Mock
}

func (m *MockEntryRepository) Create(ctx context.Context, entry *models.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockEntryRepository) GetByAddress(ctx context.Context, lotteryID uuid.UUID, address string) (*models.Entry, error) {
	args := m.Called(ctx, lotteryID, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Entry), args.Error(1)
}

func (m *MockEntryRepository) ListByLottery(ctx context.Context, lotteryID uuid.UUID) ([]*models.Entry, error) {
	args := m.Called(ctx, lotteryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Entry), args.Error(1)
}

func (m *MockEntryRepository) CountByLottery(ctx context.Context, lotteryID uuid.UUID) (int, error) {
	args := m.Called(ctx, lotteryID)
	return args.Int(0), args.Error(1)
}

// MockWithdrawalRepository is a mock implementation of WithdrawalRepository
type MockWithdrawalRepository struct {
	mock.Mock
}

func (m *MockWithdrawalRepository) Credit(ctx context.Context, lotteryID uuid.UUID, address string, amount int64) error {
	args := m.Called(ctx, lotteryID, address, amount)
	return args.Error(0)
}

func (m *MockWithdrawalRepository) GetByAddress(ctx context.Context, lotteryID uuid.UUID, address string) (*models.PendingWithdrawal, error) {
	args := m.Called(ctx, lotteryID, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PendingWithdrawal), args.Error(1)
}

func (m *MockWithdrawalRepository) MarkWithdrawn(ctx context.Context, lotteryID uuid.UUID, address string) error {
	args := m.Called(ctx, lotteryID, address)
	return args.Error(0)
}

func (m *MockWithdrawalRepository) TotalOutstanding(ctx context.Context, lotteryID uuid.UUID) (int64, error) {
	args := m.Called(ctx, lotteryID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWithdrawalRepository) ListByLottery(ctx context.Context, lotteryID uuid.UUID) ([]*models.PendingWithdrawal, error) {
	args := m.Called(ctx, lotteryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PendingWithdrawal), args.Error(1)
}

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByAddress(ctx context.Context, address string) (*models.Account, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) GetBalance(ctx context.Context, address string) (int64, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) AddBalance(ctx context.Context, address string, amount int64) error {
	args := m.Called(ctx, address, amount)
	return args.Error(0)
}

func (m *MockAccountRepository) DeductBalance(ctx context.Context, address string, amount int64) error {
	args := m.Called(ctx, address, amount)
	return args.Error(0)
}

func (m *MockAccountRepository) Transfer(ctx context.Context, from, to string, amount int64) error {
	args := m.Called(ctx, from, to, amount)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repositories
// are injected with SetRepositories; Begin/Commit/Rollback go through
// the usual expectation API.
type MockUnitOfWork struct {
	mock.Mock
	lotteryRepo    LotteryRepository
	entryRepo      EntryRepository
	withdrawalRepo WithdrawalRepository
	accountRepo    AccountRepository
	eventBus       EventPublisher
}

// SetRepositories injects the repositories the unit of work hands out
func (m *MockUnitOfWork) SetRepositories(lottery LotteryRepository, entry EntryRepository, withdrawal WithdrawalRepository, account AccountRepository) {
	m.lotteryRepo = lottery
	m.entryRepo = entry
	m.withdrawalRepo = withdrawal
	m.accountRepo = account
}

// SetEventBus injects the publisher the unit of work hands out
func (m *MockUnitOfWork) SetEventBus(bus EventPublisher) {
	m.eventBus = bus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) LotteryRepository() LotteryRepository {
	return m.lotteryRepo
}

func (m *MockUnitOfWork) EntryRepository() EntryRepository {
	return m.entryRepo
}

func (m *MockUnitOfWork) WithdrawalRepository() WithdrawalRepository {
	return m.withdrawalRepo
}

func (m *MockUnitOfWork) AccountRepository() AccountRepository {
	return m.accountRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	if m.eventBus == nil {
		return noopPublisher{}
	}
	return m.eventBus
}

type noopPublisher struct{}

func (noopPublisher) Publish(events.Event) {}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockAccessControl is a mock implementation of AccessControl
type MockAccessControl struct {
	mock.Mock
}

func (m *MockAccessControl) HasRole(ctx context.Context, lotteryID uuid.UUID, role Role, address string) (bool, error) {
	args := m.Called(ctx, lotteryID, role, address)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccessControl) GrantRole(ctx context.Context, lotteryID uuid.UUID, role Role, address string) error {
	args := m.Called(ctx, lotteryID, role, address)
	return args.Error(0)
}

// MockPauseControl is a mock implementation of PauseControl
type MockPauseControl struct {
	mock.Mock
}

func (m *MockPauseControl) IsPaused(ctx context.Context, lotteryID uuid.UUID) (bool, error) {
	args := m.Called(ctx, lotteryID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPauseControl) SetPaused(ctx context.Context, lotteryID uuid.UUID, paused bool) error {
	args := m.Called(ctx, lotteryID, paused)
	return args.Error(0)
}
