package repository

import (
	"context"
	"testing"

	"raffler/models"
	"raffler/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithdrawalRepository_Credit(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	lotteryRepo := NewLotteryRepository(testDB.DB)
	repo := NewWithdrawalRepository(testDB.DB)
	ctx := context.Background()

	lottery := testutil.CreateTestLottery("owner-1", "admin-1")
	require.NoError(t, lotteryRepo.Create(ctx, lottery))

	t.Run("first credit creates the row", func(t *testing.T) {
		require.NoError(t, repo.Credit(ctx, lottery.ID, "winner-addr", 2800))

		pending, err := repo.GetByAddress(ctx, lottery.ID, "winner-addr")
		require.NoError(t, err)
		require.NotNil(t, pending)
		assert.Equal(t, int64(2800), pending.Amount)
		assert.Nil(t, pending.WithdrawnAt)
	})

	t.Run("credits to the same address accumulate", func(t *testing.T) {
		// The winner doubling as the round owner receives both shares
		// under one address
		require.NoError(t, repo.Credit(ctx, lottery.ID, "winner-addr", 120))

		pending, err := repo.GetByAddress(ctx, lottery.ID, "winner-addr")
		require.NoError(t, err)
		assert.Equal(t, int64(2920), pending.Amount)
	})

	t.Run("outstanding sums all unpaid balances", func(t *testing.T) {
		require.NoError(t, repo.Credit(ctx, lottery.ID, "admin-1", 80))

		total, err := repo.TotalOutstanding(ctx, lottery.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(3000), total)
	})
}

func TestWithdrawalRepository_MarkWithdrawn(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	lotteryRepo := NewLotteryRepository(testDB.DB)
	repo := NewWithdrawalRepository(testDB.DB)
	ctx := context.Background()

	lottery := testutil.CreateTestLottery("owner-1", "admin-1")
	require.NoError(t, lotteryRepo.Create(ctx, lottery))
	require.NoError(t, repo.Credit(ctx, lottery.ID, "payee", 1500))

	t.Run("first withdrawal zeroes the balance", func(t *testing.T) {
		require.NoError(t, repo.MarkWithdrawn(ctx, lottery.ID, "payee"))

		pending, err := repo.GetByAddress(ctx, lottery.ID, "payee")
		require.NoError(t, err)
		assert.Equal(t, int64(0), pending.Amount)
		assert.NotNil(t, pending.WithdrawnAt)

		total, err := repo.TotalOutstanding(ctx, lottery.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})

	t.Run("second withdrawal finds nothing", func(t *testing.T) {
		err := repo.MarkWithdrawn(ctx, lottery.ID, "payee")
		assert.ErrorIs(t, err, models.ErrNothingToWithdraw)
	})

	t.Run("unknown payee finds nothing", func(t *testing.T) {
		err := repo.MarkWithdrawn(ctx, lottery.ID, "stranger")
		assert.ErrorIs(t, err, models.ErrNothingToWithdraw)
	})
}

func TestWithdrawalRepository_ListByLottery(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	lotteryRepo := NewLotteryRepository(testDB.DB)
	repo := NewWithdrawalRepository(testDB.DB)
	ctx := context.Background()

	lottery := testutil.CreateTestLottery("owner-1", "admin-1")
	require.NoError(t, lotteryRepo.Create(ctx, lottery))

	require.NoError(t, repo.Credit(ctx, lottery.ID, "owner-1", 120))
	require.NoError(t, repo.Credit(ctx, lottery.ID, "admin-1", 57))
	require.NoError(t, repo.Credit(ctx, lottery.ID, "winner", 2823))

	withdrawals, err := repo.ListByLottery(ctx, lottery.ID)
	require.NoError(t, err)
	require.Len(t, withdrawals, 3)

	var total int64
	for _, pending := range withdrawals {
		total += pending.Amount
	}
	assert.Equal(t, int64(3000), total)
}
