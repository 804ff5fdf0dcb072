package service_test

import (
	"context"
	"testing"

	"raffler/access"
	"raffler/events"
	"raffler/models"
	"raffler/repository"
	"raffler/repository/testutil"
	"raffler/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLotteryLifecycle_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	bus := events.NewBus()
	factory := repository.NewUnitOfWorkFactory(testDB.DB, bus)
	accountRepo := repository.NewAccountRepository(testDB.DB)
	withdrawalRepo := repository.NewWithdrawalRepository(testDB.DB)

	svc := service.NewLotteryService(factory, access.NewRoleStore(), access.NewPauseStore(), service.NewDrawSelector())

	const (
		owner = "owner-addr"
		admin = "admin-addr"
	)

	lottery, err := svc.CreateLottery(ctx, models.LotteryParams{
		OwnerAddress:       owner,
		AdminAddress:       admin,
		EntryFee:           1000,
		MaxEntries:         3,
		LotteryFeeDivisor:  25,
		PlatformFeeDivisor: 50,
	})
	require.NoError(t, err)

	players := []string{"player-0", "player-1", "player-2"}
	for _, player := range players {
		require.NoError(t, accountRepo.AddBalance(ctx, player, 2000))
	}

	t.Run("entries fill the pool", func(t *testing.T) {
		for i, player := range players {
			result, err := svc.Enter(ctx, lottery.ID, player, 1000)
			require.NoError(t, err)
			assert.Equal(t, i, result.Position)
			assert.Equal(t, i+1, result.EntryCount)
		}

		balance, err := svc.CheckBalance(ctx, lottery.ID, admin)
		require.NoError(t, err)
		assert.Equal(t, int64(3000), balance)

		// Each entrant paid exactly the fee
		for _, player := range players {
			balance, err := accountRepo.GetBalance(ctx, player)
			require.NoError(t, err)
			assert.Equal(t, int64(1000), balance)
		}
	})

	t.Run("round rejections", func(t *testing.T) {
		_, err := svc.Enter(ctx, lottery.ID, "late-player", 1000)
		assert.ErrorIs(t, err, models.ErrEntriesFull)

		_, err = svc.Enter(ctx, lottery.ID, "player-0", 999)
		assert.ErrorIs(t, err, models.ErrIncorrectFee)

		_, err = svc.Withdraw(ctx, lottery.ID, "player-0")
		assert.ErrorIs(t, err, models.ErrNothingToWithdraw)

		_, err = svc.WithdrawBalance(ctx, lottery.ID, admin)
		assert.ErrorIs(t, err, models.ErrNotYetDrawn)

		_, err = svc.DrawWinner(ctx, lottery.ID, "player-0")
		assert.ErrorIs(t, err, models.ErrNotAuthorized)

		_, err = svc.CheckBalance(ctx, lottery.ID, owner)
		assert.ErrorIs(t, err, models.ErrNotAuthorized)
	})

	var winnerAddr string
	t.Run("draw splits the pool exactly", func(t *testing.T) {
		result, err := svc.DrawWinner(ctx, lottery.ID, owner)
		require.NoError(t, err)
		winnerAddr = result.WinnerAddress

		assert.Contains(t, players, winnerAddr)
		assert.Equal(t, int64(120), result.OwnerFee)   // 3000/25
		assert.Equal(t, int64(57), result.PlatformFee) // 2880/50
		assert.Equal(t, int64(2823), result.Winnings)
		assert.Equal(t, result.ServerSeed, lottery.ServerSeed)

		// Conservation: pending credits equal the pre-draw pool and the
		// pool itself is zeroed
		total, err := withdrawalRepo.TotalOutstanding(ctx, lottery.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(3000), total)

		drawn, err := svc.GetLottery(ctx, lottery.ID)
		require.NoError(t, err)
		assert.True(t, drawn.Drawn)
		assert.Equal(t, int64(0), drawn.Pool)

		_, err = svc.DrawWinner(ctx, lottery.ID, owner)
		assert.ErrorIs(t, err, models.ErrAlreadyDrawn)
	})

	t.Run("payees pull their shares", func(t *testing.T) {
		before, err := accountRepo.GetBalance(ctx, winnerAddr)
		require.NoError(t, err)

		result, err := svc.Withdraw(ctx, lottery.ID, winnerAddr)
		require.NoError(t, err)
		assert.Equal(t, int64(2823), result.Amount)

		after, err := accountRepo.GetBalance(ctx, winnerAddr)
		require.NoError(t, err)
		assert.Equal(t, before+2823, after)

		// A second pull finds nothing
		_, err = svc.Withdraw(ctx, lottery.ID, winnerAddr)
		assert.ErrorIs(t, err, models.ErrNothingToWithdraw)

		_, err = svc.Withdraw(ctx, lottery.ID, owner)
		require.NoError(t, err)
		_, err = svc.Withdraw(ctx, lottery.ID, admin)
		require.NoError(t, err)

		// Escrow is fully drained once every payee has pulled
		balance, err := svc.CheckBalance(ctx, lottery.ID, admin)
		require.NoError(t, err)
		assert.Equal(t, int64(0), balance)
	})

	t.Run("unsolicited deposit is sweepable", func(t *testing.T) {
		require.NoError(t, accountRepo.AddBalance(ctx, "benefactor", 500))
		require.NoError(t, svc.Deposit(ctx, lottery.ID, "benefactor", 500))

		balance, err := svc.CheckBalance(ctx, lottery.ID, admin)
		require.NoError(t, err)
		assert.Equal(t, int64(500), balance)

		result, err := svc.WithdrawBalance(ctx, lottery.ID, admin)
		require.NoError(t, err)
		assert.Equal(t, int64(500), result.Amount)

		balance, err = svc.CheckBalance(ctx, lottery.ID, admin)
		require.NoError(t, err)
		assert.Equal(t, int64(0), balance)
	})
}

func TestLotteryPause_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	bus := events.NewBus()
	factory := repository.NewUnitOfWorkFactory(testDB.DB, bus)
	accountRepo := repository.NewAccountRepository(testDB.DB)

	svc := service.NewLotteryService(factory, access.NewRoleStore(), access.NewPauseStore(), service.NewDrawSelector())

	lottery, err := svc.CreateLottery(ctx, models.LotteryParams{
		OwnerAddress:       "owner-addr",
		AdminAddress:       "admin-addr",
		EntryFee:           100,
		MaxEntries:         2,
		LotteryFeeDivisor:  25,
		PlatformFeeDivisor: 50,
	})
	require.NoError(t, err)

	require.NoError(t, accountRepo.AddBalance(ctx, "player", 200))

	require.NoError(t, svc.Pause(ctx, lottery.ID, "owner-addr"))

	_, err = svc.Enter(ctx, lottery.ID, "player", 100)
	assert.ErrorIs(t, err, models.ErrPaused)
	_, err = svc.DrawWinner(ctx, lottery.ID, "owner-addr")
	assert.ErrorIs(t, err, models.ErrPaused)
	_, err = svc.Withdraw(ctx, lottery.ID, "player")
	assert.ErrorIs(t, err, models.ErrPaused)

	require.NoError(t, svc.Unpause(ctx, lottery.ID, "owner-addr"))

	_, err = svc.Enter(ctx, lottery.ID, "player", 100)
	require.NoError(t, err)

	// Pausing is itself privileged
	err = svc.Pause(ctx, lottery.ID, "player")
	assert.ErrorIs(t, err, models.ErrNotAuthorized)
}
