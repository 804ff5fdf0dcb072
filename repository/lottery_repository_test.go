package repository

import (
	"context"
	"testing"

	"raffler/models"
	"raffler/repository/testutil"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLotteryRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewLotteryRepository(testDB.DB)
	ctx := context.Background()

	t.Run("round not found", func(t *testing.T) {
		lottery, err := repo.GetByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, lottery)
	})

	t.Run("create and retrieve", func(t *testing.T) {
		original := testutil.CreateTestLottery("owner-1", "admin-1")
		err := repo.Create(ctx, original)
		require.NoError(t, err)
		assert.False(t, original.CreatedAt.IsZero())

		lottery, err := repo.GetByID(ctx, original.ID)
		require.NoError(t, err)
		require.NotNil(t, lottery)

		assert.Equal(t, original.ID, lottery.ID)
		assert.Equal(t, "owner-1", lottery.OwnerAddress)
		assert.Equal(t, "admin-1", lottery.AdminAddress)
		assert.Equal(t, int64(1000), lottery.EntryFee)
		assert.Equal(t, 3, lottery.MaxEntries)
		assert.Equal(t, int64(0), lottery.Pool)
		assert.Equal(t, 0, lottery.EntryCount)
		assert.False(t, lottery.Drawn)
		assert.Nil(t, lottery.WinnerAddress)
		assert.Equal(t, original.ServerSeed, lottery.ServerSeed)
		assert.Equal(t, original.SeedCommitment, lottery.SeedCommitment)
	})
}

func TestLotteryRepository_RecordEntry(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewLotteryRepository(testDB.DB)
	ctx := context.Background()

	lottery := testutil.CreateTestLotteryWithQuota("owner-1", "admin-1", 1000, 2)
	require.NoError(t, repo.Create(ctx, lottery))

	t.Run("pool and count advance together", func(t *testing.T) {
		require.NoError(t, repo.RecordEntry(ctx, lottery.ID, 1000))
		require.NoError(t, repo.RecordEntry(ctx, lottery.ID, 1000))

		got, err := repo.GetByID(ctx, lottery.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2000), got.Pool)
		assert.Equal(t, 2, got.EntryCount)
	})

	t.Run("quota enforced at the row level", func(t *testing.T) {
		err := repo.RecordEntry(ctx, lottery.ID, 1000)
		assert.ErrorIs(t, err, models.ErrEntriesFull)

		got, err := repo.GetByID(ctx, lottery.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2000), got.Pool)
		assert.Equal(t, 2, got.EntryCount)
	})
}

func TestLotteryRepository_MarkDrawn(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewLotteryRepository(testDB.DB)
	ctx := context.Background()

	lottery := testutil.CreateTestLottery("owner-1", "admin-1")
	require.NoError(t, repo.Create(ctx, lottery))
	require.NoError(t, repo.RecordEntry(ctx, lottery.ID, 1000))

	t.Run("first draw succeeds and zeroes the pool", func(t *testing.T) {
		err := repo.MarkDrawn(ctx, lottery.ID, "winner-addr", 940)
		require.NoError(t, err)

		got, err := repo.GetByID(ctx, lottery.ID)
		require.NoError(t, err)
		assert.True(t, got.Drawn)
		assert.Equal(t, int64(0), got.Pool)
		require.NotNil(t, got.WinnerAddress)
		assert.Equal(t, "winner-addr", *got.WinnerAddress)
		require.NotNil(t, got.Winnings)
		assert.Equal(t, int64(940), *got.Winnings)
		assert.NotNil(t, got.DrawnAt)
	})

	t.Run("second draw is rejected", func(t *testing.T) {
		err := repo.MarkDrawn(ctx, lottery.ID, "other-addr", 940)
		assert.ErrorIs(t, err, models.ErrAlreadyDrawn)

		got, err := repo.GetByID(ctx, lottery.ID)
		require.NoError(t, err)
		assert.Equal(t, "winner-addr", *got.WinnerAddress)
	})
}

func TestLotteryRepository_RowLockSerializesWriters(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewLotteryRepository(testDB.DB)
	ctx := context.Background()

	lottery := testutil.CreateTestLotteryWithQuota("owner-1", "admin-1", 1000, 10)
	require.NoError(t, repo.Create(ctx, lottery))

	// Two transactions both read the round with FOR UPDATE; the second
	// blocks until the first commits, so its read sees the first write.
	firstLocked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- testDB.DB.WithTransaction(ctx, func(tx pgx.Tx) error {
			txRepo := newLotteryRepositoryWithTx(tx)
			if _, err := txRepo.GetByIDForUpdate(ctx, lottery.ID); err != nil {
				return err
			}
			close(firstLocked)
			<-release
			return txRepo.RecordEntry(ctx, lottery.ID, 1000)
		})
	}()

	<-firstLocked

	secondDone := make(chan error, 1)
	go func() {
		secondDone <- testDB.DB.WithTransaction(ctx, func(tx pgx.Tx) error {
			txRepo := newLotteryRepositoryWithTx(tx)
			locked, err := txRepo.GetByIDForUpdate(ctx, lottery.ID)
			if err != nil {
				return err
			}
			assert.Equal(t, 1, locked.EntryCount)
			return txRepo.RecordEntry(ctx, lottery.ID, 1000)
		})
	}()

	close(release)
	require.NoError(t, <-done)
	require.NoError(t, <-secondDone)

	got, err := repo.GetByID(ctx, lottery.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.EntryCount)
	assert.Equal(t, int64(2000), got.Pool)
}

func TestEntryRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	lotteryRepo := NewLotteryRepository(testDB.DB)
	entryRepo := NewEntryRepository(testDB.DB)
	ctx := context.Background()

	lottery := testutil.CreateTestLottery("owner-1", "admin-1")
	require.NoError(t, lotteryRepo.Create(ctx, lottery))

	t.Run("create and get by address", func(t *testing.T) {
		entry := testutil.CreateTestEntry(lottery.ID, "player-1", 0, 1000)
		require.NoError(t, entryRepo.Create(ctx, entry))
		assert.NotZero(t, entry.ID)

		got, err := entryRepo.GetByAddress(ctx, lottery.ID, "player-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 0, got.Position)
		assert.Equal(t, int64(1000), got.Amount)

		absent, err := entryRepo.GetByAddress(ctx, lottery.ID, "nobody")
		require.NoError(t, err)
		assert.Nil(t, absent)
	})

	t.Run("duplicate address rejected by constraint", func(t *testing.T) {
		dup := testutil.CreateTestEntry(lottery.ID, "player-1", 1, 1000)
		err := entryRepo.Create(ctx, dup)
		assert.Error(t, err)
	})

	t.Run("list preserves insertion order", func(t *testing.T) {
		require.NoError(t, entryRepo.Create(ctx, testutil.CreateTestEntry(lottery.ID, "player-2", 1, 1000)))
		require.NoError(t, entryRepo.Create(ctx, testutil.CreateTestEntry(lottery.ID, "player-3", 2, 1000)))

		entries, err := entryRepo.ListByLottery(ctx, lottery.ID)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		for i, entry := range entries {
			assert.Equal(t, i, entry.Position)
		}

		count, err := entryRepo.CountByLottery(ctx, lottery.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})
}
