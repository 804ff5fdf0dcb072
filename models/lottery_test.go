package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestLotteryParams_Validate(t *testing.T) {
	t.Parallel()

	valid := LotteryParams{
		OwnerAddress:       "owner",
		AdminAddress:       "admin",
		EntryFee:           1000,
		MaxEntries:         5,
		LotteryFeeDivisor:  25,
		PlatformFeeDivisor: 50,
	}

	tests := []struct {
		name    string
		mutate  func(p *LotteryParams)
		wantErr bool
	}{
		{
			name:    "valid params",
			mutate:  func(p *LotteryParams) {},
			wantErr: false,
		},
		{
			name:    "missing owner address",
			mutate:  func(p *LotteryParams) { p.OwnerAddress = "" },
			wantErr: true,
		},
		{
			name:    "missing admin address",
			mutate:  func(p *LotteryParams) { p.AdminAddress = "" },
			wantErr: true,
		},
		{
			name:    "zero entry fee",
			mutate:  func(p *LotteryParams) { p.EntryFee = 0 },
			wantErr: true,
		},
		{
			name:    "negative entry fee",
			mutate:  func(p *LotteryParams) { p.EntryFee = -1 },
			wantErr: true,
		},
		{
			name:    "zero max entries",
			mutate:  func(p *LotteryParams) { p.MaxEntries = 0 },
			wantErr: true,
		},
		{
			name:    "zero lottery fee divisor",
			mutate:  func(p *LotteryParams) { p.LotteryFeeDivisor = 0 },
			wantErr: true,
		},
		{
			name:    "zero platform fee divisor",
			mutate:  func(p *LotteryParams) { p.PlatformFeeDivisor = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := valid
			tt.mutate(&p)

			err := p.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidParameter)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLottery_SettlePool(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		pool            int64
		lotteryDivisor  int64
		platformDivisor int64
		wantOwnerFee    int64
		wantPlatformFee int64
		wantWinnings    int64
	}{
		{
			// Three entries of 1e18 with divisors 25 and 50: the owner
			// fee is 4% of the pool, the platform fee 2% of the reduced
			// pool, the winner takes the rest.
			name:            "reference pool of 3e18",
			pool:            3_000_000_000_000_000_000,
			lotteryDivisor:  25,
			platformDivisor: 50,
			wantOwnerFee:    120_000_000_000_000_000,
			wantPlatformFee: 57_600_000_000_000_000,
			wantWinnings:    2_822_400_000_000_000_000,
		},
		{
			name:            "division remainders accrue to the winner",
			pool:            100,
			lotteryDivisor:  3,
			platformDivisor: 7,
			wantOwnerFee:    33,
			wantPlatformFee: 9,
			wantWinnings:    58,
		},
		{
			name:            "pool smaller than both divisors",
			pool:            1,
			lotteryDivisor:  25,
			platformDivisor: 50,
			wantOwnerFee:    0,
			wantPlatformFee: 0,
			wantWinnings:    1,
		},
		{
			name:            "divisor of one gives the whole pool to the owner",
			pool:            1000,
			lotteryDivisor:  1,
			platformDivisor: 50,
			wantOwnerFee:    1000,
			wantPlatformFee: 0,
			wantWinnings:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l := &Lottery{
				Pool:               tt.pool,
				LotteryFeeDivisor:  tt.lotteryDivisor,
				PlatformFeeDivisor: tt.platformDivisor,
			}

			s := l.SettlePool()
			assert.Equal(t, tt.wantOwnerFee, s.OwnerFee)
			assert.Equal(t, tt.wantPlatformFee, s.PlatformFee)
			assert.Equal(t, tt.wantWinnings, s.Winnings)

			// No value created or destroyed by settlement.
			assert.Equal(t, tt.pool, s.Total())
		})
	}
}

func TestLottery_CanAcceptEntries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		entryCount int
		maxEntries int
		drawn      bool
		want       bool
	}{
		{name: "open round", entryCount: 0, maxEntries: 3, drawn: false, want: true},
		{name: "one slot left", entryCount: 2, maxEntries: 3, drawn: false, want: true},
		{name: "quota reached", entryCount: 3, maxEntries: 3, drawn: false, want: false},
		{name: "already drawn", entryCount: 3, maxEntries: 3, drawn: true, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l := &Lottery{
				EntryCount: tt.entryCount,
				MaxEntries: tt.maxEntries,
				Drawn:      tt.drawn,
			}
			assert.Equal(t, tt.want, l.CanAcceptEntries())
		})
	}
}

func TestLottery_Complete(t *testing.T) {
	t.Parallel()

	l := &Lottery{
		ID:   uuid.New(),
		Pool: 3000,
	}

	l.Complete("winner-addr", 2822)

	assert.True(t, l.Drawn)
	assert.Equal(t, int64(0), l.Pool)
	assert.NotNil(t, l.WinnerAddress)
	assert.Equal(t, "winner-addr", *l.WinnerAddress)
	assert.NotNil(t, l.Winnings)
	assert.Equal(t, int64(2822), *l.Winnings)
	assert.NotNil(t, l.DrawnAt)
}

func TestLottery_EscrowAddress(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	l := &Lottery{ID: id}
	assert.Equal(t, "lottery:"+id.String(), l.EscrowAddress())
}
