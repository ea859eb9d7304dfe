package statistics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/spelljack/internal/game"
)

func TestStatistics_Empty(t *testing.T) {
	stats := New(30)

	if stats.Mean() != 0 {
		t.Errorf("Expected mean of 0 for empty stats, got %f", stats.Mean())
	}
	if stats.Variance() != 0 {
		t.Errorf("Expected variance of 0 for empty stats, got %f", stats.Variance())
	}
	if stats.StdError() != 0 {
		t.Errorf("Expected stderr of 0 for empty stats, got %f", stats.StdError())
	}
	if stats.Median() != 0 {
		t.Errorf("Expected median of 0 for empty stats, got %f", stats.Median())
	}
	if stats.WinRate() != 0 {
		t.Errorf("Expected win rate of 0 for empty stats, got %f", stats.WinRate())
	}
	if err := stats.Validate(); err == nil {
		t.Error("Expected validation error for empty stats")
	}
}

func TestStatistics_SingleValue(t *testing.T) {
	stats := New(30)
	stats.Add(RoundResult{Seed: 12345, Result: game.ResultPerfect, Coins: 20, PlayerScore: 21, Target: 21, Specials: 1})

	if stats.Rounds != 1 {
		t.Errorf("Expected 1 round, got %d", stats.Rounds)
	}
	if stats.Mean() != 20 {
		t.Errorf("Expected mean of 20, got %f", stats.Mean())
	}
	if stats.StdDev() != 0 {
		t.Errorf("Expected stddev of 0 for single value, got %f", stats.StdDev())
	}
	if stats.Wins != 1 || stats.Perfects != 1 {
		t.Errorf("Expected one perfect win, got wins=%d perfects=%d", stats.Wins, stats.Perfects)
	}
	if err := stats.Validate(); err != nil {
		t.Errorf("Unexpected validation error: %v", err)
	}
}

func TestStatistics_MultipleValues(t *testing.T) {
	stats := New(30)
	results := []RoundResult{
		{Result: game.ResultPlayerWin, Coins: 10, Target: 21},
		{Result: game.ResultDealerWin, Coins: 0, Target: 21, Busted: true},
		{Result: game.ResultPush, Coins: 0, Target: 45},
		{Result: game.ResultPerfect, Coins: 40, Target: 80},
		{Result: game.ResultInsufficientCards, Coins: 0, Target: 21},
	}
	for _, r := range results {
		stats.Add(r)
	}

	require.NoError(t, stats.Validate())
	assert.Equal(t, 5, stats.Rounds)
	assert.InDelta(t, 10.0, stats.Mean(), 1e-9)
	assert.Equal(t, 2, stats.Wins)
	assert.Equal(t, 1, stats.Losses)
	assert.Equal(t, 1, stats.Pushes)
	assert.Equal(t, 1, stats.Aborted)
	assert.Equal(t, 1, stats.Busts)
	assert.InDelta(t, 0.4, stats.WinRate(), 1e-9)
	assert.Equal(t, 40, stats.MaxCoins)
	assert.Equal(t, 80, stats.MaxTarget)

	// Values 10, 0, 0, 40, 0: mean 10, sample variance (0+100+100+900+100)/4.
	assert.InDelta(t, 300.0, stats.Variance(), 1e-9)
	assert.InDelta(t, math.Sqrt(300), stats.StdDev(), 1e-9)
	assert.InDelta(t, 0.0, stats.Median(), 1e-9)

	low, high := stats.ConfidenceInterval95()
	assert.Less(t, low, stats.Mean())
	assert.Greater(t, high, stats.Mean())

	assert.Equal(t, 3, stats.Bands[BandClassic].Rounds)
	assert.Equal(t, 1, stats.Bands[BandRaised].Rounds)
	assert.Equal(t, 1, stats.Bands[BandHigh].Rounds)
	assert.InDelta(t, 40.0, stats.BandMean(BandHigh), 1e-9)
	assert.Zero(t, stats.BandMean(99))
}

func TestStatistics_Percentile(t *testing.T) {
	stats := New(30)
	for _, coins := range []int{0, 10, 20, 30, 40} {
		stats.Add(RoundResult{Result: game.ResultPlayerWin, Coins: coins, Target: 21})
	}
	tests := []struct {
		p    float64
		want float64
	}{
		{0, 0},
		{0.25, 10},
		{0.5, 20},
		{0.9, 36},
		{1, 40},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, stats.Percentile(tt.p), 1e-9, "p=%v", tt.p)
	}
}

func TestStatistics_Merge(t *testing.T) {
	a, b, all := New(30), New(30), New(30)
	rounds := []RoundResult{
		{Result: game.ResultPlayerWin, Coins: 10, Target: 21},
		{Result: game.ResultDealerWin, Target: 50},
		{Result: game.ResultPerfect, Coins: 20, Target: 90},
		{Result: game.ResultPush, Target: 21},
	}
	for i, r := range rounds {
		all.Add(r)
		if i%2 == 0 {
			a.Add(r)
		} else {
			b.Add(r)
		}
	}
	a.Merge(b)

	require.NoError(t, a.Validate())
	assert.Equal(t, all.Rounds, a.Rounds)
	assert.InDelta(t, all.Mean(), a.Mean(), 1e-9)
	assert.InDelta(t, all.Variance(), a.Variance(), 1e-9)
	assert.Equal(t, all.Bands, a.Bands)
	assert.Equal(t, all.MaxTarget, a.MaxTarget)
}

func TestTargetBand(t *testing.T) {
	assert.Equal(t, BandClassic, TargetBand(21, 30))
	assert.Equal(t, BandClassic, TargetBand(30, 30))
	assert.Equal(t, BandRaised, TargetBand(31, 30))
	assert.Equal(t, BandRaised, TargetBand(60, 30))
	assert.Equal(t, BandHigh, TargetBand(61, 30))
	assert.Equal(t, "raised", BandNames[BandRaised])
}

func TestStatistics_ValidateCatchesMismatch(t *testing.T) {
	stats := New(30)
	stats.Add(RoundResult{Result: game.ResultPlayerWin, Coins: 10, Target: 21})
	stats.Values = nil
	if err := stats.Validate(); err == nil {
		t.Error("Expected values length mismatch")
	}
}
