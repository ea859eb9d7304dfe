package statistics

import (
	"fmt"
	"math"
	"sort"

	"github.com/lox/spelljack/internal/game"
)

// RoundResult is the outcome of one simulated round
type RoundResult struct {
	Seed        int64       // RNG seed for this round (for replay)
	Result      game.Result // How the round ended
	Coins       int         // Coins credited to the session
	PlayerScore int
	DealerScore int
	Target      int
	Cards       int  // Cards in the player's final hand
	Busted      bool // Player finished above the target
	Specials    int  // Special cards activated during the round
}

// Target bands used to split results by how far the round's target drifted.
const (
	BandClassic = iota // target up to the classic limit
	BandRaised         // target up to 60
	BandHigh           // anything above
	numBands
)

// BandNames labels the target bands.
var BandNames = [numBands]string{"classic", "raised", "high"}

// TargetBand returns the band a target falls in.
func TargetBand(target, classicLimit int) int {
	switch {
	case target <= classicLimit:
		return BandClassic
	case target <= 60:
		return BandRaised
	}
	return BandHigh
}

// BandStats tracks statistics for one target band
type BandStats struct {
	Rounds    int
	Wins      int
	SumCoins  float64
	SumCoins2 float64
}

// Statistics aggregates simulated rounds
type Statistics struct {
	Rounds    int
	SumCoins  float64
	SumCoins2 float64   // Sum of squares for variance calculation
	Values    []float64 // Store all values for median/percentile calculation

	Wins     int // includes perfects
	Perfects int
	Losses   int
	Pushes   int
	Aborted  int // insufficient cards
	Busts    int
	Specials int

	ClassicLimit int
	Bands        [numBands]BandStats

	MaxCoins  int
	MaxTarget int
}

// New creates Statistics that band targets against classicLimit.
func New(classicLimit int) *Statistics {
	return &Statistics{ClassicLimit: classicLimit}
}

// Mean returns the mean coins won per round
func (s *Statistics) Mean() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.SumCoins / float64(s.Rounds)
}

// Variance returns the sample variance of coins per round
func (s *Statistics) Variance() float64 {
	if s.Rounds < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumCoins2 - float64(s.Rounds)*mean*mean) / float64(s.Rounds-1)
}

// StdDev returns the sample standard deviation
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(math.Max(s.Variance(), 0))
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Rounds))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Add incorporates one round
func (s *Statistics) Add(r RoundResult) {
	coins := float64(r.Coins)
	s.Rounds++
	s.SumCoins += coins
	s.SumCoins2 += coins * coins
	s.Values = append(s.Values, coins)
	s.Specials += r.Specials

	switch r.Result {
	case game.ResultPerfect:
		s.Perfects++
		s.Wins++
	case game.ResultPlayerWin:
		s.Wins++
	case game.ResultDealerWin:
		s.Losses++
	case game.ResultPush:
		s.Pushes++
	case game.ResultInsufficientCards:
		s.Aborted++
	}
	if r.Busted {
		s.Busts++
	}

	band := &s.Bands[TargetBand(r.Target, s.ClassicLimit)]
	band.Rounds++
	band.SumCoins += coins
	band.SumCoins2 += coins * coins
	if r.Result.PlayerWon() {
		band.Wins++
	}

	s.MaxCoins = max(s.MaxCoins, r.Coins)
	s.MaxTarget = max(s.MaxTarget, r.Target)
}

// Merge folds other into s
func (s *Statistics) Merge(other *Statistics) {
	s.Rounds += other.Rounds
	s.SumCoins += other.SumCoins
	s.SumCoins2 += other.SumCoins2
	s.Values = append(s.Values, other.Values...)
	s.Wins += other.Wins
	s.Perfects += other.Perfects
	s.Losses += other.Losses
	s.Pushes += other.Pushes
	s.Aborted += other.Aborted
	s.Busts += other.Busts
	s.Specials += other.Specials
	for i := range s.Bands {
		s.Bands[i].Rounds += other.Bands[i].Rounds
		s.Bands[i].Wins += other.Bands[i].Wins
		s.Bands[i].SumCoins += other.Bands[i].SumCoins
		s.Bands[i].SumCoins2 += other.Bands[i].SumCoins2
	}
	s.MaxCoins = max(s.MaxCoins, other.MaxCoins)
	s.MaxTarget = max(s.MaxTarget, other.MaxTarget)
}

// Rate returns n as a fraction of all rounds
func (s *Statistics) Rate(n int) float64 {
	if s.Rounds == 0 {
		return 0
	}
	return float64(n) / float64(s.Rounds)
}

// WinRate returns the fraction of rounds the player won
func (s *Statistics) WinRate() float64 { return s.Rate(s.Wins) }

// Median returns the median coins per round
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the value at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// BandMean returns the mean coins for a target band
func (s *Statistics) BandMean(band int) float64 {
	if band < 0 || band >= numBands || s.Bands[band].Rounds == 0 {
		return 0
	}
	return s.Bands[band].SumCoins / float64(s.Bands[band].Rounds)
}

// Validate checks that the counters agree with each other
func (s *Statistics) Validate() error {
	if s.Rounds <= 0 {
		return fmt.Errorf("invalid rounds count: %d", s.Rounds)
	}
	if len(s.Values) != s.Rounds {
		return fmt.Errorf("values length (%d) does not match rounds (%d)", len(s.Values), s.Rounds)
	}
	if total := s.Wins + s.Losses + s.Pushes + s.Aborted; total != s.Rounds {
		return fmt.Errorf("outcome total (%d) does not match rounds (%d)", total, s.Rounds)
	}
	if s.Perfects > s.Wins {
		return fmt.Errorf("perfects (%d) exceed wins (%d)", s.Perfects, s.Wins)
	}
	bandRounds := 0
	for _, b := range s.Bands {
		bandRounds += b.Rounds
	}
	if bandRounds != s.Rounds {
		return fmt.Errorf("band rounds total (%d) does not match rounds (%d)", bandRounds, s.Rounds)
	}
	return nil
}
