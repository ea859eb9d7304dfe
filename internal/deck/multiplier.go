package deck

import "fmt"

// Multiplier is a suit score multiplier stored in tenths, so 23 means x2.3.
// Multipliers are always generated at one decimal place, which makes tenths
// exact and keeps scoring in integer arithmetic.
type Multiplier int

const (
	MinMultiplier Multiplier = 10
	MaxMultiplier Multiplier = 40
)

// Clamp bounds m to [MinMultiplier, MaxMultiplier].
func (m Multiplier) Clamp() Multiplier {
	if m < MinMultiplier {
		return MinMultiplier
	}
	if m > MaxMultiplier {
		return MaxMultiplier
	}
	return m
}

// Apply returns floor(value × m).
func (m Multiplier) Apply(value int) int {
	return value * int(m) / 10
}

// Float returns the multiplier as a decimal.
func (m Multiplier) Float() float64 {
	return float64(m) / 10
}

func (m Multiplier) String() string {
	return fmt.Sprintf("x%d.%d", int(m)/10, int(m)%10)
}

// Multipliers holds the live multiplier for each suit.
type Multipliers [4]Multiplier

// Uniform returns multipliers with every suit set to m.
func Uniform(m Multiplier) Multipliers {
	return Multipliers{m, m, m, m}
}

// Get returns the multiplier for s.
func (ms Multipliers) Get(s Suit) Multiplier {
	if !s.Valid() {
		return MinMultiplier
	}
	return ms[s]
}

// Set stores m for s, clamped to the legal range.
func (ms *Multipliers) Set(s Suit, m Multiplier) {
	if !s.Valid() {
		return
	}
	ms[s] = m.Clamp()
}
