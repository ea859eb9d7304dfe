package randutil

// Script is a Source that replays a fixed list of values, falling back to a
// seeded generator once the list is exhausted. Values are reduced modulo n so
// a script never produces an out-of-range result.
type Script struct {
	values   []int
	next     int
	fallback Source
}

// NewScript creates a Script replaying values in order.
func NewScript(values ...int) *Script {
	return &Script{values: values, fallback: New(1)}
}

// IntN implements Source.
func (s *Script) IntN(n int) int {
	if n <= 0 {
		panic("randutil: IntN called with non-positive n")
	}
	if s.next < len(s.values) {
		v := s.values[s.next]
		s.next++
		if v < 0 {
			v = -v
		}
		return v % n
	}
	return s.fallback.IntN(n)
}

// Remaining reports how many scripted values have not been consumed yet.
func (s *Script) Remaining() int {
	return len(s.values) - s.next
}
