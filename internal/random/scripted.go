package random

import "sync"

// Scripted replays fixed values and is meant for tests and forced outcomes.
// Ints and Floats are consumed in order; when a queue runs dry the fallback
// values are returned. Int values are reduced modulo n.
type Scripted struct {
	mu     sync.Mutex
	Ints   []int
	Floats []float64

	FallbackInt   int
	FallbackFloat float64
}

func (s *Scripted) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.FallbackInt
	if len(s.Ints) > 0 {
		v = s.Ints[0]
		s.Ints = s.Ints[1:]
	}
	if v < 0 {
		v = -v
	}
	return v % n
}

func (s *Scripted) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.FallbackFloat
	if len(s.Floats) > 0 {
		v = s.Floats[0]
		s.Floats = s.Floats[1:]
	}
	return v
}
