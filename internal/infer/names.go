package infer

import "strconv"

// nameSupply yields an infinite stream of distinct type-variable names:
// $a..$z, $a1..$z1, and so on.
type nameSupply struct {
	letter int
	round  int
}

func (s *nameSupply) next() string {
	name := "$" + string(rune('a'+s.letter))
	if s.round > 0 {
		name += strconv.Itoa(s.round)
	}
	s.letter++
	if s.letter == 26 {
		s.letter = 0
		s.round++
	}
	return name
}
