package prediction

import (
	"fmt"
	"sync/atomic"
)

// Sequencer numbers requests so that replies to superseded requests can be
// dropped instead of overwriting a newer chart.
type Sequencer struct {
	latest atomic.Uint64
}

// Next issues a new sequence number; every earlier one becomes stale.
func (s *Sequencer) Next() uint64 {
	return s.latest.Add(1)
}

func (s *Sequencer) Latest() uint64 {
	return s.latest.Load()
}

func (s *Sequencer) IsLatest(seq uint64) bool {
	return seq != 0 && seq == s.latest.Load()
}

// Accept returns ErrStaleResponse when seq has been superseded.
func (s *Sequencer) Accept(seq uint64) error {
	if latest := s.latest.Load(); seq == 0 || seq != latest {
		return fmt.Errorf("%w: seq=%d latest=%d", ErrStaleResponse, seq, latest)
	}
	return nil
}
