package infrastructure

import "sync/atomic"

// SequenceGenerator numbers outbound requests so the collector can spot gaps.
type SequenceGenerator struct {
	seq atomic.Uint64
}

// Next returns the next sequence number, starting at 1.
func (g *SequenceGenerator) Next() uint64 {
	return g.seq.Add(1)
}
