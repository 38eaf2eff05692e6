// Package labelstore holds the per-query RAPTOR label state: the
// per-round arrival labels, the best-ever-arrival labels, the
// back-pointer labels, and the marked-stop queue.
//
// A Store is owned exclusively by one query; there is no locking.
// label/pi are (maxTransfer+1) x numStops slices indexed by stop
// ordinal, not sparse maps, for cache locality.
package labelstore

import "github.com/blrmetro/raptor-skim/internal/netindex"

// PointerKind tags a BackPointer's variant.
type PointerKind int

const (
	// PointerNone is the zero value -- "not set". The absence of a
	// back-pointer is a plain zero-value check, no sentinel needed.
	PointerNone PointerKind = iota
	PointerWalk
	PointerRide
)

// WalkPointer is a footpath back-pointer.
type WalkPointer[ID comparable] struct {
	From     ID
	To       ID
	Duration netindex.Duration
	Arrive   netindex.Time
}

// RidePointer is an in-vehicle back-pointer.
type RidePointer[ID comparable] struct {
	BoardTime  netindex.Time
	BoardStop  ID
	AlightStop ID
	AlightTime netindex.Time
	Trip       string
}

// BackPointer is a tagged union {Walk, Ride}; Kind selects which
// variant is populated.
type BackPointer[ID comparable] struct {
	Kind PointerKind
	Walk WalkPointer[ID]
	Ride RidePointer[ID]
}

// Store is the per-query label/back-pointer/marked-stop state.
type Store[ID comparable] struct {
	idx       *netindex.Index[ID]
	maxRounds int

	label [][]netindex.Time
	best  []netindex.Time
	pi    [][]BackPointer[ID]

	marked     []ID
	markedFlag map[ID]bool
}

// New allocates a Store sized for maxTransfer+1 rounds (rounds 0..maxTransfer).
func New[ID comparable](idx *netindex.Index[ID], maxTransfer int) *Store[ID] {
	num_stops := idx.NumStops()
	max_rounds := maxTransfer + 1

	label := make([][]netindex.Time, max_rounds)
	pi := make([][]BackPointer[ID], max_rounds)
	for k := 0; k < max_rounds; k++ {
		label[k] = make([]netindex.Time, num_stops)
		pi[k] = make([]BackPointer[ID], num_stops)
		for p := 0; p < num_stops; p++ {
			label[k][p] = netindex.Unreachable
		}
	}
	best := make([]netindex.Time, num_stops)
	for p := 0; p < num_stops; p++ {
		best[p] = netindex.Unreachable
	}

	return &Store[ID]{
		idx:        idx,
		maxRounds:  max_rounds,
		label:      label,
		best:       best,
		pi:         pi,
		marked:     nil,
		markedFlag: map[ID]bool{},
	}
}

// Init sets label[0][source] := d_time, best[source] := d_time, and
// marks source for round 1.
func (s *Store[ID]) Init(source ID, dTime netindex.Time) {
	ordinal, ok := s.idx.StopOrdinal(source)
	if !ok {
		return
	}
	s.label[0][ordinal] = dTime
	s.best[ordinal] = dTime
	s.Mark(source)
}

// Mark is idempotent: enqueues stop only if it is not already marked
// within the current round.
func (s *Store[ID]) Mark(stop ID) {
	if s.markedFlag[stop] {
		return
	}
	s.markedFlag[stop] = true
	s.marked = append(s.marked, stop)
}

// Drain returns all currently marked stops and clears both the queue
// and the flags, atomically with respect to the round that consumes
// them.
func (s *Store[ID]) Drain() []ID {
	drained := s.marked
	s.marked = nil
	s.markedFlag = map[ID]bool{}
	return drained
}

// Label returns label[k][p].
func (s *Store[ID]) Label(round int, stop ID) netindex.Time {
	ordinal, ok := s.idx.StopOrdinal(stop)
	if !ok {
		return netindex.Unreachable
	}
	return s.label[round][ordinal]
}

// Best returns best[p].
func (s *Store[ID]) Best(stop ID) netindex.Time {
	ordinal, ok := s.idx.StopOrdinal(stop)
	if !ok {
		return netindex.Unreachable
	}
	return s.best[ordinal]
}

// SetLabel records label[k][p] := t, best[p] := min(best[p], t), and
// pi[k][p] := pointer, then marks p. Callers are expected to have
// already checked the `<` guard against best before calling this.
func (s *Store[ID]) SetLabel(round int, stop ID, t netindex.Time, pointer BackPointer[ID]) {
	ordinal, ok := s.idx.StopOrdinal(stop)
	if !ok {
		return
	}
	s.label[round][ordinal] = t
	if t < s.best[ordinal] {
		s.best[ordinal] = t
	}
	s.pi[round][ordinal] = pointer
	s.Mark(stop)
}

// PeekMarked returns the stops currently queued for the next round
// without draining them -- used by the round engine to report how
// many stops it marked after it has already finished writing to the
// queue for the round that follows.
func (s *Store[ID]) PeekMarked() []ID { return s.marked }

// Pointer returns pi[k][p]; Kind == PointerNone means not set.
func (s *Store[ID]) Pointer(round int, stop ID) BackPointer[ID] {
	ordinal, ok := s.idx.StopOrdinal(stop)
	if !ok {
		return BackPointer[ID]{}
	}
	return s.pi[round][ordinal]
}

// MaxRounds is the number of rounds this store was sized for
// (maxTransfer + 1).
func (s *Store[ID]) MaxRounds() int { return s.maxRounds }

// CarryForward copies the whole of label[k-1] into label[k],
// overwriting any value already in round k. RAPTOR requires
// label[k][p] <= label[k-1][p]; the round engine calls this once at
// the start of round k, before anything is written to round k, so
// that the inequality holds trivially for stops the round doesn't
// touch.
func (s *Store[ID]) CarryForward(round int) {
	if round == 0 {
		return
	}
	copy(s.label[round], s.label[round-1])
}
