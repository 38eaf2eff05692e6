// Package round implements one RAPTOR round: route collection from
// marked stops (Phase A), the per-route trip-hop scan (Phase B), and
// footpath relaxation (Phase C).
//
// Every route carries a single synthetic trip whose inter-stop travel
// times come from the precomputed cumulative offset vector, so trip
// selection is a closed-form lookup rather than a binary search over
// scheduled stop times.
package round

import (
	"fmt"
	"sort"

	"github.com/blrmetro/raptor-skim/internal/labelstore"
	"github.com/blrmetro/raptor-skim/internal/netindex"
)

// LatestTrip selects the trip to board on route r given the earliest
// feasible boarding time tau. Every route has a single synthetic trip
// whose inter-stop travel times are the precomputed offset vector, so
// the result is always the trip id "<r>_0" and the itinerary
// [(stop, tau + offset)].
func LatestTrip[ID comparable](idx *netindex.Index[ID], route ID, tau netindex.Time) (string, []netindex.StopArrival[ID]) {
	offsets := idx.ModifiedOffsets(route)
	itinerary := make([]netindex.StopArrival[ID], len(offsets))
	for i, so := range offsets {
		itinerary[i] = netindex.StopArrival[ID]{Stop: so.Stop, Time: tau + so.Offset}
	}
	return fmt.Sprintf("%v_0", route), itinerary
}

// routeEntry is one Phase A collection result: the earliest-position
// marked stop at which a route scan should begin boarding.
type routeEntry[ID comparable] struct {
	route    ID
	boardAt  ID
	position int
}

// targetBound computes the bound Phase B prunes candidate arrivals
// against. For a single destination this is best[DESTINATION]; for a
// one-to-many query target pruning must be disabled or computed
// against the max of the destination set, since
// pruning against any single destination's best could discard a path
// that still improves a different, not-yet-reached destination.
func targetBound[ID comparable](store *labelstore.Store[ID], destinations []ID, disablePruning bool) netindex.Time {
	if disablePruning || len(destinations) == 0 {
		return netindex.Unreachable
	}
	bound := store.Best(destinations[0])
	for _, d := range destinations[1:] {
		if b := store.Best(d); b > bound {
			bound = b
		}
	}
	return bound
}

// Run performs round k (k >= 1), reading label[k-1]/best from the
// store and the previous round's marked stops, and returns the number
// of stops marked for round k+1. Zero means the engine can stop
// early: a round that marks nothing can never be followed by one that
// marks anything.
func Run[ID comparable](idx *netindex.Index[ID], store *labelstore.Store[ID], round int, destinations []ID, disablePruning bool) int {
	store.CarryForward(round)
	markedFromPrevRound := store.Drain()
	sort.Slice(markedFromPrevRound, func(i, j int) bool {
		oi, _ := idx.StopOrdinal(markedFromPrevRound[i])
		oj, _ := idx.StopOrdinal(markedFromPrevRound[j])
		return oi < oj
	})

	// Phase A -- route collection: Q[route] is the earliest-index
	// marked stop touching that route.
	q := map[ID]routeEntry[ID]{}
	for _, stop := range markedFromPrevRound {
		for _, route := range idx.RoutesByStop(stop) {
			position, ok := idx.IdxByRouteStop(route, stop)
			if !ok {
				continue
			}
			existing, has := q[route]
			if !has || position < existing.position {
				q[route] = routeEntry[ID]{route: route, boardAt: stop, position: position}
			}
		}
	}

	routes := make([]ID, 0, len(q))
	for _, e := range q {
		routes = append(routes, e.route)
	}
	sort.Slice(routes, func(i, j int) bool { return fmt.Sprint(routes[i]) < fmt.Sprint(routes[j]) })

	markedInPhaseB := map[ID]bool{}

	// Phase B -- route scan.
	for _, route := range routes {
		entry := q[route]
		tau := store.Label(round-1, entry.boardAt)
		if tau >= netindex.Unreachable {
			continue
		}
		tripID, itinerary := LatestTrip(idx, route, tau)

		boardStop := entry.boardAt
		boardTime := tau
		boardOffset := itinerary[entry.position].Time - tau

		for j := entry.position + 1; j < len(itinerary); j++ {
			stopJ := itinerary[j].Stop
			offsetJ := itinerary[j].Time - tau
			candidate := boardTime + (offsetJ - boardOffset)

			bound := store.Best(stopJ)
			if tb := targetBound(store, destinations, disablePruning); tb < bound {
				bound = tb
			}
			if candidate < bound {
				store.SetLabel(round, stopJ, candidate, labelstore.BackPointer[ID]{
					Kind: labelstore.PointerRide,
					Ride: labelstore.RidePointer[ID]{
						BoardTime:  boardTime,
						BoardStop:  boardStop,
						AlightStop: stopJ,
						AlightTime: candidate,
						Trip:       tripID,
					},
				})
				markedInPhaseB[stopJ] = true
			}

			// earlier boarding now possible: re-evaluate the trip as of
			// this stop, which becomes the boarding stop for everything
			// downstream.
			if prev := store.Label(round-1, stopJ); prev < candidate {
				boardStop = stopJ
				boardTime = prev
				boardOffset = offsetJ
			}
		}
	}

	// Phase C -- footpath relaxation, scanning only the stops marked
	// during Phase B. Footpaths never chain within a round: the newly
	// reached stops are not themselves re-scanned for outgoing
	// footpaths in this same phase.
	phaseBStops := make([]ID, 0, len(markedInPhaseB))
	for stop := range markedInPhaseB {
		phaseBStops = append(phaseBStops, stop)
	}
	sort.Slice(phaseBStops, func(i, j int) bool {
		oi, _ := idx.StopOrdinal(phaseBStops[i])
		oj, _ := idx.StopOrdinal(phaseBStops[j])
		return oi < oj
	})

	for _, p := range phaseBStops {
		arrivalAtP := store.Label(round, p)
		for _, fp := range idx.Footpaths(p) {
			candidate := arrivalAtP + fp.Duration
			if candidate < store.Label(round, fp.To) {
				store.SetLabel(round, fp.To, candidate, labelstore.BackPointer[ID]{
					Kind: labelstore.PointerWalk,
					Walk: labelstore.WalkPointer[ID]{
						From:     p,
						To:       fp.To,
						Duration: fp.Duration,
						Arrive:   candidate,
					},
				})
			}
		}
	}

	return len(store.PeekMarked())
}

// RelaxSourceFootpaths performs the single pre-round-1 footpath
// relaxation from the source stop. It writes into round 0 so that
// round 1's Phase A sees the walked-to stops as already reached.
func RelaxSourceFootpaths[ID comparable](idx *netindex.Index[ID], store *labelstore.Store[ID], source ID) {
	dTime := store.Label(0, source)
	for _, fp := range idx.Footpaths(source) {
		candidate := dTime + fp.Duration
		if candidate < store.Label(0, fp.To) {
			store.SetLabel(0, fp.To, candidate, labelstore.BackPointer[ID]{
				Kind: labelstore.PointerWalk,
				Walk: labelstore.WalkPointer[ID]{
					From:     source,
					To:       fp.To,
					Duration: fp.Duration,
					Arrive:   candidate,
				},
			})
		}
	}
}
