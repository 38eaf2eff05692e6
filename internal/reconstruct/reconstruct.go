// Package reconstruct walks RAPTOR back-pointers from a destination
// back to a source, one reached round at a time, producing the
// Pareto-optimal itineraries of a finished query.
//
// A Walk leg keeps the backtracking cursor in its current round; only
// a Ride leg moves it down one. Walks are free transfers within a
// round, and reconstruction mirrors that exactly.
package reconstruct

import "github.com/blrmetro/raptor-skim/internal/labelstore"

// Leg is one step of a reconstructed journey, in chronological order.
type Leg[ID comparable] = labelstore.BackPointer[ID]

// Journey is one Pareto-optimal itinerary: the number of transfers it
// took and its ordered, chronological leg sequence. Transfers is k-1
// for a journey reached in round k, so a walk-only journey reached in
// round 0 carries -1.
type Journey[ID comparable] struct {
	Transfers int
	Legs      []Leg[ID]
}

// reachedRounds returns, in decreasing order, every round in which
// pi[k][destination] is set.
func reachedRounds[ID comparable](store *labelstore.Store[ID], destination ID, maxRounds int) []int {
	rounds := make([]int, 0, maxRounds)
	for k := 0; k < maxRounds; k++ {
		if store.Pointer(k, destination).Kind != labelstore.PointerNone {
			rounds = append(rounds, k)
		}
	}
	for i, j := 0, len(rounds)-1; i < j; i, j = i+1, j-1 {
		rounds[i], rounds[j] = rounds[j], rounds[i]
	}
	return rounds
}

// walkBack reconstructs a single journey ending at `destination`,
// reached in round k: a Walk leg moves `stop` to its From field
// without changing the round; a Ride leg moves it to BoardStop and
// decrements the round.
func walkBack[ID comparable](store *labelstore.Store[ID], destination ID, round int) []Leg[ID] {
	var journey []Leg[ID]
	stop := destination
	cursorRound := round
	for {
		p := store.Pointer(cursorRound, stop)
		if p.Kind == labelstore.PointerNone {
			break
		}
		journey = append(journey, p)
		switch p.Kind {
		case labelstore.PointerWalk:
			stop = p.Walk.From
		case labelstore.PointerRide:
			stop = p.Ride.BoardStop
			cursorRound--
		}
	}
	for i, j := 0, len(journey)-1; i < j; i, j = i+1, j-1 {
		journey[i], journey[j] = journey[j], journey[i]
	}
	return journey
}

// Single reconstructs every Pareto-optimal journey reaching a single
// destination, one per round in which it was reached. Returns an
// empty slice if the destination is unreachable -- normal control
// flow, not an error.
func Single[ID comparable](store *labelstore.Store[ID], destination ID, maxRounds int) []Journey[ID] {
	rounds := reachedRounds(store, destination, maxRounds)
	journeys := make([]Journey[ID], 0, len(rounds))
	for _, k := range rounds {
		journeys = append(journeys, Journey[ID]{
			Transfers: k - 1,
			Legs:      walkBack(store, destination, k),
		})
	}
	return journeys
}

// TripSet returns the union of trip ids appearing in Ride legs across
// every reported journey.
func TripSet[ID comparable](journeys []Journey[ID]) []string {
	seen := map[string]bool{}
	var trips []string
	for _, j := range journeys {
		for _, leg := range j.Legs {
			if leg.Kind == labelstore.PointerRide && !seen[leg.Ride.Trip] {
				seen[leg.Ride.Trip] = true
				trips = append(trips, leg.Ride.Trip)
			}
		}
	}
	return trips
}

// OneToMany reconstructs the trip set (or, when optimized is false,
// the route set) needed to cover every reached destination's
// Pareto-optimal journeys.
func OneToMany[ID comparable](store *labelstore.Store[ID], destinations []ID, maxRounds int, optimized bool, routeOf func(tripID string) string) []string {
	if optimized {
		seen := map[string]bool{}
		var trips []string
		for _, dest := range destinations {
			for _, j := range Single(store, dest, maxRounds) {
				for _, leg := range j.Legs {
					if leg.Kind == labelstore.PointerRide && !seen[leg.Ride.Trip] {
						seen[leg.Ride.Trip] = true
						trips = append(trips, leg.Ride.Trip)
					}
				}
			}
		}
		return trips
	}

	seen := map[string]bool{}
	var routes []string
	for _, dest := range destinations {
		for _, j := range Single(store, dest, maxRounds) {
			for _, leg := range j.Legs {
				if leg.Kind == labelstore.PointerRide {
					r := routeOf(leg.Ride.Trip)
					if !seen[r] {
						seen[r] = true
						routes = append(routes, r)
					}
				}
			}
		}
	}
	return routes
}
