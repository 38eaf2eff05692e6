// Package netindex holds the immutable, read-only views the RAPTOR
// round engine scans: routes through a stop, stops on a route, trips
// on a route, the per-route cumulative travel-offset vector, footpaths
// and the fare table.
//
// A single comparable id type stands in for both stop ids and route
// ids, since GTFS feeds already guarantee those namespaces don't
// collide once they've been through the loader.
package netindex

import "fmt"

// Time is seconds since epoch. Unreachable is a fixed sentinel instead
// of a wall-clock-derived one so that two runs of the same query are
// byte-identical.
type Time = int64

// Duration is a span of seconds.
type Duration = int64

// Unreachable stands in for "no label reached this stop yet". Any
// value provably larger than a realistic arrival time works; this one
// leaves room to add any realistic duration to it without overflowing
// (adding two such values would overflow int64).
const Unreachable Time = 1 << 62

// StopArrival is one (stop, time) pair inside a trip or a modified
// offset vector.
type StopArrival[ID comparable] struct {
	Stop ID
	Time Time
}

// StopOffset is one (stop, cumulative-offset) pair in a route's
// travel-time vector.
type StopOffset[ID comparable] struct {
	Stop   ID
	Offset Duration
}

// Trip is one scheduled run of a route: an ordered list of (stop,
// arrival time), sorted by position on the route.
type Trip[ID comparable] struct {
	Stops []StopArrival[ID]
}

// Footpath is one symmetric walking transfer leaving a stop.
type Footpath[ID comparable] struct {
	To       ID
	Duration Duration
}

type routeStopKey[ID comparable] struct {
	Route ID
	Stop  ID
}

type fareKey[ID comparable] struct {
	From ID
	To   ID
}

// Index is the immutable Network Index consumed by the round engine.
// Build it once per network (or per service day) and share it
// read-only across concurrent queries.
type Index[ID comparable] struct {
	routesByStop    map[ID][]ID
	stopsByRoute    map[ID][]ID
	tripsByRoute    map[ID][]Trip[ID]
	modifiedByRoute map[ID][]StopOffset[ID]
	footpaths       map[ID][]Footpath[ID]
	idxByRouteStop  map[routeStopKey[ID]]int
	fare            map[fareKey[ID]]float64

	stopOrdinal map[ID]int
	stops       []ID
}

// Builder assembles an Index incrementally. A real loader
// (internal/gtfsload) fills one of these field-by-field; tests build
// one by hand.
type Builder[ID comparable] struct {
	RoutesByStop    map[ID][]ID
	StopsByRoute    map[ID][]ID
	TripsByRoute    map[ID][]Trip[ID]
	ModifiedByRoute map[ID][]StopOffset[ID]
	Footpaths       map[ID][]Footpath[ID]
	Fare            map[[2]ID]float64
}

// Build validates that every trip's arrival times are monotonically
// non-decreasing, failing fast on an inconsistent trip, and derives
// the dense stop-ordinal table the round engine and label store rely
// on for allocation.
func (b Builder[ID]) Build() (*Index[ID], error) {
	for route, trips := range b.TripsByRoute {
		for _, trip := range trips {
			for i := 1; i < len(trip.Stops); i++ {
				if trip.Stops[i].Time < trip.Stops[i-1].Time {
					return nil, fmt.Errorf("netindex: inconsistent trip on route %v: arrival at %v (%d) precedes arrival at %v (%d)",
						route, trip.Stops[i].Stop, trip.Stops[i].Time, trip.Stops[i-1].Stop, trip.Stops[i-1].Time)
				}
			}
		}
	}

	idx_by_route_stop := map[routeStopKey[ID]]int{}
	for route, stops := range b.StopsByRoute {
		for position, stop := range stops {
			idx_by_route_stop[routeStopKey[ID]{Route: route, Stop: stop}] = position
		}
	}

	fare := map[fareKey[ID]]float64{}
	for pair, price := range b.Fare {
		fare[fareKey[ID]{From: pair[0], To: pair[1]}] = price
	}

	stop_ordinal := map[ID]int{}
	stops := make([]ID, 0, len(b.RoutesByStop))
	for stop := range b.RoutesByStop {
		stop_ordinal[stop] = len(stops)
		stops = append(stops, stop)
	}

	return &Index[ID]{
		routesByStop:    b.RoutesByStop,
		stopsByRoute:    b.StopsByRoute,
		tripsByRoute:    b.TripsByRoute,
		modifiedByRoute: b.ModifiedByRoute,
		footpaths:       b.Footpaths,
		idxByRouteStop:  idx_by_route_stop,
		fare:            fare,
		stopOrdinal:     stop_ordinal,
		stops:           stops,
	}, nil
}

// NumStops returns how many distinct stops the index knows about --
// used to size the label store's dense per-round arrays.
func (idx *Index[ID]) NumStops() int { return len(idx.stops) }

// StopOrdinal maps a stop id to its dense array position. Returns
// (0, false) if the stop is not part of this index.
func (idx *Index[ID]) StopOrdinal(stop ID) (int, bool) {
	o, ok := idx.stopOrdinal[stop]
	return o, ok
}

// Stop returns the stop id at a given dense ordinal.
func (idx *Index[ID]) Stop(ordinal int) ID { return idx.stops[ordinal] }

// RoutesByStop returns the ordered list of routes passing through a
// stop.
func (idx *Index[ID]) RoutesByStop(stop ID) []ID { return idx.routesByStop[stop] }

// StopsByRoute returns a route's ordered stop sequence.
func (idx *Index[ID]) StopsByRoute(route ID) []ID { return idx.stopsByRoute[route] }

// Footpaths returns the symmetric walking transfers leaving a stop.
func (idx *Index[ID]) Footpaths(stop ID) []Footpath[ID] { return idx.footpaths[stop] }

// IdxByRouteStop returns a stop's position along a route.
func (idx *Index[ID]) IdxByRouteStop(route, stop ID) (int, bool) {
	p, ok := idx.idxByRouteStop[routeStopKey[ID]{Route: route, Stop: stop}]
	return p, ok
}

// ModifiedOffsets returns a route's cumulative inter-stop travel-time
// vector, position 0 always carrying offset 0.
func (idx *Index[ID]) ModifiedOffsets(route ID) []StopOffset[ID] { return idx.modifiedByRoute[route] }

// ErrMissingFareEdge is returned by Fare when an in-vehicle segment has
// no fare entry -- fatal for the cost metric. Callers must not
// silently treat a missing entry as zero.
type ErrMissingFareEdge[ID comparable] struct {
	From, To ID
}

func (e ErrMissingFareEdge[ID]) Error() string {
	return fmt.Sprintf("netindex: no fare entry for segment %v -> %v", e.From, e.To)
}

// Fare looks up the piecewise fare for an in-vehicle segment.
func (idx *Index[ID]) Fare(from, to ID) (float64, error) {
	price, ok := idx.fare[fareKey[ID]{From: from, To: to}]
	if !ok {
		return 0, ErrMissingFareEdge[ID]{From: from, To: to}
	}
	return price, nil
}
