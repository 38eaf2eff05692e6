// Package gtfsload parses GTFS tabular files into the in-memory
// Network Index views the routing core consumes. The core never
// imports this package; cmd/skim wires them together.
//
// The per-route cumulative offset vector is derived from the route's
// own schedule when no precomputed inter-stop travel times are
// supplied; ModifiedOffsetsFromDistances accepts an external
// road-network precomputation instead.
package gtfsload

import (
	"fmt"
	"os"
	"path"
	"sort"
	"time"

	"github.com/patrickbr/gtfsparser"
	"github.com/patrickbr/gtfswriter"

	"github.com/blrmetro/raptor-skim/internal/netindex"
	"github.com/blrmetro/raptor-skim/internal/wardmap"
)

// Load parses a GTFS feed directory or zip at path and builds the
// Network Index's schedule-derived views: routes-by-stop,
// stops-by-route, trips-by-route (sorted by start time) and
// footpaths. Fare data is supplied separately (internal/wardmap)
// since it is not part of the standard GTFS tables this loader reads.
// serviceDate anchors GTFS's seconds-since-midnight times to the
// epoch seconds the routing core operates on.
func Load(path string, serviceDate time.Time) (*netindex.Builder[string], error) {
	feed := gtfsparser.NewFeed()
	if err := feed.Parse(path); err != nil {
		return nil, fmt.Errorf("gtfsload: parsing feed at %q: %w", path, err)
	}

	midnight := serviceDate.Truncate(24 * time.Hour).Unix()

	routes_by_stop := map[string][]string{}
	trips_by_route := map[string][]netindex.Trip[string]{}
	longest_trip_by_route := map[string]netindex.Trip[string]{}

	for _, trip := range feed.Trips {
		routeID := trip.Route.Id

		stops := make([]netindex.StopArrival[string], 0, len(trip.StopTimes))
		for _, st := range trip.StopTimes {
			stops = append(stops, netindex.StopArrival[string]{
				Stop: st.Stop().Id,
				Time: midnight + int64(st.Arrival_time().SecondsSinceMidnight()),
			})
		}
		sort.Slice(stops, func(i, j int) bool { return stops[i].Time < stops[j].Time })

		builtTrip := netindex.Trip[string]{Stops: stops}
		trips_by_route[routeID] = append(trips_by_route[routeID], builtTrip)

		if current, ok := longest_trip_by_route[routeID]; !ok || len(builtTrip.Stops) > len(current.Stops) {
			longest_trip_by_route[routeID] = builtTrip
		}

		for _, s := range stops {
			already := false
			for _, r := range routes_by_stop[s.Stop] {
				if r == routeID {
					already = true
					break
				}
			}
			if !already {
				routes_by_stop[s.Stop] = append(routes_by_stop[s.Stop], routeID)
			}
		}
	}

	for route := range trips_by_route {
		sort.Slice(trips_by_route[route], func(i, j int) bool {
			return trips_by_route[route][i].Stops[0].Time < trips_by_route[route][j].Stops[0].Time
		})
	}

	stops_by_route := map[string][]string{}
	for route, trip := range longest_trip_by_route {
		seq := make([]string, len(trip.Stops))
		for i, s := range trip.Stops {
			seq[i] = s.Stop
		}
		stops_by_route[route] = seq
	}

	footpaths := map[string][]netindex.Footpath[string]{}
	for from_to, transfer := range feed.Transfers {
		footpaths[from_to.From_stop.Id] = append(footpaths[from_to.From_stop.Id], netindex.Footpath[string]{
			To:       from_to.To_stop.Id,
			Duration: int64(transfer.Min_transfer_time),
		})
	}

	return &netindex.Builder[string]{
		RoutesByStop:    routes_by_stop,
		StopsByRoute:    stops_by_route,
		TripsByRoute:    trips_by_route,
		ModifiedByRoute: ModifiedOffsetsFromSchedule(stops_by_route, longest_trip_by_route),
		Footpaths:       footpaths,
		Fare:            map[[2]string]float64{},
	}, nil
}

// ModifiedOffsetsFromSchedule derives the per-route cumulative
// inter-stop travel-time vector from the route's representative
// (longest) trip's own scheduled times, normalized so position 0
// carries offset 0.
func ModifiedOffsetsFromSchedule(stopsByRoute map[string][]string, representative map[string]netindex.Trip[string]) map[string][]netindex.StopOffset[string] {
	offsets := map[string][]netindex.StopOffset[string]{}
	for route, trip := range representative {
		if len(trip.Stops) == 0 {
			continue
		}
		base := trip.Stops[0].Time
		vec := make([]netindex.StopOffset[string], len(trip.Stops))
		for i, s := range trip.Stops {
			vec[i] = netindex.StopOffset[string]{Stop: s.Stop, Offset: s.Time - base}
		}
		offsets[route] = vec
	}
	return offsets
}

// ModifiedOffsetsFromDistances derives the vector from externally
// precomputed inter-stop travel times, for callers that carry a
// road-network shortest-path precomputation instead of relying on the
// schedule.
func ModifiedOffsetsFromDistances(stopsByRoute map[string][]string, interStopSeconds func(from, to string) (int64, error)) (map[string][]netindex.StopOffset[string], error) {
	offsets := map[string][]netindex.StopOffset[string]{}
	for route, stops := range stopsByRoute {
		if len(stops) == 0 {
			continue
		}
		vec := make([]netindex.StopOffset[string], len(stops))
		vec[0] = netindex.StopOffset[string]{Stop: stops[0], Offset: 0}
		cumulative := int64(0)
		for i := 1; i < len(stops); i++ {
			d, err := interStopSeconds(stops[i-1], stops[i])
			if err != nil {
				return nil, fmt.Errorf("gtfsload: inter-stop distance %s -> %s: %w", stops[i-1], stops[i], err)
			}
			cumulative += d
			vec[i] = netindex.StopOffset[string]{Stop: stops[i], Offset: cumulative}
		}
		offsets[route] = vec
	}
	return offsets, nil
}

// Stations extracts every stop's geographic position from a GTFS feed
// for wardmap.NearestStation to search against. Unlike Load, this
// reparses the feed rather than threading the already-parsed one
// through, trading a second parse pass for keeping the loader and the
// station-geometry collaborator independently callable.
func Stations(path string) ([]wardmap.Station[string], error) {
	feed := gtfsparser.NewFeed()
	if err := feed.Parse(path); err != nil {
		return nil, fmt.Errorf("gtfsload: parsing feed at %q: %w", path, err)
	}
	stations := make([]wardmap.Station[string], 0, len(feed.Stops))
	for id, stop := range feed.Stops {
		stations = append(stations, wardmap.Station[string]{ID: id, Lat: float64(stop.Lat), Lon: float64(stop.Lon)})
	}
	return stations, nil
}

// DumpNormalizedFeed re-serializes a parsed feed to outPath (a .zip
// file or a directory) -- a round-trip debugging aid that lets an
// operator diff what the loader actually saw against the raw input
// feed. The writer expects the output to already exist, so it is
// created here first.
func DumpNormalizedFeed(feedPath, outPath string) error {
	feed := gtfsparser.NewFeed()
	if err := feed.Parse(feedPath); err != nil {
		return fmt.Errorf("gtfsload: parsing feed at %q: %w", feedPath, err)
	}
	if _, err := os.Stat(outPath); os.IsNotExist(err) {
		if path.Ext(outPath) == ".zip" {
			if _, err := os.Create(outPath); err != nil {
				return fmt.Errorf("gtfsload: creating %q: %w", outPath, err)
			}
		} else {
			if err := os.Mkdir(outPath, os.ModePerm); err != nil {
				return fmt.Errorf("gtfsload: creating %q: %w", outPath, err)
			}
		}
	}
	w := gtfswriter.Writer{ZipCompressionLevel: 9, Sorted: true}
	if err := w.Write(feed, outPath); err != nil {
		return fmt.Errorf("gtfsload: writing normalized feed to %q: %w", outPath, err)
	}
	return nil
}
