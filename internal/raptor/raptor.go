// Package raptor is the driver API: the single entry point that
// orchestrates label-store initialization, the round loop,
// reconstruction and journey analysis, plus the one-to-many and
// route-collecting variants.
package raptor

import (
	"fmt"
	"time"

	"github.com/blrmetro/raptor-skim/internal/journey"
	"github.com/blrmetro/raptor-skim/internal/labelstore"
	"github.com/blrmetro/raptor-skim/internal/netindex"
	"github.com/blrmetro/raptor-skim/internal/reconstruct"
	"github.com/blrmetro/raptor-skim/internal/round"
)

// Options carries the driver API's tuning knobs.
type Options struct {
	MaxTransfer       int
	WalkingFromSource bool
	// ChangeTimeSec is accepted for call-site compatibility but
	// unused: trip selection synthesizes a single trip per route
	// rather than scanning scheduled departures, so there is no
	// notion of a minimum change time at a stop.
	ChangeTimeSec  netindex.Duration
	PrintItinerary bool
}

// TransferMetrics pairs a transfer count with that journey's derived
// metrics -- one entry of a report's TT list.
type TransferMetrics struct {
	Transfers int
	Metrics   journey.Metrics
}

// ParetoReport is a query's output. Old holds the destination's
// arrival time per reached round, in decreasing round order; TT pairs
// each journey's transfer count with its metrics; Journeys holds the
// fully analyzed journeys in the same order.
type ParetoReport[ID comparable] struct {
	Old      []netindex.Time
	TT       []TransferMetrics
	Journeys []journey.Analyzed[ID]
}

// Query runs a single-source, single-destination RAPTOR search over
// rounds 1..MaxTransfer, so a journey uses at most MaxTransfer trips
// (MaxTransfer-1 transfers). It returns (nil, nil, nil) when the
// destination is unreachable within that budget -- normal control
// flow, not an error.
func Query[ID comparable](idx *netindex.Index[ID], source, destination ID, dTime netindex.Time, opts Options) (*ParetoReport[ID], []string, error) {
	if _, ok := idx.StopOrdinal(source); !ok {
		return nil, nil, ErrUnknownStop[ID]{Stop: source}
	}
	if _, ok := idx.StopOrdinal(destination); !ok {
		return nil, nil, ErrUnknownStop[ID]{Stop: destination}
	}

	// source == destination returns an empty journey, transfers = 0,
	// arrival = d_time. No back-pointer is ever set at the source, so
	// the general reconstruction loop would otherwise report this as
	// unreachable.
	if source == destination {
		analyzed, _ := journey.Analyze[ID](reconstruct.Journey[ID]{Transfers: 0}, &dTime, idx.Fare)
		return &ParetoReport[ID]{
			Old:      []netindex.Time{dTime},
			TT:       []TransferMetrics{{Transfers: 0, Metrics: analyzed.Metrics}},
			Journeys: []journey.Analyzed[ID]{analyzed},
		}, nil, nil
	}

	store := labelstore.New(idx, opts.MaxTransfer)
	store.Init(source, dTime)
	if opts.WalkingFromSource {
		round.RelaxSourceFootpaths(idx, store, source)
	}

	for k := 1; k < store.MaxRounds(); k++ {
		marked := round.Run(idx, store, k, []ID{destination}, false)
		if marked == 0 {
			break
		}
	}

	journeys := reconstruct.Single(store, destination, store.MaxRounds())
	if len(journeys) == 0 {
		if opts.PrintItinerary {
			fmt.Println("DESTINATION cannot be reached with given MAX_TRANSFERS")
		}
		return nil, nil, nil
	}

	report := &ParetoReport[ID]{
		Old:      make([]netindex.Time, len(journeys)),
		TT:       make([]TransferMetrics, len(journeys)),
		Journeys: make([]journey.Analyzed[ID], len(journeys)),
	}
	for i, j := range journeys {
		analyzed, err := journey.Analyze[ID](j, nil, idx.Fare)
		if err != nil {
			return nil, nil, err
		}
		report.Journeys[i] = analyzed
		report.TT[i] = TransferMetrics{Transfers: j.Transfers, Metrics: analyzed.Metrics}
		report.Old[i] = store.Label(j.Transfers+1, destination)
	}

	if opts.PrintItinerary {
		for _, line := range FormatItinerary(journeys) {
			fmt.Println(line)
		}
	}

	return report, reconstruct.TripSet(journeys), nil
}

// FormatItinerary renders journeys as human-readable itinerary text,
// one line per leg, a separator between journeys.
func FormatItinerary[ID comparable](journeys []reconstruct.Journey[ID]) []string {
	var lines []string
	for _, j := range journeys {
		for _, leg := range j.Legs {
			if leg.Kind == labelstore.PointerWalk {
				lines = append(lines, fmt.Sprintf("from %v walk till %v for %d seconds",
					leg.Walk.From, leg.Walk.To, leg.Walk.Duration))
			} else {
				lines = append(lines, fmt.Sprintf("from %v board at %s and get down on %v at %s along %s",
					leg.Ride.BoardStop, timeOfDay(leg.Ride.BoardTime),
					leg.Ride.AlightStop, timeOfDay(leg.Ride.AlightTime), leg.Ride.Trip))
			}
		}
		lines = append(lines, "####################################")
	}
	return lines
}

func timeOfDay(t netindex.Time) string {
	return time.Unix(t, 0).UTC().Format("15:04:05")
}

// OneToMany runs a one-to-many query. Target pruning is disabled
// since there is no single destination to bound against. When
// optimized is true the result is the union of trip ids needed to
// cover every reached destination's Pareto set; otherwise routeOf
// extracts a route id from each trip id and the result is the union
// of route ids.
func OneToMany[ID comparable](idx *netindex.Index[ID], source ID, destinations []ID, dTime netindex.Time, opts Options, optimized bool, routeOf func(tripID string) string) ([]string, error) {
	if _, ok := idx.StopOrdinal(source); !ok {
		return nil, ErrUnknownStop[ID]{Stop: source}
	}
	for _, d := range destinations {
		if _, ok := idx.StopOrdinal(d); !ok {
			return nil, ErrUnknownStop[ID]{Stop: d}
		}
	}

	store := labelstore.New(idx, opts.MaxTransfer)
	store.Init(source, dTime)
	if opts.WalkingFromSource {
		round.RelaxSourceFootpaths(idx, store, source)
	}

	for k := 1; k < store.MaxRounds(); k++ {
		marked := round.Run(idx, store, k, destinations, true)
		if marked == 0 {
			break
		}
	}

	return reconstruct.OneToMany(store, destinations, store.MaxRounds(), optimized, routeOf), nil
}
