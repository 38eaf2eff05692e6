// Package journey converts a reconstructed back-pointer chain into
// typed legs and the derived scalar metrics a skim matrix row needs:
// in-vehicle time, out-of-vehicle time, wait time, walk time, fare and
// transfer count.
package journey

import (
	"math"

	"github.com/blrmetro/raptor-skim/internal/labelstore"
	"github.com/blrmetro/raptor-skim/internal/netindex"
	"github.com/blrmetro/raptor-skim/internal/reconstruct"
)

// LegKind tags whether a leg is a walk or an in-vehicle ride.
type LegKind int

const (
	LegWalk LegKind = iota
	LegRide
)

// Leg is one typed, timestamped step of an analyzed journey.
type Leg[ID comparable] struct {
	Kind      LegKind
	StartTime netindex.Time
	EndTime   netindex.Time
	Duration  netindex.Duration
	StartStop ID
	EndStop   ID
	TripID    string // empty for Walk legs
}

// Metrics holds the derived scalar attributes of one journey, each
// rounded to 2 decimal places.
type Metrics struct {
	IVTT     float64
	OVTT     float64
	WaitTime float64
	WalkTime float64
	Cost     float64
}

// Analyzed is one fully decomposed journey: its typed legs, its
// metrics, and the start time those metrics were computed against.
type Analyzed[ID comparable] struct {
	Transfers int
	StartTime netindex.Time
	Legs      []Leg[ID]
	Metrics   Metrics
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// pseudoStartTime derives the journey's nominal start when no explicit
// departure time is supplied: if the first leg is a walk, back it out
// from the walk's arrival and duration; if it's a ride, use the
// boarding time and treat the initial wait as zero.
func pseudoStartTime[ID comparable](first reconstruct.Leg[ID]) netindex.Time {
	if first.Kind == labelstore.PointerWalk {
		return first.Walk.Arrive - first.Walk.Duration
	}
	return first.Ride.BoardTime
}

// Analyze decomposes one reconstructed journey into typed legs and
// computes its derived metrics. dTime, when non-nil, is the explicit
// departure time; otherwise the pseudo-start-time rule applies. fare
// looks up the per-segment cost table and returns
// netindex.ErrMissingFareEdge for an unpriced in-vehicle segment,
// propagated to the caller rather than silently treated as zero.
func Analyze[ID comparable](journey reconstruct.Journey[ID], dTime *netindex.Time, fare func(from, to ID) (float64, error)) (Analyzed[ID], error) {
	if len(journey.Legs) == 0 {
		start := netindex.Time(0)
		if dTime != nil {
			start = *dTime
		}
		return Analyzed[ID]{Transfers: journey.Transfers, StartTime: start}, nil
	}

	start := pseudoStartTime[ID](journey.Legs[0])
	if dTime != nil {
		start = *dTime
	}

	// a walk leg starts the moment the previous leg ends (there is no
	// waiting before walking), so the running clock, not arrive minus
	// duration, is its start time.
	legs := make([]Leg[ID], len(journey.Legs))
	cursor := start
	for i, bp := range journey.Legs {
		if bp.Kind == labelstore.PointerWalk {
			legs[i] = Leg[ID]{
				Kind:      LegWalk,
				StartTime: cursor,
				EndTime:   bp.Walk.Arrive,
				Duration:  bp.Walk.Duration,
				StartStop: bp.Walk.From,
				EndStop:   bp.Walk.To,
			}
		} else {
			legs[i] = Leg[ID]{
				Kind:      LegRide,
				StartTime: bp.Ride.BoardTime,
				EndTime:   bp.Ride.AlightTime,
				Duration:  bp.Ride.AlightTime - bp.Ride.BoardTime,
				StartStop: bp.Ride.BoardStop,
				EndStop:   bp.Ride.AlightStop,
				TripID:    bp.Ride.Trip,
			}
		}
		cursor = legs[i].EndTime
	}

	var walkTime, waitTime, ivtt, cost float64
	prevEnd := start
	for _, leg := range legs {
		waitTime += float64(leg.StartTime - prevEnd)
		prevEnd = leg.EndTime

		switch leg.Kind {
		case LegWalk:
			walkTime += float64(leg.Duration)
		case LegRide:
			ivtt += float64(leg.Duration)
			price, err := fare(leg.StartStop, leg.EndStop)
			if err != nil {
				return Analyzed[ID]{}, err
			}
			cost += price
		}
	}

	return Analyzed[ID]{
		Transfers: journey.Transfers,
		StartTime: start,
		Legs:      legs,
		Metrics: Metrics{
			IVTT:     round2(ivtt),
			OVTT:     round2(walkTime + waitTime),
			WaitTime: round2(waitTime),
			WalkTime: round2(walkTime),
			Cost:     round2(cost),
		},
	}, nil
}
