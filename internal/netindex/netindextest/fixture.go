// Package netindextest provides the synthetic network fixture the
// end-to-end scenarios are built around, shared across every
// package's test suite. It is a regular package rather than a
// _test.go file so other packages' tests can import it; it is never
// imported by production code.
package netindextest

import (
	"testing"

	"github.com/blrmetro/raptor-skim/internal/netindex"
)

// ToyNetwork builds the four-stop synthetic network: stops A,B,C,D;
// route R1 [A,B,C]; route R2 [B,D]; footpaths (C,D) and (D,C) at
// 120s; fares (A,C)=10, (A,B)=5, (B,D)=7.
func ToyNetwork(t testing.TB) *netindex.Index[string] {
	t.Helper()
	b := netindex.Builder[string]{
		RoutesByStop: map[string][]string{
			"A": {"R1"},
			"B": {"R1", "R2"},
			"C": {"R1"},
			"D": {"R2"},
		},
		StopsByRoute: map[string][]string{
			"R1": {"A", "B", "C"},
			"R2": {"B", "D"},
		},
		TripsByRoute: map[string][]netindex.Trip[string]{
			"R1": {{Stops: []netindex.StopArrival[string]{{Stop: "A", Time: 1000}, {Stop: "B", Time: 1300}, {Stop: "C", Time: 1600}}}},
			"R2": {{Stops: []netindex.StopArrival[string]{{Stop: "B", Time: 1000}, {Stop: "D", Time: 1400}}}},
		},
		ModifiedByRoute: map[string][]netindex.StopOffset[string]{
			"R1": {{Stop: "A", Offset: 0}, {Stop: "B", Offset: 300}, {Stop: "C", Offset: 600}},
			"R2": {{Stop: "B", Offset: 0}, {Stop: "D", Offset: 400}},
		},
		Footpaths: map[string][]netindex.Footpath[string]{
			"C": {{To: "D", Duration: 120}},
			"D": {{To: "C", Duration: 120}},
		},
		Fare: map[[2]string]float64{
			{"A", "C"}: 10,
			{"A", "B"}: 5,
			{"B", "D"}: 7,
		},
	}
	idx, err := b.Build()
	if err != nil {
		t.Fatalf("netindextest.ToyNetwork: %v", err)
	}
	return idx
}
