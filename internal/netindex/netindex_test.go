package netindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// toyNetwork builds the same four-stop network as netindextest.ToyNetwork,
// kept as a package-local copy since this file cannot import
// netindextest without a dependency cycle (netindextest itself imports
// netindex).
func toyNetwork(t testing.TB) *Index[string] {
	t.Helper()
	b := Builder[string]{
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
		TripsByRoute: map[string][]Trip[string]{
			"R1": {{Stops: []StopArrival[string]{{Stop: "A", Time: 1000}, {Stop: "B", Time: 1300}, {Stop: "C", Time: 1600}}}},
			"R2": {{Stops: []StopArrival[string]{{Stop: "B", Time: 1000}, {Stop: "D", Time: 1400}}}},
		},
		ModifiedByRoute: map[string][]StopOffset[string]{
			"R1": {{Stop: "A", Offset: 0}, {Stop: "B", Offset: 300}, {Stop: "C", Offset: 600}},
			"R2": {{Stop: "B", Offset: 0}, {Stop: "D", Offset: 400}},
		},
		Footpaths: map[string][]Footpath[string]{
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
	require.NoError(t, err)
	return idx
}

func TestBuild_StopOrdinalsCoverAllStops(t *testing.T) {
	idx := toyNetwork(t)
	assert.Equal(t, 4, idx.NumStops())
	for _, stop := range []string{"A", "B", "C", "D"} {
		_, ok := idx.StopOrdinal(stop)
		assert.True(t, ok, "expected stop %s to have an ordinal", stop)
	}
}

func TestBuild_RejectsNonMonotonicTrip(t *testing.T) {
	b := Builder[string]{
		TripsByRoute: map[string][]Trip[string]{
			"R1": {{Stops: []StopArrival[string]{{Stop: "A", Time: 1000}, {Stop: "B", Time: 900}}}},
		},
	}
	_, err := b.Build()
	assert.Error(t, err)
}

func TestFare_MissingEdgeIsTyped(t *testing.T) {
	idx := toyNetwork(t)
	_, err := idx.Fare("C", "D")
	require.Error(t, err)
	var missing ErrMissingFareEdge[string]
	assert.ErrorAs(t, err, &missing)
}

func TestModifiedOffsets_PositionZeroIsAlwaysZero(t *testing.T) {
	idx := toyNetwork(t)
	offsets := idx.ModifiedOffsets("R1")
	require.NotEmpty(t, offsets)
	assert.Equal(t, Duration(0), offsets[0].Offset)
}

func TestIdxByRouteStop_UnknownPairMisses(t *testing.T) {
	idx := toyNetwork(t)
	_, ok := idx.IdxByRouteStop("R1", "D")
	assert.False(t, ok)

	pos, ok := idx.IdxByRouteStop("R1", "C")
	require.True(t, ok)
	assert.Equal(t, 2, pos)
}
