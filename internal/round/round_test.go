package round

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blrmetro/raptor-skim/internal/labelstore"
	"github.com/blrmetro/raptor-skim/internal/netindex"
	"github.com/blrmetro/raptor-skim/internal/netindex/netindextest"
)

func TestLatestTrip_OffsetsAnchorAtBoardingTime(t *testing.T) {
	idx := netindextest.ToyNetwork(t)
	tripID, itinerary := LatestTrip(idx, "R1", 1000)

	assert.Equal(t, "R1_0", tripID)
	require.Len(t, itinerary, 3)
	assert.Equal(t, netindex.Time(1000), itinerary[0].Time)
	assert.Equal(t, netindex.Time(1300), itinerary[1].Time)
	assert.Equal(t, netindex.Time(1600), itinerary[2].Time)
}

// runToConvergence drives rounds 1..maxRounds-1, stopping early on a
// zero-mark round, matching the driver API's own loop.
func runToConvergence(idx *netindex.Index[string], store *labelstore.Store[string], destinations []string, disablePruning bool) {
	for k := 1; k < store.MaxRounds(); k++ {
		if Run(idx, store, k, destinations, disablePruning) == 0 {
			break
		}
	}
}

func TestRun_DirectRideReachesC(t *testing.T) {
	idx := netindextest.ToyNetwork(t)
	store := labelstore.New(idx, 2)
	store.Init("A", 1000)
	RelaxSourceFootpaths(idx, store, "A")

	runToConvergence(idx, store, []string{"C"}, false)

	assert.Equal(t, netindex.Time(1600), store.Best("C"))
	ptr := store.Pointer(1, "C")
	require.Equal(t, labelstore.PointerRide, ptr.Kind)
	assert.Equal(t, "R1_0", ptr.Ride.Trip)
}

func TestRun_TransferReachesD(t *testing.T) {
	idx := netindextest.ToyNetwork(t)
	store := labelstore.New(idx, 2)
	store.Init("A", 1000)
	RelaxSourceFootpaths(idx, store, "A")

	runToConvergence(idx, store, []string{"D"}, false)

	// two Pareto-optimal arrivals at D: round 2 via R1->R2 at 1700,
	// round 1 via R1 + footpath at 1720.
	assert.Equal(t, netindex.Time(1700), store.Label(2, "D"))
	assert.Equal(t, netindex.Time(1720), store.Label(1, "D"))
	assert.Equal(t, netindex.Time(1700), store.Best("D"))
}

func TestRun_NoImprovementTerminatesEarly(t *testing.T) {
	idx := netindextest.ToyNetwork(t)
	store := labelstore.New(idx, 3)
	store.Init("A", 1000)
	RelaxSourceFootpaths(idx, store, "A")

	marked1 := Run(idx, store, 1, []string{"D"}, false)
	assert.Greater(t, marked1, 0)
	marked2 := Run(idx, store, 2, []string{"D"}, false)
	assert.Greater(t, marked2, 0)
	marked3 := Run(idx, store, 3, []string{"D"}, false)
	assert.Equal(t, 0, marked3)
}

// TestRun_LabelMonotonicityAcrossRounds checks that, for every stop and
// every round, label[k][p] <= label[k-1][p]: an extra trip can never
// worsen an arrival time.
func TestRun_LabelMonotonicityAcrossRounds(t *testing.T) {
	idx := netindextest.ToyNetwork(t)
	store := labelstore.New(idx, 3)
	store.Init("A", 1000)
	RelaxSourceFootpaths(idx, store, "A")
	runToConvergence(idx, store, []string{"D"}, false)

	for _, stop := range []string{"A", "B", "C", "D"} {
		for k := 1; k < store.MaxRounds(); k++ {
			assert.LessOrEqual(t, store.Label(k, stop), store.Label(k-1, stop),
				"label[%d][%s] must not exceed label[%d][%s]", k, stop, k-1, stop)
		}
	}
}

// TestRun_BestIsMinimumOverRounds checks best[p] == min over k of
// label[k][p] once the round loop has converged.
func TestRun_BestIsMinimumOverRounds(t *testing.T) {
	idx := netindextest.ToyNetwork(t)
	store := labelstore.New(idx, 3)
	store.Init("A", 1000)
	RelaxSourceFootpaths(idx, store, "A")
	runToConvergence(idx, store, []string{"D"}, false)

	for _, stop := range []string{"A", "B", "C", "D"} {
		min := netindex.Unreachable
		for k := 0; k < store.MaxRounds(); k++ {
			if l := store.Label(k, stop); l < min {
				min = l
			}
		}
		assert.Equal(t, min, store.Best(stop), "best[%s]", stop)
	}
}

// TestRun_PointerImpliesFiniteLabel checks that every set back-pointer
// sits on a reached label, and that every back-pointer chain terminates
// at the source.
func TestRun_PointerImpliesFiniteLabel(t *testing.T) {
	idx := netindextest.ToyNetwork(t)
	store := labelstore.New(idx, 3)
	store.Init("A", 1000)
	RelaxSourceFootpaths(idx, store, "A")
	runToConvergence(idx, store, []string{"D"}, false)

	for _, stop := range []string{"A", "B", "C", "D"} {
		for k := 0; k < store.MaxRounds(); k++ {
			if store.Pointer(k, stop).Kind == labelstore.PointerNone {
				continue
			}
			assert.Less(t, store.Label(k, stop), netindex.Unreachable,
				"pi[%d][%s] is set but label[%d][%s] is unreached", k, stop, k, stop)

			// follow the chain; it must end at the source within the
			// round budget.
			cur, round := stop, k
			for steps := 0; ; steps++ {
				require.Less(t, steps, 16, "back-pointer chain from pi[%d][%s] does not terminate", k, stop)
				p := store.Pointer(round, cur)
				if p.Kind == labelstore.PointerNone {
					break
				}
				if p.Kind == labelstore.PointerWalk {
					cur = p.Walk.From
				} else {
					cur = p.Ride.BoardStop
					round--
				}
			}
			assert.Equal(t, "A", cur, "chain from pi[%d][%s] must end at the source", k, stop)
		}
	}
}

func TestRelaxSourceFootpaths_NoOutgoingFootpathsIsANoop(t *testing.T) {
	idx := netindextest.ToyNetwork(t)
	store := labelstore.New(idx, 2)
	store.Init("A", 1000)
	RelaxSourceFootpaths(idx, store, "A")
	assert.Equal(t, netindex.Unreachable, store.Label(0, "B"))
}
