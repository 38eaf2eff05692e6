package skim

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blrmetro/raptor-skim/internal/netindex/netindextest"
	"github.com/blrmetro/raptor-skim/internal/wardmap"
)

func TestRun_SameStationPairsAreSkipped(t *testing.T) {
	idx := netindextest.ToyNetwork(t)
	assignments := []WardAssignment{
		{Ward: wardmap.Ward{ID: "W1"}, Station: "A", AccessEgress: 30},
		{Ward: wardmap.Ward{ID: "W2"}, Station: "A", AccessEgress: 45},
	}
	rows := Run(idx, assignments, Options{DTime: 1000, MaxTransfer: 2})
	assert.Empty(t, rows)
}

func TestRun_DistinctStationsProduceMetrics(t *testing.T) {
	idx := netindextest.ToyNetwork(t)
	assignments := []WardAssignment{
		{Ward: wardmap.Ward{ID: "W1"}, Station: "A", AccessEgress: 10},
		{Ward: wardmap.Ward{ID: "W2"}, Station: "C", AccessEgress: 20},
	}
	rows := Run(idx, assignments, Options{DTime: 1000, MaxTransfer: 2, WalkFromSource: true, Workers: 2})

	// W1->W2 rides A->C in one seat; W2->W1 is unreachable (no reverse
	// edges) and contributes nothing.
	require.Len(t, rows, 1)
	aToC := rows[0]
	assert.Equal(t, "W1", aToC.SourceWard)
	assert.Equal(t, "W2", aToC.DestinationWard)
	assert.Equal(t, 600.0, aToC.IVTT)
	assert.Equal(t, 10.0, aToC.MetroFare)
	assert.Equal(t, 10.0, aToC.AccessTime)
	assert.Equal(t, 20.0, aToC.EgressTime)
	assert.Equal(t, 30.0, aToC.OVTT, "ovtt folds access and egress on top of the journey's own out-of-vehicle time")
}

func TestRun_OneRowPerParetoJourney(t *testing.T) {
	idx := netindextest.ToyNetwork(t)
	assignments := []WardAssignment{
		{Ward: wardmap.Ward{ID: "W1"}, Station: "A", AccessEgress: 10},
		{Ward: wardmap.Ward{ID: "W2"}, Station: "D", AccessEgress: 20},
	}
	rows := Run(idx, assignments, Options{DTime: 1000, MaxTransfer: 2, WalkFromSource: true})

	// A->D has a two-journey Pareto frontier (one transfer at 1700,
	// zero transfers at 1720); each journey gets its own row.
	var aToD []Row
	for _, r := range rows {
		if r.SourceWard == "W1" && r.DestinationWard == "W2" {
			aToD = append(aToD, r)
		}
	}
	require.Len(t, aToD, 2)
	transfers := []int{aToD[0].NumTransfer, aToD[1].NumTransfer}
	assert.ElementsMatch(t, []int{0, 1}, transfers)
}

func TestWriteCSV_EmitsExactColumnOrder(t *testing.T) {
	var buf strings.Builder
	err := WriteCSV(&buf, []Row{{
		SourceWard: "W1", DestinationWard: "W2",
		SourceMetroStation: "A", DestinationMetroStation: "C",
		IVTT: 600, OVTT: 0, WaitingTime: 0, TransferTime: 0,
		MetroFare: 10, AccessTime: 10, EgressTime: 20, NumTransfer: 0,
	}})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "source_ward,destination_ward,source_metro_station,destination_metro_station,ivtt,ovtt,waiting_time,transfer_time,metro_fare,access_time,egress_time,num_transfer", lines[0])
	assert.Equal(t, "W1,W2,A,C,600.00,0.00,0.00,0.00,10.00,10.00,20.00,0", lines[1])
}
