// Package skim is the outer batch driver: the all-pairs O(W^2) loop
// over wards, each pair resolved to its nearest stations and handed
// to the routing driver (internal/raptor), with results collected
// into skim-matrix CSV rows.
//
// Independent queries share one immutable Network Index, so the pairs
// run on parallel workers with no synchronization beyond the index
// itself.
package skim

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/blrmetro/raptor-skim/internal/netindex"
	"github.com/blrmetro/raptor-skim/internal/raptor"
	"github.com/blrmetro/raptor-skim/internal/wardmap"
)

var csvHeader = []string{
	"source_ward", "destination_ward", "source_metro_station", "destination_metro_station",
	"ivtt", "ovtt", "waiting_time", "transfer_time", "metro_fare",
	"access_time", "egress_time", "num_transfer",
}

// Row is one line of the skim-matrix CSV.
type Row struct {
	SourceWard              string
	DestinationWard         string
	SourceMetroStation      string
	DestinationMetroStation string
	IVTT                    float64
	OVTT                    float64
	WaitingTime             float64
	TransferTime            float64
	MetroFare               float64
	AccessTime              float64
	EgressTime              float64
	NumTransfer             int
}

// WardAssignment pairs a ward with the station RAPTOR should treat as
// its origin/destination proxy, plus the access/egress walk it takes
// to reach that station.
type WardAssignment struct {
	Ward         wardmap.Ward
	Station      string
	AccessEgress float64 // seconds, symmetric for access and egress
}

// Options configures one skim run.
type Options struct {
	DTime          int64
	MaxTransfer    int
	Workers        int
	WalkFromSource bool
}

// Run computes the all-pairs skim matrix over assignments. Pairs
// where source and destination resolve to the same ward or the same
// nearest station are skipped outright; every surviving pair
// contributes one row per Pareto-optimal journey, not just the
// fastest or fewest-transfer one. The O(W^2) pairs are farmed out
// across Options.Workers goroutines sharing the same read-only
// Network Index.
func Run(idx *netindex.Index[string], assignments []WardAssignment, opts Options) []Row {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	type pair struct {
		src, dst WardAssignment
	}
	pairs := make([]pair, 0, len(assignments)*len(assignments))
	for _, src := range assignments {
		for _, dst := range assignments {
			if src.Ward.ID == dst.Ward.ID || src.Station == dst.Station {
				continue
			}
			pairs = append(pairs, pair{src: src, dst: dst})
		}
	}

	// each pair lands in its own slot, so the output keeps the
	// ward-pair iteration order no matter how the workers interleave.
	perPair := make([][]Row, len(pairs))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				perPair[i] = computeRows(idx, pairs[i].src, pairs[i].dst, opts)
			}
		}()
	}

	for i := range pairs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	rows := make([]Row, 0, len(pairs))
	for _, r := range perPair {
		rows = append(rows, r...)
	}
	return rows
}

// computeRows runs one RAPTOR query and converts its Pareto set into
// skim rows. The row's OVTT folds the ward-to-station access and
// egress walks on top of the journey's own out-of-vehicle time. An
// unreachable pair contributes no rows.
func computeRows(idx *netindex.Index[string], src, dst WardAssignment, opts Options) []Row {
	report, _, err := raptor.Query(idx, src.Station, dst.Station, opts.DTime, raptor.Options{
		MaxTransfer:       opts.MaxTransfer,
		WalkingFromSource: opts.WalkFromSource,
	})
	if err != nil || report == nil {
		return nil
	}

	rows := make([]Row, 0, len(report.Journeys))
	for _, j := range report.Journeys {
		rows = append(rows, Row{
			SourceWard:              src.Ward.ID,
			DestinationWard:         dst.Ward.ID,
			SourceMetroStation:      src.Station,
			DestinationMetroStation: dst.Station,
			IVTT:                    j.Metrics.IVTT,
			OVTT:                    j.Metrics.OVTT + src.AccessEgress + dst.AccessEgress,
			WaitingTime:             j.Metrics.WaitTime,
			TransferTime:            j.Metrics.WalkTime,
			MetroFare:               j.Metrics.Cost,
			AccessTime:              src.AccessEgress,
			EgressTime:              dst.AccessEgress,
			NumTransfer:             j.Transfers,
		})
	}
	return rows
}

// WriteCSV emits rows under the fixed skim-matrix header.
func WriteCSV(w io.Writer, rows []Row) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("skim: writing csv header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.SourceWard,
			r.DestinationWard,
			r.SourceMetroStation,
			r.DestinationMetroStation,
			strconv.FormatFloat(r.IVTT, 'f', 2, 64),
			strconv.FormatFloat(r.OVTT, 'f', 2, 64),
			strconv.FormatFloat(r.WaitingTime, 'f', 2, 64),
			strconv.FormatFloat(r.TransferTime, 'f', 2, 64),
			strconv.FormatFloat(r.MetroFare, 'f', 2, 64),
			strconv.FormatFloat(r.AccessTime, 'f', 2, 64),
			strconv.FormatFloat(r.EgressTime, 'f', 2, 64),
			strconv.Itoa(r.NumTransfer),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("skim: writing csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
