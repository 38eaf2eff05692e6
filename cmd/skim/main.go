// Command skim reads a GTFS feed and a ward-boundary GeoJSON, maps
// each ward to its nearest station, runs the all-pairs RAPTOR skim
// for a single departure time, and writes the resulting CSV.
package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/blrmetro/raptor-skim/internal/gtfsload"
	"github.com/blrmetro/raptor-skim/internal/skim"
	"github.com/blrmetro/raptor-skim/internal/wardmap"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "skim - all-pairs RAPTOR skim matrix\n\nUsage:\n\n  %s [<options>]\n\nAllowed options:\n\n", os.Args[0])
		flag.PrintDefaults()
	}

	gtfsPath := flag.StringP("gtfs", "g", "", "GTFS feed directory or zip file (required)")
	wardsPath := flag.StringP("wards", "w", "", "ward boundary GeoJSON file (required)")
	faresPath := flag.StringP("fares", "f", "", "stop-to-stop fare CSV (from_stop,to_stop,fare); without it no ride segment has a fare, so pairs whose journeys ride produce no rows")
	serviceDate := flag.StringP("date", "D", time.Now().Format("2006-01-02"), "service date, YYYY-MM-DD, anchoring GTFS times to the epoch")
	departSeconds := flag.IntP("d-time", "t", 8*3600, "departure time, seconds since midnight of --date")
	maxTransfer := flag.IntP("max-transfer", "m", 2, "transfer budget: RAPTOR rounds 1..N are run, so journeys use at most N trips")
	workers := flag.IntP("workers", "j", runtime.NumCPU(), "number of parallel skim workers")
	walkFromSource := flag.BoolP("walk-from-source", "W", true, "relax footpaths from the source station before round 1")
	outPath := flag.StringP("output", "o", "skim.csv", "output CSV path")
	dumpPath := flag.StringP("dump-normalized", "n", "", "re-serialize the parsed feed to this path (zip or directory) for diffing against the input")
	help := flag.BoolP("help", "?", false, "this message")

	flag.Parse()

	if *help {
		flag.Usage()
		return
	}
	if *gtfsPath == "" || *wardsPath == "" {
		fmt.Fprintln(os.Stderr, "both --gtfs and --wards are required, see --help")
		os.Exit(1)
	}

	date, err := time.Parse("2006-01-02", *serviceDate)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid --date:", err)
		os.Exit(1)
	}

	builder, err := gtfsload.Load(*gtfsPath, date)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *dumpPath != "" {
		if err := gtfsload.DumpNormalizedFeed(*gtfsPath, *dumpPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	if *faresPath != "" {
		fare, err := wardmap.LoadFareTable(*faresPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		builder.Fare = fare
	}

	idx, err := builder.Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	stations, err := gtfsload.Stations(*gtfsPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	wards, err := wardmap.LoadWardCentroidsGeoJSON(*wardsPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	assignments := make([]skim.WardAssignment, 0, len(wards))
	for _, ward := range wards {
		station, distance, err := wardmap.NearestStation(ward, stations)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		assignments = append(assignments, skim.WardAssignment{
			Ward:         ward,
			Station:      station.ID,
			AccessEgress: float64(wardmap.AccessEgressSeconds(distance)),
		})
	}

	dTime := date.Unix() + int64(*departSeconds)

	rows := skim.Run(idx, assignments, skim.Options{
		DTime:          dTime,
		MaxTransfer:    *maxTransfer,
		Workers:        *workers,
		WalkFromSource: *walkFromSource,
	})

	out, err := os.Create(*outPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer out.Close()

	if err := skim.WriteCSV(out, rows); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "wrote %d rows to %s\n", len(rows), *outPath)
}
