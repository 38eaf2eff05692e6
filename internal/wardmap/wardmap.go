// Package wardmap maps each ward to its nearest rail station, loads
// the stop-to-stop fare table the Network Index needs, and converts
// access/egress walking distance into seconds.
//
// Ward boundary centroids are read from GeoJSON with
// github.com/paulmach/go.geojson; no other ward input format is read.
package wardmap

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	geojson "github.com/paulmach/go.geojson"

	"github.com/blrmetro/raptor-skim/internal/netindex"
)

// metersPerSecondWalking turns access/egress distance into walking
// seconds.
const metersPerSecondWalking = 1.34

// Ward is one administrative area, identified by its centroid.
type Ward struct {
	ID  string
	Lat float64
	Lon float64
}

// Station is one rail stop's geographic position, keyed by the same id
// type the Network Index uses.
type Station[ID comparable] struct {
	ID  ID
	Lat float64
	Lon float64
}

// haversineMeters is the great-circle distance between two lat/lon
// points.
func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusMeters = 6371000.0
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }

	phi1, phi2 := rad(lat1), rad(lat2)
	dPhi := rad(lat2 - lat1)
	dLambda := rad(lon2 - lon1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// NearestStation finds, by brute-force linear scan, the station
// closest to a ward centroid. stations must be non-empty.
func NearestStation[ID comparable](ward Ward, stations []Station[ID]) (Station[ID], float64, error) {
	if len(stations) == 0 {
		var zero Station[ID]
		return zero, 0, fmt.Errorf("wardmap: no stations to search against")
	}
	best := stations[0]
	bestDist := haversineMeters(ward.Lat, ward.Lon, best.Lat, best.Lon)
	for _, s := range stations[1:] {
		d := haversineMeters(ward.Lat, ward.Lon, s.Lat, s.Lon)
		if d < bestDist {
			best, bestDist = s, d
		}
	}
	return best, bestDist, nil
}

// AccessEgressSeconds converts a walking distance to the corresponding
// duration at the fixed first/last-mile walking speed.
func AccessEgressSeconds(distanceMeters float64) netindex.Duration {
	return netindex.Duration(math.Round(distanceMeters / metersPerSecondWalking))
}

// LoadFareTable reads a CSV with header "from_stop,to_stop,fare" into
// the [2]ID-keyed map netindex.Builder.Fare expects. Pairs are keyed
// directionally as given; a reverse-direction fare needs its own row.
// Only string-keyed fare tables are supported since the CLI
// (cmd/skim) always instantiates the routing core with string stop
// ids.
func LoadFareTable(path string) (map[[2]string]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wardmap: opening fare table %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("wardmap: reading fare table header: %w", err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[name] = i
	}
	for _, want := range []string{"from_stop", "to_stop", "fare"} {
		if _, ok := col[want]; !ok {
			return nil, fmt.Errorf("wardmap: fare table %q missing column %q", path, want)
		}
	}

	fare := map[[2]string]float64{}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("wardmap: reading fare table row: %w", err)
		}
		price, err := strconv.ParseFloat(record[col["fare"]], 64)
		if err != nil {
			return nil, fmt.Errorf("wardmap: parsing fare value %q: %w", record[col["fare"]], err)
		}
		from, to := record[col["from_stop"]], record[col["to_stop"]]
		fare[[2]string{from, to}] = price
	}
	return fare, nil
}

// LoadWardCentroidsGeoJSON reads a FeatureCollection of ward boundary
// polygons and reduces each to its outer-ring centroid -- an
// approximation (the unweighted mean of the exterior ring's vertices,
// not a true area centroid) adequate for nearest-station assignment at
// ward granularity.
func LoadWardCentroidsGeoJSON(path string) ([]Ward, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("wardmap: reading ward boundaries %q: %w", path, err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("wardmap: parsing ward boundaries %q: %w", path, err)
	}

	wards := make([]Ward, 0, len(fc.Features))
	for _, feature := range fc.Features {
		id := fmt.Sprint(feature.Properties["ward_id"])
		lat, lon, err := centroid(feature.Geometry)
		if err != nil {
			return nil, fmt.Errorf("wardmap: ward %q: %w", id, err)
		}
		wards = append(wards, Ward{ID: id, Lat: lat, Lon: lon})
	}
	return wards, nil
}

func centroid(g *geojson.Geometry) (lat, lon float64, err error) {
	switch {
	case g.IsPoint():
		return g.Point[1], g.Point[0], nil
	case g.IsPolygon():
		return ringCentroid(g.Polygon[0])
	case g.IsMultiPolygon():
		return ringCentroid(g.MultiPolygon[0][0])
	default:
		return 0, 0, fmt.Errorf("unsupported geometry type %q", g.Type)
	}
}

func ringCentroid(ring [][]float64) (lat, lon float64, err error) {
	if len(ring) == 0 {
		return 0, 0, fmt.Errorf("empty ring")
	}
	var sumLat, sumLon float64
	for _, point := range ring {
		sumLon += point[0]
		sumLat += point[1]
	}
	n := float64(len(ring))
	return sumLat / n, sumLon / n, nil
}
