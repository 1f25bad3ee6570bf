package utils

import (
	"math"

	"github.com/mmcloughlin/geohash"
	"github.com/piresc/ukdrive/internal/pkg/models"
)

// EarthRadiusKm is the mean earth radius used by every distance helper
const EarthRadiusKm = 6371.0

// metersPerDegree is the length of one degree of latitude on that sphere
const metersPerDegree = EarthRadiusKm * 1000 * math.Pi / 180.0

// HaversineKm calculates the great-circle distance between two points in kilometers
func HaversineKm(p1, p2 models.GeoPoint) float64 {
	lat1 := degreesToRadians(p1.Latitude)
	lat2 := degreesToRadians(p2.Latitude)
	dLat := lat2 - lat1
	dLon := degreesToRadians(p2.Longitude - p1.Longitude)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// HaversineMeters is HaversineKm in meters
func HaversineMeters(p1, p2 models.GeoPoint) float64 {
	return HaversineKm(p1, p2) * 1000
}

// PlanarMeters approximates the distance between two nearby points by
// scaling the degree deltas to meters, with longitude shrunk by the cosine
// of the mean latitude. Accurate to well under a meter over the few tens of
// meters the jitter filter cares about.
func PlanarMeters(p1, p2 models.GeoPoint) float64 {
	meanLat := degreesToRadians((p1.Latitude + p2.Latitude) / 2)
	dy := (p2.Latitude - p1.Latitude) * metersPerDegree
	dx := (p2.Longitude - p1.Longitude) * metersPerDegree * math.Cos(meanLat)
	return math.Sqrt(dx*dx + dy*dy)
}

// Cell returns the geohash of the point at the given precision
func Cell(p models.GeoPoint, precision uint) string {
	return geohash.EncodeWithPrecision(p.Latitude, p.Longitude, precision)
}

// CellWithNeighbors returns the cell of the point followed by its eight neighbors
func CellWithNeighbors(p models.GeoPoint, precision uint) []string {
	cell := Cell(p, precision)
	return append([]string{cell}, geohash.Neighbors(cell)...)
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Offset returns the point reached by moving meters from p along bearingDeg
// (0 is north, 90 is east)
func Offset(p models.GeoPoint, bearingDeg, meters float64) models.GeoPoint {
	lat1 := degreesToRadians(p.Latitude)
	lon1 := degreesToRadians(p.Longitude)
	bearing := degreesToRadians(bearingDeg)
	angular := meters / (EarthRadiusKm * 1000)

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(angular) + math.Cos(lat1)*math.Sin(angular)*math.Cos(bearing))
	lon2 := lon1 + math.Atan2(
		math.Sin(bearing)*math.Sin(angular)*math.Cos(lat1),
		math.Cos(angular)-math.Sin(lat1)*math.Sin(lat2),
	)
	return models.GeoPoint{
		Latitude:  lat2 * 180 / math.Pi,
		Longitude: lon2 * 180 / math.Pi,
	}
}
