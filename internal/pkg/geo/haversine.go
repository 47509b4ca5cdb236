package geo

import "math"

const (
	EarthRadiusKm = 6371.0
	KmPerMile     = 1.609344
)

type Point struct {
	Lat float64
	Lng float64
}

// DistanceKm is the great-circle distance between two points using the haversine formula.
func DistanceKm(a, b Point) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := lat2 - lat1
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

func KmToMiles(km float64) float64 {
	return km / KmPerMile
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
