package geo

import "math"

const earthRadiusKm = 6371.0

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lng float64 `json:"lng" validate:"longitude"`
}

// Haversine calculates the great-circle distance in kilometres between two
// coordinates. The result is rounded to two decimal places.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLon := (lon2 - lon1) * math.Pi / 180.0

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180.0)*math.Cos(lat2*math.Pi/180.0)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return math.Round(earthRadiusKm*c*100) / 100
}

// Midpoint returns the arithmetic midpoint of two coordinates. Good enough
// as a search bias at metropolitan scale; not valid across the antimeridian.
func Midpoint(a, b Point) Point {
	return Point{Lat: (a.Lat + b.Lat) / 2, Lng: (a.Lng + b.Lng) / 2}
}

// ClosestPointOnPath projects p onto the polyline formed by path and returns
// the closest point together with its squared distance in degree space.
// Plain Euclidean math in lat/lng space is an acceptable approximation at
// road scale, where the path spans a fraction of a degree.
func ClosestPointOnPath(p Point, path []Point) (Point, float64) {
	if len(path) == 0 {
		return p, 0
	}
	if len(path) == 1 {
		return path[0], squaredDistance(p, path[0])
	}

	best := path[0]
	bestDist := squaredDistance(p, path[0])

	for i := 0; i < len(path)-1; i++ {
		candidate := closestPointOnSegment(p, path[i], path[i+1])
		if d := squaredDistance(p, candidate); d < bestDist {
			best = candidate
			bestDist = d
		}
	}

	return best, bestDist
}

// closestPointOnSegment projects p onto segment ab, clamped to the endpoints.
func closestPointOnSegment(p, a, b Point) Point {
	dLat := b.Lat - a.Lat
	dLng := b.Lng - a.Lng

	lengthSq := dLat*dLat + dLng*dLng
	if lengthSq == 0 {
		return a
	}

	t := ((p.Lat-a.Lat)*dLat + (p.Lng-a.Lng)*dLng) / lengthSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	return Point{Lat: a.Lat + t*dLat, Lng: a.Lng + t*dLng}
}

func squaredDistance(a, b Point) float64 {
	dLat := a.Lat - b.Lat
	dLng := a.Lng - b.Lng
	return dLat*dLat + dLng*dLng
}
