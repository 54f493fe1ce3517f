// Package geo implements great-circle distance and the coarse bounding boxes
// used to prefilter radius searches in the document store.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius of the spherical model.
const EarthRadiusKm = 6371.0

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Valid reports whether p lies within the legal coordinate ranges.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Haversine returns the great-circle distance between a and b in kilometres.
func Haversine(a, b Point) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := lat2 - lat1
	dLon := toRadians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	if h > 1 {
		h = 1
	}
	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Within reports whether b is at most radiusKm away from a.
func Within(a, b Point, radiusKm float64) bool {
	return Haversine(a, b) <= radiusKm
}

// LonRange is an inclusive longitude interval that never crosses the antimeridian.
type LonRange struct {
	Min float64
	Max float64
}

// Box is a latitude band plus one or two longitude ranges enclosing every
// point within a radius of a center. An empty Lon slice means any longitude.
type Box struct {
	MinLat float64
	MaxLat float64
	Lon    []LonRange
}

// boxSlack widens boxes slightly so float rounding never drops a boundary point.
const boxSlack = 1e-9

// BoundingBox returns the smallest Box that contains the circle of radiusKm
// around center.
func BoundingBox(center Point, radiusKm float64) Box {
	if radiusKm < 0 {
		radiusKm = 0
	}
	angular := radiusKm / EarthRadiusKm
	if angular >= math.Pi {
		return Box{MinLat: -90, MaxLat: 90}
	}

	dLat := toDegrees(angular)
	box := Box{
		MinLat: center.Lat - dLat - boxSlack,
		MaxLat: center.Lat + dLat + boxSlack,
	}

	// a circle touching a pole covers every longitude
	if box.MinLat <= -90 || box.MaxLat >= 90 {
		box.MinLat = math.Max(box.MinLat, -90)
		box.MaxLat = math.Min(box.MaxLat, 90)
		return box
	}

	dLon := toDegrees(math.Asin(math.Sin(angular) / math.Cos(toRadians(center.Lat))))
	minLon := center.Lon - dLon - boxSlack
	maxLon := center.Lon + dLon + boxSlack

	switch {
	case maxLon-minLon >= 360:
		// whole band
	case minLon < -180:
		box.Lon = []LonRange{{Min: minLon + 360, Max: 180}, {Min: -180, Max: maxLon}}
	case maxLon > 180:
		box.Lon = []LonRange{{Min: minLon, Max: 180}, {Min: -180, Max: maxLon - 360}}
	default:
		box.Lon = []LonRange{{Min: minLon, Max: maxLon}}
	}
	return box
}

// Contains reports whether p falls inside the box.
func (b Box) Contains(p Point) bool {
	if p.Lat < b.MinLat || p.Lat > b.MaxLat {
		return false
	}
	if len(b.Lon) == 0 {
		return true
	}
	for _, r := range b.Lon {
		if p.Lon >= r.Min && p.Lon <= r.Max {
			return true
		}
	}
	return false
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }

func toDegrees(rad float64) float64 { return rad * 180 / math.Pi }
