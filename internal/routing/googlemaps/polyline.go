package googlemaps

import "math"

const earthRadiusMeters = 6371000

// latLng is a decoded polyline vertex in degrees.
type latLng struct {
	lat, lng float64
}

// decodePolyline decodes Google's encoded polyline format (5 decimal places).
// https://developers.google.com/maps/documentation/utilities/polylinealgorithm
func decodePolyline(encoded string) []latLng {
	var (
		points   []latLng
		lat, lng int
	)
	for i := 0; i < len(encoded); {
		var dLat, dLng int
		dLat, i = decodeDelta(encoded, i)
		dLng, i = decodeDelta(encoded, i)
		lat += dLat
		lng += dLng
		points = append(points, latLng{lat: float64(lat) / 1e5, lng: float64(lng) / 1e5})
	}
	return points
}

func decodeDelta(encoded string, i int) (int, int) {
	var result, shift int
	for i < len(encoded) {
		b := int(encoded[i]) - 63
		i++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}
	if result&1 != 0 {
		return ^(result >> 1), i
	}
	return result >> 1, i
}

// polylineKm returns the great-circle length of an encoded polyline in kilometers.
func polylineKm(encoded string) float64 {
	points := decodePolyline(encoded)
	var meters float64
	for i := 1; i < len(points); i++ {
		meters += haversine(points[i-1], points[i])
	}
	return meters / 1000
}

func haversine(a, b latLng) float64 {
	const rad = math.Pi / 180
	dLat := (b.lat - a.lat) * rad
	dLng := (b.lng - a.lng) * rad

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.lat*rad)*math.Cos(b.lat*rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}
