package routing

import (
	"strings"

	"github.com/routevox/trip-planner/pkg/geo"
)

// Encoded polylines pack coordinate deltas at 1e-5 precision into printable
// ASCII, five bits per character.

// DecodePolyline expands an encoded polyline into coordinates. Malformed
// trailing data is dropped rather than reported; the path decoded so far is
// still usable.
func DecodePolyline(encoded string) []geo.Point {
	var points []geo.Point
	lat, lng := 0, 0
	i := 0

	for i < len(encoded) {
		dLat, n, ok := decodeValue(encoded[i:])
		if !ok {
			break
		}
		i += n
		dLng, n, ok := decodeValue(encoded[i:])
		if !ok {
			break
		}
		i += n

		lat += dLat
		lng += dLng
		points = append(points, geo.Point{
			Lat: float64(lat) / 1e5,
			Lng: float64(lng) / 1e5,
		})
	}
	return points
}

func decodeValue(s string) (value, consumed int, ok bool) {
	result, shift := 0, 0
	for i := 0; i < len(s); i++ {
		b := int(s[i]) - 63
		if b < 0 {
			return 0, 0, false
		}
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			if result&1 != 0 {
				return ^(result >> 1), i + 1, true
			}
			return result >> 1, i + 1, true
		}
	}
	return 0, 0, false
}

// EncodePolyline packs coordinates into the encoded polyline form.
func EncodePolyline(points []geo.Point) string {
	var sb strings.Builder
	prevLat, prevLng := 0, 0

	for _, p := range points {
		lat := int(roundHalfAway(p.Lat * 1e5))
		lng := int(roundHalfAway(p.Lng * 1e5))
		encodeValue(&sb, lat-prevLat)
		encodeValue(&sb, lng-prevLng)
		prevLat, prevLng = lat, lng
	}
	return sb.String()
}

func encodeValue(sb *strings.Builder, v int) {
	v <<= 1
	if v < 0 {
		v = ^v
	}
	for v >= 0x20 {
		sb.WriteByte(byte((0x20 | (v & 0x1f)) + 63))
		v >>= 5
	}
	sb.WriteByte(byte(v + 63))
}

func roundHalfAway(f float64) float64 {
	if f < 0 {
		return float64(int(f - 0.5))
	}
	return float64(int(f + 0.5))
}
