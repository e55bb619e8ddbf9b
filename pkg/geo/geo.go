// Package geo implements metric-plane geometry over geographic coordinates.
//
// Rings are sequences of lon/lat vertices (EPSG:4326). Topological checks
// (closure, self-intersection, emptiness) are scale-invariant and run on raw
// coordinates; every area or distance reported in meters goes through
// geodesic formulas, matching the geography semantics of the PostGIS store so
// the two backends agree. Nothing here measures in degrees.
package geo

import (
	"errors"
	"math"
)

// EarthRadiusMeters is the mean earth radius used for geodesic math.
const EarthRadiusMeters = 6371008.8

// Validation errors returned by ValidateRing.
var (
	ErrRingTooShort        = errors.New("ring has fewer than four vertices")
	ErrRingNotClosed       = errors.New("ring is not closed")
	ErrRingZeroArea        = errors.New("ring encloses no area")
	ErrRingSelfIntersect   = errors.New("ring is self-intersecting")
)

// Point is a geographic coordinate, longitude then latitude, in degrees.
type Point struct {
	Lon float64
	Lat float64
}

// Ring is a closed sequence of vertices: the first and last points are equal.
type Ring []Point

// ValidateRing checks ring closure, vertex count, degeneracy, and
// self-intersection. These properties are invariant under projection, so the
// check runs directly on geographic coordinates.
func ValidateRing(r Ring) error {
	if len(r) < 4 {
		return ErrRingTooShort
	}
	if r[0] != r[len(r)-1] {
		return ErrRingNotClosed
	}
	if planarRingArea(r) == 0 {
		return ErrRingZeroArea
	}
	n := len(r) - 1 // segments
	for i := 0; i < n; i++ {
		for j := i + 2; j < n; j++ {
			// Skip the shared vertex between the first and last segment.
			if i == 0 && j == n-1 {
				continue
			}
			if segmentsCross(r[i], r[i+1], r[j], r[j+1]) {
				return ErrRingSelfIntersect
			}
		}
	}
	return nil
}

// planarRingArea is the shoelace area in coordinate units. Only its zero-ness
// and sign are meaningful; metric areas come from RingAreaM2.
func planarRingArea(r Ring) float64 {
	var sum float64
	for i := 0; i < len(r)-1; i++ {
		sum += r[i].Lon*r[i+1].Lat - r[i+1].Lon*r[i].Lat
	}
	return sum / 2
}

// RingAreaM2 returns the geodesic area of the ring in square meters, using
// the spherical excess formula. Vertex order does not affect the result.
func RingAreaM2(r Ring) float64 {
	if len(r) < 4 {
		return 0
	}
	var total float64
	for i := 0; i < len(r)-1; i++ {
		p1, p2 := r[i], r[i+1]
		total += rad(p2.Lon-p1.Lon) * (2 + math.Sin(rad(p1.Lat)) + math.Sin(rad(p2.Lat)))
	}
	return math.Abs(total * EarthRadiusMeters * EarthRadiusMeters / 2)
}

// Centroid returns the area-weighted centroid of the ring in geographic
// coordinates. The planar formula is fine here: the result is a coordinate,
// not a measurement.
func Centroid(r Ring) Point {
	var cx, cy, a float64
	for i := 0; i < len(r)-1; i++ {
		cross := r[i].Lon*r[i+1].Lat - r[i+1].Lon*r[i].Lat
		cx += (r[i].Lon + r[i+1].Lon) * cross
		cy += (r[i].Lat + r[i+1].Lat) * cross
		a += cross
	}
	if a == 0 {
		return r[0]
	}
	return Point{Lon: cx / (3 * a), Lat: cy / (3 * a)}
}

// HaversineMeters returns the great-circle distance between two points.
func HaversineMeters(a, b Point) float64 {
	dLat := rad(b.Lat - a.Lat)
	dLon := rad(b.Lon - a.Lon)
	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(rad(a.Lat))*math.Cos(rad(b.Lat))*sinLon*sinLon
	return 2 * EarthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// PointInRing reports whether p lies inside the ring (ray casting). Points
// exactly on the boundary may land on either side; callers that care use
// distance checks.
func PointInRing(p Point, r Ring) bool {
	inside := false
	for i := 0; i < len(r)-1; i++ {
		a, b := r[i], r[i+1]
		if (a.Lat > p.Lat) != (b.Lat > p.Lat) {
			x := a.Lon + (p.Lat-a.Lat)/(b.Lat-a.Lat)*(b.Lon-a.Lon)
			if p.Lon < x {
				inside = !inside
			}
		}
	}
	return inside
}

// RingsOverlap reports whether two rings share interior area: any vertex of
// one inside the other, or any pair of edges crossing.
func RingsOverlap(a, b Ring) bool {
	for _, p := range a[:len(a)-1] {
		if PointInRing(p, b) {
			return true
		}
	}
	for _, p := range b[:len(b)-1] {
		if PointInRing(p, a) {
			return true
		}
	}
	for i := 0; i < len(a)-1; i++ {
		for j := 0; j < len(b)-1; j++ {
			if segmentsCross(a[i], a[i+1], b[j], b[j+1]) {
				return true
			}
		}
	}
	return false
}

// ClipToConvex clips the subject ring against a convex clip ring
// (Sutherland-Hodgman). Returns the closed intersection ring, or nil when
// the intersection is empty. The clip ring must be convex; fixture features
// in the in-memory store satisfy this.
func ClipToConvex(subject, clip Ring) Ring {
	// Ensure counter-clockwise clip orientation so "inside" is a consistent
	// half-plane test.
	c := clip
	if planarRingArea(c) < 0 {
		c = reversed(c)
	}

	output := append(Ring(nil), subject[:len(subject)-1]...)
	for i := 0; i < len(c)-1; i++ {
		edgeA, edgeB := c[i], c[i+1]
		input := output
		output = nil
		if len(input) == 0 {
			return nil
		}
		prev := input[len(input)-1]
		for _, curr := range input {
			if leftOf(edgeA, edgeB, curr) {
				if !leftOf(edgeA, edgeB, prev) {
					output = append(output, lineIntersection(prev, curr, edgeA, edgeB))
				}
				output = append(output, curr)
			} else if leftOf(edgeA, edgeB, prev) {
				output = append(output, lineIntersection(prev, curr, edgeA, edgeB))
			}
			prev = curr
		}
	}
	if len(output) < 3 {
		return nil
	}
	return append(output, output[0])
}

// MinDistanceMeters returns the minimum geodesic distance between the
// boundaries of two rings. Zero when they touch or overlap.
func MinDistanceMeters(a, b Ring) float64 {
	if RingsOverlap(a, b) {
		return 0
	}
	min := math.Inf(1)
	for _, p := range a[:len(a)-1] {
		for j := 0; j < len(b)-1; j++ {
			if d := pointSegmentMeters(p, b[j], b[j+1]); d < min {
				min = d
			}
		}
	}
	for _, p := range b[:len(b)-1] {
		for j := 0; j < len(a)-1; j++ {
			if d := pointSegmentMeters(p, a[j], a[j+1]); d < min {
				min = d
			}
		}
	}
	return min
}

// pointSegmentMeters measures point-to-segment distance on a local
// equirectangular plane centered at the point, then in meters. Accurate at
// the buffer scales the engine works with (tens of kilometers).
func pointSegmentMeters(p, a, b Point) float64 {
	cosLat := math.Cos(rad(p.Lat))
	ax := rad(a.Lon-p.Lon) * cosLat
	ay := rad(a.Lat - p.Lat)
	bx := rad(b.Lon-p.Lon) * cosLat
	by := rad(b.Lat - p.Lat)

	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy
	t := 0.0
	if lenSq > 0 {
		t = -(ax*dx + ay*dy) / lenSq
		t = math.Max(0, math.Min(1, t))
	}
	cx, cy := ax+t*dx, ay+t*dy
	return math.Hypot(cx, cy) * EarthRadiusMeters
}

func segmentsCross(p1, p2, q1, q2 Point) bool {
	d1 := orient(q1, q2, p1)
	d2 := orient(q1, q2, p2)
	d3 := orient(p1, p2, q1)
	d4 := orient(p1, p2, q2)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return false
}

func orient(a, b, c Point) float64 {
	return (b.Lon-a.Lon)*(c.Lat-a.Lat) - (b.Lat-a.Lat)*(c.Lon-a.Lon)
}

func leftOf(a, b, p Point) bool {
	return orient(a, b, p) >= 0
}

func lineIntersection(p1, p2, p3, p4 Point) Point {
	a1 := p2.Lat - p1.Lat
	b1 := p1.Lon - p2.Lon
	c1 := a1*p1.Lon + b1*p1.Lat
	a2 := p4.Lat - p3.Lat
	b2 := p3.Lon - p4.Lon
	c2 := a2*p3.Lon + b2*p3.Lat
	det := a1*b2 - a2*b1
	if det == 0 {
		return p2
	}
	return Point{
		Lon: (b2*c1 - b1*c2) / det,
		Lat: (a1*c2 - a2*c1) / det,
	}
}

func reversed(r Ring) Ring {
	out := make(Ring, len(r))
	for i, p := range r {
		out[len(r)-1-i] = p
	}
	return out
}

func rad(deg float64) float64 { return deg * math.Pi / 180 }
