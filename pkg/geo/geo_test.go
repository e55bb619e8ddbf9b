package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// square returns a closed ring of side degrees, lower-left corner at (lon, lat).
func square(lon, lat, side float64) Ring {
	return Ring{
		{Lon: lon, Lat: lat},
		{Lon: lon + side, Lat: lat},
		{Lon: lon + side, Lat: lat + side},
		{Lon: lon, Lat: lat + side},
		{Lon: lon, Lat: lat},
	}
}

func TestValidateRing(t *testing.T) {
	t.Run("accepts simple square", func(t *testing.T) {
		assert.NoError(t, ValidateRing(square(-70.5, -27.3, 0.05)))
	})

	t.Run("rejects too few vertices", func(t *testing.T) {
		r := Ring{{0, 0}, {1, 0}, {0, 0}}
		assert.ErrorIs(t, ValidateRing(r), ErrRingTooShort)
	})

	t.Run("rejects open ring", func(t *testing.T) {
		r := Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
		assert.ErrorIs(t, ValidateRing(r), ErrRingNotClosed)
	})

	t.Run("rejects zero-area ring", func(t *testing.T) {
		r := Ring{{0, 0}, {1, 1}, {2, 2}, {0, 0}}
		assert.ErrorIs(t, ValidateRing(r), ErrRingZeroArea)
	})

	t.Run("rejects self-intersecting ring", func(t *testing.T) {
		r := Ring{{0, 0}, {2, 2}, {2, 0}, {0, 1}, {0, 0}}
		assert.ErrorIs(t, ValidateRing(r), ErrRingSelfIntersect)
	})
}

func TestRingAreaM2(t *testing.T) {
	t.Run("equatorial square matches geodesic expectation", func(t *testing.T) {
		// 0.01 deg of arc is ~1111.95 m at the equator with the mean radius,
		// so the square encloses ~1.2364e6 m2.
		area := RingAreaM2(square(0, 0, 0.01))
		assert.InEpsilon(t, 1.2364e6, area, 0.01)
	})

	t.Run("orientation does not change area", func(t *testing.T) {
		r := square(-70, -27, 0.05)
		assert.InEpsilon(t, RingAreaM2(r), RingAreaM2(reversed(r)), 1e-12)
	})

	t.Run("area shrinks with latitude", func(t *testing.T) {
		atEquator := RingAreaM2(square(0, 0, 0.1))
		atSixty := RingAreaM2(square(0, 60, 0.1))
		assert.Less(t, atSixty, atEquator)
	})
}

func TestHaversineMeters(t *testing.T) {
	t.Run("one degree of longitude at the equator", func(t *testing.T) {
		d := HaversineMeters(Point{0, 0}, Point{1, 0})
		assert.InDelta(t, 111195, d, 100)
	})

	t.Run("zero for identical points", func(t *testing.T) {
		p := Point{-70.6, -33.4}
		assert.Zero(t, HaversineMeters(p, p))
	})
}

func TestPointInRing(t *testing.T) {
	r := square(-70.5, -27.5, 0.1)
	assert.True(t, PointInRing(Point{-70.45, -27.45}, r))
	assert.False(t, PointInRing(Point{-70.6, -27.45}, r))
	assert.False(t, PointInRing(Point{-70.45, -27.6}, r))
}

func TestRingsOverlap(t *testing.T) {
	t.Run("overlapping squares", func(t *testing.T) {
		assert.True(t, RingsOverlap(square(0, 0, 1), square(0.5, 0.5, 1)))
	})

	t.Run("contained square", func(t *testing.T) {
		assert.True(t, RingsOverlap(square(0, 0, 1), square(0.25, 0.25, 0.5)))
	})

	t.Run("disjoint squares", func(t *testing.T) {
		assert.False(t, RingsOverlap(square(0, 0, 1), square(3, 3, 1)))
	})
}

func TestClipToConvex(t *testing.T) {
	t.Run("half-overlapping squares clip to half", func(t *testing.T) {
		subject := square(0, 0, 0.02)
		clip := square(0.01, 0, 0.02)
		clipped := ClipToConvex(subject, clip)
		require.NotNil(t, clipped)
		assert.InEpsilon(t, RingAreaM2(subject)/2, RingAreaM2(clipped), 0.01)
	})

	t.Run("contained subject is returned whole", func(t *testing.T) {
		subject := square(0.005, 0.005, 0.01)
		clip := square(0, 0, 0.02)
		clipped := ClipToConvex(subject, clip)
		require.NotNil(t, clipped)
		assert.InEpsilon(t, RingAreaM2(subject), RingAreaM2(clipped), 0.001)
	})

	t.Run("disjoint polygons clip to nothing", func(t *testing.T) {
		assert.Nil(t, ClipToConvex(square(0, 0, 0.01), square(1, 1, 0.01)))
	})
}

func TestMinDistanceMeters(t *testing.T) {
	t.Run("zero for overlapping rings", func(t *testing.T) {
		assert.Zero(t, MinDistanceMeters(square(0, 0, 1), square(0.5, 0.5, 1)))
	})

	t.Run("equatorial gap of 0.01 degrees", func(t *testing.T) {
		a := square(0, 0, 0.01)
		b := square(0.02, 0, 0.01)
		d := MinDistanceMeters(a, b)
		assert.InDelta(t, 1112, d, 15)
	})
}

func TestCentroid(t *testing.T) {
	c := Centroid(square(-70.5, -27.5, 0.1))
	assert.InDelta(t, -70.45, c.Lon, 1e-6)
	assert.InDelta(t, -27.45, c.Lat, 1e-6)
}
