package geo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"amoria/internal/geo"
)

func TestDistanceKM(t *testing.T) {
	t.Run("ParisToLondon", func(t *testing.T) {
		d := geo.DistanceKM(48.8566, 2.3522, 51.5074, -0.1278)
		assert.InDelta(t, 343.5, d, 2)
	})

	t.Run("SamePoint", func(t *testing.T) {
		assert.Zero(t, geo.DistanceKM(40.0, -73.9, 40.0, -73.9))
	})

	t.Run("Symmetric", func(t *testing.T) {
		a := geo.DistanceKM(35.6762, 139.6503, -33.8688, 151.2093)
		b := geo.DistanceKM(-33.8688, 151.2093, 35.6762, 139.6503)
		assert.InDelta(t, a, b, 1e-9)
	})

	t.Run("Antipodal", func(t *testing.T) {
		// Half the Earth's circumference, roughly.
		d := geo.DistanceKM(0, 0, 0, 180)
		assert.InDelta(t, 20015, d, 10)
	})
}
