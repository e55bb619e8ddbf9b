// Package geostore provides the geometry-store adapters: an in-memory
// fixture store for tests and development, a PostGIS-backed store for real
// datasets, and a Redis read-through cache that wraps either.
package geostore

import (
	"context"
	"sync"

	"github.com/Ignacio1972/mineria-sub004/internal/seia/models"
	"github.com/Ignacio1972/mineria-sub004/internal/seia/ports"
	dErrors "github.com/Ignacio1972/mineria-sub004/pkg/domain-errors"
	"github.com/Ignacio1972/mineria-sub004/pkg/geo"
)

// Feature is one named polygon in a fixture dataset. Rings must be convex:
// the overlap area computation clips the project footprint against the
// feature, and the clip is exact only for convex features. Real datasets
// live in PostGIS, which has no such restriction.
type Feature struct {
	Name string
	Ring geo.Ring
}

// Memory answers layer queries from fixture datasets held in memory. All
// measurement is metric: overlap areas come from geodesic ring areas and
// proximity from great-circle distances, matching what the PostGIS store
// computes in its geography casts.
type Memory struct {
	mu       sync.RWMutex
	datasets map[string][]Feature
}

// NewMemory creates an empty fixture store.
func NewMemory() *Memory {
	return &Memory{datasets: make(map[string][]Feature)}
}

// AddDataset registers features under a dataset ref, replacing any previous
// registration. Feature rings are validated on the way in.
func (m *Memory) AddDataset(ref string, features ...Feature) error {
	if ref == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "dataset ref cannot be empty")
	}
	for _, f := range features {
		if f.Name == "" {
			return dErrors.New(dErrors.CodeInvalidInput, "feature name cannot be empty")
		}
		if err := geo.ValidateRing(f.Ring); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInvalidGeometry, "invalid feature ring")
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.datasets[ref] = append([]Feature(nil), features...)
	return nil
}

// QueryLayer reports every feature of the dataset that overlaps the project
// footprint or lies within bufferMeters of it.
func (m *Memory) QueryLayer(_ context.Context, datasetRef string, geom *models.ProjectGeometry, bufferMeters float64) ([]ports.FeatureMatch, error) {
	m.mu.RLock()
	features, ok := m.datasets[datasetRef]
	m.mu.RUnlock()
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "unknown dataset %q", datasetRef)
	}

	var matches []ports.FeatureMatch
	for _, f := range features {
		if areaHa, overlaps := overlapAreaHa(geom, f.Ring); overlaps {
			matches = append(matches, ports.FeatureMatch{
				Name:           f.Name,
				Overlaps:       true,
				AffectedAreaHa: areaHa,
			})
			continue
		}
		if dist, near := withinBuffer(geom, f.Ring, bufferMeters); near {
			matches = append(matches, ports.FeatureMatch{
				Name:           f.Name,
				DistanceMeters: dist,
			})
		}
	}
	return matches, nil
}

// overlapAreaHa sums the metric area the footprint shares with the feature
// across all project polygons.
func overlapAreaHa(geom *models.ProjectGeometry, feature geo.Ring) (float64, bool) {
	var totalM2 float64
	overlaps := false
	for _, poly := range geom.Polygons {
		if !geo.RingsOverlap(poly, feature) {
			continue
		}
		overlaps = true
		clipped := geo.ClipToConvex(poly, feature)
		if len(clipped) >= 3 {
			totalM2 += geo.RingAreaM2(clipped)
		}
	}
	return totalM2 / 10000, overlaps
}

func withinBuffer(geom *models.ProjectGeometry, feature geo.Ring, bufferMeters float64) (float64, bool) {
	if bufferMeters <= 0 {
		return 0, false
	}
	best := -1.0
	for _, poly := range geom.Polygons {
		d := geo.MinDistanceMeters(poly, feature)
		if best < 0 || d < best {
			best = d
		}
	}
	return best, best >= 0 && best <= bufferMeters
}
