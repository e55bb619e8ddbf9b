package geostore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/Ignacio1972/mineria-sub004/internal/seia/models"
	"github.com/Ignacio1972/mineria-sub004/internal/seia/ports"
	dErrors "github.com/Ignacio1972/mineria-sub004/pkg/domain-errors"
)

// Postgres answers layer queries against PostGIS feature tables. Dataset
// refs map to rows of a datasets table naming the feature table; geometry
// arrives as GeoJSON and every area and distance is computed in the
// geography type, so results are metric regardless of coordinate system.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostGIS-backed geometry store.
func NewPostgres(db *sql.DB) (*Postgres, error) {
	if db == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "database handle is required")
	}
	return &Postgres{db: db}, nil
}

// layerQuery matches features of one dataset that intersect the footprint
// or lie within the buffer. ST_DWithin on geography takes meters; the
// affected area comes from the geography cast of the intersection, in m².
const layerQuery = `
	SELECT f.name,
	       ST_Intersects(f.geom, g.geom) AS overlaps,
	       COALESCE(ST_Area(ST_Intersection(f.geom, g.geom)::geography), 0) AS affected_m2,
	       ST_Distance(f.geom::geography, g.geom::geography) AS distance_m
	FROM seia_features f,
	     (SELECT ST_SetSRID(ST_GeomFromGeoJSON($1), 4326) AS geom) g
	WHERE f.dataset_ref = $2
	  AND ST_DWithin(f.geom::geography, g.geom::geography, $3)
	ORDER BY f.name
`

// QueryLayer implements ports.GeometryStore.
func (s *Postgres) QueryLayer(ctx context.Context, datasetRef string, geom *models.ProjectGeometry, bufferMeters float64) ([]ports.FeatureMatch, error) {
	footprint, err := json.Marshal(MultiPolygonGeoJSON(geom))
	if err != nil {
		return nil, fmt.Errorf("encode footprint: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, layerQuery, footprint, datasetRef, bufferMeters)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Class() == "22" {
			// Data exceptions mean PostGIS rejected the geometry.
			return nil, dErrors.Wrap(err, dErrors.CodeInvalidGeometry, "postgis rejected footprint")
		}
		return nil, fmt.Errorf("query layer %s: %w", datasetRef, err)
	}
	defer rows.Close()

	var matches []ports.FeatureMatch
	for rows.Next() {
		var (
			name       string
			overlaps   bool
			affectedM2 float64
			distanceM  float64
		)
		if err := rows.Scan(&name, &overlaps, &affectedM2, &distanceM); err != nil {
			return nil, fmt.Errorf("scan layer match: %w", err)
		}
		match := ports.FeatureMatch{Name: name, Overlaps: overlaps}
		if overlaps {
			match.AffectedAreaHa = affectedM2 / 10000
		} else {
			match.DistanceMeters = distanceM
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate layer matches: %w", err)
	}
	return matches, nil
}

// GeoJSONGeometry is a minimal GeoJSON geometry document.
type GeoJSONGeometry struct {
	Type        string          `json:"type"`
	Coordinates [][][][]float64 `json:"coordinates"`
}

// MultiPolygonGeoJSON encodes the footprint as a GeoJSON MultiPolygon of
// single-ring polygons, [lon, lat] per position as the format requires.
func MultiPolygonGeoJSON(geom *models.ProjectGeometry) GeoJSONGeometry {
	coords := make([][][][]float64, 0, len(geom.Polygons))
	for _, ring := range geom.Polygons {
		positions := make([][]float64, 0, len(ring))
		for _, p := range ring {
			positions = append(positions, []float64{p.Lon, p.Lat})
		}
		coords = append(coords, [][][]float64{positions})
	}
	return GeoJSONGeometry{Type: "MultiPolygon", Coordinates: coords}
}
