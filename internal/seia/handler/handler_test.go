package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ignacio1972/mineria-sub004/internal/seia/models"
	id "github.com/Ignacio1972/mineria-sub004/pkg/domain"
)

type stubAnalyzer struct {
	result *models.AnalysisResult
	err    error

	gotGeom  *models.ProjectGeometry
	gotAttrs models.ProjectAttributes
}

func (s *stubAnalyzer) Run(_ context.Context, geom *models.ProjectGeometry, attrs models.ProjectAttributes) (*models.AnalysisResult, error) {
	s.gotGeom = geom
	s.gotAttrs = attrs
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newRouter(a *stubAnalyzer) http.Handler {
	r := chi.NewRouter()
	New(a, slog.New(slog.DiscardHandler)).Register(r)
	return r
}

func validBody() map[string]any {
	return map[string]any{
		"geometry": map[string]any{
			"polygons": [][][2]float64{{
				{-69.10, -26.40},
				{-69.00, -26.40},
				{-69.00, -26.30},
				{-69.10, -26.30},
				{-69.10, -26.40},
			}},
		},
		"attributes": map[string]any{
			"surface_hectares":  600.0,
			"water_use_lps":     150.0,
			"mining_type":       "rajo_abierto",
			"in_populated_area": true,
		},
	}
}

func post(t *testing.T, router http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleAnalyze_Success(t *testing.T) {
	dist := 640.0
	analysisID := id.NewAnalysisID()
	stub := &stubAnalyzer{result: &models.AnalysisResult{
		ID: analysisID,
		Intersections: []models.IntersectionResult{
			models.NewProximity(id.LayerID("glaciares"), "Glaciar Tapado", dist),
		},
		Triggers: []models.Trigger{{
			Letter:   models.LetterD,
			Severity: models.SeverityAlta,
			Weight:   0.9,
		}},
		MatrixScore: models.MatrixScore{TotalScore: 0.55},
		Classification: models.Classification{
			Pathway:     models.PathwayEIA,
			Confidence:  0.65,
			Rule:        models.RuleMatrixElevated,
			MatrixScore: 0.55,
		},
		EvaluatedAt: time.Now().UTC(),
	}}

	w := post(t, newRouter(stub), validBody())
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, analysisID.String(), resp["id"])

	classification := resp["classification"].(map[string]any)
	assert.Equal(t, "EIA", classification["pathway"])
	assert.InDelta(t, 0.65, classification["confidence"], 1e-12)

	intersections := resp["intersections"].([]any)
	require.Len(t, intersections, 1)
	first := intersections[0].(map[string]any)
	assert.Equal(t, "glaciares", first["layer_id"])
	assert.InDelta(t, 640.0, first["distance_meters"], 1e-12)

	// The handler decoded the request into domain inputs.
	require.NotNil(t, stub.gotGeom)
	assert.Greater(t, stub.gotGeom.AreaHectares, 0.0)
	require.NotNil(t, stub.gotAttrs.SurfaceHectares)
	assert.Equal(t, 600.0, *stub.gotAttrs.SurfaceHectares)
	assert.True(t, stub.gotAttrs.InPopulatedArea)
	assert.Nil(t, stub.gotAttrs.PeakWorkforce)
}

func TestHandleAnalyze_MalformedBody(t *testing.T) {
	stub := &stubAnalyzer{}
	router := newRouter(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, stub.gotGeom)
}

func TestHandleAnalyze_InvalidGeometry(t *testing.T) {
	body := validBody()
	// Too few vertices for a closed ring.
	body["geometry"] = map[string]any{
		"polygons": [][][2]float64{{
			{-69.10, -26.40},
			{-69.00, -26.40},
			{-69.00, -26.30},
		}},
	}

	w := post(t, newRouter(&stubAnalyzer{}), body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_geometry", resp["error"])
}

func TestHandleAnalyze_EmptyGeometry(t *testing.T) {
	body := validBody()
	body["geometry"] = map[string]any{"polygons": [][][2]float64{}}

	w := post(t, newRouter(&stubAnalyzer{}), body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestHandleAnalyze_AnalyzerFailure(t *testing.T) {
	stub := &stubAnalyzer{err: errors.New("kaboom")}

	w := post(t, newRouter(stub), validBody())
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "internal", resp["error"])
	assert.Empty(t, resp["error_description"])
}
