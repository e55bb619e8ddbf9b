// Package handler exposes the analysis engine over HTTP. One endpoint runs
// a full analysis; the wire types live here so the domain models stay free
// of serialization concerns.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Ignacio1972/mineria-sub004/internal/seia/models"
	dErrors "github.com/Ignacio1972/mineria-sub004/pkg/domain-errors"
	"github.com/Ignacio1972/mineria-sub004/pkg/geo"
	"github.com/Ignacio1972/mineria-sub004/pkg/platform/httputil"
)

// Analyzer runs complete analyses.
type Analyzer interface {
	Run(ctx context.Context, geom *models.ProjectGeometry, attrs models.ProjectAttributes) (*models.AnalysisResult, error)
}

// Handler handles analysis endpoints.
type Handler struct {
	analyzer Analyzer
	logger   *slog.Logger
	timeout  time.Duration
}

// New creates a new analysis Handler.
func New(analyzer Analyzer, logger *slog.Logger) *Handler {
	return &Handler{
		analyzer: analyzer,
		logger:   logger,
		timeout:  30 * time.Second,
	}
}

// Register registers the analysis routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(chimw.Recoverer)
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Timeout(h.timeout))
	router.Post("/api/v1/analysis", h.handleAnalyze)

	r.Mount("/", router)
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	geom, err := req.Geometry.toModel()
	if err != nil {
		h.logger.WarnContext(ctx, "rejected project geometry", "error", err)
		httputil.WriteError(w, err)
		return
	}

	result, err := h.analyzer.Run(ctx, geom, req.Attributes.toModel())
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvalidGeometry) || dErrors.HasCode(err, dErrors.CodeInvalidInput) {
			httputil.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "analysis failed", "error", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "analysis failed"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toResponse(result))
}

type analyzeRequest struct {
	Geometry   geometryRequest   `json:"geometry"`
	Attributes attributesRequest `json:"attributes"`
}

// geometryRequest carries polygons as GeoJSON-style [lon, lat] positions,
// one ring per polygon.
type geometryRequest struct {
	Polygons [][][2]float64 `json:"polygons"`
}

func (g geometryRequest) toModel() (*models.ProjectGeometry, error) {
	rings := make([]geo.Ring, 0, len(g.Polygons))
	for _, poly := range g.Polygons {
		ring := make(geo.Ring, 0, len(poly))
		for _, pos := range poly {
			ring = append(ring, geo.Point{Lon: pos[0], Lat: pos[1]})
		}
		rings = append(rings, ring)
	}
	return models.NewProjectGeometry(rings)
}

type attributesRequest struct {
	SurfaceHectares       *float64 `json:"surface_hectares"`
	WaterUseLPS           *float64 `json:"water_use_lps"`
	PeakWorkforce         *int     `json:"peak_workforce"`
	InvestmentMUSD        *float64 `json:"investment_musd"`
	LifetimeYears         *float64 `json:"lifetime_years"`
	MiningType            string   `json:"mining_type"`
	PrimaryMineral        string   `json:"primary_mineral"`
	InPopulatedArea       bool     `json:"in_populated_area"`
	NearbyPopulationCount int      `json:"nearby_population_count"`
}

func (a attributesRequest) toModel() models.ProjectAttributes {
	return models.ProjectAttributes{
		SurfaceHectares:       a.SurfaceHectares,
		WaterUseLPS:           a.WaterUseLPS,
		PeakWorkforce:         a.PeakWorkforce,
		InvestmentMUSD:        a.InvestmentMUSD,
		LifetimeYears:         a.LifetimeYears,
		MiningType:            a.MiningType,
		PrimaryMineral:        a.PrimaryMineral,
		InPopulatedArea:       a.InPopulatedArea,
		NearbyPopulationCount: a.NearbyPopulationCount,
	}
}

type analyzeResponse struct {
	ID             string                 `json:"id"`
	Intersections  []intersectionResponse `json:"intersections"`
	DegradedLayers []layerFailureResponse `json:"degraded_layers,omitempty"`
	Triggers       []triggerResponse      `json:"triggers"`
	MatrixScore    matrixScoreResponse    `json:"matrix_score"`
	Classification classificationResponse `json:"classification"`
	Alerts         []alertResponse        `json:"alerts"`
	EvaluatedAt    time.Time              `json:"evaluated_at"`
}

type intersectionResponse struct {
	LayerID              string   `json:"layer_id"`
	FeatureName          string   `json:"feature_name"`
	Inside               bool     `json:"inside"`
	AffectedAreaHa       float64  `json:"affected_area_ha,omitempty"`
	IntersectionFraction float64  `json:"intersection_fraction,omitempty"`
	DistanceMeters       *float64 `json:"distance_meters,omitempty"`
}

type layerFailureResponse struct {
	LayerID string `json:"layer_id"`
	Reason  string `json:"reason"`
}

type triggerResponse struct {
	Letter      string  `json:"letter"`
	Description string  `json:"description"`
	Detail      string  `json:"detail,omitempty"`
	Severity    string  `json:"severity"`
	LegalBasis  string  `json:"legal_basis"`
	Weight      float64 `json:"weight"`
}

type factorScoreResponse struct {
	Factor       string   `json:"factor"`
	RawValue     *float64 `json:"raw_value,omitempty"`
	Threshold    float64  `json:"threshold"`
	Weight       float64  `json:"weight"`
	Exceeded     bool     `json:"exceeded"`
	Contribution float64  `json:"contribution"`
}

type matrixScoreResponse struct {
	Factors    []factorScoreResponse `json:"factors"`
	TotalScore float64               `json:"total_score"`
}

type classificationResponse struct {
	Pathway            string  `json:"pathway"`
	Confidence         float64 `json:"confidence"`
	Rule               string  `json:"rule"`
	RequiresMitigation bool    `json:"requires_mitigation"`
	Justification      string  `json:"justification"`
	MatrixScore        float64 `json:"matrix_score"`
}

type alertResponse struct {
	ID              string   `json:"id"`
	Severity        string   `json:"severity"`
	Category        string   `json:"category"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	RequiredActions []string `json:"required_actions,omitempty"`
}

func toResponse(result *models.AnalysisResult) analyzeResponse {
	resp := analyzeResponse{
		ID:            result.ID.String(),
		Intersections: make([]intersectionResponse, 0, len(result.Intersections)),
		Triggers:      make([]triggerResponse, 0, len(result.Triggers)),
		Alerts:        make([]alertResponse, 0, len(result.Alerts)),
		MatrixScore: matrixScoreResponse{
			Factors:    make([]factorScoreResponse, 0, len(result.MatrixScore.Factors)),
			TotalScore: result.MatrixScore.TotalScore,
		},
		Classification: classificationResponse{
			Pathway:            string(result.Classification.Pathway),
			Confidence:         result.Classification.Confidence,
			Rule:               string(result.Classification.Rule),
			RequiresMitigation: result.Classification.RequiresMitigation,
			Justification:      result.Classification.Justification,
			MatrixScore:        result.Classification.MatrixScore,
		},
		EvaluatedAt: result.EvaluatedAt,
	}
	for _, r := range result.Intersections {
		resp.Intersections = append(resp.Intersections, intersectionResponse{
			LayerID:              r.LayerID.String(),
			FeatureName:          r.FeatureName,
			Inside:               r.Inside,
			AffectedAreaHa:       r.AffectedAreaHa,
			IntersectionFraction: r.IntersectionFraction,
			DistanceMeters:       r.DistanceMeters,
		})
	}
	for _, f := range result.DegradedLayers {
		resp.DegradedLayers = append(resp.DegradedLayers, layerFailureResponse{
			LayerID: f.LayerID.String(),
			Reason:  f.Reason,
		})
	}
	for _, trig := range result.Triggers {
		resp.Triggers = append(resp.Triggers, triggerResponse{
			Letter:      string(trig.Letter),
			Description: trig.Description,
			Detail:      trig.Detail,
			Severity:    string(trig.Severity),
			LegalBasis:  trig.LegalBasis,
			Weight:      trig.Weight,
		})
	}
	for _, f := range result.MatrixScore.Factors {
		resp.MatrixScore.Factors = append(resp.MatrixScore.Factors, factorScoreResponse{
			Factor:       string(f.Factor),
			RawValue:     f.RawValue,
			Threshold:    f.Threshold,
			Weight:       f.Weight,
			Exceeded:     f.Exceeded,
			Contribution: f.Contribution,
		})
	}
	for _, a := range result.Alerts {
		resp.Alerts = append(resp.Alerts, alertResponse{
			ID:              a.ID.String(),
			Severity:        string(a.Severity),
			Category:        a.Category,
			Title:           a.Title,
			Description:     a.Description,
			RequiredActions: a.RequiredActions,
		})
	}
	return resp
}
