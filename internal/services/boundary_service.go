package services

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	geom2 "github.com/peterstace/simplefeatures/geom"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"election-dashboard/internal/models"
)

// FeatureIDKey is the property every served feature carries its id in
const FeatureIDKey = "fid"

var (
	nameProperties  = []string{"pc_name", "PC_NAME", "Pc_name"}
	stateProperties = []string{"st_name", "ST_NAME", "state_name", "state"}
)

// minRingPoints is the smallest closed ring simplification may produce
const minRingPoints = 4

type rawFeatureCollection struct {
	Type     string       `json:"type"`
	Features []rawFeature `json:"features"`
}

type rawFeature struct {
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties"`
	Geometry   json.RawMessage        `json:"geometry"`
}

// Boundaries is the loaded constituency geometry
type Boundaries struct {
	Constituencies []*models.Constituency
	Index          *models.SpatialIndex
	Stats          models.BoundaryStats
	// GeoJSON is the simplified FeatureCollection served to the browser
	GeoJSON []byte
}

// BoundaryService loads the constituency boundary GeoJSON
type BoundaryService struct {
	tolerance float64
	logger    *zap.Logger
}

// NewBoundaryService creates a new BoundaryService instance. A tolerance of 0
// disables polygon simplification.
func NewBoundaryService(tolerance float64, logger *zap.Logger) *BoundaryService {
	return &BoundaryService{
		tolerance: tolerance,
		logger:    logger.Named("boundaries"),
	}
}

// LoadFile reads the boundary GeoJSON at path
func (s *BoundaryService) LoadFile(path string) (*Boundaries, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening boundary GeoJSON file: %w", err)
	}
	defer file.Close()

	boundaries, err := s.Load(file)
	if err != nil {
		return nil, err
	}

	s.logger.Info("boundaries loaded",
		zap.String("path", path),
		zap.Int("features", boundaries.Stats.Features),
		zap.Int("locatable", boundaries.Stats.Locatable),
		zap.Int("points_before", boundaries.Stats.PointsBefore),
		zap.Int("points_after", boundaries.Stats.PointsAfter),
	)
	return boundaries, nil
}

// Load decodes a GeoJSON FeatureCollection of constituencies
func (s *BoundaryService) Load(r io.Reader) (*Boundaries, error) {
	var collection rawFeatureCollection
	if err := json.NewDecoder(r).Decode(&collection); err != nil {
		return nil, fmt.Errorf("error parsing GeoJSON: %w", err)
	}
	if collection.Type != "FeatureCollection" {
		return nil, fmt.Errorf("unsupported GeoJSON type: %s", collection.Type)
	}

	boundaries := &Boundaries{
		Constituencies: make([]*models.Constituency, 0, len(collection.Features)),
	}
	served := &geojson.FeatureCollection{
		Features: make([]*geojson.Feature, 0, len(collection.Features)),
	}

	minX, minY := math.MaxFloat64, math.MaxFloat64
	maxX, maxY := -math.MaxFloat64, -math.MaxFloat64

	for _, raw := range collection.Features {
		if len(raw.Geometry) == 0 || string(raw.Geometry) == "null" {
			s.logger.Debug("skipping feature without geometry")
			continue
		}

		var g geom.T
		if err := geojson.Unmarshal(raw.Geometry, &g); err != nil {
			s.logger.Warn("skipping feature with invalid geometry", zap.Error(err))
			continue
		}

		before := countPoints(g)
		simplified, err := simplifyGeometry(g, s.tolerance)
		if err != nil {
			s.logger.Warn("keeping unsimplified geometry", zap.Error(err))
			simplified = g
		}

		name := stringProperty(raw.Properties, nameProperties)
		state := stringProperty(raw.Properties, stateProperties)
		constituency := &models.Constituency{
			FID:      len(boundaries.Constituencies),
			Name:     NormalizeName(name),
			State:    state,
			JoinKey:  JoinKey(name),
			StateKey: JoinKey(state),
			Geometry: simplified,
			Bounds:   g.Bounds(),
		}

		// point lookups use the full-resolution geometry
		if shape, err := geom2.UnmarshalGeoJSON(raw.Geometry); err == nil {
			constituency.Shape = &shape
			boundaries.Stats.Locatable++
		} else {
			s.logger.Debug("constituency cannot be located",
				zap.String("pc_name", constituency.Name), zap.Error(err))
		}

		b := constituency.Bounds
		minX, minY = math.Min(minX, b.Min(0)), math.Min(minY, b.Min(1))
		maxX, maxY = math.Max(maxX, b.Max(0)), math.Max(maxY, b.Max(1))

		boundaries.Stats.PointsBefore += before
		boundaries.Stats.PointsAfter += countPoints(simplified)
		boundaries.Constituencies = append(boundaries.Constituencies, constituency)

		properties := map[string]interface{}{
			FeatureIDKey: constituency.FID,
			"pc_name":    constituency.Name,
		}
		if state != "" {
			properties["st_name"] = state
		}
		served.Features = append(served.Features, &geojson.Feature{
			Geometry:   simplified,
			Properties: properties,
		})
	}

	if len(boundaries.Constituencies) == 0 {
		return nil, fmt.Errorf("no constituency features found")
	}

	boundaries.Stats.Features = len(boundaries.Constituencies)
	boundaries.Stats.MinLng, boundaries.Stats.MinLat = minX, minY
	boundaries.Stats.MaxLng, boundaries.Stats.MaxLat = maxX, maxY
	boundaries.Index = models.NewSpatialIndex(boundaries.Constituencies)

	encoded, err := json.Marshal(served)
	if err != nil {
		return nil, fmt.Errorf("error encoding simplified GeoJSON: %w", err)
	}
	boundaries.GeoJSON = encoded
	return boundaries, nil
}

func stringProperty(properties map[string]interface{}, keys []string) string {
	for _, key := range keys {
		if v, ok := properties[key]; ok && v != nil {
			if s, ok := v.(string); ok {
				return s
			}
			return fmt.Sprint(v)
		}
	}
	return ""
}

func countPoints(g geom.T) int {
	if g.Stride() == 0 {
		return 0
	}
	return len(g.FlatCoords()) / g.Stride()
}
