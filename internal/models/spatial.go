package models

import (
	"math"

	geom2 "github.com/peterstace/simplefeatures/geom"
	"github.com/twpayne/go-geom"
)

// SpatialIndex answers point-in-constituency queries
type SpatialIndex struct {
	constituencies []*Constituency
	bounds         *geom.Bounds
}

// NewSpatialIndex creates a new spatial index over the locatable constituencies
func NewSpatialIndex(constituencies []*Constituency) *SpatialIndex {
	index := &SpatialIndex{
		constituencies: make([]*Constituency, 0, len(constituencies)),
		bounds:         geom.NewBounds(geom.XY),
	}

	minX, minY := math.MaxFloat64, math.MaxFloat64
	maxX, maxY := -math.MaxFloat64, -math.MaxFloat64

	for _, c := range constituencies {
		if c.Shape == nil || c.Bounds == nil {
			continue
		}
		index.constituencies = append(index.constituencies, c)
		minX = math.Min(minX, c.Bounds.Min(0))
		minY = math.Min(minY, c.Bounds.Min(1))
		maxX = math.Max(maxX, c.Bounds.Max(0))
		maxY = math.Max(maxY, c.Bounds.Max(1))
	}

	if len(index.constituencies) > 0 {
		index.bounds.Set(minX, minY, maxX, maxY)
	}
	return index
}

// Len returns the number of constituencies that can be located
func (s *SpatialIndex) Len() int {
	return len(s.constituencies)
}

// Locate returns the first constituency whose geometry contains the point
func (s *SpatialIndex) Locate(lat, lng float64) (*Constituency, bool) {
	if len(s.constituencies) == 0 || !inBounds(s.bounds, lng, lat) {
		return nil, false
	}

	point := geom2.XY{X: lng, Y: lat}.AsPoint().AsGeometry()

	for _, c := range s.constituencies {
		if !inBounds(c.Bounds, lng, lat) {
			continue
		}
		contains, err := geom2.Contains(*c.Shape, point)
		if err != nil {
			continue
		}
		if contains {
			return c, true
		}
	}
	return nil, false
}

func inBounds(b *geom.Bounds, x, y float64) bool {
	return x >= b.Min(0) && x <= b.Max(0) && y >= b.Min(1) && y <= b.Max(1)
}
