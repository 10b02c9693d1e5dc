package services

import (
	"fmt"
	"math"

	"github.com/twpayne/go-geom"
)

// simplifyGeometry applies the Ramer-Douglas-Peucker algorithm to every ring
// of a Polygon or MultiPolygon. Other geometry types are returned unchanged.
func simplifyGeometry(g geom.T, epsilon float64) (geom.T, error) {
	if epsilon <= 0 {
		return g, nil
	}

	switch t := g.(type) {
	case *geom.Polygon:
		rings := simplifyRings(t.Coords(), epsilon)
		polygon, err := geom.NewPolygon(t.Layout()).SetCoords(rings)
		if err != nil {
			return nil, fmt.Errorf("error creating simplified polygon: %w", err)
		}
		return polygon, nil
	case *geom.MultiPolygon:
		coords := t.Coords()
		simplified := make([][][]geom.Coord, len(coords))
		for i, polygon := range coords {
			simplified[i] = simplifyRings(polygon, epsilon)
		}
		multi, err := geom.NewMultiPolygon(t.Layout()).SetCoords(simplified)
		if err != nil {
			return nil, fmt.Errorf("error creating simplified multipolygon: %w", err)
		}
		return multi, nil
	default:
		return g, nil
	}
}

func simplifyRings(rings [][]geom.Coord, epsilon float64) [][]geom.Coord {
	out := make([][]geom.Coord, len(rings))
	for i, ring := range rings {
		simplified := simplifyLine(ring, epsilon)
		if len(simplified) < minRingPoints {
			simplified = ring
		}
		out[i] = simplified
	}
	return out
}

// perpendicularDistance calculates the perpendicular distance from a point to a line segment
func perpendicularDistance(point, lineStart, lineEnd geom.Coord) float64 {
	// If the line segment is actually a point, return distance to that point
	if lineStart.X() == lineEnd.X() && lineStart.Y() == lineEnd.Y() {
		return math.Hypot(point.X()-lineStart.X(), point.Y()-lineStart.Y())
	}

	area := math.Abs((lineEnd.Y()-lineStart.Y())*point.X() - (lineEnd.X()-lineStart.X())*point.Y() +
		lineEnd.X()*lineStart.Y() - lineEnd.Y()*lineStart.X())
	lineLength := math.Hypot(lineEnd.X()-lineStart.X(), lineEnd.Y()-lineStart.Y())

	// height of the triangle
	return area / lineLength
}

// simplifyLine keeps the first and last point and recursively every point
// further than epsilon from the chord between them
func simplifyLine(points []geom.Coord, epsilon float64) []geom.Coord {
	if len(points) <= 2 {
		return points
	}

	maxDistance := 0.0
	maxIndex := 0
	for i := 1; i < len(points)-1; i++ {
		distance := perpendicularDistance(points[i], points[0], points[len(points)-1])
		if distance > maxDistance {
			maxDistance = distance
			maxIndex = i
		}
	}

	if maxDistance > epsilon {
		firstLine := simplifyLine(points[:maxIndex+1], epsilon)
		secondLine := simplifyLine(points[maxIndex:], epsilon)
		combined := make([]geom.Coord, 0, len(firstLine)+len(secondLine)-1)
		combined = append(combined, firstLine[:len(firstLine)-1]...)
		return append(combined, secondLine...)
	}

	return []geom.Coord{points[0], points[len(points)-1]}
}
