package geo

import (
	"errors"
	"fmt"
)

// ErrMalformedRing is returned for rings with fewer than 3 distinct points.
var ErrMalformedRing = errors.New("malformed ring")

// duplicateTolerance is the distance under which two consecutive points
// are considered the same vertex, in meters.
const duplicateTolerance = 1e-9

// NormalizeRing converts an explicitly closed source ring into the
// implicit-closure form used by Polygon: the closing point is dropped,
// repeated consecutive points are collapsed, and the order is inverted so
// that footprints digitized counterclockwise end up facing down.
func NormalizeRing(raw []Point) ([]Point, error) {
	if len(raw) < 4 {
		return nil, fmt.Errorf("%w: %d points, need at least 4 including the closing point", ErrMalformedRing, len(raw))
	}

	open := raw
	if raw[0].Equal(raw[len(raw)-1], duplicateTolerance) {
		open = raw[:len(raw)-1]
	}

	pts := make([]Point, 0, len(open))
	for _, p := range open {
		if len(pts) > 0 && pts[len(pts)-1].Equal(p, duplicateTolerance) {
			continue
		}
		pts = append(pts, p)
	}
	for len(pts) > 1 && pts[0].Equal(pts[len(pts)-1], duplicateTolerance) {
		pts = pts[:len(pts)-1]
	}
	if len(pts) < 3 {
		return nil, fmt.Errorf("%w: %d distinct points", ErrMalformedRing, len(pts))
	}

	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
	return pts, nil
}
