package geo

import "math"

// NearestVertices returns the index pair (i in ring, j in ground) with the
// smallest Euclidean distance between ring[i] and ground[j]. Ties keep the
// first pair found, scanning ring-major.
func NearestVertices(ground, ring Polygon) (int, int) {
	best := math.MaxFloat64
	ri, gj := 0, 0
	for i, rp := range ring.points {
		for j, gp := range ground.points {
			if d := rp.Distance(gp); d < best {
				best = d
				ri, gj = i, j
			}
		}
	}
	return ri, gj
}

// Bridge splices ring into ground through a zero-area slit at their
// nearest vertices, so a footprint with a hole (or an extra piece) can be
// carried as one simple ring. The result is
//
//	ground[0..j] + ring[i..] + ring[..i] + ring[i] + ground[j..]
//
// which holds |ground| + |ring| + 2 points. The slit edges cancel in the
// area sum, so when ring winds opposite to ground the area of the result
// is the area of ground minus the area of ring.
func Bridge(ground, ring Polygon) Polygon {
	if ring.Len() == 0 {
		return ground
	}
	if ground.Len() == 0 {
		return ring
	}
	i, j := NearestVertices(ground, ring)

	out := make([]Point, 0, ground.Len()+ring.Len()+2)
	out = append(out, ground.points[:j+1]...)
	out = append(out, ring.points[i:]...)
	out = append(out, ring.points[:i]...)
	out = append(out, ring.points[i])
	out = append(out, ground.points[j:]...)
	return Polygon{points: out}
}

// MergeRings bridges each ring into ground in order. With no rings the
// ground polygon is returned unchanged.
func MergeRings(ground Polygon, rings ...Polygon) Polygon {
	for _, r := range rings {
		ground = Bridge(ground, r)
	}
	return ground
}
