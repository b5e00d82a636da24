package geo

import "math"

// SnapPointToLine returns the nearest point on ls to p, along with ok=false
// if ls is empty or the calculation is degenerate (the result would be
// NaN/infinite, or ls has fewer than 1 point).
//
// Nearest-segment search is planar (treats lng/lat as Cartesian), which is
// an approximation that is acceptable at the scale of a single route step;
// see DistanceAlong for the same tradeoff.
func SnapPointToLine(p Location, ls Polyline) (Location, bool) {
	if len(ls) == 0 || !isFiniteLocation(p) {
		return Location{}, false
	}
	if len(ls) == 1 {
		if !isFiniteLocation(ls[0]) {
			return Location{}, false
		}
		return ls[0], true
	}

	best := Location{}
	bestDist := math.Inf(1)
	found := false

	for i := 0; i < len(ls)-1; i++ {
		a, b := ls[i], ls[i+1]
		if !isFiniteLocation(a) || !isFiniteLocation(b) {
			continue
		}
		cand := closestPointOnSegment(p, a, b)
		d := planarDistanceSquared(p, cand)
		if math.IsNaN(d) || math.IsInf(d, 0) {
			continue
		}
		if d < bestDist {
			bestDist = d
			best = cand
			found = true
		}
	}

	if !found || !isFiniteLocation(best) {
		return Location{}, false
	}
	return best, true
}

// closestPointOnSegment returns the closest point on segment [a,b] to p,
// using a planar projection of lng/lat.
func closestPointOnSegment(p, a, b Location) Location {
	dx := b.Longitude - a.Longitude
	dy := b.Latitude - a.Latitude

	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return a
	}

	t := ((p.Longitude-a.Longitude)*dx + (p.Latitude-a.Latitude)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	return Location{
		Longitude: a.Longitude + t*dx,
		Latitude:  a.Latitude + t*dy,
	}
}

func planarDistanceSquared(a, b Location) float64 {
	dx := a.Longitude - b.Longitude
	dy := a.Latitude - b.Latitude
	return dx*dx + dy*dy
}

// DeviationFromLine returns the haversine distance from p to its snap onto
// ls, or false if the snap is degenerate.
func DeviationFromLine(p Location, ls Polyline) (float64, bool) {
	snap, ok := SnapPointToLine(p, ls)
	if !ok {
		return 0, false
	}
	return Haversine(p, snap), true
}

// IsWithinThresholdToEndOfLinestring reports whether the haversine distance
// from p to the last vertex of ls is at most d. An empty ls is never within
// threshold.
func IsWithinThresholdToEndOfLinestring(p Location, ls Polyline, d float64) bool {
	if len(ls) == 0 {
		return false
	}
	last := ls[len(ls)-1]
	return Haversine(p, last) <= d
}

// HaversineLength returns the cumulative haversine length of ls.
func HaversineLength(ls Polyline) float64 {
	total := 0.0
	for i := 0; i+1 < len(ls); i++ {
		total += Haversine(ls[i], ls[i+1])
	}
	return total
}

// DistanceAlong returns the cumulative haversine length from the start of ls
// to the snap of p onto the nearest segment. The nearest segment is chosen
// by planar (Euclidean) distance rather than haversine distance, which is a
// known approximation: acceptable for continental-scale steps, imprecise
// for very long polar segments. Within the winning segment, the snap
// position is taken via planar line-location, then the along-line distance
// is accumulated using haversine for each prior whole segment plus the
// partial haversine distance to the snap point.
//
// An empty or single-point ls returns 0.
func DistanceAlong(p Location, ls Polyline) float64 {
	if len(ls) < 2 {
		return 0
	}

	bestSeg := -1
	bestDist := math.Inf(1)
	var bestSnap Location

	for i := 0; i < len(ls)-1; i++ {
		a, b := ls[i], ls[i+1]
		cand := closestPointOnSegment(p, a, b)
		d := planarDistanceSquared(p, cand)
		if d < bestDist {
			bestDist = d
			bestSeg = i
			bestSnap = cand
		}
	}

	if bestSeg < 0 {
		return 0
	}

	total := 0.0
	for i := 0; i < bestSeg; i++ {
		total += Haversine(ls[i], ls[i+1])
	}
	total += Haversine(ls[bestSeg], bestSnap)

	return total
}

// DistanceToEndOfStep returns the haversine length of ls remaining after the
// snap of snappedP, clamped to zero.
func DistanceToEndOfStep(snappedP Location, ls Polyline) float64 {
	remaining := HaversineLength(ls) - DistanceAlong(snappedP, ls)
	if remaining < 0 {
		return 0
	}
	return remaining
}
