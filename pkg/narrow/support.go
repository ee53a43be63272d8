// Package narrow implements the exact pairwise tests of the collision
// pipeline: the GJK intersection test over Minkowski differences and the
// EPA penetration solver built on top of it.
//
// Both algorithms see every shape through its support function, which
// makes them exact for convex shapes. Concave polygons and polylines are
// treated as their convex hulls.
package narrow

import (
	"github.com/opd-ai/go-collide/pkg/geometry"
)

// Support returns the point of s furthest along dir. Circles answer
// analytically; every other kind scans its vertices. A zero direction
// returns an arbitrary point of the shape.
func Support(s geometry.Shape, dir geometry.Vector) geometry.Point {
	switch v := s.(type) {
	case *geometry.Point:
		return *v
	case *geometry.Circle:
		n := dir.Normalize()
		if n == (geometry.Vector{}) {
			n = geometry.Vector{X: 1}
		}
		return v.Center.Add(n.Mul(v.Radius))
	case *geometry.Line:
		if v.Back.Dot(dir) > v.Front.Dot(dir) {
			return v.Back
		}
		return v.Front
	}
	pts := geometry.Vertices(s)
	if len(pts) == 0 {
		return geometry.Point{}
	}
	best, bestDot := pts[0], pts[0].Dot(dir)
	for _, p := range pts[1:] {
		if d := p.Dot(dir); d > bestDot {
			best, bestDot = p, d
		}
	}
	return best
}

// FurthestPoint returns the point of s furthest along the direction from
// start to end.
func FurthestPoint(s geometry.Shape, start, end geometry.Point) geometry.Point {
	return Support(s, end.Sub(start))
}

// hasGeometry reports whether s offers at least one support point.
func hasGeometry(s geometry.Shape) bool {
	switch v := s.(type) {
	case nil:
		return false
	case *geometry.Point, *geometry.Line:
		return true
	case *geometry.Circle:
		return v.Radius >= 0
	}
	return len(geometry.Vertices(s)) > 0
}

// vertex is a point of the Minkowski difference a - b together with the
// support points that produced it.
type vertex struct {
	p, a, b geometry.Point
}

func minkowski(sa, sb geometry.Shape, dir geometry.Vector) vertex {
	pa := Support(sa, dir)
	pb := Support(sb, dir.Mul(-1))
	return vertex{p: pa.Sub(pb), a: pa, b: pb}
}
