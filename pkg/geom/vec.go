package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Dist2 returns the squared Euclidean distance between p and q.
func Dist2(p, q r3.Vec) float64 {
	return r3.Norm2(r3.Sub(p, q))
}

// Dist returns the Euclidean distance between p and q.
func Dist(p, q r3.Vec) float64 {
	return r3.Norm(r3.Sub(p, q))
}

// Midpoint returns the point halfway between p and q.
func Midpoint(p, q r3.Vec) r3.Vec {
	return r3.Scale(0.5, r3.Add(p, q))
}

// TriangleNormal returns the unnormalized normal of triangle (a, b, c),
// oriented by the right-hand rule. Its length is twice the triangle area.
func TriangleNormal(a, b, c r3.Vec) r3.Vec {
	return r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
}

// TriangleArea returns the area of triangle (a, b, c).
func TriangleArea(a, b, c r3.Vec) float64 {
	return 0.5 * r3.Norm(TriangleNormal(a, b, c))
}

// Dihedral returns the dihedral angle in radians, in [0, π], between
// triangle (e0, e1, a) and triangle (e1, e0, b), which share the edge e0–e1.
//
// The two triangles are taken with consistent orientation, so a flat
// configuration (a and b on opposite sides of the edge, coplanar) yields π
// and a configuration folded completely onto itself yields 0. The result
// is symmetric in a and b. If either triangle is degenerate the angle is
// reported as π, i.e. as flat.
func Dihedral(a, e0, e1, b r3.Vec) float64 {
	n1 := TriangleNormal(e0, e1, a)
	n2 := TriangleNormal(e1, e0, b)
	if r3.Norm2(n1) == 0 || r3.Norm2(n2) == 0 {
		return math.Pi
	}
	// atan2 keeps exactly parallel normals at exactly zero.
	between := math.Atan2(r3.Norm(r3.Cross(n1, n2)), r3.Dot(n1, n2))
	return math.Pi - between
}

// Bounds returns the axis-aligned bounding box of pts. For an empty slice
// both corners are the zero vector.
func Bounds(pts []r3.Vec) (lo, hi r3.Vec) {
	if len(pts) == 0 {
		return r3.Vec{}, r3.Vec{}
	}
	lo, hi = pts[0], pts[0]
	for _, p := range pts[1:] {
		lo.X, hi.X = math.Min(lo.X, p.X), math.Max(hi.X, p.X)
		lo.Y, hi.Y = math.Min(lo.Y, p.Y), math.Max(hi.Y, p.Y)
		lo.Z, hi.Z = math.Min(lo.Z, p.Z), math.Max(hi.Z, p.Z)
	}
	return lo, hi
}
