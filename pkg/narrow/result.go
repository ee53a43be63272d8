package narrow

import "github.com/opd-ai/go-collide/pkg/geometry"

// Result contains information about a collision
type Result struct {
	Collided bool
	// Normal points from A towards B.
	Normal      geometry.Vector
	Penetration float64
	// ContactPoint is the deepest point of A inside B.
	ContactPoint geometry.Point
}

// Separation returns the translation that moves B out of A.
func (r Result) Separation() geometry.Vector {
	return r.Normal.Mul(r.Penetration)
}

// Penetration performs detailed collision detection between two shapes
func Penetration(a, b geometry.Shape) Result { return DefaultSolver.Penetration(a, b) }

func (s Solver) Penetration(a, b geometry.Shape) Result {
	pen, ok := s.penetrate(a, b)
	if !ok {
		return Result{Collided: false}
	}
	return Result{
		Collided:     true,
		Normal:       pen.normal,
		Penetration:  pen.depth,
		ContactPoint: pen.onA,
	}
}
