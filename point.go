package si

import "golang.org/x/image/math/f64"

// Point is a 2D point or vector in user-space coordinates.
type Point struct {
	X, Y float64
}

// Pt is a convenience constructor for Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Transform applies the affine transform m to p.
func (p Point) Transform(m f64.Aff3) Point {
	return Point{X: m[0]*p.X + m[1]*p.Y + m[2], Y: m[3]*p.X + m[4]*p.Y + m[5]}
}
