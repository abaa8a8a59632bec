package euclid

import "math"

// Tolerance is the absolute tolerance for geometric equality checks.
const Tolerance = 1e-6

// coincident is the distance below which two points are the same point.
const coincident = 1e-9

// Point is a location in the plane.
type Point struct {
	X, Y float64
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Dot returns the dot product of p and q as vectors.
func (p Point) Dot(q Point) float64 { return p.X*q.X + p.Y*q.Y }

// Cross returns the z component of the cross product of p and q.
func (p Point) Cross(q Point) float64 { return p.X*q.Y - p.Y*q.X }

// Scale returns p scaled by k.
func (p Point) Scale(k float64) Point { return Point{p.X * k, p.Y * k} }

// Rotate turns p about the origin by theta radians, counterclockwise.
func (p Point) Rotate(theta float64) Point {
	sin, cos := math.Sincos(theta)
	return Point{p.X*cos - p.Y*sin, p.X*sin + p.Y*cos}
}

// Midpoint returns the point halfway between p1 and p2.
func Midpoint(p1, p2 Point) Point {
	return Point{(p1.X + p2.X) / 2, (p1.Y + p2.Y) / 2}
}

// PerpendicularBisector returns the midpoint of segment p1-p2 and a
// direction vector perpendicular to it. The direction has the segment's
// length.
func PerpendicularBisector(p1, p2 Point) (Point, Point) {
	d := p2.Sub(p1)
	return Midpoint(p1, p2), Point{-d.Y, d.X}
}

// Distance returns the Euclidean distance between p1 and p2.
func Distance(p1, p2 Point) float64 {
	return math.Hypot(p1.X-p2.X, p1.Y-p2.Y)
}

// Centroid returns the average of pts. pts must not be empty.
func Centroid(pts []Point) Point {
	var c Point
	for _, p := range pts {
		c = c.Add(p)
	}
	return c.Scale(1 / float64(len(pts)))
}

// LineDistance returns the distance from p to the infinite line through
// a and b, and the position t of the foot of the perpendicular along
// a->b (0 at a, 1 at b). a and b must be distinct.
func LineDistance(p, a, b Point) (float64, float64) {
	d := b.Sub(a)
	length := math.Hypot(d.X, d.Y)
	return math.Abs(d.Cross(p.Sub(a))) / length, p.Sub(a).Dot(d) / (length * length)
}

func samePoint(p, q Point) bool {
	return Distance(p, q) <= Tolerance
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= Tolerance
}
