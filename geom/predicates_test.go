package geom

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrientBasic(t *testing.T) {
	a := Point{0, 0}
	b := Point{1, 0}
	assert.Equal(t, Left, Orient(a, b, Point{0, 1}))
	assert.Equal(t, Right, Orient(a, b, Point{0, -1}))
	assert.Equal(t, Collinear, Orient(a, b, Point{2, 0}))
	assert.Equal(t, Collinear, Orient(a, b, Point{-3, 0}))
}

func TestOrientAntisymmetry(t *testing.T) {
	// Swapping any two arguments must invert the result, including in the
	// near-degenerate cases where the float path gives up.
	pts := []Point{
		{0.1, 0.1},
		{0.30000000000000004, 0.30000000000000004},
		{0.5000000000000001, 0.5},
	}
	for i, a := range pts {
		for j, b := range pts {
			for k, c := range pts {
				if i == j || j == k || i == k {
					continue
				}
				assert.Equal(t, Orient(a, b, c), -Orient(b, a, c))
				assert.Equal(t, Orient(a, b, c), Orient(b, c, a))
			}
		}
	}
}

func TestOrientNearCollinear(t *testing.T) {
	// These triples are so close to collinear that the naive determinant is
	// dominated by rounding error. The exact path must still give consistent
	// answers under cyclic rotation.
	a := Point{12.0, 12.0}
	b := Point{24.0, 24.0}
	for i := 0; i < 64; i++ {
		c := Point{0.5, 0.5 + float64(i)*dblEpsilon}
		o := Orient(a, b, c)
		assert.Equal(t, o, Orient(b, c, a), "cyclic rotation changed the answer for i=%d", i)
		assert.Equal(t, -o, Orient(b, a, c), "swap did not invert the answer for i=%d", i)
	}

	// Exactly collinear, far apart.
	assert.Equal(t, Collinear, Orient(Point{1e17, 1e17}, Point{-1e17, -1e17}, Point{3, 3}))
}

func TestInCircleBasic(t *testing.T) {
	// Unit circle through three CCW points.
	a := Point{-1, 0}
	b := Point{1, 0}
	c := Point{0, 1}
	assert.Equal(t, Inside, InCircle(a, b, c, Point{0, 0}))
	assert.Equal(t, Outside, InCircle(a, b, c, Point{2, 2}))
	assert.Equal(t, OnCircle, InCircle(a, b, c, Point{0, -1}))
}

func TestInCircleNearBoundary(t *testing.T) {
	a := Point{-1, 0}
	b := Point{1, 0}
	c := Point{0, 1}
	// Points just inside and just outside the unit circle along the x axis.
	just := 1 - dblEpsilon
	assert.Equal(t, Inside, InCircle(a, b, c, Point{just, 0}))
	assert.Equal(t, Outside, InCircle(a, b, c, Point{1 + 4*dblEpsilon, 0}))
}

func TestInCircleConsistentUnderRotation(t *testing.T) {
	// Cocircular points rotated through awkward angles should stay OnCircle or
	// flip consistently, never disagree between cyclic orderings of abc.
	for i := 0; i < 12; i++ {
		i := i
		t.Run(fmt.Sprintf("rotation %d", i), func(t *testing.T) {
			angle := float64(i) * math.Pi / 6
			rot := func(p Point) Point {
				cos, sin := math.Cos(angle), math.Sin(angle)
				return Point{p.X*cos - p.Y*sin, p.X*sin + p.Y*cos}
			}
			a := rot(Point{-1, 0})
			b := rot(Point{1, 0})
			c := rot(Point{0, 1})
			d := rot(Point{0, -1})
			s1 := InCircle(a, b, c, d)
			s2 := InCircle(b, c, a, d)
			s3 := InCircle(c, a, b, d)
			assert.Equal(t, s1, s2)
			assert.Equal(t, s2, s3)
		})
	}
}

func TestCircumcenter(t *testing.T) {
	a := Point{0, 0}
	b := Point{2, 0}
	c := Point{0, 2}
	cc := Circumcenter(a, b, c)
	assert.InDelta(t, 1, cc.X, 1e-12)
	assert.InDelta(t, 1, cc.Y, 1e-12)
	assert.InDelta(t, math.Sqrt2, Circumradius(a, b, c), 1e-12)

	// Collinear input gives a finite fallback, not NaN.
	cc = Circumcenter(Point{0, 0}, Point{1, 1}, Point{2, 2})
	assert.False(t, math.IsNaN(cc.X))
	assert.True(t, math.IsInf(Circumradius(Point{0, 0}, Point{1, 1}, Point{2, 2}), 1))
}

func TestQuality(t *testing.T) {
	// Equilateral triangle: circumradius over edge is 1/sqrt(3).
	h := math.Sqrt(3) / 2
	q := Quality(Point{0, 0}, Point{1, 0}, Point{0.5, h})
	assert.InDelta(t, 1/math.Sqrt(3), q, 1e-12)

	// A sliver scores much worse.
	sliver := Quality(Point{0, 0}, Point{1, 0}, Point{0.5, 0.01})
	assert.Greater(t, sliver, 10.0)
}
