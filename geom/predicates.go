package geom

import "math/big"

// This file contains the two sign predicates everything else is built on. A
// wrong sign here doesn't just perturb the mesh slightly; it can produce
// triangles that overlap, or send the flip loop chasing its own tail forever.
// So both predicates are evaluated adaptively: a fast floating-point pass
// first, with a provable bound on its rounding error, then a fall back to
// exact arithmetic only when the fast result is too close to zero to trust.
// The degenerate outcomes (Collinear, OnCircle) are ordinary results, not
// errors.

const (
	// dblEpsilon is the difference between 1.0 and the next representable
	// float64 (the C++ DBL_EPSILON equivalent).
	dblEpsilon = 2.220446049250313e-16
)

var (
	// Static error bounds in the style of Shewchuk's adaptive predicates. If
	// the magnitude of the float determinant exceeds the bound scaled by the
	// sum of the term magnitudes, its sign is provably correct.
	orientErrBound   = (3.0 + 16.0*dblEpsilon) * dblEpsilon
	inCircleErrBound = (10.0 + 96.0*dblEpsilon) * dblEpsilon
)

// Orientation of an ordered point triple.
type Orientation int

const (
	Right     Orientation = -1 // clockwise
	Collinear Orientation = 0
	Left      Orientation = 1 // counterclockwise
)

func (o Orientation) String() string {
	switch o {
	case Right:
		return "Right"
	case Left:
		return "Left"
	}
	return "Collinear"
}

// CircleSide is the result of an in-circle query.
type CircleSide int

const (
	Outside  CircleSide = -1
	OnCircle CircleSide = 0
	Inside   CircleSide = 1
)

func (s CircleSide) String() string {
	switch s {
	case Outside:
		return "Outside"
	case Inside:
		return "Inside"
	}
	return "OnCircle"
}

// newBigFloat constructs a big.Float with maximum precision. Differences and
// products of float64 values are exact at this precision, which is all the
// exact paths below need.
func newBigFloat() *big.Float { return new(big.Float).SetPrec(big.MaxPrec) }

func bigSub(a, b float64) *big.Float {
	return newBigFloat().Sub(big.NewFloat(a), big.NewFloat(b))
}

// Orient returns the orientation of c relative to the directed line from a to
// b: Left if abc winds counterclockwise, Right if clockwise, Collinear if the
// three points lie exactly on a line. The sign is the sign of twice the signed
// area of the triangle abc.
func Orient(a, b, c Point) Orientation {
	detLeft := (a.X - c.X) * (b.Y - c.Y)
	detRight := (a.Y - c.Y) * (b.X - c.X)
	det := detLeft - detRight

	var detSum float64
	if detLeft > 0 {
		if detRight <= 0 {
			// Terms have opposite signs (or one is zero), so no cancellation
			// happened and the sign of det is already exact.
			return orientationOfSign(det)
		}
		detSum = detLeft + detRight
	} else if detLeft < 0 {
		if detRight >= 0 {
			return orientationOfSign(det)
		}
		detSum = -detLeft - detRight
	} else {
		return orientationOfSign(det)
	}

	errBound := orientErrBound * detSum
	if det >= errBound || -det >= errBound {
		return orientationOfSign(det)
	}
	return orientExact(a, b, c)
}

func orientationOfSign(det float64) Orientation {
	if det > 0 {
		return Left
	}
	if det < 0 {
		return Right
	}
	return Collinear
}

// orientExact recomputes the orientation determinant in multiple-precision
// arithmetic. The inputs are float64, so the differences and the two products
// are all exactly representable and the resulting sign is exact.
func orientExact(a, b, c Point) Orientation {
	left := newBigFloat().Mul(bigSub(a.X, c.X), bigSub(b.Y, c.Y))
	right := newBigFloat().Mul(bigSub(a.Y, c.Y), bigSub(b.X, c.X))
	return Orientation(newBigFloat().Sub(left, right).Sign())
}

// InCircle reports where d lies relative to the circle through a, b and c,
// which must wind counterclockwise. Inside means d is strictly inside the
// circle (so an edge of triangle abc facing d violates the Delaunay
// criterion), OnCircle means the four points are exactly concyclic.
//
// With clockwise input the Inside/Outside answers are reversed; callers are
// expected to maintain the CCW invariant instead of relying on that.
func InCircle(a, b, c, d Point) CircleSide {
	adx := a.X - d.X
	ady := a.Y - d.Y
	bdx := b.X - d.X
	bdy := b.Y - d.Y
	cdx := c.X - d.X
	cdy := c.Y - d.Y

	bdxcdy := bdx * cdy
	cdxbdy := cdx * bdy
	alift := adx*adx + ady*ady

	cdxady := cdx * ady
	adxcdy := adx * cdy
	blift := bdx*bdx + bdy*bdy

	adxbdy := adx * bdy
	bdxady := bdx * ady
	clift := cdx*cdx + cdy*cdy

	det := alift*(bdxcdy-cdxbdy) + blift*(cdxady-adxcdy) + clift*(adxbdy-bdxady)

	permanent := (abs(bdxcdy)+abs(cdxbdy))*alift +
		(abs(cdxady)+abs(adxcdy))*blift +
		(abs(adxbdy)+abs(bdxady))*clift
	errBound := inCircleErrBound * permanent
	if det > errBound || -det > errBound {
		return circleSideOfSign(det)
	}
	return inCircleExact(a, b, c, d)
}

func circleSideOfSign(det float64) CircleSide {
	if det > 0 {
		return Inside
	}
	if det < 0 {
		return Outside
	}
	return OnCircle
}

// inCircleExact evaluates the in-circle determinant with big.Float. Every
// intermediate here is a sum of products of exact differences, so nothing is
// rounded and the sign is exact.
func inCircleExact(a, b, c, d Point) CircleSide {
	adx := bigSub(a.X, d.X)
	ady := bigSub(a.Y, d.Y)
	bdx := bigSub(b.X, d.X)
	bdy := bigSub(b.Y, d.Y)
	cdx := bigSub(c.X, d.X)
	cdy := bigSub(c.Y, d.Y)

	lift := func(x, y *big.Float) *big.Float {
		return newBigFloat().Add(
			newBigFloat().Mul(x, x),
			newBigFloat().Mul(y, y))
	}
	cross := func(x1, y1, x2, y2 *big.Float) *big.Float {
		return newBigFloat().Sub(
			newBigFloat().Mul(x1, y2),
			newBigFloat().Mul(x2, y1))
	}

	det := newBigFloat().Add(
		newBigFloat().Add(
			newBigFloat().Mul(lift(adx, ady), cross(bdx, bdy, cdx, cdy)),
			newBigFloat().Mul(lift(bdx, bdy), cross(cdx, cdy, adx, ady))),
		newBigFloat().Mul(lift(cdx, cdy), cross(adx, ady, bdx, bdy)))
	return CircleSide(det.Sign())
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
