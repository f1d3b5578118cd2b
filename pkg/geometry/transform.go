package geometry

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// AffineTransform represents a 2x3 affine transformation matrix.
// [a b tx]
// [c d ty]
type AffineTransform struct {
	A, B, TX float64
	C, D, TY float64
}

// Identity returns the identity transform.
func Identity() AffineTransform {
	return AffineTransform{A: 1, D: 1}
}

// Translation returns a translation transform.
func Translation(tx, ty float64) AffineTransform {
	return AffineTransform{A: 1, D: 1, TX: tx, TY: ty}
}

// Rotation returns a rotation transform around the origin.
func Rotation(radians float64) AffineTransform {
	cos := math.Cos(radians)
	sin := math.Sin(radians)
	return AffineTransform{A: cos, B: -sin, C: sin, D: cos}
}

// Scaling returns a scaling transform.
func Scaling(sx, sy float64) AffineTransform {
	return AffineTransform{A: sx, D: sy}
}

// ShearX returns a horizontal shear transform.
func ShearX(factor float64) AffineTransform {
	return AffineTransform{A: 1, B: factor, D: 1}
}

// ShearY returns a vertical shear transform.
func ShearY(factor float64) AffineTransform {
	return AffineTransform{A: 1, C: factor, D: 1}
}

// Apply applies the transform to a point.
func (t AffineTransform) Apply(p Point2D) Point2D {
	return Point2D{
		X: t.A*p.X + t.B*p.Y + t.TX,
		Y: t.C*p.X + t.D*p.Y + t.TY,
	}
}

// Compose returns this transform composed with another (this * other).
func (t AffineTransform) Compose(other AffineTransform) AffineTransform {
	return AffineTransform{
		A:  t.A*other.A + t.B*other.C,
		B:  t.A*other.B + t.B*other.D,
		TX: t.A*other.TX + t.B*other.TY + t.TX,
		C:  t.C*other.A + t.D*other.C,
		D:  t.C*other.B + t.D*other.D,
		TY: t.C*other.TX + t.D*other.TY + t.TY,
	}
}

// Inverse returns the inverse transform, if it exists.
func (t AffineTransform) Inverse() (AffineTransform, bool) {
	det := t.A*t.D - t.B*t.C
	if math.Abs(det) < 1e-10 {
		return AffineTransform{}, false
	}

	invDet := 1.0 / det
	return AffineTransform{
		A:  t.D * invDet,
		B:  -t.B * invDet,
		TX: (t.B*t.TY - t.D*t.TX) * invDet,
		C:  -t.C * invDet,
		D:  t.A * invDet,
		TY: (t.C*t.TX - t.A*t.TY) * invDet,
	}, true
}

// Translation2D returns the translation components of the transform.
func (t AffineTransform) Translation2D() Point2D {
	return Point2D{X: t.TX, Y: t.TY}
}

// TRS holds the transform fields of a drawable entity. Angle and skew
// angles are in degrees, matching the scene graph's entity fields.
type TRS struct {
	X, Y           float64
	ScaleX, ScaleY float64
	Angle          float64
	FlipX, FlipY   bool
	SkewX, SkewY   float64
}

// Matrix builds the composed affine matrix for a TRS:
// translate, then rotate, then shear, then scale (flips fold into
// negative scale factors).
func (f TRS) Matrix() AffineTransform {
	sx, sy := f.ScaleX, f.ScaleY
	if f.FlipX {
		sx = -sx
	}
	if f.FlipY {
		sy = -sy
	}
	m := Translation(f.X, f.Y)
	m = m.Compose(Rotation(f.Angle * math.Pi / 180))
	if f.SkewX != 0 {
		m = m.Compose(ShearX(math.Tan(f.SkewX * math.Pi / 180)))
	}
	if f.SkewY != 0 {
		m = m.Compose(ShearY(math.Tan(f.SkewY * math.Pi / 180)))
	}
	return m.Compose(Scaling(sx, sy))
}

// Decompose extracts translation, rotation, scale and horizontal skew
// from an affine matrix using a QR factorization of the 2x2 linear
// part. A reflection in the matrix surfaces as a negative ScaleY.
// Vertical skew cannot be separated from the other factors and is
// reported as zero.
func (t AffineTransform) Decompose() TRS {
	l := mat.NewDense(2, 2, []float64{t.A, t.B, t.C, t.D})

	var qr mat.QR
	qr.Factorize(l)

	var q, r mat.Dense
	qr.QTo(&q)
	qr.RTo(&r)

	q00, q01 := q.At(0, 0), q.At(0, 1)
	q10, q11 := q.At(1, 0), q.At(1, 1)
	r00, r01 := r.At(0, 0), r.At(0, 1)
	r11 := r.At(1, 1)

	// Fix the sign convention so the R diagonal is non-negative.
	if r00 < 0 {
		q00, q10 = -q00, -q10
		r00, r01 = -r00, -r01
	}
	if r11 < 0 {
		q01, q11 = -q01, -q11
		r11 = -r11
	}

	angle := math.Atan2(q10, q00) * 180 / math.Pi

	scaleY := r11
	if q00*q11-q01*q10 < 0 {
		// Q carries a reflection that Rotation alone cannot express.
		scaleY = -r11
	}

	var skewX float64
	if math.Abs(scaleY) > 1e-12 {
		skewX = math.Atan(r01/scaleY) * 180 / math.Pi
	}

	return TRS{
		X:      t.TX,
		Y:      t.TY,
		ScaleX: r00,
		ScaleY: scaleY,
		Angle:  angle,
		SkewX:  skewX,
	}
}
