// Package ecc defines the group element abstraction used by the encryption
// schemes, so they can run over any prime order curve.
package ecc

import (
	"math/big"
)

// Point is an element of an elliptic curve group in affine coordinates.
type Point interface {
	// New returns a new point on the same curve, set to the identity.
	New() Point

	// Order returns the order of the group.
	Order() *big.Int

	// Add sets the receiver to a + b.
	Add(a, b Point)

	// SafeAdd is Add holding the receiver lock, for accumulators shared
	// between goroutines.
	SafeAdd(a, b Point)

	// ScalarMult sets the receiver to scalar * a.
	ScalarMult(a Point, scalar *big.Int)

	// ScalarBaseMult sets the receiver to scalar * G.
	ScalarBaseMult(scalar *big.Int)

	// Marshal returns the compressed encoding of the point.
	Marshal() []byte

	// Unmarshal decodes a compressed point, rejecting points outside the
	// group.
	Unmarshal(buf []byte) error

	Equal(a Point) bool

	// Neg sets the receiver to -a.
	Neg(a Point)

	// SetZero sets the receiver to the identity (point at infinity).
	SetZero()

	// IsZero reports whether the point is the identity.
	IsZero() bool

	Set(a Point)

	SetGenerator()

	String() string

	// Point returns the affine coordinates.
	Point() (*big.Int, *big.Int)

	// SetPoint returns a new point with the given affine coordinates.
	SetPoint(x, y *big.Int) Point
}
