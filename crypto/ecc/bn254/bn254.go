// Package bn254 implements ecc.Point over the G1 group of the BN254 curve.
package bn254

import (
	"encoding/json"
	"fmt"
	"math/big"
	"sync"

	"github.com/billat883/ArtSync/crypto/ecc"
	"github.com/billat883/ArtSync/types"
	"github.com/fxamacker/cbor/v2"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

const CurveType = "bn254"

var Generator bn254.G1Jac

func init() {
	Generator.X.SetOne()
	Generator.Y.SetUint64(2)
	Generator.Z.SetOne()
}

// G1 is the affine representation of a G1 group element. The zero value of
// inner (0, 0) is the point at infinity.
type G1 struct {
	inner *bn254.G1Affine
	lock  sync.Mutex
}

// New returns a new point set to the identity.
func New() *G1 {
	return &G1{inner: new(bn254.G1Affine)}
}

func (g *G1) New() ecc.Point {
	return New()
}

func (g *G1) Order() *big.Int {
	return fr.Modulus()
}

func (g *G1) Add(a, b ecc.Point) {
	temp := new(bn254.G1Affine)
	temp.Add(a.(*G1).inner, b.(*G1).inner)
	*g.inner = *temp
}

func (g *G1) SafeAdd(a, b ecc.Point) {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.Add(a, b)
}

func (g *G1) ScalarMult(a ecc.Point, scalar *big.Int) {
	temp := new(bn254.G1Affine)
	temp.ScalarMultiplication(a.(*G1).inner, scalar)
	*g.inner = *temp
}

func (g *G1) ScalarBaseMult(scalar *big.Int) {
	g.inner.ScalarMultiplicationBase(scalar)
}

func (g *G1) Marshal() []byte {
	return g.inner.Marshal()
}

func (g *G1) Unmarshal(buf []byte) error {
	if g.inner == nil {
		g.inner = new(bn254.G1Affine)
	}
	if _, err := g.inner.SetBytes(buf); err != nil {
		return fmt.Errorf("invalid bn254 point: %w", err)
	}
	return nil
}

func (g *G1) MarshalJSON() ([]byte, error) {
	x := types.BigInt(*g.inner.X.BigInt(new(big.Int)))
	y := types.BigInt(*g.inner.Y.BigInt(new(big.Int)))
	return json.Marshal([]types.BigInt{x, y})
}

func (g *G1) UnmarshalJSON(buf []byte) error {
	var coords []types.BigInt
	if err := json.Unmarshal(buf, &coords); err != nil {
		return err
	}
	if len(coords) != 2 {
		return fmt.Errorf("expected 2 coordinates, got %d", len(coords))
	}
	return g.setChecked(coords[0].MathBigInt(), coords[1].MathBigInt())
}

func (g *G1) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(g.Marshal())
}

func (g *G1) UnmarshalCBOR(buf []byte) error {
	var b []byte
	if err := cbor.Unmarshal(buf, &b); err != nil {
		return err
	}
	return g.Unmarshal(b)
}

func (g *G1) setChecked(x, y *big.Int) error {
	if g.inner == nil {
		g.inner = new(bn254.G1Affine)
	}
	g.inner.X.SetBigInt(x)
	g.inner.Y.SetBigInt(y)
	if !g.inner.IsOnCurve() {
		return fmt.Errorf("point (%s, %s) is not on bn254", x, y)
	}
	return nil
}

func (g *G1) Equal(a ecc.Point) bool {
	return g.inner.Equal(a.(*G1).inner)
}

func (g *G1) Neg(a ecc.Point) {
	g.inner.Neg(a.(*G1).inner)
}

func (g *G1) SetZero() {
	g.inner.X.SetZero()
	g.inner.Y.SetZero()
}

func (g *G1) IsZero() bool {
	return g.inner.IsInfinity()
}

func (g *G1) Set(a ecc.Point) {
	g.inner.X.Set(&a.(*G1).inner.X)
	g.inner.Y.Set(&a.(*G1).inner.Y)
}

func (g *G1) SetGenerator() {
	g.inner.FromJacobian(&Generator)
}

func (g *G1) String() string {
	return fmt.Sprintf("%x", g.Marshal())
}

func (g *G1) Point() (*big.Int, *big.Int) {
	return g.inner.X.BigInt(new(big.Int)), g.inner.Y.BigInt(new(big.Int))
}

func (g *G1) SetPoint(x, y *big.Int) ecc.Point {
	p := New()
	p.inner.X.SetBigInt(x)
	p.inner.Y.SetBigInt(y)
	return p
}

func (g *G1) Type() string {
	return CurveType
}
