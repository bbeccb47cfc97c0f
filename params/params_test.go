package params

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestToyParameters(t *testing.T) {
	c := qt.New(t)
	fp, err := Toy(32)
	c.Assert(err, qt.IsNil)
	c.Assert(fp.Toy, qt.IsTrue)
	c.Assert(fp.Group.Q.ProbablyPrime(40), qt.IsTrue)
	c.Assert(fp.Group.P.ProbablyPrime(40), qt.IsTrue)

	// g must generate the order-q subgroup.
	c.Assert(fp.Group.IsValidElement(fp.Group.GeneratorPow(fp.Group.Field().ScalarFromUint64(1))), qt.IsTrue)

	// round-trip through Info.
	back, err := fp.Info().TryValidate()
	c.Assert(err, qt.IsNil)
	c.Assert(back.Group.P.Cmp(fp.Group.P), qt.Equals, 0)
	c.Assert(back.Group.Q.Cmp(fp.Group.Q), qt.Equals, 0)
	c.Assert(back.Group.G.Cmp(fp.Group.G), qt.Equals, 0)
}

func TestVaryingParametersValidate(t *testing.T) {
	c := qt.New(t)

	_, err := VaryingParametersInfo{N: 5, K: 3, Chaining: ChainingProhibited}.TryValidate()
	c.Assert(err, qt.IsNil)

	_, err = VaryingParametersInfo{N: 2, K: 3, Chaining: ChainingProhibited}.TryValidate()
	c.Assert(err, qt.Not(qt.IsNil), qt.Commentf("k must not exceed n"))

	_, err = VaryingParametersInfo{N: 5, K: 0, Chaining: ChainingProhibited}.TryValidate()
	c.Assert(err, qt.Not(qt.IsNil), qt.Commentf("k must be >= 1"))

	_, err = VaryingParametersInfo{N: 5, K: 3, Chaining: ChainingMode(99)}.TryValidate()
	c.Assert(err, qt.Not(qt.IsNil), qt.Commentf("chaining mode must be one of the three enum values"))
}
