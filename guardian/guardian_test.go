package guardian

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/egcore/egds/arith"
	"github.com/egcore/egds/hashes"
	"github.com/egcore/egds/idx"
	"github.com/egcore/egds/params"
)

func TestGenerateAndVerifyPublicKey(t *testing.T) {
	c := qt.New(t)
	fp, err := params.Toy(48)
	c.Assert(err, qt.IsNil)
	hp := hashes.ParameterBaseHash(params.Version, fp)

	i := idx.MustNew[idx.GuardianTag](1)
	sk, pk, err := Generate(fp, hp, i, 3)
	c.Assert(err, qt.IsNil)
	c.Assert(sk.Coefficients, qt.HasLen, 3)

	err = VerifyPublicKey(fp, hp, pk, 3)
	c.Assert(err, qt.IsNil)

	// round-trip through Info.
	info := pk.Info()
	back, err := info.TryValidate(fp, hp, 3)
	c.Assert(err, qt.IsNil)
	c.Assert(back.Commitments[0].Equal(pk.Commitments[0]), qt.IsTrue)
}

func TestVerifyPublicKeyRejectsTamperedProof(t *testing.T) {
	c := qt.New(t)
	fp, err := params.Toy(48)
	c.Assert(err, qt.IsNil)
	hp := hashes.ParameterBaseHash(params.Version, fp)

	i := idx.MustNew[idx.GuardianTag](1)
	_, pk, err := Generate(fp, hp, i, 2)
	c.Assert(err, qt.IsNil)

	field := fp.Group.Field()
	pk.Proofs[0].Response = field.AddMod(pk.Proofs[0].Response, field.ScalarFromUint64(1))
	err = VerifyPublicKey(fp, hp, pk, 2)
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestShareEncryptDecryptRoundTrip(t *testing.T) {
	c := qt.New(t)
	fp, err := params.Toy(48)
	c.Assert(err, qt.IsNil)
	hp := hashes.ParameterBaseHash(params.Version, fp)

	dealerIx := idx.MustNew[idx.GuardianTag](1)
	recipientIx := idx.MustNew[idx.GuardianTag](2)

	dealerSk, dealerPk, err := Generate(fp, hp, dealerIx, 2)
	c.Assert(err, qt.IsNil)
	recipientSk, recipientPk, err := Generate(fp, hp, recipientIx, 2)
	c.Assert(err, qt.IsNil)

	share, err := EncryptShare(fp, hp, dealerIx, dealerSk, recipientIx, recipientPk)
	c.Assert(err, qt.IsNil)

	c.Assert(VerifyEncryptedShare(fp, share), qt.IsNil)

	val, err := DecryptShare(fp, hp, share, dealerPk, recipientSk)
	c.Assert(err, qt.IsNil)

	want := PolynomialAt(fp, dealerSk, int64(recipientIx.Int()))
	c.Assert(val.Equal(want), qt.IsTrue)
}

func TestShareDecryptRejectsWrongRecipient(t *testing.T) {
	c := qt.New(t)
	fp, err := params.Toy(48)
	c.Assert(err, qt.IsNil)
	hp := hashes.ParameterBaseHash(params.Version, fp)

	dealerIx := idx.MustNew[idx.GuardianTag](1)
	recipientIx := idx.MustNew[idx.GuardianTag](2)
	impostorIx := idx.MustNew[idx.GuardianTag](3)

	dealerSk, dealerPk, err := Generate(fp, hp, dealerIx, 2)
	c.Assert(err, qt.IsNil)
	_, recipientPk, err := Generate(fp, hp, recipientIx, 2)
	c.Assert(err, qt.IsNil)
	impostorSk, _, err := Generate(fp, hp, impostorIx, 2)
	c.Assert(err, qt.IsNil)

	share, err := EncryptShare(fp, hp, dealerIx, dealerSk, recipientIx, recipientPk)
	c.Assert(err, qt.IsNil)

	_, err = DecryptShare(fp, hp, share, dealerPk, impostorSk)
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestLagrangeRecoversSecretAtZero(t *testing.T) {
	c := qt.New(t)
	fp, err := params.Toy(48)
	c.Assert(err, qt.IsNil)
	hp := hashes.ParameterBaseHash(params.Version, fp)

	i := idx.MustNew[idx.GuardianTag](1)
	sk, _, err := Generate(fp, hp, i, 3) // k=3 => 2-degree polynomial, 3 points recover it
	c.Assert(err, qt.IsNil)

	evaluations := map[int]arith.Scalar{
		1: PolynomialAt(fp, sk, 1),
		2: PolynomialAt(fp, sk, 2),
		3: PolynomialAt(fp, sk, 3),
	}
	recovered, err := DecryptShares(fp, evaluations)
	c.Assert(err, qt.IsNil)
	c.Assert(recovered.Equal(sk.Coefficients[0]), qt.IsTrue)
}
