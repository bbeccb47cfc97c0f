package guardian

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/egcore/egds/arith"
	"github.com/egcore/egds/egerr"
	"github.com/egcore/egds/ehash"
	"github.com/egcore/egds/idx"
	"github.com/egcore/egds/params"
)

// GuardianEncryptedShareInfo is the unvalidated, serialized form of a
// threshold share dealer i encrypted for recipient ℓ.
type GuardianEncryptedShareInfo struct {
	DealerIndex    int
	RecipientIndex int
	Alpha          string // hex
	Ciphertext     string // hex, c1 (32-byte XOR block)
	Mac            string // hex, c2
}

// GuardianEncryptedShare is dealer i's share of its polynomial, encrypted
// for recipient ℓ under a key derived from an ephemeral ECIES-style
// exchange, per §4.D "Encrypt share i -> ℓ."
type GuardianEncryptedShare struct {
	Dealer    idx.Guardian
	Recipient idx.Guardian
	Alpha     arith.Element // g^xi
	C1        [32]byte      // enc(k_enc, P_i(l))
	C2        [32]byte      // HMAC(k_mac, alpha || c1)
}

// TryValidate parses a GuardianEncryptedShareInfo's hex fields and checks
// that Alpha lies in the order-q subgroup.
func (info GuardianEncryptedShareInfo) TryValidate(fp params.FixedParameters) (GuardianEncryptedShare, error) {
	d, err := idx.New[idx.GuardianTag](info.DealerIndex)
	if err != nil {
		return GuardianEncryptedShare{}, err
	}
	r, err := idx.New[idx.GuardianTag](info.RecipientIndex)
	if err != nil {
		return GuardianEncryptedShare{}, err
	}
	alphaV, ok := new(big.Int).SetString(info.Alpha, 16)
	if !ok {
		return GuardianEncryptedShare{}, fmt.Errorf("guardian: encrypted share alpha is not valid hex")
	}
	c1b, err := hexBlock(info.Ciphertext)
	if err != nil {
		return GuardianEncryptedShare{}, fmt.Errorf("guardian: encrypted share ciphertext: %w", err)
	}
	c2b, err := hexBlock(info.Mac)
	if err != nil {
		return GuardianEncryptedShare{}, fmt.Errorf("guardian: encrypted share mac: %w", err)
	}
	share := GuardianEncryptedShare{Dealer: d, Recipient: r, Alpha: arith.ElementFromBig(alphaV), C1: c1b, C2: c2b}
	if err := VerifyEncryptedShare(fp, share); err != nil {
		return GuardianEncryptedShare{}, err
	}
	return share, nil
}

// Info converts a validated GuardianEncryptedShare back to its Info form.
func (s GuardianEncryptedShare) Info() GuardianEncryptedShareInfo {
	return GuardianEncryptedShareInfo{
		DealerIndex:    s.Dealer.Int(),
		RecipientIndex: s.Recipient.Int(),
		Alpha:          s.Alpha.Int().Text(16),
		Ciphertext:     big.NewInt(0).SetBytes(s.C1[:]).Text(16),
		Mac:            big.NewInt(0).SetBytes(s.C2[:]).Text(16),
	}
}

func hexBlock(s string) ([32]byte, error) {
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return [32]byte{}, fmt.Errorf("not valid hex")
	}
	var out [32]byte
	copy(out[:], arith.FixedLenBytes(v, 32))
	return out, nil
}

func shareKeyLabel(fp params.FixedParameters, hp ehash.HValue, i, l idx.Guardian, kl, alpha, beta arith.Element) ehash.HValue {
	n := elementBytes(fp)
	return ehash.H(hp, ehash.Tagged(tagShareSecretKey,
		indexBytes(i.Uint32()),
		indexBytes(l.Uint32()),
		arith.FixedLenBytes(kl.Int(), n),
		arith.FixedLenBytes(alpha.Int(), n),
		arith.FixedLenBytes(beta.Int(), n),
	))
}

// deriveMacEnc splits a shared secret key into (k_mac, k_enc) via HMAC of
// two fixed one-byte labels, per §4.D's "derive (k_mac, k_enc) by HMAC of a
// fixed label."
func deriveMacEnc(shared ehash.HValue) (kMac, kEnc [32]byte) {
	return hmacSum(shared.Bytes(), 0x01), hmacSum(shared.Bytes(), 0x02)
}

func xorBlock(key [32]byte, plain *big.Int) [32]byte {
	pb := arith.FixedLenBytes(plain, 32)
	var out [32]byte
	for i := range out {
		out[i] = pb[i] ^ key[i]
	}
	return out
}

// EncryptShare encrypts dealer i's evaluation P_i(recipient) for recipient
// ℓ under ℓ's public key K_ℓ = recipientPK.Commitments[0], per §4.D.
func EncryptShare(fp params.FixedParameters, hp ehash.HValue, i idx.Guardian, sk GuardianSecretKey, recipient idx.Guardian, recipientPK GuardianPublicKey) (GuardianEncryptedShare, error) {
	field := fp.Group.Field()
	xi, err := field.RandomScalar(nil)
	if err != nil {
		return GuardianEncryptedShare{}, fmt.Errorf("guardian: sample share nonce: %w", err)
	}
	alpha := fp.Group.GeneratorPow(xi)
	kl := recipientPK.Commitments[0]
	beta := fp.Group.Pow(kl, xi)

	shared := shareKeyLabel(fp, hp, i, recipient, kl, alpha, beta)
	_, kEnc := deriveMacEnc(shared)

	pVal := PolynomialAt(fp, sk, int64(recipient.Int()))
	c1 := xorBlock(kEnc, pVal.Int())

	kMac, _ := deriveMacEnc(shared)
	c2 := macOf(kMac, alpha, c1)

	return GuardianEncryptedShare{Dealer: i, Recipient: recipient, Alpha: alpha, C1: c1, C2: c2}, nil
}

func macOf(kMac [32]byte, alpha arith.Element, c1 [32]byte) [32]byte {
	mac := hmac.New(sha256.New, kMac[:])
	mac.Write(alpha.Int().Bytes())
	mac.Write(c1[:])
	var out [32]byte
	copy(out[:], mac.Sum(nil))
	return out
}

// DecryptShare decrypts and verifies share, dealt by share.Dealer to the
// guardian holding recipientSk, using the dealer's published commitments
// (dealerPK) to verify the resulting evaluation without trusting the
// dealer, per §4.D "Decrypt share."
func DecryptShare(fp params.FixedParameters, hp ehash.HValue, share GuardianEncryptedShare, dealerPK GuardianPublicKey, recipientSk GuardianSecretKey) (arith.Scalar, error) {
	sl := recipientSk.Coefficients[0]
	beta := fp.Group.Pow(share.Alpha, sl)
	kl := dealerPKRecipientCommitment(fp, recipientSk)
	shared := shareKeyLabel(fp, hp, share.Dealer, share.Recipient, kl, share.Alpha, beta)
	kMac, kEnc := deriveMacEnc(shared)

	wantMac := macOf(kMac, share.Alpha, share.C1)
	if wantMac != share.C2 {
		return arith.Scalar{}, &egerr.ValidationError{Kind: "InvalidShareMac", Detail: "share MAC does not verify"}
	}

	var dec [32]byte
	for i := range dec {
		dec[i] = share.C1[i] ^ kEnc[i]
	}
	val := arith.NewScalar(fp.Group.Q, new(big.Int).SetBytes(dec[:]))

	// verify g^{P_i(l)} == Pi_j K_{i,j}^{l^j} mod p
	lhs := fp.Group.GeneratorPow(val)
	rhs := CommitmentsEvalAt(fp, dealerPK, int64(share.Recipient.Int()))
	if !lhs.Equal(rhs) {
		return arith.Scalar{}, &egerr.ValidationError{Kind: "InvalidShareEvaluation", Detail: "decrypted share does not match dealer's commitments"}
	}
	return val, nil
}

func dealerPKRecipientCommitment(fp params.FixedParameters, recipientSk GuardianSecretKey) arith.Element {
	return fp.Group.GeneratorPow(recipientSk.Coefficients[0])
}

// VerifyEncryptedShare checks that an encrypted share is well-formed
// (Alpha in the subgroup) without decrypting it: a capability distinct from
// DecryptShare for auditors who hold no secret key.
func VerifyEncryptedShare(fp params.FixedParameters, share GuardianEncryptedShare) error {
	if !fp.Group.IsValidElement(share.Alpha) {
		return &egerr.ValidationError{Kind: "InvalidShareAlpha", Detail: "share alpha not in subgroup"}
	}
	return nil
}

// LagrangeCoefficient computes the Lagrange basis coefficient for index i
// evaluated so as to recover P(0) from k evaluations {P(j) : j in indices},
// i.e. product over l != i of l * (l - i)^-1 mod q, per §4.D "Combine."
func LagrangeCoefficient(fp params.FixedParameters, i int, indices []int) (arith.Scalar, error) {
	field := fp.Group.Field()
	num := field.ScalarFromUint64(1)
	den := field.ScalarFromUint64(1)
	for _, l := range indices {
		if l == i {
			continue
		}
		num = field.MulMod(num, field.ScalarFromUint64(uint64(l)))
		diff := field.SubMod(field.ScalarFromUint64(uint64(l)), field.ScalarFromUint64(uint64(i)))
		den = field.MulMod(den, diff)
	}
	denInv, err := field.Inverse(den)
	if err != nil {
		return arith.Scalar{}, fmt.Errorf("guardian: lagrange coefficient for %d: %w", i, err)
	}
	return field.MulMod(num, denInv), nil
}

// DecryptShares combines k evaluations P(ell), keyed by 1-based guardian
// index ell, via Lagrange interpolation at 0 and returns P(0) mod q — used by
// §4.D's threshold decryption path. It works on scalars only; it does not
// reconstruct g^{P(0)} in the exponent.
func DecryptShares(fp params.FixedParameters, evaluations map[int]arith.Scalar) (arith.Scalar, error) {
	indices := make([]int, 0, len(evaluations))
	for i := range evaluations {
		indices = append(indices, i)
	}
	field := fp.Group.Field()
	acc := field.ScalarFromUint64(0)
	for i, v := range evaluations {
		lambda, err := LagrangeCoefficient(fp, i, indices)
		if err != nil {
			return arith.Scalar{}, err
		}
		acc = field.AddMod(acc, field.MulMod(lambda, v))
	}
	return acc, nil
}

// Dealer bundles one guardian's secret/public key pair and is the unit a
// key-generation ceremony iterates over, per §4.D.
type Dealer struct {
	Index idx.Guardian
	Sk    GuardianSecretKey
	Pk    GuardianPublicKey
}

// NewDealer runs Generate for guardian index i and wraps the result.
func NewDealer(fp params.FixedParameters, hp ehash.HValue, i idx.Guardian, k int) (Dealer, error) {
	sk, pk, err := Generate(fp, hp, i, k)
	if err != nil {
		return Dealer{}, err
	}
	return Dealer{Index: i, Sk: sk, Pk: pk}, nil
}

// ShareBox holds every encrypted share one dealer produced in a
// key-generation ceremony, one for each recipient it was dealt to.
type ShareBox struct {
	Dealer idx.Guardian
	Shares map[int]GuardianEncryptedShare // by recipient index
}

// DealShares encrypts d's polynomial evaluation for every recipient in
// recipientPKs (keyed by guardian index), producing the ShareBox d
// broadcasts to the ceremony.
func DealShares(fp params.FixedParameters, hp ehash.HValue, d Dealer, recipientPKs map[int]GuardianPublicKey) (ShareBox, error) {
	shares := make(map[int]GuardianEncryptedShare, len(recipientPKs))
	for idxVal, pk := range recipientPKs {
		recipient, err := idx.New[idx.GuardianTag](idxVal)
		if err != nil {
			return ShareBox{}, err
		}
		share, err := EncryptShare(fp, hp, d.Index, d.Sk, recipient, pk)
		if err != nil {
			return ShareBox{}, err
		}
		shares[idxVal] = share
	}
	return ShareBox{Dealer: d.Index, Shares: shares}, nil
}

// Combine builds the joint public key for a purpose from every dealer's
// public key, per §4.D "Combine."
func Combine(fp params.FixedParameters, dealers []Dealer) arith.Element {
	pks := make([]GuardianPublicKey, len(dealers))
	for i, d := range dealers {
		pks[i] = d.Pk
	}
	return JointPublicKey(fp, pks)
}
