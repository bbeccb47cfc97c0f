package eg

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"io"
)

// deterministicCSRNG is an io.Reader producing a reproducible byte stream
// from a seed string via HMAC-SHA-256 counter mode, the same
// domain-separated-HMAC idiom package ehash uses for hashing rather than
// randomness. It exists only to make test runs (§8's testable-property
// scenarios, and any property/regression test that wants a fixed
// transcript) reproducible; it must never back a production Context.
type deterministicCSRNG struct {
	seed    []byte
	counter uint64
	buf     []byte
}

// DeterministicCSRNG builds an insecure, seed-reproducible io.Reader for
// test builds only, per §6's "register a deterministic insecure seed (test
// builds only)." The same seed string always yields the same byte stream;
// distinct seeds yield independent streams.
func DeterministicCSRNG(seed string) io.Reader {
	return &deterministicCSRNG{seed: []byte(seed)}
}

func (d *deterministicCSRNG) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(d.buf) == 0 {
			var ctr [8]byte
			binary.BigEndian.PutUint64(ctr[:], d.counter)
			d.counter++
			mac := hmac.New(sha256.New, d.seed)
			mac.Write(ctr[:])
			d.buf = mac.Sum(nil)
		}
		k := copy(p[n:], d.buf)
		d.buf = d.buf[k:]
		n += k
	}
	return n, nil
}
