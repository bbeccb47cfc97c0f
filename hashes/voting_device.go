package hashes

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/egcore/egds/ehash"
)

// VotingDeviceInformationInfo is the unvalidated form of VotingDeviceInformation:
// an opaque, implementation-defined binding of voting-equipment identity to
// the ballot stream (§4.C, §4.J). Its hash contract is public (H_DI) but its
// field contents are not interpreted by this core, so it is encoded as CBOR
// rather than the canonical-JSON form used by hashable EDOs — nothing about
// its bytes needs to be human-legible or diffable, and CBOR is the one
// binary EDO encoding the pack's dependency set supplies
// (fxamacker/cbor/v2), matching davinci-node's own use of CBOR for its
// opaque artifact blobs.
type VotingDeviceInformationInfo struct {
	DeviceID     string
	SerialNumber string
	Metadata     map[string]string
}

// VotingDeviceInformation is the validated form. Non-goal: this core does
// not prescribe which fields real equipment must supply; only that they
// encode and hash deterministically.
type VotingDeviceInformation struct {
	DeviceID     string
	SerialNumber string
	Metadata     map[string]string
}

// TryValidate accepts any VotingDeviceInformationInfo as-is: the device
// identity schema is opaque to this core (§7's "implementation-defined").
func (info VotingDeviceInformationInfo) TryValidate() (VotingDeviceInformation, error) {
	return VotingDeviceInformation(info), nil
}

// Info converts back to Info form.
func (v VotingDeviceInformation) Info() VotingDeviceInformationInfo {
	return VotingDeviceInformationInfo(v)
}

// Encode returns the opaque CBOR bytes that feed VotingDeviceInformationHash.
func (v VotingDeviceInformation) Encode() ([]byte, error) {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("hashes: encode voting device information: %w", err)
	}
	b, err := em.Marshal(v.Info())
	if err != nil {
		return nil, fmt.Errorf("hashes: encode voting device information: %w", err)
	}
	return b, nil
}

// Hash computes H_DI for this voting-device information under parameter
// base hash hp.
func (v VotingDeviceInformation) Hash(hp ehash.HValue) (ehash.HValue, error) {
	b, err := v.Encode()
	if err != nil {
		return ehash.HValue{}, err
	}
	return VotingDeviceInformationHash(hp, b), nil
}
