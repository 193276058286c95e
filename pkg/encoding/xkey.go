package encoding

import (
	"encoding/binary"
	"fmt"

	errs "github.com/seedcash/seedcash/pkg/common/errors"
)

// Mainnet BIP32 version bytes. They are used unchanged for the BCH
// account path so the keys import into common wallet software.
const (
	XprvVersion uint32 = 0x0488ade4
	XpubVersion uint32 = 0x0488b21e

	xkeyPayloadLength = 78
)

// XKey holds the fields of a serialized extended key. Key is the 33-byte
// key field: 0x00 followed by the private key, or a compressed public key.
type XKey struct {
	Version           uint32
	Depth             byte
	ParentFingerprint [4]byte
	ChildIndex        uint32
	ChainCode         [32]byte
	Key               [33]byte
}

func (k XKey) IsPrivate() bool {
	return k.Version == XprvVersion
}

// Payload returns the 78-byte serialization without checksum.
func (k XKey) Payload() []byte {
	buf := make([]byte, 0, xkeyPayloadLength)
	buf = binary.BigEndian.AppendUint32(buf, k.Version)
	buf = append(buf, k.Depth)
	buf = append(buf, k.ParentFingerprint[:]...)
	buf = binary.BigEndian.AppendUint32(buf, k.ChildIndex)
	buf = append(buf, k.ChainCode[:]...)
	return append(buf, k.Key[:]...)
}

func (k XKey) String() string {
	return Base58CheckEncode(k.Payload())
}

// XprvEncode serializes a 32-byte private key as an xprv string.
func XprvEncode(depth byte, parentFingerprint [4]byte, childIndex uint32, chainCode [32]byte, privateKey []byte) (string, error) {
	if len(privateKey) != 32 {
		return "", errs.Newf(errs.ErrInvalidParameter, "private key must be 32 bytes, got %d", len(privateKey))
	}
	k := XKey{
		Version:           XprvVersion,
		Depth:             depth,
		ParentFingerprint: parentFingerprint,
		ChildIndex:        childIndex,
		ChainCode:         chainCode,
	}
	copy(k.Key[1:], privateKey)
	return k.String(), nil
}

// XpubEncode serializes a 33-byte compressed public key as an xpub string.
func XpubEncode(depth byte, parentFingerprint [4]byte, childIndex uint32, chainCode [32]byte, publicKey []byte) (string, error) {
	if len(publicKey) != 33 || (publicKey[0] != 0x02 && publicKey[0] != 0x03) {
		return "", errs.Newf(errs.ErrInvalidParameter, "public key must be 33 compressed bytes")
	}
	k := XKey{
		Version:           XpubVersion,
		Depth:             depth,
		ParentFingerprint: parentFingerprint,
		ChildIndex:        childIndex,
		ChainCode:         chainCode,
	}
	copy(k.Key[:], publicKey)
	return k.String(), nil
}

// DecodeXKey parses an xprv or xpub string.
func DecodeXKey(s string) (XKey, error) {
	payload, err := Base58CheckDecode(s)
	if err != nil {
		return XKey{}, err
	}
	if len(payload) != xkeyPayloadLength {
		return XKey{}, fmt.Errorf("%w: extended key payload must be %d bytes, got %d",
			ErrInvalidBase58, xkeyPayloadLength, len(payload))
	}

	var k XKey
	k.Version = binary.BigEndian.Uint32(payload[0:4])
	k.Depth = payload[4]
	copy(k.ParentFingerprint[:], payload[5:9])
	k.ChildIndex = binary.BigEndian.Uint32(payload[9:13])
	copy(k.ChainCode[:], payload[13:45])
	copy(k.Key[:], payload[45:78])

	switch k.Version {
	case XprvVersion:
		if k.Key[0] != 0x00 {
			return XKey{}, errs.Newf(errs.ErrInvalidParameter, "xprv key field must start with 0x00")
		}
	case XpubVersion:
		if k.Key[0] != 0x02 && k.Key[0] != 0x03 {
			return XKey{}, errs.Newf(errs.ErrInvalidParameter, "xpub key field is not a compressed public key")
		}
	default:
		return XKey{}, errs.Newf(errs.ErrInvalidParameter, "unknown extended key version %08x", k.Version)
	}
	return k, nil
}

// XpubDecode parses an xpub string. xprv strings are rejected.
func XpubDecode(s string) (XKey, error) {
	k, err := DecodeXKey(s)
	if err != nil {
		return XKey{}, err
	}
	if k.Version != XpubVersion {
		return XKey{}, errs.Newf(errs.ErrInvalidParameter, "expected an xpub, got version %08x", k.Version)
	}
	return k, nil
}
