// Package bip32 implements hierarchical deterministic key derivation over
// secp256k1.
package bip32

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	errs "github.com/seedcash/seedcash/pkg/common/errors"
	"github.com/seedcash/seedcash/pkg/encoding"
	"github.com/seedcash/seedcash/pkg/utils"
)

const (
	HardenedKeyStart uint32 = 0x80000000

	MinSeedBytes = 16
	MaxSeedBytes = 64
)

var masterKey = []byte("Bitcoin seed")

var (
	// ErrDerivedKeyInvalid is returned when a derived scalar is not below the
	// curve order or the resulting key is the point at infinity. The caller
	// may move on to the next index; this package never does so on its own.
	ErrDerivedKeyInvalid    = errors.New("derived key is invalid")
	ErrDeriveHardFromPublic = errors.New("cannot derive a hardened key from a public key")
	ErrNotPrivate           = errors.New("extended key is not private")
	ErrInvalidSeedLen       = errs.Newf(errs.ErrInvalidParameter, "seed length must be between %d and %d bytes", MinSeedBytes, MaxSeedBytes)
)

// ExtendedKey is a private or public key with its chain code and position
// in the derivation tree.
type ExtendedKey struct {
	Depth             byte
	ParentFingerprint [4]byte
	ChildIndex        uint32
	ChainCode         [32]byte
	// Key is the 32-byte private scalar or the 33-byte compressed public key.
	Key     []byte
	private bool
}

// NewMaster derives the master key from a seed.
func NewMaster(seed []byte) (*ExtendedKey, error) {
	if len(seed) < MinSeedBytes || len(seed) > MaxSeedBytes {
		return nil, ErrInvalidSeedLen
	}

	mac := hmac.New(sha512.New, masterKey)
	mac.Write(seed)
	sum := mac.Sum(nil)

	var k secp256k1.ModNScalar
	if overflow := k.SetByteSlice(sum[:32]); overflow || k.IsZero() {
		return nil, ErrDerivedKeyInvalid
	}

	key := &ExtendedKey{Key: append([]byte(nil), sum[:32]...), private: true}
	copy(key.ChainCode[:], sum[32:])
	return key, nil
}

func (k *ExtendedKey) IsPrivate() bool {
	return k.private
}

// PublicKey returns the 33-byte compressed public key.
func (k *ExtendedKey) PublicKey() []byte {
	if !k.private {
		return append([]byte(nil), k.Key...)
	}
	return secp256k1.PrivKeyFromBytes(k.Key).PubKey().SerializeCompressed()
}

// Fingerprint is the first four bytes of HASH160 of the public key.
func (k *ExtendedKey) Fingerprint() [4]byte {
	var fp [4]byte
	copy(fp[:], utils.Hash160(k.PublicKey()))
	return fp
}

// Public returns the public version of k.
func (k *ExtendedKey) Public() *ExtendedKey {
	return &ExtendedKey{
		Depth:             k.Depth,
		ParentFingerprint: k.ParentFingerprint,
		ChildIndex:        k.ChildIndex,
		ChainCode:         k.ChainCode,
		Key:               k.PublicKey(),
	}
}

func childMAC(chainCode [32]byte, data []byte, index uint32) []byte {
	mac := hmac.New(sha512.New, chainCode[:])
	mac.Write(data)
	mac.Write(binary.BigEndian.AppendUint32(nil, index))
	return mac.Sum(nil)
}

// ChildHardened derives the hardened child at index. The hardened bit is
// set if index does not carry it already.
func (k *ExtendedKey) ChildHardened(index uint32) (*ExtendedKey, error) {
	return k.Child(index | HardenedKeyStart)
}

// Child derives the child key at index. Hardened indices need a private key.
func (k *ExtendedKey) Child(index uint32) (*ExtendedKey, error) {
	hardened := index >= HardenedKeyStart
	if !k.private {
		if hardened {
			return nil, ErrDeriveHardFromPublic
		}
		pub, chain, err := DerivePublicChild(k.Key, k.ChainCode, index)
		if err != nil {
			return nil, err
		}
		return &ExtendedKey{
			Depth:             k.Depth + 1,
			ParentFingerprint: k.Fingerprint(),
			ChildIndex:        index,
			ChainCode:         chain,
			Key:               pub,
		}, nil
	}

	var data []byte
	if hardened {
		data = append([]byte{0x00}, k.Key...)
	} else {
		data = k.PublicKey()
	}
	sum := childMAC(k.ChainCode, data, index)

	// Hardened children reduce IL modulo n; non-hardened ones reject IL >= n
	// so private and public derivation always agree.
	var il, parent secp256k1.ModNScalar
	if overflow := il.SetByteSlice(sum[:32]); overflow && !hardened {
		return nil, ErrDerivedKeyInvalid
	}
	parent.SetByteSlice(k.Key)
	il.Add(&parent)
	if il.IsZero() {
		return nil, ErrDerivedKeyInvalid
	}

	childKey := il.Bytes()
	child := &ExtendedKey{
		Depth:             k.Depth + 1,
		ParentFingerprint: k.Fingerprint(),
		ChildIndex:        index,
		Key:               childKey[:],
		private:           true,
	}
	copy(child.ChainCode[:], sum[32:])
	return child, nil
}

// DerivePublicChild derives the non-hardened child of a compressed public
// key. It returns the child public key and chain code.
func DerivePublicChild(pub []byte, chainCode [32]byte, index uint32) ([]byte, [32]byte, error) {
	var chain [32]byte
	if index >= HardenedKeyStart {
		return nil, chain, ErrDeriveHardFromPublic
	}
	parent, err := secp256k1.ParsePubKey(pub)
	if err != nil {
		return nil, chain, errs.Wrap(errs.ErrInvalidParameter, err)
	}

	sum := childMAC(chainCode, pub, index)
	var il secp256k1.ModNScalar
	if overflow := il.SetByteSlice(sum[:32]); overflow {
		return nil, chain, ErrDerivedKeyInvalid
	}

	var ilG, parentPoint, result secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(&il, &ilG)
	parent.AsJacobian(&parentPoint)
	secp256k1.AddNonConst(&ilG, &parentPoint, &result)
	if (result.X.IsZero() && result.Y.IsZero()) || result.Z.IsZero() {
		return nil, chain, ErrDerivedKeyInvalid
	}
	result.ToAffine()

	copy(chain[:], sum[32:])
	return secp256k1.NewPublicKey(&result.X, &result.Y).SerializeCompressed(), chain, nil
}

// String serializes k as an xprv or xpub.
func (k *ExtendedKey) String() string {
	var (
		s   string
		err error
	)
	if k.private {
		s, err = encoding.XprvEncode(k.Depth, k.ParentFingerprint, k.ChildIndex, k.ChainCode, k.Key)
	} else {
		s, err = encoding.XpubEncode(k.Depth, k.ParentFingerprint, k.ChildIndex, k.ChainCode, k.Key)
	}
	if err != nil {
		return ""
	}
	return s
}

// FromXKey rebuilds an extended key from its decoded serialization.
func FromXKey(x encoding.XKey) *ExtendedKey {
	k := &ExtendedKey{
		Depth:             x.Depth,
		ParentFingerprint: x.ParentFingerprint,
		ChildIndex:        x.ChildIndex,
		ChainCode:         x.ChainCode,
		private:           x.IsPrivate(),
	}
	if k.private {
		k.Key = append([]byte(nil), x.Key[1:]...)
	} else {
		k.Key = append([]byte(nil), x.Key[:]...)
	}
	return k
}

// ParseExtendedKey decodes an xprv or xpub string.
func ParseExtendedKey(s string) (*ExtendedKey, error) {
	x, err := encoding.DecodeXKey(s)
	if err != nil {
		return nil, err
	}
	if !x.IsPrivate() {
		if _, err := secp256k1.ParsePubKey(x.Key[:]); err != nil {
			return nil, errs.Wrap(errs.ErrInvalidParameter, err)
		}
	}
	return FromXKey(x), nil
}

// PrivateKey returns a copy of the 32-byte private scalar.
func (k *ExtendedKey) PrivateKey() ([]byte, error) {
	if !k.private {
		return nil, ErrNotPrivate
	}
	return append([]byte(nil), k.Key...), nil
}
