package slip39

import (
	"crypto/sha256"
	"encoding/binary"

	"golang.org/x/crypto/pbkdf2"

	errs "github.com/seedcash/seedcash/pkg/common/errors"
)

const (
	BaseIterationCount = 10000
	RoundCount         = 4
)

func cipherSalt(identifier uint16, extendable bool) []byte {
	if extendable {
		return nil
	}
	salt := []byte(customizationString(false))
	return binary.BigEndian.AppendUint16(salt, identifier)
}

func roundFunction(i byte, passphrase []byte, exponent int, salt, r []byte) []byte {
	password := append([]byte{i}, passphrase...)
	s := append(append([]byte(nil), salt...), r...)
	return pbkdf2.Key(password, s, (BaseIterationCount<<exponent)/RoundCount, len(r), sha256.New)
}

func xorBytes(a, b []byte) []byte {
	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i]
	}
	return out
}

func feistel(secret, passphrase []byte, exponent int, identifier uint16, extendable bool, rounds []byte) ([]byte, error) {
	if len(secret)%2 != 0 {
		return nil, errs.Newf(ErrInvalidParameter, "secret length must be even, got %d bytes", len(secret))
	}
	if exponent < 0 || exponent > maxIterationExponent {
		return nil, errs.Newf(ErrInvalidParameter, "iteration exponent %d out of range", exponent)
	}

	half := len(secret) / 2
	l := append([]byte(nil), secret[:half]...)
	r := append([]byte(nil), secret[half:]...)
	salt := cipherSalt(identifier, extendable)
	for _, i := range rounds {
		f := roundFunction(i, passphrase, exponent, salt, r)
		l, r = r, xorBytes(l, f)
	}
	return append(r, l...), nil
}

// Encrypt runs the four round Feistel cipher over masterSecret.
func Encrypt(masterSecret, passphrase []byte, exponent int, identifier uint16, extendable bool) ([]byte, error) {
	return feistel(masterSecret, passphrase, exponent, identifier, extendable, []byte{0, 1, 2, 3})
}

// Decrypt inverts Encrypt. There is no integrity check: a wrong passphrase
// yields a different secret of the same length.
func Decrypt(ems, passphrase []byte, exponent int, identifier uint16, extendable bool) ([]byte, error) {
	return feistel(ems, passphrase, exponent, identifier, extendable, []byte{3, 2, 1, 0})
}
