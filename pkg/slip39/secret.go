package slip39

import (
	"crypto/hmac"
	"crypto/sha256"

	errs "github.com/seedcash/seedcash/pkg/common/errors"
)

const (
	// SecretIndex and DigestIndex are the x coordinates reserved for the
	// shared secret and its digest share. Member and group indices stay
	// below MaxShareCount so they never collide.
	SecretIndex = 255
	DigestIndex = 254

	DigestLengthBytes = 4
	MaxShareCount     = 16
)

// RawShare is one point of the sharing polynomial.
type RawShare struct {
	X    byte
	Data []byte
}

func createDigest(randomData, sharedSecret []byte) []byte {
	mac := hmac.New(sha256.New, randomData)
	mac.Write(sharedSecret)
	return mac.Sum(nil)[:DigestLengthBytes]
}

// SplitSecret splits secret into count shares of which any threshold
// recover it. For threshold above one a digest share is embedded so that
// RecoverSecret detects inconsistent share sets.
func SplitSecret(rng RandomSource, threshold, count int, secret []byte) ([]RawShare, error) {
	if threshold < 1 {
		return nil, errs.Newf(ErrInvalidParameter, "sharing threshold must be at least 1")
	}
	if threshold > count {
		return nil, errs.Newf(ErrInvalidParameter, "sharing threshold %d exceeds share count %d", threshold, count)
	}
	if count > MaxShareCount {
		return nil, errs.Newf(ErrInvalidParameter, "share count %d exceeds the maximum of %d", count, MaxShareCount)
	}
	if len(secret) < DigestLengthBytes {
		return nil, errs.Newf(ErrInvalidParameter, "secret must be at least %d bytes", DigestLengthBytes)
	}

	if threshold == 1 {
		shares := make([]RawShare, count)
		for i := range shares {
			shares[i] = RawShare{X: byte(i), Data: append([]byte(nil), secret...)}
		}
		return shares, nil
	}

	randomShareCount := threshold - 2
	shares := make([]RawShare, 0, count)
	for i := 0; i < randomShareCount; i++ {
		data, err := randomBytes(rng, len(secret))
		if err != nil {
			return nil, err
		}
		shares = append(shares, RawShare{X: byte(i), Data: data})
	}

	randomPart, err := randomBytes(rng, len(secret)-DigestLengthBytes)
	if err != nil {
		return nil, err
	}
	digest := createDigest(randomPart, secret)

	base := make([]RawShare, 0, threshold)
	base = append(base, shares...)
	base = append(base,
		RawShare{X: DigestIndex, Data: append(digest, randomPart...)},
		RawShare{X: SecretIndex, Data: secret},
	)

	for i := randomShareCount; i < count; i++ {
		data, err := interpolate(base, byte(i))
		if err != nil {
			return nil, err
		}
		shares = append(shares, RawShare{X: byte(i), Data: data})
	}
	return shares, nil
}

// RecoverSecret combines threshold shares back into the secret and checks
// the embedded digest.
func RecoverSecret(threshold int, shares []RawShare) ([]byte, error) {
	if len(shares) == 0 {
		return nil, errs.Newf(ErrShareSet, "no shares provided")
	}
	if threshold == 1 {
		return append([]byte(nil), shares[0].Data...), nil
	}

	secret, err := interpolate(shares, SecretIndex)
	if err != nil {
		return nil, err
	}
	digestShare, err := interpolate(shares, DigestIndex)
	if err != nil {
		return nil, err
	}

	digest := digestShare[:DigestLengthBytes]
	randomPart := digestShare[DigestLengthBytes:]
	if !hmac.Equal(digest, createDigest(randomPart, secret)) {
		return nil, ErrDigestMismatch
	}
	return secret, nil
}
