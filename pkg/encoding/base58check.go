package encoding

import (
	"bytes"
	"errors"

	"github.com/btcsuite/btcd/btcutil/base58"

	errs "github.com/seedcash/seedcash/pkg/common/errors"
	"github.com/seedcash/seedcash/pkg/utils"
)

const checksumLength = 4

var (
	ErrInvalidBase58 = errors.New("invalid base58 string")
	ErrChecksum      = errs.ErrChecksum
)

// Base58CheckEncode appends the 4-byte double SHA256 checksum to payload
// and base58 encodes the result.
func Base58CheckEncode(payload []byte) string {
	buf := make([]byte, 0, len(payload)+checksumLength)
	buf = append(buf, payload...)
	buf = append(buf, utils.DoubleSha256(payload)[:checksumLength]...)
	return base58.Encode(buf)
}

// Base58CheckDecode decodes s and verifies its checksum, returning the payload.
func Base58CheckDecode(s string) ([]byte, error) {
	raw := base58.Decode(s)
	if len(raw) < checksumLength {
		return nil, ErrInvalidBase58
	}
	payload, sum := raw[:len(raw)-checksumLength], raw[len(raw)-checksumLength:]
	if !bytes.Equal(sum, utils.DoubleSha256(payload)[:checksumLength]) {
		return nil, errs.Newf(ErrChecksum, "base58 checksum mismatch")
	}
	return payload, nil
}
