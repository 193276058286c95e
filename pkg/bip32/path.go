package bip32

import (
	"fmt"
	"strconv"
	"strings"

	errs "github.com/seedcash/seedcash/pkg/common/errors"
)

const (
	PurposeBIP44   = 44
	CoinTypeBCH    = 145
	DefaultAccount = 0

	ExternalChain = 0
	ChangeChain   = 1
)

// BCHAccountPath is m/44'/145'/0'.
var BCHAccountPath = []uint32{
	PurposeBIP44 + HardenedKeyStart,
	CoinTypeBCH + HardenedKeyStart,
	DefaultAccount + HardenedKeyStart,
}

// ParsePath parses a path such as "m/44'/145'/0'". Both ' and h mark a
// hardened step.
func ParsePath(path string) ([]uint32, error) {
	parts := strings.Split(strings.TrimSpace(path), "/")
	if len(parts) == 0 || parts[0] != "m" {
		return nil, errs.Newf(errs.ErrInvalidParameter, "derivation path %q must start with m", path)
	}

	out := make([]uint32, 0, len(parts)-1)
	for _, p := range parts[1:] {
		hardened := strings.HasSuffix(p, "'") || strings.HasSuffix(p, "h") || strings.HasSuffix(p, "H")
		if hardened {
			p = p[:len(p)-1]
		}
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil || uint32(n) >= HardenedKeyStart {
			return nil, errs.Newf(errs.ErrInvalidParameter, "invalid derivation path element %q", p)
		}
		idx := uint32(n)
		if hardened {
			idx += HardenedKeyStart
		}
		out = append(out, idx)
	}
	return out, nil
}

// FormatPath renders path in m/44'/145'/0' notation.
func FormatPath(path []uint32) string {
	var sb strings.Builder
	sb.WriteString("m")
	for _, idx := range path {
		if idx >= HardenedKeyStart {
			fmt.Fprintf(&sb, "/%d'", idx-HardenedKeyStart)
		} else {
			fmt.Fprintf(&sb, "/%d", idx)
		}
	}
	return sb.String()
}

// DerivePath derives the descendant of k along path.
func (k *ExtendedKey) DerivePath(path []uint32) (*ExtendedKey, error) {
	key := k
	for _, idx := range path {
		child, err := key.Child(idx)
		if err != nil {
			return nil, fmt.Errorf("failed to derive %s: %w", FormatPath(path), err)
		}
		key = child
	}
	return key, nil
}

// DeriveAccount returns the master key and the m/44'/145'/0' account key
// for seed.
func DeriveAccount(seed []byte) (master, account *ExtendedKey, err error) {
	master, err = NewMaster(seed)
	if err != nil {
		return nil, nil, err
	}
	account, err = master.DerivePath(BCHAccountPath)
	if err != nil {
		return nil, nil, err
	}
	return master, account, nil
}
