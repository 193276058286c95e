package address

import (
	"fmt"

	"github.com/seedcash/seedcash/pkg/bip32"
	"github.com/seedcash/seedcash/pkg/encoding"
	"github.com/seedcash/seedcash/pkg/types"
)

// FromPubKey renders pub in the requested format.
func FromPubKey(pub []byte, format types.AddressFormat) (string, error) {
	switch format {
	case types.AddressFormatLegacy:
		return LegacyFromPubKey(pub), nil
	case types.AddressFormatCashAddr:
		return CashAddrFromPubKey(pub), nil
	}
	return "", fmt.Errorf("unsupported address format %q", format)
}

// FromXpub derives the receive address at xpub/0/index.
func FromXpub(xpub string, index uint32, format types.AddressFormat) (string, error) {
	k, err := encoding.XpubDecode(xpub)
	if err != nil {
		return "", fmt.Errorf("failed to decode xpub: %w", err)
	}
	return FromAccountKey(k.Key[:], k.ChainCode, bip32.ExternalChain, index, format)
}

// FromAccountKey derives the address at chain/index below an account
// public key and chain code.
func FromAccountKey(pub []byte, chainCode [32]byte, chain, index uint32, format types.AddressFormat) (string, error) {
	chainPub, chainCC, err := bip32.DerivePublicChild(pub, chainCode, chain)
	if err != nil {
		return "", fmt.Errorf("failed to derive chain %d: %w", chain, err)
	}
	childPub, _, err := bip32.DerivePublicChild(chainPub, chainCC, index)
	if err != nil {
		return "", fmt.Errorf("failed to derive address %d: %w", index, err)
	}
	return FromPubKey(childPub, format)
}

// Range derives count consecutive receive addresses starting at start.
func Range(xpub string, start, count uint32, format types.AddressFormat) ([]string, error) {
	k, err := encoding.XpubDecode(xpub)
	if err != nil {
		return nil, fmt.Errorf("failed to decode xpub: %w", err)
	}
	chainPub, chainCC, err := bip32.DerivePublicChild(k.Key[:], k.ChainCode, bip32.ExternalChain)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, count)
	for i := start; i < start+count; i++ {
		pub, _, err := bip32.DerivePublicChild(chainPub, chainCC, i)
		if err != nil {
			return nil, fmt.Errorf("failed to derive address %d: %w", i, err)
		}
		addr, err := FromPubKey(pub, format)
		if err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, nil
}
