// Package address renders Bitcoin Cash P2PKH addresses in the legacy
// Base58Check and CashAddr formats.
package address

import (
	"github.com/seedcash/seedcash/pkg/encoding"
	"github.com/seedcash/seedcash/pkg/utils"
)

// LegacyP2PKHVersion is the mainnet pay-to-pubkey-hash version byte.
const LegacyP2PKHVersion byte = 0x00

// LegacyFromPubKey returns the Base58Check P2PKH address of a compressed
// public key.
func LegacyFromPubKey(pub []byte) string {
	payload := append([]byte{LegacyP2PKHVersion}, utils.Hash160(pub)...)
	return encoding.Base58CheckEncode(payload)
}
