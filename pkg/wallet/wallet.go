// Package wallet turns a seed or a recovered master secret into the BCH
// account keys shown to the user.
package wallet

import (
	"encoding/hex"
	"fmt"

	"github.com/seedcash/seedcash/pkg/address"
	"github.com/seedcash/seedcash/pkg/bip32"
	"github.com/seedcash/seedcash/pkg/types"
)

// Wallet holds the serialized m/44'/145'/0' account keys and the master
// key fingerprint.
type Wallet struct {
	XPriv       string `json:"xpriv,omitempty"`
	XPub        string `json:"xpub"`
	Fingerprint string `json:"fingerprint"`
}

// FromSeed derives the account keys for a BIP32 seed.
func FromSeed(seed []byte) (*Wallet, error) {
	master, account, err := bip32.DeriveAccount(seed)
	if err != nil {
		return nil, fmt.Errorf("failed to derive account: %w", err)
	}

	xpriv := account.String()
	xpub := account.Public().String()
	if xpriv == "" || xpub == "" {
		return nil, fmt.Errorf("failed to serialize account key")
	}

	fp := master.Fingerprint()
	return &Wallet{
		XPriv:       xpriv,
		XPub:        xpub,
		Fingerprint: hex.EncodeToString(fp[:]),
	}, nil
}

// FromMasterSecret derives the wallet of a SLIP-39 master secret, which
// serves directly as the BIP32 seed.
func FromMasterSecret(masterSecret []byte) (*Wallet, error) {
	return FromSeed(masterSecret)
}

// Address returns the receive address at index.
func (w *Wallet) Address(index uint32, format types.AddressFormat) (string, error) {
	return address.FromXpub(w.XPub, index, format)
}

// Addresses returns count receive addresses starting at start.
func (w *Wallet) Addresses(start, count uint32, format types.AddressFormat) ([]string, error) {
	return address.Range(w.XPub, start, count, format)
}
