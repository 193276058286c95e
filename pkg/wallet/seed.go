package wallet

import (
	"strings"

	"github.com/seedcash/seedcash/pkg/bip39"
)

// Seed is a checksum-validated BIP39 mnemonic with an optional passphrase.
type Seed struct {
	words      []string
	passphrase string
}

// NewSeed validates words and returns the seed. It fails with
// bip39.ErrInvalidSeed on an unknown word, bad length or checksum.
func NewSeed(words []string) (*Seed, error) {
	if err := bip39.Validate(words); err != nil {
		return nil, err
	}
	return &Seed{words: append([]string(nil), words...)}, nil
}

// ParseSeed splits a space separated mnemonic and validates it.
func ParseSeed(mnemonic string) (*Seed, error) {
	return NewSeed(strings.Fields(mnemonic))
}

func (s *Seed) SetPassphrase(passphrase string) {
	s.passphrase = passphrase
}

func (s *Seed) Passphrase() string {
	return s.passphrase
}

// Words returns a copy of the mnemonic words.
func (s *Seed) Words() []string {
	return append([]string(nil), s.words...)
}

func (s *Seed) Mnemonic() string {
	return strings.Join(s.words, " ")
}

// Bytes returns the 64-byte BIP39 seed for the current passphrase.
func (s *Seed) Bytes() []byte {
	return bip39.NewSeed(s.Mnemonic(), s.passphrase)
}

// Wallet derives the account wallet for the current passphrase.
func (s *Seed) Wallet() (*Wallet, error) {
	return FromSeed(s.Bytes())
}
