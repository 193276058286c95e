package bip39

import (
	"crypto/sha512"

	"golang.org/x/crypto/pbkdf2"
)

const (
	seedIterations = 2048
	SeedLength     = 64
)

// NewSeed derives the 64-byte wallet seed from a mnemonic sentence and an
// optional passphrase.
func NewSeed(mnemonic, passphrase string) []byte {
	return pbkdf2.Key([]byte(mnemonic), []byte("mnemonic"+passphrase), seedIterations, SeedLength, sha512.New)
}
