package bip39

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	gobip39 "github.com/tyler-smith/go-bip39"
)

func TestNewSeed(t *testing.T) {
	mnemonic := strings.Join(abandonAbout(), " ")
	tests := []struct {
		passphrase string
		want       string
	}{
		{"", "5eb00bbddcf069084889a8ab9155568165f5c453ccb85e70811aaed6f6da5fc19a5ac40b389cd370d086206dec8aa6c43daea6690f20ad3d8d48b2d2ce9e38e4"},
		{"TREZOR", "c55257c360c07c72029aebc1b53c05ed0362ada38ead3e3e9efa3708e53495531f09a6987599d18264c1e1c92f2cf141630c7a3c4ab7c81b2f001698e7463b04"},
	}
	for _, tt := range tests {
		seed := NewSeed(mnemonic, tt.passphrase)
		assert.Len(t, seed, SeedLength)
		assert.Equal(t, tt.want, hex.EncodeToString(seed))
		assert.Equal(t, gobip39.NewSeed(mnemonic, tt.passphrase), seed)
	}
}
