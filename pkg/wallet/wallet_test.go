package wallet

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seedcash/seedcash/pkg/bip39"
	"github.com/seedcash/seedcash/pkg/types"
)

const (
	abandonAbout = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	accountXprv  = "xprv9xywTsqYa9uDLdJs8QpXf7xwRWgPw4rq5FtkcShsDoZTqfNQjVQ3dDCdyedXX3FqB18U8e8PfVMeFqkhzPGseKVMDjGe5rPdiUXMxy7BQNJ"
	accountXpub  = "xpub6ByHsPNSQXTWZ7PLESMY2FufyYWtLXagSUpMQq7Un96SiThZH2iJB1X7pwviH1WtKVeDP6K8d6xxFzzoaFzF3s8BKCZx8oEDdDkNnp4owAZ"
)

func TestSeedWallet(t *testing.T) {
	seed, err := ParseSeed(abandonAbout)
	require.NoError(t, err)
	assert.Equal(t, abandonAbout, seed.Mnemonic())
	assert.Len(t, seed.Words(), 12)

	w, err := seed.Wallet()
	require.NoError(t, err)
	assert.Equal(t, accountXprv, w.XPriv)
	assert.Equal(t, accountXpub, w.XPub)
	assert.Equal(t, "73c5da0a", w.Fingerprint)
}

func TestSeedPassphrase(t *testing.T) {
	seed, err := ParseSeed(abandonAbout)
	require.NoError(t, err)

	plain, err := seed.Wallet()
	require.NoError(t, err)

	seed.SetPassphrase("TREZOR")
	assert.Equal(t, "TREZOR", seed.Passphrase())
	assert.True(t, strings.HasPrefix(hex.EncodeToString(seed.Bytes()), "c55257c360c0"))

	protected, err := seed.Wallet()
	require.NoError(t, err)
	assert.NotEqual(t, plain.XPub, protected.XPub)
	assert.NotEqual(t, plain.Fingerprint, protected.Fingerprint)
}

func TestSeedWordsAreCopied(t *testing.T) {
	words := strings.Fields(abandonAbout)
	seed, err := NewSeed(words)
	require.NoError(t, err)

	words[0] = "zoo"
	got := seed.Words()
	assert.Equal(t, "abandon", got[0])
	got[1] = "zoo"
	assert.Equal(t, abandonAbout, seed.Mnemonic())
}

func TestNewSeedInvalid(t *testing.T) {
	tests := []struct {
		name     string
		mnemonic string
	}{
		{"bad checksum", strings.Repeat("abandon ", 12)},
		{"unknown word", strings.Replace(abandonAbout, "about", "aboot", 1)},
		{"bad length", strings.Repeat("abandon ", 11)},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSeed(tt.mnemonic)
			assert.ErrorIs(t, err, bip39.ErrInvalidSeed)
		})
	}
}

func TestWalletAddresses(t *testing.T) {
	seed, err := ParseSeed(abandonAbout)
	require.NoError(t, err)
	w, err := seed.Wallet()
	require.NoError(t, err)

	legacy, err := w.Address(0, types.AddressFormatLegacy)
	require.NoError(t, err)
	assert.Equal(t, "1mW6fDEMjKrDHvLvoEsaeLxSCzZBf3Bfg", legacy)

	cash, err := w.Addresses(1, 2, types.AddressFormatCashAddr)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"bitcoincash:qp8sfdhgjlq68hlzka9lcsxtcnvuvnd0xqxugfzzc5",
		"bitcoincash:qqkuy34ntrye9a2h4xpdstcu4aq5wfrwscjtaphenr",
	}, cash)
}

func TestFromMasterSecretMatchesReference(t *testing.T) {
	ms, err := hex.DecodeString("bb54aac4b89dc868ba37d9cc21b2cece")
	require.NoError(t, err)

	w, err := FromMasterSecret(ms)
	require.NoError(t, err)

	master, err := hdkeychain.NewMaster(ms, &chaincfg.MainNetParams)
	require.NoError(t, err)
	key := master
	for _, idx := range []uint32{44, 145, 0} {
		key, err = key.Derive(hdkeychain.HardenedKeyStart + idx)
		require.NoError(t, err)
	}
	pub, err := key.Neuter()
	require.NoError(t, err)

	assert.Equal(t, key.String(), w.XPriv)
	assert.Equal(t, pub.String(), w.XPub)
	assert.Len(t, w.Fingerprint, 8)
}

func TestFromSeedInvalidLength(t *testing.T) {
	_, err := FromSeed(make([]byte, 8))
	assert.Error(t, err)
}
