package bip32

import (
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/seedcash/seedcash/pkg/common/errors"
	"github.com/seedcash/seedcash/pkg/slip39"
)

const abandonAboutSeed = "5eb00bbddcf069084889a8ab9155568165f5c453ccb85e70811aaed6f6da5fc19a5ac40b389cd370d086206dec8aa6c43daea6690f20ad3d8d48b2d2ce9e38e4"

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestVector1(t *testing.T) {
	master, err := NewMaster(mustHex(t, "000102030405060708090a0b0c0d0e0f"))
	require.NoError(t, err)
	assert.Equal(t, "xprv9s21ZrQH143K3QTDL4LXw2F7HEK3wJUD2nW2nRk4stbPy6cq3jPPqjiChkVvvNKmPGJxWUtg6LnF5kejMRNNU3TGtRBeJgk33yuGBxrMPHi", master.String())
	assert.Equal(t, "xpub661MyMwAqRbcFtXgS5sYJABqqG9YLmC4Q1Rdap9gSE8NqtwybGhePY2gZ29ESFjqJoCu1Rupje8YtGqsefD265TMg7usUDFdp6W1EGMcet8", master.Public().String())

	child, err := master.ChildHardened(0)
	require.NoError(t, err)
	assert.Equal(t, "xprv9uHRZZhk6KAJC1avXpDAp4MDc3sQKNxDiPvvkX8Br5ngLNv1TxvUxt4cV1rGL5hj6KCesnDYUhd7oWgT11eZG7XnxHrnYeSvkzY7d2bhkJ7", child.String())
	assert.Equal(t, "xpub68Gmy5EdvgibQVfPdqkBBCHxA5htiqg55crXYuXoQRKfDBFA1WEjWgP6LHhwBZeNK1VTsfTFUHCdrfp1bgwQ9xv5ski8PX9rL2dZXvgGDnw", child.Public().String())

	fromPublic, err := child.Public().Child(1)
	require.NoError(t, err)
	assert.Equal(t, "xpub6ASuArnXKPbfEwhqN6e3mwBcDTgzisQN1wXN9BJcM47sSikHjJf3UFHKkNAWbWMiGj7Wf5uMash7SyYq527Hqck2AxYysAA7xmALppuCkwQ", fromPublic.String())

	fromPrivate, err := child.Child(1)
	require.NoError(t, err)
	assert.Equal(t, fromPublic.String(), fromPrivate.Public().String())
}

func TestDeriveAccount(t *testing.T) {
	master, account, err := DeriveAccount(mustHex(t, abandonAboutSeed))
	require.NoError(t, err)

	assert.Equal(t, [4]byte{0x73, 0xc5, 0xda, 0x0a}, master.Fingerprint())
	assert.Equal(t, byte(3), account.Depth)
	assert.Equal(t, HardenedKeyStart, account.ChildIndex)
	assert.Equal(t, [4]byte{0x2b, 0x72, 0xf5, 0xb7}, account.ParentFingerprint)
	assert.Equal(t, "xprv9xywTsqYa9uDLdJs8QpXf7xwRWgPw4rq5FtkcShsDoZTqfNQjVQ3dDCdyedXX3FqB18U8e8PfVMeFqkhzPGseKVMDjGe5rPdiUXMxy7BQNJ", account.String())
	assert.Equal(t, "xpub6ByHsPNSQXTWZ7PLESMY2FufyYWtLXagSUpMQq7Un96SiThZH2iJB1X7pwviH1WtKVeDP6K8d6xxFzzoaFzF3s8BKCZx8oEDdDkNnp4owAZ", account.Public().String())
}

func TestMatchesReferenceImplementation(t *testing.T) {
	rng := slip39.NewDeterministicRandom([]byte("bip32-oracle"))
	paths := [][]uint32{
		BCHAccountPath,
		append(append([]uint32(nil), BCHAccountPath...), ExternalChain, 7),
		{0, 1 + HardenedKeyStart, 2, 2147483647},
	}
	for _, size := range []int{16, 32, 64} {
		for i, path := range paths {
			t.Run(fmt.Sprintf("%d byte seed path %d", size, i), func(t *testing.T) {
				seed := make([]byte, size)
				_, err := rng.Read(seed)
				require.NoError(t, err)

				master, err := NewMaster(seed)
				require.NoError(t, err)
				key, err := master.DerivePath(path)
				require.NoError(t, err)

				ref, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
				require.NoError(t, err)
				for _, idx := range path {
					ref, err = ref.Derive(idx)
					require.NoError(t, err)
				}
				refPub, err := ref.Neuter()
				require.NoError(t, err)

				assert.Equal(t, ref.String(), key.String())
				assert.Equal(t, refPub.String(), key.Public().String())
			})
		}
	}
}

func TestPublicDerivationErrors(t *testing.T) {
	_, account, err := DeriveAccount(mustHex(t, abandonAboutSeed))
	require.NoError(t, err)
	pub := account.Public()

	_, err = pub.ChildHardened(0)
	assert.ErrorIs(t, err, ErrDeriveHardFromPublic)

	_, _, err = DerivePublicChild(pub.Key, pub.ChainCode, HardenedKeyStart)
	assert.ErrorIs(t, err, ErrDeriveHardFromPublic)

	_, _, err = DerivePublicChild(make([]byte, 33), pub.ChainCode, 0)
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)

	_, err = pub.PrivateKey()
	assert.ErrorIs(t, err, ErrNotPrivate)
}

func TestNewMasterSeedLength(t *testing.T) {
	_, err := NewMaster(make([]byte, 15))
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)
	_, err = NewMaster(make([]byte, 65))
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)
}

func TestParseExtendedKey(t *testing.T) {
	_, account, err := DeriveAccount(mustHex(t, abandonAboutSeed))
	require.NoError(t, err)

	parsed, err := ParseExtendedKey(account.String())
	require.NoError(t, err)
	assert.True(t, parsed.IsPrivate())
	assert.Equal(t, account, parsed)

	parsedPub, err := ParseExtendedKey(account.Public().String())
	require.NoError(t, err)
	assert.False(t, parsedPub.IsPrivate())
	assert.Equal(t, account.PublicKey(), parsedPub.PublicKey())
	assert.Equal(t, account.Fingerprint(), parsedPub.Fingerprint())
}

func TestParsePath(t *testing.T) {
	path, err := ParsePath("m/44'/145'/0'")
	require.NoError(t, err)
	assert.Equal(t, BCHAccountPath, path)
	assert.Equal(t, "m/44'/145'/0'", FormatPath(path))

	path, err = ParsePath("m/44h/145H/0h/1/5")
	require.NoError(t, err)
	assert.Equal(t, []uint32{44 + HardenedKeyStart, 145 + HardenedKeyStart, HardenedKeyStart, 1, 5}, path)

	path, err = ParsePath("m")
	require.NoError(t, err)
	assert.Empty(t, path)

	for _, bad := range []string{"", "44'/0", "m/x", "m/2147483648", "m//1", "m/-1"} {
		_, err := ParsePath(bad)
		assert.ErrorIs(t, err, errs.ErrInvalidParameter, bad)
	}
}
