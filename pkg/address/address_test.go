package address

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/seedcash/seedcash/pkg/common/errors"
	"github.com/seedcash/seedcash/pkg/types"
)

const abandonAboutXpub = "xpub6ByHsPNSQXTWZ7PLESMY2FufyYWtLXagSUpMQq7Un96SiThZH2iJB1X7pwviH1WtKVeDP6K8d6xxFzzoaFzF3s8BKCZx8oEDdDkNnp4owAZ"

func generatorPubKey(t *testing.T) []byte {
	t.Helper()
	pub, err := hex.DecodeString("0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798")
	require.NoError(t, err)
	return pub
}

func TestFromPubKey(t *testing.T) {
	pub := generatorPubKey(t)
	assert.Equal(t, "1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMH", LegacyFromPubKey(pub))
	assert.Equal(t, "bitcoincash:qp63uahgrxged4z5jswyt5dn5v3lzsem6cy4spdc2h", CashAddrFromPubKey(pub))

	_, err := FromPubKey(pub, types.AddressFormat("p2sh"))
	assert.Error(t, err)
}

func TestEncodeCashAddrKnownHash(t *testing.T) {
	hash, err := hex.DecodeString("76a04053bda0a88bda5177b86a15c3b29f559873")
	require.NoError(t, err)
	assert.Equal(t, "bitcoincash:qpm2qsznhks23z7629mms6s4cwef74vcwvy22gdx6a", EncodeCashAddr(CashAddrPrefix, 0, hash))
}

func TestFromXpub(t *testing.T) {
	tests := []struct {
		index    uint32
		legacy   string
		cashaddr string
	}{
		{0, "1mW6fDEMjKrDHvLvoEsaeLxSCzZBf3Bfg", "bitcoincash:qqyx49mu0kkn9ftfj6hje6g2wfer34yfnq5tahq3q6"},
		{1, "18Cp2ivkLHyJwHMm9NzDRBh6Gi7m4MC2we", "bitcoincash:qp8sfdhgjlq68hlzka9lcsxtcnvuvnd0xqxugfzzc5"},
		{2, "15Ax9BJRJ4TABF85UsPpz9QvuBpiJhCfsw", "bitcoincash:qqkuy34ntrye9a2h4xpdstcu4aq5wfrwscjtaphenr"},
	}
	for _, tt := range tests {
		legacy, err := FromXpub(abandonAboutXpub, tt.index, types.AddressFormatLegacy)
		require.NoError(t, err)
		assert.Equal(t, tt.legacy, legacy)

		cash, err := FromXpub(abandonAboutXpub, tt.index, types.AddressFormatCashAddr)
		require.NoError(t, err)
		assert.Equal(t, tt.cashaddr, cash)
	}

	addrs, err := Range(abandonAboutXpub, 0, 3, types.AddressFormatCashAddr)
	require.NoError(t, err)
	assert.Equal(t, []string{tests[0].cashaddr, tests[1].cashaddr, tests[2].cashaddr}, addrs)

	_, err = FromXpub("xpub-not-base58", 0, types.AddressFormatLegacy)
	assert.Error(t, err)
}

func TestDecodeCashAddr(t *testing.T) {
	const addr = "bitcoincash:qqyx49mu0kkn9ftfj6hje6g2wfer34yfnq5tahq3q6"

	prefix, version, hash, err := DecodeCashAddr(addr)
	require.NoError(t, err)
	assert.Equal(t, CashAddrPrefix, prefix)
	assert.Equal(t, byte(0), version)
	assert.Len(t, hash, 20)
	assert.Equal(t, addr, EncodeCashAddr(prefix, version, hash))

	_, _, upperHash, err := DecodeCashAddr(strings.ToUpper(addr))
	require.NoError(t, err)
	assert.Equal(t, hash, upperHash)

	_, _, bareHash, err := DecodeCashAddr(strings.TrimPrefix(addr, "bitcoincash:"))
	require.NoError(t, err)
	assert.Equal(t, hash, bareHash)
}

func TestDecodeCashAddrErrors(t *testing.T) {
	_, _, _, err := DecodeCashAddr("bitcoincash:qqyx49mu0kkn9ftfj6hje6g2wfer34yfnq5tahq3q7")
	assert.ErrorIs(t, err, errs.ErrChecksum)

	_, _, _, err = DecodeCashAddr("bchtest:qqyx49mu0kkn9ftfj6hje6g2wfer34yfnq5tahq3q6")
	assert.ErrorIs(t, err, errs.ErrChecksum)

	_, _, _, err = DecodeCashAddr("bitcoincash:Qqyx49mu0kkn9ftfj6hje6g2wfer34yfnq5tahq3q6")
	assert.ErrorIs(t, err, ErrInvalidCashAddr)

	_, _, _, err = DecodeCashAddr("bitcoincash:qqyx49mu0kkn9ftfj6hje6g2wfer34yfnq5tahq3qb")
	assert.ErrorIs(t, err, ErrInvalidCashAddr)

	_, _, _, err = DecodeCashAddr("bitcoincash:qqq")
	assert.ErrorIs(t, err, ErrInvalidCashAddr)
}
