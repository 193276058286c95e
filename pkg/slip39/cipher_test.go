package slip39

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCipherInvolution(t *testing.T) {
	rng := NewDeterministicRandom([]byte("cipher"))
	tests := []struct {
		name       string
		size       int
		passphrase string
		identifier uint16
		exponent   int
		extendable bool
	}{
		{"empty passphrase", 16, "", 0, 0, false},
		{"with passphrase", 16, "TREZOR", 7945, 0, false},
		{"extendable", 32, "correct horse", 42, 1, true},
		{"max identifier", 32, "~!@#", maxIdentifier, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			secret := testSecret(t, rng, tt.size)
			ct, err := Encrypt(secret, []byte(tt.passphrase), tt.exponent, tt.identifier, tt.extendable)
			require.NoError(t, err)
			assert.Len(t, ct, tt.size)
			assert.NotEqual(t, secret, ct)

			pt, err := Decrypt(ct, []byte(tt.passphrase), tt.exponent, tt.identifier, tt.extendable)
			require.NoError(t, err)
			assert.Equal(t, secret, pt)

			wrong, err := Decrypt(ct, []byte(tt.passphrase+"x"), tt.exponent, tt.identifier, tt.extendable)
			require.NoError(t, err)
			assert.NotEqual(t, secret, wrong)
		})
	}
}

func TestCipherSaltDependsOnExtendable(t *testing.T) {
	secret := make([]byte, 16)
	a, err := Encrypt(secret, nil, 0, 1, false)
	require.NoError(t, err)
	b, err := Encrypt(secret, nil, 0, 2, false)
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "identifier is part of the salt")

	c, err := Encrypt(secret, nil, 0, 1, true)
	require.NoError(t, err)
	d, err := Encrypt(secret, nil, 0, 2, true)
	require.NoError(t, err)
	assert.Equal(t, c, d, "extendable schemes use an empty salt")
}

func TestCipherRejectsOddLength(t *testing.T) {
	_, err := Encrypt(make([]byte, 17), nil, 0, 0, false)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = Decrypt(make([]byte, 17), nil, 0, 0, false)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}
