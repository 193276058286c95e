package slip39

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSecret(t *testing.T, rng RandomSource, n int) []byte {
	t.Helper()
	secret, err := randomBytes(rng, n)
	require.NoError(t, err)
	return secret
}

func TestFieldTables(t *testing.T) {
	// every non-zero element appears exactly once in the exp table
	seen := make(map[byte]bool)
	for _, v := range expTable {
		assert.NotZero(t, v)
		assert.False(t, seen[v], "duplicate element %d", v)
		seen[v] = true
	}
	assert.Len(t, seen, 255)

	for i := 1; i < 256; i++ {
		assert.Equal(t, byte(i), expTable[logTable[i]])
	}
}

func TestInterpolate(t *testing.T) {
	t.Run("returns the share value at its own index", func(t *testing.T) {
		shares := []RawShare{{X: 1, Data: []byte{1, 2}}, {X: 2, Data: []byte{3, 4}}}
		v, err := interpolate(shares, 2)
		require.NoError(t, err)
		assert.Equal(t, []byte{3, 4}, v)

		v[0] = 9
		assert.Equal(t, byte(3), shares[1].Data[0], "result must not alias the share")
	})

	t.Run("constant polynomial", func(t *testing.T) {
		shares := []RawShare{{X: 0, Data: []byte{7}}, {X: 5, Data: []byte{7}}}
		v, err := interpolate(shares, 200)
		require.NoError(t, err)
		assert.Equal(t, []byte{7}, v)
	})

	t.Run("duplicate indices", func(t *testing.T) {
		_, err := interpolate([]RawShare{{X: 1, Data: []byte{1}}, {X: 1, Data: []byte{2}}}, 0)
		assert.ErrorIs(t, err, ErrShareSet)
	})

	t.Run("mismatched lengths", func(t *testing.T) {
		_, err := interpolate([]RawShare{{X: 1, Data: []byte{1}}, {X: 2, Data: []byte{2, 3}}}, 0)
		assert.ErrorIs(t, err, ErrShareSet)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := interpolate(nil, 0)
		assert.ErrorIs(t, err, ErrShareSet)
	})
}

func TestSplitRecoverRoundTrip(t *testing.T) {
	rng := NewDeterministicRandom([]byte("split-recover"))
	for _, size := range []int{16, 32} {
		for count := 1; count <= MaxShareCount; count++ {
			for threshold := 1; threshold <= count; threshold++ {
				name := fmt.Sprintf("%d bytes %d of %d", size, threshold, count)
				t.Run(name, func(t *testing.T) {
					secret := testSecret(t, rng, size)
					shares, err := SplitSecret(rng, threshold, count, secret)
					require.NoError(t, err)
					require.Len(t, shares, count)

					got, err := RecoverSecret(threshold, shares[:threshold])
					require.NoError(t, err)
					assert.Equal(t, secret, got)

					got, err = RecoverSecret(threshold, shares[count-threshold:])
					require.NoError(t, err)
					assert.Equal(t, secret, got)
				})
			}
		}
	}
}

func TestSplitSecretThresholdOne(t *testing.T) {
	secret := bytes.Repeat([]byte{0xab}, 16)
	shares, err := SplitSecret(nil, 1, 3, secret)
	require.NoError(t, err)
	for i, s := range shares {
		assert.Equal(t, byte(i), s.X)
		assert.Equal(t, secret, s.Data)
	}
}

func TestSplitSecretInvalidParameters(t *testing.T) {
	secret := make([]byte, 16)
	tests := []struct {
		name      string
		threshold int
		count     int
	}{
		{"zero threshold", 0, 3},
		{"threshold above count", 4, 3},
		{"too many shares", 2, MaxShareCount + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SplitSecret(nil, tt.threshold, tt.count, secret)
			assert.ErrorIs(t, err, ErrInvalidParameter)
		})
	}
}

func TestRecoverSecretBelowThreshold(t *testing.T) {
	rng := NewDeterministicRandom([]byte("below-threshold"))
	for trial := 0; trial < 50; trial++ {
		secret := testSecret(t, rng, 16)
		shares, err := SplitSecret(rng, 3, 5, secret)
		require.NoError(t, err)

		got, err := RecoverSecret(3, shares[:2])
		if err == nil {
			assert.NotEqual(t, secret, got)
		} else {
			assert.ErrorIs(t, err, ErrDigestMismatch)
		}
	}
}

func TestRecoverSecretDetectsTampering(t *testing.T) {
	rng := NewDeterministicRandom([]byte("tamper"))
	secret := testSecret(t, rng, 32)
	shares, err := SplitSecret(rng, 3, 5, secret)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		for pos := 0; pos < len(secret); pos += 7 {
			tampered := make([]RawShare, 3)
			for j := range tampered {
				tampered[j] = RawShare{X: shares[j].X, Data: append([]byte(nil), shares[j].Data...)}
			}
			tampered[i].Data[pos] ^= 0x01

			_, err := RecoverSecret(3, tampered)
			assert.ErrorIs(t, err, ErrDigestMismatch, "share %d byte %d", i, pos)
		}
	}
}

func TestDeterministicRandom(t *testing.T) {
	a := testSecret(t, NewDeterministicRandom([]byte("seed")), 100)
	b := testSecret(t, NewDeterministicRandom([]byte("seed")), 100)
	c := testSecret(t, NewDeterministicRandom([]byte("other")), 100)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
