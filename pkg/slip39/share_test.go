package slip39

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	singleShareMnemonic = "duckling enlarge academic academic agency result length solution fridge kidney coal piece deal husband erode duke ajar critical decision keyboard"
	shadowShareA        = "shadow pistol academic always adequate wildlife fancy gross oasis cylinder mustang wrist rescue view short owner flip making coding armed"
	shadowShareB        = "shadow pistol academic acid actress prayer class unknown daughter sweater depict flip twice unkind craft early superior advocate guest smoking"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestWordlist(t *testing.T) {
	words := Wordlist()
	require.Len(t, words, 1024)
	assert.Equal(t, "academic", Word(0))
	assert.Equal(t, "zero", Word(1023))

	i, ok := WordIndex("duckling")
	require.True(t, ok)
	assert.Equal(t, "duckling", Word(i))

	_, ok = WordIndex("bitcoin")
	assert.False(t, ok)

	words[0] = "mutated"
	assert.Equal(t, "academic", Word(0))
}

func TestParseShare(t *testing.T) {
	share, err := ParseShare(singleShareMnemonic)
	require.NoError(t, err)

	assert.Equal(t, uint16(7945), share.Identifier)
	assert.False(t, share.Extendable)
	assert.Equal(t, 0, share.IterationExponent)
	assert.Equal(t, 0, share.GroupIndex)
	assert.Equal(t, 1, share.GroupThreshold)
	assert.Equal(t, 1, share.GroupCount)
	assert.Equal(t, 0, share.MemberIndex)
	assert.Equal(t, 1, share.MemberThreshold)
	assert.Equal(t, mustHex(t, "11bc609d21747c49ba78c0701293e417"), share.Value)

	m, err := share.Mnemonic()
	require.NoError(t, err)
	assert.Equal(t, singleShareMnemonic, m)
}

func TestParseShareCaseAndWhitespace(t *testing.T) {
	input := "  " + strings.ToUpper(shadowShareA[:20]) + shadowShareA[20:] + "\n"
	share, err := ParseShare(input)
	require.NoError(t, err)
	assert.Equal(t, uint16(25653), share.Identifier)
	assert.Equal(t, 2, share.IterationExponent)
	assert.Equal(t, 2, share.MemberIndex)
	assert.Equal(t, 2, share.MemberThreshold)
}

func TestParseShareErrors(t *testing.T) {
	words := strings.Fields(singleShareMnemonic)

	badChecksum := append([]string(nil), words...)
	badChecksum[len(badChecksum)-1] = "academic"

	swapped := append([]string(nil), words...)
	swapped[5], swapped[6] = swapped[6], swapped[5]

	unknown := append([]string(nil), words...)
	unknown[3] = "bitcoin"

	tests := []struct {
		name  string
		words []string
		kind  error
	}{
		{"unknown word", unknown, ErrMnemonic},
		{"too short", words[:19], ErrMnemonic},
		{"padding too long", append(append([]string(nil), words...), "academic"), ErrMnemonic},
		{"bad checksum", badChecksum, ErrChecksum},
		{"swapped words", swapped, ErrChecksum},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ShareFromWords(tt.words)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestShareRoundTrip(t *testing.T) {
	rng := NewDeterministicRandom([]byte("share-codec"))
	tests := []struct {
		name  string
		share Share
	}{
		{"128 bit", Share{Identifier: 1, IterationExponent: 0, GroupThreshold: 1, GroupCount: 1, MemberThreshold: 1}},
		{"256 bit extendable", Share{Identifier: maxIdentifier, Extendable: true, IterationExponent: 15,
			GroupIndex: 15, GroupThreshold: 16, GroupCount: 16, MemberIndex: 15, MemberThreshold: 16}},
		{"160 bit", Share{Identifier: 12345, IterationExponent: 3, GroupIndex: 2, GroupThreshold: 2, GroupCount: 4,
			MemberIndex: 4, MemberThreshold: 3}},
	}
	sizes := []int{16, 32, 20}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			share := tt.share
			share.Value = testSecret(t, rng, sizes[i])

			words, err := share.Words()
			require.NoError(t, err)
			assert.Len(t, words, MetadataLengthWords+(sizes[i]*8+RadixBits-1)/RadixBits)

			decoded, err := ShareFromWords(words)
			require.NoError(t, err)
			assert.True(t, share.Equal(decoded))
			assert.Equal(t, share.Key(), decoded.Key())
		})
	}
}

func TestShareWordsInvalid(t *testing.T) {
	base := Share{GroupThreshold: 1, GroupCount: 1, MemberThreshold: 1, Value: make([]byte, 16)}

	short := base
	short.Value = make([]byte, 8)
	_, err := short.Words()
	assert.ErrorIs(t, err, ErrInvalidParameter)

	badGroup := base
	badGroup.GroupThreshold = 2
	_, err = badGroup.Words()
	assert.ErrorIs(t, err, ErrInvalidParameter)

	badExp := base
	badExp.IterationExponent = 16
	_, err = badExp.Mnemonic()
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestShareExtendableChangesChecksum(t *testing.T) {
	share := Share{Identifier: 99, GroupThreshold: 1, GroupCount: 1, MemberThreshold: 1, Value: make([]byte, 16)}
	plain, err := share.Indices()
	require.NoError(t, err)

	share.Extendable = true
	ext, err := share.Indices()
	require.NoError(t, err)

	assert.NotEqual(t, plain[len(plain)-ChecksumLengthWords:], ext[len(ext)-ChecksumLengthWords:])
	assert.True(t, rs1024VerifyChecksum(ext, true))
	assert.False(t, rs1024VerifyChecksum(ext, false))
}

func TestShareInfo(t *testing.T) {
	share, err := ParseShare(shadowShareA)
	require.NoError(t, err)

	info := share.Info()
	assert.Equal(t, 3, info.MemberIndex)
	assert.Equal(t, 1, info.GroupIndex)
	assert.Equal(t,
		"Share ID: 6435\nExtendable: false\nPBKDF2 Iterations: 40000\nGroup: 1 of 1 (threshold 1)\nMember: 3 (threshold 2)",
		info.String())
}
