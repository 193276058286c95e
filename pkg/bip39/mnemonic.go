// Package bip39 encodes entropy as BIP39 mnemonics and derives wallet seeds
// from them.
package bip39

import (
	"crypto/sha256"
	"fmt"
	"io"
	"strings"

	"github.com/tyler-smith/go-bip39/wordlists"

	errs "github.com/seedcash/seedcash/pkg/common/errors"
)

const (
	bitsPerWord = 11
	wordMask    = 1<<bitsPerWord - 1
)

var ErrInvalidSeed = errs.ErrInvalidSeed

// wordIndex maps each English word to its 11-bit value.
var wordIndex = func() map[string]int {
	m := make(map[string]int, len(wordlists.English))
	for i, w := range wordlists.English {
		m[w] = i
	}
	return m
}()

// WordCounts lists the supported mnemonic lengths.
var WordCounts = []int{12, 15, 18, 21, 24}

// ChecksumBits returns the checksum length for a mnemonic of totalBits bits.
func ChecksumBits(totalBits int) (int, error) {
	switch totalBits {
	case 132:
		return 4, nil
	case 165:
		return 5, nil
	case 198:
		return 6, nil
	case 231:
		return 7, nil
	case 264:
		return 8, nil
	}
	return 0, errs.Newf(ErrInvalidSeed, "invalid mnemonic length of %d bits", totalBits)
}

// WordIndex returns the position of word in the English wordlist.
func WordIndex(word string) (int, bool) {
	i, ok := wordIndex[word]
	return i, ok
}

// Word returns the English word for the 11-bit value i.
func Word(i int) string {
	return wordlists.English[i&wordMask]
}

func checksum(entropy []byte, n int) uint32 {
	h := sha256.Sum256(entropy)
	return uint32(h[0]) >> (8 - n)
}

// EntropyFromWords checks the mnemonic checksum and returns the entropy.
func EntropyFromWords(words []string) ([]byte, error) {
	csBits, err := ChecksumBits(len(words) * bitsPerWord)
	if err != nil {
		return nil, err
	}

	entropy := make([]byte, 0, (len(words)*bitsPerWord-csBits)/8)
	var acc uint32
	nbits := 0
	for _, w := range words {
		idx, ok := wordIndex[w]
		if !ok {
			return nil, errs.Newf(ErrInvalidSeed, "word %q not in wordlist", w)
		}
		acc = acc<<bitsPerWord | uint32(idx)
		nbits += bitsPerWord
		for nbits >= 8 && len(entropy) < cap(entropy) {
			nbits -= 8
			entropy = append(entropy, byte(acc>>nbits))
			acc &= 1<<nbits - 1
		}
	}
	if len(entropy) != cap(entropy) || nbits != csBits {
		return nil, errs.Newf(ErrInvalidSeed, "invalid entropy length")
	}

	if acc != checksum(entropy, csBits) {
		return nil, errs.Newf(ErrInvalidSeed, "checksum validation failed")
	}
	return entropy, nil
}

// Validate reports whether words form a mnemonic with a valid checksum.
func Validate(words []string) error {
	_, err := EntropyFromWords(words)
	return err
}

// WordsFromEntropy returns the mnemonic for 16, 20, 24, 28 or 32 bytes of
// entropy.
func WordsFromEntropy(entropy []byte) ([]string, error) {
	entBits := len(entropy) * 8
	csBits, err := ChecksumBits(entBits + entBits/32)
	if err != nil || entBits%32 != 0 {
		return nil, errs.Newf(ErrInvalidSeed, "invalid entropy length of %d bytes", len(entropy))
	}

	words := make([]string, 0, (entBits+csBits)/bitsPerWord)
	var acc uint32
	nbits := 0
	emit := func() {
		for nbits >= bitsPerWord {
			nbits -= bitsPerWord
			words = append(words, wordlists.English[(acc>>nbits)&wordMask])
			acc &= 1<<nbits - 1
		}
	}
	for _, b := range entropy {
		acc = acc<<8 | uint32(b)
		nbits += 8
		emit()
	}
	acc = acc<<csBits | checksum(entropy, csBits)
	nbits += csBits
	emit()
	return words, nil
}

// NewRandom returns a fresh mnemonic of wordCount words.
func NewRandom(rng io.Reader, wordCount int) ([]string, error) {
	entBits := wordCount * bitsPerWord * 32 / 33
	if _, err := ChecksumBits(wordCount * bitsPerWord); err != nil {
		return nil, err
	}
	entropy := make([]byte, entBits/8)
	if _, err := io.ReadFull(rng, entropy); err != nil {
		return nil, fmt.Errorf("failed to read entropy: %w", err)
	}
	return WordsFromEntropy(entropy)
}

// LastBitsLength returns how many entropy bits the final word carries for a
// mnemonic of wordCount words.
func LastBitsLength(wordCount int) (int, error) {
	csBits, err := ChecksumBits(wordCount * bitsPerWord)
	if err != nil {
		return 0, err
	}
	return bitsPerWord - csBits, nil
}

// LastWordFromBits completes a mnemonic from all but its last word and the
// entropy bits of the last word, given as a string of '0' and '1'. The
// returned mnemonic includes the computed final word.
func LastWordFromBits(words []string, bits string) ([]string, error) {
	n, err := LastBitsLength(len(words) + 1)
	if err != nil {
		return nil, err
	}
	if len(bits) != n || strings.Trim(bits, "01") != "" {
		return nil, errs.Newf(ErrInvalidSeed, "expected %d bits for a %d word mnemonic, got %q", n, len(words)+1, bits)
	}

	entropy := make([]byte, 0, (len(words)*bitsPerWord+n)/8)
	var acc uint32
	nbits := 0
	push := func(v uint32, width int) {
		acc = acc<<width | v
		nbits += width
		for nbits >= 8 {
			nbits -= 8
			entropy = append(entropy, byte(acc>>nbits))
			acc &= 1<<nbits - 1
		}
	}
	for _, w := range words {
		idx, ok := wordIndex[w]
		if !ok {
			return nil, errs.Newf(ErrInvalidSeed, "word %q not in wordlist", w)
		}
		push(uint32(idx), bitsPerWord)
	}
	for _, c := range bits {
		push(uint32(c-'0'), 1)
	}
	return WordsFromEntropy(entropy)
}

// RandomBits returns n random bits as a string of '0' and '1'.
func RandomBits(rng io.Reader, n int) (string, error) {
	buf := make([]byte, (n+7)/8)
	if _, err := io.ReadFull(rng, buf); err != nil {
		return "", fmt.Errorf("failed to read random bits: %w", err)
	}
	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		if buf[i/8]>>(7-i%8)&1 == 1 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String(), nil
}
