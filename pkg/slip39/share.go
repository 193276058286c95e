package slip39

import (
	"bytes"
	"fmt"
	"strings"

	errs "github.com/seedcash/seedcash/pkg/common/errors"
)

const (
	RadixBits                = 10
	IDLengthBits             = 15
	ExtendableFlagLengthBits = 1
	IterationExpLengthBits   = 4
	IDExpLengthWords         = 2
	ChecksumLengthWords      = 3
	MetadataLengthWords      = IDExpLengthWords + 2 + ChecksumLengthWords
	MinStrengthBits          = 128
	MinMnemonicLengthWords   = MetadataLengthWords + (MinStrengthBits+RadixBits-1)/RadixBits
	maxIdentifier            = 1<<IDLengthBits - 1
	maxIterationExponent     = 1<<IterationExpLengthBits - 1
	shareParamsLengthBits    = 4
	shareParamsMaxValue      = 1<<shareParamsLengthBits - 1
	maxPaddingBits           = 8
	radixMask                = 1<<RadixBits - 1
)

// CommonParameters are the fields every share of one scheme agrees on.
type CommonParameters struct {
	Identifier        uint16
	Extendable        bool
	IterationExponent int
	GroupThreshold    int
	GroupCount        int
}

// GroupParameters are the fields every share of one group agrees on.
type GroupParameters struct {
	CommonParameters
	GroupIndex      int
	MemberThreshold int
}

// Share is a single decoded SLIP-39 share.
type Share struct {
	Identifier        uint16
	Extendable        bool
	IterationExponent int
	GroupIndex        int
	GroupThreshold    int
	GroupCount        int
	MemberIndex       int
	MemberThreshold   int
	Value             []byte
}

// ShareKey identifies a share inside a scheme.
type ShareKey struct {
	GroupIndex  int
	MemberIndex int
}

func (s Share) Key() ShareKey {
	return ShareKey{GroupIndex: s.GroupIndex, MemberIndex: s.MemberIndex}
}

func (s Share) CommonParameters() CommonParameters {
	return CommonParameters{
		Identifier:        s.Identifier,
		Extendable:        s.Extendable,
		IterationExponent: s.IterationExponent,
		GroupThreshold:    s.GroupThreshold,
		GroupCount:        s.GroupCount,
	}
}

func (s Share) GroupParameters() GroupParameters {
	return GroupParameters{
		CommonParameters: s.CommonParameters(),
		GroupIndex:       s.GroupIndex,
		MemberThreshold:  s.MemberThreshold,
	}
}

// Equal reports whether s and other hold identical fields and value.
func (s Share) Equal(other Share) bool {
	return s.GroupParameters() == other.GroupParameters() &&
		s.MemberIndex == other.MemberIndex &&
		bytes.Equal(s.Value, other.Value)
}

func (s Share) validate() error {
	switch {
	case s.Identifier > maxIdentifier:
		return errs.Newf(ErrInvalidParameter, "identifier %d exceeds %d bits", s.Identifier, IDLengthBits)
	case s.IterationExponent < 0 || s.IterationExponent > maxIterationExponent:
		return errs.Newf(ErrInvalidParameter, "iteration exponent %d out of range", s.IterationExponent)
	case s.GroupIndex < 0 || s.GroupIndex > shareParamsMaxValue:
		return errs.Newf(ErrInvalidParameter, "group index %d out of range", s.GroupIndex)
	case s.MemberIndex < 0 || s.MemberIndex > shareParamsMaxValue:
		return errs.Newf(ErrInvalidParameter, "member index %d out of range", s.MemberIndex)
	case s.GroupThreshold < 1 || s.GroupThreshold > s.GroupCount || s.GroupCount > MaxShareCount:
		return errs.Newf(ErrInvalidParameter, "invalid group threshold %d of %d", s.GroupThreshold, s.GroupCount)
	case s.MemberThreshold < 1 || s.MemberThreshold > MaxShareCount:
		return errs.Newf(ErrInvalidParameter, "invalid member threshold %d", s.MemberThreshold)
	case len(s.Value)*8 < MinStrengthBits:
		return errs.Newf(ErrInvalidParameter, "share value must be at least %d bits", MinStrengthBits)
	}
	return nil
}

// Indices returns the share encoded as 10-bit word indices, checksum included.
func (s Share) Indices() ([]int, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	ext := 0
	if s.Extendable {
		ext = 1
	}
	idExp := int(s.Identifier)<<(ExtendableFlagLengthBits+IterationExpLengthBits) |
		ext<<IterationExpLengthBits |
		s.IterationExponent

	params := s.GroupIndex<<16 |
		(s.GroupThreshold-1)<<12 |
		(s.GroupCount-1)<<8 |
		s.MemberIndex<<4 |
		(s.MemberThreshold - 1)

	data := make([]int, 0, MetadataLengthWords+len(s.Value))
	data = append(data, idExp>>RadixBits, idExp&radixMask)
	data = append(data, params>>RadixBits, params&radixMask)
	data = append(data, bytesToIndices(s.Value)...)
	return append(data, rs1024CreateChecksum(data, s.Extendable)...), nil
}

// Words returns the mnemonic words of the share.
func (s Share) Words() ([]string, error) {
	indices, err := s.Indices()
	if err != nil {
		return nil, err
	}
	words := make([]string, len(indices))
	for i, idx := range indices {
		words[i] = wordlist[idx]
	}
	return words, nil
}

// Mnemonic returns the share as a space separated word string.
func (s Share) Mnemonic() (string, error) {
	words, err := s.Words()
	if err != nil {
		return "", err
	}
	return strings.Join(words, " "), nil
}

// ParseShare decodes a space separated share mnemonic.
func ParseShare(mnemonic string) (Share, error) {
	return ShareFromWords(strings.Fields(mnemonic))
}

// ShareFromWords decodes a share from its mnemonic words.
func ShareFromWords(words []string) (Share, error) {
	data := make([]int, len(words))
	for i, w := range words {
		idx, ok := wordIndex[strings.ToLower(w)]
		if !ok {
			return Share{}, errs.Newf(ErrMnemonic, "invalid mnemonic word %q", w)
		}
		data[i] = idx
	}

	if len(data) < MinMnemonicLengthWords {
		return Share{}, errs.Newf(ErrMnemonic, "mnemonic must be at least %d words", MinMnemonicLengthWords)
	}

	paddingLen := (RadixBits * (len(data) - MetadataLengthWords)) % 16
	if paddingLen > maxPaddingBits {
		return Share{}, errs.Newf(ErrMnemonic, "invalid mnemonic length")
	}

	idExp := data[0]<<RadixBits | data[1]
	identifier := idExp >> (ExtendableFlagLengthBits + IterationExpLengthBits)
	extendable := (idExp>>IterationExpLengthBits)&1 == 1
	exponent := idExp & maxIterationExponent

	if !rs1024VerifyChecksum(data, extendable) {
		return Share{}, errs.Newf(ErrChecksum, "invalid share mnemonic checksum")
	}

	params := data[2]<<RadixBits | data[3]
	groupIndex := params >> 16 & shareParamsMaxValue
	groupThreshold := params>>12&shareParamsMaxValue + 1
	groupCount := params>>8&shareParamsMaxValue + 1
	memberIndex := params >> 4 & shareParamsMaxValue
	memberThreshold := params&shareParamsMaxValue + 1

	if groupCount < groupThreshold {
		return Share{}, errs.Newf(ErrMnemonic, "group threshold %d cannot exceed group count %d", groupThreshold, groupCount)
	}

	value, err := indicesToBytes(data[IDExpLengthWords+2:len(data)-ChecksumLengthWords], paddingLen)
	if err != nil {
		return Share{}, err
	}

	return Share{
		Identifier:        uint16(identifier),
		Extendable:        extendable,
		IterationExponent: exponent,
		GroupIndex:        groupIndex,
		GroupThreshold:    groupThreshold,
		GroupCount:        groupCount,
		MemberIndex:       memberIndex,
		MemberThreshold:   memberThreshold,
		Value:             value,
	}, nil
}

// bytesToIndices packs value into big-endian 10-bit words, left padded with
// zero bits to a whole number of words.
func bytesToIndices(value []byte) []int {
	totalBits := len(value) * 8
	wordCount := (totalBits + RadixBits - 1) / RadixBits
	out := make([]int, 0, wordCount)

	var acc uint32
	nbits := wordCount*RadixBits - totalBits
	for _, b := range value {
		acc = acc<<8 | uint32(b)
		nbits += 8
		for nbits >= RadixBits {
			nbits -= RadixBits
			out = append(out, int(acc>>nbits)&radixMask)
			acc &= 1<<nbits - 1
		}
	}
	return out
}

func indicesToBytes(indices []int, paddingLen int) ([]byte, error) {
	out := make([]byte, 0, (len(indices)*RadixBits-paddingLen)/8)

	var acc uint32
	nbits := 0
	skip := paddingLen
	for _, idx := range indices {
		acc = acc<<RadixBits | uint32(idx)
		nbits += RadixBits
		if skip > 0 {
			nbits -= skip
			if acc>>nbits != 0 {
				return nil, errs.Newf(ErrMnemonic, "invalid mnemonic padding")
			}
			skip = 0
		}
		for nbits >= 8 {
			nbits -= 8
			out = append(out, byte(acc>>nbits))
			acc &= 1<<nbits - 1
		}
	}
	return out, nil
}

// ShareInfo is a display summary of a share with 1-based indices.
type ShareInfo struct {
	Identifier        uint16
	Extendable        bool
	IterationExponent int
	GroupIndex        int
	GroupThreshold    int
	GroupCount        int
	MemberIndex       int
	MemberThreshold   int
}

func (s Share) Info() ShareInfo {
	return ShareInfo{
		Identifier:        s.Identifier,
		Extendable:        s.Extendable,
		IterationExponent: s.IterationExponent,
		GroupIndex:        s.GroupIndex + 1,
		GroupThreshold:    s.GroupThreshold,
		GroupCount:        s.GroupCount,
		MemberIndex:       s.MemberIndex + 1,
		MemberThreshold:   s.MemberThreshold,
	}
}

func (si ShareInfo) String() string {
	return fmt.Sprintf(
		"Share ID: %04X\n"+
			"Extendable: %v\n"+
			"PBKDF2 Iterations: %d\n"+
			"Group: %d of %d (threshold %d)\n"+
			"Member: %d (threshold %d)",
		si.Identifier,
		si.Extendable,
		BaseIterationCount<<si.IterationExponent,
		si.GroupIndex, si.GroupCount, si.GroupThreshold,
		si.MemberIndex, si.MemberThreshold,
	)
}
