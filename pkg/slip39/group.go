package slip39

import (
	"encoding/binary"
	"slices"
	"strings"

	"github.com/samber/lo"

	errs "github.com/seedcash/seedcash/pkg/common/errors"
)

// ShareGroup collects the member shares of one group. Shares are keyed by
// member index and kept in insertion order.
type ShareGroup struct {
	shares map[int]Share
	order  []int
}

func NewShareGroup() *ShareGroup {
	return &ShareGroup{shares: make(map[int]Share)}
}

// Add inserts share. Re-adding an identical share is a no-op. A share whose
// group parameters differ from the group, or that reuses a member index
// with a different value, is rejected.
func (g *ShareGroup) Add(share Share) error {
	if len(g.order) > 0 {
		if fields := groupMismatch(g.GroupParameters(), share.GroupParameters()); len(fields) > 0 {
			return errs.Newf(ErrShareSet, "the %s parameters don't match", strings.Join(fields, ", "))
		}
	}
	if existing, ok := g.shares[share.MemberIndex]; ok {
		if existing.Equal(share) {
			return nil
		}
		return errs.Newf(ErrShareSet, "member %d of group %d was already entered with a different value",
			share.MemberIndex+1, share.GroupIndex+1)
	}
	share.Value = append([]byte(nil), share.Value...)
	g.shares[share.MemberIndex] = share
	g.order = append(g.order, share.MemberIndex)
	return nil
}

// Remove drops the share with the given member index.
func (g *ShareGroup) Remove(memberIndex int) bool {
	if _, ok := g.shares[memberIndex]; !ok {
		return false
	}
	delete(g.shares, memberIndex)
	g.order = lo.Without(g.order, memberIndex)
	return true
}

func (g *ShareGroup) Len() int {
	return len(g.order)
}

// Shares returns the shares in insertion order.
func (g *ShareGroup) Shares() []Share {
	return lo.Map(g.order, func(mi int, _ int) Share {
		s := g.shares[mi]
		s.Value = append([]byte(nil), s.Value...)
		return s
	})
}

// MemberIndices returns the member indices present, ascending.
func (g *ShareGroup) MemberIndices() []int {
	indices := slices.Clone(g.order)
	slices.Sort(indices)
	return indices
}

// Share returns the share with the given member index.
func (g *ShareGroup) Share(memberIndex int) (Share, bool) {
	s, ok := g.shares[memberIndex]
	return s, ok
}

func (g *ShareGroup) first() Share {
	return g.shares[g.order[0]]
}

// GroupParameters returns the parameters shared by the group members. The
// zero value is returned for an empty group.
func (g *ShareGroup) GroupParameters() GroupParameters {
	if len(g.order) == 0 {
		return GroupParameters{}
	}
	return g.first().GroupParameters()
}

func (g *ShareGroup) CommonParameters() CommonParameters {
	return g.GroupParameters().CommonParameters
}

func (g *ShareGroup) MemberThreshold() int {
	return g.GroupParameters().MemberThreshold
}

func (g *ShareGroup) IsComplete() bool {
	return len(g.order) > 0 && len(g.order) >= g.MemberThreshold()
}

// MinimalGroup returns a new group holding the first member-threshold
// shares in insertion order.
func (g *ShareGroup) MinimalGroup() *ShareGroup {
	out := NewShareGroup()
	n := min(g.MemberThreshold(), len(g.order))
	for _, mi := range g.order[:n] {
		out.shares[mi] = g.shares[mi]
		out.order = append(out.order, mi)
	}
	return out
}

// Clone returns a deep copy of the group.
func (g *ShareGroup) Clone() *ShareGroup {
	out := NewShareGroup()
	for _, s := range g.Shares() {
		out.shares[s.MemberIndex] = s
		out.order = append(out.order, s.MemberIndex)
	}
	return out
}

func (g *ShareGroup) rawShares() []RawShare {
	return lo.Map(g.order, func(mi int, _ int) RawShare {
		return RawShare{X: byte(mi), Data: g.shares[mi].Value}
	})
}

func commonMismatch(a, b CommonParameters) []string {
	var fields []string
	if a.Identifier != b.Identifier {
		fields = append(fields, "identifier")
	}
	if a.Extendable != b.Extendable {
		fields = append(fields, "extendable")
	}
	if a.IterationExponent != b.IterationExponent {
		fields = append(fields, "iteration exponent")
	}
	if a.GroupThreshold != b.GroupThreshold {
		fields = append(fields, "group threshold")
	}
	if a.GroupCount != b.GroupCount {
		fields = append(fields, "group count")
	}
	return fields
}

func groupMismatch(a, b GroupParameters) []string {
	fields := commonMismatch(a.CommonParameters, b.CommonParameters)
	if a.GroupIndex != b.GroupIndex {
		fields = append(fields, "group index")
	}
	if a.MemberThreshold != b.MemberThreshold {
		fields = append(fields, "member threshold")
	}
	return fields
}

// CheckCommonParameters returns an ErrShareSet error naming the fields in
// which b differs from a.
func CheckCommonParameters(a, b CommonParameters) error {
	if fields := commonMismatch(a, b); len(fields) > 0 {
		return errs.Newf(ErrShareSet, "the %s parameters don't match", strings.Join(fields, ", "))
	}
	return nil
}

// EncryptedMasterSecret is the master secret after the passphrase cipher,
// together with the parameters needed to decrypt it.
type EncryptedMasterSecret struct {
	Identifier        uint16
	Extendable        bool
	IterationExponent int
	Ciphertext        []byte
}

func NewEncryptedMasterSecret(masterSecret, passphrase []byte, identifier uint16, extendable bool, exponent int) (EncryptedMasterSecret, error) {
	ct, err := Encrypt(masterSecret, passphrase, exponent, identifier, extendable)
	if err != nil {
		return EncryptedMasterSecret{}, err
	}
	return EncryptedMasterSecret{
		Identifier:        identifier,
		Extendable:        extendable,
		IterationExponent: exponent,
		Ciphertext:        ct,
	}, nil
}

// Decrypt returns the master secret for passphrase. It does not modify ems.
func (ems EncryptedMasterSecret) Decrypt(passphrase []byte) ([]byte, error) {
	return Decrypt(ems.Ciphertext, passphrase, ems.IterationExponent, ems.Identifier, ems.Extendable)
}

// GroupSpec is the member threshold and member count of one group.
type GroupSpec struct {
	MemberThreshold int
	MemberCount     int
}

// SplitEMS splits ems into groups of member shares. The result holds one
// slice of shares per entry of groups, in the same order.
func SplitEMS(rng RandomSource, groupThreshold int, groups []GroupSpec, ems EncryptedMasterSecret) ([][]Share, error) {
	if len(ems.Ciphertext)*8 < MinStrengthBits {
		return nil, errs.Newf(ErrInvalidParameter, "the length of the master secret must be at least %d bits", MinStrengthBits)
	}
	if groupThreshold > len(groups) {
		return nil, errs.Newf(ErrInvalidParameter, "group threshold %d exceeds the number of groups %d", groupThreshold, len(groups))
	}
	for i, g := range groups {
		if g.MemberThreshold == 1 && g.MemberCount > 1 {
			return nil, errs.Newf(ErrInvalidParameter,
				"group %d: creating multiple member shares with member threshold 1 is not allowed, use 1-of-1 member sharing instead", i+1)
		}
	}

	groupShares, err := SplitSecret(rng, groupThreshold, len(groups), ems.Ciphertext)
	if err != nil {
		return nil, err
	}

	out := make([][]Share, len(groups))
	for i, g := range groups {
		memberShares, err := SplitSecret(rng, g.MemberThreshold, g.MemberCount, groupShares[i].Data)
		if err != nil {
			return nil, err
		}
		out[i] = lo.Map(memberShares, func(m RawShare, _ int) Share {
			return Share{
				Identifier:        ems.Identifier,
				Extendable:        ems.Extendable,
				IterationExponent: ems.IterationExponent,
				GroupIndex:        int(groupShares[i].X),
				GroupThreshold:    groupThreshold,
				GroupCount:        len(groups),
				MemberIndex:       int(m.X),
				MemberThreshold:   g.MemberThreshold,
				Value:             m.Data,
			}
		})
	}
	return out, nil
}

// RecoverEMS recovers the encrypted master secret from groups keyed by group
// index. Incomplete groups are ignored. The groups are only read.
func RecoverEMS(groups map[int]*ShareGroup) (EncryptedMasterSecret, error) {
	complete := lo.PickBy(groups, func(_ int, g *ShareGroup) bool {
		return g != nil && g.IsComplete()
	})
	if len(complete) == 0 {
		return EncryptedMasterSecret{}, errs.Newf(ErrIncompleteScheme, "no group has enough shares")
	}

	indices := lo.Keys(complete)
	slices.Sort(indices)

	params := complete[indices[0]].CommonParameters()
	for _, gi := range indices[1:] {
		if err := CheckCommonParameters(params, complete[gi].CommonParameters()); err != nil {
			return EncryptedMasterSecret{}, err
		}
	}
	if len(indices) < params.GroupThreshold {
		return EncryptedMasterSecret{}, errs.Newf(ErrIncompleteScheme,
			"%d complete groups but %d are required", len(indices), params.GroupThreshold)
	}

	groupShares := make([]RawShare, 0, params.GroupThreshold)
	for _, gi := range indices[:params.GroupThreshold] {
		g := complete[gi].MinimalGroup()
		secret, err := RecoverSecret(g.MemberThreshold(), g.rawShares())
		if err != nil {
			return EncryptedMasterSecret{}, err
		}
		groupShares = append(groupShares, RawShare{X: byte(gi), Data: secret})
	}

	ct, err := RecoverSecret(params.GroupThreshold, groupShares)
	if err != nil {
		return EncryptedMasterSecret{}, err
	}
	return EncryptedMasterSecret{
		Identifier:        params.Identifier,
		Extendable:        params.Extendable,
		IterationExponent: params.IterationExponent,
		Ciphertext:        ct,
	}, nil
}

// RandomIdentifier draws a 15-bit scheme identifier.
func RandomIdentifier(rng RandomSource) (uint16, error) {
	b, err := randomBytes(rng, 2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b) & maxIdentifier, nil
}

// ValidatePassphrase checks that passphrase only holds printable ASCII.
func ValidatePassphrase(passphrase []byte) error {
	for _, c := range passphrase {
		if c < 32 || c > 126 {
			return errs.Newf(ErrInvalidParameter, "the passphrase must contain only printable ASCII characters (code points 32-126)")
		}
	}
	return nil
}

// GenerateShares encrypts masterSecret under passphrase with a fresh
// identifier and splits it according to groups.
func GenerateShares(
	rng RandomSource,
	groupThreshold int,
	groups []GroupSpec,
	masterSecret []byte,
	passphrase []byte,
	extendable bool,
	exponent int,
) ([][]Share, error) {
	if len(masterSecret)*8 < MinStrengthBits {
		return nil, errs.Newf(ErrInvalidParameter, "the length of the master secret must be at least %d bits", MinStrengthBits)
	}
	if len(masterSecret)%2 != 0 {
		return nil, errs.Newf(ErrInvalidParameter, "the length of the master secret in bytes must be an even number")
	}
	if err := ValidatePassphrase(passphrase); err != nil {
		return nil, err
	}

	identifier, err := RandomIdentifier(rng)
	if err != nil {
		return nil, err
	}
	ems, err := NewEncryptedMasterSecret(masterSecret, passphrase, identifier, extendable, exponent)
	if err != nil {
		return nil, err
	}
	return SplitEMS(rng, groupThreshold, groups, ems)
}

// GenerateMnemonics is GenerateShares with every share rendered as a mnemonic.
func GenerateMnemonics(
	rng RandomSource,
	groupThreshold int,
	groups []GroupSpec,
	masterSecret []byte,
	passphrase []byte,
	extendable bool,
	exponent int,
) ([][]string, error) {
	shares, err := GenerateShares(rng, groupThreshold, groups, masterSecret, passphrase, extendable, exponent)
	if err != nil {
		return nil, err
	}

	out := make([][]string, len(shares))
	for i, group := range shares {
		for _, s := range group {
			m, err := s.Mnemonic()
			if err != nil {
				return nil, err
			}
			out[i] = append(out[i], m)
		}
	}
	return out, nil
}

// DecodeMnemonics parses mnemonics into groups keyed by group index.
func DecodeMnemonics(mnemonics []string) (map[int]*ShareGroup, error) {
	if len(mnemonics) == 0 {
		return nil, errs.Newf(ErrShareSet, "the list of mnemonics is empty")
	}

	groups := make(map[int]*ShareGroup)
	var common CommonParameters
	for i, m := range mnemonics {
		share, err := ParseShare(m)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			common = share.CommonParameters()
		} else if err := CheckCommonParameters(common, share.CommonParameters()); err != nil {
			return nil, err
		}

		g, ok := groups[share.GroupIndex]
		if !ok {
			g = NewShareGroup()
			groups[share.GroupIndex] = g
		}
		if err := g.Add(share); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

// CombineMnemonics recovers the master secret from share mnemonics.
func CombineMnemonics(mnemonics []string, passphrase []byte) ([]byte, error) {
	groups, err := DecodeMnemonics(mnemonics)
	if err != nil {
		return nil, err
	}
	ems, err := RecoverEMS(groups)
	if err != nil {
		return nil, err
	}
	return ems.Decrypt(passphrase)
}
