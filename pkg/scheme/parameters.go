// Package scheme drives a SLIP-39 backup session: configuring and
// generating a new share set, or collecting shares until the master secret
// can be recovered.
package scheme

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	errs "github.com/seedcash/seedcash/pkg/common/errors"
	"github.com/seedcash/seedcash/pkg/slip39"
)

// Supported master secret lengths in bits.
const (
	Bits128 = 128
	Bits256 = 256
)

// GroupSlot is one group of a scheme under construction. A slot is either
// unconfigured or carries a member threshold and count.
type GroupSlot struct {
	configured bool
	threshold  int
	count      int
}

func Unconfigured() GroupSlot {
	return GroupSlot{}
}

func Configured(threshold, count int) GroupSlot {
	return GroupSlot{configured: true, threshold: threshold, count: count}
}

func (s GroupSlot) IsConfigured() bool { return s.configured }
func (s GroupSlot) Threshold() int     { return s.threshold }
func (s GroupSlot) Count() int         { return s.count }

func (s GroupSlot) String() string {
	if !s.configured {
		return "unconfigured"
	}
	return fmt.Sprintf("%d of %d", s.threshold, s.count)
}

func (s GroupSlot) validate() error {
	if !s.configured {
		return nil
	}
	if s.threshold < 1 || s.count < 1 || s.count > slip39.MaxShareCount {
		return errs.Newf(errs.ErrInvalidParameter, "group %s is out of range", s)
	}
	if s.threshold > s.count {
		return errs.Newf(errs.ErrInvalidParameter, "threshold cannot be greater than total shares")
	}
	return nil
}

// Parameters is the editable configuration of a scheme to generate. It
// starts with one unconfigured group and a group threshold of one.
type Parameters struct {
	bits           []byte
	groupThreshold int
	groups         []GroupSlot
}

// NewParameters takes the master secret as a string of 128 or 256 binary
// digits.
func NewParameters(bits string) (*Parameters, error) {
	p := &Parameters{groupThreshold: 1, groups: []GroupSlot{Unconfigured()}}
	if err := p.SetBits(bits); err != nil {
		return nil, err
	}
	return p, nil
}

// NewParametersFromBytes takes the master secret as 16 or 32 raw bytes.
func NewParametersFromBytes(secret []byte) (*Parameters, error) {
	p := &Parameters{groupThreshold: 1, groups: []GroupSlot{Unconfigured()}}
	if err := p.SetSecret(secret); err != nil {
		return nil, err
	}
	return p, nil
}

// SetBits replaces the master secret with a binary digit string.
func (p *Parameters) SetBits(bits string) error {
	if len(bits) != Bits128 && len(bits) != Bits256 {
		return errs.Newf(errs.ErrInvalidParameter, "scheme parameters must initialize with %d or %d bits, got %d", Bits128, Bits256, len(bits))
	}
	if strings.Trim(bits, "01") != "" {
		return errs.Newf(errs.ErrInvalidParameter, "bits must only contain 0 and 1")
	}

	secret := make([]byte, len(bits)/8)
	for i := 0; i < len(bits); i++ {
		if bits[i] == '1' {
			secret[i/8] |= 0x80 >> (i % 8)
		}
	}
	p.bits = secret
	return nil
}

// SetSecret replaces the master secret with raw bytes.
func (p *Parameters) SetSecret(secret []byte) error {
	if n := len(secret) * 8; n != Bits128 && n != Bits256 {
		return errs.Newf(errs.ErrInvalidParameter, "master secret must be %d or %d bits, got %d", Bits128, Bits256, n)
	}
	p.bits = append([]byte(nil), secret...)
	return nil
}

// Secret returns a copy of the master secret.
func (p *Parameters) Secret() []byte {
	return append([]byte(nil), p.bits...)
}

// Bits renders the master secret as binary digits.
func (p *Parameters) Bits() string {
	var sb strings.Builder
	sb.Grow(len(p.bits) * 8)
	for _, b := range p.bits {
		fmt.Fprintf(&sb, "%08b", b)
	}
	return sb.String()
}

// SetGroupCount resizes the scheme to n unconfigured groups. The group
// threshold is lowered to n if it exceeds it.
func (p *Parameters) SetGroupCount(n int) error {
	if n < 1 || n > slip39.MaxShareCount {
		return errs.Newf(errs.ErrInvalidParameter, "number of groups must be between 1 and %d", slip39.MaxShareCount)
	}
	p.groups = lo.Times(n, func(int) GroupSlot { return Unconfigured() })
	p.groupThreshold = min(p.groupThreshold, n)
	return nil
}

func (p *Parameters) SetGroupThreshold(threshold int) error {
	if threshold < 1 {
		return errs.Newf(errs.ErrInvalidParameter, "group threshold must be at least 1")
	}
	if threshold > len(p.groups) {
		return errs.Newf(errs.ErrInvalidParameter, "group threshold %d exceeds the number of groups %d", threshold, len(p.groups))
	}
	p.groupThreshold = threshold
	return nil
}

// SetGroup configures or clears the group at index.
func (p *Parameters) SetGroup(index int, slot GroupSlot) error {
	if index < 0 || index >= len(p.groups) {
		return errs.Newf(errs.ErrInvalidParameter, "group index %d out of range", index)
	}
	if err := slot.validate(); err != nil {
		return err
	}
	p.groups[index] = slot
	return nil
}

func (p *Parameters) Group(index int) (GroupSlot, error) {
	if index < 0 || index >= len(p.groups) {
		return GroupSlot{}, errs.Newf(errs.ErrInvalidParameter, "group index %d out of range", index)
	}
	return p.groups[index], nil
}

func (p *Parameters) GroupCount() int     { return len(p.groups) }
func (p *Parameters) GroupThreshold() int { return p.groupThreshold }

// DiscardGroups returns to a single unconfigured group with threshold one.
func (p *Parameters) DiscardGroups() {
	p.groups = []GroupSlot{Unconfigured()}
	p.groupThreshold = 1
}

// IsComplete reports whether every group is configured.
func (p *Parameters) IsComplete() bool {
	return lo.EveryBy(p.groups, GroupSlot.IsConfigured)
}

// Snapshot is an immutable copy of complete parameters.
type Snapshot struct {
	secret         []byte
	groupThreshold int
	groups         []slip39.GroupSpec
}

// Snapshot freezes p. It fails while a group is unconfigured.
func (p *Parameters) Snapshot() (Snapshot, error) {
	if !p.IsComplete() {
		return Snapshot{}, errs.Newf(errs.ErrInvalidParameter, "scheme parameters are not complete")
	}
	return Snapshot{
		secret:         p.Secret(),
		groupThreshold: p.groupThreshold,
		groups: lo.Map(p.groups, func(s GroupSlot, _ int) slip39.GroupSpec {
			return slip39.GroupSpec{MemberThreshold: s.threshold, MemberCount: s.count}
		}),
	}, nil
}

func (s Snapshot) Secret() []byte             { return append([]byte(nil), s.secret...) }
func (s Snapshot) GroupThreshold() int        { return s.groupThreshold }
func (s Snapshot) Groups() []slip39.GroupSpec { return append([]slip39.GroupSpec(nil), s.groups...) }
