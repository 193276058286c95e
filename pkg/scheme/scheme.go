package scheme

import (
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	errs "github.com/seedcash/seedcash/pkg/common/errors"
	"github.com/seedcash/seedcash/pkg/slip39"
	"github.com/seedcash/seedcash/pkg/utils"
	"github.com/seedcash/seedcash/pkg/wallet"
)

// Scheme is one SLIP-39 session. It is either built from parameters to
// generate shares, or from nothing to collect shares one at a time. A
// Scheme is not safe for concurrent use.
type Scheme struct {
	id         string
	params     *Snapshot
	groups     map[int]*slip39.ShareGroup
	common     *slip39.CommonParameters
	passphrase []byte

	rng    slip39.RandomSource
	logger zerolog.Logger
}

type Option func(*Scheme)

// WithRandom sets the randomness used for identifiers and share padding.
func WithRandom(rng slip39.RandomSource) Option {
	return func(s *Scheme) { s.rng = rng }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Scheme) { s.logger = logger }
}

func newScheme(opts []Option) *Scheme {
	s := &Scheme{
		id:     uuid.NewString(),
		groups: make(map[int]*slip39.ShareGroup),
		rng:    slip39.DefaultRandom,
		logger: zerolog.New(utils.ZerologConsoleWriter()).With().Timestamp().Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("session", s.id).Logger()
	return s
}

// NewFromParameters starts a generation session. params must be complete.
func NewFromParameters(params *Parameters, opts ...Option) (*Scheme, error) {
	snap, err := params.Snapshot()
	if err != nil {
		return nil, err
	}
	s := newScheme(opts)
	s.params = &snap
	s.logger.Debug().
		Int("groupThreshold", snap.groupThreshold).
		Int("groups", len(snap.groups)).
		Msg("Scheme created from parameters")
	return s, nil
}

// NewFromShares starts an empty recovery session.
func NewFromShares(opts ...Option) *Scheme {
	s := newScheme(opts)
	s.logger.Debug().Msg("Scheme created for share entry")
	return s
}

// ID identifies the session in logs.
func (s *Scheme) ID() string {
	return s.id
}

// AddShare decodes a share mnemonic and files it under its group. The first
// share fixes the scheme's common parameters; later shares must match them.
func (s *Scheme) AddShare(words []string) error {
	share, err := slip39.ShareFromWords(words)
	if err != nil {
		return err
	}

	common := share.CommonParameters()
	if s.common != nil {
		if err := slip39.CheckCommonParameters(*s.common, common); err != nil {
			return errs.Newf(errs.ErrShareSet, "share does not match scheme: %v", err)
		}
	}

	g, ok := s.groups[share.GroupIndex]
	if !ok {
		g = slip39.NewShareGroup()
	}
	if err := g.Add(share); err != nil {
		return err
	}
	s.groups[share.GroupIndex] = g
	s.common = &common

	s.logger.Info().
		Int("group", share.GroupIndex+1).
		Int("member", share.MemberIndex+1).
		Msg("Share added")
	return nil
}

// GroupIndices returns the indices of groups holding at least one share.
func (s *Scheme) GroupIndices() []int {
	indices := lo.Keys(s.groups)
	slices.Sort(indices)
	return indices
}

// MemberIndices returns the sorted member indices entered for group.
func (s *Scheme) MemberIndices(group int) ([]int, bool) {
	g, ok := s.groups[group]
	if !ok {
		return nil, false
	}
	return g.MemberIndices(), true
}

// ShareWords returns the mnemonic words of one share.
func (s *Scheme) ShareWords(group, member int) ([]string, bool) {
	g, ok := s.groups[group]
	if !ok {
		return nil, false
	}
	share, ok := g.Share(member)
	if !ok {
		return nil, false
	}
	words, err := share.Words()
	if err != nil {
		return nil, false
	}
	return words, true
}

// SchemeInfo summarizes progress across groups.
type SchemeInfo struct {
	Processed int
	Threshold int
	Total     int
}

// Info reports how many groups have shares against the group threshold and
// group count. ok is false until a share has been entered.
func (s *Scheme) Info() (info SchemeInfo, ok bool) {
	if s.common == nil {
		return SchemeInfo{}, false
	}
	return SchemeInfo{
		Processed: len(s.groups),
		Threshold: s.common.GroupThreshold,
		Total:     s.common.GroupCount,
	}, true
}

// GroupInfo summarizes one group.
type GroupInfo struct {
	Processed int
	Threshold int
}

func (s *Scheme) GroupInfo(group int) (GroupInfo, bool) {
	g, ok := s.groups[group]
	if !ok {
		return GroupInfo{}, false
	}
	return GroupInfo{Processed: g.Len(), Threshold: g.MemberThreshold()}, true
}

// DiscardScheme drops every share and the common parameters.
func (s *Scheme) DiscardScheme() {
	clear(s.groups)
	s.common = nil
	s.logger.Info().Msg("Scheme discarded")
}

// DiscardGroup drops all shares of group.
func (s *Scheme) DiscardGroup(group int) bool {
	if _, ok := s.groups[group]; !ok {
		return false
	}
	delete(s.groups, group)
	s.resetIfEmpty()
	s.logger.Info().Int("group", group+1).Msg("Group discarded")
	return true
}

// DiscardShare drops one share. A group left empty is removed.
func (s *Scheme) DiscardShare(group, member int) bool {
	g, ok := s.groups[group]
	if !ok || !g.Remove(member) {
		return false
	}
	if g.Len() == 0 {
		delete(s.groups, group)
	}
	s.resetIfEmpty()
	s.logger.Info().Int("group", group+1).Int("member", member+1).Msg("Share discarded")
	return true
}

func (s *Scheme) resetIfEmpty() {
	if len(s.groups) == 0 {
		s.common = nil
	}
}

// IsComplete reports whether enough groups are complete to recover.
func (s *Scheme) IsComplete() bool {
	if s.common == nil {
		return false
	}
	complete := lo.CountBy(lo.Values(s.groups), (*slip39.ShareGroup).IsComplete)
	return complete >= s.common.GroupThreshold
}

// IsSingleLevel reports a scheme with one group and group threshold one.
func (s *Scheme) IsSingleLevel() bool {
	return s.common != nil && s.common.GroupCount == 1 && s.common.GroupThreshold == 1
}

// SetPassphrase sets the passphrase used by Generate and
// RecoverMasterSecret.
func (s *Scheme) SetPassphrase(passphrase string) {
	s.passphrase = []byte(passphrase)
}

// Generate encrypts the configured master secret and replaces the scheme's
// groups with freshly split shares.
func (s *Scheme) Generate(extendable bool, iterationExponent int) error {
	if s.params == nil {
		return errs.Newf(errs.ErrInvalidParameter, "scheme has no parameters to generate from")
	}
	if err := slip39.ValidatePassphrase(s.passphrase); err != nil {
		return err
	}

	grouped, err := slip39.GenerateShares(
		s.rng,
		s.params.groupThreshold,
		s.params.Groups(),
		s.params.Secret(),
		s.passphrase,
		extendable,
		iterationExponent,
	)
	if err != nil {
		return err
	}

	groups := make(map[int]*slip39.ShareGroup, len(grouped))
	for gi, shares := range grouped {
		g := slip39.NewShareGroup()
		for _, share := range shares {
			if err := g.Add(share); err != nil {
				return err
			}
		}
		groups[gi] = g
	}
	common := grouped[0][0].CommonParameters()
	s.groups = groups
	s.common = &common

	s.logger.Info().
		Int("groups", len(groups)).
		Int("groupThreshold", common.GroupThreshold).
		Bool("extendable", extendable).
		Int("iterationExponent", iterationExponent).
		Msg("Shares generated")
	return nil
}

// Mnemonics returns the share mnemonics of every group, ordered by group
// and member index.
func (s *Scheme) Mnemonics() ([][]string, error) {
	out := make([][]string, 0, len(s.groups))
	for _, gi := range s.GroupIndices() {
		g := s.groups[gi]
		var group []string
		for _, mi := range g.MemberIndices() {
			share, _ := g.Share(mi)
			m, err := share.Mnemonic()
			if err != nil {
				return nil, err
			}
			group = append(group, m)
		}
		out = append(out, group)
	}
	return out, nil
}

// RecoverMasterSecret combines the entered shares and decrypts the master
// secret with the current passphrase. A wrong passphrase yields a different
// secret, not an error.
func (s *Scheme) RecoverMasterSecret() ([]byte, error) {
	ems, err := slip39.RecoverEMS(s.groups)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to recover master secret")
		return nil, err
	}
	return ems.Decrypt(s.passphrase)
}

// Wallet recovers the master secret and derives its wallet.
func (s *Scheme) Wallet() (*wallet.Wallet, error) {
	ms, err := s.RecoverMasterSecret()
	if err != nil {
		return nil, err
	}
	w, err := wallet.FromMasterSecret(ms)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("fingerprint", w.Fingerprint).Msg("Wallet derived")
	return w, nil
}
