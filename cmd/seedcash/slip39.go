package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	errs "github.com/seedcash/seedcash/pkg/common/errors"
	"github.com/seedcash/seedcash/pkg/scheme"
	"github.com/seedcash/seedcash/pkg/slip39"
	"github.com/seedcash/seedcash/pkg/types"
)

func (a *app) slip39Command() *cli.Command {
	return &cli.Command{
		Name:  "slip39",
		Usage: "Split and combine SLIP-39 share sets",
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "Split a master secret into share groups",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "bits",
						Usage: "Master secret as 128 or 256 binary digits",
					},
					&cli.StringFlag{
						Name:  "secret-hex",
						Usage: "Master secret as 16 or 32 hex encoded bytes",
					},
					&cli.IntFlag{
						Name:  "strength",
						Usage: "Bits of a random master secret when none is given",
						Value: scheme.Bits128,
					},
					&cli.IntFlag{
						Name:    "group-threshold",
						Aliases: []string{"t"},
						Usage:   "Number of groups needed to recover",
						Value:   1,
					},
					&cli.StringSliceFlag{
						Name:    "group",
						Aliases: []string{"g"},
						Usage:   "Group as THRESHOLD/COUNT, repeat once per group",
					},
					&cli.BoolFlag{
						Name:  "extendable",
						Usage: "Create an extendable share set",
					},
					&cli.IntFlag{
						Name:  "exponent",
						Usage: "Iteration exponent of the passphrase cipher",
					},
					&cli.BoolFlag{
						Name:  "show-secret",
						Usage: "Print the master secret",
					},
				}, passphraseFlags()...),
				Action: a.slip39Generate,
			},
			{
				Name:  "combine",
				Usage: "Recover the wallet from shares, one mnemonic per line on stdin or --share",
				Flags: append(append([]cli.Flag{
					&cli.StringSliceFlag{
						Name:    "share",
						Aliases: []string{"s"},
						Usage:   "Share mnemonic, repeat once per share",
					},
					&cli.BoolFlag{
						Name:  "show-secret",
						Usage: "Print the recovered master secret",
					},
				}, passphraseFlags()...), walletOutputFlags()...),
				Action: a.slip39Combine,
			},
			{
				Name:      "info",
				Usage:     "Decode the parameters of one share",
				ArgsUsage: "[words...]",
				Action:    a.slip39Info,
			},
		},
	}
}

// parseGroup reads "2/3" or "2of3".
func parseGroup(s string) (scheme.GroupSlot, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	t, n, ok := strings.Cut(s, "/")
	if !ok {
		t, n, ok = strings.Cut(s, "of")
	}
	if !ok {
		return scheme.GroupSlot{}, errs.Newf(errs.ErrInvalidParameter, "group %q must look like THRESHOLD/COUNT", s)
	}
	threshold, err := strconv.Atoi(strings.TrimSpace(t))
	if err != nil {
		return scheme.GroupSlot{}, errs.Newf(errs.ErrInvalidParameter, "group %q: bad threshold", s)
	}
	count, err := strconv.Atoi(strings.TrimSpace(n))
	if err != nil {
		return scheme.GroupSlot{}, errs.Newf(errs.ErrInvalidParameter, "group %q: bad count", s)
	}
	return scheme.Configured(threshold, count), nil
}

func (a *app) schemeParameters(c *cli.Command) (*scheme.Parameters, error) {
	var (
		params *scheme.Parameters
		err    error
	)
	switch {
	case c.String("bits") != "":
		params, err = scheme.NewParameters(c.String("bits"))
	case c.String("secret-hex") != "":
		var secret []byte
		if secret, err = hex.DecodeString(c.String("secret-hex")); err != nil {
			return nil, errs.Wrap(errs.ErrInvalidParameter, err)
		}
		params, err = scheme.NewParametersFromBytes(secret)
	default:
		secret := make([]byte, int(c.Int("strength"))/8)
		if _, err = io.ReadFull(a.rng, secret); err != nil {
			return nil, err
		}
		params, err = scheme.NewParametersFromBytes(secret)
	}
	if err != nil {
		return nil, err
	}

	groups := c.StringSlice("group")
	if len(groups) == 0 {
		groups = []string{"1/1"}
	}
	if err := params.SetGroupCount(len(groups)); err != nil {
		return nil, err
	}
	for i, g := range groups {
		slot, err := parseGroup(g)
		if err != nil {
			return nil, err
		}
		if err := params.SetGroup(i, slot); err != nil {
			return nil, err
		}
	}
	if err := params.SetGroupThreshold(int(c.Int("group-threshold"))); err != nil {
		return nil, err
	}
	return params, nil
}

func (a *app) slip39Generate(ctx context.Context, c *cli.Command) error {
	params, err := a.schemeParameters(c)
	if err != nil {
		return err
	}
	s, err := scheme.NewFromParameters(params, scheme.WithRandom(a.rng))
	if err != nil {
		return err
	}
	pass, err := passphraseFrom(c, true)
	if err != nil {
		return err
	}
	s.SetPassphrase(pass)

	extendable := a.cfg.Slip39.Extendable
	if c.IsSet("extendable") {
		extendable = c.Bool("extendable")
	}
	exponent := a.cfg.Slip39.IterationExponent
	if c.IsSet("exponent") {
		exponent = int(c.Int("exponent"))
	}
	if err := s.Generate(extendable, exponent); err != nil {
		return err
	}

	mnemonics, err := s.Mnemonics()
	if err != nil {
		return err
	}
	out := c.Root().Writer
	if c.Bool("show-secret") {
		fmt.Fprintf(out, "Master secret: %s\n", hex.EncodeToString(params.Secret()))
	}
	for gi, group := range mnemonics {
		slot, _ := params.Group(gi)
		fmt.Fprintf(out, "Group %d of %d, %d of %d shares required:\n", gi+1, len(mnemonics), slot.Threshold(), slot.Count())
		for mi, m := range group {
			fmt.Fprintf(out, "  %d: %s\n", mi+1, m)
		}
	}

	w, err := s.Wallet()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Fingerprint: %s\n", w.Fingerprint)
	return nil
}

func (a *app) slip39Combine(ctx context.Context, c *cli.Command) error {
	mnemonics := c.StringSlice("share")
	if len(mnemonics) == 0 {
		fmt.Fprintln(c.Root().ErrWriter, "Enter shares, one per line, end with EOF:")
		lines, err := readLines(c.Root().Reader)
		if err != nil {
			return err
		}
		mnemonics = lines
	}

	s := scheme.NewFromShares(scheme.WithRandom(a.rng))
	for _, m := range mnemonics {
		if err := s.AddShare(strings.Fields(m)); err != nil {
			return err
		}
	}
	if !s.IsComplete() {
		return incompleteError(s)
	}

	pass, err := passphraseFrom(c, false)
	if err != nil {
		return err
	}
	s.SetPassphrase(pass)

	if c.Bool("show-secret") {
		ms, err := s.RecoverMasterSecret()
		if err != nil {
			return err
		}
		fmt.Fprintf(c.Root().Writer, "Master secret: %s\n", hex.EncodeToString(ms))
	}
	w, err := s.Wallet()
	if err != nil {
		return err
	}
	if err := a.printWallet(c, w); err != nil {
		return err
	}
	return a.maybeWatch(c, w, types.SeedProtocolSLIP39)
}

// incompleteError describes what is still missing from s.
func incompleteError(s *scheme.Scheme) error {
	info, ok := s.Info()
	if !ok {
		return errs.Newf(errs.ErrIncompleteScheme, "no shares entered")
	}
	parts := []string{fmt.Sprintf("%d of %d groups started, %d needed", info.Processed, info.Total, info.Threshold)}
	for _, gi := range s.GroupIndices() {
		g, _ := s.GroupInfo(gi)
		parts = append(parts, fmt.Sprintf("group %d has %d of %d shares", gi+1, g.Processed, g.Threshold))
	}
	return errs.Newf(errs.ErrIncompleteScheme, "%s", strings.Join(parts, "; "))
}

func (a *app) slip39Info(ctx context.Context, c *cli.Command) error {
	words, err := wordsFrom(c)
	if err != nil {
		return err
	}
	share, err := slip39.ShareFromWords(words)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.Root().Writer, share.Info().String())
	return nil
}
