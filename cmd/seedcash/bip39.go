package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/seedcash/seedcash/pkg/bip39"
	"github.com/seedcash/seedcash/pkg/logger"
	"github.com/seedcash/seedcash/pkg/types"
	"github.com/seedcash/seedcash/pkg/wallet"
)

func (a *app) bip39Command() *cli.Command {
	return &cli.Command{
		Name:  "bip39",
		Usage: "Create and load BIP39 mnemonics",
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "Generate a random mnemonic and show its wallet",
				Flags: append(append([]cli.Flag{
					&cli.IntFlag{
						Name:    "words",
						Aliases: []string{"w"},
						Usage:   "Mnemonic length: 12, 15, 18, 21 or 24",
						Value:   12,
					},
				}, passphraseFlags()...), walletOutputFlags()...),
				Action: a.bip39Generate,
			},
			{
				Name:      "last-word",
				Usage:     "Complete a mnemonic from all but its last word",
				ArgsUsage: "<words...>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "bits",
						Usage: "Entropy bits of the last word as 0/1 digits; random when empty",
					},
				},
				Action: a.bip39LastWord,
			},
			{
				Name:      "wallet",
				Usage:     "Load a mnemonic and show its wallet",
				ArgsUsage: "[words...]",
				Flags:     append(passphraseFlags(), walletOutputFlags()...),
				Action:    a.bip39Wallet,
			},
		},
	}
}

func (a *app) bip39Generate(ctx context.Context, c *cli.Command) error {
	words, err := bip39.NewRandom(a.rng, int(c.Int("words")))
	if err != nil {
		return err
	}
	seed, err := wallet.NewSeed(words)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.Root().Writer, "Mnemonic: %s\n", seed.Mnemonic())
	return a.loadSeed(c, seed, true)
}

func (a *app) bip39LastWord(ctx context.Context, c *cli.Command) error {
	words := strings.Fields(strings.Join(c.Args().Slice(), " "))
	n, err := bip39.LastBitsLength(len(words) + 1)
	if err != nil {
		return fmt.Errorf("expected 11, 14, 17, 20 or 23 words: %w", err)
	}

	bits := c.String("bits")
	if bits == "" {
		if bits, err = bip39.RandomBits(a.rng, n); err != nil {
			return err
		}
	}
	full, err := bip39.LastWordFromBits(words, bits)
	if err != nil {
		return err
	}

	out := c.Root().Writer
	fmt.Fprintf(out, "Bits: %s\n", bits)
	fmt.Fprintf(out, "Last word: %s\n", full[len(full)-1])
	fmt.Fprintf(out, "Mnemonic: %s\n", strings.Join(full, " "))
	return nil
}

func (a *app) bip39Wallet(ctx context.Context, c *cli.Command) error {
	words, err := wordsFrom(c)
	if err != nil {
		return err
	}
	seed, err := wallet.NewSeed(words)
	if err != nil {
		return err
	}
	return a.loadSeed(c, seed, false)
}

// loadSeed applies the passphrase, prints the wallet and registers it when
// --watch is set.
func (a *app) loadSeed(c *cli.Command, seed *wallet.Seed, confirm bool) error {
	pass, err := passphraseFrom(c, confirm)
	if err != nil {
		return err
	}
	seed.SetPassphrase(pass)

	w, err := seed.Wallet()
	if err != nil {
		return err
	}
	logger.Debug("BIP39 wallet loaded", "fingerprint", w.Fingerprint, "words", len(seed.Words()))
	if err := a.printWallet(c, w); err != nil {
		return err
	}
	return a.maybeWatch(c, w, types.SeedProtocolBIP39)
}
