package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/seedcash/seedcash/pkg/config"
	"github.com/seedcash/seedcash/pkg/encoding"
	"github.com/seedcash/seedcash/pkg/logger"
	"github.com/seedcash/seedcash/pkg/slip39"
	"github.com/seedcash/seedcash/pkg/types"
	"github.com/seedcash/seedcash/pkg/wallet"
)

const Version = "0.1.0"

// app carries state shared by every command.
type app struct {
	cfg config.Config
	rng slip39.RandomSource
}

func main() {
	root := newApp(&app{rng: slip39.DefaultRandom}, os.Stdin, os.Stdout, os.Stderr)
	if err := root.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(a *app, in io.Reader, out, errOut io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "seedcash",
		Usage:     "Bitcoin Cash seed, SLIP-39 share and watch-only wallet tool",
		Version:   Version,
		Reader:    in,
		Writer:    out,
		ErrWriter: errOut,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Before: a.before,
		Commands: []*cli.Command{
			a.bip39Command(),
			a.slip39Command(),
			a.addressCommand(),
			a.watchCommand(),
			{
				Name:  "version",
				Usage: "Display version information",
				Action: func(ctx context.Context, c *cli.Command) error {
					fmt.Fprintf(c.Root().Writer, "seedcash version %s\n", Version)
					return nil
				},
			},
		},
	}
}

func (a *app) before(ctx context.Context, c *cli.Command) (context.Context, error) {
	if err := config.InitViperConfig(); err != nil {
		return ctx, err
	}
	cfg, err := config.Load()
	if err != nil {
		return ctx, err
	}
	a.cfg = cfg
	logger.Init(cfg.Environment, cfg.Debug || c.Bool("debug"))
	return ctx, nil
}

// addressFormat resolves --format against the configured default.
func (a *app) addressFormat(c *cli.Command) (types.AddressFormat, error) {
	if f := c.String("format"); f != "" {
		return types.ParseAddressFormat(f)
	}
	return a.cfg.Address.Format, nil
}

func (a *app) addressCount(c *cli.Command) int {
	if n := int(c.Int("count")); n > 0 {
		return n
	}
	return a.cfg.Address.Count
}

func addressFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Address format: cashaddr or legacy",
		},
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"n"},
			Usage:   "Number of receive addresses to show",
		},
	}
}

// printWallet writes the account keys and the first receive addresses.
func (a *app) printWallet(c *cli.Command, w *wallet.Wallet) error {
	out := c.Root().Writer
	format, err := a.addressFormat(c)
	if err != nil {
		return err
	}
	addrs, err := w.Addresses(0, uint32(a.addressCount(c)), format)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		shown := *w
		if !c.Bool("show-private") {
			shown.XPriv = ""
		}
		data, err := encoding.ToJSON(struct {
			wallet.Wallet
			Addresses []string `json:"addresses"`
		}{shown, addrs})
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintf(out, "Fingerprint: %s\n", w.Fingerprint)
	fmt.Fprintf(out, "xpub: %s\n", w.XPub)
	if c.Bool("show-private") {
		fmt.Fprintf(out, "xprv: %s\n", w.XPriv)
	}
	for i, addr := range addrs {
		fmt.Fprintf(out, "%d: %s\n", i, addr)
	}
	return nil
}

func walletOutputFlags() []cli.Flag {
	return append(addressFlags(),
		&cli.BoolFlag{
			Name:  "show-private",
			Usage: "Also print the account xprv",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print the wallet as JSON",
		},
		&cli.StringFlag{
			Name:  "watch",
			Usage: "Register the wallet in the watch-only registry under this label",
		},
	)
}
