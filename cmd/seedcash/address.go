package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/seedcash/seedcash/pkg/address"
	"github.com/seedcash/seedcash/pkg/types"
)

func (a *app) addressCommand() *cli.Command {
	return &cli.Command{
		Name:      "address",
		Usage:     "Derive receive addresses from an account xpub",
		ArgsUsage: "<xpub>",
		Flags: append(addressFlags(),
			&cli.Uint32Flag{
				Name:  "start",
				Usage: "First address index",
			},
		),
		Action: a.addressAction,
	}
}

func (a *app) addressAction(ctx context.Context, c *cli.Command) error {
	xpub := c.Args().First()
	if xpub == "" {
		return fmt.Errorf("an account xpub is required")
	}
	format, err := a.addressFormat(c)
	if err != nil {
		return err
	}
	return a.printAddresses(c, xpub, c.Uint32("start"), format)
}

func (a *app) printAddresses(c *cli.Command, xpub string, start uint32, format types.AddressFormat) error {
	addrs, err := address.Range(xpub, start, uint32(a.addressCount(c)), format)
	if err != nil {
		return err
	}
	for i, addr := range addrs {
		fmt.Fprintf(c.Root().Writer, "%d: %s\n", start+uint32(i), addr)
	}
	return nil
}
