package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/seedcash/seedcash/pkg/utils"
)

// readPassword reads a secret from the terminal without echo. With confirm
// set it asks twice until both entries match.
func readPassword(c *cli.Command, label string, confirm bool) (string, error) {
	out := c.Root().ErrWriter
	for {
		fmt.Fprintf(out, "Enter %s: ", label)
		pass, err := term.ReadPassword(syscall.Stdin)
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", label, err)
		}
		if !confirm {
			return string(pass), nil
		}
		if len(pass) == 0 {
			fmt.Fprintf(out, "%s cannot be empty. Please try again.\n", label)
			continue
		}

		fmt.Fprintf(out, "Confirm %s: ", label)
		again, err := term.ReadPassword(syscall.Stdin)
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("failed to read %s confirmation: %w", label, err)
		}
		if string(pass) != string(again) {
			fmt.Fprintln(out, "Entries do not match. Please try again.")
			continue
		}
		fmt.Fprintf(out, "%s set: %s\n", label, utils.MaskString(string(pass)))
		return string(pass), nil
	}
}

// passphraseFrom returns --passphrase, or prompts when --prompt-passphrase
// is set.
func passphraseFrom(c *cli.Command, confirm bool) (string, error) {
	if c.Bool("prompt-passphrase") {
		return readPassword(c, "passphrase", confirm)
	}
	return c.String("passphrase"), nil
}

// readLines returns the non-empty lines of r.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}

// wordsFrom takes mnemonic words from the arguments, or from one line of
// standard input when there are none.
func wordsFrom(c *cli.Command) ([]string, error) {
	if c.Args().Present() {
		return strings.Fields(strings.Join(c.Args().Slice(), " ")), nil
	}
	fmt.Fprint(c.Root().ErrWriter, "Enter mnemonic: ")
	line, err := bufio.NewReader(c.Root().Reader).ReadString('\n')
	if err != nil && line == "" {
		return nil, fmt.Errorf("failed to read mnemonic: %w", err)
	}
	return strings.Fields(line), nil
}

func passphraseFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "passphrase",
			Usage: "Passphrase protecting the seed",
		},
		&cli.BoolFlag{
			Name:    "prompt-passphrase",
			Aliases: []string{"P"},
			Usage:   "Read the passphrase from the terminal",
		},
	}
}
