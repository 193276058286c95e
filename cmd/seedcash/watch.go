package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"filippo.io/age"
	"github.com/urfave/cli/v3"

	"github.com/seedcash/seedcash/pkg/backup"
	"github.com/seedcash/seedcash/pkg/kvstore"
	"github.com/seedcash/seedcash/pkg/logger"
	"github.com/seedcash/seedcash/pkg/types"
	"github.com/seedcash/seedcash/pkg/wallet"
)

func (a *app) watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Manage the watch-only wallet registry",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "prompt-password",
				Usage: "Read the registry password from the terminal",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Register an account xpub",
				ArgsUsage: "<xpub>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "fingerprint",
						Usage:    "Master key fingerprint shown by the wallet",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "label",
						Usage: "Wallet label",
					},
					&cli.StringFlag{
						Name:  "protocol",
						Usage: "Seed protocol: bip39 or slip39",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Preferred address format",
					},
				},
				Action: a.watchAdd,
			},
			{
				Name:   "list",
				Usage:  "List registered wallets",
				Action: a.watchList,
			},
			{
				Name:      "address",
				Usage:     "Show receive addresses of a registered wallet",
				ArgsUsage: "<fingerprint>",
				Flags: append(addressFlags(),
					&cli.Uint32Flag{
						Name:  "start",
						Usage: "First address index",
					},
				),
				Action: a.watchAddress,
			},
			{
				Name:      "remove",
				Usage:     "Remove a registered wallet",
				ArgsUsage: "<fingerprint>",
				Action:    a.watchRemove,
			},
			{
				Name:   "backup",
				Usage:  "Write an incremental encrypted backup and mirror it to S3 when configured",
				Action: a.watchBackup,
			},
			{
				Name:  "export",
				Usage: "Write all records to an age encrypted file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "out",
						Aliases:  []string{"o"},
						Usage:    "Output file",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:    "recipient",
						Aliases: []string{"r"},
						Usage:   "age recipient (age1...); a passphrase is asked for when none is given",
					},
					&cli.BoolFlag{
						Name:    "armor",
						Aliases: []string{"a"},
						Usage:   "Write PEM-style ASCII output",
					},
				},
				Action: a.watchExport,
			},
			{
				Name:      "import",
				Usage:     "Load records from an age encrypted export",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "identity",
						Aliases: []string{"i"},
						Usage:   "age identity file; a passphrase is asked for when unset",
					},
				},
				Action: a.watchImport,
			},
			{
				Name:  "restore",
				Usage: "Restore a registry from a backup directory",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "from",
						Usage: "Backup directory, defaults to the configured one",
					},
					&cli.StringFlag{
						Name:     "to",
						Usage:    "Path of the restored registry",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "from-s3",
						Usage: "Download the backups from the configured bucket first",
					},
				},
				Action: a.watchRestore,
			},
		},
	}
}

func (a *app) registryPassword(c *cli.Command) (string, error) {
	if c.Bool("prompt-password") {
		return readPassword(c, "registry password", false)
	}
	return a.cfg.Watch.Password, nil
}

func (a *app) openRegistry(c *cli.Command) (*kvstore.Store, error) {
	pass, err := a.registryPassword(c)
	if err != nil {
		return nil, err
	}
	return kvstore.New(kvstore.Config{
		Name:      "watch",
		Path:      a.cfg.Watch.DBPath,
		BackupDir: a.cfg.Watch.BackupDir,
		Password:  pass,
	})
}

func (a *app) withRegistry(c *cli.Command, fn func(*kvstore.Store) error) error {
	store, err := a.openRegistry(c)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close registry", err)
		}
	}()
	return fn(store)
}

// maybeWatch registers w when --watch carries a label.
func (a *app) maybeWatch(c *cli.Command, w *wallet.Wallet, protocol types.SeedProtocol) error {
	label := c.String("watch")
	if label == "" {
		return nil
	}
	format, err := a.addressFormat(c)
	if err != nil {
		return err
	}
	return a.withRegistry(c, func(store *kvstore.Store) error {
		if err := store.PutRecord(kvstore.WatchRecord{
			Fingerprint:   w.Fingerprint,
			Label:         label,
			XPub:          w.XPub,
			AddressFormat: format,
			Protocol:      protocol,
		}); err != nil {
			return err
		}
		fmt.Fprintf(c.Root().Writer, "Registered %s as %q\n", w.Fingerprint, label)
		return nil
	})
}

func (a *app) watchAdd(ctx context.Context, c *cli.Command) error {
	format, err := a.addressFormat(c)
	if err != nil {
		return err
	}
	rec := kvstore.WatchRecord{
		Fingerprint:   c.String("fingerprint"),
		Label:         c.String("label"),
		XPub:          c.Args().First(),
		AddressFormat: format,
		Protocol:      types.SeedProtocol(c.String("protocol")),
	}
	return a.withRegistry(c, func(store *kvstore.Store) error {
		if err := store.PutRecord(rec); err != nil {
			return err
		}
		fmt.Fprintf(c.Root().Writer, "Registered %s\n", rec.Fingerprint)
		return nil
	})
}

func (a *app) watchList(ctx context.Context, c *cli.Command) error {
	return a.withRegistry(c, func(store *kvstore.Store) error {
		records, err := store.ListRecords()
		if err != nil {
			return err
		}
		for _, r := range records {
			fmt.Fprintf(c.Root().Writer, "%s\t%s\t%s\t%s\t%s\n",
				r.Fingerprint, r.Label, r.Protocol, r.AddressFormat, r.CreatedAt.Format(time.RFC3339))
		}
		return nil
	})
}

func (a *app) watchAddress(ctx context.Context, c *cli.Command) error {
	return a.withRegistry(c, func(store *kvstore.Store) error {
		rec, err := store.GetRecord(c.Args().First())
		if err != nil {
			return err
		}
		format := rec.AddressFormat
		if c.String("format") != "" {
			if format, err = types.ParseAddressFormat(c.String("format")); err != nil {
				return err
			}
		}
		return a.printAddresses(c, rec.XPub, c.Uint32("start"), format)
	})
}

func (a *app) watchRemove(ctx context.Context, c *cli.Command) error {
	return a.withRegistry(c, func(store *kvstore.Store) error {
		return store.DeleteRecord(c.Args().First())
	})
}

func (a *app) s3Config() backup.S3Config {
	s3 := a.cfg.Watch.S3
	return backup.S3Config{
		Endpoint:  s3.Endpoint,
		Bucket:    s3.Bucket,
		AccessKey: s3.AccessKey,
		SecretKey: s3.SecretKey,
		Region:    s3.Region,
		UseSSL:    s3.UseSSL,
		Prefix:    s3.Prefix,
	}
}

func (a *app) watchBackup(ctx context.Context, c *cli.Command) error {
	return a.withRegistry(c, func(store *kvstore.Store) error {
		if store.Exec == nil {
			return fmt.Errorf("backups need a registry password")
		}
		cfg := a.s3Config()
		if !cfg.Enabled() {
			return store.Backup()
		}
		syncer, err := backup.NewSyncer(store.Exec, cfg)
		if err != nil {
			return err
		}
		uploaded, err := syncer.Run(ctx)
		if err != nil {
			return err
		}
		for _, name := range uploaded {
			fmt.Fprintf(c.Root().Writer, "Uploaded %s\n", name)
		}
		return nil
	})
}

func (a *app) watchRestore(ctx context.Context, c *cli.Command) error {
	pass, err := a.registryPassword(c)
	if err != nil {
		return err
	}
	from := c.String("from")
	if from == "" {
		from = a.cfg.Watch.BackupDir
	}
	if c.Bool("from-s3") {
		syncer, err := backup.NewSyncer(nil, a.s3Config())
		if err != nil {
			return err
		}
		if err := os.MkdirAll(from, 0700); err != nil {
			return err
		}
		if _, err := syncer.Download(ctx, from); err != nil {
			return err
		}
	}
	exec, err := kvstore.OpenBackupDir(from, pass)
	if err != nil {
		return err
	}
	return exec.Restore(kvstore.Config{Name: "watch", Path: c.String("to"), Password: pass})
}

func exportRecipients(c *cli.Command) ([]age.Recipient, error) {
	var recipients []age.Recipient
	for _, r := range c.StringSlice("recipient") {
		rcpt, err := age.ParseX25519Recipient(r)
		if err != nil {
			return nil, fmt.Errorf("invalid recipient %q: %w", r, err)
		}
		recipients = append(recipients, rcpt)
	}
	if len(recipients) > 0 {
		return recipients, nil
	}
	pass, err := readPassword(c, "export passphrase", true)
	if err != nil {
		return nil, err
	}
	rcpt, err := age.NewScryptRecipient(pass)
	if err != nil {
		return nil, err
	}
	return []age.Recipient{rcpt}, nil
}

func importIdentities(c *cli.Command) ([]age.Identity, error) {
	if path := c.String("identity"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return age.ParseIdentities(f)
	}
	pass, err := readPassword(c, "export passphrase", false)
	if err != nil {
		return nil, err
	}
	id, err := age.NewScryptIdentity(pass)
	if err != nil {
		return nil, err
	}
	return []age.Identity{id}, nil
}

func (a *app) watchExport(ctx context.Context, c *cli.Command) error {
	recipients, err := exportRecipients(c)
	if err != nil {
		return err
	}
	return a.withRegistry(c, func(store *kvstore.Store) error {
		f, err := os.OpenFile(c.String("out"), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
		if err != nil {
			return fmt.Errorf("failed to create export: %w", err)
		}
		n, err := store.Export(f, c.Bool("armor"), recipients...)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(c.Root().Writer, "Exported %d records\n", n)
		return nil
	})
}

func (a *app) watchImport(ctx context.Context, c *cli.Command) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("an export file is required")
	}
	identities, err := importIdentities(c)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return a.withRegistry(c, func(store *kvstore.Store) error {
		n, err := store.Import(f, identities...)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.Root().Writer, "Imported %d records\n", n)
		return nil
	})
}
