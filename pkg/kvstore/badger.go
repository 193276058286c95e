// Package kvstore is the watch-only wallet registry: a badger database of
// account xpubs, optionally encrypted at rest, with encrypted incremental
// backups. It never holds private key material.
package kvstore

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/seedcash/seedcash/pkg/encryption"
	"github.com/seedcash/seedcash/pkg/logger"
)

const (
	indexCacheSize   = 16 << 20
	openAttempts     = 5
	openDelay        = 200 * time.Millisecond
	maxPendingWrites = 256
)

var (
	ErrNotFound                 = errors.New("key not found")
	ErrBackupExecutorNotPresent = errors.New("backup executor is not initialized")
)

// KVStore is the raw key/value surface of the registry.
type KVStore interface {
	Put(key string, value []byte) error
	Get(key string) ([]byte, error)
	Delete(key string) error
	Keys() ([]string, error)
	Close() error
}

// Config locates a registry. With a Password the database is encrypted at
// rest and backups are enabled; the scrypt salt lives next to the database
// in Path + ".salt".
type Config struct {
	Name      string
	Path      string
	BackupDir string
	Password  string
}

// Store is a KVStore backed by badger.
type Store struct {
	DB   *badger.DB
	Exec *Backup
}

var _ KVStore = (*Store)(nil)

// badgerLogger routes badger's printf logging into zerolog. Info and debug
// chatter goes to debug level.
type badgerLogger struct {
	log zerolog.Logger
}

func (l badgerLogger) Errorf(f string, v ...any)   { l.log.Error().Msgf(strings.TrimSpace(f), v...) }
func (l badgerLogger) Warningf(f string, v ...any) { l.log.Warn().Msgf(strings.TrimSpace(f), v...) }
func (l badgerLogger) Infof(f string, v ...any)    { l.log.Debug().Msgf(strings.TrimSpace(f), v...) }
func (l badgerLogger) Debugf(f string, v ...any)   { l.log.Debug().Msgf(strings.TrimSpace(f), v...) }

func isLockError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "Cannot acquire directory lock")
}

// deriveKey returns the at-rest key for cfg, creating the salt file on
// first use. It returns nil key and salt without a password.
func deriveKey(cfg Config) (key, salt []byte, err error) {
	if cfg.Password == "" {
		return nil, nil, nil
	}
	saltPath := cfg.Path + ".salt"
	salt, err = os.ReadFile(saltPath)
	if errors.Is(err, os.ErrNotExist) {
		if salt, err = encryption.NewSalt(); err != nil {
			return nil, nil, err
		}
		if err := os.WriteFile(saltPath, salt, 0600); err != nil {
			return nil, nil, fmt.Errorf("failed to write salt: %w", err)
		}
	} else if err != nil {
		return nil, nil, fmt.Errorf("failed to read salt: %w", err)
	}
	key, err = encryption.DeriveKey(cfg.Password, salt)
	return key, salt, err
}

func openBadger(path string, key []byte) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(badgerLogger{log: logger.Get().With().Str("component", "badger").Logger()})
	if key != nil {
		opts = opts.WithEncryptionKey(key).WithIndexCacheSize(indexCacheSize)
	}

	var db *badger.DB
	err := retry.Do(
		func() error {
			var err error
			db, err = badger.Open(opts)
			return err
		},
		retry.Attempts(openAttempts),
		retry.Delay(openDelay),
		retry.RetryIf(isLockError),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("Registry is locked, retrying", "path", path, "attempt", n+1)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry at %s: %w", path, err)
	}
	return db, nil
}

// New opens or creates the registry described by config.
func New(config Config) (*Store, error) {
	if err := os.MkdirAll(config.Path, 0700); err != nil {
		return nil, fmt.Errorf("failed to create registry directory: %w", err)
	}
	key, salt, err := deriveKey(config)
	if err != nil {
		return nil, err
	}

	db, err := openBadger(config.Path, key)
	if err != nil {
		return nil, err
	}
	logger.Info("Opened watch-only registry", "path", config.Path, "encrypted", key != nil)

	store := &Store{DB: db}
	if key != nil && config.BackupDir != "" {
		exec, err := NewBackup(config.Name, db, key, salt, config.BackupDir)
		if err != nil {
			db.Close() //nolint:errcheck
			return nil, err
		}
		store.Exec = exec
	}
	return store, nil
}

func (s *Store) Put(key string, value []byte) error {
	return s.DB.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

// Get returns ErrNotFound for a missing key.
func (s *Store) Get(key string) ([]byte, error) {
	var value []byte
	err := s.DB.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return value, err
}

func (s *Store) Delete(key string) error {
	return s.DB.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

func (s *Store) Keys() ([]string, error) {
	return s.keysWithPrefix("")
}

func (s *Store) keysWithPrefix(prefix string) ([]string, error) {
	var keys []string
	err := s.DB.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	return keys, err
}

// Backup writes an incremental encrypted backup.
func (s *Store) Backup() error {
	if s.Exec == nil {
		return ErrBackupExecutorNotPresent
	}
	return s.Exec.Execute()
}

func (s *Store) Close() error {
	return s.DB.Close()
}
