package kvstore

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/seedcash/seedcash/pkg/common/pathutil"
	"github.com/seedcash/seedcash/pkg/encryption"
	"github.com/seedcash/seedcash/pkg/logger"
)

const (
	magic       = "SEEDCASH_WATCH_BACKUP"
	algo        = "AES-256-GCM"
	kdf         = "scrypt"
	versionFile = "latest.version"
)

var (
	ErrBadMagic       = errors.New("not a registry backup")
	ErrBackupKey      = errors.New("backup was written with a different key")
	ErrNoBackupsFound = errors.New("no backups found")
)

// BackupMeta is the clear-text header of a backup file.
type BackupMeta struct {
	Algo            string `json:"algo"`
	NonceB64        string `json:"nonce_b64"`
	CreatedAt       string `json:"created_at"` // RFC3339
	Since           uint64 `json:"since"`
	NextSince       uint64 `json:"next_since"`
	EncryptionKeyID string `json:"encryption_key_id"`
	KDF             string `json:"kdf"`
	SaltB64         string `json:"salt_b64"`
}

// BackupVersion tracks the incremental backup position.
type BackupVersion struct {
	Version   uint64 `json:"version"`
	Since     uint64 `json:"since"`
	UpdatedAt string `json:"updated_at"`
}

// Backup writes and restores encrypted badger backup streams in Dir.
type Backup struct {
	Name string
	DB   *badger.DB
	Key  []byte
	Salt []byte
	Dir  string
}

// NewBackup prepares dir and returns a backup executor for db.
func NewBackup(name string, db *badger.DB, key, salt []byte, dir string) (*Backup, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}
	return &Backup{
		Name: pathutil.SanitizeName(name),
		DB:   db,
		Key:  key,
		Salt: salt,
		Dir:  dir,
	}, nil
}

// OpenBackupDir prepares a restore-only executor. The key is rederived
// from password and the salt recorded in the oldest backup.
func OpenBackupDir(dir, password string) (*Backup, error) {
	b := &Backup{Dir: dir}
	files := b.SortedEncryptedBackups()
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoBackupsFound, dir)
	}
	meta, _, err := readBackupFile(files[0])
	if err != nil {
		return nil, err
	}
	if meta.KDF != kdf {
		return nil, fmt.Errorf("unsupported key derivation %q", meta.KDF)
	}
	b.Salt, err = base64.StdEncoding.DecodeString(meta.SaltB64)
	if err != nil {
		return nil, fmt.Errorf("invalid salt: %w", err)
	}
	b.Key, err = encryption.DeriveKey(password, b.Salt)
	if err != nil {
		return nil, err
	}
	if meta.EncryptionKeyID != encryption.KeyID(b.Key) {
		return nil, ErrBackupKey
	}
	return b, nil
}

// Execute writes everything changed since the previous backup. It writes
// nothing when there are no changes.
func (b *Backup) Execute() error {
	info, err := b.LoadVersionInfo()
	if err != nil {
		return fmt.Errorf("failed to load version info: %w", err)
	}

	since := info.Since
	version := info.Version + 1
	now := time.Now()

	var plain bytes.Buffer
	nextSince, err := b.DB.Backup(&plain, since)
	if err != nil {
		return err
	}
	if plain.Len() == 0 || nextSince == since {
		logger.Info("No changes since last backup, skipping", "version", info.Version)
		return nil
	}

	ct, nonce, err := encryption.EncryptAESGCM(plain.Bytes(), b.Key)
	if err != nil {
		return err
	}
	meta := BackupMeta{
		Algo:            algo,
		NonceB64:        base64.StdEncoding.EncodeToString(nonce),
		CreatedAt:       now.UTC().Format(time.RFC3339),
		Since:           since,
		NextSince:       nextSince,
		EncryptionKeyID: encryption.KeyID(b.Key),
		KDF:             kdf,
		SaltB64:         base64.StdEncoding.EncodeToString(b.Salt),
	}

	filename := fmt.Sprintf("backup-%s-%s-%06d.enc", b.Name, now.Format("2006-01-02_15-04-05"), version)
	outPath, err := pathutil.SafePath(b.Dir, filename)
	if err != nil {
		return err
	}
	if err := writeBackupFile(outPath, meta, ct); err != nil {
		return err
	}

	logger.Info("Encrypted backup written", "file", filename, "version", version)
	if err := b.SaveVersionInfo(version, nextSince); err != nil {
		logger.Warn("Failed to save backup version", "error", err)
	}
	return nil
}

func writeBackupFile(path string, meta BackupMeta, ct []byte) error {
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	if len(metaJSON) > math.MaxUint32 {
		return fmt.Errorf("backup metadata too large")
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write([]byte(magic)); err != nil {
		return err
	}
	if err := binary.Write(f, binary.BigEndian, uint32(len(metaJSON))); err != nil {
		return err
	}
	if _, err := f.Write(metaJSON); err != nil {
		return err
	}
	if _, err := f.Write(ct); err != nil {
		return err
	}
	return f.Sync()
}

// ReadBackupMeta returns the header of the backup file at path.
func ReadBackupMeta(path string) (BackupMeta, error) {
	meta, _, err := readBackupFile(path)
	return meta, err
}

func readBackupFile(path string) (BackupMeta, []byte, error) {
	var meta BackupMeta

	f, err := os.Open(path)
	if err != nil {
		return meta, nil, err
	}
	defer f.Close()

	magicBuf := make([]byte, len(magic))
	if _, err := io.ReadFull(f, magicBuf); err != nil {
		return meta, nil, fmt.Errorf("%w: %v", ErrBadMagic, err)
	}
	if string(magicBuf) != magic {
		return meta, nil, ErrBadMagic
	}

	var metaLen uint32
	if err := binary.Read(f, binary.BigEndian, &metaLen); err != nil {
		return meta, nil, err
	}
	metaBuf := make([]byte, metaLen)
	if _, err := io.ReadFull(f, metaBuf); err != nil {
		return meta, nil, err
	}
	if err := json.Unmarshal(metaBuf, &meta); err != nil {
		return meta, nil, err
	}

	ct, err := io.ReadAll(f)
	if err != nil {
		return meta, nil, err
	}
	return meta, ct, nil
}

func (b *Backup) SaveVersionInfo(counter, since uint64) error {
	info := BackupVersion{
		Version:   counter,
		Since:     since,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.Marshal(info)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(b.Dir, versionFile), data, 0600)
}

// LoadVersionInfo returns the zero position when no backup was taken yet.
func (b *Backup) LoadVersionInfo() (BackupVersion, error) {
	var info BackupVersion
	data, err := os.ReadFile(filepath.Join(b.Dir, versionFile))
	if errors.Is(err, os.ErrNotExist) {
		return BackupVersion{UpdatedAt: time.Now().UTC().Format(time.RFC3339)}, nil
	}
	if err != nil {
		return info, err
	}
	err = json.Unmarshal(data, &info)
	return info, err
}

// SortedEncryptedBackups lists backup files oldest first.
func (b *Backup) SortedEncryptedBackups() []string {
	files, _ := filepath.Glob(filepath.Join(b.Dir, "backup-*.enc"))
	sort.Slice(files, func(i, j int) bool {
		mi, errI := ReadBackupMeta(files[i])
		mj, errJ := ReadBackupMeta(files[j])
		if errI != nil || errJ != nil || mi.NextSince == mj.NextSince {
			return files[i] < files[j]
		}
		return mi.NextSince < mj.NextSince
	})
	return files
}

// Restore loads every backup in order into a fresh registry described by
// target. The target may use a different password.
func (b *Backup) Restore(target Config) error {
	target.BackupDir = ""
	store, err := New(target)
	if err != nil {
		return err
	}

	files := b.SortedEncryptedBackups()
	for _, file := range files {
		logger.Info("Restoring backup", "file", filepath.Base(file))
		if err := b.loadEncryptedBackup(store.DB, file); err != nil {
			if closeErr := store.Close(); closeErr != nil {
				logger.Error("Failed to close restored registry", closeErr)
			}
			return fmt.Errorf("failed to restore %s: %w", filepath.Base(file), err)
		}
	}

	if err := store.Close(); err != nil {
		return fmt.Errorf("failed to close restored registry: %w", err)
	}
	logger.Info("Restore complete", "path", target.Path, "files", len(files))
	return nil
}

func (b *Backup) loadEncryptedBackup(db *badger.DB, path string) error {
	meta, ct, err := readBackupFile(path)
	if err != nil {
		return err
	}
	if meta.EncryptionKeyID != encryption.KeyID(b.Key) {
		return ErrBackupKey
	}
	nonce, err := base64.StdEncoding.DecodeString(meta.NonceB64)
	if err != nil {
		return err
	}
	plain, err := encryption.DecryptAESGCM(ct, b.Key, nonce)
	if err != nil {
		return err
	}
	return db.Load(bytes.NewReader(plain), maxPendingWrites)
}
