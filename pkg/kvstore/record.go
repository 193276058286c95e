package kvstore

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/seedcash/seedcash/pkg/encoding"
	"github.com/seedcash/seedcash/pkg/types"
)

const watchPrefix = "watch/"

// WatchRecord describes one watch-only wallet, keyed by its master
// fingerprint.
type WatchRecord struct {
	Fingerprint   string
	Label         string
	XPub          string
	AddressFormat types.AddressFormat
	Protocol      types.SeedProtocol
	CreatedAt     time.Time
}

// watchRecordMarshal is the CBOR representation of WatchRecord.
type watchRecordMarshal struct {
	Fingerprint   string `cbor:"1,keyasint"`
	Label         string `cbor:"2,keyasint,omitempty"`
	XPub          string `cbor:"3,keyasint"`
	AddressFormat string `cbor:"4,keyasint"`
	Protocol      string `cbor:"5,keyasint,omitempty"`
	CreatedAt     int64  `cbor:"6,keyasint"` // unix nanoseconds
}

func watchKey(fingerprint string) string {
	return watchPrefix + strings.ToLower(fingerprint)
}

// Validate checks the fingerprint, xpub and address format.
func (r WatchRecord) Validate() error {
	if fp, err := hex.DecodeString(r.Fingerprint); err != nil || len(fp) != 4 {
		return fmt.Errorf("invalid fingerprint %q", r.Fingerprint)
	}
	if _, err := encoding.XpubDecode(r.XPub); err != nil {
		return fmt.Errorf("invalid xpub: %w", err)
	}
	if !types.SupportedAddressFormats[r.AddressFormat] {
		return fmt.Errorf("unsupported address format %q", r.AddressFormat)
	}
	if r.Protocol != "" && !r.Protocol.IsValid() {
		return fmt.Errorf("unknown seed protocol %q", r.Protocol)
	}
	return nil
}

func toMarshal(r WatchRecord) watchRecordMarshal {
	return watchRecordMarshal{
		Fingerprint:   strings.ToLower(r.Fingerprint),
		Label:         r.Label,
		XPub:          r.XPub,
		AddressFormat: string(r.AddressFormat),
		Protocol:      string(r.Protocol),
		CreatedAt:     r.CreatedAt.UnixNano(),
	}
}

func fromMarshal(m watchRecordMarshal) WatchRecord {
	return WatchRecord{
		Fingerprint:   m.Fingerprint,
		Label:         m.Label,
		XPub:          m.XPub,
		AddressFormat: types.AddressFormat(m.AddressFormat),
		Protocol:      types.SeedProtocol(m.Protocol),
		CreatedAt:     time.Unix(0, m.CreatedAt).UTC(),
	}
}

func marshalRecord(r WatchRecord) ([]byte, error) {
	m := toMarshal(r)
	return cbor.Marshal(&m)
}

func unmarshalRecord(data []byte) (WatchRecord, error) {
	var m watchRecordMarshal
	if err := cbor.Unmarshal(data, &m); err != nil {
		return WatchRecord{}, fmt.Errorf("failed to unmarshal watch record: %w", err)
	}
	return fromMarshal(m), nil
}

// PutRecord validates and stores r, replacing any record with the same
// fingerprint. A zero CreatedAt is set to now.
func (s *Store) PutRecord(r WatchRecord) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	data, err := marshalRecord(r)
	if err != nil {
		return err
	}
	return s.Put(watchKey(r.Fingerprint), data)
}

// GetRecord returns ErrNotFound for an unknown fingerprint.
func (s *Store) GetRecord(fingerprint string) (WatchRecord, error) {
	data, err := s.Get(watchKey(fingerprint))
	if err != nil {
		return WatchRecord{}, err
	}
	return unmarshalRecord(data)
}

// ListRecords returns all records ordered by fingerprint.
func (s *Store) ListRecords() ([]WatchRecord, error) {
	keys, err := s.keysWithPrefix(watchPrefix)
	if err != nil {
		return nil, err
	}
	records := make([]WatchRecord, 0, len(keys))
	for _, k := range keys {
		data, err := s.Get(k)
		if err != nil {
			return nil, err
		}
		r, err := unmarshalRecord(data)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

func (s *Store) DeleteRecord(fingerprint string) error {
	if _, err := s.GetRecord(fingerprint); err != nil {
		return err
	}
	return s.Delete(watchKey(fingerprint))
}
