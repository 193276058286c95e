package kvstore

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"filippo.io/age"
	"filippo.io/age/armor"
	"github.com/fxamacker/cbor/v2"
)

const exportVersion = 1

var ErrExportVersion = errors.New("unsupported export version")

type exportMarshal struct {
	Version int                  `cbor:"1,keyasint"`
	Records []watchRecordMarshal `cbor:"2,keyasint"`
}

// Export writes every watch record to w as an age file encrypted to
// recipients. With armored set the output is PEM-style ASCII.
func (s *Store) Export(w io.Writer, armored bool, recipients ...age.Recipient) (int, error) {
	records, err := s.ListRecords()
	if err != nil {
		return 0, err
	}
	m := exportMarshal{Version: exportVersion, Records: make([]watchRecordMarshal, 0, len(records))}
	for _, r := range records {
		m.Records = append(m.Records, toMarshal(r))
	}
	data, err := cbor.Marshal(&m)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal export: %w", err)
	}

	var armorWriter io.WriteCloser
	if armored {
		armorWriter = armor.NewWriter(w)
		w = armorWriter
	}
	enc, err := age.Encrypt(w, recipients...)
	if err != nil {
		return 0, fmt.Errorf("failed to start encryption: %w", err)
	}
	if _, err := enc.Write(data); err != nil {
		return 0, fmt.Errorf("failed to write export: %w", err)
	}
	if err := enc.Close(); err != nil {
		return 0, fmt.Errorf("failed to finish export: %w", err)
	}
	if armorWriter != nil {
		if err := armorWriter.Close(); err != nil {
			return 0, fmt.Errorf("failed to finish armor: %w", err)
		}
	}
	return len(records), nil
}

// Import reads an export produced by Export and stores its records,
// replacing records with the same fingerprint. Armored input is detected.
func (s *Store) Import(r io.Reader, identities ...age.Identity) (int, error) {
	data, err := decryptExport(r, identities...)
	if err != nil {
		return 0, err
	}
	var m exportMarshal
	if err := cbor.Unmarshal(data, &m); err != nil {
		return 0, fmt.Errorf("failed to unmarshal export: %w", err)
	}
	if m.Version != exportVersion {
		return 0, fmt.Errorf("%w: %d", ErrExportVersion, m.Version)
	}
	for i, rm := range m.Records {
		if err := s.PutRecord(fromMarshal(rm)); err != nil {
			return i, fmt.Errorf("record %s: %w", rm.Fingerprint, err)
		}
	}
	return len(m.Records), nil
}

func decryptExport(r io.Reader, identities ...age.Identity) ([]byte, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var src io.Reader = bytes.NewReader(raw)
	if bytes.HasPrefix(bytes.TrimSpace(raw), []byte(armor.Header)) {
		src = armor.NewReader(src)
	}
	dec, err := age.Decrypt(src, identities...)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt export: %w", err)
	}
	return io.ReadAll(dec)
}
