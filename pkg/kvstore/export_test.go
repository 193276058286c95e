package kvstore

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"filippo.io/age"
	"filippo.io/age/armor"
	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seedcash/seedcash/pkg/types"
)

func seedRecords(t *testing.T, store *Store) {
	t.Helper()
	require.NoError(t, store.PutRecord(WatchRecord{
		Fingerprint: "73c5da0a", Label: "daily", XPub: testXpub,
		AddressFormat: types.AddressFormatCashAddr, Protocol: types.SeedProtocolBIP39,
	}))
	require.NoError(t, store.PutRecord(WatchRecord{
		Fingerprint: "0a0b0c0d", Label: "cold", XPub: testXpub,
		AddressFormat: types.AddressFormatLegacy, Protocol: types.SeedProtocolSLIP39,
	}))
}

func TestExportImport(t *testing.T) {
	id, err := age.GenerateX25519Identity()
	require.NoError(t, err)

	for _, armored := range []bool{false, true} {
		src := newTestStore(t, filepath.Join(t.TempDir(), "src"), "", "")
		seedRecords(t, src)

		var buf bytes.Buffer
		n, err := src.Export(&buf, armored, id.Recipient())
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, armored, strings.HasPrefix(buf.String(), armor.Header))
		assert.NotContains(t, buf.String(), testXpub)

		want, err := src.ListRecords()
		require.NoError(t, err)
		require.NoError(t, src.Close())

		dst := newTestStore(t, filepath.Join(t.TempDir(), "dst"), "", "")
		n, err = dst.Import(&buf, id)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		got, err := dst.ListRecords()
		require.NoError(t, err)
		require.Len(t, got, 2)
		for i := range want {
			assert.Equal(t, want[i].Fingerprint, got[i].Fingerprint)
			assert.Equal(t, want[i].Label, got[i].Label)
			assert.Equal(t, want[i].Protocol, got[i].Protocol)
			assert.Equal(t, want[i].AddressFormat, got[i].AddressFormat)
			assert.True(t, want[i].CreatedAt.Equal(got[i].CreatedAt))
		}
		require.NoError(t, dst.Close())
	}
}

func TestImportWrongIdentity(t *testing.T) {
	id, err := age.GenerateX25519Identity()
	require.NoError(t, err)
	other, err := age.GenerateX25519Identity()
	require.NoError(t, err)

	store := newTestStore(t, filepath.Join(t.TempDir(), "db"), "", "")
	defer store.Close()
	seedRecords(t, store)

	var buf bytes.Buffer
	_, err = store.Export(&buf, false, id.Recipient())
	require.NoError(t, err)

	_, err = store.Import(&buf, other)
	assert.Error(t, err)
}

func TestImportRejectsUnknownVersion(t *testing.T) {
	id, err := age.GenerateX25519Identity()
	require.NoError(t, err)

	data, err := cbor.Marshal(&exportMarshal{Version: exportVersion + 1})
	require.NoError(t, err)
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, id.Recipient())
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	store := newTestStore(t, filepath.Join(t.TempDir(), "db"), "", "")
	defer store.Close()
	_, err = store.Import(&buf, id)
	assert.ErrorIs(t, err, ErrExportVersion)
}
