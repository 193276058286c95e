package scheme

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/seedcash/seedcash/pkg/common/errors"
	"github.com/seedcash/seedcash/pkg/slip39"
)

func TestNewParametersBits(t *testing.T) {
	bits := strings.Repeat("10", 64)
	p, err := NewParameters(bits)
	require.NoError(t, err)
	assert.Equal(t, bits, p.Bits())
	assert.Equal(t, []byte{
		0xaa, 0xaa, 0xaa, 0xaa, 0xaa, 0xaa, 0xaa, 0xaa,
		0xaa, 0xaa, 0xaa, 0xaa, 0xaa, 0xaa, 0xaa, 0xaa,
	}, p.Secret())
	assert.Equal(t, 1, p.GroupCount())
	assert.Equal(t, 1, p.GroupThreshold())
	assert.False(t, p.IsComplete())

	p, err = NewParameters(strings.Repeat("1", 256))
	require.NoError(t, err)
	assert.Len(t, p.Secret(), 32)
}

func TestNewParametersInvalid(t *testing.T) {
	for _, bits := range []string{"", strings.Repeat("0", 127), strings.Repeat("0", 192), strings.Repeat("2", 128)} {
		_, err := NewParameters(bits)
		assert.ErrorIs(t, err, errs.ErrInvalidParameter, "len %d", len(bits))
	}
	_, err := NewParametersFromBytes(make([]byte, 20))
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)
}

func TestParametersGroups(t *testing.T) {
	p, err := NewParametersFromBytes(make([]byte, 16))
	require.NoError(t, err)

	require.NoError(t, p.SetGroupCount(3))
	assert.Equal(t, 3, p.GroupCount())
	require.NoError(t, p.SetGroupThreshold(2))
	assert.ErrorIs(t, p.SetGroupThreshold(4), errs.ErrInvalidParameter)
	assert.ErrorIs(t, p.SetGroupThreshold(0), errs.ErrInvalidParameter)

	require.NoError(t, p.SetGroup(0, Configured(1, 1)))
	require.NoError(t, p.SetGroup(1, Configured(2, 3)))
	assert.False(t, p.IsComplete())
	require.NoError(t, p.SetGroup(2, Configured(3, 5)))
	assert.True(t, p.IsComplete())

	slot, err := p.Group(1)
	require.NoError(t, err)
	assert.True(t, slot.IsConfigured())
	assert.Equal(t, 2, slot.Threshold())
	assert.Equal(t, 3, slot.Count())
	assert.Equal(t, "2 of 3", slot.String())

	require.NoError(t, p.SetGroup(2, Unconfigured()))
	assert.False(t, p.IsComplete())

	assert.ErrorIs(t, p.SetGroup(3, Configured(1, 1)), errs.ErrInvalidParameter)
	assert.ErrorIs(t, p.SetGroup(0, Configured(3, 2)), errs.ErrInvalidParameter)
	assert.ErrorIs(t, p.SetGroup(0, Configured(1, 17)), errs.ErrInvalidParameter)
	_, err = p.Group(-1)
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)

	require.NoError(t, p.SetGroupCount(1))
	assert.Equal(t, 1, p.GroupThreshold())

	p.DiscardGroups()
	assert.Equal(t, 1, p.GroupCount())
	assert.Equal(t, 1, p.GroupThreshold())
	slot, err = p.Group(0)
	require.NoError(t, err)
	assert.False(t, slot.IsConfigured())
}

func TestSnapshotIsIndependent(t *testing.T) {
	p, err := NewParametersFromBytes(make([]byte, 16))
	require.NoError(t, err)

	_, err = p.Snapshot()
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)

	require.NoError(t, p.SetGroup(0, Configured(2, 3)))
	snap, err := p.Snapshot()
	require.NoError(t, err)

	require.NoError(t, p.SetSecret(make([]byte, 32)))
	require.NoError(t, p.SetGroup(0, Configured(1, 1)))

	assert.Len(t, snap.Secret(), 16)
	assert.Equal(t, 1, snap.GroupThreshold())
	assert.Equal(t, []slip39.GroupSpec{{MemberThreshold: 2, MemberCount: 3}}, snap.Groups())

	groups := snap.Groups()
	groups[0].MemberCount = 9
	assert.Equal(t, 3, snap.Groups()[0].MemberCount)
}
