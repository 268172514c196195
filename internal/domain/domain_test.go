package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProfileKind(t *testing.T) {
	tests := []struct {
		in   string
		want ProfileKind
	}{
		{"account", ProfileAccount},
		{"accounts", ProfileAccount},
		{"Savings", ProfileSaving},
		{" pension ", ProfilePension},
	}
	for _, tt := range tests {
		got, err := ParseProfileKind(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseProfileKind("loans")
	assert.ErrorIs(t, err, ErrUnknownProfile)
}

func TestOwnerScope(t *testing.T) {
	o, err := ParseOwnerScope("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), o.JournalID)
	assert.Equal(t, "42", o.String())

	_, err = ParseOwnerScope("abc")
	assert.ErrorIs(t, err, ErrInvalidOwner)

	_, err = NewOwnerScope(0)
	assert.ErrorIs(t, err, ErrInvalidOwner)
}
