package lookup_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gstledger/internal/domain"
	"gstledger/internal/lookup"
	"gstledger/mocks"
)

func TestStateTable(t *testing.T) {
	table := lookup.NewStateTable([]domain.StateCode{
		{Code: "7", Name: "Delhi"},
		{Code: "27", Name: "Maharashtra"},
		{Code: "29", Name: ""},
		{Code: "27", Name: "Maharashtra (MH)"},
	})

	name, ok := table.StateName("07")
	assert.True(t, ok)
	assert.Equal(t, "Delhi", name)

	name, _ = table.StateName("27")
	assert.Equal(t, "Maharashtra (MH)", name)

	_, ok = table.StateName("29")
	assert.False(t, ok)
	assert.Equal(t, 2, table.Len())
}

func TestDefaultStateCodes(t *testing.T) {
	table := lookup.NewStateTable(lookup.DefaultStateCodes())

	for prefix, want := range map[string]string{
		"27": "Maharashtra",
		"29": "Karnataka",
		"33": "Tamil Nadu",
		"07": "Delhi",
	} {
		got, ok := table.StateName(prefix)
		assert.True(t, ok, prefix)
		assert.Equal(t, want, got)
	}
	_, ok := table.StateName("99")
	assert.False(t, ok)
}

func TestPartyDirectory(t *testing.T) {
	dir := lookup.NewPartyDirectory([]domain.Party{
		{GSTIN: " 27abcde1234f1z5 ", Name: " Acme Traders "},
		{GSTIN: "29ABCDE1234F1Z5", Name: "  "},
		{GSTIN: "", Name: "Nobody"},
	})

	name, ok := dir.PartyName("27ABCDE1234F1Z5")
	assert.True(t, ok)
	assert.Equal(t, "Acme Traders", name)

	_, ok = dir.PartyName("29ABCDE1234F1Z5")
	assert.False(t, ok)
}

func TestLoadStateTable(t *testing.T) {
	t.Run("uses stored codes", func(t *testing.T) {
		repo := new(mocks.MockStateRepo)
		repo.On("LoadAll", mock.Anything).Return([]domain.StateCode{{Code: "27", Name: "Maharashtra"}}, nil)

		table, err := lookup.LoadStateTable(context.Background(), repo)

		require.NoError(t, err)
		assert.Equal(t, 1, table.Len())
	})

	t.Run("empty falls back to defaults", func(t *testing.T) {
		repo := new(mocks.MockStateRepo)
		repo.On("LoadAll", mock.Anything).Return([]domain.StateCode{}, nil)

		table, err := lookup.LoadStateTable(context.Background(), repo)

		require.NoError(t, err)
		assert.Equal(t, len(lookup.DefaultStateCodes()), table.Len())
	})

	t.Run("repository error", func(t *testing.T) {
		repo := new(mocks.MockStateRepo)
		repo.On("LoadAll", mock.Anything).Return(nil, errors.New("relation does not exist"))

		_, err := lookup.LoadStateTable(context.Background(), repo)

		assert.Error(t, err)
	})
}
