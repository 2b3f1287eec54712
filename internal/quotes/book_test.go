package quotes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBook_Quote(t *testing.T) {
	b, err := NewBook([]Entry{
		{TournamentID: "t1", CandidateID: "A", OpponentID: "B", Value: 1.5},
		{TournamentID: "t1", CandidateID: "B", OpponentID: "A", Value: 2.0},
	})
	require.NoError(t, err)

	v, err := b.Quote("A", "B")
	require.NoError(t, err)
	assert.Equal(t, 1.5, v)

	// Direções independentes, sem reciprocidade implícita.
	v, err = b.Quote("B", "A")
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)
}

func TestBook_MissingQuote(t *testing.T) {
	b, err := NewBook([]Entry{
		{TournamentID: "t1", CandidateID: "A", OpponentID: "B", Value: 1.5},
	})
	require.NoError(t, err)

	_, err = b.Quote("B", "A")
	var missing *MissingQuoteError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "B", missing.CandidateID)
	assert.Equal(t, "A", missing.OpponentID)

	assert.False(t, b.HasPair("A", "B"))
}

func TestNewBook_RejectsNonPositive(t *testing.T) {
	_, err := NewBook([]Entry{
		{TournamentID: "t1", CandidateID: "A", OpponentID: "B", Value: 0},
	})
	assert.Error(t, err)
}
