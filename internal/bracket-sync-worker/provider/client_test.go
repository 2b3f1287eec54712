package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTournaments_ParsesProviderPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tournaments.json", r.URL.Path)
		require.Equal(t, "secret", r.URL.Query().Get("api_key"))
		w.Write([]byte(`[
			{"tournament": {"id": 101, "name": "Open", "state": "underway", "started_at": "2026-08-01T10:00:00Z"}},
			{"tournament": {"id": 102, "name": "Pending", "state": "pending", "started_at": null}},
			{"tournament": {"id": 103, "name": "Done", "state": "ended", "started_at": "2026-07-01T10:00:00Z"}}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", nil, 0)
	ts, err := c.Tournaments(context.Background())
	require.NoError(t, err)
	require.Len(t, ts, 3)

	assert.Equal(t, "101", ts[0].ID)
	assert.True(t, ts[0].SubscriptionsClosed)
	assert.False(t, ts[0].Finished)

	assert.False(t, ts[1].SubscriptionsClosed)

	assert.True(t, ts[2].Finished)
}

func TestMatches_ResolvesNullableSlots(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tournaments/101/matches.json", r.URL.Path)
		w.Write([]byte(`[
			{"match": {"id": 1, "player1_id": 11, "player2_id": 12,
				"player1_prereq_match_id": null, "player2_prereq_match_id": null,
				"player1_is_prereq_match_loser": false, "player2_is_prereq_match_loser": false,
				"winner_id": 11, "underway_at": "2026-08-01T11:00:00Z"}},
			{"match": {"id": 3, "player1_id": null, "player2_id": null,
				"player1_prereq_match_id": 1, "player2_prereq_match_id": 2,
				"player1_is_prereq_match_loser": false, "player2_is_prereq_match_loser": true,
				"winner_id": null, "underway_at": null}}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", nil, 0)
	ms, err := c.Matches(context.Background(), "101")
	require.NoError(t, err)
	require.Len(t, ms, 2)

	seeded := ms[0]
	assert.Equal(t, "11", seeded.Slots[0].PlayerID)
	assert.Equal(t, "11", seeded.WinnerID)
	assert.True(t, seeded.Started)
	assert.True(t, seeded.Decided())

	dependent := ms[1]
	assert.Empty(t, dependent.Slots[0].PlayerID)
	assert.Equal(t, "1", dependent.Slots[0].PrereqMatchID)
	assert.True(t, dependent.Slots[1].WantsLoser)
	assert.False(t, dependent.Decided())
}

func TestParticipants_MapsIDToName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"participant": {"id": 11, "name": "Alice"}},
			{"participant": {"id": 12, "name": "Bruno"}}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", nil, 0)
	ps, err := c.Participants(context.Background(), "101")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"11": "Alice", "12": "Bruno"}, ps)
}

func TestClient_PropagatesProviderErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bad", nil, 0)
	_, err := c.Tournaments(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 401")
	assert.Equal(t, int32(1), calls.Load())
}
