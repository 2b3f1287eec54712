package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/bracket-bet-platform/internal/bracket"
	"github.com/radieske/bracket-bet-platform/pkg/contracts/events"
)

type fakeProvider struct {
	tournaments []bracket.Tournament
	matches     map[string][]bracket.Match
	names       map[string]map[string]string
	failMatches map[string]bool
}

func (f *fakeProvider) Tournaments(ctx context.Context) ([]bracket.Tournament, error) {
	return f.tournaments, nil
}

func (f *fakeProvider) Matches(ctx context.Context, id string) ([]bracket.Match, error) {
	if f.failMatches[id] {
		return nil, errors.New("provider unavailable")
	}
	return f.matches[id], nil
}

func (f *fakeProvider) Participants(ctx context.Context, id string) (map[string]string, error) {
	return f.names[id], nil
}

type fakeStore struct {
	tournaments map[string]bracket.Tournament
	winners     map[string]map[string]string // tournamentID -> matchID -> winner
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tournaments: map[string]bracket.Tournament{},
		winners:     map[string]map[string]string{},
	}
}

func (f *fakeStore) UpsertTournament(ctx context.Context, t bracket.Tournament) error {
	if prev, ok := f.tournaments[t.ID]; ok {
		t.Finished = t.Finished || prev.Finished
	}
	f.tournaments[t.ID] = t
	return nil
}

func (f *fakeStore) UpsertMatches(ctx context.Context, matches []bracket.Match) error {
	for _, m := range matches {
		if m.WinnerID == "" {
			continue
		}
		if f.winners[m.TournamentID] == nil {
			f.winners[m.TournamentID] = map[string]string{}
		}
		f.winners[m.TournamentID][m.ID] = m.WinnerID
	}
	return nil
}

func (f *fakeStore) UpsertParticipants(ctx context.Context, id string, names map[string]string) error {
	return nil
}

func (f *fakeStore) DecidedWinners(ctx context.Context, id string) (map[string]string, error) {
	out := map[string]string{}
	for m, w := range f.winners[id] {
		out[m] = w
	}
	return out, nil
}

type fakePublisher struct{ updates []events.BracketUpdate }

func (f *fakePublisher) PublishBracketUpdate(ctx context.Context, e events.BracketUpdate) error {
	f.updates = append(f.updates, e)
	return nil
}

func match(id, tid, p1, p2, winner string, started bool) bracket.Match {
	return bracket.Match{
		ID: id, TournamentID: tid,
		Slots:    [2]bracket.Slot{{PlayerID: p1}, {PlayerID: p2}},
		WinnerID: winner,
		Started:  started,
	}
}

func TestRunOnce_PublishesOnlyNewlyDecided(t *testing.T) {
	prov := &fakeProvider{
		tournaments: []bracket.Tournament{{ID: "t1", Name: "Copa", SubscriptionsClosed: true}},
		matches: map[string][]bracket.Match{"t1": {
			match("m1", "t1", "A", "B", "A", true),
			match("m2", "t1", "C", "D", "", false),
		}},
		names: map[string]map[string]string{"t1": {"A": "Alice"}},
	}
	store := newFakeStore()
	pub := &fakePublisher{}
	s := &Sync{Log: zap.NewNop(), Provider: prov, Store: store, Publisher: pub}

	require.NoError(t, s.RunOnce(context.Background()))
	require.Len(t, pub.updates, 1)
	assert.Equal(t, []string{"m1"}, pub.updates[0].DecidedIDs)

	// Segundo pass sem mudanças: nada a anunciar.
	require.NoError(t, s.RunOnce(context.Background()))
	assert.Len(t, pub.updates, 1)

	// m2 decide: só ela aparece no próximo evento.
	prov.matches["t1"][1].WinnerID = "C"
	require.NoError(t, s.RunOnce(context.Background()))
	require.Len(t, pub.updates, 2)
	assert.Equal(t, []string{"m2"}, pub.updates[1].DecidedIDs)
}

func TestRunOnce_DerivesStartedFromMatches(t *testing.T) {
	prov := &fakeProvider{
		tournaments: []bracket.Tournament{{ID: "t1", Name: "Copa"}},
		matches: map[string][]bracket.Match{"t1": {
			match("m1", "t1", "A", "B", "", true),
		}},
	}
	store := newFakeStore()
	s := &Sync{Log: zap.NewNop(), Provider: prov, Store: store}

	require.NoError(t, s.RunOnce(context.Background()))
	assert.True(t, store.tournaments["t1"].Started)
	assert.False(t, store.tournaments["t1"].BetsOpen())
}

func TestRunOnce_AnnouncesFinishedOnce(t *testing.T) {
	prov := &fakeProvider{
		tournaments: []bracket.Tournament{{ID: "t1", Name: "Copa", Finished: true}},
		matches: map[string][]bracket.Match{"t1": {
			match("m1", "t1", "A", "B", "A", true),
		}},
	}
	store := newFakeStore()
	pub := &fakePublisher{}
	s := &Sync{Log: zap.NewNop(), Provider: prov, Store: store, Publisher: pub}

	require.NoError(t, s.RunOnce(context.Background()))
	require.NoError(t, s.RunOnce(context.Background()))
	require.Len(t, pub.updates, 1)
	assert.True(t, pub.updates[0].Finished)
}

func TestRunOnce_IsolatesTournamentFailures(t *testing.T) {
	prov := &fakeProvider{
		tournaments: []bracket.Tournament{
			{ID: "t0", Name: "Broken"},
			{ID: "t1", Name: "Copa"},
		},
		matches: map[string][]bracket.Match{"t1": {
			match("m1", "t1", "A", "B", "A", true),
		}},
		failMatches: map[string]bool{"t0": true},
	}
	store := newFakeStore()
	var stages []string
	s := &Sync{Log: zap.NewNop(), Provider: prov, Store: store, Publisher: &fakePublisher{}}
	s.OnError = func(stage string) { stages = append(stages, stage) }

	require.NoError(t, s.RunOnce(context.Background()))
	assert.Contains(t, stages, "tournament")
	_, ok := store.tournaments["t1"]
	assert.True(t, ok)
}
