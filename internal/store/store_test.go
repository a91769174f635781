package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/randutil"
)

// midHandSnapshot returns a snapshot taken on the flop with chips in the pot.
func midHandSnapshot(t *testing.T) game.Snapshot {
	t.Helper()
	tbl, err := game.NewTable(game.TableConfig{
		SmallBlind: 10,
		BigBlind:   20,
		Seats:      []game.SeatConfig{{Name: "alice", Chips: 1000}, {Name: "bob", Chips: 1000}, {Name: "carol", Chips: 500}},
	}, randutil.New(9), game.WithButton(0))
	require.NoError(t, err)
	_, err = tbl.StartHand()
	require.NoError(t, err)
	for tbl.Phase() == game.Preflop {
		legal, err := tbl.LegalActions(tbl.Actor())
		require.NoError(t, err)
		a := game.Call
		if _, ok := game.FindLegal(legal, game.Check); ok {
			a = game.Check
		}
		_, err = tbl.ApplyAction(tbl.Actor(), game.Decision{Action: a})
		require.NoError(t, err)
	}
	return tbl.Snapshot()
}

func newRedisStore(t *testing.T, opts ...RedisOption) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	s := NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}), opts...)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestStores(t *testing.T) {
	t.Parallel()

	stores := []struct {
		name string
		new  func(t *testing.T) SnapshotStore
	}{
		{"memory", func(t *testing.T) SnapshotStore { return NewMemory() }},
		{"file", func(t *testing.T) SnapshotStore { return NewFile(t.TempDir()) }},
		{"redis", func(t *testing.T) SnapshotStore {
			s, _ := newRedisStore(t)
			return s
		}},
	}

	for _, tt := range stores {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			s := tt.new(t)
			snap := midHandSnapshot(t)

			_, err := s.Load(ctx, "main")
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Save(ctx, "main", snap))
			got, err := s.Load(ctx, "main")
			require.NoError(t, err)
			assert.Equal(t, snap, got)

			// the loaded snapshot restores into a fresh table
			tbl, err := game.NewTable(game.TableConfig{SmallBlind: 10, BigBlind: 20}, randutil.New(1))
			require.NoError(t, err)
			require.NoError(t, tbl.Restore(got))
			assert.Equal(t, snap, tbl.Snapshot())

			require.NoError(t, s.Delete(ctx, "main"))
			_, err = s.Load(ctx, "main")
			require.ErrorIs(t, err, ErrNotFound)
			require.NoError(t, s.Delete(ctx, "main"), "deleting twice is fine")
		})
	}
}

func TestMemoryCopiesOnSave(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemory()
	snap := midHandSnapshot(t)
	want := snap.Board[0]
	require.NoError(t, s.Save(ctx, "main", snap))

	snap.Board[0] = snap.Board[1]
	got, err := s.Load(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, want, got.Board[0])
}

func TestRedisKeysAndTTL(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, mr := newRedisStore(t, WithPrefix("test:"), WithTTL(time.Minute))
	require.NoError(t, s.Save(ctx, "main", midHandSnapshot(t)))

	assert.True(t, mr.Exists("test:main"))
	assert.Equal(t, time.Minute, mr.TTL("test:main"))

	mr.FastForward(2 * time.Minute)
	_, err := s.Load(ctx, "main")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisCorruptValue(t *testing.T) {
	t.Parallel()

	s, mr := newRedisStore(t)
	require.NoError(t, mr.Set("holdem:snapshot:main", "{not json"))
	_, err := s.Load(context.Background(), "main")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestDialRedis(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	s, err := DialRedis(context.Background(), mr.Addr())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	mr.Close()
	_, err = DialRedis(context.Background(), mr.Addr())
	assert.Error(t, err)
}

func TestFileRejectsPathTableIDs(t *testing.T) {
	t.Parallel()

	s := NewFile(t.TempDir())
	for _, id := range []string{"", "../escape", "a/b"} {
		assert.Error(t, s.Save(context.Background(), id, game.Snapshot{}), id)
	}
}

func TestCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, s := range []SnapshotStore{NewMemory(), NewFile(t.TempDir())} {
		assert.ErrorIs(t, s.Save(ctx, "main", game.Snapshot{}), context.Canceled)
		_, err := s.Load(ctx, "main")
		assert.ErrorIs(t, err, context.Canceled)
	}
}
