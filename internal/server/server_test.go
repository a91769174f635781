package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/host"
	"github.com/lox/holdem/internal/policy"
	"github.com/lox/holdem/internal/randutil"
	"github.com/lox/holdem/poker"
)

// newTestServer seats alice and bob as humans and carol as a bot, with
// alice on the button and first to act.
func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})

	tbl, err := game.NewTable(game.TableConfig{
		SmallBlind: 10,
		BigBlind:   20,
		Seats: []game.SeatConfig{
			{Name: "alice", Chips: 1000, Human: true},
			{Name: "bob", Chips: 1000, Human: true},
			{Name: "carol", Chips: 1000},
		},
	}, randutil.New(5), game.WithButton(0))
	require.NoError(t, err)

	bot, err := policy.New(policy.DefaultConfig(), randutil.New(6))
	require.NoError(t, err)
	runner := host.New(tbl, host.Options{
		Clock:    quartz.NewMock(t),
		Logger:   logger,
		Policies: map[int]*policy.Policy{2: bot},
	})
	t.Cleanup(runner.Close)
	_, err = runner.StartHand()
	require.NoError(t, err)

	s := New(runner, logger)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func dial(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

// readUntil skips messages until match accepts one.
func readUntil(t *testing.T, conn *websocket.Conn, match func(Message) bool) Message {
	t.Helper()
	for {
		if msg := read(t, conn); match(msg) {
			return msg
		}
	}
}

func actionEvent(t *testing.T, msg Message) game.ActionAppliedEvent {
	t.Helper()
	var ev game.ActionAppliedEvent
	require.NoError(t, json.Unmarshal(msg.Data, &ev))
	return ev
}

func isAction(msg Message) bool {
	return msg.Type == MessageTypeEvent && msg.Event == game.EventTypeActionApplied
}

func TestInitialSnapshotShowsOwnCardsOnly(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t)

	msg := read(t, dial(t, ts, "?seat=0"))
	require.Equal(t, MessageTypeSnapshot, msg.Type)
	require.NotNil(t, msg.Snapshot)
	require.NotNil(t, msg.Seat)
	assert.Equal(t, 0, *msg.Seat)
	assert.Len(t, msg.Snapshot.Seats[0].Hole, 2)
	assert.Empty(t, msg.Snapshot.Seats[1].Hole)
	assert.Empty(t, msg.Snapshot.Seats[2].Hole)
	assert.Empty(t, msg.Snapshot.Deck)
	assert.NotEmpty(t, msg.Legal, "alice is first to act")

	msg = read(t, dial(t, ts, "?seat=1"))
	assert.Len(t, msg.Snapshot.Seats[1].Hole, 2)
	assert.Empty(t, msg.Snapshot.Seats[0].Hole)
	assert.Empty(t, msg.Legal)

	msg = read(t, dial(t, ts, ""))
	assert.Equal(t, -1, *msg.Seat)
	for _, s := range msg.Snapshot.Seats {
		assert.Empty(t, s.Hole)
	}
}

func TestActionsAreBroadcast(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t)

	alice := dial(t, ts, "?seat=0")
	bob := dial(t, ts, "?seat=1")
	read(t, alice)
	read(t, bob)

	require.NoError(t, alice.WriteJSON(Message{Type: MessageTypeAction, Action: game.Raise, Amount: 60}))

	ev := actionEvent(t, readUntil(t, bob, isAction))
	assert.Equal(t, 0, ev.Seat)
	assert.Equal(t, game.Raise, ev.Action)
	assert.Equal(t, 60, ev.BetTotal)

	snap := readUntil(t, bob, func(m Message) bool { return m.Type == MessageTypeSnapshot })
	assert.Equal(t, 1, snap.Snapshot.Actor)
	assert.NotEmpty(t, snap.Legal)

	ev = actionEvent(t, readUntil(t, alice, isAction))
	assert.Equal(t, 60, ev.BetTotal)
}

func TestRejectedActionsReturnErrors(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t)

	bob := dial(t, ts, "?seat=1")
	read(t, bob)
	require.NoError(t, bob.WriteJSON(Message{Type: MessageTypeAction, Action: game.Check}))
	msg := readUntil(t, bob, func(m Message) bool { return m.Type == MessageTypeError })
	assert.Contains(t, msg.Error, game.ErrNotYourTurn.Error())

	alice := dial(t, ts, "?seat=0")
	read(t, alice)
	require.NoError(t, alice.WriteJSON(Message{Type: MessageTypeAction, Action: game.Raise, Amount: 5}))
	msg = readUntil(t, alice, func(m Message) bool { return m.Type == MessageTypeError })
	assert.Contains(t, msg.Error, "seat 0 raise 5")

	watcher := dial(t, ts, "")
	read(t, watcher)
	require.NoError(t, watcher.WriteJSON(Message{Type: MessageTypeAction, Action: game.Fold}))
	msg = readUntil(t, watcher, func(m Message) bool { return m.Type == MessageTypeError })
	assert.Equal(t, errSpectator.Error(), msg.Error)

	require.NoError(t, watcher.WriteJSON(Message{Type: "shout"}))
	msg = readUntil(t, watcher, func(m Message) bool { return m.Type == MessageTypeError })
	assert.Contains(t, msg.Error, "shout")
}

func TestRejectsBadSeats(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t)

	for _, query := range []string{"?seat=2", "?seat=9", "?seat=-3", "?seat=abc"} {
		url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws" + query
		_, resp, err := websocket.DefaultDialer.Dial(url, nil)
		require.ErrorIs(t, err, websocket.ErrBadHandshake, query)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, query)
		_ = resp.Body.Close()
	}
}

func TestDisconnectFoldsSeat(t *testing.T) {
	t.Parallel()
	s, ts := newTestServer(t)

	alice := dial(t, ts, "?seat=0")
	bob := dial(t, ts, "?seat=1")
	read(t, alice)
	read(t, bob)
	require.Eventually(t, func() bool { return s.Connections() == 2 }, time.Second, 10*time.Millisecond)

	require.NoError(t, bob.Close())

	ev := actionEvent(t, readUntil(t, alice, isAction))
	assert.Equal(t, 1, ev.Seat)
	assert.Equal(t, game.Fold, ev.Action)
	assert.True(t, ev.Forced)
	assert.Eventually(t, func() bool { return s.Connections() == 1 }, time.Second, 10*time.Millisecond)
}

func TestReconnectReplacesConnection(t *testing.T) {
	t.Parallel()
	s, ts := newTestServer(t)

	first := dial(t, ts, "?seat=0")
	read(t, first)
	second := dial(t, ts, "?seat=0")
	read(t, second)

	require.NoError(t, first.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		if _, _, err := first.ReadMessage(); err != nil {
			break
		}
	}
	assert.Eventually(t, func() bool { return s.Connections() == 1 }, time.Second, 10*time.Millisecond)

	// the seat survives the handover
	require.NoError(t, second.WriteJSON(Message{Type: MessageTypeAction, Action: game.Call}))
	ev := actionEvent(t, readUntil(t, second, isAction))
	assert.Equal(t, 0, ev.Seat)
	assert.Equal(t, game.Call, ev.Action)
}

func TestRedactEvent(t *testing.T) {
	t.Parallel()

	started := game.HandStartedEvent{Hole: map[int][]poker.Card{
		0: poker.MustParseCards("As Ah"),
		1: poker.MustParseCards("Ks Kh"),
	}}
	got := redactEvent(started, 1).(game.HandStartedEvent)
	assert.Equal(t, map[int][]poker.Card{1: poker.MustParseCards("Ks Kh")}, got.Hole)
	assert.Nil(t, redactEvent(started, -1).(game.HandStartedEvent).Hole)
	assert.Len(t, started.Hole, 2, "original is untouched")

	applied := game.ActionAppliedEvent{Seat: 2, Action: game.Check, Intent: game.IntentCheckRaise, Reasoning: "trap"}
	assert.Equal(t, "trap", redactEvent(applied, 2).(game.ActionAppliedEvent).Reasoning)
	hidden := redactEvent(applied, 0).(game.ActionAppliedEvent)
	assert.Empty(t, hidden.Reasoning)
	assert.Equal(t, game.IntentNone, hidden.Intent)
}

func TestOnEventEncodesPerSeat(t *testing.T) {
	t.Parallel()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	s := &Server{logger: logger, conns: make(map[*Connection]struct{}), seats: make(map[int]*Connection)}

	conns := make(map[int]*Connection)
	for _, seat := range []int{spectator, 0, 1, 1} {
		c := &Connection{seat: seat, logger: logger, send: make(chan *Message, 4)}
		s.conns[c] = struct{}{}
		if _, ok := conns[seat]; !ok {
			conns[seat] = c
		}
	}

	// seat 0 holds a card that cannot be encoded, so only its message fails
	s.OnEvent(game.HandStartedEvent{HandID: "h1", Hole: map[int][]poker.Card{
		0: {{}, {}},
		1: poker.MustParseCards("Ks Kh"),
	}})

	assert.Empty(t, conns[0].send)
	for c := range s.conns {
		if c.seat == 0 {
			continue
		}
		require.Len(t, c.send, 1, "seat %d", c.seat)
		msg := <-c.send
		assert.Equal(t, game.EventTypeHandStarted, msg.Event)
		var ev game.HandStartedEvent
		require.NoError(t, json.Unmarshal(msg.Data, &ev))
		if c.seat == 1 {
			assert.Equal(t, poker.MustParseCards("Ks Kh"), ev.Hole[1])
		} else {
			assert.Empty(t, ev.Hole)
		}
	}
}
