package phh

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem/internal/fileutil"
	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/poker"
)

// Recorder builds a hand history from table events. Subscribe it to a table
// or host bus; each finished hand is written to Dir/<hand id>.phh when Dir is
// set.
type Recorder struct {
	dir    string
	table  string
	logger *log.Logger

	mu      sync.Mutex
	current *handBuilder
	last    *HandHistory
	err     error
}

type handBuilder struct {
	hh     *HandHistory
	player map[int]int // seat -> 1-based player index
	hole   map[int][]poker.Card
	facing int
}

// NewRecorder creates a recorder. An empty dir keeps histories in memory only.
func NewRecorder(dir, table string, logger *log.Logger) *Recorder {
	if logger == nil {
		logger = log.Default()
	}
	return &Recorder{dir: dir, table: table, logger: logger.WithPrefix("phh")}
}

// Last returns the most recently completed hand.
func (r *Recorder) Last() *HandHistory {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Err returns the last write error.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Path returns where the hand with id is written.
func (r *Recorder) Path(handID string) string {
	return filepath.Join(r.dir, handID+".phh")
}

func (r *Recorder) OnEvent(e game.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch ev := e.(type) {
	case game.HandStartedEvent:
		r.current = r.start(ev)
	case game.ActionAppliedEvent:
		if b := r.current; b != nil && b.hh.HandID == ev.HandID {
			b.hh.Actions = append(b.hh.Actions, FormatAction(b.player[ev.Seat], ev.Action, ev.BetTotal, b.facing))
			b.facing = max(b.facing, ev.BetTotal)
		}
	case game.PhaseAdvancedEvent:
		if b := r.current; b != nil && b.hh.HandID == ev.HandID {
			b.hh.Actions = append(b.hh.Actions, "d db "+cards(ev.Dealt))
			b.facing = 0
		}
	case game.HandEndedEvent:
		if b := r.current; b != nil && b.hh.HandID == ev.HandID {
			r.finish(b, ev)
			r.current = nil
		}
	}
}

func (r *Recorder) start(ev game.HandStartedEvent) *handBuilder {
	seats := make([]int, 0, len(ev.Stacks))
	for seat := range ev.Stacks {
		seats = append(seats, seat)
	}
	slices.Sort(seats)

	ts := ev.Timestamp().UTC()
	hh := &HandHistory{
		Variant:   "NT",
		Table:     r.table,
		SeatCount: len(seats),
		HandID:    ev.HandID,
		Time:      ts.Format("15:04:05"),
		TimeZone:  "UTC",
		Day:       ts.Day(),
		Month:     int(ts.Month()),
		Year:      ts.Year(),
		StartedAt: ts,

		HandNumber: ev.HandNumber,
		DealerSeat: ev.Dealer + 1,
	}
	b := &handBuilder{hh: hh, player: make(map[int]int, len(seats)), hole: ev.Hole}

	for i, seat := range seats {
		b.player[seat] = i + 1
		hh.Seats = append(hh.Seats, seat+1)
		hh.Players = append(hh.Players, ev.Names[seat])
		hh.StartingStacks = append(hh.StartingStacks, ev.Stacks[seat])
		hh.Antes = append(hh.Antes, 0)
		hh.BlindsOrStraddles = append(hh.BlindsOrStraddles, 0)
	}
	for _, bp := range ev.Blinds {
		if idx, ok := b.player[bp.Seat]; ok {
			hh.BlindsOrStraddles[idx-1] = bp.Amount
		}
		b.facing = max(b.facing, bp.Amount)
	}
	hh.MinBet = b.facing
	for _, seat := range seats {
		hh.Actions = append(hh.Actions, fmt.Sprintf("d dh p%d %s", b.player[seat], cards(ev.Hole[seat])))
	}
	return b
}

func (r *Recorder) finish(b *handBuilder, ev game.HandEndedEvent) {
	hh := b.hh
	hh.Reason = string(ev.Settlement.Reason)
	hh.Showdown = ev.Settlement.Reason == game.ReasonShowdown
	if hh.Showdown {
		seats := make([]int, 0, len(ev.Settlement.Evaluations))
		for seat := range ev.Settlement.Evaluations {
			seats = append(seats, seat)
		}
		slices.Sort(seats)
		for _, seat := range seats {
			hh.Actions = append(hh.Actions, fmt.Sprintf("p%d sm %s", b.player[seat], cards(b.hole[seat])))
		}
	}

	hh.FinishingStacks = make([]int, len(hh.Seats))
	hh.Winnings = make([]int, len(hh.Seats))
	for seat, idx := range b.player {
		hh.FinishingStacks[idx-1] = ev.Stacks[seat]
		hh.Winnings[idx-1] = ev.Settlement.AmountFor(seat)
	}
	r.last = hh

	if r.dir == "" {
		return
	}
	path := r.Path(hh.HandID)
	err := fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error { return Encode(w, hh) })
	if err != nil {
		r.err = err
		r.logger.Error("Failed to write hand history", "hand", hh.HandID, "error", err)
		return
	}
	r.logger.Debug("Wrote hand history", "hand", hh.HandID, "path", path)
}
