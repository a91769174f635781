// Package host drives a table in real time. A Runner owns one game.Table and
// is the only thing that mutates it: bot seats are played by their policy
// after a thinking delay, human seats submit decisions and are folded when
// they time out or disconnect.
package host

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/policy"
	"github.com/lox/holdem/internal/store"
)

var (
	// ErrBotSeat is returned when a decision is submitted for a seat a policy plays.
	ErrBotSeat = errors.New("seat is played by a bot")
	// ErrHumanSeat is returned by Simulate when a seat has no policy.
	ErrHumanSeat = errors.New("seat has no policy")
)

const saveTimeout = 2 * time.Second

// Options configures a Runner
type Options struct {
	Clock  quartz.Clock
	Logger *log.Logger
	// Policies maps bot seat IDs to the policy that plays them.
	Policies map[int]*policy.Policy
	// ActionTimeout folds a human seat that has not acted in time. Zero waits forever.
	ActionTimeout time.Duration
	// NextHandDelay starts the next hand automatically after one ends. Zero
	// leaves dealing to the caller.
	NextHandDelay time.Duration
	// Store receives a snapshot after every state change when set.
	Store   store.SnapshotStore
	TableID string
}

// Runner serialises all access to a table.
type Runner struct {
	mu       sync.Mutex
	table    *game.Table
	policies map[int]*policy.Policy
	clock    quartz.Clock
	logger   *log.Logger
	timeout  time.Duration
	nextHand time.Duration
	bus      *game.SimpleEventBus
	store    store.SnapshotStore
	tableID  string

	// gen identifies the current decision point. Timers carry the value
	// they were scheduled with and do nothing when it has moved on.
	gen    uint64
	timer  *quartz.Timer
	closed bool
}

// New wraps table. Events the table publishes are republished on the
// runner's own bus; subscribers run while the runner is locked and must not
// call back into it synchronously.
func New(table *game.Table, opts Options) *Runner {
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	r := &Runner{
		table:    table,
		policies: make(map[int]*policy.Policy, len(opts.Policies)),
		clock:    opts.Clock,
		logger:   opts.Logger.WithPrefix("host"),
		timeout:  opts.ActionTimeout,
		nextHand: opts.NextHandDelay,
		bus:      game.NewEventBus(),
		store:    opts.Store,
		tableID:  opts.TableID,
	}
	if r.tableID == "" {
		r.tableID = "main"
	}
	for seat, p := range opts.Policies {
		r.policies[seat] = p
	}
	table.Bus().Subscribe(game.SubscriberFunc(r.bus.Publish))
	return r
}

// Subscribe registers an observer for table events.
func (r *Runner) Subscribe(s game.EventSubscriber) { r.bus.Subscribe(s) }

// Unsubscribe removes an observer.
func (r *Runner) Unsubscribe(s game.EventSubscriber) { r.bus.Unsubscribe(s) }

// IsBot reports whether a policy plays seat.
func (r *Runner) IsBot(seat int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.policies[seat]
	return ok
}

// SeatCount returns the number of seats at the table.
func (r *Runner) SeatCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.table.SeatCount()
}

// Snapshot returns a copy of the table state.
func (r *Runner) Snapshot() game.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.table.Snapshot()
}

// Observe returns the snapshot as seat may see it and, when seat is on turn,
// its legal actions. A seat of -1 observes as a spectator.
func (r *Runner) Observe(seat int) (game.Snapshot, []game.LegalAction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := r.table.Snapshot().Redact(seat)
	if seat < 0 {
		return snap, nil
	}
	legal, _ := r.table.LegalActions(seat)
	return snap, legal
}

// View returns the decision view for seat.
func (r *Runner) View(seat int) (game.SeatView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.table.View(seat)
}

// Restore loads a snapshot and schedules whoever is to act.
func (r *Runner) Restore(snap game.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.table.Restore(snap); err != nil {
		return err
	}
	r.scheduleLocked()
	if !snap.Phase.Betting() {
		r.scheduleNextHandLocked()
	}
	return nil
}

// Resume restores the snapshot saved for this table, if any. It reports
// whether one was found.
func (r *Runner) Resume(ctx context.Context) (bool, error) {
	if r.store == nil {
		return false, nil
	}
	snap, err := r.store.Load(ctx, r.tableID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := r.Restore(snap); err != nil {
		return false, err
	}
	r.logger.Info("Resumed table", "table", r.tableID, "hand", snap.HandID, "phase", snap.Phase)
	return true, nil
}

// StartHand deals a new hand and schedules the first actor.
func (r *Runner) StartHand() (game.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.startHandLocked()
}

func (r *Runner) startHandLocked() (game.Snapshot, error) {
	snap, err := r.table.StartHand()
	if err != nil {
		r.logError("start hand", err)
		return game.Snapshot{}, err
	}
	r.logger.Info("Hand started", "hand", snap.HandID, "number", snap.HandNumber, "dealer", snap.Dealer)
	r.saveLocked()
	r.scheduleLocked()
	// blinds alone can settle a hand when they put everyone all in
	if !r.table.Phase().Betting() {
		r.scheduleNextHandLocked()
	}
	return snap, nil
}

// Submit applies a decision from a human seat.
func (r *Runner) Submit(seat int, d game.Decision) (game.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.policies[seat]; ok {
		return game.Result{}, fmt.Errorf("seat %d: %w", seat, ErrBotSeat)
	}
	res, err := r.table.ApplyAction(seat, d)
	if err != nil {
		r.logError("submit", err, "seat", seat)
		return res, err
	}
	r.logger.Info("Action", "seat", seat, "action", d.Tag())
	r.afterLocked(res)
	return res, nil
}

// Disconnect folds seat immediately, whether or not it is its turn.
func (r *Runner) Disconnect(seat int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.forceFoldLocked(seat, "disconnected")
}

// Close stops pending timers. Later timers never fire.
func (r *Runner) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.gen++
	r.stopTimerLocked()
}

func (r *Runner) forceFoldLocked(seat int, why string) error {
	res, err := r.table.ForceFold(seat)
	if err != nil {
		r.logError("force fold", err, "seat", seat)
		return err
	}
	r.logger.Warn("Seat folded", "seat", seat, "reason", why)
	r.afterLocked(res)
	return nil
}

func (r *Runner) afterLocked(res game.Result) {
	r.saveLocked()
	if res.HandComplete {
		r.gen++
		r.stopTimerLocked()
		if res.Settlement != nil {
			r.logger.Info("Hand complete", "reason", res.Settlement.Reason, "pot", res.Settlement.Pot, "winners", res.Settlement.Winners())
		}
		r.scheduleNextHandLocked()
		return
	}
	r.scheduleLocked()
}

// scheduleLocked starts a new decision point for the current actor.
func (r *Runner) scheduleLocked() {
	r.gen++
	r.stopTimerLocked()
	if r.closed {
		return
	}
	actor := r.table.Actor()
	if actor < 0 {
		return
	}
	gen := r.gen
	if p, ok := r.policies[actor]; ok {
		delay := p.ThinkDelay()
		r.logger.Debug("Bot thinking", "seat", actor, "delay", delay)
		r.timer = r.clock.AfterFunc(delay, func() { r.botTurn(gen, actor) })
		return
	}
	if r.timeout > 0 {
		r.timer = r.clock.AfterFunc(r.timeout, func() { r.timeoutTurn(gen, actor) })
	}
}

func (r *Runner) scheduleNextHandLocked() {
	if r.closed || r.nextHand <= 0 || r.table.FundedSeats() < 2 {
		return
	}
	gen := r.gen
	r.timer = r.clock.AfterFunc(r.nextHand, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if gen != r.gen || r.closed {
			return
		}
		_, _ = r.startHandLocked()
	})
}

func (r *Runner) saveLocked() {
	if r.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := r.store.Save(ctx, r.tableID, r.table.Snapshot()); err != nil {
		r.logger.Warn("Failed to save snapshot", "table", r.tableID, "error", err)
	}
}

func (r *Runner) stopTimerLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

func (r *Runner) botTurn(gen uint64, seat int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen || r.closed {
		return
	}
	if err := r.playBotLocked(seat); err != nil && !errors.Is(err, game.ErrInvariantBroken) {
		_ = r.forceFoldLocked(seat, "rejected")
	}
}

func (r *Runner) timeoutTurn(gen uint64, seat int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen || r.closed {
		return
	}
	_ = r.forceFoldLocked(seat, "timeout")
}

func (r *Runner) playBotLocked(seat int) error {
	p := r.policies[seat]
	view, err := r.table.View(seat)
	if err != nil {
		r.logError("view", err, "seat", seat)
		return err
	}
	d := p.Decide(view)
	r.logger.Debug("Bot decided", "seat", seat, "action", d.Tag(), "reasoning", d.Reasoning)
	res, err := r.table.ApplyAction(seat, d)
	if err != nil {
		r.logError("bot action", err, "seat", seat, "action", d.Tag())
		return err
	}
	r.afterLocked(res)
	return nil
}

func (r *Runner) logError(op string, err error, kv ...any) {
	kv = append([]any{"op", op, "error", err}, kv...)
	if errors.Is(err, game.ErrInvariantBroken) {
		r.logger.Error("Table halted", kv...)
		return
	}
	r.logger.Warn("Rejected", kv...)
}

// Summary is the outcome of a simulation
type Summary struct {
	Hands  int
	Stacks map[int]int
}

// Simulate plays up to hands hands with no delays. Every funded seat must
// have a policy. It stops early when fewer than two seats have chips.
func (r *Runner) Simulate(ctx context.Context, hands int) (Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	r.stopTimerLocked()

	sum := Summary{Stacks: make(map[int]int)}
	for sum.Hands < hands {
		if err := ctx.Err(); err != nil {
			return r.summaryLocked(sum), err
		}
		if r.table.FundedSeats() < 2 {
			break
		}
		snap, err := r.table.StartHand()
		if err != nil {
			r.logError("start hand", err)
			return r.summaryLocked(sum), err
		}
		for actor := r.table.Actor(); actor >= 0; actor = r.table.Actor() {
			p, ok := r.policies[actor]
			if !ok {
				return r.summaryLocked(sum), fmt.Errorf("seat %d: %w", actor, ErrHumanSeat)
			}
			view, err := r.table.View(actor)
			if err != nil {
				return r.summaryLocked(sum), err
			}
			d := p.Decide(view)
			if _, err := r.table.ApplyAction(actor, d); err != nil {
				r.logError("bot action", err, "seat", actor, "action", d.Tag())
				return r.summaryLocked(sum), err
			}
		}
		sum.Hands++
		if st, ok := r.table.LastSettlement(); ok {
			r.logger.Debug("Hand complete", "hand", snap.HandID, "reason", st.Reason, "pot", st.Pot, "winners", st.Winners())
		}
	}
	r.gen++
	return r.summaryLocked(sum), nil
}

func (r *Runner) summaryLocked(sum Summary) Summary {
	for i := 0; i < r.table.SeatCount(); i++ {
		if s, err := r.table.Seat(i); err == nil && !s.Left {
			sum.Stacks[i] = s.Chips
		}
	}
	return sum
}
