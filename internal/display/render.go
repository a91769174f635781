// Package display renders tables and events for a terminal.
package display

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/poker"
)

// Styles used when rendering
type Styles struct {
	Header    lipgloss.Style
	Phase     lipgloss.Style
	Pot       lipgloss.Style
	Actor     lipgloss.Style
	Seat      lipgloss.Style
	Muted     lipgloss.Style
	Winner    lipgloss.Style
	Action    lipgloss.Style
	RedCard   lipgloss.Style
	BlackCard lipgloss.Style
	Box       lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Header: r.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true).
			Padding(0, 1),
		Phase:  r.NewStyle().Foreground(lipgloss.Color("#96CEB4")).Bold(true),
		Pot:    r.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true),
		Actor:  r.NewStyle().Foreground(lipgloss.Color("#FFEAA7")).Bold(true),
		Seat:   r.NewStyle().Foreground(lipgloss.Color("#FAFAFA")),
		Muted:  r.NewStyle().Foreground(lipgloss.Color("#626262")),
		Winner: r.NewStyle().Foreground(lipgloss.Color("#96CEB4")).Bold(true),
		Action: r.NewStyle().Foreground(lipgloss.Color("#FFD700")),
		RedCard: r.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true),
		BlackCard: r.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true),
		Box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1),
	}
}

// Renderer turns snapshots and events into styled text.
type Renderer struct {
	styles Styles
}

// Option configures a Renderer
type Option func(*lipgloss.Renderer)

// WithProfile forces a colour profile. termenv.Ascii disables styling.
func WithProfile(p termenv.Profile) Option {
	return func(r *lipgloss.Renderer) { r.SetColorProfile(p) }
}

// New creates a renderer whose colour support is detected from w.
func New(w io.Writer, opts ...Option) *Renderer {
	lr := lipgloss.NewRenderer(w)
	for _, opt := range opts {
		opt(lr)
	}
	return &Renderer{styles: newStyles(lr)}
}

// Cards renders cards with suit glyphs, red suits in red.
func (d *Renderer) Cards(cards []poker.Card) string {
	if len(cards) == 0 {
		return d.styles.Muted.Render("--")
	}
	parts := make([]string, len(cards))
	for i, c := range cards {
		style := d.styles.BlackCard
		if c.IsRed() {
			style = d.styles.RedCard
		}
		parts[i] = style.Render(c.Pretty())
	}
	return strings.Join(parts, " ")
}

// Table renders a snapshot. Redact it first for anyone but the dealer.
func (d *Renderer) Table(snap game.Snapshot) string {
	header := d.styles.Header.Render(fmt.Sprintf("Hand #%d", snap.HandNumber))
	status := fmt.Sprintf("%s  Board: %s  %s",
		d.styles.Phase.Render(strings.ToUpper(snap.Phase.String())),
		d.Cards(snap.Board),
		d.styles.Pot.Render(fmt.Sprintf("Pot: %d", snap.Pot)))

	var rows []string
	for _, s := range snap.Seats {
		if s.Left {
			continue
		}
		rows = append(rows, d.seatRow(snap, s))
	}

	parts := []string{lipgloss.JoinHorizontal(lipgloss.Top, header, " ", status), ""}
	parts = append(parts, rows...)
	if st := snap.Settlement; st != nil && snap.Phase == game.Showdown {
		parts = append(parts, "", d.settlement(*st, seatNames(snap.Seats)))
	}
	return d.styles.Box.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (d *Renderer) seatRow(snap game.Snapshot, s game.Seat) string {
	var badges []string
	if s.Dealer {
		badges = append(badges, "D")
	}
	if s.SmallBlind {
		badges = append(badges, "SB")
	}
	if s.BigBlind {
		badges = append(badges, "BB")
	}
	badge := ""
	if len(badges) > 0 {
		badge = " [" + strings.Join(badges, "/") + "]"
	}

	marker := "  "
	style := d.styles.Seat
	switch {
	case s.ID == snap.Actor:
		marker = "> "
		style = d.styles.Actor
	case s.Status == game.Folded || s.Status == game.Out:
		style = d.styles.Muted
	}

	hole := d.styles.Muted.Render("?? ??")
	if len(s.Hole) > 0 {
		hole = d.Cards(s.Hole)
	} else if s.Status == game.Out {
		hole = ""
	}

	line := fmt.Sprintf("%s%-12s %6d", marker, s.Name+badge, s.Chips)
	if s.Bet > 0 {
		line += fmt.Sprintf("  bet %d", s.Bet)
	}
	if s.Status != game.Active {
		line += "  " + s.Status.String()
	}
	return style.Render(line) + "  " + hole
}

func (d *Renderer) settlement(st game.Settlement, names map[int]string) string {
	lines := make([]string, 0, len(st.Payouts))
	for _, p := range st.Payouts {
		line := fmt.Sprintf("%s wins %d", nameOf(names, p.Seat), p.Amount)
		if p.Hand != nil && st.Reason == game.ReasonShowdown {
			line += " with " + p.Hand.Describe()
		}
		lines = append(lines, d.styles.Winner.Render(line))
	}
	return strings.Join(lines, "\n")
}

// Printer writes one line per table event. It tracks seat names from the
// hand start and only shows hole cards for Viewer; a Viewer of -1 shows
// every hand.
type Printer struct {
	mu     sync.Mutex
	w      io.Writer
	d      *Renderer
	viewer int
	names  map[int]string
}

// NewPrinter creates an event printer.
func NewPrinter(w io.Writer, d *Renderer, viewer int) *Printer {
	return &Printer{w: w, d: d, viewer: viewer, names: make(map[int]string)}
}

func (p *Printer) OnEvent(e game.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if line := p.line(e); line != "" {
		fmt.Fprintln(p.w, line)
	}
}

func (p *Printer) line(e game.Event) string {
	st := p.d.styles
	switch ev := e.(type) {
	case game.HandStartedEvent:
		p.names = ev.Names
		var b strings.Builder
		b.WriteString(st.Header.Render(fmt.Sprintf("Hand #%d", ev.HandNumber)))
		fmt.Fprintf(&b, " %s  dealer %s", st.Muted.Render(ev.HandID), nameOf(p.names, ev.Dealer))
		for _, bp := range ev.Blinds {
			fmt.Fprintf(&b, "\n  %s posts %d", nameOf(p.names, bp.Seat), bp.Amount)
		}
		seats := make([]int, 0, len(ev.Hole))
		for seat := range ev.Hole {
			seats = append(seats, seat)
		}
		sort.Ints(seats)
		for _, seat := range seats {
			if p.viewer == -1 || p.viewer == seat {
				fmt.Fprintf(&b, "\n  %s: %s", nameOf(p.names, seat), p.d.Cards(ev.Hole[seat]))
			}
		}
		return b.String()

	case game.ActionAppliedEvent:
		what := ev.Action.String()
		switch ev.Action {
		case game.Call:
			what = fmt.Sprintf("calls %d", ev.Added)
		case game.Raise:
			what = fmt.Sprintf("raises to %d", ev.BetTotal)
		case game.AllIn:
			what = fmt.Sprintf("is all in for %d", ev.BetTotal)
		case game.Check:
			what = "checks"
		case game.Fold:
			what = "folds"
		}
		if ev.Forced {
			what += " (forced)"
		}
		return fmt.Sprintf("  %s %s  %s", nameOf(p.names, ev.Seat), st.Action.Render(what), st.Muted.Render(fmt.Sprintf("pot %d", ev.Pot)))

	case game.PhaseAdvancedEvent:
		return fmt.Sprintf("%s %s  %s",
			st.Phase.Render(strings.ToUpper(ev.Phase.String())),
			p.d.Cards(ev.Board),
			st.Pot.Render(fmt.Sprintf("pot %d", ev.Pot)))

	case game.HandEndedEvent:
		out := p.d.settlement(ev.Settlement, p.names)
		if ev.Settlement.Reason == game.ReasonShowdown {
			seats := make([]int, 0, len(ev.Settlement.Evaluations))
			for seat := range ev.Settlement.Evaluations {
				seats = append(seats, seat)
			}
			sort.Ints(seats)
			var shown []string
			for _, seat := range seats {
				ev := ev.Settlement.Evaluations[seat]
				shown = append(shown, fmt.Sprintf("  %s shows %s (%s)", nameOf(p.names, seat), p.d.Cards(ev.BestFive[:]), ev.Describe()))
			}
			out = strings.Join(append(shown, out), "\n")
		}
		return out
	}
	return ""
}

func seatNames(seats []game.Seat) map[int]string {
	names := make(map[int]string, len(seats))
	for _, s := range seats {
		names[s.ID] = s.Name
	}
	return names
}

func nameOf(names map[int]string, seat int) string {
	if n, ok := names[seat]; ok && n != "" {
		return n
	}
	return fmt.Sprintf("seat%d", seat+1)
}
