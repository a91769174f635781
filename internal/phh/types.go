package phh

import "time"

// HandHistory is one no-limit hold'em hand in Poker Hand History (PHH)
// format. Per-player slices are ordered by PHH player number, which follows
// table seat order. Fields starting with an underscore are PHH user fields.
type HandHistory struct {
	Variant           string   `toml:"variant"`
	Table             string   `toml:"table,omitempty"`
	SeatCount         int      `toml:"seat_count,omitempty"`
	Seats             []int    `toml:"seats,omitempty"` // 1-based table seats
	Antes             []int    `toml:"antes"`
	BlindsOrStraddles []int    `toml:"blinds_or_straddles"`
	MinBet            int      `toml:"min_bet"`
	StartingStacks    []int    `toml:"starting_stacks"`
	FinishingStacks   []int    `toml:"finishing_stacks,omitempty"`
	Winnings          []int    `toml:"winnings,omitempty"`
	Actions           []string `toml:"actions"`
	Players           []string `toml:"players,omitempty"`
	HandID            string   `toml:"hand"`
	Time              string   `toml:"time,omitempty"`
	TimeZone          string   `toml:"time_zone,omitempty"`
	Day               int      `toml:"day,omitempty"`
	Month             int      `toml:"month,omitempty"`
	Year              int      `toml:"year,omitempty"`

	HandNumber int    `toml:"_hand_number,omitempty"`
	DealerSeat int    `toml:"_dealer_seat,omitempty"` // 1-based
	Showdown   bool   `toml:"_showdown,omitempty"`
	Reason     string `toml:"_end_reason,omitempty"`

	StartedAt time.Time `toml:"-"`
}
