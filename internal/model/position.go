package model

import "time"

// Position is one open lot. The simulation holds at most one at any time; it
// is created only by an authorized buy and destroyed only by a sell or a
// stop-loss exit.
type Position struct {
	EntryPrice float64   `json:"entry_price"`
	Quantity   float64   `json:"quantity"`
	EntryTime  time.Time `json:"entry_time"`
}
