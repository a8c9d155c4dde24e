// Package ledger records build runs and their soft sampling events in a SQL
// database so datasets can be traced back to the parameters that made them.
package ledger

import "time"

// Run is one completed build.
type Run struct {
	ID        uint      `gorm:"primaryKey"`
	RunID     string    `gorm:"size:36;uniqueIndex"`
	CreatedAt time.Time `gorm:"index"`

	Seed          int64
	NHosts        int
	MaxPosPerHost int
	NegRatio      int

	Input    string `gorm:"size:1024"`
	Universe string `gorm:"size:1024"`
	Output   string `gorm:"size:1024"`

	Rows            int
	Positives       int
	Negatives       int
	Hosts           int
	Truncated       int
	EmptyCandidates int
	DurationMs      int64

	Events []HostEvent `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

// HostEvent is a host whose negatives fell short during a run.
type HostEvent struct {
	ID        uint   `gorm:"primaryKey"`
	RunID     uint   `gorm:"index"`
	Host      string `gorm:"size:255;index"`
	Kind      string `gorm:"size:32"`
	Requested int
	Available int
}
