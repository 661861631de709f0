package model

import "time"

// SessionState is the persisted user selection the engine runs against.
type SessionState struct {
	Benchmark        SecurityRef   `json:"benchmark"`
	Timeframe        Timeframe     `json:"timeframe"`
	Securities       []SecurityRef `json:"securities"`
	EMASpan          int           `json:"ema_span"`
	MomentumLookback int           `json:"momentum_lookback"`
	TailCount        int           `json:"tail_count"`
	Cutoff           *time.Time    `json:"cutoff,omitempty"`
	Cycles           int           `json:"cycles"`
	Resets           int           `json:"resets"`
	LastCycleAt      time.Time     `json:"last_cycle_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}
